package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"slices"
	"strings"

	"employee-directory/internal/models"
)

// Payload is a multipart employee submission. Values may repeat a key
// (one "courses" entry per course). Image is nil when no new file was chosen.
type Payload struct {
	Values url.Values
	Image  *models.ImageFile
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func (p Payload) encode() (io.Reader, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	keys := make([]string, 0, len(p.Values))
	for k := range p.Values {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		for _, v := range p.Values[k] {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", fmt.Errorf("client: write field %s: %w", k, err)
			}
		}
	}

	if p.Image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="image"; filename="%s"`, quoteEscaper.Replace(p.Image.Name)))
		ct := p.Image.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("client: create image part: %w", err)
		}
		if _, err := part.Write(p.Image.Content); err != nil {
			return nil, "", fmt.Errorf("client: write image: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("client: close multipart: %w", err)
	}
	return body, w.FormDataContentType(), nil
}
