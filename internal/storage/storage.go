// Package storage keeps uploaded profile images on local disk.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the path the upload directory is served under.
const URLPrefix = "/uploads"

// ErrUnsupportedType is returned for uploads that are not JPEG or PNG.
var ErrUnsupportedType = errors.New("storage: unsupported image type")

// extensions maps accepted media types to the stored file extension.
// The client's file name never decides what is served.
var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
}

type Local struct {
	dir string
}

// NewLocal creates the directory if needed.
func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir %s: %w", dir, err)
	}
	return &Local{dir: dir}, nil
}

// Dir is the directory files are written to.
func (l *Local) Dir() string { return l.dir }

// Save writes the uploaded file under a fresh name and returns its relative URL,
// e.g. /uploads/3f0c...png. The extension follows the part's media type.
func (l *Local) Save(fh *multipart.FileHeader) (string, error) {
	ext, err := extensionFor(fh.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("storage: open upload: %w", err)
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.OpenFile(filepath.Join(l.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("storage: close file: %w", err)
	}
	return path.Join(URLPrefix, name), nil
}

// Remove deletes a file previously returned by Save. Missing files are not an error.
func (l *Local) Remove(rel string) error {
	name := path.Base(rel)
	if !strings.HasPrefix(rel, URLPrefix+"/") || name == "." || name == "/" {
		return fmt.Errorf("storage: %q is not an upload path", rel)
	}
	if err := os.Remove(filepath.Join(l.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("storage: remove %s: %w", name, err)
	}
	return nil
}

func extensionFor(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, contentType)
	}
	ext, ok := extensions[strings.ToLower(mediaType)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedType, mediaType)
	}
	return ext, nil
}
