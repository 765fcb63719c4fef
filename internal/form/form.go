// Package form holds the create/edit employee form state and its submission rules.
package form

import (
	"context"
	"errors"
	"net/url"
	"slices"
	"sync"

	"employee-directory/internal/client"
	"employee-directory/internal/models"
	"employee-directory/internal/validation"
)

var (
	ErrInvalid  = errors.New("form: validation failed")
	ErrInFlight = errors.New("form: submission already in progress")
)

// Field names accepted by OnFieldChange.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldMobile      = "mobile"
	FieldDesignation = "designation"
	FieldGender      = "gender"
	FieldCourses     = "courses"
	FieldImage       = "image"
)

const mobileLength = 10

// Submitter is the part of *client.Client the form needs.
type Submitter interface {
	Create(ctx context.Context, p client.Payload) (models.Employee, error)
	Update(ctx context.Context, id string, p client.Payload) (models.Employee, error)
}

// CourseToggle is the change value for the courses checkbox group.
type CourseToggle struct {
	Course  string
	Checked bool
}

// Values is the editable state of the form.
type Values struct {
	Name        string
	Email       string
	Mobile      string
	Designation string
	Gender      string
	Courses     []string
	Image       *models.ImageFile // new file to upload, nil keeps the stored one
	Extra       map[string]string // unrecognised fields, kept and sent verbatim
}

type Controller struct {
	mu      sync.Mutex
	api     Submitter
	editID  string
	current string // stored image URL in edit mode

	values  Values
	errors  map[string]string
	loading bool
	err     error
	message string
}

// NewCreate starts an empty form with the default designation and gender.
func NewCreate(api Submitter) *Controller {
	return &Controller{
		api: api,
		values: Values{
			Designation: string(models.DesignationHR),
			Gender:      string(models.GenderMale),
			Courses:     []string{},
		},
		errors: map[string]string{},
	}
}

// NewEdit seeds the form from emp. The image always starts unset.
func NewEdit(api Submitter, emp models.Employee) *Controller {
	return &Controller{
		api:     api,
		editID:  emp.ID,
		current: emp.ImageURL,
		values: Values{
			Name:        emp.Name,
			Email:       emp.Email,
			Mobile:      emp.Mobile,
			Designation: string(emp.Designation),
			Gender:      string(emp.Gender),
			Courses:     slices.Clone(emp.Courses),
		},
		errors: map[string]string{},
	}
}

// Editing reports whether Submit updates an existing record.
func (c *Controller) Editing() bool { return c.editID != "" }

// CurrentImageURL is the stored image of the record being edited.
func (c *Controller) CurrentImageURL() string { return c.current }

// OnFieldChange applies one user edit. raw is a string for text fields, a
// CourseToggle for courses and a *models.ImageFile for image. Values of the
// wrong type are ignored.
func (c *Controller) OnFieldChange(field string, raw any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch field {
	case FieldImage:
		file, _ := raw.(*models.ImageFile)
		c.values.Image = file
		c.errors[field] = validation.Image(file)
	case FieldCourses:
		toggle, ok := raw.(CourseToggle)
		if !ok {
			return
		}
		// single selection: checking replaces, unchecking clears
		if toggle.Checked {
			c.values.Courses = []string{toggle.Course}
		} else {
			c.values.Courses = []string{}
		}
		c.errors[field] = ""
	default:
		value, ok := raw.(string)
		if !ok {
			return
		}
		c.setText(field, value)
	}
}

func (c *Controller) setText(field, value string) {
	msg := ""
	switch field {
	case FieldMobile:
		if !allDigits(value) {
			return
		}
		if len(value) > mobileLength {
			value = value[:mobileLength]
		}
		c.values.Mobile = value
		msg = validation.Mobile(value)
	case FieldName:
		c.values.Name = value
		msg = validation.Name(value)
	case FieldEmail:
		c.values.Email = value
		msg = validation.Email(value)
	case FieldDesignation:
		c.values.Designation = value
	case FieldGender:
		c.values.Gender = value
	default:
		if c.values.Extra == nil {
			c.values.Extra = map[string]string{}
		}
		c.values.Extra[field] = value
	}
	c.errors[field] = msg
}

// ValidateAll replaces the error map with the required-field checks.
func (c *Controller) ValidateAll() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validateAll()
}

func (c *Controller) validateAll() bool {
	errs := map[string]string{}
	if c.values.Name == "" {
		errs[FieldName] = "Name is required"
	}
	if c.values.Email == "" {
		errs[FieldEmail] = "Email is required"
	}
	if c.values.Mobile == "" {
		errs[FieldMobile] = "Mobile is required"
	}
	if c.values.Gender == "" {
		errs[FieldGender] = "Gender is required"
	}
	if len(c.values.Courses) == 0 {
		errs[FieldCourses] = "A course must be selected"
	}
	c.errors = errs
	return len(errs) == 0
}

// Payload builds the multipart submission for the current values.
func (c *Controller) Payload() client.Payload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.payload()
}

func (c *Controller) payload() client.Payload {
	v := url.Values{}
	put := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	put(FieldName, c.values.Name)
	put(FieldEmail, c.values.Email)
	put(FieldMobile, c.values.Mobile)
	put(FieldDesignation, c.values.Designation)
	put(FieldGender, c.values.Gender)
	for key, value := range c.values.Extra {
		put(key, value)
	}
	for _, course := range c.values.Courses {
		v.Add(FieldCourses, course)
	}

	p := client.Payload{Values: v}
	if c.values.Image != nil {
		img := *c.values.Image
		p.Image = &img
	}
	return p
}

// Submit validates and sends the form. onSuccess then onClose run only when
// the API call succeeds; either may be nil.
func (c *Controller) Submit(ctx context.Context, onSuccess, onClose func()) error {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return ErrInFlight
	}
	c.err, c.message = nil, ""
	if !c.validateAll() {
		c.mu.Unlock()
		return ErrInvalid
	}
	c.loading = true
	payload := c.payload()
	editID := c.editID
	c.mu.Unlock()

	var err error
	if editID != "" {
		_, err = c.api.Update(ctx, editID, payload)
	} else {
		_, err = c.api.Create(ctx, payload)
	}

	c.mu.Lock()
	c.loading = false
	if err != nil {
		c.err, c.message = err, submitMessage(err, editID != "")
	}
	c.mu.Unlock()

	if err != nil {
		return err
	}
	if onSuccess != nil {
		onSuccess()
	}
	if onClose != nil {
		onClose()
	}
	return nil
}

// submitMessage prefers the server's message over a generic one.
func submitMessage(err error, editing bool) string {
	var reqErr *client.RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return reqErr.Message
	}
	if editing {
		return "Failed to update employee"
	}
	return "Failed to create employee"
}

// Values returns a copy of the current field values.
func (c *Controller) Values() Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := c.values
	v.Courses = slices.Clone(c.values.Courses)
	return v
}

// Errors returns the per-field messages. Empty entries mean the field passed.
func (c *Controller) Errors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.errors))
	for k, v := range c.errors {
		out[k] = v
	}
	return out
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Err is the last submission failure, nil after a successful or new submit.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// ErrorMessage is the text shown for Err.
func (c *Controller) ErrorMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
