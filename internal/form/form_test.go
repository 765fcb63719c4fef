package form_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"employee-directory/internal/client"
	"employee-directory/internal/form"
	"employee-directory/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu      sync.Mutex
	created []client.Payload
	updated map[string]client.Payload
	err     error
	block   chan struct{} // when set, calls wait on it
	started chan struct{}
}

func (f *fakeAPI) Create(_ context.Context, p client.Payload) (models.Employee, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Employee{}, f.err
	}
	f.created = append(f.created, p)
	return models.Employee{ID: "new"}, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, p client.Payload) (models.Employee, error) {
	f.wait()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return models.Employee{}, f.err
	}
	if f.updated == nil {
		f.updated = map[string]client.Payload{}
	}
	f.updated[id] = p
	return models.Employee{ID: id}, nil
}

func (f *fakeAPI) wait() {
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
}

func fill(c *form.Controller) {
	c.OnFieldChange(form.FieldName, "Ann")
	c.OnFieldChange(form.FieldEmail, "ann@example.com")
	c.OnFieldChange(form.FieldMobile, "9876543210")
	c.OnFieldChange(form.FieldCourses, form.CourseToggle{Course: "MCA", Checked: true})
}

func TestNewCreate_Defaults(t *testing.T) {
	c := form.NewCreate(&fakeAPI{})
	v := c.Values()

	assert.Equal(t, "HR", v.Designation)
	assert.Equal(t, "M", v.Gender)
	assert.Empty(t, v.Courses)
	assert.Nil(t, v.Image)
	assert.False(t, c.Editing())
}

func TestNewEdit_ResetsImage(t *testing.T) {
	emp := models.Employee{ID: "e1", Name: "Ann", Email: "ann@example.com", Mobile: "9876543210",
		Designation: models.DesignationSales, Gender: models.GenderFemale, Courses: []string{"BCA"},
		ImageURL: "/uploads/a.png"}

	c := form.NewEdit(&fakeAPI{}, emp)

	v := c.Values()
	assert.Equal(t, "Ann", v.Name)
	assert.Equal(t, []string{"BCA"}, v.Courses)
	assert.Nil(t, v.Image)
	assert.Equal(t, "/uploads/a.png", c.CurrentImageURL())
	assert.True(t, c.Editing())
	assert.Nil(t, c.Payload().Image)
}

func TestOnFieldChange_Mobile(t *testing.T) {
	c := form.NewCreate(&fakeAPI{})

	c.OnFieldChange(form.FieldMobile, "12345")
	assert.Equal(t, "12345", c.Values().Mobile)
	assert.Equal(t, "Mobile number must be 10 digits", c.Errors()[form.FieldMobile])

	c.OnFieldChange(form.FieldMobile, "12a45")
	assert.Equal(t, "12345", c.Values().Mobile, "non-digit input is rejected")

	c.OnFieldChange(form.FieldMobile, "123456789012")
	assert.Equal(t, "1234567890", c.Values().Mobile)
	assert.Empty(t, c.Errors()[form.FieldMobile])
}

func TestOnFieldChange_Courses(t *testing.T) {
	c := form.NewCreate(&fakeAPI{})

	c.OnFieldChange(form.FieldCourses, form.CourseToggle{Course: "MCA", Checked: true})
	c.OnFieldChange(form.FieldCourses, form.CourseToggle{Course: "BSC", Checked: true})
	assert.Equal(t, []string{"BSC"}, c.Values().Courses)

	c.OnFieldChange(form.FieldCourses, form.CourseToggle{Course: "BSC", Checked: false})
	assert.Empty(t, c.Values().Courses)
}

func TestOnFieldChange_ValidatesOnlyThatField(t *testing.T) {
	c := form.NewCreate(&fakeAPI{})

	c.OnFieldChange(form.FieldEmail, "nope")
	c.OnFieldChange(form.FieldName, "")
	c.OnFieldChange(form.FieldDesignation, "Anything")
	c.OnFieldChange(form.FieldImage, &models.ImageFile{Name: "a.gif", ContentType: "image/gif"})

	errs := c.Errors()
	assert.Equal(t, "Invalid email format", errs[form.FieldEmail])
	assert.Equal(t, "Name is required", errs[form.FieldName])
	assert.Empty(t, errs[form.FieldDesignation])
	assert.Equal(t, "Only JPG/PNG files are allowed", errs[form.FieldImage])
	assert.Equal(t, "Anything", c.Values().Designation)

	c.OnFieldChange(form.FieldEmail, "ann@example.com")
	errs = c.Errors()
	assert.Empty(t, errs[form.FieldEmail])
	assert.Equal(t, "Name is required", errs[form.FieldName], "other entries untouched")
}

func TestValidateAll(t *testing.T) {
	c := form.NewCreate(&fakeAPI{})

	assert.False(t, c.ValidateAll())
	assert.Equal(t, map[string]string{
		"name":    "Name is required",
		"email":   "Email is required",
		"mobile":  "Mobile is required",
		"courses": "A course must be selected",
	}, c.Errors())

	fill(c)
	assert.True(t, c.ValidateAll())
	assert.Empty(t, c.Errors())
}

func TestPayload(t *testing.T) {
	c := form.NewCreate(&fakeAPI{})
	fill(c)
	c.OnFieldChange(form.FieldImage, &models.ImageFile{Name: "a.png", ContentType: "image/png", Content: []byte("x")})

	p := c.Payload()
	assert.Equal(t, "Ann", p.Values.Get("name"))
	assert.Equal(t, []string{"MCA"}, p.Values["courses"])
	assert.Equal(t, "HR", p.Values.Get("designation"))
	require.NotNil(t, p.Image)
	assert.Equal(t, "a.png", p.Image.Name)

	c.OnFieldChange(form.FieldName, "")
	_, hasName := c.Payload().Values["name"]
	assert.False(t, hasName, "empty scalars are omitted")
}

func TestSubmit_Create(t *testing.T) {
	api := &fakeAPI{}
	c := form.NewCreate(api)
	fill(c)

	var calls []string
	err := c.Submit(context.Background(),
		func() { calls = append(calls, "success") },
		func() { calls = append(calls, "close") })

	require.NoError(t, err)
	assert.Equal(t, []string{"success", "close"}, calls)
	require.Len(t, api.created, 1)
	assert.False(t, c.Loading())
	assert.NoError(t, c.Err())
}

func TestSubmit_Edit(t *testing.T) {
	api := &fakeAPI{}
	c := form.NewEdit(api, models.Employee{ID: "e1", Name: "Ann", Email: "ann@example.com",
		Mobile: "9876543210", Gender: models.GenderFemale, Courses: []string{"MCA"}})
	c.OnFieldChange(form.FieldName, "Ann Lee")

	require.NoError(t, c.Submit(context.Background(), nil, nil))
	assert.Equal(t, "Ann Lee", api.updated["e1"].Values.Get("name"))
}

func TestSubmit_Invalid(t *testing.T) {
	api := &fakeAPI{}
	c := form.NewCreate(api)

	closed := false
	err := c.Submit(context.Background(), nil, func() { closed = true })

	require.ErrorIs(t, err, form.ErrInvalid)
	assert.False(t, closed)
	assert.Empty(t, api.created)
}

func TestSubmit_Failure(t *testing.T) {
	api := &fakeAPI{err: &client.RequestError{StatusCode: 409, Message: "email already exists"}}
	c := form.NewCreate(api)
	fill(c)

	closed := false
	err := c.Submit(context.Background(), nil, func() { closed = true })

	require.Error(t, err)
	assert.False(t, closed)
	assert.False(t, c.Loading())
	assert.Equal(t, "email already exists", c.ErrorMessage())

	api.err = errors.New("network down")
	require.Error(t, c.Submit(context.Background(), nil, nil))
	assert.Equal(t, "Failed to create employee", c.ErrorMessage())
}

func TestSubmit_InFlight(t *testing.T) {
	api := &fakeAPI{block: make(chan struct{}), started: make(chan struct{})}
	c := form.NewCreate(api)
	fill(c)

	done := make(chan error, 1)
	go func() { done <- c.Submit(context.Background(), nil, nil) }()
	<-api.started

	assert.True(t, c.Loading())
	assert.ErrorIs(t, c.Submit(context.Background(), nil, nil), form.ErrInFlight)

	close(api.block)
	require.NoError(t, <-done)
	assert.False(t, c.Loading())
	assert.Len(t, api.created, 1)
}
