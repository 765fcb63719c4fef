package handlers

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"employee-directory/internal/metrics"
	"employee-directory/internal/models"
	"employee-directory/internal/report"
	"employee-directory/internal/repository"
	"employee-directory/internal/storage"
	"employee-directory/internal/validation"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImageSaver persists an uploaded file and returns its relative URL. Remove
// takes a URL returned by Save.
type ImageSaver interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(rel string) error
}

type EmployeeHandler struct {
	store   repository.EmployeeStore
	images  ImageSaver
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewEmployeeHandler(store repository.EmployeeStore, images ImageSaver, m *metrics.Metrics, log *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{store: store, images: images, metrics: m, log: log}
}

// GET /api/employees
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	employees, err := h.store.FindAll(c.Request.Context())
	if err != nil {
		h.storeError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(employees), "data": employees})
}

// GET /api/employees/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	emp, err := h.store.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err, "Server error")
		return
	}
	ok(c, http.StatusOK, emp)
}

// POST /api/employees (multipart)
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	in := models.NewEmployee{
		Name:        strings.TrimSpace(c.PostForm("name")),
		Email:       strings.TrimSpace(strings.ToLower(c.PostForm("email"))),
		Mobile:      strings.TrimSpace(c.PostForm("mobile")),
		Designation: models.Designation(c.PostForm("designation")),
		Gender:      models.Gender(c.PostForm("gender")),
		Courses:     normalizeCourses(formCourses(c)),
	}

	if msg := firstError(
		validation.Name(in.Name),
		validation.Email(in.Email),
		validation.Mobile(in.Mobile),
		validation.Designation(string(in.Designation)),
		validation.Gender(string(in.Gender)),
		validateCourses(in.Courses),
	); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}

	imageURL, handled := h.saveImage(c)
	if handled {
		return
	}
	in.ImageURL = imageURL

	emp, err := h.store.Create(c.Request.Context(), in)
	if err != nil {
		h.discardImage(c, imageURL)
		h.storeError(c, err, "Failed to create employee")
		return
	}
	h.metrics.EmployeeMutations.WithLabelValues("create").Inc()
	h.log.InfoContext(c.Request.Context(), "employee created", "id", emp.ID, "code", emp.EmployeeCode)

	// create answers with the bare record, not the envelope
	c.JSON(http.StatusCreated, emp)
}

// PUT /api/employees/:id (multipart, partial)
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id := c.Param("id")
	var in models.EmployeeUpdate

	if v, exists := c.GetPostForm("name"); exists {
		v = strings.TrimSpace(v)
		if msg := validation.Name(v); msg != "" {
			fail(c, http.StatusBadRequest, msg)
			return
		}
		in.Name = &v
	}
	if v, exists := c.GetPostForm("email"); exists {
		v = strings.TrimSpace(strings.ToLower(v))
		if msg := validation.Email(v); msg != "" {
			fail(c, http.StatusBadRequest, msg)
			return
		}
		in.Email = &v
	}
	if v, exists := c.GetPostForm("mobile"); exists {
		v = strings.TrimSpace(v)
		if msg := validation.Mobile(v); msg != "" {
			fail(c, http.StatusBadRequest, msg)
			return
		}
		in.Mobile = &v
	}
	if v, exists := c.GetPostForm("designation"); exists {
		if msg := validation.Designation(v); msg != "" {
			fail(c, http.StatusBadRequest, msg)
			return
		}
		d := models.Designation(v)
		in.Designation = &d
	}
	if v, exists := c.GetPostForm("gender"); exists {
		if msg := validation.Gender(v); msg != "" {
			fail(c, http.StatusBadRequest, msg)
			return
		}
		g := models.Gender(v)
		in.Gender = &g
	}
	if raw, exists := formCoursesPresent(c); exists {
		courses := normalizeCourses(raw)
		if msg := validateCourses(courses); msg != "" {
			fail(c, http.StatusBadRequest, msg)
			return
		}
		in.Courses = courses
	}

	// no new file keeps the stored image
	imageURL, handled := h.saveImage(c)
	if handled {
		return
	}
	if imageURL != "" {
		in.ImageURL = &imageURL
	}

	emp, err := h.store.Update(c.Request.Context(), id, in)
	if err != nil {
		h.discardImage(c, imageURL)
		h.storeError(c, err, "Error updating employee")
		return
	}
	h.metrics.EmployeeMutations.WithLabelValues("update").Inc()
	ok(c, http.StatusOK, emp)
}

// DELETE /api/employees/:id (hard delete)
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.store.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.storeError(c, err, "Server error")
		return
	}
	h.metrics.EmployeeMutations.WithLabelValues("delete").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Employee deleted successfully"})
}

// PATCH /api/employees/:id/status
func (h *EmployeeHandler) ToggleEmployeeStatus(c *gin.Context) {
	emp, err := h.store.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.storeError(c, err, "Error toggling employee status")
		return
	}
	h.metrics.EmployeeMutations.WithLabelValues("toggle_status").Inc()
	ok(c, http.StatusOK, emp)
}

// GET /api/employees/export
func (h *EmployeeHandler) ExportEmployees(c *gin.Context) {
	employees, err := h.store.FindAll(c.Request.Context())
	if err != nil {
		h.storeError(c, err, "Server error")
		return
	}
	buf, err := report.GenerateEmployeeReport(employees)
	if errors.Is(err, report.ErrNoEmployees) {
		fail(c, http.StatusNotFound, "No employees to export")
		return
	}
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to build export", "error", err)
		fault(c, http.StatusInternalServerError, "Failed to export employees", err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="employees.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// saveImage stores the optional "image" part. handled is true when a response
// was already written.
func (h *EmployeeHandler) saveImage(c *gin.Context) (url string, handled bool) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", false
	}
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid image upload")
		return "", true
	}
	if msg := validation.ImageContentType(fh.Header.Get("Content-Type")); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return "", true
	}
	url, err = h.images.Save(fh)
	if errors.Is(err, storage.ErrUnsupportedType) {
		fail(c, http.StatusBadRequest, "Only JPG/PNG files are allowed")
		return "", true
	}
	if err != nil {
		h.log.ErrorContext(c.Request.Context(), "failed to store image", "error", err)
		fault(c, http.StatusInternalServerError, "Failed to store image", err)
		return "", true
	}
	h.metrics.ImageUploads.Inc()
	return url, false
}

// discardImage removes a file saved for a request whose record was not written.
func (h *EmployeeHandler) discardImage(c *gin.Context, url string) {
	if url == "" {
		return
	}
	if err := h.images.Remove(url); err != nil {
		h.log.WarnContext(c.Request.Context(), "failed to remove orphaned image", "url", url, "error", err)
	}
}

func (h *EmployeeHandler) storeError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, repository.ErrEmployeeNotFound):
		fail(c, http.StatusNotFound, "Employee not found")
	case errors.Is(err, repository.ErrEmailExists):
		fail(c, http.StatusConflict, "email already exists")
	case errors.Is(err, repository.ErrEmployeeCodeExists):
		fail(c, http.StatusConflict, "employee code already exists")
	default:
		h.log.ErrorContext(c.Request.Context(), message, "error", err, "path", c.Request.URL.Path)
		fault(c, http.StatusInternalServerError, message, err)
	}
}

// formCourses accepts both "courses" and "courses[]" keys.
func formCourses(c *gin.Context) []string {
	values, _ := formCoursesPresent(c)
	return values
}

func formCoursesPresent(c *gin.Context) ([]string, bool) {
	if v, ok := c.GetPostFormArray("courses"); ok {
		return v, true
	}
	return c.GetPostFormArray("courses[]")
}

// normalizeCourses drops blanks and duplicates. A single scalar arrives as a
// one-element slice already.
func normalizeCourses(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func validateCourses(courses []string) string {
	for _, course := range courses {
		if msg := validation.Course(course); msg != "" {
			return msg
		}
	}
	return ""
}

func firstError(msgs ...string) string {
	for _, m := range msgs {
		if m != "" {
			return m
		}
	}
	return ""
}
