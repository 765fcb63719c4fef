// Package validation holds the field rules shared by the employee form and the API.
// Every function returns an empty string when the value is valid, otherwise a
// message suitable for showing next to the field.
package validation

import (
	"regexp"
	"slices"
	"strings"

	"employee-directory/internal/models"
)

var (
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/jpg"}

func Name(value string) string {
	if strings.TrimSpace(value) == "" {
		return "Name is required"
	}
	return ""
}

func Email(value string) string {
	if !emailPattern.MatchString(value) {
		return "Invalid email format"
	}
	return ""
}

func Mobile(value string) string {
	if !mobilePattern.MatchString(value) {
		return "Mobile number must be 10 digits"
	}
	return ""
}

// Image accepts a nil file; only chosen files are checked.
func Image(file *models.ImageFile) string {
	if file == nil {
		return ""
	}
	return ImageContentType(file.ContentType)
}

// ImageContentType checks a media type such as the Content-Type of a multipart part.
func ImageContentType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if !slices.Contains(allowedImageTypes, ct) {
		return "Only JPG/PNG files are allowed"
	}
	return ""
}

func Designation(value string) string {
	switch models.Designation(value) {
	case models.DesignationHR, models.DesignationManager, models.DesignationSales:
		return ""
	}
	return "Designation must be one of HR, Manager, Sales"
}

func Gender(value string) string {
	switch models.Gender(value) {
	case models.GenderMale, models.GenderFemale:
		return ""
	}
	return "Gender must be M or F"
}

func Course(value string) string {
	if !slices.Contains(models.AllCourses, value) {
		return "Course must be one of MCA, BCA, BSC"
	}
	return ""
}
