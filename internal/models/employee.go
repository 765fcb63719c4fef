package models

import "time"

type Designation string

const (
	DesignationHR      Designation = "HR"
	DesignationManager Designation = "Manager"
	DesignationSales   Designation = "Sales"
)

type Gender string

const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
)

// Courses offered on the employee form.
const (
	CourseMCA = "MCA"
	CourseBCA = "BCA"
	CourseBSC = "BSC"
)

// AllCourses lists the courses in display order.
var AllCourses = []string{CourseMCA, CourseBCA, CourseBSC}

// Employee is a persisted employee document. JSON names match the browser client contract.
type Employee struct {
	ID           string      `json:"_id"`
	EmployeeCode string      `json:"employeeId"`
	Name         string      `json:"name"`
	Email        string      `json:"email"`
	Mobile       string      `json:"mobile"`
	Designation  Designation `json:"designation"`
	Gender       Gender      `json:"gender"`
	Courses      []string    `json:"courses"`
	ImageURL     string      `json:"imageUrl"`
	IsActive     bool        `json:"isActive"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// NewEmployee is the input for creating an employee. The store assigns
// ID, EmployeeCode, IsActive and the timestamps.
type NewEmployee struct {
	Name        string
	Email       string
	Mobile      string
	Designation Designation
	Gender      Gender
	Courses     []string
	ImageURL    string
}

// EmployeeUpdate is a partial update; nil fields are left unchanged.
type EmployeeUpdate struct {
	Name        *string
	Email       *string
	Mobile      *string
	Designation *Designation
	Gender      *Gender
	Courses     []string // nil means unchanged
	ImageURL    *string
}

// Empty reports whether the update carries no fields.
func (u EmployeeUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Mobile == nil && u.Designation == nil &&
		u.Gender == nil && u.Courses == nil && u.ImageURL == nil
}

// ImageFile is a profile image chosen for upload.
type ImageFile struct {
	Name        string
	ContentType string
	Content     []byte
}
