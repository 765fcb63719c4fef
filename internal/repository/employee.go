package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"employee-directory/internal/models"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrEmployeeNotFound is returned when no employee has the requested id.
	ErrEmployeeNotFound = errors.New("employee: not found")
	// ErrEmailExists is returned when another employee already uses the email.
	ErrEmailExists = errors.New("employee: email already exists")
	// ErrEmployeeCodeExists is returned when the generated employee code collides.
	ErrEmployeeCodeExists = errors.New("employee: employee code already exists")
)

// EmployeeStore is the document store behind the REST layer.
type EmployeeStore interface {
	Create(ctx context.Context, in models.NewEmployee) (models.Employee, error)
	FindByID(ctx context.Context, id string) (models.Employee, error)
	FindAll(ctx context.Context) ([]models.Employee, error)
	Update(ctx context.Context, id string, in models.EmployeeUpdate) (models.Employee, error)
	Delete(ctx context.Context, id string) error
	ToggleStatus(ctx context.Context, id string) (models.Employee, error)
}

const employeeColumns = `id::text, employee_code, name, email, mobile, designation, gender,
	courses, image_url, is_active, created_at, updated_at`

const (
	insertEmployee = `INSERT INTO employees (name, email, mobile, designation, gender, courses, image_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + employeeColumns

	selectEmployeeByID = `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	selectEmployees = `SELECT ` + employeeColumns + ` FROM employees ORDER BY created_at DESC`

	deleteEmployee = `DELETE FROM employees WHERE id = $1`

	toggleEmployeeStatus = `UPDATE employees SET is_active = NOT is_active, updated_at = NOW()
	WHERE id = $1
	RETURNING ` + employeeColumns
)

// EmployeeRepository persists employees in PostgreSQL.
type EmployeeRepository struct {
	db Database
}

// NewEmployeeRepository creates a repository on top of the given pool.
func NewEmployeeRepository(db Database) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create inserts a new employee. The database assigns id, code, status and timestamps.
func (r *EmployeeRepository) Create(ctx context.Context, in models.NewEmployee) (models.Employee, error) {
	courses := in.Courses
	if courses == nil {
		courses = []string{}
	}

	row := r.db.QueryRow(ctx, insertEmployee,
		in.Name, in.Email, in.Mobile, string(in.Designation), string(in.Gender), courses, in.ImageURL)

	emp, err := scanEmployee(row)
	if err != nil {
		return models.Employee{}, mapEmployeeErr("insert employee", err)
	}
	return emp, nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (models.Employee, error) {
	emp, err := scanEmployee(r.db.QueryRow(ctx, selectEmployeeByID, id))
	if err != nil {
		return models.Employee{}, mapEmployeeErr("get employee", err)
	}
	return emp, nil
}

// FindAll returns every employee, newest first.
func (r *EmployeeRepository) FindAll(ctx context.Context) ([]models.Employee, error) {
	rows, err := r.db.Query(ctx, selectEmployees)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	result := make([]models.Employee, 0)
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		result = append(result, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employees: %w", err)
	}
	return result, nil
}

// Update replaces the fields set in the update and returns the stored record.
// An empty update returns the record unchanged.
func (r *EmployeeRepository) Update(ctx context.Context, id string, in models.EmployeeUpdate) (models.Employee, error) {
	if in.Empty() {
		return r.FindByID(ctx, id)
	}

	sets := []string{}
	args := []any{}
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s=$%d", column, len(args)))
	}

	if in.Name != nil {
		add("name", *in.Name)
	}
	if in.Email != nil {
		add("email", *in.Email)
	}
	if in.Mobile != nil {
		add("mobile", *in.Mobile)
	}
	if in.Designation != nil {
		add("designation", string(*in.Designation))
	}
	if in.Gender != nil {
		add("gender", string(*in.Gender))
	}
	if in.Courses != nil {
		add("courses", in.Courses)
	}
	if in.ImageURL != nil {
		add("image_url", *in.ImageURL)
	}

	args = append(args, id)
	query := "UPDATE employees SET " + strings.Join(sets, ", ") +
		fmt.Sprintf(", updated_at=NOW() WHERE id=$%d RETURNING ", len(args)) + employeeColumns

	emp, err := scanEmployee(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return models.Employee{}, mapEmployeeErr("update employee", err)
	}
	return emp, nil
}

// Delete removes the employee permanently.
func (r *EmployeeRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, deleteEmployee, id)
	if err != nil {
		return mapEmployeeErr("delete employee", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// ToggleStatus flips is_active in a single statement and returns the result.
func (r *EmployeeRepository) ToggleStatus(ctx context.Context, id string) (models.Employee, error) {
	emp, err := scanEmployee(r.db.QueryRow(ctx, toggleEmployeeStatus, id))
	if err != nil {
		return models.Employee{}, mapEmployeeErr("toggle employee status", err)
	}
	return emp, nil
}

func scanEmployee(row pgx.Row) (models.Employee, error) {
	var (
		emp         models.Employee
		designation string
		gender      string
		courses     []string
		createdAt   time.Time
		updatedAt   time.Time
	)
	if err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.Name, &emp.Email, &emp.Mobile, &designation, &gender,
		&courses, &emp.ImageURL, &emp.IsActive, &createdAt, &updatedAt,
	); err != nil {
		return models.Employee{}, err
	}
	if courses == nil {
		courses = []string{}
	}
	emp.Designation = models.Designation(designation)
	emp.Gender = models.Gender(gender)
	emp.Courses = courses
	emp.CreatedAt = createdAt
	emp.UpdatedAt = updatedAt
	return emp, nil
}

func mapEmployeeErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrEmployeeNotFound
	}
	code, constraint := pgError(err)
	switch code {
	case pgInvalidTextRepresentation:
		// malformed uuid can never match a row
		return ErrEmployeeNotFound
	case pgUniqueViolation:
		switch constraint {
		case "employees_email_key":
			return ErrEmailExists
		case "employees_employee_code_key":
			return ErrEmployeeCodeExists
		}
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
