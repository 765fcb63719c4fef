// Package repositorytest provides in-memory stores for handler and client tests.
package repositorytest

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"employee-directory/internal/models"
	"employee-directory/internal/repository"

	"github.com/google/uuid"
)

var (
	_ repository.EmployeeStore = (*Employees)(nil)
	_ repository.UserStore     = (*Users)(nil)
)

// Employees mimics EmployeeRepository: generated codes, unique emails, newest first.
type Employees struct {
	mu    sync.Mutex
	seq   int
	items []models.Employee // insertion order
	now   func() time.Time

	// Err, when set, is returned by every call.
	Err error
}

func NewEmployees() *Employees {
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	e := &Employees{}
	// strictly increasing timestamps keep ordering deterministic
	e.now = func() time.Time { return base.Add(time.Duration(e.seq) * time.Minute) }
	return e
}

func (s *Employees) Create(_ context.Context, in models.NewEmployee) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Employee{}, s.Err
	}
	if s.emailTaken(in.Email, "") {
		return models.Employee{}, repository.ErrEmailExists
	}

	s.seq++
	now := s.now()
	emp := models.Employee{
		ID:           uuid.NewString(),
		EmployeeCode: fmt.Sprintf("EMP%04d", s.seq),
		Name:         in.Name,
		Email:        in.Email,
		Mobile:       in.Mobile,
		Designation:  in.Designation,
		Gender:       in.Gender,
		Courses:      nonNil(in.Courses),
		ImageURL:     in.ImageURL,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.items = append(s.items, emp)
	return clone(emp), nil
}

func (s *Employees) FindByID(_ context.Context, id string) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Employee{}, s.Err
	}
	i := s.index(id)
	if i < 0 {
		return models.Employee{}, repository.ErrEmployeeNotFound
	}
	return clone(s.items[i]), nil
}

func (s *Employees) FindAll(_ context.Context) ([]models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]models.Employee, 0, len(s.items))
	for i := len(s.items) - 1; i >= 0; i-- {
		out = append(out, clone(s.items[i]))
	}
	return out, nil
}

func (s *Employees) Update(_ context.Context, id string, in models.EmployeeUpdate) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Employee{}, s.Err
	}
	i := s.index(id)
	if i < 0 {
		return models.Employee{}, repository.ErrEmployeeNotFound
	}
	if in.Empty() {
		return clone(s.items[i]), nil
	}
	if in.Email != nil && s.emailTaken(*in.Email, id) {
		return models.Employee{}, repository.ErrEmailExists
	}

	emp := &s.items[i]
	if in.Name != nil {
		emp.Name = *in.Name
	}
	if in.Email != nil {
		emp.Email = *in.Email
	}
	if in.Mobile != nil {
		emp.Mobile = *in.Mobile
	}
	if in.Designation != nil {
		emp.Designation = *in.Designation
	}
	if in.Gender != nil {
		emp.Gender = *in.Gender
	}
	if in.Courses != nil {
		emp.Courses = slices.Clone(in.Courses)
	}
	if in.ImageURL != nil {
		emp.ImageURL = *in.ImageURL
	}
	emp.UpdatedAt = emp.UpdatedAt.Add(time.Second)
	return clone(*emp), nil
}

func (s *Employees) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	i := s.index(id)
	if i < 0 {
		return repository.ErrEmployeeNotFound
	}
	s.items = slices.Delete(s.items, i, i+1)
	return nil
}

func (s *Employees) ToggleStatus(_ context.Context, id string) (models.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return models.Employee{}, s.Err
	}
	i := s.index(id)
	if i < 0 {
		return models.Employee{}, repository.ErrEmployeeNotFound
	}
	s.items[i].IsActive = !s.items[i].IsActive
	s.items[i].UpdatedAt = s.items[i].UpdatedAt.Add(time.Second)
	return clone(s.items[i]), nil
}

// Len is the number of stored employees.
func (s *Employees) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Employees) index(id string) int {
	return slices.IndexFunc(s.items, func(e models.Employee) bool { return e.ID == id })
}

func (s *Employees) emailTaken(email, exceptID string) bool {
	return slices.ContainsFunc(s.items, func(e models.Employee) bool {
		return e.Email == email && e.ID != exceptID
	})
}

// Users is an in-memory UserStore keyed by email.
type Users struct {
	mu    sync.Mutex
	byID  map[string]models.User
	email map[string]string
}

func NewUsers() *Users {
	return &Users{byID: map[string]models.User{}, email: map[string]string{}}
}

func (s *Users) CreateUser(_ context.Context, name, email, passwordHash string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.email[email]; ok {
		return models.User{}, repository.ErrUserExists
	}
	u := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.byID[u.ID] = u
	s.email[email] = u.ID
	return u, nil
}

func (s *Users) FindUserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.email[email]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return s.byID[id], nil
}

func (s *Users) FindUserByID(_ context.Context, id string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return models.User{}, repository.ErrUserNotFound
	}
	return u, nil
}

func clone(e models.Employee) models.Employee {
	e.Courses = nonNil(slices.Clone(e.Courses))
	return e
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
