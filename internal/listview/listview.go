// Package listview derives the searchable, sortable, paginated employee table.
package listview

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"employee-directory/internal/models"
)

// PageSize is the number of rows per page.
const PageSize = 5

// Sortable fields.
const (
	SortEmployeeID = "employeeId"
	SortName       = "name"
	SortEmail      = "email"
	SortCreatedAt  = "createdAt"
)

// ErrStale is returned by Refresh when a newer fetch started before this one
// finished. Its result is dropped.
var ErrStale = errors.New("listview: stale response discarded")

// API is the part of *client.Client the list needs.
type API interface {
	List(ctx context.Context) ([]models.Employee, error)
	Delete(ctx context.Context, id string) error
	ToggleStatus(ctx context.Context, id string) (models.Employee, error)
}

type Model struct {
	mu  sync.Mutex
	api API
	log *slog.Logger

	items     []models.Employee
	search    string
	sortField string
	desc      bool
	page      int

	gen     uint64 // incremented per fetch
	loading bool
	err     error
}

func New(api API, log *slog.Logger) *Model {
	if log == nil {
		log = slog.Default()
	}
	return &Model{api: api, log: log, sortField: SortName, page: 1}
}

// Refresh fetches the full list. Only the most recently started fetch may
// replace the items.
func (m *Model) Refresh(ctx context.Context) error {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.loading = true
	m.mu.Unlock()

	list, err := m.api.List(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return ErrStale
	}
	m.loading = false
	if err != nil {
		m.err = err
		return err
	}
	m.err = nil
	m.items = list
	return nil
}

// Delete asks confirm first and refreshes after a successful delete. A nil
// confirm counts as declined.
func (m *Model) Delete(ctx context.Context, id string, confirm func() bool) error {
	if confirm == nil || !confirm() {
		return nil
	}
	if err := m.api.Delete(ctx, id); err != nil {
		m.log.ErrorContext(ctx, "failed to delete employee", "id", id, "error", err)
		return fmt.Errorf("delete employee: %w", err)
	}
	return m.refreshAfterMutation(ctx)
}

// ToggleStatus flips the active flag on the server, then refreshes.
func (m *Model) ToggleStatus(ctx context.Context, id string) error {
	if _, err := m.api.ToggleStatus(ctx, id); err != nil {
		m.log.ErrorContext(ctx, "failed to toggle status", "id", id, "error", err)
		return fmt.Errorf("toggle employee status: %w", err)
	}
	return m.refreshAfterMutation(ctx)
}

func (m *Model) refreshAfterMutation(ctx context.Context) error {
	if err := m.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
		return err
	}
	return nil
}

// SetSearch changes the filter term. The current page is kept.
func (m *Model) SetSearch(term string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.search = term
}

// SortFields lists the fields SortBy accepts.
var SortFields = []string{SortEmployeeID, SortName, SortEmail, SortCreatedAt}

// ValidSortField reports whether SortBy accepts field.
func ValidSortField(field string) bool { return slices.Contains(SortFields, field) }

// SortBy flips the direction when field is already selected, otherwise
// selects it ascending. Unknown fields are ignored.
func (m *Model) SortBy(field string) {
	if !ValidSortField(field) {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sortField == field {
		m.desc = !m.desc
		return
	}
	m.sortField = field
	m.desc = false
}

// Sort returns the selected field and whether it is descending.
func (m *Model) Sort() (field string, desc bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortField, m.desc
}

func (m *Model) NextPage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page < totalPages(len(m.visible())) {
		m.page++
	}
}

func (m *Model) PrevPage() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page > 1 {
		m.page--
	}
}

func (m *Model) CurrentPage() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page
}

func (m *Model) HasPrev() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page > 1
}

func (m *Model) HasNext() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.page < totalPages(len(m.visible()))
}

func (m *Model) TotalPages() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return totalPages(len(m.visible()))
}

// Range returns the 1-based bounds shown as "Showing from to to of total".
func (m *Model) Range() (from, to, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	total = len(m.visible())
	start, end := bounds(m.page, total)
	if start >= end {
		return 0, 0, total
	}
	return start + 1, end, total
}

// Visible is the filtered and sorted list across all pages.
func (m *Model) Visible() []models.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.visible()
}

// Page is the slice of Visible on the current page.
func (m *Model) Page() []models.Employee {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.visible()
	start, end := bounds(m.page, len(rows))
	return rows[start:end]
}

func (m *Model) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

// Err is the error of the last completed fetch.
func (m *Model) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// visible filters then sorts a copy of the items. Callers hold mu.
func (m *Model) visible() []models.Employee {
	term := strings.ToLower(m.search)
	out := make([]models.Employee, 0, len(m.items))
	for _, e := range m.items {
		if matches(e, term) {
			out = append(out, e)
		}
	}

	field, desc := m.sortField, m.desc
	slices.SortStableFunc(out, func(a, b models.Employee) int {
		c := compare(field, a, b)
		if desc {
			return -c
		}
		return c
	})
	return out
}

func matches(e models.Employee, term string) bool {
	if term == "" {
		return true
	}
	for _, v := range []string{e.Name, e.Email, e.Mobile, e.EmployeeCode} {
		if strings.Contains(strings.ToLower(v), term) {
			return true
		}
	}
	return false
}

func compare(field string, a, b models.Employee) int {
	switch field {
	case SortEmployeeID:
		return cmp.Compare(a.EmployeeCode, b.EmployeeCode)
	case SortEmail:
		return cmp.Compare(a.Email, b.Email)
	case SortCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return cmp.Compare(a.Name, b.Name)
	}
}

func totalPages(n int) int {
	return (n + PageSize - 1) / PageSize
}

func bounds(page, n int) (start, end int) {
	start = min((page-1)*PageSize, n)
	end = min(start+PageSize, n)
	return start, end
}
