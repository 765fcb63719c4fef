package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"employee-directory/internal/client"
	"employee-directory/internal/form"
	"employee-directory/internal/listview"
	"employee-directory/internal/models"
)

// API is everything the commands call on the backend.
type API interface {
	listview.API
	form.Submitter
	Get(ctx context.Context, id string) (models.Employee, error)
	Export(ctx context.Context) ([]byte, error)
	ImageURL(rel string) string
}

var _ API = (*client.Client)(nil)

type app struct {
	api API
	log *slog.Logger
	in  *bufio.Reader
	out io.Writer
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		return a.list(ctx, args)
	case "create":
		return a.save(ctx, "", args)
	case "edit":
		if len(args) == 0 {
			return errors.New("edit: missing employee id")
		}
		return a.save(ctx, args[0], args[1:])
	case "delete":
		return a.remove(ctx, args)
	case "toggle":
		if len(args) != 1 {
			return errors.New("toggle: expected one employee id")
		}
		return a.withList(ctx, func(m *listview.Model) error { return m.ToggleStatus(ctx, args[0]) })
	case "export":
		return a.export(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	search := fs.String("search", "", "filter by name, email, mobile or code")
	sortField := fs.String("sort", listview.SortName, strings.Join(listview.SortFields, "|"))
	desc := fs.Bool("desc", false, "sort descending")
	page := fs.Int("page", 1, "page number")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !listview.ValidSortField(*sortField) {
		return fmt.Errorf("list: unknown sort field %q (want one of %s)", *sortField, strings.Join(listview.SortFields, ", "))
	}

	m := listview.New(a.api, a.log)
	if err := m.Refresh(ctx); err != nil {
		return err
	}
	m.SetSearch(*search)
	if field, _ := m.Sort(); field != *sortField {
		m.SortBy(*sortField)
	}
	if _, isDesc := m.Sort(); isDesc != *desc {
		m.SortBy(*sortField)
	}
	for m.CurrentPage() < *page && m.HasNext() {
		m.NextPage()
	}
	a.printPage(m)
	return nil
}

func (a *app) printPage(m *listview.Model) {
	tw := tabwriter.NewWriter(a.out, 0, 2, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tEMAIL\tMOBILE\tDESIGNATION\tGENDER\tCOURSES\tCREATED\tSTATUS\tIMAGE")
	for _, e := range m.Page() {
		status := "Inactive"
		if e.IsActive {
			status = "Active"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.EmployeeCode, e.Name, e.Email, e.Mobile, e.Designation, e.Gender,
			strings.Join(e.Courses, ","), e.CreatedAt.Format("02-Jan-06"), status, a.api.ImageURL(e.ImageURL))
	}
	_ = tw.Flush()

	from, to, total := m.Range()
	fmt.Fprintf(a.out, "Showing %d to %d of %d (page %d/%d)\n", from, to, total, m.CurrentPage(), m.TotalPages())
}

// save runs create (id == "") or edit through the form controller.
func (a *app) save(ctx context.Context, id string, args []string) error {
	fs := flag.NewFlagSet("save", flag.ContinueOnError)
	name := fs.String("name", "", "full name")
	email := fs.String("email", "", "email")
	mobile := fs.String("mobile", "", "10-digit mobile")
	designation := fs.String("designation", "", "HR|Manager|Sales")
	gender := fs.String("gender", "", "M|F")
	course := fs.String("course", "", "MCA|BCA|BSC")
	image := fs.String("image", "", "path to a JPG/PNG profile image")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var ctrl *form.Controller
	if id == "" {
		ctrl = form.NewCreate(a.api)
	} else {
		emp, err := a.api.Get(ctx, id)
		if err != nil {
			return err
		}
		ctrl = form.NewEdit(a.api, emp)
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for field, value := range map[string]*string{
		form.FieldName: name, form.FieldEmail: email, form.FieldMobile: mobile,
		form.FieldDesignation: designation, form.FieldGender: gender,
	} {
		if set[field] {
			ctrl.OnFieldChange(field, *value)
		}
	}
	if set["course"] {
		ctrl.OnFieldChange(form.FieldCourses, form.CourseToggle{Course: *course, Checked: *course != ""})
	}
	if *image != "" {
		file, err := readImage(*image)
		if err != nil {
			return err
		}
		ctrl.OnFieldChange(form.FieldImage, file)
	}

	for field, msg := range ctrl.Errors() {
		if msg != "" {
			return fmt.Errorf("%s: %s", field, msg)
		}
	}

	err := ctrl.Submit(ctx, func() { fmt.Fprintln(a.out, "saved") }, nil)
	if errors.Is(err, form.ErrInvalid) {
		for field, msg := range ctrl.Errors() {
			fmt.Fprintf(a.out, "  %s: %s\n", field, msg)
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ctrl.ErrorMessage(), err)
	}
	return nil
}

func (a *app) remove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	yes := fs.Bool("yes", false, "skip confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("delete: expected one employee id")
	}
	id := fs.Arg(0)

	confirm := func() bool {
		if *yes {
			return true
		}
		fmt.Fprint(a.out, "Are you sure you want to delete this employee? [y/N] ")
		answer, _ := a.in.ReadString('\n')
		return strings.EqualFold(strings.TrimSpace(answer), "y")
	}
	return a.withList(ctx, func(m *listview.Model) error { return m.Delete(ctx, id, confirm) })
}

// withList runs a mutation through a loaded list model and prints the result.
func (a *app) withList(ctx context.Context, fn func(m *listview.Model) error) error {
	m := listview.New(a.api, a.log)
	if err := fn(m); err != nil {
		return err
	}
	a.printPage(m)
	return nil
}

func (a *app) export(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	out := fs.String("o", "employees.xlsx", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	data, err := a.api.Export(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}
	fmt.Fprintf(a.out, "wrote %s (%d bytes)\n", *out, len(data))
	return nil
}

func readImage(path string) (*models.ImageFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if ct == "" {
		ct = http.DetectContentType(content)
	}
	return &models.ImageFile{Name: filepath.Base(path), ContentType: ct, Content: content}, nil
}
