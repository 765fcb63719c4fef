// Package report renders the employee directory as an Excel workbook.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"employee-directory/internal/models"
	"github.com/xuri/excelize/v2"
)

var ErrNoEmployees = errors.New("report: no employees to export")

// Headers of every designation sheet, in column order.
var headers = []string{
	"Unique ID", "Name", "Email", "Mobile No", "Gender", "Courses", "Create Date", "Status",
}

// designationOrder fixes the sheet order; unknown designations follow in first-seen order.
var designationOrder = []models.Designation{
	models.DesignationHR, models.DesignationManager, models.DesignationSales,
}

type Generator struct {
	file *excelize.File
}

func NewGenerator() *Generator {
	return &Generator{file: excelize.NewFile()}
}

// GenerateEmployeeReport writes one sheet per designation, rows kept in the given order.
func GenerateEmployeeReport(employees []models.Employee) (*bytes.Buffer, error) {
	if len(employees) == 0 {
		return nil, ErrNoEmployees
	}

	byDesignation := make(map[models.Designation][]models.Employee)
	order := append([]models.Designation(nil), designationOrder...)
	for _, emp := range employees {
		if !slices.Contains(order, emp.Designation) {
			order = append(order, emp.Designation)
		}
		byDesignation[emp.Designation] = append(byDesignation[emp.Designation], emp)
	}

	gen := NewGenerator()
	defer gen.file.Close()

	for _, d := range order {
		rows, ok := byDesignation[d]
		if !ok {
			continue
		}
		if err := gen.addSheet(sheetName(d), rows); err != nil {
			return nil, err
		}
	}

	if sheetIndex, _ := gen.file.GetSheetIndex("Sheet1"); sheetIndex != -1 {
		if err := gen.file.DeleteSheet("Sheet1"); err != nil {
			return nil, fmt.Errorf("failed to delete default sheet 'Sheet1': %w", err)
		}
	}
	gen.file.SetActiveSheet(0)

	buffer, err := gen.file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buffer, nil
}

func (g *Generator) addSheet(name string, employees []models.Employee) error {
	if _, err := g.file.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet '%s': %w", name, err)
	}
	if err := g.setupSheet(name, len(employees)); err != nil {
		return fmt.Errorf("failed to setup sheet '%s': %w", name, err)
	}
	for i, emp := range employees {
		if err := g.addRow(name, i+2, emp); err != nil { // row 1 is the header
			return fmt.Errorf("failed to add row %d: %w", i+2, err)
		}
	}
	return nil
}

func (g *Generator) setupSheet(name string, rowCount int) error {
	headerStyle, err := g.file.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4F81BD"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "center", Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err = g.file.SetSheetRow(name, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err = g.file.SetCellStyle(name, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	widths := map[string]float64{"A": 12, "B": 24, "C": 32, "D": 14, "E": 8, "F": 16, "G": 14, "H": 10}
	for col, width := range widths {
		if err = g.file.SetColWidth(name, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	return g.file.AddTable(name, &excelize.Table{
		Range:     fmt.Sprintf("A1:%s%d", lastCol, rowCount+1),
		Name:      "table_" + strings.ReplaceAll(name, " ", ""),
		StyleName: "TableStyleMedium9",
	})
}

func (g *Generator) addRow(name string, rowNum int, emp models.Employee) error {
	status := "Inactive"
	if emp.IsActive {
		status = "Active"
	}
	rowData := []interface{}{
		emp.EmployeeCode,
		emp.Name,
		emp.Email,
		emp.Mobile,
		string(emp.Gender),
		strings.Join(emp.Courses, ", "),
		emp.CreatedAt.Format("02.01.2006"),
		status,
	}
	cell, _ := excelize.CoordinatesToCellName(1, rowNum)
	if err := g.file.SetSheetRow(name, cell, &rowData); err != nil {
		return fmt.Errorf("failed to set sheet row: %w", err)
	}
	return nil
}

func sheetName(d models.Designation) string {
	name := string(d)
	if name == "" {
		name = "Unassigned"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
