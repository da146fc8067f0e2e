// Package sheet reads batch assessment inputs from xlsx or csv files and
// writes finished batches back out as xlsx workbooks.
package sheet

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/dii/internal/convert"
	"github.com/ppiankov/dii/internal/model"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither .xlsx nor .csv.
	ErrUnsupportedFormat = errors.New("unsupported sheet format")
	// ErrNoRows is returned when a sheet has a header but no data.
	ErrNoRows = errors.New("sheet needs a header row and at least one data row")
	// ErrNoSubjectColumn is returned when neither a name nor a url column exists.
	ErrNoSubjectColumn = errors.New("sheet needs a name or url column")
)

// IsSheet reports whether path looks like a spreadsheet this package reads.
func IsSheet(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".csv":
		return true
	}
	return false
}

// ReadFile reads assessment inputs from an .xlsx or .csv file.
func ReadFile(path string) ([]model.AssessmentInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open sheet: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f, path)
}

// Read parses inputs from r. The format is chosen from name's extension.
// Only the first worksheet of a workbook is read.
func Read(r io.Reader, name string) ([]model.AssessmentInput, error) {
	var rows [][]string
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx":
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		defer func() { _ = f.Close() }()
		rows, err = f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("read rows: %w", err)
		}
	case ".csv":
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.TrimLeadingSpace = true
		var err error
		rows, err = cr.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("parse csv: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
	return ParseRows(rows)
}

// columns maps input fields to header positions; -1 means absent.
type columns struct {
	name, url, domain, industry, description, country int
	employees, revenue, archetype                      int
	stores, b2b, regulated, critical                   int
	dims                                               [model.DimensionCount]int
}

func locate(header []string) columns {
	c := columns{
		name:        findIndex(header, "name", "company", "company_name", "organization"),
		url:         findIndex(header, "url", "website", "site"),
		domain:      findIndex(header, "domain"),
		industry:    findIndex(header, "industry", "sector"),
		description: findIndex(header, "description", "about"),
		country:     findIndex(header, "country", "region"),
		employees:   findIndex(header, "employees", "headcount"),
		revenue:     findIndex(header, "revenue", "annual_revenue"),
		archetype:   findIndex(header, "archetype", "archetype_id", "business_model"),
		stores:      findIndex(header, "has_physical_stores", "physical_stores", "stores"),
		b2b:         findIndex(header, "is_b2b", "b2b"),
		regulated:   findIndex(header, "is_regulated", "regulated"),
		critical:    findIndex(header, "critical_infrastructure", "critical_infra"),
	}
	for _, d := range model.AllDimensions() {
		c.dims[d] = findIndex(header, d.String(), d.Name())
	}
	return c
}

// ParseRows turns a header row plus data rows into inputs. Blank rows are
// skipped. Dimension columns are headed by the tag ("TRD") or the full
// dimension name, and empty cells leave the dimension unanswered.
func ParseRows(rows [][]string) ([]model.AssessmentInput, error) {
	if len(rows) < 2 {
		return nil, ErrNoRows
	}
	cols := locate(rows[0])
	if cols.name < 0 && cols.url < 0 {
		return nil, ErrNoSubjectColumn
	}

	var out []model.AssessmentInput
	for i, row := range rows[1:] {
		line := i + 2
		if blank(row) {
			continue
		}
		in, err := parseRow(cols, row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		if in.Profile.Name == "" && in.URL == "" {
			return nil, fmt.Errorf("row %d: name or url is required", line)
		}
		out = append(out, in)
	}
	if len(out) == 0 {
		return nil, ErrNoRows
	}
	return out, nil
}

func parseRow(c columns, row []string) (model.AssessmentInput, error) {
	in := model.AssessmentInput{
		URL: cell(row, c.url),
		Profile: model.CompanyProfile{
			Name:                   cell(row, c.name),
			Domain:                 cell(row, c.domain),
			Industry:               cell(row, c.industry),
			Description:            cell(row, c.description),
			Country:                cell(row, c.country),
			HasPhysicalStores:      flag(cell(row, c.stores)),
			IsB2B:                  flag(cell(row, c.b2b)),
			IsRegulated:            flag(cell(row, c.regulated)),
			CriticalInfrastructure: flag(cell(row, c.critical)),
		},
	}

	if v := cell(row, c.employees); v != "" {
		n, err := number(v)
		if err != nil {
			return in, fmt.Errorf("employees: %w", err)
		}
		in.Profile.Employees = int(n)
	}
	if v := cell(row, c.revenue); v != "" {
		n, err := number(v)
		if err != nil {
			return in, fmt.Errorf("revenue: %w", err)
		}
		in.Profile.Revenue = n
	}
	if v := cell(row, c.archetype); v != "" {
		id, err := model.ParseArchetypeID(v)
		if err != nil {
			return in, err
		}
		in.Archetype = id
	}

	for _, d := range model.AllDimensions() {
		v := cell(row, c.dims[d])
		if v == "" {
			continue
		}
		n, err := number(v)
		if err != nil {
			return in, fmt.Errorf("%s: %w", d, err)
		}
		if err := convert.Validate(d, n); err != nil {
			return in, err
		}
		if in.Answers == nil {
			in.Answers = make(map[model.Dimension]float64, model.DimensionCount)
		}
		in.Answers[d] = n
	}
	return in, nil
}

func findIndex(header []string, candidates ...string) int {
	for _, candidate := range candidates {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), candidate) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// number accepts spreadsheet-style figures such as "$150,000", "85%" or "2.5x".
func number(s string) (float64, error) {
	clean := strings.NewReplacer("$", "", ",", "", "%", "", " ", "").Replace(s)
	clean = strings.TrimSuffix(strings.ToLower(clean), "x")
	n, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return n, nil
}

func flag(s string) bool {
	switch strings.ToLower(s) {
	case "1", "true", "yes", "y", "x":
		return true
	}
	return false
}
