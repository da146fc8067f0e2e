package sheet

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/worker"
)

const (
	summarySheet   = "Summary"
	responsesSheet = "Responses"
	failuresSheet  = "Failures"
)

var summaryHeader = []interface{}{
	"Subject", "Archetype", "Classification Confidence", "Score", "Stage",
	"Percentile", "Score Confidence", "Real Answers", "Operational Risk",
	"TRD", "AER", "HFP", "BRI", "RRG",
}

var responsesHeader = []interface{}{
	"Subject", "Dimension", "Name", "Value", "Unit", "Score", "Source", "Confidence",
}

// SaveResults writes batch results to an xlsx workbook at path.
func SaveResults(path string, results []*worker.AssessResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create workbook: %w", err)
	}
	if err := WriteResults(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// WriteResults writes one summary row per successful report, one row per
// dimension response, and a failures sheet when any input failed.
func WriteResults(w io.Writer, results []*worker.AssessResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(responsesSheet); err != nil {
		return fmt.Errorf("add sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	if err := writeHeader(f, summarySheet, summaryHeader, bold); err != nil {
		return err
	}
	if err := writeHeader(f, responsesSheet, responsesHeader, bold); err != nil {
		return err
	}

	summaryRow, responseRow := 2, 2
	var failed []*worker.AssessResult
	for _, res := range results {
		if res.Error != nil || res.Report == nil {
			failed = append(failed, res)
			continue
		}
		if err := setRow(f, summarySheet, summaryRow, summaryValues(res.Report)); err != nil {
			return err
		}
		summaryRow++

		for _, resp := range res.Report.Responses {
			if err := setRow(f, responsesSheet, responseRow, responseValues(res.Report, resp)); err != nil {
				return err
			}
			responseRow++
		}
	}

	if len(failed) > 0 {
		if _, err := f.NewSheet(failuresSheet); err != nil {
			return fmt.Errorf("add sheet: %w", err)
		}
		if err := writeHeader(f, failuresSheet, []interface{}{"Subject", "Error"}, bold); err != nil {
			return err
		}
		for i, res := range failed {
			msg := "no report"
			if res.Error != nil {
				msg = res.Error.Error()
			}
			if err := setRow(f, failuresSheet, i+2, []interface{}{res.Subject, msg}); err != nil {
				return err
			}
		}
	}

	if err := f.SetColWidth(summarySheet, "A", "A", 32); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 24); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func summaryValues(r *model.Report) []interface{} {
	c := r.Composite
	row := []interface{}{
		r.Subject,
		r.Classification.Name,
		r.Classification.Confidence,
		c.Score,
		string(c.Stage),
		c.Percentile,
		c.Confidence,
		c.RealAnswers,
		string(r.Interpretation.OperationalRisk),
	}
	for _, contrib := range c.Contributions {
		row = append(row, contrib.Score)
	}
	return row
}

func responseValues(r *model.Report, resp model.DimensionResponse) []interface{} {
	source := "answered"
	if resp.Inferred {
		source = "inferred"
	}
	return []interface{}{
		r.Subject,
		resp.Dimension.String(),
		resp.Dimension.Name(),
		resp.Value,
		resp.Dimension.Unit(),
		resp.Score,
		source,
		resp.Confidence,
	}
}

func writeHeader(f *excelize.File, sheet string, header []interface{}, style int) error {
	if err := setRow(f, sheet, 1, header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, style); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, start, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}
