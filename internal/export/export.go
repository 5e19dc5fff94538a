// Package export writes a run's records to a downloadable tabular file.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-jobscout/internal/models"
	"go-jobscout/internal/pdf"

	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// FileName is "<kind>s_<keyword|all>_<city|any>_<20060102_150405>.<ext>".
func FileName(q models.SearchQuery, at time.Time, format string) string {
	return fmt.Sprintf("%ss_%s_%s.%s", q.Kind, q.Slug(), at.Format("20060102_150405"), format)
}

// Header lists the export columns; salary only for jobs.
func Header(kind models.ListingKind) []string {
	h := []string{"position", "company", "url", "experience_years", "required_skills"}
	if kind == models.KindJob {
		h = append(h, "salary")
	}
	return h
}

// Row flattens a record in Header order. Skills are joined with "; ".
func Row(rec models.ListingRecord, kind models.ListingKind) []string {
	row := []string{
		rec.Position,
		rec.Company,
		rec.URL,
		strconv.Itoa(rec.ExperienceYears),
		strings.Join(rec.RequiredSkills, "; "),
	}
	if kind == models.KindJob {
		row = append(row, rec.Salary)
	}
	return row
}

type PDFRenderer interface {
	Generate(r pdf.Report) ([]byte, error)
}

type Exporter struct {
	dir    string
	format string
	pdf    PDFRenderer
	now    func() time.Time
}

func New(dir, format string) *Exporter {
	return &Exporter{dir: dir, format: format, pdf: pdf.NewGenerator(), now: time.Now}
}

// Export writes result under the downloads dir and returns the file path.
func (e *Exporter) Export(q models.SearchQuery, result *models.RunResult) (string, error) {
	return e.ExportAs(q, result, e.format)
}

func (e *Exporter) ExportAs(q models.SearchQuery, result *models.RunResult, format string) (string, error) {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return "", fmt.Errorf("create downloads dir: %w", err)
	}
	at := e.now()
	path := filepath.Join(e.dir, FileName(q, at, format))

	var err error
	switch format {
	case FormatXLSX:
		err = WriteXLSX(path, q.Kind, result.Records)
	case FormatCSV:
		err = WriteCSV(path, q.Kind, result.Records)
	case FormatPDF:
		var data []byte
		data, err = e.pdf.Generate(pdf.NewReport(q, result, at))
		if err == nil {
			err = pdf.SaveToFile(data, path)
		}
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

func WriteCSV(path string, kind models.ListingKind, records []models.ListingRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header(kind)); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write(Row(rec, kind)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func WriteXLSX(path string, kind models.ListingKind, records []models.ListingRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Listings"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	header := Header(kind)
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
		return err
	}

	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{rec.Position, rec.Company, rec.URL, rec.ExperienceYears, strings.Join(rec.RequiredSkills, "; ")}
		if kind == models.KindJob {
			row = append(row, rec.Salary)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "B", 32)
	_ = f.SetColWidth(sheet, "C", "C", 60)
	_ = f.SetColWidth(sheet, "E", "E", 48)
	return f.SaveAs(path)
}
