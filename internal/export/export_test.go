package export

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go-jobscout/internal/models"
	"go-jobscout/internal/pdf"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var fixedTime = time.Date(2024, 7, 9, 14, 5, 30, 0, time.UTC)

func sample() *models.RunResult {
	return &models.RunResult{
		Records: []models.ListingRecord{
			{Position: "Marketing Intern", Company: "Acme", URL: "https://x.example/1", ExperienceYears: 0, RequiredSkills: []string{"SEO", "Canva"}},
			{Position: "Sales, Intern", Company: "Beta \"B\"", URL: "https://x.example/2", ExperienceYears: 2, RequiredSkills: []string{}, Salary: "₹ 5,000"},
		},
		PagesProcessed: 2,
		SkippedPages:   []int{},
	}
}

func newTestExporter(t *testing.T, format string) *Exporter {
	e := New(t.TempDir(), format)
	e.now = func() time.Time { return fixedTime }
	return e
}

func TestFileName(t *testing.T) {
	q := models.SearchQuery{Keyword: "Digital Marketing", City: "delhi", Kind: models.KindInternship}
	assert.Equal(t, "internships_digital-marketing_delhi_20240709_140530.xlsx", FileName(q, fixedTime, FormatXLSX))

	q = models.SearchQuery{Kind: models.KindJob}
	assert.Equal(t, "jobs_all_any_20240709_140530.csv", FileName(q, fixedTime, FormatCSV))
}

func TestExport_CSV(t *testing.T) {
	e := newTestExporter(t, FormatCSV)
	q := models.SearchQuery{Keyword: "sales", Kind: models.KindJob}

	path, err := e.Export(q, sample())
	require.NoError(t, err)
	assert.Equal(t, "jobs_sales_any_20240709_140530.csv", filepath.Base(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"position", "company", "url", "experience_years", "required_skills", "salary"}, rows[0])
	assert.Equal(t, []string{"Marketing Intern", "Acme", "https://x.example/1", "0", "SEO; Canva", ""}, rows[1])
	assert.Equal(t, []string{"Sales, Intern", "Beta \"B\"", "https://x.example/2", "2", "", "₹ 5,000"}, rows[2])
}

func TestExport_XLSX(t *testing.T) {
	e := newTestExporter(t, FormatXLSX)
	q := models.SearchQuery{Keyword: "marketing", City: "delhi", Kind: models.KindInternship}

	path, err := e.Export(q, sample())
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Listings")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"position", "company", "url", "experience_years", "required_skills"}, rows[0])
	assert.Equal(t, []string{"Marketing Intern", "Acme", "https://x.example/1", "0", "SEO; Canva"}, rows[1])
}

type fakePDF struct {
	report pdf.Report
	err    error
}

func (f *fakePDF) Generate(r pdf.Report) ([]byte, error) {
	f.report = r
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func TestExport_PDF(t *testing.T) {
	e := newTestExporter(t, FormatPDF)
	renderer := &fakePDF{}
	e.pdf = renderer

	path, err := e.Export(models.SearchQuery{Kind: models.KindJob}, sample())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
	assert.True(t, renderer.report.WithSalary)

	renderer.err = errors.New("no browser")
	_, err = e.Export(models.SearchQuery{Kind: models.KindJob}, sample())
	assert.Error(t, err)
}

func TestExport_UnknownFormat(t *testing.T) {
	e := newTestExporter(t, FormatXLSX)
	_, err := e.ExportAs(models.SearchQuery{Kind: models.KindJob}, sample(), "docx")
	assert.Error(t, err)
}
