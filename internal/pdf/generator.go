package pdf

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go-jobscout/internal/models"

	"github.com/playwright-community/playwright-go"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/report.html
var templates embed.FS

var reportTmpl = template.Must(template.New("report.html").Funcs(template.FuncMap{
	"join":     strings.Join,
	"joinInts": joinInts,
}).ParseFS(templates, "templates/report.html"))

type Report struct {
	Title       string
	GeneratedAt string
	WithSalary  bool
	Result      *models.RunResult
}

func NewReport(q models.SearchQuery, result *models.RunResult, at time.Time) Report {
	title := fmt.Sprintf("%s listings", cases.Title(language.English).String(string(q.Kind)))
	if q.Keyword != "" {
		title += " for " + q.Keyword
	}
	if q.City != "" {
		title += " in " + q.City
	}
	return Report{
		Title:       title,
		GeneratedAt: at.Format("2006-01-02 15:04"),
		WithSalary:  q.Kind == models.KindJob,
		Result:      result,
	}
}

// RenderHTML executes the report template.
func RenderHTML(r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// Generator prints the HTML report to PDF with a headless Chromium.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(r Report) ([]byte, error) {
	htmlContent, err := RenderHTML(r)
	if err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	defer pw.Stop()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not launch chromium browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.NewPage()
	if err != nil {
		return nil, fmt.Errorf("could not create new page: %w", err)
	}
	defer page.Close()

	if err := page.SetContent(string(htmlContent), playwright.PageSetContentOptions{
		WaitUntil: playwright.WaitUntilStateLoad,
	}); err != nil {
		return nil, fmt.Errorf("could not set page content: %w", err)
	}

	pdfBytes, err := page.PDF(playwright.PagePdfOptions{
		Format:          playwright.String("A4"),
		Landscape:       playwright.Bool(true),
		PrintBackground: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("could not generate PDF: %w", err)
	}
	return pdfBytes, nil
}

// SaveToFile writes the PDF, creating parent directories.
func SaveToFile(pdfBytes []byte, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("could not create directory: %w", err)
	}
	return os.WriteFile(outputPath, pdfBytes, 0644)
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
