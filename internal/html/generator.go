package html

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mabhi256/medi/internal/report"
)

// Embed template files at compile time
//
//go:embed templates/template.html
var htmlTemplate string

//go:embed templates/styles.css
var cssContent string

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"isBold": func(s report.Span) bool { return s.Kind == report.Bold },
}).Parse(htmlTemplate))

// HTMLReportData contains all data needed for the single-file HTML report
type HTMLReportData struct {
	FileName    string
	GeneratedAt string
	Sections    []HTMLSection
	Disclaimer  string
	CSS         template.CSS
}

type HTMLSection struct {
	Title  string
	Icon   string
	Accent string
	Groups []BlockGroup
}

// BlockGroup is a run of consecutive blocks of the same kind, so bullet
// items can share one <ul>
type BlockGroup struct {
	List   bool
	Blocks []report.Block
}

// WriteHTMLReport renders doc as a self-contained HTML page
func WriteHTMLReport(w io.Writer, doc report.Document) error {
	if len(doc.Sections) == 0 {
		return fmt.Errorf("invalid report data: no sections")
	}

	data := HTMLReportData{
		FileName:    doc.FileName,
		GeneratedAt: doc.GeneratedAt.Format(time.RFC1123),
		Disclaimer:  report.Disclaimer,
		CSS:         template.CSS(cssContent),
	}

	for _, section := range doc.Sections {
		data.Sections = append(data.Sections, HTMLSection{
			Title:  section.Title,
			Icon:   section.Specialist.Icon(),
			Accent: string(section.Specialist.Accent()),
			Groups: groupBlocks(section.Blocks),
		})
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// GenerateHTMLReport writes doc to outputPath (or a timestamped default) and
// returns the absolute path written.
func GenerateHTMLReport(doc report.Document, outputPath string) (string, error) {
	absPath, err := GetOutputPath(outputPath)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := WriteHTMLReport(&buf, doc); err != nil {
		return "", err
	}

	if err := os.WriteFile(absPath, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write HTML file: %w", err)
	}

	return absPath, nil
}

func groupBlocks(blocks []report.Block) []BlockGroup {
	var groups []BlockGroup
	for _, block := range blocks {
		list := block.Kind == report.BulletItem
		if n := len(groups); n > 0 && groups[n-1].List == list {
			groups[n-1].Blocks = append(groups[n-1].Blocks, block)
			continue
		}
		groups = append(groups, BlockGroup{List: list, Blocks: []report.Block{block}})
	}
	return groups
}

// GetOutputPath returns a safe output path, creating directories if needed
func GetOutputPath(path string) (string, error) {
	outputPath := path
	if outputPath == "" {
		outputPath = GetDefaultOutputPath()
	}

	// Ensure .html extension
	if !strings.HasSuffix(strings.ToLower(outputPath), ".html") {
		outputPath += ".html"
	}

	absPath, err := filepath.Abs(outputPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for %s: %w", outputPath, err)
	}

	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	return absPath, nil
}

// GetDefaultOutputPath returns a default HTML output path
func GetDefaultOutputPath() string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("medi-analysis-%s.html", timestamp)
}
