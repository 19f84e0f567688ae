package report

import (
	"time"

	"github.com/mabhi256/medi/internal/analysis"
)

// Section is one specialist's report, parsed
type Section struct {
	Specialist analysis.Specialist `json:"-"`
	Title      string              `json:"title"`
	Raw        string              `json:"raw"`
	Blocks     []Block             `json:"blocks"`
}

// Document is a full analysis ready for rendering or export
type Document struct {
	FileName    string    `json:"file_name"`
	GeneratedAt time.Time `json:"generated_at"`
	Sections    []Section `json:"sections"`
}

// Disclaimer is appended to every rendered analysis
const Disclaimer = "This analysis is AI-generated and for informational purposes only. Always consult a qualified healthcare professional."

// FromResult parses each of the four reports independently
func FromResult(fileName string, result *analysis.Result) Document {
	doc := Document{
		FileName:    fileName,
		GeneratedAt: time.Now(),
	}

	for _, s := range analysis.AllSpecialists() {
		raw := result.Report(s)
		doc.Sections = append(doc.Sections, Section{
			Specialist: s,
			Title:      s.String(),
			Raw:        raw,
			Blocks:     Parse(raw),
		})
	}

	return doc
}

// Markdown renders the whole document as a markdown file
func (d Document) Markdown() string {
	out := "# Analysis Results"
	if d.FileName != "" {
		out += ": " + d.FileName
	}
	out += "\n"

	for _, section := range d.Sections {
		out += "\n## " + section.Title + "\n"
		if body := RenderMarkdown(section.Blocks); body != "" {
			out += "\n" + body + "\n"
		}
	}

	out += "\n---\n\n_" + Disclaimer + "_\n"
	return out
}
