package html

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mabhi256/medi/internal/analysis"
	"github.com/mabhi256/medi/internal/report"
)

func sampleDocument() report.Document {
	return report.FromResult("scan.pdf", &analysis.Result{
		Cardiologist:  "**Rhythm** regular\n- **HR:** 72\n- BP 120/80",
		Psychologist:  "Anxiety <script>alert(1)</script> noted",
		Pulmonologist: "Clear lungs",
		Team:          "- Follow up",
	})
}

func TestWriteHTMLReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTMLReport(&buf, sampleDocument()))
	out := buf.String()

	assert.Contains(t, out, "<title>Analysis Results - scan.pdf</title>")
	assert.Contains(t, out, "<p><strong>Rhythm</strong> regular</p>")
	assert.Contains(t, out, "<li><strong>HR:</strong> 72</li>")
	assert.Contains(t, out, "Multidisciplinary Team")
	assert.Contains(t, out, report.Disclaimer)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Equal(t, 2, strings.Count(out, "<ul>"), "cardiologist and team lists")
}

func TestWriteHTMLReportRejectsEmpty(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteHTMLReport(&buf, report.Document{}))
}

func TestGenerateHTMLReportAddsExtension(t *testing.T) {
	dir := t.TempDir()
	path, err := GenerateHTMLReport(sampleDocument(), filepath.Join(dir, "nested", "out"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "nested", "out.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<!DOCTYPE html>")
}

func TestGroupBlocks(t *testing.T) {
	groups := groupBlocks(report.Parse("a\n- b\n- c\nd\ne"))
	require.Len(t, groups, 3)
	assert.False(t, groups[0].List)
	assert.True(t, groups[1].List)
	assert.Len(t, groups[1].Blocks, 2)
	assert.Len(t, groups[2].Blocks, 2)
}
