// Package report turns the lightly marked-up text written by the specialists
// into blocks and renders them for the terminal, markdown and HTML.
package report

import (
	"regexp"
	"strings"
	"unicode"
)

type BlockKind int

const (
	Paragraph BlockKind = iota
	BulletItem
)

func (k BlockKind) String() string {
	switch k {
	case Paragraph:
		return "paragraph"
	case BulletItem:
		return "bullet"
	default:
		return "unknown"
	}
}

type SpanKind int

const (
	PlainText SpanKind = iota
	Bold
)

func (k SpanKind) String() string {
	switch k {
	case PlainText:
		return "text"
	case Bold:
		return "bold"
	default:
		return "unknown"
	}
}

type Span struct {
	Kind SpanKind `json:"kind"`
	Text string   `json:"text"`
}

type Block struct {
	Kind  BlockKind `json:"kind"`
	Spans []Span    `json:"spans"`
}

// BulletMarkers are the line prefixes that turn a line into a list item
var BulletMarkers = []string{"- ", "• ", "* "}

// Non-greedy and leftmost, so pairs never overlap and a trailing odd "**"
// is left in the plain text.
var boldPattern = regexp.MustCompile(`\*\*(.*?)\*\*`)

// Parse splits text into blocks, one per non-blank line, in input order.
// It never fails; any string yields a (possibly empty) block list.
func Parse(text string) []Block {
	var blocks []Block

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		blocks = append(blocks, parseLine(trimmed))
	}

	return blocks
}

func parseLine(line string) Block {
	marker, bullet := bulletMarker(line)

	block := Block{Kind: Paragraph}
	if bullet {
		block.Kind = BulletItem
	}

	spans := splitBold(line)

	if bullet && len(spans) > 0 {
		first := &spans[0]
		first.Text = strings.TrimPrefix(first.Text, marker)
		first.Text = strings.TrimLeftFunc(first.Text, unicode.IsSpace)
		if first.Kind == PlainText && first.Text == "" {
			spans = spans[1:]
		}
	}

	if len(spans) == 0 {
		spans = []Span{{Kind: PlainText, Text: ""}}
	}

	block.Spans = spans
	return block
}

func bulletMarker(line string) (string, bool) {
	for _, marker := range BulletMarkers {
		if strings.HasPrefix(line, marker) {
			return marker, true
		}
	}

	// A marker whose trailing space was trimmed away along with the line
	for _, marker := range BulletMarkers {
		if line == strings.TrimSpace(marker) {
			return line, true
		}
	}
	return "", false
}

// splitBold cuts line into alternating plain and bold spans, dropping the
// empty plain fragments that appear around and between bold runs.
func splitBold(line string) []Span {
	var spans []Span
	last := 0

	for _, loc := range boldPattern.FindAllStringSubmatchIndex(line, -1) {
		if loc[0] > last {
			spans = append(spans, Span{Kind: PlainText, Text: line[last:loc[0]]})
		}
		spans = append(spans, Span{Kind: Bold, Text: line[loc[2]:loc[3]]})
		last = loc[1]
	}

	if last < len(line) {
		spans = append(spans, Span{Kind: PlainText, Text: line[last:]})
	}

	return spans
}

// Text returns the visible text of the block without markup
func (b Block) Text() string {
	var sb strings.Builder
	for _, span := range b.Spans {
		sb.WriteString(span.Text)
	}
	return sb.String()
}
