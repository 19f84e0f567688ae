package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func plain(s string) Span { return Span{Kind: PlainText, Text: s} }
func bold(s string) Span  { return Span{Kind: Bold, Text: s} }

func para(spans ...Span) Block   { return Block{Kind: Paragraph, Spans: spans} }
func bullet(spans ...Span) Block { return Block{Kind: BulletItem, Spans: spans} }

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Block
	}{
		{"empty", "", nil},
		{"only blank lines", "\n   \n\t\n", nil},
		{"plain line", "plain line", []Block{para(plain("plain line"))}},
		{"bold only", "**bold**", []Block{para(bold("bold"))}},
		{"dash bullet", "- item one", []Block{bullet(plain("item one"))}},
		{"dot bullet", "• item two", []Block{bullet(plain("item two"))}},
		{"star bullet", "* item three", []Block{bullet(plain("item three"))}},
		{"bullet starting bold", "- **bold** rest", []Block{bullet(bold("bold"), plain(" rest"))}},
		{"star bullet starting bold", "* **Risk:** low", []Block{bullet(bold("Risk:"), plain(" low"))}},
		{"blank line dropped", "line1\n\nline2", []Block{para(plain("line1")), para(plain("line2"))}},
		{"surrounding whitespace trimmed", "   padded   \r\n", []Block{para(plain("padded"))}},
		{
			"mixed spans",
			"Heart rate **72 bpm** and BP **120/80** noted",
			[]Block{para(plain("Heart rate "), bold("72 bpm"), plain(" and BP "), bold("120/80"), plain(" noted"))},
		},
		{"adjacent bold runs", "**a****b**", []Block{para(bold("a"), bold("b"))}},
		{"unmatched marker kept", "odd ** marker", []Block{para(plain("odd ** marker"))}},
		{"trailing unmatched", "**ok** then **", []Block{para(bold("ok"), plain(" then **"))}},
		{"triple stars literal", "***text***", []Block{para(bold("*text"), plain("*"))}},
		{"marker without space is text", "-item", []Block{para(plain("-item"))}},
		{"indented bullet", "    - nested", []Block{bullet(plain("nested"))}},
		{"extra space after marker", "-   spaced", []Block{bullet(plain("spaced"))}},
		{"bare marker", "-", []Block{bullet(plain(""))}},
		{"bare dot marker", "  •  ", []Block{bullet(plain(""))}},
		{"dash inside later span kept", "- a **b** - c", []Block{bullet(plain("a "), bold("b"), plain(" - c"))}},
		{
			"order preserved",
			"**Summary**\n- first\nmiddle\n* last",
			[]Block{para(bold("Summary")), bullet(plain("first")), para(plain("middle")), bullet(plain("last"))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input))
		})
	}
}

func TestParseLineBareMarkerAfterTrim(t *testing.T) {
	assert.Equal(t, bullet(plain("")), parseLine("*"))
}

func TestParseOddMarkersNeverDropText(t *testing.T) {
	inputs := []string{
		"**",
		"a **b** c **",
		"** leading only",
		"- **unterminated bold",
		"x ** y ** z **",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, 1, strings.Count(input, "**")%2, "fixture must have an odd marker count")

			blocks := Parse(input)
			if assert.Len(t, blocks, 1) {
				last := blocks[0].Spans[len(blocks[0].Spans)-1]
				assert.Equal(t, PlainText, last.Kind)
				assert.Contains(t, last.Text, "**")
			}
		})
	}
}

func TestParseIsDeterministic(t *testing.T) {
	input := "**Findings**\n- Mild **tachycardia**\n\nFollow up in 2 weeks"
	first := Parse(input)
	second := Parse(input)
	assert.Equal(t, first, second)

	// Blocks are fresh on every call
	first[0].Spans[0].Text = "mutated"
	assert.Equal(t, "Findings", Parse(input)[0].Spans[0].Text)
}

func TestBlockText(t *testing.T) {
	blocks := Parse("- **Note:** rest")
	assert.Equal(t, "Note: rest", blocks[0].Text())
}
