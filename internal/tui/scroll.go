package tui

import (
	"fmt"
	"strings"

	"github.com/mabhi256/medi/internal/analysis"
	"github.com/mabhi256/medi/utils"
)

func (m *Model) applyScrolling(content string, viewportHeight int) string {
	lines := strings.Split(content, "\n")
	totalLines := len(lines)

	// No scrolling needed if content fits
	if totalLines <= viewportHeight {
		return content
	}

	scrollPos := m.scrollPositions[m.activeTab]

	maxScroll := totalLines - viewportHeight
	if scrollPos > maxScroll {
		scrollPos = maxScroll
		m.scrollPositions[m.activeTab] = scrollPos
	}
	if scrollPos < 0 {
		scrollPos = 0
		m.scrollPositions[m.activeTab] = scrollPos
	}

	endPos := scrollPos + viewportHeight
	visibleLines := lines[scrollPos:endPos]

	if scrollPos > 0 || endPos < totalLines {
		// Replace last line with scroll indicator
		scrollInfo := fmt.Sprintf("%s (Line %d-%d of %d) %s",
			MutedStyle.Render("▲"),
			scrollPos+1,
			endPos,
			totalLines,
			MutedStyle.Render("▼"))

		if len(visibleLines) > 0 {
			visibleLines[len(visibleLines)-1] = scrollInfo
		}
	}

	return strings.Join(visibleLines, "\n")
}

func (m *Model) scrollUp(lines int) {
	currentPos := m.scrollPositions[m.activeTab]
	m.scrollPositions[m.activeTab] = max(currentPos-lines, 0)
}

func (m *Model) scrollDown(lines int) {
	currentPos := m.scrollPositions[m.activeTab]
	m.scrollPositions[m.activeTab] = currentPos + lines
	// Max scroll validation happens in applyScrolling()
}

func nextTab(current, last analysis.Specialist) analysis.Specialist {
	return utils.GetNextEnum(current, last)
}

func prevTab(current, last analysis.Specialist) analysis.Specialist {
	return utils.GetPrevEnum(current, last)
}
