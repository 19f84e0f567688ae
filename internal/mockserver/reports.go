package mockserver

import (
	"fmt"
	"strings"

	"github.com/mabhi256/medi/internal/analysis"
)

type finding struct {
	keywords []string
	note     string
}

var (
	cardioFindings = []finding{
		{[]string{"chest pain", "angina"}, "Chest discomfort reported; rule out **acute coronary syndrome**"},
		{[]string{"palpitation", "arrhythmia", "tachycardia"}, "Rhythm irregularity mentioned; consider **Holter monitoring**"},
		{[]string{"blood pressure", "hypertension", "bp "}, "Blood pressure noted; track **home readings** for two weeks"},
		{[]string{"cholesterol", "ldl"}, "Lipid values present; review **statin eligibility**"},
	}
	psychoFindings = []finding{
		{[]string{"anxiety", "panic", "stress"}, "Signs of **anxiety**; screen with a standard questionnaire"},
		{[]string{"sleep", "insomnia"}, "Sleep disturbance reported; assess **sleep hygiene**"},
		{[]string{"depress", "low mood"}, "Low mood noted; evaluate for **depressive disorder**"},
	}
	pulmoFindings = []finding{
		{[]string{"cough"}, "Persistent cough; consider **chest X-ray**"},
		{[]string{"shortness of breath", "dyspnea", "breathless"}, "Breathlessness reported; order **spirometry**"},
		{[]string{"smok"}, "Smoking history; discuss **cessation support**"},
		{[]string{"asthma", "wheez"}, "Wheeze or asthma mentioned; review **inhaler technique**"},
	}
)

// BuildResult produces four deterministic reports for text. The output uses
// the same light markup as the real service: **bold** runs and "- " bullets.
func BuildResult(filename, text string) analysis.Result {
	lower := strings.ToLower(text)
	lines := nonBlankLines(text)
	words := len(strings.Fields(text))

	cardio := specialistReport("Cardiac Assessment", lower, cardioFindings,
		"No cardiovascular red flags identified in the report.")
	psycho := specialistReport("Psychological Assessment", lower, psychoFindings,
		"No psychological concerns identified in the report.")
	pulmo := specialistReport("Pulmonary Assessment", lower, pulmoFindings,
		"No respiratory concerns identified in the report.")

	flagged := countFindings(lower, cardioFindings) + countFindings(lower, psychoFindings) + countFindings(lower, pulmoFindings)

	var team strings.Builder
	fmt.Fprintf(&team, "**Team Summary** for %s\n\n", filename)
	fmt.Fprintf(&team, "Reviewed %d lines (%d words) across three specialties.\n", len(lines), words)
	fmt.Fprintf(&team, "- **Findings flagged:** %d\n", flagged)
	if flagged == 0 {
		team.WriteString("- Routine follow-up with the primary care physician is sufficient\n")
	} else {
		team.WriteString("- Coordinate the recommended tests before the next visit\n")
		team.WriteString("- Re-evaluate once results are available\n")
	}

	return analysis.Result{
		Cardiologist:  cardio,
		Psychologist:  psycho,
		Pulmonologist: pulmo,
		Team:          team.String(),
	}
}

func specialistReport(title, lower string, findings []finding, none string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s**\n\n", title)

	matched := 0
	for _, f := range findings {
		if containsAny(lower, f.keywords) {
			fmt.Fprintf(&sb, "- %s\n", f.note)
			matched++
		}
	}
	if matched == 0 {
		sb.WriteString(none + "\n")
	}

	sb.WriteString("\n**Recommendation:** correlate with clinical examination.\n")
	return sb.String()
}

func countFindings(lower string, findings []finding) int {
	n := 0
	for _, f := range findings {
		if containsAny(lower, f.keywords) {
			n++
		}
	}
	return n
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
