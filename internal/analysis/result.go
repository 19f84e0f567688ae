package analysis

import "github.com/charmbracelet/lipgloss"

// Result holds the four reports returned by a successful analysis.
type Result struct {
	Cardiologist  string `json:"cardiologist_report"`
	Psychologist  string `json:"psychologist_report"`
	Pulmonologist string `json:"pulmonologist_report"`
	Team          string `json:"multidisciplinary_summary"`
}

type Specialist int

const (
	Cardiologist Specialist = iota
	Psychologist
	Pulmonologist
	Team
)

func (s Specialist) String() string {
	switch s {
	case Cardiologist:
		return "Cardiologist"
	case Psychologist:
		return "Psychologist"
	case Pulmonologist:
		return "Pulmonologist"
	case Team:
		return "Multidisciplinary Team"
	default:
		return "Unknown"
	}
}

// Short is the label used where space is tight (tab bars)
func (s Specialist) Short() string {
	switch s {
	case Cardiologist:
		return "Cardio"
	case Psychologist:
		return "Psycho"
	case Pulmonologist:
		return "Pulmo"
	case Team:
		return "Team"
	default:
		return "?"
	}
}

func (s Specialist) Icon() string {
	switch s {
	case Cardiologist:
		return "❤️"
	case Psychologist:
		return "🧠"
	case Pulmonologist:
		return "🫁"
	case Team:
		return "👥"
	default:
		return "•"
	}
}

// Accent is the colour associated with the specialist across renderers
func (s Specialist) Accent() lipgloss.Color {
	switch s {
	case Cardiologist:
		return lipgloss.Color("#F87171") // red-400
	case Psychologist:
		return lipgloss.Color("#C084FC") // purple-400
	case Pulmonologist:
		return lipgloss.Color("#2DD4BF") // teal-400
	case Team:
		return lipgloss.Color("#FBBF24") // amber-400
	default:
		return lipgloss.Color("#CCCCCC")
	}
}

// Progress is the step label shown while the specialist is working
func (s Specialist) Progress() string {
	if s == Team {
		return "Team consolidating..."
	}
	return s.String() + " analyzing..."
}

func AllSpecialists() []Specialist {
	return []Specialist{Cardiologist, Psychologist, Pulmonologist, Team}
}

// Report returns the raw report text written by s
func (r *Result) Report(s Specialist) string {
	switch s {
	case Cardiologist:
		return r.Cardiologist
	case Psychologist:
		return r.Psychologist
	case Pulmonologist:
		return r.Pulmonologist
	case Team:
		return r.Team
	default:
		return ""
	}
}
