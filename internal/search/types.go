package search

import "semantic-ats/internal/candidate"

// Mode selects which named vector a query is compared against.
type Mode string

const (
	// ModeStory searches the career-story narratives.
	ModeStory Mode = "story"
	// ModePersonality searches the personality analyses.
	ModePersonality Mode = "personality"
	// ModeResume searches the raw resume text.
	ModeResume Mode = "resume"
)

// Valid reports whether the mode is one of the three supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeStory, ModePersonality, ModeResume:
		return true
	}
	return false
}

// VectorName returns the named vector this mode queries.
func (m Mode) VectorName() string {
	switch m {
	case ModeStory:
		return candidate.VectorStory
	case ModePersonality:
		return candidate.VectorPersonality
	default:
		return candidate.VectorResume
	}
}

// Result is one candidate hit. Score is normalized to [0, 1]. Narrative
// fields are empty when the candidate record lacks them.
type Result struct {
	Filename    string  `json:"filename"`
	Score       float64 `json:"score"`
	Story       string  `json:"story,omitempty"`
	Personality string  `json:"personality,omitempty"`
	RawText     string  `json:"rawText,omitempty"`
}
