package llm

import (
	"context"
)

// SuggestionRequest carries the raw question content plus the chapter's
// tag vocabulary the model is allowed to pick from.
type SuggestionRequest struct {
	QuestionText   string   `json:"question_text"`
	DetailedAnswer string   `json:"detailed_answer,omitempty"`
	Exam           string   `json:"exam,omitempty"`
	Vocabulary     []string `json:"vocabulary"`
}

// Suggestion is the model's annotation proposal. Every field is advisory;
// the operator reviews before anything persists.
type Suggestion struct {
	SkillTags    []string `json:"skillTags"`
	Title        string   `json:"title"`
	Difficulty   int      `json:"difficulty"`
	QuestionText string   `json:"questionText"`
}

// SuggestionProvider produces annotation suggestions for a question.
// Implementations must degrade rather than fail: when the model is
// unreachable or unconfigured, Suggest returns a neutral fallback and a
// nil error.
type SuggestionProvider interface {
	Suggest(ctx context.Context, req SuggestionRequest) (*Suggestion, error)

	// Refine cleans up LaTeX markup without changing meaning; on any
	// failure the original content comes back unchanged.
	Refine(ctx context.Context, content string) (string, error)

	Enabled() bool
}

// FallbackSuggestion is the neutral result used whenever the model
// cannot be consulted: no tags, a placeholder title, mid-scale
// difficulty and the text untouched.
func FallbackSuggestion(req SuggestionRequest) *Suggestion {
	title := "Untitled Question"
	return &Suggestion{
		SkillTags:    []string{},
		Title:        title,
		Difficulty:   5,
		QuestionText: req.QuestionText,
	}
}
