package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider asks Gemini for annotation suggestions. With no API key
// the provider stays in fallback mode and never touches the network.
type GeminiProvider struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGeminiProvider builds the provider. An empty apiKey yields a
// disabled provider whose Suggest always returns the neutral fallback.
func NewGeminiProvider(ctx context.Context, apiKey, model string, logger *slog.Logger) (*GeminiProvider, error) {
	if apiKey == "" {
		logger.Info("Gemini API key not configured, suggestion provider running in fallback mode")
		return &GeminiProvider{model: model, logger: logger}, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiProvider{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Enabled reports whether a live model backs this provider.
func (p *GeminiProvider) Enabled() bool {
	return p.client != nil
}

// Suggest returns annotation suggestions for the question. Provider
// errors degrade to the neutral fallback so a flaky model never blocks
// an authoring flow.
func (p *GeminiProvider) Suggest(ctx context.Context, req SuggestionRequest) (*Suggestion, error) {
	if p.client == nil {
		return FallbackSuggestion(req), nil
	}

	vocabulary := PrefilterVocabulary(req.QuestionText, req.Vocabulary)
	prompt := buildPrompt(req, vocabulary)

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(prompt), nil)
	if err != nil {
		p.logger.Warn("Gemini request failed, returning fallback suggestion", "error", err)
		return FallbackSuggestion(req), nil
	}
	if result == nil {
		return FallbackSuggestion(req), nil
	}

	text, err := result.Text()
	if err != nil || text == "" {
		p.logger.Warn("Gemini returned no usable text, returning fallback suggestion", "error", err)
		return FallbackSuggestion(req), nil
	}

	suggestion, ok := ParseSuggestion(text, vocabulary, req.QuestionText)
	if !ok {
		p.logger.Warn("Could not parse Gemini output, returning fallback suggestion")
		return FallbackSuggestion(req), nil
	}

	return suggestion, nil
}

// Refine asks the model to clean up a question's LaTeX markup without
// changing its meaning. Any failure returns the content untouched.
func (p *GeminiProvider) Refine(ctx context.Context, content string) (string, error) {
	if p.client == nil {
		return content, nil
	}

	var b strings.Builder
	b.WriteString("Fix the LaTeX markup in the following exam question content.\n")
	b.WriteString("Correct broken math delimiters and commands only; do not change wording,\n")
	b.WriteString("numbers or meaning. Respond with the corrected content and nothing else.\n\n")
	b.WriteString(content)

	result, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(b.String()), nil)
	if err != nil {
		p.logger.Warn("Gemini refine request failed, returning original content", "error", err)
		return content, nil
	}
	if result == nil {
		return content, nil
	}

	text, err := result.Text()
	if err != nil || strings.TrimSpace(text) == "" {
		p.logger.Warn("Gemini refine returned no usable text, returning original content", "error", err)
		return content, nil
	}

	return strings.TrimSpace(text), nil
}

func buildPrompt(req SuggestionRequest, vocabulary []string) string {
	var b strings.Builder
	b.WriteString("You are annotating an exam question for an admin content tool.\n")
	b.WriteString("Respond with a single JSON object, no prose, shaped exactly as:\n")
	b.WriteString(`{"skillTags": [...], "title": "...", "difficulty": 1-10, "questionText": "..."}` + "\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("- skillTags must be chosen ONLY from the allowed list below, up to 3 entries.\n")
	b.WriteString("- title is a short descriptive name, at most 10 words.\n")
	b.WriteString("- difficulty is an integer 1 (trivial) to 10 (hardest).\n")
	b.WriteString("- questionText is the cleaned-up question statement, semantics unchanged.\n\n")

	if req.Exam != "" {
		fmt.Fprintf(&b, "Target exam: %s\n", req.Exam)
	}
	b.WriteString("Allowed skill tags: ")
	b.WriteString(strings.Join(vocabulary, ", "))
	b.WriteString("\n\nQuestion:\n")
	b.WriteString(req.QuestionText)
	if req.DetailedAnswer != "" {
		b.WriteString("\n\nReference answer:\n")
		b.WriteString(req.DetailedAnswer)
	}
	return b.String()
}
