package llm

import (
	"encoding/json"
	"strings"
)

// rawSuggestion mirrors the JSON shape the prompt asks the model for.
type rawSuggestion struct {
	SkillTags    []string `json:"skillTags"`
	Title        string   `json:"title"`
	Difficulty   int      `json:"difficulty"`
	QuestionText string   `json:"questionText"`
}

// ParseSuggestion turns raw model output into a Suggestion, tolerating
// the usual misbehavior: fenced code blocks, prose around the JSON, tags
// outside the allowed vocabulary, difficulty off the 1-10 scale. Returns
// false only when no JSON object can be recovered at all.
func ParseSuggestion(output string, vocabulary []string, fallbackText string) (*Suggestion, bool) {
	var raw rawSuggestion

	if !decodeLoose(output, &raw) {
		return nil, false
	}

	allowed := make(map[string]struct{}, len(vocabulary))
	for _, tag := range vocabulary {
		allowed[strings.ToLower(strings.TrimSpace(tag))] = struct{}{}
	}

	// Keep only vocabulary tags, preserving the vocabulary's casing via
	// the model's output order.
	tags := make([]string, 0, len(raw.SkillTags))
	seen := make(map[string]struct{})
	for _, tag := range raw.SkillTags {
		key := strings.ToLower(strings.TrimSpace(tag))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, strings.TrimSpace(tag))
	}

	title := strings.TrimSpace(raw.Title)
	if title == "" {
		title = "Untitled Question"
	}

	difficulty := raw.Difficulty
	if difficulty < 1 || difficulty > 10 {
		difficulty = 5
	}

	text := strings.TrimSpace(raw.QuestionText)
	if text == "" {
		text = fallbackText
	}

	return &Suggestion{
		SkillTags:    tags,
		Title:        title,
		Difficulty:   difficulty,
		QuestionText: text,
	}, true
}

// decodeLoose tries progressively messier interpretations of the output:
// the whole string as JSON, then a fenced code block, then the first
// top-level {...} span.
func decodeLoose(output string, dest *rawSuggestion) bool {
	trimmed := strings.TrimSpace(output)
	if json.Unmarshal([]byte(trimmed), dest) == nil {
		return true
	}

	if block, ok := extractFencedBlock(trimmed); ok {
		if json.Unmarshal([]byte(block), dest) == nil {
			return true
		}
	}

	if span, ok := extractObjectSpan(trimmed); ok {
		if json.Unmarshal([]byte(span), dest) == nil {
			return true
		}
	}

	return false
}

func extractFencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	// Skip a language hint on the fence line.
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		firstLine := strings.TrimSpace(rest[:nl])
		if firstLine == "json" || firstLine == "JSON" || firstLine == "" {
			rest = rest[nl+1:]
		}
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}

func extractObjectSpan(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
