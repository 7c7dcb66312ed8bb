package llm

import (
	"sort"
	"strings"
)

// MaxPromptTags caps how many vocabulary entries ride along in the
// prompt; large chapters have vocabularies well beyond what the model
// needs to see.
const MaxPromptTags = 80

// PrefilterVocabulary ranks the vocabulary by word overlap with the
// question text and keeps the top MaxPromptTags entries. Ties keep the
// vocabulary's own order so the result is stable.
func PrefilterVocabulary(questionText string, vocabulary []string) []string {
	if len(vocabulary) <= MaxPromptTags {
		return vocabulary
	}

	words := tokenize(questionText)

	type scored struct {
		tag   string
		score int
		pos   int
	}
	ranked := make([]scored, 0, len(vocabulary))
	for i, tag := range vocabulary {
		ranked = append(ranked, scored{tag: tag, score: overlapScore(tag, words), pos: i})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].pos < ranked[j].pos
	})

	out := make([]string, 0, MaxPromptTags)
	for _, r := range ranked[:MaxPromptTags] {
		out = append(out, r.tag)
	}
	return out
}

// overlapScore counts how many of the tag's words occur in the question.
func overlapScore(tag string, questionWords map[string]struct{}) int {
	score := 0
	for w := range tokenize(tag) {
		if _, ok := questionWords[w]; ok {
			score++
		}
	}
	return score
}

func tokenize(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	}) {
		if len(w) > 2 {
			words[w] = struct{}{}
		}
	}
	return words
}
