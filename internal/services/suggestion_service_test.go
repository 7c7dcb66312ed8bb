package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/llm"
	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/validator"
)

// recordingProvider captures the request so tests can assert the
// vocabulary handed to the model.
type recordingProvider struct {
	enabled bool
	lastReq llm.SuggestionRequest
	result  *llm.Suggestion
	refined string
}

func (p *recordingProvider) Suggest(ctx context.Context, req llm.SuggestionRequest) (*llm.Suggestion, error) {
	p.lastReq = req
	if p.result != nil {
		return p.result, nil
	}
	return llm.FallbackSuggestion(req), nil
}

func (p *recordingProvider) Refine(ctx context.Context, content string) (string, error) {
	if !p.enabled || p.refined == "" {
		return content, nil
	}
	return p.refined, nil
}

func (p *recordingProvider) Enabled() bool { return p.enabled }

func newSuggestionFixture(provider llm.SuggestionProvider) (SuggestionService, *fakeChapterRepo) {
	chapters := newFakeChapterRepo()
	repo := &stubRepository{chapter: chapters}
	gate := auth.NewGate([]string{primaryAdmin}, []string{secondaryAdmin})
	return NewSuggestionService(repo, newTestLogger(), validator.New(), gate, provider), chapters
}

func TestSuggestionService_Suggest(t *testing.T) {
	ctx := context.Background()

	t.Run("PassesChapterVocabularyToModel", func(t *testing.T) {
		provider := &recordingProvider{
			enabled: true,
			result:  &llm.Suggestion{SkillTags: []string{"kinematics"}, Title: "Projectile basics", Difficulty: 4, QuestionText: "cleaned"},
		}
		svc, chapters := newSuggestionFixture(provider)
		_ = chapters.Create(ctx, nil, &models.Chapter{
			Name:      "Motion in a Plane",
			SkillTags: datatypes.JSONSlice[string]{"kinematics", "vectors"},
		})

		result, err := svc.Suggest(ctx, &SuggestionInput{
			ChapterID:    1,
			QuestionText: "A ball is thrown at 45 degrees...",
			Exam:         "JEE Main",
		}, secondaryAdmin)
		if err != nil {
			t.Fatalf("Suggest failed: %v", err)
		}

		if len(provider.lastReq.Vocabulary) != 2 {
			t.Errorf("expected chapter vocabulary forwarded, got %v", provider.lastReq.Vocabulary)
		}
		if !result.FromModel {
			t.Error("expected FromModel true with an enabled provider")
		}
		if result.Title != "Projectile basics" || result.Difficulty != 4 {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("FallbackWhenModelDisabled", func(t *testing.T) {
		provider := &recordingProvider{enabled: false}
		svc, chapters := newSuggestionFixture(provider)
		_ = chapters.Create(ctx, nil, &models.Chapter{Name: "Optics"})

		result, err := svc.Suggest(ctx, &SuggestionInput{
			ChapterID:    1,
			QuestionText: "original text",
		}, primaryAdmin)
		if err != nil {
			t.Fatalf("Suggest failed: %v", err)
		}

		if result.FromModel {
			t.Error("expected FromModel false in fallback mode")
		}
		if result.Title != "Untitled Question" || result.Difficulty != 5 {
			t.Errorf("expected neutral fallback, got %+v", result)
		}
		if result.QuestionText != "original text" {
			t.Errorf("expected text untouched, got %q", result.QuestionText)
		}
	})

	t.Run("RejectsNonAdmin", func(t *testing.T) {
		svc, _ := newSuggestionFixture(&recordingProvider{enabled: true})

		_, err := svc.Suggest(ctx, &SuggestionInput{ChapterID: 1, QuestionText: "text"}, outsider)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("UnknownChapter", func(t *testing.T) {
		svc, _ := newSuggestionFixture(&recordingProvider{enabled: true})

		_, err := svc.Suggest(ctx, &SuggestionInput{ChapterID: 9, QuestionText: "text"}, primaryAdmin)
		if !errors.Is(err, ErrChapterNotFound) {
			t.Errorf("expected ErrChapterNotFound, got %v", err)
		}
	})
}

func TestSuggestionService_RefineLatex(t *testing.T) {
	ctx := context.Background()

	t.Run("ReturnsRefinedContent", func(t *testing.T) {
		svc, _ := newSuggestionFixture(&recordingProvider{enabled: true, refined: `Solve $x^2 = 4$.`})

		got, err := svc.RefineLatex(ctx, `Solve $x^2=4$.`, secondaryAdmin)
		if err != nil {
			t.Fatalf("RefineLatex failed: %v", err)
		}
		if got != `Solve $x^2 = 4$.` {
			t.Errorf("expected refined content, got %q", got)
		}
	})

	t.Run("DisabledModelLeavesContentUntouched", func(t *testing.T) {
		svc, _ := newSuggestionFixture(&recordingProvider{enabled: false})

		got, err := svc.RefineLatex(ctx, "original $\\frac12$", primaryAdmin)
		if err != nil {
			t.Fatalf("RefineLatex failed: %v", err)
		}
		if got != "original $\\frac12$" {
			t.Errorf("expected content unchanged, got %q", got)
		}
	})

	t.Run("RejectsNonAdmin", func(t *testing.T) {
		svc, _ := newSuggestionFixture(&recordingProvider{enabled: true})

		_, err := svc.RefineLatex(ctx, "content", outsider)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}
