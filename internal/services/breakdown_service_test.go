package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/events"
	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/validator"
)

func newBreakdownFixture() (BreakdownService, *fakeBreakdownRepo, *fakeSlideRepo, *fakeChapterRepo) {
	logger := newTestLogger()
	breakdowns := newFakeBreakdownRepo()
	slides := newFakeSlideRepo()
	chapters := newFakeChapterRepo()
	repo := &stubRepository{breakdown: breakdowns, slide: slides, chapter: chapters}
	gate := auth.NewGate([]string{primaryAdmin}, []string{secondaryAdmin})
	publisher := events.NewMockEventPublisher(logger)
	svc := NewBreakdownService(repo, nil, logger, validator.New(), gate, publisher)
	return svc, breakdowns, slides, chapters
}

func seedDeck(breakdowns *fakeBreakdownRepo, slides *fakeSlideRepo, titles ...string) *models.Breakdown {
	b := &models.Breakdown{ChapterID: 1, Title: "Kinematics walkthrough"}
	_ = breakdowns.Create(context.Background(), nil, b)
	for i, title := range titles {
		order := i
		_ = slides.Create(context.Background(), nil, &models.Slide{
			BreakdownID: b.ID,
			Kind:        models.SlideTheory,
			Title:       title,
			Content:     "some theory",
			SlideOrder:  &order,
		})
	}
	return b
}

func deckTitles(t *testing.T, deck []*models.Slide) []string {
	t.Helper()
	out := make([]string, len(deck))
	for i, s := range deck {
		out[i] = s.Title
	}
	return out
}

func TestBreakdownService_MoveSlide(t *testing.T) {
	ctx := context.Background()

	t.Run("SwapsWithNeighbor", func(t *testing.T) {
		svc, breakdowns, slides, _ := newBreakdownFixture()
		b := seedDeck(breakdowns, slides, "first", "second", "third")

		deck, err := svc.MoveSlide(ctx, b.ID, slides.slides[1].ID, MoveUp, secondaryAdmin)
		if err != nil {
			t.Fatalf("MoveSlide failed: %v", err)
		}

		got := deckTitles(t, deck)
		want := []string{"second", "first", "third"}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("expected deck %v, got %v", want, got)
			}
		}
	})

	t.Run("MoveUpAtTopIsNoOp", func(t *testing.T) {
		svc, breakdowns, slides, _ := newBreakdownFixture()
		b := seedDeck(breakdowns, slides, "first", "second")

		deck, err := svc.MoveSlide(ctx, b.ID, slides.slides[0].ID, MoveUp, primaryAdmin)
		if err != nil {
			t.Fatalf("MoveSlide failed: %v", err)
		}
		if got := deckTitles(t, deck); got[0] != "first" || got[1] != "second" {
			t.Errorf("expected unchanged deck, got %v", got)
		}
	})

	t.Run("MoveDownAtBottomIsNoOp", func(t *testing.T) {
		svc, breakdowns, slides, _ := newBreakdownFixture()
		b := seedDeck(breakdowns, slides, "first", "second")

		deck, err := svc.MoveSlide(ctx, b.ID, slides.slides[1].ID, MoveDown, primaryAdmin)
		if err != nil {
			t.Fatalf("MoveSlide failed: %v", err)
		}
		if got := deckTitles(t, deck); got[0] != "first" || got[1] != "second" {
			t.Errorf("expected unchanged deck, got %v", got)
		}
	})

	t.Run("BackfillsLegacyRowsFirst", func(t *testing.T) {
		svc, breakdowns, slides, _ := newBreakdownFixture()
		b := seedDeck(breakdowns, slides)
		// Legacy rows written before explicit ordering existed.
		_ = slides.Create(ctx, nil, &models.Slide{BreakdownID: b.ID, Kind: models.SlideTheory, Title: "older"})
		_ = slides.Create(ctx, nil, &models.Slide{BreakdownID: b.ID, Kind: models.SlideTheory, Title: "newer"})

		deck, err := svc.MoveSlide(ctx, b.ID, slides.slides[1].ID, MoveUp, primaryAdmin)
		if err != nil {
			t.Fatalf("MoveSlide failed: %v", err)
		}
		for _, s := range deck {
			if s.SlideOrder == nil {
				t.Fatalf("expected every slide positioned after move, %q is not", s.Title)
			}
		}
		if got := deckTitles(t, deck); got[0] != "newer" || got[1] != "older" {
			t.Errorf("expected creation order swapped, got %v", got)
		}
	})

	t.Run("UnknownSlide", func(t *testing.T) {
		svc, breakdowns, slides, _ := newBreakdownFixture()
		b := seedDeck(breakdowns, slides, "only")

		_, err := svc.MoveSlide(ctx, b.ID, 999, MoveDown, primaryAdmin)
		if !errors.Is(err, ErrSlideNotFound) {
			t.Errorf("expected ErrSlideNotFound, got %v", err)
		}
	})
}

func TestBreakdownService_AddSlide(t *testing.T) {
	ctx := context.Background()

	t.Run("AppendsAtEnd", func(t *testing.T) {
		svc, breakdowns, slides, _ := newBreakdownFixture()
		b := seedDeck(breakdowns, slides, "first", "second")

		slide, err := svc.AddSlide(ctx, b.ID, &CreateSlideRequest{
			Kind:    models.SlideTheory,
			Title:   "third",
			Content: "appended theory",
		}, secondaryAdmin)
		if err != nil {
			t.Fatalf("AddSlide failed: %v", err)
		}
		if slide.SlideOrder == nil || *slide.SlideOrder != 2 {
			t.Errorf("expected position 2, got %v", slide.SlideOrder)
		}
	})

	t.Run("QuestionSlideNeedsAnswerShape", func(t *testing.T) {
		svc, breakdowns, slides, _ := newBreakdownFixture()
		b := seedDeck(breakdowns, slides)

		_, err := svc.AddSlide(ctx, b.ID, &CreateSlideRequest{
			Kind:         models.SlideQuestion,
			QuestionText: "What is 2+2?",
			// No choices or answer: invalid for the default MCQ shape.
		}, primaryAdmin)
		if err == nil {
			t.Error("expected answer-shape validation to fail")
		}
	})

	t.Run("QuestionSlideWithChoices", func(t *testing.T) {
		svc, breakdowns, slides, _ := newBreakdownFixture()
		b := seedDeck(breakdowns, slides, "intro")

		slide, err := svc.AddSlide(ctx, b.ID, &CreateSlideRequest{
			Kind:         models.SlideQuestion,
			QuestionText: "What is 2+2?",
			SkillTag:     "arithmetic",
			Choices:      []string{"3", "4"},
			AnswerIndex:  intPtr(1),
		}, primaryAdmin)
		if err != nil {
			t.Fatalf("AddSlide failed: %v", err)
		}
		if slide.Type != models.TypeMCQ {
			t.Errorf("expected question slide to default to MCQ, got %s", slide.Type)
		}
		if slide.SlideOrder == nil || *slide.SlideOrder != 1 {
			t.Errorf("expected position 1, got %v", slide.SlideOrder)
		}
	})

	t.Run("QuestionSlideNeedsSkillTag", func(t *testing.T) {
		svc, breakdowns, slides, _ := newBreakdownFixture()
		b := seedDeck(breakdowns, slides)

		_, err := svc.AddSlide(ctx, b.ID, &CreateSlideRequest{
			Kind:         models.SlideQuestion,
			QuestionText: "What is 2+2?",
			Choices:      []string{"3", "4"},
			AnswerIndex:  intPtr(1),
		}, primaryAdmin)
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("expected validation errors for a tagless question slide, got %v", err)
		}
		if len(verrs) != 1 || verrs[0].Field != "skill_tag" {
			t.Errorf("expected a skill_tag error, got %+v", verrs)
		}
	})

	t.Run("TheorySlideNeedsNoSkillTag", func(t *testing.T) {
		svc, breakdowns, slides, _ := newBreakdownFixture()
		b := seedDeck(breakdowns, slides)

		if _, err := svc.AddSlide(ctx, b.ID, &CreateSlideRequest{
			Kind:    models.SlideTheory,
			Content: "velocity is the rate of change of position",
		}, primaryAdmin); err != nil {
			t.Fatalf("AddSlide failed: %v", err)
		}
	})

	t.Run("UnknownBreakdown", func(t *testing.T) {
		svc, _, _, _ := newBreakdownFixture()

		_, err := svc.AddSlide(ctx, 42, &CreateSlideRequest{Kind: models.SlideTheory, Content: "text"}, primaryAdmin)
		if !errors.Is(err, ErrBreakdownNotFound) {
			t.Errorf("expected ErrBreakdownNotFound, got %v", err)
		}
	})
}
