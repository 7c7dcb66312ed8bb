package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/datatypes"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/events"
	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/validator"
)

func newQuestionFixture() (QuestionService, *fakeChapterRepo, *fakeQuestionRepo, *events.MockEventPublisher) {
	logger := newTestLogger()
	chapters := newFakeChapterRepo()
	questions := newFakeQuestionRepo()
	repo := &stubRepository{chapter: chapters, question: questions}
	gate := auth.NewGate([]string{primaryAdmin}, []string{secondaryAdmin})
	publisher := events.NewMockEventPublisher(logger)
	svc := NewQuestionService(repo, nil, logger, validator.New(), gate, publisher)
	return svc, chapters, questions, publisher
}

func TestQuestionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("PracticeBankDerivesBand", func(t *testing.T) {
		svc, chapters, questions, publisher := newQuestionFixture()
		_ = chapters.Create(ctx, nil, &models.Chapter{Name: "Kinematics"})

		resp, err := svc.Create(ctx, &CreateQuestionRequest{
			ChapterID:    1,
			Bank:         models.BankPractice,
			QuestionText: "A car accelerates uniformly...",
			Type:         models.TypeMCQ,
			Exam:         models.ExamJEEMain,
			Difficulty:   2,
			SkillTags:    []string{"uniform-acceleration"},
			Choices:      []string{"2 m/s", "4 m/s", "6 m/s", "8 m/s"},
			AnswerIndex:  intPtr(1),
		}, secondaryAdmin)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		stored, _ := questions.GetByID(ctx, nil, resp.ID)
		if stored.DifficultyBand != models.BandEasy {
			t.Errorf("expected easy band for difficulty 2, got %q", stored.DifficultyBand)
		}
		if stored.Status != models.QuestionActive {
			t.Errorf("expected default ACTIVE status, got %q", stored.Status)
		}
		// Test-bank metadata stays empty outside the test bank.
		if stored.MarksCorrect != nil || stored.TimeSuggestedSec != nil {
			t.Errorf("expected no marking defaults on a practice question, got %+v", stored)
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventQuestionCreated {
			t.Errorf("expected %s event, got %+v", events.EventQuestionCreated, published)
		}
	})

	t.Run("TestBankFillsDefaults", func(t *testing.T) {
		svc, chapters, questions, _ := newQuestionFixture()
		_ = chapters.Create(ctx, nil, &models.Chapter{Name: "Thermodynamics"})

		resp, err := svc.Create(ctx, &CreateQuestionRequest{
			ChapterID:    1,
			Bank:         models.BankTest,
			QuestionText: "Find the work done...",
			Type:         models.TypeNumerical,
			Exam:         models.ExamNEET,
			Difficulty:   8,
			SkillTag:     "first-law",
			Range:        &models.NumRange{Min: 39.5, Max: 40.5},
		}, primaryAdmin)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		stored, _ := questions.GetByID(ctx, nil, resp.ID)
		if stored.DifficultyBand != models.BandTough {
			t.Errorf("expected tough band for difficulty 8, got %q", stored.DifficultyBand)
		}
		if stored.MarksCorrect == nil || *stored.MarksCorrect != 4 {
			t.Errorf("expected NEET standard +4, got %+v", stored.MarksCorrect)
		}
		if stored.MarksWrong == nil || *stored.MarksWrong != 0 {
			t.Errorf("expected no negative marking for numerical, got %+v", stored.MarksWrong)
		}
		if stored.TimeSuggestedSec == nil || *stored.TimeSuggestedSec != 120 {
			t.Errorf("expected 120s default, got %+v", stored.TimeSuggestedSec)
		}
		if stored.OptionShuffle == nil || !*stored.OptionShuffle {
			t.Errorf("expected shuffle on by default, got %+v", stored.OptionShuffle)
		}
		if stored.PartialScheme == nil || stored.PartialScheme.Data().Mode != models.PartialNone {
			t.Errorf("expected no partial marking by default, got %+v", stored.PartialScheme)
		}
	})

	t.Run("MirrorsScalarSkillTag", func(t *testing.T) {
		svc, chapters, questions, _ := newQuestionFixture()
		_ = chapters.Create(ctx, nil, &models.Chapter{Name: "Optics"})

		resp, err := svc.Create(ctx, &CreateQuestionRequest{
			ChapterID:    1,
			Bank:         models.BankDiagnostic,
			QuestionText: "A ray strikes a mirror...",
			Type:         models.TypeMCQ,
			Exam:         models.ExamJEEMain,
			Difficulty:   5,
			SkillTag:     "reflection",
			Choices:      []string{"30", "45", "60", "90"},
			AnswerIndex:  intPtr(2),
		}, primaryAdmin)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		stored, _ := questions.GetByID(ctx, nil, resp.ID)
		if len(stored.SkillTags) != 1 || stored.SkillTags[0] != "reflection" {
			t.Errorf("expected scalar tag mirrored into the list, got %v", stored.SkillTags)
		}
		if stored.SkillTag != "reflection" {
			t.Errorf("expected primary tag kept, got %q", stored.SkillTag)
		}
	})

	t.Run("RejectsZeroTags", func(t *testing.T) {
		svc, chapters, _, _ := newQuestionFixture()
		_ = chapters.Create(ctx, nil, &models.Chapter{Name: "Modern Physics"})

		_, err := svc.Create(ctx, &CreateQuestionRequest{
			ChapterID:    1,
			Bank:         models.BankPractice,
			QuestionText: "text",
			Type:         models.TypeMCQ,
			Exam:         models.ExamJEEMain,
			Difficulty:   5,
			Choices:      []string{"a", "b"},
			AnswerIndex:  intPtr(0),
		}, primaryAdmin)
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("expected validation errors for a tagless question, got %v", err)
		}
		if len(verrs) != 1 || verrs[0].Field != "skill_tag" {
			t.Errorf("expected a skill_tag error, got %+v", verrs)
		}
	})

	t.Run("UnknownChapter", func(t *testing.T) {
		svc, _, _, _ := newQuestionFixture()

		_, err := svc.Create(ctx, &CreateQuestionRequest{
			ChapterID:    9,
			Bank:         models.BankPractice,
			QuestionText: "text",
			Type:         models.TypeMCQ,
			Exam:         models.ExamJEEMain,
			Difficulty:   5,
			SkillTag:     "some-tag",
			Choices:      []string{"a", "b"},
			AnswerIndex:  intPtr(0),
		}, primaryAdmin)
		if !errors.Is(err, ErrChapterNotFound) {
			t.Errorf("expected ErrChapterNotFound, got %v", err)
		}
	})

	t.Run("RejectsOutsider", func(t *testing.T) {
		svc, chapters, _, _ := newQuestionFixture()
		_ = chapters.Create(ctx, nil, &models.Chapter{Name: "Waves"})

		_, err := svc.Create(ctx, &CreateQuestionRequest{ChapterID: 1, Bank: models.BankPractice, QuestionText: "text", Type: models.TypeMCQ, Exam: models.ExamJEEMain, Difficulty: 5, SkillTag: "some-tag", Choices: []string{"a", "b"}, AnswerIndex: intPtr(0)}, outsider)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestQuestionService_BackfillTestBank(t *testing.T) {
	ctx := context.Background()

	t.Run("FillsIncompleteRowsOnly", func(t *testing.T) {
		svc, chapters, questions, _ := newQuestionFixture()
		_ = chapters.Create(ctx, nil, &models.Chapter{Name: "Electrostatics"})

		// Legacy row: scalar tag only, no band or marking metadata.
		incomplete := questions.add(&models.Question{
			ChapterID:  1,
			Bank:       models.BankTest,
			Type:       models.TypeMCQ,
			Exam:       models.ExamJEEMain,
			Difficulty: 2,
			SkillTag:   "coulombs-law",
		})
		// Fully specified row: the backfill must not touch it.
		complete := questions.add(&models.Question{
			ChapterID:        1,
			Bank:             models.BankTest,
			Type:             models.TypeMCQ,
			Exam:             models.ExamJEEMain,
			Difficulty:       9,
			DifficultyBand:   models.BandTough,
			Status:           models.QuestionActive,
			SkillTag:         "gauss-law",
			SkillTags:        datatypes.JSONSlice[string]{"gauss-law"},
			MarksCorrect:     intPtr(5),
			MarksWrong:       intPtr(-2),
			TimeSuggestedSec: intPtr(180),
			OptionShuffle:    boolPtr(false),
			PartialScheme:    jsonTypePtr(&models.PartialScheme{Mode: models.PartialNone}),
		})
		// Practice row in the same chapter: outside the test bank.
		practice := questions.add(&models.Question{
			ChapterID:  1,
			Bank:       models.BankPractice,
			Type:       models.TypeMCQ,
			Difficulty: 3,
		})

		updated, err := svc.BackfillTestBank(ctx, 1, primaryAdmin)
		if err != nil {
			t.Fatalf("BackfillTestBank failed: %v", err)
		}
		if updated != 1 {
			t.Errorf("expected 1 row updated, got %d", updated)
		}

		filled, _ := questions.GetByID(ctx, nil, incomplete.ID)
		if filled.DifficultyBand != models.BandEasy {
			t.Errorf("expected band derived from difficulty, got %q", filled.DifficultyBand)
		}
		if filled.MarksCorrect == nil || *filled.MarksCorrect != 4 {
			t.Errorf("expected JEE Main MCQ standard +4, got %+v", filled.MarksCorrect)
		}
		if len(filled.SkillTags) != 1 || filled.SkillTags[0] != "coulombs-law" {
			t.Errorf("expected scalar tag mirrored, got %v", filled.SkillTags)
		}

		untouched, _ := questions.GetByID(ctx, nil, complete.ID)
		if *untouched.MarksCorrect != 5 || *untouched.TimeSuggestedSec != 180 || *untouched.OptionShuffle {
			t.Errorf("expected explicit values kept, got %+v", untouched)
		}

		skipped, _ := questions.GetByID(ctx, nil, practice.ID)
		if skipped.MarksCorrect != nil {
			t.Errorf("expected practice bank untouched, got %+v", skipped.MarksCorrect)
		}
	})

	t.Run("NoChapterSelected", func(t *testing.T) {
		svc, _, _, _ := newQuestionFixture()

		_, err := svc.BackfillTestBank(ctx, 0, primaryAdmin)
		if !errors.Is(err, ErrNoChapterSelected) {
			t.Errorf("expected ErrNoChapterSelected, got %v", err)
		}
	})

	t.Run("UnknownChapter", func(t *testing.T) {
		svc, _, _, _ := newQuestionFixture()

		_, err := svc.BackfillTestBank(ctx, 9, primaryAdmin)
		if !errors.Is(err, ErrChapterNotFound) {
			t.Errorf("expected ErrChapterNotFound, got %v", err)
		}
	})

	t.Run("RejectsOutsider", func(t *testing.T) {
		svc, chapters, _, _ := newQuestionFixture()
		_ = chapters.Create(ctx, nil, &models.Chapter{Name: "Gravitation"})

		_, err := svc.BackfillTestBank(ctx, 1, outsider)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}
