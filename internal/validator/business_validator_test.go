package validator

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/prepforge/content-admin-service/internal/models"
)

func hasFieldError(t *testing.T, errs ValidationErrors, field string) bool {
	t.Helper()
	for _, e := range errs {
		if e.Field == field {
			return true
		}
	}
	return false
}

func validMCQCreate() *QuestionCreateRequest {
	return &QuestionCreateRequest{
		ChapterID:    1,
		Bank:         models.BankPractice,
		QuestionText: "A block slides down an incline...",
		Type:         models.TypeMCQ,
		Exam:         models.ExamJEEMain,
		Difficulty:   5,
		SkillTag:     "friction",
		Choices:      []string{"2 N", "4 N"},
		AnswerIndex:  intPtr(0),
	}
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestRequireSkillTag(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("QuestionCreateNeedsTag", func(t *testing.T) {
		req := validMCQCreate()
		req.SkillTag = ""
		req.SkillTags = nil

		errs := bv.ValidateQuestionCreate(req)
		if !hasFieldError(t, errs, "skill_tag") {
			t.Errorf("expected a skill_tag error, got %+v", errs)
		}
	})

	t.Run("ScalarTagSuffices", func(t *testing.T) {
		if errs := bv.ValidateQuestionCreate(validMCQCreate()); len(errs) != 0 {
			t.Errorf("expected no errors, got %+v", errs)
		}
	})

	t.Run("BlankTagsDoNotCount", func(t *testing.T) {
		req := validMCQCreate()
		req.SkillTag = "  "
		req.SkillTags = nil

		errs := bv.ValidateQuestionCreate(req)
		if !hasFieldError(t, errs, "skill_tag") {
			t.Errorf("expected a skill_tag error for whitespace-only tag, got %+v", errs)
		}
	})

	t.Run("QuestionUpdateCannotClearTags", func(t *testing.T) {
		existing := &models.Question{
			Type:        models.TypeMCQ,
			SkillTag:    "friction",
			SkillTags:   datatypes.JSONSlice[string]{"friction"},
			Choices:     datatypes.JSONSlice[string]{"2 N", "4 N"},
			AnswerIndex: intPtr(0),
		}
		req := &QuestionUpdateRequest{SkillTag: strPtr(""), SkillTags: []string{}}

		errs := bv.ValidateQuestionUpdate(req, existing)
		if !hasFieldError(t, errs, "skill_tag") {
			t.Errorf("expected a skill_tag error when clearing tags, got %+v", errs)
		}
	})

	t.Run("QuestionUpdateKeepsStoredTags", func(t *testing.T) {
		existing := &models.Question{
			Type:        models.TypeMCQ,
			SkillTag:    "friction",
			SkillTags:   datatypes.JSONSlice[string]{"friction"},
			Choices:     datatypes.JSONSlice[string]{"2 N", "4 N"},
			AnswerIndex: intPtr(0),
		}
		req := &QuestionUpdateRequest{Title: strPtr("Renamed")}

		if errs := bv.ValidateQuestionUpdate(req, existing); len(errs) != 0 {
			t.Errorf("expected stored tags to satisfy the invariant, got %+v", errs)
		}
	})

	t.Run("BreakdownCreateNeedsTag", func(t *testing.T) {
		errs := bv.ValidateBreakdownCreate(&BreakdownCreateRequest{ChapterID: 1, Title: "Projectile walkthrough"})
		if !hasFieldError(t, errs, "skill_tag") {
			t.Errorf("expected a skill_tag error, got %+v", errs)
		}

		tagged := &BreakdownCreateRequest{ChapterID: 1, Title: "Projectile walkthrough", SkillTags: []string{"projectiles"}}
		if errs := bv.ValidateBreakdownCreate(tagged); len(errs) != 0 {
			t.Errorf("expected no errors, got %+v", errs)
		}
	})

	t.Run("VideoCreateNeedsTag", func(t *testing.T) {
		req := &VideoCreateRequest{ChapterID: 1, Title: "Intro lecture", StoragePath: "videos/intro.mp4"}
		errs := bv.ValidateVideoCreate(req)
		if !hasFieldError(t, errs, "skill_tag") {
			t.Errorf("expected a skill_tag error, got %+v", errs)
		}

		req.SkillTag = "kinematics"
		if errs := bv.ValidateVideoCreate(req); len(errs) != 0 {
			t.Errorf("expected no errors, got %+v", errs)
		}
	})

	t.Run("VideoUpdateCannotClearTag", func(t *testing.T) {
		existing := &models.ChapterVideo{SkillTag: "kinematics"}
		errs := bv.ValidateVideoUpdate(&VideoUpdateRequest{SkillTag: strPtr(" ")}, existing)
		if !hasFieldError(t, errs, "skill_tag") {
			t.Errorf("expected a skill_tag error, got %+v", errs)
		}
	})

	t.Run("TheorySlideExempt", func(t *testing.T) {
		req := &SlideCreateRequest{Kind: models.SlideTheory, Content: "velocity-time graphs"}
		if errs := bv.ValidateSlideCreate(req); len(errs) != 0 {
			t.Errorf("expected no errors for an untagged theory slide, got %+v", errs)
		}
	})
}
