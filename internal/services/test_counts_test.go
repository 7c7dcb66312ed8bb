package services

import (
	"testing"

	"gorm.io/datatypes"

	"github.com/prepforge/content-admin-service/internal/models"
)

func intPtr(v int) *int { return &v }

func boolPtr(v bool) *bool { return &v }

func TestComputeCounts(t *testing.T) {
	meta := &models.TestMeta{Exam: models.ExamJEEMain}

	t.Run("EmptyItemSet", func(t *testing.T) {
		counts := ComputeCounts(nil, meta)
		if counts.TotalQuestions != 0 || counts.TotalMarks != 0 {
			t.Errorf("expected zero counts, got %+v", counts)
		}
		if len(counts.ByType) != 0 || len(counts.ByDifficulty) != 0 {
			t.Errorf("expected empty maps, got %+v", counts)
		}
	})

	t.Run("MixedOverridesAndDefaults", func(t *testing.T) {
		items := []*models.TestItem{
			{Type: models.TypeMCQ, DifficultyBand: models.BandEasy, MarksCorrect: intPtr(4)},
			{Type: models.TypeMCQ, DifficultyBand: models.BandModerate},
			{Type: models.TypeMCQ, MarksCorrect: intPtr(5)},
		}

		counts := ComputeCounts(items, meta)

		if counts.TotalQuestions != 3 {
			t.Errorf("expected 3 questions, got %d", counts.TotalQuestions)
		}
		// 4 (override) + 4 (JEE Main MCQ standard) + 5 (override)
		if counts.TotalMarks != 13 {
			t.Errorf("expected total marks 13, got %d", counts.TotalMarks)
		}
		if counts.ByType[models.TypeMCQ] != 3 {
			t.Errorf("expected 3 MCQ, got %d", counts.ByType[models.TypeMCQ])
		}
		// Bandless third item is counted in totals but not per band.
		if got := counts.ByDifficulty[models.BandEasy] + counts.ByDifficulty[models.BandModerate] + counts.ByDifficulty[models.BandTough]; got != 2 {
			t.Errorf("expected 2 banded items, got %d", got)
		}
	})

	t.Run("MarklessItemCountsFlatFour", func(t *testing.T) {
		advanced := &models.TestMeta{Exam: models.ExamJEEAdvanced}
		counts := ComputeCounts([]*models.TestItem{{Type: models.TypeMCQ}}, advanced)
		if counts.TotalMarks != 4 {
			t.Errorf("expected flat fallback total 4, got %d", counts.TotalMarks)
		}
	})

	t.Run("TestLevelDefaultWins", func(t *testing.T) {
		withDefault := &models.TestMeta{Exam: models.ExamJEEMain, MarksCorrectDefault: intPtr(2)}
		items := []*models.TestItem{
			{Type: models.TypeMCQ},
			{Type: models.TypeMCQ, MarksCorrect: intPtr(6)},
		}

		counts := ComputeCounts(items, withDefault)

		if counts.TotalMarks != 8 {
			t.Errorf("expected 2 + 6 = 8, got %d", counts.TotalMarks)
		}
	})
}

func TestResolveItemMarks(t *testing.T) {
	t.Run("FlatFallbackForCorrect", func(t *testing.T) {
		meta := &models.TestMeta{Exam: models.ExamNEET}
		marks := ResolveItemMarks(&models.TestItem{Type: models.TypeMCQ}, meta)
		if marks.Correct != 4 || marks.Wrong != -1 {
			t.Errorf("expected {4,-1} for a markless NEET MCQ, got %+v", marks)
		}
	})

	t.Run("FlatFallbackIgnoresExamStandard", func(t *testing.T) {
		// JEE Advanced's standard positive mark is 3, but a markless
		// item with no test default still resolves to the flat 4.
		meta := &models.TestMeta{Exam: models.ExamJEEAdvanced}
		marks := ResolveItemMarks(&models.TestItem{Type: models.TypeMCQ}, meta)
		if marks.Correct != 4 {
			t.Errorf("expected flat fallback 4, got %d", marks.Correct)
		}
		if marks.Wrong != 0 {
			t.Errorf("expected JEE Advanced no-negative standard, got %d", marks.Wrong)
		}
	})

	t.Run("NumericalHasNoNegative", func(t *testing.T) {
		meta := &models.TestMeta{Exam: models.ExamJEEMain}
		marks := ResolveItemMarks(&models.TestItem{Type: models.TypeNumerical}, meta)
		if marks.Wrong != 0 {
			t.Errorf("expected no negative marking for numerical, got %d", marks.Wrong)
		}
	})

	t.Run("ItemOverrideBeatsTestDefault", func(t *testing.T) {
		meta := &models.TestMeta{Exam: models.ExamJEEMain, MarksCorrectDefault: intPtr(2), MarksWrongDefault: intPtr(0)}
		item := &models.TestItem{Type: models.TypeMCQ, MarksCorrect: intPtr(3), MarksWrong: intPtr(-2)}
		marks := ResolveItemMarks(item, meta)
		if marks.Correct != 3 || marks.Wrong != -2 {
			t.Errorf("expected item override {3,-2}, got %+v", marks)
		}
	})
}

func TestCollectTestTags(t *testing.T) {
	items := []*models.TestItem{
		{SkillTags: datatypes.JSONSlice[string]{"kinematics", "vectors"}},
		{SkillTags: datatypes.JSONSlice[string]{"Vectors", "optics"}},
		{},
	}

	tags := CollectTestTags(items)

	if len(tags) != 3 {
		t.Fatalf("expected 3 unique tags, got %v", tags)
	}
	if tags[0] != "kinematics" || tags[1] != "vectors" || tags[2] != "optics" {
		t.Errorf("expected first-occurrence order, got %v", tags)
	}
}

func TestMergeSyllabusChapters(t *testing.T) {
	declared := []uint{3, 1}
	items := []*models.TestItem{
		{ChapterID: 1},
		{ChapterID: 7},
		{ChapterID: 0},
	}

	merged := MergeSyllabusChapters(declared, items)

	want := []uint{3, 1, 7}
	if len(merged) != len(want) {
		t.Fatalf("expected %v, got %v", want, merged)
	}
	for i, id := range want {
		if merged[i] != id {
			t.Errorf("position %d: expected %d, got %d", i, id, merged[i])
		}
	}
}
