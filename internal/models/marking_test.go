package models

import (
	"reflect"
	"testing"
)

func TestBandFromDifficulty(t *testing.T) {
	expected := map[int]DifficultyBand{
		1: BandEasy, 2: BandEasy, 3: BandEasy,
		4: BandModerate, 5: BandModerate, 6: BandModerate, 7: BandModerate,
		8: BandTough, 9: BandTough, 10: BandTough,
	}
	for d, want := range expected {
		if got := BandFromDifficulty(d); got != want {
			t.Errorf("band(%d) = %s, want %s", d, got, want)
		}
	}

	// Monotonic non-decreasing severity over 1..10.
	severity := map[DifficultyBand]int{BandEasy: 0, BandModerate: 1, BandTough: 2}
	prev := 0
	for d := 1; d <= 10; d++ {
		s := severity[BandFromDifficulty(d)]
		if s < prev {
			t.Errorf("severity decreased at difficulty %d", d)
		}
		prev = s
	}

	if got := BandFromDifficultyPtr(nil); got != BandModerate {
		t.Errorf("band(nil) = %s, want moderate", got)
	}
}

func TestDefaultMarks(t *testing.T) {
	for _, qt := range []QuestionType{TypeMCQ, TypeMultipleAnswer, TypeNumerical} {
		if got := DefaultMarks(ExamJEEAdvanced, qt); got != (Marks{Correct: 3, Wrong: 0}) {
			t.Errorf("JEE Advanced %s = %+v, want {3 0}", qt, got)
		}
	}
	if got := DefaultMarks(ExamNEET, TypeNumerical); got != (Marks{Correct: 4, Wrong: 0}) {
		t.Errorf("NEET Numerical = %+v, want {4 0}", got)
	}
	if got := DefaultMarks(ExamJEEMain, TypeMCQ); got != (Marks{Correct: 4, Wrong: -1}) {
		t.Errorf("JEE Main MCQ = %+v, want {4 -1}", got)
	}
}

func TestWithComputedFields(t *testing.T) {
	t.Run("FillsAbsent", func(t *testing.T) {
		q := &Question{Exam: ExamJEEMain, Type: TypeMCQ, Difficulty: 9}
		WithComputedFields(q)

		if q.DifficultyBand != BandTough {
			t.Errorf("band = %s, want tough", q.DifficultyBand)
		}
		if q.MarksCorrect == nil || *q.MarksCorrect != 4 {
			t.Errorf("marks correct = %v, want 4", q.MarksCorrect)
		}
		if q.MarksWrong == nil || *q.MarksWrong != -1 {
			t.Errorf("marks wrong = %v, want -1", q.MarksWrong)
		}
		if q.TimeSuggestedSec == nil || *q.TimeSuggestedSec != 120 {
			t.Errorf("time suggested = %v, want 120", q.TimeSuggestedSec)
		}
		if q.OptionShuffle == nil || !*q.OptionShuffle {
			t.Errorf("option shuffle = %v, want true", q.OptionShuffle)
		}
		if q.Status != QuestionActive {
			t.Errorf("status = %s, want ACTIVE", q.Status)
		}
		if q.PartialScheme == nil || q.PartialScheme.Data().Mode != PartialNone {
			t.Errorf("partial scheme = %v, want mode none", q.PartialScheme)
		}
	})

	t.Run("NeverOverwrites", func(t *testing.T) {
		mc, mw, ts := 2, -2, 90
		shuffle := false
		q := &Question{
			Exam:             ExamNEET,
			Type:             TypeMCQ,
			Difficulty:       2,
			DifficultyBand:   BandModerate, // deliberately inconsistent
			MarksCorrect:     &mc,
			MarksWrong:       &mw,
			TimeSuggestedSec: &ts,
			OptionShuffle:    &shuffle,
			Status:           QuestionRetired,
		}
		WithComputedFields(q)

		if q.DifficultyBand != BandModerate {
			t.Errorf("explicit band overwritten: %s", q.DifficultyBand)
		}
		if *q.MarksCorrect != 2 || *q.MarksWrong != -2 || *q.TimeSuggestedSec != 90 {
			t.Errorf("explicit marks/time overwritten: %d %d %d", *q.MarksCorrect, *q.MarksWrong, *q.TimeSuggestedSec)
		}
		if *q.OptionShuffle {
			t.Error("explicit shuffle=false overwritten")
		}
		if q.Status != QuestionRetired {
			t.Errorf("explicit status overwritten: %s", q.Status)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		q := &Question{Exam: ExamJEEAdvanced, Type: TypeNumerical, Difficulty: 5}
		WithComputedFields(q)
		snapshot := *q
		WithComputedFields(q)
		if !reflect.DeepEqual(snapshot.MarksCorrect, q.MarksCorrect) ||
			snapshot.DifficultyBand != q.DifficultyBand ||
			!reflect.DeepEqual(snapshot.TimeSuggestedSec, q.TimeSuggestedSec) {
			t.Error("re-applying WithComputedFields changed the question")
		}
	})
}

func TestQuestionRefPath(t *testing.T) {
	path := QuestionRefPath(12, BankTest, 345)
	if path != "chapters/12/test-questions/345" {
		t.Errorf("unexpected ref path %q", path)
	}

	chapterID, bank, questionID, ok := ParseQuestionRefPath(path)
	if !ok || chapterID != 12 || bank != BankTest || questionID != 345 {
		t.Errorf("round-trip failed: %d %s %d %v", chapterID, bank, questionID, ok)
	}

	if _, _, _, ok := ParseQuestionRefPath("garbage/path"); ok {
		t.Error("expected malformed path to fail")
	}
}
