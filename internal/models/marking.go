package models

import "gorm.io/datatypes"

// Marks is a correct/wrong marking pair.
type Marks struct {
	Correct int `json:"correct"`
	Wrong   int `json:"wrong"`
}

// BandFromDifficulty maps a 1-10 difficulty to its qualitative band.
// The thresholds also hold outside that range.
func BandFromDifficulty(d int) DifficultyBand {
	if d <= 3 {
		return BandEasy
	}
	if d <= 7 {
		return BandModerate
	}
	return BandTough
}

// BandFromDifficultyPtr treats an unset difficulty as moderate.
func BandFromDifficultyPtr(d *int) DifficultyBand {
	if d == nil {
		return BandModerate
	}
	return BandFromDifficulty(*d)
}

// DefaultMarks derives the exam-standard marking pair. These are the
// editable defaults, not a rule engine: JEE Advanced sections vary, so a
// generic safe pair is used there.
func DefaultMarks(exam ExamType, questionType QuestionType) Marks {
	if exam == ExamJEEAdvanced {
		return Marks{Correct: 3, Wrong: 0}
	}
	// JEE Main / NEET
	wrong := -1
	if questionType == TypeNumerical {
		wrong = 0
	}
	return Marks{Correct: 4, Wrong: wrong}
}

// WithComputedFields fills the derived and test-bank metadata fields that
// are absent, leaving explicitly-set values untouched. The merge is
// non-destructive and idempotent, so it is safe to re-run over existing
// records as a backfill.
func WithComputedFields(q *Question) {
	difficulty := q.Difficulty
	if difficulty == 0 {
		difficulty = 5
	}
	exam := q.Exam
	if exam == "" {
		exam = ExamJEEMain
	}
	questionType := q.Type
	if questionType == "" {
		questionType = TypeMCQ
	}
	marks := DefaultMarks(exam, questionType)

	if q.DifficultyBand == "" {
		q.DifficultyBand = BandFromDifficulty(difficulty)
	}
	if q.MarksCorrect == nil {
		v := marks.Correct
		q.MarksCorrect = &v
	}
	if q.MarksWrong == nil {
		v := marks.Wrong
		q.MarksWrong = &v
	}
	if q.TimeSuggestedSec == nil {
		v := 120
		q.TimeSuggestedSec = &v
	}
	if q.OptionShuffle == nil {
		v := true
		q.OptionShuffle = &v
	}
	if q.Status == "" {
		q.Status = QuestionActive
	}
	if q.PartialScheme == nil {
		scheme := datatypes.NewJSONType(PartialScheme{Mode: PartialNone})
		q.PartialScheme = &scheme
	}
}
