package models

import (
	"time"

	"gorm.io/datatypes"
)

type QuestionType string

const (
	TypeMCQ            QuestionType = "MCQ"
	TypeMultipleAnswer QuestionType = "MultipleAnswer"
	TypeNumerical      QuestionType = "Numerical"
)

type ExamType string

const (
	ExamJEEMain     ExamType = "JEE Main"
	ExamJEEAdvanced ExamType = "JEE Advanced"
	ExamNEET        ExamType = "NEET"
)

type QuestionStatus string

const (
	QuestionActive  QuestionStatus = "ACTIVE"
	QuestionRetired QuestionStatus = "RETIRED"
)

// QuestionBank identifies which of the three parallel banks a question
// belongs to. The banks share one schema; only the test bank populates
// the marking metadata.
type QuestionBank string

const (
	BankDiagnostic QuestionBank = "diagnostic"
	BankPractice   QuestionBank = "practice"
	BankTest       QuestionBank = "test"
)

func (b QuestionBank) Valid() bool {
	switch b {
	case BankDiagnostic, BankPractice, BankTest:
		return true
	}
	return false
}

type DifficultyBand string

const (
	BandEasy     DifficultyBand = "easy"
	BandModerate DifficultyBand = "moderate"
	BandTough    DifficultyBand = "tough"
)

// NumRange is the inclusive accepted range for numerical answers.
type NumRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// PartialSchemeMode enumerates the partial-credit rules for
// multi-answer questions.
type PartialSchemeMode string

const (
	PartialNone             PartialSchemeMode = "none"
	PartialPerCorrectOption PartialSchemeMode = "per_correct_option"
	PartialAllOrNothing     PartialSchemeMode = "all_or_nothing"
	PartialPerWrongDeduct   PartialSchemeMode = "per_wrong_deduction"
)

// PartialScheme is a tagged variant: Mode selects the rule, the optional
// numeric fields parameterize it.
type PartialScheme struct {
	Mode           PartialSchemeMode `json:"mode"`
	MarksPerOption *int              `json:"marksPerOption,omitempty"`
	DeductPerWrong *int              `json:"deductPerWrong,omitempty"`
}

type Question struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	ChapterID uint         `json:"chapter_id" gorm:"not null;index:idx_questions_chapter_bank"`
	Bank      QuestionBank `json:"bank" gorm:"not null;index:idx_questions_chapter_bank;size:16"`

	Title          string       `json:"title" gorm:"size:300"`
	QuestionText   string       `json:"question_text" gorm:"type:text;not null" validate:"required"`
	DetailedAnswer string       `json:"detailed_answer" gorm:"type:text"`
	ImageURL       *string      `json:"image_url" gorm:"size:500"`
	Type           QuestionType `json:"type" gorm:"not null;index;size:20"`

	Difficulty     int            `json:"difficulty" gorm:"default:5"` // 1-10
	DifficultyBand DifficultyBand `json:"difficulty_band" gorm:"size:10;index"`

	// SkillTag is the legacy scalar field kept for backward compatibility.
	// SkillTags is authoritative; EnsureSkillTags is the only reader of
	// the scalar.
	SkillTag  string                      `json:"skill_tag" gorm:"size:100"`
	SkillTags datatypes.JSONSlice[string] `json:"skill_tags" gorm:"type:jsonb"`

	Exam   ExamType       `json:"exam" gorm:"not null;index;size:20"`
	Status QuestionStatus `json:"status" gorm:"size:10;default:ACTIVE;index"`

	// Choice kinds: 2-6 choice strings plus a single index or an index set.
	Choices       datatypes.JSONSlice[string] `json:"choices,omitempty" gorm:"type:jsonb"`
	AnswerIndex   *int                        `json:"answer_index,omitempty"`
	AnswerIndices datatypes.JSONSlice[int]    `json:"answer_indices,omitempty" gorm:"type:jsonb"`

	// Numerical kind: inclusive accepted range.
	Range *datatypes.JSONType[NumRange] `json:"range,omitempty" gorm:"type:jsonb"`

	// Test-bank metadata. Nil on diagnostic/practice questions.
	MarksCorrect     *int                               `json:"marks_correct,omitempty"`
	MarksWrong       *int                               `json:"marks_wrong,omitempty"`
	TimeSuggestedSec *int                               `json:"time_suggested_sec,omitempty"`
	OptionShuffle    *bool                              `json:"option_shuffle,omitempty"`
	PartialScheme    *datatypes.JSONType[PartialScheme] `json:"partial_scheme,omitempty" gorm:"type:jsonb"`

	CreatedBy string    `json:"created_by" gorm:"index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Chapter *Chapter `json:"chapter,omitempty" gorm:"foreignKey:ChapterID"`
}

// RefPath renders the logical document path of a question, mirroring the
// hierarchical layout tests store item references in.
func (q *Question) RefPath() string {
	return QuestionRefPath(q.ChapterID, q.Bank, q.ID)
}

// PartialSchemeValue returns the scheme, defaulting to {mode: none}.
func (q *Question) PartialSchemeValue() PartialScheme {
	if q.PartialScheme == nil {
		return PartialScheme{Mode: PartialNone}
	}
	return q.PartialScheme.Data()
}

// RangeValue returns the numeric range when present.
func (q *Question) RangeValue() (NumRange, bool) {
	if q.Range == nil {
		return NumRange{}, false
	}
	return q.Range.Data(), true
}
