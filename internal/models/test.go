package models

import (
	"time"

	"gorm.io/datatypes"
)

type TestStatus string

const (
	TestDraft     TestStatus = "DRAFT"
	TestPublished TestStatus = "PUBLISHED"
	TestArchived  TestStatus = "ARCHIVED"
)

// TestCounts is the aggregate snapshot written onto a test on every save.
// It is always a pure function of the current item set and is never
// hand-edited.
type TestCounts struct {
	TotalQuestions int                    `json:"totalQuestions"`
	ByType         map[QuestionType]int   `json:"byType"`
	ByDifficulty   map[DifficultyBand]int `json:"byDifficulty"`
	TotalMarks     int                    `json:"totalMarks"`
}

// TestMeta is an assembled mock test definition. It owns an ordered
// TestItem set; on every save the items are replaced wholesale and the
// counts, syllabus chapters and auto-collected tag union are rewritten.
type TestMeta struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Name        string     `json:"name" gorm:"not null;size:300" validate:"required"`
	Description string     `json:"description" gorm:"type:text"`
	Exam        ExamType   `json:"exam" gorm:"not null;size:20;index"`
	DurationSec int        `json:"duration_sec"`
	Status      TestStatus `json:"status" gorm:"size:12;default:DRAFT;index"`

	ShuffleQuestions bool `json:"shuffle_questions" gorm:"default:true"`
	ShuffleOptions   bool `json:"shuffle_options" gorm:"default:true"`

	// Nil means "use each item's own marks".
	MarksCorrectDefault *int `json:"marks_correct_default,omitempty"`
	MarksWrongDefault   *int `json:"marks_wrong_default,omitempty"`

	SyllabusChapters datatypes.JSONSlice[uint] `json:"syllabus_chapters" gorm:"type:jsonb"`

	// De-duplicated union of skill tags across all selected items.
	// Auto-computed on save, never manually edited.
	SkillTags datatypes.JSONSlice[string] `json:"skill_tags" gorm:"type:jsonb"`

	Counts datatypes.JSONType[TestCounts] `json:"counts" gorm:"type:jsonb"`

	Version   int       `json:"version" gorm:"default:1"`
	CreatedBy string    `json:"created_by" gorm:"index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Items []TestItem `json:"items,omitempty" gorm:"foreignKey:TestID"`
}

// TestItem references a source test-bank question plus its position in
// the test and optional per-item mark overrides. The denormalized
// title/type/band/tags snapshot keeps the builder usable when the source
// is slow to resolve or has been deleted.
type TestItem struct {
	ID     uint `json:"id" gorm:"primaryKey"`
	TestID uint `json:"test_id" gorm:"not null;index"`

	QuestionID uint   `json:"question_id" gorm:"not null"`
	ChapterID  uint   `json:"chapter_id" gorm:"not null"`
	RefPath    string `json:"ref_path" gorm:"size:300"`

	ItemOrder int `json:"item_order" gorm:"not null"`

	// Overrides. Nil falls back to the test-level defaults, then to the
	// exam-standard default.
	MarksCorrect *int `json:"marks_correct,omitempty"`
	MarksWrong   *int `json:"marks_wrong,omitempty"`

	Title            string                      `json:"title" gorm:"size:300"`
	Type             QuestionType                `json:"type" gorm:"size:20"`
	DifficultyBand   DifficultyBand              `json:"difficulty_band" gorm:"size:10"`
	SkillTags        datatypes.JSONSlice[string] `json:"skill_tags" gorm:"type:jsonb"`
	TimeSuggestedSec *int                        `json:"time_suggested_sec,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
