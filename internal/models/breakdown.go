package models

import (
	"time"

	"gorm.io/datatypes"
)

// Breakdown is a titled, tagged multi-slide explanation attached to a
// chapter.
type Breakdown struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ChapterID   uint   `json:"chapter_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null;size:300" validate:"required"`
	Description string `json:"description" gorm:"type:text"`

	Type QuestionType `json:"type" gorm:"size:20"`

	SkillTag  string                      `json:"skill_tag" gorm:"size:100"`
	SkillTags datatypes.JSONSlice[string] `json:"skill_tags" gorm:"type:jsonb"`

	CreatedBy string    `json:"created_by" gorm:"index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Slides []Slide `json:"slides,omitempty" gorm:"foreignKey:BreakdownID"`
}

// SlideKind is the discriminant of the slide sum type.
type SlideKind string

const (
	SlideTheory   SlideKind = "theory"
	SlideQuestion SlideKind = "question"
)

// Slide is one step of a breakdown. Theory slides carry only the shared
// fields; question slides additionally embed a reduced question shape
// (no marking metadata) plus a hint and a detailed answer.
//
// SlideOrder is nullable so rows written before explicit ordering existed
// can be detected and backfilled (order = creation order).
type Slide struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	BreakdownID uint      `json:"breakdown_id" gorm:"not null;index"`
	Kind        SlideKind `json:"kind" gorm:"not null;size:10"`

	Title    string  `json:"title" gorm:"size:300"`
	Content  string  `json:"content" gorm:"type:text"`
	ImageURL *string `json:"image_url" gorm:"size:500"`
	Hint     string  `json:"hint" gorm:"type:text"`

	SlideOrder *int `json:"slide_order" gorm:"index"`

	// Question-kind fields. Unused (zero) on theory slides; consumers
	// must switch on Kind.
	Type           QuestionType                  `json:"type,omitempty" gorm:"size:20"`
	QuestionText   string                        `json:"question_text,omitempty" gorm:"type:text"`
	DetailedAnswer string                        `json:"detailed_answer,omitempty" gorm:"type:text"`
	SkillTag       string                        `json:"skill_tag,omitempty" gorm:"size:100"`
	SkillTags      datatypes.JSONSlice[string]   `json:"skill_tags,omitempty" gorm:"type:jsonb"`
	Choices        datatypes.JSONSlice[string]   `json:"choices,omitempty" gorm:"type:jsonb"`
	AnswerIndex    *int                          `json:"answer_index,omitempty"`
	AnswerIndices  datatypes.JSONSlice[int]      `json:"answer_indices,omitempty" gorm:"type:jsonb"`
	Range          *datatypes.JSONType[NumRange] `json:"range,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NeedsOrderBackfill reports whether the slide predates explicit ordering.
func (s *Slide) NeedsOrderBackfill() bool {
	return s.SlideOrder == nil
}
