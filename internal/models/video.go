package models

import "time"

// ChapterVideo is an instructional video attached to a chapter. It has no
// cross-references beyond the chapter and an optional prerequisite.
type ChapterVideo struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ChapterID   uint   `json:"chapter_id" gorm:"not null;index"`
	Title       string `json:"title" gorm:"not null;size:300" validate:"required"`
	Description string `json:"description" gorm:"type:text"`

	SkillTag string `json:"skill_tag" gorm:"size:100"`

	StoragePath   string `json:"storage_path" gorm:"not null;size:500"`
	ThumbnailPath string `json:"thumbnail_path" gorm:"size:500"`

	DurationSec  int     `json:"duration_sec"`
	Difficulty   int     `json:"difficulty" gorm:"default:5"` // 1-10
	Prereq       *string `json:"prereq,omitempty" gorm:"size:300"`
	DisplayOrder int     `json:"display_order" gorm:"default:0"`

	CreatedBy string    `json:"created_by" gorm:"index;size:255"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
