package validator

import (
	"github.com/prepforge/content-admin-service/internal/models"
)

// QuestionCreateRequest creates a question in one of the three banks.
// Test-bank metadata fields are optional: absent values are filled by the
// marking-scheme defaulter on the write path.
type QuestionCreateRequest struct {
	ChapterID uint                `json:"chapter_id" validate:"required"`
	Bank      models.QuestionBank `json:"bank" validate:"required,question_bank"`

	Title          string  `json:"title" validate:"omitempty,max=300"`
	QuestionText   string  `json:"question_text" validate:"required,max=10000"`
	DetailedAnswer string  `json:"detailed_answer" validate:"omitempty,max=20000"`
	ImageURL       *string `json:"image_url" validate:"omitempty,max=500"`

	Type       models.QuestionType `json:"type" validate:"required,question_type"`
	Exam       models.ExamType     `json:"exam" validate:"required,exam_type"`
	Difficulty int                 `json:"difficulty" validate:"required,difficulty_range"`

	SkillTag  string   `json:"skill_tag" validate:"omitempty,max=100"`
	SkillTags []string `json:"skill_tags" validate:"omitempty,max=10,dive,max=100"`

	Choices       []string         `json:"choices" validate:"omitempty,min=2,max=6,dive,required"`
	AnswerIndex   *int             `json:"answer_index" validate:"omitempty,min=0,max=5"`
	AnswerIndices []int            `json:"answer_indices" validate:"omitempty,min=1,dive,min=0,max=5"`
	Range         *models.NumRange `json:"range"`

	MarksCorrect     *int                  `json:"marks_correct"`
	MarksWrong       *int                  `json:"marks_wrong"`
	TimeSuggestedSec *int                  `json:"time_suggested_sec" validate:"omitempty,min=10,max=3600"`
	OptionShuffle    *bool                 `json:"option_shuffle"`
	PartialScheme    *models.PartialScheme `json:"partial_scheme"`
	Status           models.QuestionStatus `json:"status" validate:"omitempty,oneof=ACTIVE RETIRED"`
}

// QuestionUpdateRequest mutates a question in place. All fields optional.
type QuestionUpdateRequest struct {
	Title          *string `json:"title" validate:"omitempty,max=300"`
	QuestionText   *string `json:"question_text" validate:"omitempty,max=10000"`
	DetailedAnswer *string `json:"detailed_answer" validate:"omitempty,max=20000"`
	ImageURL       *string `json:"image_url" validate:"omitempty,max=500"`

	Type       *models.QuestionType `json:"type" validate:"omitempty,question_type"`
	Exam       *models.ExamType     `json:"exam" validate:"omitempty,exam_type"`
	Difficulty *int                 `json:"difficulty" validate:"omitempty,difficulty_range"`

	SkillTag  *string  `json:"skill_tag" validate:"omitempty,max=100"`
	SkillTags []string `json:"skill_tags" validate:"omitempty,max=10,dive,max=100"`

	Choices       []string         `json:"choices" validate:"omitempty,min=2,max=6,dive,required"`
	AnswerIndex   *int             `json:"answer_index" validate:"omitempty,min=0,max=5"`
	AnswerIndices []int            `json:"answer_indices" validate:"omitempty,min=1,dive,min=0,max=5"`
	Range         *models.NumRange `json:"range"`

	MarksCorrect     *int                  `json:"marks_correct"`
	MarksWrong       *int                  `json:"marks_wrong"`
	TimeSuggestedSec *int                  `json:"time_suggested_sec" validate:"omitempty,min=10,max=3600"`
	OptionShuffle    *bool                 `json:"option_shuffle"`
	PartialScheme    *models.PartialScheme `json:"partial_scheme"`
	Status           *models.QuestionStatus `json:"status" validate:"omitempty,oneof=ACTIVE RETIRED"`
}

// ChapterCreateRequest creates a chapter.
type ChapterCreateRequest struct {
	Name      string   `json:"name" validate:"required,max=200"`
	Slug      string   `json:"slug" validate:"omitempty,max=200"`
	Subject   string   `json:"subject" validate:"omitempty,max=100"`
	SkillTags []string `json:"skill_tags" validate:"omitempty,dive,max=100"`
}

// ChapterUpdateRequest mutates a chapter.
type ChapterUpdateRequest struct {
	Name      *string  `json:"name" validate:"omitempty,max=200"`
	Subject   *string  `json:"subject" validate:"omitempty,max=100"`
	SkillTags []string `json:"skill_tags" validate:"omitempty,dive,max=100"`
}

// BreakdownCreateRequest creates a breakdown under a chapter.
type BreakdownCreateRequest struct {
	ChapterID   uint                `json:"chapter_id" validate:"required"`
	Title       string              `json:"title" validate:"required,max=300"`
	Description string              `json:"description" validate:"omitempty,max=5000"`
	Type        models.QuestionType `json:"type" validate:"omitempty,question_type"`
	SkillTag    string              `json:"skill_tag" validate:"omitempty,max=100"`
	SkillTags   []string            `json:"skill_tags" validate:"omitempty,max=10,dive,max=100"`
}

// BreakdownUpdateRequest mutates a breakdown.
type BreakdownUpdateRequest struct {
	Title       *string              `json:"title" validate:"omitempty,max=300"`
	Description *string              `json:"description" validate:"omitempty,max=5000"`
	Type        *models.QuestionType `json:"type" validate:"omitempty,question_type"`
	SkillTag    *string              `json:"skill_tag" validate:"omitempty,max=100"`
	SkillTags   []string             `json:"skill_tags" validate:"omitempty,max=10,dive,max=100"`
}

// SlideCreateRequest appends a slide to a breakdown.
type SlideCreateRequest struct {
	Kind     models.SlideKind `json:"kind" validate:"required,oneof=theory question"`
	Title    string           `json:"title" validate:"omitempty,max=300"`
	Content  string           `json:"content" validate:"omitempty,max=20000"`
	ImageURL *string          `json:"image_url" validate:"omitempty,max=500"`
	Hint     string           `json:"hint" validate:"omitempty,max=5000"`

	Type           models.QuestionType `json:"type" validate:"omitempty,question_type"`
	QuestionText   string              `json:"question_text" validate:"omitempty,max=10000"`
	DetailedAnswer string              `json:"detailed_answer" validate:"omitempty,max=20000"`
	SkillTag       string              `json:"skill_tag" validate:"omitempty,max=100"`
	SkillTags      []string            `json:"skill_tags" validate:"omitempty,max=10,dive,max=100"`
	Choices        []string            `json:"choices" validate:"omitempty,min=2,max=6,dive,required"`
	AnswerIndex    *int                `json:"answer_index" validate:"omitempty,min=0,max=5"`
	AnswerIndices  []int               `json:"answer_indices" validate:"omitempty,min=1,dive,min=0,max=5"`
	Range          *models.NumRange    `json:"range"`
}

// SlideUpdateRequest mutates a slide. The kind is immutable after
// creation.
type SlideUpdateRequest struct {
	Title    *string `json:"title" validate:"omitempty,max=300"`
	Content  *string `json:"content" validate:"omitempty,max=20000"`
	ImageURL *string `json:"image_url" validate:"omitempty,max=500"`
	Hint     *string `json:"hint" validate:"omitempty,max=5000"`

	QuestionText   *string          `json:"question_text" validate:"omitempty,max=10000"`
	DetailedAnswer *string          `json:"detailed_answer" validate:"omitempty,max=20000"`
	SkillTag       *string          `json:"skill_tag" validate:"omitempty,max=100"`
	SkillTags      []string         `json:"skill_tags" validate:"omitempty,max=10,dive,max=100"`
	Choices        []string         `json:"choices" validate:"omitempty,min=2,max=6,dive,required"`
	AnswerIndex    *int             `json:"answer_index" validate:"omitempty,min=0,max=5"`
	AnswerIndices  []int            `json:"answer_indices" validate:"omitempty,min=1,dive,min=0,max=5"`
	Range          *models.NumRange `json:"range"`
}

// VideoCreateRequest creates a chapter video.
type VideoCreateRequest struct {
	ChapterID     uint    `json:"chapter_id" validate:"required"`
	Title         string  `json:"title" validate:"required,max=300"`
	Description   string  `json:"description" validate:"omitempty,max=5000"`
	SkillTag      string  `json:"skill_tag" validate:"omitempty,max=100"`
	StoragePath   string  `json:"storage_path" validate:"required,max=500"`
	ThumbnailPath string  `json:"thumbnail_path" validate:"omitempty,max=500"`
	DurationSec   int     `json:"duration_sec" validate:"omitempty,min=0"`
	Difficulty    int     `json:"difficulty" validate:"omitempty,difficulty_range"`
	Prereq        *string `json:"prereq" validate:"omitempty,max=300"`
	DisplayOrder  int     `json:"display_order"`
}

// VideoUpdateRequest mutates a chapter video.
type VideoUpdateRequest struct {
	Title         *string `json:"title" validate:"omitempty,max=300"`
	Description   *string `json:"description" validate:"omitempty,max=5000"`
	SkillTag      *string `json:"skill_tag" validate:"omitempty,max=100"`
	StoragePath   *string `json:"storage_path" validate:"omitempty,max=500"`
	ThumbnailPath *string `json:"thumbnail_path" validate:"omitempty,max=500"`
	DurationSec   *int    `json:"duration_sec" validate:"omitempty,min=0"`
	Difficulty    *int    `json:"difficulty" validate:"omitempty,difficulty_range"`
	Prereq        *string `json:"prereq" validate:"omitempty,max=300"`
	DisplayOrder  *int    `json:"display_order"`
}

// TestCreateRequest creates a draft mock test (builder stage 1).
type TestCreateRequest struct {
	Name                string          `json:"name" validate:"required,max=300"`
	Description         string          `json:"description" validate:"omitempty,max=5000"`
	Exam                models.ExamType `json:"exam" validate:"required,exam_type"`
	DurationSec         int             `json:"duration_sec" validate:"omitempty,min=0"`
	ShuffleQuestions    *bool           `json:"shuffle_questions"`
	ShuffleOptions      *bool           `json:"shuffle_options"`
	MarksCorrectDefault *int            `json:"marks_correct_default"`
	MarksWrongDefault   *int            `json:"marks_wrong_default"`
	SyllabusChapters    []uint          `json:"syllabus_chapters" validate:"required,min=1"`
}

// TestUpdateRequest mutates a test's basics.
type TestUpdateRequest struct {
	Name                *string          `json:"name" validate:"omitempty,max=300"`
	Description         *string          `json:"description" validate:"omitempty,max=5000"`
	Exam                *models.ExamType `json:"exam" validate:"omitempty,exam_type"`
	DurationSec         *int             `json:"duration_sec" validate:"omitempty,min=0"`
	ShuffleQuestions    *bool            `json:"shuffle_questions"`
	ShuffleOptions      *bool            `json:"shuffle_options"`
	MarksCorrectDefault *int             `json:"marks_correct_default"`
	MarksWrongDefault   *int             `json:"marks_wrong_default"`
	SyllabusChapters    []uint           `json:"syllabus_chapters" validate:"omitempty,min=1"`
}

// TestItemRequest is one entry of the replace-all item save.
type TestItemRequest struct {
	QuestionID       uint                        `json:"question_id" validate:"required"`
	ChapterID        uint                        `json:"chapter_id" validate:"required"`
	RefPath          string                      `json:"ref_path" validate:"omitempty,max=300"`
	MarksCorrect     *int                        `json:"marks_correct"`
	MarksWrong       *int                        `json:"marks_wrong"`
	Title            string                      `json:"title" validate:"omitempty,max=300"`
	Type             models.QuestionType         `json:"type" validate:"omitempty,question_type"`
	DifficultyBand   models.DifficultyBand       `json:"difficulty_band" validate:"omitempty,oneof=easy moderate tough"`
	SkillTags        []string                    `json:"skill_tags" validate:"omitempty,dive,max=100"`
	TimeSuggestedSec *int                        `json:"time_suggested_sec"`
}

// SaveTestItemsRequest replaces a test's entire item set in order.
type SaveTestItemsRequest struct {
	Items []TestItemRequest `json:"items" validate:"required,dive"`
}
