package services

import (
	"context"

	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
	"github.com/prepforge/content-admin-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Use business validator types
type CreateChapterRequest = validator.ChapterCreateRequest
type UpdateChapterRequest = validator.ChapterUpdateRequest
type CreateQuestionRequest = validator.QuestionCreateRequest
type UpdateQuestionRequest = validator.QuestionUpdateRequest
type CreateBreakdownRequest = validator.BreakdownCreateRequest
type UpdateBreakdownRequest = validator.BreakdownUpdateRequest
type CreateSlideRequest = validator.SlideCreateRequest
type UpdateSlideRequest = validator.SlideUpdateRequest
type CreateVideoRequest = validator.VideoCreateRequest
type UpdateVideoRequest = validator.VideoUpdateRequest
type CreateTestRequest = validator.TestCreateRequest
type UpdateTestRequest = validator.TestUpdateRequest
type SaveTestItemsRequest = validator.SaveTestItemsRequest
type TestItemRequest = validator.TestItemRequest

type ChapterResponse struct {
	*models.Chapter
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type ChapterListResponse struct {
	Chapters []*ChapterResponse `json:"chapters"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	Size     int                `json:"size"`
}

type QuestionResponse struct {
	*models.Question
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type QuestionListResponse struct {
	Questions []*QuestionResponse `json:"questions"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	Size      int                 `json:"size"`
}

type BreakdownResponse struct {
	*models.Breakdown
	SlideCount int  `json:"slide_count"`
	CanEdit    bool `json:"can_edit"`
	CanDelete  bool `json:"can_delete"`
}

type VideoListResponse struct {
	Videos []*models.ChapterVideo `json:"videos"`
	Total  int64                  `json:"total"`
}

type TestResponse struct {
	*models.TestMeta
	CanEdit    bool `json:"can_edit"`
	CanDelete  bool `json:"can_delete"`
	CanPublish bool `json:"can_publish"`
}

type TestListResponse struct {
	Tests []*TestResponse `json:"tests"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

// CandidateRequest selects builder candidates: the union of the chosen
// chapters' test banks, filtered client-side criteria applied in SQL.
type CandidateRequest struct {
	ChapterIDs []uint                 `json:"chapter_ids" validate:"required,min=1"`
	Types      []models.QuestionType  `json:"types"`
	Band       *models.DifficultyBand `json:"band"`
	Tags       []string               `json:"tags"`
	Search     string                 `json:"search"`
}

// StageValidation is the builder's per-stage gate result.
type StageValidation struct {
	Stage  int      `json:"stage"`
	Valid  bool     `json:"valid"`
	Issues []string `json:"issues,omitempty"`
}

// SuggestionInput is the operator-facing request for AI annotation.
type SuggestionInput struct {
	ChapterID      uint   `json:"chapter_id" validate:"required"`
	QuestionText   string `json:"question_text" validate:"required"`
	DetailedAnswer string `json:"detailed_answer"`
	Exam           string `json:"exam"`
}

// ===== SERVICE INTERFACES =====

type ChapterService interface {
	Create(ctx context.Context, req *CreateChapterRequest, creatorID string) (*ChapterResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*ChapterResponse, error)
	List(ctx context.Context, filters repositories.ChapterFilters, userID string) (*ChapterListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateChapterRequest, userID string) (*ChapterResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// Skill tag vocabulary
	GetSkillTags(ctx context.Context, id uint, userID string) ([]string, error)
	UpdateSkillTags(ctx context.Context, id uint, tags []string, userID string) ([]string, error)

	// ListAllSkillTags is the distinct union across every chapter.
	ListAllSkillTags(ctx context.Context, userID string) ([]string, error)

	// Recount reconciles the denormalized child counters from source.
	Recount(ctx context.Context, id uint, userID string) (*ChapterResponse, error)
}

type QuestionService interface {
	Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*QuestionResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*QuestionResponse, error)
	Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string) (*QuestionResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	ListByChapter(ctx context.Context, chapterID uint, bank models.QuestionBank, userID string) ([]*QuestionResponse, error)
	List(ctx context.Context, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error)
	Search(ctx context.Context, query string, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error)

	// BackfillTestBank fills missing computed fields across a chapter's
	// test bank, returning the number of rows it touched.
	BackfillTestBank(ctx context.Context, chapterID uint, userID string) (int, error)
}

type BreakdownService interface {
	Create(ctx context.Context, req *CreateBreakdownRequest, creatorID string) (*BreakdownResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*BreakdownResponse, error)
	GetWithSlides(ctx context.Context, id uint, userID string) (*models.Breakdown, error)
	Update(ctx context.Context, id uint, req *UpdateBreakdownRequest, userID string) (*BreakdownResponse, error)
	Delete(ctx context.Context, id uint, userID string) error
	ListByChapter(ctx context.Context, chapterID uint, userID string) ([]*BreakdownResponse, error)

	// Slides
	AddSlide(ctx context.Context, breakdownID uint, req *CreateSlideRequest, userID string) (*models.Slide, error)
	UpdateSlide(ctx context.Context, breakdownID, slideID uint, req *UpdateSlideRequest, userID string) (*models.Slide, error)
	DeleteSlide(ctx context.Context, breakdownID, slideID uint, userID string) error

	// MoveSlide swaps a slide with its neighbor; moving past either end
	// is a no-op. Decks with unpositioned rows are backfilled first.
	MoveSlide(ctx context.Context, breakdownID, slideID uint, direction MoveDirection, userID string) ([]*models.Slide, error)
}

type VideoService interface {
	Create(ctx context.Context, req *CreateVideoRequest, creatorID string) (*models.ChapterVideo, error)
	GetByID(ctx context.Context, id uint, userID string) (*models.ChapterVideo, error)
	Update(ctx context.Context, id uint, req *UpdateVideoRequest, userID string) (*models.ChapterVideo, error)
	Delete(ctx context.Context, id uint, userID string) error
	ListByChapter(ctx context.Context, chapterID uint, filters repositories.VideoFilters, userID string) (*VideoListResponse, error)
}

type TestBuilderService interface {
	Create(ctx context.Context, req *CreateTestRequest, creatorID string) (*TestResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*TestResponse, error)
	GetWithItems(ctx context.Context, id uint, userID string) (*TestResponse, error)
	List(ctx context.Context, filters repositories.TestFilters, userID string) (*TestListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateTestRequest, userID string) (*TestResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// FetchCandidates returns the union of the selected chapters' test
	// banks for the builder's picker.
	FetchCandidates(ctx context.Context, req *CandidateRequest, userID string) ([]*QuestionResponse, error)

	// SaveItems replaces the full item set in order and rewrites the
	// derived counts, syllabus chapters and tag union. A source question
	// may appear at most once per test.
	SaveItems(ctx context.Context, id uint, req *SaveTestItemsRequest, userID string) (*TestResponse, error)

	// MoveItem swaps an item with its neighbor in paper order; moving
	// past either end is a no-op.
	MoveItem(ctx context.Context, id, questionID uint, direction MoveDirection, userID string) (*TestResponse, error)

	// ApplyAssignedMarks copies each source question's own marks onto its
	// item, skipping items whose source has been deleted.
	ApplyAssignedMarks(ctx context.Context, id uint, userID string) (*TestResponse, error)

	// ValidateStage gates the builder's step transitions.
	ValidateStage(ctx context.Context, id uint, stage int, userID string) (*StageValidation, error)

	Publish(ctx context.Context, id uint, userID string) (*TestResponse, error)
	Archive(ctx context.Context, id uint, userID string) (*TestResponse, error)
}

type SuggestionService interface {
	Suggest(ctx context.Context, req *SuggestionInput, userID string) (*SuggestionResult, error)

	// RefineLatex cleans up LaTeX markup; with no model configured the
	// content comes back unchanged.
	RefineLatex(ctx context.Context, content string, userID string) (string, error)

	Enabled() bool
}

// SuggestionResult is the reviewed-by-operator annotation proposal.
type SuggestionResult struct {
	SkillTags    []string `json:"skill_tags"`
	Title        string   `json:"title"`
	Difficulty   int      `json:"difficulty"`
	QuestionText string   `json:"question_text"`
	FromModel    bool     `json:"from_model"`
}

type ExportService interface {
	// ExportChapterBank renders one chapter's bank as an XLSX workbook.
	ExportChapterBank(ctx context.Context, chapterID uint, bank models.QuestionBank, userID string) ([]byte, string, error)

	// ExportTest renders a mock test's item list as an XLSX workbook.
	ExportTest(ctx context.Context, testID uint, userID string) ([]byte, string, error)
}

// MoveDirection is the slide/item reorder direction.
type MoveDirection string

const (
	MoveUp   MoveDirection = "up"
	MoveDown MoveDirection = "down"
)

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Chapter() ChapterService
	Question() QuestionService
	Breakdown() BreakdownService
	Video() VideoService
	TestBuilder() TestBuilderService
	Suggestion() SuggestionService
	Export() ExportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
