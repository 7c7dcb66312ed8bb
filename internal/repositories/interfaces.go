package repositories

import (
	"context"

	"github.com/prepforge/content-admin-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ChapterFilters struct {
	Subject   *string `json:"subject"`
	Search    string  `json:"search"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortBy    string  `json:"sort_by"`    // "created_at", "name", "display_order"
	SortOrder string  `json:"sort_order"` // "asc", "desc"
}

type QuestionFilters struct {
	ChapterIDs []uint                 `json:"chapter_ids"`
	Bank       *models.QuestionBank   `json:"bank"`
	Types      []models.QuestionType  `json:"types"`
	Exam       *models.ExamType       `json:"exam"`
	Status     *models.QuestionStatus `json:"status"`
	Band       *models.DifficultyBand `json:"band"`
	Tags       []string               `json:"tags"`
	Search     string                 `json:"search"`
	Limit      int                    `json:"limit"`
	Offset     int                    `json:"offset"`
	SortBy     string                 `json:"sort_by"`
	SortOrder  string                 `json:"sort_order"`
}

type VideoFilters struct {
	Difficulty *int   `json:"difficulty"`
	SkillTag   *string `json:"skill_tag"`
	Limit      int    `json:"limit"`
	Offset     int    `json:"offset"`
	SortBy     string `json:"sort_by"`
	SortOrder  string `json:"sort_order"`
}

type TestFilters struct {
	Status    *models.TestStatus `json:"status"`
	Exam      *models.ExamType   `json:"exam"`
	Search    string             `json:"search"`
	Limit     int                `json:"limit"`
	Offset    int                `json:"offset"`
	SortBy    string             `json:"sort_by"`
	SortOrder string             `json:"sort_order"`
}

// ===== ENTITY REPOSITORIES =====

// ChapterRepository covers the chapter catalog plus its denormalized
// child counters and skill tag vocabulary.
type ChapterRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Chapter, error)
	Update(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters ChapterFilters) ([]*models.Chapter, int64, error)
	ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error)

	// Counter maintenance
	IncrementCounter(ctx context.Context, tx *gorm.DB, id uint, column string, delta int) error
	RecountChildren(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error)

	// Skill tag vocabulary
	GetSkillTags(ctx context.Context, tx *gorm.DB, id uint) ([]string, error)
	UpdateSkillTags(ctx context.Context, tx *gorm.DB, id uint, tags []string) error

	// AllSkillTags is the distinct union across every chapter.
	AllSkillTags(ctx context.Context, tx *gorm.DB) ([]string, error)
}

// QuestionRepository covers all three chapter-scoped question banks;
// the bank discriminator selects which one an operation touches.
type QuestionRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, question *models.Question) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error)
	Update(ctx context.Context, tx *gorm.DB, question *models.Question) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters QuestionFilters) ([]*models.Question, int64, error)
	GetByChapterAndBank(ctx context.Context, tx *gorm.DB, chapterID uint, bank models.QuestionBank) ([]*models.Question, error)
	Search(ctx context.Context, tx *gorm.DB, query string, filters QuestionFilters) ([]*models.Question, int64, error)
	GetByRefPath(ctx context.Context, tx *gorm.DB, refPath string) (*models.Question, error)

	// Counts
	CountByChapterAndBank(ctx context.Context, tx *gorm.DB, chapterID uint, bank models.QuestionBank) (int64, error)
}

// BreakdownRepository manages question breakdowns under a chapter.
type BreakdownRepository interface {
	Create(ctx context.Context, tx *gorm.DB, breakdown *models.Breakdown) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Breakdown, error)
	GetByIDWithSlides(ctx context.Context, tx *gorm.DB, id uint) (*models.Breakdown, error)
	Update(ctx context.Context, tx *gorm.DB, breakdown *models.Breakdown) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) ([]*models.Breakdown, error)
	CountByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) (int64, error)
}

// SlideRepository manages the ordered slide deck of a breakdown.
type SlideRepository interface {
	Create(ctx context.Context, tx *gorm.DB, slide *models.Slide) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Slide, error)
	Update(ctx context.Context, tx *gorm.DB, slide *models.Slide) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByBreakdown(ctx context.Context, tx *gorm.DB, breakdownID uint) ([]*models.Slide, error)
	MaxOrder(ctx context.Context, tx *gorm.DB, breakdownID uint) (int, error)

	// Ordering maintenance. BackfillOrder assigns sequential positions to
	// legacy rows whose slide_order is null, in creation order.
	SwapOrder(ctx context.Context, tx *gorm.DB, breakdownID uint, slideID, neighborID uint) error
	BackfillOrder(ctx context.Context, tx *gorm.DB, breakdownID uint) (int, error)
}

// VideoRepository manages chapter lecture videos.
type VideoRepository interface {
	Create(ctx context.Context, tx *gorm.DB, video *models.ChapterVideo) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ChapterVideo, error)
	Update(ctx context.Context, tx *gorm.DB, video *models.ChapterVideo) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint, filters VideoFilters) ([]*models.ChapterVideo, int64, error)
	CountByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) (int64, error)
}

// TestRepository manages mock test metadata.
type TestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, test *models.TestMeta) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestMeta, error)
	GetByIDWithItems(ctx context.Context, tx *gorm.DB, id uint) (*models.TestMeta, error)
	Update(ctx context.Context, tx *gorm.DB, test *models.TestMeta) error

	// Delete removes the meta row and every item row together.
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	List(ctx context.Context, tx *gorm.DB, filters TestFilters) ([]*models.TestMeta, int64, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.TestStatus) error
}

// TestItemRepository manages the ordered question list of a mock test.
type TestItemRepository interface {
	GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestItem, error)
	CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error)

	// ReplaceAll deletes the test's current items and inserts the given
	// slice, stamping each row's item_order with its slice index.
	ReplaceAll(ctx context.Context, tx *gorm.DB, testID uint, items []*models.TestItem) error
	DeleteByTest(ctx context.Context, tx *gorm.DB, testID uint) error
}

// UserRepository is a read-mostly mirror of the identity provider's
// admin accounts.
type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error)
	Upsert(ctx context.Context, tx *gorm.DB, user *models.User) error
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.User, int64, error)
}
