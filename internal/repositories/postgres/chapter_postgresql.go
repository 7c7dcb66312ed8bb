package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepforge/content-admin-service/internal/cache"
	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
)

type ChapterPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewChapterPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ChapterRepository {
	return &ChapterPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *ChapterPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

// ===== BASIC CRUD OPERATIONS =====

// Create creates a new chapter and invalidates listing caches
func (c *ChapterPostgreSQL) Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(chapter).Error; err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, c.cacheManager.Chapter, "list:*")

	return nil
}

// GetByID retrieves a chapter by ID with caching
func (c *ChapterPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var chapter models.Chapter

	err := c.cacheManager.Chapter.CacheOrExecute(ctx, cacheKey, &chapter, cache.ChapterCacheConfig.TTL, func() (interface{}, error) {
		var dbChapter models.Chapter
		if err := db.WithContext(ctx).First(&dbChapter, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("chapter %d: %w", id, repositories.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get chapter: %w", err)
		}
		return &dbChapter, nil
	})

	if err != nil {
		return nil, err
	}

	return &chapter, nil
}

// GetByIDs retrieves multiple chapters by their IDs
func (c *ChapterPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Chapter, error) {
	if len(ids) == 0 {
		return []*models.Chapter{}, nil
	}

	db := c.getDB(tx)
	var chapters []*models.Chapter
	if err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&chapters).Error; err != nil {
		return nil, fmt.Errorf("failed to get chapters by IDs: %w", err)
	}
	return chapters, nil
}

// Update updates a chapter
func (c *ChapterPostgreSQL) Update(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Save(chapter).Error; err != nil {
		return fmt.Errorf("failed to update chapter: %w", err)
	}

	cache.InvalidateChapterCache(ctx, c.cacheManager, chapter.ID)

	return nil
}

// Delete removes a chapter. Callers are responsible for cascading its
// children inside the same transaction.
func (c *ChapterPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Chapter{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete chapter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("chapter %d: %w", id, repositories.ErrNotFound)
	}

	cache.InvalidateChapterCache(ctx, c.cacheManager, id)

	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves chapters with filtering and pagination
func (c *ChapterPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ChapterFilters) ([]*models.Chapter, int64, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Chapter{})

	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count chapters: %w", err)
	}

	query = c.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var chapters []*models.Chapter
	if err := query.Find(&chapters).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list chapters: %w", err)
	}

	return chapters, total, nil
}

// ExistsByName checks for a duplicate chapter name
func (c *ChapterPostgreSQL) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Chapter{}).Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check chapter name: %w", err)
	}
	return count > 0, nil
}

// ===== COUNTER MAINTENANCE =====

// IncrementCounter bumps a denormalized child counter atomically.
// The column must be one of the chapter counter columns.
func (c *ChapterPostgreSQL) IncrementCounter(ctx context.Context, tx *gorm.DB, id uint, column string, delta int) error {
	allowed := map[string]bool{
		"diagnostic_question_count": true,
		"practice_question_count":   true,
		"test_question_count":       true,
		"breakdown_count":           true,
		"video_count":               true,
	}
	if !allowed[column] {
		return fmt.Errorf("unknown counter column %q", column)
	}

	db := c.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Chapter{}).
		Where("id = ?", id).
		Update(column, gorm.Expr("GREATEST("+column+" + ?, 0)", delta))
	if result.Error != nil {
		return fmt.Errorf("failed to update chapter counter: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("chapter %d: %w", id, repositories.ErrNotFound)
	}

	cache.InvalidateChapterCache(ctx, c.cacheManager, id)

	return nil
}

// RecountChildren reconciles every denormalized counter from the source
// tables and returns the refreshed chapter.
func (c *ChapterPostgreSQL) RecountChildren(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error) {
	db := c.getDB(tx)

	var chapter models.Chapter
	if err := db.WithContext(ctx).First(&chapter, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("chapter %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get chapter for recount: %w", err)
	}

	counts := map[string]int64{}
	for _, bank := range []models.QuestionBank{models.BankDiagnostic, models.BankPractice, models.BankTest} {
		var n int64
		if err := db.WithContext(ctx).
			Model(&models.Question{}).
			Where("chapter_id = ? AND bank = ?", id, bank).
			Count(&n).Error; err != nil {
			return nil, fmt.Errorf("failed to recount %s questions: %w", bank, err)
		}
		counts[models.CounterColumn(bank)] = n
	}

	var breakdowns int64
	if err := db.WithContext(ctx).
		Model(&models.Breakdown{}).
		Where("chapter_id = ?", id).
		Count(&breakdowns).Error; err != nil {
		return nil, fmt.Errorf("failed to recount breakdowns: %w", err)
	}

	var videos int64
	if err := db.WithContext(ctx).
		Model(&models.ChapterVideo{}).
		Where("chapter_id = ?", id).
		Count(&videos).Error; err != nil {
		return nil, fmt.Errorf("failed to recount videos: %w", err)
	}

	updates := map[string]interface{}{
		"diagnostic_question_count": counts["diagnostic_question_count"],
		"practice_question_count":   counts["practice_question_count"],
		"test_question_count":       counts["test_question_count"],
		"breakdown_count":           breakdowns,
		"video_count":               videos,
	}
	if err := db.WithContext(ctx).
		Model(&models.Chapter{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to write recounted values: %w", err)
	}

	chapter.DiagnosticQuestionCount = int(counts["diagnostic_question_count"])
	chapter.PracticeQuestionCount = int(counts["practice_question_count"])
	chapter.TestQuestionCount = int(counts["test_question_count"])
	chapter.BreakdownCount = int(breakdowns)
	chapter.VideoCount = int(videos)

	cache.InvalidateChapterCache(ctx, c.cacheManager, id)

	return &chapter, nil
}

// ===== SKILL TAG VOCABULARY =====

// GetSkillTags returns the chapter's tag vocabulary
func (c *ChapterPostgreSQL) GetSkillTags(ctx context.Context, tx *gorm.DB, id uint) ([]string, error) {
	chapter, err := c.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return []string(chapter.SkillTags), nil
}

// UpdateSkillTags replaces the chapter's tag vocabulary
func (c *ChapterPostgreSQL) UpdateSkillTags(ctx context.Context, tx *gorm.DB, id uint, tags []string) error {
	db := c.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Chapter{}).
		Where("id = ?", id).
		Update("skill_tags", datatypes.JSONSlice[string](tags))
	if result.Error != nil {
		return fmt.Errorf("failed to update chapter skill tags: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("chapter %d: %w", id, repositories.ErrNotFound)
	}

	cache.InvalidateChapterCache(ctx, c.cacheManager, id)

	return nil
}

// AllSkillTags returns the distinct union of every chapter's vocabulary,
// sorted for stable autocomplete lists.
func (c *ChapterPostgreSQL) AllSkillTags(ctx context.Context, tx *gorm.DB) ([]string, error) {
	db := c.getDB(tx)

	var tags []string
	err := db.WithContext(ctx).
		Raw("SELECT DISTINCT jsonb_array_elements_text(skill_tags) AS tag FROM chapters ORDER BY tag").
		Scan(&tags).Error
	if err != nil {
		return nil, fmt.Errorf("failed to collect skill tags: %w", err)
	}

	return tags, nil
}
