package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/prepforge/content-admin-service/internal/cache"
	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
)

type QuestionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewQuestionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.QuestionRepository {
	return &QuestionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (q *QuestionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return q.db
}

// ===== BASIC CRUD OPERATIONS =====

// Create inserts a question and bumps the owning chapter's bank counter
// in the same transaction.
func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if question.ChapterID == 0 {
		return repositories.ErrNoChapterSelected
	}

	db := q.getDB(tx)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(question).Error; err != nil {
			return fmt.Errorf("failed to create question: %w", err)
		}
		column := models.CounterColumn(question.Bank)
		if err := tx.Model(&models.Chapter{}).
			Where("id = ?", question.ChapterID).
			Update(column, gorm.Expr(column+" + 1")).Error; err != nil {
			return fmt.Errorf("failed to bump chapter counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID, question.ChapterID)
	cache.InvalidateChapterCache(ctx, q.cacheManager, question.ChapterID)

	return nil
}

// GetByID retrieves a question by ID with caching
func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var question models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &question, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var dbQuestion models.Question
		if err := db.WithContext(ctx).First(&dbQuestion, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("question %d: %w", id, repositories.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get question: %w", err)
		}
		return &dbQuestion, nil
	})

	if err != nil {
		return nil, err
	}

	return &question, nil
}

// GetByIDs retrieves multiple questions by their IDs
func (q *QuestionPostgreSQL) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	if len(ids) == 0 {
		return []*models.Question{}, nil
	}

	db := q.getDB(tx)
	var questions []*models.Question
	if err := db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("failed to get questions by IDs: %w", err)
	}
	return questions, nil
}

// Update updates a question
func (q *QuestionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	db := q.getDB(tx)
	if err := db.WithContext(ctx).Save(question).Error; err != nil {
		return fmt.Errorf("failed to update question: %w", err)
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, question.ID, question.ChapterID)

	return nil
}

// Delete removes a question and decrements the owning chapter's counter
// in the same transaction.
func (q *QuestionPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := q.getDB(tx)

	var question models.Question
	if err := db.WithContext(ctx).Select("id, chapter_id, bank").First(&question, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("question %d: %w", id, repositories.ErrNotFound)
		}
		return fmt.Errorf("failed to get question before delete: %w", err)
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Question{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete question: %w", err)
		}
		column := models.CounterColumn(question.Bank)
		if err := tx.Model(&models.Chapter{}).
			Where("id = ?", question.ChapterID).
			Update(column, gorm.Expr("GREATEST("+column+" - 1, 0)")).Error; err != nil {
			return fmt.Errorf("failed to decrement chapter counter: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateQuestionCache(ctx, q.cacheManager, id, question.ChapterID)
	cache.InvalidateChapterCache(ctx, q.cacheManager, question.ChapterID)

	return nil
}

// ===== QUERY OPERATIONS =====

// List retrieves questions with filtering and pagination
func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	db := q.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Question{})
	query = q.helpers.ApplyQuestionFilters(query, filters)

	if filters.Search != "" {
		pattern := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR question_text ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count questions: %w", err)
	}

	query = q.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var questions []*models.Question
	if err := query.Find(&questions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list questions: %w", err)
	}

	return questions, total, nil
}

// GetByChapterAndBank returns one chapter's full bank, newest first, with
// caching keyed per chapter and bank.
func (q *QuestionPostgreSQL) GetByChapterAndBank(ctx context.Context, tx *gorm.DB, chapterID uint, bank models.QuestionBank) ([]*models.Question, error) {
	if chapterID == 0 {
		return nil, repositories.ErrNoChapterSelected
	}

	db := q.getDB(tx)
	cacheKey := fmt.Sprintf("chapter:%d:bank:%s", chapterID, bank)
	var questions []*models.Question

	err := q.cacheManager.Question.CacheOrExecute(ctx, cacheKey, &questions, cache.QuestionCacheConfig.TTL, func() (interface{}, error) {
		var rows []*models.Question
		if err := db.WithContext(ctx).
			Where("chapter_id = ? AND bank = ?", chapterID, bank).
			Order("created_at DESC").
			Find(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get chapter bank: %w", err)
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}

	return questions, nil
}

// Search runs a text search across title and question text
func (q *QuestionPostgreSQL) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	filters.Search = query
	return q.List(ctx, tx, filters)
}

// GetByRefPath resolves a stored hierarchical reference back to its row.
func (q *QuestionPostgreSQL) GetByRefPath(ctx context.Context, tx *gorm.DB, refPath string) (*models.Question, error) {
	chapterID, bank, questionID, ok := models.ParseQuestionRefPath(refPath)
	if !ok {
		return nil, fmt.Errorf("malformed ref path %q: %w", refPath, repositories.ErrNotFound)
	}

	db := q.getDB(tx)
	var question models.Question
	if err := db.WithContext(ctx).
		Where("id = ? AND chapter_id = ? AND bank = ?", questionID, chapterID, bank).
		First(&question).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("question at %q: %w", refPath, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to resolve ref path: %w", err)
	}
	return &question, nil
}

// ===== COUNTS =====

// CountByChapterAndBank counts one chapter's bank size
func (q *QuestionPostgreSQL) CountByChapterAndBank(ctx context.Context, tx *gorm.DB, chapterID uint, bank models.QuestionBank) (int64, error) {
	db := q.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Question{}).
		Where("chapter_id = ? AND bank = ?", chapterID, bank).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}
