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

type TestPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewTestPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.TestRepository {
	return &TestPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (t *TestPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

// Create creates a new mock test
func (t *TestPostgreSQL) Create(ctx context.Context, tx *gorm.DB, test *models.TestMeta) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Omit("Items").Create(test).Error; err != nil {
		return fmt.Errorf("failed to create test: %w", err)
	}

	cache.SafeInvalidatePattern(ctx, t.cacheManager.Test, "list:*")

	return nil
}

// GetByID retrieves a test's meta row with caching
func (t *TestPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestMeta, error) {
	db := t.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var test models.TestMeta

	err := t.cacheManager.Test.CacheOrExecute(ctx, cacheKey, &test, cache.TestCacheConfig.TTL, func() (interface{}, error) {
		var dbTest models.TestMeta
		if err := db.WithContext(ctx).First(&dbTest, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("test %d: %w", id, repositories.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to get test: %w", err)
		}
		return &dbTest, nil
	})

	if err != nil {
		return nil, err
	}

	return &test, nil
}

// GetByIDWithItems retrieves a test with its ordered item list
func (t *TestPostgreSQL) GetByIDWithItems(ctx context.Context, tx *gorm.DB, id uint) (*models.TestMeta, error) {
	db := t.getDB(tx)
	var test models.TestMeta
	if err := db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("item_order ASC")
		}).
		First(&test, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("test %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get test with items: %w", err)
	}
	return &test, nil
}

// Update updates a test's meta row
func (t *TestPostgreSQL) Update(ctx context.Context, tx *gorm.DB, test *models.TestMeta) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).Omit("Items").Save(test).Error; err != nil {
		return fmt.Errorf("failed to update test: %w", err)
	}

	cache.InvalidateTestCache(ctx, t.cacheManager, test.ID)

	return nil
}

// Delete removes the meta row and every item row in one transaction.
func (t *TestPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := t.getDB(tx)
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", id).Delete(&models.TestItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete test items: %w", err)
		}
		result := tx.Delete(&models.TestMeta{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete test: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("test %d: %w", id, repositories.ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	cache.InvalidateTestCache(ctx, t.cacheManager, id)

	return nil
}

// List retrieves tests with filtering and pagination
func (t *TestPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.TestMeta, int64, error) {
	db := t.getDB(tx)
	query := db.WithContext(ctx).Model(&models.TestMeta{})
	query = t.helpers.ApplyTestFilters(query, filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count tests: %w", err)
	}

	query = t.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	var tests []*models.TestMeta
	if err := query.Find(&tests).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list tests: %w", err)
	}

	return tests, total, nil
}

// UpdateStatus changes a test's lifecycle status
func (t *TestPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.TestStatus) error {
	db := t.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.TestMeta{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return fmt.Errorf("failed to update test status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("test %d: %w", id, repositories.ErrNotFound)
	}

	cache.InvalidateTestCache(ctx, t.cacheManager, id)

	return nil
}

// ===== TEST ITEMS =====

type TestItemPostgreSQL struct {
	db *gorm.DB
}

func NewTestItemPostgreSQL(db *gorm.DB) repositories.TestItemRepository {
	return &TestItemPostgreSQL{db: db}
}

func (t *TestItemPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return t.db
}

// GetByTest returns a test's items in stored order
func (t *TestItemPostgreSQL) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestItem, error) {
	db := t.getDB(tx)
	var items []*models.TestItem
	if err := db.WithContext(ctx).
		Where("test_id = ?", testID).
		Order("item_order ASC").
		Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get test items: %w", err)
	}
	return items, nil
}

func (t *TestItemPostgreSQL) CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	db := t.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.TestItem{}).
		Where("test_id = ?", testID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count test items: %w", err)
	}
	return count, nil
}

// ReplaceAll deletes the current item set and inserts the given one in a
// single transaction, stamping each row's item_order with its slice
// index so the stored order always matches the builder's list.
func (t *TestItemPostgreSQL) ReplaceAll(ctx context.Context, tx *gorm.DB, testID uint, items []*models.TestItem) error {
	db := t.getDB(tx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", testID).Delete(&models.TestItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear test items: %w", err)
		}
		if len(items) == 0 {
			return nil
		}
		for i, item := range items {
			item.ID = 0
			item.TestID = testID
			item.ItemOrder = i
		}
		if err := tx.CreateInBatches(items, 100).Error; err != nil {
			return fmt.Errorf("failed to insert test items: %w", err)
		}
		return nil
	})
}

// DeleteByTest removes every item of a test
func (t *TestItemPostgreSQL) DeleteByTest(ctx context.Context, tx *gorm.DB, testID uint) error {
	db := t.getDB(tx)
	if err := db.WithContext(ctx).
		Where("test_id = ?", testID).
		Delete(&models.TestItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete test items: %w", err)
	}
	return nil
}
