package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
)

type VideoPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewVideoPostgreSQL(db *gorm.DB) repositories.VideoRepository {
	return &VideoPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (v *VideoPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return v.db
}

// Create inserts a video and bumps the owning chapter's counter in the
// same transaction.
func (v *VideoPostgreSQL) Create(ctx context.Context, tx *gorm.DB, video *models.ChapterVideo) error {
	if video.ChapterID == 0 {
		return repositories.ErrNoChapterSelected
	}

	db := v.getDB(tx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(video).Error; err != nil {
			return fmt.Errorf("failed to create video: %w", err)
		}
		if err := tx.Model(&models.Chapter{}).
			Where("id = ?", video.ChapterID).
			Update("video_count", gorm.Expr("video_count + 1")).Error; err != nil {
			return fmt.Errorf("failed to bump video counter: %w", err)
		}
		return nil
	})
}

func (v *VideoPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ChapterVideo, error) {
	db := v.getDB(tx)
	var video models.ChapterVideo
	if err := db.WithContext(ctx).First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("video %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return &video, nil
}

func (v *VideoPostgreSQL) Update(ctx context.Context, tx *gorm.DB, video *models.ChapterVideo) error {
	db := v.getDB(tx)
	if err := db.WithContext(ctx).Save(video).Error; err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}
	return nil
}

// Delete removes a video and decrements the owning chapter's counter.
func (v *VideoPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := v.getDB(tx)

	var video models.ChapterVideo
	if err := db.WithContext(ctx).Select("id, chapter_id").First(&video, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("video %d: %w", id, repositories.ErrNotFound)
		}
		return fmt.Errorf("failed to get video before delete: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ChapterVideo{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete video: %w", err)
		}
		if err := tx.Model(&models.Chapter{}).
			Where("id = ?", video.ChapterID).
			Update("video_count", gorm.Expr("GREATEST(video_count - 1, 0)")).Error; err != nil {
			return fmt.Errorf("failed to decrement video counter: %w", err)
		}
		return nil
	})
}

// GetByChapter lists a chapter's videos with filtering and pagination
func (v *VideoPostgreSQL) GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint, filters repositories.VideoFilters) ([]*models.ChapterVideo, int64, error) {
	if chapterID == 0 {
		return nil, 0, repositories.ErrNoChapterSelected
	}

	db := v.getDB(tx)
	query := db.WithContext(ctx).Model(&models.ChapterVideo{}).Where("chapter_id = ?", chapterID)

	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.SkillTag != nil {
		query = query.Where("skill_tag = ?", *filters.SkillTag)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count videos: %w", err)
	}

	sortBy := filters.SortBy
	if sortBy == "" {
		sortBy = "display_order"
	}
	sortOrder := filters.SortOrder
	if sortOrder == "" {
		sortOrder = "asc"
	}
	query = v.helpers.ApplyPaginationAndSort(query, sortBy, sortOrder, filters.Limit, filters.Offset)

	var videos []*models.ChapterVideo
	if err := query.Find(&videos).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list videos: %w", err)
	}

	return videos, total, nil
}

func (v *VideoPostgreSQL) CountByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) (int64, error) {
	db := v.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.ChapterVideo{}).
		Where("chapter_id = ?", chapterID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count videos: %w", err)
	}
	return count, nil
}
