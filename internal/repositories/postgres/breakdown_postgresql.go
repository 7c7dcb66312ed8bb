package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
)

type BreakdownPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewBreakdownPostgreSQL(db *gorm.DB) repositories.BreakdownRepository {
	return &BreakdownPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (b *BreakdownPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return b.db
}

// Create inserts a breakdown and bumps the owning chapter's counter in
// the same transaction.
func (b *BreakdownPostgreSQL) Create(ctx context.Context, tx *gorm.DB, breakdown *models.Breakdown) error {
	if breakdown.ChapterID == 0 {
		return repositories.ErrNoChapterSelected
	}

	db := b.getDB(tx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(breakdown).Error; err != nil {
			return fmt.Errorf("failed to create breakdown: %w", err)
		}
		if err := tx.Model(&models.Chapter{}).
			Where("id = ?", breakdown.ChapterID).
			Update("breakdown_count", gorm.Expr("breakdown_count + 1")).Error; err != nil {
			return fmt.Errorf("failed to bump breakdown counter: %w", err)
		}
		return nil
	})
}

func (b *BreakdownPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Breakdown, error) {
	db := b.getDB(tx)
	var breakdown models.Breakdown
	if err := db.WithContext(ctx).First(&breakdown, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("breakdown %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get breakdown: %w", err)
	}
	return &breakdown, nil
}

// GetByIDWithSlides preloads the slide deck sorted by position; rows
// without a position sort last in creation order, matching how the
// backfill will number them.
func (b *BreakdownPostgreSQL) GetByIDWithSlides(ctx context.Context, tx *gorm.DB, id uint) (*models.Breakdown, error) {
	db := b.getDB(tx)
	var breakdown models.Breakdown
	if err := db.WithContext(ctx).
		Preload("Slides", func(db *gorm.DB) *gorm.DB {
			return db.Order("slide_order ASC NULLS LAST, created_at ASC")
		}).
		First(&breakdown, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("breakdown %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get breakdown with slides: %w", err)
	}
	return &breakdown, nil
}

func (b *BreakdownPostgreSQL) Update(ctx context.Context, tx *gorm.DB, breakdown *models.Breakdown) error {
	db := b.getDB(tx)
	if err := db.WithContext(ctx).Omit("Slides").Save(breakdown).Error; err != nil {
		return fmt.Errorf("failed to update breakdown: %w", err)
	}
	return nil
}

// Delete removes a breakdown, its slides and the chapter counter together.
func (b *BreakdownPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := b.getDB(tx)

	var breakdown models.Breakdown
	if err := db.WithContext(ctx).Select("id, chapter_id").First(&breakdown, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("breakdown %d: %w", id, repositories.ErrNotFound)
		}
		return fmt.Errorf("failed to get breakdown before delete: %w", err)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("breakdown_id = ?", id).Delete(&models.Slide{}).Error; err != nil {
			return fmt.Errorf("failed to delete breakdown slides: %w", err)
		}
		if err := tx.Delete(&models.Breakdown{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete breakdown: %w", err)
		}
		if err := tx.Model(&models.Chapter{}).
			Where("id = ?", breakdown.ChapterID).
			Update("breakdown_count", gorm.Expr("GREATEST(breakdown_count - 1, 0)")).Error; err != nil {
			return fmt.Errorf("failed to decrement breakdown counter: %w", err)
		}
		return nil
	})
}

func (b *BreakdownPostgreSQL) GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) ([]*models.Breakdown, error) {
	if chapterID == 0 {
		return nil, repositories.ErrNoChapterSelected
	}

	db := b.getDB(tx)
	var breakdowns []*models.Breakdown
	if err := db.WithContext(ctx).
		Where("chapter_id = ?", chapterID).
		Order("created_at DESC").
		Find(&breakdowns).Error; err != nil {
		return nil, fmt.Errorf("failed to get chapter breakdowns: %w", err)
	}
	return breakdowns, nil
}

func (b *BreakdownPostgreSQL) CountByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) (int64, error) {
	db := b.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Breakdown{}).
		Where("chapter_id = ?", chapterID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count breakdowns: %w", err)
	}
	return count, nil
}

// ===== SLIDES =====

type SlidePostgreSQL struct {
	db *gorm.DB
}

func NewSlidePostgreSQL(db *gorm.DB) repositories.SlideRepository {
	return &SlidePostgreSQL{db: db}
}

func (s *SlidePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SlidePostgreSQL) Create(ctx context.Context, tx *gorm.DB, slide *models.Slide) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Create(slide).Error; err != nil {
		return fmt.Errorf("failed to create slide: %w", err)
	}
	return nil
}

func (s *SlidePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Slide, error) {
	db := s.getDB(tx)
	var slide models.Slide
	if err := db.WithContext(ctx).First(&slide, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("slide %d: %w", id, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get slide: %w", err)
	}
	return &slide, nil
}

func (s *SlidePostgreSQL) Update(ctx context.Context, tx *gorm.DB, slide *models.Slide) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).Save(slide).Error; err != nil {
		return fmt.Errorf("failed to update slide: %w", err)
	}
	return nil
}

func (s *SlidePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := s.getDB(tx)
	result := db.WithContext(ctx).Delete(&models.Slide{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete slide: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("slide %d: %w", id, repositories.ErrNotFound)
	}
	return nil
}

// GetByBreakdown returns the deck sorted by position, unpositioned rows
// last in creation order.
func (s *SlidePostgreSQL) GetByBreakdown(ctx context.Context, tx *gorm.DB, breakdownID uint) ([]*models.Slide, error) {
	db := s.getDB(tx)
	var slides []*models.Slide
	if err := db.WithContext(ctx).
		Where("breakdown_id = ?", breakdownID).
		Order("slide_order ASC NULLS LAST, created_at ASC").
		Find(&slides).Error; err != nil {
		return nil, fmt.Errorf("failed to get breakdown slides: %w", err)
	}
	return slides, nil
}

// MaxOrder returns the highest assigned position, -1 for an empty or
// fully unpositioned deck.
func (s *SlidePostgreSQL) MaxOrder(ctx context.Context, tx *gorm.DB, breakdownID uint) (int, error) {
	db := s.getDB(tx)
	var max *int
	err := db.WithContext(ctx).
		Model(&models.Slide{}).
		Where("breakdown_id = ?", breakdownID).
		Select("MAX(slide_order)").
		Scan(&max).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get max slide order: %w", err)
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

// SwapOrder exchanges the positions of two slides of the same breakdown
// in one transaction.
func (s *SlidePostgreSQL) SwapOrder(ctx context.Context, tx *gorm.DB, breakdownID uint, slideID, neighborID uint) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a, b models.Slide
		if err := tx.Where("id = ? AND breakdown_id = ?", slideID, breakdownID).First(&a).Error; err != nil {
			return fmt.Errorf("slide %d: %w", slideID, repositories.ErrNotFound)
		}
		if err := tx.Where("id = ? AND breakdown_id = ?", neighborID, breakdownID).First(&b).Error; err != nil {
			return fmt.Errorf("slide %d: %w", neighborID, repositories.ErrNotFound)
		}
		if a.SlideOrder == nil || b.SlideOrder == nil {
			return fmt.Errorf("slides need an order backfill before reordering")
		}
		if err := tx.Model(&models.Slide{}).Where("id = ?", a.ID).Update("slide_order", *b.SlideOrder).Error; err != nil {
			return fmt.Errorf("failed to swap slide order: %w", err)
		}
		if err := tx.Model(&models.Slide{}).Where("id = ?", b.ID).Update("slide_order", *a.SlideOrder).Error; err != nil {
			return fmt.Errorf("failed to swap slide order: %w", err)
		}
		return nil
	})
}

// BackfillOrder assigns sequential positions to rows whose slide_order is
// null, in creation order after the highest existing position. Returns
// the number of rows touched.
func (s *SlidePostgreSQL) BackfillOrder(ctx context.Context, tx *gorm.DB, breakdownID uint) (int, error) {
	db := s.getDB(tx)
	touched := 0

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var max *int
		if err := tx.Model(&models.Slide{}).
			Where("breakdown_id = ?", breakdownID).
			Select("MAX(slide_order)").
			Scan(&max).Error; err != nil {
			return fmt.Errorf("failed to get max slide order: %w", err)
		}
		next := 0
		if max != nil {
			next = *max + 1
		}

		var orphans []*models.Slide
		if err := tx.Where("breakdown_id = ? AND slide_order IS NULL", breakdownID).
			Order("created_at ASC").
			Find(&orphans).Error; err != nil {
			return fmt.Errorf("failed to find unordered slides: %w", err)
		}

		for _, slide := range orphans {
			if err := tx.Model(&models.Slide{}).
				Where("id = ?", slide.ID).
				Update("slide_order", next).Error; err != nil {
				return fmt.Errorf("failed to backfill slide order: %w", err)
			}
			next++
			touched++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return touched, nil
}
