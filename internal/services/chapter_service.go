package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/events"
	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
	"github.com/prepforge/content-admin-service/internal/validator"
)

type chapterService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	gate      *auth.Gate
	publisher events.EventPublisher
}

func NewChapterService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, gate *auth.Gate, publisher events.EventPublisher) ChapterService {
	return &chapterService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		gate:      gate,
		publisher: publisher,
	}
}

func (s *chapterService) Create(ctx context.Context, req *CreateChapterRequest, creatorID string) (*ChapterResponse, error) {
	s.logger.Info("Creating chapter", "creator_id", creatorID, "name", req.Name)

	if !s.gate.Can(creatorID, auth.ActionCreate) {
		return nil, NewPermissionError(creatorID, 0, "chapter", "create", "not an admin")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	taken, err := s.repo.Chapter().ExistsByName(ctx, nil, req.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check chapter name: %w", err)
	}
	if taken {
		return nil, ErrChapterNameTaken
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}

	chapter := &models.Chapter{
		Name:      req.Name,
		Slug:      slug,
		Subject:   req.Subject,
		SkillTags: normalizeTags(req.SkillTags),
	}

	if err := s.repo.Chapter().Create(ctx, nil, chapter); err != nil {
		return nil, fmt.Errorf("failed to create chapter: %w", err)
	}

	s.logger.Info("Chapter created", "chapter_id", chapter.ID)
	s.publish(ctx, events.EventChapterCreated, chapter)

	return s.buildResponse(chapter, creatorID), nil
}

func (s *chapterService) GetByID(ctx context.Context, id uint, userID string) (*ChapterResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, id, "chapter", "read", "not an admin")
	}

	chapter, err := s.repo.Chapter().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}

	return s.buildResponse(chapter, userID), nil
}

func (s *chapterService) List(ctx context.Context, filters repositories.ChapterFilters, userID string) (*ChapterListResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, 0, "chapter", "read", "not an admin")
	}

	chapters, total, err := s.repo.Chapter().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list chapters: %w", err)
	}

	responses := make([]*ChapterResponse, 0, len(chapters))
	for _, c := range chapters {
		responses = append(responses, s.buildResponse(c, userID))
	}

	return &ChapterListResponse{
		Chapters: responses,
		Total:    total,
		Page:     pageFromOffset(filters.Offset, filters.Limit),
		Size:     filters.Limit,
	}, nil
}

func (s *chapterService) Update(ctx context.Context, id uint, req *UpdateChapterRequest, userID string) (*ChapterResponse, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, id, "chapter", "update", "not an admin")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	chapter, err := s.repo.Chapter().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}

	if req.Name != nil && *req.Name != chapter.Name {
		taken, err := s.repo.Chapter().ExistsByName(ctx, nil, *req.Name, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check chapter name: %w", err)
		}
		if taken {
			return nil, ErrChapterNameTaken
		}
		chapter.Name = *req.Name
	}
	if req.Subject != nil {
		chapter.Subject = *req.Subject
	}
	if req.SkillTags != nil {
		chapter.SkillTags = normalizeTags(req.SkillTags)
	}

	if err := s.repo.Chapter().Update(ctx, nil, chapter); err != nil {
		return nil, fmt.Errorf("failed to update chapter: %w", err)
	}

	s.publish(ctx, events.EventChapterUpdated, chapter)

	return s.buildResponse(chapter, userID), nil
}

// Delete removes a chapter together with every child it owns. Primary
// admins only.
func (s *chapterService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting chapter", "chapter_id", id, "user_id", userID)

	if !s.gate.Can(userID, auth.ActionDelete) {
		return NewPermissionError(userID, id, "chapter", "delete", "delete is restricted to primary admins")
	}

	chapter, err := s.repo.Chapter().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return ErrChapterNotFound
		}
		return fmt.Errorf("failed to get chapter: %w", err)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		breakdowns, err := txRepo.Breakdown().GetByChapter(ctx, nil, id)
		if err != nil {
			return err
		}
		for _, b := range breakdowns {
			if err := txRepo.Breakdown().Delete(ctx, nil, b.ID); err != nil {
				return err
			}
		}

		questions, _, err := txRepo.Question().List(ctx, nil, repositories.QuestionFilters{ChapterIDs: []uint{id}})
		if err != nil {
			return err
		}
		for _, q := range questions {
			if err := txRepo.Question().Delete(ctx, nil, q.ID); err != nil {
				return err
			}
		}

		videos, _, err := txRepo.Video().GetByChapter(ctx, nil, id, repositories.VideoFilters{})
		if err != nil {
			return err
		}
		for _, v := range videos {
			if err := txRepo.Video().Delete(ctx, nil, v.ID); err != nil {
				return err
			}
		}

		return txRepo.Chapter().Delete(ctx, nil, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete chapter: %w", err)
	}

	s.publish(ctx, events.EventChapterDeleted, map[string]interface{}{"chapter_id": id, "name": chapter.Name})

	return nil
}

func (s *chapterService) GetSkillTags(ctx context.Context, id uint, userID string) ([]string, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, id, "chapter", "read", "not an admin")
	}

	tags, err := s.repo.Chapter().GetSkillTags(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to get skill tags: %w", err)
	}
	return tags, nil
}

// ListAllSkillTags is the distinct union of every chapter's vocabulary,
// used by cross-chapter filter and autocomplete widgets.
func (s *chapterService) ListAllSkillTags(ctx context.Context, userID string) ([]string, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, 0, "chapter", "read", "not an admin")
	}

	tags, err := s.repo.Chapter().AllSkillTags(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list skill tags: %w", err)
	}
	return tags, nil
}

func (s *chapterService) UpdateSkillTags(ctx context.Context, id uint, tags []string, userID string) ([]string, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, id, "chapter", "update", "not an admin")
	}

	normalized := normalizeTags(tags)
	if err := s.repo.Chapter().UpdateSkillTags(ctx, nil, id, normalized); err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to update skill tags: %w", err)
	}

	s.publish(ctx, events.EventChapterUpdated, map[string]interface{}{"chapter_id": id, "skill_tags": normalized})

	return normalized, nil
}

func (s *chapterService) Recount(ctx context.Context, id uint, userID string) (*ChapterResponse, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, id, "chapter", "update", "not an admin")
	}

	chapter, err := s.repo.Chapter().RecountChildren(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to recount chapter: %w", err)
	}

	s.logger.Info("Chapter counters reconciled", "chapter_id", id)

	return s.buildResponse(chapter, userID), nil
}

func (s *chapterService) buildResponse(chapter *models.Chapter, userID string) *ChapterResponse {
	return &ChapterResponse{
		Chapter:   chapter,
		CanEdit:   s.gate.Can(userID, auth.ActionUpdate),
		CanDelete: s.gate.Can(userID, auth.ActionDelete),
	}
}

func (s *chapterService) publish(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.ContentEvent{Type: eventType, Data: data}); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}

// ===== SHARED SERVICE HELPERS =====

// normalizeTags trims, drops empties and deduplicates preserving order.
func normalizeTags(tags []string) datatypes.JSONSlice[string] {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		t := strings.TrimSpace(tag)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return datatypes.JSONSlice[string](out)
}

func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = strings.Map(func(r rune) rune {
		switch {
		case 'a' <= r && r <= 'z', '0' <= r && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '-'
		default:
			return -1
		}
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

func pageFromOffset(offset, limit int) int {
	if limit <= 0 {
		return 1
	}
	return offset/limit + 1
}
