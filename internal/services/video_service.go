package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/events"
	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
	"github.com/prepforge/content-admin-service/internal/validator"
)

type videoService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	gate      *auth.Gate
	publisher events.EventPublisher
}

func NewVideoService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, gate *auth.Gate, publisher events.EventPublisher) VideoService {
	return &videoService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		gate:      gate,
		publisher: publisher,
	}
}

func (s *videoService) Create(ctx context.Context, req *CreateVideoRequest, creatorID string) (*models.ChapterVideo, error) {
	s.logger.Info("Creating video", "creator_id", creatorID, "chapter_id", req.ChapterID)

	if !s.gate.Can(creatorID, auth.ActionCreate) {
		return nil, NewPermissionError(creatorID, 0, "video", "create", "not an admin")
	}

	if errs := s.validator.GetBusinessValidator().ValidateVideoCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.Chapter().GetByID(ctx, nil, req.ChapterID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}

	difficulty := req.Difficulty
	if difficulty == 0 {
		difficulty = 5
	}

	video := &models.ChapterVideo{
		ChapterID:     req.ChapterID,
		Title:         req.Title,
		Description:   req.Description,
		SkillTag:      req.SkillTag,
		StoragePath:   req.StoragePath,
		ThumbnailPath: req.ThumbnailPath,
		DurationSec:   req.DurationSec,
		Difficulty:    difficulty,
		Prereq:        req.Prereq,
		DisplayOrder:  req.DisplayOrder,
		CreatedBy:     creatorID,
	}

	if err := s.repo.Video().Create(ctx, nil, video); err != nil {
		return nil, fmt.Errorf("failed to create video: %w", err)
	}

	s.logger.Info("Video created", "video_id", video.ID)
	s.publish(ctx, events.EventVideoCreated, video)

	return video, nil
}

func (s *videoService) GetByID(ctx context.Context, id uint, userID string) (*models.ChapterVideo, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, id, "video", "read", "not an admin")
	}

	video, err := s.repo.Video().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	return video, nil
}

func (s *videoService) Update(ctx context.Context, id uint, req *UpdateVideoRequest, userID string) (*models.ChapterVideo, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, id, "video", "update", "not an admin")
	}

	video, err := s.repo.Video().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateVideoUpdate(req, video); len(errs) > 0 {
		return nil, errs
	}

	if req.Title != nil {
		video.Title = *req.Title
	}
	if req.Description != nil {
		video.Description = *req.Description
	}
	if req.SkillTag != nil {
		video.SkillTag = *req.SkillTag
	}
	if req.StoragePath != nil {
		video.StoragePath = *req.StoragePath
	}
	if req.ThumbnailPath != nil {
		video.ThumbnailPath = *req.ThumbnailPath
	}
	if req.DurationSec != nil {
		video.DurationSec = *req.DurationSec
	}
	if req.Difficulty != nil {
		video.Difficulty = *req.Difficulty
	}
	if req.Prereq != nil {
		video.Prereq = req.Prereq
	}
	if req.DisplayOrder != nil {
		video.DisplayOrder = *req.DisplayOrder
	}

	if err := s.repo.Video().Update(ctx, nil, video); err != nil {
		return nil, fmt.Errorf("failed to update video: %w", err)
	}

	return video, nil
}

func (s *videoService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting video", "video_id", id, "user_id", userID)

	if !s.gate.Can(userID, auth.ActionDelete) {
		return NewPermissionError(userID, id, "video", "delete", "delete is restricted to primary admins")
	}

	if err := s.repo.Video().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFound(err) {
			return ErrVideoNotFound
		}
		return fmt.Errorf("failed to delete video: %w", err)
	}

	s.publish(ctx, events.EventVideoDeleted, map[string]interface{}{"video_id": id})

	return nil
}

func (s *videoService) ListByChapter(ctx context.Context, chapterID uint, filters repositories.VideoFilters, userID string) (*VideoListResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, 0, "video", "read", "not an admin")
	}

	videos, total, err := s.repo.Video().GetByChapter(ctx, nil, chapterID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	return &VideoListResponse{Videos: videos, Total: total}, nil
}

func (s *videoService) publish(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.ContentEvent{Type: eventType, Data: data}); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}
