package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/events"
	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
	"github.com/prepforge/content-admin-service/internal/validator"
)

type breakdownService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	gate      *auth.Gate
	publisher events.EventPublisher
}

func NewBreakdownService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, gate *auth.Gate, publisher events.EventPublisher) BreakdownService {
	return &breakdownService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		gate:      gate,
		publisher: publisher,
	}
}

func (s *breakdownService) Create(ctx context.Context, req *CreateBreakdownRequest, creatorID string) (*BreakdownResponse, error) {
	s.logger.Info("Creating breakdown", "creator_id", creatorID, "chapter_id", req.ChapterID)

	if !s.gate.Can(creatorID, auth.ActionCreate) {
		return nil, NewPermissionError(creatorID, 0, "breakdown", "create", "not an admin")
	}

	if errs := s.validator.GetBusinessValidator().ValidateBreakdownCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.Chapter().GetByID(ctx, nil, req.ChapterID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}

	pair := models.EnsureSkillTags(req.SkillTags, req.SkillTag)

	breakdown := &models.Breakdown{
		ChapterID:   req.ChapterID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		SkillTag:    pair.SkillTag,
		SkillTags:   datatypes.JSONSlice[string](pair.SkillTags),
		CreatedBy:   creatorID,
	}

	if err := s.repo.Breakdown().Create(ctx, nil, breakdown); err != nil {
		return nil, fmt.Errorf("failed to create breakdown: %w", err)
	}

	s.logger.Info("Breakdown created", "breakdown_id", breakdown.ID)
	s.publish(ctx, events.EventBreakdownCreated, breakdown)

	return s.buildResponse(breakdown, 0, creatorID), nil
}

func (s *breakdownService) GetByID(ctx context.Context, id uint, userID string) (*BreakdownResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, id, "breakdown", "read", "not an admin")
	}

	breakdown, err := s.getBreakdown(ctx, id)
	if err != nil {
		return nil, err
	}

	slides, err := s.repo.Slide().GetByBreakdown(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count slides: %w", err)
	}

	return s.buildResponse(breakdown, len(slides), userID), nil
}

func (s *breakdownService) GetWithSlides(ctx context.Context, id uint, userID string) (*models.Breakdown, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, id, "breakdown", "read", "not an admin")
	}

	breakdown, err := s.repo.Breakdown().GetByIDWithSlides(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrBreakdownNotFound
		}
		return nil, fmt.Errorf("failed to get breakdown: %w", err)
	}
	return breakdown, nil
}

func (s *breakdownService) Update(ctx context.Context, id uint, req *UpdateBreakdownRequest, userID string) (*BreakdownResponse, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, id, "breakdown", "update", "not an admin")
	}

	breakdown, err := s.getBreakdown(ctx, id)
	if err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateBreakdownUpdate(req, breakdown); len(errs) > 0 {
		return nil, errs
	}

	if req.Title != nil {
		breakdown.Title = *req.Title
	}
	if req.Description != nil {
		breakdown.Description = *req.Description
	}
	if req.Type != nil {
		breakdown.Type = *req.Type
	}
	if req.SkillTag != nil {
		breakdown.SkillTag = *req.SkillTag
	}
	if req.SkillTags != nil {
		breakdown.SkillTags = datatypes.JSONSlice[string](req.SkillTags)
	}
	pair := models.EnsureSkillTags(breakdown.SkillTags, breakdown.SkillTag)
	breakdown.SkillTag = pair.SkillTag
	breakdown.SkillTags = datatypes.JSONSlice[string](pair.SkillTags)

	if err := s.repo.Breakdown().Update(ctx, nil, breakdown); err != nil {
		return nil, fmt.Errorf("failed to update breakdown: %w", err)
	}

	s.publish(ctx, events.EventBreakdownUpdated, breakdown)

	slides, err := s.repo.Slide().GetByBreakdown(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count slides: %w", err)
	}

	return s.buildResponse(breakdown, len(slides), userID), nil
}

func (s *breakdownService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting breakdown", "breakdown_id", id, "user_id", userID)

	if !s.gate.Can(userID, auth.ActionDelete) {
		return NewPermissionError(userID, id, "breakdown", "delete", "delete is restricted to primary admins")
	}

	if err := s.repo.Breakdown().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFound(err) {
			return ErrBreakdownNotFound
		}
		return fmt.Errorf("failed to delete breakdown: %w", err)
	}

	s.publish(ctx, events.EventBreakdownDeleted, map[string]interface{}{"breakdown_id": id})

	return nil
}

func (s *breakdownService) ListByChapter(ctx context.Context, chapterID uint, userID string) ([]*BreakdownResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, 0, "breakdown", "read", "not an admin")
	}

	breakdowns, err := s.repo.Breakdown().GetByChapter(ctx, nil, chapterID)
	if err != nil {
		return nil, fmt.Errorf("failed to list breakdowns: %w", err)
	}

	responses := make([]*BreakdownResponse, 0, len(breakdowns))
	for _, b := range breakdowns {
		slides, err := s.repo.Slide().GetByBreakdown(ctx, nil, b.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count slides: %w", err)
		}
		responses = append(responses, s.buildResponse(b, len(slides), userID))
	}
	return responses, nil
}

// AddSlide appends at the end of the deck. Legacy decks with
// unpositioned rows are backfilled first so the new slide's position is
// well defined.
func (s *breakdownService) AddSlide(ctx context.Context, breakdownID uint, req *CreateSlideRequest, userID string) (*models.Slide, error) {
	s.logger.Info("Adding slide", "breakdown_id", breakdownID, "kind", req.Kind, "user_id", userID)

	if !s.gate.Can(userID, auth.ActionCreate) {
		return nil, NewPermissionError(userID, breakdownID, "slide", "create", "not an admin")
	}

	if errs := s.validator.GetBusinessValidator().ValidateSlideCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.getBreakdown(ctx, breakdownID); err != nil {
		return nil, err
	}

	var slide *models.Slide
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := txRepo.Slide().BackfillOrder(ctx, nil, breakdownID); err != nil {
			return err
		}

		maxOrder, err := txRepo.Slide().MaxOrder(ctx, nil, breakdownID)
		if err != nil {
			return err
		}
		next := maxOrder + 1

		pair := models.EnsureSkillTags(req.SkillTags, req.SkillTag)
		slide = &models.Slide{
			BreakdownID:    breakdownID,
			Kind:           req.Kind,
			Title:          req.Title,
			Content:        req.Content,
			ImageURL:       req.ImageURL,
			Hint:           req.Hint,
			SlideOrder:     &next,
			Type:           req.Type,
			QuestionText:   req.QuestionText,
			DetailedAnswer: req.DetailedAnswer,
			SkillTag:       pair.SkillTag,
			SkillTags:      datatypes.JSONSlice[string](pair.SkillTags),
			Choices:        datatypes.JSONSlice[string](req.Choices),
			AnswerIndex:    req.AnswerIndex,
			AnswerIndices:  datatypes.JSONSlice[int](req.AnswerIndices),
			Range:          jsonTypePtr(req.Range),
		}
		if slide.Kind == models.SlideQuestion && slide.Type == "" {
			slide.Type = models.TypeMCQ
		}

		return txRepo.Slide().Create(ctx, nil, slide)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add slide: %w", err)
	}

	s.publish(ctx, events.EventBreakdownUpdated, map[string]interface{}{"breakdown_id": breakdownID, "slide_id": slide.ID})

	return slide, nil
}

func (s *breakdownService) UpdateSlide(ctx context.Context, breakdownID, slideID uint, req *UpdateSlideRequest, userID string) (*models.Slide, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, slideID, "slide", "update", "not an admin")
	}

	slide, err := s.getSlide(ctx, breakdownID, slideID)
	if err != nil {
		return nil, err
	}

	if errs := s.validator.GetBusinessValidator().ValidateSlideUpdate(req, slide); len(errs) > 0 {
		return nil, errs
	}

	if req.Title != nil {
		slide.Title = *req.Title
	}
	if req.Content != nil {
		slide.Content = *req.Content
	}
	if req.ImageURL != nil {
		slide.ImageURL = req.ImageURL
	}
	if req.Hint != nil {
		slide.Hint = *req.Hint
	}
	if req.QuestionText != nil {
		slide.QuestionText = *req.QuestionText
	}
	if req.DetailedAnswer != nil {
		slide.DetailedAnswer = *req.DetailedAnswer
	}
	if req.SkillTag != nil {
		slide.SkillTag = *req.SkillTag
	}
	if req.SkillTags != nil {
		slide.SkillTags = datatypes.JSONSlice[string](req.SkillTags)
	}
	if req.Choices != nil {
		slide.Choices = datatypes.JSONSlice[string](req.Choices)
	}
	if req.AnswerIndex != nil {
		slide.AnswerIndex = req.AnswerIndex
	}
	if req.AnswerIndices != nil {
		slide.AnswerIndices = datatypes.JSONSlice[int](req.AnswerIndices)
	}
	if req.Range != nil {
		slide.Range = jsonTypePtr(req.Range)
	}

	if err := s.repo.Slide().Update(ctx, nil, slide); err != nil {
		return nil, fmt.Errorf("failed to update slide: %w", err)
	}

	s.publish(ctx, events.EventBreakdownUpdated, map[string]interface{}{"breakdown_id": breakdownID, "slide_id": slideID})

	return slide, nil
}

func (s *breakdownService) DeleteSlide(ctx context.Context, breakdownID, slideID uint, userID string) error {
	if !s.gate.Can(userID, auth.ActionDelete) {
		return NewPermissionError(userID, slideID, "slide", "delete", "delete is restricted to primary admins")
	}

	if _, err := s.getSlide(ctx, breakdownID, slideID); err != nil {
		return err
	}

	if err := s.repo.Slide().Delete(ctx, nil, slideID); err != nil {
		return fmt.Errorf("failed to delete slide: %w", err)
	}

	s.publish(ctx, events.EventBreakdownUpdated, map[string]interface{}{"breakdown_id": breakdownID, "deleted_slide_id": slideID})

	return nil
}

func (s *breakdownService) MoveSlide(ctx context.Context, breakdownID, slideID uint, direction MoveDirection, userID string) ([]*models.Slide, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, slideID, "slide", "update", "not an admin")
	}

	var deck []*models.Slide
	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if _, err := txRepo.Slide().BackfillOrder(ctx, nil, breakdownID); err != nil {
			return err
		}

		slides, err := txRepo.Slide().GetByBreakdown(ctx, nil, breakdownID)
		if err != nil {
			return err
		}

		pos := -1
		for i, sl := range slides {
			if sl.ID == slideID {
				pos = i
				break
			}
		}
		if pos < 0 {
			return ErrSlideNotFound
		}

		neighbor := pos - 1
		if direction == MoveDown {
			neighbor = pos + 1
		}
		// Moving past either end leaves the deck untouched.
		if neighbor < 0 || neighbor >= len(slides) {
			deck = slides
			return nil
		}

		if err := txRepo.Slide().SwapOrder(ctx, nil, breakdownID, slideID, slides[neighbor].ID); err != nil {
			return err
		}

		deck, err = txRepo.Slide().GetByBreakdown(ctx, nil, breakdownID)
		return err
	})
	if err != nil {
		if err == ErrSlideNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to move slide: %w", err)
	}

	return deck, nil
}

func (s *breakdownService) getBreakdown(ctx context.Context, id uint) (*models.Breakdown, error) {
	breakdown, err := s.repo.Breakdown().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrBreakdownNotFound
		}
		return nil, fmt.Errorf("failed to get breakdown: %w", err)
	}
	return breakdown, nil
}

func (s *breakdownService) getSlide(ctx context.Context, breakdownID, slideID uint) (*models.Slide, error) {
	slide, err := s.repo.Slide().GetByID(ctx, nil, slideID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrSlideNotFound
		}
		return nil, fmt.Errorf("failed to get slide: %w", err)
	}
	if slide.BreakdownID != breakdownID {
		return nil, ErrSlideNotFound
	}
	return slide, nil
}

func (s *breakdownService) buildResponse(breakdown *models.Breakdown, slideCount int, userID string) *BreakdownResponse {
	return &BreakdownResponse{
		Breakdown:  breakdown,
		SlideCount: slideCount,
		CanEdit:    s.gate.Can(userID, auth.ActionUpdate),
		CanDelete:  s.gate.Can(userID, auth.ActionDelete),
	}
}

func (s *breakdownService) publish(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.ContentEvent{Type: eventType, Data: data}); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}
