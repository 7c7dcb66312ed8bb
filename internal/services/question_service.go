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

type questionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	gate      *auth.Gate
	publisher events.EventPublisher
}

func NewQuestionService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, gate *auth.Gate, publisher events.EventPublisher) QuestionService {
	return &questionService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		gate:      gate,
		publisher: publisher,
	}
}

func (s *questionService) Create(ctx context.Context, req *CreateQuestionRequest, creatorID string) (*QuestionResponse, error) {
	s.logger.Info("Creating question", "creator_id", creatorID, "chapter_id", req.ChapterID, "bank", req.Bank)

	if !s.gate.Can(creatorID, auth.ActionCreate) {
		return nil, NewPermissionError(creatorID, 0, "question", "create", "not an admin")
	}

	if errs := s.validator.GetBusinessValidator().ValidateQuestionCreate(req); len(errs) > 0 {
		return nil, errs
	}

	if _, err := s.repo.Chapter().GetByID(ctx, nil, req.ChapterID); err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to get chapter: %w", err)
	}

	pair := models.EnsureSkillTags(req.SkillTags, req.SkillTag)

	question := &models.Question{
		ChapterID:      req.ChapterID,
		Bank:           req.Bank,
		Title:          req.Title,
		QuestionText:   req.QuestionText,
		DetailedAnswer: req.DetailedAnswer,
		ImageURL:       req.ImageURL,
		Type:           req.Type,
		Exam:           req.Exam,
		Difficulty:     req.Difficulty,
		SkillTag:       pair.SkillTag,
		SkillTags:      datatypes.JSONSlice[string](pair.SkillTags),
		Choices:        datatypes.JSONSlice[string](req.Choices),
		AnswerIndex:    req.AnswerIndex,
		AnswerIndices:  datatypes.JSONSlice[int](req.AnswerIndices),
		Range:          jsonTypePtr(req.Range),
		Status:         req.Status,
		CreatedBy:      creatorID,
	}

	if req.Bank == models.BankTest {
		question.MarksCorrect = req.MarksCorrect
		question.MarksWrong = req.MarksWrong
		question.TimeSuggestedSec = req.TimeSuggestedSec
		question.OptionShuffle = req.OptionShuffle
		question.PartialScheme = jsonTypePtr(req.PartialScheme)
		models.WithComputedFields(question)
	} else {
		question.DifficultyBand = models.BandFromDifficulty(question.Difficulty)
		if question.Status == "" {
			question.Status = models.QuestionActive
		}
	}

	if err := s.repo.Question().Create(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.logger.Info("Question created", "question_id", question.ID, "bank", question.Bank)
	s.publish(ctx, events.EventQuestionCreated, question)

	return s.buildResponse(question, creatorID), nil
}

func (s *questionService) GetByID(ctx context.Context, id uint, userID string) (*QuestionResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, id, "question", "read", "not an admin")
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	return s.buildResponse(question, userID), nil
}

func (s *questionService) Update(ctx context.Context, id uint, req *UpdateQuestionRequest, userID string) (*QuestionResponse, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, id, "question", "update", "not an admin")
	}

	question, err := s.repo.Question().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrQuestionNotFound
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateQuestionUpdate(req, question); len(errs) > 0 {
		return nil, errs
	}

	applyQuestionUpdate(question, req)

	// Annotation edits may move the question across difficulty bands or
	// change its tag shape; recompute the derived columns.
	pair := models.EnsureSkillTags(question.SkillTags, question.SkillTag)
	question.SkillTag = pair.SkillTag
	question.SkillTags = datatypes.JSONSlice[string](pair.SkillTags)
	question.DifficultyBand = models.BandFromDifficulty(question.Difficulty)
	if question.Bank == models.BankTest {
		models.WithComputedFields(question)
	}

	if err := s.repo.Question().Update(ctx, nil, question); err != nil {
		return nil, fmt.Errorf("failed to update question: %w", err)
	}

	s.publish(ctx, events.EventQuestionUpdated, question)

	return s.buildResponse(question, userID), nil
}

func (s *questionService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting question", "question_id", id, "user_id", userID)

	if !s.gate.Can(userID, auth.ActionDelete) {
		return NewPermissionError(userID, id, "question", "delete", "delete is restricted to primary admins")
	}

	if err := s.repo.Question().Delete(ctx, nil, id); err != nil {
		if repositories.IsNotFound(err) {
			return ErrQuestionNotFound
		}
		return fmt.Errorf("failed to delete question: %w", err)
	}

	s.publish(ctx, events.EventQuestionDeleted, map[string]interface{}{"question_id": id})

	return nil
}

// ListByChapter is the bank browser's listing. A zero chapter is
// rejected up front so the UI's "no chapter selected" state never turns
// into a full-table scan.
func (s *questionService) ListByChapter(ctx context.Context, chapterID uint, bank models.QuestionBank, userID string) ([]*QuestionResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, 0, "question", "read", "not an admin")
	}
	if chapterID == 0 {
		return nil, ErrNoChapterSelected
	}

	questions, err := s.repo.Question().GetByChapterAndBank(ctx, nil, chapterID, bank)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	responses := make([]*QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, s.buildResponse(q, userID))
	}
	return responses, nil
}

func (s *questionService) List(ctx context.Context, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, 0, "question", "read", "not an admin")
	}

	questions, total, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}

	responses := make([]*QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, s.buildResponse(q, userID))
	}

	return &QuestionListResponse{
		Questions: responses,
		Total:     total,
		Page:      pageFromOffset(filters.Offset, filters.Limit),
		Size:      filters.Limit,
	}, nil
}

// BackfillTestBank fills missing computed fields across a chapter's test
// bank: difficulty band, marking defaults, time suggestion, shuffle flag,
// status and the skill tag pair. Rows already complete are left alone.
func (s *questionService) BackfillTestBank(ctx context.Context, chapterID uint, userID string) (int, error) {
	s.logger.Info("Backfilling test bank", "chapter_id", chapterID, "user_id", userID)

	if !s.gate.Can(userID, auth.ActionUpdate) {
		return 0, NewPermissionError(userID, chapterID, "question", "update", "not an admin")
	}
	if chapterID == 0 {
		return 0, ErrNoChapterSelected
	}

	if _, err := s.repo.Chapter().GetByID(ctx, nil, chapterID); err != nil {
		if repositories.IsNotFound(err) {
			return 0, ErrChapterNotFound
		}
		return 0, fmt.Errorf("failed to get chapter: %w", err)
	}

	questions, err := s.repo.Question().GetByChapterAndBank(ctx, nil, chapterID, models.BankTest)
	if err != nil {
		return 0, fmt.Errorf("failed to load test bank: %w", err)
	}

	updated := 0
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		for _, q := range questions {
			if !needsComputedBackfill(q) {
				continue
			}
			pair := models.EnsureSkillTags(q.SkillTags, q.SkillTag)
			q.SkillTag = pair.SkillTag
			q.SkillTags = datatypes.JSONSlice[string](pair.SkillTags)
			models.WithComputedFields(q)
			if err := txRepo.Question().Update(ctx, nil, q); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to backfill test bank: %w", err)
	}

	s.logger.Info("Test bank backfilled", "chapter_id", chapterID, "updated", updated, "total", len(questions))

	return updated, nil
}

func needsComputedBackfill(q *models.Question) bool {
	if q.DifficultyBand == "" || q.Status == "" {
		return true
	}
	if q.MarksCorrect == nil || q.MarksWrong == nil {
		return true
	}
	if q.TimeSuggestedSec == nil || q.OptionShuffle == nil || q.PartialScheme == nil {
		return true
	}
	// Mirror drifts when legacy rows carry only one of the pair.
	if len(q.SkillTags) > 0 && q.SkillTag != q.SkillTags[0] {
		return true
	}
	if len(q.SkillTags) == 0 && q.SkillTag != "" {
		return true
	}
	return false
}

func (s *questionService) Search(ctx context.Context, query string, filters repositories.QuestionFilters, userID string) (*QuestionListResponse, error) {
	filters.Search = query
	return s.List(ctx, filters, userID)
}

func (s *questionService) buildResponse(question *models.Question, userID string) *QuestionResponse {
	return &QuestionResponse{
		Question:  question,
		CanEdit:   s.gate.Can(userID, auth.ActionUpdate),
		CanDelete: s.gate.Can(userID, auth.ActionDelete),
	}
}

func (s *questionService) publish(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.ContentEvent{Type: eventType, Data: data}); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}

func applyQuestionUpdate(q *models.Question, req *UpdateQuestionRequest) {
	if req.Title != nil {
		q.Title = *req.Title
	}
	if req.QuestionText != nil {
		q.QuestionText = *req.QuestionText
	}
	if req.DetailedAnswer != nil {
		q.DetailedAnswer = *req.DetailedAnswer
	}
	if req.ImageURL != nil {
		q.ImageURL = req.ImageURL
	}
	if req.Type != nil {
		q.Type = *req.Type
	}
	if req.Exam != nil {
		q.Exam = *req.Exam
	}
	if req.Difficulty != nil {
		q.Difficulty = *req.Difficulty
	}
	if req.SkillTag != nil {
		q.SkillTag = *req.SkillTag
	}
	if req.SkillTags != nil {
		q.SkillTags = datatypes.JSONSlice[string](req.SkillTags)
	}
	if req.Choices != nil {
		q.Choices = datatypes.JSONSlice[string](req.Choices)
	}
	if req.AnswerIndex != nil {
		q.AnswerIndex = req.AnswerIndex
	}
	if req.AnswerIndices != nil {
		q.AnswerIndices = datatypes.JSONSlice[int](req.AnswerIndices)
	}
	if req.Range != nil {
		q.Range = jsonTypePtr(req.Range)
	}
	if req.MarksCorrect != nil {
		q.MarksCorrect = req.MarksCorrect
	}
	if req.MarksWrong != nil {
		q.MarksWrong = req.MarksWrong
	}
	if req.TimeSuggestedSec != nil {
		q.TimeSuggestedSec = req.TimeSuggestedSec
	}
	if req.OptionShuffle != nil {
		q.OptionShuffle = req.OptionShuffle
	}
	if req.PartialScheme != nil {
		q.PartialScheme = jsonTypePtr(req.PartialScheme)
	}
	if req.Status != nil {
		q.Status = *req.Status
	}
}

// jsonTypePtr wraps an optional value into its JSONB column form.
func jsonTypePtr[T any](v *T) *datatypes.JSONType[T] {
	if v == nil {
		return nil
	}
	jt := datatypes.NewJSONType(*v)
	return &jt
}
