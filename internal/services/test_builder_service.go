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

type testBuilderService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	gate      *auth.Gate
	publisher events.EventPublisher
}

func NewTestBuilderService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, v *validator.Validator, gate *auth.Gate, publisher events.EventPublisher) TestBuilderService {
	return &testBuilderService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: v,
		gate:      gate,
		publisher: publisher,
	}
}

func (s *testBuilderService) Create(ctx context.Context, req *CreateTestRequest, creatorID string) (*TestResponse, error) {
	s.logger.Info("Creating test", "creator_id", creatorID, "name", req.Name, "exam", req.Exam)

	if !s.gate.Can(creatorID, auth.ActionCreate) {
		return nil, NewPermissionError(creatorID, 0, "test", "create", "not an admin")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	shuffleQuestions := true
	if req.ShuffleQuestions != nil {
		shuffleQuestions = *req.ShuffleQuestions
	}
	shuffleOptions := true
	if req.ShuffleOptions != nil {
		shuffleOptions = *req.ShuffleOptions
	}

	test := &models.TestMeta{
		Name:                req.Name,
		Description:         req.Description,
		Exam:                req.Exam,
		DurationSec:         req.DurationSec,
		Status:              models.TestDraft,
		ShuffleQuestions:    shuffleQuestions,
		ShuffleOptions:      shuffleOptions,
		MarksCorrectDefault: req.MarksCorrectDefault,
		MarksWrongDefault:   req.MarksWrongDefault,
		SyllabusChapters:    datatypes.JSONSlice[uint](req.SyllabusChapters),
		Counts:              datatypes.NewJSONType(ComputeCounts(nil, &models.TestMeta{Exam: req.Exam})),
		Version:             1,
		CreatedBy:           creatorID,
	}

	if err := s.repo.Test().Create(ctx, nil, test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	s.logger.Info("Test created", "test_id", test.ID)
	s.publish(ctx, events.EventTestCreated, test)

	return s.buildResponse(test, 0, creatorID), nil
}

func (s *testBuilderService) GetByID(ctx context.Context, id uint, userID string) (*TestResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, id, "test", "read", "not an admin")
	}

	test, err := s.getTest(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.TestItem().CountByTest(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	return s.buildResponse(test, int(count), userID), nil
}

func (s *testBuilderService) GetWithItems(ctx context.Context, id uint, userID string) (*TestResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, id, "test", "read", "not an admin")
	}

	test, err := s.repo.Test().GetByIDWithItems(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}

	return s.buildResponse(test, len(test.Items), userID), nil
}

func (s *testBuilderService) List(ctx context.Context, filters repositories.TestFilters, userID string) (*TestListResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, 0, "test", "read", "not an admin")
	}

	tests, total, err := s.repo.Test().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list tests: %w", err)
	}

	responses := make([]*TestResponse, 0, len(tests))
	for _, t := range tests {
		count := t.Counts.Data().TotalQuestions
		responses = append(responses, s.buildResponse(t, count, userID))
	}

	return &TestListResponse{
		Tests: responses,
		Total: total,
		Page:  pageFromOffset(filters.Offset, filters.Limit),
		Size:  filters.Limit,
	}, nil
}

func (s *testBuilderService) Update(ctx context.Context, id uint, req *UpdateTestRequest, userID string) (*TestResponse, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, id, "test", "update", "not an admin")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	test, err := s.getTest(ctx, id)
	if err != nil {
		return nil, err
	}
	if test.Status != models.TestDraft {
		return nil, ErrTestNotDraft
	}

	if req.Name != nil {
		test.Name = *req.Name
	}
	if req.Description != nil {
		test.Description = *req.Description
	}
	if req.Exam != nil {
		test.Exam = *req.Exam
	}
	if req.DurationSec != nil {
		test.DurationSec = *req.DurationSec
	}
	if req.ShuffleQuestions != nil {
		test.ShuffleQuestions = *req.ShuffleQuestions
	}
	if req.ShuffleOptions != nil {
		test.ShuffleOptions = *req.ShuffleOptions
	}
	if req.MarksCorrectDefault != nil {
		test.MarksCorrectDefault = req.MarksCorrectDefault
	}
	if req.MarksWrongDefault != nil {
		test.MarksWrongDefault = req.MarksWrongDefault
	}
	if req.SyllabusChapters != nil {
		test.SyllabusChapters = datatypes.JSONSlice[uint](req.SyllabusChapters)
	}

	// Defaults or the exam feed into the marks column of the snapshot, so
	// any meta edit recomputes it against the current items.
	items, err := s.repo.TestItem().GetByTest(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	test.Counts = datatypes.NewJSONType(ComputeCounts(items, test))

	if err := s.repo.Test().Update(ctx, nil, test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}

	return s.buildResponse(test, len(items), userID), nil
}

func (s *testBuilderService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting test", "test_id", id, "user_id", userID)

	if !s.gate.Can(userID, auth.ActionDelete) {
		return NewPermissionError(userID, id, "test", "delete", "delete is restricted to primary admins")
	}

	test, err := s.getTest(ctx, id)
	if err != nil {
		return err
	}

	if errs := s.validator.GetBusinessValidator().ValidateTestDelete(test.Status); len(errs) > 0 {
		return errs
	}

	if err := s.repo.Test().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete test: %w", err)
	}

	s.publish(ctx, events.EventTestDeleted, map[string]interface{}{"test_id": id, "name": test.Name})

	return nil
}

// FetchCandidates lists the union of the selected chapters' test banks
// for the builder's question picker.
func (s *testBuilderService) FetchCandidates(ctx context.Context, req *CandidateRequest, userID string) ([]*QuestionResponse, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, 0, "question", "read", "not an admin")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	bank := models.BankTest
	status := models.QuestionActive
	filters := repositories.QuestionFilters{
		ChapterIDs: req.ChapterIDs,
		Bank:       &bank,
		Types:      req.Types,
		Status:     &status,
		Band:       req.Band,
		Tags:       req.Tags,
		Search:     req.Search,
	}

	questions, _, err := s.repo.Question().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch candidates: %w", err)
	}

	canEdit := s.gate.Can(userID, auth.ActionUpdate)
	canDelete := s.gate.Can(userID, auth.ActionDelete)
	responses := make([]*QuestionResponse, 0, len(questions))
	for _, q := range questions {
		responses = append(responses, &QuestionResponse{Question: q, CanEdit: canEdit, CanDelete: canDelete})
	}
	return responses, nil
}

// SaveItems replaces the whole item set in request order and rewrites
// the derived counts, syllabus and tag union in the same transaction.
func (s *testBuilderService) SaveItems(ctx context.Context, id uint, req *SaveTestItemsRequest, userID string) (*TestResponse, error) {
	s.logger.Info("Saving test items", "test_id", id, "item_count", len(req.Items), "user_id", userID)

	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, id, "test", "update", "not an admin")
	}

	if errs := s.validator.GetBusinessValidator().ValidateSaveTestItems(req); len(errs) > 0 {
		return nil, errs
	}

	test, err := s.getTest(ctx, id)
	if err != nil {
		return nil, err
	}
	if test.Status != models.TestDraft {
		return nil, ErrTestNotDraft
	}

	items := make([]*models.TestItem, 0, len(req.Items))
	for _, ir := range req.Items {
		item := &models.TestItem{
			QuestionID:       ir.QuestionID,
			ChapterID:        ir.ChapterID,
			RefPath:          ir.RefPath,
			MarksCorrect:     ir.MarksCorrect,
			MarksWrong:       ir.MarksWrong,
			Title:            ir.Title,
			Type:             ir.Type,
			DifficultyBand:   ir.DifficultyBand,
			SkillTags:        datatypes.JSONSlice[string](ir.SkillTags),
			TimeSuggestedSec: ir.TimeSuggestedSec,
		}
		if item.RefPath == "" {
			item.RefPath = models.QuestionRefPath(ir.ChapterID, models.BankTest, ir.QuestionID)
		}
		// Fill missing snapshot columns from the source so a client that
		// only sends references still yields a browsable item list.
		if item.Title == "" || item.Type == "" {
			source, err := s.repo.Question().GetByID(ctx, nil, ir.QuestionID)
			if err != nil {
				if repositories.IsNotFound(err) {
					return nil, ErrItemSourceNotFound
				}
				return nil, fmt.Errorf("failed to resolve item source: %w", err)
			}
			if item.Title == "" {
				item.Title = source.Title
			}
			if item.Type == "" {
				item.Type = source.Type
			}
			if item.DifficultyBand == "" {
				item.DifficultyBand = source.DifficultyBand
			}
			if len(item.SkillTags) == 0 {
				item.SkillTags = source.SkillTags
			}
			if item.TimeSuggestedSec == nil {
				item.TimeSuggestedSec = source.TimeSuggestedSec
			}
		}
		items = append(items, item)
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.TestItem().ReplaceAll(ctx, nil, id, items); err != nil {
			return err
		}

		test.Counts = datatypes.NewJSONType(ComputeCounts(items, test))
		test.SkillTags = CollectTestTags(items)
		test.SyllabusChapters = MergeSyllabusChapters(test.SyllabusChapters, items)
		test.Version++

		return txRepo.Test().Update(ctx, nil, test)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save items: %w", err)
	}

	s.publish(ctx, events.EventTestSaved, map[string]interface{}{"test_id": id, "item_count": len(items), "version": test.Version})

	return s.buildResponse(test, len(items), userID), nil
}

// MoveItem swaps an item with its neighbor in paper order. The item is
// addressed by its source question, which appears at most once per test.
// Moving past either end is a no-op.
func (s *testBuilderService) MoveItem(ctx context.Context, id, questionID uint, direction MoveDirection, userID string) (*TestResponse, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, id, "test", "update", "not an admin")
	}

	test, err := s.getTest(ctx, id)
	if err != nil {
		return nil, err
	}
	if test.Status != models.TestDraft {
		return nil, ErrTestNotDraft
	}

	items, err := s.repo.TestItem().GetByTest(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	pos := -1
	for i, item := range items {
		if item.QuestionID == questionID {
			pos = i
			break
		}
	}
	if pos < 0 {
		return nil, ErrTestItemNotFound
	}

	neighbor := pos - 1
	if direction == MoveDown {
		neighbor = pos + 1
	}
	if neighbor < 0 || neighbor >= len(items) {
		return s.buildResponse(test, len(items), userID), nil
	}

	items[pos], items[neighbor] = items[neighbor], items[pos]

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		return txRepo.TestItem().ReplaceAll(ctx, nil, id, items)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to move item: %w", err)
	}

	return s.buildResponse(test, len(items), userID), nil
}

// ApplyAssignedMarks copies each source question's own marking onto its
// item. Items whose source has been deleted keep their current override.
func (s *testBuilderService) ApplyAssignedMarks(ctx context.Context, id uint, userID string) (*TestResponse, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, id, "test", "update", "not an admin")
	}

	test, err := s.getTest(ctx, id)
	if err != nil {
		return nil, err
	}
	if test.Status != models.TestDraft {
		return nil, ErrTestNotDraft
	}

	items, err := s.repo.TestItem().GetByTest(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	applied := 0
	for _, item := range items {
		source, err := s.repo.Question().GetByRefPath(ctx, nil, item.RefPath)
		if err != nil {
			if repositories.IsNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("failed to resolve item source: %w", err)
		}
		if source.MarksCorrect != nil {
			item.MarksCorrect = source.MarksCorrect
		}
		if source.MarksWrong != nil {
			item.MarksWrong = source.MarksWrong
		}
		applied++
	}

	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		if err := txRepo.TestItem().ReplaceAll(ctx, nil, id, items); err != nil {
			return err
		}
		test.Counts = datatypes.NewJSONType(ComputeCounts(items, test))
		test.Version++
		return txRepo.Test().Update(ctx, nil, test)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to apply assigned marks: %w", err)
	}

	s.logger.Info("Applied assigned marks", "test_id", id, "resolved", applied, "total", len(items))

	return s.buildResponse(test, len(items), userID), nil
}

// ValidateStage gates the builder's step transitions: 1 checks the
// basics, 2 the item selection. Stage 3 is the read-only review step;
// the counts snapshot is recomputed on every save, so the only thing
// left to verify before publish is that every item resolves to a
// marking scheme.
func (s *testBuilderService) ValidateStage(ctx context.Context, id uint, stage int, userID string) (*StageValidation, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, NewPermissionError(userID, id, "test", "read", "not an admin")
	}

	test, err := s.getTest(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &StageValidation{Stage: stage, Valid: true}
	addIssue := func(msg string) {
		result.Valid = false
		result.Issues = append(result.Issues, msg)
	}

	switch stage {
	case 1:
		if test.Name == "" {
			addIssue("test name is required")
		}
		if test.Exam == "" {
			addIssue("exam type is required")
		}
		if len(test.SyllabusChapters) == 0 {
			addIssue("at least one syllabus chapter is required")
		}
	case 2:
		count, err := s.repo.TestItem().CountByTest(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("failed to count items: %w", err)
		}
		if count == 0 {
			addIssue("at least one question must be selected")
		}
	case 3:
		items, err := s.repo.TestItem().GetByTest(ctx, nil, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load items: %w", err)
		}
		for _, item := range items {
			if item.Type == "" && item.MarksCorrect == nil && test.MarksCorrectDefault == nil {
				addIssue(fmt.Sprintf("item %d (question %d) has no resolvable marks", item.ItemOrder+1, item.QuestionID))
			}
		}
	default:
		addIssue(fmt.Sprintf("unknown builder stage %d", stage))
	}

	return result, nil
}

func (s *testBuilderService) Publish(ctx context.Context, id uint, userID string) (*TestResponse, error) {
	return s.transition(ctx, id, models.TestPublished, events.EventTestPublished, userID)
}

func (s *testBuilderService) Archive(ctx context.Context, id uint, userID string) (*TestResponse, error) {
	return s.transition(ctx, id, models.TestArchived, events.EventTestArchived, userID)
}

func (s *testBuilderService) transition(ctx context.Context, id uint, status models.TestStatus, eventType, userID string) (*TestResponse, error) {
	if !s.gate.Can(userID, auth.ActionUpdate) {
		return nil, NewPermissionError(userID, id, "test", "update", "not an admin")
	}

	test, err := s.getTest(ctx, id)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.TestItem().CountByTest(ctx, nil, id)
	if err != nil {
		return nil, fmt.Errorf("failed to count items: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateTestStatusTransition(test.Status, status, int(count)); len(errs) > 0 {
		return nil, errs
	}

	if err := s.repo.Test().UpdateStatus(ctx, nil, id, status); err != nil {
		return nil, fmt.Errorf("failed to update test status: %w", err)
	}
	test.Status = status

	s.logger.Info("Test status changed", "test_id", id, "status", status, "user_id", userID)
	s.publish(ctx, eventType, map[string]interface{}{"test_id": id, "status": status})

	return s.buildResponse(test, int(count), userID), nil
}

func (s *testBuilderService) getTest(ctx context.Context, id uint) (*models.TestMeta, error) {
	test, err := s.repo.Test().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrTestNotFound
		}
		return nil, fmt.Errorf("failed to get test: %w", err)
	}
	return test, nil
}

func (s *testBuilderService) buildResponse(test *models.TestMeta, itemCount int, userID string) *TestResponse {
	canEdit := s.gate.Can(userID, auth.ActionUpdate)
	return &TestResponse{
		TestMeta:   test,
		CanEdit:    canEdit,
		CanDelete:  s.gate.Can(userID, auth.ActionDelete),
		CanPublish: canEdit && test.Status == models.TestDraft && itemCount > 0,
	}
}

func (s *testBuilderService) publish(ctx context.Context, eventType string, data interface{}) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events.ContentEvent{Type: eventType, Data: data}); err != nil {
		s.logger.Warn("Failed to publish event", "event_type", eventType, "error", err)
	}
}
