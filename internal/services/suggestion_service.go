package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/llm"
	"github.com/prepforge/content-admin-service/internal/repositories"
	"github.com/prepforge/content-admin-service/internal/validator"
)

type suggestionService struct {
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	gate      *auth.Gate
	provider  llm.SuggestionProvider
}

func NewSuggestionService(repo repositories.Repository, logger *slog.Logger, v *validator.Validator, gate *auth.Gate, provider llm.SuggestionProvider) SuggestionService {
	return &suggestionService{
		repo:      repo,
		logger:    logger,
		validator: v,
		gate:      gate,
		provider:  provider,
	}
}

// Suggest asks the model for an annotation proposal constrained to the
// chapter's tag vocabulary. The result is advisory; nothing persists
// until the operator accepts it through a normal question write.
func (s *suggestionService) Suggest(ctx context.Context, req *SuggestionInput, userID string) (*SuggestionResult, error) {
	if !s.gate.CanUseAI(userID) {
		return nil, NewPermissionError(userID, req.ChapterID, "suggestion", "read", "not an admin")
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	vocabulary, err := s.repo.Chapter().GetSkillTags(ctx, nil, req.ChapterID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, ErrChapterNotFound
		}
		return nil, fmt.Errorf("failed to load chapter vocabulary: %w", err)
	}

	suggestion, err := s.provider.Suggest(ctx, llm.SuggestionRequest{
		QuestionText:   req.QuestionText,
		DetailedAnswer: req.DetailedAnswer,
		Exam:           req.Exam,
		Vocabulary:     vocabulary,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get suggestion: %w", err)
	}

	s.logger.Info("Annotation suggested",
		"chapter_id", req.ChapterID,
		"tag_count", len(suggestion.SkillTags),
		"from_model", s.provider.Enabled())

	return &SuggestionResult{
		SkillTags:    suggestion.SkillTags,
		Title:        suggestion.Title,
		Difficulty:   suggestion.Difficulty,
		QuestionText: suggestion.QuestionText,
		FromModel:    s.provider.Enabled(),
	}, nil
}

// RefineLatex cleans up a question's LaTeX markup. With no model
// configured the content comes back unchanged.
func (s *suggestionService) RefineLatex(ctx context.Context, content string, userID string) (string, error) {
	if !s.gate.CanUseAI(userID) {
		return "", NewPermissionError(userID, 0, "suggestion", "read", "not an admin")
	}

	refined, err := s.provider.Refine(ctx, content)
	if err != nil {
		return "", fmt.Errorf("failed to refine content: %w", err)
	}

	return refined, nil
}

func (s *suggestionService) Enabled() bool {
	return s.provider.Enabled()
}
