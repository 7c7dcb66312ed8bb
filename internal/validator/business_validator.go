package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/prepforge/content-admin-service/internal/models"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateQuestionCreate validates question creation business rules
func (bv *BusinessValidator) ValidateQuestionCreate(req *QuestionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateAnswerShape(req.Type, req.Choices, req.AnswerIndex, req.AnswerIndices, req.Range)...)
	errors = append(errors, validateTagList(req.SkillTags)...)
	errors = append(errors, requireSkillTag(req.SkillTags, req.SkillTag)...)

	return errors
}

// ValidateQuestionUpdate validates question update business rules against
// the current stored row. Fields the update leaves nil keep their stored
// values, so the answer shape is checked on the merged view.
func (bv *BusinessValidator) ValidateQuestionUpdate(req *QuestionUpdateRequest, existing *models.Question) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	qType := existing.Type
	if req.Type != nil {
		qType = *req.Type
	}
	choices := []string(existing.Choices)
	if req.Choices != nil {
		choices = req.Choices
	}
	answerIndex := existing.AnswerIndex
	if req.AnswerIndex != nil {
		answerIndex = req.AnswerIndex
	}
	answerIndices := []int(existing.AnswerIndices)
	if req.AnswerIndices != nil {
		answerIndices = req.AnswerIndices
	}
	numRange := req.Range
	if numRange == nil && existing.Range != nil {
		r := existing.Range.Data()
		numRange = &r
	}

	errors = append(errors, bv.validateAnswerShape(qType, choices, answerIndex, answerIndices, numRange)...)
	errors = append(errors, validateTagList(req.SkillTags)...)

	tags := []string(existing.SkillTags)
	if req.SkillTags != nil {
		tags = req.SkillTags
	}
	scalar := existing.SkillTag
	if req.SkillTag != nil {
		scalar = *req.SkillTag
	}
	errors = append(errors, requireSkillTag(tags, scalar)...)

	return errors
}

// ValidateSlideCreate validates slide creation. Question slides carry the
// same answer shape rules as bank questions; theory slides need content.
func (bv *BusinessValidator) ValidateSlideCreate(req *SlideCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	switch req.Kind {
	case models.SlideTheory:
		if strings.TrimSpace(req.Content) == "" && req.ImageURL == nil {
			errors = append(errors, ValidationError{
				Field:   "content",
				Tag:     "business_logic",
				Message: "theory slide needs content or an image",
			})
		}
	case models.SlideQuestion:
		if strings.TrimSpace(req.QuestionText) == "" {
			errors = append(errors, ValidationError{
				Field:   "question_text",
				Tag:     "business_logic",
				Message: "question slide needs question text",
			})
		}
		qType := req.Type
		if qType == "" {
			qType = models.TypeMCQ
		}
		errors = append(errors, bv.validateAnswerShape(qType, req.Choices, req.AnswerIndex, req.AnswerIndices, req.Range)...)
		errors = append(errors, requireSkillTag(req.SkillTags, req.SkillTag)...)
	}

	return errors
}

// ValidateSlideUpdate validates a slide mutation against the stored
// slide. Question slides keep the tag-presence invariant on the merged
// view.
func (bv *BusinessValidator) ValidateSlideUpdate(req *SlideUpdateRequest, existing *models.Slide) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if existing.Kind == models.SlideQuestion {
		tags := []string(existing.SkillTags)
		if req.SkillTags != nil {
			tags = req.SkillTags
		}
		scalar := existing.SkillTag
		if req.SkillTag != nil {
			scalar = *req.SkillTag
		}
		errors = append(errors, requireSkillTag(tags, scalar)...)
	}

	return errors
}

// ValidateBreakdownCreate validates breakdown creation business rules.
func (bv *BusinessValidator) ValidateBreakdownCreate(req *BreakdownCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, validateTagList(req.SkillTags)...)
	errors = append(errors, requireSkillTag(req.SkillTags, req.SkillTag)...)

	return errors
}

// ValidateBreakdownUpdate validates a breakdown mutation against the
// stored row.
func (bv *BusinessValidator) ValidateBreakdownUpdate(req *BreakdownUpdateRequest, existing *models.Breakdown) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, validateTagList(req.SkillTags)...)

	tags := []string(existing.SkillTags)
	if req.SkillTags != nil {
		tags = req.SkillTags
	}
	scalar := existing.SkillTag
	if req.SkillTag != nil {
		scalar = *req.SkillTag
	}
	errors = append(errors, requireSkillTag(tags, scalar)...)

	return errors
}

// ValidateVideoCreate validates chapter video creation business rules.
func (bv *BusinessValidator) ValidateVideoCreate(req *VideoCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, requireSkillTag(nil, req.SkillTag)...)

	return errors
}

// ValidateVideoUpdate validates a video mutation against the stored row.
func (bv *BusinessValidator) ValidateVideoUpdate(req *VideoUpdateRequest, existing *models.ChapterVideo) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	scalar := existing.SkillTag
	if req.SkillTag != nil {
		scalar = *req.SkillTag
	}
	errors = append(errors, requireSkillTag(nil, scalar)...)

	return errors
}

// ValidateSaveTestItems validates a replace-all item save: the same
// source question may not appear twice in one paper.
func (bv *BusinessValidator) ValidateSaveTestItems(req *SaveTestItemsRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	seen := make(map[[2]uint]int, len(req.Items))
	for i, item := range req.Items {
		key := [2]uint{item.ChapterID, item.QuestionID}
		if first, dup := seen[key]; dup {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("items[%d]", i),
				Tag:     "business_logic",
				Message: fmt.Sprintf("question %d already selected at position %d", item.QuestionID, first),
			})
			continue
		}
		seen[key] = i
	}

	return errors
}

// ValidateTestStatusTransition validates mock test status transitions
func (bv *BusinessValidator) ValidateTestStatusTransition(currentStatus, newStatus models.TestStatus, itemCount int) ValidationErrors {
	var errors ValidationErrors

	allowedTransitions := map[models.TestStatus][]models.TestStatus{
		models.TestDraft:     {models.TestPublished, models.TestArchived},
		models.TestPublished: {models.TestDraft, models.TestArchived},
		models.TestArchived:  {},
	}

	allowed := false
	for _, s := range allowedTransitions[currentStatus] {
		if newStatus == s {
			allowed = true
			break
		}
	}

	if !allowed {
		errors = append(errors, ValidationError{
			Field:   "status",
			Tag:     "status_transition",
			Message: fmt.Sprintf("cannot transition from %s to %s", currentStatus, newStatus),
		})
	}

	if newStatus == models.TestPublished && itemCount == 0 {
		errors = append(errors, ValidationError{
			Field:   "items",
			Tag:     "business_logic",
			Message: "test must have at least one question before publishing",
		})
	}

	return errors
}

// ValidateTestDelete validates if a mock test can be deleted
func (bv *BusinessValidator) ValidateTestDelete(status models.TestStatus) ValidationErrors {
	var errors ValidationErrors

	if status == models.TestPublished {
		errors = append(errors, ValidationError{
			Field:   "status",
			Tag:     "business_logic",
			Message: "cannot delete a published test; archive it first",
		})
	}

	return errors
}

// validateAnswerShape checks that the answer payload matches the question
// type: choice kinds need 2-6 choices and an in-range key, numerical needs
// min <= max.
func (bv *BusinessValidator) validateAnswerShape(qType models.QuestionType, choices []string, answerIndex *int, answerIndices []int, numRange *models.NumRange) ValidationErrors {
	var errors ValidationErrors

	switch qType {
	case models.TypeMCQ, models.TypeMultipleAnswer:
		if len(choices) < 2 || len(choices) > 6 {
			errors = append(errors, ValidationError{
				Field:   "choices",
				Tag:     "business_logic",
				Message: "choice questions need between 2 and 6 choices",
			})
		}
		for i, c := range choices {
			if strings.TrimSpace(c) == "" {
				errors = append(errors, ValidationError{
					Field:   fmt.Sprintf("choices[%d]", i),
					Tag:     "business_logic",
					Message: "choice cannot be empty",
				})
			}
		}
		if qType == models.TypeMCQ {
			if answerIndex == nil {
				errors = append(errors, ValidationError{
					Field:   "answer_index",
					Tag:     "business_logic",
					Message: "single-choice questions need an answer index",
				})
			} else if len(choices) > 0 && (*answerIndex < 0 || *answerIndex >= len(choices)) {
				errors = append(errors, ValidationError{
					Field:   "answer_index",
					Tag:     "business_logic",
					Message: "answer index is outside the choice list",
				})
			}
		} else {
			if len(answerIndices) == 0 {
				errors = append(errors, ValidationError{
					Field:   "answer_indices",
					Tag:     "business_logic",
					Message: "multiple-answer questions need at least one correct index",
				})
			}
			for _, idx := range answerIndices {
				if len(choices) > 0 && (idx < 0 || idx >= len(choices)) {
					errors = append(errors, ValidationError{
						Field:   "answer_indices",
						Tag:     "business_logic",
						Message: fmt.Sprintf("index %d is outside the choice list", idx),
					})
				}
			}
		}
	case models.TypeNumerical:
		if numRange == nil {
			errors = append(errors, ValidationError{
				Field:   "range",
				Tag:     "business_logic",
				Message: "numerical questions need an accepted range",
			})
		} else if numRange.Min > numRange.Max {
			errors = append(errors, ValidationError{
				Field:   "range",
				Tag:     "business_logic",
				Message: "range min cannot exceed max",
			})
		}
	}

	return errors
}

func validateTagList(tags []string) ValidationErrors {
	var errors ValidationErrors

	for i, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("skill_tags[%d]", i),
				Tag:     "business_logic",
				Message: "skill tag cannot be empty",
			})
		}
	}

	return errors
}

// requireSkillTag enforces the persistence invariant that tagged content
// carries at least one non-blank skill tag, across both the legacy
// scalar field and the canonical array.
func requireSkillTag(skillTags []string, skillTag string) ValidationErrors {
	for _, tag := range skillTags {
		if strings.TrimSpace(tag) != "" {
			return nil
		}
	}
	if strings.TrimSpace(skillTag) != "" {
		return nil
	}
	return ValidationErrors{{
		Field:   "skill_tag",
		Tag:     "business_logic",
		Message: "at least one skill tag is required",
	}}
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// exam type validation
	bv.validate.RegisterValidation("exam_type", func(fl validator.FieldLevel) bool {
		exam := models.ExamType(fl.Field().String())
		switch exam {
		case models.ExamJEEMain, models.ExamJEEAdvanced, models.ExamNEET:
			return true
		}
		return false
	})

	// question type validation
	bv.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		qType := models.QuestionType(fl.Field().String())
		switch qType {
		case models.TypeMCQ, models.TypeMultipleAnswer, models.TypeNumerical:
			return true
		}
		return false
	})

	// bank discriminator validation
	bv.validate.RegisterValidation("question_bank", func(fl validator.FieldLevel) bool {
		bank := models.QuestionBank(fl.Field().String())
		switch bank {
		case models.BankDiagnostic, models.BankPractice, models.BankTest:
			return true
		}
		return false
	})

	// difficulty validation (1-10 scale)
	bv.validate.RegisterValidation("difficulty_range", func(fl validator.FieldLevel) bool {
		d := fl.Field().Int()
		return d >= 1 && d <= 10
	})
}
