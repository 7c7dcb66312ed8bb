package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// Chapter groups a subject's question banks, breakdowns and videos, and
// owns its own skill-tag vocabulary. The child counters are denormalized
// and maintained on every child create/delete; RecountChildren on the
// chapter service reconciles them from source.
type Chapter struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Name    string `json:"name" gorm:"not null;size:200" validate:"required,max=200"`
	Slug    string `json:"slug" gorm:"uniqueIndex;size:200"`
	Subject string `json:"subject" gorm:"size:100;index"`

	// Chapter-owned vocabulary of free-form skill-tag slugs.
	SkillTags datatypes.JSONSlice[string] `json:"skill_tags" gorm:"type:jsonb"`

	DiagnosticQuestionCount int `json:"diagnostic_question_count" gorm:"default:0"`
	PracticeQuestionCount   int `json:"practice_question_count" gorm:"default:0"`
	TestQuestionCount       int `json:"test_question_count" gorm:"default:0"`
	BreakdownCount          int `json:"breakdown_count" gorm:"default:0"`
	VideoCount              int `json:"video_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CounterColumn maps a question bank to the chapter counter column it
// maintains.
func CounterColumn(bank QuestionBank) string {
	switch bank {
	case BankDiagnostic:
		return "diagnostic_question_count"
	case BankPractice:
		return "practice_question_count"
	default:
		return "test_question_count"
	}
}

// QuestionRefPath renders the logical document path for a question,
// matching the hierarchical layout of the persisted data:
// chapters/{chapterID}/{bank}-questions/{questionID}.
func QuestionRefPath(chapterID uint, bank QuestionBank, questionID uint) string {
	return fmt.Sprintf("chapters/%d/%s-questions/%d", chapterID, bank, questionID)
}

// ParseQuestionRefPath resolves a stored item reference back to its
// coordinates. Returns false for malformed paths.
func ParseQuestionRefPath(path string) (chapterID uint, bank QuestionBank, questionID uint, ok bool) {
	var bankStr string
	n, err := fmt.Sscanf(path, "chapters/%d/%s", &chapterID, &bankStr)
	if err != nil || n != 2 {
		return 0, "", 0, false
	}
	var qid uint
	for _, b := range []QuestionBank{BankDiagnostic, BankPractice, BankTest} {
		prefix := string(b) + "-questions/"
		if len(bankStr) > len(prefix) && bankStr[:len(prefix)] == prefix {
			if _, err := fmt.Sscanf(bankStr[len(prefix):], "%d", &qid); err == nil {
				return chapterID, b, qid, true
			}
		}
	}
	return 0, "", 0, false
}
