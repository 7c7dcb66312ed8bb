package services

import (
	"gorm.io/datatypes"

	"github.com/prepforge/content-admin-service/internal/models"
)

// fallbackMarksCorrect is the last-resort positive mark when neither
// the item nor the test carries one.
const fallbackMarksCorrect = 4

// ResolveItemMarks resolves one item's scoring. Positive marks follow
// item override → test-level default → the flat constant 4. Negative
// marks fall back to the exam-standard value for the item's question
// type, since no flat constant fits both MCQ and numerical items.
func ResolveItemMarks(item *models.TestItem, meta *models.TestMeta) models.Marks {
	marks := models.Marks{
		Correct: fallbackMarksCorrect,
		Wrong:   models.DefaultMarks(meta.Exam, item.Type).Wrong,
	}
	if meta.MarksCorrectDefault != nil {
		marks.Correct = *meta.MarksCorrectDefault
	}
	if meta.MarksWrongDefault != nil {
		marks.Wrong = *meta.MarksWrongDefault
	}
	if item.MarksCorrect != nil {
		marks.Correct = *item.MarksCorrect
	}
	if item.MarksWrong != nil {
		marks.Wrong = *item.MarksWrong
	}
	return marks
}

// ComputeCounts derives the aggregate snapshot from the current item
// set. Items without a difficulty band are counted in the totals but
// skipped in the per-band tally.
func ComputeCounts(items []*models.TestItem, meta *models.TestMeta) models.TestCounts {
	counts := models.TestCounts{
		TotalQuestions: len(items),
		ByType:         make(map[models.QuestionType]int),
		ByDifficulty:   make(map[models.DifficultyBand]int),
	}
	for _, item := range items {
		if item.Type != "" {
			counts.ByType[item.Type]++
		}
		if item.DifficultyBand != "" {
			counts.ByDifficulty[item.DifficultyBand]++
		}
		counts.TotalMarks += ResolveItemMarks(item, meta).Correct
	}
	return counts
}

// CollectTestTags is the de-duplicated union of all item tags, in first
// occurrence order.
func CollectTestTags(items []*models.TestItem) datatypes.JSONSlice[string] {
	var all []string
	for _, item := range items {
		all = append(all, item.SkillTags...)
	}
	return normalizeTags(all)
}

// MergeSyllabusChapters extends the declared syllabus with any chapter an
// item actually draws from, preserving the declared order.
func MergeSyllabusChapters(declared []uint, items []*models.TestItem) datatypes.JSONSlice[uint] {
	seen := make(map[uint]struct{}, len(declared))
	out := make([]uint, 0, len(declared))
	for _, id := range declared {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	for _, item := range items {
		if item.ChapterID == 0 {
			continue
		}
		if _, dup := seen[item.ChapterID]; dup {
			continue
		}
		seen[item.ChapterID] = struct{}{}
		out = append(out, item.ChapterID)
	}
	return datatypes.JSONSlice[uint](out)
}
