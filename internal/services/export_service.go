package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
	gate   *auth.Gate
}

func NewExportService(repo repositories.Repository, logger *slog.Logger, gate *auth.Gate) ExportService {
	return &exportService{
		repo:   repo,
		logger: logger,
		gate:   gate,
	}
}

var questionExportHeaders = []string{
	"ID", "Title", "Question Text", "Type", "Exam", "Difficulty", "Band",
	"Skill Tags", "Status", "Marks Correct", "Marks Wrong", "Time (sec)", "Created At",
}

// ExportChapterBank renders one chapter's bank as an XLSX workbook.
func (s *exportService) ExportChapterBank(ctx context.Context, chapterID uint, bank models.QuestionBank, userID string) ([]byte, string, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, "", NewPermissionError(userID, chapterID, "export", "read", "not an admin")
	}

	chapter, err := s.repo.Chapter().GetByID(ctx, nil, chapterID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, "", ErrChapterNotFound
		}
		return nil, "", fmt.Errorf("failed to get chapter: %w", err)
	}

	questions, err := s.repo.Question().GetByChapterAndBank(ctx, nil, chapterID, bank)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load questions: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Questions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", fmt.Errorf("failed to prepare sheet: %w", err)
	}

	for col, header := range questionExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, q := range questions {
		row := i + 2
		values := []interface{}{
			q.ID,
			q.Title,
			q.QuestionText,
			string(q.Type),
			string(q.Exam),
			q.Difficulty,
			string(q.DifficultyBand),
			strings.Join(models.DisplaySkillTags(q.SkillTags, q.SkillTag), ", "),
			string(q.Status),
			derefInt(q.MarksCorrect),
			derefInt(q.MarksWrong),
			derefInt(q.TimeSuggestedSec),
			q.CreatedAt.Format(time.RFC3339),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, "", fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("%s-%s-bank-%s.xlsx", exportSlug(chapter.Name), bank, time.Now().UTC().Format("20060102"))
	s.logger.Info("Exported chapter bank", "chapter_id", chapterID, "bank", bank, "rows", len(questions))

	return buf.Bytes(), filename, nil
}

var testExportHeaders = []string{
	"#", "Question ID", "Chapter ID", "Ref Path", "Title", "Type", "Band",
	"Skill Tags", "Marks Correct", "Marks Wrong", "Time (sec)",
}

// ExportTest renders a mock test's item list as an XLSX workbook with a
// summary sheet for the meta and counts.
func (s *exportService) ExportTest(ctx context.Context, testID uint, userID string) ([]byte, string, error) {
	if !s.gate.Can(userID, auth.ActionRead) {
		return nil, "", NewPermissionError(userID, testID, "export", "read", "not an admin")
	}

	test, err := s.repo.Test().GetByIDWithItems(ctx, nil, testID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, "", ErrTestNotFound
		}
		return nil, "", fmt.Errorf("failed to get test: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	summary := "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, "", fmt.Errorf("failed to prepare sheet: %w", err)
	}

	counts := test.Counts.Data()
	summaryRows := [][]interface{}{
		{"Name", test.Name},
		{"Exam", string(test.Exam)},
		{"Status", string(test.Status)},
		{"Duration (sec)", test.DurationSec},
		{"Questions", counts.TotalQuestions},
		{"Total Marks", counts.TotalMarks},
		{"Version", test.Version},
		{"Skill Tags", strings.Join(test.SkillTags, ", ")},
	}
	for i, pair := range summaryRows {
		for col, v := range pair {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+1)
			if err := f.SetCellValue(summary, cell, v); err != nil {
				return nil, "", fmt.Errorf("failed to write summary: %w", err)
			}
		}
	}

	itemsSheet := "Items"
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, "", fmt.Errorf("failed to prepare sheet: %w", err)
	}

	for col, header := range testExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(itemsSheet, cell, header); err != nil {
			return nil, "", fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i := range test.Items {
		item := &test.Items[i]
		marks := ResolveItemMarks(item, test)
		row := i + 2
		values := []interface{}{
			item.ItemOrder + 1,
			item.QuestionID,
			item.ChapterID,
			item.RefPath,
			item.Title,
			string(item.Type),
			string(item.DifficultyBand),
			strings.Join(item.SkillTags, ", "),
			marks.Correct,
			marks.Wrong,
			derefInt(item.TimeSuggestedSec),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(itemsSheet, cell, v); err != nil {
				return nil, "", fmt.Errorf("failed to write row %d: %w", row, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", fmt.Errorf("failed to render workbook: %w", err)
	}

	filename := fmt.Sprintf("%s-test-%s.xlsx", exportSlug(test.Name), time.Now().UTC().Format("20060102"))
	s.logger.Info("Exported test", "test_id", testID, "items", len(test.Items))

	return buf.Bytes(), filename, nil
}

func derefInt(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func exportSlug(name string) string {
	slug := slugify(name)
	if slug == "" {
		return "export"
	}
	return slug
}
