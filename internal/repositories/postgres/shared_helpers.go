package postgres

import (
	"encoding/json"

	"gorm.io/gorm"

	"github.com/prepforge/content-admin-service/internal/repositories"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyQuestionFilters applies common filters to question queries
func (h *SharedHelpers) ApplyQuestionFilters(query *gorm.DB, filters repositories.QuestionFilters) *gorm.DB {
	if len(filters.ChapterIDs) > 0 {
		query = query.Where("chapter_id IN ?", filters.ChapterIDs)
	}
	if filters.Bank != nil {
		query = query.Where("bank = ?", *filters.Bank)
	}
	if len(filters.Types) > 0 {
		query = query.Where("type IN ?", filters.Types)
	}
	if filters.Exam != nil {
		query = query.Where("exam = ?", *filters.Exam)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Band != nil {
		query = query.Where("difficulty_band = ?", *filters.Band)
	}
	if len(filters.Tags) > 0 {
		// Match any requested tag against the JSONB tag array. Containment
		// per tag avoids the jsonb ?| operator, which collides with bind
		// placeholders.
		tagQuery := h.db.Session(&gorm.Session{NewDB: true})
		for _, tag := range filters.Tags {
			payload, err := json.Marshal([]string{tag})
			if err != nil {
				continue
			}
			tagQuery = tagQuery.Or("skill_tags @> ?", string(payload))
		}
		query = query.Where(tagQuery)
	}
	return query
}

// ApplyTestFilters applies common filters to mock test queries
func (h *SharedHelpers) ApplyTestFilters(query *gorm.DB, filters repositories.TestFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Exam != nil {
		query = query.Where("exam = ?", *filters.Exam)
	}
	if filters.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filters.Search+"%")
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at":    true,
		"updated_at":    true,
		"id":            true,
		"name":          true,
		"title":         true,
		"status":        true,
		"difficulty":    true,
		"type":          true,
		"display_order": true,
	}

	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
