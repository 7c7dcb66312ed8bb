package services

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"github.com/prepforge/content-admin-service/internal/models"
	"github.com/prepforge/content-admin-service/internal/repositories"
)

// stubRepository wires whichever fakes a test needs; unset repos return
// nil so an unexpected call fails loudly.
type stubRepository struct {
	chapter   repositories.ChapterRepository
	question  repositories.QuestionRepository
	breakdown repositories.BreakdownRepository
	slide     repositories.SlideRepository
	video     repositories.VideoRepository
	test      repositories.TestRepository
	testItem  repositories.TestItemRepository
	user      repositories.UserRepository
}

func (m *stubRepository) Chapter() repositories.ChapterRepository     { return m.chapter }
func (m *stubRepository) Question() repositories.QuestionRepository   { return m.question }
func (m *stubRepository) Breakdown() repositories.BreakdownRepository { return m.breakdown }
func (m *stubRepository) Slide() repositories.SlideRepository         { return m.slide }
func (m *stubRepository) Video() repositories.VideoRepository         { return m.video }
func (m *stubRepository) Test() repositories.TestRepository           { return m.test }
func (m *stubRepository) TestItem() repositories.TestItemRepository   { return m.testItem }
func (m *stubRepository) User() repositories.UserRepository           { return m.user }

func (m *stubRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *stubRepository) Ping(ctx context.Context) error { return nil }
func (m *stubRepository) Close() error                   { return nil }

// ===== CHAPTER FAKE =====

type fakeChapterRepo struct {
	chapters map[uint]*models.Chapter
	nextID   uint
}

func newFakeChapterRepo() *fakeChapterRepo {
	return &fakeChapterRepo{chapters: make(map[uint]*models.Chapter), nextID: 1}
}

func (f *fakeChapterRepo) Create(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	chapter.ID = f.nextID
	f.nextID++
	f.chapters[chapter.ID] = chapter
	return nil
}

func (f *fakeChapterRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error) {
	c, ok := f.chapters[id]
	if !ok {
		return nil, fmt.Errorf("chapter %d: %w", id, repositories.ErrNotFound)
	}
	return c, nil
}

func (f *fakeChapterRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Chapter, error) {
	var out []*models.Chapter
	for _, id := range ids {
		if c, ok := f.chapters[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeChapterRepo) Update(ctx context.Context, tx *gorm.DB, chapter *models.Chapter) error {
	if _, ok := f.chapters[chapter.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.chapters[chapter.ID] = chapter
	return nil
}

func (f *fakeChapterRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.chapters[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.chapters, id)
	return nil
}

func (f *fakeChapterRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.ChapterFilters) ([]*models.Chapter, int64, error) {
	var out []*models.Chapter
	for _, c := range f.chapters {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeChapterRepo) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error) {
	for _, c := range f.chapters {
		if c.Name == name && (excludeID == nil || c.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeChapterRepo) IncrementCounter(ctx context.Context, tx *gorm.DB, id uint, column string, delta int) error {
	return nil
}

func (f *fakeChapterRepo) RecountChildren(ctx context.Context, tx *gorm.DB, id uint) (*models.Chapter, error) {
	return f.GetByID(ctx, tx, id)
}

func (f *fakeChapterRepo) GetSkillTags(ctx context.Context, tx *gorm.DB, id uint) ([]string, error) {
	c, err := f.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	return c.SkillTags, nil
}

func (f *fakeChapterRepo) UpdateSkillTags(ctx context.Context, tx *gorm.DB, id uint, tags []string) error {
	c, err := f.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}
	c.SkillTags = tags
	return nil
}

func (f *fakeChapterRepo) AllSkillTags(ctx context.Context, tx *gorm.DB) ([]string, error) {
	seen := make(map[string]bool)
	for _, c := range f.chapters {
		for _, tag := range c.SkillTags {
			seen[tag] = true
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// ===== QUESTION FAKE =====

type fakeQuestionRepo struct {
	questions map[uint]*models.Question
	nextID    uint
}

func newFakeQuestionRepo() *fakeQuestionRepo {
	return &fakeQuestionRepo{questions: make(map[uint]*models.Question), nextID: 1}
}

func (f *fakeQuestionRepo) add(q *models.Question) *models.Question {
	if q.ID == 0 {
		q.ID = f.nextID
		f.nextID++
	} else if q.ID >= f.nextID {
		f.nextID = q.ID + 1
	}
	f.questions[q.ID] = q
	return q
}

func (f *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if question.ChapterID == 0 {
		return repositories.ErrNoChapterSelected
	}
	f.add(question)
	return nil
}

func (f *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	q, ok := f.questions[id]
	if !ok {
		return nil, fmt.Errorf("question %d: %w", id, repositories.ErrNotFound)
	}
	return q, nil
}

func (f *fakeQuestionRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uint) ([]*models.Question, error) {
	var out []*models.Question
	for _, id := range ids {
		if q, ok := f.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}

func (f *fakeQuestionRepo) Update(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	if _, ok := f.questions[question.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.questions[question.ID] = question
	return nil
}

func (f *fakeQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.questions[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.questions, id)
	return nil
}

func (f *fakeQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	var out []*models.Question
	for _, q := range f.questions {
		if len(filters.ChapterIDs) > 0 && !containsUint(filters.ChapterIDs, q.ChapterID) {
			continue
		}
		if filters.Bank != nil && q.Bank != *filters.Bank {
			continue
		}
		if filters.Status != nil && q.Status != *filters.Status {
			continue
		}
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeQuestionRepo) GetByChapterAndBank(ctx context.Context, tx *gorm.DB, chapterID uint, bank models.QuestionBank) ([]*models.Question, error) {
	b := bank
	out, _, err := f.List(ctx, tx, repositories.QuestionFilters{ChapterIDs: []uint{chapterID}, Bank: &b})
	return out, err
}

func (f *fakeQuestionRepo) Search(ctx context.Context, tx *gorm.DB, query string, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	filters.Search = query
	return f.List(ctx, tx, filters)
}

func (f *fakeQuestionRepo) GetByRefPath(ctx context.Context, tx *gorm.DB, refPath string) (*models.Question, error) {
	_, _, questionID, ok := models.ParseQuestionRefPath(refPath)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return f.GetByID(ctx, tx, questionID)
}

func (f *fakeQuestionRepo) CountByChapterAndBank(ctx context.Context, tx *gorm.DB, chapterID uint, bank models.QuestionBank) (int64, error) {
	out, err := f.GetByChapterAndBank(ctx, tx, chapterID, bank)
	return int64(len(out)), err
}

// ===== BREAKDOWN FAKE =====

type fakeBreakdownRepo struct {
	breakdowns map[uint]*models.Breakdown
	nextID     uint
}

func newFakeBreakdownRepo() *fakeBreakdownRepo {
	return &fakeBreakdownRepo{breakdowns: make(map[uint]*models.Breakdown), nextID: 1}
}

func (f *fakeBreakdownRepo) Create(ctx context.Context, tx *gorm.DB, breakdown *models.Breakdown) error {
	breakdown.ID = f.nextID
	f.nextID++
	f.breakdowns[breakdown.ID] = breakdown
	return nil
}

func (f *fakeBreakdownRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Breakdown, error) {
	b, ok := f.breakdowns[id]
	if !ok {
		return nil, fmt.Errorf("breakdown %d: %w", id, repositories.ErrNotFound)
	}
	return b, nil
}

func (f *fakeBreakdownRepo) GetByIDWithSlides(ctx context.Context, tx *gorm.DB, id uint) (*models.Breakdown, error) {
	return f.GetByID(ctx, tx, id)
}

func (f *fakeBreakdownRepo) Update(ctx context.Context, tx *gorm.DB, breakdown *models.Breakdown) error {
	if _, ok := f.breakdowns[breakdown.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.breakdowns[breakdown.ID] = breakdown
	return nil
}

func (f *fakeBreakdownRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.breakdowns[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.breakdowns, id)
	return nil
}

func (f *fakeBreakdownRepo) GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) ([]*models.Breakdown, error) {
	var out []*models.Breakdown
	for _, b := range f.breakdowns {
		if b.ChapterID == chapterID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBreakdownRepo) CountByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) (int64, error) {
	out, err := f.GetByChapter(ctx, tx, chapterID)
	return int64(len(out)), err
}

// ===== SLIDE FAKE =====

type fakeSlideRepo struct {
	slides []*models.Slide
	nextID uint
}

func newFakeSlideRepo() *fakeSlideRepo {
	return &fakeSlideRepo{nextID: 1}
}

func (f *fakeSlideRepo) Create(ctx context.Context, tx *gorm.DB, slide *models.Slide) error {
	slide.ID = f.nextID
	f.nextID++
	f.slides = append(f.slides, slide)
	return nil
}

func (f *fakeSlideRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Slide, error) {
	for _, s := range f.slides {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, fmt.Errorf("slide %d: %w", id, repositories.ErrNotFound)
}

func (f *fakeSlideRepo) Update(ctx context.Context, tx *gorm.DB, slide *models.Slide) error {
	for i, s := range f.slides {
		if s.ID == slide.ID {
			f.slides[i] = slide
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeSlideRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	for i, s := range f.slides {
		if s.ID == id {
			f.slides = append(f.slides[:i], f.slides[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeSlideRepo) GetByBreakdown(ctx context.Context, tx *gorm.DB, breakdownID uint) ([]*models.Slide, error) {
	var out []*models.Slide
	for _, s := range f.slides {
		if s.BreakdownID == breakdownID {
			out = append(out, s)
		}
	}
	// slide_order ascending, unpositioned rows last in creation order
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].SlideOrder, out[j].SlideOrder
		switch {
		case a == nil && b == nil:
			return out[i].ID < out[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	return out, nil
}

func (f *fakeSlideRepo) MaxOrder(ctx context.Context, tx *gorm.DB, breakdownID uint) (int, error) {
	max := -1
	for _, s := range f.slides {
		if s.BreakdownID == breakdownID && s.SlideOrder != nil && *s.SlideOrder > max {
			max = *s.SlideOrder
		}
	}
	return max, nil
}

func (f *fakeSlideRepo) SwapOrder(ctx context.Context, tx *gorm.DB, breakdownID uint, slideID, neighborID uint) error {
	a, err := f.GetByID(ctx, tx, slideID)
	if err != nil {
		return err
	}
	b, err := f.GetByID(ctx, tx, neighborID)
	if err != nil {
		return err
	}
	if a.SlideOrder == nil || b.SlideOrder == nil {
		return fmt.Errorf("slide order not backfilled")
	}
	*a.SlideOrder, *b.SlideOrder = *b.SlideOrder, *a.SlideOrder
	return nil
}

func (f *fakeSlideRepo) BackfillOrder(ctx context.Context, tx *gorm.DB, breakdownID uint) (int, error) {
	max, _ := f.MaxOrder(ctx, tx, breakdownID)
	touched := 0
	for _, s := range f.slides {
		if s.BreakdownID == breakdownID && s.SlideOrder == nil {
			max++
			order := max
			s.SlideOrder = &order
			touched++
		}
	}
	return touched, nil
}

// ===== VIDEO FAKE =====

type fakeVideoRepo struct {
	videos []*models.ChapterVideo
	nextID uint
}

func (f *fakeVideoRepo) Create(ctx context.Context, tx *gorm.DB, video *models.ChapterVideo) error {
	f.nextID++
	video.ID = f.nextID
	f.videos = append(f.videos, video)
	return nil
}

func (f *fakeVideoRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ChapterVideo, error) {
	for _, v := range f.videos {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, fmt.Errorf("video %d: %w", id, repositories.ErrNotFound)
}

func (f *fakeVideoRepo) Update(ctx context.Context, tx *gorm.DB, video *models.ChapterVideo) error {
	for i, v := range f.videos {
		if v.ID == video.ID {
			f.videos[i] = video
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeVideoRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	for i, v := range f.videos {
		if v.ID == id {
			f.videos = append(f.videos[:i], f.videos[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeVideoRepo) GetByChapter(ctx context.Context, tx *gorm.DB, chapterID uint, filters repositories.VideoFilters) ([]*models.ChapterVideo, int64, error) {
	var out []*models.ChapterVideo
	for _, v := range f.videos {
		if v.ChapterID == chapterID {
			out = append(out, v)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeVideoRepo) CountByChapter(ctx context.Context, tx *gorm.DB, chapterID uint) (int64, error) {
	var count int64
	for _, v := range f.videos {
		if v.ChapterID == chapterID {
			count++
		}
	}
	return count, nil
}

// ===== TEST FAKES =====

type fakeTestRepo struct {
	tests  map[uint]*models.TestMeta
	items  *fakeTestItemRepo
	nextID uint
}

func newFakeTestRepo(items *fakeTestItemRepo) *fakeTestRepo {
	return &fakeTestRepo{tests: make(map[uint]*models.TestMeta), items: items, nextID: 1}
}

func (f *fakeTestRepo) Create(ctx context.Context, tx *gorm.DB, test *models.TestMeta) error {
	test.ID = f.nextID
	f.nextID++
	f.tests[test.ID] = test
	return nil
}

func (f *fakeTestRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TestMeta, error) {
	t, ok := f.tests[id]
	if !ok {
		return nil, fmt.Errorf("test %d: %w", id, repositories.ErrNotFound)
	}
	return t, nil
}

func (f *fakeTestRepo) GetByIDWithItems(ctx context.Context, tx *gorm.DB, id uint) (*models.TestMeta, error) {
	t, err := f.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	items, _ := f.items.GetByTest(ctx, tx, id)
	t.Items = t.Items[:0]
	for _, item := range items {
		t.Items = append(t.Items, *item)
	}
	return t, nil
}

func (f *fakeTestRepo) Update(ctx context.Context, tx *gorm.DB, test *models.TestMeta) error {
	if _, ok := f.tests[test.ID]; !ok {
		return repositories.ErrNotFound
	}
	f.tests[test.ID] = test
	return nil
}

func (f *fakeTestRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if _, ok := f.tests[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.tests, id)
	delete(f.items.items, id)
	return nil
}

func (f *fakeTestRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.TestFilters) ([]*models.TestMeta, int64, error) {
	var out []*models.TestMeta
	for _, t := range f.tests {
		if filters.Status != nil && t.Status != *filters.Status {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (f *fakeTestRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.TestStatus) error {
	t, err := f.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}
	t.Status = status
	return nil
}

type fakeTestItemRepo struct {
	items map[uint][]*models.TestItem
}

func newFakeTestItemRepo() *fakeTestItemRepo {
	return &fakeTestItemRepo{items: make(map[uint][]*models.TestItem)}
}

func (f *fakeTestItemRepo) GetByTest(ctx context.Context, tx *gorm.DB, testID uint) ([]*models.TestItem, error) {
	return f.items[testID], nil
}

func (f *fakeTestItemRepo) CountByTest(ctx context.Context, tx *gorm.DB, testID uint) (int64, error) {
	return int64(len(f.items[testID])), nil
}

func (f *fakeTestItemRepo) ReplaceAll(ctx context.Context, tx *gorm.DB, testID uint, items []*models.TestItem) error {
	stored := make([]*models.TestItem, 0, len(items))
	for i, item := range items {
		item.TestID = testID
		item.ItemOrder = i
		stored = append(stored, item)
	}
	f.items[testID] = stored
	return nil
}

func (f *fakeTestItemRepo) DeleteByTest(ctx context.Context, tx *gorm.DB, testID uint) error {
	delete(f.items, testID)
	return nil
}

func containsUint(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
