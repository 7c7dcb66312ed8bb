package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/events"
	"github.com/prepforge/content-admin-service/internal/validator"
)

func newChapterFixture() (ChapterService, *fakeChapterRepo, *events.MockEventPublisher) {
	logger := newTestLogger()
	chapters := newFakeChapterRepo()
	repo := &stubRepository{
		chapter:   chapters,
		question:  newFakeQuestionRepo(),
		breakdown: newFakeBreakdownRepo(),
		video:     &fakeVideoRepo{},
	}
	gate := auth.NewGate([]string{primaryAdmin}, []string{secondaryAdmin})
	publisher := events.NewMockEventPublisher(logger)
	svc := NewChapterService(repo, nil, logger, validator.New(), gate, publisher)
	return svc, chapters, publisher
}

func TestChapterService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("CreatesWithGeneratedSlug", func(t *testing.T) {
		svc, _, publisher := newChapterFixture()

		resp, err := svc.Create(ctx, &CreateChapterRequest{
			Name:      "Motion in a Plane",
			Subject:   "Physics",
			SkillTags: []string{"kinematics", " vectors ", "kinematics"},
		}, secondaryAdmin)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if resp.Slug != "motion-in-a-plane" {
			t.Errorf("expected generated slug, got %q", resp.Slug)
		}
		if len(resp.SkillTags) != 2 {
			t.Errorf("expected deduplicated trimmed tags, got %v", resp.SkillTags)
		}
		if !resp.CanEdit {
			t.Error("secondary admin should be able to edit")
		}
		if resp.CanDelete {
			t.Error("secondary admin should not be able to delete")
		}

		published := publisher.GetPublishedEvents()
		if len(published) != 1 || published[0].Type != events.EventChapterCreated {
			t.Errorf("expected %s event, got %+v", events.EventChapterCreated, published)
		}
	})

	t.Run("RejectsDuplicateName", func(t *testing.T) {
		svc, _, _ := newChapterFixture()

		if _, err := svc.Create(ctx, &CreateChapterRequest{Name: "Optics"}, primaryAdmin); err != nil {
			t.Fatalf("first create failed: %v", err)
		}
		_, err := svc.Create(ctx, &CreateChapterRequest{Name: "Optics"}, primaryAdmin)
		if !errors.Is(err, ErrChapterNameTaken) {
			t.Errorf("expected ErrChapterNameTaken, got %v", err)
		}
	})

	t.Run("RejectsOutsider", func(t *testing.T) {
		svc, _, _ := newChapterFixture()

		_, err := svc.Create(ctx, &CreateChapterRequest{Name: "Waves"}, outsider)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}

func TestChapterService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("SecondaryAdminCannotDelete", func(t *testing.T) {
		svc, _, _ := newChapterFixture()
		resp, err := svc.Create(ctx, &CreateChapterRequest{Name: "Optics"}, primaryAdmin)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		err = svc.Delete(ctx, resp.ID, secondaryAdmin)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("PrimaryDeletes", func(t *testing.T) {
		svc, chapters, _ := newChapterFixture()
		resp, err := svc.Create(ctx, &CreateChapterRequest{Name: "Optics"}, primaryAdmin)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}

		if err := svc.Delete(ctx, resp.ID, primaryAdmin); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := chapters.GetByID(ctx, nil, resp.ID); err == nil {
			t.Error("expected chapter removed")
		}
	})

	t.Run("UnknownChapter", func(t *testing.T) {
		svc, _, _ := newChapterFixture()

		err := svc.Delete(ctx, 404, primaryAdmin)
		if !errors.Is(err, ErrChapterNotFound) {
			t.Errorf("expected ErrChapterNotFound, got %v", err)
		}
	})
}

func TestChapterService_UpdateSkillTags(t *testing.T) {
	ctx := context.Background()
	svc, chapters, _ := newChapterFixture()
	resp, err := svc.Create(ctx, &CreateChapterRequest{Name: "Thermodynamics"}, primaryAdmin)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	tags, err := svc.UpdateSkillTags(ctx, resp.ID, []string{"entropy", "heat", "entropy", ""}, secondaryAdmin)
	if err != nil {
		t.Fatalf("UpdateSkillTags failed: %v", err)
	}
	if len(tags) != 2 {
		t.Errorf("expected 2 tags after normalization, got %v", tags)
	}

	stored, _ := chapters.GetSkillTags(ctx, nil, resp.ID)
	if len(stored) != 2 {
		t.Errorf("expected vocabulary persisted, got %v", stored)
	}
}

func TestChapterService_ListAllSkillTags(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newChapterFixture()

	if _, err := svc.Create(ctx, &CreateChapterRequest{Name: "Kinematics", SkillTags: []string{"vectors", "graphs"}}, primaryAdmin); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Create(ctx, &CreateChapterRequest{Name: "Dynamics", SkillTags: []string{"vectors", "friction"}}, primaryAdmin); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("ReturnsSortedUnion", func(t *testing.T) {
		tags, err := svc.ListAllSkillTags(ctx, secondaryAdmin)
		if err != nil {
			t.Fatalf("ListAllSkillTags failed: %v", err)
		}
		want := []string{"friction", "graphs", "vectors"}
		if len(tags) != len(want) {
			t.Fatalf("expected %v, got %v", want, tags)
		}
		for i := range want {
			if tags[i] != want[i] {
				t.Errorf("expected %v, got %v", want, tags)
				break
			}
		}
	})

	t.Run("RejectsOutsider", func(t *testing.T) {
		_, err := svc.ListAllSkillTags(ctx, outsider)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})
}
