package models

import (
	"reflect"
	"testing"
)

func TestEnsureSkillTags(t *testing.T) {
	t.Run("ArrayWins", func(t *testing.T) {
		got := EnsureSkillTags([]string{"kinematics", "vectors"}, "legacy-tag")
		if !reflect.DeepEqual(got.SkillTags, []string{"kinematics", "vectors"}) {
			t.Errorf("expected array to win, got %v", got.SkillTags)
		}
		if got.SkillTag != "kinematics" {
			t.Errorf("expected scalar mirror 'kinematics', got %q", got.SkillTag)
		}
	})

	t.Run("ScalarPromoted", func(t *testing.T) {
		got := EnsureSkillTags(nil, "thermodynamics")
		if !reflect.DeepEqual(got.SkillTags, []string{"thermodynamics"}) {
			t.Errorf("expected scalar promotion, got %v", got.SkillTags)
		}
		if got.SkillTag != "thermodynamics" {
			t.Errorf("expected scalar 'thermodynamics', got %q", got.SkillTag)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		got := EnsureSkillTags(nil, "")
		if len(got.SkillTags) != 0 {
			t.Errorf("expected empty tags, got %v", got.SkillTags)
		}
		if got.SkillTag != "" {
			t.Errorf("expected empty scalar, got %q", got.SkillTag)
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		cases := []struct {
			tags   []string
			scalar string
		}{
			{nil, ""},
			{nil, "optics"},
			{[]string{"optics"}, ""},
			{[]string{"optics", "waves"}, "mechanics"},
		}
		for _, c := range cases {
			once := EnsureSkillTags(c.tags, c.scalar)
			twice := EnsureSkillTags(once.SkillTags, once.SkillTag)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("not idempotent for %v/%q: %v vs %v", c.tags, c.scalar, once, twice)
			}
		}
	})
}

func TestDisplaySkillTags(t *testing.T) {
	if got := DisplaySkillTags(nil, "algebra"); !reflect.DeepEqual(got, []string{"algebra"}) {
		t.Errorf("expected [algebra], got %v", got)
	}
	if got := DisplaySkillTags([]string{"calculus"}, "algebra"); !reflect.DeepEqual(got, []string{"calculus"}) {
		t.Errorf("expected [calculus], got %v", got)
	}
}
