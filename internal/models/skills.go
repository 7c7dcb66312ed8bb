package models

// SkillTagPair is the canonical form of an entity's tagging: the
// authoritative tag list plus the legacy scalar mirror.
type SkillTagPair struct {
	SkillTags []string
	SkillTag  string
}

// EnsureSkillTags collapses the legacy scalar tag and the canonical tag
// array into one consistent pair: the array wins when non-empty, the
// scalar is promoted to a one-element array otherwise, and the scalar
// mirror is always the first array element (or empty). Pure and
// idempotent; every write path for tagged entities goes through it so
// scalar-only legacy data and array-based data interoperate without a
// migration.
func EnsureSkillTags(skillTags []string, skillTag string) SkillTagPair {
	tags := skillTags
	if len(tags) == 0 && skillTag != "" {
		tags = []string{skillTag}
	}
	if tags == nil {
		tags = []string{}
	}
	primary := ""
	if len(tags) > 0 {
		primary = tags[0]
	}
	return SkillTagPair{SkillTags: tags, SkillTag: primary}
}

// DisplaySkillTags returns the tags to show for a document, falling back
// to the legacy scalar.
func DisplaySkillTags(skillTags []string, skillTag string) []string {
	return EnsureSkillTags(skillTags, skillTag).SkillTags
}
