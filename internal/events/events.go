package events

import (
	"context"
	"time"
)

// Event type constants. One topic carries every content-plane change;
// consumers filter on Type.
const (
	EventChapterCreated = "content.chapter.created"
	EventChapterUpdated = "content.chapter.updated"
	EventChapterDeleted = "content.chapter.deleted"

	EventQuestionCreated = "content.question.created"
	EventQuestionUpdated = "content.question.updated"
	EventQuestionDeleted = "content.question.deleted"

	EventBreakdownCreated = "content.breakdown.created"
	EventBreakdownUpdated = "content.breakdown.updated"
	EventBreakdownDeleted = "content.breakdown.deleted"

	EventVideoCreated = "content.video.created"
	EventVideoDeleted = "content.video.deleted"

	EventTestCreated   = "content.test.created"
	EventTestSaved     = "content.test.saved"
	EventTestPublished = "content.test.published"
	EventTestArchived  = "content.test.archived"
	EventTestDeleted   = "content.test.deleted"
)

// ContentEvent is the envelope every published change rides in.
type ContentEvent struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Source    string      `json:"source"`
	Version   string      `json:"version"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// EventPublisher publishes content change events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, event ContentEvent) error
	Close() error
}
