package services

import (
	"errors"
	"fmt"
)

// Sentinel errors the handlers map onto HTTP statuses.
var (
	ErrChapterNotFound   = errors.New("chapter not found")
	ErrQuestionNotFound  = errors.New("question not found")
	ErrBreakdownNotFound = errors.New("breakdown not found")
	ErrSlideNotFound     = errors.New("slide not found")
	ErrVideoNotFound     = errors.New("video not found")
	ErrTestNotFound      = errors.New("test not found")
	ErrTestItemNotFound  = errors.New("test item not found")

	// ErrItemSourceNotFound marks a test item whose source question was
	// deleted after the item was added.
	ErrItemSourceNotFound = errors.New("item source question not found")

	ErrNoChapterSelected = errors.New("no chapter selected")
	ErrChapterNameTaken  = errors.New("chapter name already in use")
	ErrValidationFailed  = errors.New("validation failed")
	ErrForbidden         = errors.New("operation not permitted")
	ErrTestNotDraft      = errors.New("test is not in draft")
)

// PermissionError carries the who/what/why of a denied operation.
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("permission denied: user %s cannot %s %s %d: %s",
		e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

// NewPermissionError creates a permission error
func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a permission denial.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe) || errors.Is(err, ErrForbidden)
}
