package repositories

import "errors"

var (
	// ErrNotFound is wrapped by every repository when a row does not
	// exist, whatever the entity.
	ErrNotFound = errors.New("record not found")

	// ErrNoChapterSelected guards chapter-scoped operations called
	// without a chapter id.
	ErrNoChapterSelected = errors.New("no chapter selected")
)

// IsNotFound reports whether err is (or wraps) ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
