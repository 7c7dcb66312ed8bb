package repositories

import "context"

// Repository aggregates every entity repository behind one handle.
type Repository interface {
	// Chapter domain
	Chapter() ChapterRepository

	// Question banks (diagnostic, practice, test)
	Question() QuestionRepository

	// Breakdown domain
	Breakdown() BreakdownRepository
	Slide() SlideRepository

	// Video domain
	Video() VideoRepository

	// Mock test domain
	Test() TestRepository
	TestItem() TestItemRepository

	// User domain (read-only for the admin panel)
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
