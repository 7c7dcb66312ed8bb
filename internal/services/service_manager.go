package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/prepforge/content-admin-service/internal/auth"
	"github.com/prepforge/content-admin-service/internal/events"
	"github.com/prepforge/content-admin-service/internal/llm"
	"github.com/prepforge/content-admin-service/internal/repositories"
	"github.com/prepforge/content-admin-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	EnableDebugLogging bool
	LogLevel           slog.Level

	// Service-specific configurations
	Chapter     ServiceConfig
	Question    ServiceConfig
	Breakdown   ServiceConfig
	Video       ServiceConfig
	TestBuilder ServiceConfig
	Suggestion  ServiceConfig

	DefaultTimeout time.Duration
}

type ServiceConfig struct {
	Enabled      bool
	CacheEnabled bool
	CacheTTL     time.Duration
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	db        *gorm.DB
	repo      repositories.Repository
	logger    *slog.Logger
	validator *validator.Validator
	gate      *auth.Gate
	publisher events.EventPublisher
	provider  llm.SuggestionProvider
	config    ServiceManagerConfig

	// Service instances
	chapterService     ChapterService
	questionService    QuestionService
	breakdownService   BreakdownService
	videoService       VideoService
	testBuilderService TestBuilderService
	suggestionService  SuggestionService
	exportService      ExportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, gate *auth.Gate, publisher events.EventPublisher, provider llm.SuggestionProvider, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		db:        db,
		repo:      repo,
		logger:    logger,
		validator: validator,
		gate:      gate,
		publisher: publisher,
		provider:  provider,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(db *gorm.DB, repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, gate *auth.Gate, publisher events.EventPublisher, provider llm.SuggestionProvider) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		LogLevel:           slog.LevelInfo,

		Chapter: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     10 * time.Minute,
		},
		Question: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     5 * time.Minute,
		},
		Breakdown: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false,
			CacheTTL:     0,
		},
		Video: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false,
			CacheTTL:     0,
		},
		TestBuilder: ServiceConfig{
			Enabled:      true,
			CacheEnabled: true,
			CacheTTL:     5 * time.Minute,
		},
		Suggestion: ServiceConfig{
			Enabled:      true,
			CacheEnabled: false,
			CacheTTL:     0,
		},

		DefaultTimeout: 30 * time.Second,
	}

	return NewServiceManager(db, repo, logger, validator, gate, publisher, provider, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.initializeServices(ctx); err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices(ctx context.Context) error {
	if sm.config.Chapter.Enabled {
		sm.chapterService = NewChapterService(sm.repo, sm.db, sm.logger, sm.validator, sm.gate, sm.publisher)
		sm.logger.Info("Chapter service initialized")
	}

	if sm.config.Question.Enabled {
		sm.questionService = NewQuestionService(sm.repo, sm.db, sm.logger, sm.validator, sm.gate, sm.publisher)
		sm.logger.Info("Question service initialized")
	}

	if sm.config.Breakdown.Enabled {
		sm.breakdownService = NewBreakdownService(sm.repo, sm.db, sm.logger, sm.validator, sm.gate, sm.publisher)
		sm.logger.Info("Breakdown service initialized")
	}

	if sm.config.Video.Enabled {
		sm.videoService = NewVideoService(sm.repo, sm.db, sm.logger, sm.validator, sm.gate, sm.publisher)
		sm.logger.Info("Video service initialized")
	}

	if sm.config.TestBuilder.Enabled {
		sm.testBuilderService = NewTestBuilderService(sm.repo, sm.db, sm.logger, sm.validator, sm.gate, sm.publisher)
		sm.logger.Info("Test builder service initialized")
	}

	if sm.config.Suggestion.Enabled {
		sm.suggestionService = NewSuggestionService(sm.repo, sm.logger, sm.validator, sm.gate, sm.provider)
		sm.logger.Info("Suggestion service initialized", "model_enabled", sm.provider.Enabled())
	}

	sm.exportService = NewExportService(sm.repo, sm.logger, sm.gate)
	sm.logger.Info("Export service initialized")

	return nil
}

// Service getters
func (sm *serviceManager) Chapter() ChapterService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.config.Chapter.Enabled && sm.chapterService != nil {
		return sm.chapterService
	}
	panic("chapter service not enabled or not initialized")
}

func (sm *serviceManager) Question() QuestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.config.Question.Enabled && sm.questionService != nil {
		return sm.questionService
	}
	panic("question service not enabled or not initialized")
}

func (sm *serviceManager) Breakdown() BreakdownService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.config.Breakdown.Enabled && sm.breakdownService != nil {
		return sm.breakdownService
	}
	panic("breakdown service not enabled or not initialized")
}

func (sm *serviceManager) Video() VideoService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.config.Video.Enabled && sm.videoService != nil {
		return sm.videoService
	}
	panic("video service not enabled or not initialized")
}

func (sm *serviceManager) TestBuilder() TestBuilderService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.config.TestBuilder.Enabled && sm.testBuilderService != nil {
		return sm.testBuilderService
	}
	panic("test builder service not enabled or not initialized")
}

func (sm *serviceManager) Suggestion() SuggestionService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.config.Suggestion.Enabled && sm.suggestionService != nil {
		return sm.suggestionService
	}
	panic("suggestion service not enabled or not initialized")
}

func (sm *serviceManager) Export() ExportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	if sm.exportService != nil {
		return sm.exportService
	}
	panic("export service not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.publisher != nil {
		if err := sm.publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if err := sm.repo.Close(); err != nil {
		sm.logger.Error("Failed to close repository", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
