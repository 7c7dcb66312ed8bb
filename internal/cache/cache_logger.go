package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateChapterCache invalidates a chapter row plus every listing and
// stat derived from it. Counter bumps go through here too.
func InvalidateChapterCache(ctx context.Context, cm *CacheManager, chapterID uint) {
	SafeDelete(ctx, cm.Chapter, fmt.Sprintf("id:%d", chapterID))
	SafeInvalidatePattern(ctx, cm.Chapter, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("chapter:%d:*", chapterID))
}

// InvalidateQuestionCache invalidates all question-related caches. The
// chapter listing caches are keyed per chapter and bank, so a write to
// one question only evicts its own chapter's slices.
func InvalidateQuestionCache(ctx context.Context, cm *CacheManager, questionID, chapterID uint) {
	SafeDelete(ctx, cm.Question, fmt.Sprintf("id:%d", questionID))
	SafeInvalidatePattern(ctx, cm.Question, fmt.Sprintf("chapter:%d:*", chapterID))
	SafeInvalidatePattern(ctx, cm.Question, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("question:%d:*", questionID))
}

// InvalidateTestCache invalidates a mock test's meta, items and listings.
func InvalidateTestCache(ctx context.Context, cm *CacheManager, testID uint) {
	SafeDelete(ctx, cm.Test,
		fmt.Sprintf("id:%d", testID),
		fmt.Sprintf("items:%d", testID))
	SafeInvalidatePattern(ctx, cm.Test, "list:*")
	SafeInvalidatePattern(ctx, cm.Stats, fmt.Sprintf("test:%d:*", testID))
}
