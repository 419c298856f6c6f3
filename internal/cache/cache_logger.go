package cache

import (
	"context"
	"log/slog"
)

// SafeInvalidatePattern invalidates a pattern, logging instead of failing.
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete deletes keys, logging instead of failing.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// ResetUserCaches drops every cached profile and progress list.
func ResetUserCaches(ctx context.Context, cm *CacheManager) {
	SafeInvalidatePattern(ctx, cm.User, "*")
	SafeInvalidatePattern(ctx, cm.Progress, "*")
}

// InvalidateUserCache drops the cached profile and progress of one user.
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID string) {
	SafeDelete(ctx, cm.User, UserProfileKey(userID))
	SafeDelete(ctx, cm.Progress, UserProgressKey(userID))
}
