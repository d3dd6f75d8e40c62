package cache

import (
	"fmt"
	"time"
)

const (
	// ReviewPagePrefix namespaces the cached review listing pages.
	ReviewPagePrefix = "reviews:page"

	// UserKeyPrefix namespaces cached single-user lookups.
	UserKeyPrefix = "user:%d"
)

const (
	// ReviewPageTTL bounds staleness of a cached listing page. Writes also
	// invalidate pages explicitly, so the TTL is only a backstop.
	ReviewPageTTL = 30 * time.Second

	UserTTL = 5 * time.Minute
)

// ReviewPageKey derives the cache key for one review listing page.
func ReviewPageKey(page, limit int) string {
	return fmt.Sprintf("%s:%d:limit:%d", ReviewPagePrefix, page, limit)
}

// UserKey derives the cache key for a single user lookup.
func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}
