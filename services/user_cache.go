package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"subjectswap_server/logger"
	"subjectswap_server/models"
)

type cachedUser struct {
	profile  models.UserProfile
	cachedAt time.Time
}

// CachedUserDirectory memoizes single-user lookups in front of another
// directory. Socket joins look the peer up on every event, so this keeps the
// hot path off the store.
type CachedUserDirectory struct {
	next UserDirectory
	ttl  time.Duration
	now  func() time.Time

	mu      sync.RWMutex
	entries map[string]cachedUser
}

// NewCachedUserDirectory wraps next with a TTL cache.
func NewCachedUserDirectory(next UserDirectory, ttl time.Duration) *CachedUserDirectory {
	return &CachedUserDirectory{
		next:    next,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]cachedUser),
	}
}

func (c *CachedUserDirectory) FindActiveByID(ctx context.Context, id string) (*models.UserProfile, error) {
	return c.find(ctx, id, c.ttl)
}

// find serves id from the cache when the entry is younger than maxAge.
func (c *CachedUserDirectory) find(ctx context.Context, id string, maxAge time.Duration) (*models.UserProfile, error) {
	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()
	if ok && c.now().Sub(entry.cachedAt) < maxAge {
		out := entry.profile.Clone()
		return &out, nil
	}

	profile, err := c.next.FindActiveByID(ctx, id)
	if errors.Is(err, models.ErrUserNotFound) {
		c.mu.Lock()
		delete(c.entries, id)
		c.mu.Unlock()
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[id] = cachedUser{profile: profile.Clone(), cachedAt: c.now()}
	c.mu.Unlock()
	return profile, nil
}

func (c *CachedUserDirectory) FindManyActiveByIDs(ctx context.Context, ids []string) ([]models.UserProfile, error) {
	return c.next.FindManyActiveByIDs(ctx, ids)
}

func (c *CachedUserDirectory) ListActive(ctx context.Context) ([]models.UserProfile, error) {
	return c.next.ListActive(ctx)
}

// Save writes through and drops the cached copy.
func (c *CachedUserDirectory) Save(ctx context.Context, profile models.UserProfile) error {
	if err := c.next.Save(ctx, profile); err != nil {
		return err
	}
	c.mu.Lock()
	delete(c.entries, profile.ID)
	c.mu.Unlock()
	return nil
}

// WithMaxAge returns a view of the cache whose single-user lookups accept
// only entries younger than maxAge. Peer checks on the socket use it so a
// user deactivated elsewhere stops being reachable quickly.
func (c *CachedUserDirectory) WithMaxAge(maxAge time.Duration) UserDirectory {
	return &boundedUserDirectory{CachedUserDirectory: c, maxAge: maxAge}
}

type boundedUserDirectory struct {
	*CachedUserDirectory
	maxAge time.Duration
}

func (b *boundedUserDirectory) FindActiveByID(ctx context.Context, id string) (*models.UserProfile, error) {
	return b.find(ctx, id, b.maxAge)
}

// EvictExpired drops stale entries and returns how many were removed.
func (c *CachedUserDirectory) EvictExpired() int {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for id, entry := range c.entries {
		if now.Sub(entry.cachedAt) >= c.ttl {
			delete(c.entries, id)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of cached users.
func (c *CachedUserDirectory) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// StartCacheEviction schedules EvictExpired on a cron spec and starts the scheduler.
func StartCacheEviction(spec string, cache *CachedUserDirectory, log *logger.Logger) (*cron.Cron, error) {
	log = logger.OrGlobal(log)
	scheduler := cron.New()

	_, err := scheduler.AddFunc(spec, func() {
		evicted := cache.EvictExpired()
		log.Debug("user cache evicted", zap.Int("evicted", evicted), zap.Int("remaining", cache.Len()))
	})
	if err != nil {
		return nil, fmt.Errorf("invalid user cache eviction schedule %q: %w", spec, err)
	}

	scheduler.Start()
	log.Info("user cache eviction scheduled", zap.String("spec", spec))
	return scheduler, nil
}
