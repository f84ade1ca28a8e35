package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/raphaelgruber/sayar/internal/models"
	"github.com/raphaelgruber/sayar/internal/store"
)

// folderKeyPrefix namespaces persisted folder sets in the key-value store.
const folderKeyPrefix = "drive.folders."

// DefaultCacheCapacity is the number of users whose folders are kept when
// no capacity is configured.
const DefaultCacheCapacity = 8

// KV is the key-value store backing the cache.
type KV interface {
	GetValue(ctx context.Context, key string) ([]byte, error)
	SetValue(ctx context.Context, key string, value []byte) error
	DeleteValue(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// FolderCache maps user email to FolderSet. Entries live in a bounded LRU
// and in the key-value store; an entry evicted from the LRU is also removed
// from the store, so at most capacity users are cached in total.
type FolderCache struct {
	lru    *lru.Cache[string, models.FolderSet]
	kv     KV
	logger *slog.Logger
}

// NewFolderCache creates a cache holding up to capacity users.
func NewFolderCache(capacity int, kv KV, logger *slog.Logger) (*FolderCache, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := &FolderCache{kv: kv, logger: logger}
	l, err := lru.NewWithEvict(capacity, c.onEvict)
	if err != nil {
		return nil, fmt.Errorf("create folder cache: %w", err)
	}
	c.lru = l
	return c, nil
}

func folderKey(email string) string {
	return folderKeyPrefix + email
}

func (c *FolderCache) onEvict(email string, _ models.FolderSet) {
	if err := c.kv.DeleteValue(context.Background(), folderKey(email)); err != nil {
		c.logger.Warn("failed to drop evicted folder set", "user", email, "error", err)
		return
	}
	c.logger.Debug("folder set evicted", "user", email)
}

// Get returns the cached folder set for email, loading it from the
// key-value store on a memory miss.
func (c *FolderCache) Get(ctx context.Context, email string) (models.FolderSet, bool, error) {
	if set, ok := c.lru.Get(email); ok {
		return set, true, nil
	}

	data, err := c.kv.GetValue(ctx, folderKey(email))
	if errors.Is(err, store.ErrNotFound) {
		return models.FolderSet{}, false, nil
	}
	if err != nil {
		return models.FolderSet{}, false, fmt.Errorf("load folder set: %w", err)
	}

	var set models.FolderSet
	if err := json.Unmarshal(data, &set); err != nil || set.UserEmail != email {
		c.logger.Warn("discarding unreadable folder set", "user", email, "error", err)
		_ = c.kv.DeleteValue(ctx, folderKey(email))
		return models.FolderSet{}, false, nil
	}
	c.lru.Add(email, set)
	return set, true, nil
}

// Put stores set under its user email.
func (c *FolderCache) Put(ctx context.Context, set models.FolderSet) error {
	if set.UserEmail == "" {
		return fmt.Errorf("folder set has no user")
	}
	data, err := json.Marshal(set)
	if err != nil {
		return fmt.Errorf("encode folder set: %w", err)
	}
	if err := c.kv.SetValue(ctx, folderKey(set.UserEmail), data); err != nil {
		return fmt.Errorf("save folder set: %w", err)
	}
	c.lru.Add(set.UserEmail, set)
	return nil
}

// Invalidate drops the entry for one user.
func (c *FolderCache) Invalidate(ctx context.Context, email string) error {
	c.lru.Remove(email)
	if err := c.kv.DeleteValue(ctx, folderKey(email)); err != nil {
		return fmt.Errorf("drop folder set: %w", err)
	}
	return nil
}

// InvalidateAll drops every entry.
func (c *FolderCache) InvalidateAll(ctx context.Context) error {
	c.lru.Purge()
	if _, err := c.kv.DeletePrefix(ctx, folderKeyPrefix); err != nil {
		return fmt.Errorf("drop folder sets: %w", err)
	}
	return nil
}

// Users returns the emails currently held in memory, least recently used first.
func (c *FolderCache) Users() []string {
	return c.lru.Keys()
}
