package keywords

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/jmyang-dev/ainews-harvester/internal/logger"
)

var cacheBucket = []byte("keywords")

// cachedEntry is the persisted cache record.
type cachedEntry struct {
	Keywords  []string  `json:"keywords"`
	FetchedAt time.Time `json:"fetched_at"`
}

// CachedSource wraps a Source with a bbolt-backed cache so repeated runs do
// not hit the live keyword sheet more than once per TTL window. The cache
// survives process restarts; usage updates pass straight through.
type CachedSource struct {
	inner Source
	db    *bolt.DB
	ttl   time.Duration
	log   logger.Logger
	now   func() time.Time
}

// NewCachedSource opens (or creates) the cache database at path.
func NewCachedSource(inner Source, path string, ttl time.Duration, log logger.Logger) (*CachedSource, error) {
	if inner == nil {
		return nil, fmt.Errorf("inner keyword source is nil")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open keyword cache %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init keyword cache bucket: %w", err)
	}

	return &CachedSource{inner: inner, db: db, ttl: ttl, log: log, now: time.Now}, nil
}

// Close releases the cache database.
func (c *CachedSource) Close() error { return c.db.Close() }

// SearchKeywords serves from the cache when fresh; otherwise it refreshes
// from the inner source and stores the result. A stale cache entry is still
// returned when the inner source fails.
func (c *CachedSource) SearchKeywords(ctx context.Context, minPriority int) ([]string, error) {
	key := cacheKey(minPriority)

	if entry, ok := c.load(key); ok && c.now().Sub(entry.FetchedAt) < c.ttl {
		return entry.Keywords, nil
	}

	kws, err := c.inner.SearchKeywords(ctx, minPriority)
	if err != nil {
		if entry, ok := c.load(key); ok {
			c.log.WarnObj("keyword refresh failed, serving stale cache", "keyword_cache_stale", map[string]any{
				"age":   c.now().Sub(entry.FetchedAt).String(),
				"error": err.Error(),
			})
			return entry.Keywords, nil
		}
		return nil, err
	}

	c.store(key, cachedEntry{Keywords: kws, FetchedAt: c.now()})
	return kws, nil
}

// UpdateUsage forwards to the inner source.
func (c *CachedSource) UpdateUsage(ctx context.Context, keyword string, matchedArticles int) error {
	return c.inner.UpdateUsage(ctx, keyword, matchedArticles)
}

// Refresh drops the cached entry for the given priority so the next lookup
// goes to the live source.
func (c *CachedSource) Refresh(minPriority int) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Delete(cacheKey(minPriority))
	})
}

func (c *CachedSource) load(key []byte) (cachedEntry, bool) {
	var entry cachedEntry
	found := false
	_ = c.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(cacheBucket).Get(key)
		if raw == nil {
			return nil
		}
		if err := json.Unmarshal(raw, &entry); err == nil {
			found = true
		}
		return nil
	})
	return entry, found
}

func (c *CachedSource) store(key []byte, entry cachedEntry) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := c.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(cacheBucket).Put(key, raw)
	}); err != nil {
		c.log.WarnObj("keyword cache write failed", "keyword_cache_error", map[string]any{
			"error": err.Error(),
		})
	}
}

func cacheKey(minPriority int) []byte {
	return fmt.Appendf(nil, "active:p%d", minPriority)
}
