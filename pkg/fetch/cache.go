package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/pulith/pkg/alg/lru"
	"github.com/Sumatoshi-tech/pulith/pkg/persist"
	"github.com/Sumatoshi-tech/pulith/pkg/units"
)

// cacheMetadataSchema validates .cache/metadata.json before it is trusted
// on load: a corrupt or foreign-written index must fail fast rather than
// silently poisoning the in-memory LRU.
const cacheMetadataSchema = `{
	"type": "object",
	"additionalProperties": {
		"type": "object",
		"required": ["url", "cached_at", "size"],
		"properties": {
			"url": {"type": "string"},
			"etag": {"type": "string"},
			"last_modified": {"type": "string"},
			"cached_at": {"type": "integer"},
			"size": {"type": "integer", "minimum": 0},
			"checksum": {"type": "string"},
			"max_age": {"type": "integer"},
			"has_max_age": {"type": "boolean"},
			"no_cache": {"type": "boolean"},
			"access_count": {"type": "integer", "minimum": 0},
			"last_accessed": {"type": "integer"}
		}
	}
}`

// CacheEntry is the metadata kept for one cached download, grounded on
// pulith-fetch/src/effects/cache.rs's CacheEntry.
type CacheEntry struct {
	URL            string `json:"url"`
	ETag           string `json:"etag,omitempty"`
	LastModified   string `json:"last_modified,omitempty"`
	CachedAtUnix   int64  `json:"cached_at"`
	Size           int64  `json:"size"`
	Checksum       string `json:"checksum,omitempty"`
	MaxAgeSeconds  int64  `json:"max_age,omitempty"`
	HasMaxAge      bool   `json:"has_max_age,omitempty"`
	NoCache        bool   `json:"no_cache,omitempty"`
	AccessCount    int64  `json:"access_count"`
	LastAccessUnix int64  `json:"last_accessed"`
}

// IsExpired reports whether the entry is stale, checking the server-supplied
// max-age before falling back to the cache's own configured max-age.
func (e CacheEntry) IsExpired(configMaxAge time.Duration, hasConfigMaxAge bool) bool {
	now := time.Now().Unix()

	if e.HasMaxAge && e.CachedAtUnix+e.MaxAgeSeconds < now {
		return true
	}

	if hasConfigMaxAge && e.CachedAtUnix+int64(configMaxAge.Seconds()) < now {
		return true
	}

	return false
}

// ShouldRevalidate reports whether a conditional GET is worth attempting
// before serving the cached copy outright.
func (e CacheEntry) ShouldRevalidate() bool {
	return e.NoCache || e.ETag != "" || e.LastModified != ""
}

// Validate reports whether the cached entry still matches server metadata
// (spec.md §4.K): ETag equality first, then Last-Modified, matching RFC 7234
// revalidation order.
func (e CacheEntry) Validate(serverETag, serverLastModified string) bool {
	if e.ETag != "" && serverETag != "" {
		return e.ETag == serverETag
	}

	if e.LastModified != "" && serverLastModified != "" {
		return e.LastModified == serverLastModified
	}

	return false
}

// CacheConfig configures a disk-backed conditional download Cache.
type CacheConfig struct {
	Dir          string
	MaxSizeBytes int64
	MaxAge       time.Duration
	HasMaxAge    bool
	PersistMeta  bool
}

// Cache is a disk-backed conditional cache keyed by URL, reusing
// pkg/alg/lru for in-memory LRU/size-based eviction and pkg/persist for
// durable metadata across process restarts (spec.md §4.K).
type Cache struct {
	config    CacheConfig
	index     *lru.Cache[string, CacheEntry]
	persister *persist.Persister[map[string]CacheEntry]
	mu        sync.Mutex
	knownURLs map[string]struct{}
}

// NewCache opens (or creates) a conditional cache rooted at config.Dir,
// loading any previously persisted metadata.
func NewCache(config CacheConfig) (*Cache, error) {
	if err := os.MkdirAll(config.Dir, 0o755); err != nil {
		return nil, err
	}

	maxSize := config.MaxSizeBytes
	if maxSize <= 0 {
		maxSize = units.GiB // matches the original's CacheConfig::default
	}

	index := lru.New(
		lru.WithMaxBytes[string, CacheEntry](maxSize, func(e CacheEntry) int64 { return e.Size }),
	)

	c := &Cache{
		config:    config,
		index:     index,
		persister: persist.NewPersister[map[string]CacheEntry](
			"metadata", persist.NewSchemaCodec(persist.NewJSONCodec(), cacheMetadataSchema),
		),
		knownURLs: make(map[string]struct{}),
	}

	if config.PersistMeta {
		if err := c.loadMetadata(); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}

	return c, nil
}

// Get returns the cache entry for url, if present and unexpired.
func (c *Cache) Get(url string) (CacheEntry, bool) {
	entry, ok := c.index.Get(url)
	if !ok {
		return CacheEntry{}, false
	}

	if entry.IsExpired(c.config.MaxAge, c.config.HasMaxAge) {
		return CacheEntry{}, false
	}

	entry.AccessCount++
	entry.LastAccessUnix = time.Now().Unix()
	c.index.Put(url, entry)

	return entry, true
}

// Put stores a downloaded file's metadata and content in the cache,
// evicting older entries (oldest-accessed first, via the LRU index) until
// the new entry fits within MaxSizeBytes.
func (c *Cache) Put(url string, content []byte, etag, lastModified string, maxAgeSeconds int64, hasMaxAge, noCache bool) error {
	sum := sha256.Sum256(content)
	now := time.Now().Unix()

	entry := CacheEntry{
		URL:            url,
		ETag:           etag,
		LastModified:   lastModified,
		CachedAtUnix:   now,
		Size:           int64(len(content)),
		Checksum:       hex.EncodeToString(sum[:]),
		MaxAgeSeconds:  maxAgeSeconds,
		HasMaxAge:      hasMaxAge,
		NoCache:        noCache,
		AccessCount:    1,
		LastAccessUnix: now,
	}

	if err := os.WriteFile(c.cacheFilePath(url), content, 0o644); err != nil {
		return err
	}

	c.index.Put(url, entry)
	c.trackURL(url)

	if c.config.PersistMeta {
		return c.saveMetadata()
	}

	return nil
}

// Validate compares cached metadata against freshly observed server
// metadata, reporting whether the cached copy can still be served.
func (c *Cache) Validate(url, serverETag, serverLastModified string) bool {
	entry, ok := c.index.Get(url)
	if !ok {
		return false
	}

	return entry.Validate(serverETag, serverLastModified)
}

// Clear removes every cached file and metadata entry.
func (c *Cache) Clear() error {
	c.index.Clear()

	c.mu.Lock()
	c.knownURLs = make(map[string]struct{})
	c.mu.Unlock()

	entries, err := os.ReadDir(c.config.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return err
	}

	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".cache" {
			_ = os.Remove(filepath.Join(c.config.Dir, e.Name()))
		}
	}

	return c.saveMetadata()
}

// Stats reports current cache occupancy and hit-rate metrics.
func (c *Cache) Stats() lru.Stats {
	return c.index.Stats()
}

func (c *Cache) cacheFilePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(c.config.Dir, hex.EncodeToString(sum[:])+".cache")
}

func (c *Cache) loadMetadata() error {
	return c.persister.Load(c.config.Dir, func(loaded *map[string]CacheEntry) {
		for url, entry := range *loaded {
			c.index.Put(url, entry)
			c.trackURL(url)
		}
	})
}

func (c *Cache) saveMetadata() error {
	snapshot := make(map[string]CacheEntry)

	for _, url := range c.urls() {
		if entry, ok := c.index.Get(url); ok {
			snapshot[url] = entry
		}
	}

	return c.persister.Save(c.config.Dir, func() *map[string]CacheEntry { return &snapshot })
}

func (c *Cache) trackURL(url string) {
	c.mu.Lock()
	c.knownURLs[url] = struct{}{}
	c.mu.Unlock()
}

// urls is a best-effort key enumeration used only for metadata persistence;
// lru.Cache does not expose key iteration directly, so Cache tracks the key
// set itself alongside Put/Clear.
func (c *Cache) urls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, 0, len(c.knownURLs))
	for url := range c.knownURLs {
		out = append(out, url)
	}

	return out
}
