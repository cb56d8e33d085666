package cache

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// DefaultTTL is the default time-to-live for cached entries
	DefaultTTL = 24 * time.Hour

	// DefaultDir is the default cache directory
	DefaultDir string
)

// Entry represents a cached item
type Entry[T any] struct {
	Value     T
	CreatedAt time.Time
}

// Cache provides a generic file-backed caching mechanism
type Cache[T any] struct {
	dir string
	ttl time.Duration
}

func init() {
	cacheHome, err := os.UserCacheDir()
	if err != nil {
		DefaultDir = filepath.Join(os.TempDir(), "tigo-mcp-server")
	} else {
		DefaultDir = filepath.Join(cacheHome, "tigo-mcp-server")
	}

	// Cache is best-effort; a missing directory only disables reuse
	_ = os.MkdirAll(DefaultDir, 0755)
}

// New returns a cache rooted at DefaultDir under the given namespace.
// DefaultDir and DefaultTTL are read at call time so configuration
// applied before client construction takes effect.
func New[T any](namespace string) *Cache[T] {
	return &Cache[T]{
		dir: filepath.Join(DefaultDir, namespace),
		ttl: DefaultTTL,
	}
}

// Clear removes all cached entries under DefaultDir
func Clear() error {
	return os.RemoveAll(DefaultDir)
}

// normalizeKey converts a cache key into a filesystem-safe format
func normalizeKey(key string) string {
	// Replace any character that's not allowed with underscore
	normalized := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') ||
			(r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') ||
			r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, key)

	// Replace consecutive dots with a single dot
	for strings.Contains(normalized, "..") {
		normalized = strings.ReplaceAll(normalized, "..", ".")
	}

	// Replace consecutive underscores with a single underscore
	for strings.Contains(normalized, "__") {
		normalized = strings.ReplaceAll(normalized, "__", "_")
	}

	return normalized
}

// GetOrSet retrieves a value from cache or stores it if it doesn't exist
func (c *Cache[T]) GetOrSet(key string, fn func() (T, error), forceUpdate bool) (T, error) {
	normalizedKey := normalizeKey(key)
	path := filepath.Join(c.dir, normalizedKey+".gob")

	if !forceUpdate {
		if entry, err := c.loadEntry(path); err == nil {
			if time.Since(entry.CreatedAt) < c.ttl {
				return entry.Value, nil
			}
		}
	}

	value, err := fn()
	if err != nil {
		var zero T
		return zero, err
	}

	entry := Entry[T]{
		Value:     value,
		CreatedAt: time.Now(),
	}

	if err := c.saveEntry(path, entry); err != nil {
		// A failed write must not mask a successfully fetched value
		return value, nil
	}

	return value, nil
}

func (c *Cache[T]) loadEntry(path string) (*Entry[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entry Entry[T]
	if err := gob.NewDecoder(f).Decode(&entry); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (c *Cache[T]) saveEntry(path string, entry Entry[T]) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return gob.NewEncoder(f).Encode(entry)
}

// Clear removes all cached entries
func (c *Cache[T]) Clear() error {
	return os.RemoveAll(c.dir)
}

// SetTTL updates the cache TTL
func (c *Cache[T]) SetTTL(d time.Duration) {
	c.ttl = d
}

// SetDir updates the cache directory
func (c *Cache[T]) SetDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	c.dir = dir
	return nil
}
