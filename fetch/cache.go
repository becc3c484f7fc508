package fetch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Cache stores raw response bodies on disk, one file per URL. File names
// combine a readable fragment of the URL's last path segment with a hash
// prefix so entries stay distinguishable by eye and unique by URL.
type Cache struct {
	dir string
}

// NewCache creates a response cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Key derives the cache file name for a URL: the first 25 characters of the
// last path segment (minus extension), an underscore, and the first 16 hex
// characters of the URL's SHA-256.
func (c *Cache) Key(url string) string {
	segments := strings.Split(url, "/")
	name := segments[len(segments)-1]
	name = strings.SplitN(name, ".", 2)[0]
	if len(name) > 25 {
		name = name[:25]
	}

	sum := sha256.Sum256([]byte(url))
	hash := hex.EncodeToString(sum[:])[:16]

	return fmt.Sprintf("%s_%s.html", name, hash)
}

// Get returns the cached body for a URL, with ok reporting whether an entry
// exists.
func (c *Cache) Get(url string) (body []byte, ok bool, err error) {
	path := filepath.Join(c.dir, c.Key(url))
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return data, true, nil
}

// Put stores a response body for a URL.
func (c *Cache) Put(url string, body []byte) error {
	path := filepath.Join(c.dir, c.Key(url))
	if err := os.WriteFile(path, body, 0o644); err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}
