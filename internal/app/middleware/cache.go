package middleware

import (
	"bytes"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

type cacheEntry struct {
	Content     []byte
	ContentType string
	Expiration  time.Time
}

// memoryCache holds cached GET responses keyed by path and query
type memoryCache struct {
	sync.RWMutex
	items map[string]cacheEntry
}

var (
	cache = &memoryCache{
		items: make(map[string]cacheEntry),
	}
	cleanerOnce sync.Once
)

// CacheConfig configures the response cache
type CacheConfig struct {
	Expiration time.Duration
}

// DefaultCacheConfig caches GET responses for five minutes
var DefaultCacheConfig = CacheConfig{
	Expiration: 5 * time.Minute,
}

// cacheKey keys on the path followed by the sorted query, so entries
// can be purged by path prefix
func cacheKey(c *gin.Context) string {
	query := c.Request.URL.Query()
	keys := make([]string, 0, len(query))
	for k := range query {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(c.Request.URL.Path)
	b.WriteByte('?')
	for _, k := range keys {
		values := query[k]
		sort.Strings(values)
		for _, v := range values {
			b.WriteString(k + "=" + v + "&")
		}
	}
	return b.String()
}

// Cache serves repeated GET requests from memory. Only 200 responses are stored.
func Cache(config ...CacheConfig) gin.HandlerFunc {
	cfg := DefaultCacheConfig
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Expiration <= 0 {
		cfg.Expiration = DefaultCacheConfig.Expiration
	}

	cleanerOnce.Do(func() { go cleanLoop(5 * time.Minute) })

	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := cacheKey(c)

		cache.RLock()
		entry, found := cache.items[key]
		cache.RUnlock()

		if found && entry.Expiration.After(time.Now()) {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, entry.ContentType, entry.Content)
			c.Abort()
			return
		}

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			contentType := c.Writer.Header().Get("Content-Type")
			if contentType == "" {
				contentType = "application/json; charset=utf-8"
			}
			cache.Lock()
			cache.items[key] = cacheEntry{
				Content:     writer.body.Bytes(),
				ContentType: contentType,
				Expiration:  time.Now().Add(cfg.Expiration),
			}
			cache.Unlock()
		}
	}
}

// PurgeCacheByPrefix drops cached responses whose path starts with prefix
func PurgeCacheByPrefix(prefix string) {
	cache.Lock()
	defer cache.Unlock()

	for key := range cache.items {
		if strings.HasPrefix(key, prefix) {
			delete(cache.items, key)
		}
	}
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// CacheStats summarises the cache for the health endpoint
func CacheStats() map[string]interface{} {
	cache.RLock()
	defer cache.RUnlock()

	now := time.Now()
	expired := 0
	size := 0
	for _, entry := range cache.items {
		size += len(entry.Content)
		if entry.Expiration.Before(now) {
			expired++
		}
	}

	return map[string]interface{}{
		"total_items":   len(cache.items),
		"expired_items": expired,
		"total_bytes":   size,
	}
}

func cleanLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		cleanExpiredCache()
	}
}

func cleanExpiredCache() {
	now := time.Now()

	cache.Lock()
	defer cache.Unlock()

	for key, entry := range cache.items {
		if entry.Expiration.Before(now) {
			delete(cache.items, key)
		}
	}
}
