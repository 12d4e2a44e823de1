package cards

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"
)

// RenderCache memoizes executed card HTML so repeated fetches under the same
// filter set are cheap.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// ExecCache is an in-memory TTL cache for executed card HTML.
type ExecCache struct {
	ttl     time.Duration
	mu      sync.RWMutex
	entries map[string]cachedExec
}

type cachedExec struct {
	html    string
	expires time.Time
}

// NewExecCache builds a cache with the provided TTL.
func NewExecCache(ttl time.Duration) *ExecCache {
	return &ExecCache{
		ttl:     ttl,
		entries: make(map[string]cachedExec),
	}
}

// GetOrRender returns a cached entry or renders/stores a new one.
func (c *ExecCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if html, ok := c.get(key); ok {
		return html, nil
	}
	html, err := render()
	if err != nil {
		return "", err
	}
	c.set(key, html)
	return html, nil
}

func (c *ExecCache) get(key string) (string, bool) {
	if c == nil || c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		if ok {
			c.mu.Lock()
			delete(c.entries, key)
			c.mu.Unlock()
		}
		return "", false
	}
	return entry.html, true
}

func (c *ExecCache) set(key, html string) {
	if c == nil || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[key] = cachedExec{
		html:    html,
		expires: time.Now().Add(c.ttl),
	}
	c.mu.Unlock()
}

// execKey returns a deterministic cache key for a card under a filter set.
func execKey(cardID string, filters FilterState) string {
	fp := filters.Fingerprint()
	if fp == "" {
		return cardID + ":unfiltered"
	}
	sum := sha1.Sum([]byte(fp))
	return cardID + ":" + hex.EncodeToString(sum[:])
}

// configHash returns a deterministic hash for a card configuration map.
func configHash(cfg map[string]any) string {
	if len(cfg) == 0 {
		return "empty"
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
