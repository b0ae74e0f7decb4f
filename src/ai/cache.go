package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type cacheEntry struct {
	answer  string
	expires time.Time
}

// ResponseCache keys answers on a hash of channel and prompt so repeated
// questions in the same channel are served without a provider round trip.
type ResponseCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cacheEntry
}

func NewResponseCache(ttl time.Duration) *ResponseCache {
	c := &ResponseCache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
	if ttl > 0 {
		go c.evictLoop()
	}
	return c
}

func cacheKey(channelID, prompt string) string {
	h := sha256.Sum256([]byte(channelID + "\x00" + prompt))
	return hex.EncodeToString(h[:])
}

func (c *ResponseCache) Get(channelID, prompt string) (string, bool) {
	if c.ttl <= 0 {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[cacheKey(channelID, prompt)]
	if !ok || time.Now().After(e.expires) {
		return "", false
	}
	return e.answer, true
}

func (c *ResponseCache) Put(channelID, prompt, answer string) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(channelID, prompt)] = cacheEntry{
		answer:  answer,
		expires: time.Now().Add(c.ttl),
	}
}

func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *ResponseCache) evictLoop() {
	ticker := time.NewTicker(c.ttl)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		c.mu.Lock()
		for k, e := range c.entries {
			if now.After(e.expires) {
				delete(c.entries, k)
			}
		}
		c.mu.Unlock()
	}
}
