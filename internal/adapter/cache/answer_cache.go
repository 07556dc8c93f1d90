package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"ragqa/internal/domain"
)

// AnswerCache memoizes answers by (question, k). Entries expire by
// TTL, by LRU eviction, and whenever the index generation moves past
// the one they were computed under.
type AnswerCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	order   []string
	maxSize int
	ttl     time.Duration
}

type cacheEntry struct {
	answer    domain.Answer
	timestamp time.Time
	indexGen  uint64
}

func NewAnswerCache(maxSize int, ttl time.Duration) *AnswerCache {
	if maxSize <= 0 {
		maxSize = 100
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &AnswerCache{
		entries: make(map[string]*cacheEntry),
		order:   make([]string, 0, maxSize),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

func cacheKey(question string, k int) string {
	data := []byte(question)
	data = append(data, byte(k>>8), byte(k))
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

// Get returns the cached answer when it is still fresh for the given
// index generation.
func (c *AnswerCache) Get(question string, k int, indexGen uint64) (domain.Answer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(question, k)
	entry, exists := c.entries[key]
	if !exists {
		return domain.Answer{}, false
	}

	if time.Since(entry.timestamp) > c.ttl || entry.indexGen != indexGen {
		delete(c.entries, key)
		c.removeFromOrder(key)
		return domain.Answer{}, false
	}

	c.moveToEnd(key)
	return entry.answer, true
}

// Put stores an answer computed against the given index generation.
// Degraded answers are not cached.
func (c *AnswerCache) Put(question string, k int, indexGen uint64, answer domain.Answer) {
	if answer.Failed() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(question, k)
	if _, exists := c.entries[key]; !exists {
		if len(c.order) >= c.maxSize {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, key)
	} else {
		c.moveToEnd(key)
	}

	c.entries[key] = &cacheEntry{
		answer:    answer,
		timestamp: time.Now(),
		indexGen:  indexGen,
	}
}

// Len reports the live entry count.
func (c *AnswerCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *AnswerCache) removeFromOrder(key string) {
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			return
		}
	}
}

func (c *AnswerCache) moveToEnd(key string) {
	c.removeFromOrder(key)
	c.order = append(c.order, key)
}
