package options

import (
	"sync"

	"github.com/segmentio/fasthash/fnv1a"

	"github.com/chazu/winopts/pkg/lexer"
)

// hashText keys the cache.
var hashText = func(text string) uint64 {
	return fnv1a.AddString64(fnv1a.Init64, text)
}

type cacheEntry struct {
	text   string
	tokens []lexer.Token
}

// DefaultCacheLimit is the number of texts NewCache keeps before it starts
// over.
const DefaultCacheLimit = 4096

// Cache memoizes the token sequences of options texts. Markup repeats the
// same attribute on many elements, so most lookups hit. The returned slices
// are shared and must not be modified.
//
// When Limit texts are cached, the next miss empties the cache first. A
// nil *Cache lexes every call.
type Cache struct {
	Limit int // maximum cached texts; zero or less means unbounded

	mu      sync.RWMutex
	entries map[uint64][]cacheEntry
	size    int
}

// NewCache returns an empty cache bounded by DefaultCacheLimit.
func NewCache() *Cache {
	return &Cache{Limit: DefaultCacheLimit, entries: map[uint64][]cacheEntry{}}
}

// Tokens returns the tokens of text, lexing it on a miss.
func (c *Cache) Tokens(text string) []lexer.Token {
	if c == nil {
		return lexer.Lex(text)
	}
	key := hashText(text)

	c.mu.RLock()
	for _, e := range c.entries[key] {
		if e.text == text {
			c.mu.RUnlock()
			return e.tokens
		}
	}
	c.mu.RUnlock()

	tokens := lexer.Lex(text)

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have stored it meanwhile
	for _, e := range c.entries[key] {
		if e.text == text {
			return e.tokens
		}
	}
	if c.entries == nil || (c.Limit > 0 && c.size >= c.Limit) {
		c.entries = map[uint64][]cacheEntry{}
		c.size = 0
	}
	c.entries[key] = append(c.entries[key], cacheEntry{text: text, tokens: tokens})
	c.size++
	return tokens
}

// Len returns the number of cached texts.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.size
}

// Reset empties the cache.
func (c *Cache) Reset() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[uint64][]cacheEntry{}
	c.size = 0
}
