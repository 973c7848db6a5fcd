package oracle

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ha1tch/olstar/pkg/mealy"
)

// DefaultCacheSize is the number of answers a Cache keeps by default.
const DefaultCacheSize = 1 << 16

// Cache memoises the answers of a membership oracle. Since Mealy outputs are
// prefix-closed, every answer also fills in the answers for its prefixes.
type Cache struct {
	delegate Membership
	entries  *lru.Cache[string, mealy.Word]
	hits     int
	misses   int
}

// NewCache wraps delegate with an LRU cache holding up to size answers.
func NewCache(delegate Membership, size int) (*Cache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := lru.New[string, mealy.Word](size)
	if err != nil {
		return nil, fmt.Errorf("create query cache: %w", err)
	}
	return &Cache{delegate: delegate, entries: entries}, nil
}

// Answer returns the cached answer or asks the delegate.
func (c *Cache) Answer(w mealy.Word) mealy.Word {
	if out, ok := c.entries.Get(w.Key()); ok {
		c.hits++
		return out
	}
	c.misses++
	out := c.delegate.Answer(w)
	c.store(w, out)
	return out
}

// AnswerBatch answers the cached words directly and forwards the rest to the
// delegate in a single batch.
func (c *Cache) AnswerBatch(ws []mealy.Word) []mealy.Word {
	out := make([]mealy.Word, len(ws))
	var missing []mealy.Word
	pending := make(map[string][]int)
	for i, w := range ws {
		k := w.Key()
		if ans, ok := c.entries.Get(k); ok {
			c.hits++
			out[i] = ans
			continue
		}
		if idx, ok := pending[k]; ok {
			pending[k] = append(idx, i)
			continue
		}
		c.misses++
		pending[k] = []int{i}
		missing = append(missing, w)
	}
	if len(missing) == 0 {
		return out
	}
	answers := c.delegate.AnswerBatch(missing)
	for j, w := range missing {
		c.store(w, answers[j])
		for _, i := range pending[w.Key()] {
			out[i] = answers[j]
		}
	}
	return out
}

// Stats returns the number of cache hits and misses so far.
func (c *Cache) Stats() (hits, misses int) { return c.hits, c.misses }

// Len returns the number of cached answers.
func (c *Cache) Len() int { return c.entries.Len() }

func (c *Cache) store(w, out mealy.Word) {
	for n := len(w); n > 0; n-- {
		if n < len(w) && c.entries.Contains(w.Prefix(n).Key()) {
			break
		}
		c.entries.Add(w.Prefix(n).Key(), out.Prefix(n))
	}
}
