package fetcher

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// StatusCounter aggregates final HTTP outcomes for a fetch phase. Transport
// failures that never produced a status code are tallied under "EXC". Safe
// for concurrent use.
type StatusCounter struct {
	mu     sync.Mutex
	counts map[string]int
}

// NewStatusCounter creates an empty counter.
func NewStatusCounter() *StatusCounter {
	return &StatusCounter{counts: make(map[string]int)}
}

// Bump records one final outcome. code == 0 means no response was received.
func (c *StatusCounter) Bump(code int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := "EXC"
	if code != 0 {
		key = fmt.Sprintf("%d", code)
	}
	c.counts[key]++
}

// Counts returns a copy of the accumulated counts, clearing them when reset
// is true so the next phase starts fresh.
func (c *StatusCounter) Counts(reset bool) map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	if reset {
		c.counts = make(map[string]int)
	}
	return out
}

// Summary renders the counts as "200:41; 404:2", sorted by key, for logs and
// the reference-table marker row. Returns "N/A" when nothing was recorded.
func (c *StatusCounter) Summary(reset bool) string {
	counts := c.Counts(reset)
	if len(counts) == 0 {
		return "N/A"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s:%d", k, counts[k]))
	}
	return strings.Join(parts, "; ")
}
