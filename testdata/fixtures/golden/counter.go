package counter

import "strings"

// Counter tallies words.
type Counter struct {
	Total int
	seen  map[string]bool
}

// Add counts the words in s.
func (c *Counter) Add(s string) int {
	n := len(strings.Fields(s))
	c.Total += n
	return n
}

// New returns an empty Counter.
func New() *Counter {
	return &Counter{seen: map[string]bool{}}
}
