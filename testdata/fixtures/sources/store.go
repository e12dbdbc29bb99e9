// Package store keeps items in memory.
package store

import (
	"context"
	"fmt"
	pb "github.com/schollz/progressbar/v3"
	_ "embed"
)

import "strings"

// MaxItems bounds the store size.
const MaxItems = 100

var (
	DefaultName = "store"
	hidden      = map[string]int{
		"a": 1,
	}
)

type (
	// ID identifies an item.
	ID string

	// Alias is another name for ID.
	Alias = ID
)

// Store holds items.
/* It is safe for concurrent use. */
type Store struct {
	Base
	Name, Owner string `json:"name"`
	items       map[ID]int
	meta        struct {
		created int
	}
}

// Reader reads items.
type Reader interface {
	fmt.Stringer
	Get(ctx context.Context, id ID) (int, error)
}

// NewStore creates a Store.
func NewStore(name string, opts ...Option) *Store {
	if name == "" {
		name = "default"
	}
	return &Store{Name: name}
}

func (s *Store) Get(ctx context.Context, id ID) (int, error) {
	v, ok := s.items[id]
	if !ok {
		return 0, fmt.Errorf("missing %s: }", id)
	}
	return v, nil
}

func merge(a, b map[ID]int) (
	out map[ID]int,
	err error,
) {
	return nil, nil
}

func Foo(a int) string { return "" }
