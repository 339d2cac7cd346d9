// Package query filters and orders portfolio lists (CV documents,
// certificates, projects) the way the list screens present them.
package query

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type SortKey string

const (
	ByTitle     SortKey = "title"
	ByName      SortKey = "name"
	ByCreatedAt SortKey = "createdAt"
	ByUpdatedAt SortKey = "updatedAt"
	ByIssueDate SortKey = "issueDate"
)

type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Params is one list request. Empty SortBy and Order fall back to the
// list's defaults.
type Params struct {
	Search string
	SortBy SortKey
	Order  Order
}

// ParseParams validates raw user input against the keys a list supports.
func ParseParams(search, sortBy, order string, allowed []SortKey) (Params, error) {
	p := Params{Search: search}

	if sortBy != "" {
		for _, k := range allowed {
			if strings.EqualFold(string(k), sortBy) {
				p.SortBy = k
			}
		}
		if p.SortBy == "" {
			return Params{}, fmt.Errorf("unsupported sort key %q (allowed: %v)", sortBy, allowed)
		}
	}

	switch strings.ToLower(order) {
	case "":
	case string(Asc):
		p.Order = Asc
	case string(Desc):
		p.Order = Desc
	default:
		return Params{}, fmt.Errorf("unsupported sort order %q", order)
	}
	return p, nil
}

// Accessor tells the engine how to read one item type.
type Accessor[T any] struct {
	// Fields are matched against the search text.
	Fields func(T) []string
	// Pinned items come first. Nil means nothing is pinned.
	Pinned func(T) bool
	// Text returns the value for a textual sort key; ok=false means the key
	// is an instant and Instant is used.
	Text    func(T, SortKey) (string, bool)
	Instant func(T, SortKey) time.Time
	// Tie orders items whose sort values are equal.
	Tie         func(a, b T) int
	DefaultSort SortKey
}

// Apply returns the matching items in display order. The input is not
// modified and the result depends only on the input and p.
func Apply[T any](items []T, p Params, acc Accessor[T]) []T {
	if p.SortBy == "" {
		p.SortBy = acc.DefaultSort
	}
	if p.Order == "" {
		p.Order = Desc
	}

	needle := strings.ToLower(strings.TrimSpace(p.Search))
	out := make([]T, 0, len(items))
	for _, it := range items {
		if needle == "" || matches(acc.Fields(it), needle) {
			out = append(out, it)
		}
	}

	slices.SortStableFunc(out, func(a, b T) int {
		if acc.Pinned != nil {
			pa, pb := acc.Pinned(a), acc.Pinned(b)
			if pa != pb {
				if pa {
					return -1
				}
				return 1
			}
		}

		c := compareKey(a, b, p.SortBy, acc)
		if c != 0 {
			if p.Order == Desc {
				return -c
			}
			return c
		}
		if acc.Tie != nil {
			return acc.Tie(a, b)
		}
		return 0
	})
	return out
}

func compareKey[T any](a, b T, key SortKey, acc Accessor[T]) int {
	if acc.Text != nil {
		if ta, ok := acc.Text(a, key); ok {
			tb, _ := acc.Text(b, key)
			return strings.Compare(strings.ToLower(ta), strings.ToLower(tb))
		}
	}
	if acc.Instant == nil {
		return 0
	}
	return acc.Instant(a, key).Compare(acc.Instant(b, key))
}

func matches(fields []string, needle string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
