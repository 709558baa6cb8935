package generator

import (
	"fmt"

	"github.com/dbsmedya/gomask/internal/types"
)

// DefaultUniqueMaxAttempts is used when no cap is configured.
const DefaultUniqueMaxAttempts = 100

// Unique wraps a generator so that no value is handed out twice within one
// job. The set lives as long as the wrapper and is shared by all columns.
// Uniqueness is best effort: after MaxAttempts collisions Generate fails
// with ErrUniqueExhausted.
type Unique struct {
	inner       Generator
	maxAttempts int
	seen        map[string]struct{}
}

// NewUnique wraps inner. maxAttempts <= 0 means DefaultUniqueMaxAttempts.
func NewUnique(inner Generator, maxAttempts int) *Unique {
	if maxAttempts <= 0 {
		maxAttempts = DefaultUniqueMaxAttempts
	}
	return &Unique{inner: inner, maxAttempts: maxAttempts, seen: make(map[string]struct{})}
}

// Inner returns the wrapped generator.
func (u *Unique) Inner() Generator {
	return u.inner
}

// Issued returns how many distinct values have been handed out.
func (u *Unique) Issued() int {
	return len(u.seen)
}

func (u *Unique) Validate() error {
	return u.inner.Validate()
}

func (u *Unique) Generate(req *Request) (any, error) {
	for attempt := 0; attempt < u.maxAttempts; attempt++ {
		v, err := u.inner.Generate(req)
		if err != nil {
			return nil, err
		}
		key := types.ToString(v)
		if _, dup := u.seen[key]; dup {
			continue
		}
		u.seen[key] = struct{}{}
		return v, nil
	}
	return nil, fmt.Errorf("%w after %d attempts for column %s", ErrUniqueExhausted, u.maxAttempts, req.Column.Name)
}

// PrepareRow forwards to the wrapped generator.
func (u *Unique) PrepareRow(req *Request) error {
	if p, ok := u.inner.(RowPreparer); ok {
		return p.PrepareRow(req)
	}
	return nil
}

// Scope forwards to the wrapped generator.
func (u *Unique) Scope() (string, []any, bool) {
	if s, ok := u.inner.(Scoper); ok {
		return s.Scope()
	}
	return "", nil, false
}
