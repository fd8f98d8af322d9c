// Package memory implements the repository interfaces on in-process maps.
// Same-key mutations are serialized through striped key locks; different
// keys proceed in parallel.
package memory

import (
	"context"

	"github.com/mroshb/film_catalog/pkg/errors"
)

const defaultStripes = 64

type keyLocks struct {
	stripes []chan struct{}
}

func newKeyLocks(n int) *keyLocks {
	l := &keyLocks{stripes: make([]chan struct{}, n)}
	for i := range l.stripes {
		l.stripes[i] = make(chan struct{}, 1)
	}
	return l
}

// lock blocks until the stripe owning key is free or ctx is done.
func (l *keyLocks) lock(ctx context.Context, key uint64) (func(), error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	// Fibonacci hashing spreads sequential ids across stripes.
	idx := (key * 0x9E3779B97F4A7C15) % uint64(len(l.stripes))
	ch := l.stripes[idx]

	select {
	case ch <- struct{}{}:
		return func() { <-ch }, nil
	case <-ctx.Done():
		return nil, errors.Wrap(ctx.Err(), errors.ErrCodeStorage, "gave up waiting for key lock")
	}
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeStorage, "request cancelled")
	}
	return nil
}
