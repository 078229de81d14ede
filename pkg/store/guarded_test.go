package store

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookshelf/pkg/circuitbreaker"
	"bookshelf/pkg/models"
)

var errDown = errors.New("database is down")

// flakyStore fails every call while down is set.
type flakyStore struct {
	*Memory
	down  bool
	calls int
}

func (f *flakyStore) All(ctx context.Context) ([]models.Book, error) {
	f.calls++
	if f.down {
		return nil, errDown
	}
	return f.Memory.All(ctx)
}

func (f *flakyStore) Ping(context.Context) error {
	if f.down {
		return errDown
	}
	return nil
}

func TestGuardedOpensOnFailures(t *testing.T) {
	inner := &flakyStore{Memory: NewMemory(), down: true}
	g := NewGuarded(inner, circuitbreaker.New("books", 1, time.Minute, circuitbreaker.WithIgnored(IsNotFound)))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := g.All(ctx)
		assert.ErrorIs(t, err, errDown)
	}

	_, err := g.All(ctx)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, 2, inner.calls)

	assert.ErrorIs(t, g.Ping(ctx), errDown)
}

func TestGuardedNotFoundKeepsBreakerClosed(t *testing.T) {
	cb := circuitbreaker.New("books", 0, time.Minute, circuitbreaker.WithIgnored(IsNotFound))
	g := NewGuarded(NewMemory(), cb)
	ctx := context.Background()

	_, err := g.Find(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, g.Remove(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, g.Replace(ctx, testBook("missing", "X")), ErrNotFound)

	assert.Equal(t, circuitbreaker.StateClosed, cb.GetState())
}

func TestGuardedPassesThrough(t *testing.T) {
	g := NewGuarded(NewMemory(), circuitbreaker.New("books", 5, time.Minute))
	ctx := context.Background()

	require.NoError(t, g.Append(ctx, testBook("b-1", "Dune")))
	book, err := g.Find(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Name)

	books, err := g.All(ctx)
	require.NoError(t, err)
	assert.Len(t, books, 1)
	assert.NoError(t, g.Close())
}

func TestGuardedIgnoresCancelledRequests(t *testing.T) {
	cb := circuitbreaker.New("books", 5, 30*time.Second, circuitbreaker.WithIgnored(IsNotFound))
	g := NewGuarded(NewSQL(setupTestDB(t)), cb)
	require.NoError(t, g.Append(context.Background(), testBook("b-1", "Dune")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 6; i++ {
		_, err := g.All(ctx)
		assert.Error(t, err)
		_, err = g.Find(ctx, "b-1")
		assert.Error(t, err)
	}
	assert.Equal(t, circuitbreaker.StateClosed, cb.GetState())

	books, err := g.All(context.Background())
	require.NoError(t, err)
	assert.Len(t, books, 1)
}
