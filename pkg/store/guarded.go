package store

import (
	"context"

	"github.com/pkg/errors"

	"bookshelf/pkg/circuitbreaker"
	"bookshelf/pkg/models"
)

// Guarded routes every call to the wrapped store through a circuit breaker so
// a failing database is not hammered by every request.
type Guarded struct {
	inner Store
	cb    *circuitbreaker.CircuitBreaker
}

func NewGuarded(inner Store, cb *circuitbreaker.CircuitBreaker) *Guarded {
	return &Guarded{inner: inner, cb: cb}
}

// IsNotFound reports whether err means the book is missing rather than the
// store being unhealthy. Use it with circuitbreaker.WithIgnored.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (g *Guarded) Append(ctx context.Context, book models.Book) error {
	return g.cb.ExecuteContext(ctx, func() error {
		return g.inner.Append(ctx, book)
	})
}

func (g *Guarded) Find(ctx context.Context, id string) (models.Book, error) {
	var book models.Book
	err := g.cb.ExecuteContext(ctx, func() error {
		var err error
		book, err = g.inner.Find(ctx, id)
		return err
	})
	return book, err
}

func (g *Guarded) Replace(ctx context.Context, book models.Book) error {
	return g.cb.ExecuteContext(ctx, func() error {
		return g.inner.Replace(ctx, book)
	})
}

func (g *Guarded) Remove(ctx context.Context, id string) error {
	return g.cb.ExecuteContext(ctx, func() error {
		return g.inner.Remove(ctx, id)
	})
}

func (g *Guarded) All(ctx context.Context) ([]models.Book, error) {
	var books []models.Book
	err := g.cb.ExecuteContext(ctx, func() error {
		var err error
		books, err = g.inner.All(ctx)
		return err
	})
	return books, err
}

// Ping bypasses the breaker so health checks report the real database state.
func (g *Guarded) Ping(ctx context.Context) error {
	return g.inner.Ping(ctx)
}

func (g *Guarded) Close() error {
	return g.inner.Close()
}
