// Package store holds the book records served by the API.
package store

import (
	"context"

	"github.com/pkg/errors"

	"bookshelf/pkg/models"
)

var (
	ErrNotFound  = errors.New("book not found")
	ErrDuplicate = errors.New("book id already exists")
)

// Store is an ordered collection of books, unique by ID. All returns books in
// insertion order.
type Store interface {
	Append(ctx context.Context, book models.Book) error
	Find(ctx context.Context, id string) (models.Book, error)
	Replace(ctx context.Context, book models.Book) error
	Remove(ctx context.Context, id string) error
	All(ctx context.Context) ([]models.Book, error)
	Ping(ctx context.Context) error
	Close() error
}
