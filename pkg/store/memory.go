package store

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"bookshelf/pkg/models"
)

// Memory keeps books in process memory. Nothing survives a restart.
type Memory struct {
	books []models.Book
	mu    sync.RWMutex
}

func NewMemory() *Memory {
	return &Memory{
		books: make([]models.Book, 0),
	}
}

func (m *Memory) Append(_ context.Context, book models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.findIndex(book.ID) != -1 {
		return errors.Wrap(ErrDuplicate, book.ID)
	}
	m.books = append(m.books, book)
	return nil
}

func (m *Memory) Find(_ context.Context, id string) (models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i := m.findIndex(id)
	if i == -1 {
		return models.Book{}, ErrNotFound
	}
	return m.books[i], nil
}

func (m *Memory) Replace(_ context.Context, book models.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.findIndex(book.ID)
	if i == -1 {
		return ErrNotFound
	}
	m.books[i] = book
	return nil
}

func (m *Memory) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.findIndex(id)
	if i == -1 {
		return ErrNotFound
	}
	m.removeAt(i)
	return nil
}

// All returns a snapshot; callers may filter it freely.
func (m *Memory) All(_ context.Context) ([]models.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.Book, len(m.books))
	copy(result, m.books)
	return result, nil
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func (m *Memory) findIndex(id string) int {
	for i := range m.books {
		if m.books[i].ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) removeAt(i int) {
	m.books = append(m.books[:i], m.books[i+1:]...)
}
