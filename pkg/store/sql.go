package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"bookshelf/pkg/models"
)

// SQL stores books in a gorm database. Insertion order follows the
// auto-increment seq column.
type SQL struct {
	db *gorm.DB
}

func NewSQL(db *gorm.DB) *SQL {
	return &SQL{db: db}
}

func (s *SQL) Append(ctx context.Context, book models.Book) error {
	book.Seq = 0
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", book.ID).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to check book id")
	}
	if count > 0 {
		return errors.Wrap(ErrDuplicate, book.ID)
	}
	if err := s.db.WithContext(ctx).Create(&book).Error; err != nil {
		return errors.Wrap(err, "failed to insert book")
	}
	return nil
}

func (s *SQL) Find(ctx context.Context, id string) (models.Book, error) {
	var book models.Book
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&book).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Book{}, ErrNotFound
	}
	if err != nil {
		return models.Book{}, errors.Wrap(err, "failed to find book")
	}
	return book, nil
}

func (s *SQL) Replace(ctx context.Context, book models.Book) error {
	result := s.db.WithContext(ctx).Model(&models.Book{}).Where("id = ?", book.ID).Updates(map[string]interface{}{
		"name":       book.Name,
		"year":       book.Year,
		"author":     book.Author,
		"summary":    book.Summary,
		"publisher":  book.Publisher,
		"page_count": book.PageCount,
		"read_page":  book.ReadPage,
		"finished":   book.Finished,
		"reading":    book.Reading,
		"updated_at": book.UpdatedAt,
	})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update book")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL) Remove(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Book{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete book")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQL) All(ctx context.Context) ([]models.Book, error) {
	books := make([]models.Book, 0)
	if err := s.db.WithContext(ctx).Order("seq").Find(&books).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list books")
	}
	return books, nil
}

func (s *SQL) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "database connection failed")
	}
	return errors.Wrap(sqlDB.PingContext(ctx), "database ping failed")
}

func (s *SQL) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	return errors.WithStack(sqlDB.Close())
}
