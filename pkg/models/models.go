package models

import (
	"time"
)

type Book struct {
	Seq        uint      `gorm:"primaryKey" json:"-"`
	ID         string    `gorm:"size:36;uniqueIndex;not null" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Year       int       `json:"year"`
	Author     string    `json:"author"`
	Summary    string    `json:"summary"`
	Publisher  string    `json:"publisher"`
	PageCount  int       `gorm:"not null;check:page_count >= 0" json:"pageCount"`
	ReadPage   int       `gorm:"not null;check:read_page >= 0" json:"readPage"`
	Finished   bool      `json:"finished"`
	Reading    bool      `json:"reading"`
	InsertedAt time.Time `json:"insertedAt"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// Finish recomputes the derived finished flag.
func (b *Book) Finish() {
	b.Finished = b.ReadPage == b.PageCount
}

// BookSummary is the list view of a book.
type BookSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Publisher string `json:"publisher"`
}

func (b Book) Brief() BookSummary {
	return BookSummary{ID: b.ID, Name: b.Name, Publisher: b.Publisher}
}
