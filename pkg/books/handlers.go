package books

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"bookshelf/pkg/models"
	"bookshelf/pkg/store"
)

type handler struct {
	store  store.Store
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

func newHandler(s store.Store, logger *zap.Logger) *handler {
	return &handler{
		store:  s,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
}

func (h *handler) create(c *gin.Context) {
	ctx := c.Request.Context()

	var payload Payload
	if err := bindPayload(c, &payload); err != nil {
		fail(c, http.StatusBadRequest, addFailed+": invalid payload")
		return
	}
	if msg := payload.validate(addFailed); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}

	now := h.now()
	book := models.Book{
		ID:         h.newID(),
		InsertedAt: now,
		UpdatedAt:  now,
	}
	apply(&book, payload)

	if err := h.store.Append(ctx, book); err != nil {
		h.logger.Error("Failed to add book", zap.String("book_id", book.ID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "book failed to be added")
		return
	}

	// the write is only reported once the book can be read back
	if _, err := h.store.Find(ctx, book.ID); err != nil {
		h.logger.Error("Added book is missing from the store", zap.String("book_id", book.ID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "book failed to be added")
		return
	}

	h.logger.Info("Book added", zap.String("book_id", book.ID))
	success(c, http.StatusCreated, "book successfully added", gin.H{"bookId": book.ID})
}

func (h *handler) list(c *gin.Context) {
	books, err := h.store.All(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list books", zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to list books: storage unavailable")
		return
	}

	if reading, ok := c.GetQuery("reading"); ok {
		isReading := queryFlag(reading)
		books = filter(books, func(b models.Book) bool { return b.Reading == isReading })
	}
	if finished, ok := c.GetQuery("finished"); ok {
		isFinished := queryFlag(finished)
		books = filter(books, func(b models.Book) bool { return b.Finished == isFinished })
	}
	if name := c.Query("name"); name != "" {
		needle := strings.ToLower(name)
		books = filter(books, func(b models.Book) bool {
			return strings.Contains(strings.ToLower(b.Name), needle)
		})
	}

	items := make([]models.BookSummary, len(books))
	for i, b := range books {
		items[i] = b.Brief()
	}
	success(c, http.StatusOK, "", gin.H{"books": items})
}

func (h *handler) retrieve(c *gin.Context) {
	bookID := c.Param("bookId")

	book, err := h.store.Find(c.Request.Context(), bookID)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "book not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to get book", zap.String("book_id", bookID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to get book: storage unavailable")
		return
	}

	success(c, http.StatusOK, "", gin.H{"book": book})
}

func (h *handler) update(c *gin.Context) {
	ctx := c.Request.Context()
	bookID := c.Param("bookId")

	var payload Payload
	if err := bindPayload(c, &payload); err != nil {
		fail(c, http.StatusBadRequest, updateFailed+": invalid payload")
		return
	}
	if msg := payload.validate(updateFailed); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}

	book, err := h.store.Find(ctx, bookID)
	if err == nil {
		apply(&book, payload)
		book.UpdatedAt = h.now()
		err = h.store.Replace(ctx, book)
	}
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, updateFailed+": id not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to update book", zap.String("book_id", bookID), zap.Error(err))
		fail(c, http.StatusInternalServerError, updateFailed+": storage unavailable")
		return
	}

	h.logger.Info("Book updated", zap.String("book_id", bookID))
	success(c, http.StatusOK, "book successfully updated", nil)
}

func (h *handler) remove(c *gin.Context) {
	bookID := c.Param("bookId")

	err := h.store.Remove(c.Request.Context(), bookID)
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, "failed to delete book: id not found")
		return
	}
	if err != nil {
		h.logger.Error("Failed to delete book", zap.String("book_id", bookID), zap.Error(err))
		fail(c, http.StatusInternalServerError, "failed to delete book: storage unavailable")
		return
	}

	h.logger.Info("Book deleted", zap.String("book_id", bookID))
	success(c, http.StatusOK, "book successfully deleted", nil)
}

// apply copies the mutable fields of p onto b and recomputes finished.
func apply(b *models.Book, p Payload) {
	b.Name = p.Name
	b.Year = p.Year
	b.Author = p.Author
	b.Summary = p.Summary
	b.Publisher = p.Publisher
	b.PageCount = p.PageCount
	b.ReadPage = p.ReadPage
	b.Reading = p.Reading
	b.Finish()
}

func filter(books []models.Book, keep func(models.Book) bool) []models.Book {
	result := make([]models.Book, 0, len(books))
	for _, b := range books {
		if keep(b) {
			result = append(result, b)
		}
	}
	return result
}
