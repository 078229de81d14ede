package books

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookshelf/pkg/store"
)

// RegisterRoutes registers the /books routes backed by s.
func RegisterRoutes(r gin.IRouter, s store.Store, logger *zap.Logger) {
	h := newHandler(s, logger)

	g := r.Group("/books")
	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:bookId", h.retrieve)
	g.PUT("/:bookId", h.update)
	g.DELETE("/:bookId", h.remove)
}
