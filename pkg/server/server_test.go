package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"bookshelf/pkg/store"
)

type downStore struct {
	*store.Memory
}

func (downStore) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		store  store.Store
		code   int
		status string
	}{
		{name: "up", store: store.NewMemory(), code: http.StatusOK, status: `"UP"`},
		{name: "down", store: downStore{store.NewMemory()}, code: http.StatusServiceUnavailable, status: `"DOWN"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(tt.store, zap.NewNop())
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/manage/health", nil))

			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), tt.status)
		})
	}
}

func TestBooksRoutesRegistered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(store.NewMemory(), zap.NewNop())

	req := httptest.NewRequest("POST", "/books", strings.NewReader(`{"name":"Dune","pageCount":400,"readPage":400}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/books", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Dune"`)
}

func TestUnknownRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := New(store.NewMemory(), zap.NewNop())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/shelves", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"fail","message":"route not found"}`, w.Body.String())
}

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	r := New(store.NewMemory(), zap.New(core))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/books/missing", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	entries := logs.FilterMessage("Request handled").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/books/missing", fields["path"])
	assert.Equal(t, int64(http.StatusNotFound), fields["status"])
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", "console")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = NewLogger("warn", "json")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.InfoLevel))

	_, err = NewLogger("loud", "json")
	assert.Error(t, err)
	_, err = NewLogger("info", "xml")
	assert.Error(t, err)
}
