package apierrors

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorHandler_PassesThroughSuccess(t *testing.T) {
	t.Parallel()

	handler := ErrorHandler(func(w http.ResponseWriter, _ *http.Request) error {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
		return nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", rec.Body.String())
}

func TestErrorHandler_401ForTokenExpired(t *testing.T) {
	t.Parallel()

	handler := ErrorHandler(func(_ http.ResponseWriter, _ *http.Request) error {
		return NewTokenExpired(nil)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "token_expired")
}

func TestErrorHandler_429ForRateLimit(t *testing.T) {
	t.Parallel()

	handler := ErrorHandler(func(_ http.ResponseWriter, _ *http.Request) error {
		return NewRateLimitExceeded("2099-01-01T00:00:00Z")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestErrorHandler_500HidesInternalDetail(t *testing.T) {
	t.Parallel()

	handler := ErrorHandler(func(_ http.ResponseWriter, _ *http.Request) error {
		return errors.New("database connection string leaked: secret123")
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret123")
}
