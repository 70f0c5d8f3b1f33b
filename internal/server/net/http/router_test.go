package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/api"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/crypto"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/service"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/logger"
)

func newTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()

	tokens, err := crypto.NewTokenService(crypto.JWTConfig{
		SigningKey: "supersecretkeysupersecretkey123456",
		AccessTTL:  time.Minute,
	})
	require.NoError(t, err)

	h := api.NewHandler(&service.Services{}, logger.Nop(), middleware.NewJWTVerifier(tokens))
	return NewRouter(h, opts)
}

func TestRouter_Root(t *testing.T) {
	r := newTestRouter(t, Options{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"ok":true}`, rec.Body.String())
	require.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestRouter_ProtectedGroup(t *testing.T) {
	r := newTestRouter(t, Options{})

	for _, path := range []string{"/artworks", "/artworks/1", "/categories"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, Options{})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/secrets", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"message":"Not found"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/users/sign-in", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// Картинки без источника - 404, префикс берётся из опций
func TestRouter_ImagesPrefix(t *testing.T) {
	r := newTestRouter(t, Options{ImagesPrefix: "media/"})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/1-a.jpg", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.JSONEq(t, `{"message":"Not found"}`, rec.Body.String())
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t, Options{AllowedOrigins: []string{"http://localhost:5173"}})

	req := httptest.NewRequest(http.MethodOptions, "/artworks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	// чужой origin не получает разрешения
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestImagesPrefix(t *testing.T) {
	require.Equal(t, "/images", imagesPrefix(""))
	require.Equal(t, "/images", imagesPrefix("/images/"))
	require.Equal(t, "/media", imagesPrefix("media"))
}
