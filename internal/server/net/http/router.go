// Package http реализует маршрутизацию HTTP-слоя сервера artfolio.
//
// Пакет отвечает за:
//   - регистрацию HTTP-маршрутов и настройку роутера (chi);
//   - общие middleware: request id, recover, логирование, CORS;
//   - проверку токена на защищённых маршрутах.
package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/api"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/middleware"
)

// Options - настройки роутера, которые не живут в Handler.
type Options struct {
	// AllowedOrigins - origin'ы браузерного клиента. Пусто - CORS выключен.
	AllowedOrigins []string
	// ImagesPrefix - путь, по которому отдаются картинки. По умолчанию /images.
	ImagesPrefix string
}

// NewRouter создаёт и настраивает HTTP-роутер сервера.
//
// Роутер использует chi.Router и регистрирует:
//   - публичные эндпоинты: /, /healthz, регистрацию, вход и картинки;
//   - middleware recover и логирования для всех запросов;
//   - группу защищённых эндпоинтов работ и категорий.
func NewRouter(h *api.Handler, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	// паника в хендлере -> 500 в JSON
	r.Use(middleware.Recoverer(h.Log))
	// логирование всех запросов
	r.Use(middleware.LoggerMiddleware(h.Log))
	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	// добавляем swagger
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Публичные пути
	r.Get("/", h.Root)
	r.Get("/healthz", h.Healthz)
	r.Route("/users", func(r chi.Router) {
		r.Post("/", h.Register)
		r.Post("/sign-in", h.SignIn)
	})
	r.Get(imagesPrefix(opts.ImagesPrefix)+"/{filename}", h.ServeImage)

	// защищённые пути
	r.Group(func(r chi.Router) {
		// проверка токена
		r.Use(h.Verifier.AuthMiddleware())

		r.Route("/artworks", func(r chi.Router) {
			r.Get("/", h.ListArtworks)
			r.Post("/", h.CreateArtwork)
			r.Get("/{id}", h.GetArtwork)
			r.Put("/{id}", h.UpdateArtwork)
			r.Delete("/{id}", h.DeleteArtwork)
		})
		r.Get("/categories", h.ListCategories)
	})

	return r
}

func imagesPrefix(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p == "" {
		return "/images"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
