// Package api реализует HTTP-слой сервера artfolio.
//
// Пакет отвечает за:
//   - обработку входящих запросов и формирование ответов (JSON, статусы);
//   - разбор тел запросов по явным схемам (JSON и multipart), лишние поля отклоняются;
//   - маппинг доменных ошибок (service/repository) в HTTP-коды и сообщения;
//   - отдачу сохранённых картинок.
//
// Маршруты регистрируются в internal/server/net/http.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/images"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/middleware"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// Каждый метод если будет возвращать ответ то будет это делать в JSON
// Вынес Content-Type и JSON для удобства
const (
	JsonContentType string = "application/json"
	ContentType     string = "Content-Type"
)

// Сообщения, которые видит клиент.
const (
	MsgValidationFailed   = "Validation failed"
	MsgBadJSON            = "Invalid JSON body"
	MsgUnauthorized       = "Unauthorized"
	MsgInvalidCredentials = "Invalid email or password"
	MsgEmailInUse         = "Email already in use"
	MsgNotFound           = "Not found"
	MsgServerError        = "Server error"
	MsgUnsupportedMedia   = "Unsupported content type"
)

// лимиты по умолчанию
const (
	defaultMaxBodyBytes  int64 = 1 << 20
	multipartOverheadMax int64 = 1 << 20
)

// ImageSource открывает сохранённую картинку. Реализуется images.Intake.
type ImageSource interface {
	Open(ctx context.Context, name string) (*images.Object, error)
}

// Handler агрегирует зависимости HTTP-слоя и предоставляет методы-хендлеры.
//
// Handler содержит:
//   - Svc: сервисный слой (бизнес-логика);
//   - Log: логгер для записи событий и ошибок;
//   - Verifier: auth gate для защищённых маршрутов;
//   - Images: источник картинок для GET /images/{filename}.
//
// Методы Handler используются роутером для обработки HTTP-запросов.
type Handler struct {
	Svc      *service.Services
	Log      *logger.HTTPLogger
	Verifier *middleware.JWTVerifier
	Images   ImageSource

	// MaxBodyBytes - лимит JSON-тела, MaxImageBytes - лимит одной картинки.
	MaxBodyBytes  int64
	MaxImageBytes int64
}

// NewHandler создаёт экземпляр Handler с переданными зависимостями.
//
// svc - набор сервисов приложения,
// log - логгер,
// verifier - проверка токена и middleware авторизации.
func NewHandler(svc *service.Services, log *logger.HTTPLogger, verifier *middleware.JWTVerifier) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		Svc:           svc,
		Log:           log,
		Verifier:      verifier,
		MaxBodyBytes:  defaultMaxBodyBytes,
		MaxImageBytes: images.DefaultMaxBytes,
	}
}

// WriteJSON пишет v как JSON с заданным статусом.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(ContentType, JsonContentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Вспомогательная функция вывода ошибки
func WriteError(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, models.ErrorResponse{Message: msg})
}

// WriteValidation отвечает 400 с ошибками по полям.
func WriteValidation(w http.ResponseWriter, verr *serr.ValidationError) {
	WriteJSON(w, http.StatusBadRequest, models.ErrorResponse{
		Message: MsgValidationFailed,
		Errors:  verr.Fields,
	})
}

// fail маппит доменную ошибку на HTTP-ответ.
// Всё непредвиденное логируется и уходит клиенту как 500 без деталей.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error, kv ...any) {
	var verr *serr.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteValidation(w, verr)
	case errors.Is(err, serr.ErrBadJSON):
		WriteError(w, http.StatusBadRequest, MsgBadJSON)
	case errors.Is(err, serr.ErrInvalidInput):
		WriteError(w, http.StatusBadRequest, MsgValidationFailed)
	case errors.Is(err, serr.ErrInvalidCredentials):
		WriteError(w, http.StatusUnauthorized, MsgInvalidCredentials)
	case errors.Is(err, serr.ErrUnauthorized), errors.Is(err, serr.ErrInvalidToken):
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
	case errors.Is(err, serr.ErrNotFound):
		WriteError(w, http.StatusNotFound, MsgNotFound)
	case errors.Is(err, serr.ErrAlreadyExists):
		WriteError(w, http.StatusConflict, MsgEmailInUse)
	default:
		fields := append([]any{"error", err, "method", r.Method, "uri", r.RequestURI}, kv...)
		h.Log.Logger.Sugar().Errorw(op+" failed", fields...)
		WriteError(w, http.StatusInternalServerError, MsgServerError)
	}
}

// decodeJSON читает тело строго по схеме: неизвестные поля и мусор после объекта - ошибка.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = defaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", serr.ErrBadJSON, err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data", serr.ErrBadJSON)
	}
	return nil
}

// currentUser достаёт userID, положенный auth gate.
func currentUser(r *http.Request) (int64, bool) {
	return middleware.UserIDFromContext(r.Context())
}

// pathID разбирает {id} из пути. Не число или <= 0 - ошибка валидации.
func pathID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, serr.NewValidationError("id", "Invalid id")
	}
	return id, nil
}

// parseOptionalID: пустая строка - nil.
func parseOptionalID(field, raw string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil, serr.NewValidationError(field, "Invalid "+strings.ReplaceAll(field, "_", " "))
	}
	return &v, nil
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get(ContentType)), JsonContentType)
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(strings.ToLower(r.Header.Get(ContentType)), "multipart/form-data")
}
