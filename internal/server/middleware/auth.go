// Package middleware содержит HTTP middleware сервера.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// ctxKey используется как тип ключа для хранения значений в context.Context.
// Отдельный тип предотвращает коллизии ключей между пакетами.
type ctxKey string

// userIDKey - ключ контекста, под которым хранится ID аутентифицированного пользователя.
const userIDKey ctxKey = "user_id"

// Сообщения 401, которые видит клиент.
const (
	MsgMissingToken = "Missing token"
	MsgInvalidToken = "Invalid token"
)

// TokenVerifier проверяет токен доступа и возвращает userId.
// Реализуется crypto.TokenService.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

// JWTVerifier - auth gate для защищённых маршрутов.
//
// Сам ничего не знает о формате токена: подпись, срок жизни,
// issuer и audience проверяет TokenVerifier.
type JWTVerifier struct {
	Tokens TokenVerifier
}

// NewJWTVerifier создаёт новый JWTVerifier.
func NewJWTVerifier(tokens TokenVerifier) *JWTVerifier {
	return &JWTVerifier{Tokens: tokens}
}

// WithUserID кладёт userID в контекст. Используется middleware и тестами хендлеров.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext извлекает userID аутентифицированного пользователя из контекста.
//
// Возвращает:
//   - userID
//   - false, если пользователь не аутентифицирован
func UserIDFromContext(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(userIDKey).(int64)
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// AuthMiddleware возвращает HTTP middleware для проверки токенов доступа.
//
// Middleware:
//   - ожидает заголовок Authorization: Bearer <token>
//   - проверяет токен через TokenVerifier
//   - сохраняет userID в context.Context
//
// В случае ошибки возвращает HTTP 401 с JSON {"message": ...}.
func (v *JWTVerifier) AuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := ExtractBearer(r.Header.Get("Authorization"))
			if tokenStr == "" {
				writeUnauthorized(w, MsgMissingToken)
				return
			}

			userID, err := v.Tokens.Verify(tokenStr)
			if err != nil || userID <= 0 {
				writeUnauthorized(w, MsgInvalidToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

// ExtractBearer извлекает JWT из заголовка Authorization.
//
// Ожидаемый формат:
//
//	Authorization: Bearer <token>
//
// Возвращает пустую строку, если формат некорректен.
func ExtractBearer(h string) string {
	h = strings.TrimSpace(h)
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
