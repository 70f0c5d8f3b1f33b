package middleware

import (
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// MsgServerError - тело ответа на любую непредвиденную ошибку.
const MsgServerError = "Server error"

// Recoverer перехватывает панику в хендлере и отвечает 500 {"message":"Server error"}.
// Стек пишется только в лог.
func Recoverer(log *logger.HTTPLogger) func(http.Handler) http.Handler {
	if log == nil {
		log = logger.Nop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// http.ErrAbortHandler - штатный способ оборвать ответ
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("panic recovered",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("uri", r.RequestURI),
					zap.ByteString("stack", debug.Stack()),
				)
				writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Message: MsgServerError})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
