package api

import "net/http"

// Root - проверка, что сервер жив.
//
// @Summary  Liveness
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]bool
// @Router   / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// Healthz проверяет доступность базы.
//
// @Summary  Readiness
// @Tags     health
// @Produce  json
// @Success  200 {object} map[string]string
// @Failure  503 {object} map[string]string
// @Router   /healthz [get]
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil || h.Svc.Health == nil {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	if err := h.Svc.Health.Ping(r.Context()); err != nil {
		h.Log.Logger.Sugar().Warnw("health check failed", "error", err)
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// NotFound - JSON-ответ для неизвестного маршрута.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusNotFound, MsgNotFound)
}

// MethodNotAllowed - JSON-ответ для неподдержанного метода.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}
