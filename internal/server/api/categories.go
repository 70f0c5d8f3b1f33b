package api

import "net/http"

// ListCategories возвращает справочник категорий, отсортированный по имени.
//
// @Summary      List categories
// @Tags         categories
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array}  models.Category
// @Failure      401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure      500 {object} models.ErrorResponse "Server error"
// @Router       /categories [get]
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	list, err := h.Svc.Categories.List(r.Context())
	if err != nil {
		h.fail(w, r, "list categories", err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}
