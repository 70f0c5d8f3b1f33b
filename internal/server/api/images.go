package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ServeImage отдаёт сохранённую картинку по имени файла.
//
// Имена уникальны и не переиспользуются, поэтому ответ кэшируется надолго.
// Невалидное или неизвестное имя - 404.
//
// @Summary      Get image
// @Tags         images
// @Produce      image/jpeg,image/png,image/gif,image/webp
// @Param        filename path string true "Stored file name"
// @Success      200 {file} binary
// @Failure      404 {object} models.ErrorResponse "Not found"
// @Failure      500 {object} models.ErrorResponse "Server error"
// @Router       /images/{filename} [get]
func (h *Handler) ServeImage(w http.ResponseWriter, r *http.Request) {
	if h.Images == nil {
		WriteError(w, http.StatusNotFound, MsgNotFound)
		return
	}

	name := chi.URLParam(r, "filename")
	obj, err := h.Images.Open(r.Context(), name)
	if err != nil {
		h.fail(w, r, "serve image", err, "filename", name)
		return
	}
	defer obj.Body.Close()

	w.Header().Set(ContentType, obj.ContentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

	// локальный файл умеет Range и If-Modified-Since
	if rs, ok := obj.Body.(io.ReadSeeker); ok {
		http.ServeContent(w, r, name, obj.ModTime, rs)
		return
	}

	if obj.Size >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)
	if r.Method != http.MethodHead {
		io.Copy(w, obj.Body)
	}
}
