// HTTP-хендлеры работ пользователя
package api

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/images"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/utils"
)

// поля multipart-формы работы
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategoryID  = "category_id"
	fieldImage       = "image"
)

// ListArtworks возвращает работы текущего пользователя, новые сверху.
//
// @Summary      List artworks
// @Description  Returns the caller's artworks, optionally filtered by category.
// @Tags         artworks
// @Produce      json
// @Security     BearerAuth
// @Param        category_id query int false "Category filter"
// @Success      200 {array}  models.Artwork
// @Failure      400 {object} models.ErrorResponse "Invalid category_id"
// @Failure      401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure      500 {object} models.ErrorResponse "Server error"
// @Router       /artworks [get]
func (h *Handler) ListArtworks(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
		return
	}

	categoryID, err := parseOptionalID(fieldCategoryID, r.URL.Query().Get(fieldCategoryID))
	if err != nil {
		h.fail(w, r, "list artworks", err)
		return
	}

	list, err := h.Svc.Artworks.List(r.Context(), userID, categoryID)
	if err != nil {
		h.fail(w, r, "list artworks", err, "user_id", userID)
		return
	}

	WriteJSON(w, http.StatusOK, list)
}

// GetArtwork возвращает одну работу. Чужая работа неотличима от несуществующей.
//
// @Summary      Get artwork
// @Tags         artworks
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Artwork ID"
// @Success      200 {object} models.Artwork
// @Failure      400 {object} models.ErrorResponse "Invalid id"
// @Failure      401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure      404 {object} models.ErrorResponse "Not found"
// @Failure      500 {object} models.ErrorResponse "Server error"
// @Router       /artworks/{id} [get]
func (h *Handler) GetArtwork(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "get artwork", err)
		return
	}

	art, err := h.Svc.Artworks.Get(r.Context(), userID, id)
	if err != nil {
		h.fail(w, r, "get artwork", err, "user_id", userID, "artwork_id", id)
		return
	}

	WriteJSON(w, http.StatusOK, art)
}

// CreateArtwork создаёт работу из multipart-формы.
//
// Поля формы: title (обязательно), description, category_id, image (файл).
// Любое другое поле или второй файл - ошибка валидации.
//
// @Summary      Create artwork
// @Description  Creates an artwork owned by the caller. The image is optional.
// @Tags         artworks
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        title       formData string true  "Title"
// @Param        description formData string false "Description"
// @Param        category_id formData int    false "Category ID"
// @Param        image       formData file   false "Image file"
// @Success      201 {object} models.Artwork
// @Failure      400 {object} models.ErrorResponse "Validation failed"
// @Failure      401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure      415 {object} models.ErrorResponse "Unsupported content type"
// @Failure      500 {object} models.ErrorResponse "Server error"
// @Router       /artworks [post]
func (h *Handler) CreateArtwork(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
		return
	}
	if !isMultipart(r) {
		WriteError(w, http.StatusUnsupportedMediaType, MsgUnsupportedMedia)
		return
	}

	form, err := h.parseArtworkForm(w, r)
	if err != nil {
		h.fail(w, r, "create artwork", err)
		return
	}
	defer form.cleanup()

	in := service.CreateArtworkInput{
		Title:       utils.Deref(form.title),
		Description: form.description,
		CategoryID:  form.categoryID,
	}
	if form.image != nil {
		body, err := form.image.Open()
		if err != nil {
			h.fail(w, r, "create artwork", err, "user_id", userID)
			return
		}
		defer body.Close()
		in.Image = uploadFrom(form.image, body)
	}

	art, err := h.Svc.Artworks.Create(r.Context(), userID, in)
	if err != nil {
		h.fail(w, r, "create artwork", err, "user_id", userID)
		return
	}

	WriteJSON(w, http.StatusCreated, art)
}

// UpdateArtwork частично обновляет работу.
//
// Принимает JSON (без картинки) или multipart (с картинкой).
// Отсутствующее поле не меняется, пустое description очищает описание.
//
// @Summary      Update artwork
// @Description  Partially updates an owned artwork. Send multipart/form-data to replace the image.
// @Tags         artworks
// @Accept       json,multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int                         true  "Artwork ID"
// @Param        request body models.UpdateArtworkRequest false "Fields to change"
// @Success      200 {object} models.MessageResponse
// @Failure      400 {object} models.ErrorResponse "Validation failed"
// @Failure      401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure      404 {object} models.ErrorResponse "Not found"
// @Failure      415 {object} models.ErrorResponse "Unsupported content type"
// @Failure      500 {object} models.ErrorResponse "Server error"
// @Router       /artworks/{id} [put]
func (h *Handler) UpdateArtwork(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "update artwork", err)
		return
	}

	var in service.UpdateArtworkInput
	switch {
	case isJSON(r):
		var req models.UpdateArtworkRequest
		if err := h.decodeJSON(w, r, &req); err != nil {
			h.fail(w, r, "update artwork", err)
			return
		}
		in = service.UpdateArtworkInput{Title: req.Title, Description: req.Description, CategoryID: req.CategoryID}

	case isMultipart(r):
		form, err := h.parseArtworkForm(w, r)
		if err != nil {
			h.fail(w, r, "update artwork", err)
			return
		}
		defer form.cleanup()

		in = service.UpdateArtworkInput{Title: form.title, Description: form.description, CategoryID: form.categoryID}
		if form.image != nil {
			body, err := form.image.Open()
			if err != nil {
				h.fail(w, r, "update artwork", err, "user_id", userID, "artwork_id", id)
				return
			}
			defer body.Close()
			in.Image = uploadFrom(form.image, body)
		}

	default:
		WriteError(w, http.StatusUnsupportedMediaType, MsgUnsupportedMedia)
		return
	}

	if err := h.Svc.Artworks.Update(r.Context(), userID, id, in); err != nil {
		h.fail(w, r, "update artwork", err, "user_id", userID, "artwork_id", id)
		return
	}

	WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Artwork updated", ID: id})
}

// DeleteArtwork удаляет работу и её картинку.
//
// @Summary      Delete artwork
// @Tags         artworks
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Artwork ID"
// @Success      200 {object} models.MessageResponse
// @Failure      400 {object} models.ErrorResponse "Invalid id"
// @Failure      401 {object} models.ErrorResponse "Missing or invalid token"
// @Failure      404 {object} models.ErrorResponse "Not found"
// @Failure      500 {object} models.ErrorResponse "Server error"
// @Router       /artworks/{id} [delete]
func (h *Handler) DeleteArtwork(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(r)
	if !ok {
		WriteError(w, http.StatusUnauthorized, MsgUnauthorized)
		return
	}
	id, err := pathID(r)
	if err != nil {
		h.fail(w, r, "delete artwork", err)
		return
	}

	if err := h.Svc.Artworks.Delete(r.Context(), userID, id); err != nil {
		h.fail(w, r, "delete artwork", err, "user_id", userID, "artwork_id", id)
		return
	}

	WriteJSON(w, http.StatusOK, models.MessageResponse{Message: "Artwork deleted", ID: id})
}

// artworkForm - разобранная multipart-форма. nil - поле не передано.
type artworkForm struct {
	title       *string
	description *string
	categoryID  *int64
	image       *multipart.FileHeader
	raw         *multipart.Form
}

func (f *artworkForm) cleanup() {
	if f.raw != nil {
		f.raw.RemoveAll()
	}
}

// parseArtworkForm разбирает форму целиком до обращения к сервису,
// чтобы валидация полей шла раньше приёма картинки.
func (h *Handler) parseArtworkForm(w http.ResponseWriter, r *http.Request) (*artworkForm, error) {
	maxImage := h.MaxImageBytes
	if maxImage <= 0 {
		maxImage = images.DefaultMaxBytes
	}
	limit := maxImage + multipartOverheadMax
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	if err := r.ParseMultipartForm(limit); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return nil, serr.NewValidationError(fieldImage, service.MsgImageTooLarge)
		}
		return nil, serr.NewValidationError("body", "Invalid multipart body")
	}

	raw := r.MultipartForm
	form := &artworkForm{raw: raw}
	verr := &serr.ValidationError{}

	for key, values := range raw.Value {
		if len(values) != 1 {
			verr.Add(key, "Field must be sent once")
			continue
		}
		v := values[0]
		switch key {
		case fieldTitle:
			form.title = &v
		case fieldDescription:
			form.description = &v
		case fieldCategoryID:
			id, err := parseOptionalID(fieldCategoryID, v)
			if err != nil {
				verr.Add(fieldCategoryID, "Invalid category id")
				continue
			}
			form.categoryID = id
		default:
			verr.Add(key, "Unknown field")
		}
	}

	for key, files := range raw.File {
		if key != fieldImage {
			verr.Add(key, "Unknown field")
			continue
		}
		if len(files) != 1 {
			verr.Add(fieldImage, "Only one image is allowed")
			continue
		}
		form.image = files[0]
	}

	if !verr.Empty() {
		form.cleanup()
		return nil, verr
	}
	return form, nil
}

func uploadFrom(fh *multipart.FileHeader, body multipart.File) *images.Upload {
	return &images.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(ContentType),
		Size:        fh.Size,
		Body:        body,
	}
}

