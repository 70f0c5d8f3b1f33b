package api

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// ArtworkForm - поля работы для create/update.
//
// nil - поле не передаётся. ImagePath - путь к локальному файлу картинки.
type ArtworkForm struct {
	Title       *string
	Description *string
	CategoryID  *int64
	ImagePath   string
}

// ListArtworks загружает работы пользователя: GET /artworks[?category_id=N].
func (c *Client) ListArtworks(token string, categoryID *int64) ([]models.Artwork, error) {
	path := "/artworks"
	if categoryID != nil {
		path += "?" + url.Values{"category_id": {strconv.FormatInt(*categoryID, 10)}}.Encode()
	}

	var resp []models.Artwork
	if err := c.GetJSON(path, &resp, token); err != nil {
		return nil, err
	}
	return resp, nil
}

// GetArtwork загружает одну работу: GET /artworks/{id}.
func (c *Client) GetArtwork(token string, id int64) (models.Artwork, error) {
	var resp models.Artwork
	err := c.GetJSON(artworkPath(id), &resp, token)
	return resp, err
}

// CreateArtwork создаёт работу: POST /artworks (multipart).
func (c *Client) CreateArtwork(token string, form ArtworkForm) (models.Artwork, error) {
	body, ct, err := encodeArtworkForm(form)
	if err != nil {
		return models.Artwork{}, err
	}

	var resp models.Artwork
	err = c.do(http.MethodPost, "/artworks", ct, body, &resp, token)
	return resp, err
}

// UpdateArtwork обновляет работу: PUT /artworks/{id}.
//
// Без картинки уходит JSON, с картинкой - multipart.
func (c *Client) UpdateArtwork(token string, id int64, form ArtworkForm) (models.MessageResponse, error) {
	var resp models.MessageResponse

	if form.ImagePath == "" {
		req := models.UpdateArtworkRequest{
			Title:       form.Title,
			Description: form.Description,
			CategoryID:  form.CategoryID,
		}
		err := c.PutJSON(artworkPath(id), req, &resp, token)
		return resp, err
	}

	body, ct, err := encodeArtworkForm(form)
	if err != nil {
		return resp, err
	}
	err = c.do(http.MethodPut, artworkPath(id), ct, body, &resp, token)
	return resp, err
}

// DeleteArtwork удаляет работу: DELETE /artworks/{id}.
func (c *Client) DeleteArtwork(token string, id int64) (models.MessageResponse, error) {
	var resp models.MessageResponse
	err := c.DeleteJSON(artworkPath(id), &resp, token)
	return resp, err
}

// ListCategories загружает справочник категорий: GET /categories.
func (c *Client) ListCategories(token string) ([]models.Category, error) {
	var resp []models.Category
	if err := c.GetJSON("/categories", &resp, token); err != nil {
		return nil, err
	}
	return resp, nil
}

func artworkPath(id int64) string {
	return "/artworks/" + strconv.FormatInt(id, 10)
}

// encodeArtworkForm собирает multipart-тело.
//
// Тип части image определяется по содержимому файла: сервер сверяет
// заявленный тип со своим allow-list.
func encodeArtworkForm(form ArtworkForm) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if form.Title != nil {
		if err := mw.WriteField("title", *form.Title); err != nil {
			return nil, "", err
		}
	}
	if form.Description != nil {
		if err := mw.WriteField("description", *form.Description); err != nil {
			return nil, "", err
		}
	}
	if form.CategoryID != nil {
		if err := mw.WriteField("category_id", strconv.FormatInt(*form.CategoryID, 10)); err != nil {
			return nil, "", err
		}
	}

	if form.ImagePath != "" {
		if err := writeImagePart(mw, form.ImagePath); err != nil {
			return nil, "", err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

func writeImagePart(mw *multipart.Writer, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	mtype := mimetype.Detect(data)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, escapeQuotes(filepath.Base(path))))
	hdr.Set("Content-Type", mtype.String())

	part, err := mw.CreatePart(hdr)
	if err != nil {
		return err
	}
	_, err = part.Write(data)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// DefaultImagesPath - префикс картинок на сервере по умолчанию (images.url_prefix).
const DefaultImagesPath = "/images"

// ImagesBaseURL собирает базовый URL картинок из адреса сервера и префикса.
//
// Пустой serverURL заменяется на DefaultBaseURL, пустой prefix - на DefaultImagesPath.
func ImagesBaseURL(serverURL, prefix string) string {
	if strings.TrimSpace(serverURL) == "" {
		serverURL = DefaultBaseURL
	}
	prefix = strings.Trim(strings.TrimSpace(prefix), "/")
	if prefix == "" {
		prefix = strings.Trim(DefaultImagesPath, "/")
	}
	return strings.TrimRight(serverURL, "/") + "/" + prefix
}

// ResolveImageSrc превращает значение поля image в URL.
//
// Абсолютные http(s) и data:image/ ссылки возвращаются как есть,
// имя файла дополняется до <imagesBaseURL>/<name>. Пустое значение - "".
// Пустой imagesBaseURL означает ImagesBaseURL(DefaultBaseURL, DefaultImagesPath).
func ResolveImageSrc(imagesBaseURL, image string) string {
	image = strings.TrimSpace(image)
	if image == "" {
		return ""
	}
	lower := strings.ToLower(image)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:image/") {
		return image
	}
	if strings.TrimSpace(imagesBaseURL) == "" {
		imagesBaseURL = ImagesBaseURL("", "")
	}
	return strings.TrimRight(imagesBaseURL, "/") + "/" + url.PathEscape(image)
}
