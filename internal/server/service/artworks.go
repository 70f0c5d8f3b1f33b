package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/images"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/logger"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// Лимиты полей работы.
const (
	MaxTitleLen       = 255
	MaxDescriptionLen = 5000
)

// Сообщения ошибок валидации картинки.
const (
	MsgImageType     = "Only image files are allowed"
	MsgImageTooLarge = "Image is too large"
)

// CreateArtworkInput - данные для создания работы.
type CreateArtworkInput struct {
	Title       string
	Description *string
	CategoryID  *int64
	Image       *images.Upload
}

// UpdateArtworkInput - частичное обновление.
//
// nil - поле не меняется. Пустой Description очищает описание.
type UpdateArtworkInput struct {
	Title       *string
	Description *string
	CategoryID  *int64
	Image       *images.Upload
}

// ArtworksService - работы пользователя.
//
// Все операции привязаны к ownerID из токена. Файл картинки и строка в БД
// пишутся независимо, поэтому сервис подчищает файлы сам:
//   - insert/update не удался: удаляется только что сохранённый файл
//   - update заменил картинку или delete удалил строку: удаляется старый файл
type ArtworksService struct {
	repo   ArtworksRepo
	images ImageIntake
	log    *logger.HTTPLogger
}

// NewArtworksService создаёт сервис. intake может быть nil, тогда загрузка картинок недоступна.
func NewArtworksService(repo ArtworksRepo, intake ImageIntake) *ArtworksService {
	return &ArtworksService{repo: repo, images: intake, log: logger.Nop()}
}

// SetLogger задаёт логгер для ошибок фоновой уборки файлов.
func (s *ArtworksService) SetLogger(l *logger.HTTPLogger) {
	if l != nil {
		s.log = l
	}
}

// List возвращает работы владельца, новые первыми. categoryID - необязательный фильтр.
func (s *ArtworksService) List(ctx context.Context, ownerID int64, categoryID *int64) ([]models.Artwork, error) {
	if ownerID <= 0 {
		return nil, serr.ErrUnauthorized
	}
	if categoryID != nil && *categoryID <= 0 {
		return nil, serr.NewValidationError("category_id", "Invalid category id")
	}

	list, err := s.repo.List(ctx, ownerID, categoryID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []models.Artwork{}
	}
	return list, nil
}

// Get возвращает работу владельца. Чужая или отсутствующая - ErrNotFound.
func (s *ArtworksService) Get(ctx context.Context, ownerID, id int64) (models.Artwork, error) {
	if ownerID <= 0 {
		return models.Artwork{}, serr.ErrUnauthorized
	}
	if id <= 0 {
		return models.Artwork{}, serr.ErrNotFound
	}
	return s.repo.Get(ctx, ownerID, id)
}

// Create валидирует поля, принимает картинку (если есть) и создаёт строку.
//
// Валидация полей идёт до записи файла: на невалидном запросе на диск ничего не попадает.
func (s *ArtworksService) Create(ctx context.Context, ownerID int64, in CreateArtworkInput) (models.Artwork, error) {
	if ownerID <= 0 {
		return models.Artwork{}, serr.ErrUnauthorized
	}

	verr := &serr.ValidationError{}
	title := validateTitle(verr, in.Title)
	desc := validateDescription(verr, in.Description)
	validateCategory(verr, in.CategoryID)
	if !verr.Empty() {
		return models.Artwork{}, verr
	}

	rec := NewArtwork{Title: title, Description: desc, CategoryID: in.CategoryID}

	if in.Image != nil {
		name, err := s.accept(ctx, *in.Image)
		if err != nil {
			return models.Artwork{}, err
		}
		rec.Image = &name
	}

	art, err := s.repo.Create(ctx, ownerID, rec)
	if err != nil {
		if rec.Image != nil {
			s.discard(ctx, *rec.Image)
		}
		return models.Artwork{}, err
	}
	return art, nil
}

// Update меняет переданные поля работы.
//
// Строка обновляется одним условным запросом (id AND owner). Ноль строк -
// ErrNotFound, без отдельной проверки существования.
func (s *ArtworksService) Update(ctx context.Context, ownerID, id int64, in UpdateArtworkInput) error {
	if ownerID <= 0 {
		return serr.ErrUnauthorized
	}
	if id <= 0 {
		return serr.ErrNotFound
	}

	verr := &serr.ValidationError{}
	var patch ArtworkPatch
	if in.Title != nil {
		title := validateTitle(verr, *in.Title)
		patch.Title = &title
	}
	if in.Description != nil {
		patch.DescriptionSet = true
		patch.Description = validateDescription(verr, in.Description)
	}
	if in.CategoryID != nil {
		validateCategory(verr, in.CategoryID)
		patch.CategoryID = in.CategoryID
	}
	if patch.Empty() && in.Image == nil {
		verr.Add("body", "Nothing to update")
	}
	if !verr.Empty() {
		return verr
	}

	if in.Image != nil {
		name, err := s.accept(ctx, *in.Image)
		if err != nil {
			return err
		}
		patch.Image = &name
	}

	prev, err := s.repo.Update(ctx, ownerID, id, patch)
	if err != nil {
		if patch.Image != nil {
			s.discard(ctx, *patch.Image)
		}
		return err
	}

	if patch.Image != nil && prev != nil && *prev != *patch.Image {
		s.discard(ctx, *prev)
	}
	return nil
}

// Delete удаляет работу владельца и её картинку.
// Повторный delete того же id - ErrNotFound.
func (s *ArtworksService) Delete(ctx context.Context, ownerID, id int64) error {
	if ownerID <= 0 {
		return serr.ErrUnauthorized
	}
	if id <= 0 {
		return serr.ErrNotFound
	}

	image, err := s.repo.Delete(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if image != nil {
		s.discard(ctx, *image)
	}
	return nil
}

func (s *ArtworksService) accept(ctx context.Context, up images.Upload) (string, error) {
	if s.images == nil {
		return "", serr.NewValidationError("image", "Image uploads are disabled")
	}

	name, err := s.images.Accept(ctx, up)
	switch {
	case err == nil:
		return name, nil
	case errors.Is(err, serr.ErrImageType):
		return "", serr.NewValidationError("image", MsgImageType)
	case errors.Is(err, serr.ErrImageTooLarge):
		return "", serr.NewValidationError("image", MsgImageTooLarge)
	default:
		return "", err
	}
}

// discard - уборка файла. Ошибку только логируем: ответ клиенту уже определён.
func (s *ArtworksService) discard(ctx context.Context, name string) {
	if s.images == nil || name == "" {
		return
	}
	if err := s.images.Discard(ctx, name); err != nil {
		s.log.Warn("discard image", zap.String("image", name), zap.Error(err))
	}
}

func validateTitle(verr *serr.ValidationError, title string) string {
	title = strings.TrimSpace(title)
	switch {
	case title == "":
		verr.Add("title", "Title is required")
	case utf8.RuneCountInString(title) > MaxTitleLen:
		verr.Add("title", "Title is too long")
	}
	return title
}

// validateDescription: пустое описание превращается в NULL.
func validateDescription(verr *serr.ValidationError, desc *string) *string {
	if desc == nil {
		return nil
	}
	if strings.TrimSpace(*desc) == "" {
		return nil
	}
	if utf8.RuneCountInString(*desc) > MaxDescriptionLen {
		verr.Add("description", "Description is too long")
	}
	return desc
}

func validateCategory(verr *serr.ValidationError, id *int64) {
	if id != nil && *id <= 0 {
		verr.Add("category_id", "Invalid category id")
	}
}
