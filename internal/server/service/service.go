// Package service содержит бизнес-логику приложения (artfolio).
// Это прослойка между HTTP-обработчиками (api) и хранилищем данных (repository).
//
// Сервисы валидируют вход, решают, что и в каком порядке писать,
// и ничего не знают про HTTP.
package service

import (
	"context"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/config"
	"github.com/IvanChernomyrdin/go-artfolio/internal/server/images"
	smodels "github.com/IvanChernomyrdin/go-artfolio/internal/server/models"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

//go:generate mockgen -source=service.go -destination=mocks/mock_service.go -package=mocks

// Repositories - набор интерфейсов, которые сервисный слой ожидает от слоя repository.
type Repositories struct {
	Users      UsersRepo
	Artworks   ArtworksRepo
	Categories CategoriesRepo
	Health     HealthRepo
}

// Services - агрегатор всех сервисов приложения.
type Services struct {
	Auth       *AuthService
	Artworks   *ArtworksService
	Categories *CategoriesService
	Health     HealthRepo
}

// NewServices собирает все сервисы приложения.
//
// cfg нужен AuthService (параметры хэширования пароля),
// tokens выпускает токены при входе, intake принимает картинки работ.
func NewServices(repos Repositories, cfg *config.Config, tokens TokenIssuer, intake ImageIntake) *Services {
	return &Services{
		Auth:       NewAuthService(repos.Users, tokens, cfg),
		Artworks:   NewArtworksService(repos.Artworks, intake),
		Categories: NewCategoriesService(repos.Categories),
		Health:     repos.Health,
	}
}

// HealthRepo - минимально нужное для health-check.
type HealthRepo interface {
	Ping(ctx context.Context) error
}

// UsersRepo - репозиторий пользователей (нужен для регистрации и входа).
type UsersRepo interface {
	Create(ctx context.Context, email, passwordHash string) (int64, error)
	GetByEmail(ctx context.Context, email string) (smodels.User, error)
}

// ArtworksRepo - репозиторий работ.
//
// Каждый метод - один SQL-запрос с фильтром по owner_user_id.
// Чужая строка неотличима от отсутствующей: serr.ErrNotFound.
type ArtworksRepo interface {
	List(ctx context.Context, ownerID int64, categoryID *int64) ([]models.Artwork, error)
	Get(ctx context.Context, ownerID, id int64) (models.Artwork, error)
	Create(ctx context.Context, ownerID int64, in NewArtwork) (models.Artwork, error)
	// Update возвращает имя картинки, которое было у строки до обновления.
	Update(ctx context.Context, ownerID, id int64, patch ArtworkPatch) (prevImage *string, err error)
	// Delete возвращает имя картинки удалённой строки.
	Delete(ctx context.Context, ownerID, id int64) (image *string, err error)
}

// CategoriesRepo - справочник категорий.
type CategoriesRepo interface {
	List(ctx context.Context) ([]models.Category, error)
}

// TokenIssuer выпускает токен доступа. Реализуется crypto.TokenService.
type TokenIssuer interface {
	Issue(userID int64) (string, error)
}

// ImageIntake принимает и удаляет файлы картинок. Реализуется images.Intake.
type ImageIntake interface {
	Accept(ctx context.Context, up images.Upload) (string, error)
	Discard(ctx context.Context, name string) error
}

// NewArtwork - уже провалидированные поля новой работы.
type NewArtwork struct {
	Title       string
	Description *string
	Image       *string
	CategoryID  *int64
}

// ArtworkPatch - частичное обновление работы.
//
// nil означает "не менять". Для description отдельный флаг:
// DescriptionSet=true и Description=nil очищают описание.
type ArtworkPatch struct {
	Title          *string
	DescriptionSet bool
	Description    *string
	Image          *string
	CategoryID     *int64
}

// Empty - в патче нет ни одного поля.
func (p ArtworkPatch) Empty() bool {
	return p.Title == nil && !p.DescriptionSet && p.Image == nil && p.CategoryID == nil
}
