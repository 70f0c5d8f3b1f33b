package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/service"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// ArtworksRepository - работы пользователей (PostgreSQL).
//
// Каждый запрос фильтрует по owner_user_id: чужая строка для вызывающего
// просто не существует.
type ArtworksRepository struct {
	db *sql.DB
}

// NewArtworksRepository создаёт новый экземпляр ArtworksRepository.
func NewArtworksRepository(db *sql.DB) *ArtworksRepository {
	return &ArtworksRepository{db: db}
}

const artworkColumns = `id, title, description, image, category_id, owner_user_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArtwork(s rowScanner) (models.Artwork, error) {
	var a models.Artwork
	err := s.Scan(
		&a.ID,
		&a.Title,
		&a.Description,
		&a.Image,
		&a.CategoryID,
		&a.OwnerUserID,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

// List возвращает работы владельца, новые первыми.
// categoryID == nil - без фильтра по категории.
func (r *ArtworksRepository) List(ctx context.Context, ownerID int64, categoryID *int64) ([]models.Artwork, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+artworkColumns+`
		FROM artworks
		WHERE owner_user_id = $1
		  AND ($2::bigint IS NULL OR category_id = $2)
		ORDER BY id DESC
	`, ownerID, categoryID)
	if err != nil {
		return nil, internal(err)
	}
	defer rows.Close()

	result := make([]models.Artwork, 0)
	for rows.Next() {
		a, err := scanArtwork(rows)
		if err != nil {
			return nil, internal(err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, internal(err)
	}

	return result, nil
}

// Get возвращает одну работу владельца.
//
// Ошибки:
//   - ErrNotFound - строки нет или она чужая
//   - ErrInternal - ошибка базы данных
func (r *ArtworksRepository) Get(ctx context.Context, ownerID, id int64) (models.Artwork, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+artworkColumns+`
		FROM artworks
		WHERE id = $1 AND owner_user_id = $2
	`, id, ownerID)

	a, err := scanArtwork(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Artwork{}, serr.ErrNotFound
		}
		return models.Artwork{}, internal(err)
	}
	return a, nil
}

// Create вставляет работу и возвращает её со всеми полями из БД.
//
// Несуществующая категория (нарушение FK) - ошибка валидации поля category_id.
func (r *ArtworksRepository) Create(ctx context.Context, ownerID int64, in service.NewArtwork) (models.Artwork, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO artworks (title, description, image, category_id, owner_user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+artworkColumns,
		in.Title,
		in.Description,
		in.Image,
		in.CategoryID,
		ownerID,
	)

	a, err := scanArtwork(row)
	if err != nil {
		if pgCode(err) == pgForeignKeyViolation {
			return models.Artwork{}, serr.NewValidationError("category_id", "Category does not exist")
		}
		return models.Artwork{}, internal(err)
	}
	return a, nil
}

// Update применяет патч одним условным запросом.
//
// CTE блокирует строку владельца и отдаёт её старую картинку; если строки
// нет или она чужая, UPDATE ничего не затрагивает и возвращается ErrNotFound.
// Проверка владения и запись неразделимы.
func (r *ArtworksRepository) Update(ctx context.Context, ownerID, id int64, p service.ArtworkPatch) (*string, error) {
	var prevImage *string

	err := r.db.QueryRowContext(ctx, `
		WITH prev AS (
			SELECT id, image
			FROM artworks
			WHERE id = $1 AND owner_user_id = $2
			FOR UPDATE
		)
		UPDATE artworks AS a
		SET title       = COALESCE($3, a.title),
		    description = CASE WHEN $4::boolean THEN $5 ELSE a.description END,
		    image       = COALESCE($6, a.image),
		    category_id = COALESCE($7, a.category_id),
		    updated_at  = now()
		FROM prev
		WHERE a.id = prev.id
		RETURNING prev.image
	`,
		id,
		ownerID,
		p.Title,
		p.DescriptionSet,
		p.Description,
		p.Image,
		p.CategoryID,
	).Scan(&prevImage)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, serr.ErrNotFound
		}
		if pgCode(err) == pgForeignKeyViolation {
			return nil, serr.NewValidationError("category_id", "Category does not exist")
		}
		return nil, internal(err)
	}
	return prevImage, nil
}

// Delete удаляет работу владельца и возвращает имя её картинки.
// Повторный вызов для того же id - ErrNotFound.
func (r *ArtworksRepository) Delete(ctx context.Context, ownerID, id int64) (*string, error) {
	var image *string

	err := r.db.QueryRowContext(ctx, `
		DELETE FROM artworks
		WHERE id = $1 AND owner_user_id = $2
		RETURNING image
	`, id, ownerID).Scan(&image)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, serr.ErrNotFound
		}
		return nil, internal(err)
	}
	return image, nil
}

var _ service.ArtworksRepo = (*ArtworksRepository)(nil)
