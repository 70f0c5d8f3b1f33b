package repository

import (
	"context"
	"database/sql"

	"github.com/IvanChernomyrdin/go-artfolio/internal/shared/models"
)

// CategoriesRepository - справочник категорий. Только чтение, наполняется миграцией.
type CategoriesRepository struct {
	db *sql.DB
}

func NewCategoriesRepository(db *sql.DB) *CategoriesRepository {
	return &CategoriesRepository{db: db}
}

// List возвращает все категории по алфавиту.
func (r *CategoriesRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, internal(err)
	}
	defer rows.Close()

	result := make([]models.Category, 0)
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, internal(err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, internal(err)
	}
	return result, nil
}
