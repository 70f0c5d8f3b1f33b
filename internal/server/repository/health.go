package repository

import (
	"context"
	"database/sql"
)

// HealthRepository проверяет, что база отвечает.
type HealthRepository struct {
	db *sql.DB
}

func NewHealthRepository(db *sql.DB) *HealthRepository {
	return &HealthRepository{db: db}
}

func (r *HealthRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return internal(err)
	}
	return nil
}
