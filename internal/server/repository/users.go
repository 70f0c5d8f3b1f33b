// Package repository содержит реализации слоя доступа к данным (Repository layer).
//
// Репозитории инкапсулируют работу с БД и не содержат бизнес-логики.
// Каждый метод - ровно один SQL-запрос.
// Все ошибки приводятся к доменным ошибкам из internal/shared/errors.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"

	smodels "github.com/IvanChernomyrdin/go-artfolio/internal/server/models"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
)

// коды ошибок PostgreSQL, которые отличаем от прочих
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type UsersRepository struct {
	db *sql.DB
}

func NewUsersRepository(db *sql.DB) *UsersRepository {
	return &UsersRepository{db: db}
}

// Create сохраняет пользователя. email ожидается уже нормализованным (lower-case).
//
// Уникальность проверяет индекс по lower(email): дубль - ErrAlreadyExists.
func (r *UsersRepository) Create(ctx context.Context, email, passwordHash string) (int64, error) {
	var id int64

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (email, password_hash)
		 VALUES ($1,$2)
		 RETURNING id`,
		email, passwordHash,
	).Scan(&id)

	if err != nil {
		if pgCode(err) == pgUniqueViolation {
			return 0, serr.ErrAlreadyExists
		}
		return 0, internal(err)
	}

	return id, nil
}

// GetByEmail ищет пользователя без учёта регистра.
func (r *UsersRepository) GetByEmail(ctx context.Context, email string) (smodels.User, error) {
	var u smodels.User

	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, password_hash, created_at FROM users WHERE lower(email) = lower($1)`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return smodels.User{}, serr.ErrNotFound
		}
		return smodels.User{}, internal(err)
	}

	return u, nil
}

// pgCode достаёт SQLSTATE из ошибки драйвера.
func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func internal(err error) error {
	return fmt.Errorf("%w: %v", serr.ErrInternal, err)
}
