package tests

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/IvanChernomyrdin/go-artfolio/internal/server/repository"
	serr "github.com/IvanChernomyrdin/go-artfolio/internal/shared/errors"
)

func TestCategoriesRepository_List_OK(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCategoriesRepository(db)

	mock.ExpectQuery(`SELECT id, name FROM categories ORDER BY name`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
			AddRow(int64(5), "Digital").
			AddRow(int64(2), "Drawing"))

	list, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "Digital", list[0].Name)
	require.EqualValues(t, 2, list[1].ID)
}

func TestCategoriesRepository_List_DBError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCategoriesRepository(db)

	mock.ExpectQuery(`FROM categories`).WillReturnError(sql.ErrConnDone)

	_, err = repo.List(context.Background())
	require.ErrorIs(t, err, serr.ErrInternal)
}

// ping базы
func TestHealthRepository_Ping(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewHealthRepository(db)
	require.NoError(t, repo.Ping(context.Background()))
}

// закрытая база
func TestHealthRepository_Ping_Closed(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	db.Close()

	repo := repository.NewHealthRepository(db)
	require.ErrorIs(t, repo.Ping(context.Background()), serr.ErrInternal)
}
