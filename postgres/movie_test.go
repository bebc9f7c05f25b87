package postgres_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"filmes/errs"
	"filmes/movie"
	"filmes/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	pgdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var movieColumns = []string{"id", "nome", "genero", "diretor", "ano_lancamento", "nota_imdb"}

func newMockRepository(t *testing.T) (*postgres.MovieRepository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(pgdriver.New(pgdriver.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return postgres.NewMovieRepository(db), mock
}

func matrixMovie() movie.Movie {
	return movie.Movie{
		Name:        "Matrix",
		Genre:       "Sci-Fi",
		Director:    "Wachowski",
		ReleaseYear: 1999,
		IMDBRating:  9,
	}
}

func TestMovieRepository_AllMovies(t *testing.T) {
	t.Run("returns every row", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		id := uuid.NewString()
		mock.ExpectQuery(`SELECT \* FROM "filmes"`).
			WillReturnRows(sqlmock.NewRows(movieColumns).AddRow(id, "Matrix", "Sci-Fi", "Wachowski", 1999, 9))

		movies, err := repo.AllMovies(context.Background())

		require.NoError(t, err)
		want := matrixMovie()
		want.ID = id
		assert.Equal(t, []movie.Movie{want}, movies)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps query errors as storage errors", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectQuery(`SELECT \* FROM "filmes"`).WillReturnError(sql.ErrConnDone)

		_, err := repo.AllMovies(context.Background())

		assert.Equal(t, errs.ESTORAGE, errs.ErrorCode(err))
		assert.True(t, errors.Is(err, sql.ErrConnDone))
	})
}

func TestMovieRepository_MoviesByID(t *testing.T) {
	t.Run("filters by id", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		id := uuid.NewString()
		mock.ExpectQuery(`SELECT \* FROM "filmes" WHERE id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(movieColumns))

		movies, err := repo.MoviesByID(context.Background(), id)

		require.NoError(t, err)
		assert.Empty(t, movies)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects ids that are not uuids", func(t *testing.T) {
		repo, mock := newMockRepository(t)

		_, err := repo.MoviesByID(context.Background(), "5f1d7f1b2c3a4b5c6d7e8f90")

		assert.ErrorIs(t, err, movie.ErrInvalidID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestMovieRepository_SearchMovies(t *testing.T) {
	repo, mock := newMockRepository(t)
	mock.ExpectQuery(`SELECT \* FROM "filmes" WHERE nome ILIKE \$1`).
		WithArgs(`%100\%\_real%`).
		WillReturnRows(sqlmock.NewRows(movieColumns))

	_, err := repo.SearchMovies(context.Background(), "100%_real")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovieRepository_CreateMovie(t *testing.T) {
	t.Run("inserts with a generated uuid", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(`INSERT INTO "filmes"`).
			WithArgs(sqlmock.AnyArg(), "Matrix", "Sci-Fi", "Wachowski", 1999, 9).
			WillReturnResult(sqlmock.NewResult(0, 1))

		result, err := repo.CreateMovie(context.Background(), matrixMovie())

		require.NoError(t, err)
		assert.True(t, result.Acknowledged)
		_, parseErr := uuid.Parse(result.InsertedID)
		assert.NoError(t, parseErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps insert errors as storage errors", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		mock.ExpectExec(`INSERT INTO "filmes"`).WillReturnError(errors.New("insert failed"))

		_, err := repo.CreateMovie(context.Background(), matrixMovie())

		assert.Equal(t, errs.ESTORAGE, errs.ErrorCode(err))
		detail, ok := errs.ErrorDetail(err).(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "insert failed", detail["message"])
	})
}

func TestMovieRepository_UpdateMovie(t *testing.T) {
	t.Run("reports matched rows", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		m := matrixMovie()
		m.ID = uuid.NewString()
		mock.ExpectExec(`UPDATE "filmes" SET .* WHERE id = \$6`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		result, err := repo.UpdateMovie(context.Background(), m)

		require.NoError(t, err)
		assert.Equal(t, int64(1), result.MatchedCount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero matches is not an error", func(t *testing.T) {
		repo, mock := newMockRepository(t)
		m := matrixMovie()
		m.ID = uuid.NewString()
		mock.ExpectExec(`UPDATE "filmes" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		result, err := repo.UpdateMovie(context.Background(), m)

		require.NoError(t, err)
		assert.Zero(t, result.MatchedCount)
	})
}

func TestMovieRepository_DeleteMovie(t *testing.T) {
	repo, mock := newMockRepository(t)
	id := uuid.NewString()
	mock.ExpectExec(`DELETE FROM "filmes" WHERE id = \$1`).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	result, err := repo.DeleteMovie(context.Background(), id)

	require.NoError(t, err)
	assert.Zero(t, result.DeletedCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
