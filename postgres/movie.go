package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"filmes/errs"
	"filmes/movie"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// MovieModel represents the database model for movies
type MovieModel struct {
	ID          string `gorm:"primaryKey;type:uuid"`
	Name        string `gorm:"column:nome;not null"`
	Genre       string `gorm:"column:genero;not null"`
	Director    string `gorm:"column:diretor;not null"`
	ReleaseYear int    `gorm:"column:ano_lancamento;not null"`
	IMDBRating  int    `gorm:"column:nota_imdb;not null"`
}

// TableName specifies the table name for GORM
func (MovieModel) TableName() string {
	return "filmes"
}

func (m MovieModel) toMovie() movie.Movie {
	return movie.Movie{
		ID:          m.ID,
		Name:        m.Name,
		Genre:       m.Genre,
		Director:    m.Director,
		ReleaseYear: m.ReleaseYear,
		IMDBRating:  m.IMDBRating,
	}
}

// MovieRepository implements movie.Repository interface on PostgreSQL.
// Ids are UUIDs generated on insert.
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

func (r *MovieRepository) AllMovies(ctx context.Context) ([]movie.Movie, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *MovieRepository) MoviesByID(ctx context.Context, id string) ([]movie.Movie, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}
	return r.find(r.db.WithContext(ctx).Where("id = ?", id))
}

// SearchMovies matches name as a case-insensitive substring of nome.
func (r *MovieRepository) SearchMovies(ctx context.Context, name string) ([]movie.Movie, error) {
	return r.find(r.db.WithContext(ctx).Where("nome ILIKE ?", "%"+escapeLike(name)+"%"))
}

func (r *MovieRepository) CreateMovie(ctx context.Context, m movie.Movie) (movie.InsertResult, error) {
	model := MovieModel{
		ID:          uuid.NewString(),
		Name:        m.Name,
		Genre:       m.Genre,
		Director:    m.Director,
		ReleaseYear: m.ReleaseYear,
		IMDBRating:  m.IMDBRating,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return movie.InsertResult{}, storageError(err)
	}
	return movie.InsertResult{Acknowledged: true, InsertedID: model.ID}, nil
}

func (r *MovieRepository) UpdateMovie(ctx context.Context, m movie.Movie) (movie.UpdateResult, error) {
	if err := validateID(m.ID); err != nil {
		return movie.UpdateResult{}, err
	}

	res := r.db.WithContext(ctx).
		Model(&MovieModel{}).
		Where("id = ?", m.ID).
		Updates(map[string]interface{}{
			"nome":           m.Name,
			"genero":         m.Genre,
			"diretor":        m.Director,
			"ano_lancamento": m.ReleaseYear,
			"nota_imdb":      m.IMDBRating,
		})
	if res.Error != nil {
		return movie.UpdateResult{}, storageError(res.Error)
	}

	// PostgreSQL reports matched rows for UPDATE, modified or not.
	return movie.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.RowsAffected,
		ModifiedCount: res.RowsAffected,
	}, nil
}

func (r *MovieRepository) DeleteMovie(ctx context.Context, id string) (movie.DeleteResult, error) {
	if err := validateID(id); err != nil {
		return movie.DeleteResult{}, err
	}

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&MovieModel{})
	if res.Error != nil {
		return movie.DeleteResult{}, storageError(res.Error)
	}
	return movie.DeleteResult{Acknowledged: true, DeletedCount: res.RowsAffected}, nil
}

func (r *MovieRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *MovieRepository) find(tx *gorm.DB) ([]movie.Movie, error) {
	var models []MovieModel
	if err := tx.Find(&models).Error; err != nil {
		return nil, storageError(err)
	}

	movies := make([]movie.Movie, len(models))
	for i, model := range models {
		movies[i] = model.toMovie()
	}
	return movies, nil
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", movie.ErrInvalidID, id)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func storageError(err error) error {
	detail := map[string]interface{}{
		"message": err.Error(),
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		detail["code"] = pgErr.Code
		detail["message"] = pgErr.Message
		if pgErr.Detail != "" {
			detail["detail"] = pgErr.Detail
		}
		if pgErr.ConstraintName != "" {
			detail["constraint"] = pgErr.ConstraintName
		}
	}

	return errs.Wrap(errs.ESTORAGE, err, detail)
}
