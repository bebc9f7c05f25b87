package movie

import "context"

type Service interface {
	ListMovies(ctx context.Context) ([]Movie, error)
	GetMovie(ctx context.Context, id string) ([]Movie, error)
	SearchMovies(ctx context.Context, name string) ([]Movie, error)
	CreateMovie(ctx context.Context, in Input) (InsertResult, error)
	UpdateMovie(ctx context.Context, in Input) (UpdateResult, error)
	DeleteMovie(ctx context.Context, id string) (DeleteResult, error)
}

// Repository is implemented by each storage backend. Backends return
// errs.ESTORAGE errors for failures reported by the database, including ids
// that are not in the backend's native format.
type Repository interface {
	AllMovies(ctx context.Context) ([]Movie, error)
	MoviesByID(ctx context.Context, id string) ([]Movie, error)
	SearchMovies(ctx context.Context, name string) ([]Movie, error)
	CreateMovie(ctx context.Context, m Movie) (InsertResult, error)
	UpdateMovie(ctx context.Context, m Movie) (UpdateResult, error)
	DeleteMovie(ctx context.Context, id string) (DeleteResult, error)
}

type Usecase struct {
	r Repository
}

func NewUsecase(r Repository) *Usecase {
	return &Usecase{r: r}
}

func (uc *Usecase) ListMovies(ctx context.Context) ([]Movie, error) {
	return nonNil(uc.r.AllMovies(ctx))
}

func (uc *Usecase) GetMovie(ctx context.Context, id string) ([]Movie, error) {
	return nonNil(uc.r.MoviesByID(ctx, id))
}

func (uc *Usecase) SearchMovies(ctx context.Context, name string) ([]Movie, error) {
	return nonNil(uc.r.SearchMovies(ctx, name))
}

func (uc *Usecase) CreateMovie(ctx context.Context, in Input) (InsertResult, error) {
	if err := in.Validate(CreateRules); err != nil {
		return InsertResult{}, err
	}
	m := in.Movie()
	m.ID = ""
	return uc.r.CreateMovie(ctx, m)
}

// UpdateMovie replaces every field of the movie identified by in.ID.
func (uc *Usecase) UpdateMovie(ctx context.Context, in Input) (UpdateResult, error) {
	if err := in.Validate(UpdateRules); err != nil {
		return UpdateResult{}, err
	}
	return uc.r.UpdateMovie(ctx, in.Movie())
}

func (uc *Usecase) DeleteMovie(ctx context.Context, id string) (DeleteResult, error) {
	return uc.r.DeleteMovie(ctx, id)
}

// nonNil makes empty results encode as [] rather than null.
func nonNil(movies []Movie, err error) ([]Movie, error) {
	if err != nil {
		return nil, err
	}
	if movies == nil {
		movies = []Movie{}
	}
	return movies, nil
}
