// nolint: funlen
package httpserver_test

import (
	"errors"
	"net/http"
	"testing"

	"filmes/errs"
	"filmes/httpserver"
	"filmes/movie"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var matrix = movie.Movie{
	ID:          "665f1c2e8b3e4a0012345678",
	Name:        "Matrix",
	Genre:       "Sci-Fi",
	Director:    "Wachowski",
	ReleaseYear: 1999,
	IMDBRating:  9,
}

const matrixJSON = `{"_id":"665f1c2e8b3e4a0012345678","nome":"Matrix","genero":"Sci-Fi",` +
	`"diretor":"Wachowski","anoLancamento":1999,"notaIMDB":9}`

func newMovieServer(t *testing.T) (*httpserver.Server, *MockMovieService) {
	t.Helper()
	svc := new(MockMovieService)
	return mustCreateServer(t, httpserver.WithMovieService(svc)), svc
}

func TestListMovies(t *testing.T) {
	t.Run("returns every movie", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("ListMovies", mockCtx).Return([]movie.Movie{matrix}, nil).Once()

		rec := makeRequest(server, http.MethodGet, "/filmes", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "["+matrixJSON+"]", rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("empty collection is an empty array", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("ListMovies", mockCtx).Return([]movie.Movie{}, nil).Once()

		rec := makeRequest(server, http.MethodGet, "/filmes", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("storage failure returns 400 with detail", func(t *testing.T) {
		server, svc := newMovieServer(t)
		storageErr := errs.Wrap(errs.ESTORAGE, errors.New("not primary"), map[string]interface{}{
			"message":  "not primary",
			"code":     10107,
			"codeName": "NotWritablePrimary",
		})
		svc.On("ListMovies", mockCtx).Return([]movie.Movie(nil), storageErr).Once()

		rec := makeRequest(server, http.MethodGet, "/filmes", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"message":"not primary","code":10107,"codeName":"NotWritablePrimary"}`, rec.Body.String())
	})

	t.Run("unexpected failure returns 500", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("ListMovies", mockCtx).Return([]movie.Movie(nil), errors.New("boom")).Once()

		rec := makeRequest(server, http.MethodGet, "/filmes", nil)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"boom"}`, rec.Body.String())
	})
}

func TestGetMovie(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("GetMovie", mockCtx, matrix.ID).Return([]movie.Movie{matrix}, nil).Once()

		rec := makeRequest(server, http.MethodGet, "/filmes/"+matrix.ID, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "["+matrixJSON+"]", rec.Body.String())
	})

	t.Run("unknown id returns empty array", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("GetMovie", mockCtx, "665f1c2e8b3e4a00ffffffff").Return([]movie.Movie{}, nil).Once()

		rec := makeRequest(server, http.MethodGet, "/filmes/665f1c2e8b3e4a00ffffffff", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("GetMovie", mockCtx, "abc").Return([]movie.Movie(nil), movie.ErrInvalidID).Once()

		rec := makeRequest(server, http.MethodGet, "/filmes/abc", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"invalid movie id"}`, rec.Body.String())
	})
}

func TestSearchMovies(t *testing.T) {
	t.Run("passes the decoded name", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("SearchMovies", mockCtx, "the matrix").Return([]movie.Movie{matrix}, nil).Once()

		rec := makeRequest(server, http.MethodGet, "/filmes/nome/the%20matrix", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "["+matrixJSON+"]", rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("escaped slash", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("SearchMovies", mockCtx, "AC/DC").Return([]movie.Movie{}, nil).Once()

		rec := makeRequest(server, http.MethodGet, "/filmes/nome/AC%2FDC", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
		svc.AssertExpectations(t)
	})
}

func TestCreateMovie(t *testing.T) {
	t.Run("returns 201 with the insert result", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("CreateMovie", mockCtx, mock.MatchedBy(func(in movie.Input) bool {
			return in.ID == "" && in.Movie() == movie.Movie{
				Name: "Matrix", Genre: "Sci-Fi", Director: "Wachowski", ReleaseYear: 1999, IMDBRating: 9,
			}
		})).
			Return(movie.InsertResult{Acknowledged: true, InsertedID: matrix.ID}, nil).Once()

		rec := serve(server, newJSONRequest(http.MethodPost, "/filmes",
			`{"nome":"Matrix","genero":"Sci-Fi","diretor":"Wachowski","anoLancamento":1999,"notaIMDB":9}`))

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"acknowledged":true,"insertedId":"665f1c2e8b3e4a0012345678"}`, rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("validation failure returns the errors array", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("CreateMovie", mockCtx, mock.AnythingOfType("movie.Input")).
			Return(movie.InsertResult{}, movie.Input{IMDBRating: "abc"}.Validate(movie.CreateRules)).Once()

		rec := serve(server, newJSONRequest(http.MethodPost, "/filmes", `{"notaIMDB":"abc"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body movie.ValidationError
		decodeBody(t, rec, &body)
		assert.Len(t, body.Errors, 6)
		assert.True(t, body.HasField("nome"))
		assert.Equal(t, "body", body.Errors[0].Location)
	})

	t.Run("malformed json returns 400", func(t *testing.T) {
		server, svc := newMovieServer(t)

		rec := serve(server, newJSONRequest(http.MethodPost, "/filmes", `{"nome":`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body map[string]string
		decodeBody(t, rec, &body)
		assert.NotEmpty(t, body["error"])
		svc.AssertNotCalled(t, "CreateMovie", mock.Anything, mock.Anything)
	})

	t.Run("storage failure returns 400 with detail", func(t *testing.T) {
		server, svc := newMovieServer(t)
		storageErr := errs.Wrap(errs.ESTORAGE, errors.New("duplicate key"), map[string]interface{}{
			"index": 0, "code": 11000, "message": "duplicate key",
		})
		svc.On("CreateMovie", mockCtx, mock.AnythingOfType("movie.Input")).
			Return(movie.InsertResult{}, storageErr).Once()

		rec := serve(server, newJSONRequest(http.MethodPost, "/filmes", matrixJSON))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"index":0,"code":11000,"message":"duplicate key"}`, rec.Body.String())
	})
}

func TestUpdateMovie(t *testing.T) {
	t.Run("returns 202 with the update result", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("UpdateMovie", mockCtx, mock.MatchedBy(func(in movie.Input) bool {
			return in.ID == matrix.ID && in.Name == "Matrix"
		})).Return(movie.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil).Once()

		rec := serve(server, newJSONRequest(http.MethodPut, "/filmes", matrixJSON))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t,
			`{"acknowledged":true,"matchedCount":1,"modifiedCount":1,"upsertedCount":0}`,
			rec.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("unknown id still returns 202 with zero counts", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("UpdateMovie", mockCtx, mock.AnythingOfType("movie.Input")).
			Return(movie.UpdateResult{Acknowledged: true}, nil).Once()

		rec := serve(server, newJSONRequest(http.MethodPut, "/filmes", matrixJSON))

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t,
			`{"acknowledged":true,"matchedCount":0,"modifiedCount":0,"upsertedCount":0}`,
			rec.Body.String())
	})

	t.Run("validation failure returns 400", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("UpdateMovie", mockCtx, mock.AnythingOfType("movie.Input")).
			Return(movie.UpdateResult{}, movie.Input{}.Validate(movie.UpdateRules)).Once()

		rec := serve(server, newJSONRequest(http.MethodPut, "/filmes", `{}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var body movie.ValidationError
		decodeBody(t, rec, &body)
		assert.True(t, body.HasField("_id"))
	})
}

func TestDeleteMovie(t *testing.T) {
	t.Run("returns 202 with the delete result", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("DeleteMovie", mockCtx, matrix.ID).
			Return(movie.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil).Once()

		rec := makeRequest(server, http.MethodDelete, "/filmes/"+matrix.ID, nil)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, rec.Body.String())
	})

	t.Run("unknown id returns 202 with zero count", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("DeleteMovie", mockCtx, matrix.ID).
			Return(movie.DeleteResult{Acknowledged: true}, nil).Once()

		rec := makeRequest(server, http.MethodDelete, "/filmes/"+matrix.ID, nil)

		assert.Equal(t, http.StatusAccepted, rec.Code)
		assert.JSONEq(t, `{"acknowledged":true,"deletedCount":0}`, rec.Body.String())
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		server, svc := newMovieServer(t)
		svc.On("DeleteMovie", mockCtx, "abc").Return(movie.DeleteResult{}, movie.ErrInvalidID).Once()

		rec := makeRequest(server, http.MethodDelete, "/filmes/abc", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
