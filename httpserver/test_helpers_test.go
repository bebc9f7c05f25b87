package httpserver_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"filmes/httpserver"
	"filmes/movie"
	"filmes/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// mockCtx matches the request context passed to the service.
const mockCtx = mock.Anything

type MockMovieService struct {
	mock.Mock
}

func (m *MockMovieService) ListMovies(ctx context.Context) ([]movie.Movie, error) {
	args := m.Called(ctx)
	return args.Get(0).([]movie.Movie), args.Error(1)
}

func (m *MockMovieService) GetMovie(ctx context.Context, id string) ([]movie.Movie, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]movie.Movie), args.Error(1)
}

func (m *MockMovieService) SearchMovies(ctx context.Context, name string) ([]movie.Movie, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]movie.Movie), args.Error(1)
}

func (m *MockMovieService) CreateMovie(ctx context.Context, in movie.Input) (movie.InsertResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(movie.InsertResult), args.Error(1)
}

func (m *MockMovieService) UpdateMovie(ctx context.Context, in movie.Input) (movie.UpdateResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(movie.UpdateResult), args.Error(1)
}

func (m *MockMovieService) DeleteMovie(ctx context.Context, id string) (movie.DeleteResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(movie.DeleteResult), args.Error(1)
}

type stubStore struct {
	err error
}

func (s stubStore) Ping(context.Context) error {
	return s.err
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.AppEnv = "test"
	cfg.AllowOrigins = "*"
	return cfg
}

func mustCreateServer(t testing.TB, opts ...httpserver.Options) *httpserver.Server {
	t.Helper()
	opts = append([]httpserver.Options{httpserver.WithConfig(testConfig())}, opts...)
	server, err := httpserver.New(opts...)
	require.NoError(t, err)
	return server
}

func newJSONRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func serve(server *httpserver.Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}
