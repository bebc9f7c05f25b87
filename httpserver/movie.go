package httpserver

import (
	"net/http"
	"net/url"

	"filmes/errs"
	"filmes/movie"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterMovieRoutes(g *echo.Group) {
	g.GET("", s.handleListMovies)
	g.GET("/:id", s.handleGetMovie)
	g.GET("/nome/:nome", s.handleSearchMovies)
	g.POST("", s.handleCreateMovie)
	g.PUT("", s.handleUpdateMovie)
	g.DELETE("/:id", s.handleDeleteMovie)
}

// handleListMovies godoc
// @Summary List Movies
// @Description Return every stored movie
// @Tags movies
// @Produce json
// @Success 200 {array} movie.Movie
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]string
// @Router /filmes [get]
func (s *Server) handleListMovies(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	movies, err := s.MovieService.ListMovies(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, movies)
}

// handleGetMovie godoc
// @Summary Get Movie
// @Description Return the movie with the given id as a list of zero or one element
// @Tags movies
// @Produce json
// @Param id path string true "Movie id"
// @Success 200 {array} movie.Movie
// @Failure 400 {object} map[string]interface{}
// @Router /filmes/{id} [get]
func (s *Server) handleGetMovie(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	movies, err := s.MovieService.GetMovie(c.Request().Context(), pathParam(c, "id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, movies)
}

// handleSearchMovies godoc
// @Summary Search Movies
// @Description Case-insensitive substring search on the movie name
// @Tags movies
// @Produce json
// @Param nome path string true "Part of the name"
// @Success 200 {array} movie.Movie
// @Failure 400 {object} map[string]interface{}
// @Router /filmes/nome/{nome} [get]
func (s *Server) handleSearchMovies(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	movies, err := s.MovieService.SearchMovies(c.Request().Context(), pathParam(c, "nome"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, movies)
}

// handleCreateMovie godoc
// @Summary Create Movie
// @Description Validate and store a new movie. Any _id in the body is ignored.
// @Tags movies
// @Accept json
// @Produce json
// @Param movie body movie.Input true "Movie"
// @Success 201 {object} movie.InsertResult
// @Failure 400 {object} movie.ValidationError
// @Router /filmes [post]
func (s *Server) handleCreateMovie(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	var in movie.Input
	if err := c.Bind(&in); err != nil {
		return err
	}

	result, err := s.MovieService.CreateMovie(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, result)
}

// handleUpdateMovie godoc
// @Summary Update Movie
// @Description Replace every field of the movie identified by _id
// @Tags movies
// @Accept json
// @Produce json
// @Param movie body movie.Input true "Movie with _id"
// @Success 202 {object} movie.UpdateResult
// @Failure 400 {object} movie.ValidationError
// @Router /filmes [put]
func (s *Server) handleUpdateMovie(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	var in movie.Input
	if err := c.Bind(&in); err != nil {
		return err
	}

	result, err := s.MovieService.UpdateMovie(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, result)
}

// handleDeleteMovie godoc
// @Summary Delete Movie
// @Tags movies
// @Produce json
// @Param id path string true "Movie id"
// @Success 202 {object} movie.DeleteResult
// @Failure 400 {object} map[string]interface{}
// @Router /filmes/{id} [delete]
func (s *Server) handleDeleteMovie(c echo.Context) error {
	if err := s.requireMovieService(); err != nil {
		return err
	}

	result, err := s.MovieService.DeleteMovie(c.Request().Context(), pathParam(c, "id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusAccepted, result)
}

func (s *Server) requireMovieService() error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}
	return nil
}

// pathParam returns the decoded value of a path parameter. Echo matches on
// the raw path when the request URL has escaped characters.
func pathParam(c echo.Context, name string) string {
	v := c.Param(name)
	if c.Request().URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}
