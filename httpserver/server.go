package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"filmes/movie"
	"filmes/pkg/config"
	"filmes/pkg/logger"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultAddr = ":8080"

type Server struct {
	// Router is the Echo router instance
	Router *echo.Echo

	// Addr represents the address the server will listen on
	Addr string

	Config  *config.Config
	Logger  *zap.SugaredLogger
	Metrics *Metrics

	MovieService movie.Service

	// Store is pinged by the health check. Nil means always healthy.
	Store HealthChecker
}

func New(options ...Options) (*Server, error) {
	s := Server{
		Router:  echo.New(),
		Addr:    defaultAddr,
		Config:  config.Empty,
		Logger:  logger.NOOPLogger,
		Metrics: NewMetrics(),
	}

	for _, fn := range options {
		if err := fn(&s); err != nil {
			return nil, err
		}
	}

	if s.Config.Port != 0 {
		s.Addr = fmt.Sprintf(":%d", s.Config.Port)
	}

	s.Router.HideBanner = true
	s.Router.HidePort = true
	s.Router.HTTPErrorHandler = s.handleError

	s.RegisterGlobalMiddlewares()

	s.RegisterHealthRoutes()
	s.RegisterMetricsRoutes()
	s.RegisterSwaggerRoutes()
	s.RegisterMovieRoutes(s.Router.Group("/filmes"))

	return &s, nil
}

func (s *Server) RegisterGlobalMiddlewares() {
	s.Router.Pre(middleware.RemoveTrailingSlash())

	s.Router.Use(s.observe)
	s.Router.Use(middleware.Recover())
	s.Router.Use(middleware.Secure())
	s.Router.Use(middleware.RequestID())
	s.Router.Use(middleware.Gzip())
	s.Router.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	if s.Config.RateLimit > 0 {
		s.Router.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(s.Config.RateLimit))))
	}

	// CORS
	if origins := s.allowOrigins(); len(origins) > 0 {
		s.Router.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: origins,
		}))
	}
}

func (s *Server) allowOrigins() []string {
	var origins []string
	for _, o := range strings.Split(s.Config.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func (s *Server) Start() error {
	s.Logger.Infow("http server listening", "addr", s.Addr)
	return s.Router.Start(s.Addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.Router.Shutdown(ctx)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
