// Package httpapi exposes the blog over HTTP: auth/session endpoints,
// post CRUD, cookie transport, and the session middleware.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"blogserver/internal/logging"
	"blogserver/internal/server/config"
	"blogserver/internal/server/services"
)

type HTTPServer struct {
	address        string
	users          *services.UserService
	posts          *services.PostService
	logger         logging.Logger
	accessSecret   []byte
	allowedOrigins []string
}

func NewHTTPServer(cfg *config.Config, l logging.Logger, us *services.UserService, ps *services.PostService) (*HTTPServer, error) {
	return &HTTPServer{
		address:        cfg.EndpointAddr,
		users:          us,
		posts:          ps,
		logger:         l.With("module", "http_server"),
		accessSecret:   []byte(cfg.AccessTokenSecret),
		allowedOrigins: cfg.AllowedOrigins,
	}, nil
}

// routes assembles the echo instance: recovery, request logging, credentialed
// CORS for the frontend origins, and the route table.
func (s *HTTPServer) routes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(s.requestLogger)
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     s.allowedOrigins,
		AllowCredentials: true,
	}))

	e.POST("/register", s.register)
	e.POST("/login", s.login)
	e.GET("/current_user", s.currentUser, s.sessionRequired)
	e.POST("/refresh", s.refresh)
	e.GET("/logout", s.logout)

	e.POST("/create", s.createPost, s.sessionRequired)
	e.GET("/getposts", s.getPosts)
	e.GET("/getpostbyid/:id", s.getPostByID)
	e.PUT("/editpost/:id", s.editPost, s.sessionRequired)
	e.DELETE("/deletepost/:id", s.deletePost, s.sessionRequired)

	return e
}

func (s *HTTPServer) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		req := c.Request()
		s.logger.Info(req.Context(), "request",
			"method", req.Method,
			"uri", req.RequestURI,
			"status", c.Response().Status,
			"duration", time.Since(start).String(),
		)
		return err
	}
}

func (s *HTTPServer) Run(ctx context.Context) error {
	e := s.routes()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := e.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "Error shutting down HTTP server", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := e.Start(s.address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
