package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/relay/internal/middleware"
)

// RegisterRoutes sets up all the application routes.
func (s *Server) RegisterRoutes() {
	rateLimiter := middleware.RateLimiter()

	api := s.E.Group("/api")
	api.GET("/rooms", s.roomHandler.List)
	api.POST("/rooms", s.roomHandler.Create, rateLimiter)
	api.GET("/rooms/:room_id", s.roomHandler.Get)
	api.GET("/messages/:room_id", s.roomHandler.Messages)
	api.POST("/inject_message/:room_id", s.injectHandler.Inject)

	s.E.GET("/ws/:room_id", s.gateway.Serve)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
