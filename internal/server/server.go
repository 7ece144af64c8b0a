package server

import (
	"context"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/relay/internal/config"
	"github.com/nfrund/relay/internal/handlers"
	"github.com/nfrund/relay/internal/hub"
	"github.com/nfrund/relay/internal/middleware"
	"github.com/nfrund/relay/internal/notifier"
	"github.com/nfrund/relay/internal/pubsub"
	"github.com/nfrund/relay/internal/store"
	"github.com/nfrund/relay/internal/ws"
)

// Server holds the dependencies for the relay.
type Server struct {
	E   *echo.Echo
	Cfg *config.Config

	store *store.Store
	hub   *hub.Hub
	bus   *pubsub.Bus

	roomHandler   *handlers.RoomHandler
	injectHandler *handlers.InjectHandler
	gateway       *ws.Gateway
}

// New creates a new Server instance with all collaborators wired up.
func New(cfg *config.Config) *Server {
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to open store", "path", cfg.DBPath, "error", err)
		os.Exit(1)
	}

	h := hub.New()
	bus := pubsub.NewBus()

	// The forwarder consumes message events on its own goroutine; its bounded
	// HTTP timeout keeps a stalled sink from backing up the bus.
	forwarder := notifier.NewForwarder(cfg.EventSinkURL, cfg.EventTimeout)
	if err := forwarder.Start(context.Background(), bus); err != nil {
		slog.Error("Failed to start event forwarder", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handlers.NewValidator()
	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(middleware.Logger)

	return &Server{
		E:             e,
		Cfg:           cfg,
		store:         st,
		hub:           h,
		bus:           bus,
		roomHandler:   handlers.NewRoomHandler(st),
		injectHandler: handlers.NewInjectHandler(st, h),
		gateway:       ws.NewGateway(st, h, bus),
	}
}

// Store is a getter for the server's store, useful for testing.
func (s *Server) Store() *store.Store {
	return s.store
}

// Hub is a getter for the server's hub, useful for testing.
func (s *Server) Hub() *hub.Hub {
	return s.hub
}
