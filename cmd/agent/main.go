package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/afero"

	"github.com/nfrund/relay/internal/agent"
	"github.com/nfrund/relay/internal/config"
	"github.com/nfrund/relay/internal/convlog"
	"github.com/nfrund/relay/internal/logging"
)

func main() {
	logging.New()
	cfg := config.New()

	transcripts, err := convlog.NewStore(afero.NewOsFs(), cfg.AgentDataDir)
	if err != nil {
		slog.Error("Failed to open transcript store", "dir", cfg.AgentDataDir, "error", err)
		os.Exit(1)
	}

	a := agent.New(agent.DefaultName, agent.NewInjector(cfg.ChatAppURL), transcripts)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.POST("/events", a.Events)
	e.GET("/health", a.Health)

	slog.Info("Agent starting", "addr", cfg.AgentAddr, "chat_app", cfg.ChatAppURL)
	go func() {
		if err := e.Start(cfg.AgentAddr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatalf("shutting down the agent: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal(err)
	}
}
