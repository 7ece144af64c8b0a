package main

import (
	"github.com/nfrund/relay/internal/config"
	"github.com/nfrund/relay/internal/logging"
	"github.com/nfrund/relay/internal/server"
)

func main() {
	logging.New()

	s := server.New(config.New())
	s.RegisterRoutes()
	s.Start()
}
