package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Addr is the listen address of the relay server.
	Addr string
	// DBPath is the SQLite database file, or ":memory:" for tests.
	DBPath string
	// EventSinkURL is where new-message events are forwarded.
	EventSinkURL string
	// EventTimeout bounds each event forwarding request.
	EventTimeout time.Duration

	// AgentAddr is the listen address of the chat agent service.
	AgentAddr string
	// ChatAppURL is the relay base URL the agent injects messages through.
	ChatAppURL string
	// AgentDataDir holds the agent's flat-file conversation transcripts.
	AgentDataDir string
}

// New loads configuration from environment variables.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	return &Config{
		Addr:         getenv("RELAY_ADDR", ":8000"),
		DBPath:       getenv("RELAY_DB_PATH", "chat.db"),
		EventSinkURL: getenv("EVENT_SINK_URL", "http://localhost:8001/events"),
		EventTimeout: getduration("EVENT_TIMEOUT", 5*time.Second),
		AgentAddr:    getenv("AGENT_ADDR", ":8001"),
		ChatAppURL:   getenv("CHAT_APP_URL", "http://localhost:8000"),
		AgentDataDir: getenv("AGENT_DATA_DIR", "./data"),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid duration for %s: %q, using default %s", key, v, fallback)
		return fallback
	}
	return d
}
