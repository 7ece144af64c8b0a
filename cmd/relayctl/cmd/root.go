package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var baseURL string

var rootCmd = &cobra.Command{
	Use:   "relayctl",
	Short: "Relay CLI tool",
	Long: `relayctl is a command-line interface for the chat relay HTTP API.

Available commands:
  rooms      List or create chat rooms
  history    Show a room's message history
  inject     Inject a message into a room

Use "relayctl [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8000", "base URL of the relay server")
}

var httpClient = &http.Client{Timeout: 10 * time.Second}

// getJSON fetches path and decodes the JSON response into out.
func getJSON(path string, out any) error {
	resp, err := httpClient.Get(baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// postJSON posts body to path and decodes the JSON response into out.
func postJSON(path string, body, out any) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return err
	}

	resp, err := httpClient.Post(baseURL+path, "application/json", bytes.NewReader(encoded))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, bytes.TrimSpace(raw))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
