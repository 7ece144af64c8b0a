package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Injector sends messages into rooms through the relay's injection endpoint.
type Injector struct {
	baseURL string
	client  *http.Client
}

// NewInjector creates an Injector against the relay at baseURL.
func NewInjector(baseURL string) *Injector {
	return &Injector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Inject posts one message to a room. Agent messages are normally persisted
// (save true) so they become part of room history.
func (i *Injector) Inject(ctx context.Context, roomID, sender, content string, save bool) error {
	body, err := json.Marshal(map[string]any{
		"sender":     sender,
		"content":    content,
		"save_to_db": save,
	})
	if err != nil {
		return fmt.Errorf("encoding injection payload: %w", err)
	}

	url := fmt.Sprintf("%s/api/inject_message/%s", i.baseURL, roomID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building injection request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return fmt.Errorf("injecting message into room %q: %w", roomID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("relay returned status %d for room %q", resp.StatusCode, roomID)
	}
	return nil
}
