// Package convlog is a flat-file conversation store: one ndjson file per
// conversation, appended line by line and replayed on load. Appending and
// loading are strictly separated; loading a conversation never writes to its
// file.
package convlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// Entry is one line of a conversation transcript.
type Entry struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Store reads and writes conversation files under a single data directory.
// It operates on an afero filesystem so tests can run entirely in memory.
type Store struct {
	fs      afero.Fs
	dataDir string
}

// NewStore creates a Store rooted at dataDir, creating the directory if needed.
func NewStore(fs afero.Fs, dataDir string) (*Store, error) {
	if err := fs.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	return &Store{fs: fs, dataDir: dataDir}, nil
}

// NewID returns a fresh conversation id.
func NewID() string {
	return uuid.NewString()
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("conv-%s.ndjson", id))
}

// Append writes one entry to the end of a conversation file, creating the
// file on first use. Entries with a zero timestamp are stamped with the
// current time.
func (s *Store) Append(id string, entry Entry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	f, err := s.fs.OpenFile(s.path(id), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening conversation file: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(entry); err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}
	return nil
}

// Load replays a conversation file and returns its entries in chronological
// order. It is read-only; replaying never re-appends what it reads. A missing
// conversation is an error the caller can treat as "not started yet".
func (s *Store) Load(id string) ([]Entry, error) {
	f, err := s.fs.Open(s.path(id))
	if err != nil {
		return nil, fmt.Errorf("opening conversation file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var entry Entry
		if err := decoder.Decode(&entry); err != nil {
			return nil, fmt.Errorf("decoding entry: %w", err)
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

// Exists reports whether a conversation file is present.
func (s *Store) Exists(id string) (bool, error) {
	return afero.Exists(s.fs, s.path(id))
}
