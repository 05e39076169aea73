package alarms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// Repository defines persistence operations for the alarm collection.
// Save replaces the whole collection; the registry is the only writer.
type Repository interface {
	Load(ctx context.Context) ([]*alarm.Alarm, error)
	Save(ctx context.Context, alarms []*alarm.Alarm) error
}

var (
	// ErrNotFound is returned when the store file does not exist yet.
	ErrNotFound = errors.New("alarm store not found")

	// ErrCorrupted is returned when the store file cannot be decoded.
	// The registry treats it as an empty store after logging a warning.
	ErrCorrupted = errors.New("alarm store corrupted")
)

// document is the on-disk JSON shape of the store.
type document struct {
	// Alarms holds every persisted alarm record.
	Alarms []*alarm.Alarm `json:"alarms"`
}

// FileRepository persists the alarm collection to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON store file.
	path string
	// mode is applied to the store file on write.
	mode os.FileMode
	// mu protects concurrent access to the store file.
	mu sync.Mutex
}

// defaultFileMode restricts the store file to the owning user.
const defaultFileMode os.FileMode = 0o600

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
		mode: defaultFileMode,
	}
}

// Load reads the alarm collection from disk.
func (r *FileRepository) Load(_ context.Context) ([]*alarm.Alarm, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read store file: %w", err)
	}

	var doc document
	if err = json.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupted, err)
	}

	return doc.Alarms, nil
}

// Save writes the alarm collection to disk. The document is written to a
// temporary file in the same directory and renamed over the target, so a
// crash mid-write never leaves a partially written store behind.
func (r *FileRepository) Save(_ context.Context, alarms []*alarm.Alarm) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if alarms == nil {
		alarms = []*alarm.Alarm{}
	}

	data, err := json.MarshalIndent(&document{Alarms: alarms}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}

	tmpPath := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return fmt.Errorf("write temp store file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("close temp store file: %w", err)
	}

	if err = os.Chmod(tmpPath, r.mode); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("chmod temp store file: %w", err)
	}

	if err = os.Rename(tmpPath, r.path); err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("replace store file: %w", err)
	}

	return nil
}
