package eeprom

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/oshokin/cstation/internal/config"
)

// Repository loads and saves the raw EEPROM image.
type Repository interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, image []byte) error
}

// ErrNotFound is returned when no image has been saved yet.
var ErrNotFound = errors.New("eeprom image not found")

// FileRepository persists the image to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the image file.
	path string
	// mu serializes file access.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the image from disk.
func (r *FileRepository) Load(_ context.Context) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read eeprom file: %w", err)
	}

	var image wrapperspb.BytesValue
	if err = protojson.Unmarshal(contents, &image); err != nil {
		return nil, fmt.Errorf("decode eeprom file: %w", err)
	}

	return image.GetValue(), nil
}

// Save writes the image to disk, replacing the previous file atomically.
func (r *FileRepository) Save(_ context.Context, image []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := protojson.Marshal(wrapperspb.Bytes(image))
	if err != nil {
		return fmt.Errorf("encode eeprom image: %w", err)
	}

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write eeprom file: %w", err)
	}

	if err = os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("replace eeprom file: %w", err)
	}

	return nil
}
