package imagestore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/wondercomic/wondercomic-backend/internal/platform/logger"
)

// Store persists decoded image payloads in a flat directory. It is the
// only component that touches the filesystem for images.
type Store struct {
	dir string
	log *logger.Logger
}

func New(dir string, log *logger.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create images directory %q: %w", dir, err)
	}
	return &Store{dir: dir, log: log.With("service", "ImageStore")}, nil
}

// Save decodes a base64 payload (with any data-URL header stripped) and
// writes it under a collision-safe filename. An empty or undecodable
// payload is not an error: callers get ("", false) and treat it as
// "no image".
func (s *Store) Save(encoded, prefix string) (string, bool) {
	if encoded == "" {
		return "", false
	}
	if idx := strings.Index(encoded, ","); idx >= 0 {
		encoded = encoded[idx+1:]
	}

	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		s.log.Warn("Discarding undecodable image payload", "prefix", prefix, "error", err)
		return "", false
	}

	name := fmt.Sprintf("%s_%s.png", prefix, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	if err := os.WriteFile(filepath.Join(s.dir, name), raw, 0o644); err != nil {
		s.log.Warn("Failed to write image file", "name", name, "error", err)
		return "", false
	}
	return name, true
}

// Delete removes a stored image. Missing files are fine: delete is
// idempotent.
func (s *Store) Delete(name string) {
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		s.log.Warn("Failed to delete image file", "name", name, "error", err)
	}
}

// Dir returns the backing directory, used to mount static file serving.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the absolute location of a stored image.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}
