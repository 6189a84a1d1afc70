// Package store implements address book persistence to the filesystem.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/smileynet/phonebook/internal/book"
)

// Compile-time check: FileStore satisfies book.Store.
var _ book.Store = (*FileStore)(nil)

// Format names a snapshot encoding.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrUnknownFormat indicates a format FileStore cannot encode.
var ErrUnknownFormat = errors.New("store: unknown format")

// FileStore persists a snapshot as a single JSON or YAML file.
type FileStore struct {
	path   string
	format Format
	log    *zap.Logger
}

// NewFileStore creates a FileStore writing to path. FormatAuto picks YAML for
// .yaml and .yml paths and JSON otherwise.
func NewFileStore(path string, format Format, log *zap.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: path is required")
	}
	resolved, err := resolveFormat(path, format)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FileStore{path: path, format: resolved, log: log}, nil
}

// Path returns the file the store writes.
func (s *FileStore) Path() string {
	return s.path
}

// Format returns the resolved encoding.
func (s *FileStore) Format() Format {
	return s.format
}

// Load reads the snapshot file.
// Returns (snapshot, true, nil) if found, (zero, false, nil) if not found.
func (s *FileStore) Load(_ context.Context) (book.Snapshot, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.log.Debug("snapshot file missing", zap.String("path", s.path))
			return book.Snapshot{}, false, nil
		}
		return book.Snapshot{}, false, fmt.Errorf("store: reading %s: %w", s.path, err)
	}

	var snap book.Snapshot
	if len(bytes.TrimSpace(data)) == 0 {
		return snap, true, nil
	}
	if err := s.unmarshal(data, &snap); err != nil {
		return book.Snapshot{}, false, fmt.Errorf("store: parsing %s: %w", s.path, err)
	}
	s.log.Debug("snapshot read", zap.String("path", s.path), zap.Int("records", len(snap.Records)))
	return snap, true, nil
}

// Save encodes snap and atomically replaces the snapshot file.
func (s *FileStore) Save(_ context.Context, snap book.Snapshot) error {
	data, err := s.marshal(snap)
	if err != nil {
		return fmt.Errorf("store: marshaling: %w", err)
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("store: writing %s: %w", s.path, err)
	}
	s.log.Debug("snapshot written", zap.String("path", s.path), zap.Int("bytes", len(data)))
	return nil
}

func (s *FileStore) marshal(snap book.Snapshot) ([]byte, error) {
	if s.format == FormatYAML {
		return yaml.Marshal(snap)
	}
	return json.MarshalIndent(snap, "", "  ")
}

func (s *FileStore) unmarshal(data []byte, snap *book.Snapshot) error {
	if s.format == FormatYAML {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		return dec.Decode(snap)
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(snap)
}

func resolveFormat(path string, format Format) (Format, error) {
	switch format {
	case FormatJSON, FormatYAML:
		return format, nil
	case FormatAuto, "":
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			return FormatYAML, nil
		default:
			return FormatJSON, nil
		}
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// writeFileAtomic writes data to a temp file next to path, syncs it, and
// renames it over path so readers never see a partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return syncDir(dir)
}

func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
