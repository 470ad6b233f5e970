// Package objstore implements the binary object store holding the original
// PDF and every composed artifact. References returned by Put are opaque to
// callers; each implementation only resolves its own scheme.
package objstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inkwell/internal/domain"
)

const fsScheme = "fs://"

// FSStore keeps objects as files under a single directory. Content types map
// to file extensions so the directory stays browsable.
type FSStore struct {
	dir string
}

func NewFSStore(dir string) (*FSStore, error) {
	if dir == "" {
		return nil, errors.New("object store dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create object store dir: %w", err)
	}
	return &FSStore{dir: dir}, nil
}

func (s *FSStore) Put(ctx context.Context, data []byte, contentType string) (string, error) {
	name, err := newObjectName(contentType)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return fsScheme + name, nil
}

func (s *FSStore) Get(ctx context.Context, ref string) ([]byte, error) {
	name, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *FSStore) Delete(ctx context.Context, ref string) error {
	name, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FSStore) resolve(ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, fsScheme)
	if !ok || name == "" || strings.ContainsAny(name, "/\\") {
		return "", domain.ErrNotFound
	}
	return name, nil
}

func newObjectName(contentType string) (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	ext := ".bin"
	switch contentType {
	case "application/pdf":
		ext = ".pdf"
	case "image/png":
		ext = ".png"
	}
	return hex.EncodeToString(b) + ext, nil
}
