package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jhoicas/seguros-api/internal/application/ports"
)

var _ ports.ObjectStorage = (*LocalStorage)(nil)

// LocalStorage guarda archivos bajo un directorio; el router los sirve en
// baseURL. Solo para desarrollo.
type LocalStorage struct {
	dir     string
	baseURL string
}

// NewLocalStorage crea dir si no existe.
func NewLocalStorage(dir, baseURL string) (*LocalStorage, error) {
	if dir == "" {
		return nil, errors.New("storage: directorio requerido")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: crear %s: %w", dir, err)
	}
	return &LocalStorage{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir directorio raíz.
func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if key == "" || clean == "/" {
		return "", errors.New("storage: key inválida")
	}
	return filepath.Join(s.dir, filepath.FromSlash(clean)), nil
}

// Upload implementa ports.ObjectStorage.
func (s *LocalStorage) Upload(_ context.Context, key, _ string, data []byte) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return fmt.Errorf("storage: escribir %s: %w", key, err)
	}
	return nil
}

// DownloadURL implementa ports.ObjectStorage. Falla si el archivo no existe.
func (s *LocalStorage) DownloadURL(_ context.Context, key string) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("storage: %s: %w", key, err)
	}
	return s.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(filepath.Clean("/"+key)), "/"), nil
}
