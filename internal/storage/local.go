package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// LocalStore keeps blobs on the local filesystem beneath a single root
// directory. Keys map directly to relative paths.
type LocalStore struct {
	root string
	log  *zap.Logger
}

func NewLocalStore(root string, log *zap.Logger) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving upload root: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload root: %w", err)
	}
	return &LocalStore{root: abs, log: log}, nil
}

func (s *LocalStore) Save(ctx context.Context, key string, r io.Reader) (int64, error) {
	dst, err := s.resolve(key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("creating blob directory: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("creating blob file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(dst)
		return 0, fmt.Errorf("writing blob: %w", err)
	}

	s.log.Debug("blob stored", zap.String("key", key), zap.Int64("size", n))
	return n, nil
}

func (s *LocalStore) Remove(ctx context.Context, key string) error {
	dst, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("removing blob: %w", err)
	}
	return nil
}

func (s *LocalStore) resolve(key string) (string, error) {
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if !strings.HasPrefix(dst, s.root+string(filepath.Separator)) {
		return "", ErrKeyOutsideRoot
	}
	return dst, nil
}
