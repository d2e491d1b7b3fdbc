package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/samber/oops"
)

type LocalStorage struct {
	basePath string
	base     publicBase
}

func NewLocalStorage(basePath, publicURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath, base: publicBase(publicURL)}, nil
}

func (ls *LocalStorage) getPathFromKey(key string) (string, error) {
	if !filepath.IsLocal(filepath.FromSlash(key)) {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(key)), nil
}

func (ls *LocalStorage) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	filePath, err := ls.getPathFromKey(key)
	if err != nil {
		return "", oops.Code("STORAGE_UPLOAD_FAILED").With("key", key).Wrap(err)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), os.ModePerm); err != nil {
		return "", oops.Code("STORAGE_UPLOAD_FAILED").With("key", key).Wrap(err)
	}

	file, err := os.Create(filePath)
	if err != nil {
		return "", oops.Code("STORAGE_UPLOAD_FAILED").With("key", key).Wrap(err)
	}
	defer file.Close()

	if _, err := io.Copy(file, body); err != nil {
		return "", oops.Code("STORAGE_UPLOAD_FAILED").With("key", key).Wrap(err)
	}

	return ls.base.url(key), nil
}

// Get opens the stored object for reading.
func (ls *LocalStorage) Get(key string) (*os.File, error) {
	filePath, err := ls.getPathFromKey(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s not found: %w", key, err)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Delete(_ context.Context, key string) error {
	filePath, err := ls.getPathFromKey(key)
	if err != nil {
		return oops.Code("STORAGE_DELETE_FAILED").With("key", key).Wrap(err)
	}

	err = os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return oops.Code("STORAGE_DELETE_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

func (ls *LocalStorage) KeyFromURL(url string) (string, bool) {
	return ls.base.key(url)
}
