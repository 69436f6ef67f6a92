package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type LocalStorage struct {
	basePath string
}

func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, os.ModePerm); err != nil {
		return nil, err
	}
	return &LocalStorage{basePath: basePath}, nil
}

func (ls *LocalStorage) getPathFromRef(ref string) string {
	// filepath.Base odcina ewentualne separatory ścieżki z referencji
	return filepath.Join(ls.basePath, filepath.Base(ref))
}

func (ls *LocalStorage) Save(_ context.Context, ref string, data io.Reader) error {
	filePath := ls.getPathFromRef(ref)

	file, err := os.Create(filePath)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, data)
	return err
}

func (ls *LocalStorage) Get(_ context.Context, ref string) (io.ReadCloser, error) {
	filePath := ls.getPathFromRef(ref)

	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("object %s: %w", ref, ErrNotFound)
		}
		return nil, err
	}

	return file, nil
}

func (ls *LocalStorage) Delete(_ context.Context, ref string) error {
	filePath := ls.getPathFromRef(ref)

	err := os.Remove(filePath)
	if os.IsNotExist(err) {
		return nil
	}

	return err
}

func (ls *LocalStorage) Driver() string {
	return "local"
}
