package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ============================================================
// File Storage
// ============================================================

type FileStorage struct {
	root string
}

func NewFileStorage(root string) *FileStorage {
	return &FileStorage{root: root}
}

func (s *FileStorage) ProjectDir(projectID string) string {
	return filepath.Join(s.root, filepath.Base(projectID))
}

func (s *FileStorage) PNGPath(projectID, planID string) string {
	return filepath.Join(s.ProjectDir(projectID), filepath.Base(planID)+".png")
}

func (s *FileStorage) EnsureDir(projectID string) error {
	path := s.ProjectDir(projectID)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir project dir: %w", err)
	}
	return nil
}

// ReadFile возвращает ok=false, если файла нет.
func (s *FileStorage) ReadFile(target string) ([]byte, bool, error) {
	data, err := os.ReadFile(target)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SaveFile пишет через временный файл, чтобы читатель не увидел половину PNG.
func (s *FileStorage) SaveFile(projectID, target string, data []byte) error {
	if err := s.EnsureDir(projectID); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), target)
}
