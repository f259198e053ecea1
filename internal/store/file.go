package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

type knowledgeSnapshot struct {
	Categories []Category `json:"categories"`
}

// FileKnowledgeStore persists trained categories to a single JSON file.
type FileKnowledgeStore struct {
	mu   sync.Mutex
	path string
}

func NewFileKnowledgeStore(path string) *FileKnowledgeStore {
	return &FileKnowledgeStore{path: path}
}

// LoadCategories returns the persisted categories in save order. A missing
// file is an empty store.
func (f *FileKnowledgeStore) LoadCategories(ctx context.Context) ([]Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.readLocked()
	if err != nil {
		return nil, err
	}
	return snap.Categories, nil
}

// SaveCategory replaces the category with the same name or appends c.
func (f *FileKnowledgeStore) SaveCategory(ctx context.Context, c Category) error {
	if c.Name == "" {
		return fmt.Errorf("category name is required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	snap, err := f.readLocked()
	if err != nil {
		return err
	}
	replaced := false
	for i := range snap.Categories {
		if snap.Categories[i].Name == c.Name {
			snap.Categories[i] = c.clone()
			replaced = true
			break
		}
	}
	if !replaced {
		snap.Categories = append(snap.Categories, c.clone())
	}
	return f.writeLocked(snap)
}

func (f *FileKnowledgeStore) readLocked() (knowledgeSnapshot, error) {
	var snap knowledgeSnapshot
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return snap, nil
		}
		return snap, err
	}
	if err := json.Unmarshal(b, &snap); err != nil {
		return snap, fmt.Errorf("decode knowledge snapshot %s: %w", f.path, err)
	}
	return snap, nil
}

func (f *FileKnowledgeStore) writeLocked(snap knowledgeSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}
