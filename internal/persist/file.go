package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// File stores each document as a JSON file in a data directory. A missing
// file reads as an empty document; writes go through a temp file and
// rename so a crash never leaves a half-written document behind.
type File struct {
	dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(name string) string {
	return filepath.Join(f.dir, name+".json")
}

func (f *File) load(name string, out any) error {
	raw, err := os.ReadFile(f.path(name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

func (f *File) save(name string, doc any) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	tmp := f.path(name) + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, f.path(name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (f *File) LoadMediaMap(ctx context.Context) (MediaMap, error) {
	m := MediaMap{}
	err := f.load(docMediaMap, &m)
	return m, err
}

func (f *File) SaveMediaMap(ctx context.Context, m MediaMap) error {
	return f.save(docMediaMap, m)
}

func (f *File) LoadGroupIndex(ctx context.Context) (GroupIndex, error) {
	idx := GroupIndex{}
	err := f.load(docGroupIndex, &idx)
	return idx, err
}

func (f *File) SaveGroupIndex(ctx context.Context, idx GroupIndex) error {
	return f.save(docGroupIndex, idx)
}

func (f *File) Ping(ctx context.Context) error {
	if _, err := os.Stat(f.dir); err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	return nil
}
