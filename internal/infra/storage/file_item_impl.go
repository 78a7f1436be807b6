package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go_jsoning_server/internal/domain/model/resource"
	"go_jsoning_server/utils"
)

// FileItemStorage 内存中的资源文档，每次写入后整体落盘（path 为空时只在内存中）。
// 文档顶层为 {"name": [items...]}，非数组的顶层值原样保留但不视为集合。
type FileItemStorage struct {
	mu     sync.RWMutex
	path   string
	data   map[string][]resource.Item
	extras map[string]json.RawMessage
}

var _ ItemStorageIface = (*FileItemStorage)(nil)

func NewFileItemStorage(path string) (*FileItemStorage, error) {
	s := &FileItemStorage{
		path:   path,
		data:   make(map[string][]resource.Item),
		extras: make(map[string]json.RawMessage),
	}
	if path == "" {
		return s, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		utils.GetLogger().Infof("db file %s does not exist yet, starting empty", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read db file: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return s, nil
	}
	if err := s.decode(raw); err != nil {
		return nil, fmt.Errorf("failed to parse db file %s: %w", path, err)
	}
	return s, nil
}

// NewMemoryItemStorage 从已有数据构建，不落盘
func NewMemoryItemStorage(data map[string][]resource.Item) *FileItemStorage {
	s := &FileItemStorage{
		data:   make(map[string][]resource.Item, len(data)),
		extras: make(map[string]json.RawMessage),
	}
	for name, items := range data {
		s.data[name] = cloneItems(items)
	}
	return s
}

func (s *FileItemStorage) decode(raw []byte) error {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	for name, value := range doc {
		var items []resource.Item
		trimmed := bytes.TrimSpace(value)
		if len(trimmed) > 0 && trimmed[0] == '[' && json.Unmarshal(trimmed, &items) == nil && !containsNil(items) {
			s.data[name] = items
			continue
		}
		s.extras[name] = value
	}
	return nil
}

func (s *FileItemStorage) ListItems(ctx context.Context, name string) ([]resource.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items, ok := s.data[name]
	if !ok {
		return nil, resource.ErrResourceNotFound
	}
	return cloneItems(items), nil
}

func (s *FileItemStorage) GetItem(ctx context.Context, name, id string) (resource.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := s.indexOf(name, id)
	if idx < 0 {
		return nil, resource.ErrNotFound
	}
	return s.data[name][idx].Clone(), nil
}

func (s *FileItemStorage) InsertItem(ctx context.Context, name string, item resource.Item) error {
	id, ok := item.ID()
	if !ok {
		return resource.ErrInvalidItem
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(name, id) >= 0 {
		return resource.ErrAlreadyExists
	}

	prev, existed := s.data[name]
	extra, hadExtra := s.extras[name]
	s.data[name] = append(cloneItems(prev), item.Clone())
	delete(s.extras, name)

	if err := s.persist(); err != nil {
		// 回滚，保证重试时状态一致
		if existed {
			s.data[name] = prev
		} else {
			delete(s.data, name)
		}
		if hadExtra {
			s.extras[name] = extra
		}
		return err
	}
	return nil
}

func (s *FileItemStorage) ReplaceItem(ctx context.Context, name, id string, item resource.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(name, id)
	if idx < 0 {
		return resource.ErrNotFound
	}

	old := s.data[name][idx]
	s.data[name][idx] = item.Clone()
	if err := s.persist(); err != nil {
		s.data[name][idx] = old
		return err
	}
	return nil
}

func (s *FileItemStorage) DeleteItem(ctx context.Context, name, id string) (resource.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(name, id)
	if idx < 0 {
		return nil, resource.ErrNotFound
	}

	prev := s.data[name]
	removed := prev[idx]
	next := make([]resource.Item, 0, len(prev)-1)
	next = append(next, prev[:idx]...)
	next = append(next, prev[idx+1:]...)
	s.data[name] = next

	if err := s.persist(); err != nil {
		s.data[name] = prev
		return nil, err
	}
	return removed.Clone(), nil
}

func (s *FileItemStorage) Close() error {
	return nil
}

// indexOf 调用方需持有锁
func (s *FileItemStorage) indexOf(name, id string) int {
	for i, it := range s.data[name] {
		if itemID, ok := it.ID(); ok && itemID == id {
			return i
		}
	}
	return -1
}

// persist 先写临时文件再 rename，调用方需持有写锁
func (s *FileItemStorage) persist() error {
	if s.path == "" {
		return nil
	}

	doc := make(map[string]any, len(s.data)+len(s.extras))
	for name, value := range s.extras {
		doc[name] = value
	}
	for name, items := range s.data {
		doc[name] = items
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal db: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp db file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(out); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write db file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close db file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace db file: %w", err)
	}
	return nil
}

func cloneItems(items []resource.Item) []resource.Item {
	out := make([]resource.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

func containsNil(items []resource.Item) bool {
	for _, it := range items {
		if it == nil {
			return true
		}
	}
	return false
}
