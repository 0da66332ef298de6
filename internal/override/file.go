package override

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/alihassan193/snooker-console/internal/domain"
)

// FileStorage keeps the whole override set as one JSON object keyed by table id, the
// layout the browser build used. Every write rewrites the file.
type FileStorage struct {
	mu   sync.Mutex
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{
		path: path,
	}
}

// Load returns an empty set when the file does not exist and an error when it is corrupt.
func (f *FileStorage) Load(_ context.Context) (map[uint]domain.TableStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.read()
}

func (f *FileStorage) Put(_ context.Context, tableID uint, status domain.TableStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	overrides, err := f.read()
	if err != nil {
		overrides = make(map[uint]domain.TableStatus)
	}
	overrides[tableID] = status

	return f.write(overrides)
}

func (f *FileStorage) Delete(_ context.Context, tableID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	overrides, err := f.read()
	if err != nil {
		overrides = make(map[uint]domain.TableStatus)
	}
	delete(overrides, tableID)

	return f.write(overrides)
}

func (f *FileStorage) read() (map[uint]domain.TableStatus, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return make(map[uint]domain.TableStatus), nil
		}

		return nil, fmt.Errorf("os.ReadFile -> %w", err)
	}

	overrides := make(map[uint]domain.TableStatus)
	if err = json.Unmarshal(raw, &overrides); err != nil {
		return nil, fmt.Errorf("json.Unmarshal %s -> %w", f.path, err)
	}

	return overrides, nil
}

func (f *FileStorage) write(overrides map[uint]domain.TableStatus) error {
	raw, err := json.Marshal(overrides)
	if err != nil {
		return fmt.Errorf("json.Marshal -> %w", err)
	}

	tmp := f.path + ".tmp"
	if err = os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll -> %w", err)
	}
	if err = os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("os.WriteFile -> %w", err)
	}

	return os.Rename(tmp, f.path)
}

// Import copies overrides from a legacy JSON file into the store's storage. Entries the
// store already has win. A corrupt file is reported and nothing is imported.
func Import(ctx context.Context, from *FileStorage, into *Store) (int, error) {
	legacy, err := from.Load(ctx)
	if err != nil {
		return 0, err
	}

	imported := 0
	for tableID, status := range legacy {
		if _, exists := into.Lookup(tableID); exists || !status.Valid() {
			continue
		}
		if err = into.Set(ctx, tableID, status); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}
