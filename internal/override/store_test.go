package override

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/alihassan193/snooker-console/internal/domain"
)

type memStorage struct {
	data    map[uint]domain.TableStatus
	loadErr error
	putErr  error
	puts    int
}

func newMemStorage() *memStorage {
	return &memStorage{data: make(map[uint]domain.TableStatus)}
}

func (m *memStorage) Load(context.Context) (map[uint]domain.TableStatus, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make(map[uint]domain.TableStatus, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func (m *memStorage) Put(_ context.Context, tableID uint, status domain.TableStatus) error {
	m.puts++
	if m.putErr != nil {
		return m.putErr
	}
	m.data[tableID] = status
	return nil
}

func (m *memStorage) Delete(_ context.Context, tableID uint) error {
	delete(m.data, tableID)
	return nil
}

func observeLogs(t *testing.T) *observer.ObservedLogs {
	t.Helper()

	core, logs := observer.New(zap.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	t.Cleanup(restore)

	return logs
}

func genStatus() *rapid.Generator[domain.TableStatus] {
	return rapid.SampledFrom(domain.TableStatuses)
}

func TestStore_NoOverrideReturnsServerStatus(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		store := NewStore(context.Background(), newMemStorage())
		tableID := rapid.Uint().Draw(t, "tableID")
		server := genStatus().Draw(t, "server")

		if got := store.Status(tableID, server); got != server {
			t.Fatalf("expected server status %q, got %q", server, got)
		}
	})
}

func TestStore_SetWinsUntilClearedOrReplaced(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		store := NewStore(ctx, newMemStorage())

		tableID := rapid.UintRange(1, 50).Draw(t, "tableID")
		status := genStatus().Draw(t, "status")
		require.NoError(t, store.Set(ctx, tableID, status))

		server := genStatus().Draw(t, "server")
		if got := store.Status(tableID, server); got != status {
			t.Fatalf("expected override %q, got %q", status, got)
		}

		// Writes to other tables do not disturb this one.
		other := rapid.UintRange(51, 100).Draw(t, "other")
		require.NoError(t, store.Set(ctx, other, genStatus().Draw(t, "otherStatus")))
		if got := store.Status(tableID, server); got != status {
			t.Fatalf("override changed by another table: %q", got)
		}

		next := genStatus().Draw(t, "next")
		require.NoError(t, store.Set(ctx, tableID, next))
		if got := store.Status(tableID, server); got != next {
			t.Fatalf("expected replaced override %q, got %q", next, got)
		}

		store.Clear(ctx, tableID)
		if got := store.Status(tableID, server); got != server {
			t.Fatalf("expected server status after clear, got %q", got)
		}
	})
}

func TestStore_PersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()

	store := NewStore(ctx, storage)
	require.NoError(t, store.Set(ctx, 1, domain.TableMaintenance))
	require.NoError(t, store.Set(ctx, 2, domain.TableReserved))
	store.Clear(ctx, 2)

	reloaded := NewStore(ctx, storage)
	assert.Equal(t, map[uint]domain.TableStatus{1: domain.TableMaintenance}, reloaded.All())
}

func TestStore_RejectsInvalidStatus(t *testing.T) {
	ctx := context.Background()
	storage := newMemStorage()
	store := NewStore(ctx, storage)

	err := store.Set(ctx, 1, "closed")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.Zero(t, storage.puts)
	assert.Equal(t, domain.TableAvailable, store.Status(1, domain.TableAvailable))
}

func TestStore_LoadFailureStartsEmpty(t *testing.T) {
	logs := observeLogs(t)
	storage := newMemStorage()
	storage.loadErr = errors.New("disk on fire")

	var store *Store
	require.NotPanics(t, func() {
		store = NewStore(context.Background(), storage)
	})

	assert.Empty(t, store.All())
	assert.Equal(t, 1, logs.FilterMessage("discarding unreadable table status overrides").Len())
}

func TestStore_PersistFailureDoesNotInterruptCaller(t *testing.T) {
	logs := observeLogs(t)
	ctx := context.Background()
	storage := newMemStorage()
	storage.putErr = errors.New("read-only")
	store := NewStore(ctx, storage)

	require.NoError(t, store.Set(ctx, 5, domain.TableReserved))

	assert.Equal(t, domain.TableReserved, store.Status(5, domain.TableAvailable))
	assert.Equal(t, 1, logs.FilterMessage("failed to persist table status override").Len())
}

func TestStore_CorruptFileStartsEmpty(t *testing.T) {
	logs := observeLogs(t)
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"3": "maintenance",`), 0o600))

	var store *Store
	require.NotPanics(t, func() {
		store = NewStore(context.Background(), NewFileStorage(path))
	})

	assert.Empty(t, store.All())
	assert.Equal(t, 1, logs.FilterMessage("discarding unreadable table status overrides").Len())
}

func TestFileStorage_RoundTripAndMissingFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "overrides.json")
	storage := NewFileStorage(path)

	loaded, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.NoError(t, storage.Put(ctx, 3, domain.TableMaintenance))
	require.NoError(t, storage.Put(ctx, 4, domain.TableReserved))
	require.NoError(t, storage.Delete(ctx, 4))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"3":"maintenance"}`, string(raw))
}

func TestImport(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "overrides.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1":"maintenance","2":"reserved","3":"bogus"}`), 0o600))

	storage := newMemStorage()
	store := NewStore(ctx, storage)
	require.NoError(t, store.Set(ctx, 2, domain.TableAvailable))

	imported, err := Import(ctx, NewFileStorage(path), store)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
	assert.Equal(t, map[uint]domain.TableStatus{
		1: domain.TableMaintenance,
		2: domain.TableAvailable,
	}, store.All())
}
