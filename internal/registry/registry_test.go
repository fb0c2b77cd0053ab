package registry

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "registry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return clock }
	return store, &clock
}

func TestUpsert(t *testing.T) {
	t.Run("inserts a new device", func(t *testing.T) {
		store, clock := setupTestStore(t)

		record, err := store.Upsert(Record{Address: "192.168.1.20", Serial: "X004", Model: "Roku Ultra", Name: "Den", ScanID: "scan-1"})
		require.NoError(t, err)

		assert.Equal(t, "192.168.1.20", record.Address)
		assert.Equal(t, "X004", record.Serial)
		assert.Equal(t, "scan-1", record.ScanID)
		assert.Equal(t, 1, record.SeenCount)
		assert.True(t, record.FirstSeen.Equal(*clock))
		assert.True(t, record.LastSeen.Equal(*clock))
	})

	t.Run("updates a known device", func(t *testing.T) {
		store, clock := setupTestStore(t)

		_, err := store.Upsert(Record{Address: "192.168.1.20", Serial: "X004", Name: "Den", ScanID: "scan-1"})
		require.NoError(t, err)

		first := *clock
		*clock = clock.Add(time.Hour)
		record, err := store.Upsert(Record{Address: "192.168.1.20", PowerMode: "PowerOn", ScanID: "scan-2"})
		require.NoError(t, err)

		assert.Equal(t, 2, record.SeenCount)
		assert.Equal(t, "X004", record.Serial, "empty fields keep previous details")
		assert.Equal(t, "Den", record.Name)
		assert.Equal(t, "PowerOn", record.PowerMode)
		assert.Equal(t, "scan-2", record.ScanID)
		assert.True(t, record.FirstSeen.Equal(first))
		assert.True(t, record.LastSeen.Equal(*clock))
	})

	t.Run("requires an address", func(t *testing.T) {
		store, _ := setupTestStore(t)

		_, err := store.Upsert(Record{})
		assert.Error(t, err)
	})
}

func TestListAndDelete(t *testing.T) {
	store, clock := setupTestStore(t)

	_, err := store.Upsert(Record{Address: "192.168.1.20"})
	require.NoError(t, err)
	*clock = clock.Add(time.Minute)
	_, err = store.Upsert(Record{Address: "192.168.1.21"})
	require.NoError(t, err)

	records, err := store.List()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "192.168.1.21", records[0].Address)
	assert.Equal(t, "192.168.1.20", records[1].Address)

	require.NoError(t, store.Delete("192.168.1.20"))
	_, err = store.Get("192.168.1.20")
	assert.ErrorIs(t, err, ErrNotFound)

	err = store.Delete("192.168.1.20")
	assert.ErrorIs(t, err, ErrNotFound)

	records, err = store.List()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.db")

	store, err := Open(path)
	require.NoError(t, err)
	_, err = store.Upsert(Record{Address: "10.0.0.5", Model: "Roku Express"})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	record, err := reopened.Get("10.0.0.5")
	require.NoError(t, err)
	assert.Equal(t, "Roku Express", record.Model)
}
