package prefs

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusadmin/datatable"
)

func newTestFileKV(t *testing.T) *FileKV {
	t.Helper()
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "prefs"))
	require.NoError(t, err)
	return kv
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		SortBy: datatable.Directive{
			{Key: "name", Direction: datatable.SortAscending},
			{Key: "age", Direction: datatable.SortDescending},
		},
		Filters:      datatable.FilterState{"faculty": "sci"},
		ColumnWidths: map[string]int{"name": 180},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for name, kv := range map[string]KV{
		"memory": NewMemoryKV(),
		"file":   newTestFileKV(t),
	} {
		t.Run(name, func(t *testing.T) {
			s := NewStore(kv, nil)
			s.Save("students", sampleSnapshot())

			got, ok := s.Load("students")
			require.True(t, ok)
			assert.Equal(t, sampleSnapshot(), got)

			s.Save("empty", Snapshot{})
			got, ok = s.Load("empty")
			require.True(t, ok)
			assert.Equal(t, Snapshot{}, got)
			assert.True(t, got.IsZero())
		})
	}
}

func TestSnapshotWireFormat(t *testing.T) {
	kv := NewMemoryKV()
	NewStore(kv, nil).Save("students", Snapshot{
		SortBy: datatable.Directive{{Key: "name", Direction: datatable.SortAscending}},
	})

	data, err := kv.Get("table_students")
	require.NoError(t, err)
	assert.JSONEq(t, `{"sortBy":[{"key":"name","direction":"asc"}],"filters":{},"columnWidths":{}}`, string(data))
}

func TestLoadMissingReturnsFalse(t *testing.T) {
	_, ok := NewStore(NewMemoryKV(), nil).Load("nothing")
	assert.False(t, ok)
}

func TestLoadCorruptedPayloadReturnsFalse(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	for _, payload := range []string{
		"not json",
		`{"sortBy":[{"key":"name","direction":"sideways"}]}`,
		`{"sortBy":[{"key":"name","direction":"asc"},{"key":"name","direction":"desc"}]}`,
	} {
		kv := NewMemoryKV()
		require.NoError(t, kv.Set(Key("students"), []byte(payload)))

		_, ok := NewStore(kv, logger).Load("students")
		assert.False(t, ok, payload)
	}
	assert.Contains(t, logs.String(), "discarding unreadable preferences")
}

type failingKV struct{}

func (failingKV) Get(string) ([]byte, error) { return nil, errors.New("disk on fire") }
func (failingKV) Set(string, []byte) error   { return errors.New("disk on fire") }
func (failingKV) Delete(string) error        { return errors.New("disk on fire") }

func TestStoreSwallowsBackendErrors(t *testing.T) {
	var logs bytes.Buffer
	s := NewStore(failingKV{}, slog.New(slog.NewTextHandler(&logs, nil)))

	assert.NotPanics(t, func() {
		s.Save("students", sampleSnapshot())
		s.Clear("students")
	})
	_, ok := s.Load("students")
	assert.False(t, ok)
	assert.Contains(t, logs.String(), "disk on fire")
}

func TestClearRemovesSnapshot(t *testing.T) {
	s := NewStore(newTestFileKV(t), nil)
	s.Save("students", sampleSnapshot())
	s.Clear("students")
	_, ok := s.Load("students")
	assert.False(t, ok)

	// clearing twice is fine
	s.Clear("students")
}

func TestFileKVLeavesNoTempFiles(t *testing.T) {
	kv := newTestFileKV(t)
	require.NoError(t, kv.Set("table_a/b:c", []byte("1")))
	require.NoError(t, kv.Set("table_a/b:c", []byte("2")))

	got, err := kv.Get("table_a/b:c")
	require.NoError(t, err)
	assert.Equal(t, "2", string(got))

	entries, err := os.ReadDir(kv.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, hashKey("table_a/b:c")+".json", entries[0].Name())
}

func TestFileKVMissingKey(t *testing.T) {
	_, err := newTestFileKV(t).Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSnapshotIsZero(t *testing.T) {
	assert.True(t, Snapshot{}.IsZero())
	assert.True(t, Snapshot{Filters: datatable.FilterState{"a": ""}}.IsZero())
	assert.False(t, sampleSnapshot().IsZero())
}
