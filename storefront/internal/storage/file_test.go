package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"ardelivero-storefront/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileStorage(t *testing.T, path string) *FileStorage {
	t.Helper()
	fs, err := NewFileStorage(path, logging.Discard())
	require.NoError(t, err)
	return fs
}

func TestFileStorage(t *testing.T) {
	exerciseStorage(t, newTestFileStorage(t, filepath.Join(t.TempDir(), "state", "storefront.json")))
}

func TestFileStorage_RejectsNonJSON(t *testing.T) {
	fs := newTestFileStorage(t, filepath.Join(t.TempDir(), "storefront.json"))
	assert.Error(t, fs.Set(context.Background(), KeyCart, []byte("not json")))
}

func TestFileStorage_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))
	fs := newTestFileStorage(t, path)

	_, err := fs.Get(context.Background(), KeyCart)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStorage_WatchSeesOtherProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path := filepath.Join(t.TempDir(), "storefront.json")
	watcher := newTestFileStorage(t, path)
	writer := newTestFileStorage(t, path)

	require.NoError(t, writer.Set(ctx, KeySession, []byte(`{"token":"old"}`)))

	events, err := watcher.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, writer.Set(ctx, KeyCart, []byte(`{"lines":[]}`)))
	ev := nextEvent(t, events)
	assert.Equal(t, KeyCart, ev.Key)
	assert.Equal(t, writer.Origin(), ev.Origin)
	assert.JSONEq(t, `{"lines":[]}`, string(ev.Value))

	require.NoError(t, writer.Remove(ctx, KeySession))
	ev = nextEvent(t, events)
	assert.Equal(t, KeySession, ev.Key)
	assert.True(t, ev.Removed())
}

func TestFileStorage_ConcurrentInstancesKeepEveryKey(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "storefront.json")
	instances := []*FileStorage{newTestFileStorage(t, path), newTestFileStorage(t, path)}

	const rounds = 25
	errs := make(chan error, len(instances)*rounds)
	var wg sync.WaitGroup
	for i, fs := range instances {
		wg.Add(1)
		go func(i int, fs *FileStorage) {
			defer wg.Done()
			for n := 0; n < rounds; n++ {
				errs <- fs.Set(ctx, fmt.Sprintf("writer%d:%d", i, n), []byte(fmt.Sprintf(`{"n":%d}`, n)))
			}
		}(i, fs)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	reader := newTestFileStorage(t, path)
	for i := range instances {
		for n := 0; n < rounds; n++ {
			value, err := reader.Get(ctx, fmt.Sprintf("writer%d:%d", i, n))
			require.NoError(t, err, "writer%d:%d was lost", i, n)
			assert.JSONEq(t, fmt.Sprintf(`{"n":%d}`, n), string(value))
		}
	}
}

func TestDiffDocuments(t *testing.T) {
	before := fileDocument{Entries: map[string]json.RawMessage{
		KeyCart:     json.RawMessage(`{"lines":[]}`),
		KeyLocation: json.RawMessage(`{"address":"a"}`),
		KeySession:  json.RawMessage(`{"token":"t"}`),
	}}
	after := fileDocument{Writer: "tab-2", Entries: map[string]json.RawMessage{
		KeyCart:        json.RawMessage(`{"lines":[]}`),
		KeyLocation:    json.RawMessage(`{"address":"b"}`),
		KeyPaymentType: json.RawMessage(`"cash"`),
	}}

	byKey := map[string]Event{}
	for _, ev := range diffDocuments(before, after) {
		byKey[ev.Key] = ev
	}

	require.Len(t, byKey, 3)
	assert.JSONEq(t, `{"address":"b"}`, string(byKey[KeyLocation].Value))
	assert.JSONEq(t, `"cash"`, string(byKey[KeyPaymentType].Value))
	assert.True(t, byKey[KeySession].Removed())
	assert.Equal(t, "tab-2", byKey[KeySession].Origin)
}
