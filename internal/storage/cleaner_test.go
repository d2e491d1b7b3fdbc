package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingStore struct {
	*LocalStorage
	mu      sync.Mutex
	deleted []string
	fail    bool
}

func (r *recordingStore) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("delete failed")
	}
	r.deleted = append(r.deleted, key)
	return nil
}

func (r *recordingStore) deletedKeys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.deleted...)
}

func newRecordingStore(t *testing.T) *recordingStore {
	ls, err := NewLocalStorage(t.TempDir(), testPublicURL)
	require.NoError(t, err)
	return &recordingStore{LocalStorage: ls}
}

func TestCleaner_DeletesOwnedNonDefaultImages(t *testing.T) {
	store := newRecordingStore(t)
	placeholder := testPublicURL + "/default.png"
	cleaner := NewCleaner(store, 8, nil, placeholder)

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cleaner.Run(ctx)
	}()

	require.False(t, cleaner.Discard(""))
	require.False(t, cleaner.Discard(placeholder))
	require.False(t, cleaner.Discard("https://elsewhere.example.com/x.png"))
	require.True(t, cleaner.Discard(testPublicURL+"/accounts/1/a.png"))

	require.Eventually(t, func() bool {
		return len(store.deletedKeys()) == 1
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, []string{"accounts/1/a.png"}, store.deletedKeys())

	cancel()
	wg.Wait()
}

func TestCleaner_FullQueueNeverBlocks(t *testing.T) {
	store := newRecordingStore(t)
	cleaner := NewCleaner(store, 1, nil)

	require.True(t, cleaner.Discard(testPublicURL+"/a.png"))
	require.False(t, cleaner.Discard(testPublicURL+"/b.png"))

	// cancelled before start: Run drains what is queued and returns
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cleaner.Run(ctx)

	require.Equal(t, []string{"a.png"}, store.deletedKeys())
}

func TestCleaner_DeleteFailureIsSwallowed(t *testing.T) {
	store := newRecordingStore(t)
	store.fail = true
	cleaner := NewCleaner(store, 2, nil)

	require.True(t, cleaner.Discard(testPublicURL+"/a.png"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NotPanics(t, func() { cleaner.Run(ctx) })
	require.Empty(t, store.deletedKeys())
}
