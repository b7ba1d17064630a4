package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/keyframe/pkg/adapters/memory"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/ports"
	"github.com/aretw0/keyframe/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data map[string]domain.Snapshot
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error {
	time.Sleep(time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]domain.Snapshot)
	}
	s.data[sessionID] = *snap
	return nil
}

func (s *SlowStore) Load(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	time.Sleep(time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap, ok := s.data[sessionID]; ok {
		return &snap, nil
	}
	return nil, domain.ErrSessionNotFound
}

func (s *SlowStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	return nil, nil
}

func TestManager_Locking(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Save(ctx, id, &domain.Snapshot{SessionID: id}))

	var wg sync.WaitGroup
	writers := 20

	// Read-modify-write without the lock would lose history entries.
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, id, func(ctx context.Context) error {
				snap, err := manager.Store().Load(ctx, id)
				if err != nil {
					return err
				}
				snap.History = append(snap.History, "screen")
				return manager.Store().Save(ctx, id, snap)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, snap.History, writers)
}

type fakeLocker struct {
	mu       sync.Mutex
	locked   []string
	ttls     []time.Duration
	unlocked int
	err      error
}

func (f *fakeLocker) Lock(_ context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.locked = append(f.locked, key)
	f.ttls = append(f.ttls, ttl)
	return func(context.Context) error {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.unlocked++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	ctx := context.Background()
	locker := &fakeLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(5*time.Second))

	require.NoError(t, manager.Save(ctx, "s1", &domain.Snapshot{SessionID: "s1"}))
	_, err := manager.Load(ctx, "s1")
	require.NoError(t, err)

	assert.Equal(t, []string{"s1", "s1"}, locker.locked)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, locker.ttls)
	assert.Equal(t, 2, locker.unlocked)

	locker.err = errors.New("redis down")
	err = manager.Save(ctx, "s1", &domain.Snapshot{SessionID: "s1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, locker.err)
}
