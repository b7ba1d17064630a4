package bolt_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/keyframe/pkg/adapters/bolt"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T, path string) *bolt.Store {
	t.Helper()
	store, err := bolt.Open(path)
	require.NoError(t, err)
	return store
}

func TestBoltStore_Contract(t *testing.T) {
	store := open(t, filepath.Join(t.TempDir(), "sessions.db"))
	defer store.Close()

	ports.RunSnapshotStoreContract(t, store)
}

func TestBoltStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")
	ctx := context.Background()

	store := open(t, path)
	require.NoError(t, store.Save(ctx, "s1", &domain.Snapshot{
		CurrentScreen: "b",
		History:       []string{"a"},
		Variables:     map[string]domain.Value{"n": domain.Number(3)},
	}))
	require.NoError(t, store.Close())

	reopened := open(t, path)
	defer reopened.Close()

	snap, err := reopened.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "b", snap.CurrentScreen)
	assert.Equal(t, []string{"a"}, snap.History)
	assert.Equal(t, domain.Number(3), snap.Variables["n"])

	ids, err := reopened.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestBoltStore_RejectsEmptyID(t *testing.T) {
	store := open(t, filepath.Join(t.TempDir(), "sessions.db"))
	defer store.Close()

	assert.Error(t, store.Save(context.Background(), "", &domain.Snapshot{}))
}
