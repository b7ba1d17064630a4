package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractSnapshot(sessionID string) *domain.Snapshot {
	return &domain.Snapshot{
		SessionID:     sessionID,
		Now:           time.Unix(0, 0).UTC().Add(1500 * time.Millisecond),
		CurrentScreen: "home",
		Phase:         domain.PhaseIdle,
		History:       []string{"splash"},
		Variables: map[string]domain.Value{
			"count": domain.Number(42),
			"open":  domain.Bool(true),
			"name":  domain.String("bar"),
		},
		EnteredAt: time.Unix(0, 0).UTC().Add(time.Second),
	}
}

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := contractSnapshot(sessionID)
		snap.Phase = domain.PhaseAnimating
		snap.InFlight = &domain.InFlight{
			Kind:      domain.KindEdge,
			From:      "splash",
			To:        "home",
			Easing:    domain.NamedEasing("ease"),
			StartedAt: snap.Now.Add(-100 * time.Millisecond),
			Delay:     40 * time.Millisecond,
			Duration:  400 * time.Millisecond,
			Swapped:   true,
		}

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.CurrentScreen, loaded.CurrentScreen)
		assert.Equal(t, snap.Phase, loaded.Phase)
		assert.Equal(t, snap.History, loaded.History)
		assert.True(t, snap.Now.Equal(loaded.Now))
		// Values keep their kind through persistence.
		assert.Equal(t, domain.Number(42), loaded.Variables["count"])
		assert.Equal(t, domain.Bool(true), loaded.Variables["open"])
		assert.Equal(t, domain.String("bar"), loaded.Variables["name"])
		require.NotNil(t, loaded.InFlight)
		assert.Equal(t, snap.InFlight.Duration, loaded.InFlight.Duration)
		assert.True(t, snap.InFlight.StartedAt.Equal(loaded.InFlight.StartedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, contractSnapshot(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, contractSnapshot(id1))
		_ = store.Save(ctx, id2, contractSnapshot(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
