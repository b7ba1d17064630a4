package keyframe_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/keyframe"
	"github.com/aretw0/keyframe/pkg/adapters/clock"
	"github.com/aretw0/keyframe/pkg/adapters/memory"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/observability"
	"github.com/aretw0/keyframe/pkg/ports"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const onboarding = `---
name: Onboarding
initialScreen: welcome
screens:
  - id: welcome
    elements:
      - id: cta
        x: 10
        width: 120
        height: 40
        prototypeLink:
          target: done
          trigger: tap
          transition:
            type: dissolve
            duration: 200
  - id: done
    elements: []
transitions:
  - from: welcome
    to: done
    duration: 300
    trigger:
      type: timer
      delay: 2000
---
Notes for reviewers.`

func TestFacade_OpenDirectory(t *testing.T) {
	repoPath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "onboarding.md"), []byte(onboarding), 0644))

	eng, err := keyframe.Open(repoPath, "")
	require.NoError(t, err)
	assert.Equal(t, "Onboarding", eng.Name)

	ctx := context.Background()
	require.NoError(t, eng.Start(ctx))
	assert.Equal(t, "welcome", eng.CurrentScreen())

	require.NoError(t, eng.Advance(2000*time.Millisecond))
	assert.Equal(t, domain.PhaseAnimating, eng.Phase())
	require.NoError(t, eng.Advance(300*time.Millisecond))
	assert.Equal(t, "done", eng.CurrentScreen())
	assert.False(t, eng.Busy())
}

func TestFacade_OpenSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.yaml")
	require.NoError(t, os.WriteFile(path, []byte("screens:\n  - id: closed\n  - id: open\n"), 0644))

	eng, err := keyframe.Open(path, "")
	require.NoError(t, err)
	assert.Equal(t, "menu", eng.Name)
	require.NoError(t, eng.Start(context.Background()))
	assert.Equal(t, "closed", eng.CurrentScreen())
}

func TestFacade_LoadNeedsDocumentChoice(t *testing.T) {
	loader := memory.NewLoader(map[string]string{
		"a": `{"screens": [{"id": "x"}]}`,
		"b": `{"screens": [{"id": "y"}]}`,
	})

	_, err := keyframe.Load(loader, "")
	assert.Error(t, err)

	proto, err := keyframe.Load(loader, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", proto.Name)
	assert.Equal(t, "y", proto.Screens[0].ID)
}

func TestFacade_LinkNavigationWithHooksAndMetrics(t *testing.T) {
	repoPath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(repoPath, "onboarding.md"), []byte(onboarding), 0644))
	loader, err := keyframe.OpenLoader(repoPath)
	require.NoError(t, err)
	proto, err := keyframe.Load(loader, "onboarding")
	require.NoError(t, err)

	metrics, err := observability.NewMetrics(nil)
	require.NoError(t, err)

	var navigations []string
	eng, err := keyframe.New(proto,
		keyframe.WithMetrics(metrics),
		keyframe.WithHooks(domain.Hooks{
			OnNavigate: func(_ context.Context, e *domain.NavigateEvent) {
				navigations = append(navigations, e.From+">"+e.To)
			},
		}),
	)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, eng.Start(ctx))

	out := eng.Dispatch(ctx, domain.Event{Type: domain.EventTap, ElementID: "cta"})
	assert.True(t, out.Consumed)
	assert.Equal(t, domain.PhaseTransitionOut, eng.Phase())

	require.NoError(t, eng.Advance(100*time.Millisecond))
	assert.Equal(t, "done", eng.CurrentScreen(), "dissolve swaps at the midpoint")
	require.NoError(t, eng.Advance(100*time.Millisecond))
	assert.Equal(t, domain.PhaseIdle, eng.Phase())

	assert.Equal(t, []string{">welcome", "welcome>done"}, navigations)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Navigations.WithLabelValues("done")))

	assert.True(t, eng.Back(ctx, nil))
	assert.Equal(t, "welcome", eng.CurrentScreen())
}

func TestFacade_HostScheduler(t *testing.T) {
	proto := &domain.Prototype{Screens: []domain.Screen{{ID: "only"}}}
	sched := clock.NewManual(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	eng, err := keyframe.New(proto, keyframe.WithScheduler(sched), keyframe.WithSessionID("s1"))
	require.NoError(t, err)
	require.NoError(t, eng.Start(context.Background()))

	assert.ErrorIs(t, eng.Advance(time.Second), keyframe.ErrNoManualClock)
	snap := eng.Snapshot()
	assert.Equal(t, "s1", snap.SessionID)
	assert.True(t, snap.Now.Equal(sched.Now()))
}

func TestFactory(t *testing.T) {
	proto := &domain.Prototype{Screens: []domain.Screen{{ID: "a"}, {ID: "b"}}}
	factory := keyframe.Factory(proto, keyframe.WithEntryScreen("b"))

	var eng ports.Engine
	eng, err := factory("preview-1", clock.NewManual(keyframe.Epoch))
	require.NoError(t, err)
	require.NoError(t, eng.Start(context.Background()))

	snap := eng.Snapshot()
	assert.Equal(t, "preview-1", snap.SessionID)
	assert.Equal(t, "b", snap.CurrentScreen)
}

func TestNew_NilPrototype(t *testing.T) {
	_, err := keyframe.New(nil)
	assert.ErrorIs(t, err, domain.ErrEmptyPrototype)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, keyframe.Version)
}
