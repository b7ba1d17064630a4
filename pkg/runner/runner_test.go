package runner_test

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/keyframe/pkg/adapters/memory"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func box(x float64) domain.Element {
	return domain.Element{
		ID:       "box",
		Geometry: domain.Geometry{X: x, Width: 50, Height: 50},
		Style:    domain.DefaultStyle(),
	}
}

func tapPrototype() *domain.Prototype {
	return &domain.Prototype{
		Name: "tap",
		Screens: []domain.Screen{
			{ID: "A", Elements: []domain.Element{box(0)}},
			{ID: "B", Elements: []domain.Element{box(100)}},
		},
		Transitions: []domain.Transition{{
			ID:       "a-b",
			From:     "A",
			To:       "B",
			Triggers: []domain.Trigger{domain.TapTrigger{}},
			Delay:    ms(100),
			Duration: ms(300),
			Easing:   domain.NamedEasing("linear"),
		}},
		Variables: []domain.Variable{{ID: "count", DefaultValue: domain.Number(0)}},
	}
}

// syncBuffer lets the test read output while Run is still writing.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRunner_VirtualClockScript(t *testing.T) {
	script := strings.Join([]string{
		"tap",
		"wait 250",
		"frame",
		"wait 200",
		"jump",
		"set count 3",
		"back",
		"quit",
		"tap",
	}, "\n")
	out := &bytes.Buffer{}

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader(script), out)),
		runner.WithVirtualClock(true),
	)
	require.NoError(t, r.Run(context.Background(), tapPrototype()))

	got := out.String()
	for _, want := range []string{
		"→ A",
		"started a-b",
		"→ B",
		"frame B animating 0.500",
		"[B · idle]",
		"[System] invalid command",
		"count = 3 (was 0)",
		"← A",
		"[A · idle]",
	} {
		assert.Contains(t, got, want)
	}
	assert.Equal(t, 1, strings.Count(got, "started a-b"), "input after quit must be ignored")
}

func TestRunner_RealClockTimers(t *testing.T) {
	proto := &domain.Prototype{
		Screens: []domain.Screen{
			{ID: "A", Elements: []domain.Element{box(0)}},
			{ID: "B", Elements: []domain.Element{box(100)}},
		},
		Transitions: []domain.Transition{{
			ID:       "auto",
			From:     "A",
			To:       "B",
			Triggers: []domain.Trigger{domain.TimerTrigger{Delay: ms(20)}},
		}},
	}
	out := &bytes.Buffer{}

	r := runner.NewRunner(runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("wait 300\n"), out)))
	require.NoError(t, r.Run(context.Background(), proto))

	got := out.String()
	assert.Contains(t, got, "→ B")
	assert.Contains(t, got, "[B · idle]")
}

func TestRunner_ResumesStoredSession(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	first := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("tap\nwait 500\ninc count\n"), io.Discard)),
		runner.WithVirtualClock(true),
		runner.WithStore(store),
		runner.WithSessionID("s1"),
	)
	require.NoError(t, first.Run(ctx, tapPrototype()))

	snap, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "B", snap.CurrentScreen)
	assert.Equal(t, domain.Number(1), snap.Variables["count"])

	out := &bytes.Buffer{}
	second := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(strings.NewReader("vars\n"), out)),
		runner.WithVirtualClock(true),
		runner.WithStore(store),
		runner.WithSessionID("s1"),
	)
	require.NoError(t, second.Run(ctx, tapPrototype()))

	got := out.String()
	assert.Contains(t, got, "[System] Resumed session s1 on B")
	assert.Contains(t, got, "  count = 1")
	assert.NotContains(t, got, "→ A", "a resumed session must not start over")
}

func TestRunner_HotReloadKeepsState(t *testing.T) {
	in, feed := io.Pipe()
	out := &syncBuffer{}
	reload := make(chan *domain.Prototype)

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(in, out)),
		runner.WithVirtualClock(true),
		runner.WithReload(reload),
	)

	errc := make(chan error, 1)
	go func() { errc <- r.Run(context.Background(), tapPrototype()) }()

	write := func(s string) {
		_, err := io.WriteString(feed, s)
		require.NoError(t, err)
	}
	waitFor := func(s string) {
		require.Eventually(t, func() bool { return strings.Contains(out.String(), s) }, time.Second, 5*time.Millisecond, "missing %q in:\n%s", s, out)
	}

	write("tap\nwait 500\n")
	waitFor("[B · idle]")

	next := tapPrototype()
	next.Name = "tap-v2"
	next.Screens = append(next.Screens, domain.Screen{ID: "C", Elements: []domain.Element{box(200)}})
	next.Transitions = append(next.Transitions, domain.Transition{ID: "b-c", From: "B", To: "C", Triggers: []domain.Trigger{domain.TapTrigger{}}})
	reload <- next
	waitFor("reload")

	write("tap\nwait 1\n")
	waitFor("→ C")
	write("quit\n")

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
	feed.Close()
	assert.Equal(t, 1, strings.Count(out.String(), "→ A"), "reload must not restart the session")
}

func TestRunner_StopsOnContextCancel(t *testing.T) {
	in, feed := io.Pipe()
	defer feed.Close()
	store := memory.NewStore()

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(in, io.Discard)),
		runner.WithVirtualClock(true),
		runner.WithStore(store),
		runner.WithSessionID("s2"),
	)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- r.Run(ctx, tapPrototype()) }()

	require.Eventually(t, func() bool {
		_, err := store.Load(context.Background(), "s2")
		return err == nil
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("runner ignored cancellation")
	}
}
