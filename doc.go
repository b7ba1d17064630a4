/*
Package keyframe is a deterministic interaction and transition engine for
interactive UI prototypes.

A prototype is a set of screens, each a static arrangement of elements, joined
by triggered, timed transitions. The engine reacts to user input (taps, hovers,
drags, scrolls), elapsed time and variable changes by running element-level
actions and canvas transitions, and samples the in-between visual state of
every element for the host to render.

# Concept

Keyframe only decides what happens and when. Drawing, input capture and real
time belong to the host: it feeds events through Dispatch, drives time through
a ports.Scheduler and renders the domain.Frame returned by Frame. This keeps
the same engine usable by a terminal player, an HTTP preview server or an AI
agent over MCP.

# Key Features

  - Deterministic Execution: on a manual clock, the same events at the same times always produce the same frames.
  - Combo Triggers: a transition may require several gestures and variable conditions at once.
  - Curves: named presets, cubic-bezier and damped springs, all normalized to [0,1].
  - State Persistence: Snapshot and Restore carry in-flight transitions and armed timers across processes.

# Usage

	proto, err := keyframe.Load(loader, "onboarding")
	if err != nil {
		log.Fatal(err)
	}

	eng, err := keyframe.New(proto)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := eng.Start(ctx); err != nil {
		log.Fatal(err)
	}

	eng.Dispatch(ctx, domain.Event{Type: domain.EventTap, ElementID: "cta"})
	_ = eng.Advance(150 * time.Millisecond)
	frame := eng.Frame() // halfway through a 300ms transition
*/
package keyframe
