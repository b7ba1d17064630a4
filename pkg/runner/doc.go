/*
Package runner implements the interactive play loop for a prototype.

It acts as the bridge between the engine and the outside world. The runner
reads commands through a pluggable IOHandler, forwards engine callbacks back to
it, persists snapshots and hot-swaps the prototype when the document changes.

# Key Components

  - Runner: the single-goroutine loop. Input, timer callbacks and reloads are
    all handled there, so the engine never sees concurrent calls.
  - IOHandler: decouples how commands arrive and results leave.
  - TextHandler: line commands for humans and scripts ("tap cta", "wait 300").
  - JSONHandler: NDJSON events and commands for other programs.

On the virtual clock time only moves on wait commands, so a script replays
identically; on the real clock timers fire while the runner waits for input.

# Usage

	r := runner.NewRunner(
		runner.WithInputHandler(runner.NewTextHandler(os.Stdin, os.Stdout, runner.WithPrompt(true))),
		runner.WithVirtualClock(false),
	)

	if err := r.Run(ctx, proto); err != nil {
		log.Fatal(err)
	}
*/
package runner
