package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/keyframe"
	"github.com/aretw0/keyframe/internal/presentation/tui"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/aretw0/keyframe/pkg/ports"
	"github.com/aretw0/keyframe/pkg/runner"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var playCmd = &cobra.Command{
	Use:   "play [path]",
	Short: "Play a prototype in the terminal",
	Long: `Plays a prototype from text commands (tap, drag, wait, back, set...) or
NDJSON events on stdin. Host callbacks are printed as they happen.

With --virtual, time only passes on "wait" commands, so scripts replay identically.
With --session, the session is persisted in the configured store and resumed later.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proto, loader, id, err := loadPrototype(cmd, args)
		if err != nil {
			return err
		}
		virtual, _ := cmd.Flags().GetBool("virtual")
		jsonMode, _ := cmd.Flags().GetBool("json")
		watchMode, _ := cmd.Flags().GetBool("watch")
		sessionID, _ := cmd.Flags().GetString("session")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		opts := []runner.Option{
			runner.WithInputHandler(playHandler(jsonMode)),
			runner.WithLogger(logger),
			runner.WithVirtualClock(virtual),
		}

		if sessionID != "" {
			be, err := openStore(cfg.Store)
			if err != nil {
				return err
			}
			defer be.close()
			opts = append(opts, runner.WithStore(be.store), runner.WithSessionID(sessionID))
		}

		hooks, stopPublisher, err := sessionHooks(cfg.MQTT, "play")
		if err != nil {
			return err
		}
		defer stopPublisher()
		if hooks != nil {
			opts = append(opts, runner.WithEngineOptions(keyframe.WithSessionHooks(hooks)))
		}

		if watchMode {
			reload, err := watchPrototype(ctx, loader, id)
			if err != nil {
				return err
			}
			opts = append(opts, runner.WithReload(reload))
		}

		err = runner.NewRunner(opts...).Run(ctx, proto)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Bool("virtual", false, "Use a virtual clock advanced only by wait commands")
	playCmd.Flags().Bool("json", false, "Run in JSON mode (NDJSON input/output)")
	playCmd.Flags().BoolP("watch", "w", false, "Reload the prototype when its document changes")
	playCmd.Flags().String("session", "", "Persist and resume this session ID in the configured store")
}

// playHandler picks the IO strategy. Prompts, colors and the banner are
// only used when a terminal is attached.
func playHandler(jsonMode bool) runner.IOHandler {
	if jsonMode {
		return runner.NewJSONHandler(os.Stdin, os.Stdout)
	}
	interactive := term.IsTerminal(int(os.Stdin.Fd()))
	opts := []runner.TextHandlerOption{runner.WithPrompt(interactive)}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, runner.WithColorProfile(termenv.Ascii))
	}
	if interactive {
		tui.PrintBanner(os.Stdout, keyframe.Version)
	}
	return runner.NewTextHandler(os.Stdin, os.Stdout, opts...)
}

// watchPrototype reparses document id whenever the loader reports a change.
// Documents that fail to parse are logged and skipped.
func watchPrototype(ctx context.Context, loader ports.DocumentLoader, id string) (<-chan *domain.Prototype, error) {
	w, ok := loader.(ports.Watchable)
	if !ok {
		return nil, fmt.Errorf("this library cannot be watched")
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to watch library: %w", err)
	}

	reload := make(chan *domain.Prototype)
	go func() {
		for changed := range changes {
			if changed != "" && changed != id {
				continue
			}
			next, err := keyframe.Load(loader, id)
			if err != nil {
				logger.Warn("Reload failed, keeping the current prototype", "doc", id, "err", err)
				continue
			}
			logger.Debug("Prototype reloaded", "doc", id)
			select {
			case reload <- next:
			case <-ctx.Done():
				return
			}
		}
	}()
	return reload, nil
}
