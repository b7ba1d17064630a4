package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/keyframe/internal/config"
	"github.com/aretw0/keyframe/internal/logging"
	"github.com/spf13/cobra"
)

var (
	cfg    = config.Default()
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "keyframe",
	Short: "Keyframe plays interactive design prototypes",
	Long: `Keyframe loads prototype documents (screens, links, timed transitions and
variables) and plays them in the terminal, over HTTP or as MCP tools.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			loaded.Log.Level, _ = cmd.Flags().GetString("log-level")
		}
		level, err := logging.ParseLevel(loaded.Log.Level)
		if err != nil {
			return err
		}
		cfg = loaded
		logger = logging.NewWithFormat(os.Stderr, level, cfg.Log.Format)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Prototype library directory or a single document file")
	rootCmd.PersistentFlags().String("doc", "", "Document ID inside the library (optional when it holds one)")
	rootCmd.PersistentFlags().String("config", "", "Settings file (default ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
}
