package main

import (
	"fmt"

	"github.com/aretw0/keyframe/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph [path]",
	Short: "Export the navigation graph visualization",
	Long: `Outputs a Mermaid diagram (graph TD) of the prototype's screens, canvas
transitions, links and navigate actions. With --session, the screens visited by
a stored session are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proto, _, _, err := loadPrototype(cmd, args)
		if err != nil {
			return err
		}

		var overlay *graph.GraphOverlay
		if sessionID, _ := cmd.Flags().GetString("session"); sessionID != "" {
			be, err := openStore(cfg.Store)
			if err != nil {
				return err
			}
			defer be.close()
			snap, err := be.store.Load(cmd.Context(), sessionID)
			if err != nil {
				return fmt.Errorf("failed to load session '%s': %w", sessionID, err)
			}
			overlay = graph.OverlayFromSnapshot(*snap)
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(proto, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("session", "", "Highlight the history of this stored session")
}
