package main

import (
	"fmt"
	"os"

	"github.com/aretw0/keyframe/internal/presentation/tui"
	"github.com/aretw0/keyframe/internal/validator"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [path]",
	Short: "Summarize a prototype",
	Long:  `Prints the screens, transitions, variables and validation findings of a prototype as rendered markdown.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proto, _, _, err := loadPrototype(cmd, args)
		if err != nil {
			return err
		}
		md := tui.InspectMarkdown(proto, validator.Validate(proto))

		if raw, _ := cmd.Flags().GetBool("raw"); raw {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		render := tui.NewRenderer(!term.IsTerminal(int(os.Stdout.Fd())))
		out, err := render(md)
		if err != nil {
			logger.Debug("Markdown rendering failed, printing source", "err", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("raw", false, "Print the markdown source without rendering")
}
