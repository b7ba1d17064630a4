package main

import (
	"fmt"

	"github.com/aretw0/keyframe/pkg/document"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Print the canonical prototype document",
	Long: `Decodes the prototype and writes it back in canonical form: legacy single
triggers become lists, implicit taps and defaults are spelled out.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		proto, _, _, err := loadPrototype(cmd, args)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")

		var data []byte
		switch format {
		case "json":
			data, err = document.Encode(proto)
		case "yaml":
			data, err = document.EncodeYAML(proto)
		default:
			return fmt.Errorf("unknown format %q, use json or yaml", format)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringP("format", "f", "json", "Output format: json or yaml")
}
