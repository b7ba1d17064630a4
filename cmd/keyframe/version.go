package main

import (
	"fmt"

	"github.com/aretw0/keyframe"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of keyframe",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "keyframe version %s\n", keyframe.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
