package main

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/keyframe"
	"github.com/aretw0/keyframe/internal/validator"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check prototypes for consistency",
	Long: `Reports dangling references, unknown easings, malformed triggers and screens
that no navigation reaches. Every document of the library is checked unless --doc
selects one. Exits non-zero when errors are found; warnings alone pass.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := libraryPath(cmd, args)
		loader, err := keyframe.OpenLoader(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		ids, err := loader.ListDocuments()
		if err != nil {
			return err
		}
		if doc, _ := cmd.Flags().GetString("doc"); doc != "" {
			ids = []string{doc}
		}
		jsonMode, _ := cmd.Flags().GetBool("json")

		out := cmd.OutOrStdout()
		reports := make(map[string]validator.Report, len(ids))
		failed := 0
		for _, id := range ids {
			proto, err := keyframe.Load(loader, id)
			if err != nil {
				reports[id] = validator.Report{Issues: []validator.Issue{{
					Severity: validator.SeverityError, Location: "document", Message: err.Error(),
				}}}
				failed++
				continue
			}
			r := validator.Validate(proto)
			reports[id] = r
			if r.HasErrors() {
				failed++
			}
		}

		if jsonMode {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(reports); err != nil {
				return err
			}
		} else {
			for _, id := range ids {
				r := reports[id]
				if len(r.Issues) == 0 {
					fmt.Fprintf(out, "%s: valid ✅\n", id)
					continue
				}
				fmt.Fprintf(out, "%s:\n", id)
				for _, issue := range r.Issues {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
			}
		}

		if failed > 0 {
			return fmt.Errorf("validation failed: %d of %d documents have errors", failed, len(ids))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the reports as JSON")
}
