package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/keyframe/pkg/curve"
	"github.com/aretw0/keyframe/pkg/domain"
	"github.com/spf13/cobra"
)

var curveCmd = &cobra.Command{
	Use:   "curve [name]",
	Short: "Sample an easing curve",
	Long: `Samples a named curve (linear, easeInOut, bouncy...), a cubic bezier
(--bezier x1,y1,x2,y2) or a spring (--spring mass,stiffness,damping) and prints
its settle time and overshoot. Without arguments, the known names are listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		bezier, _ := cmd.Flags().GetString("bezier")
		spring, _ := cmd.Flags().GetString("spring")
		samples, _ := cmd.Flags().GetInt("samples")
		jsonMode, _ := cmd.Flags().GetBool("json")

		var spec domain.EasingSpec
		switch {
		case bezier != "":
			v, err := parseFloats(bezier, 4)
			if err != nil {
				return fmt.Errorf("--bezier: %w", err)
			}
			spec = domain.CubicBezier(v[0], v[1], v[2], v[3])
		case spring != "":
			v, err := parseFloats(spring, 3)
			if err != nil {
				return fmt.Errorf("--spring: %w", err)
			}
			spec = domain.SpringEasing(domain.SpringParams{Mass: v[0], Stiffness: v[1], Damping: v[2]})
		case len(args) == 1:
			if !curve.IsKnown(args[0]) {
				return fmt.Errorf("unknown curve %q, known: %s", args[0], strings.Join(curve.Names(), ", "))
			}
			spec = domain.NamedEasing(args[0])
		default:
			for _, name := range curve.Names() {
				fmt.Fprintln(out, name)
			}
			return nil
		}

		c, _ := curve.Resolve(spec)
		points := curve.Sample(c, samples)
		settle := curve.SettleTime(c, curve.DefaultSettleThreshold, samples)
		overshoot := curve.Overshoot(c, samples)

		if jsonMode {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{
				"easing":    spec,
				"settle":    settle,
				"overshoot": overshoot,
				"samples":   points,
			})
		}

		for _, p := range points {
			bar := int(p.Value * 40)
			if bar < 0 {
				bar = 0
			}
			fmt.Fprintf(out, "%5.2f  %6.3f  %s\n", p.T, p.Value, strings.Repeat("█", bar))
		}
		fmt.Fprintf(out, "settles at t=%.2f, overshoot %.1f%%\n", settle, overshoot*100)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(curveCmd)
	curveCmd.Flags().String("bezier", "", "Cubic bezier control points x1,y1,x2,y2")
	curveCmd.Flags().String("spring", "", "Spring parameters mass,stiffness,damping")
	curveCmd.Flags().Int("samples", 20, "Number of sampling intervals")
	curveCmd.Flags().Bool("json", false, "Print the samples as JSON")
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("expected %d comma-separated numbers, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
