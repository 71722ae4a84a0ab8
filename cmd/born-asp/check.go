package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/asp/internal/asp"
	"github.com/born-ml/asp/internal/checkpoint"
)

// errCheckFailed is returned when at least one weight violates the pattern.
var errCheckFailed = fmt.Errorf("%w: checkpoint has dense weights", asp.ErrSparsityCheck)

func newCheckCmd(a *app) *cobra.Command {
	var sf sparsityFlags

	cmd := &cobra.Command{
		Use:   "check <model.safetensors>",
		Short: "Report weight density and verify the N:M pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := sf.apply(cmd, cfg); err != nil {
				return err
			}

			method := asp.CheckingMethodFor(asp.MaskAlgo(cfg.Sparsity.Algo))
			results, err := checkpoint.CheckFile(args[0], method, cfg.Sparsity.N, cfg.Sparsity.M)
			if err != nil {
				return err
			}
			if err := printResults(cmd.OutOrStdout(), results, true); err != nil {
				return err
			}

			for _, r := range results {
				if !r.Valid {
					return errCheckFailed
				}
			}
			return nil
		},
	}
	sf.register(cmd)
	return cmd
}

func printResults(w io.Writer, results []checkpoint.Result, withValid bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"TENSOR", "LAYER", "SHAPE", "OUTCOME", "DENSITY"}
	if withValid {
		header = append(header, "VALID")
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range results {
		row := []string{r.Name, r.LayerType, fmt.Sprint(r.Shape), string(r.Outcome), fmt.Sprintf("%.3f", r.Density)}
		if withValid {
			row = append(row, fmt.Sprint(r.Valid))
		}
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
