package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/born-ml/asp/internal/checkpoint"
	"github.com/born-ml/asp/internal/metrics"
)

func newPruneCmd(a *app) *cobra.Command {
	var (
		sf          sparsityFlags
		maskOut     string
		exclude     []string
		workers     int
		metricsFile string
	)

	cmd := &cobra.Command{
		Use:   "prune <in.safetensors> <out.safetensors>",
		Short: "Prune the linear and conv2d weights of a checkpoint",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if err := sf.apply(cmd, cfg); err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
			}
			if cmd.Flags().Changed("metrics-file") {
				cfg.Metrics.File = metricsFile
			}
			cfg.Sparsity.Exclude = append(cfg.Sparsity.Exclude, exclude...)
			if err := cfg.Validate(); err != nil {
				return err
			}

			var (
				recorder metrics.Recorder = metrics.Nop{}
				registry *prometheus.Registry
			)
			if cfg.Metrics.File != "" {
				registry = prometheus.NewRegistry()
				rec, err := metrics.NewPromRecorder(registry)
				if err != nil {
					return fmt.Errorf("metrics: %w", err)
				}
				recorder = rec
			}

			p, err := checkpoint.NewPruner(a.registry, checkpoint.Options{
				Prune:    cfg.PruneConfig(),
				Exclude:  cfg.Sparsity.Exclude,
				Recorder: recorder,
			})
			if err != nil {
				return err
			}

			ctx := a.log.WithContext(cmd.Context())
			results, err := p.PruneFile(ctx, args[0], args[1], maskOut)
			if err != nil {
				return err
			}
			if err := printResults(cmd.OutOrStdout(), results, false); err != nil {
				return err
			}

			if registry != nil {
				if err := metrics.WriteTextfile(cfg.Metrics.File, registry); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
				a.log.Debug().Str("file", cfg.Metrics.File).Msg("metrics written")
			}
			return nil
		},
	}

	sf.register(cmd)
	cmd.Flags().StringVar(&maskOut, "mask", "", "write masks to this SafeTensors file")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "glob patterns of tensor names to keep dense")
	cmd.Flags().IntVar(&workers, "workers", 0, "tensors pruned concurrently (0 = GOMAXPROCS)")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write prometheus metrics to this textfile")
	return cmd
}
