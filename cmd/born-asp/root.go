package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/born-ml/asp/internal/asp"
	"github.com/born-ml/asp/internal/config"
	"github.com/born-ml/asp/internal/logging"
)

// app holds state shared by the subcommands once the root command has run.
type app struct {
	cfgPath  string
	envFiles []string
	cfg      *config.Config
	log      zerolog.Logger
	registry *asp.Registry
}

func newRootCmd() *cobra.Command {
	a := &app{registry: asp.NewRegistry()}

	root := &cobra.Command{
		Use:           "born-asp",
		Short:         "N:M structured sparsity for SafeTensors checkpoints",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotenv(a.envFiles...); err != nil {
				return fmt.Errorf("load env file: %w", err)
			}
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			a.cfg = cfg
			a.log = logging.New(cfg.Log, cmd.Name())
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.cfgPath, "config", "c", "", "configuration file (yaml or json)")
	root.PersistentFlags().StringSliceVar(&a.envFiles, "env-file", []string{".env"}, "files with BORN_ASP_ environment overrides")

	root.AddCommand(
		newPruneCmd(a),
		newCheckCmd(a),
		newLayersCmd(a),
		newVersionCmd(),
	)
	return root
}

// sparsityFlags are the pattern flags shared by prune and check.
type sparsityFlags struct {
	n, m int
	algo string
}

func (f *sparsityFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.n, "n", "n", 2, "elements kept per block")
	cmd.Flags().IntVarP(&f.m, "m", "m", 4, "block size")
	cmd.Flags().StringVar(&f.algo, "algo", string(asp.Mask1D), "mask algorithm: mask_1d, mask_2d_greedy, mask_2d_best")
}

// apply overrides cfg with the flags the user set, then revalidates.
func (f *sparsityFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("n") {
		cfg.Sparsity.N = f.n
	}
	if cmd.Flags().Changed("m") {
		cfg.Sparsity.M = f.m
	}
	if cmd.Flags().Changed("algo") {
		cfg.Sparsity.Algo = f.algo
	}
	return cfg.Validate()
}
