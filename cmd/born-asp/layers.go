package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLayersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "layers",
		Short: "List the layer types with a registered pruner",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range a.registry.Names() {
				kind := "default"
				if p, _ := a.registry.Lookup(name); !p.IsDefault() {
					kind = "custom"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, kind); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
