package main

import (
	"github.com/spf13/cobra"

	"github.com/pixelforge/storefront/internal/pkg/config"
)

type rootOptions struct {
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "storefront",
		Short:         "PixelForge storefront catalog API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "optional dotenv file loaded before the environment")

	cmd.AddCommand(newServerCmd(opts), newSeedCmd(opts))
	return cmd
}

func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(cmd.Context(), o.envFile)
}
