package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pixelforge/storefront/internal/core/domain"
	"github.com/pixelforge/storefront/pkg/logger"
)

type seedOptions struct {
	adminEmail    string
	adminPassword string
}

func newSeedCmd(root *rootOptions) *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default categories and an ADMIN account",
		Long: `Creates the default categories ("Photo Magnets", "Fridge Magnets",
"Retro Prints") and, when --admin-email is given, an ADMIN account.
Existing categories and accounts are left untouched. Usage:

	storefront seed --admin-email admin@pixelforge.com --admin-password '...'
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logger.Init(logger.Options{Level: cfg.LogLevel, Env: cfg.Env, Service: "storefront-seed"})

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.close()

			created, err := a.categories.EnsureDefaults(ctx, domain.DefaultCategories)
			if err != nil {
				return fmt.Errorf("seed categories: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "categories: %d created\n", created)

			if opts.adminEmail == "" {
				return nil
			}
			if opts.adminPassword == "" {
				return errors.New("--admin-password is required with --admin-email")
			}
			admin, err := a.auth.Provision(ctx, opts.adminEmail, opts.adminPassword, domain.RoleAdmin)
			switch {
			case errors.Is(err, domain.ErrDuplicateIdentity):
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s already exists\n", domain.NormalizeEmail(opts.adminEmail))
			case err != nil:
				return fmt.Errorf("seed admin: %w", err)
			default:
				fmt.Fprintf(cmd.OutOrStdout(), "admin %s created\n", admin.Email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.adminEmail, "admin-email", "", "email of the ADMIN account to create")
	cmd.Flags().StringVar(&opts.adminPassword, "admin-password", "", "password of the ADMIN account")
	return cmd
}
