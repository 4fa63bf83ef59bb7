package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pixelforge/storefront/internal/api"
	transport "github.com/pixelforge/storefront/internal/infrastructure/http"
	"github.com/pixelforge/storefront/pkg/logger"
)

// Images are capped individually by the image policy; the body limit only
// keeps a multipart request with five maximum-size images plus fields.
const bodyLimit = "32M"

func newServerCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Run the storefront HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			log := logger.Init(logger.Options{Level: cfg.LogLevel, Env: cfg.Env, Service: "storefront"})

			ctx := cmd.Context()
			a, err := newApp(ctx, cfg, log)
			if err != nil {
				log.Error().Err(err).Msg("failed to start")
				return err
			}
			defer a.close()

			// Workers keep running until the HTTP server has finished its
			// in-flight requests.
			workerCtx, stopWorkers := context.WithCancel(context.WithoutCancel(ctx))
			a.dispatcher.Start(workerCtx)
			defer func() {
				stopWorkers()
				a.dispatcher.Wait()
			}()

			e := api.NewRouter(api.Services{
				Auth:       a.auth,
				Users:      a.users,
				Categories: a.categories,
				Products:   a.products,
				Inquiries:  a.inquiries,
			}, api.RouterOptions{
				Logger:    log,
				UploadDir: a.uploadDir,
				BodyLimit: bodyLimit,
				Checks:    a.readinessChecks(),
				Swagger:   cfg.IsDevelopment(),
			})

			return transport.NewServer(e, cfg.Port, log).Run(ctx)
		},
	}
}
