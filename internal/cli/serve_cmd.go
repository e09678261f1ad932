package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/homilybuild/homily/internal/httpapi"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, app, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", app.Config.HTTPAddr, "Listen address")
	return cmd
}

func runServer(ctx context.Context, app *App, addr string) error {
	log := app.logger()
	router := httpapi.NewRouter(httpapi.Deps{
		Homilies:    app.Homilies,
		Contexts:    app.Contexts,
		Settings:    app.Settings,
		Wizards:     app.Wizards,
		Archives:    app.Archives,
		JWTSecret:   app.Config.JWTSecret,
		DevOwnerID:  app.owner(),
		CORSOrigins: app.Config.CORSOrigins,
		Metrics:     true,
		Logger:      log,
	})
	if !app.Config.AuthEnabled() {
		log.Warn("HOMILY_JWT_SECRET not set; trusting X-Owner-ID", zap.String("default_owner", app.owner()))
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpapi.NewServer(addr, router, log).Run(ctx)
	})
	g.Go(func() error {
		probeLLM(ctx, app, log)
		return nil
	})
	return g.Wait()
}

// probeLLM logs whether the configured provider answers. Generation still
// works if it comes up later.
func probeLLM(ctx context.Context, app *App, log *zap.Logger) {
	if app.LLM == nil {
		log.Warn("no LLM provider configured; generation is disabled")
		return
	}
	if app.LLM.Available(ctx) {
		log.Info("LLM provider reachable")
		return
	}
	if ctx.Err() == nil {
		log.Warn("LLM provider not reachable")
	}
}
