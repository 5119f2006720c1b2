package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"nstore-backend/config"
	"nstore-backend/controllers"
	"nstore-backend/editor"
	"nstore-backend/gateway"
	"nstore-backend/middleware"
	"nstore-backend/routes"
	"nstore-backend/session"
	"nstore-backend/templates"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the public storefront and the admin panel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, config.NewLogger(os.Stdout, cfg))
		},
	}
}

func serve(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) error {
	slog.SetDefault(log)

	b, err := openBackends(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.close(closeCtx); err != nil {
			log.Error("closing backends", "error", err)
		}
	}()

	store := session.New(b.auth, log)
	store.Start()
	defer store.Close()

	var guardOpts []session.GuardOption
	if cfg.SessionDoubleCheck {
		guardOpts = append(guardOpts, session.WithProbe(session.ProbeFrom(b.auth)))
	}
	guard := session.NewGuard(store, guardOpts...)

	views, err := templates.New()
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}

	gw := gateway.New(b.products, b.images, log)
	ctrl := &controllers.Controller{
		Products:       gw,
		Editor:         editor.New(gw, log),
		Session:        store,
		Flash:          middleware.NewFlashCodec([]byte(cfg.FlashSecret), !cfg.IsDevelopment()),
		Views:          views,
		Log:            log,
		WhatsAppNumber: cfg.WhatsAppNumber,
		Ping:           b.ping,
	}

	opts := routes.Options{
		Env:            cfg.Env,
		Log:            log,
		CORSOrigins:    cfg.CORSOrigins,
		CSRFKey:        []byte(cfg.PasetoSecretKey),
		TrustedOrigins: cfg.TrustedOrigins,
	}
	if cfg.StorageDriver == gateway.DriverLocal {
		opts.MediaDir = cfg.LocalUploadDir
		opts.MediaPrefix = cfg.LocalUploadURLPrefix
	}

	servers := []*http.Server{
		newServer(cfg.PublicAddr(), routes.SetupPublic(ctrl, opts)),
		newServer(cfg.AdminAddr, routes.SetupAdmin(ctrl, guard, opts)),
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			log.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, fmt.Errorf("server %s shutdown: %w", srv.Addr, err))
			}
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("servers stopped")
	return nil
}

func newServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}
