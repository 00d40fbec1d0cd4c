package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"loradex/internal/config"
	"loradex/internal/httpapi"
	"loradex/internal/manager"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the catalog HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log := newLogger(cfg.LogLevel, cfg.LogFormat)

		store := config.NewStore(path, cfg)
		mgr := manager.NewWithConfig(manager.ManagerConfig{
			Config:      store,
			ClicksFile:  clicksPath(cfg),
			ScanWorkers: cfg.ScanWorkers,
			Logger:      log,
			Publisher:   manager.LogPublisher{Log: log},
		})
		if !mgr.Ready() {
			log.Warn().Str("lora_path", store.BasePath()).Msg("base path missing; set it with POST /config")
		}

		httpapi.SetLogger(log)
		httpapi.SetDefaultLogLevel(cfg.LogLevel)
		httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
		httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, nil, nil)
		httpapi.SetMutationRateLimit(cfg.UploadRPS, cfg.UploadBurst)
		maxUpload, _ := cmd.Flags().GetInt64("max-upload-bytes")
		httpapi.SetMaxUploadBytes(maxUpload)
		scanTimeout, _ := cmd.Flags().GetDuration("scan-timeout")
		httpapi.SetScanTimeout(scanTimeout)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		httpapi.SetBaseContext(ctx)

		if cfg.Watch {
			go mgr.Watch(ctx)
		}

		srv := &http.Server{
			Addr:              cfg.Addr,
			Handler:           httpapi.NewMux(mgr),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", cfg.Addr).Str("lora_path", store.BasePath()).Str("config", path).Msg("loradex listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown error")
		}
		return nil
	},
}

func init() {
	f := serveCmd.Flags()
	f.String("addr", "", "HTTP listen address, e.g. :5000")
	f.Bool("cors", false, "Enable CORS")
	f.String("cors-origins", "", "Comma-separated allowed CORS origins")
	f.Int64("max-body-bytes", 0, "Maximum JSON request body size in bytes")
	f.Int64("max-upload-bytes", 0, "Maximum preview upload size in bytes (0 for 32 MiB)")
	f.Duration("scan-timeout", 0, "Per-request catalog scan timeout (0 disables)")
	f.Float64("upload-rps", 0, "Mutation requests per second (0 disables limiting)")
	f.Int("upload-burst", 0, "Mutation request burst")
	f.Bool("watch", false, "Watch the base directory and report catalog changes in /status")
	rootCmd.AddCommand(serveCmd)
}
