package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/tessro/blare/internal/server"
	"github.com/tessro/blare/internal/sonos/auth"
	"github.com/tessro/blare/internal/sonos/control"
	"github.com/tessro/blare/internal/tts"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bridge server",
	Long:  `Starts the HTTP bridge that exposes the TTS and audio clip API to the local network.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.Sonos.ClientID == "" || cfg.Sonos.ClientSecret == "" {
		return fmt.Errorf("sonos.client_id and sonos.client_secret must be configured. Set them in ~/.blarerc or via BLARE_SONOS_CLIENT_ID / BLARE_SONOS_CLIENT_SECRET")
	}

	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		log.SetLevel(level)
	}
	if Verbose() {
		log.SetLevel(log.DebugLevel)
	}

	storage, err := auth.NewTokenStorage(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize token storage: %w", err)
	}

	tokens := auth.NewManager(cfg.Sonos.ClientID, cfg.Sonos.ClientSecret, cfg.RedirectURI(), storage)
	sonosClient := control.New(tokens)

	srv := server.New(cfg, tokens, sonosClient, tts.GoogleTranslate{})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Warm up the credential so the first request doesn't pay for the
	// refresh, mirroring a cold start after a restart.
	tokens.EnsureToken(ctx)
	if tokens.AuthRequired() {
		log.Info("No usable credential; visit /auth to authorize", "url", cfg.ExternalBaseURL()+"/auth")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Info("Bridge server listening", "addr", srv.Addr(), "base_url", cfg.ExternalBaseURL())

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}

	return nil
}
