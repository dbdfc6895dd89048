// main is the entry point of the dzstatus service.
// It initializes the configuration, logger, site content, upstream resolver and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/dzstatus/internal/battlemetrics"
	"github.com/woozymasta/dzstatus/internal/config"
	"github.com/woozymasta/dzstatus/internal/game"
	"github.com/woozymasta/dzstatus/internal/geoip"
	"github.com/woozymasta/dzstatus/internal/logger"
	"github.com/woozymasta/dzstatus/internal/models"
	"github.com/woozymasta/dzstatus/internal/resolver"
	"github.com/woozymasta/dzstatus/internal/server"
	"github.com/woozymasta/dzstatus/internal/site"
	"github.com/woozymasta/dzstatus/internal/watch"
)

func main() {
	cfg := config.Parse()

	logger.Setup(cfg.Logger)
	log.Info().Msg("Starting dzstatus service...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Site content
	store, err := site.NewStore(cfg.Site.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Site.Path).Msg("Failed to load site content")
	}
	content := store.Get()
	log.Info().
		Str("name", content.Name).
		Str("ip", content.IP).
		Int("query_port", content.QueryPort).
		Msg("Site content loaded")

	if cfg.Site.Reload && cfg.Site.Path != "" {
		watcher, err := site.NewWatcher(store, 500*time.Millisecond, nil)
		if err != nil {
			log.Warn().Err(err).Msg("Site content watcher not available")
		} else {
			watcher.Start()
			defer watcher.Stop()
		}
	}

	// GeoIP
	geoProvider := openGeoIP(ctx, cfg.GeoIP)
	if geoProvider != nil {
		defer func() {
			if err := geoProvider.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing GeoIP provider")
			}
		}()
	}

	// Resolver
	res := resolver.New(battlemetrics.New(cfg.Upstream), cfg.Resolver.DefaultMap)

	srvHandler, err := server.New(res, store, geoProvider, game.NewProber(cfg.A2S), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	// Background self-poll
	var wg sync.WaitGroup
	if cfg.Watch.Interval > 0 {
		poller := watch.New(res, func() models.Query {
			s := store.Get()
			return models.Query{IP: s.IP, Port: s.QueryPort}
		}, cfg.Watch.Interval, nil)

		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(ctx)
		}()
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      srvHandler.Run(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("address", cfg.Server.Address).Msg("Server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		log.Error().Err(err).Msg("Server failed")
		stop()
	case <-ctx.Done():
		log.Info().Msg("Shutting down server...")
	}

	// Graceful Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Wait for the poller to observe the cancelled context
	wg.Wait()

	log.Info().Msg("Server exited")
}

// openGeoIP downloads (if needed) and opens the GeoIP database. It returns nil when disabled or unavailable.
func openGeoIP(ctx context.Context, cfg config.GeoIP) *geoip.Provider {
	if cfg.Path == "" {
		log.Debug().Msg("GeoIP database not configured, country detection disabled")
		return nil
	}

	log.Info().Msg("Checking GeoIP database...")
	if err := geoip.EnsureDB(ctx, cfg.Path, cfg.URL, cfg.Interval); err != nil {
		log.Error().Err(err).Msg("Failed to download GeoIP database")
	}

	provider, err := geoip.Open(cfg.Path)
	if err != nil {
		log.Error().Err(err).Msg("Failed to open GeoIP database, country detection disabled")
		return nil
	}

	return provider
}
