// Package server implements the HTTP server, middleware, and request handlers for the application.
package server

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/woozymasta/dzstatus/assets"
	"github.com/woozymasta/dzstatus/internal/config"
	"github.com/woozymasta/dzstatus/internal/game"
	"github.com/woozymasta/dzstatus/internal/geoip"
	"github.com/woozymasta/dzstatus/internal/resolver"
	"github.com/woozymasta/dzstatus/internal/site"
)

// pollInterval is how often the landing page refreshes the status badge.
const pollInterval = 30 * time.Second

// New creates a new Server with the provided resolver, site content, GeoIP provider and A2S prober.
// geo may be nil.
func New(res *resolver.Resolver, store *site.Store, geo *geoip.Provider, prober game.Prober, cfg *config.Config) (*Server, error) {
	content, err := assets.ReadFile("landing.html")
	if err != nil {
		return nil, fmt.Errorf("read landing page: %w", err)
	}

	landing, err := template.New("landing").Parse(string(content))
	if err != nil {
		return nil, fmt.Errorf("parse landing page: %w", err)
	}

	return &Server{
		resolver:     res,
		site:         store,
		geoip:        geo,
		prober:       prober,
		landing:      landing,
		cacheControl: fmt.Sprintf("public, max-age=%d", int(cfg.Server.CacheMaxAge.Seconds())),
		trustProxy:   cfg.Server.TrustProxy,
	}, nil
}

// Run configures the HTTP routes and returns the main handler.
func (s *Server) Run() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.LoggingMiddleware)

	r.Get("/api/status", s.handleStatus)
	// legacy Netlify function path still requested by deployed front-ends
	r.Get("/.netlify/functions/status", s.handleStatus)

	r.Get("/api/site", s.handleSite)
	r.Get("/api/a2s", s.handleA2S)
	r.Get("/api/version", s.handleVersion)
	r.Get("/", s.handleIndex)

	return r
}
