package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/dzstatus/internal/resolver"
	"github.com/woozymasta/dzstatus/internal/site"
	"github.com/woozymasta/dzstatus/internal/vars"
)

// handleStatus resolves the live status of a server through the upstream directory.
// Lookup failures are reported in the body with online=false, never with an error status.
// Query params: ?ip=1.2.3.4&port=2302
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", s.cacheControl)

	q, err := resolver.ParseQuery(r.URL.Query().Get("ip"), r.URL.Query().Get("port"))
	if err != nil {
		msg := "Missing ip or port"
		if errors.Is(err, resolver.ErrInvalidPort) {
			msg = "Invalid port"
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	writeJSON(w, http.StatusOK, s.resolver.Resolve(r.Context(), q))
}

// handleSite returns the community content with the steam connect link and server country.
func (s *Server) handleSite(w http.ResponseWriter, _ *http.Request) {
	content := s.site.Get()
	writeJSON(w, http.StatusOK, site.Info(content, s.geoip.CountryCode(content.IP)))
}

// handleA2S performs a live A2S query to the site server.
// The target always comes from the site content, never from the request.
func (s *Server) handleA2S(w http.ResponseWriter, _ *http.Request) {
	content := s.site.Get()

	probe, err := s.prober.Probe(content.IP, content.QueryPort)
	if err != nil {
		log.Debug().
			Err(err).
			Str("ip", content.IP).
			Int("port", content.QueryPort).
			Msg("A2S query failed")

		writeJSON(w, http.StatusGatewayTimeout, map[string]any{"online": false, "error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, probe)
}

// handleVersion returns the build information.
func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, vars.Ver())
}

// handleIndex renders the landing page from the current site content.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	content := s.site.Get()

	q := url.Values{}
	q.Set("ip", content.IP)
	q.Set("port", strconv.Itoa(content.QueryPort))

	info := site.Info(content, s.geoip.CountryCode(content.IP))

	var buf bytes.Buffer
	err := s.landing.Execute(&buf, landingData{
		Connect:        template.URL(info.Connect), //nolint:gosec // built from validated site content
		Site:           info,
		StatusURL:      "/api/status?" + q.Encode(),
		PollIntervalMs: pollInterval.Milliseconds(),
	})
	if err != nil {
		log.Error().Err(err).Msg("Failed to render landing page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
