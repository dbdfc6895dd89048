package server

import (
	"html/template"

	"github.com/woozymasta/dzstatus/internal/game"
	"github.com/woozymasta/dzstatus/internal/geoip"
	"github.com/woozymasta/dzstatus/internal/models"
	"github.com/woozymasta/dzstatus/internal/resolver"
	"github.com/woozymasta/dzstatus/internal/site"
)

// Server holds the dependencies and configuration required to handle HTTP requests.
// It keeps no per-request state; every status request resolves independently.
type Server struct {
	// resolver performs the upstream search, server match and normalization.
	resolver *resolver.Resolver

	// site holds the community content, swapped atomically on reload.
	site *site.Store

	// geoip resolves the site server address to a country code.
	// It can be nil if the GeoIP database is not configured.
	geoip *geoip.Provider

	// prober queries the site server directly over A2S.
	prober game.Prober

	// landing is the parsed landing page template.
	landing *template.Template

	// cacheControl is the Cache-Control value sent with status responses.
	cacheControl string

	// trustProxy indicates whether X-Forwarded-For or CF-Connecting-IP
	// are trusted when logging the client address.
	trustProxy bool
}

// landingData is passed to the landing page template.
type landingData struct {
	// Connect is the steam:// link, marked safe because html/template rejects non-http schemes.
	Connect        template.URL
	StatusURL      string
	Site           models.SiteInfo
	PollIntervalMs int64
}
