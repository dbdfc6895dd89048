// Package resolver maps a requested ip and port onto one server of the upstream directory
// and normalizes it into the status shown by the web front-end.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/dzstatus/internal/battlemetrics"
	"github.com/woozymasta/dzstatus/internal/models"
)

// Diagnostic notes carried by every resolved status.
const (
	NoteMatched       = "BattleMetrics match OK"
	NoteUpstreamNotOK = "Upstream not ok"
	NoteNoMatch       = "No match on BattleMetrics for given ip/port"
	NoteLookupFailed  = "Lookup failed"
)

var (
	// ErrMissingParams is returned by ParseQuery when ip or port is absent.
	ErrMissingParams = errors.New("missing ip or port")
	// ErrInvalidPort is returned by ParseQuery when port is not a number.
	ErrInvalidPort = errors.New("invalid port")
)

// Searcher runs the upstream directory search.
type Searcher interface {
	Search(ctx context.Context, term string) (models.CandidateSet, error)
}

// Resolver queries the directory and applies the match policy.
// It keeps no state between calls.
type Resolver struct {
	searcher   Searcher
	defaultMap string
}

// New creates a Resolver. defaultMap is reported whenever no map name is known.
func New(searcher Searcher, defaultMap string) *Resolver {
	return &Resolver{
		searcher:   searcher,
		defaultMap: defaultMap,
	}
}

// DefaultMap returns the map name used when the directory does not supply one.
func (r *Resolver) DefaultMap() string {
	return r.defaultMap
}

// ParseQuery validates raw request parameters.
func ParseQuery(ip, port string) (models.Query, error) {
	ip = strings.TrimSpace(ip)
	port = strings.TrimSpace(port)
	if ip == "" || port == "" {
		return models.Query{}, ErrMissingParams
	}

	p, err := strconv.Atoi(port)
	if err != nil {
		return models.Query{}, fmt.Errorf("%w: %q", ErrInvalidPort, port)
	}

	return models.Query{IP: ip, Port: p}, nil
}

// Resolve returns the status of the server identified by q.
// It never fails: upstream errors, missing matches and unexpected panics all produce the offline status
// with a note telling them apart.
func (r *Resolver) Resolve(ctx context.Context, q models.Query) (status models.ResolvedStatus) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Interface("panic", rec).
				Str("ip", q.IP).
				Int("port", q.Port).
				Msg("Status lookup panicked")

			status = r.Offline(q, NoteLookupFailed)
		}
	}()

	set, err := r.searcher.Search(ctx, q.IP)
	if err != nil {
		var statusErr *battlemetrics.StatusError
		if errors.As(err, &statusErr) {
			log.Warn().
				Int("status", statusErr.StatusCode).
				Str("ip", q.IP).
				Int("port", q.Port).
				Msg("Upstream returned non-success status")

			return r.Offline(q, NoteUpstreamNotOK)
		}

		log.Warn().
			Err(err).
			Str("ip", q.IP).
			Int("port", q.Port).
			Msg("Status lookup failed")

		return r.Offline(q, NoteLookupFailed)
	}

	match, stage := Match(set, q)
	if match == nil {
		log.Debug().
			Str("ip", q.IP).
			Int("port", q.Port).
			Int("candidates", len(set)).
			Msg("No candidate matched")

		return r.Offline(q, NoteNoMatch)
	}

	log.Trace().
		Str("ip", q.IP).
		Int("port", q.Port).
		Str("stage", stage.String()).
		Str("id", match.ID).
		Msg("Candidate matched")

	return r.Normalize(match, q)
}

// Normalize converts the selected candidate into the status returned to the front-end.
func (r *Resolver) Normalize(c *models.Candidate, q models.Query) models.ResolvedStatus {
	a := c.Attributes

	status := strings.ToLower(a.Status)
	ip := a.IP
	if ip == "" {
		ip = q.IP
	}

	port := q.Port
	if p, ok := a.Port.Int(); ok {
		port = p
	} else if p, ok := a.PortQuery.Int(); ok {
		port = p
	}

	return models.ResolvedStatus{
		Online:  status == "online" || status == "running",
		Players: a.Players.Ptr(),
		Max:     a.MaxPlayers.Ptr(),
		Name:    a.Name,
		Map:     r.mapName(a),
		IP:      ip,
		Port:    port,
		Note:    NoteMatched,
	}
}

// mapName prefers the top-level map, then the detail map. The top-level field shadows the detail one
// even when empty, and an empty result falls back to the default.
func (r *Resolver) mapName(a models.Attributes) string {
	var name string
	switch {
	case a.Map != nil:
		name = *a.Map
	case a.Details != nil && a.Details.Map != nil:
		name = *a.Details.Map
	}

	if name == "" {
		return r.defaultMap
	}

	return name
}

// Offline builds the fallback status echoing the requested ip and port.
func (r *Resolver) Offline(q models.Query, note string) models.ResolvedStatus {
	players := 0

	return models.ResolvedStatus{
		Online:  false,
		Players: &players,
		Map:     r.defaultMap,
		IP:      q.IP,
		Port:    q.Port,
		Note:    note,
	}
}
