// Package watch periodically resolves the status of the site's own server and logs when it changes.
package watch

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/dzstatus/internal/models"
)

// Resolver resolves a query into a status.
type Resolver interface {
	Resolve(ctx context.Context, q models.Query) models.ResolvedStatus
}

// Poller resolves one server on a fixed interval. The query is read on every tick
// so it follows site content reloads.
type Poller struct {
	resolver Resolver
	query    func() models.Query
	onChange func(models.ResolvedStatus)
	interval time.Duration
	lastHash uint64
	polled   bool
}

// New creates a Poller. onChange is called with every status that differs from the previous one and may be nil.
func New(resolver Resolver, query func() models.Query, interval time.Duration, onChange func(models.ResolvedStatus)) *Poller {
	return &Poller{
		resolver: resolver,
		query:    query,
		onChange: onChange,
		interval: interval,
	}
}

// Run polls immediately and then on every interval until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Poll(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll resolves the server once and reports whether the status changed since the previous poll.
// Poll is not safe for concurrent use; Run calls it from a single goroutine.
func (p *Poller) Poll(ctx context.Context) bool {
	q := p.query()
	status := p.resolver.Resolve(ctx, q)
	if ctx.Err() != nil {
		return false
	}

	body, err := json.Marshal(status)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode polled status")
		return false
	}

	hash := xxhash.Sum64(body)
	if p.polled && hash == p.lastHash {
		log.Trace().Str("ip", q.IP).Int("port", q.Port).Msg("Server status unchanged")
		return false
	}
	p.polled = true
	p.lastHash = hash

	var event *zerolog.Event
	if status.Online {
		event = log.Info()
	} else {
		event = log.Warn()
	}
	players := 0
	if status.Players != nil {
		players = *status.Players
	}
	event.
		Str("ip", q.IP).
		Int("port", q.Port).
		Bool("online", status.Online).
		Int("players", players).
		Str("map", status.Map).
		Str("note", status.Note).
		Msg("Server status changed")

	if p.onChange != nil {
		p.onChange(status)
	}

	return true
}
