// Package game probes the game server directly using the Source Engine Query (A2S) protocol.
package game

import (
	"github.com/woozymasta/a2s/pkg/a2s"
	"github.com/woozymasta/dzstatus/internal/config"
)

// Probe is the live A2S_INFO answer of a game server.
type Probe struct {
	Name       string `json:"name"`
	Map        string `json:"map"`
	Game       string `json:"game"`
	Version    string `json:"version"`
	OS         string `json:"os"`
	IP         string `json:"ip"`
	Port       int    `json:"port"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"max_players"`
	Online     bool   `json:"online"`
}

// Prober queries a server over A2S.
type Prober interface {
	Probe(ip string, port int) (*Probe, error)
}

// A2SProber implements Prober over UDP.
type A2SProber struct {
	options config.A2S
}

// NewProber creates an A2SProber with the configured timeout and buffer size.
func NewProber(options config.A2S) *A2SProber {
	return &A2SProber{options: options}
}

// Probe connects to a game server via UDP and requests A2S_INFO.
// It returns an error if the server is unreachable.
func (p *A2SProber) Probe(ip string, port int) (*Probe, error) {
	client, err := a2s.New(ip, port)
	if err != nil {
		return nil, err
	}
	defer func() { _ = client.Close() }()

	client.BufferSize = p.options.BufferSize
	client.Timeout = p.options.Timeout

	info, err := client.GetInfo()
	if err != nil {
		return nil, err
	}

	return &Probe{
		Name:       info.Name,
		Map:        info.Map,
		Game:       info.Game,
		Version:    info.Version,
		OS:         info.Environment.String(),
		IP:         ip,
		Port:       port,
		Players:    int(info.Players),
		MaxPlayers: int(info.MaxPlayers),
		Online:     true,
	}, nil
}
