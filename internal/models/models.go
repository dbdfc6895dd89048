// Package models defines the data structures exchanged with the upstream directory and the web front-end.
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Query identifies the target server as supplied by the caller.
type Query struct {
	IP   string
	Port int
}

// Address returns the "ip:port" form used by the address-string match.
func (q Query) Address() string {
	return q.IP + ":" + strconv.Itoa(q.Port)
}

// SearchResponse is the top-level BattleMetrics server search document.
type SearchResponse struct {
	Data CandidateSet `json:"data"`
}

// CandidateSet is the ordered list of candidates returned by one upstream search.
type CandidateSet []Candidate

// Candidate is one server record from the upstream directory search.
type Candidate struct {
	ID         string     `json:"id,omitempty"`
	Type       string     `json:"type,omitempty"`
	Attributes Attributes `json:"attributes"`
}

// Attributes holds the server fields of a candidate. Every field may be absent.
type Attributes struct {
	Name       *string   `json:"name"`
	Map        *string   `json:"map"`
	Details    *Details  `json:"details"`
	Port       Number    `json:"port"`
	PortQuery  Number    `json:"portQuery"`
	Players    Number    `json:"players"`
	MaxPlayers Number    `json:"maxPlayers"`
	IP         string    `json:"ip"`
	Status     string    `json:"status"`
	Addresses  Addresses `json:"addresses"`
}

// Details is the nested game-specific detail block of a candidate.
type Details struct {
	Map       *string   `json:"map"`
	Addresses Addresses `json:"addresses"`
}

// AllAddresses returns the top-level and detail-level address lists flattened into one.
func (a Attributes) AllAddresses() []string {
	all := make([]string, 0, len(a.Addresses))
	all = append(all, a.Addresses...)
	if a.Details != nil {
		all = append(all, a.Details.Addresses...)
	}

	return all
}

// Number is an optional integer that decodes from a JSON number or a numeric string.
// Null, non-numeric strings and absent fields leave it invalid.
type Number struct {
	Value int
	Valid bool
}

// UnmarshalJSON accepts 2302, 2302.0 and "2302".
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = Number{}
			return nil
		}
		*n = Number{Value: int(v), Valid: true}
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("number: %w", err)
	}
	*n = Number{Value: int(f), Valid: true}

	return nil
}

// Int returns the value and whether it was present.
func (n Number) Int() (int, bool) {
	return n.Value, n.Valid
}

// Ptr returns a pointer to the value, or nil when absent.
func (n Number) Ptr() *int {
	if !n.Valid {
		return nil
	}
	v := n.Value

	return &v
}

// Num builds a valid Number.
func Num(v int) Number {
	return Number{Value: v, Valid: true}
}

// Addresses is a list of "host:port" strings; non-string entries are dropped while decoding.
type Addresses []string

// UnmarshalJSON decodes an array keeping only non-empty string elements. Any other JSON shape yields an empty list.
func (a *Addresses) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		*a = nil
		return nil
	}

	out := make(Addresses, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	*a = out

	return nil
}

// ResolvedStatus is the normalized server status returned to the front-end.
// It is the entire body of a status response and is never mutated after construction.
type ResolvedStatus struct {
	Online  bool    `json:"online"`
	Players *int    `json:"players"`
	Max     *int    `json:"max"`
	Name    *string `json:"name"`
	Map     string  `json:"map"`
	IP      string  `json:"ip"`
	Port    int     `json:"port"`
	Note    string  `json:"note"`
}

// Site is the static community content shown next to the live status.
type Site struct {
	Name      string   `yaml:"name" json:"name"`
	IP        string   `yaml:"ip" json:"ip"`
	Discord   string   `yaml:"discord" json:"discord,omitempty"`
	Mods      []Mod    `yaml:"mods" json:"mods"`
	Rules     []string `yaml:"rules" json:"rules"`
	News      []string `yaml:"news" json:"news"`
	QueryPort int      `yaml:"query_port" json:"query_port"`
	GamePort  int      `yaml:"game_port" json:"game_port"`
}

// Mod is a workshop mod entry of the site content.
type Mod struct {
	Name string `yaml:"name" json:"name"`
	URL  string `yaml:"url" json:"url"`
}

// SiteInfo is the site content enriched with computed values for the front-end.
type SiteInfo struct {
	Site
	Connect     string `json:"connect"`
	CountryCode string `json:"country_code,omitempty"`
}
