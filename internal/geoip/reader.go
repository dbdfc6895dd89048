package geoip

import (
	"net"
	"sync"

	"github.com/oschwald/geoip2-golang"
)

// Provider resolves the country of the site server. The site serves a single
// address, so the last answer is kept until the address changes.
type Provider struct {
	db *geoip2.Reader

	mu       sync.Mutex
	lastIP   string
	lastCode string
}

// Open loads a GeoLite2/GeoIP2 country database.
func Open(path string) (*Provider, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}

	return &Provider{db: db}, nil
}

// Close releases the database. It is a no-op on a nil provider.
func (p *Provider) Close() error {
	if p == nil {
		return nil
	}

	return p.db.Close()
}

// CountryCode returns the ISO code (e.g. "DE") for addr, or "" for a nil provider,
// a hostname or an address missing from the database.
func (p *Provider) CountryCode(addr string) string {
	if p == nil {
		return ""
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if addr == p.lastIP {
		return p.lastCode
	}

	code := ""
	if ip := net.ParseIP(addr); ip != nil {
		if record, err := p.db.Country(ip); err == nil {
			code = record.Country.IsoCode
		}
	}

	p.lastIP, p.lastCode = addr, code
	return code
}
