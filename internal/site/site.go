// Package site loads the community site content shown next to the live server status.
package site

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/woozymasta/dzstatus/assets"
	"github.com/woozymasta/dzstatus/internal/models"
	"gopkg.in/yaml.v3"
)

// DayZAppID is the Steam application id of DayZ.
const DayZAppID = 221100

// Store holds the current site content and swaps it atomically on reload.
type Store struct {
	current atomic.Pointer[models.Site]
	path    string
}

// NewStore loads the content from path, or the embedded defaults when path is empty.
func NewStore(path string) (*Store, error) {
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}

	return s, nil
}

// Path returns the content file path, empty for embedded defaults.
func (s *Store) Path() string {
	return s.path
}

// Get returns the current content.
func (s *Store) Get() models.Site {
	return *s.current.Load()
}

// Reload re-reads the content. On error the previous content is kept.
func (s *Store) Reload() error {
	site, err := Load(s.path)
	if err != nil {
		return err
	}
	s.current.Store(&site)

	return nil
}

// Load reads site content from path, or the embedded defaults when path is empty.
func Load(path string) (models.Site, error) {
	var (
		data []byte
		err  error
	)
	if path == "" {
		data, err = assets.ReadFile("site.yaml")
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return models.Site{}, fmt.Errorf("read site content: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates YAML site content. Unknown keys are rejected.
// A missing game port defaults to the query port.
func Parse(data []byte) (models.Site, error) {
	var site models.Site

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&site); err != nil {
		return models.Site{}, fmt.Errorf("parse site content: %w", err)
	}

	site.Name = strings.TrimSpace(site.Name)
	site.IP = strings.TrimSpace(site.IP)
	if site.GamePort == 0 {
		site.GamePort = site.QueryPort
	}

	if err := validate(site); err != nil {
		return models.Site{}, err
	}

	return site, nil
}

func validate(site models.Site) error {
	var errs []error
	if site.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if site.IP == "" {
		errs = append(errs, errors.New("ip is required"))
	}
	if site.QueryPort < 1 || site.QueryPort > 65535 {
		errs = append(errs, fmt.Errorf("query_port %d out of range", site.QueryPort))
	}
	if site.GamePort < 1 || site.GamePort > 65535 {
		errs = append(errs, fmt.Errorf("game_port %d out of range", site.GamePort))
	}
	for i, m := range site.Mods {
		if m.Name == "" || m.URL == "" {
			errs = append(errs, fmt.Errorf("mods[%d]: name and url are required", i))
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid site content: %w", err)
	}

	return nil
}

// ConnectLink returns the Steam deep link that launches DayZ and joins the game port.
func ConnectLink(site models.Site) string {
	return fmt.Sprintf("steam://run/%d//%%20-connect=%s%%20-port=%d", DayZAppID, site.IP, site.GamePort)
}

// Info enriches the content with the connect link and the server country code.
func Info(site models.Site, countryCode string) models.SiteInfo {
	return models.SiteInfo{
		Site:        site,
		Connect:     ConnectLink(site),
		CountryCode: countryCode,
	}
}
