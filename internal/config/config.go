// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/dzstatus/internal/logger"
	"github.com/woozymasta/dzstatus/internal/vars"
)

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Server   Server        `group:"Server Options" env-namespace:"DZSTATUS"`
	Upstream Upstream      `group:"Upstream Options" namespace:"upstream" env-namespace:"DZSTATUS_UPSTREAM"`
	Resolver Resolver      `group:"Resolver Options" namespace:"resolver" env-namespace:"DZSTATUS_RESOLVER"`
	Site     Site          `group:"Site Options" namespace:"site" env-namespace:"DZSTATUS_SITE"`
	Watch    Watch         `group:"Watch Options" namespace:"watch" env-namespace:"DZSTATUS_WATCH"`
	A2S      A2S           `group:"A2S Options" namespace:"a2s" env-namespace:"DZSTATUS_A2S"`
	GeoIP    GeoIP         `group:"GeoIP Options" namespace:"geoip" env-namespace:"DZSTATUS_GEOIP"`
	Logger   logger.Config `group:"Logger Options" namespace:"log" env-namespace:"DZSTATUS_LOG"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Server holds web server configuration.
type Server struct {
	// betteralign:ignore

	Address     string        `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Server listen address" default:":8080"`
	CacheMaxAge time.Duration `long:"cache-max-age" env:"CACHE_MAX_AGE" description:"Public cache lifetime advertised on status responses" default:"15s"`
	TrustProxy  bool          `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
}

// Upstream holds BattleMetrics server directory configuration.
type Upstream struct {
	// betteralign:ignore

	URL      string        `long:"url" env:"URL" description:"BattleMetrics API base URL" default:"https://api.battlemetrics.com"`
	Game     string        `long:"game" env:"GAME" description:"Game filter of the server search" default:"dayz"`
	Token    string        `long:"token" env:"TOKEN" description:"Optional BattleMetrics API token"`
	PageSize int           `long:"page-size" env:"PAGE_SIZE" description:"Number of search results requested in one page" default:"100"`
	Timeout  time.Duration `long:"timeout" env:"TIMEOUT" description:"Upstream request timeout, 0 keeps the transport default" default:"0s"`
	Rate     float64       `long:"rate" env:"RATE" description:"Max upstream requests per second, 0 disables throttling" default:"0"`
	Burst    int           `long:"burst" env:"BURST" description:"Upstream request burst when throttling is enabled" default:"1"`
}

// Resolver holds server-match and normalization configuration.
type Resolver struct {
	// betteralign:ignore

	DefaultMap string `long:"default-map" env:"DEFAULT_MAP" description:"Map name reported when the upstream does not supply one" default:"Chernarus"`
}

// Site holds community site content configuration.
type Site struct {
	// betteralign:ignore

	Path   string `short:"s" long:"path" env:"PATH" description:"Path to site content YAML, embedded defaults are used when empty"`
	Reload bool   `long:"reload" env:"RELOAD" description:"Reload site content when the file changes"`
}

// Watch holds background status polling configuration.
type Watch struct {
	// betteralign:ignore

	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Status poll interval of the configured server, 0 disables polling" default:"30s"`
}

// A2S holds Source Query protocol configuration.
type A2S struct {
	// betteralign:ignore

	Timeout    time.Duration `long:"timeout" env:"TIMEOUT" description:"Query timeout" default:"3s"`
	BufferSize uint16        `long:"buffer-size" env:"BUFFER_SIZE" description:"Response body buffer size" default:"1400"`
}

// GeoIP holds MaxMind GeoIP configuration.
type GeoIP struct {
	// betteralign:ignore

	Path     string        `short:"g" long:"path" env:"PATH" description:"Path to MMDB file, country detection is disabled when empty"`
	URL      string        `long:"url" env:"URL" description:"URL to download MMDB" default:"https://git.io/GeoLite2-Country.mmdb"`
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Update interval check" default:"24h"`
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	return cfg
}

// parseArgs parses args into a validated Config.
func parseArgs(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.NamespaceDelimiter = "-"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Upstream.PageSize < 1 || c.Upstream.PageSize > 100 {
		return fmt.Errorf("upstream page size must be within 1..100, got %d", c.Upstream.PageSize)
	}
	if c.Upstream.Rate < 0 {
		return fmt.Errorf("upstream rate must not be negative")
	}
	if c.Resolver.DefaultMap == "" {
		return fmt.Errorf("resolver default map must not be empty")
	}

	return nil
}
