package goGate

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/MrEthical07/goGate/route"
	"github.com/MrEthical07/goGate/transport"
)

// Config is the full engine configuration. Build copies it; later changes to the
// caller's value have no effect.
type Config struct {
	Backend   BackendConfig   `yaml:"backend"`
	Session   SessionConfig   `yaml:"session"`
	Routes    RoutesConfig    `yaml:"routes"`
	Transport TransportConfig `yaml:"transport"`
	Audit     AuditConfig     `yaml:"audit"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

/*
====================================
BACKEND CONFIG
====================================
*/

// BackendConfig locates the user service.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeout bounds each backend call when Builder.WithHTTPClient is not used.
	// Zero disables it.
	Timeout time.Duration `yaml:"timeout"`
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig namespaces the two store keys. Under a Redis Cluster client the
// prefix must carry a hash tag, e.g. "{vlearn}:", so both keys share a slot.
type SessionConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig is the protected-area table.
type RoutesConfig struct {
	SignInPath string             `yaml:"sign_in_path"`
	Areas      []route.Definition `yaml:"areas"`
}

/*
====================================
TRANSPORT CONFIG
====================================
*/

// TransportConfig controls the response-inspection point.
type TransportConfig struct {
	// RejectStatuses are the statuses that, on a request that carried the
	// credential, mean the backend no longer honours the session.
	RejectStatuses []int `yaml:"reject_statuses"`
	// RestrictToBackendHost attaches the credential only to requests for the
	// backend's host.
	RestrictToBackendHost bool `yaml:"restrict_to_backend_host"`
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

type AuditConfig struct {
	Enabled    bool `yaml:"enabled"`
	BufferSize int  `yaml:"buffer_size"`
	DropIfFull bool `yaml:"drop_if_full"`
}

type MetricsConfig struct {
	Enabled                 bool `yaml:"enabled"`
	EnableLatencyHistograms bool `yaml:"enable_latency_histograms"`
}

// DefaultConfig returns the V-Learn defaults: the local user service, the stock
// area table and teardown on 401 only.
func DefaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:8080",
			Timeout: 10 * time.Second,
		},
		Session: SessionConfig{
			KeyPrefix: "vlearn:",
		},
		Routes: RoutesConfig{
			SignInPath: route.DefaultSignInPath,
			Areas:      route.DefaultDefinitions(),
		},
		Transport: TransportConfig{
			RejectStatuses:        append([]int(nil), transport.DefaultRejectStatuses...),
			RestrictToBackendHost: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 true,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Transport.RejectStatuses = append([]int(nil), cfg.Transport.RejectStatuses...)
	if cfg.Routes.Areas != nil {
		out.Routes.Areas = make([]route.Definition, len(cfg.Routes.Areas))
		for i, d := range cfg.Routes.Areas {
			d.Roles = append([]string(nil), d.Roles...)
			out.Routes.Areas[i] = d
		}
	}
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first configuration problem. The route table itself is
// checked by Build.
func (c *Config) Validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("Backend BaseURL must be set")
	}
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("Backend BaseURL %q must be an absolute http(s) URL", c.Backend.BaseURL)
	}
	if c.Backend.Timeout < 0 {
		return errors.New("Backend Timeout must be >= 0")
	}

	if c.Session.KeyPrefix == "" {
		return errors.New("Session KeyPrefix must not be empty")
	}

	if len(c.Routes.Areas) == 0 {
		return errors.New("Routes Areas must not be empty")
	}

	if len(c.Transport.RejectStatuses) == 0 {
		return errors.New("Transport RejectStatuses must not be empty")
	}
	for _, s := range c.Transport.RejectStatuses {
		if s < 400 || s > 599 {
			return fmt.Errorf("Transport RejectStatuses entry %d is not an error status", s)
		}
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when Audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}
	return nil
}
