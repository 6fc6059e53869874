package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jinzhu/configor"
)

// Data gateways the client can run against.
const (
	GatewayRemote = "remote"
	GatewayLocal  = "local"
)

// ClientConfig configures the command-line client. Values come from an
// optional JSON/YAML file and FANCLUB_* environment variables.
type ClientConfig struct {
	Gateway        string `default:"local" env:"FANCLUB_GATEWAY"`
	Host           string `default:"localhost" env:"FANCLUB_HOST"`
	APIBase        string `env:"FANCLUB_API_BASE"`
	StateFile      string `env:"FANCLUB_STATE_FILE"`
	TimeoutSeconds int    `default:"15" env:"FANCLUB_TIMEOUT_SECONDS"`
}

// Timeout is the HTTP timeout of the remote gateway.
func (c ClientConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LoadClient reads the client configuration. Missing files are ignored.
func LoadClient(files ...string) (ClientConfig, error) {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	var cfg ClientConfig
	if err := configor.New(&configor.Config{ENVPrefix: "-"}).Load(&cfg, existing...); err != nil {
		return ClientConfig{}, fmt.Errorf("load client config: %w", err)
	}
	cfg.Gateway = strings.ToLower(strings.TrimSpace(cfg.Gateway))
	switch cfg.Gateway {
	case GatewayRemote, GatewayLocal:
	default:
		return ClientConfig{}, fmt.Errorf("unknown gateway %q", cfg.Gateway)
	}
	if cfg.StateFile == "" {
		cfg.StateFile = defaultStateFile()
	}
	if cfg.APIBase == "" {
		cfg.APIBase = APIBaseForHost(cfg.Host)
	}
	if _, err := url.Parse(cfg.APIBase); err != nil {
		return ClientConfig{}, fmt.Errorf("invalid api base: %w", err)
	}
	return cfg, nil
}

// APIBaseForHost picks the API base URL from the host the client targets:
// local development talks to port 3000, anything else to /api on that host.
func APIBaseForHost(host string) string {
	host = strings.TrimSpace(host)
	if host == "" || host == "localhost" || strings.HasPrefix(host, "localhost:") {
		return "http://localhost:3000/api"
	}
	if strings.Contains(host, "://") {
		return strings.TrimRight(host, "/") + "/api"
	}
	return "https://" + strings.TrimRight(host, "/") + "/api"
}

func defaultStateFile() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		return ".fanclub-state.json"
	}
	return filepath.Join(dir, "fanclub", "state.json")
}
