package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultWindowWidth is the fallback popup width when the config
	// file does not specify one.
	DefaultWindowWidth = 800

	// DefaultWindowHeight is the fallback popup height.
	DefaultWindowHeight = 600

	// DefaultMaxAttachmentSize limits attachment payloads to 25MB.
	DefaultMaxAttachmentSize = 25 * 1024 * 1024
)

// Config is the application configuration, loaded once at startup and
// read-only afterwards.
type Config struct {
	// ServerURL is the document server base URL with trailing slashes
	// stripped. Always https.
	ServerURL string

	// Secret is the optional shared signing key. Empty disables
	// configuration tokens.
	Secret string

	// FormatsPath is the path of the formats manifest the Formats
	// table was built from.
	FormatsPath string

	// Formats is the supported-formats table.
	Formats *FormatsTable

	// Window holds default popup dimensions.
	Window WindowDefaults

	// Limits holds operational limits.
	Limits Limits
}

// WindowDefaults holds default popup dimensions for viewer windows.
type WindowDefaults struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Limits holds operational limits.
type Limits struct {
	MaxAttachmentSize int64 `json:"maxAttachmentSize"`
}

// fileConfig mirrors the on-disk JSON layout.
type fileConfig struct {
	Server struct {
		URL    string `json:"url"`
		Secret string `json:"secret"`
	} `json:"server"`
	Vendor struct {
		Formats string `json:"formats"`
	} `json:"vendor"`
	UI struct {
		Window *WindowDefaults `json:"window"`
	} `json:"ui"`
	Limits *Limits `json:"limits"`
}

// Load reads the configuration file at path and the formats manifest it
// references. A relative formats path is resolved against the config
// file's directory. Any failure here is fatal to startup.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	serverURL, err := SanitizeServerURL(fc.Server.URL)
	if err != nil {
		return nil, err
	}

	if fc.Vendor.Formats == "" {
		return nil, fmt.Errorf("config is missing vendor.formats")
	}

	formatsPath := fc.Vendor.Formats
	if !filepath.IsAbs(formatsPath) {
		formatsPath = filepath.Join(filepath.Dir(path), formatsPath)
	}

	formats, err := LoadFormats(formatsPath)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerURL:   serverURL,
		Secret:      fc.Server.Secret,
		FormatsPath: formatsPath,
		Formats:     formats,
		Window: WindowDefaults{
			Width:  DefaultWindowWidth,
			Height: DefaultWindowHeight,
		},
		Limits: Limits{
			MaxAttachmentSize: DefaultMaxAttachmentSize,
		},
	}

	if fc.UI.Window != nil {
		if fc.UI.Window.Width > 0 {
			cfg.Window.Width = fc.UI.Window.Width
		}
		if fc.UI.Window.Height > 0 {
			cfg.Window.Height = fc.UI.Window.Height
		}
	}
	if fc.Limits != nil && fc.Limits.MaxAttachmentSize > 0 {
		cfg.Limits.MaxAttachmentSize = fc.Limits.MaxAttachmentSize
	}

	return cfg, nil
}

// SanitizeServerURL validates and normalizes the document server URL.
// Trailing slashes are stripped; the scheme must be https because the
// editor configuration (and optionally its signing token) travels to
// the server.
func SanitizeServerURL(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("document server URL is required")
	}

	clean := strings.TrimRight(rawURL, "/")

	if !strings.HasPrefix(clean, "https://") {
		return "", fmt.Errorf("document server URL must use https: %s", clean)
	}

	parsed, err := url.Parse(clean)
	if err != nil {
		return "", fmt.Errorf("invalid document server URL: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("invalid document server URL: missing host")
	}

	return clean, nil
}
