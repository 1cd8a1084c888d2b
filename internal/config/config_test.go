package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeServerURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "clean https url",
			url:  "https://docs.example.com",
			want: "https://docs.example.com",
		},
		{
			name: "trailing slash stripped",
			url:  "https://docs.example.com/",
			want: "https://docs.example.com",
		},
		{
			name: "multiple trailing slashes stripped",
			url:  "https://docs.example.com///",
			want: "https://docs.example.com",
		},
		{
			name: "path preserved",
			url:  "https://example.com/docserver/",
			want: "https://example.com/docserver",
		},
		{
			name:    "http rejected",
			url:     "http://docs.example.com",
			wantErr: true,
		},
		{
			name:    "empty rejected",
			url:     "",
			wantErr: true,
		},
		{
			name:    "scheme only rejected",
			url:     "https://",
			wantErr: true,
		},
		{
			name:    "not a url",
			url:     "docs.example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeServerURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeServerURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeServerURL(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func writeTestConfig(t *testing.T, configJSON, formatsJSON string) string {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "formats.json"), []byte(formatsJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(configJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

const testFormatsJSON = `[
	{"name": "docx", "type": "word", "mime": ["application/vnd.openxmlformats-officedocument.wordprocessingml.document"], "actions": ["edit", "comment"]},
	{"name": "xlsx", "type": "cell", "actions": ["edit"]}
]`

func TestLoad(t *testing.T) {
	path := writeTestConfig(t, `{
		"server": {"url": "https://docs.example.com/", "secret": "s3cret"},
		"vendor": {"formats": "formats.json"},
		"ui": {"window": {"width": 1024, "height": 768}},
		"limits": {"maxAttachmentSize": 1048576}
	}`, testFormatsJSON)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerURL != "https://docs.example.com" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.Secret != "s3cret" {
		t.Errorf("Secret = %q", cfg.Secret)
	}
	if cfg.Window.Width != 1024 || cfg.Window.Height != 768 {
		t.Errorf("Window = %+v", cfg.Window)
	}
	if cfg.Limits.MaxAttachmentSize != 1048576 {
		t.Errorf("MaxAttachmentSize = %d", cfg.Limits.MaxAttachmentSize)
	}
	if !cfg.Formats.IsSupportedFile("a.docx") || !cfg.Formats.IsSupportedFile("b.xlsx") {
		t.Error("formats table not built from manifest")
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeTestConfig(t, `{
		"server": {"url": "https://docs.example.com"},
		"vendor": {"formats": "formats.json"}
	}`, testFormatsJSON)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Secret != "" {
		t.Errorf("Secret = %q, want empty", cfg.Secret)
	}
	if cfg.Window.Width != DefaultWindowWidth || cfg.Window.Height != DefaultWindowHeight {
		t.Errorf("Window = %+v, want defaults", cfg.Window)
	}
	if cfg.Limits.MaxAttachmentSize != DefaultMaxAttachmentSize {
		t.Errorf("MaxAttachmentSize = %d, want default", cfg.Limits.MaxAttachmentSize)
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name       string
		configJSON string
	}{
		{
			name:       "bad server url",
			configJSON: `{"server": {"url": "http://insecure.example.com"}, "vendor": {"formats": "formats.json"}}`,
		},
		{
			name:       "missing formats path",
			configJSON: `{"server": {"url": "https://docs.example.com"}}`,
		},
		{
			name:       "missing formats manifest",
			configJSON: `{"server": {"url": "https://docs.example.com"}, "vendor": {"formats": "nope.json"}}`,
		},
		{
			name:       "malformed json",
			configJSON: `{"server": {`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestConfig(t, tt.configJSON, testFormatsJSON)
			if _, err := Load(path); err == nil {
				t.Error("Load() expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load() expected error for missing file")
	}
}
