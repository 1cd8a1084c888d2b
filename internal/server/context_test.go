package server

import (
	"context"
	"testing"

	"github.com/officedocs/mailbridge/internal/config"
)

func testHostContext(t *testing.T) *HostContext {
	t.Helper()

	cfg := &config.Config{
		ServerURL: "https://docs.example.com",
		Window:    config.WindowDefaults{Width: config.DefaultWindowWidth, Height: config.DefaultWindowHeight},
		Limits:    config.Limits{MaxAttachmentSize: config.DefaultMaxAttachmentSize},
	}
	formats := config.BuildFormats([]config.FormatEntry{
		{Name: "docx", Type: config.TypeWord, Actions: []string{config.ActionEdit}},
	})

	return NewHostContext(context.Background(), cfg, formats)
}

func TestHostContext_Accessors(t *testing.T) {
	hc := testHostContext(t)

	if hc.Config() == nil {
		t.Fatal("expected config to be set")
	}
	if hc.Formats() == nil {
		t.Fatal("expected formats to be set")
	}
	if hc.Signer() == nil {
		t.Fatal("expected signer to be present even without a secret")
	}
	if hc.MailClient() != nil {
		t.Error("mail client should be nil before the store connection is up")
	}
	if hc.Windows() != nil {
		t.Error("window manager should be nil before it is attached")
	}
	if hc.Connected() {
		t.Error("host should not report connected without a mail client")
	}
}

func TestHostContext_Shutdown(t *testing.T) {
	hc := testHostContext(t)

	if hc.IsShutdown() {
		t.Fatal("host should not start shut down")
	}

	if err := hc.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if !hc.IsShutdown() {
		t.Error("expected IsShutdown() to be true after Shutdown()")
	}

	select {
	case <-hc.Context().Done():
	default:
		t.Error("expected host context to be canceled after Shutdown()")
	}

	// Second shutdown is a no-op
	if err := hc.Shutdown(); err != nil {
		t.Errorf("repeated Shutdown() error = %v", err)
	}
}
