package server

import (
	"context"
	"sync"

	"github.com/officedocs/mailbridge/internal/background"
	"github.com/officedocs/mailbridge/internal/config"
	"github.com/officedocs/mailbridge/internal/mail"
	"github.com/officedocs/mailbridge/internal/token"
)

// HostContext holds the shared state of the native messaging host: the
// mail store client, the window bookkeeping, the format table and the
// token signer. Components are attached as the host wires itself up;
// accessors return nil until then.
type HostContext struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cfg      *config.Config
	formats  *config.FormatsTable
	signer   *token.Signer
	client   mail.Client
	windows  *background.WindowManager
	mu       sync.RWMutex
	shutdown bool
}

// NewHostContext creates a new host context. The configuration and
// format table are required; the mail client and window manager are
// attached later, once the store connection is up.
func NewHostContext(ctx context.Context, cfg *config.Config, formats *config.FormatsTable) *HostContext {
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &HostContext{
		ctx:     shutdownCtx,
		cancel:  cancel,
		cfg:     cfg,
		formats: formats,
		signer:  token.NewSigner(cfg.Secret),
	}
}

// Context returns the host context. It is canceled on Shutdown.
func (hc *HostContext) Context() context.Context {
	return hc.ctx
}

// Config returns the loaded configuration.
func (hc *HostContext) Config() *config.Config {
	return hc.cfg
}

// Formats returns the document format table.
func (hc *HostContext) Formats() *config.FormatsTable {
	return hc.formats
}

// Signer returns the token signer. The signer is present even when
// signing is disabled; Sign returns an empty token in that case.
func (hc *HostContext) Signer() *token.Signer {
	return hc.signer
}

// MailClient returns the mail store client, or nil before the store
// connection is established.
func (hc *HostContext) MailClient() mail.Client {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.client
}

// SetMailClient attaches the mail store client.
func (hc *HostContext) SetMailClient(client mail.Client) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.client = client
}

// Windows returns the window manager, or nil before it is attached.
func (hc *HostContext) Windows() *background.WindowManager {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.windows
}

// SetWindows attaches the window manager.
func (hc *HostContext) SetWindows(windows *background.WindowManager) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.windows = windows
}

// Connected reports whether the mail store client is attached.
func (hc *HostContext) Connected() bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.client != nil
}

// IsShutdown returns whether the host has been shut down.
func (hc *HostContext) IsShutdown() bool {
	hc.mu.RLock()
	defer hc.mu.RUnlock()
	return hc.shutdown
}

// Shutdown shuts down the host context.
func (hc *HostContext) Shutdown() error {
	hc.mu.Lock()
	defer hc.mu.Unlock()

	if hc.shutdown {
		return nil
	}

	hc.shutdown = true
	hc.cancel()
	return nil
}
