package editor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/officedocs/mailbridge/internal/attachments"
	"github.com/officedocs/mailbridge/internal/config"
	"github.com/officedocs/mailbridge/internal/logging"
	"github.com/officedocs/mailbridge/internal/protocol"
	"github.com/officedocs/mailbridge/internal/token"
)

// editorPlaceholder names the mount point the editor instance renders
// into.
const editorPlaceholder = "placeholder"

// Protocol is the slice of the action client a session needs.
type Protocol interface {
	GetUserInfo(ctx context.Context) (*protocol.UserInfoResponse, error)
	GetComposeDetails(ctx context.Context, composeTabID int) (*protocol.ComposeDetailsResponse, error)
	SaveComposeAttachment(ctx context.Context, composeTabID, attachmentID int, data []byte, name, contentType string) error
}

// Session owns at most one running editor instance and routes its
// save events back to a compose attachment or a file download.
type Session struct {
	api       API
	client    Protocol
	signer    *token.Signer
	formats   *config.FormatsTable
	saver     FileSaver
	http      *resty.Client
	logger    *slog.Logger
	serverURL string
	gauge     SessionGauge

	// composeTabID is non-zero when the session edits a compose
	// attachment; zero means saves become downloads.
	composeTabID int

	mu       sync.Mutex
	instance Instance
	cfg      *Config
	unsaved  bool
}

// SessionGauge tracks how many editor instances are live. Satisfied by
// instrumentation.Metrics; a nil gauge disables tracking.
type SessionGauge interface {
	IncrementEditorSessions(ctx context.Context)
	DecrementEditorSessions(ctx context.Context)
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithSessionGauge reports instance starts and stops to the gauge.
func WithSessionGauge(gauge SessionGauge) SessionOption {
	return func(s *Session) {
		s.gauge = gauge
	}
}

// WithComposeTab routes saves back into the given compose window.
func WithComposeTab(tabID int) SessionOption {
	return func(s *Session) {
		s.composeTabID = tabID
	}
}

// WithHTTPClient overrides the client used to re-fetch save-result
// URLs.
func WithHTTPClient(http *resty.Client) SessionOption {
	return func(s *Session) {
		s.http = http
	}
}

// NewSession creates a Session. A nil logger falls back to
// slog.Default.
func NewSession(api API, client Protocol, signer *token.Signer, formats *config.FormatsTable, saver FileSaver, serverURL string, logger *slog.Logger, opts ...SessionOption) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		api:       api,
		client:    client,
		signer:    signer,
		formats:   formats,
		saver:     saver,
		http:      resty.New(),
		logger:    logger,
		serverURL: serverURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BuildConfig assembles the editor configuration for a document. The
// format's capability tags drive permissions, the identity lookup is
// best effort, and the config is signed when a secret is configured.
func (s *Session) BuildConfig(ctx context.Context, data []byte, name, extension, docType string) (*Config, error) {
	family := s.formats.Family(s.formats.TypeForExtension(extension))

	perms := Permissions{
		Download: true,
		Print:    true,
	}
	if family != nil {
		perms.Edit = family.HasAction(config.ActionEdit)
		perms.Review = family.HasAction(config.ActionReview)
		perms.Comment = family.HasAction(config.ActionComment)
		perms.FillForms = family.HasAction(config.ActionFill)
		perms.ModifyFilter = family.HasAction(config.ActionCustomFilter)
		perms.ModifyContentControl = family.HasAction(config.ActionEdit)
	}

	mode := ModeView
	if perms.Edit {
		mode = ModeEdit
	}

	cfg := &Config{
		DocumentData: data,
		Document: Document{
			FileType:    extension,
			Title:       name,
			Key:         uuid.NewString(),
			URL:         InlineDocumentURL,
			Permissions: perms,
		},
		DocumentType: docType,
		Height:       "100%",
		Width:        "100%",
		EditorConfig: Options{
			Mode: mode,
			User: s.lookupUser(ctx),
		},
	}

	tok, err := s.signer.Sign(cfg.SignablePayload())
	if err != nil {
		return nil, fmt.Errorf("failed to sign editor config: %w", err)
	}
	if tok == "" {
		s.logger.Debug("config signing disabled, sending unsigned config")
	}
	cfg.Token = tok

	return cfg, nil
}

// lookupUser is best effort: any failure yields an anonymous session.
func (s *Session) lookupUser(ctx context.Context) *User {
	info, err := s.client.GetUserInfo(ctx)
	if err != nil {
		s.logger.Warn("user identity lookup failed", logging.Err(err))
		return nil
	}
	if !info.Success {
		return nil
	}
	s.logger.Debug("editing as", logging.UserHash(info.UserInfo.Email))
	return &User{ID: info.UserInfo.ID, Name: info.UserInfo.Name}
}

// Open loads the editor API and starts an instance for the document.
// An instance already running in this session is destroyed first; a
// session never shows two documents at once.
func (s *Session) Open(ctx context.Context, data []byte, name string) error {
	extension := config.FileExtension(name)
	docType := s.formats.TypeForExtension(extension)

	cfg, err := s.BuildConfig(ctx, data, name, extension, docType)
	if err != nil {
		return err
	}

	if err := s.api.Load(ctx, s.serverURL); err != nil {
		return fmt.Errorf("editor initialization failed: %w", err)
	}

	events := Events{
		OnAppReady: s.onAppReady,
		OnSaveDocument: func(event SaveEvent) {
			if err := s.OnSaveDocument(ctx, event, name); err != nil {
				s.logger.Error("save failed", logging.Attachment(name), logging.Err(err))
			}
		},
		OnStateChange: s.onStateChange,
	}

	instance, err := s.api.NewInstance(editorPlaceholder, cfg, events)
	if err != nil {
		return fmt.Errorf("editor initialization failed: %w", err)
	}

	s.mu.Lock()
	replaced := s.instance != nil
	if replaced {
		s.instance.Destroy()
	}
	s.instance = instance
	s.cfg = cfg
	s.unsaved = false
	s.mu.Unlock()

	// Replacing an instance keeps the live count unchanged.
	if s.gauge != nil && !replaced {
		s.gauge.IncrementEditorSessions(ctx)
	}

	return nil
}

// onAppReady pushes inline bytes into the editor once it is up.
func (s *Session) onAppReady() {
	s.mu.Lock()
	instance, cfg := s.instance, s.cfg
	s.mu.Unlock()

	if instance == nil || cfg == nil || cfg.Document.URL != InlineDocumentURL {
		return
	}
	if err := instance.OpenDocument(cfg.DocumentData); err != nil {
		s.logger.Error("failed to push document data", logging.Err(err))
	}
}

func (s *Session) onStateChange() {
	s.mu.Lock()
	s.unsaved = true
	s.mu.Unlock()
}

// UnsavedChanges reports whether the document has edits not yet saved.
// The page-unload guard consults it before letting the window close.
func (s *Session) UnsavedChanges() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unsaved
}

// OnSaveDocument persists editor output. In a compose context the
// bytes replace the matching compose attachment; otherwise they are
// written out as a download. A save failure leaves the session alive
// for a retry.
func (s *Session) OnSaveDocument(ctx context.Context, event SaveEvent, name string) error {
	data := event.Data
	if len(data) == 0 && event.URL != "" {
		fetched, err := s.fetchResult(ctx, event.URL)
		if err != nil {
			return err
		}
		data = fetched
	}

	if s.composeTabID != 0 {
		if err := s.saveToCompose(ctx, data, name); err != nil {
			return err
		}
	} else {
		if err := s.saver.Save(name, data); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.unsaved = false
	s.mu.Unlock()
	return nil
}

func (s *Session) saveToCompose(ctx context.Context, data []byte, name string) error {
	details, err := s.client.GetComposeDetails(ctx, s.composeTabID)
	if err != nil {
		return err
	}

	var target *attachments.Attachment
	for i := range details.Attachments {
		if details.Attachments[i].Name == name {
			target = &details.Attachments[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("attachment not found in compose window")
	}

	contentType := target.ContentType
	if contentType == "" {
		contentType = attachments.DefaultContentType
	}
	return s.client.SaveComposeAttachment(ctx, s.composeTabID, target.ID, data, name, contentType)
}

func (s *Session) fetchResult(ctx context.Context, url string) ([]byte, error) {
	resp, err := s.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch save result: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("failed to fetch save result: %s", resp.Status())
	}
	return resp.Body(), nil
}

// Close destroys the running instance. Unsaved edits are logged, not
// blocked; the page layer is responsible for warning first.
func (s *Session) Close() {
	s.mu.Lock()
	if s.unsaved {
		s.logger.Warn("closing editor with unsaved changes")
	}
	hadInstance := s.instance != nil
	if hadInstance {
		s.instance.Destroy()
		s.instance = nil
	}
	s.cfg = nil
	s.mu.Unlock()

	if s.gauge != nil && hadInstance {
		s.gauge.DecrementEditorSessions(context.Background())
	}
}
