package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/officedocs/mailbridge/internal/attachments"
	"github.com/officedocs/mailbridge/internal/logging"
)

// Privileged call method names. The extension side routes them to the
// corresponding mail store primitives.
const (
	methodMessagesGet           = "messages.get"
	methodMessagesGetFull       = "messages.getFull"
	methodMessagesAttachments   = "messages.listAttachments"
	methodMessagesGetAttachment = "messages.getAttachmentFile"
	methodComposeDetails        = "compose.getDetails"
	methodComposeAttachments    = "compose.listAttachments"
	methodComposeGetAttachment  = "compose.getAttachmentFile"
	methodComposeAddAttachment  = "compose.addAttachment"
	methodComposeRemove         = "compose.removeAttachment"
	methodTabsGet               = "tabs.get"
	methodAccountsList          = "accounts.list"
	methodWindowsCreate         = "windows.create"
	methodWindowsFocus          = "windows.focus"
)

// eventWindowClosed is the notification fired when any window closes.
const eventWindowClosed = "windows.closed"

// Caller issues privileged calls over the native messaging connection.
// natmsg.Conn satisfies it.
type Caller interface {
	Call(ctx context.Context, method string, params any) (json.RawMessage, error)
	OnEvent(event string, h func(body json.RawMessage))
}

// CallRecorder records store round trip metrics. Satisfied by
// instrumentation.Metrics; a nil CallRecorder disables recording.
type CallRecorder interface {
	RecordStoreCall(ctx context.Context, method, status string, duration time.Duration)
}

// Bridge implements Client and WindowAPI over a Caller.
type Bridge struct {
	caller   Caller
	logger   *slog.Logger
	recorder CallRecorder
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithCallRecorder sets the store call metrics recorder.
func WithCallRecorder(r CallRecorder) BridgeOption {
	return func(b *Bridge) {
		b.recorder = r
	}
}

// NewBridge creates a Bridge. A nil logger falls back to slog.Default.
func NewBridge(caller Caller, logger *slog.Logger, opts ...BridgeOption) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{caller: caller, logger: logger}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var (
	_ Client    = (*Bridge)(nil)
	_ WindowAPI = (*Bridge)(nil)
)

// call issues a privileged call and decodes its reply into out. A nil
// out discards the reply body.
func (b *Bridge) call(ctx context.Context, method string, params, out any) error {
	start := time.Now()
	body, err := b.caller.Call(ctx, method, params)
	if b.recorder != nil {
		status := logging.StatusSuccess
		if err != nil {
			status = logging.StatusError
		}
		b.recorder.RecordStoreCall(ctx, method, status, time.Since(start))
	}
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s reply: %w", method, err)
	}
	return nil
}

func (b *Bridge) GetMessage(ctx context.Context, messageID int) (*MessageHeader, error) {
	var header MessageHeader
	if err := b.call(ctx, methodMessagesGet, map[string]any{"messageId": messageID}, &header); err != nil {
		return nil, err
	}
	return &header, nil
}

func (b *Bridge) GetFullMessage(ctx context.Context, messageID int) (*FullMessage, error) {
	var msg FullMessage
	if err := b.call(ctx, methodMessagesGetFull, map[string]any{"messageId": messageID}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func (b *Bridge) ListAttachments(ctx context.Context, messageID int) ([]attachments.Attachment, error) {
	var atts []attachments.Attachment
	if err := b.call(ctx, methodMessagesAttachments, map[string]any{"messageId": messageID}, &atts); err != nil {
		return nil, err
	}
	return atts, nil
}

func (b *Bridge) GetAttachmentBytes(ctx context.Context, messageID int, partName string) (*FileAttachment, error) {
	params := map[string]any{"messageId": messageID, "partName": partName}
	var file FileAttachment
	if err := b.call(ctx, methodMessagesGetAttachment, params, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (b *Bridge) GetComposeDetails(ctx context.Context, tabID int) (*ComposeDetails, error) {
	var details ComposeDetails
	if err := b.call(ctx, methodComposeDetails, map[string]any{"tabId": tabID}, &details); err != nil {
		return nil, err
	}
	return &details, nil
}

func (b *Bridge) ListComposeAttachments(ctx context.Context, tabID int) ([]attachments.Attachment, error) {
	var atts []attachments.Attachment
	if err := b.call(ctx, methodComposeAttachments, map[string]any{"tabId": tabID}, &atts); err != nil {
		return nil, err
	}
	return atts, nil
}

func (b *Bridge) GetComposeAttachmentFile(ctx context.Context, tabID, attachmentID int) (*FileAttachment, error) {
	params := map[string]any{"tabId": tabID, "attachmentId": attachmentID}
	var file FileAttachment
	if err := b.call(ctx, methodComposeGetAttachment, params, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (b *Bridge) AddComposeAttachment(ctx context.Context, tabID int, file FileAttachment) error {
	params := map[string]any{"tabId": tabID, "file": file}
	return b.call(ctx, methodComposeAddAttachment, params, nil)
}

func (b *Bridge) RemoveComposeAttachment(ctx context.Context, tabID, attachmentID int) error {
	params := map[string]any{"tabId": tabID, "attachmentId": attachmentID}
	return b.call(ctx, methodComposeRemove, params, nil)
}

func (b *Bridge) TabExists(ctx context.Context, tabID int) (bool, error) {
	var tab struct {
		ID int `json:"id"`
	}
	err := b.call(ctx, methodTabsGet, map[string]any{"tabId": tabID}, &tab)
	if err != nil {
		// The store reports a missing tab as a call failure. That is
		// an answer, not a transport error.
		b.logger.Debug("tab lookup failed", slog.Int("tab_id", tabID), slog.String("error", err.Error()))
		return false, nil
	}
	return tab.ID == tabID, nil
}

func (b *Bridge) ListAccounts(ctx context.Context) ([]Account, error) {
	var accounts []Account
	if err := b.call(ctx, methodAccountsList, struct{}{}, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (b *Bridge) CreateWindow(ctx context.Context, opts WindowOptions) (*Window, error) {
	var win Window
	if err := b.call(ctx, methodWindowsCreate, opts, &win); err != nil {
		return nil, err
	}
	return &win, nil
}

func (b *Bridge) FocusWindow(ctx context.Context, windowID int) error {
	return b.call(ctx, methodWindowsFocus, map[string]any{"windowId": windowID}, nil)
}

func (b *Bridge) OnWindowClosed(fn func(windowID int)) {
	b.caller.OnEvent(eventWindowClosed, func(body json.RawMessage) {
		var payload struct {
			WindowID int `json:"windowId"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			b.logger.Error("malformed window close event", slog.String("error", err.Error()))
			return
		}
		fn(payload.WindowID)
	})
}
