package background

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/officedocs/mailbridge/internal/attachments"
	"github.com/officedocs/mailbridge/internal/config"
	"github.com/officedocs/mailbridge/internal/logging"
	"github.com/officedocs/mailbridge/internal/mail"
)

// Logical window key prefixes. A key identifies what a popup shows so
// a second open request for the same content focuses the existing
// window instead of spawning another.
const (
	messageKeyPrefix = "msg_"
	composeKeyPrefix = "compose_"
)

// Viewer and create-dialog page paths, relative to the UI root.
const (
	viewerPage = "pages/viewer.html"
	createPage = "pages/create.html"
)

// Create dialog dimensions. The dialog is a small fixed form, not a
// document viewer.
const (
	createDialogWidth  = 480
	createDialogHeight = 280
)

// WindowManager tracks open popup windows by logical key. Opening a
// key that is already on screen focuses the existing window; a close
// event evicts the key.
type WindowManager struct {
	api      mail.WindowAPI
	defaults config.WindowDefaults
	logger   *slog.Logger

	mu   sync.Mutex
	open map[string]int
}

// NewWindowManager creates a WindowManager and subscribes it to window
// close events.
func NewWindowManager(api mail.WindowAPI, defaults config.WindowDefaults, logger *slog.Logger) *WindowManager {
	if logger == nil {
		logger = slog.Default()
	}
	if defaults.Width == 0 {
		defaults.Width = config.DefaultWindowWidth
	}
	if defaults.Height == 0 {
		defaults.Height = config.DefaultWindowHeight
	}
	wm := &WindowManager{
		api:      api,
		defaults: defaults,
		logger:   logger,
		open:     make(map[string]int),
	}
	api.OnWindowClosed(wm.handleClosed)
	return wm
}

// MessageKey is the logical key of the viewer for a received message.
func MessageKey(messageID int) string {
	return messageKeyPrefix + strconv.Itoa(messageID)
}

// ComposeKey is the logical key of the viewer for a compose window.
func ComposeKey(tabID int) string {
	return composeKeyPrefix + strconv.Itoa(tabID)
}

// Open shows the window for key, focusing it when already open. The
// lock is held across the create call so two concurrent opens of the
// same key cannot race into duplicate windows.
func (wm *WindowManager) Open(ctx context.Context, key, pageURL string, width, height int) error {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	if id, ok := wm.open[key]; ok {
		wm.logger.Debug("focusing existing window", slog.String("key", key), slog.Int("window_id", id))
		return wm.api.FocusWindow(ctx, id)
	}

	if width == 0 {
		width = wm.defaults.Width
	}
	if height == 0 {
		height = wm.defaults.Height
	}

	win, err := wm.api.CreateWindow(ctx, mail.WindowOptions{
		URL:    pageURL,
		Type:   "popup",
		Width:  width,
		Height: height,
	})
	if err != nil {
		return fmt.Errorf("failed to create window for %s: %w", key, err)
	}

	wm.open[key] = win.ID
	wm.logger.Debug("opened window", slog.String("key", key), slog.Int("window_id", win.ID))
	return nil
}

func (wm *WindowManager) handleClosed(windowID int) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	for key, id := range wm.open {
		if id == windowID {
			delete(wm.open, key)
			wm.logger.Debug("window closed", slog.String("key", key), slog.Int("window_id", windowID))
		}
	}
}

// MessageIDForWindow returns the message a viewer window was opened
// for, when the window belongs to a message key.
func (wm *WindowManager) MessageIDForWindow(windowID int) (int, bool) {
	wm.mu.Lock()
	defer wm.mu.Unlock()

	for key, id := range wm.open {
		if id != windowID || !strings.HasPrefix(key, messageKeyPrefix) {
			continue
		}
		raw := strings.TrimPrefix(key, messageKeyPrefix)
		if i := strings.IndexByte(raw, '_'); i >= 0 {
			raw = raw[:i]
		}
		messageID, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		return messageID, true
	}
	return 0, false
}

// OpenMessageViewer shows the attachment viewer for a received message.
func (wm *WindowManager) OpenMessageViewer(ctx context.Context, messageID int) error {
	q := url.Values{"messageId": {strconv.Itoa(messageID)}}
	return wm.Open(ctx, MessageKey(messageID), viewerPage+"?"+q.Encode(), 0, 0)
}

// OpenComposeViewer shows the attachment viewer for a compose window.
func (wm *WindowManager) OpenComposeViewer(ctx context.Context, tabID int) error {
	q := url.Values{"composeTabId": {strconv.Itoa(tabID)}}
	return wm.Open(ctx, ComposeKey(tabID), viewerPage+"?"+q.Encode(), 0, 0)
}

// OpenCreateDialog shows the blank-document dialog for a compose
// window.
func (wm *WindowManager) OpenCreateDialog(ctx context.Context, tabID int) error {
	q := url.Values{"composeTabId": {strconv.Itoa(tabID)}}
	key := ComposeKey(tabID) + "_create"
	return wm.Open(ctx, key, createPage+"?"+q.Encode(), createDialogWidth, createDialogHeight)
}

// OpenAttachmentViewer deep-links the viewer to one attachment of a
// received message. The attachment is referenced by ID when it has
// one, else by MIME part name.
func (wm *WindowManager) OpenAttachmentViewer(ctx context.Context, messageID int, att attachments.Attachment) error {
	if !att.Actionable() {
		wm.logger.Warn("attachment cannot be opened individually", logging.Attachment(att.Name))
		return fmt.Errorf("attachment %q has no id or part name", att.Name)
	}

	q := url.Values{
		"messageId":      {strconv.Itoa(messageID)},
		"attachmentName": {att.Name},
	}
	var unique string
	if att.ID != 0 {
		q.Set("attachmentId", strconv.Itoa(att.ID))
		unique = strconv.Itoa(att.ID)
	} else {
		q.Set("attachmentPartName", att.PartName)
		unique = att.PartName
	}

	key := MessageKey(messageID) + "_" + unique
	return wm.Open(ctx, key, viewerPage+"?"+q.Encode(), 0, 0)
}
