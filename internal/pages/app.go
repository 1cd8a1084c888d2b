package pages

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/officedocs/mailbridge/internal/attachments"
	"github.com/officedocs/mailbridge/internal/editor"
	"github.com/officedocs/mailbridge/internal/logging"
	"github.com/officedocs/mailbridge/internal/protocol"
	"github.com/officedocs/mailbridge/internal/router"
)

// Params are the query parameters a viewer window was opened with.
// Exactly one of MessageID and ComposeTabID is set; the attachment
// fields deep-link straight into one document.
type Params struct {
	MessageID          int
	ComposeTabID       int
	WindowID           int
	AttachmentID       string
	AttachmentName     string
	AttachmentPartName string
	Locale             string
}

// ParseParams decodes a window's raw query string.
func ParseParams(rawQuery string) (Params, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Params{}, fmt.Errorf("malformed window parameters: %w", err)
	}

	var p Params
	for key, dst := range map[string]*int{
		"messageId":    &p.MessageID,
		"composeTabId": &p.ComposeTabID,
		"windowId":     &p.WindowID,
	} {
		raw := values.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, fmt.Errorf("invalid %s: %q", key, raw)
		}
		*dst = n
	}

	p.AttachmentID = values.Get("attachmentId")
	p.AttachmentName = values.Get("attachmentName")
	p.AttachmentPartName = values.Get("attachmentPartName")
	p.Locale = values.Get("locale")
	return p, nil
}

// Resolver produces the supported attachments for a source context.
type Resolver interface {
	Resolve(ctx context.Context, src attachments.Context) ([]attachments.Attachment, error)
}

// attachmentAPI is the slice of the protocol client the loader needs.
type attachmentAPI interface {
	GetAttachmentData(ctx context.Context, composeTabID, attachmentID int) (*protocol.AttachmentDataResponse, error)
	GetMessageAttachmentData(ctx context.Context, windowID int) (*protocol.AttachmentDataResponse, error)
}

// NewAttachmentLoader builds a loader that fetches bytes through the
// protocol: by attachment ID in a compose context, by window
// reference for a received message.
func NewAttachmentLoader(api attachmentAPI, params Params) AttachmentLoader {
	return func(ctx context.Context, file attachments.Attachment) ([]byte, error) {
		if params.ComposeTabID != 0 {
			resp, err := api.GetAttachmentData(ctx, params.ComposeTabID, file.ID)
			if err != nil {
				return nil, err
			}
			return resp.Data, nil
		}
		resp, err := api.GetMessageAttachmentData(ctx, params.WindowID)
		if err != nil {
			return nil, err
		}
		return resp.Data, nil
	}
}

// App is the viewer window's control flow: resolve attachments, pick
// the landing route, and react to open and download requests.
type App struct {
	router   *router.Router
	resolver Resolver
	loader   AttachmentLoader
	saver    editor.FileSaver
	logger   *slog.Logger
	params   Params
}

// NewApp assembles the window control flow. A nil logger falls back
// to slog.Default.
func NewApp(rt *router.Router, resolver Resolver, loader AttachmentLoader, saver editor.FileSaver, params Params, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		router:   rt,
		resolver: resolver,
		loader:   loader,
		saver:    saver,
		logger:   logger,
		params:   params,
	}
}

// Run resolves the window's attachments and lands on the right route:
// the viewer when the parameters deep-link to one document, the file
// list when there is anything to show, the empty page otherwise.
func (a *App) Run(ctx context.Context) {
	a.router.Navigate(ctx, RouteLoading, LoadingData{Message: "Loading documents"})

	files, err := a.resolver.Resolve(ctx, attachments.Context{
		MessageID:    a.params.MessageID,
		ComposeTabID: a.params.ComposeTabID,
	})
	if err != nil {
		a.router.Navigate(ctx, RouteError, router.ErrorData{
			Title:   "Initialization failed",
			Message: err.Error(),
		})
		return
	}

	if a.params.AttachmentName != "" && len(files) > 0 {
		if target, ok := a.findDeepLinked(files); ok {
			a.router.Navigate(ctx, RouteViewer, ViewerData{File: target})
			return
		}
	}

	if len(files) > 0 {
		a.router.Navigate(ctx, RouteFiles, FileListData{Files: files})
		return
	}
	a.router.Navigate(ctx, RouteEmpty, EmptyData{IsCompose: a.params.ComposeTabID != 0})
}

// findDeepLinked matches the window parameters against the resolved
// list: by ID first, then part name, then display name.
func (a *App) findDeepLinked(files []attachments.Attachment) (attachments.Attachment, bool) {
	if a.params.AttachmentID != "" {
		for _, f := range files {
			if f.ID != 0 && strconv.Itoa(f.ID) == a.params.AttachmentID {
				return f, true
			}
		}
	}
	if a.params.AttachmentPartName != "" {
		for _, f := range files {
			if f.PartName == a.params.AttachmentPartName {
				return f, true
			}
		}
	}
	for _, f := range files {
		if f.Name == a.params.AttachmentName {
			return f, true
		}
	}
	return attachments.Attachment{}, false
}

// OpenFile navigates to the viewer for one attachment.
func (a *App) OpenFile(ctx context.Context, file attachments.Attachment) {
	a.logger.Debug("opening file", logging.Attachment(file.Name))
	a.router.Navigate(ctx, RouteViewer, ViewerData{File: file})
}

// DownloadFile fetches one attachment's bytes and saves them without
// opening the editor.
func (a *App) DownloadFile(ctx context.Context, file attachments.Attachment) {
	raw, err := a.loader(ctx, file)
	if err == nil {
		err = a.saver.Save(file.Name, raw)
	}
	if err != nil {
		a.logger.Error("download failed", logging.Attachment(file.Name), logging.Err(err))
		a.router.Navigate(ctx, RouteError, router.ErrorData{
			Title:   "Download failed",
			Message: err.Error(),
		})
	}
}
