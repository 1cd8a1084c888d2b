package background

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gabriel-vasile/mimetype"

	"github.com/officedocs/mailbridge/internal/attachments"
	"github.com/officedocs/mailbridge/internal/config"
	"github.com/officedocs/mailbridge/internal/instrumentation"
	"github.com/officedocs/mailbridge/internal/logging"
	"github.com/officedocs/mailbridge/internal/mail"
	"github.com/officedocs/mailbridge/internal/protocol"
)

// DefaultDocumentTitle names a blank document when the create request
// carries no title.
const DefaultDocumentTitle = "New Document"

// Handlers implements the privileged side of the action protocol over
// a mail.Client.
type Handlers struct {
	client    mail.Client
	formats   *config.FormatsTable
	windows   *WindowManager
	templates *TemplateSet
	limits    config.Limits
	logger    *slog.Logger
	metrics   *instrumentation.Metrics
	audit     *instrumentation.AuditLogger
}

// HandlerOption configures optional handler behavior.
type HandlerOption func(*Handlers)

// WithMetrics attaches a metrics recorder for attachment transfers.
func WithMetrics(m *instrumentation.Metrics) HandlerOption {
	return func(h *Handlers) {
		h.metrics = m
	}
}

// WithAudit attaches an audit logger for document access.
func WithAudit(a *instrumentation.AuditLogger) HandlerOption {
	return func(h *Handlers) {
		h.audit = a
	}
}

// NewHandlers creates the handler set. A nil logger falls back to
// slog.Default.
func NewHandlers(client mail.Client, formats *config.FormatsTable, windows *WindowManager, templates *TemplateSet, limits config.Limits, logger *slog.Logger, opts ...HandlerOption) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handlers{
		client:    client,
		formats:   formats,
		windows:   windows,
		templates: templates,
		limits:    limits,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register binds every action to the dispatcher.
func (h *Handlers) Register(d *protocol.Dispatcher) {
	d.Handle(protocol.ActionGetMessageData, h.GetMessageData)
	d.Handle(protocol.ActionGetComposeDetails, h.GetComposeDetails)
	d.Handle(protocol.ActionGetAttachmentData, h.GetAttachmentData)
	d.Handle(protocol.ActionSaveComposeAttachment, h.SaveComposeAttachment)
	d.Handle(protocol.ActionGetUserInfo, h.GetUserInfo)
	d.Handle(protocol.ActionCreateNewDocument, h.CreateNewDocument)
}

// GetMessageData returns a received message's fields and its
// attachment candidates. The stored attachment list wins when
// non-empty; the MIME part scan is a fallback, never merged in.
func (h *Handlers) GetMessageData(ctx context.Context, req *protocol.Request) (any, error) {
	var r protocol.GetMessageDataRequest
	if err := req.Decode(&r); err != nil {
		return nil, err
	}
	if r.MessageID == 0 {
		return nil, fmt.Errorf("invalid message ID")
	}
	messageID := r.MessageID.Int()

	header, err := h.client.GetMessage(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("message not found: %w", err)
	}

	full, err := h.client.GetFullMessage(ctx, messageID)
	if err != nil {
		return nil, err
	}

	atts, err := h.client.ListAttachments(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if len(atts) == 0 && len(full.Parts) > 0 {
		h.logger.Debug("scanning MIME parts for attachments", logging.Message(messageID))
		atts = attachments.FindInParts(full.Parts, h.formats)
	}

	return &protocol.MessageDataResponse{
		ID:          header.ID,
		Subject:     header.Subject,
		Author:      header.Author,
		Date:        header.Date,
		ContentType: header.ContentType,
		Size:        header.Size,
		Attachments: attachments.NormalizeAll(atts, 0),
	}, nil
}

// GetComposeDetails returns an in-progress compose window's fields and
// attachments.
func (h *Handlers) GetComposeDetails(ctx context.Context, req *protocol.Request) (any, error) {
	var r protocol.GetComposeDetailsRequest
	if err := req.Decode(&r); err != nil {
		return nil, err
	}
	if r.ComposeTabID == 0 {
		return nil, fmt.Errorf("no compose tab ID provided")
	}
	tabID := r.ComposeTabID.Int()

	details, err := h.client.GetComposeDetails(ctx, tabID)
	if err != nil {
		return nil, err
	}

	atts, err := h.client.ListComposeAttachments(ctx, tabID)
	if err != nil {
		return nil, err
	}

	return &protocol.ComposeDetailsResponse{
		Type:        details.Type,
		Subject:     details.Subject,
		To:          details.To,
		Attachments: attachments.NormalizeAll(atts, tabID),
	}, nil
}

// GetAttachmentData fetches one attachment's raw bytes: by ID within a
// compose tab, or the first office document of the message behind a
// viewer window.
func (h *Handlers) GetAttachmentData(ctx context.Context, req *protocol.Request) (any, error) {
	var r protocol.GetAttachmentDataRequest
	if err := req.Decode(&r); err != nil {
		return nil, err
	}

	ai := instrumentation.NewActionInvocation(protocol.ActionGetAttachmentData).
		WithComposeTab(r.ComposeTabID.Int()).
		WithSpanContext(ctx)

	var result any
	var err error
	if r.ComposeTabID != 0 {
		result, err = h.composeAttachmentData(ctx, r.ComposeTabID.Int(), r.AttachmentID.Int())
	} else {
		result, err = h.messageAttachmentData(ctx, r.WindowID.Int())
	}

	if resp, ok := result.(*protocol.AttachmentDataResponse); ok {
		ai.WithAttachment(resp.Filename)
		h.recordTransfer(ctx, instrumentation.TransferOpen, resp.Filename, int64(len(resp.Data)))
	}
	h.auditAccess(ai.Complete(err == nil, err))

	return result, err
}

func (h *Handlers) composeAttachmentData(ctx context.Context, tabID, attachmentID int) (any, error) {
	ok, err := h.client.TabExists(ctx, tabID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("invalid compose tab: %d", tabID)
	}

	atts, err := h.client.ListComposeAttachments(ctx, tabID)
	if err != nil {
		return nil, err
	}
	if len(atts) == 0 {
		return nil, fmt.Errorf("no attachments found")
	}

	var target *attachments.Attachment
	for i := range atts {
		if atts[i].ID == attachmentID {
			target = &atts[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("attachment %d not found", attachmentID)
	}

	file, err := h.client.GetComposeAttachmentFile(ctx, tabID, target.ID)
	if err != nil {
		return nil, err
	}
	if err := h.checkSize(int64(len(file.Data))); err != nil {
		return nil, err
	}

	contentType := target.ContentType
	if contentType == "" {
		contentType = attachments.DefaultContentType
	}
	return &protocol.AttachmentDataResponse{
		Success:     true,
		Data:        file.Data,
		Filename:    target.Name,
		ContentType: contentType,
	}, nil
}

func (h *Handlers) messageAttachmentData(ctx context.Context, windowID int) (any, error) {
	if windowID == 0 {
		return nil, fmt.Errorf("no window ID provided")
	}
	messageID, ok := h.windows.MessageIDForWindow(windowID)
	if !ok {
		return nil, fmt.Errorf("no message for window %d", windowID)
	}

	atts, err := h.client.ListAttachments(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if len(atts) == 0 {
		return nil, fmt.Errorf("no attachments found")
	}

	var target *attachments.Attachment
	for i := range atts {
		if h.formats.IsSupportedFile(atts[i].Name) {
			target = &atts[i]
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("no office document attachments found")
	}

	file, err := h.client.GetAttachmentBytes(ctx, messageID, target.PartName)
	if err != nil {
		return nil, err
	}
	if err := h.checkSize(int64(len(file.Data))); err != nil {
		return nil, err
	}

	return &protocol.AttachmentDataResponse{
		Success:     true,
		Data:        file.Data,
		Filename:    target.Name,
		ContentType: target.ContentType,
	}, nil
}

// SaveComposeAttachment replaces a compose attachment's content by
// removing the old attachment and adding the new bytes back.
func (h *Handlers) SaveComposeAttachment(ctx context.Context, req *protocol.Request) (any, error) {
	var r protocol.SaveComposeAttachmentRequest
	if err := req.Decode(&r); err != nil {
		return nil, err
	}
	if r.ComposeTabID == 0 {
		return nil, fmt.Errorf("no compose tab ID provided")
	}
	if err := h.checkSize(int64(len(r.Data))); err != nil {
		return nil, err
	}
	tabID := r.ComposeTabID.Int()

	name := r.Name
	if name == "" {
		name = "document"
	}
	contentType := r.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(r.Data).String()
	}

	ai := instrumentation.NewActionInvocation(protocol.ActionSaveComposeAttachment).
		WithComposeTab(tabID).
		WithAttachment(name).
		WithSpanContext(ctx)

	if err := h.client.RemoveComposeAttachment(ctx, tabID, r.AttachmentID.Int()); err != nil {
		h.auditAccess(ai.CompleteWithError(err))
		return nil, err
	}
	if err := h.client.AddComposeAttachment(ctx, tabID, mail.FileAttachment{
		Name:        name,
		ContentType: contentType,
		Data:        r.Data,
	}); err != nil {
		h.auditAccess(ai.CompleteWithError(err))
		return nil, err
	}

	h.recordTransfer(ctx, instrumentation.TransferSave, name, int64(len(r.Data)))
	h.auditAccess(ai.CompleteSuccess())
	h.logger.Info("saved compose attachment", logging.Tab(tabID), logging.Attachment(name))
	return &protocol.SaveComposeAttachmentResponse{Success: true}, nil
}

// GetUserInfo is a best-effort identity lookup. It never fails the
// protocol call: any problem yields success false with empty info.
func (h *Handlers) GetUserInfo(ctx context.Context, _ *protocol.Request) (any, error) {
	accounts, err := h.client.ListAccounts(ctx)
	if err != nil {
		h.logger.Error("failed to list accounts", logging.Err(err))
		return &protocol.UserInfoResponse{Success: false}, nil
	}

	if len(accounts) > 0 && len(accounts[0].Identities) > 0 {
		identity := accounts[0].Identities[0]
		if identity.ID != "" && identity.Name != "" && identity.Email != "" {
			return &protocol.UserInfoResponse{
				Success: true,
				UserInfo: protocol.UserInfo{
					ID:    identity.ID,
					Name:  identity.Name,
					Email: identity.Email,
				},
			}, nil
		}
	}

	return &protocol.UserInfoResponse{Success: false}, nil
}

// CreateNewDocument attaches a blank document of the requested type to
// a compose window, resolving the locale-appropriate template.
func (h *Handlers) CreateNewDocument(ctx context.Context, req *protocol.Request) (any, error) {
	var r protocol.CreateNewDocumentRequest
	if err := req.Decode(&r); err != nil {
		return nil, err
	}
	if r.ComposeTabID == 0 {
		return nil, fmt.Errorf("no compose tab ID provided")
	}

	ext, err := ExtensionForDocType(r.Type)
	if err != nil {
		return nil, err
	}

	data, contentType, err := h.templates.Resolve(r.Type, r.Locale)
	if err != nil {
		return nil, err
	}

	title := r.Title
	if title == "" {
		title = DefaultDocumentTitle
	}
	filename := title + "." + ext

	if err := h.client.AddComposeAttachment(ctx, r.ComposeTabID.Int(), mail.FileAttachment{
		Name:        filename,
		ContentType: contentType,
		Data:        data,
	}); err != nil {
		return nil, err
	}

	h.logger.Info("created blank document", logging.Tab(r.ComposeTabID.Int()), logging.Attachment(filename))
	return &protocol.CreateNewDocumentResponse{Success: true, Filename: filename}, nil
}

func (h *Handlers) recordTransfer(ctx context.Context, direction, name string, size int64) {
	if h.metrics != nil {
		h.metrics.RecordAttachmentTransfer(ctx, direction, instrumentation.ExtractFileExtension(name), size)
	}
}

func (h *Handlers) auditAccess(ai *instrumentation.ActionInvocation) {
	if h.audit != nil {
		h.audit.LogActionInvocation(ai)
	}
}

func (h *Handlers) checkSize(size int64) error {
	if h.limits.MaxAttachmentSize > 0 && size > h.limits.MaxAttachmentSize {
		return fmt.Errorf("attachment exceeds size limit of %d bytes", h.limits.MaxAttachmentSize)
	}
	return nil
}
