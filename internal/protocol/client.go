package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/officedocs/mailbridge/internal/attachments"
	"github.com/officedocs/mailbridge/internal/logging"
)

// Client is the UI side of the protocol: typed callers over a
// Transport. Requests carry no correlation ids; each call site awaits
// its reply before issuing the next request in the same flow.
type Client struct {
	transport Transport
	logger    *slog.Logger
}

// NewClient creates a protocol client. A nil logger falls back to
// slog.Default.
func NewClient(transport Transport, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{transport: transport, logger: logger}
}

// call sends one action request and returns the raw reply. Replies
// whose error field is set are surfaced as errors; success flags are
// interpreted by the typed callers because getUserInfo legitimately
// replies success false.
func (c *Client) call(ctx context.Context, action string, payload any) (json.RawMessage, error) {
	body := map[string]any{}
	if payload != nil {
		enc, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", action, err)
		}
		if err := json.Unmarshal(enc, &body); err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", action, err)
		}
	}
	body["action"] = action

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", action, err)
	}

	c.logger.Debug("sending request", logging.Action(action))
	reply, err := c.transport.RoundTrip(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%s round trip failed: %w", action, err)
	}

	var probe struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(reply, &probe); err != nil {
		return nil, fmt.Errorf("malformed %s reply: %w", action, err)
	}
	if probe.Error != "" {
		return nil, fmt.Errorf("%s failed: %s", action, probe.Error)
	}

	return reply, nil
}

// GetMessageData fetches a received message and its attachment
// candidates.
func (c *Client) GetMessageData(ctx context.Context, messageID int) (*MessageDataResponse, error) {
	reply, err := c.call(ctx, ActionGetMessageData, GetMessageDataRequest{MessageID: ID(messageID)})
	if err != nil {
		return nil, err
	}
	var resp MessageDataResponse
	if err := json.Unmarshal(reply, &resp); err != nil {
		return nil, fmt.Errorf("malformed message data reply: %w", err)
	}
	return &resp, nil
}

// GetComposeDetails fetches an in-progress compose window and its
// attachments.
func (c *Client) GetComposeDetails(ctx context.Context, composeTabID int) (*ComposeDetailsResponse, error) {
	reply, err := c.call(ctx, ActionGetComposeDetails, GetComposeDetailsRequest{ComposeTabID: ID(composeTabID)})
	if err != nil {
		return nil, err
	}
	var resp ComposeDetailsResponse
	if err := json.Unmarshal(reply, &resp); err != nil {
		return nil, fmt.Errorf("malformed compose details reply: %w", err)
	}
	return &resp, nil
}

// GetAttachmentData fetches one compose attachment's raw bytes.
func (c *Client) GetAttachmentData(ctx context.Context, composeTabID, attachmentID int) (*AttachmentDataResponse, error) {
	reply, err := c.call(ctx, ActionGetAttachmentData, GetAttachmentDataRequest{
		ComposeTabID: ID(composeTabID),
		AttachmentID: ID(attachmentID),
	})
	if err != nil {
		return nil, err
	}
	var resp AttachmentDataResponse
	if err := json.Unmarshal(reply, &resp); err != nil {
		return nil, fmt.Errorf("malformed attachment data reply: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("failed to get attachment data")
	}
	return &resp, nil
}

// GetMessageAttachmentData fetches the first office attachment of the
// message behind a viewer window.
func (c *Client) GetMessageAttachmentData(ctx context.Context, windowID int) (*AttachmentDataResponse, error) {
	reply, err := c.call(ctx, ActionGetAttachmentData, GetAttachmentDataRequest{
		WindowID: ID(windowID),
	})
	if err != nil {
		return nil, err
	}
	var resp AttachmentDataResponse
	if err := json.Unmarshal(reply, &resp); err != nil {
		return nil, fmt.Errorf("malformed attachment data reply: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("failed to get attachment data")
	}
	return &resp, nil
}

// SaveComposeAttachment replaces a compose attachment's content.
func (c *Client) SaveComposeAttachment(ctx context.Context, composeTabID, attachmentID int, data []byte, name, contentType string) error {
	reply, err := c.call(ctx, ActionSaveComposeAttachment, SaveComposeAttachmentRequest{
		ComposeTabID: ID(composeTabID),
		AttachmentID: ID(attachmentID),
		Data:         data,
		Name:         name,
		ContentType:  contentType,
	})
	if err != nil {
		return err
	}
	var resp SaveComposeAttachmentResponse
	if err := json.Unmarshal(reply, &resp); err != nil {
		return fmt.Errorf("malformed save reply: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("save was not acknowledged")
	}
	return nil
}

// GetUserInfo performs the best-effort identity lookup. A reply with
// success false and empty info is returned as-is, not as an error.
func (c *Client) GetUserInfo(ctx context.Context) (*UserInfoResponse, error) {
	reply, err := c.call(ctx, ActionGetUserInfo, nil)
	if err != nil {
		return nil, err
	}
	var resp UserInfoResponse
	if err := json.Unmarshal(reply, &resp); err != nil {
		return nil, fmt.Errorf("malformed user info reply: %w", err)
	}
	return &resp, nil
}

// CreateNewDocument attaches a blank document to a compose window.
func (c *Client) CreateNewDocument(ctx context.Context, composeTabID int, title, docType, locale string) (*CreateNewDocumentResponse, error) {
	reply, err := c.call(ctx, ActionCreateNewDocument, CreateNewDocumentRequest{
		ComposeTabID: ID(composeTabID),
		Title:        title,
		Type:         docType,
		Locale:       locale,
	})
	if err != nil {
		return nil, err
	}
	var resp CreateNewDocumentResponse
	if err := json.Unmarshal(reply, &resp); err != nil {
		return nil, fmt.Errorf("malformed create document reply: %w", err)
	}
	if !resp.Success {
		return nil, fmt.Errorf("document creation was not acknowledged")
	}
	return &resp, nil
}

// MessageAttachments implements attachments.Fetcher for message
// contexts.
func (c *Client) MessageAttachments(ctx context.Context, messageID int) ([]attachments.Attachment, error) {
	resp, err := c.GetMessageData(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if resp.Attachments == nil {
		return nil, fmt.Errorf("no attachments found")
	}
	return resp.Attachments, nil
}

// ComposeAttachments implements attachments.Fetcher for compose
// contexts.
func (c *Client) ComposeAttachments(ctx context.Context, composeTabID int) ([]attachments.Attachment, error) {
	resp, err := c.GetComposeDetails(ctx, composeTabID)
	if err != nil {
		return nil, err
	}
	if resp.Attachments == nil {
		return nil, fmt.Errorf("no attachments found")
	}
	return resp.Attachments, nil
}
