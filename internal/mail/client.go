package mail

import (
	"context"

	"github.com/officedocs/mailbridge/internal/attachments"
)

// Client exposes the mail store primitives the action handlers need.
// All methods go through the privileged side of the connection.
type Client interface {
	// GetMessage returns the header of a received message.
	GetMessage(ctx context.Context, messageID int) (*MessageHeader, error)

	// GetFullMessage returns a message including its MIME part tree.
	GetFullMessage(ctx context.Context, messageID int) (*FullMessage, error)

	// ListAttachments returns the stored attachment list of a message.
	// The list may be empty when the store keeps no such record.
	ListAttachments(ctx context.Context, messageID int) ([]attachments.Attachment, error)

	// GetAttachmentBytes fetches the raw bytes of a message attachment
	// located by its MIME part name.
	GetAttachmentBytes(ctx context.Context, messageID int, partName string) (*FileAttachment, error)

	// GetComposeDetails returns the state of a compose window.
	GetComposeDetails(ctx context.Context, tabID int) (*ComposeDetails, error)

	// ListComposeAttachments returns the attachments of a compose
	// window.
	ListComposeAttachments(ctx context.Context, tabID int) ([]attachments.Attachment, error)

	// GetComposeAttachmentFile fetches the raw bytes of a compose
	// attachment by its ID.
	GetComposeAttachmentFile(ctx context.Context, tabID, attachmentID int) (*FileAttachment, error)

	// AddComposeAttachment attaches a file to a compose window.
	AddComposeAttachment(ctx context.Context, tabID int, file FileAttachment) error

	// RemoveComposeAttachment detaches an attachment from a compose
	// window.
	RemoveComposeAttachment(ctx context.Context, tabID, attachmentID int) error

	// TabExists reports whether the given tab is still open.
	TabExists(ctx context.Context, tabID int) (bool, error)

	// ListAccounts returns the configured mail accounts.
	ListAccounts(ctx context.Context) ([]Account, error)
}

// WindowAPI exposes the window primitives the window manager needs.
type WindowAPI interface {
	// CreateWindow opens a new window and returns its reference.
	CreateWindow(ctx context.Context, opts WindowOptions) (*Window, error)

	// FocusWindow raises an existing window.
	FocusWindow(ctx context.Context, windowID int) error

	// OnWindowClosed registers a callback invoked when any window
	// closes. Must be called before the connection starts serving.
	OnWindowClosed(fn func(windowID int))
}
