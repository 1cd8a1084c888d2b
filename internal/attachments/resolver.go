package attachments

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/officedocs/mailbridge/internal/config"
)

// Fetcher retrieves raw attachment lists from the privileged context.
// The protocol client implements it.
type Fetcher interface {
	MessageAttachments(ctx context.Context, messageID int) ([]Attachment, error)
	ComposeAttachments(ctx context.Context, composeTabID int) ([]Attachment, error)
}

// Context names the source to resolve attachments from: exactly one of
// MessageID or ComposeTabID is set.
type Context struct {
	MessageID    int
	ComposeTabID int
}

// Resolver produces the normalized, filtered list of office-document
// attachment candidates for a message or compose context.
type Resolver struct {
	fetcher Fetcher
	formats *config.FormatsTable
	logger  *slog.Logger
}

// NewResolver creates a Resolver. A nil logger falls back to
// slog.Default.
func NewResolver(fetcher Fetcher, formats *config.FormatsTable, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		fetcher: fetcher,
		formats: formats,
		logger:  logger,
	}
}

// Resolve fetches the source's attachment list and keeps only
// supported office documents, in source order.
func (r *Resolver) Resolve(ctx context.Context, src Context) ([]Attachment, error) {
	var (
		atts []Attachment
		err  error
	)

	switch {
	case src.ComposeTabID != 0:
		atts, err = r.fetcher.ComposeAttachments(ctx, src.ComposeTabID)
	case src.MessageID != 0:
		atts, err = r.fetcher.MessageAttachments(ctx, src.MessageID)
	default:
		return nil, fmt.Errorf("no valid message or compose id")
	}
	if err != nil {
		return nil, err
	}

	supported := FilterSupported(atts, r.formats)
	r.logger.Debug("resolved attachments",
		slog.Int("candidates", len(atts)),
		slog.Int("supported", len(supported)),
	)

	return supported, nil
}
