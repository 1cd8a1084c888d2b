package background

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officedocs/mailbridge/internal/attachments"
	"github.com/officedocs/mailbridge/internal/config"
	"github.com/officedocs/mailbridge/internal/mail"
)

type fakeWindowAPI struct {
	nextID  int
	created []mail.WindowOptions
	focused []int
	closed  func(int)
}

func (f *fakeWindowAPI) CreateWindow(_ context.Context, opts mail.WindowOptions) (*mail.Window, error) {
	f.nextID++
	f.created = append(f.created, opts)
	return &mail.Window{ID: f.nextID}, nil
}

func (f *fakeWindowAPI) FocusWindow(_ context.Context, windowID int) error {
	f.focused = append(f.focused, windowID)
	return nil
}

func (f *fakeWindowAPI) OnWindowClosed(fn func(int)) {
	f.closed = fn
}

func testWindowManager(t *testing.T) (*WindowManager, *fakeWindowAPI) {
	t.Helper()
	api := &fakeWindowAPI{}
	wm := NewWindowManager(api, config.WindowDefaults{Width: 800, Height: 600}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NotNil(t, api.closed, "manager must subscribe to close events")
	return wm, api
}

func TestWindowManagerOpenFocusesExisting(t *testing.T) {
	wm, api := testWindowManager(t)
	ctx := context.Background()

	require.NoError(t, wm.OpenMessageViewer(ctx, 42))
	require.Len(t, api.created, 1)
	assert.Equal(t, "popup", api.created[0].Type)
	assert.Contains(t, api.created[0].URL, "messageId=42")

	// Same message again: focus, no second window.
	require.NoError(t, wm.OpenMessageViewer(ctx, 42))
	assert.Len(t, api.created, 1)
	assert.Equal(t, []int{1}, api.focused)
}

func TestWindowManagerCloseEvictsKey(t *testing.T) {
	wm, api := testWindowManager(t)
	ctx := context.Background()

	require.NoError(t, wm.OpenMessageViewer(ctx, 42))
	api.closed(1)

	// Reopening after close creates a fresh window.
	require.NoError(t, wm.OpenMessageViewer(ctx, 42))
	assert.Len(t, api.created, 2)
	assert.Empty(t, api.focused)
}

func TestWindowManagerDistinctKeys(t *testing.T) {
	wm, api := testWindowManager(t)
	ctx := context.Background()

	require.NoError(t, wm.OpenMessageViewer(ctx, 1))
	require.NoError(t, wm.OpenComposeViewer(ctx, 1))
	require.NoError(t, wm.OpenCreateDialog(ctx, 1))

	require.Len(t, api.created, 3)
	assert.Equal(t, createDialogWidth, api.created[2].Width)
	assert.Equal(t, createDialogHeight, api.created[2].Height)
}

func TestWindowManagerMessageIDForWindow(t *testing.T) {
	wm, _ := testWindowManager(t)
	ctx := context.Background()

	require.NoError(t, wm.OpenMessageViewer(ctx, 42))

	id, ok := wm.MessageIDForWindow(1)
	require.True(t, ok)
	assert.Equal(t, 42, id)

	_, ok = wm.MessageIDForWindow(99)
	assert.False(t, ok)
}

func TestWindowManagerMessageIDForAttachmentViewer(t *testing.T) {
	wm, api := testWindowManager(t)
	ctx := context.Background()

	att := attachments.Attachment{Name: "report.xlsx", PartName: "1.2"}
	require.NoError(t, wm.OpenAttachmentViewer(ctx, 7, att))

	require.Len(t, api.created, 1)
	assert.Contains(t, api.created[0].URL, "attachmentPartName=1.2")
	assert.Contains(t, api.created[0].URL, "attachmentName=report.xlsx")

	id, ok := wm.MessageIDForWindow(1)
	require.True(t, ok)
	assert.Equal(t, 7, id)
}

func TestWindowManagerAttachmentViewerNonActionable(t *testing.T) {
	wm, api := testWindowManager(t)

	att := attachments.Attachment{Name: "ghost.docx"}
	err := wm.OpenAttachmentViewer(context.Background(), 7, att)
	require.Error(t, err)
	assert.Empty(t, api.created)
}
