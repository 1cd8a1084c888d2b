package router

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPage struct {
	node      *Node
	renderErr error

	renders  int
	inits    int
	cleanups int

	initErr    error
	cleanupErr error

	onInit func(ctx context.Context)
}

func (p *stubPage) Render(_ context.Context, _ any) (*Node, error) {
	p.renders++
	return p.node, p.renderErr
}

func (p *stubPage) Init(ctx context.Context, _ any) error {
	p.inits++
	if p.onInit != nil {
		p.onInit(ctx)
	}
	return p.initErr
}

func (p *stubPage) Cleanup(_ context.Context) error {
	p.cleanups++
	return p.cleanupErr
}

// renderOnlyPage implements just Render, exercising the optional-hook
// discovery.
type renderOnlyPage struct {
	node *Node
}

func (p *renderOnlyPage) Render(_ context.Context, _ any) (*Node, error) {
	return p.node, nil
}

type fakeNavRecorder struct {
	routes   []string
	statuses []string
}

func (f *fakeNavRecorder) RecordNavigation(route, status string) {
	f.routes = append(f.routes, route)
	f.statuses = append(f.statuses, status)
}

func newTestRouter(opts ...Option) (*Router, *Container) {
	container := NewContainer()
	return New(container, slog.New(slog.NewTextHandler(io.Discard, nil)), opts...), container
}

func TestNavigateMountsPage(t *testing.T) {
	r, container := newTestRouter()
	page := &stubPage{node: El("files")}
	r.Register("files", page)

	r.Navigate(context.Background(), "files", nil)

	require.NotNil(t, container.Root())
	assert.Equal(t, "files", container.Root().Kind)
	assert.Equal(t, "files", r.CurrentRoute())
	assert.Equal(t, 1, page.renders)
	assert.Equal(t, 1, page.inits)
	assert.Zero(t, page.cleanups)
}

func TestNavigateCleansUpOutgoingPage(t *testing.T) {
	r, _ := newTestRouter()
	first := &stubPage{node: El("loading")}
	second := &stubPage{node: El("viewer")}
	r.Register("loading", first)
	r.Register("viewer", second)

	ctx := context.Background()
	r.Navigate(ctx, "loading", nil)
	r.Navigate(ctx, "viewer", nil)

	assert.Equal(t, 1, first.cleanups)
	assert.Equal(t, "viewer", r.CurrentRoute())
}

func TestNavigateRenderOnlyPage(t *testing.T) {
	r, container := newTestRouter()
	r.Register("empty", &renderOnlyPage{node: El("empty")})

	r.Navigate(context.Background(), "empty", nil)

	require.NotNil(t, container.Root())
	assert.Equal(t, "empty", container.Root().Kind)
}

func TestNavigateDropsReentrantCall(t *testing.T) {
	r, container := newTestRouter()

	second := &stubPage{node: El("viewer")}
	first := &stubPage{node: El("loading")}
	first.onInit = func(ctx context.Context) {
		// A navigation from inside a navigation must be dropped, not
		// queued.
		r.Navigate(ctx, "viewer", nil)
	}
	r.Register("loading", first)
	r.Register("viewer", second)

	r.Navigate(context.Background(), "loading", nil)

	assert.Zero(t, second.renders)
	assert.Equal(t, "loading", r.CurrentRoute())
	assert.Equal(t, "loading", container.Root().Kind)
}

func TestNavigateSequentialCallsBothRun(t *testing.T) {
	r, _ := newTestRouter()
	first := &stubPage{node: El("loading")}
	second := &stubPage{node: El("viewer")}
	r.Register("loading", first)
	r.Register("viewer", second)

	ctx := context.Background()
	r.Navigate(ctx, "loading", nil)
	r.Navigate(ctx, "viewer", nil)

	assert.Equal(t, 1, first.renders)
	assert.Equal(t, 1, second.renders)
}

func TestNavigateUnknownRouteMountsErrorPage(t *testing.T) {
	r, container := newTestRouter()

	var got ErrorData
	r.Register(RouteError, pageFunc(func(_ context.Context, data any) (*Node, error) {
		got, _ = data.(ErrorData)
		return El("error"), nil
	}))

	r.Navigate(context.Background(), "missing", nil)

	require.NotNil(t, container.Root())
	assert.Equal(t, "error", container.Root().Kind)
	assert.Contains(t, got.Message, "missing")
}

func TestNavigateRenderFailureFunnelsToErrorRoute(t *testing.T) {
	r, container := newTestRouter()
	r.Register("viewer", &stubPage{renderErr: errors.New("attachment fetch failed")})
	r.Register(RouteError, &stubPage{node: El("error")})

	r.Navigate(context.Background(), "viewer", nil)

	require.NotNil(t, container.Root())
	assert.Equal(t, "error", container.Root().Kind)
	assert.Equal(t, RouteError, r.CurrentRoute())
}

func TestNavigateFailedRenderDoesNotCleanOutgoingPageTwice(t *testing.T) {
	r, container := newTestRouter()
	first := &stubPage{node: El("files")}
	r.Register("files", first)
	r.Register("viewer", &stubPage{renderErr: errors.New("attachment fetch failed")})
	r.Register(RouteError, &stubPage{node: El("error")})

	r.Navigate(context.Background(), "files", nil)
	r.Navigate(context.Background(), "viewer", nil)

	// The error-route fallback must not clean the files page again
	// after the failed viewer navigation already did.
	assert.Equal(t, 1, first.cleanups)
	assert.Equal(t, "error", container.Root().Kind)
	assert.Equal(t, RouteError, r.CurrentRoute())
}

func TestNavigateNilRenderIsRoutingError(t *testing.T) {
	r, container := newTestRouter()
	r.Register("viewer", &stubPage{node: nil})
	r.Register(RouteError, &stubPage{node: El("error")})

	r.Navigate(context.Background(), "viewer", nil)

	assert.Equal(t, "error", container.Root().Kind)
}

func TestNavigateErrorRouteFailureRendersMinimalView(t *testing.T) {
	r, container := newTestRouter()
	r.Register(RouteError, &stubPage{renderErr: errors.New("template missing")})

	r.Navigate(context.Background(), RouteError, ErrorData{Title: "Error", Message: "boom"})

	root := container.Root()
	require.NotNil(t, root)
	assert.Equal(t, "error", root.Kind)
	msg := root.Find("message")
	require.NotNil(t, msg)
	require.NotEmpty(t, msg.Children)
	assert.Contains(t, msg.Children[0].Text, "template missing")
}

func TestNavigateInitFailureFunnelsToErrorRoute(t *testing.T) {
	r, _ := newTestRouter()
	r.Register("viewer", &stubPage{node: El("viewer"), initErr: errors.New("listener wiring failed")})
	r.Register(RouteError, &stubPage{node: El("error")})

	r.Navigate(context.Background(), "viewer", nil)

	assert.Equal(t, RouteError, r.CurrentRoute())
}

func TestNavigateRecordsOutcomes(t *testing.T) {
	rec := &fakeNavRecorder{}
	r, _ := newTestRouter(WithRecorder(rec))
	r.Register("files", &stubPage{node: El("files")})
	r.Register(RouteError, &stubPage{node: El("error")})

	ctx := context.Background()
	r.Navigate(ctx, "files", nil)
	r.Navigate(ctx, "missing", nil)

	assert.Equal(t, []string{"files", "missing", RouteError}, rec.routes)
	assert.Equal(t, []string{StatusOK, StatusError, StatusOK}, rec.statuses)
}

// pageFunc adapts a function to the Page interface.
type pageFunc func(ctx context.Context, data any) (*Node, error)

func (f pageFunc) Render(ctx context.Context, data any) (*Node, error) {
	return f(ctx, data)
}
