package router

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/officedocs/mailbridge/internal/logging"
)

// RouteError is the route navigation failures funnel into.
const RouteError = "error"

// Navigation outcomes reported to the recorder.
const (
	StatusOK      = "ok"
	StatusError   = "error"
	StatusDropped = "dropped"
)

// Page renders a view tree for its route. Pages may additionally
// implement Initializer and Cleaner; the router discovers both by
// interface assertion.
type Page interface {
	Render(ctx context.Context, data any) (*Node, error)
}

// Initializer is the optional post-mount hook, for wiring listeners
// and kicking off loads that need the tree in place.
type Initializer interface {
	Init(ctx context.Context, data any) error
}

// Cleaner is the optional teardown hook, run on the outgoing page
// before the next one renders.
type Cleaner interface {
	Cleanup(ctx context.Context) error
}

// ErrorData is the payload the error route receives.
type ErrorData struct {
	Title   string
	Message string
}

// Recorder counts navigations by route and outcome.
type Recorder interface {
	RecordNavigation(route, status string)
}

// Router owns the mount point and swaps pages into it. A navigation
// already in flight causes later Navigate calls to be dropped, not
// queued.
type Router struct {
	container *Container
	logger    *slog.Logger
	recorder  Recorder

	mu          sync.Mutex
	navigating  bool
	routes      map[string]Page
	current     Page
	currentName string
}

// Option configures a Router.
type Option func(*Router)

// WithRecorder attaches a navigation recorder.
func WithRecorder(r Recorder) Option {
	return func(rt *Router) {
		rt.recorder = r
	}
}

// New creates a Router over the given mount point.
func New(container *Container, logger *slog.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Router{
		container: container,
		logger:    logger,
		routes:    make(map[string]Page),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register binds a page to a route name.
func (r *Router) Register(name string, page Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes[name] = page
}

// CurrentRoute returns the name of the mounted page, or "".
func (r *Router) CurrentRoute() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentName
}

// Navigate swaps the target page into the mount point. A call while
// another navigation is in flight is dropped. Failures re-enter the
// error route; a failure on the error route itself renders a minimal
// error view directly.
func (r *Router) Navigate(ctx context.Context, name string, data any) {
	r.mu.Lock()
	if r.navigating {
		r.mu.Unlock()
		r.logger.Debug("navigation in flight, dropping", logging.Route(name))
		r.record(name, StatusDropped)
		return
	}
	r.navigating = true
	r.mu.Unlock()

	err := r.doNavigate(ctx, name, data)

	r.mu.Lock()
	r.navigating = false
	r.mu.Unlock()

	if err == nil {
		r.record(name, StatusOK)
		return
	}

	r.record(name, StatusError)
	r.logger.Error("navigation failed", logging.Route(name), logging.Err(err))

	if name != RouteError {
		r.Navigate(ctx, RouteError, ErrorData{Title: "Navigation failed", Message: err.Error()})
		return
	}

	// The error route itself failed. Bypass the router to avoid
	// looping and mount a minimal view directly.
	r.container.Clear()
	r.container.Mount(minimalErrorView(err))
}

func (r *Router) doNavigate(ctx context.Context, name string, data any) error {
	r.mu.Lock()
	page, ok := r.routes[name]
	current := r.current
	r.mu.Unlock()

	if !ok {
		return fmt.Errorf("no page registered for route %q", name)
	}

	if cleaner, ok := current.(Cleaner); ok {
		if err := cleaner.Cleanup(ctx); err != nil {
			return fmt.Errorf("cleanup of outgoing page failed: %w", err)
		}
	}

	// The outgoing page is gone. Forget it now so a failed render does
	// not get it cleaned up again by the error-route fallback.
	if current != nil {
		r.mu.Lock()
		r.current = nil
		r.currentName = ""
		r.mu.Unlock()
	}

	r.container.Clear()

	node, err := page.Render(ctx, data)
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("route %q rendered nothing", name)
	}

	r.container.Mount(node)

	r.mu.Lock()
	r.current = page
	r.currentName = name
	r.mu.Unlock()

	if init, ok := page.(Initializer); ok {
		if err := init.Init(ctx, data); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) record(route, status string) {
	if r.recorder != nil {
		r.recorder.RecordNavigation(route, status)
	}
}

func minimalErrorView(err error) *Node {
	return El("error",
		El("title", Text("Error")),
		El("message", Text(err.Error())),
	)
}
