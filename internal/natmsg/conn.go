package natmsg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/officedocs/mailbridge/internal/logging"
)

// Envelope kinds carried on the wire.
const (
	kindRequest  = "request"  // extension -> host: protocol action request
	kindResponse = "response" // host -> extension: reply to a request
	kindCall     = "call"     // host -> extension: privileged primitive call
	kindReply    = "reply"    // extension -> host: reply to a call
	kindEvent    = "event"    // extension -> host: unsolicited notification
)

// ErrConnClosed is returned for calls issued after the connection's
// read loop has stopped.
var ErrConnClosed = errors.New("native messaging connection closed")

type envelope struct {
	Kind   string          `json:"kind"`
	ID     string          `json:"id,omitempty"`
	Method string          `json:"method,omitempty"`
	Event  string          `json:"event,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// Dispatcher handles incoming protocol action requests. The protocol
// package's Dispatcher satisfies it.
type Dispatcher interface {
	Dispatch(ctx context.Context, raw []byte) []byte
}

// EventHandler receives unsolicited notifications from the extension
// side, e.g. window close events.
type EventHandler func(body json.RawMessage)

// Conn multiplexes one native-messaging pipe. Incoming action requests
// are dispatched and answered; outgoing privileged calls are correlated
// to their replies by uuid (this reverse direction may be concurrent,
// unlike the action protocol riding on top).
type Conn struct {
	reader     io.Reader
	writer     io.Writer
	dispatcher Dispatcher
	logger     *slog.Logger
	maxFrame   uint32

	writeMu sync.Mutex

	mu       sync.Mutex
	pending  map[string]chan *envelope
	handlers map[string][]EventHandler
	closed   bool
}

// ConnOption configures a Conn.
type ConnOption func(*Conn)

// WithMaxFrameSize overrides the incoming frame size limit.
func WithMaxFrameSize(limit uint32) ConnOption {
	return func(c *Conn) {
		c.maxFrame = limit
	}
}

// NewConn creates a connection over the given pipe ends. The
// dispatcher may be nil when the connection only issues calls.
func NewConn(r io.Reader, w io.Writer, dispatcher Dispatcher, logger *slog.Logger, opts ...ConnOption) *Conn {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Conn{
		reader:     r,
		writer:     w,
		dispatcher: dispatcher,
		logger:     logger,
		maxFrame:   DefaultMaxFrameSize,
		pending:    make(map[string]chan *envelope),
		handlers:   make(map[string][]EventHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnEvent registers a handler for a named event. Must be called before
// Run. The parameter is the plain function type so *Conn satisfies
// caller interfaces declared outside this package.
func (c *Conn) OnEvent(event string, h func(body json.RawMessage)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[event] = append(c.handlers[event], h)
}

// Run reads frames until the pipe closes or ctx is canceled. It
// returns nil on orderly EOF.
func (c *Conn) Run(ctx context.Context) error {
	defer c.close()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		frame, err := ReadFrame(c.reader, c.maxFrame)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var env envelope
		if err := json.Unmarshal(frame, &env); err != nil {
			c.logger.Error("malformed envelope", logging.Err(err))
			continue
		}

		switch env.Kind {
		case kindRequest:
			// Dispatch off the read loop: handlers issue privileged
			// calls whose replies arrive on this same loop.
			go c.serveRequest(ctx, &env)

		case kindReply:
			c.deliverReply(&env)

		case kindEvent:
			c.deliverEvent(&env)

		default:
			c.logger.Debug("dropping envelope of unknown kind", slog.String("kind", env.Kind))
		}
	}
}

func (c *Conn) serveRequest(ctx context.Context, env *envelope) {
	resp := c.dispatcher.Dispatch(ctx, env.Body)
	reply := envelope{Kind: kindResponse, ID: env.ID, Body: resp}
	if err := c.writeEnvelope(&reply); err != nil {
		c.logger.Error("failed to write response", logging.Err(err))
	}
}

func (c *Conn) deliverReply(env *envelope) {
	c.mu.Lock()
	ch, ok := c.pending[env.ID]
	if ok {
		delete(c.pending, env.ID)
	}
	c.mu.Unlock()

	if !ok {
		c.logger.Debug("dropping reply with no pending call", slog.String("id", env.ID))
		return
	}
	ch <- env
}

func (c *Conn) deliverEvent(env *envelope) {
	c.mu.Lock()
	handlers := append([]EventHandler(nil), c.handlers[env.Event]...)
	c.mu.Unlock()

	for _, h := range handlers {
		h(env.Body)
	}
}

// Call issues a privileged primitive call and blocks until its reply
// arrives or ctx is done.
func (c *Conn) Call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s params: %w", method, err)
	}

	id := uuid.NewString()
	ch := make(chan *envelope, 1)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrConnClosed
	}
	c.pending[id] = ch
	c.mu.Unlock()

	env := envelope{Kind: kindCall, ID: id, Method: method, Body: body}
	if err := c.writeEnvelope(&env); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, err
	}

	select {
	case reply, ok := <-ch:
		if !ok {
			return nil, ErrConnClosed
		}
		if reply.Error != "" {
			return nil, fmt.Errorf("%s failed: %s", method, reply.Error)
		}
		return reply.Body, nil
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, ctx.Err()
	}
}

func (c *Conn) writeEnvelope(env *envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return WriteFrame(c.writer, data)
}

func (c *Conn) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for id, ch := range c.pending {
		close(ch)
		delete(c.pending, id)
	}
}
