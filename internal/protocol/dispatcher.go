package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/officedocs/mailbridge/internal/logging"
)

// HandlerFunc handles one protocol action. The returned value is
// marshaled as the response; a returned error is converted to an
// ErrorResponse at the dispatch boundary.
type HandlerFunc func(ctx context.Context, req *Request) (any, error)

// Recorder records per-request metrics. Satisfied by
// instrumentation.Metrics; a nil Recorder disables recording.
type Recorder interface {
	RecordProtocolRequest(ctx context.Context, action, status string, duration time.Duration)
}

// Dispatcher routes protocol requests to their action handlers.
//
// Every request receives exactly one response: handler errors and
// panics are converted to failure responses, unknown actions get an
// explicit reply, and marshaling problems degrade to a generic error
// response rather than silence.
type Dispatcher struct {
	handlers map[string]HandlerFunc
	logger   *slog.Logger
	recorder Recorder
	tracer   trace.Tracer
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithRecorder sets the metrics recorder.
func WithRecorder(r Recorder) DispatcherOption {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithTracer sets the tracer used to span each dispatch.
func WithTracer(t trace.Tracer) DispatcherOption {
	return func(d *Dispatcher) {
		d.tracer = t
	}
}

// NewDispatcher creates an empty dispatcher. Handlers are registered
// with Handle before the first Dispatch call; the handler table is not
// safe for mutation afterwards.
func NewDispatcher(logger *slog.Logger, opts ...DispatcherOption) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		handlers: make(map[string]HandlerFunc),
		logger:   logger,
		tracer:   noop.NewTracerProvider().Tracer("protocol"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle registers the handler for an action name.
func (d *Dispatcher) Handle(action string, h HandlerFunc) {
	d.handlers[action] = h
}

// Dispatch routes one raw request and always returns exactly one
// marshaled response.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) []byte {
	req, err := ParseRequest(raw)
	if err != nil {
		d.logger.Error("malformed protocol request", logging.Err(err))
		return marshalResponse(d.logger, ErrorResponse{Error: err.Error()})
	}

	handler, ok := d.handlers[req.Action]
	if !ok {
		d.logger.Debug("unknown action", logging.Action(req.Action))
		return marshalResponse(d.logger, UnknownActionResponse{Error: UnknownActionError})
	}

	ctx, span := d.tracer.Start(ctx, "protocol.dispatch",
		trace.WithAttributes(attribute.String("protocol.action", req.Action)),
	)
	defer span.End()

	start := time.Now()
	result, err := d.invoke(ctx, handler, req)
	duration := time.Since(start)

	status := logging.StatusSuccess
	if err != nil {
		status = logging.StatusError
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if d.recorder != nil {
		d.recorder.RecordProtocolRequest(ctx, req.Action, status, duration)
	}

	if err != nil {
		d.logger.Error("handler failed",
			logging.Action(req.Action),
			logging.Err(err),
			slog.Duration("duration", duration),
		)
		return marshalResponse(d.logger, ErrorResponse{Error: err.Error()})
	}

	d.logger.Debug("handler completed",
		logging.Action(req.Action),
		slog.Duration("duration", duration),
	)
	return marshalResponse(d.logger, result)
}

// invoke runs a handler, converting panics into errors so that a
// response is always produced.
func (d *Dispatcher) invoke(ctx context.Context, handler HandlerFunc, req *Request) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, req)
}

func marshalResponse(logger *slog.Logger, v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		logger.Error("failed to marshal response", logging.Err(err))
		return []byte(`{"success":false,"error":"internal error"}`)
	}
	return data
}
