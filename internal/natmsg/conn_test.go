package natmsg

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoDispatcher struct{}

func (echoDispatcher) Dispatch(_ context.Context, raw []byte) []byte {
	return raw
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// peer drives the far end of the pipe the way the extension side would.
type peer struct {
	r io.Reader
	w io.Writer
}

func (p *peer) send(t *testing.T, env envelope) {
	t.Helper()
	data, err := json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, WriteFrame(p.w, data))
}

func (p *peer) recv(t *testing.T) envelope {
	t.Helper()
	frame, err := ReadFrame(p.r, DefaultMaxFrameSize)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(frame, &env))
	return env
}

func newConnPair(t *testing.T, dispatcher Dispatcher) (*Conn, *peer, context.CancelFunc) {
	t.Helper()

	hostIn, peerOut := io.Pipe()
	peerIn, hostOut := io.Pipe()

	conn := NewConn(hostIn, hostOut, dispatcher, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = conn.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		peerOut.Close()
		peerIn.Close()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("read loop did not stop")
		}
	})

	return conn, &peer{r: peerIn, w: peerOut}, cancel
}

func TestConnServesRequests(t *testing.T) {
	_, p, _ := newConnPair(t, echoDispatcher{})

	body := json.RawMessage(`{"action":"getUserInfo"}`)
	p.send(t, envelope{Kind: kindRequest, ID: "req-1", Body: body})

	resp := p.recv(t)
	assert.Equal(t, kindResponse, resp.Kind)
	assert.Equal(t, "req-1", resp.ID)
	assert.JSONEq(t, string(body), string(resp.Body))
}

func TestConnCallCorrelation(t *testing.T) {
	conn, p, _ := newConnPair(t, echoDispatcher{})

	type result struct {
		body json.RawMessage
		err  error
	}
	results := make(chan result, 1)
	go func() {
		body, err := conn.Call(context.Background(), "messages.get", map[string]any{"messageId": 7})
		results <- result{body, err}
	}()

	call := p.recv(t)
	require.Equal(t, kindCall, call.Kind)
	require.Equal(t, "messages.get", call.Method)
	require.NotEmpty(t, call.ID)
	assert.JSONEq(t, `{"messageId":7}`, string(call.Body))

	p.send(t, envelope{Kind: kindReply, ID: call.ID, Body: json.RawMessage(`{"subject":"Q3 report"}`)})

	select {
	case res := <-results:
		require.NoError(t, res.err)
		assert.JSONEq(t, `{"subject":"Q3 report"}`, string(res.body))
	case <-time.After(2 * time.Second):
		t.Fatal("call did not complete")
	}
}

func TestConnCallError(t *testing.T) {
	conn, p, _ := newConnPair(t, echoDispatcher{})

	errs := make(chan error, 1)
	go func() {
		_, err := conn.Call(context.Background(), "tabs.get", map[string]any{"tabId": 3})
		errs <- err
	}()

	call := p.recv(t)
	p.send(t, envelope{Kind: kindReply, ID: call.ID, Error: "no tab with id 3"})

	select {
	case err := <-errs:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no tab with id 3")
	case <-time.After(2 * time.Second):
		t.Fatal("call did not complete")
	}
}

func TestConnCallContextCanceled(t *testing.T) {
	conn, p, _ := newConnPair(t, echoDispatcher{})

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := conn.Call(ctx, "accounts.list", struct{}{})
		errs <- err
	}()

	p.recv(t) // the call goes out but no reply ever comes
	cancel()

	select {
	case err := <-errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("call did not observe cancellation")
	}
}

func TestConnEvents(t *testing.T) {
	hostIn, peerOut := io.Pipe()
	_, hostOut := io.Pipe()

	conn := NewConn(hostIn, hostOut, nil, testLogger())
	got := make(chan json.RawMessage, 1)
	conn.OnEvent("windows.closed", func(body json.RawMessage) {
		got <- body
	})

	go func() { _ = conn.Run(context.Background()) }()
	defer peerOut.Close()

	p := &peer{w: peerOut}
	p.send(t, envelope{Kind: kindEvent, Event: "windows.closed", Body: json.RawMessage(`{"windowId":12}`)})

	select {
	case body := <-got:
		assert.JSONEq(t, `{"windowId":12}`, string(body))
	case <-time.After(2 * time.Second):
		t.Fatal("event handler was not invoked")
	}
}

func TestConnCallAfterClose(t *testing.T) {
	hostIn, peerOut := io.Pipe()
	_, hostOut := io.Pipe()

	conn := NewConn(hostIn, hostOut, nil, testLogger())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = conn.Run(context.Background())
	}()

	peerOut.Close()
	<-done

	_, err := conn.Call(context.Background(), "accounts.list", struct{}{})
	assert.ErrorIs(t, err, ErrConnClosed)
}
