package mail

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officedocs/mailbridge/internal/natmsg"
)

// The stdio connection is the production Caller.
var _ Caller = (*natmsg.Conn)(nil)

type fakeCaller struct {
	method string
	params any
	reply  json.RawMessage
	err    error

	eventName    string
	eventHandler func(json.RawMessage)
}

func (f *fakeCaller) Call(_ context.Context, method string, params any) (json.RawMessage, error) {
	f.method = method
	f.params = params
	return f.reply, f.err
}

func (f *fakeCaller) OnEvent(event string, h func(json.RawMessage)) {
	f.eventName = event
	f.eventHandler = h
}

func testBridge(reply string, err error) (*Bridge, *fakeCaller) {
	caller := &fakeCaller{reply: json.RawMessage(reply), err: err}
	return NewBridge(caller, slog.New(slog.NewTextHandler(io.Discard, nil))), caller
}

func TestBridgeGetMessage(t *testing.T) {
	b, caller := testBridge(`{"id":42,"subject":"Q3 numbers","author":"Ada <ada@example.com>","date":"2026-08-12","contentType":"multipart/mixed","size":9000}`, nil)

	header, err := b.GetMessage(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "messages.get", caller.method)
	assert.Equal(t, map[string]any{"messageId": 42}, caller.params)
	assert.Equal(t, 42, header.ID)
	assert.Equal(t, "Q3 numbers", header.Subject)
	assert.Equal(t, int64(9000), header.Size)
}

func TestBridgeGetFullMessage(t *testing.T) {
	b, caller := testBridge(`{"id":7,"subject":"attached","parts":[{"contentType":"multipart/mixed","partName":"1","parts":[{"name":"report.xlsx","contentType":"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet","partName":"1.2"}]}]}`, nil)

	msg, err := b.GetFullMessage(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, "messages.getFull", caller.method)
	require.Len(t, msg.Parts, 1)
	require.Len(t, msg.Parts[0].Parts, 1)
	assert.Equal(t, "report.xlsx", msg.Parts[0].Parts[0].Name)
}

func TestBridgeListAttachments(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  int
	}{
		{name: "populated", reply: `[{"id":1,"name":"a.docx","size":10,"contentType":"application/octet-stream"}]`, want: 1},
		{name: "empty list", reply: `[]`, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := testBridge(tt.reply, nil)
			atts, err := b.ListAttachments(context.Background(), 5)
			require.NoError(t, err)
			assert.Len(t, atts, tt.want)
			if tt.want == 0 {
				assert.NotNil(t, atts)
			}
		})
	}
}

func TestBridgeCallError(t *testing.T) {
	callErr := errors.New("messages.get failed: message not found")
	b, _ := testBridge("", callErr)

	_, err := b.GetMessage(context.Background(), 99)
	assert.ErrorIs(t, err, callErr)
}

func TestBridgeTabExists(t *testing.T) {
	t.Run("open tab", func(t *testing.T) {
		b, caller := testBridge(`{"id":12}`, nil)
		ok, err := b.TabExists(context.Background(), 12)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "tabs.get", caller.method)
	})

	t.Run("missing tab reported as closed", func(t *testing.T) {
		b, _ := testBridge("", errors.New("tabs.get failed: no tab with id 12"))
		ok, err := b.TabExists(context.Background(), 12)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestBridgeAddComposeAttachment(t *testing.T) {
	b, caller := testBridge(`{}`, nil)

	file := FileAttachment{Name: "draft.docx", ContentType: "application/octet-stream", Data: []byte{1, 2, 3}}
	require.NoError(t, b.AddComposeAttachment(context.Background(), 4, file))
	assert.Equal(t, "compose.addAttachment", caller.method)

	params, ok := caller.params.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 4, params["tabId"])
	assert.Equal(t, file, params["file"])
}

func TestBridgeListAccounts(t *testing.T) {
	b, _ := testBridge(`[{"id":"acct1","name":"Work","identities":[{"id":"id1","name":"Ada","email":"ada@example.com"}]}]`, nil)

	accounts, err := b.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	require.Len(t, accounts[0].Identities, 1)
	assert.Equal(t, "ada@example.com", accounts[0].Identities[0].Email)
}

func TestBridgeCreateWindow(t *testing.T) {
	b, caller := testBridge(`{"id":33}`, nil)

	win, err := b.CreateWindow(context.Background(), WindowOptions{URL: "editor.html?messageId=5", Type: "popup", Width: 800, Height: 600})
	require.NoError(t, err)
	assert.Equal(t, "windows.create", caller.method)
	assert.Equal(t, 33, win.ID)
}

func TestBridgeOnWindowClosed(t *testing.T) {
	b, caller := testBridge("", nil)

	var closed []int
	b.OnWindowClosed(func(id int) { closed = append(closed, id) })
	require.Equal(t, "windows.closed", caller.eventName)
	require.NotNil(t, caller.eventHandler)

	caller.eventHandler(json.RawMessage(`{"windowId":33}`))
	caller.eventHandler(json.RawMessage(`not json`))
	caller.eventHandler(json.RawMessage(`{"windowId":34}`))

	assert.Equal(t, []int{33, 34}, closed)
}

type fakeCallRecorder struct {
	methods  []string
	statuses []string
}

func (f *fakeCallRecorder) RecordStoreCall(_ context.Context, method, status string, _ time.Duration) {
	f.methods = append(f.methods, method)
	f.statuses = append(f.statuses, status)
}

func TestBridgeRecordsStoreCalls(t *testing.T) {
	recorder := &fakeCallRecorder{}
	caller := &fakeCaller{reply: json.RawMessage(`{"id":1}`)}
	b := NewBridge(caller, slog.New(slog.NewTextHandler(io.Discard, nil)), WithCallRecorder(recorder))

	_, err := b.GetMessage(context.Background(), 1)
	require.NoError(t, err)

	caller.err = errors.New("store gone")
	_, err = b.GetComposeDetails(context.Background(), 3)
	require.Error(t, err)

	assert.Equal(t, []string{"messages.get", "compose.getDetails"}, recorder.methods)
	assert.Equal(t, []string{"success", "error"}, recorder.statuses)
}
