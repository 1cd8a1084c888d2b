package protocol

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/officedocs/mailbridge/internal/attachments"
)

// Action names exchanged between the UI pages and the privileged
// background context. These strings are the wire contract and must not
// change.
const (
	ActionGetMessageData        = "getMessageData"
	ActionGetComposeDetails     = "getComposeDetails"
	ActionGetAttachmentData     = "getAttachmentData"
	ActionSaveComposeAttachment = "saveComposeAttachment"
	ActionGetUserInfo           = "getUserInfo"
	ActionCreateNewDocument     = "createNewDocument"
)

// UnknownActionError is the error text replied to unrecognized actions.
const UnknownActionError = "Unknown action"

// ID is a numeric identifier that may arrive as a JSON number or a
// numeric string. Parse failures surface as unmarshal errors rather
// than propagating as zero values.
type ID int

// Int returns the identifier as a plain int.
func (id ID) Int() int {
	return int(id)
}

// UnmarshalJSON accepts 7 and "7" alike.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return fmt.Errorf("missing id")
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid id %q", s)
	}
	*id = ID(n)
	return nil
}

// ByteBuffer carries raw document bytes. The UI serializes buffers as
// JSON arrays of byte values; base64 strings are accepted as well for
// compactness on the native transport.
type ByteBuffer []byte

// MarshalJSON encodes the buffer as an array of byte values, matching
// what the UI pages produce. An empty buffer encodes as [].
func (b ByteBuffer) MarshalJSON() ([]byte, error) {
	if len(b) == 0 {
		return []byte("[]"), nil
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	sb.WriteByte(']')
	return []byte(sb.String()), nil
}

// UnmarshalJSON accepts either a JSON array of byte values or a base64
// string.
func (b *ByteBuffer) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var nums []int
		if err := json.Unmarshal(data, &nums); err != nil {
			return fmt.Errorf("invalid byte array: %w", err)
		}
		out := make([]byte, len(nums))
		for i, n := range nums {
			if n < 0 || n > 255 {
				return fmt.Errorf("byte value %d out of range", n)
			}
			out[i] = byte(n)
		}
		*b = out
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid byte buffer: %w", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid base64 byte buffer: %w", err)
	}
	*b = decoded
	return nil
}

// Request is the generic envelope of a protocol message: the action
// name plus the raw action-specific fields.
type Request struct {
	Action string `json:"action"`

	raw json.RawMessage
}

// ParseRequest extracts the action name from a raw message, keeping the
// full payload for per-action decoding.
func ParseRequest(data []byte) (*Request, error) {
	var probe struct {
		Action string `json:"action"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("malformed request: %w", err)
	}
	return &Request{Action: probe.Action, raw: append(json.RawMessage(nil), data...)}, nil
}

// Decode unmarshals the request payload into an action-specific struct.
func (r *Request) Decode(v any) error {
	if err := json.Unmarshal(r.raw, v); err != nil {
		return fmt.Errorf("invalid %s request: %w", r.Action, err)
	}
	return nil
}

// Raw returns the undecoded request payload.
func (r *Request) Raw() json.RawMessage {
	return r.raw
}

// GetMessageDataRequest asks for a received message and its attachment
// candidates.
type GetMessageDataRequest struct {
	MessageID ID `json:"messageId"`
}

// GetComposeDetailsRequest asks for an in-progress compose window and
// its attachments.
type GetComposeDetailsRequest struct {
	ComposeTabID ID `json:"composeTabId"`
}

// GetAttachmentDataRequest asks for the raw bytes of one attachment.
// With a compose tab set, the attachment is looked up by ID in that
// tab; otherwise WindowID names an open viewer window whose message is
// scanned for the first office document.
type GetAttachmentDataRequest struct {
	ComposeTabID ID `json:"composeTabId"`
	AttachmentID ID `json:"attachmentId"`
	WindowID     ID `json:"windowId,omitempty"`
}

// SaveComposeAttachmentRequest replaces a compose attachment's content.
type SaveComposeAttachmentRequest struct {
	ComposeTabID ID         `json:"composeTabId"`
	AttachmentID ID         `json:"attachmentId"`
	Data         ByteBuffer `json:"data"`
	Name         string     `json:"name"`
	ContentType  string     `json:"contentType"`
}

// CreateNewDocumentRequest asks for a blank document to be attached to
// a compose window.
type CreateNewDocumentRequest struct {
	ComposeTabID ID     `json:"composeTabId"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Locale       string `json:"locale,omitempty"`
}

// ErrorResponse is the uniform failure reply. Handlers never let an
// error escape to the transport; they reply with one of these instead.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// UnknownActionResponse is the reply to an unrecognized action name.
type UnknownActionResponse struct {
	Error string `json:"error"`
}

// MessageDataResponse carries a received message's fields plus its
// processed attachment candidates.
type MessageDataResponse struct {
	ID          int                      `json:"id"`
	Subject     string                   `json:"subject,omitempty"`
	Author      string                   `json:"author,omitempty"`
	Date        string                   `json:"date,omitempty"`
	ContentType string                   `json:"contentType,omitempty"`
	Size        int64                    `json:"size,omitempty"`
	Attachments []attachments.Attachment `json:"attachments"`
}

// ComposeDetailsResponse carries a compose window's fields plus its
// attachments.
type ComposeDetailsResponse struct {
	Type        string                   `json:"type,omitempty"`
	Subject     string                   `json:"subject,omitempty"`
	To          []string                 `json:"to,omitempty"`
	Attachments []attachments.Attachment `json:"attachments"`
}

// AttachmentDataResponse carries one attachment's raw bytes.
type AttachmentDataResponse struct {
	Success     bool       `json:"success"`
	Data        ByteBuffer `json:"data"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"contentType"`
}

// SaveComposeAttachmentResponse acknowledges a save.
type SaveComposeAttachmentResponse struct {
	Success bool `json:"success"`
}

// UserInfo is a best-effort user identity.
type UserInfo struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// UserInfoResponse carries the identity lookup result. Success false
// with an empty UserInfo means no identity was available; it is not an
// error.
type UserInfoResponse struct {
	Success  bool     `json:"success"`
	UserInfo UserInfo `json:"userInfo"`
}

// CreateNewDocumentResponse acknowledges a blank-document creation.
type CreateNewDocumentResponse struct {
	Success  bool   `json:"success"`
	Filename string `json:"filename"`
}
