package mail

import (
	"github.com/officedocs/mailbridge/internal/attachments"
)

// MessageHeader describes a received message without its body.
type MessageHeader struct {
	ID          int    `json:"id"`
	Subject     string `json:"subject"`
	Author      string `json:"author"`
	Date        string `json:"date"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// FullMessage is a message header plus its MIME body tree.
type FullMessage struct {
	MessageHeader
	Parts []*attachments.Part `json:"parts"`
}

// ComposeDetails describes an in-progress compose window.
type ComposeDetails struct {
	Type    string   `json:"type"`
	Subject string   `json:"subject"`
	To      []string `json:"to"`
}

// Identity is one sending identity of an account.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Account is one configured mail account.
type Account struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Identities []Identity `json:"identities"`
}

// FileAttachment carries the raw bytes of one attachment file.
type FileAttachment struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}

// WindowOptions describes a window to create.
type WindowOptions struct {
	URL    string `json:"url"`
	Type   string `json:"type"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Window is a created window reference.
type Window struct {
	ID int `json:"id"`
}
