package editor

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

// apiScriptPath is where the document server publishes its embedding
// API, relative to the server base URL.
const apiScriptPath = "/web-apps/apps/api/documents/api.js"

// SaveEvent carries a save request from the editor: either the edited
// bytes inline, or a result URL to fetch them from.
type SaveEvent struct {
	Data []byte
	URL  string
}

// Events are the editor callbacks a session wires up.
type Events struct {
	OnAppReady     func()
	OnSaveDocument func(event SaveEvent)
	OnStateChange  func()
}

// Instance is one running embedded editor.
type Instance interface {
	// OpenDocument pushes inline document bytes into the editor.
	OpenDocument(data []byte) error

	// Destroy tears the instance down.
	Destroy()
}

// API is the boundary to the remote editor runtime: it loads the
// embedding script and constructs instances.
type API interface {
	// Load fetches the embedding API from the document server. Fatal
	// when the script cannot be retrieved.
	Load(ctx context.Context, serverURL string) error

	// NewInstance constructs an editor in the named placeholder.
	NewInstance(placeholder string, cfg *Config, events Events) (Instance, error)
}

// InstanceFactory builds concrete editor instances once the API script
// is loaded. The window layer supplies one.
type InstanceFactory func(placeholder string, cfg *Config, events Events) (Instance, error)

// RemoteAPI loads the embedding script over HTTP and delegates
// instance construction to a factory.
type RemoteAPI struct {
	http    *resty.Client
	factory InstanceFactory
	script  []byte
}

// NewRemoteAPI creates a RemoteAPI over the given HTTP client.
func NewRemoteAPI(http *resty.Client, factory InstanceFactory) *RemoteAPI {
	return &RemoteAPI{http: http, factory: factory}
}

func (a *RemoteAPI) Load(ctx context.Context, serverURL string) error {
	if serverURL == "" {
		return fmt.Errorf("document server url is not configured")
	}

	resp, err := a.http.R().SetContext(ctx).Get(serverURL + apiScriptPath)
	if err != nil {
		return fmt.Errorf("failed to load document API from %s: %w", serverURL, err)
	}
	if resp.IsError() {
		return fmt.Errorf("failed to load document API from %s: %s", serverURL, resp.Status())
	}

	a.script = resp.Body()
	return nil
}

func (a *RemoteAPI) NewInstance(placeholder string, cfg *Config, events Events) (Instance, error) {
	if len(a.script) == 0 {
		return nil, fmt.Errorf("document API not loaded")
	}
	return a.factory(placeholder, cfg, events)
}

// Script returns the loaded embedding script, for the window layer to
// inject.
func (a *RemoteAPI) Script() []byte {
	return a.script
}

// FileSaver persists editor output outside a compose window, the
// host-side equivalent of a browser download.
type FileSaver interface {
	Save(name string, data []byte) error
}
