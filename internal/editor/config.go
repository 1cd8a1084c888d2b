package editor

// InlineDocumentURL marks a config whose document arrives as inline
// bytes instead of a fetchable URL. The embedded editor cannot
// self-fetch inline data; onAppReady pushes it explicitly.
const InlineDocumentURL = "_data_"

// Editor modes.
const (
	ModeEdit = "edit"
	ModeView = "view"
)

// Permissions controls what the embedded editor lets the user do with
// the open document. Download and print are always granted; the rest
// derive from the format's capability tags.
type Permissions struct {
	Download             bool `json:"download"`
	Edit                 bool `json:"edit"`
	Print                bool `json:"print"`
	Review               bool `json:"review"`
	Comment              bool `json:"comment"`
	FillForms            bool `json:"fillForms"`
	ModifyFilter         bool `json:"modifyFilter"`
	ModifyContentControl bool `json:"modifyContentControl"`
}

// Document describes the file the editor opens.
type Document struct {
	FileType    string      `json:"fileType"`
	Title       string      `json:"title"`
	Key         string      `json:"key"`
	URL         string      `json:"url"`
	Permissions Permissions `json:"permissions"`
}

// User is the optional identity shown in the editor's collaboration
// UI.
type User struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// Customization disables the editor chrome we do not want in a mail
// client popup.
type Customization struct {
	About     bool `json:"about"`
	Feedback  bool `json:"feedback"`
	Forcesave bool `json:"forcesave"`
}

// Options is the editorConfig block of the editor configuration.
type Options struct {
	Mode          string        `json:"mode"`
	User          *User         `json:"user,omitempty"`
	Customization Customization `json:"customization"`
}

// Config is the full configuration handed to the embedded editor.
// DocumentData is host-side convenience only and never serialized.
type Config struct {
	DocumentData []byte  `json:"-"`
	Document     Document `json:"document"`
	DocumentType string  `json:"documentType"`
	Type         string  `json:"type,omitempty"`
	Height       string  `json:"height"`
	Width        string  `json:"width"`
	EditorConfig Options `json:"editorConfig"`
	Token        string  `json:"token,omitempty"`
}

// SignablePayload is the exact subset of the config covered by the
// token. Convenience fields stay out so signatures do not drift with
// presentation changes.
func (c *Config) SignablePayload() map[string]any {
	editorConfig := map[string]any{
		"mode":          c.EditorConfig.Mode,
		"customization": c.EditorConfig.Customization,
	}
	if c.EditorConfig.User != nil {
		editorConfig["user"] = c.EditorConfig.User
	}
	return map[string]any{
		"document":     c.Document,
		"documentType": c.DocumentType,
		"type":         c.Type,
		"editorConfig": editorConfig,
	}
}
