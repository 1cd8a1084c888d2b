package attachments

// DefaultContentType is assumed for attachments the mail store did not
// classify.
const DefaultContentType = "application/octet-stream"

// Attachment is a normalized office-document attachment candidate from
// either a received message or an in-progress compose window.
type Attachment struct {
	// ID identifies the attachment within its source context. Absent
	// (zero) for some message sources; compose attachments always have
	// one.
	ID int `json:"id,omitempty"`

	// Name is the attachment filename. Always present for usable
	// attachments.
	Name string `json:"name"`

	// Size is the attachment size in bytes.
	Size int64 `json:"size"`

	// ContentType is the declared MIME type, defaulted to
	// DefaultContentType when the source left it empty.
	ContentType string `json:"contentType"`

	// PartName locates the raw bytes within a message's MIME tree.
	// Empty for compose attachments, which are fetched by ID.
	PartName string `json:"partName,omitempty"`

	// SourceContextID references the compose tab the attachment came
	// from, when applicable.
	SourceContextID int `json:"sourceContextId,omitempty"`
}

// Actionable reports whether the attachment can be individually
// fetched. An attachment missing both ID and PartName cannot.
func (a Attachment) Actionable() bool {
	return a.ID != 0 || a.PartName != ""
}

// Part is one segment of a message's MIME body tree. Parts nest, e.g.
// attachments inside a forwarded message.
type Part struct {
	Name        string  `json:"name,omitempty"`
	ContentType string  `json:"contentType,omitempty"`
	PartName    string  `json:"partName,omitempty"`
	Size        int64   `json:"size,omitempty"`
	Parts       []*Part `json:"parts,omitempty"`
}
