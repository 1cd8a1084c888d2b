package pages

import (
	"context"
	"fmt"
	"strconv"

	"github.com/officedocs/mailbridge/internal/attachments"
	"github.com/officedocs/mailbridge/internal/router"
)

// Route names registered with the router.
const (
	RouteLoading = "loading"
	RouteEmpty   = "empty"
	RouteError   = router.RouteError
	RouteFiles   = "files"
	RouteViewer  = "viewer"
	RouteCreate  = "create"
)

// LoadingData customizes the loading page's message.
type LoadingData struct {
	Message string
}

// EmptyData selects the wording of the no-documents page.
type EmptyData struct {
	IsCompose bool
}

// FileListData carries the attachments the list page shows.
type FileListData struct {
	Files []attachments.Attachment
}

// ViewerData names the attachment the viewer opens.
type ViewerData struct {
	File attachments.Attachment
}

// CreateData carries the compose window the create dialog targets.
type CreateData struct {
	ComposeTabID int
}

// LoadingPage shows a spinner while attachments resolve.
type LoadingPage struct{}

func (p *LoadingPage) Render(_ context.Context, data any) (*router.Node, error) {
	message := "Loading documents"
	if d, ok := data.(LoadingData); ok && d.Message != "" {
		message = d.Message
	}
	return router.El("loader",
		router.El("spinner"),
		router.El("message", router.Text(message)),
	), nil
}

// EmptyPage tells the user no office documents were found.
type EmptyPage struct{}

func (p *EmptyPage) Render(_ context.Context, data any) (*router.Node, error) {
	title := "No office documents in this message"
	if d, ok := data.(EmptyData); ok && d.IsCompose {
		title = "No office documents attached to this draft"
	}
	return router.El("empty",
		router.El("title", router.Text(title)),
		router.El("subtitle", router.Text("Attach a document to open it in the editor")),
	), nil
}

// ErrorPage renders a navigation or load failure.
type ErrorPage struct{}

func (p *ErrorPage) Render(_ context.Context, data any) (*router.Node, error) {
	errData, _ := data.(router.ErrorData)
	if errData.Title == "" {
		errData.Title = "An error occurred"
	}
	if errData.Message == "" {
		errData.Message = "Something went wrong"
	}
	return router.El("error",
		router.El("title", router.Text(errData.Title)),
		router.El("message", router.Text(errData.Message)),
	), nil
}

// FileListPage lists the openable attachments. Selecting one fires
// the app's open or download flow through the attached callbacks.
type FileListPage struct {
	files []attachments.Attachment
}

func (p *FileListPage) Render(_ context.Context, data any) (*router.Node, error) {
	d, ok := data.(FileListData)
	if !ok {
		return nil, fmt.Errorf("file list requires FileListData")
	}
	p.files = d.Files

	list := router.El("file-list")
	for _, file := range p.files {
		item := router.El("file-item",
			router.El("name", router.Text(file.Name)),
		).Set("size", strconv.FormatInt(file.Size, 10))
		if file.ID != 0 {
			item.Set("id", strconv.Itoa(file.ID))
		}
		if file.PartName != "" {
			item.Set("partName", file.PartName)
		}
		list.Children = append(list.Children, item)
	}
	return router.El("files",
		router.El("title", router.Text("Documents")),
		list,
	), nil
}

func (p *FileListPage) Cleanup(_ context.Context) error {
	p.files = nil
	return nil
}

// EditorOpener starts an editor session for a named attachment's
// bytes. The pages.App wires it to a Session.
type EditorOpener interface {
	Open(ctx context.Context, data []byte, name string) error
	Close()
}

// AttachmentLoader fetches the raw bytes of one attachment.
type AttachmentLoader func(ctx context.Context, file attachments.Attachment) ([]byte, error)

// ViewerPage loads an attachment's bytes and hands them to the editor
// session. Render shows the loading shell; the heavy work happens in
// Init so the tree is mounted while bytes are in flight.
type ViewerPage struct {
	loader AttachmentLoader
	opener EditorOpener

	current *attachments.Attachment
}

// NewViewerPage creates a ViewerPage over the given loader and editor.
func NewViewerPage(loader AttachmentLoader, opener EditorOpener) *ViewerPage {
	return &ViewerPage{loader: loader, opener: opener}
}

func (p *ViewerPage) Render(_ context.Context, data any) (*router.Node, error) {
	name := "file"
	if d, ok := data.(ViewerData); ok && d.File.Name != "" {
		name = d.File.Name
	}
	return router.El("viewer",
		router.El("loader", router.El("message", router.Text("Opening "+name))),
		router.El("placeholder"),
	), nil
}

func (p *ViewerPage) Init(ctx context.Context, data any) error {
	d, ok := data.(ViewerData)
	if !ok {
		return fmt.Errorf("no file to open")
	}
	p.current = &d.File

	raw, err := p.loader(ctx, d.File)
	if err != nil {
		return err
	}
	return p.opener.Open(ctx, raw, d.File.Name)
}

func (p *ViewerPage) Cleanup(_ context.Context) error {
	if p.current != nil {
		p.opener.Close()
		p.current = nil
	}
	return nil
}

// DocumentCreator drives the create-document action. The App wires it
// to the protocol client.
type DocumentCreator func(ctx context.Context, composeTabID int, title, docType, locale string) (string, error)

// CreatePage is the blank-document dialog. Submit is called by the
// window layer when the user confirms.
type CreatePage struct {
	creator DocumentCreator

	composeTabID int
	selectedType string
}

// NewCreatePage creates a CreatePage over the given creator.
func NewCreatePage(creator DocumentCreator) *CreatePage {
	return &CreatePage{creator: creator, selectedType: "document"}
}

func (p *CreatePage) Render(_ context.Context, _ any) (*router.Node, error) {
	return router.El("file-creator",
		router.El("title-input").Set("value", "New Document"),
		router.El("type-buttons",
			router.El("type").Set("type", "document"),
			router.El("type").Set("type", "spreadsheet"),
			router.El("type").Set("type", "presentation"),
		),
	), nil
}

func (p *CreatePage) Init(_ context.Context, data any) error {
	d, ok := data.(CreateData)
	if !ok || d.ComposeTabID == 0 {
		return fmt.Errorf("no compose tab ID provided")
	}
	p.composeTabID = d.ComposeTabID
	return nil
}

// SelectType records the document type the user picked.
func (p *CreatePage) SelectType(docType string) {
	p.selectedType = docType
}

// Submit creates the document and returns the attached filename.
func (p *CreatePage) Submit(ctx context.Context, title, locale string) (string, error) {
	if p.composeTabID == 0 {
		return "", fmt.Errorf("create dialog not initialized")
	}
	return p.creator(ctx, p.composeTabID, title, p.selectedType, locale)
}

func (p *CreatePage) Cleanup(_ context.Context) error {
	p.composeTabID = 0
	p.selectedType = "document"
	return nil
}
