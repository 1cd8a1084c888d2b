package background

import (
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// Document types accepted by the create-document action.
const (
	DocTypeDocument     = "document"
	DocTypeSpreadsheet  = "spreadsheet"
	DocTypePresentation = "presentation"
)

// DefaultTemplateLocale is the fallback when no locale-specific blank
// template exists.
const DefaultTemplateLocale = "en-US"

var docTypeExtensions = map[string]string{
	DocTypeDocument:     "docx",
	DocTypeSpreadsheet:  "xlsx",
	DocTypePresentation: "pptx",
}

var templateContentTypes = map[string]string{
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
}

// ExtensionForDocType maps a create-document type to its file
// extension.
func ExtensionForDocType(docType string) (string, error) {
	ext, ok := docTypeExtensions[docType]
	if !ok {
		return "", fmt.Errorf("unsupported document type: %s", docType)
	}
	return ext, nil
}

// TemplateSet serves locale-specific blank document templates from a
// filesystem laid out as <locale>/new.<ext>.
type TemplateSet struct {
	fsys fs.FS
}

// NewTemplateSet creates a TemplateSet over the given filesystem.
func NewTemplateSet(fsys fs.FS) *TemplateSet {
	return &TemplateSet{fsys: fsys}
}

// Resolve returns the blank template for a document type, trying the
// exact locale, then its language, then the default locale.
func (t *TemplateSet) Resolve(docType, locale string) ([]byte, string, error) {
	ext, err := ExtensionForDocType(docType)
	if err != nil {
		return nil, "", err
	}

	var candidates []string
	if locale != "" {
		candidates = append(candidates, locale)
		if lang, _, ok := strings.Cut(locale, "-"); ok && lang != "" {
			candidates = append(candidates, lang)
		}
	}
	candidates = append(candidates, DefaultTemplateLocale)

	for _, loc := range candidates {
		data, err := fs.ReadFile(t.fsys, path.Join(loc, "new."+ext))
		if err == nil {
			return data, templateContentTypes[ext], nil
		}
	}

	return nil, "", fmt.Errorf("no blank template for type %s", docType)
}
