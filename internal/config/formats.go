package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Capability tags a document format may carry in the formats manifest.
const (
	ActionEdit         = "edit"
	ActionView         = "view"
	ActionReview       = "review"
	ActionComment      = "comment"
	ActionFill         = "fill"
	ActionEncrypt      = "encrypt"
	ActionLossyEdit    = "lossy-edit"
	ActionAutoConvert  = "auto-convert"
	ActionCustomFilter = "customfilter"
)

// Document type families understood by the editor.
const (
	TypeWord    = "word"
	TypeCell    = "cell"
	TypeSlide   = "slide"
	TypePDF     = "pdf"
	TypeDiagram = "diagram"
)

// FormatEntry is one record of the formats manifest.
type FormatEntry struct {
	// Name is the file extension without a dot, e.g. "docx".
	Name string `json:"name"`

	// Type is the document family: word, cell, slide, pdf, diagram.
	Type string `json:"type"`

	// Mime lists the MIME types associated with the format.
	Mime []string `json:"mime"`

	// Actions lists the capability tags the format supports.
	Actions []string `json:"actions"`
}

// Family aggregates the manifest records of one document family.
type Family struct {
	Extensions []string
	MimeTypes  []string
	Actions    []string
}

// HasAction reports whether the family carries the given capability tag.
func (f *Family) HasAction(action string) bool {
	for _, a := range f.Actions {
		if a == action {
			return true
		}
	}
	return false
}

// FormatsTable maps document families to their aggregated formats. It
// is built once at startup and read-only for the rest of the session.
type FormatsTable struct {
	families   map[string]*Family
	extensions map[string]string // extension -> family
}

// LoadFormats reads a formats manifest file and builds the table.
func LoadFormats(path string) (*FormatsTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read formats manifest: %w", err)
	}

	var entries []FormatEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse formats manifest: %w", err)
	}

	return BuildFormats(entries), nil
}

// BuildFormats aggregates manifest entries into a FormatsTable.
// Extension order within a family follows manifest order; capability
// tags are deduplicated.
func BuildFormats(entries []FormatEntry) *FormatsTable {
	t := &FormatsTable{
		families:   make(map[string]*Family),
		extensions: make(map[string]string),
	}

	for _, entry := range entries {
		if entry.Name == "" || entry.Type == "" {
			continue
		}

		fam, ok := t.families[entry.Type]
		if !ok {
			fam = &Family{}
			t.families[entry.Type] = fam
		}

		ext := strings.ToLower(entry.Name)
		fam.Extensions = append(fam.Extensions, ext)
		fam.MimeTypes = append(fam.MimeTypes, entry.Mime...)
		for _, action := range entry.Actions {
			if !fam.HasAction(action) {
				fam.Actions = append(fam.Actions, action)
			}
		}

		if _, taken := t.extensions[ext]; !taken {
			t.extensions[ext] = entry.Type
		}
	}

	return t
}

// Family returns the aggregated formats of a document family, or nil.
func (t *FormatsTable) Family(name string) *Family {
	return t.families[name]
}

// SupportedExtensions returns every extension in the table.
func (t *FormatsTable) SupportedExtensions() []string {
	var exts []string
	for _, fam := range t.families {
		exts = append(exts, fam.Extensions...)
	}
	return exts
}

// IsSupportedFile reports whether the filename carries a supported
// extension. The check is case-insensitive.
func (t *FormatsTable) IsSupportedFile(filename string) bool {
	ext := FileExtension(filename)
	if ext == "" {
		return false
	}
	_, ok := t.extensions[ext]
	return ok
}

// TypeForExtension returns the document family for an extension,
// defaulting to the word family for unknown extensions.
func (t *FormatsTable) TypeForExtension(ext string) string {
	if fam, ok := t.extensions[strings.ToLower(ext)]; ok {
		return fam
	}
	return TypeWord
}

// FileExtension returns the lowercased extension of filename without
// the dot, or "" when the filename has none.
func FileExtension(filename string) string {
	idx := strings.LastIndex(filename, ".")
	if idx < 0 || idx == len(filename)-1 {
		return ""
	}
	return strings.ToLower(filename[idx+1:])
}
