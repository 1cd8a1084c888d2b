package background

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func templateFS() fstest.MapFS {
	return fstest.MapFS{
		"en-US/new.docx": {Data: []byte("blank docx en-US")},
		"en-US/new.xlsx": {Data: []byte("blank xlsx en-US")},
		"en-US/new.pptx": {Data: []byte("blank pptx en-US")},
		"de-DE/new.docx": {Data: []byte("blank docx de-DE")},
		"de/new.xlsx":    {Data: []byte("blank xlsx de")},
	}
}

func TestTemplateResolve(t *testing.T) {
	ts := NewTemplateSet(templateFS())

	tests := []struct {
		name    string
		docType string
		locale  string
		want    string
	}{
		{name: "exact locale", docType: DocTypeDocument, locale: "de-DE", want: "blank docx de-DE"},
		{name: "language fallback", docType: DocTypeSpreadsheet, locale: "de-AT", want: "blank xlsx de"},
		{name: "default fallback", docType: DocTypePresentation, locale: "fr-FR", want: "blank pptx en-US"},
		{name: "empty locale", docType: DocTypeDocument, locale: "", want: "blank docx en-US"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, contentType, err := ts.Resolve(tt.docType, tt.locale)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
			assert.NotEmpty(t, contentType)
		})
	}
}

func TestTemplateResolveUnknownType(t *testing.T) {
	ts := NewTemplateSet(templateFS())

	_, _, err := ts.Resolve("drawing", "en-US")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported document type")
}

func TestTemplateResolveMissingTemplate(t *testing.T) {
	ts := NewTemplateSet(fstest.MapFS{})

	_, _, err := ts.Resolve(DocTypeDocument, "en-US")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no blank template")
}

func TestExtensionForDocType(t *testing.T) {
	tests := []struct {
		docType string
		want    string
		wantErr bool
	}{
		{docType: DocTypeDocument, want: "docx"},
		{docType: DocTypeSpreadsheet, want: "xlsx"},
		{docType: DocTypePresentation, want: "pptx"},
		{docType: "pdf", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.docType, func(t *testing.T) {
			got, err := ExtensionForDocType(tt.docType)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ExtensionForDocType(%q) = %q, want %q", tt.docType, got, tt.want)
			}
		})
	}
}
