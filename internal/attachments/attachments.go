package attachments

import (
	"github.com/officedocs/mailbridge/internal/config"
)

// Normalize fills in the defaults the rest of the system relies on:
// a non-empty content type, and the compose context reference when the
// attachment came from a compose window.
func Normalize(att Attachment, composeTabID int) Attachment {
	if att.ContentType == "" {
		att.ContentType = DefaultContentType
	}
	if composeTabID != 0 {
		att.SourceContextID = composeTabID
	}
	return att
}

// NormalizeAll normalizes a slice, preserving source order.
func NormalizeAll(atts []Attachment, composeTabID int) []Attachment {
	out := make([]Attachment, 0, len(atts))
	for _, att := range atts {
		out = append(out, Normalize(att, composeTabID))
	}
	return out
}

// FindInParts recursively scans a MIME part tree for parts that look
// like attachments. A part qualifies when it has a name and either a
// recognized office extension, or both a content type and a part name
// (the heuristic for parts the store did not classify).
func FindInParts(parts []*Part, formats *config.FormatsTable) []Attachment {
	var found []Attachment
	walkParts(parts, func(p *Part) {
		if p.Name == "" {
			return
		}
		if formats.IsSupportedFile(p.Name) || (p.ContentType != "" && p.PartName != "") {
			found = append(found, Attachment{
				Name:        p.Name,
				ContentType: p.ContentType,
				PartName:    p.PartName,
				Size:        p.Size,
			})
		}
	})
	return found
}

// walkParts walks a part tree depth-first in document order.
func walkParts(parts []*Part, fn func(*Part)) {
	for _, p := range parts {
		if p == nil {
			continue
		}
		fn(p)
		walkParts(p.Parts, fn)
	}
}

// FilterSupported keeps only attachments whose extension appears in the
// formats table. Source order is preserved; nothing is merged or
// deduplicated beyond what the source guarantees.
func FilterSupported(atts []Attachment, formats *config.FormatsTable) []Attachment {
	var out []Attachment
	for _, att := range atts {
		if att.Name != "" && formats.IsSupportedFile(att.Name) {
			out = append(out, att)
		}
	}
	return out
}
