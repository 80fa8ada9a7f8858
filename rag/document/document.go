package document

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Document is a case or policy record ready to be indexed.
type Document struct {
	ID       string         `json:"id"`
	Title    string         `json:"title,omitempty"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Chunk is a window of a document's content that is embedded on its own.
type Chunk struct {
	ID         string         `json:"id"`
	DocumentID string         `json:"document_id"`
	Content    string         `json:"content"`
	Ordinal    int            `json:"ordinal"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// EnsureDocumentID assigns a random identifier to documents without one.
func EnsureDocumentID(doc *Document) {
	if doc == nil || doc.ID != "" {
		return
	}
	doc.ID = "doc_" + uuid.NewString()
}

// ChunkID derives a stable chunk identifier from the document ID and ordinal.
func ChunkID(docID string, ordinal int) string {
	return fmt.Sprintf("%s#%d", docID, ordinal)
}

// Clone returns a copy whose metadata map can be modified independently.
func (d Document) Clone() Document {
	out := d
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// MetaString reads a metadata value as trimmed text. Non-string values are formatted.
func MetaString(meta map[string]any, key string) string {
	if meta == nil {
		return ""
	}
	switch v := meta[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []string:
		return strings.Join(v, "; ")
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
