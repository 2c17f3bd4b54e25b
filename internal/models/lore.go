package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoreEntry represents one document in the lore collection.
// The embedding is absent until the entry has been embedded once after
// creation; it is regenerated whenever the entry's text changes.
type LoreEntry struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OriginalTitle       string             `bson:"original_title" json:"original_title"`
	OriginalDescription string             `bson:"original_description" json:"original_description"`
	Writer              string             `bson:"writer" json:"writer"`
	Timestamp           time.Time          `bson:"timestamp" json:"timestamp"`
	Title               string             `bson:"title" json:"title"`             // whitespace-stripped
	Description         string             `bson:"description" json:"description"` // whitespace-stripped
	Embedding           []float64          `bson:"plot_embedding_hf,omitempty" json:"-"`
}

// EmbeddingText is the text the entry is embedded from
func (e *LoreEntry) EmbeddingText() string {
	return e.OriginalTitle + ": " + e.OriginalDescription
}

// StripWhitespace removes all whitespace from s, producing the normalized
// title/description fields the original archive keeps alongside each entry.
func StripWhitespace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// CreateLoreRequest is the request body for creating a lore entry
type CreateLoreRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Writer      string `json:"writer"`
}

// UpdateLoreRequest is the request body for updating a lore entry
type UpdateLoreRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
