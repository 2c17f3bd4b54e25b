package models

// RetrievedChunk is one scored lore snippet produced per-query by the
// retriever. Ephemeral, never persisted.
type RetrievedChunk struct {
	Title       string  `bson:"original_title" json:"title"`
	Description string  `bson:"original_description" json:"description"`
	Score       float64 `bson:"score" json:"score"`
}

// AnswerResult is the post-processed reply from the generative model
type AnswerResult struct {
	Text           string `json:"text"`
	ParagraphCount int    `json:"paragraph_count"`
}

// SearchRequest is the request body for semantic search and AI search
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// AISearchResponse is the success response of the answer pipeline
type AISearchResponse struct {
	Answer string `json:"answer"`
}
