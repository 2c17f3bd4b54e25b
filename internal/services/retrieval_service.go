package services

import (
	"context"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"tungra/internal/database"
	"tungra/internal/models"
)

// lexicalBoost is added to a chunk's similarity score when its title or
// description contains the query text verbatim (case-insensitive). The
// boost re-ranks near-ties in favour of exact keyword hits without letting
// lexical matches drown out vector similarity.
const lexicalBoost = 0.5

// RetrievalService runs hybrid retrieval against the lore collection:
// an Atlas vector search over the stored embeddings, re-ranked in process
// by a lexical match boost. Scores are similarity-descending.
type RetrievalService struct {
	collection    *mongo.Collection
	searchIndex   string
	numCandidates int
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(db *database.MongoDB, searchIndex string, numCandidates int) *RetrievalService {
	return &RetrievalService{
		collection:    db.Collection(database.CollectionLore),
		searchIndex:   searchIndex,
		numCandidates: numCandidates,
	}
}

// Retrieve returns the top-k lore chunks for the query, ranked by boosted
// similarity score descending. An empty store or zero matches yields an
// empty slice, not an error.
func (s *RetrievalService) Retrieve(ctx context.Context, query string, queryEmbedding []float64, k int) ([]models.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: s.searchIndex},
			{Key: "path", Value: "plot_embedding_hf"},
			{Key: "queryVector", Value: queryEmbedding},
			{Key: "numCandidates", Value: s.numCandidates},
			{Key: "limit", Value: k},
		}}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "original_title", Value: 1},
			{Key: "original_description", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cursor, err := s.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, &RetrievalError{Message: "lore search failed", Cause: err}
	}
	defer cursor.Close(ctx)

	var chunks []models.RetrievedChunk
	if err := cursor.All(ctx, &chunks); err != nil {
		return nil, &RetrievalError{Message: "failed to decode search results", Cause: err}
	}

	return RankChunks(chunks, query), nil
}

// RankChunks applies the lexical match boost and re-sorts by score
// descending. The sort is stable so equally scored chunks keep their
// store-returned order.
func RankChunks(chunks []models.RetrievedChunk, query string) []models.RetrievedChunk {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle != "" {
		for i := range chunks {
			if strings.Contains(strings.ToLower(chunks[i].Title), needle) ||
				strings.Contains(strings.ToLower(chunks[i].Description), needle) {
				chunks[i].Score += lexicalBoost
			}
		}
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})

	return chunks
}
