package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tungra/internal/database"
	"tungra/internal/models"
)

// LoreService handles lore entry CRUD against MongoDB. Embeddings are
// attached asynchronously after create and regenerated after edits, so an
// entry can transiently exist without one; the backfill job sweeps up any
// entry whose async embed failed.
type LoreService struct {
	collection *mongo.Collection
	embedder   Embedder
}

// NewLoreService creates a new lore service
func NewLoreService(db *database.MongoDB, embedder Embedder) *LoreService {
	return &LoreService{
		collection: db.Collection(database.CollectionLore),
		embedder:   embedder,
	}
}

// ListEntries returns all lore entries, newest first
func (s *LoreService) ListEntries(ctx context.Context) ([]*models.LoreEntry, error) {
	opts := options.Find().SetSort(bson.M{"timestamp": -1})

	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list lore entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.LoreEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode lore entries: %w", err)
	}

	return entries, nil
}

// GetEntry retrieves a single lore entry by ID
func (s *LoreService) GetEntry(ctx context.Context, id primitive.ObjectID) (*models.LoreEntry, error) {
	var entry models.LoreEntry
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("lore entry not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lore entry: %w", err)
	}
	return &entry, nil
}

// CreateEntry inserts a new lore entry and kicks off the async embed.
// The entry is readable immediately; it becomes searchable once the
// embedding lands.
func (s *LoreService) CreateEntry(ctx context.Context, req *models.CreateLoreRequest) (*models.LoreEntry, error) {
	entry := &models.LoreEntry{
		ID:                  primitive.NewObjectID(),
		OriginalTitle:       req.Title,
		OriginalDescription: req.Description,
		Writer:              req.Writer,
		Timestamp:           time.Now(),
		Title:               models.StripWhitespace(req.Title),
		Description:         models.StripWhitespace(req.Description),
	}

	if _, err := s.collection.InsertOne(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create lore entry: %w", err)
	}

	go s.embedEntry(entry.ID, entry.EmbeddingText())

	return entry, nil
}

// UpdateEntry updates an entry's titles and descriptions and regenerates
// its embedding so vector search never serves stale text. The old vector
// is dropped in the same update: if the re-embed fails the entry falls out
// of vector search until the backfill job picks it up, rather than being
// ranked by its pre-edit text.
func (s *LoreService) UpdateEntry(ctx context.Context, id primitive.ObjectID, req *models.UpdateLoreRequest) (*models.LoreEntry, error) {
	update := updateEntryDocument(req)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var entry models.LoreEntry
	err := s.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("lore entry not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update lore entry: %w", err)
	}

	go s.embedEntry(entry.ID, entry.EmbeddingText())

	return &entry, nil
}

// updateEntryDocument builds the update for an entry edit. The embedding
// is unset alongside the text change so the backfill filter, which matches
// on the field's absence, also covers entries whose re-embed failed.
func updateEntryDocument(req *models.UpdateLoreRequest) bson.M {
	return bson.M{
		"$set": bson.M{
			"original_title":       req.Title,
			"original_description": req.Description,
			"title":                models.StripWhitespace(req.Title),
			"description":          models.StripWhitespace(req.Description),
		},
		"$unset": bson.M{
			"plot_embedding_hf": "",
		},
	}
}

// DeleteEntry removes a lore entry
func (s *LoreService) DeleteEntry(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete lore entry: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("lore entry not found")
	}
	return nil
}

// embedEntry generates and stores the embedding for one entry. Runs in its
// own goroutine with a fresh context; failures are logged and left for the
// backfill job.
func (s *LoreService) embedEntry(id primitive.ObjectID, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		slog.Error("failed to embed lore entry", "entry_id", id.Hex(), "error", err)
		return
	}

	_, err = s.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"plot_embedding_hf": vector}},
	)
	if err != nil {
		slog.Error("failed to store lore embedding", "entry_id", id.Hex(), "error", err)
		return
	}

	slog.Debug("lore entry embedded", "entry_id", id.Hex(), "dimensions", len(vector))
}

// ListEntriesWithoutEmbedding returns entries still waiting for an
// embedding, capped at limit. Used by the backfill job.
func (s *LoreService) ListEntriesWithoutEmbedding(ctx context.Context, limit int64) ([]*models.LoreEntry, error) {
	filter := bson.M{"plot_embedding_hf": bson.M{"$exists": false}}
	opts := options.Find().SetLimit(limit).SetSort(bson.M{"timestamp": 1})

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find entries without embeddings: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []*models.LoreEntry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}

	return entries, nil
}

// BackfillEmbedding embeds one entry synchronously. Used by the backfill
// job, which controls pacing and cancellation itself.
func (s *LoreService) BackfillEmbedding(ctx context.Context, entry *models.LoreEntry) error {
	vector, err := s.embedder.Embed(ctx, entry.EmbeddingText())
	if err != nil {
		return fmt.Errorf("failed to embed entry %s: %w", entry.ID.Hex(), err)
	}

	_, err = s.collection.UpdateOne(ctx,
		bson.M{"_id": entry.ID},
		bson.M{"$set": bson.M{"plot_embedding_hf": vector}},
	)
	if err != nil {
		return fmt.Errorf("failed to store embedding for entry %s: %w", entry.ID.Hex(), err)
	}

	return nil
}
