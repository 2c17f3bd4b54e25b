package jobs

import (
	"context"
	"log"
	"time"

	"tungra/internal/services"
)

// backfillBatchSize caps how many entries a single run embeds, so one run
// can't monopolize the embedding service's rate budget.
const backfillBatchSize = 50

// EmbeddingBackfillJob embeds lore entries whose async embed after create
// or edit never landed. Entries without an embedding are invisible to
// vector search, so the sweep keeps the archive fully searchable.
type EmbeddingBackfillJob struct {
	loreService *services.LoreService
	interval    time.Duration
}

// NewEmbeddingBackfillJob creates a new embedding backfill job
func NewEmbeddingBackfillJob(loreService *services.LoreService, interval time.Duration) *EmbeddingBackfillJob {
	return &EmbeddingBackfillJob{
		loreService: loreService,
		interval:    interval,
	}
}

// GetNextRunTime returns when the job should next run
func (j *EmbeddingBackfillJob) GetNextRunTime() time.Time {
	return time.Now().Add(j.interval)
}

// Run embeds up to backfillBatchSize entries that are missing embeddings
func (j *EmbeddingBackfillJob) Run(ctx context.Context) error {
	entries, err := j.loreService.ListEntriesWithoutEmbedding(ctx, backfillBatchSize)
	if err != nil {
		log.Printf("[BACKFILL] Failed to list entries without embeddings: %v", err)
		return err
	}

	if len(entries) == 0 {
		return nil
	}

	log.Printf("[BACKFILL] Found %d lore entries without embeddings", len(entries))

	embedded := 0
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}
		if err := j.loreService.BackfillEmbedding(ctx, entry); err != nil {
			log.Printf("[BACKFILL] %v", err)
			continue
		}
		embedded++
	}

	log.Printf("[BACKFILL] Embedded %d/%d entries", embedded, len(entries))
	return nil
}
