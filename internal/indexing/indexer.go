package indexing

import (
	"context"
	"fmt"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"

	"lecture-rag/internal/chromemdb"
	"lecture-rag/internal/embedding"
)

// Indexer splits a transcript into overlapping chunks, embeds each chunk,
// and persists them into a named collection. Re-running against the same
// collection appends; the ledger uniqueness check is what keeps indexing
// at most-once per collection.
type Indexer struct {
	embedder     *embeddings.EmbedderImpl
	chunkSize    int
	chunkOverlap int
}

func NewIndexer(embedder *embeddings.EmbedderImpl, chunkSize, chunkOverlap int) *Indexer {
	return &Indexer{
		embedder:     embedder,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Index writes the chunked transcript into collectionName persisted at
// storagePath.
func (ix *Indexer) Index(ctx context.Context, transcript, storagePath, collectionName string) error {
	chunks := SplitText(transcript, ix.chunkSize, ix.chunkOverlap)
	if len(chunks) == 0 {
		return fmt.Errorf("indexing: empty transcript")
	}

	vectors, err := embedding.EmbedTexts(ctx, ix.embedder, chunks)
	if err != nil {
		return fmt.Errorf("indexing: embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("indexing: got %d embeddings for %d chunks", len(vectors), len(chunks))
	}

	store, err := chromemdb.NewStore(storagePath)
	if err != nil {
		return err
	}
	if err := store.GetOrCreateCollection(collectionName); err != nil {
		return err
	}

	docs := make([]chromem.Document, len(chunks))
	for i, chunk := range chunks {
		docs[i] = chromem.Document{
			ID:        fmt.Sprintf("%s-%d", collectionName, i),
			Content:   chunk,
			Embedding: vectors[i],
		}
	}
	log.Debug().Int("chunks", len(docs)).Str("collection", collectionName).Msg("indexing transcript")
	return store.AddDocuments(ctx, docs)
}
