package chromemdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
)

const compress = false

// Store wraps a persistent chromem-go database rooted at one storage path.
// Each ingested lecture gets its own store directory; the announcement
// corpus shares a single fixed one.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	path       string
}

// NewStore opens (or creates) the persistent database at path.
func NewStore(path string) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, fmt.Errorf("chromemdb: open %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// GetOrCreateCollection selects the named collection, creating it on first
// use. Documents carry precomputed embeddings, so no embedding function is
// registered with the collection itself.
func (s *Store) GetOrCreateCollection(name string) error {
	c, err := s.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return fmt.Errorf("chromemdb: collection %s: %w", name, err)
	}
	s.collection = c
	return nil
}

// AddDocuments appends documents to the selected collection. Re-adding into
// an existing collection appends rather than replaces; the ledger uniqueness
// check is what keeps indexing at most-once per collection.
func (s *Store) AddDocuments(ctx context.Context, docs []chromem.Document) error {
	if s.collection == nil {
		return fmt.Errorf("chromemdb: no collection selected")
	}
	if len(docs) == 0 {
		return nil
	}
	if err := s.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("chromemdb: add documents: %w", err)
	}
	return nil
}

// Count reports how many documents the selected collection holds.
func (s *Store) Count() int {
	if s.collection == nil {
		return 0
	}
	return s.collection.Count()
}

// Query runs a similarity search with a precomputed query embedding and
// returns up to k results. k is clamped to the collection size because
// chromem rejects oversized result requests.
func (s *Store) Query(ctx context.Context, queryEmbedding []float32, k int) ([]chromem.Result, error) {
	if s.collection == nil {
		return nil, fmt.Errorf("chromemdb: no collection selected")
	}
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}
	if k <= 0 {
		k = 1
	}
	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("chromemdb: query: %w", err)
	}
	return results, nil
}
