package vecindex

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wzgate/estatechat/internal/ai"
	"github.com/wzgate/estatechat/internal/model"
	"github.com/wzgate/estatechat/internal/pkg/errs"
	"github.com/wzgate/estatechat/internal/pkg/vmath"
)

// ChunkStore is the durable home of the chunk set. The in-memory index is a
// cache over it; a process restart recovers by calling Load.
type ChunkStore interface {
	InsertBatch(ctx context.Context, chunks []model.DocumentChunk) error
	DeleteAll(ctx context.Context) error
	ListAll(ctx context.Context) ([]model.DocumentChunk, error)
}

// Store holds the live chunk set and answers similarity queries over it.
// All mutations go through the store first so the durable copy never lags
// behind what queries can see.
type Store struct {
	mu       sync.RWMutex
	chunks   []model.DocumentChunk
	loaded   bool
	store    ChunkStore
	embedder ai.IEmbedder
}

func New(store ChunkStore, embedder ai.IEmbedder) *Store {
	return &Store{store: store, embedder: embedder}
}

// Load pulls the persisted chunk set into memory. An empty store means no
// index has been created yet; that is reported as (false, nil), not an error.
func (s *Store) Load(ctx context.Context) (bool, error) {
	chunks, err := s.store.ListAll(ctx)
	if err != nil {
		return false, fmt.Errorf("list chunks: %w", err)
	}
	if len(chunks) == 0 {
		return false, nil
	}
	s.mu.Lock()
	s.chunks = chunks
	s.loaded = true
	s.mu.Unlock()
	logutil.GetLogger(ctx).Info("vector index loaded", zap.Int("chunks", len(chunks)))
	return true, nil
}

// Create builds a fresh index from the given chunks and replaces whatever was
// live before. It refuses an empty chunk set.
func (s *Store) Create(ctx context.Context, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return errs.ErrIndexEmpty
	}
	if err := s.embedMissing(ctx, chunks); err != nil {
		return err
	}
	if err := s.store.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear chunk store: %w", err)
	}
	if err := s.store.InsertBatch(ctx, chunks); err != nil {
		// The durable copy is now torn; drop the live index so queries do
		// not answer from state the store no longer holds.
		s.mu.Lock()
		s.chunks = nil
		s.loaded = false
		s.mu.Unlock()
		return fmt.Errorf("persist chunks: %w", err)
	}
	s.mu.Lock()
	s.chunks = chunks
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Add appends chunks to an already loaded index.
func (s *Store) Add(ctx context.Context, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		return errs.ErrIndexNotLoaded
	}
	if err := s.embedMissing(ctx, chunks); err != nil {
		return err
	}
	if err := s.store.InsertBatch(ctx, chunks); err != nil {
		return fmt.Errorf("persist chunks: %w", err)
	}
	s.mu.Lock()
	s.chunks = append(s.chunks, chunks...)
	s.mu.Unlock()
	return nil
}

// Rebuild replaces the whole index with a new chunk set. Validation and
// embedding happen before the old data is touched, so a rebuild that cannot
// produce a usable index leaves the previous one intact.
func (s *Store) Rebuild(ctx context.Context, chunks []model.DocumentChunk) error {
	if len(chunks) == 0 {
		return errs.ErrIndexEmpty
	}
	if err := s.embedMissing(ctx, chunks); err != nil {
		return err
	}
	return s.Create(ctx, chunks)
}

// SearchResult pairs a matched chunk with its cosine similarity score.
type SearchResult struct {
	Chunk model.DocumentChunk
	Score float32
}

// Search embeds the query and returns the top k chunks by cosine similarity.
// An unloaded index yields no results rather than an error; callers decide
// what an empty context means for them.
func (s *Store) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if !loaded {
		return nil, nil
	}
	qvec, err := s.embedder.Embed(ctx, query, ai.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	s.mu.RLock()
	results := make([]SearchResult, 0, len(s.chunks))
	for _, chunk := range s.chunks {
		results = append(results, SearchResult{
			Chunk: chunk,
			Score: vmath.Cosine(qvec, chunk.Embedding),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k > 0 && len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Describe reports the distinct source files behind the index: their count
// and their names, sorted.
func (s *Store) Describe() (int, []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, chunk := range s.chunks {
		seen[chunk.SourceFilename] = struct{}{}
	}
	sources := make([]string, 0, len(seen))
	for name := range seen {
		sources = append(sources, name)
	}
	sort.Strings(sources)
	return len(sources), sources
}

// Len reports the number of chunks currently held in memory.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

func (s *Store) embedMissing(ctx context.Context, chunks []model.DocumentChunk) error {
	for i := range chunks {
		if len(chunks[i].Embedding) > 0 {
			continue
		}
		vec, err := s.embedder.Embed(ctx, chunks[i].Text, ai.TaskRetrievalDocument)
		if err != nil {
			return fmt.Errorf("embed chunk of %s: %w", chunks[i].SourceFilename, err)
		}
		chunks[i].Embedding = vec
	}
	return nil
}
