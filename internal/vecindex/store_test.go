package vecindex

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wzgate/estatechat/internal/model"
	"github.com/wzgate/estatechat/internal/pkg/errs"
)

type fakeChunkStore struct {
	chunks     []model.DocumentChunk
	insertErr  error
	deleteErr  error
	deletedAll bool
}

func (f *fakeChunkStore) InsertBatch(ctx context.Context, chunks []model.DocumentChunk) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func (f *fakeChunkStore) DeleteAll(ctx context.Context) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deletedAll = true
	f.chunks = nil
	return nil
}

func (f *fakeChunkStore) ListAll(ctx context.Context) ([]model.DocumentChunk, error) {
	return f.chunks, nil
}

type fakeEmbedder struct {
	vecs map[string][]float32
	err  error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string, taskType string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	if vec, ok := f.vecs[text]; ok {
		return vec, nil
	}
	return []float32{1, 0}, nil
}

func (f *fakeEmbedder) ModelName() string { return "fake-embed" }

func TestSearchBeforeLoadReturnsEmpty(t *testing.T) {
	s := New(&fakeChunkStore{}, &fakeEmbedder{})
	results, err := s.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestLoadAbsentIndexIsNotAnError(t *testing.T) {
	s := New(&fakeChunkStore{}, &fakeEmbedder{})
	ok, err := s.Load(context.Background())
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, s.Loaded())
}

func TestLoadRestoresPersistedChunks(t *testing.T) {
	store := &fakeChunkStore{chunks: []model.DocumentChunk{
		{Text: "a", SourceFilename: "a.txt", Embedding: []float32{1, 0}},
	}}
	s := New(store, &fakeEmbedder{})
	ok, err := s.Load(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 1, s.Len())
}

func TestCreateRejectsEmptyChunkSet(t *testing.T) {
	s := New(&fakeChunkStore{}, &fakeEmbedder{})
	err := s.Create(context.Background(), nil)
	require.ErrorIs(t, err, errs.ErrIndexEmpty)
}

func TestAddRequiresLoadedIndex(t *testing.T) {
	s := New(&fakeChunkStore{}, &fakeEmbedder{})
	err := s.Add(context.Background(), []model.DocumentChunk{{Text: "x", SourceFilename: "x.txt"}})
	require.ErrorIs(t, err, errs.ErrIndexNotLoaded)
}

func TestRebuildEmptyLeavesOldIndexIntact(t *testing.T) {
	store := &fakeChunkStore{}
	s := New(store, &fakeEmbedder{})
	require.NoError(t, s.Create(context.Background(), []model.DocumentChunk{
		{Text: "keep", SourceFilename: "keep.txt", Embedding: []float32{1, 0}},
	}))
	store.deletedAll = false

	err := s.Rebuild(context.Background(), nil)
	require.ErrorIs(t, err, errs.ErrIndexEmpty)
	require.False(t, store.deletedAll)
	require.True(t, s.Loaded())
	require.Equal(t, 1, s.Len())
}

func TestRebuildEmbedFailureLeavesOldIndexIntact(t *testing.T) {
	store := &fakeChunkStore{}
	embedder := &fakeEmbedder{}
	s := New(store, embedder)
	require.NoError(t, s.Create(context.Background(), []model.DocumentChunk{
		{Text: "keep", SourceFilename: "keep.txt", Embedding: []float32{1, 0}},
	}))
	store.deletedAll = false
	embedder.err = fmt.Errorf("embed backend down")

	err := s.Rebuild(context.Background(), []model.DocumentChunk{{Text: "new", SourceFilename: "new.txt"}})
	require.Error(t, err)
	require.False(t, store.deletedAll)
	require.True(t, s.Loaded())
	require.Equal(t, 1, s.Len())
}

func TestSearchRanksByCosineSimilarity(t *testing.T) {
	embedder := &fakeEmbedder{vecs: map[string][]float32{
		"query": {1, 0},
	}}
	store := &fakeChunkStore{}
	s := New(store, embedder)
	require.NoError(t, s.Create(context.Background(), []model.DocumentChunk{
		{Text: "far", SourceFilename: "a.txt", Embedding: []float32{0, 1}},
		{Text: "near", SourceFilename: "b.txt", Embedding: []float32{1, 0.1}},
		{Text: "mid", SourceFilename: "c.txt", Embedding: []float32{1, 1}},
	}))

	results, err := s.Search(context.Background(), "query", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Equal(t, "near", results[0].Chunk.Text)
	require.Equal(t, "mid", results[1].Chunk.Text)
}

func TestDescribeDedupsSources(t *testing.T) {
	s := New(&fakeChunkStore{}, &fakeEmbedder{})
	require.NoError(t, s.Create(context.Background(), []model.DocumentChunk{
		{Text: "a1", SourceFilename: "a.txt", Embedding: []float32{1, 0}},
		{Text: "a2", SourceFilename: "a.txt", Embedding: []float32{1, 0}},
		{Text: "b1", SourceFilename: "b.txt", Embedding: []float32{0, 1}},
	}))
	files, sources := s.Describe()
	require.Equal(t, 2, files)
	require.Equal(t, []string{"a.txt", "b.txt"}, sources)
	require.Equal(t, 3, s.Len())
}
