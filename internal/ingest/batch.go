package ingest

import (
	"context"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wzgate/estatechat/internal/model"
)

// ChunkDocuments fans chunking out across documents with a bounded worker
// pool and joins the results. A document that fails to chunk is skipped and
// reported, not fatal; document order in the result is not significant.
func ChunkDocuments(ctx context.Context, chunker *Chunker, docs []Document, workers int) []model.DocumentChunk {
	if workers <= 0 {
		workers = 4
	}
	var mu sync.Mutex
	var all []model.DocumentChunk

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for _, doc := range docs {
		group.Go(func() error {
			chunks, err := chunker.ChunkDocument(ctx, doc.Filename, doc.Text)
			if err != nil {
				logutil.GetLogger(ctx).Warn("skipping document", zap.String("file", doc.Filename), zap.Error(err))
				return nil
			}
			mu.Lock()
			all = append(all, chunks...)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait is for the join only.
	_ = group.Wait()
	return all
}
