package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wzgate/estatechat/internal/docsource"
	"github.com/wzgate/estatechat/internal/ingest"
	"github.com/wzgate/estatechat/internal/pkg/errs"
	"github.com/wzgate/estatechat/internal/vecindex"
)

// RebuildState is the lifecycle of the most recent rebuild job.
type RebuildState string

const (
	RebuildIdle    RebuildState = "idle"
	RebuildRunning RebuildState = "running"
	RebuildDone    RebuildState = "done"
	RebuildFailed  RebuildState = "failed"
)

// RebuildStatus is a snapshot of the background rebuild job.
type RebuildStatus struct {
	State      RebuildState `json:"state"`
	StartedAt  int64        `json:"started_at,omitempty"`
	FinishedAt int64        `json:"finished_at,omitempty"`
	Error      string       `json:"error,omitempty"`
	Documents  int          `json:"documents"`
	Chunks     int          `json:"chunks"`
}

// IndexService owns the vector index lifecycle: startup bootstrap, single
// document updates, and full rebuilds from an external document source.
// Rebuilds run in the background; at most one may be in flight.
type IndexService struct {
	index   *vecindex.Store
	chunker *ingest.Chunker
	workers int

	mu       sync.Mutex
	status   RebuildStatus
	cancel   context.CancelFunc
	rebuilds sync.WaitGroup
}

func NewIndexService(index *vecindex.Store, chunker *ingest.Chunker, workers int) *IndexService {
	return &IndexService{
		index:   index,
		chunker: chunker,
		workers: workers,
		status:  RebuildStatus{State: RebuildIdle},
	}
}

// Bootstrap loads the persisted index, or builds one from the default
// document directory when none exists yet. An empty directory is reported
// and leaves the service running without an index.
func (s *IndexService) Bootstrap(ctx context.Context, dir string) error {
	loaded, err := s.index.Load(ctx)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	if loaded {
		return nil
	}
	logutil.GetLogger(ctx).Info("no index found, ingesting source directory", zap.String("dir", dir))
	docs, skipped, err := ingest.LoadDirectory(dir)
	if err != nil {
		return fmt.Errorf("read source dir: %w", err)
	}
	if skipped > 0 {
		logutil.GetLogger(ctx).Warn("skipped unsupported documents", zap.Int("count", skipped))
	}
	chunks := ingest.ChunkDocuments(ctx, s.chunker, docs, s.workers)
	if len(chunks) == 0 {
		logutil.GetLogger(ctx).Warn("source directory produced no chunks, starting without an index")
		return nil
	}
	if err := s.index.Create(ctx, chunks); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// Info reports the distinct source files of the live index and its total
// chunk count.
func (s *IndexService) Info() (int, []string, int) {
	files, sources := s.index.Describe()
	return files, sources, s.index.Len()
}

// UpdateWithDocument chunks one uploaded document and appends it to the
// live index.
func (s *IndexService) UpdateWithDocument(ctx context.Context, filename string, raw []byte) (int, error) {
	doc, err := ingest.FromBytes(filename, raw)
	if err != nil {
		return 0, err
	}
	chunks, err := s.chunker.ChunkDocument(ctx, doc.Filename, doc.Text)
	if err != nil {
		return 0, fmt.Errorf("chunk %s: %w", filename, err)
	}
	if err := s.index.Add(ctx, chunks); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

// StartRebuild kicks off a background rebuild from the given source and
// returns immediately. Only one rebuild may run at a time.
func (s *IndexService) StartRebuild(src docsource.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.State == RebuildRunning {
		return errs.ErrRebuildRunning
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.status = RebuildStatus{State: RebuildRunning, StartedAt: time.Now().UnixMilli()}
	s.rebuilds.Add(1)
	go func() {
		defer s.rebuilds.Done()
		defer cancel()
		docs, chunks, err := s.runRebuild(ctx, src)
		s.finishRebuild(docs, chunks, err)
	}()
	return nil
}

// Rebuild runs a full rebuild synchronously. Used by the offline CLI path;
// the HTTP surface goes through StartRebuild.
func (s *IndexService) Rebuild(ctx context.Context, src docsource.Source) error {
	_, _, err := s.runRebuild(ctx, src)
	return err
}

// Status returns a snapshot of the current or most recent rebuild.
func (s *IndexService) Status() RebuildStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Close cancels any in-flight rebuild and waits for it to wind down.
func (s *IndexService) Close() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	s.rebuilds.Wait()
}

func (s *IndexService) runRebuild(ctx context.Context, src docsource.Source) (int, int, error) {
	files, err := src.Fetch(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch documents from %s: %w", src.Name(), err)
	}
	var docs []ingest.Document
	for _, f := range files {
		doc, err := ingest.FromBytes(f.Name, f.Data)
		if err != nil {
			logutil.GetLogger(ctx).Warn("skipping document", zap.String("file", f.Name), zap.Error(err))
			continue
		}
		docs = append(docs, doc)
	}
	chunks := ingest.ChunkDocuments(ctx, s.chunker, docs, s.workers)
	if err := s.index.Rebuild(ctx, chunks); err != nil {
		return len(docs), len(chunks), err
	}
	logutil.GetLogger(ctx).Info("index rebuilt",
		zap.String("source", src.Name()), zap.Int("documents", len(docs)), zap.Int("chunks", len(chunks)))
	return len(docs), len(chunks), nil
}

func (s *IndexService) finishRebuild(docs, chunks int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.FinishedAt = time.Now().UnixMilli()
	s.status.Documents = docs
	s.status.Chunks = chunks
	if err != nil {
		s.status.State = RebuildFailed
		s.status.Error = err.Error()
		return
	}
	s.status.State = RebuildDone
}
