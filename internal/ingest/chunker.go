package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/wzgate/estatechat/internal/ai"
	"github.com/wzgate/estatechat/internal/model"
	"github.com/wzgate/estatechat/internal/pkg/vmath"
)

var (
	controlRegex    = regexp.MustCompile(`[\x00-\x1F\x7F-\x9F]`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Chunker splits documents at semantic breakpoints rather than fixed sizes:
// consecutive sentences are embedded, and boundaries are placed where the
// embedding distance between neighbors jumps.
type Chunker struct {
	embedder    ai.IEmbedder
	targetWords int
	minSize     int
	threshold   float64
}

func NewChunker(embedder ai.IEmbedder, targetWords, minSize int, threshold float64) *Chunker {
	if targetWords <= 0 {
		targetWords = 80
	}
	if minSize <= 0 {
		minSize = 300
	}
	if threshold <= 0 {
		threshold = 0.5
	}
	return &Chunker{
		embedder:    embedder,
		targetWords: targetWords,
		minSize:     minSize,
		threshold:   threshold,
	}
}

// ChunkDocument cleans the text, splits it semantically and prefixes every
// chunk with a provenance sentence naming the source. The prefix is what lets
// the answer stage keep context from different sources apart, so it is part
// of the chunk text itself, not metadata.
func (c *Chunker) ChunkDocument(ctx context.Context, filename, rawText string) ([]model.DocumentChunk, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("file", filename))
	source := sourceName(filename)
	cleaned := CleanText(rawText)
	if cleaned == "" {
		return nil, nil
	}

	wordCount := len(strings.Fields(cleaned))
	targetChunks := wordCount / c.targetWords
	if targetChunks < 1 {
		targetChunks = 1
	}
	logger.Debug("chunking document", zap.Int("words", wordCount), zap.Int("target_chunks", targetChunks))

	parts, err := c.split(ctx, cleaned, targetChunks)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", filename, err)
	}

	chunks := make([]model.DocumentChunk, 0, len(parts))
	for _, part := range parts {
		chunks = append(chunks, model.DocumentChunk{
			Text:           ProvenancePrefix(source) + part,
			SourceFilename: source,
		})
	}
	logger.Info("document chunked", zap.Int("chunks", len(chunks)))
	return chunks, nil
}

// ProvenancePrefix is the source-identifying sentence baked into chunk text.
func ProvenancePrefix(source string) string {
	return fmt.Sprintf("this data is from %s source and the content is ", source)
}

// CleanText strips control characters and collapses whitespace.
func CleanText(text string) string {
	text = controlRegex.ReplaceAllString(text, " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func (c *Chunker) split(ctx context.Context, cleaned string, targetChunks int) ([]string, error) {
	sentences := splitSentences(cleaned)
	if targetChunks <= 1 || len(sentences) <= 1 {
		return []string{cleaned}, nil
	}

	embeddings := make([][]float32, len(sentences))
	for i, sentence := range sentences {
		emb, err := c.embedder.Embed(ctx, sentence, ai.TaskSemanticSimilarity)
		if err != nil {
			return nil, fmt.Errorf("embed sentence %d: %w", i, err)
		}
		embeddings[i] = emb
	}

	// Distance between each pair of neighbors; a boundary candidate sits
	// after sentence i when distances[i] is large.
	distances := make([]float64, len(sentences)-1)
	var maxDistance float64
	for i := 0; i < len(sentences)-1; i++ {
		distances[i] = 1 - float64(vmath.Cosine(embeddings[i], embeddings[i+1]))
		if distances[i] > maxDistance {
			maxDistance = distances[i]
		}
	}

	breakpoints := pickBreakpoints(distances, targetChunks-1, c.threshold*maxDistance)
	parts := assemble(sentences, breakpoints)
	return c.mergeSmall(parts), nil
}

// pickBreakpoints returns the positions of the up-to-n largest distances that
// clear the floor, in ascending position order.
func pickBreakpoints(distances []float64, n int, floor float64) []int {
	type candidate struct {
		pos  int
		dist float64
	}
	candidates := make([]candidate, 0, len(distances))
	for i, d := range distances {
		if d >= floor && d > 0 {
			candidates = append(candidates, candidate{pos: i, dist: d})
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].dist > candidates[j].dist
	})
	if n > len(candidates) {
		n = len(candidates)
	}
	picked := make([]int, 0, n)
	for i := 0; i < n; i++ {
		picked = append(picked, candidates[i].pos)
	}
	sort.Ints(picked)
	return picked
}

func assemble(sentences []string, breakpoints []int) []string {
	var parts []string
	start := 0
	for _, bp := range breakpoints {
		parts = append(parts, strings.Join(sentences[start:bp+1], " "))
		start = bp + 1
	}
	parts = append(parts, strings.Join(sentences[start:], " "))
	return parts
}

// mergeSmall folds chunks below the minimum size into their predecessor so a
// stray heading or one-liner never becomes its own retrieval unit.
func (c *Chunker) mergeSmall(parts []string) []string {
	if len(parts) <= 1 {
		return parts
	}
	merged := make([]string, 0, len(parts))
	for _, part := range parts {
		if len(merged) > 0 && len(part) < c.minSize {
			merged[len(merged)-1] = merged[len(merged)-1] + " " + part
			continue
		}
		merged = append(merged, part)
	}
	if len(merged) > 1 && len(merged[0]) < c.minSize {
		merged[1] = merged[0] + " " + merged[1]
		merged = merged[1:]
	}
	return merged
}

func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if isSentenceEnd(runes[i]) && (i == len(runes)-1 || unicode.IsSpace(runes[i+1])) {
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	switch r {
	case '.', '!', '?', '؟', '…':
		return true
	}
	return false
}

func sourceName(filename string) string {
	base := filepath.Base(filename)
	if idx := strings.Index(base, "."); idx > 0 {
		base = base[:idx]
	}
	return base
}
