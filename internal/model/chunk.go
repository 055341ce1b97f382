package model

// DocumentChunk is one retrieval unit of the knowledge base. Text already
// carries the provenance prefix naming its source document; the answer stage
// relies on that prefix to keep context from different sources apart.
// Chunks are immutable once inserted into the index.
type DocumentChunk struct {
	Text           string
	SourceFilename string
	Embedding      []float32
}
