package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/wzgate/estatechat/internal/pkg/errs"
)

// Document is one raw knowledge-base document before chunking.
type Document struct {
	Filename string
	Text     string
}

// FromBytes converts an uploaded or fetched file into plain text. Markdown is
// flattened through the parser so formatting noise never reaches the index.
func FromBytes(filename string, data []byte) (Document, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return Document{Filename: filename, Text: markdownToText(data)}, nil
	case ".txt", ".text":
		return Document{Filename: filename, Text: string(data)}, nil
	default:
		return Document{}, fmt.Errorf("%w: %s", errs.ErrUnsupportedDoc, filename)
	}
}

// LoadDirectory reads every supported file in dir. Unreadable or unsupported
// files are skipped and counted, never aborting the batch.
func LoadDirectory(dir string) ([]Document, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("read document dir: %w", err)
	}
	var docs []Document
	skipped := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			skipped++
			continue
		}
		doc, err := FromBytes(entry.Name(), data)
		if err != nil {
			skipped++
			continue
		}
		docs = append(docs, doc)
	}
	return docs, skipped, nil
}

func markdownToText(data []byte) string {
	md := goldmark.New()
	reader := text.NewReader(data)
	doc := md.Parser().Parse(reader)

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if txt := extractText(node, reader.Source()); txt != "" {
			blocks = append(blocks, txt)
		}
	}
	return strings.Join(blocks, "\n\n")
}

func extractText(n ast.Node, source []byte) string {
	var sb strings.Builder
	ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			sb.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
