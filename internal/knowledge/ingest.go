package knowledge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/brandguard/internal/embedding"
	"github.com/ppiankov/brandguard/internal/extract"
	"github.com/ppiankov/brandguard/internal/model"
	"go.uber.org/zap"
)

// Sink receives the embedded chunks of one source.
// Put replaces whatever the sink held for source.
type Sink interface {
	Put(ctx context.Context, source string, chunks []model.Chunk) error
}

// IngestSummary counts what an ingest pass did
type IngestSummary struct {
	Files   int                    `json:"files"`
	Skipped []string               `json:"skipped,omitempty"`
	Chunks  map[model.Category]int `json:"chunks"`
}

func newSummary() *IngestSummary {
	return &IngestSummary{Chunks: make(map[model.Category]int)}
}

// Total returns the number of chunks ingested across categories
func (s *IngestSummary) Total() int {
	n := 0
	for _, c := range s.Chunks {
		n += c
	}
	return n
}

// SupportedExtension reports whether files with ext can be ingested
func SupportedExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".md", ".txt", ".html", ".htm", ".pdf":
		return true
	}
	return false
}

// InferCategory guesses the category of a corpus file from its path
func InferCategory(path string) (model.Category, bool) {
	p := strings.ToLower(filepath.ToSlash(path))
	switch {
	case strings.Contains(p, "brand"), strings.Contains(p, "voice"), strings.Contains(p, "style"):
		return model.CategoryBrand, true
	case strings.Contains(p, "product"), strings.Contains(p, "feature"), strings.Contains(p, "docs"):
		return model.CategoryProduct, true
	}
	return "", false
}

// ExtractText converts file content into plain text according to ext
func ExtractText(ext string, data []byte) (string, error) {
	switch strings.ToLower(ext) {
	case ".md", ".txt":
		return string(data), nil
	case ".html", ".htm":
		return extract.VisibleText(string(data))
	case ".pdf":
		return extract.PDFText(data)
	}
	return "", fmt.Errorf("unsupported file type %q", ext)
}

// Ingester chunks, embeds and stores corpus documents
type Ingester struct {
	embedder embedding.Embedder
	chunker  *Chunker
	sinks    []Sink
	fetcher  *Fetcher
	logger   *zap.Logger
}

// IngesterOption configures an Ingester
type IngesterOption func(*Ingester)

// WithFetcher enables URL ingestion
func WithFetcher(f *Fetcher) IngesterOption {
	return func(i *Ingester) { i.fetcher = f }
}

// WithIngestLogger sets the ingester logger
func WithIngestLogger(logger *zap.Logger) IngesterOption {
	return func(i *Ingester) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// NewIngester creates an ingester writing to sinks in order
func NewIngester(embedder embedding.Embedder, chunker *Chunker, sinks []Sink, opts ...IngesterOption) *Ingester {
	if chunker == nil {
		chunker = NewChunker(0, 0)
	}
	i := &Ingester{
		embedder: embedder,
		chunker:  chunker,
		sinks:    sinks,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// IngestDir ingests every supported file under dir whose category can be inferred.
// Files are processed in lexical order.
func (in *Ingester) IngestDir(ctx context.Context, dir string) (*IngestSummary, error) {
	summary := newSummary()

	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if SupportedExtension(filepath.Ext(path)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk corpus %s: %w", dir, err)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			rel = path
		}
		category, ok := InferCategory(rel)
		if !ok {
			in.logger.Debug("skipping uncategorised file", zap.String("path", path))
			summary.Skipped = append(summary.Skipped, path)
			continue
		}

		n, err := in.IngestFile(ctx, path, category)
		if err != nil {
			return summary, err
		}
		summary.Files++
		summary.Chunks[category] += n
	}

	in.logger.Info("corpus ingested",
		zap.String("dir", dir),
		zap.Int("files", summary.Files),
		zap.Int("chunks", summary.Total()))

	return summary, nil
}

// IngestFile ingests one file into category and returns the number of chunks
func (in *Ingester) IngestFile(ctx context.Context, path string, category model.Category) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	text, err := ExtractText(filepath.Ext(path), data)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", path, err)
	}
	return in.IngestText(ctx, filepath.ToSlash(path), text, category)
}

// IngestURL fetches rawURL and ingests it into category
func (in *Ingester) IngestURL(ctx context.Context, rawURL string, category model.Category) (int, error) {
	if in.fetcher == nil {
		return 0, fmt.Errorf("URL ingestion is not configured")
	}
	res, err := in.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return 0, err
	}
	text, err := ExtractText(res.Extension(), res.Body)
	if err != nil {
		return 0, fmt.Errorf("extract %s: %w", rawURL, err)
	}
	return in.IngestText(ctx, rawURL, text, category)
}

// IngestText chunks, embeds and stores text under source
func (in *Ingester) IngestText(ctx context.Context, source, text string, category model.Category) (int, error) {
	if _, err := model.ParseCategory(string(category)); err != nil {
		return 0, err
	}

	pieces := in.chunker.Split(source, text)
	chunks := make([]model.Chunk, 0, len(pieces))
	for _, p := range pieces {
		vec, err := in.embedder.Embed(ctx, p.Text)
		if err != nil {
			// chunks with no embeddable words (pure punctuation or markup) are dropped
			if isEmptyInput(err) {
				continue
			}
			return 0, fmt.Errorf("embed %s: %w", p.ID, err)
		}
		chunks = append(chunks, model.Chunk{
			ID:        p.ID,
			Text:      p.Text,
			Source:    source,
			Category:  category,
			Embedding: vec,
		})
	}

	for _, sink := range in.sinks {
		if err := sink.Put(ctx, source, chunks); err != nil {
			return 0, fmt.Errorf("store %s: %w", source, err)
		}
	}

	in.logger.Debug("ingested",
		zap.String("source", source),
		zap.String("category", string(category)),
		zap.Int("chunks", len(chunks)))

	return len(chunks), nil
}

// Remove drops every chunk of the file at path from all sinks
func (in *Ingester) Remove(ctx context.Context, path string) error {
	source := filepath.ToSlash(path)
	for _, sink := range in.sinks {
		if err := sink.Put(ctx, source, nil); err != nil {
			return fmt.Errorf("remove %s: %w", source, err)
		}
	}
	in.logger.Debug("source removed", zap.String("source", source))
	return nil
}

func isEmptyInput(err error) bool {
	return errors.Is(err, model.ErrEmptyInput)
}
