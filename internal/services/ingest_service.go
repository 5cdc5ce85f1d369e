package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/turnuplagos/turnup-backend/internal/models"
	"github.com/turnuplagos/turnup-backend/internal/providers/llm"
	pgrepo "github.com/turnuplagos/turnup-backend/internal/repositories/postgres"
	"github.com/turnuplagos/turnup-backend/internal/utils"
)

const (
	// Characters per chunk and overlap between consecutive chunks. Long
	// files get split so retrieval stays precise.
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150
)

// IngestSummary reports what one ingestion run committed.
type IngestSummary struct {
	Files  int `json:"files"`
	Chunks int `json:"chunks"`
}

type IngestService interface {
	// IngestDirectory loads every .txt/.md file under dir into the
	// knowledge base. clear wipes prior chunks first (full rebuild).
	IngestDirectory(ctx context.Context, dir string, clear bool) (IngestSummary, error)

	// IngestText ingests a single named document.
	IngestText(ctx context.Context, name, text string, clear bool) (IngestSummary, error)
}

type ingestService struct {
	provider     llm.Provider
	docs         pgrepo.DocumentRepo
	chunkSize    int
	chunkOverlap int
}

func NewIngestService(provider llm.Provider, docs pgrepo.DocumentRepo) IngestService {
	return &ingestService{
		provider:     provider,
		docs:         docs,
		chunkSize:    DefaultChunkSize,
		chunkOverlap: DefaultChunkOverlap,
	}
}

func (s *ingestService) IngestDirectory(ctx context.Context, dir string, clear bool) (IngestSummary, error) {
	const op = "IngestService.IngestDirectory"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return IngestSummary{}, utils.E(utils.CodeInvalidArgument, op, "failed to read docs directory", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext == ".txt" || ext == ".md" {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	if clear {
		if _, err := s.docs.Clear(ctx); err != nil {
			return IngestSummary{}, utils.E(utils.CodeInternal, op, "failed to clear existing documents", err)
		}
	}

	summary := IngestSummary{}
	for _, name := range files {
		content, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return summary, utils.E(utils.CodeInternal, op, "failed to read "+name, err)
		}
		n, err := s.ingestDocument(ctx, sourceName(name), string(content))
		summary.Chunks += n
		if err != nil {
			// Committed chunks stay; a rerun with clear restores a
			// deterministic state.
			return summary, err
		}
		summary.Files++
	}
	return summary, nil
}

func (s *ingestService) IngestText(ctx context.Context, name, text string, clear bool) (IngestSummary, error) {
	const op = "IngestService.IngestText"

	if clear {
		if _, err := s.docs.Clear(ctx); err != nil {
			return IngestSummary{}, utils.E(utils.CodeInternal, op, "failed to clear existing documents", err)
		}
	}
	n, err := s.ingestDocument(ctx, name, text)
	if err != nil {
		return IngestSummary{Chunks: n}, err
	}
	return IngestSummary{Files: 1, Chunks: n}, nil
}

// ingestDocument chunks, embeds and writes one document. Returns the number
// of chunks committed even when it fails partway.
func (s *ingestService) ingestDocument(ctx context.Context, source, text string) (int, error) {
	const op = "IngestService.ingestDocument"

	chunks := ChunkText(text, s.chunkSize, s.chunkOverlap)
	written := 0
	for i, chunk := range chunks {
		embedding, err := s.provider.Embed(ctx, chunk)
		if err != nil {
			return written, utils.E(utils.CodeUnavailable, op, "embedding provider failed", err)
		}

		label := source
		if len(chunks) > 1 {
			label = fmt.Sprintf("%s (%d/%d)", source, i+1, len(chunks))
		}
		doc := &models.AIDocument{
			Content:   chunk,
			Embedding: pgvector.NewVector(embedding),
			Source:    label,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.docs.Insert(ctx, doc); err != nil {
			return written, utils.E(utils.CodeInternal, op, "failed to insert chunk", err)
		}
		written++
	}
	return written, nil
}

// ChunkText splits text into overlapping chunks. A text at or under the
// chunk size stays whole. Boundaries prefer the last sentence terminator or
// line break inside the trailing overlap window, so chunks tend to end on
// complete sentences.
func ChunkText(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}

	if len(text) <= chunkSize {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		chunk := text[start:end]

		if end < len(text) {
			tail := len(chunk) - overlap
			if tail < 0 {
				tail = 0
			}
			breakAt := strings.LastIndex(chunk[tail:], ". ")
			if nl := strings.LastIndex(chunk[tail:], "\n"); nl > breakAt {
				breakAt = nl
			}
			if breakAt >= 0 {
				cut := tail + breakAt + 1
				chunk = chunk[:cut]
				end = start + cut
			}
		}

		if trimmed := strings.TrimSpace(chunk); trimmed != "" {
			chunks = append(chunks, trimmed)
		}

		// The clamped final window already covers the rest of the text;
		// stepping back by the overlap from here would re-emit its tail.
		if end == len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			next = end
		}
		start = next
	}
	return chunks
}

// sourceName turns "refund-policy.md" into "Refund Policy".
func sourceName(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.ReplaceAll(base, "-", " ")
	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
