package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/turnuplagos/turnup-backend/internal/models"
	"github.com/turnuplagos/turnup-backend/internal/providers/llm"
	pgrepo "github.com/turnuplagos/turnup-backend/internal/repositories/postgres"
	"github.com/turnuplagos/turnup-backend/internal/utils"
)

// NoContextPlaceholder is what the prompt gets when retrieval finds nothing.
// The orchestrator always has a context slot to fill, never a nil.
const NoContextPlaceholder = "No relevant documentation found."

const defaultSearchLimit = 5

type RetrievalService interface {
	Search(ctx context.Context, query string, k int) ([]models.RetrievedDocument, error)
	FormatContext(docs []models.RetrievedDocument) string
}

type retrievalService struct {
	provider llm.Provider
	docs     pgrepo.DocumentRepo
}

func NewRetrievalService(provider llm.Provider, docs pgrepo.DocumentRepo) RetrievalService {
	return &retrievalService{provider: provider, docs: docs}
}

func (s *retrievalService) Search(ctx context.Context, query string, k int) ([]models.RetrievedDocument, error) {
	const op = "RetrievalService.Search"

	if k <= 0 {
		k = defaultSearchLimit
	}

	embedding, err := s.provider.Embed(ctx, query)
	if err != nil {
		return nil, utils.E(utils.CodeUnavailable, op, "failed to embed query", err)
	}

	hits, err := s.docs.Nearest(ctx, embedding, k)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "vector search failed", err)
	}

	out := make([]models.RetrievedDocument, 0, len(hits))
	for _, h := range hits {
		out = append(out, models.RetrievedDocument{
			Content:    h.Content,
			Source:     h.Source,
			Similarity: h.Similarity,
		})
	}
	return out, nil
}

func (s *retrievalService) FormatContext(docs []models.RetrievedDocument) string {
	if len(docs) == 0 {
		return NoContextPlaceholder
	}

	parts := make([]string, 0, len(docs))
	for i, d := range docs {
		source := ""
		if d.Source != "" {
			source = fmt.Sprintf(" (from: %s)", d.Source)
		}
		parts = append(parts, fmt.Sprintf("%d. %s%s", i+1, d.Content, source))
	}
	return strings.Join(parts, "\n\n")
}
