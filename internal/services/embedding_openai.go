package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ideascope/ideascope-backend/internal/logger"
)

// openAIEmbeddingClient satisfies EmbeddingClient on top of the OpenAI
// embeddings endpoint, for deployments without the local model service.
// Selected with EMBEDDING_PROVIDER=openai.
type openAIEmbeddingClient struct {
	log    *logger.Logger
	client OpenAIClient
}

func NewOpenAIEmbeddingClient(log *logger.Logger, client OpenAIClient) EmbeddingClient {
	return &openAIEmbeddingClient{
		log:    log.With("service", "OpenAIEmbeddingClient"),
		client: client,
	}
}

func (c *openAIEmbeddingClient) EmbedFields(ctx context.Context, fields map[string]string) (map[string][]float32, error) {
	names := make([]string, 0, len(fields))
	for name, text := range fields {
		if strings.TrimSpace(text) == "" {
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return map[string][]float32{}, nil
	}
	sort.Strings(names)

	inputs := make([]string, len(names))
	for i, name := range names {
		inputs[i] = fields[name]
	}
	vecs, err := c.client.Embed(ctx, inputs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingUnavailable, err)
	}
	out := make(map[string][]float32, len(names))
	for i, name := range names {
		out[name] = vecs[i]
	}
	return out, nil
}

// Papers and ideas share one embedding model here; the split only matters
// for the local service, which exposes separate routes.
func (c *openAIEmbeddingClient) EmbedPaperFields(ctx context.Context, fields map[string]string) (map[string][]float32, error) {
	return c.EmbedFields(ctx, fields)
}
