package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/ideascope/ideascope-backend/internal/logger"
	"github.com/ideascope/ideascope-backend/internal/uniqueness"
)

// FieldComparison is a pairwise similarity verdict over named text fields.
type FieldComparison struct {
	PerField map[string]float64 `json:"perField"`
	Overall  float64            `json:"overall"`
}

// SimilarityProvider compares two submissions field by field. The embedding
// backend is deterministic and is the default; the generative backend asks
// the language model directly and is only as reproducible as the model.
type SimilarityProvider interface {
	Compare(ctx context.Context, a, b map[string]string, fields []string) (*FieldComparison, error)
}

// ---- Embedding-backed provider ----

type embeddingSimilarityProvider struct {
	log      *logger.Logger
	embedder EmbeddingClient
}

func NewEmbeddingSimilarityProvider(log *logger.Logger, embedder EmbeddingClient) SimilarityProvider {
	return &embeddingSimilarityProvider{
		log:      log.With("service", "EmbeddingSimilarityProvider"),
		embedder: embedder,
	}
}

func (p *embeddingSimilarityProvider) Compare(ctx context.Context, a, b map[string]string, fields []string) (*FieldComparison, error) {
	vecsA, err := p.embedder.EmbedFields(ctx, a)
	if err != nil {
		return nil, err
	}
	vecsB, err := p.embedder.EmbedFields(ctx, b)
	if err != nil {
		return nil, err
	}
	perField, overall := uniqueness.FieldSimilarity(vecsA, vecsB, fields)
	return &FieldComparison{PerField: perField, Overall: overall}, nil
}

// ---- Generative provider ----

type generativeSimilarityProvider struct {
	log    *logger.Logger
	client OpenAIClient
}

func NewGenerativeSimilarityProvider(log *logger.Logger, client OpenAIClient) SimilarityProvider {
	return &generativeSimilarityProvider{
		log:    log.With("service", "GenerativeSimilarityProvider"),
		client: client,
	}
}

const similaritySystemPrompt = "You are a research-submission reviewer. " +
	"Rate the semantic similarity of each named field pair from 0.0 (unrelated) to 1.0 (identical in meaning). " +
	"Judge meaning, not wording."

func (p *generativeSimilarityProvider) Compare(ctx context.Context, a, b map[string]string, fields []string) (*FieldComparison, error) {
	var sb strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&sb, "Field %q:\nFirst: %s\nSecond: %s\n\n", f, a[f], b[f])
	}

	fieldProps := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))
	for _, f := range fields {
		fieldProps[f] = map[string]any{"type": "number"}
		required = append(required, f)
	}
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"perField": map[string]any{
				"type":                 "object",
				"properties":           fieldProps,
				"required":             required,
				"additionalProperties": false,
			},
			"overall": map[string]any{"type": "number"},
		},
		"required":             []string{"perField", "overall"},
		"additionalProperties": false,
	}

	obj, err := p.client.GenerateJSON(ctx, similaritySystemPrompt, sb.String(), "field_similarity", schema)
	if err != nil {
		return nil, fmt.Errorf("generative similarity call: %w", err)
	}

	out := &FieldComparison{PerField: make(map[string]float64, len(fields))}
	if per, ok := obj["perField"].(map[string]any); ok {
		for _, f := range fields {
			out.PerField[f] = clamp01(toFloat(per[f]))
		}
	}
	out.Overall = clamp01(toFloat(obj["overall"]))
	return out, nil
}

func toFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
