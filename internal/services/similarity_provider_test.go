package services

import (
	"context"
	"math"
	"testing"
)

type fakeOpenAIClient struct {
	embedVecs [][]float32
	jsonObj   map[string]any
	err       error

	lastSystem string
	lastUser   string
	lastSchema string
}

func (f *fakeOpenAIClient) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.embedVecs[:len(inputs)], nil
}

func (f *fakeOpenAIClient) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	f.lastSystem = system
	f.lastUser = user
	f.lastSchema = schemaName
	if f.err != nil {
		return nil, f.err
	}
	return f.jsonObj, nil
}

func TestEmbeddingSimilarityProvider_Compare(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"alpha text": {1, 0},
		"beta text":  {1, 0},
		"gamma text": {0, 1},
	}}
	p := NewEmbeddingSimilarityProvider(testLogger(t), embedder)

	cmp, err := p.Compare(context.Background(),
		map[string]string{"description": "alpha text", "domain": "gamma text"},
		map[string]string{"description": "beta text", "domain": "alpha text"},
		[]string{"description", "domain"},
	)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if math.Abs(cmp.PerField["description"]-1) > 1e-9 {
		t.Fatalf("identical description vectors should give 1, got %v", cmp.PerField["description"])
	}
	if math.Abs(cmp.PerField["domain"]) > 1e-9 {
		t.Fatalf("orthogonal domain vectors should give 0, got %v", cmp.PerField["domain"])
	}
	if math.Abs(cmp.Overall-0.5) > 1e-9 {
		t.Fatalf("expected overall 0.5, got %v", cmp.Overall)
	}
}

func TestGenerativeSimilarityProvider_ClampsAndFills(t *testing.T) {
	client := &fakeOpenAIClient{jsonObj: map[string]any{
		"perField": map[string]any{
			"description": 1.4,
			"domain":      -0.2,
		},
		"overall": 0.7,
	}}
	p := NewGenerativeSimilarityProvider(testLogger(t), client)

	cmp, err := p.Compare(context.Background(),
		map[string]string{"description": "a", "domain": "b"},
		map[string]string{"description": "c", "domain": "d"},
		[]string{"description", "domain"},
	)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if cmp.PerField["description"] != 1 {
		t.Fatalf("expected clamp to 1, got %v", cmp.PerField["description"])
	}
	if cmp.PerField["domain"] != 0 {
		t.Fatalf("expected clamp to 0, got %v", cmp.PerField["domain"])
	}
	if cmp.Overall != 0.7 {
		t.Fatalf("expected overall 0.7, got %v", cmp.Overall)
	}
	if client.lastSchema != "field_similarity" {
		t.Fatalf("unexpected schema name %q", client.lastSchema)
	}
}
