package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ideascope/ideascope-backend/internal/logger"
	"github.com/ideascope/ideascope-backend/internal/repos"
	"gorm.io/datatypes"
)

var ErrPaperNotFound = errors.New("paper not found")

// AIDetectionResult is the structured verdict for a paper's text.
type AIDetectionResult struct {
	AIProbability float64 `json:"aiProbability"`
	Verdict       string  `json:"verdict"`
	Reasoning     string  `json:"reasoning"`
}

type AIDetectionService interface {
	DetectPaper(ctx context.Context, paperID uuid.UUID) (*AIDetectionResult, error)
}

type aiDetectionService struct {
	db        *gorm.DB
	log       *logger.Logger
	client    OpenAIClient
	paperRepo repos.PaperRepo
}

func NewAIDetectionService(
	db *gorm.DB,
	log *logger.Logger,
	client OpenAIClient,
	paperRepo repos.PaperRepo,
) AIDetectionService {
	return &aiDetectionService{
		db:        db,
		log:       log.With("service", "AIDetectionService"),
		client:    client,
		paperRepo: paperRepo,
	}
}

const aiDetectSystemPrompt = `You are an expert at detecting machine-generated academic prose.
Given the abstract and conclusion of a research paper, estimate the probability
that the text was written by a large language model. Judge on stylistic
uniformity, hedging patterns, filler transitions, and factual vagueness.
Return strict JSON only.`

var aiDetectSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"aiProbability": map[string]any{
			"type":    "number",
			"minimum": 0,
			"maximum": 1,
		},
		"verdict": map[string]any{
			"type": "string",
			"enum": []string{"likely-human", "uncertain", "likely-ai"},
		},
		"reasoning": map[string]any{"type": "string"},
	},
	"required":             []string{"aiProbability", "verdict", "reasoning"},
	"additionalProperties": false,
}

func (s *aiDetectionService) DetectPaper(ctx context.Context, paperID uuid.UUID) (*AIDetectionResult, error) {
	papers, err := s.paperRepo.GetByIDs(ctx, nil, []uuid.UUID{paperID})
	if err != nil {
		return nil, fmt.Errorf("load paper: %w", err)
	}
	if len(papers) == 0 {
		return nil, ErrPaperNotFound
	}
	paper := papers[0]

	var sb strings.Builder
	if strings.TrimSpace(paper.Abstract) != "" {
		sb.WriteString("Abstract:\n")
		sb.WriteString(paper.Abstract)
		sb.WriteString("\n\n")
	}
	if strings.TrimSpace(paper.Conclusion) != "" {
		sb.WriteString("Conclusion:\n")
		sb.WriteString(paper.Conclusion)
	}
	if sb.Len() == 0 {
		return nil, &ValidationError{Missing: []string{"abstract", "conclusion"}}
	}

	raw, err := s.client.GenerateJSON(ctx, aiDetectSystemPrompt, sb.String(), "ai_text_detection", aiDetectSchema)
	if err != nil {
		return nil, fmt.Errorf("ai detection call: %w", err)
	}

	result := &AIDetectionResult{
		AIProbability: clamp01(toFloat(raw["aiProbability"])),
		Verdict:       strings.TrimSpace(toString(raw["verdict"])),
		Reasoning:     strings.TrimSpace(toString(raw["reasoning"])),
	}
	if result.Verdict == "" {
		result.Verdict = verdictFromProbability(result.AIProbability)
	}

	blob, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	paper.AIDetection = datatypes.JSON(blob)
	if err := s.paperRepo.Update(ctx, nil, paper); err != nil {
		return nil, fmt.Errorf("persist ai detection: %w", err)
	}

	s.log.Info("AI detection completed",
		"paper_id", paper.ID.String(),
		"verdict", result.Verdict,
	)
	return result, nil
}

func verdictFromProbability(p float64) string {
	switch {
	case p >= 0.7:
		return "likely-ai"
	case p >= 0.35:
		return "uncertain"
	default:
		return "likely-human"
	}
}

func toString(v any) string {
	s, _ := v.(string)
	return s
}
