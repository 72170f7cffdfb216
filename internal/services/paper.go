package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ideascope/ideascope-backend/internal/locks"
	"github.com/ideascope/ideascope-backend/internal/logger"
	"github.com/ideascope/ideascope-backend/internal/pdfx"
	"github.com/ideascope/ideascope-backend/internal/repos"
	"github.com/ideascope/ideascope-backend/internal/types"
	"github.com/ideascope/ideascope-backend/internal/uniqueness"
)

// PaperSubmission is the client payload for a new paper. PDF is optional;
// when present its extracted sections fill any text field the client left
// empty.
type PaperSubmission struct {
	Title      string
	Abstract   string
	Conclusion string
	PDF        []byte
	Filename   string
}

type PaperService interface {
	SubmitPaper(ctx context.Context, userID uuid.UUID, sub PaperSubmission) (*types.Paper, error)
	GetPaper(ctx context.Context, id uuid.UUID) (*types.Paper, error)
	ListPapers(ctx context.Context) ([]*types.Paper, error)
}

type paperService struct {
	db        *gorm.DB
	log       *logger.Logger
	paperRepo repos.PaperRepo
	embedder  EmbeddingClient
	bucket    BucketService
	locker    locks.Locker
	checker   *uniqueness.Checker
	weights   map[string]float64
}

func NewPaperService(
	db *gorm.DB,
	log *logger.Logger,
	paperRepo repos.PaperRepo,
	embedder EmbeddingClient,
	bucket BucketService,
	locker locks.Locker,
	checker *uniqueness.Checker,
	weights map[string]float64,
) PaperService {
	return &paperService{
		db:        db,
		log:       log.With("service", "PaperService"),
		paperRepo: paperRepo,
		embedder:  embedder,
		bucket:    bucket,
		locker:    locker,
		checker:   checker,
		weights:   weights,
	}
}

// SubmitPaper mirrors the idea pipeline over the global paper corpus. The
// abstract and conclusion vectors are folded into a single weighted content
// vector before comparison, so two papers compare on one similarity axis.
func (ps *paperService) SubmitPaper(ctx context.Context, userID uuid.UUID, sub PaperSubmission) (*types.Paper, error) {
	sub.Title = strings.TrimSpace(sub.Title)
	sub.Abstract = strings.TrimSpace(sub.Abstract)
	sub.Conclusion = strings.TrimSpace(sub.Conclusion)

	if len(sub.PDF) > 0 {
		sections, err := pdfx.Extract(sub.PDF)
		if err != nil {
			return nil, fmt.Errorf("failed to read PDF: %w", err)
		}
		if sub.Title == "" {
			sub.Title = sections.Title
		}
		if sub.Abstract == "" {
			sub.Abstract = sections.Abstract
		}
		if sub.Conclusion == "" {
			sub.Conclusion = sections.Conclusion
		}
	}

	var missing []string
	if sub.Title == "" {
		missing = append(missing, "title")
	}
	if sub.Abstract == "" {
		missing = append(missing, "abstract")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	release, err := ps.locker.Acquire(ctx, "paper-corpus")
	if err != nil {
		return nil, fmt.Errorf("failed to lock paper corpus: %w", err)
	}
	defer release()

	fields := map[string]string{"abstract": sub.Abstract}
	if sub.Conclusion != "" {
		fields["conclusion"] = sub.Conclusion
	}

	cfg := ps.checker.Config()
	hashes := make(map[string]string, len(cfg.ExactFields))
	for _, f := range cfg.ExactFields {
		if text, ok := fields[f]; ok {
			hashes[f] = uniqueness.Fingerprint(text)
		}
	}

	var priorPapers []*types.Paper
	var sectionVecs map[string][]float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var lErr error
		priorPapers, lErr = ps.paperRepo.GetAll(gctx, nil)
		if lErr != nil {
			return fmt.Errorf("failed to load paper corpus: %w", lErr)
		}
		return nil
	})
	g.Go(func() error {
		var eErr error
		sectionVecs, eErr = ps.embedder.EmbedPaperFields(gctx, fields)
		return eErr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	content := ps.combineContent(sectionVecs)
	vectors := map[string][]float32{}
	for name, vec := range sectionVecs {
		vectors[name] = vec
	}
	if content != nil {
		vectors["content"] = content
	}

	corpus := make([]uniqueness.Entry, 0, len(priorPapers))
	for _, prior := range priorPapers {
		priorVecs := vectorsFromJSONB(prior.Embeddings)
		if priorVecs != nil && priorVecs["content"] == nil {
			// Rows written before the combined vector was stored.
			if combined := ps.combineContent(priorVecs); combined != nil {
				priorVecs["content"] = combined
			}
		}
		corpus = append(corpus, uniqueness.Entry{
			ID:      prior.ID.String(),
			Title:   prior.Title,
			Vectors: priorVecs,
			Hashes:  hashesFromJSONB(prior.Hashes),
		})
	}

	paperID := uuid.New()
	report, err := ps.checker.Check(uniqueness.Entry{
		ID:      paperID.String(),
		Title:   sub.Title,
		Vectors: vectors,
		Hashes:  hashes,
	}, corpus)
	if err != nil {
		return nil, err
	}

	paper := &types.Paper{
		ID:              paperID,
		UserID:          userID,
		Title:           sub.Title,
		Abstract:        sub.Abstract,
		Conclusion:      sub.Conclusion,
		Embeddings:      marshalJSONB(vectors),
		Hashes:          marshalJSONB(hashes),
		UniquenessScore: report.UniquenessScore,
		FieldUniqueness: marshalJSONB(report.FieldUniqueness),
		SimilarPapers:   marshalJSONB(report.Similar),
		Explanation:     report.Explanation,
	}

	if len(sub.PDF) > 0 && ps.bucket != nil {
		name := path.Base(strings.TrimSpace(sub.Filename))
		if name == "" || name == "." || name == "/" {
			name = "paper.pdf"
		}
		key := fmt.Sprintf("papers/%s/%s", paperID.String(), name)
		if err := ps.bucket.UploadFile(ctx, key, "application/pdf", bytes.NewReader(sub.PDF)); err != nil {
			// Storage of the original file is best-effort; the analysis
			// already happened on the extracted text.
			ps.log.Warn("Failed to upload paper PDF", "paper_id", paperID.String(), "error", err)
		} else {
			paper.FileBucketKey = key
			paper.FileURL = ps.bucket.GetPublicURL(key)
		}
	}

	if _, err := ps.paperRepo.Create(ctx, nil, []*types.Paper{paper}); err != nil {
		return nil, fmt.Errorf("failed to persist paper: %w", err)
	}

	ps.log.Info("Paper analyzed",
		"paper_id", paperID.String(),
		"uniqueness_score", report.UniquenessScore,
		"similar_count", len(report.Similar),
		"corpus_size", len(corpus),
	)
	return paper, nil
}

// combineContent folds the per-section vectors into one weighted vector,
// renormalizing the weights over whichever sections are actually present.
func (ps *paperService) combineContent(sectionVecs map[string][]float32) []float32 {
	if len(sectionVecs) == 0 {
		return nil
	}
	present := map[string]float64{}
	var total float64
	for name, w := range ps.weights {
		if vec, ok := sectionVecs[name]; ok && len(vec) > 0 {
			present[name] = w
			total += w
		}
	}
	if len(present) == 0 || total == 0 {
		return nil
	}
	for name, w := range present {
		present[name] = w / total
	}
	return uniqueness.CombineWeighted(sectionVecs, present)
}

func (ps *paperService) GetPaper(ctx context.Context, id uuid.UUID) (*types.Paper, error) {
	papers, err := ps.paperRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to load paper: %w", err)
	}
	if len(papers) == 0 {
		return nil, ErrPaperNotFound
	}
	return papers[0], nil
}

func (ps *paperService) ListPapers(ctx context.Context) ([]*types.Paper, error) {
	papers, err := ps.paperRepo.GetAll(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list papers: %w", err)
	}
	return papers, nil
}
