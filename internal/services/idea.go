package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/ideascope/ideascope-backend/internal/locks"
	"github.com/ideascope/ideascope-backend/internal/logger"
	"github.com/ideascope/ideascope-backend/internal/repos"
	"github.com/ideascope/ideascope-backend/internal/types"
	"github.com/ideascope/ideascope-backend/internal/uniqueness"
)

var ErrIdeaNotFound = errors.New("idea not found")

// IdeaSubmission is the client payload for a new idea.
type IdeaSubmission struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	Domain           string `json:"domain"`
	ProblemStatement string `json:"problemStatement"`
	ProposedSolution string `json:"proposedSolution"`
}

type IdeaService interface {
	SubmitIdea(ctx context.Context, roomID, userID uuid.UUID, sub IdeaSubmission) (*types.Idea, error)
	GetRoomIdeas(ctx context.Context, roomID uuid.UUID) ([]*types.Idea, error)
	GetIdea(ctx context.Context, id uuid.UUID) (*types.Idea, error)
	CompareIdeas(ctx context.Context, aID, bID uuid.UUID) (*FieldComparison, error)
}

type ideaService struct {
	db         *gorm.DB
	log        *logger.Logger
	ideaRepo   repos.IdeaRepo
	roomRepo   repos.RoomRepo
	embedder   EmbeddingClient
	similarity SimilarityProvider
	locker     locks.Locker
	checker    *uniqueness.Checker
}

func NewIdeaService(
	db *gorm.DB,
	log *logger.Logger,
	ideaRepo repos.IdeaRepo,
	roomRepo repos.RoomRepo,
	embedder EmbeddingClient,
	similarity SimilarityProvider,
	locker locks.Locker,
	checker *uniqueness.Checker,
) IdeaService {
	return &ideaService{
		db:         db,
		log:        log.With("service", "IdeaService"),
		ideaRepo:   ideaRepo,
		roomRepo:   roomRepo,
		embedder:   embedder,
		similarity: similarity,
		locker:     locker,
		checker:    checker,
	}
}

// SubmitIdea runs the full analysis pipeline: validate, lock the room so
// concurrent submissions serialize against a stable corpus snapshot, hash
// and embed the tracked fields, compare against every prior idea in the
// room, then persist the idea together with its frozen report. An exact
// duplicate surfaces as *uniqueness.ExactMatchError and is never persisted.
func (is *ideaService) SubmitIdea(ctx context.Context, roomID, userID uuid.UUID, sub IdeaSubmission) (*types.Idea, error) {
	sub.Title = strings.TrimSpace(sub.Title)
	sub.Description = strings.TrimSpace(sub.Description)
	sub.Domain = strings.TrimSpace(sub.Domain)
	sub.ProblemStatement = strings.TrimSpace(sub.ProblemStatement)
	sub.ProposedSolution = strings.TrimSpace(sub.ProposedSolution)

	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{"title", sub.Title},
		{"description", sub.Description},
		{"domain", sub.Domain},
		{"problemStatement", sub.ProblemStatement},
		{"proposedSolution", sub.ProposedSolution},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	rooms, err := is.roomRepo.GetByIDs(ctx, nil, []uuid.UUID{roomID})
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if len(rooms) == 0 {
		return nil, ErrRoomNotFound
	}

	release, err := is.locker.Acquire(ctx, "idea-room:"+roomID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to lock room corpus: %w", err)
	}
	defer release()

	fields := map[string]string{
		"problemStatement": sub.ProblemStatement,
		"proposedSolution": sub.ProposedSolution,
		"description":      sub.Description,
		"domain":           sub.Domain,
	}

	cfg := is.checker.Config()
	hashes := make(map[string]string, len(cfg.ExactFields))
	for _, f := range cfg.ExactFields {
		hashes[f] = uniqueness.Fingerprint(fields[f])
	}

	// Corpus load and embedding are independent; run them concurrently.
	var priorIdeas []*types.Idea
	var vectors map[string][]float32
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var lErr error
		priorIdeas, lErr = is.ideaRepo.GetByRoomID(gctx, nil, roomID)
		if lErr != nil {
			return fmt.Errorf("failed to load room corpus: %w", lErr)
		}
		return nil
	})
	g.Go(func() error {
		var eErr error
		vectors, eErr = is.embedder.EmbedFields(gctx, fields)
		return eErr
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	corpus := make([]uniqueness.Entry, 0, len(priorIdeas))
	for _, prior := range priorIdeas {
		corpus = append(corpus, uniqueness.Entry{
			ID:      prior.ID.String(),
			Title:   prior.Title,
			Vectors: vectorsFromJSONB(prior.Embeddings),
			Hashes:  hashesFromJSONB(prior.Hashes),
		})
	}

	ideaID := uuid.New()
	report, err := is.checker.Check(uniqueness.Entry{
		ID:      ideaID.String(),
		Title:   sub.Title,
		Vectors: vectors,
		Hashes:  hashes,
	}, corpus)
	if err != nil {
		return nil, err
	}

	idea := &types.Idea{
		ID:               ideaID,
		RoomID:           roomID,
		UserID:           userID,
		Title:            sub.Title,
		Description:      sub.Description,
		Domain:           sub.Domain,
		ProblemStatement: sub.ProblemStatement,
		ProposedSolution: sub.ProposedSolution,
		Embeddings:       marshalJSONB(vectors),
		Hashes:           marshalJSONB(hashes),
		UniquenessScore:  report.UniquenessScore,
		FieldUniqueness:  marshalJSONB(report.FieldUniqueness),
		SimilarIdeas:     marshalJSONB(report.Similar),
		Explanation:      report.Explanation,
	}
	if _, err := is.ideaRepo.Create(ctx, nil, []*types.Idea{idea}); err != nil {
		return nil, fmt.Errorf("failed to persist idea: %w", err)
	}

	is.log.Info("Idea analyzed",
		"idea_id", ideaID.String(),
		"room_id", roomID.String(),
		"uniqueness_score", report.UniquenessScore,
		"similar_count", len(report.Similar),
		"corpus_size", len(corpus),
	)
	return idea, nil
}

func (is *ideaService) GetRoomIdeas(ctx context.Context, roomID uuid.UUID) ([]*types.Idea, error) {
	rooms, err := is.roomRepo.GetByIDs(ctx, nil, []uuid.UUID{roomID})
	if err != nil {
		return nil, fmt.Errorf("failed to load room: %w", err)
	}
	if len(rooms) == 0 {
		return nil, ErrRoomNotFound
	}
	ideas, err := is.ideaRepo.GetByRoomID(ctx, nil, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to load room ideas: %w", err)
	}
	return ideas, nil
}

// CompareIdeas re-compares two stored ideas field by field through the
// configured similarity backend. Unlike the frozen report written at
// submission time, this runs on demand over the raw text.
func (is *ideaService) CompareIdeas(ctx context.Context, aID, bID uuid.UUID) (*FieldComparison, error) {
	ideas, err := is.ideaRepo.GetByIDs(ctx, nil, []uuid.UUID{aID, bID})
	if err != nil {
		return nil, fmt.Errorf("failed to load ideas: %w", err)
	}
	byID := make(map[uuid.UUID]*types.Idea, len(ideas))
	for _, idea := range ideas {
		byID[idea.ID] = idea
	}
	a, okA := byID[aID]
	b, okB := byID[bID]
	if !okA || !okB {
		return nil, ErrIdeaNotFound
	}

	cmp, err := is.similarity.Compare(ctx, ideaFieldText(a), ideaFieldText(b), is.checker.Config().TrackedFields)
	if err != nil {
		return nil, fmt.Errorf("failed to compare ideas: %w", err)
	}
	is.log.Info("Ideas compared",
		"idea_a", aID.String(),
		"idea_b", bID.String(),
		"overall_similarity", cmp.Overall,
	)
	return cmp, nil
}

func ideaFieldText(i *types.Idea) map[string]string {
	return map[string]string{
		"problemStatement": i.ProblemStatement,
		"proposedSolution": i.ProposedSolution,
		"description":      i.Description,
		"domain":           i.Domain,
	}
}

func (is *ideaService) GetIdea(ctx context.Context, id uuid.UUID) (*types.Idea, error) {
	ideas, err := is.ideaRepo.GetByIDs(ctx, nil, []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("failed to load idea: %w", err)
	}
	if len(ideas) == 0 {
		return nil, ErrIdeaNotFound
	}
	return ideas[0], nil
}
