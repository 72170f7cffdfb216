package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ideascope/ideascope-backend/internal/locks"
	"github.com/ideascope/ideascope-backend/internal/logger"
	"github.com/ideascope/ideascope-backend/internal/types"
	"github.com/ideascope/ideascope-backend/internal/uniqueness"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}

func newTestIdeaService(t *testing.T, roomRepo *fakeRoomRepo, ideaRepo *fakeIdeaRepo, embedder *fakeEmbedder) IdeaService {
	t.Helper()
	log := testLogger(t)
	return NewIdeaService(
		nil,
		log,
		ideaRepo,
		roomRepo,
		embedder,
		NewEmbeddingSimilarityProvider(log, embedder),
		locks.NewLocalLocker(),
		uniqueness.NewChecker(uniqueness.IdeaConfig()),
	)
}

func validSubmission() IdeaSubmission {
	return IdeaSubmission{
		Title:            "Ultrasonic leak finder",
		Description:      "Handheld sensor that hears pipe leaks",
		Domain:           "hardware",
		ProblemStatement: "Water utilities lose supply to undetected leaks",
		ProposedSolution: "Triangulate leaks with ultrasonic microphones",
	}
}

func TestSubmitIdea_MissingFields(t *testing.T) {
	room := &types.Room{ID: uuid.New()}
	svc := newTestIdeaService(t, newFakeRoomRepo(room), &fakeIdeaRepo{}, &fakeEmbedder{})

	_, err := svc.SubmitIdea(context.Background(), room.ID, uuid.New(), IdeaSubmission{Title: "only a title"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(vErr.Missing) != 4 {
		t.Fatalf("expected 4 missing fields, got %v", vErr.Missing)
	}
}

func TestSubmitIdea_UnknownRoom(t *testing.T) {
	svc := newTestIdeaService(t, newFakeRoomRepo(), &fakeIdeaRepo{}, &fakeEmbedder{})

	_, err := svc.SubmitIdea(context.Background(), uuid.New(), uuid.New(), validSubmission())
	if !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("expected ErrRoomNotFound, got %v", err)
	}
}

func TestSubmitIdea_EmptyCorpusScoresPerfect(t *testing.T) {
	room := &types.Room{ID: uuid.New()}
	sub := validSubmission()
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		sub.Description:      {1, 0},
		sub.Domain:           {0, 1},
		sub.ProblemStatement: {1, 1},
		sub.ProposedSolution: {1, 2},
	}}
	ideaRepo := &fakeIdeaRepo{}
	svc := newTestIdeaService(t, newFakeRoomRepo(room), ideaRepo, embedder)

	idea, err := svc.SubmitIdea(context.Background(), room.ID, uuid.New(), sub)
	if err != nil {
		t.Fatalf("SubmitIdea: %v", err)
	}
	if idea.UniquenessScore != 100 {
		t.Fatalf("expected score 100 on empty corpus, got %d", idea.UniquenessScore)
	}
	if len(ideaRepo.ideas) != 1 {
		t.Fatalf("expected 1 persisted idea, got %d", len(ideaRepo.ideas))
	}
	var hashes map[string]string
	if err := json.Unmarshal(idea.Hashes, &hashes); err != nil {
		t.Fatalf("unmarshal hashes: %v", err)
	}
	if hashes["problemStatement"] != uniqueness.Fingerprint(sub.ProblemStatement) {
		t.Fatalf("stored problemStatement hash mismatch")
	}
	var similar []uniqueness.SimilarEntry
	if err := json.Unmarshal(idea.SimilarIdeas, &similar); err != nil {
		t.Fatalf("unmarshal similar: %v", err)
	}
	if len(similar) != 0 {
		t.Fatalf("expected no similar entries, got %d", len(similar))
	}
}

func TestSubmitIdea_ExactDuplicateRejected(t *testing.T) {
	room := &types.Room{ID: uuid.New()}
	sub := validSubmission()

	prior := &types.Idea{
		ID:     uuid.New(),
		RoomID: room.ID,
		Title:  "Earlier leak finder",
		Hashes: marshalJSONB(map[string]string{
			"problemStatement": uniqueness.Fingerprint(sub.ProblemStatement),
			"proposedSolution": uniqueness.Fingerprint("something else entirely"),
		}),
	}
	ideaRepo := &fakeIdeaRepo{ideas: []*types.Idea{prior}}
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		sub.Description:      {1, 0},
		sub.Domain:           {0, 1},
		sub.ProblemStatement: {1, 1},
		sub.ProposedSolution: {1, 2},
	}}
	svc := newTestIdeaService(t, newFakeRoomRepo(room), ideaRepo, embedder)

	_, err := svc.SubmitIdea(context.Background(), room.ID, uuid.New(), sub)
	var emErr *uniqueness.ExactMatchError
	if !errors.As(err, &emErr) {
		t.Fatalf("expected ExactMatchError, got %v", err)
	}
	if emErr.Field != "problemStatement" {
		t.Fatalf("expected match on problemStatement, got %q", emErr.Field)
	}
	if len(ideaRepo.ideas) != 1 {
		t.Fatalf("rejected idea must not be persisted, corpus has %d", len(ideaRepo.ideas))
	}
}

func TestSubmitIdea_NearDuplicateScoresLowAndLists(t *testing.T) {
	room := &types.Room{ID: uuid.New()}
	sub := validSubmission()

	priorVecs := map[string][]float32{
		"problemStatement": {1, 1},
		"proposedSolution": {1, 2},
		"description":      {1, 0},
		"domain":           {0, 1},
	}
	prior := &types.Idea{
		ID:         uuid.New(),
		RoomID:     room.ID,
		Title:      "Acoustic pipe monitor",
		Embeddings: marshalJSONB(priorVecs),
		Hashes: marshalJSONB(map[string]string{
			"problemStatement": uniqueness.Fingerprint("different phrasing"),
			"proposedSolution": uniqueness.Fingerprint("also different"),
		}),
	}
	ideaRepo := &fakeIdeaRepo{ideas: []*types.Idea{prior}}
	// New idea embeds to the same vectors as the prior one.
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		sub.Description:      {1, 0},
		sub.Domain:           {0, 1},
		sub.ProblemStatement: {1, 1},
		sub.ProposedSolution: {1, 2},
	}}
	svc := newTestIdeaService(t, newFakeRoomRepo(room), ideaRepo, embedder)

	idea, err := svc.SubmitIdea(context.Background(), room.ID, uuid.New(), sub)
	if err != nil {
		t.Fatalf("SubmitIdea: %v", err)
	}
	if idea.UniquenessScore != 0 {
		t.Fatalf("identical vectors should score 0, got %d", idea.UniquenessScore)
	}
	var similar []uniqueness.SimilarEntry
	if err := json.Unmarshal(idea.SimilarIdeas, &similar); err != nil {
		t.Fatalf("unmarshal similar: %v", err)
	}
	if len(similar) != 1 {
		t.Fatalf("expected 1 similar entry, got %d", len(similar))
	}
	if similar[0].ID != prior.ID.String() || similar[0].SimilarityScore != 100 {
		t.Fatalf("unexpected similar entry: %+v", similar[0])
	}
}

func TestCompareIdeas_EmbeddingBackend(t *testing.T) {
	room := &types.Room{ID: uuid.New()}
	a := &types.Idea{
		ID: uuid.New(), RoomID: room.ID, Title: "Ultrasonic leak finder",
		Description: "desc a", Domain: "dom a",
		ProblemStatement: "prob a", ProposedSolution: "sol a",
	}
	b := &types.Idea{
		ID: uuid.New(), RoomID: room.ID, Title: "Acoustic pipe monitor",
		Description: "desc b", Domain: "dom b",
		ProblemStatement: "prob b", ProposedSolution: "sol b",
	}
	// Problem statements embed identically, every other field orthogonal.
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"prob a": {1, 0}, "prob b": {1, 0},
		"sol a": {1, 0}, "sol b": {0, 1},
		"desc a": {1, 0}, "desc b": {0, 1},
		"dom a": {1, 0}, "dom b": {0, 1},
	}}
	ideaRepo := &fakeIdeaRepo{ideas: []*types.Idea{a, b}}
	svc := newTestIdeaService(t, newFakeRoomRepo(room), ideaRepo, embedder)

	cmp, err := svc.CompareIdeas(context.Background(), a.ID, b.ID)
	if err != nil {
		t.Fatalf("CompareIdeas: %v", err)
	}
	if got := cmp.PerField["problemStatement"]; got != 1 {
		t.Fatalf("problemStatement similarity = %v, want 1", got)
	}
	for _, f := range []string{"proposedSolution", "description", "domain"} {
		if got := cmp.PerField[f]; got != 0 {
			t.Fatalf("%s similarity = %v, want 0", f, got)
		}
	}
	if cmp.Overall != 0.25 {
		t.Fatalf("overall similarity = %v, want 0.25", cmp.Overall)
	}
}

func TestCompareIdeas_UnknownIdea(t *testing.T) {
	room := &types.Room{ID: uuid.New()}
	a := &types.Idea{ID: uuid.New(), RoomID: room.ID}
	ideaRepo := &fakeIdeaRepo{ideas: []*types.Idea{a}}
	svc := newTestIdeaService(t, newFakeRoomRepo(room), ideaRepo, &fakeEmbedder{})

	_, err := svc.CompareIdeas(context.Background(), a.ID, uuid.New())
	if !errors.Is(err, ErrIdeaNotFound) {
		t.Fatalf("expected ErrIdeaNotFound, got %v", err)
	}
}
