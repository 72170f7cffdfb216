package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ideascope/ideascope-backend/internal/types"
)

// In-memory repo fakes for pipeline tests. Only the methods the services
// under test call are given real behavior.

type fakeRoomRepo struct {
	rooms map[uuid.UUID]*types.Room
}

func newFakeRoomRepo(rooms ...*types.Room) *fakeRoomRepo {
	m := make(map[uuid.UUID]*types.Room, len(rooms))
	for _, r := range rooms {
		m[r.ID] = r
	}
	return &fakeRoomRepo{rooms: m}
}

func (f *fakeRoomRepo) Create(ctx context.Context, tx *gorm.DB, rooms []*types.Room) ([]*types.Room, error) {
	for _, r := range rooms {
		f.rooms[r.ID] = r
	}
	return rooms, nil
}

func (f *fakeRoomRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Room, error) {
	var out []*types.Room
	for _, id := range ids {
		if r, ok := f.rooms[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRoomRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Room, error) {
	var out []*types.Room
	for _, r := range f.rooms {
		out = append(out, r)
	}
	return out, nil
}

type fakeIdeaRepo struct {
	ideas []*types.Idea
}

func (f *fakeIdeaRepo) Create(ctx context.Context, tx *gorm.DB, ideas []*types.Idea) ([]*types.Idea, error) {
	f.ideas = append(f.ideas, ideas...)
	return ideas, nil
}

func (f *fakeIdeaRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Idea, error) {
	var out []*types.Idea
	for _, id := range ids {
		for _, idea := range f.ideas {
			if idea.ID == id {
				out = append(out, idea)
			}
		}
	}
	return out, nil
}

func (f *fakeIdeaRepo) GetByRoomID(ctx context.Context, tx *gorm.DB, roomID uuid.UUID) ([]*types.Idea, error) {
	var out []*types.Idea
	for _, idea := range f.ideas {
		if idea.RoomID == roomID {
			out = append(out, idea)
		}
	}
	return out, nil
}

type fakePaperRepo struct {
	papers []*types.Paper
}

func (f *fakePaperRepo) Create(ctx context.Context, tx *gorm.DB, papers []*types.Paper) ([]*types.Paper, error) {
	f.papers = append(f.papers, papers...)
	return papers, nil
}

func (f *fakePaperRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Paper, error) {
	var out []*types.Paper
	for _, id := range ids {
		for _, p := range f.papers {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakePaperRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Paper, error) {
	return f.papers, nil
}

func (f *fakePaperRepo) Update(ctx context.Context, tx *gorm.DB, paper *types.Paper) error {
	for i, p := range f.papers {
		if p.ID == paper.ID {
			f.papers[i] = paper
			return nil
		}
	}
	return fmt.Errorf("paper %s not found", paper.ID)
}

// fakeEmbedder returns canned vectors keyed by field text.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeEmbedder) embed(fields map[string]string) (map[string][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string][]float32, len(fields))
	for name, text := range fields {
		if vec, ok := f.vectors[text]; ok {
			out[name] = vec
		}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedFields(ctx context.Context, fields map[string]string) (map[string][]float32, error) {
	return f.embed(fields)
}

func (f *fakeEmbedder) EmbedPaperFields(ctx context.Context, fields map[string]string) (map[string][]float32, error) {
	return f.embed(fields)
}
