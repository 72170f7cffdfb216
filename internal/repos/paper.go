package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ideascope/ideascope-backend/internal/logger"
	"github.com/ideascope/ideascope-backend/internal/types"
)

type PaperRepo interface {
	Create(ctx context.Context, tx *gorm.DB, papers []*types.Paper) ([]*types.Paper, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Paper, error)
	// GetAll returns the global paper corpus in insertion order.
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Paper, error)
	Update(ctx context.Context, tx *gorm.DB, paper *types.Paper) error
}

type paperRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPaperRepo(db *gorm.DB, baseLog *logger.Logger) PaperRepo {
	return &paperRepo{db: db, log: baseLog.With("repo", "PaperRepo")}
}

func (r *paperRepo) Create(ctx context.Context, tx *gorm.DB, papers []*types.Paper) ([]*types.Paper, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(papers) == 0 {
		return []*types.Paper{}, nil
	}
	if err := transaction.WithContext(ctx).Create(papers).Error; err != nil {
		return nil, err
	}
	return papers, nil
}

func (r *paperRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Paper, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Paper
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *paperRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Paper, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Paper
	if err := transaction.WithContext(ctx).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *paperRepo) Update(ctx context.Context, tx *gorm.DB, paper *types.Paper) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(paper).Error
}
