package features

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devjourney/feature-engine/internal/domain"
	"github.com/devjourney/feature-engine/internal/platform/dbctx"
	"github.com/devjourney/feature-engine/internal/platform/logger"
)

type FeatureRunRepo interface {
	Create(dbc dbctx.Context, row *domain.FeatureRun) error
	ListRecent(dbc dbctx.Context, limit int) ([]*domain.FeatureRun, error)
}

type featureRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeatureRunRepo(db *gorm.DB, baseLog *logger.Logger) FeatureRunRepo {
	return &featureRunRepo{db: db, log: baseLog.With("repo", "FeatureRunRepo")}
}

func (r *featureRunRepo) Create(dbc dbctx.Context, row *domain.FeatureRun) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	return t.WithContext(dbc.Ctx).Create(row).Error
}

func (r *featureRunRepo) ListRecent(dbc dbctx.Context, limit int) ([]*domain.FeatureRun, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	var out []*domain.FeatureRun
	if err := t.WithContext(dbc.Ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
