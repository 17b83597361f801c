package activity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devjourney/feature-engine/internal/domain"
	"github.com/devjourney/feature-engine/internal/platform/dbctx"
	"github.com/devjourney/feature-engine/internal/platform/logger"
)

type JourneyTrackingRepo interface {
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.JourneyTracking, error)
	CountDistinctJourneys(dbc dbctx.Context, userID uuid.UUID) (int, error)
	// ListActiveUserIDs returns every user with at least one tracking record,
	// ascending, so batch runs enumerate candidates in a stable order.
	ListActiveUserIDs(dbc dbctx.Context) ([]uuid.UUID, error)
}

type journeyTrackingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJourneyTrackingRepo(db *gorm.DB, baseLog *logger.Logger) JourneyTrackingRepo {
	return &journeyTrackingRepo{db: db, log: baseLog.With("repo", "JourneyTrackingRepo")}
}

func (r *journeyTrackingRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.JourneyTracking, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.JourneyTracking
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *journeyTrackingRepo) CountDistinctJourneys(dbc dbctx.Context, userID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.JourneyTracking{}).
		Where("user_id = ?", userID).
		Distinct("journey_id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (r *journeyTrackingRepo) ListActiveUserIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []uuid.UUID
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.JourneyTracking{}).
		Distinct("user_id").
		Order("user_id ASC").
		Pluck("user_id", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
