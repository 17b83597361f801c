package activity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devjourney/feature-engine/internal/domain"
	"github.com/devjourney/feature-engine/internal/platform/dbctx"
	"github.com/devjourney/feature-engine/internal/platform/logger"
)

type SubmissionRepo interface {
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Submission, error)
}

type submissionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubmissionRepo(db *gorm.DB, baseLog *logger.Logger) SubmissionRepo {
	return &submissionRepo{db: db, log: baseLog.With("repo", "SubmissionRepo")}
}

func (r *submissionRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Submission, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*domain.Submission
	if err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
