package activity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devjourney/feature-engine/internal/domain"
	"github.com/devjourney/feature-engine/internal/platform/dbctx"
	"github.com/devjourney/feature-engine/internal/platform/logger"
)

// ExamResultRow joins a result with its registration. Retaken reflects the
// registration's soft-delete marker, which the upstream platform sets when the
// exam is retaken.
type ExamResultRow struct {
	Score      float64   `gorm:"column:score"`
	IsPassed   bool      `gorm:"column:is_passed"`
	TutorialID uuid.UUID `gorm:"column:tutorial_id"`
	Retaken    bool      `gorm:"column:retaken"`
}

type ExamRepo interface {
	ListResultRows(dbc dbctx.Context, userID uuid.UUID) ([]*ExamResultRow, error)
}

type examRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExamRepo(db *gorm.DB, baseLog *logger.Logger) ExamRepo {
	return &examRepo{db: db, log: baseLog.With("repo", "ExamRepo")}
}

func (r *examRepo) ListResultRows(dbc dbctx.Context, userID uuid.UUID) ([]*ExamResultRow, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*ExamResultRow
	// Soft-deleted registrations must stay in the join, they carry the retake
	// signal.
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.ExamResult{}).
		Select("exam_result.score, exam_result.is_passed, reg.tutorial_id, (reg.deleted_at IS NOT NULL) AS retaken").
		Joins("JOIN exam_registration reg ON reg.id = exam_result.exam_registration_id").
		Where("reg.user_id = ?", userID).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
