package features

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/devjourney/feature-engine/internal/domain"
	"github.com/devjourney/feature-engine/internal/platform/dbctx"
	"github.com/devjourney/feature-engine/internal/platform/logger"
)

type LearnerFeatureRepo interface {
	// Upsert creates or fully overwrites the feature row for row.UserID and
	// stamps last_updated_at.
	Upsert(dbc dbctx.Context, row *domain.LearnerFeature) error
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*domain.LearnerFeature, error)
}

type learnerFeatureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLearnerFeatureRepo(db *gorm.DB, baseLog *logger.Logger) LearnerFeatureRepo {
	return &learnerFeatureRepo{db: db, log: baseLog.With("repo", "LearnerFeatureRepo")}
}

func (r *learnerFeatureRepo) Upsert(dbc dbctx.Context, row *domain.LearnerFeature) error {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	if row == nil || row.UserID == uuid.Nil {
		return nil
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.LastUpdatedAt = time.Now().UTC()

	return t.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_journeys_started",
				"total_journeys_completed",
				"completion_rate",
				"study_duration_ratio",
				"avg_completion_time_per_tutorial",
				"active_days_percentage",
				"learning_frequency_per_week",
				"avg_enrolling_times",
				"total_study_days",
				"revisit_rate",
				"revision_rate",
				"avg_submission_rating",
				"quiz_retake_rate",
				"avg_exam_score",
				"exam_pass_rate",
				"total_submissions",
				"computation_duration_ms",
				"features_filled_count",
				"has_sufficient_data",
				"last_updated_at",
			}),
		}).
		Create(row).Error
}

func (r *learnerFeatureRepo) GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*domain.LearnerFeature, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row domain.LearnerFeature
	err := t.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}
