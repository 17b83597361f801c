package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devjourney/feature-engine/internal/domain"
	"github.com/devjourney/feature-engine/internal/platform/dbctx"
	"github.com/devjourney/feature-engine/internal/platform/logger"
)

// CompletionRow is a completion record projected together with the journey's
// effort estimate. HoursToStudy is nil when the journey row is missing.
type CompletionRow struct {
	JourneyID      uuid.UUID `gorm:"column:journey_id"`
	StudyDuration  int       `gorm:"column:study_duration"`
	EnrollingTimes int       `gorm:"column:enrolling_times"`
	HoursToStudy   *int      `gorm:"column:hours_to_study"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

type JourneyCompletionRepo interface {
	ListWithEstimates(dbc dbctx.Context, userID uuid.UUID) ([]*CompletionRow, error)
	CountDistinctJourneys(dbc dbctx.Context, userID uuid.UUID) (int, error)
}

type journeyCompletionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewJourneyCompletionRepo(db *gorm.DB, baseLog *logger.Logger) JourneyCompletionRepo {
	return &journeyCompletionRepo{db: db, log: baseLog.With("repo", "JourneyCompletionRepo")}
}

func (r *journeyCompletionRepo) ListWithEstimates(dbc dbctx.Context, userID uuid.UUID) ([]*CompletionRow, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var out []*CompletionRow
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.JourneyCompletion{}).
		Select("journey_completion.journey_id, journey_completion.study_duration, journey_completion.enrolling_times, journey.hours_to_study, journey_completion.created_at").
		Joins("LEFT JOIN journey ON journey.id = journey_completion.journey_id").
		Where("journey_completion.user_id = ?", userID).
		Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *journeyCompletionRepo) CountDistinctJourneys(dbc dbctx.Context, userID uuid.UUID) (int, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var count int64
	if err := t.WithContext(dbc.Ctx).
		Model(&domain.JourneyCompletion{}).
		Where("user_id = ?", userID).
		Distinct("journey_id").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
