package features

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/devjourney/feature-engine/internal/data/repos/activity"
	featurerepos "github.com/devjourney/feature-engine/internal/data/repos/features"
	"github.com/devjourney/feature-engine/internal/domain"
	"github.com/devjourney/feature-engine/internal/platform/dbctx"
	"github.com/devjourney/feature-engine/internal/platform/logger"
)

// ErrInsufficientData marks the expected skip outcome. Returned from inside
// the per-user transaction so GORM rolls the snapshot back without writing.
var ErrInsufficientData = errors.New("insufficient data")

type Status string

const (
	StatusProcessed Status = "processed"
	StatusSkipped   Status = "skipped"
)

type Result struct {
	Status         Status
	Duration       time.Duration
	FeaturesFilled int
}

// Service runs the per-user pipeline: sufficiency gate, metric computation,
// sanitization and upsert, all inside one transaction per user.
type Service struct {
	db          *gorm.DB
	log         *logger.Logger
	trackings   activity.JourneyTrackingRepo
	completions activity.JourneyCompletionRepo
	submissions activity.SubmissionRepo
	exams       activity.ExamRepo
	features    featurerepos.LearnerFeatureRepo
}

func NewService(
	db *gorm.DB,
	baseLog *logger.Logger,
	trackings activity.JourneyTrackingRepo,
	completions activity.JourneyCompletionRepo,
	submissions activity.SubmissionRepo,
	exams activity.ExamRepo,
	featureRepo featurerepos.LearnerFeatureRepo,
) *Service {
	return &Service{
		db:          db,
		log:         baseLog.With("service", "FeatureService"),
		trackings:   trackings,
		completions: completions,
		submissions: submissions,
		exams:       exams,
		features:    featureRepo,
	}
}

// ComputeForUser derives and persists the feature row for one user. A skip is
// a normal Result, not an error; any error leaves no partial record behind.
func (s *Service) ComputeForUser(ctx context.Context, userID uuid.UUID) (Result, error) {
	start := time.Now()

	var rec *domain.LearnerFeature
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		rec, txErr = s.computeAndPersist(dbctx.Context{Ctx: ctx, Tx: tx}, userID, start)
		return txErr
	})

	if errors.Is(err, ErrInsufficientData) {
		s.log.Debug("User has insufficient data, skipping", "user_id", userID)
		return Result{Status: StatusSkipped, Duration: time.Since(start)}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("compute features for user %s: %w", userID, err)
	}

	s.log.Info("Features computed",
		"user_id", userID,
		"features_filled", rec.FeaturesFilledCount,
		"duration_ms", rec.ComputationDurationMS,
	)
	return Result{
		Status:         StatusProcessed,
		Duration:       time.Since(start),
		FeaturesFilled: rec.FeaturesFilledCount,
	}, nil
}

func (s *Service) computeAndPersist(dbc dbctx.Context, userID uuid.UUID, start time.Time) (*domain.LearnerFeature, error) {
	suff, err := s.checkSufficiency(dbc, userID)
	if err != nil {
		return nil, err
	}
	if !suff.Eligible {
		return nil, ErrInsufficientData
	}

	raw, err := s.computeRaw(dbc, userID, suff)
	if err != nil {
		return nil, err
	}

	clean, clamps := Sanitize(raw)
	for _, ev := range clamps {
		s.log.Warn("Clamped feature value",
			"user_id", userID,
			"field", string(ev.Field),
			"from", ev.From,
			"to", ev.To,
		)
	}

	rec := buildRecord(userID, suff, clean, int(time.Since(start).Milliseconds()))
	if err := s.features.Upsert(dbc, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func buildRecord(userID uuid.UUID, suff Sufficiency, clean Raw, durationMS int) *domain.LearnerFeature {
	return &domain.LearnerFeature{
		UserID:                 userID,
		TotalJourneysStarted:   suff.JourneysStarted,
		TotalJourneysCompleted: suff.JourneysCompleted,

		CompletionRate:               clean.CompletionRate,
		StudyDurationRatio:           clean.StudyDurationRatio,
		AvgCompletionTimePerTutorial: clean.AvgCompletionTimePerTutorial,
		ActiveDaysPercentage:         clean.ActiveDaysPercentage,

		LearningFrequencyPerWeek: clean.LearningFrequencyPerWeek,
		AvgEnrollingTimes:        clean.AvgEnrollingTimes,
		TotalStudyDays:           clean.TotalStudyDays,

		RevisitRate:         clean.RevisitRate,
		RevisionRate:        clean.RevisionRate,
		AvgSubmissionRating: clean.AvgSubmissionRating,
		QuizRetakeRate:      clean.QuizRetakeRate,

		AvgExamScore:     clean.AvgExamScore,
		ExamPassRate:     clean.ExamPassRate,
		TotalSubmissions: clean.TotalSubmissions,

		ComputationDurationMS: durationMS,
		FeaturesFilledCount:   FilledCount(clean),
		HasSufficientData:     true,
	}
}
