package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LearnerFeature holds the precomputed per-user feature row consumed by the
// downstream learner-type model. Exactly one row per user; every run fully
// overwrites the previous values. Nullable metrics stay NULL when there is no
// basis to estimate them, which the model treats differently from a measured
// zero.
type LearnerFeature struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	TotalJourneysStarted   int `gorm:"column:total_journeys_started;not null;default:0" json:"total_journeys_started"`
	TotalJourneysCompleted int `gorm:"column:total_journeys_completed;not null;default:0" json:"total_journeys_completed"`

	// Speed
	CompletionRate               *float64 `gorm:"column:completion_rate;type:decimal(5,4)" json:"completion_rate,omitempty"`
	StudyDurationRatio           *float64 `gorm:"column:study_duration_ratio;type:decimal(5,2)" json:"study_duration_ratio,omitempty"`
	AvgCompletionTimePerTutorial *float64 `gorm:"column:avg_completion_time_per_tutorial;type:decimal(10,2)" json:"avg_completion_time_per_tutorial,omitempty"`
	ActiveDaysPercentage         *float64 `gorm:"column:active_days_percentage;type:decimal(5,4)" json:"active_days_percentage,omitempty"`

	// Consistency
	LearningFrequencyPerWeek *float64 `gorm:"column:learning_frequency_per_week;type:decimal(5,2)" json:"learning_frequency_per_week,omitempty"`
	AvgEnrollingTimes        *float64 `gorm:"column:avg_enrolling_times;type:decimal(5,2)" json:"avg_enrolling_times,omitempty"`
	TotalStudyDays           int      `gorm:"column:total_study_days;not null;default:0" json:"total_study_days"`

	// Review / perfectionism
	RevisitRate         *float64 `gorm:"column:revisit_rate;type:decimal(5,4)" json:"revisit_rate,omitempty"`
	RevisionRate        *float64 `gorm:"column:revision_rate;type:decimal(5,4)" json:"revision_rate,omitempty"`
	AvgSubmissionRating *float64 `gorm:"column:avg_submission_rating;type:decimal(3,2)" json:"avg_submission_rating,omitempty"`
	QuizRetakeRate      *float64 `gorm:"column:quiz_retake_rate;type:decimal(5,4)" json:"quiz_retake_rate,omitempty"`

	// Performance
	AvgExamScore     *float64 `gorm:"column:avg_exam_score;type:decimal(5,2)" json:"avg_exam_score,omitempty"`
	ExamPassRate     *float64 `gorm:"column:exam_pass_rate;type:decimal(5,4)" json:"exam_pass_rate,omitempty"`
	TotalSubmissions int      `gorm:"column:total_submissions;not null;default:0" json:"total_submissions"`

	// Quality metadata
	ComputationDurationMS int  `gorm:"column:computation_duration_ms" json:"computation_duration_ms"`
	FeaturesFilledCount   int  `gorm:"column:features_filled_count" json:"features_filled_count"`
	HasSufficientData     bool `gorm:"column:has_sufficient_data;not null;default:false" json:"has_sufficient_data"`

	LastUpdatedAt time.Time `gorm:"column:last_updated_at;not null;default:now();index" json:"last_updated_at"`
}

func (LearnerFeature) TableName() string { return "learner_feature" }

// FeatureRun is an append-only ledger of batch runs, one row per invocation.
type FeatureRun struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	StartedAt       time.Time      `gorm:"column:started_at;not null" json:"started_at"`
	FinishedAt      time.Time      `gorm:"column:finished_at;not null" json:"finished_at"`
	TotalCandidates int            `gorm:"column:total_candidates;not null;default:0" json:"total_candidates"`
	Processed       int            `gorm:"column:processed;not null;default:0" json:"processed"`
	Skipped         int            `gorm:"column:skipped;not null;default:0" json:"skipped"`
	Errors          int            `gorm:"column:errors;not null;default:0" json:"errors"`
	DurationMS      int            `gorm:"column:duration_ms;not null;default:0" json:"duration_ms"`
	ErrorDetails    datatypes.JSON `gorm:"column:error_details;type:jsonb" json:"error_details,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;default:now();index" json:"created_at"`
}

func (FeatureRun) TableName() string { return "feature_run" }
