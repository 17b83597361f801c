package domain

import (
	"time"

	"github.com/google/uuid"
)

// Journey is a structured learning path with an effort estimate. Owned by the
// upstream platform, read-only here.
type Journey struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name         string    `gorm:"column:name" json:"name"`
	HoursToStudy int       `gorm:"column:hours_to_study" json:"hours_to_study"`
	CreatedAt    time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Journey) TableName() string { return "journey" }

// JourneyTracking is one row per (user, journey, tutorial) interaction. The
// three timestamps are all nullable in the source data.
type JourneyTracking struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	JourneyID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"journey_id"`
	TutorialID    uuid.UUID  `gorm:"type:uuid;index" json:"tutorial_id"`
	FirstOpenedAt *time.Time `gorm:"column:first_opened_at" json:"first_opened_at,omitempty"`
	LastViewed    *time.Time `gorm:"column:last_viewed" json:"last_viewed,omitempty"`
	CompletedAt   *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
}

func (JourneyTracking) TableName() string { return "journey_tracking" }

// JourneyCompletion marks a finished journey. StudyDuration is realized hours,
// EnrollingTimes counts repeat enrollments of the same journey.
type JourneyCompletion struct {
	ID             uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID         uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	JourneyID      uuid.UUID `gorm:"type:uuid;not null;index" json:"journey_id"`
	StudyDuration  int       `gorm:"column:study_duration" json:"study_duration"`
	EnrollingTimes int       `gorm:"column:enrolling_times;not null;default:0" json:"enrolling_times"`
	CreatedAt      time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (JourneyCompletion) TableName() string { return "journey_completion" }
