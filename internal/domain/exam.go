package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ExamRegistration schedules an assessment attempt for a tutorial. The
// upstream platform soft-deletes a registration when the exam is retaken, so
// a non-null deleted_at doubles as the retake marker.
type ExamRegistration struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	TutorialID uuid.UUID      `gorm:"type:uuid;not null;index" json:"tutorial_id"`
	CreatedAt  time.Time      `gorm:"not null;default:now()" json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ExamRegistration) TableName() string { return "exam_registration" }

type ExamResult struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ExamRegistrationID uuid.UUID `gorm:"type:uuid;not null;index" json:"exam_registration_id"`
	TotalQuestions     int       `gorm:"column:total_questions" json:"total_questions"`
	Score              float64   `gorm:"column:score" json:"score"`
	IsPassed           bool      `gorm:"column:is_passed;not null;default:false" json:"is_passed"`
	CreatedAt          time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ExamResult) TableName() string { return "exam_result" }
