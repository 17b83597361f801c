package domain

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one quiz attempt. VersionID > 1 means the attempt is a
// revision of an earlier submission for the same quiz.
type Submission struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	JourneyID uuid.UUID `gorm:"type:uuid;index" json:"journey_id"`
	QuizID    uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	VersionID int       `gorm:"column:version_id;not null;default:1" json:"version_id"`
	Rating    int       `gorm:"column:rating" json:"rating"`
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (Submission) TableName() string { return "submission" }
