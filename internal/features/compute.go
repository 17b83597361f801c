package features

import (
	"time"

	"github.com/google/uuid"

	"github.com/devjourney/feature-engine/internal/data/repos/activity"
	"github.com/devjourney/feature-engine/internal/domain"
	"github.com/devjourney/feature-engine/internal/platform/dbctx"
)

const (
	// Tutorials that apparently took longer than this are treated as left-open
	// sessions, not study time.
	maxTutorialHours = 500.0
	// Journey effort estimates outside (0, maxEstimateHours) are data-entry
	// noise and excluded from the duration ratio.
	maxEstimateHours = 1000
	secondsPerWeek   = 7 * 24 * 3600
	hoursPerDay      = 24
)

// Raw holds the 14 derived metrics before sanitization. Ratio metrics default
// to 0 when their denominator is empty; mean metrics stay nil when no row
// qualifies, because "no basis to estimate" and "measured zero" are different
// signals downstream.
type Raw struct {
	// Speed
	CompletionRate               *float64
	StudyDurationRatio           *float64
	AvgCompletionTimePerTutorial *float64
	ActiveDaysPercentage         *float64

	// Consistency
	LearningFrequencyPerWeek *float64
	AvgEnrollingTimes        *float64
	TotalStudyDays           int

	// Review / perfectionism
	RevisitRate         *float64
	RevisionRate        *float64
	AvgSubmissionRating *float64
	QuizRetakeRate      *float64

	// Performance
	AvgExamScore     *float64
	ExamPassRate     *float64
	TotalSubmissions int
}

// computeRaw fetches the user's activity through the repos and folds it into
// the metric set. Must run inside the same transaction as the sufficiency
// check so both observe one snapshot.
func (s *Service) computeRaw(dbc dbctx.Context, userID uuid.UUID, suff Sufficiency) (Raw, error) {
	trackings, err := s.trackings.ListByUser(dbc, userID)
	if err != nil {
		return Raw{}, err
	}
	completions, err := s.completions.ListWithEstimates(dbc, userID)
	if err != nil {
		return Raw{}, err
	}
	submissions, err := s.submissions.ListByUser(dbc, userID)
	if err != nil {
		return Raw{}, err
	}
	examRows, err := s.exams.ListResultRows(dbc, userID)
	if err != nil {
		return Raw{}, err
	}
	return compute(suff, trackings, completions, submissions, examRows), nil
}

// compute is the pure fold over the fetched rows. Each metric is independent.
func compute(
	suff Sufficiency,
	trackings []*domain.JourneyTracking,
	completions []*activity.CompletionRow,
	submissions []*domain.Submission,
	examRows []*activity.ExamResultRow,
) Raw {
	first, last := activityWindow(trackings)
	studyDays := distinctStudyDays(trackings)

	avgScore, passRate, retakeRate := examStats(examRows)

	return Raw{
		CompletionRate:               f64(completionRate(suff.JourneysStarted, suff.JourneysCompleted)),
		StudyDurationRatio:           studyDurationRatio(completions),
		AvgCompletionTimePerTutorial: avgCompletionTime(trackings),
		ActiveDaysPercentage:         f64(activeDaysPercentage(studyDays, first, last)),

		LearningFrequencyPerWeek: f64(learningFrequencyPerWeek(studyDays, first, last)),
		AvgEnrollingTimes:        avgEnrollingTimes(completions),
		TotalStudyDays:           studyDays,

		RevisitRate:         f64(revisitRate(trackings)),
		RevisionRate:        f64(revisionRate(submissions)),
		AvgSubmissionRating: avgSubmissionRating(submissions),
		QuizRetakeRate:      f64(retakeRate),

		AvgExamScore:     avgScore,
		ExamPassRate:     f64(passRate),
		TotalSubmissions: len(submissions),
	}
}

func completionRate(started, completed int) float64 {
	if started == 0 {
		return 0
	}
	return float64(completed) / float64(started)
}

// activityWindow returns the earliest first-open and the latest view across
// the user's tracking records.
func activityWindow(rows []*domain.JourneyTracking) (first, last *time.Time) {
	for _, r := range rows {
		if r.FirstOpenedAt != nil && (first == nil || r.FirstOpenedAt.Before(*first)) {
			first = r.FirstOpenedAt
		}
		if r.LastViewed != nil && (last == nil || r.LastViewed.After(*last)) {
			last = r.LastViewed
		}
	}
	return first, last
}

func distinctStudyDays(rows []*domain.JourneyTracking) int {
	days := map[string]struct{}{}
	for _, r := range rows {
		if r.LastViewed == nil {
			continue
		}
		days[r.LastViewed.UTC().Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}

func activeDaysPercentage(studyDays int, first, last *time.Time) float64 {
	if studyDays == 0 || first == nil || last == nil {
		return 0
	}
	spanDays := int(last.Sub(*first).Hours() / hoursPerDay)
	denom := spanDays + 1
	if denom <= 0 {
		return 0
	}
	return float64(studyDays) / float64(denom)
}

func learningFrequencyPerWeek(studyDays int, first, last *time.Time) float64 {
	if studyDays == 0 || first == nil || last == nil {
		return 0
	}
	weeks := last.Sub(*first).Seconds() / secondsPerWeek
	if weeks <= 0 {
		return 0
	}
	return float64(studyDays) / weeks
}

// avgCompletionTime averages open-to-completion elapsed hours over tutorials
// that were actually completed after being opened, ignoring outliers above
// maxTutorialHours.
func avgCompletionTime(rows []*domain.JourneyTracking) *float64 {
	var sum float64
	var n int
	for _, r := range rows {
		if r.CompletedAt == nil || r.FirstOpenedAt == nil {
			continue
		}
		if !r.CompletedAt.After(*r.FirstOpenedAt) {
			continue
		}
		hours := r.CompletedAt.Sub(*r.FirstOpenedAt).Hours()
		if hours >= maxTutorialHours {
			continue
		}
		sum += hours
		n++
	}
	if n == 0 {
		return nil
	}
	return f64(sum / float64(n))
}

func revisitRate(rows []*domain.JourneyTracking) float64 {
	var completed, revisited int
	for _, r := range rows {
		if r.CompletedAt == nil {
			continue
		}
		completed++
		if r.LastViewed != nil && r.LastViewed.After(*r.CompletedAt) {
			revisited++
		}
	}
	if completed == 0 {
		return 0
	}
	return float64(revisited) / float64(completed)
}

func studyDurationRatio(rows []*activity.CompletionRow) *float64 {
	var sum float64
	var n int
	for _, r := range rows {
		if r.HoursToStudy == nil || *r.HoursToStudy <= 0 || *r.HoursToStudy >= maxEstimateHours {
			continue
		}
		sum += float64(r.StudyDuration) / float64(*r.HoursToStudy)
		n++
	}
	if n == 0 {
		return nil
	}
	return f64(sum / float64(n))
}

func avgEnrollingTimes(rows []*activity.CompletionRow) *float64 {
	if len(rows) == 0 {
		return nil
	}
	var sum float64
	for _, r := range rows {
		sum += float64(r.EnrollingTimes)
	}
	return f64(sum / float64(len(rows)))
}

// revisionRate is the share of distinct quizzes with at least one submission
// past the first version.
func revisionRate(rows []*domain.Submission) float64 {
	quizzes := map[uuid.UUID]struct{}{}
	revised := map[uuid.UUID]struct{}{}
	for _, r := range rows {
		quizzes[r.QuizID] = struct{}{}
		if r.VersionID > 1 {
			revised[r.QuizID] = struct{}{}
		}
	}
	if len(quizzes) == 0 {
		return 0
	}
	return float64(len(revised)) / float64(len(quizzes))
}

func avgSubmissionRating(rows []*domain.Submission) *float64 {
	var sum float64
	var n int
	for _, r := range rows {
		if r.Rating <= 0 {
			continue
		}
		sum += float64(r.Rating)
		n++
	}
	if n == 0 {
		return nil
	}
	return f64(sum / float64(n))
}

// examStats folds the joined result rows once. The retake denominator is the
// number of distinct tutorials with exam activity, matching how the upstream
// platform counts retakes.
func examStats(rows []*activity.ExamResultRow) (avgScore *float64, passRate, retakeRate float64) {
	var scoreSum float64
	var passed, retaken int
	tutorials := map[uuid.UUID]struct{}{}
	for _, r := range rows {
		scoreSum += r.Score
		if r.IsPassed {
			passed++
		}
		if r.Retaken {
			retaken++
		}
		tutorials[r.TutorialID] = struct{}{}
	}
	if len(rows) > 0 {
		avgScore = f64(scoreSum / float64(len(rows)))
		passRate = float64(passed) / float64(len(rows))
	}
	if len(tutorials) > 0 {
		retakeRate = float64(retaken) / float64(len(tutorials))
	}
	return avgScore, passRate, retakeRate
}

func f64(v float64) *float64 { return &v }
