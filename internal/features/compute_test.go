package features

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/devjourney/feature-engine/internal/data/repos/activity"
	"github.com/devjourney/feature-engine/internal/domain"
)

func tp(t time.Time) *time.Time { return &t }

func day(d int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func almostEqual(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Fatalf("%s: got nil, want %v", name, want)
	}
	if math.Abs(*got-want) > 1e-9 {
		t.Fatalf("%s: got %v, want %v", name, *got, want)
	}
}

func TestComputeEmptyActivity(t *testing.T) {
	raw := compute(Sufficiency{Eligible: true, JourneysStarted: 1, JourneysCompleted: 1}, nil, nil, nil, nil)

	almostEqual(t, "completion_rate", raw.CompletionRate, 1.0)
	almostEqual(t, "active_days_percentage", raw.ActiveDaysPercentage, 0)
	almostEqual(t, "learning_frequency_per_week", raw.LearningFrequencyPerWeek, 0)
	almostEqual(t, "revisit_rate", raw.RevisitRate, 0)
	almostEqual(t, "revision_rate", raw.RevisionRate, 0)
	almostEqual(t, "quiz_retake_rate", raw.QuizRetakeRate, 0)
	almostEqual(t, "exam_pass_rate", raw.ExamPassRate, 0)

	if raw.StudyDurationRatio != nil {
		t.Fatalf("study_duration_ratio: got %v, want nil", *raw.StudyDurationRatio)
	}
	if raw.AvgCompletionTimePerTutorial != nil {
		t.Fatalf("avg_completion_time_per_tutorial: got %v, want nil", *raw.AvgCompletionTimePerTutorial)
	}
	if raw.AvgEnrollingTimes != nil {
		t.Fatalf("avg_enrolling_times: got %v, want nil", *raw.AvgEnrollingTimes)
	}
	if raw.AvgSubmissionRating != nil {
		t.Fatalf("avg_submission_rating: got %v, want nil", *raw.AvgSubmissionRating)
	}
	if raw.AvgExamScore != nil {
		t.Fatalf("avg_exam_score: got %v, want nil", *raw.AvgExamScore)
	}
	if raw.TotalStudyDays != 0 || raw.TotalSubmissions != 0 {
		t.Fatalf("counts: got days=%d submissions=%d, want 0/0", raw.TotalStudyDays, raw.TotalSubmissions)
	}
}

func TestCompletionRate(t *testing.T) {
	if got := completionRate(5, 3); math.Abs(got-0.6) > 1e-9 {
		t.Fatalf("got %v, want 0.6", got)
	}
	if got := completionRate(0, 0); got != 0 {
		t.Fatalf("zero denominator: got %v, want 0", got)
	}
}

func TestActivityWindowMetrics(t *testing.T) {
	// Three distinct study days over a nine day span.
	trackings := []*domain.JourneyTracking{
		{FirstOpenedAt: tp(day(0)), LastViewed: tp(day(0))},
		{FirstOpenedAt: tp(day(1)), LastViewed: tp(day(4))},
		{FirstOpenedAt: tp(day(2)), LastViewed: tp(day(9))},
		{LastViewed: tp(day(4).Add(3 * time.Hour))}, // same calendar day as above
	}

	if got := distinctStudyDays(trackings); got != 3 {
		t.Fatalf("distinct study days: got %d, want 3", got)
	}

	first, last := activityWindow(trackings)
	if first == nil || !first.Equal(day(0)) {
		t.Fatalf("window start: got %v, want %v", first, day(0))
	}
	if last == nil || !last.Equal(day(9)) {
		t.Fatalf("window end: got %v, want %v", last, day(9))
	}

	// 9 full days between first and last, inclusive denominator of 10.
	if got := activeDaysPercentage(3, first, last); math.Abs(got-0.3) > 1e-9 {
		t.Fatalf("active days percentage: got %v, want 0.3", got)
	}

	weeks := day(9).Sub(day(0)).Seconds() / secondsPerWeek
	want := 3 / weeks
	if got := learningFrequencyPerWeek(3, first, last); math.Abs(got-want) > 1e-9 {
		t.Fatalf("learning frequency: got %v, want %v", got, want)
	}
}

func TestSingleDayWindow(t *testing.T) {
	first := tp(day(0).Add(9 * time.Hour))
	last := tp(day(0).Add(11 * time.Hour))

	// Span shorter than a day still counts as one active day out of one.
	if got := activeDaysPercentage(1, first, last); math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("active days percentage: got %v, want 1.0", got)
	}
	// The sub-week window inflates the weekly frequency; sanitization caps it.
	if got := learningFrequencyPerWeek(1, first, last); got <= 7 {
		t.Fatalf("learning frequency: got %v, want > 7 before sanitization", got)
	}
}

func TestAvgCompletionTime(t *testing.T) {
	trackings := []*domain.JourneyTracking{
		{FirstOpenedAt: tp(day(0)), CompletedAt: tp(day(0).Add(2 * time.Hour))},
		{FirstOpenedAt: tp(day(0)), CompletedAt: tp(day(0).Add(600 * time.Hour))}, // outlier, dropped
		{FirstOpenedAt: tp(day(1)), CompletedAt: tp(day(0))},                      // completed before open, dropped
		{FirstOpenedAt: tp(day(2))},                                               // never completed
		{CompletedAt: tp(day(3))},                                                 // never opened
	}
	almostEqual(t, "avg_completion_time", avgCompletionTime(trackings), 2.0)

	if got := avgCompletionTime(nil); got != nil {
		t.Fatalf("no qualifying rows: got %v, want nil", *got)
	}
}

func TestRevisitRate(t *testing.T) {
	trackings := []*domain.JourneyTracking{
		{CompletedAt: tp(day(1)), LastViewed: tp(day(3))}, // revisited
		{CompletedAt: tp(day(2)), LastViewed: tp(day(2))}, // not after completion
		{LastViewed: tp(day(5))},                          // never completed, excluded
	}
	if got := revisitRate(trackings); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("got %v, want 0.5", got)
	}
}

func TestStudyDurationRatio(t *testing.T) {
	twenty, fifteen, zero, huge := 20, 15, 0, 2000
	rows := []*activity.CompletionRow{
		{StudyDuration: 10, HoursToStudy: &twenty},  // 0.5
		{StudyDuration: 30, HoursToStudy: &fifteen}, // 2.0
		{StudyDuration: 40, HoursToStudy: nil},      // no estimate
		{StudyDuration: 40, HoursToStudy: &zero},    // invalid estimate
		{StudyDuration: 40, HoursToStudy: &huge},    // implausible estimate
	}
	almostEqual(t, "study_duration_ratio", studyDurationRatio(rows), 1.25)

	if got := studyDurationRatio(nil); got != nil {
		t.Fatalf("no estimates: got %v, want nil", *got)
	}
}

func TestAvgEnrollingTimes(t *testing.T) {
	rows := []*activity.CompletionRow{
		{EnrollingTimes: 1},
		{EnrollingTimes: 3},
	}
	almostEqual(t, "avg_enrolling_times", avgEnrollingTimes(rows), 2.0)

	if got := avgEnrollingTimes(nil); got != nil {
		t.Fatalf("no completions: got %v, want nil", *got)
	}
}

func TestRevisionRate(t *testing.T) {
	quizA, quizB := uuid.New(), uuid.New()
	subs := []*domain.Submission{
		{QuizID: quizA, VersionID: 1},
		{QuizID: quizA, VersionID: 2},
		{QuizID: quizB, VersionID: 1},
	}
	if got := revisionRate(subs); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("got %v, want 0.5", got)
	}
}

func TestAvgSubmissionRating(t *testing.T) {
	subs := []*domain.Submission{
		{QuizID: uuid.New(), Rating: 4},
		{QuizID: uuid.New(), Rating: 5},
		{QuizID: uuid.New(), Rating: 0}, // unrated, excluded
	}
	almostEqual(t, "avg_submission_rating", avgSubmissionRating(subs), 4.5)

	unrated := []*domain.Submission{{QuizID: uuid.New(), Rating: 0}}
	if got := avgSubmissionRating(unrated); got != nil {
		t.Fatalf("only unrated: got %v, want nil", *got)
	}
}

func TestExamStats(t *testing.T) {
	tut1, tut2 := uuid.New(), uuid.New()
	rows := []*activity.ExamResultRow{
		{Score: 80, IsPassed: true, TutorialID: tut1},
		{Score: 60, IsPassed: false, TutorialID: tut1, Retaken: true},
		{Score: 90, IsPassed: true, TutorialID: tut2},
	}
	avgScore, passRate, retakeRate := examStats(rows)

	almostEqual(t, "avg_exam_score", avgScore, 230.0/3)
	if math.Abs(passRate-2.0/3) > 1e-9 {
		t.Fatalf("pass rate: got %v, want 2/3", passRate)
	}
	if math.Abs(retakeRate-0.5) > 1e-9 {
		t.Fatalf("retake rate: got %v, want 0.5", retakeRate)
	}

	avgScore, passRate, retakeRate = examStats(nil)
	if avgScore != nil || passRate != 0 || retakeRate != 0 {
		t.Fatalf("no exams: got %v/%v/%v, want nil/0/0", avgScore, passRate, retakeRate)
	}
}

func TestComputeFoldsAllGroups(t *testing.T) {
	suff := Sufficiency{Eligible: true, JourneysStarted: 5, JourneysCompleted: 3}
	trackings := []*domain.JourneyTracking{
		{FirstOpenedAt: tp(day(0)), LastViewed: tp(day(0).Add(time.Hour)), CompletedAt: tp(day(0).Add(time.Hour))},
		{FirstOpenedAt: tp(day(3)), LastViewed: tp(day(6))},
	}
	twenty := 20
	completions := []*activity.CompletionRow{
		{StudyDuration: 10, HoursToStudy: &twenty, EnrollingTimes: 1},
	}
	subs := []*domain.Submission{
		{QuizID: uuid.New(), VersionID: 1, Rating: 4},
	}
	exams := []*activity.ExamResultRow{
		{Score: 75, IsPassed: true, TutorialID: uuid.New()},
	}

	raw := compute(suff, trackings, completions, subs, exams)

	almostEqual(t, "completion_rate", raw.CompletionRate, 0.6)
	almostEqual(t, "study_duration_ratio", raw.StudyDurationRatio, 0.5)
	almostEqual(t, "avg_completion_time", raw.AvgCompletionTimePerTutorial, 1.0)
	almostEqual(t, "avg_enrolling_times", raw.AvgEnrollingTimes, 1.0)
	almostEqual(t, "revisit_rate", raw.RevisitRate, 0)
	almostEqual(t, "revision_rate", raw.RevisionRate, 0)
	almostEqual(t, "avg_submission_rating", raw.AvgSubmissionRating, 4.0)
	almostEqual(t, "avg_exam_score", raw.AvgExamScore, 75.0)
	almostEqual(t, "exam_pass_rate", raw.ExamPassRate, 1.0)
	if raw.TotalStudyDays != 2 {
		t.Fatalf("total_study_days: got %d, want 2", raw.TotalStudyDays)
	}
	if raw.TotalSubmissions != 1 {
		t.Fatalf("total_submissions: got %d, want 1", raw.TotalSubmissions)
	}
}
