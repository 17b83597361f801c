package features

import (
	"math"
	"testing"
)

func TestSanitizeCapsFrequency(t *testing.T) {
	raw := Raw{LearningFrequencyPerWeek: f64(9.3)}
	clean, events := Sanitize(raw)

	if clean.LearningFrequencyPerWeek == nil || *clean.LearningFrequencyPerWeek != 7.0 {
		t.Fatalf("got %v, want 7.0", clean.LearningFrequencyPerWeek)
	}
	var found bool
	for _, ev := range events {
		if ev.Field == FieldLearningFrequencyPerWeek {
			found = true
			if ev.From != 9.3 || ev.To != 7.0 {
				t.Fatalf("clamp event: got %+v, want 9.3 -> 7.0", ev)
			}
		}
	}
	if !found {
		t.Fatal("expected a clamp event for learning_frequency_per_week")
	}
}

func TestSanitizeClampsRates(t *testing.T) {
	raw := Raw{
		CompletionRate: f64(1.2),
		RevisitRate:    f64(-0.1),
		ExamPassRate:   f64(0.8),
	}
	clean, events := Sanitize(raw)

	if *clean.CompletionRate != 1.0 {
		t.Fatalf("completion_rate: got %v, want 1.0", *clean.CompletionRate)
	}
	if *clean.RevisitRate != 0.0 {
		t.Fatalf("revisit_rate: got %v, want 0.0", *clean.RevisitRate)
	}
	if *clean.ExamPassRate != 0.8 {
		t.Fatalf("exam_pass_rate: got %v, want unchanged 0.8", *clean.ExamPassRate)
	}
	if len(events) != 2 {
		t.Fatalf("got %d clamp events, want 2", len(events))
	}
}

func TestSanitizeScorePreservesNull(t *testing.T) {
	clean, events := Sanitize(Raw{AvgExamScore: nil})
	if clean.AvgExamScore != nil {
		t.Fatalf("got %v, want nil", *clean.AvgExamScore)
	}
	if len(events) != 0 {
		t.Fatalf("got %d clamp events, want 0", len(events))
	}

	clean, _ = Sanitize(Raw{AvgExamScore: f64(150)})
	if clean.AvgExamScore == nil || *clean.AvgExamScore != 100 {
		t.Fatalf("got %v, want 100", clean.AvgExamScore)
	}
}

func TestSanitizeNullRatesBecomeZero(t *testing.T) {
	clean, events := Sanitize(Raw{})

	for name, v := range map[string]*float64{
		"completion_rate":             clean.CompletionRate,
		"active_days_percentage":      clean.ActiveDaysPercentage,
		"learning_frequency_per_week": clean.LearningFrequencyPerWeek,
		"revisit_rate":                clean.RevisitRate,
		"revision_rate":               clean.RevisionRate,
		"quiz_retake_rate":            clean.QuizRetakeRate,
		"exam_pass_rate":              clean.ExamPassRate,
	} {
		if v == nil || *v != 0 {
			t.Fatalf("%s: got %v, want 0", name, v)
		}
	}
	// Defaulting a missing value is not a clamp.
	if len(events) != 0 {
		t.Fatalf("got %d clamp events, want 0", len(events))
	}
}

func TestSanitizeUnconstrainedPassThrough(t *testing.T) {
	raw := Raw{
		StudyDurationRatio:           f64(3.5),
		AvgCompletionTimePerTutorial: f64(480.0),
		AvgEnrollingTimes:            f64(12.0),
	}
	clean, events := Sanitize(raw)

	if *clean.StudyDurationRatio != 3.5 || *clean.AvgCompletionTimePerTutorial != 480.0 || *clean.AvgEnrollingTimes != 12.0 {
		t.Fatal("unconstrained metrics must pass through untouched")
	}
	if clean.AvgSubmissionRating != nil {
		t.Fatal("missing unconstrained metric must stay nil")
	}
	if len(events) != 0 {
		t.Fatalf("got %d clamp events, want 0", len(events))
	}
}

func TestSanitizeNegativeCounts(t *testing.T) {
	clean, _ := Sanitize(Raw{TotalStudyDays: -3, TotalSubmissions: -1})
	if clean.TotalStudyDays != 0 || clean.TotalSubmissions != 0 {
		t.Fatalf("got days=%d submissions=%d, want 0/0", clean.TotalStudyDays, clean.TotalSubmissions)
	}
}

func TestSanitizeIsPure(t *testing.T) {
	raw := Raw{LearningFrequencyPerWeek: f64(9.3)}
	_, _ = Sanitize(raw)
	if math.Abs(*raw.LearningFrequencyPerWeek-9.3) > 1e-9 {
		t.Fatalf("input mutated: got %v, want 9.3", *raw.LearningFrequencyPerWeek)
	}
}

func TestFilledCountBounds(t *testing.T) {
	// Counts are always filled, so the floor is 2.
	if got := FilledCount(Raw{}); got != 2 {
		t.Fatalf("empty: got %d, want 2", got)
	}

	full, _ := Sanitize(Raw{
		StudyDurationRatio:           f64(1),
		AvgCompletionTimePerTutorial: f64(1),
		AvgEnrollingTimes:            f64(1),
		AvgSubmissionRating:          f64(1),
		AvgExamScore:                 f64(1),
	})
	if got := FilledCount(full); got != 14 {
		t.Fatalf("full: got %d, want 14", got)
	}

	// After sanitization the rate metrics are always present, so a user with
	// no mean metrics still fills nine of fourteen.
	sparse, _ := Sanitize(Raw{})
	if got := FilledCount(sparse); got != 9 {
		t.Fatalf("sparse sanitized: got %d, want 9", got)
	}
}
