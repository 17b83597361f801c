package features

// Field names the 14 metrics as stored in learner_feature.
type Field string

const (
	FieldCompletionRate               Field = "completion_rate"
	FieldStudyDurationRatio           Field = "study_duration_ratio"
	FieldAvgCompletionTimePerTutorial Field = "avg_completion_time_per_tutorial"
	FieldActiveDaysPercentage         Field = "active_days_percentage"
	FieldLearningFrequencyPerWeek     Field = "learning_frequency_per_week"
	FieldAvgEnrollingTimes            Field = "avg_enrolling_times"
	FieldTotalStudyDays               Field = "total_study_days"
	FieldRevisitRate                  Field = "revisit_rate"
	FieldRevisionRate                 Field = "revision_rate"
	FieldAvgSubmissionRating          Field = "avg_submission_rating"
	FieldQuizRetakeRate               Field = "quiz_retake_rate"
	FieldAvgExamScore                 Field = "avg_exam_score"
	FieldExamPassRate                 Field = "exam_pass_rate"
	FieldTotalSubmissions             Field = "total_submissions"
)

// Kind drives the sanitization rule for a field. Classification is an
// explicit table, never name matching: a future field named e.g.
// "rate_limit_window" must not silently inherit the [0,1] clamp.
type Kind int

const (
	// KindRate and KindPercentage live in [0,1]; missing means 0.
	KindRate Kind = iota
	KindPercentage
	// KindFrequency is days-per-week, capped at 7; missing means 0.
	KindFrequency
	// KindScore lives in [0,100]; missing stays missing.
	KindScore
	// KindCount is a non-negative integer; missing means 0.
	KindCount
	// KindUnconstrained means with no natural bound; missing stays missing.
	KindUnconstrained
)

// fieldKinds is the exhaustive classification of all 14 metrics.
var fieldKinds = map[Field]Kind{
	FieldCompletionRate:               KindRate,
	FieldStudyDurationRatio:           KindUnconstrained,
	FieldAvgCompletionTimePerTutorial: KindUnconstrained,
	FieldActiveDaysPercentage:         KindPercentage,
	FieldLearningFrequencyPerWeek:     KindFrequency,
	FieldAvgEnrollingTimes:            KindUnconstrained,
	FieldTotalStudyDays:               KindCount,
	FieldRevisitRate:                  KindRate,
	FieldRevisionRate:                 KindRate,
	FieldAvgSubmissionRating:          KindUnconstrained,
	FieldQuizRetakeRate:               KindRate,
	FieldAvgExamScore:                 KindScore,
	FieldExamPassRate:                 KindRate,
	FieldTotalSubmissions:             KindCount,
}

const maxDaysPerWeek = 7.0

// ClampEvent records a value pulled back into its valid domain; the pipeline
// logs each one as a warning.
type ClampEvent struct {
	Field Field
	From  float64
	To    float64
}

// Sanitize normalizes computed metrics to their valid domains. Pure function:
// the input is not mutated.
func Sanitize(raw Raw) (Raw, []ClampEvent) {
	out := raw
	var events []ClampEvent

	out.CompletionRate = sanitizeField(FieldCompletionRate, raw.CompletionRate, &events)
	out.StudyDurationRatio = sanitizeField(FieldStudyDurationRatio, raw.StudyDurationRatio, &events)
	out.AvgCompletionTimePerTutorial = sanitizeField(FieldAvgCompletionTimePerTutorial, raw.AvgCompletionTimePerTutorial, &events)
	out.ActiveDaysPercentage = sanitizeField(FieldActiveDaysPercentage, raw.ActiveDaysPercentage, &events)
	out.LearningFrequencyPerWeek = sanitizeField(FieldLearningFrequencyPerWeek, raw.LearningFrequencyPerWeek, &events)
	out.AvgEnrollingTimes = sanitizeField(FieldAvgEnrollingTimes, raw.AvgEnrollingTimes, &events)
	out.RevisitRate = sanitizeField(FieldRevisitRate, raw.RevisitRate, &events)
	out.RevisionRate = sanitizeField(FieldRevisionRate, raw.RevisionRate, &events)
	out.AvgSubmissionRating = sanitizeField(FieldAvgSubmissionRating, raw.AvgSubmissionRating, &events)
	out.QuizRetakeRate = sanitizeField(FieldQuizRetakeRate, raw.QuizRetakeRate, &events)
	out.AvgExamScore = sanitizeField(FieldAvgExamScore, raw.AvgExamScore, &events)
	out.ExamPassRate = sanitizeField(FieldExamPassRate, raw.ExamPassRate, &events)

	if out.TotalStudyDays < 0 {
		out.TotalStudyDays = 0
	}
	if out.TotalSubmissions < 0 {
		out.TotalSubmissions = 0
	}

	return out, events
}

func sanitizeField(f Field, v *float64, events *[]ClampEvent) *float64 {
	switch fieldKinds[f] {
	case KindRate, KindPercentage:
		if v == nil {
			return f64(0)
		}
		return clamp(f, *v, 0, 1, events)
	case KindFrequency:
		if v == nil {
			return f64(0)
		}
		return clamp(f, *v, 0, maxDaysPerWeek, events)
	case KindScore:
		if v == nil {
			return nil
		}
		return clamp(f, *v, 0, 100, events)
	default:
		return v
	}
}

func clamp(f Field, v, lo, hi float64, events *[]ClampEvent) *float64 {
	switch {
	case v > hi:
		*events = append(*events, ClampEvent{Field: f, From: v, To: hi})
		return f64(hi)
	case v < lo:
		*events = append(*events, ClampEvent{Field: f, From: v, To: lo})
		return f64(lo)
	default:
		return f64(v)
	}
}

// FilledCount reports how many of the 14 metrics carry a numeric value after
// sanitization. Count metrics are always filled.
func FilledCount(r Raw) int {
	filled := 2 // TotalStudyDays, TotalSubmissions
	for _, v := range []*float64{
		r.CompletionRate,
		r.StudyDurationRatio,
		r.AvgCompletionTimePerTutorial,
		r.ActiveDaysPercentage,
		r.LearningFrequencyPerWeek,
		r.AvgEnrollingTimes,
		r.RevisitRate,
		r.RevisionRate,
		r.AvgSubmissionRating,
		r.QuizRetakeRate,
		r.AvgExamScore,
		r.ExamPassRate,
	} {
		if v != nil {
			filled++
		}
	}
	return filled
}
