package features

import (
	"github.com/google/uuid"

	"github.com/devjourney/feature-engine/internal/platform/dbctx"
)

// Sufficiency is the outcome of the minimum-history gate. A user qualifies
// once at least one journey is completed; anything less produces features too
// sparse for the downstream model.
type Sufficiency struct {
	Eligible          bool
	JourneysStarted   int
	JourneysCompleted int
}

func (s *Service) checkSufficiency(dbc dbctx.Context, userID uuid.UUID) (Sufficiency, error) {
	started, err := s.trackings.CountDistinctJourneys(dbc, userID)
	if err != nil {
		return Sufficiency{}, err
	}
	completed, err := s.completions.CountDistinctJourneys(dbc, userID)
	if err != nil {
		return Sufficiency{}, err
	}
	return Sufficiency{
		Eligible:          completed >= 1,
		JourneysStarted:   started,
		JourneysCompleted: completed,
	}, nil
}
