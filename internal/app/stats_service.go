package app

import (
	"context"
	"time"

	zlog "github.com/rs/zerolog/log"
	"quiz-stats-service/internal/domain"
	"quiz-stats-service/internal/metrics"
)

// StatsService reads the event log and aggregates it into a report per request.
// Nothing is cached between calls.
type StatsService struct {
	source  EventSource
	workers int
}

func NewStatsService(source EventSource, workers int) *StatsService {
	return &StatsService{source: source, workers: workers}
}

// Report validates the range, fetches the full log and folds it.
// A fetch failure is returned as a *domain.UpstreamError.
func (s *StatsService) Report(ctx context.Context, rng domain.DateRange) (domain.Report, error) {
	if err := ValidateRange(rng); err != nil {
		metrics.StatsRequests.WithLabelValues(metrics.OutcomeValidation).Inc()
		return domain.Report{}, err
	}

	started := time.Now()
	rows, err := s.source.FetchAll(ctx)
	if err != nil {
		metrics.StatsRequests.WithLabelValues(metrics.OutcomeUpstream).Inc()
		zlog.Error().
			Str("start", rng.Start).
			Str("end", rng.End).
			Err(err).
			Msg("event log read failed")
		return domain.Report{}, &domain.UpstreamError{Err: err}
	}

	report, err := AggregatePartitioned(ctx, rng, rows, s.workers)
	if err != nil {
		metrics.StatsRequests.WithLabelValues(metrics.OutcomeUpstream).Inc()
		return domain.Report{}, err
	}

	metrics.StatsRowsScanned.Observe(float64(len(rows)))
	metrics.StatsDuration.Observe(time.Since(started).Seconds())
	metrics.StatsRequests.WithLabelValues(metrics.OutcomeOK).Inc()
	zlog.Debug().
		Str("start", rng.Start).
		Str("end", rng.End).
		Int("rows", len(rows)).
		Int("days", len(report.Daily)).
		Msg("report built")
	return report, nil
}
