package app

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
	"quiz-stats-service/internal/domain"
)

// tally counts answers for one question. total always equals correct+wrong.
type tally struct {
	correct int
	wrong   int
	total   int
}

// DeriveRates returns the correct rate and its complement for a non-empty tally.
// The wrong rate is defined as 1 - rateCorrect, not wrong/total.
func DeriveRates(correct, total int) (rateCorrect, rateWrong float64) {
	if total == 0 {
		return 0, 0
	}
	rateCorrect = float64(correct) / float64(total)
	return rateCorrect, 1 - rateCorrect
}

type bucket struct {
	sessions map[string]struct{}
	served   map[domain.QuestionID]int
	answers  map[domain.QuestionID]tally
	success  int
	failure  int
}

func newBucket() *bucket {
	return &bucket{
		sessions: make(map[string]struct{}),
		served:   make(map[domain.QuestionID]int),
		answers:  make(map[domain.QuestionID]tally),
	}
}

func (b *bucket) add(e domain.Event) {
	switch e.Type {
	case domain.EventStart:
		b.sessions[e.SessionID] = struct{}{}
	case domain.EventServed:
		if e.QuestionID.Present() {
			b.served[e.QuestionID]++
		}
	case domain.EventAnswer:
		if !e.QuestionID.Present() {
			return
		}
		t := b.answers[e.QuestionID]
		t.total++
		if e.Correct == domain.AnsweredCorrect {
			t.correct++
		} else {
			t.wrong++
		}
		b.answers[e.QuestionID] = t
	case domain.EventFinish:
		switch e.Result {
		case domain.ResultSuccess:
			b.success++
		case domain.ResultFailure:
			b.failure++
		}
	}
}

func (b *bucket) merge(o *bucket) {
	for id := range o.sessions {
		b.sessions[id] = struct{}{}
	}
	for q, n := range o.served {
		b.served[q] += n
	}
	for q, ot := range o.answers {
		t := b.answers[q]
		t.correct += ot.correct
		t.wrong += ot.wrong
		t.total += ot.total
		b.answers[q] = t
	}
	b.success += o.success
	b.failure += o.failure
}

func (b *bucket) stats() domain.BucketStats {
	out := domain.BucketStats{
		Participants: len(b.sessions),
		Served:       make(map[domain.QuestionID]int, len(b.served)),
		Answers:      make(map[domain.QuestionID]domain.AnswerStats, len(b.answers)),
		Success:      b.success,
		Failure:      b.failure,
	}
	for q, n := range b.served {
		out.Served[q] = n
	}
	for q, t := range b.answers {
		if t.total == 0 {
			continue
		}
		rateCorrect, rateWrong := DeriveRates(t.correct, t.total)
		out.Answers[q] = domain.AnswerStats{
			Correct:     t.correct,
			Wrong:       t.wrong,
			Total:       t.total,
			RateCorrect: rateCorrect,
			RateWrong:   rateWrong,
		}
	}
	return out
}

// accumulator is the fold state of one aggregation call.
type accumulator struct {
	rng     domain.DateRange
	daily   map[string]*bucket
	overall *bucket
}

func newAccumulator(rng domain.DateRange) *accumulator {
	return &accumulator{
		rng:     rng,
		daily:   make(map[string]*bucket),
		overall: newBucket(),
	}
}

func (a *accumulator) fold(rows []domain.Row) {
	for _, row := range rows {
		event, ok := domain.ParseRow(row)
		if !ok || !a.rng.Contains(event.DateKey) {
			continue
		}
		day, ok := a.daily[event.DateKey]
		if !ok {
			day = newBucket()
			a.daily[event.DateKey] = day
		}
		day.add(event)
		a.overall.add(event)
	}
}

func (a *accumulator) merge(o *accumulator) {
	for date, ob := range o.daily {
		day, ok := a.daily[date]
		if !ok {
			day = newBucket()
			a.daily[date] = day
		}
		day.merge(ob)
	}
	a.overall.merge(o.overall)
}

func (a *accumulator) report() domain.Report {
	daily := make([]domain.DailyStats, 0, len(a.daily))
	for date, b := range a.daily {
		daily = append(daily, domain.DailyStats{Date: date, BucketStats: b.stats()})
	}
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })
	return domain.Report{
		Range:   a.rng,
		Daily:   daily,
		Overall: a.overall.stats(),
	}
}

// ValidateRange rejects a range with a missing bound.
func ValidateRange(rng domain.DateRange) error {
	if rng.Start == "" || rng.End == "" {
		return domain.ErrValidation("start/end required (YYYY-MM-DD)")
	}
	return nil
}

// Aggregate folds raw log rows into daily and overall statistics for rng.
// Row order does not affect the result; rows that cannot be parsed are skipped.
func Aggregate(rng domain.DateRange, rows []domain.Row) (domain.Report, error) {
	if err := ValidateRange(rng); err != nil {
		return domain.Report{}, err
	}
	acc := newAccumulator(rng)
	acc.fold(rows)
	return acc.report(), nil
}

// AggregatePartitioned is Aggregate split across up to workers goroutines.
// Each partition folds into its own accumulator; partials are merged afterwards.
func AggregatePartitioned(ctx context.Context, rng domain.DateRange, rows []domain.Row, workers int) (domain.Report, error) {
	if err := ValidateRange(rng); err != nil {
		return domain.Report{}, err
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(rows) {
		workers = len(rows)
	}
	if workers <= 1 {
		return Aggregate(rng, rows)
	}

	chunk := (len(rows) + workers - 1) / workers
	partials := make([]*accumulator, workers)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		i := i
		lo := i * chunk
		hi := lo + chunk
		if hi > len(rows) {
			hi = len(rows)
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			acc := newAccumulator(rng)
			if lo < hi {
				acc.fold(rows[lo:hi])
			}
			partials[i] = acc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Report{}, err
	}

	total := newAccumulator(rng)
	for _, p := range partials {
		total.merge(p)
	}
	return total.report(), nil
}
