package rates

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoPublication indicates no rates were published inside the lookback
// window ending on the valuation date.
var ErrNoPublication = errors.New("rates: no publication inside lookback window")

// DefaultLookbackDays bounds how far back the resolver searches for a
// publication when the valuation date falls on a weekend or holiday.
const DefaultLookbackDays = 7

// Source provides the rates published on an exact calendar date. An empty
// slice means nothing was published that day.
type Source interface {
	QuotesOn(ctx context.Context, date time.Time) ([]Quote, error)
}

// Resolver turns a query period into the applicable rate list. The valuation
// date for a period [from, to] is the period's end date; when that date has
// no publication the resolver walks back day by day up to the lookback bound,
// which covers weekends, holidays and month or quarter boundaries.
type Resolver struct {
	source       Source
	lookbackDays int
}

// NewResolver constructs a resolver over the given source.
func NewResolver(source Source, lookbackDays int) *Resolver {
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &Resolver{source: source, lookbackDays: lookbackDays}
}

// ValuationDate returns the date whose published rates value the period.
// Same-day periods (from == to) resolve at that same date.
func (r *Resolver) ValuationDate(fromDate, toDate time.Time) time.Time {
	return truncateToDay(toDate)
}

// ForPeriod resolves the rate list applicable to the period.
func (r *Resolver) ForPeriod(ctx context.Context, fromDate, toDate time.Time) (List, error) {
	if toDate.Before(fromDate) {
		return List{}, fmt.Errorf("rates: period end %s before start %s",
			toDate.Format("2006-01-02"), fromDate.Format("2006-01-02"))
	}
	target := r.ValuationDate(fromDate, toDate)
	for offset := 0; offset <= r.lookbackDays; offset++ {
		date := target.AddDate(0, 0, -offset)
		quotes, err := r.source.QuotesOn(ctx, date)
		if err != nil {
			return List{}, err
		}
		if len(quotes) > 0 {
			return NewList(date, quotes), nil
		}
	}
	return List{}, fmt.Errorf("%w: %s", ErrNoPublication, target.Format("2006-01-02"))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
