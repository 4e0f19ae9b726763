package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	_ "github.com/sicofin/sicofin/testing"
)

// memorySource publishes a fixed rate set on business days only, mirroring
// how the official rate tables skip weekends and holidays.
type memorySource struct {
	holidays map[string]bool
}

func (s *memorySource) QuotesOn(ctx context.Context, date time.Time) ([]Quote, error) {
	day := date.Format("2006-01-02")
	if date.Weekday() == time.Saturday || date.Weekday() == time.Sunday || s.holidays[day] {
		return nil, nil
	}
	return []Quote{
		{FromCurrency: "USD", ToCurrency: "MXN", Date: date, Rate: decimal.RequireFromString("17.25")},
		{FromCurrency: "EUR", ToCurrency: "MXN", Date: date, Rate: decimal.RequireFromString("18.90")},
		{FromCurrency: "UDI", ToCurrency: "MXN", Date: date, Rate: decimal.RequireFromString("8.11")},
	}, nil
}

func date(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestResolverBoundaryDates(t *testing.T) {
	source := &memorySource{holidays: map[string]bool{"2025-01-01": true}}
	resolver := NewResolver(source, DefaultLookbackDays)

	cases := []struct {
		name     string
		from, to string
		resolved string
	}{
		// Year boundary: Jan 1 is a holiday, falls back to Dec 31.
		{"year boundary", "2024-12-01", "2025-01-01", "2024-12-31"},
		// Month boundary: 2025-06-01 is a Sunday, falls back to Friday May 30.
		{"month boundary", "2025-05-31", "2025-06-01", "2025-05-30"},
		// Same-day period on a Saturday resolves at the prior business day.
		{"same day", "2025-05-31", "2025-05-31", "2025-05-30"},
		// Plain business day resolves on itself.
		{"business day", "2025-04-01", "2025-04-30", "2025-04-30"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, err := resolver.ForPeriod(context.Background(), date(tc.from), date(tc.to))
			if err != nil {
				t.Fatalf("ForPeriod(%s, %s) error: %v", tc.from, tc.to, err)
			}
			if list.IsEmpty() {
				t.Fatalf("expected non-empty rate list for %s..%s", tc.from, tc.to)
			}
			if got := list.ValuationDate.Format("2006-01-02"); got != tc.resolved {
				t.Fatalf("expected valuation date %s got %s", tc.resolved, got)
			}
		})
	}
}

func TestResolverExhaustsLookback(t *testing.T) {
	source := &memorySource{holidays: map[string]bool{}}
	resolver := NewResolver(source, 1)

	// Saturday with a one-day lookback only reaches Friday; make it a holiday.
	source.holidays["2025-05-30"] = true
	_, err := resolver.ForPeriod(context.Background(), date("2025-05-31"), date("2025-05-31"))
	if !errors.Is(err, ErrNoPublication) {
		t.Fatalf("expected ErrNoPublication, got %v", err)
	}
}

func TestResolverRejectsInvertedPeriod(t *testing.T) {
	resolver := NewResolver(&memorySource{}, 0)
	if _, err := resolver.ForPeriod(context.Background(), date("2025-06-01"), date("2025-05-01")); err == nil {
		t.Fatalf("expected error for inverted period")
	}
}

func TestListRateLookups(t *testing.T) {
	list := NewList(date("2025-04-30"), []Quote{
		{FromCurrency: "USD", ToCurrency: "MXN", Rate: decimal.RequireFromString("17.25")},
	})

	rate, err := list.Rate("USD", "MXN")
	if err != nil {
		t.Fatalf("Rate(USD,MXN) error: %v", err)
	}
	if !rate.Equal(decimal.RequireFromString("17.25")) {
		t.Fatalf("unexpected rate %s", rate)
	}

	parity, err := list.Rate("MXN", "MXN")
	if err != nil || !parity.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("expected parity for identical currencies, got %s err=%v", parity, err)
	}

	_, err = list.Rate("JPY", "MXN")
	var missing *MissingRateError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingRateError, got %v", err)
	}
	if missing.Pair != "JPYMXN" {
		t.Fatalf("unexpected pair %s", missing.Pair)
	}
}
