package rates

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is one published exchange rate for a currency pair on a date.
type Quote struct {
	FromCurrency string
	ToCurrency   string
	Date         time.Time
	Rate         decimal.Decimal
}

// Pair returns the lookup key for the quote's currency pair.
func (q Quote) Pair() string {
	return q.FromCurrency + q.ToCurrency
}

// MissingRateError signals that no rate was published for a currency pair.
type MissingRateError struct {
	Pair string
	Date time.Time
}

func (e *MissingRateError) Error() string {
	return fmt.Sprintf("rates: no exchange rate for %s at %s", e.Pair, e.Date.Format("2006-01-02"))
}

// List holds the rates applicable on one valuation date.
type List struct {
	ValuationDate time.Time
	quotes        map[string]decimal.Decimal
}

// NewList indexes the quotes under their currency pairs.
func NewList(valuationDate time.Time, quotes []Quote) List {
	indexed := make(map[string]decimal.Decimal, len(quotes))
	for _, q := range quotes {
		indexed[q.Pair()] = q.Rate
	}
	return List{ValuationDate: valuationDate, quotes: indexed}
}

// IsEmpty reports whether the list holds no quotes.
func (l List) IsEmpty() bool {
	return len(l.quotes) == 0
}

// Len returns the number of quoted pairs.
func (l List) Len() int {
	return len(l.quotes)
}

// Rate returns the published rate converting from one currency into another.
// Identical currencies convert at parity.
func (l List) Rate(from, to string) (decimal.Decimal, error) {
	if from == to {
		return decimal.NewFromInt(1), nil
	}
	if rate, ok := l.quotes[from+to]; ok {
		return rate, nil
	}
	return decimal.Decimal{}, &MissingRateError{Pair: from + to, Date: l.ValuationDate}
}

// Has reports whether the list quotes the given pair.
func (l List) Has(from, to string) bool {
	if from == to {
		return true
	}
	_, ok := l.quotes[from+to]
	return ok
}
