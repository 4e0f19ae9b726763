package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgSource reads published exchange rates from the database.
type PgSource struct {
	db *pgxpool.Pool
}

// NewPgSource constructs the pgx-backed rates source.
func NewPgSource(db *pgxpool.Pool) *PgSource {
	return &PgSource{db: db}
}

// QuotesOn returns every rate published on the given calendar date.
func (s *PgSource) QuotesOn(ctx context.Context, date time.Time) ([]Quote, error) {
	rows, err := s.db.Query(ctx,
		`SELECT from_currency, to_currency, rate
		   FROM exchange_rates
		  WHERE date_effective = $1
		  ORDER BY from_currency, to_currency`, truncateToDay(date))
	if err != nil {
		return nil, fmt.Errorf("rates: query publications: %w", err)
	}
	defer rows.Close()

	var quotes []Quote
	for rows.Next() {
		var q Quote
		var rate string
		if err := rows.Scan(&q.FromCurrency, &q.ToCurrency, &rate); err != nil {
			return nil, fmt.Errorf("rates: scan publication: %w", err)
		}
		q.Rate, err = decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("rates: parse rate %q: %w", rate, err)
		}
		q.Date = date
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}
