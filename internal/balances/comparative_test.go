package balances

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sicofin/sicofin/internal/catalog"
)

func comparativeFixture(t *testing.T) (*Engine, Query) {
	t.Helper()
	chart := testChart()
	caja := mustAccount(chart, "1101-01")
	divisas := mustAccount(chart, "1101-02")
	depositos := mustAccount(chart, "2401-01")
	zero := catalog.SectorZero()

	store := &fakeStore{byPeriod: map[string][]*Entry{
		"2025-04-01..2025-04-30": testPostings(chart),
		"2025-05-01..2025-05-31": {
			posting(ledgerOne, mxn, caja, zero, "1000.00", "400.00", "100.00"),
			posting(ledgerOne, mxn, divisas, zero, "500.00", "80.00", "30.00"),
			posting(ledgerOne, usd, divisas, zero, "200.00", "110.00", "10.00"),
			posting(ledgerOne, mxn, depositos, zero, "1500.00", "90.00", "310.00"),
		},
	}}
	engine := NewEngine(store, fakeRates{}, &fakeCharts{chart: chart}, nil)

	query := testQuery(TrialBalanceTypeBalanzaComparativa)
	query.SecondPeriod = BalancePeriod{
		FromDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		ToDate:   time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC),
	}
	return engine, query
}

func findComparative(t *testing.T, rows []Row, account, currency, ledger string) *ComparativeEntry {
	t.Helper()
	for _, row := range rows {
		e, ok := row.(*ComparativeEntry)
		if !ok {
			t.Fatalf("expected *ComparativeEntry rows, got %T", row)
		}
		if e.Account.Number == account && e.Currency.Code == currency && e.Ledger.Number == ledger {
			return e
		}
	}
	t.Fatalf("no comparative row for %s/%s/%s", account, currency, ledger)
	return nil
}

func TestComparativaJoinsBothPeriods(t *testing.T) {
	engine, query := comparativeFixture(t)
	report, err := engine.Build(context.Background(), query)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	row := findComparative(t, report.Entries, "1101-01", "MXN", "09")
	if want := decimal.RequireFromString("1150.00"); !row.FirstTotalBalance.Equal(want) {
		t.Fatalf("first period: expected %s got %s", want, row.FirstTotalBalance)
	}
	if want := decimal.RequireFromString("1300.00"); !row.SecondTotalBalance.Equal(want) {
		t.Fatalf("second period: expected %s got %s", want, row.SecondTotalBalance)
	}
	// MXN restated in MXN: parity rate, variation is the raw movement.
	if !row.FirstExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("domestic rate must be parity, got %s", row.FirstExchangeRate)
	}
	if want := decimal.RequireFromString("150.00"); !row.Variation.Equal(want) {
		t.Fatalf("variation: expected %s got %s", want, row.Variation)
	}
}

func TestComparativaValuesEachPeriodAtItsOwnClose(t *testing.T) {
	engine, query := comparativeFixture(t)
	report, err := engine.Build(context.Background(), query)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	row := findComparative(t, report.Entries, "1101-02", "USD", "09")
	// 230 and 300 dollars at 17.25 pesos.
	if want := decimal.RequireFromString("3967.50"); !row.FirstValorization.Equal(want) {
		t.Fatalf("first valorization: expected %s got %s", want, row.FirstValorization)
	}
	if want := decimal.RequireFromString("5175.00"); !row.SecondValorization.Equal(want) {
		t.Fatalf("second valorization: expected %s got %s", want, row.SecondValorization)
	}
	if !row.Variation.Equal(row.SecondValorization.Sub(row.FirstValorization)) {
		t.Fatalf("variation must net the two valorizations")
	}
}

func TestComparativaCarriesOneSidedPartitions(t *testing.T) {
	engine, query := comparativeFixture(t)
	report, err := engine.Build(context.Background(), query)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	// Capital only posts in the first period: the second column stays zero
	// instead of dropping the row.
	row := findComparative(t, report.Entries, "3501", "MXN", "09")
	if want := decimal.RequireFromString("2150.00"); !row.FirstTotalBalance.Equal(want) {
		t.Fatalf("first period: expected %s got %s", want, row.FirstTotalBalance)
	}
	if !row.SecondTotalBalance.IsZero() {
		t.Fatalf("expected empty second period, got %s", row.SecondTotalBalance)
	}
	if want := decimal.RequireFromString("-2150.00"); !row.Variation.Equal(want) {
		t.Fatalf("variation: expected %s got %s", want, row.Variation)
	}
}

func TestComparativaRollsUpSummariesPerPeriod(t *testing.T) {
	engine, query := comparativeFixture(t)
	report, err := engine.Build(context.Background(), query)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	row := findComparative(t, report.Entries, "1101", "MXN", "09")
	if row.ItemType != ItemTypeSummary {
		t.Fatalf("expected a summary row, got %s", row.ItemType)
	}
	if want := decimal.RequireFromString("1700.00"); !row.FirstTotalBalance.Equal(want) {
		t.Fatalf("first period summary: expected %s got %s", want, row.FirstTotalBalance)
	}
	if want := decimal.RequireFromString("1850.00"); !row.SecondTotalBalance.Equal(want) {
		t.Fatalf("second period summary: expected %s got %s", want, row.SecondTotalBalance)
	}
}

func TestComparativaRequiresSecondPeriod(t *testing.T) {
	engine, query := comparativeFixture(t)
	query.SecondPeriod = BalancePeriod{}
	if _, err := engine.Build(context.Background(), query); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("expected ErrInvalidQuery, got %v", err)
	}
}
