package balances

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sicofin/sicofin/internal/balances/rates"
	"github.com/sicofin/sicofin/internal/catalog"
)

// DataService supplies raw posting entries: one row per ledger, account,
// sector, currency and subledger combination with non-aggregated balances for
// the requested period. The engine performs all aggregation.
type DataService interface {
	TrialBalanceEntries(ctx context.Context, query Query, period BalancePeriod) ([]*Entry, error)
}

// RatesProvider resolves the exchange-rate list applicable to a period.
type RatesProvider interface {
	ForPeriod(ctx context.Context, fromDate, toDate time.Time) (rates.List, error)
}

// ChartProvider loads account catalogs.
type ChartProvider interface {
	Chart(ctx context.Context, uid string) (*catalog.AccountsChart, error)
}

// TrialBalance is the result of one report build: the query it answers plus
// the ordered, polymorphic row set. The ID is the query digest, so identical
// queries produce identical results.
type TrialBalance struct {
	ID      string `json:"id"`
	Query   Query  `json:"query"`
	Entries []Row  `json:"entries"`
}

// Engine builds trial balance reports. Each build is a pure function of the
// query, the fetched postings and the resolved exchange rates; concurrent
// builds share no mutable state.
type Engine struct {
	store  DataService
	rates  RatesProvider
	charts ChartProvider
	logger *slog.Logger
}

// NewEngine wires the engine's collaborators.
func NewEngine(store DataService, ratesProvider RatesProvider, charts ChartProvider, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: store, rates: ratesProvider, charts: charts, logger: logger}
}

// Build validates the query and dispatches to the report pipeline selected
// by its trial balance type.
func (e *Engine) Build(ctx context.Context, query Query) (*TrialBalance, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	chart, err := e.charts.Chart(ctx, query.AccountsChartUID)
	if err != nil {
		return nil, fmt.Errorf("balances: load chart %s: %w", query.AccountsChartUID, err)
	}

	started := time.Now()
	var entries []Row
	switch query.TrialBalanceType {
	case TrialBalanceTypeBalanza:
		entries, err = e.buildBalanzaTradicional(ctx, query, chart)
	case TrialBalanceTypeBalanzaComparativa:
		entries, err = e.buildBalanzaComparativa(ctx, query, chart)
	case TrialBalanceTypeBalanzaValorizada, TrialBalanceTypeBalanzaDolarizada:
		entries, err = e.buildBalanzaValorizada(ctx, query, chart)
	case TrialBalanceTypeAnaliticoDeCuentas:
		entries, err = e.buildAnaliticoDeCuentas(ctx, query, chart)
	case TrialBalanceTypeSaldosPorAuxiliar:
		entries, err = e.buildSaldosPorAuxiliar(ctx, query, chart)
	case TrialBalanceTypeSaldosPorCuentaYMayores:
		entries, err = e.buildSaldosPorCuentaYMayores(ctx, query, chart)
	case TrialBalanceTypeBalanzaEnColumnasPorMoneda:
		entries, err = e.buildBalanzaEnColumnasPorMoneda(ctx, query, chart)
	default:
		return nil, fmt.Errorf("%w: unhandled trial balance type %q", ErrInvalidQuery, query.TrialBalanceType)
	}
	if err != nil {
		return nil, err
	}

	e.logger.Info("trial balance built",
		"type", string(query.TrialBalanceType),
		"chart", query.AccountsChartUID,
		"rows", len(entries),
		"elapsed", time.Since(started))

	return &TrialBalance{ID: query.Hash(), Query: query, Entries: entries}, nil
}

// postingEntries fetches, filters and pads the raw posting entries for one
// period.
func (e *Engine) postingEntries(ctx context.Context, helper *Helper, query Query, period BalancePeriod) ([]*Entry, error) {
	fetched, err := e.store.TrialBalanceEntries(ctx, query, period)
	if err != nil {
		return nil, fmt.Errorf("balances: fetch postings: %w", err)
	}
	postings := helper.FilterPostingEntries(fetched)
	return helper.PadCatalogAccounts(postings), nil
}

// resolvedRates fetches the exchange-rate list for a period.
func (e *Engine) resolvedRates(ctx context.Context, period BalancePeriod) (rates.List, error) {
	list, err := e.rates.ForPeriod(ctx, period.FromDate, period.ToDate)
	if err != nil {
		return rates.List{}, fmt.Errorf("balances: resolve exchange rates: %w", err)
	}
	return list, nil
}

func asRows(entries []*Entry) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = e
	}
	return rows
}
