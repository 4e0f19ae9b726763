package balances

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/sicofin/sicofin/internal/balances/rates"
	"github.com/sicofin/sicofin/internal/catalog"
)

// ComparativeEntry is one side-by-side row of the comparative balance: the
// same partition valued at two period closes, with the valued variation.
type ComparativeEntry struct {
	ItemType           ItemType
	Ledger             catalog.Ledger
	Currency           catalog.Currency
	Account            catalog.StandardAccount
	Sector             catalog.Sector
	SubledgerAccountID int64
	SubledgerAccount   string

	FirstTotalBalance  decimal.Decimal
	FirstExchangeRate  decimal.Decimal
	FirstValorization  decimal.Decimal
	SecondTotalBalance decimal.Decimal
	SecondExchangeRate decimal.Decimal
	SecondValorization decimal.Decimal
	Variation          decimal.Decimal
}

// Kind implements Row.
func (c *ComparativeEntry) Kind() ItemType { return c.ItemType }

// AccountNumber implements Row.
func (c *ComparativeEntry) AccountNumber() string { return c.Account.Number }

// SectorCode implements Row.
func (c *ComparativeEntry) SectorCode() string { return c.Sector.Code }

// CurrencyCode implements Row.
func (c *ComparativeEntry) CurrencyCode() string { return c.Currency.Code }

// Balance implements Row.
func (c *ComparativeEntry) Balance() decimal.Decimal { return c.SecondValorization }

type periodBalance struct {
	entries []*Entry
	rates   rates.List
}

// buildBalanzaComparativa computes two independent period balances and joins
// them into side-by-side columns keyed by account, sector, currency, ledger
// and, optionally, subledger account.
func (e *Engine) buildBalanzaComparativa(ctx context.Context, query Query, chart *catalog.AccountsChart) ([]Row, error) {
	helper := NewHelper(query, chart)

	var first, second periodBalance
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		first, err = e.periodBalance(groupCtx, helper, query, query.InitialPeriod)
		return err
	})
	group.Go(func() error {
		var err error
		second, err = e.periodBalance(groupCtx, helper, query, query.SecondPeriod)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	target := query.TargetCurrency()
	joined := make(map[entryKey]*ComparativeEntry)

	bucketFor := func(e *Entry) *ComparativeEntry {
		key := keyFor(e)
		if !query.WithSubledgerAccount {
			key = key.withoutSubledger()
		}
		row, ok := joined[key]
		if !ok {
			row = &ComparativeEntry{
				ItemType:           e.ItemType,
				Ledger:             e.Ledger,
				Currency:           e.Currency,
				Account:            e.Account,
				Sector:             e.Sector,
				SubledgerAccountID: e.SubledgerAccountID,
				SubledgerAccount:   e.SubledgerAccount,
			}
			joined[key] = row
		}
		return row
	}

	for _, entry := range first.entries {
		rate, err := first.rates.Rate(entry.Currency.Code, target)
		if err != nil {
			return nil, err
		}
		row := bucketFor(entry)
		row.FirstTotalBalance = row.FirstTotalBalance.Add(entry.CurrentBalance)
		row.FirstExchangeRate = rate
		row.FirstValorization = row.FirstTotalBalance.Mul(rate).Round(moneyPrecision)
	}
	for _, entry := range second.entries {
		rate, err := second.rates.Rate(entry.Currency.Code, target)
		if err != nil {
			return nil, err
		}
		row := bucketFor(entry)
		row.SecondTotalBalance = row.SecondTotalBalance.Add(entry.CurrentBalance)
		row.SecondExchangeRate = rate
		row.SecondValorization = row.SecondTotalBalance.Mul(rate).Round(moneyPrecision)
	}

	rows := make([]*ComparativeEntry, 0, len(joined))
	for _, row := range joined {
		row.Variation = row.SecondValorization.Sub(row.FirstValorization)
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Ledger.Number != b.Ledger.Number {
			return a.Ledger.Number < b.Ledger.Number
		}
		if a.Currency.Code != b.Currency.Code {
			return a.Currency.Code < b.Currency.Code
		}
		if a.Account.Number != b.Account.Number {
			return a.Account.Number < b.Account.Number
		}
		if a.Sector.Code != b.Sector.Code {
			return a.Sector.Code < b.Sector.Code
		}
		return a.SubledgerAccount < b.SubledgerAccount
	})

	result := make([]Row, len(rows))
	for i, row := range rows {
		result[i] = row
	}
	return result, nil
}

// periodBalance builds one period's combined balance rows (postings plus
// summaries) without valuation; the join applies each period's rates.
func (e *Engine) periodBalance(ctx context.Context, helper *Helper, query Query, period BalancePeriod) (periodBalance, error) {
	postings, err := e.postingEntries(ctx, helper, query, period)
	if err != nil {
		return periodBalance{}, err
	}
	list, err := e.resolvedRates(ctx, period)
	if err != nil {
		return periodBalance{}, err
	}
	helper.RoundEntries(postings)
	summaries := helper.GenerateSummaryEntries(postings)
	combined := helper.CombineSummaryAndPostingEntries(summaries, postings)
	combined = helper.RestrictLevels(combined)
	return periodBalance{entries: combined, rates: list}, nil
}
