package balances

import (
	"context"
	"sort"

	"github.com/sicofin/sicofin/internal/catalog"
)

// buildSaldosPorCuentaYMayores lists each account's balance across the
// parallel ledgers. With cascade balances on, every ledger keeps its own row
// and a TOTAL CUENTA row closes each account and currency block; otherwise
// ledgers collapse into one consolidated row per account.
func (e *Engine) buildSaldosPorCuentaYMayores(ctx context.Context, query Query, chart *catalog.AccountsChart) ([]Row, error) {
	helper := NewHelper(query, chart)

	postings, err := e.postingEntries(ctx, helper, query, query.InitialPeriod)
	if err != nil {
		return nil, err
	}
	if query.ValuateBalances {
		list, err := e.resolvedRates(ctx, query.InitialPeriod)
		if err != nil {
			return nil, err
		}
		if err := helper.ValuateToExchangeRate(postings, list); err != nil {
			return nil, err
		}
	}
	helper.RoundEntries(postings)

	type ledgerKey struct {
		account  string
		currency string
		ledger   string
	}
	buckets := make(map[ledgerKey]*Entry)
	for _, posting := range postings {
		key := ledgerKey{posting.Account.Number, posting.Currency.Code, posting.Ledger.Number}
		if !query.ShowCascadeBalances {
			key.ledger = ""
		}
		row, ok := buckets[key]
		if !ok {
			row = &Entry{
				ItemType: ItemTypeEntry,
				Ledger:   posting.Ledger,
				Currency: posting.Currency,
				Account:  posting.Account,
				Sector:   catalog.SectorZero(),
			}
			if !query.ShowCascadeBalances {
				row.Ledger = catalog.Ledger{Name: "Consolidada"}
			}
			buckets[key] = row
		}
		row.Sum(posting)
	}

	rows := make([]*Entry, 0, len(buckets))
	for _, row := range buckets {
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Account.Number != b.Account.Number {
			return a.Account.Number < b.Account.Number
		}
		if a.Currency.Code != b.Currency.Code {
			return a.Currency.Code < b.Currency.Code
		}
		return a.Ledger.Number < b.Ledger.Number
	})

	if !query.ShowCascadeBalances {
		return asRows(rows), nil
	}

	// Cascade mode closes each account and currency block with its total.
	report := make([]Row, 0, len(rows)*2)
	var total *Entry
	flush := func() {
		if total != nil {
			report = append(report, total)
		}
		total = nil
	}
	for _, row := range rows {
		if total == nil || total.Account.Number != row.Account.Number || total.Currency.Code != row.Currency.Code {
			flush()
			total = &Entry{
				ItemType:  ItemTypeTotalByAccount,
				Currency:  row.Currency,
				Account:   row.Account,
				Sector:    catalog.SectorZero(),
				GroupName: "TOTAL CUENTA " + row.Account.Number,
			}
		}
		total.Sum(row)
		report = append(report, row)
	}
	flush()
	return report, nil
}
