package balances

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sicofin/sicofin/internal/catalog"
)

// ValuedEntry is one row of the valued balance: an account's total in one
// currency together with its equivalence in the report's header currency.
type ValuedEntry struct {
	ItemType           ItemType
	Currency           catalog.Currency
	Account            catalog.StandardAccount
	TotalBalance       decimal.Decimal
	ExchangeRate       decimal.Decimal
	ValuedExchangeRate decimal.Decimal
	TotalEquivalence   decimal.Decimal
	GroupName          string
}

// Kind implements Row.
func (v *ValuedEntry) Kind() ItemType { return v.ItemType }

// AccountNumber implements Row.
func (v *ValuedEntry) AccountNumber() string { return v.Account.Number }

// SectorCode implements Row.
func (v *ValuedEntry) SectorCode() string { return catalog.SectorZeroCode }

// CurrencyCode implements Row.
func (v *ValuedEntry) CurrencyCode() string { return v.Currency.Code }

// Balance implements Row.
func (v *ValuedEntry) Balance() decimal.Decimal { return v.TotalEquivalence }

// buildBalanzaValorizada computes the cross-currency equivalence report: for
// each account, one row per currency with its balance restated in the header
// currency (USD for the dolarizada variant, MXN otherwise), closed by a
// TOTAL POR CUENTA row summing the equivalences.
func (e *Engine) buildBalanzaValorizada(ctx context.Context, query Query, chart *catalog.AccountsChart) ([]Row, error) {
	helper := NewHelper(query, chart)

	postings, err := e.postingEntries(ctx, helper, query, query.InitialPeriod)
	if err != nil {
		return nil, err
	}
	list, err := e.resolvedRates(ctx, query.InitialPeriod)
	if err != nil {
		return nil, err
	}
	helper.RoundEntries(postings)

	header := catalog.CurrencyMXN
	if query.TrialBalanceType == TrialBalanceTypeBalanzaDolarizada {
		header = catalog.CurrencyUSD
	}
	headerRate, err := list.Rate(header, catalog.CurrencyMXN)
	if err != nil {
		return nil, err
	}

	// Collapse sectors, ledgers and subledgers into one bucket per account
	// and currency.
	type valuedKey struct {
		account  string
		currency string
	}
	buckets := make(map[valuedKey]*ValuedEntry)
	for _, posting := range postings {
		key := valuedKey{posting.Account.Number, posting.Currency.Code}
		row, ok := buckets[key]
		if !ok {
			row = &ValuedEntry{
				ItemType: ItemTypeSummary,
				Currency: posting.Currency,
				Account:  posting.Account,
			}
			buckets[key] = row
		}
		row.TotalBalance = row.TotalBalance.Add(posting.CurrentBalance)
	}

	grouped := make(map[string][]*ValuedEntry)
	accounts := make([]string, 0)
	for key, row := range buckets {
		if _, ok := grouped[key.account]; !ok {
			accounts = append(accounts, key.account)
		}
		grouped[key.account] = append(grouped[key.account], row)
	}
	sort.Strings(accounts)

	report := make([]Row, 0, 2*len(buckets))
	for _, account := range accounts {
		rows := grouped[account]
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i], rows[j]
			// Header currency leads its account block.
			if (a.Currency.Code == header) != (b.Currency.Code == header) {
				return a.Currency.Code == header
			}
			return a.Currency.Code < b.Currency.Code
		})

		total := &ValuedEntry{
			ItemType:  ItemTypeTotalByAccount,
			Currency:  catalog.Currency{Code: header},
			Account:   rows[0].Account,
			GroupName: "TOTAL POR CUENTA",
		}
		for _, row := range rows {
			rate, err := list.Rate(row.Currency.Code, catalog.CurrencyMXN)
			if err != nil {
				return nil, err
			}
			row.ExchangeRate = rate
			row.ValuedExchangeRate = rate.Div(headerRate)
			row.TotalEquivalence = row.TotalBalance.Mul(row.ValuedExchangeRate).Round(moneyPrecision)
			total.TotalEquivalence = total.TotalEquivalence.Add(row.TotalEquivalence)
			report = append(report, row)
		}
		report = append(report, total)
	}
	return report, nil
}
