package balances

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sicofin/sicofin/internal/balances/rates"
	"github.com/sicofin/sicofin/internal/catalog"
)

// moneyPrecision is the decimal precision all monetary fields are rounded to
// after valuation. Rounding must happen before further summation so the
// accumulated error stays inside the one-unit reconciliation tolerance.
const moneyPrecision = 2

// Helper is the aggregation substrate every report pipeline builds on. It is
// stateless apart from the query and chart it was parameterized with.
type Helper struct {
	query Query
	chart *catalog.AccountsChart
}

// NewHelper binds the substrate to a query and its accounts chart.
func NewHelper(query Query, chart *catalog.AccountsChart) *Helper {
	return &Helper{query: query, chart: chart}
}

// FilterPostingEntries drops postings that do not participate under the
// query's balances type, account range and ledger selection.
func (h *Helper) FilterPostingEntries(entries []*Entry) []*Entry {
	ledgers := make(map[string]bool, len(h.query.Ledgers))
	for _, number := range h.query.Ledgers {
		ledgers[number] = true
	}

	filtered := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if len(ledgers) > 0 && !ledgers[e.Ledger.Number] {
			continue
		}
		if h.query.FromAccount != "" && e.Account.Number < h.query.FromAccount {
			continue
		}
		if h.query.ToAccount != "" && e.Account.Number > h.query.ToAccount {
			continue
		}
		switch h.query.BalancesType {
		case BalancesTypeWithMovements:
			if !e.HasMovements() {
				continue
			}
		case BalancesTypeWithCurrentBalanceOrMovements:
			if e.CurrentBalance.IsZero() && !e.HasMovements() {
				continue
			}
		}
		e.ItemType = ItemTypeEntry
		filtered = append(filtered, e)
	}
	return filtered
}

// PadCatalogAccounts appends zero-balance posting entries for every posting
// account of the chart absent from the data, so AllAccountsInCatalog reports
// list the complete catalog.
func (h *Helper) PadCatalogAccounts(entries []*Entry) []*Entry {
	if h.query.BalancesType != BalancesTypeAllAccountsInCatalog {
		return entries
	}
	present := make(map[string]bool, len(entries))
	var ledger catalog.Ledger
	for _, e := range entries {
		present[e.Account.Number] = true
		if ledger.Number == "" {
			ledger = e.Ledger
		}
	}
	for _, account := range h.chart.Accounts() {
		if account.Role == catalog.RoleSumaria || present[account.Number] {
			continue
		}
		entries = append(entries, &Entry{
			ItemType:     ItemTypeEntry,
			Ledger:       ledger,
			Currency:     catalog.Currency{Code: catalog.CurrencyMXN},
			Account:      account,
			Sector:       catalog.SectorZero(),
			ExchangeRate: decimal.NewFromInt(1),
		})
	}
	return entries
}

// GenerateSummaryEntries walks every posting entry up the account hierarchy,
// accumulating one summary entry per ancestor within the same sector,
// currency, ledger and debtor/creditor partition. Each leaf contributes to
// every ancestor exactly once. Subledger detail collapses into the summaries.
func (h *Helper) GenerateSummaryEntries(postings []*Entry) []*Entry {
	summaries := make(map[entryKey]*Entry)
	parentNumbers := make(map[string]bool)

	for _, posting := range postings {
		current := posting.Account
		for {
			parent, ok := h.chart.Parent(current)
			if !ok {
				break
			}
			parentNumbers[parent.Number] = true
			key := entryKey{
				account:  parent.Number,
				sector:   posting.Sector.Code,
				currency: posting.Currency.Code,
				ledger:   posting.Ledger.Number,
				dc:       parent.DebtorCreditor,
			}
			summary, exists := summaries[key]
			if !exists {
				summary = &Entry{
					ItemType:     ItemTypeSummary,
					Ledger:       posting.Ledger,
					Currency:     posting.Currency,
					Account:      parent,
					Sector:       posting.Sector,
					ExchangeRate: posting.ExchangeRate,
				}
				summaries[key] = summary
			}
			summary.Sum(posting)
			current = parent
		}
	}

	// An account that posts directly and also summarizes children is flagged
	// so report variants can present it once.
	for _, posting := range postings {
		if parentNumbers[posting.Account.Number] {
			posting.IsParentPostingEntry = true
		}
	}

	return sortedValues(summaries)
}

// ValuateToExchangeRate converts every entry not already in the target
// currency, applying the resolved rate and tagging it on the entry.
func (h *Helper) ValuateToExchangeRate(entries []*Entry, list rates.List) error {
	target := h.query.TargetCurrency()
	for _, e := range entries {
		rate, err := list.Rate(e.Currency.Code, target)
		if err != nil {
			return fmt.Errorf("balances: valuate %s: %w", e.Account.Number, err)
		}
		e.ExchangeRate = rate
		if e.Currency.Code == target {
			continue
		}
		e.InitialBalance = e.InitialBalance.Mul(rate)
		e.Debit = e.Debit.Mul(rate)
		e.Credit = e.Credit.Mul(rate)
		e.CurrentBalance = e.CurrentBalance.Mul(rate)
		e.AverageBalance = e.AverageBalance.Mul(rate)
	}
	return nil
}

// RoundEntries rounds every monetary field to the report precision.
func (h *Helper) RoundEntries(entries []*Entry) {
	for _, e := range entries {
		e.InitialBalance = e.InitialBalance.Round(moneyPrecision)
		e.Debit = e.Debit.Round(moneyPrecision)
		e.Credit = e.Credit.Round(moneyPrecision)
		e.CurrentBalance = e.CurrentBalance.Round(moneyPrecision)
		e.AverageBalance = e.AverageBalance.Round(moneyPrecision)
	}
}

// SectorizeToSectorZero synthesizes one sector-"00" rollup per account
// partition from its sectorized entries. Partitions that already post
// directly in sector "00" keep their existing entry untouched.
func (h *Helper) SectorizeToSectorZero(entries []*Entry) []*Entry {
	existing := make(map[entryKey]bool, len(entries))
	for _, e := range entries {
		if e.Sector.IsSectorZero() {
			existing[keyFor(e).withoutSubledger()] = true
		}
	}

	synthesized := make(map[entryKey]*Entry)
	for _, e := range entries {
		if e.Sector.IsSectorZero() {
			continue
		}
		key := keyFor(e).withSector(catalog.SectorZeroCode).withoutSubledger()
		if existing[key] {
			continue
		}
		rollup, ok := synthesized[key]
		if !ok {
			rollup = &Entry{
				ItemType:     ItemTypeBalanceSummary,
				Ledger:       e.Ledger,
				Currency:     e.Currency,
				Account:      e.Account,
				Sector:       catalog.SectorZero(),
				ExchangeRate: e.ExchangeRate,
			}
			synthesized[key] = rollup
		}
		rollup.Sum(e)
	}
	return sortedValues(synthesized)
}

// CombineSummaryAndPostingEntries concatenates summaries with postings and
// orders the full tree for presentation: leaves plus every ancestor level.
func (h *Helper) CombineSummaryAndPostingEntries(summaries, postings []*Entry) []*Entry {
	combined := make([]*Entry, 0, len(summaries)+len(postings))
	combined = append(combined, summaries...)
	combined = append(combined, postings...)
	SortEntries(combined)
	return combined
}

// RestrictLevels filters the combined list to the requested hierarchy depth.
// Total rows are retained regardless of level.
func (h *Helper) RestrictLevels(entries []*Entry) []*Entry {
	if h.query.Level <= 0 {
		return entries
	}
	restricted := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e.ItemType.IsTotal() || e.Level() <= h.query.Level {
			restricted = append(restricted, e)
		}
	}
	return restricted
}

// SortEntries orders entries by ledger, currency, account number, sector and
// subledger: the canonical presentation order shared by the report variants.
func SortEntries(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
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
}

func sortedValues(buckets map[entryKey]*Entry) []*Entry {
	values := make([]*Entry, 0, len(buckets))
	for _, e := range buckets {
		values = append(values, e)
	}
	SortEntries(values)
	return values
}
