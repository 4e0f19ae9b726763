package balances

import (
	"sort"

	"github.com/sicofin/sicofin/internal/catalog"
)

// totalKey partitions the progressively coarser total tiers.
type totalKey struct {
	group    string
	currency string
	ledger   string
	dc       catalog.DebtorCreditor
}

// GenerateTotalGroups produces one debtor and one creditor total per account
// group within each currency and ledger. Totals accumulate straight from
// posting entries so every leaf contributes exactly once.
func (h *Helper) GenerateTotalGroups(postings []*Entry) []*Entry {
	buckets := make(map[totalKey]*Entry)
	for _, posting := range postings {
		key := totalKey{
			group:    posting.Account.GroupNumber(),
			currency: posting.Currency.Code,
			ledger:   posting.Ledger.Number,
			dc:       posting.Account.DebtorCreditor,
		}
		total, ok := buckets[key]
		if !ok {
			itemType := ItemTypeTotalGroupDebtor
			groupName := "TOTAL GRUPO " + key.group + ", DEUDORAS"
			if key.dc == catalog.Acreedora {
				itemType = ItemTypeTotalGroupCreditor
				groupName = "TOTAL GRUPO " + key.group + ", ACREEDORAS"
			}
			total = &Entry{
				ItemType:    itemType,
				Ledger:      posting.Ledger,
				Currency:    posting.Currency,
				Account:     catalog.StandardAccount{DebtorCreditor: key.dc},
				GroupNumber: key.group,
				GroupName:   groupName,
			}
			buckets[key] = total
		}
		total.Sum(posting)
	}
	return sortedTotals(buckets)
}

// GenerateTotalDebtorCreditor rolls the group totals up into one debtor and
// one creditor total per currency and ledger.
func (h *Helper) GenerateTotalDebtorCreditor(groupTotals []*Entry) []*Entry {
	buckets := make(map[totalKey]*Entry)
	for _, group := range groupTotals {
		key := totalKey{
			currency: group.Currency.Code,
			ledger:   group.Ledger.Number,
			dc:       group.Account.DebtorCreditor,
		}
		total, ok := buckets[key]
		if !ok {
			itemType := ItemTypeTotalDebtor
			groupName := "TOTAL DEUDORAS"
			if key.dc == catalog.Acreedora {
				itemType = ItemTypeTotalCreditor
				groupName = "TOTAL ACREEDORAS"
			}
			total = &Entry{
				ItemType:  itemType,
				Ledger:    group.Ledger,
				Currency:  group.Currency,
				Account:   catalog.StandardAccount{DebtorCreditor: key.dc},
				GroupName: groupName,
			}
			buckets[key] = total
		}
		total.Sum(group)
	}
	return sortedTotals(buckets)
}

// GenerateTotalByCurrency nets each currency's debtor and creditor totals
// into one row per currency and ledger.
func (h *Helper) GenerateTotalByCurrency(dcTotals []*Entry) []*Entry {
	buckets := make(map[totalKey]*Entry)
	for _, dcTotal := range dcTotals {
		key := totalKey{currency: dcTotal.Currency.Code, ledger: dcTotal.Ledger.Number}
		total, ok := buckets[key]
		if !ok {
			total = &Entry{
				ItemType:  ItemTypeTotalCurrency,
				Ledger:    dcTotal.Ledger,
				Currency:  dcTotal.Currency,
				GroupName: "TOTAL MONEDA " + key.currency,
			}
			buckets[key] = total
		}
		total.InitialBalance = total.InitialBalance.Add(dcTotal.InitialBalance)
		total.Debit = total.Debit.Add(dcTotal.Debit)
		total.Credit = total.Credit.Add(dcTotal.Credit)
		if dcTotal.Account.DebtorCreditor == catalog.Acreedora {
			total.CurrentBalance = total.CurrentBalance.Sub(dcTotal.CurrentBalance)
		} else {
			total.CurrentBalance = total.CurrentBalance.Add(dcTotal.CurrentBalance)
		}
	}
	return sortedTotals(buckets)
}

// GenerateTotalConsolidatedByLedger rolls the currency totals into one row
// per ledger. Only meaningful once balances share the target currency.
func (h *Helper) GenerateTotalConsolidatedByLedger(currencyTotals []*Entry) []*Entry {
	buckets := make(map[totalKey]*Entry)
	for _, currencyTotal := range currencyTotals {
		key := totalKey{ledger: currencyTotal.Ledger.Number}
		total, ok := buckets[key]
		if !ok {
			total = &Entry{
				ItemType:  ItemTypeTotalConsolidatedByLedger,
				Ledger:    currencyTotal.Ledger,
				Currency:  catalog.Currency{Code: h.query.TargetCurrency()},
				GroupName: "TOTAL CONSOLIDADO MAYOR " + key.ledger,
			}
			buckets[key] = total
		}
		total.Sum(currencyTotal)
	}
	return sortedTotals(buckets)
}

// GenerateTotalConsolidated produces the report's grand total.
func (h *Helper) GenerateTotalConsolidated(currencyTotals []*Entry) *Entry {
	if len(currencyTotals) == 0 {
		return nil
	}
	total := &Entry{
		ItemType:  ItemTypeTotalConsolidated,
		Currency:  catalog.Currency{Code: h.query.TargetCurrency()},
		GroupName: "TOTAL CONSOLIDADO",
	}
	for _, currencyTotal := range currencyTotals {
		total.Sum(currencyTotal)
	}
	return total
}

// CombineGroupTotalsAndEntries interleaves each group total pair immediately
// after the detail rows it summarizes. The interleaved position is part of
// the report contract.
func (h *Helper) CombineGroupTotalsAndEntries(details, groupTotals []*Entry) []*Entry {
	index := make(map[totalKey][]*Entry, len(groupTotals))
	for _, total := range groupTotals {
		key := totalKey{group: total.GroupNumber, currency: total.Currency.Code, ledger: total.Ledger.Number}
		index[key] = append(index[key], total)
	}
	for _, totals := range index {
		sort.SliceStable(totals, func(i, j int) bool {
			return totals[i].ItemType == ItemTypeTotalGroupDebtor && totals[j].ItemType != ItemTypeTotalGroupDebtor
		})
	}

	blockOf := func(e *Entry) totalKey {
		return totalKey{group: e.Account.GroupNumber(), currency: e.Currency.Code, ledger: e.Ledger.Number}
	}
	combined := make([]*Entry, 0, len(details)+len(groupTotals))
	var open bool
	var current totalKey
	flush := func() {
		if open {
			combined = append(combined, index[current]...)
			delete(index, current)
		}
		open = false
	}
	for _, e := range details {
		block := blockOf(e)
		if !open || block != current {
			flush()
			current, open = block, true
		}
		combined = append(combined, e)
	}
	flush()
	return combined
}

// combineAtBoundary inserts totals whenever the boundary key of consecutive
// rows changes, keeping each total right after the block it closes.
func combineAtBoundary(list, totals []*Entry, boundary func(*Entry) totalKey) []*Entry {
	index := make(map[totalKey][]*Entry, len(totals))
	for _, total := range totals {
		index[boundary(total)] = append(index[boundary(total)], total)
	}
	combined := make([]*Entry, 0, len(list)+len(totals))
	var open bool
	var current totalKey
	flush := func() {
		if open {
			combined = append(combined, index[current]...)
			delete(index, current)
		}
		open = false
	}
	for _, e := range list {
		block := boundary(e)
		if !open || block != current {
			flush()
			current, open = block, true
		}
		combined = append(combined, e)
	}
	flush()
	return combined
}

// CombineDebtorCreditorTotalsAndEntries inserts the TOTAL DEUDORAS and TOTAL
// ACREEDORAS rows after each ledger and currency block.
func (h *Helper) CombineDebtorCreditorTotalsAndEntries(list, dcTotals []*Entry) []*Entry {
	ordered := append([]*Entry(nil), dcTotals...)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Ledger.Number != b.Ledger.Number {
			return a.Ledger.Number < b.Ledger.Number
		}
		if a.Currency.Code != b.Currency.Code {
			return a.Currency.Code < b.Currency.Code
		}
		return a.ItemType == ItemTypeTotalDebtor && b.ItemType != ItemTypeTotalDebtor
	})
	return combineAtBoundary(list, ordered, func(e *Entry) totalKey {
		return totalKey{currency: e.Currency.Code, ledger: e.Ledger.Number}
	})
}

// CombineCurrencyTotalsAndEntries inserts each TOTAL MONEDA row after its
// currency block (which by then ends with the debtor/creditor totals).
func (h *Helper) CombineCurrencyTotalsAndEntries(list, currencyTotals []*Entry) []*Entry {
	return combineAtBoundary(list, currencyTotals, func(e *Entry) totalKey {
		return totalKey{currency: e.Currency.Code, ledger: e.Ledger.Number}
	})
}

// CombineLedgerTotalsAndEntries inserts each per-ledger consolidated total
// after its ledger block.
func (h *Helper) CombineLedgerTotalsAndEntries(list, ledgerTotals []*Entry) []*Entry {
	return combineAtBoundary(list, ledgerTotals, func(e *Entry) totalKey {
		return totalKey{ledger: e.Ledger.Number}
	})
}

// AppendConsolidatedTotal closes the report with the grand total row.
func (h *Helper) AppendConsolidatedTotal(list []*Entry, total *Entry) []*Entry {
	if total == nil {
		return list
	}
	return append(list, total)
}

func sortedTotals(buckets map[totalKey]*Entry) []*Entry {
	values := make([]*Entry, 0, len(buckets))
	for _, e := range buckets {
		values = append(values, e)
	}
	sort.SliceStable(values, func(i, j int) bool {
		a, b := values[i], values[j]
		if a.Ledger.Number != b.Ledger.Number {
			return a.Ledger.Number < b.Ledger.Number
		}
		if a.Currency.Code != b.Currency.Code {
			return a.Currency.Code < b.Currency.Code
		}
		if a.GroupNumber != b.GroupNumber {
			return a.GroupNumber < b.GroupNumber
		}
		return a.ItemType < b.ItemType
	})
	return values
}
