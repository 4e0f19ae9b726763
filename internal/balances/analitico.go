package balances

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sicofin/sicofin/internal/catalog"
)

// AnaliticoEntry is a two-currency-column row: balances split into a
// domestic column (home currency plus UDI under the regulatory special
// cases) and a foreign column collapsing every other currency.
type AnaliticoEntry struct {
	ItemType             ItemType
	Ledger               catalog.Ledger
	Account              catalog.StandardAccount
	Sector               catalog.Sector
	DomesticBalance      decimal.Decimal
	ForeignBalance       decimal.Decimal
	TotalBalance         decimal.Decimal
	ExchangeRate         decimal.Decimal
	GroupNumber          string
	GroupName            string
	IsParentPostingEntry bool
}

// Kind implements Row.
func (a *AnaliticoEntry) Kind() ItemType { return a.ItemType }

// AccountNumber implements Row.
func (a *AnaliticoEntry) AccountNumber() string { return a.Account.Number }

// SectorCode implements Row.
func (a *AnaliticoEntry) SectorCode() string { return a.Sector.Code }

// CurrencyCode implements Row. Two-column rows mix currencies so no single
// code applies.
func (a *AnaliticoEntry) CurrencyCode() string { return "" }

// Balance implements Row.
func (a *AnaliticoEntry) Balance() decimal.Decimal { return a.TotalBalance }

type twoColumnKey struct {
	account string
	sector  string
	ledger  string
	dc      catalog.DebtorCreditor
}

// buildAnaliticoDeCuentas produces the analítico de cuentas report: valued
// postings merged into one two-column row per account, sector and ledger,
// with group totals interleaved and the regulatory report totals appended.
func (e *Engine) buildAnaliticoDeCuentas(ctx context.Context, query Query, chart *catalog.AccountsChart) ([]Row, error) {
	helper := NewHelper(query, chart)

	postings, err := e.postingEntries(ctx, helper, query, query.InitialPeriod)
	if err != nil {
		return nil, err
	}
	list, err := e.resolvedRates(ctx, query.InitialPeriod)
	if err != nil {
		return nil, err
	}
	if err := helper.ValuateToExchangeRate(postings, list); err != nil {
		return nil, err
	}
	helper.RoundEntries(postings)

	summaries := helper.GenerateSummaryEntries(postings)
	combined := append(append([]*Entry(nil), summaries...), postings...)
	summaries = append(summaries, helper.SectorizeToSectorZero(combined)...)

	entries := helper.CombineSummaryAndPostingEntries(summaries, postings)
	entries = helper.RestrictLevels(entries)
	if query.UseNewSectorizationModel {
		entries = mergeSectorZeroPesosAndUdis(entries)
	}

	rows := mergeToTwoColumns(query, entries)

	groupTotals := analiticoGroupTotals(rows)
	report := combineAnaliticoGroupTotals(rows, groupTotals)
	report = append(report, analiticoReportTotals(groupTotals)...)
	return analiticoAsRows(report), nil
}

// mergeSectorZeroPesosAndUdis folds UDI-denominated sector-"00" entries into
// their MXN counterpart on the same account, ledger and debtor/creditor.
// A UDI entry with no MXN counterpart is flagged so the two-column merge
// still carries it into the domestic column.
func mergeSectorZeroPesosAndUdis(entries []*Entry) []*Entry {
	type pesosKey struct {
		account string
		ledger  string
		dc      catalog.DebtorCreditor
	}
	pesos := make(map[pesosKey]*Entry)
	for _, e := range entries {
		if e.Sector.IsSectorZero() && e.Currency.IsDomestic() {
			pesos[pesosKey{e.Account.Number, e.Ledger.Number, e.DebtorCreditor()}] = e
		}
	}
	merged := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e.Sector.IsSectorZero() && e.Currency.IsUDI() {
			if counterpart, ok := pesos[pesosKey{e.Account.Number, e.Ledger.Number, e.DebtorCreditor()}]; ok {
				counterpart.Sum(e)
				continue
			}
			e.IsSummaryForAnalytics = true
		}
		merged = append(merged, e)
	}
	return merged
}

// mergeToTwoColumns folds currency rows into one two-column row per account,
// sector and ledger. The branch order encodes regulatory special cases and
// must not be reordered: reordering silently changes report totals.
func mergeToTwoColumns(query Query, entries []*Entry) []*AnaliticoEntry {
	domestic := catalog.Currency{Code: catalog.CurrencyMXN}
	buckets := make(map[twoColumnKey]*AnaliticoEntry)

	bucketFor := func(e *Entry) *AnaliticoEntry {
		key := twoColumnKey{e.Account.Number, e.Sector.Code, e.Ledger.Number, e.DebtorCreditor()}
		row, ok := buckets[key]
		if !ok {
			itemType := ItemTypeSummary
			if e.ItemType == ItemTypeEntry {
				itemType = ItemTypeEntry
			}
			row = &AnaliticoEntry{
				ItemType:     itemType,
				Ledger:       e.Ledger,
				Account:      e.Account,
				Sector:       e.Sector,
				ExchangeRate: e.ExchangeRate,
			}
			buckets[key] = row
		}
		if e.IsParentPostingEntry {
			row.IsParentPostingEntry = true
		}
		return row
	}

	for _, e := range entries {
		switch {
		case e.Level() == 1:
			row := bucketFor(e)
			row.DomesticBalance = row.DomesticBalance.Add(e.CurrentBalance)
		case e.Sector.IsSectorZero() && e.Currency.IsDomestic():
			// Only one MXN sector-"00" value may exist per account: replace,
			// never accumulate.
			row := bucketFor(e)
			row.DomesticBalance = e.CurrentBalance
		case e.HasSector():
			row := bucketFor(e)
			row.DomesticBalance = row.DomesticBalance.Add(e.CurrentBalance)
		case e.Currency.IsUDI() && (e.IsSummaryForAnalytics || !query.UseNewSectorizationModel):
			row := bucketFor(e)
			row.DomesticBalance = row.DomesticBalance.Add(e.CurrentBalance)
		case e.Currency.Distinct(domestic) && !e.Currency.IsUDI():
			row := bucketFor(e)
			row.ForeignBalance = row.ForeignBalance.Add(e.CurrentBalance)
		default:
			// UDI entries already folded into the MXN counterpart.
		}
	}

	rows := make([]*AnaliticoEntry, 0, len(buckets))
	for _, row := range buckets {
		row.TotalBalance = row.DomesticBalance.Add(row.ForeignBalance)
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Account.Number != b.Account.Number {
			return a.Account.Number < b.Account.Number
		}
		if a.Sector.Code != b.Sector.Code {
			return a.Sector.Code < b.Sector.Code
		}
		return a.Ledger.Number < b.Ledger.Number
	})
	return rows
}

// analiticoGroupTotals accumulates one debtor and one creditor total per
// account group from the level-1 two-column rows.
func analiticoGroupTotals(rows []*AnaliticoEntry) []*AnaliticoEntry {
	type groupKey struct {
		group string
		dc    catalog.DebtorCreditor
	}
	buckets := make(map[groupKey]*AnaliticoEntry)
	for _, row := range rows {
		if row.Account.Level() != 1 || !row.Sector.IsSectorZero() {
			continue
		}
		key := groupKey{row.Account.GroupNumber(), row.Account.DebtorCreditor}
		total, ok := buckets[key]
		if !ok {
			itemType := ItemTypeTotalGroupDebtor
			groupName := "TOTAL GRUPO " + key.group + ", DEUDORAS"
			if key.dc == catalog.Acreedora {
				itemType = ItemTypeTotalGroupCreditor
				groupName = "TOTAL GRUPO " + key.group + ", ACREEDORAS"
			}
			total = &AnaliticoEntry{
				ItemType:    itemType,
				Account:     catalog.StandardAccount{DebtorCreditor: key.dc},
				GroupNumber: key.group,
				GroupName:   groupName,
			}
			buckets[key] = total
		}
		total.DomesticBalance = total.DomesticBalance.Add(row.DomesticBalance)
		total.ForeignBalance = total.ForeignBalance.Add(row.ForeignBalance)
		total.TotalBalance = total.TotalBalance.Add(row.TotalBalance)
	}
	totals := make([]*AnaliticoEntry, 0, len(buckets))
	for _, total := range buckets {
		totals = append(totals, total)
	}
	sort.SliceStable(totals, func(i, j int) bool {
		a, b := totals[i], totals[j]
		if a.GroupNumber != b.GroupNumber {
			return a.GroupNumber < b.GroupNumber
		}
		return a.ItemType == ItemTypeTotalGroupDebtor && b.ItemType != ItemTypeTotalGroupDebtor
	})
	return totals
}

// combineAnaliticoGroupTotals interleaves each group total right after the
// last row of its account group.
func combineAnaliticoGroupTotals(rows, totals []*AnaliticoEntry) []*AnaliticoEntry {
	index := make(map[string][]*AnaliticoEntry)
	for _, total := range totals {
		index[total.GroupNumber] = append(index[total.GroupNumber], total)
	}
	combined := make([]*AnaliticoEntry, 0, len(rows)+len(totals))
	var open bool
	var current string
	flush := func() {
		if open {
			combined = append(combined, index[current]...)
			delete(index, current)
		}
		open = false
	}
	for _, row := range rows {
		group := row.Account.GroupNumber()
		if !open || group != current {
			flush()
			current, open = group, true
		}
		combined = append(combined, row)
	}
	flush()
	return combined
}

// analiticoReportTotals produces the closing rows: TOTAL DEUDORAS, TOTAL
// ACREEDORAS and TOTAL DEL REPORTE. Creditor balances are negated at the
// report-total stage so debit and credit totals net against each other.
func analiticoReportTotals(groupTotals []*AnaliticoEntry) []*AnaliticoEntry {
	debtor := &AnaliticoEntry{ItemType: ItemTypeTotalDebtor, GroupName: "TOTAL DEUDORAS"}
	creditor := &AnaliticoEntry{ItemType: ItemTypeTotalCreditor, GroupName: "TOTAL ACREEDORAS"}
	for _, total := range groupTotals {
		target := debtor
		if total.ItemType == ItemTypeTotalGroupCreditor {
			target = creditor
		}
		target.DomesticBalance = target.DomesticBalance.Add(total.DomesticBalance)
		target.ForeignBalance = target.ForeignBalance.Add(total.ForeignBalance)
		target.TotalBalance = target.TotalBalance.Add(total.TotalBalance)
	}
	report := &AnaliticoEntry{
		ItemType:        ItemTypeTotalReport,
		GroupName:       "TOTAL DEL REPORTE",
		DomesticBalance: debtor.DomesticBalance.Sub(creditor.DomesticBalance),
		ForeignBalance:  debtor.ForeignBalance.Sub(creditor.ForeignBalance),
		TotalBalance:    debtor.TotalBalance.Sub(creditor.TotalBalance),
	}
	return []*AnaliticoEntry{debtor, creditor, report}
}

func analiticoAsRows(entries []*AnaliticoEntry) []Row {
	rows := make([]Row, len(entries))
	for i, e := range entries {
		rows[i] = e
	}
	return rows
}
