package balances

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sicofin/sicofin/internal/catalog"
)

func findEntry(entries []*Entry, itemType ItemType, account, sector, currency, ledger string) *Entry {
	for _, e := range entries {
		if e.ItemType == itemType && e.Account.Number == account &&
			e.Sector.Code == sector && e.Currency.Code == currency &&
			e.Ledger.Number == ledger {
			return e
		}
	}
	return nil
}

func TestGenerateSummaryEntriesRollsUpHierarchy(t *testing.T) {
	chart := testChart()
	postings := testPostings(chart)
	helper := NewHelper(testQuery(TrialBalanceTypeBalanza), chart)

	summaries := helper.GenerateSummaryEntries(postings)

	caja := findEntry(summaries, ItemTypeSummary, "1101", "00", "MXN", "09")
	if caja == nil {
		t.Fatalf("expected MXN summary for account 1101 in ledger 09")
	}
	// 1101-01 (1150) + 1101-02 (550)
	if want := decimal.RequireFromString("1700.00"); !caja.CurrentBalance.Equal(want) {
		t.Fatalf("summary 1101: expected %s got %s", want, caja.CurrentBalance)
	}

	cartera31 := findEntry(summaries, ItemTypeSummary, "1203", "31", "MXN", "09")
	if cartera31 == nil || !cartera31.CurrentBalance.Equal(decimal.RequireFromString("860.00")) {
		t.Fatalf("expected sector-31 summary of 860.00 for account 1203, got %+v", cartera31)
	}
}

func TestGenerateSummaryEntriesContributesOncePerAncestor(t *testing.T) {
	chart := catalog.NewAccountsChart("IFRS", "IFRS", []catalog.StandardAccount{
		{ID: 1, Number: "1101", Role: catalog.RoleSumaria, DebtorCreditor: catalog.Deudora},
		{ID: 2, Number: "1101-01", Role: catalog.RoleSumaria, DebtorCreditor: catalog.Deudora},
		{ID: 3, Number: "1101-01-01", Role: catalog.RoleDetalle, DebtorCreditor: catalog.Deudora},
	})
	leaf := mustAccount(chart, "1101-01-01")
	postings := []*Entry{
		posting(ledgerOne, mxn, leaf, catalog.SectorZero(), "100.00", "50.00", "20.00"),
	}
	helper := NewHelper(testQuery(TrialBalanceTypeBalanza), chart)

	summaries := helper.GenerateSummaryEntries(postings)
	if len(summaries) != 2 {
		t.Fatalf("expected one summary per ancestor, got %d", len(summaries))
	}
	for _, s := range summaries {
		if !s.CurrentBalance.Equal(decimal.RequireFromString("130.00")) {
			t.Fatalf("ancestor %s: expected 130.00 got %s", s.Account.Number, s.CurrentBalance)
		}
	}
}

func TestGenerateSummaryEntriesFlagsParentPostings(t *testing.T) {
	chart := catalog.NewAccountsChart("IFRS", "IFRS", []catalog.StandardAccount{
		{ID: 1, Number: "3501", Role: catalog.RoleControl, DebtorCreditor: catalog.Acreedora},
		{ID: 2, Number: "3501-01", Role: catalog.RoleDetalle, DebtorCreditor: catalog.Acreedora},
	})
	parent := mustAccount(chart, "3501")
	child := mustAccount(chart, "3501-01")
	postings := []*Entry{
		posting(ledgerOne, mxn, parent, catalog.SectorZero(), "100.00", "0.00", "10.00"),
		posting(ledgerOne, mxn, child, catalog.SectorZero(), "50.00", "0.00", "5.00"),
	}
	helper := NewHelper(testQuery(TrialBalanceTypeBalanza), chart)
	helper.GenerateSummaryEntries(postings)

	if !postings[0].IsParentPostingEntry {
		t.Fatalf("account that posts and has posting children must be flagged")
	}
	if postings[1].IsParentPostingEntry {
		t.Fatalf("leaf posting must not be flagged")
	}
}

func TestValuateToExchangeRateTagsAndConverts(t *testing.T) {
	chart := testChart()
	divisas := mustAccount(chart, "1101-02")
	entries := []*Entry{
		posting(ledgerOne, usd, divisas, catalog.SectorZero(), "200.00", "40.00", "10.00"),
		posting(ledgerOne, mxn, divisas, catalog.SectorZero(), "500.00", "80.00", "30.00"),
	}
	helper := NewHelper(testQuery(TrialBalanceTypeBalanza), chart)
	list, _ := fakeRates{}.ForPeriod(t.Context(), testQuery(TrialBalanceTypeBalanza).InitialPeriod.FromDate, testQuery(TrialBalanceTypeBalanza).InitialPeriod.ToDate)

	if err := helper.ValuateToExchangeRate(entries, list); err != nil {
		t.Fatalf("ValuateToExchangeRate error: %v", err)
	}
	if want := decimal.RequireFromString("3967.5"); !entries[0].CurrentBalance.Equal(want) {
		t.Fatalf("valued USD balance: expected %s got %s", want, entries[0].CurrentBalance)
	}
	if !entries[0].ExchangeRate.Equal(decimal.RequireFromString("17.25")) {
		t.Fatalf("expected exchange rate tagged on entry, got %s", entries[0].ExchangeRate)
	}
	if !entries[1].CurrentBalance.Equal(decimal.RequireFromString("550.00")) {
		t.Fatalf("target-currency entry must keep its amounts, got %s", entries[1].CurrentBalance)
	}
	if !entries[1].ExchangeRate.Equal(decimal.NewFromInt(1)) {
		t.Fatalf("target-currency entry must carry parity rate, got %s", entries[1].ExchangeRate)
	}
}

func TestSectorizeToSectorZero(t *testing.T) {
	chart := testChart()
	postings := testPostings(chart)
	helper := NewHelper(testQuery(TrialBalanceTypeBalanza), chart)

	rollups := helper.SectorizeToSectorZero(postings)

	cartera := findEntry(rollups, ItemTypeBalanceSummary, "1203-01", "00", "MXN", "09")
	if cartera == nil {
		t.Fatalf("expected synthesized sector-00 rollup for 1203-01")
	}
	// sector 31 (860) + sector 32 (420)
	if want := decimal.RequireFromString("1280.00"); !cartera.CurrentBalance.Equal(want) {
		t.Fatalf("sector rollup: expected %s got %s", want, cartera.CurrentBalance)
	}

	// Accounts that post directly in sector 00 get no synthetic rollup.
	if caja := findEntry(rollups, ItemTypeBalanceSummary, "1101-01", "00", "MXN", "09"); caja != nil {
		t.Fatalf("unexpected rollup for unsectorized account: %+v", caja)
	}
}

func TestRestrictLevelsKeepsTotals(t *testing.T) {
	chart := testChart()
	query := testQuery(TrialBalanceTypeBalanza)
	query.Level = 1
	helper := NewHelper(query, chart)

	deep := posting(ledgerOne, mxn, mustAccount(chart, "1101-01"), catalog.SectorZero(), "10.00", "0.00", "0.00")
	top := posting(ledgerOne, mxn, mustAccount(chart, "3501"), catalog.SectorZero(), "10.00", "0.00", "0.00")
	total := &Entry{ItemType: ItemTypeTotalCurrency, Ledger: ledgerOne, Currency: mxn}

	restricted := helper.RestrictLevels([]*Entry{deep, top, total})
	if len(restricted) != 2 {
		t.Fatalf("expected deep entry dropped and total kept, got %d rows", len(restricted))
	}
	if restricted[0] != top || restricted[1] != total {
		t.Fatalf("unexpected restriction result")
	}
}

func TestFilterPostingEntriesByBalancesType(t *testing.T) {
	chart := testChart()
	caja := mustAccount(chart, "1101-01")
	still := posting(ledgerOne, mxn, caja, catalog.SectorZero(), "100.00", "0.00", "0.00")
	moved := posting(ledgerOne, mxn, caja, catalog.SectorZero(), "0.00", "10.00", "10.00")
	empty := posting(ledgerOne, mxn, caja, catalog.SectorZero(), "0.00", "0.00", "0.00")

	query := testQuery(TrialBalanceTypeBalanza)
	query.BalancesType = BalancesTypeWithMovements
	if got := NewHelper(query, chart).FilterPostingEntries([]*Entry{still.Clone(), moved.Clone(), empty.Clone()}); len(got) != 1 {
		t.Fatalf("WithMovements: expected 1 entry got %d", len(got))
	}

	query.BalancesType = BalancesTypeWithCurrentBalanceOrMovements
	if got := NewHelper(query, chart).FilterPostingEntries([]*Entry{still.Clone(), moved.Clone(), empty.Clone()}); len(got) != 2 {
		t.Fatalf("WithCurrentBalanceOrMovements: expected 2 entries got %d", len(got))
	}

	query.BalancesType = BalancesTypeAllAccounts
	if got := NewHelper(query, chart).FilterPostingEntries([]*Entry{still.Clone(), moved.Clone(), empty.Clone()}); len(got) != 3 {
		t.Fatalf("AllAccounts: expected 3 entries got %d", len(got))
	}
}

func TestPadCatalogAccountsCompletesTheCatalog(t *testing.T) {
	chart := testChart()
	query := testQuery(TrialBalanceTypeBalanza)
	query.BalancesType = BalancesTypeAllAccountsInCatalog
	helper := NewHelper(query, chart)

	caja := mustAccount(chart, "1101-01")
	padded := helper.PadCatalogAccounts([]*Entry{
		posting(ledgerOne, mxn, caja, catalog.SectorZero(), "100.00", "0.00", "0.00"),
	})

	// 1101-01 present; 1101-02, 1203-01, 2401-01 and 3501 padded with zeros.
	// Summary-role accounts are not padded.
	if len(padded) != 5 {
		t.Fatalf("expected 5 entries after padding, got %d", len(padded))
	}
	zero := findEntry(padded, ItemTypeEntry, "2401-01", "00", "MXN", "09")
	if zero == nil || !zero.CurrentBalance.IsZero() {
		t.Fatalf("expected zero-balance pad for 2401-01, got %+v", zero)
	}
}
