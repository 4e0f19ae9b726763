package balances

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sicofin/sicofin/internal/balances/rates"
	"github.com/sicofin/sicofin/internal/catalog"

	_ "github.com/sicofin/sicofin/testing"
)

// fakeStore serves a fixed posting set per period, cloning on every call so
// pipeline mutations never leak between builds.
type fakeStore struct {
	byPeriod map[string][]*Entry
}

func (f *fakeStore) TrialBalanceEntries(ctx context.Context, query Query, period BalancePeriod) ([]*Entry, error) {
	key := period.FromDate.Format("2006-01-02") + ".." + period.ToDate.Format("2006-01-02")
	entries := f.byPeriod[key]
	clones := make([]*Entry, len(entries))
	for i, e := range entries {
		clones[i] = e.Clone()
	}
	return clones, nil
}

// fakeRates quotes a fixed rate table for any period, valued at the period
// end.
type fakeRates struct{}

func (fakeRates) ForPeriod(ctx context.Context, fromDate, toDate time.Time) (rates.List, error) {
	quotes := []rates.Quote{
		{FromCurrency: catalog.CurrencyUSD, ToCurrency: catalog.CurrencyMXN, Rate: decimal.RequireFromString("17.25")},
		{FromCurrency: catalog.CurrencyEUR, ToCurrency: catalog.CurrencyMXN, Rate: decimal.RequireFromString("18.90")},
		{FromCurrency: catalog.CurrencyYEN, ToCurrency: catalog.CurrencyMXN, Rate: decimal.RequireFromString("0.12")},
		{FromCurrency: catalog.CurrencyUDI, ToCurrency: catalog.CurrencyMXN, Rate: decimal.RequireFromString("8.11")},
		{FromCurrency: catalog.CurrencyMXN, ToCurrency: catalog.CurrencyUSD, Rate: decimal.RequireFromString("0.058")},
		{FromCurrency: catalog.CurrencyEUR, ToCurrency: catalog.CurrencyUSD, Rate: decimal.RequireFromString("1.10")},
	}
	return rates.NewList(toDate, quotes), nil
}

// fakeCharts serves one chart for every UID request.
type fakeCharts struct {
	chart *catalog.AccountsChart
}

func (f *fakeCharts) Chart(ctx context.Context, uid string) (*catalog.AccountsChart, error) {
	return f.chart, nil
}

var (
	ledgerOne = catalog.Ledger{ID: 1, Number: "09", Name: "Contabilidad central"}
	ledgerTwo = catalog.Ledger{ID: 2, Number: "12", Name: "Fiduciario"}

	mxn = catalog.Currency{ID: 1, Code: catalog.CurrencyMXN, Name: "Peso"}
	usd = catalog.Currency{ID: 2, Code: catalog.CurrencyUSD, Name: "Dólar"}
	eur = catalog.Currency{ID: 3, Code: catalog.CurrencyEUR, Name: "Euro"}
	udi = catalog.Currency{ID: 4, Code: catalog.CurrencyUDI, Name: "UDI"}

	sector31 = catalog.Sector{ID: 31, Code: "31", Name: "Banca múltiple"}
	sector32 = catalog.Sector{ID: 32, Code: "32", Name: "Banca de desarrollo"}
)

func testChart() *catalog.AccountsChart {
	return catalog.NewAccountsChart("IFRS", "IFRS chart", []catalog.StandardAccount{
		{ID: 1, Number: "1101", Name: "Caja", Role: catalog.RoleSumaria, DebtorCreditor: catalog.Deudora},
		{ID: 2, Number: "1101-01", Name: "Caja oficinas", Role: catalog.RoleDetalle, DebtorCreditor: catalog.Deudora},
		{ID: 3, Number: "1101-02", Name: "Caja divisas", Role: catalog.RoleDetalle, DebtorCreditor: catalog.Deudora},
		{ID: 4, Number: "1203", Name: "Cartera de crédito", Role: catalog.RoleSumaria, DebtorCreditor: catalog.Deudora},
		{ID: 5, Number: "1203-01", Name: "Créditos comerciales", Role: catalog.RoleSectorizada, DebtorCreditor: catalog.Deudora},
		{ID: 6, Number: "2401", Name: "Depósitos", Role: catalog.RoleSumaria, DebtorCreditor: catalog.Acreedora},
		{ID: 7, Number: "2401-01", Name: "Depósitos a la vista", Role: catalog.RoleDetalle, DebtorCreditor: catalog.Acreedora},
		{ID: 8, Number: "3501", Name: "Capital social", Role: catalog.RoleControl, DebtorCreditor: catalog.Acreedora},
	})
}

// posting builds one raw posting entry. Current balance follows the sign
// convention of the account's natural balance.
func posting(ledger catalog.Ledger, currency catalog.Currency, account catalog.StandardAccount,
	sector catalog.Sector, initial, debit, credit string) *Entry {

	e := &Entry{
		ItemType:       ItemTypeEntry,
		Ledger:         ledger,
		Currency:       currency,
		Account:        account,
		Sector:         sector,
		InitialBalance: decimal.RequireFromString(initial),
		Debit:          decimal.RequireFromString(debit),
		Credit:         decimal.RequireFromString(credit),
	}
	if account.DebtorCreditor == catalog.Acreedora {
		e.CurrentBalance = e.InitialBalance.Add(e.Credit).Sub(e.Debit)
	} else {
		e.CurrentBalance = e.InitialBalance.Add(e.Debit).Sub(e.Credit)
	}
	return e
}

func mustAccount(chart *catalog.AccountsChart, number string) catalog.StandardAccount {
	a, ok := chart.Account(number)
	if !ok {
		panic("fixture account not in chart: " + number)
	}
	return a
}

// testPostings is the standard small fixture: two ledgers, four currencies,
// sectorized lending accounts and a creditor block, balanced enough to
// exercise every total tier.
func testPostings(chart *catalog.AccountsChart) []*Entry {
	caja := mustAccount(chart, "1101-01")
	divisas := mustAccount(chart, "1101-02")
	cartera := mustAccount(chart, "1203-01")
	depositos := mustAccount(chart, "2401-01")
	capital := mustAccount(chart, "3501")
	zero := catalog.SectorZero()

	return []*Entry{
		posting(ledgerOne, mxn, caja, zero, "1000.00", "250.00", "100.00"),
		posting(ledgerOne, mxn, divisas, zero, "500.00", "80.00", "30.00"),
		posting(ledgerOne, usd, divisas, zero, "200.00", "40.00", "10.00"),
		posting(ledgerOne, eur, divisas, zero, "100.00", "0.00", "25.00"),
		posting(ledgerOne, mxn, cartera, sector31, "800.00", "120.00", "60.00"),
		posting(ledgerOne, mxn, cartera, sector32, "400.00", "35.00", "15.00"),
		posting(ledgerOne, udi, cartera, sector31, "250.00", "10.00", "5.00"),
		posting(ledgerOne, mxn, depositos, zero, "1500.00", "90.00", "310.00"),
		posting(ledgerOne, usd, depositos, zero, "300.00", "20.00", "80.00"),
		posting(ledgerOne, mxn, capital, zero, "2000.00", "0.00", "150.00"),
		posting(ledgerTwo, mxn, caja, zero, "600.00", "75.00", "40.00"),
		posting(ledgerTwo, usd, depositos, zero, "120.00", "5.00", "45.00"),
	}
}

func testQuery(reportType TrialBalanceType) Query {
	return Query{
		AccountsChartUID: "IFRS",
		TrialBalanceType: reportType,
		BalancesType:     BalancesTypeAllAccounts,
		InitialPeriod: BalancePeriod{
			FromDate: time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
			ToDate:   time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		},
	}
}

func testEngine(chart *catalog.AccountsChart, postings []*Entry) *Engine {
	store := &fakeStore{byPeriod: map[string][]*Entry{
		"2025-04-01..2025-04-30": postings,
	}}
	return NewEngine(store, fakeRates{}, &fakeCharts{chart: chart}, nil)
}

// bigChart generates a wide multi-level chart for the end-to-end scenario:
// 12 root accounts, 8 children each, 6 leaves per child.
func bigChart() (*catalog.AccountsChart, []catalog.StandardAccount) {
	var accounts []catalog.StandardAccount
	var leaves []catalog.StandardAccount
	id := int64(1)
	for root := 0; root < 12; root++ {
		dc := catalog.Deudora
		if root >= 6 {
			dc = catalog.Acreedora
		}
		rootNumber := fmt.Sprintf("%d%d01", root/6+1, root%6+1)
		accounts = append(accounts, catalog.StandardAccount{
			ID: id, Number: rootNumber, Name: "Cuenta " + rootNumber,
			Role: catalog.RoleSumaria, DebtorCreditor: dc,
		})
		id++
		for child := 1; child <= 8; child++ {
			childNumber := fmt.Sprintf("%s-%02d", rootNumber, child)
			accounts = append(accounts, catalog.StandardAccount{
				ID: id, Number: childNumber, Name: "Subcuenta " + childNumber,
				Role: catalog.RoleSumaria, DebtorCreditor: dc,
			})
			id++
			for leaf := 1; leaf <= 6; leaf++ {
				leafNumber := fmt.Sprintf("%s-%02d", childNumber, leaf)
				account := catalog.StandardAccount{
					ID: id, Number: leafNumber, Name: "Auxiliar " + leafNumber,
					Role: catalog.RoleDetalle, DebtorCreditor: dc,
				}
				accounts = append(accounts, account)
				leaves = append(leaves, account)
				id++
			}
		}
	}
	return catalog.NewAccountsChart("IFRS", "IFRS chart", accounts), leaves
}

// bigPostings posts one MXN row per leaf and one USD row on every third
// leaf, with deterministic pseudo-amounts.
func bigPostings(leaves []catalog.StandardAccount) []*Entry {
	var postings []*Entry
	for i, leaf := range leaves {
		initial := fmt.Sprintf("%d.00", 100+i%97)
		debit := fmt.Sprintf("%d.00", 10+i%13)
		credit := fmt.Sprintf("%d.00", 3+i%7)
		postings = append(postings, posting(ledgerOne, mxn, leaf, catalog.SectorZero(), initial, debit, credit))
		if i%3 == 0 {
			postings = append(postings, posting(ledgerOne, usd, leaf, catalog.SectorZero(), "50.00", "5.00", "2.00"))
		}
	}
	return postings
}
