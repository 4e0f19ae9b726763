package balances

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSaldosPorCuentaConsolidatesLedgers(t *testing.T) {
	report := buildReport(t, testQuery(TrialBalanceTypeSaldosPorCuentaYMayores))

	var caja *Entry
	for _, row := range report.Entries {
		e := row.(*Entry)
		if e.ItemType.IsTotal() {
			t.Fatalf("consolidated mode must not emit per-account totals, got %s", e.ItemType)
		}
		if e.Account.Number == "1101-01" && e.Currency.Code == "MXN" {
			if caja != nil {
				t.Fatalf("expected one consolidated row per account and currency")
			}
			caja = e
		}
	}
	if caja == nil {
		t.Fatalf("no consolidated row for 1101-01")
	}
	// 1150 on the central ledger plus 635 on the fiduciary one.
	if want := decimal.RequireFromString("1785.00"); !caja.CurrentBalance.Equal(want) {
		t.Fatalf("consolidated balance: expected %s got %s", want, caja.CurrentBalance)
	}
	if caja.Ledger.Name != "Consolidada" {
		t.Fatalf("consolidated rows carry the synthetic ledger, got %q", caja.Ledger.Name)
	}
}

func TestSaldosPorCuentaCascadeKeepsLedgersApart(t *testing.T) {
	query := testQuery(TrialBalanceTypeSaldosPorCuentaYMayores)
	query.ShowCascadeBalances = true
	report := buildReport(t, query)

	var block []*Entry
	var total *Entry
	for _, row := range report.Entries {
		e := row.(*Entry)
		if e.Account.Number != "1101-01" || e.Currency.Code != "MXN" {
			continue
		}
		if e.ItemType == ItemTypeTotalByAccount {
			total = e
			break
		}
		block = append(block, e)
	}
	if len(block) != 2 {
		t.Fatalf("expected one row per ledger, got %d", len(block))
	}
	if block[0].Ledger.Number != "09" || block[1].Ledger.Number != "12" {
		t.Fatalf("ledger order: %s %s", block[0].Ledger.Number, block[1].Ledger.Number)
	}
	if want := decimal.RequireFromString("1150.00"); !block[0].CurrentBalance.Equal(want) {
		t.Fatalf("ledger 09 balance: expected %s got %s", want, block[0].CurrentBalance)
	}
	if want := decimal.RequireFromString("635.00"); !block[1].CurrentBalance.Equal(want) {
		t.Fatalf("ledger 12 balance: expected %s got %s", want, block[1].CurrentBalance)
	}
	if total == nil {
		t.Fatalf("cascade mode must close the block with TOTAL CUENTA")
	}
	if total.GroupName != "TOTAL CUENTA 1101-01" {
		t.Fatalf("unexpected total label %q", total.GroupName)
	}
	if !total.CurrentBalance.Equal(block[0].CurrentBalance.Add(block[1].CurrentBalance)) {
		t.Fatalf("TOTAL CUENTA must sum its ledger rows")
	}
}

func TestSaldosPorCuentaValuatesOnRequest(t *testing.T) {
	query := testQuery(TrialBalanceTypeSaldosPorCuentaYMayores)
	query.ValuateBalances = true
	report := buildReport(t, query)

	for _, row := range report.Entries {
		e := row.(*Entry)
		if e.Account.Number == "1101-02" && e.Currency.Code == "USD" {
			// 230 dollars at 17.25.
			if want := decimal.RequireFromString("3967.50"); !e.CurrentBalance.Equal(want) {
				t.Fatalf("valued balance: expected %s got %s", want, e.CurrentBalance)
			}
			return
		}
	}
	t.Fatalf("no USD row for 1101-02")
}
