package catalog

import (
	"testing"

	_ "github.com/sicofin/sicofin/testing"
)

func TestStandardAccountHierarchy(t *testing.T) {
	a := StandardAccount{Number: "1101-02-03"}
	if a.Level() != 3 {
		t.Fatalf("expected level 3, got %d", a.Level())
	}
	if !a.HasParent() {
		t.Fatalf("expected account to have a parent")
	}
	if a.ParentNumber() != "1101-02" {
		t.Fatalf("unexpected parent number %q", a.ParentNumber())
	}
	root := StandardAccount{Number: "1101"}
	if root.Level() != 1 {
		t.Fatalf("expected level 1, got %d", root.Level())
	}
	if root.HasParent() {
		t.Fatalf("level-1 account must not have a parent")
	}
	if root.ParentNumber() != "" {
		t.Fatalf("unexpected parent for root: %q", root.ParentNumber())
	}
}

func TestStandardAccountGroupNumber(t *testing.T) {
	cases := map[string]string{
		"1203-01": "1200",
		"1101":    "1100",
		"24":      "24",
		"3501-09": "3500",
	}
	for number, want := range cases {
		got := StandardAccount{Number: number}.GroupNumber()
		if got != want {
			t.Fatalf("group of %s: expected %s got %s", number, want, got)
		}
	}
}

func TestChartParentSynthesizesMissingAccounts(t *testing.T) {
	chart := NewAccountsChart("IFRS", "IFRS chart", []StandardAccount{
		{ID: 1, Number: "1101", Name: "Caja", Role: RoleSumaria, DebtorCreditor: Deudora},
		{ID: 2, Number: "1101-02-03", Name: "Caja chica", Role: RoleDetalle, DebtorCreditor: Deudora},
	})

	child, ok := chart.Account("1101-02-03")
	if !ok {
		t.Fatalf("expected account 1101-02-03 in chart")
	}

	parent, ok := chart.Parent(child)
	if !ok {
		t.Fatalf("expected synthesized parent for %s", child.Number)
	}
	if parent.Number != "1101-02" || parent.Role != RoleSumaria {
		t.Fatalf("unexpected synthesized parent %+v", parent)
	}

	grandParent, ok := chart.Parent(parent)
	if !ok || grandParent.ID != 1 {
		t.Fatalf("expected registered grandparent 1101, got %+v ok=%v", grandParent, ok)
	}
	if _, ok := chart.Parent(grandParent); ok {
		t.Fatalf("level-1 account must terminate the walk")
	}
}

func TestSectorZero(t *testing.T) {
	if !SectorZero().IsSectorZero() {
		t.Fatalf("canonical sector zero must report IsSectorZero")
	}
	if (Sector{Code: "31"}).IsSectorZero() {
		t.Fatalf("sector 31 must not be sector zero")
	}
}

func TestCurrencyComparisons(t *testing.T) {
	mxn := Currency{Code: CurrencyMXN}
	usd := Currency{Code: CurrencyUSD}
	if !mxn.IsDomestic() || usd.IsDomestic() {
		t.Fatalf("domestic flag wrong")
	}
	if !mxn.Distinct(usd) || mxn.Distinct(mxn) {
		t.Fatalf("distinct comparison wrong")
	}
	if !(Currency{Code: CurrencyUDI}).IsUDI() {
		t.Fatalf("UDI flag wrong")
	}
}
