package balances

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sicofin/sicofin/internal/catalog"
)

// ItemType distinguishes raw posting rows from the synthesized rollup rows a
// report pipeline produces.
type ItemType string

const (
	ItemTypeEntry                     ItemType = "ENTRY"
	ItemTypeSummary                   ItemType = "SUMMARY"
	ItemTypeBalanceSummary            ItemType = "BALANCE_SUMMARY"
	ItemTypeTotalGroupDebtor          ItemType = "TOTAL_GROUP_DEBTOR"
	ItemTypeTotalGroupCreditor        ItemType = "TOTAL_GROUP_CREDITOR"
	ItemTypeTotalDebtor               ItemType = "TOTAL_DEBTOR"
	ItemTypeTotalCreditor             ItemType = "TOTAL_CREDITOR"
	ItemTypeTotalCurrency             ItemType = "TOTAL_CURRENCY"
	ItemTypeTotalByAccount            ItemType = "TOTAL_BY_ACCOUNT"
	ItemTypeTotalConsolidatedByLedger ItemType = "TOTAL_CONSOLIDATED_BY_LEDGER"
	ItemTypeTotalConsolidated         ItemType = "TOTAL_CONSOLIDATED"
	ItemTypeTotalReport               ItemType = "TOTAL_REPORT"
)

// IsTotal reports whether the item type is one of the synthesized total rows
// that survive level restriction regardless of account depth.
func (t ItemType) IsTotal() bool {
	switch t {
	case ItemTypeTotalGroupDebtor, ItemTypeTotalGroupCreditor,
		ItemTypeTotalDebtor, ItemTypeTotalCreditor,
		ItemTypeTotalCurrency, ItemTypeTotalByAccount,
		ItemTypeTotalConsolidatedByLedger, ItemTypeTotalConsolidated,
		ItemTypeTotalReport:
		return true
	}
	return false
}

// Row is the minimal surface every report row variant exposes to the mapping
// and export layers.
type Row interface {
	Kind() ItemType
	AccountNumber() string
	SectorCode() string
	CurrencyCode() string
	Balance() decimal.Decimal
}

// Entry is one trial balance line: account × sector × currency × ledger ×
// subledger. Identity fields are set at construction; amount fields mutate
// during aggregation through Sum.
type Entry struct {
	ItemType           ItemType
	Ledger             catalog.Ledger
	Currency           catalog.Currency
	Account            catalog.StandardAccount
	Sector             catalog.Sector
	SubledgerAccountID int64
	SubledgerAccount   string
	SubledgerParentID  int64

	InitialBalance decimal.Decimal
	Debit          decimal.Decimal
	Credit         decimal.Decimal
	CurrentBalance decimal.Decimal
	ExchangeRate   decimal.Decimal
	AverageBalance decimal.Decimal

	GroupNumber string
	GroupName   string

	IsParentPostingEntry  bool
	IsSummaryForAnalytics bool

	LastChangeDate time.Time
}

// Kind implements Row.
func (e *Entry) Kind() ItemType { return e.ItemType }

// AccountNumber implements Row.
func (e *Entry) AccountNumber() string { return e.Account.Number }

// SectorCode implements Row.
func (e *Entry) SectorCode() string { return e.Sector.Code }

// CurrencyCode implements Row.
func (e *Entry) CurrencyCode() string { return e.Currency.Code }

// Balance implements Row.
func (e *Entry) Balance() decimal.Decimal { return e.CurrentBalance }

// Level returns the account hierarchy depth of the entry.
func (e *Entry) Level() int { return e.Account.Level() }

// HasSector reports whether the entry carries sector detail.
func (e *Entry) HasSector() bool { return !e.Sector.IsSectorZero() }

// DebtorCreditor returns the natural balance sign of the entry's account.
func (e *Entry) DebtorCreditor() catalog.DebtorCreditor {
	return e.Account.DebtorCreditor
}

// Sum accumulates another entry's amounts into this one. Identity fields are
// left untouched; the exchange rate is adopted from the contributor when this
// entry has none yet.
func (e *Entry) Sum(other *Entry) {
	e.InitialBalance = e.InitialBalance.Add(other.InitialBalance)
	e.Debit = e.Debit.Add(other.Debit)
	e.Credit = e.Credit.Add(other.Credit)
	e.CurrentBalance = e.CurrentBalance.Add(other.CurrentBalance)
	e.AverageBalance = e.AverageBalance.Add(other.AverageBalance)
	if e.ExchangeRate.IsZero() {
		e.ExchangeRate = other.ExchangeRate
	}
	if other.LastChangeDate.After(e.LastChangeDate) {
		e.LastChangeDate = other.LastChangeDate
	}
}

// Clone returns an independent copy of the entry.
func (e *Entry) Clone() *Entry {
	clone := *e
	return &clone
}

// HasMovements reports whether the entry registered any debit or credit in
// the period.
func (e *Entry) HasMovements() bool {
	return !e.Debit.IsZero() || !e.Credit.IsZero()
}
