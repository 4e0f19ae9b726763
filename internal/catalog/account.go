package catalog

import "strings"

// AccountRole enumerates how an account participates in the chart.
type AccountRole string

const (
	// RoleSumaria marks a non-posting account that only summarizes children.
	RoleSumaria AccountRole = "SUMARIA"
	// RoleDetalle marks a posting leaf account.
	RoleDetalle AccountRole = "DETALLE"
	// RoleControl marks an account controlled through subledger accounts.
	RoleControl AccountRole = "CONTROL"
	// RoleSectorizada marks an account whose postings carry a sector.
	RoleSectorizada AccountRole = "SECTORIZADA"
)

// DebtorCreditor is the natural balance sign of an account.
type DebtorCreditor string

const (
	Deudora   DebtorCreditor = "DEUDORA"
	Acreedora DebtorCreditor = "ACREEDORA"
)

// NumberSeparator splits the segments of an account number.
const NumberSeparator = "-"

// StandardAccount models one node of a chart of accounts. The hierarchy is
// encoded in the account number: each NumberSeparator-delimited segment adds
// one level, so "1101-02-03" is a level-3 child of "1101-02".
type StandardAccount struct {
	ID             int64
	Number         string
	Name           string
	Role           AccountRole
	DebtorCreditor DebtorCreditor
}

// IsEmpty reports whether the account is the zero value.
func (a StandardAccount) IsEmpty() bool {
	return a.Number == ""
}

// Level returns the depth of the account in the chart, starting at 1.
func (a StandardAccount) Level() int {
	if a.Number == "" {
		return 0
	}
	return strings.Count(a.Number, NumberSeparator) + 1
}

// HasParent reports whether the account hangs below another account.
func (a StandardAccount) HasParent() bool {
	return strings.Contains(a.Number, NumberSeparator)
}

// ParentNumber returns the number of the immediate parent account, or the
// empty string for level-1 accounts.
func (a StandardAccount) ParentNumber() string {
	idx := strings.LastIndex(a.Number, NumberSeparator)
	if idx < 0 {
		return ""
	}
	return a.Number[:idx]
}

// GroupNumber returns the regulatory account-group code the account reports
// under: the first two digits of the first segment, zero-padded to the
// segment's length ("1203-01" belongs to group "1200").
func (a StandardAccount) GroupNumber() string {
	first := a.Number
	if idx := strings.Index(first, NumberSeparator); idx > 0 {
		first = first[:idx]
	}
	if len(first) <= 2 {
		return first
	}
	return first[:2] + strings.Repeat("0", len(first)-2)
}
