package catalog

import "sort"

// AccountsChart holds the full account catalog for one regulatory chart
// (e.g. IFRS, CNBV). Lookups are by account number.
type AccountsChart struct {
	UID      string
	Name     string
	accounts map[string]StandardAccount
}

// NewAccountsChart indexes the given accounts under the chart identity.
func NewAccountsChart(uid, name string, accounts []StandardAccount) *AccountsChart {
	indexed := make(map[string]StandardAccount, len(accounts))
	for _, a := range accounts {
		indexed[a.Number] = a
	}
	return &AccountsChart{UID: uid, Name: name, accounts: indexed}
}

// Account returns the account with the given number.
func (c *AccountsChart) Account(number string) (StandardAccount, bool) {
	a, ok := c.accounts[number]
	return a, ok
}

// Parent resolves the immediate parent of an account. When the catalog does
// not register the parent explicitly, a summary account is synthesized from
// the number so hierarchy walks never break on sparse charts.
func (c *AccountsChart) Parent(a StandardAccount) (StandardAccount, bool) {
	number := a.ParentNumber()
	if number == "" {
		return StandardAccount{}, false
	}
	if parent, ok := c.accounts[number]; ok {
		return parent, true
	}
	return StandardAccount{
		Number:         number,
		Name:           a.Name,
		Role:           RoleSumaria,
		DebtorCreditor: a.DebtorCreditor,
	}, true
}

// Accounts returns every registered account ordered by number.
func (c *AccountsChart) Accounts() []StandardAccount {
	list := make([]StandardAccount, 0, len(c.accounts))
	for _, a := range c.accounts {
		list = append(list, a)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Number < list[j].Number })
	return list
}

// Size returns the number of registered accounts.
func (c *AccountsChart) Size() int {
	return len(c.accounts)
}
