package balances

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sicofin/sicofin/internal/catalog"
)

// CurrencyColumnsEntry is one row of the balanza en columnas por moneda: a
// level-1 account with one column per report currency, amounts kept in their
// original currency.
type CurrencyColumnsEntry struct {
	ItemType        ItemType
	Account         catalog.StandardAccount
	DomesticBalance decimal.Decimal
	DollarBalance   decimal.Decimal
	YenBalance      decimal.Decimal
	EuroBalance     decimal.Decimal
	UdisBalance     decimal.Decimal
}

// Kind implements Row.
func (c *CurrencyColumnsEntry) Kind() ItemType { return c.ItemType }

// AccountNumber implements Row.
func (c *CurrencyColumnsEntry) AccountNumber() string { return c.Account.Number }

// SectorCode implements Row.
func (c *CurrencyColumnsEntry) SectorCode() string { return catalog.SectorZeroCode }

// CurrencyCode implements Row. Column rows span all currencies.
func (c *CurrencyColumnsEntry) CurrencyCode() string { return "" }

// Balance implements Row.
func (c *CurrencyColumnsEntry) Balance() decimal.Decimal { return c.DomesticBalance }

// buildBalanzaEnColumnasPorMoneda aggregates every posting into its level-1
// ancestor, one row per root account with one balance column per currency.
func (e *Engine) buildBalanzaEnColumnasPorMoneda(ctx context.Context, query Query, chart *catalog.AccountsChart) ([]Row, error) {
	helper := NewHelper(query, chart)

	postings, err := e.postingEntries(ctx, helper, query, query.InitialPeriod)
	if err != nil {
		return nil, err
	}
	helper.RoundEntries(postings)

	buckets := make(map[string]*CurrencyColumnsEntry)
	for _, posting := range postings {
		rootNumber := posting.Account.Number
		if idx := strings.Index(rootNumber, catalog.NumberSeparator); idx > 0 {
			rootNumber = rootNumber[:idx]
		}
		row, ok := buckets[rootNumber]
		if !ok {
			root, registered := chart.Account(rootNumber)
			if !registered {
				root = catalog.StandardAccount{
					Number:         rootNumber,
					Name:           posting.Account.Name,
					Role:           catalog.RoleSumaria,
					DebtorCreditor: posting.Account.DebtorCreditor,
				}
			}
			row = &CurrencyColumnsEntry{ItemType: ItemTypeSummary, Account: root}
			buckets[rootNumber] = row
		}
		switch posting.Currency.Code {
		case catalog.CurrencyMXN:
			row.DomesticBalance = row.DomesticBalance.Add(posting.CurrentBalance)
		case catalog.CurrencyUSD:
			row.DollarBalance = row.DollarBalance.Add(posting.CurrentBalance)
		case catalog.CurrencyYEN:
			row.YenBalance = row.YenBalance.Add(posting.CurrentBalance)
		case catalog.CurrencyEUR:
			row.EuroBalance = row.EuroBalance.Add(posting.CurrentBalance)
		case catalog.CurrencyUDI:
			row.UdisBalance = row.UdisBalance.Add(posting.CurrentBalance)
		default:
			row.DomesticBalance = row.DomesticBalance.Add(posting.CurrentBalance)
		}
	}

	numbers := make([]string, 0, len(buckets))
	for number := range buckets {
		numbers = append(numbers, number)
	}
	sort.Strings(numbers)

	report := make([]Row, 0, len(numbers))
	for _, number := range numbers {
		report = append(report, buckets[number])
	}
	return report, nil
}
