package balances

import (
	"context"
	"sort"

	"github.com/sicofin/sicofin/internal/catalog"
)

// buildSaldosPorAuxiliar lists, for every subledger account (auxiliar), a
// header row with its consolidated balance followed by the account-level
// detail rows it posts into. Detail rows track their parent through
// SubledgerParentID.
func (e *Engine) buildSaldosPorAuxiliar(ctx context.Context, query Query, chart *catalog.AccountsChart) ([]Row, error) {
	query.WithSubledgerAccount = true
	helper := NewHelper(query, chart)

	postings, err := e.postingEntries(ctx, helper, query, query.InitialPeriod)
	if err != nil {
		return nil, err
	}
	if query.ValuateBalances {
		list, err := e.resolvedRates(ctx, query.InitialPeriod)
		if err != nil {
			return nil, err
		}
		if err := helper.ValuateToExchangeRate(postings, list); err != nil {
			return nil, err
		}
	}
	helper.RoundEntries(postings)

	type auxKey struct {
		subledger int64
		ledger    string
		currency  string
	}
	headers := make(map[auxKey]*Entry)
	details := make([]*Entry, 0, len(postings))
	for _, posting := range postings {
		if posting.SubledgerAccountID == 0 {
			continue
		}
		key := auxKey{posting.SubledgerAccountID, posting.Ledger.Number, posting.Currency.Code}
		header, ok := headers[key]
		if !ok {
			header = &Entry{
				ItemType:           ItemTypeSummary,
				Ledger:             posting.Ledger,
				Currency:           posting.Currency,
				SubledgerAccountID: posting.SubledgerAccountID,
				SubledgerAccount:   posting.SubledgerAccount,
				GroupName:          "AUXILIAR " + posting.SubledgerAccount,
			}
			headers[key] = header
		}
		header.Sum(posting)

		detail := posting.Clone()
		detail.ItemType = ItemTypeEntry
		detail.SubledgerParentID = posting.SubledgerAccountID
		details = append(details, detail)
	}

	sort.SliceStable(details, func(i, j int) bool {
		a, b := details[i], details[j]
		if a.SubledgerAccount != b.SubledgerAccount {
			return a.SubledgerAccount < b.SubledgerAccount
		}
		if a.Ledger.Number != b.Ledger.Number {
			return a.Ledger.Number < b.Ledger.Number
		}
		if a.Currency.Code != b.Currency.Code {
			return a.Currency.Code < b.Currency.Code
		}
		return a.Account.Number < b.Account.Number
	})

	report := make([]Row, 0, len(details)+len(headers))
	var openKey auxKey
	var open bool
	for _, detail := range details {
		key := auxKey{detail.SubledgerParentID, detail.Ledger.Number, detail.Currency.Code}
		if !open || key != openKey {
			report = append(report, headers[key])
			openKey, open = key, true
		}
		report = append(report, detail)
	}
	return report, nil
}
