package balances

import (
	"context"

	"github.com/sicofin/sicofin/internal/catalog"
)

// buildBalanzaTradicional is the traditional trial balance pipeline. The
// stage order is fixed: valuation before rounding, rounding before summary
// generation and totals, sectorization before combination.
func (e *Engine) buildBalanzaTradicional(ctx context.Context, query Query, chart *catalog.AccountsChart) ([]Row, error) {
	helper := NewHelper(query, chart)

	postings, err := e.postingEntries(ctx, helper, query, query.InitialPeriod)
	if err != nil {
		return nil, err
	}
	if query.ValuateBalances || query.ConsolidateBalancesToTargetCurrency {
		list, err := e.resolvedRates(ctx, query.InitialPeriod)
		if err != nil {
			return nil, err
		}
		if err := helper.ValuateToExchangeRate(postings, list); err != nil {
			return nil, err
		}
	}
	helper.RoundEntries(postings)

	summaries := helper.GenerateSummaryEntries(postings)
	if query.WithSectorization || query.UseNewSectorizationModel {
		combined := append(append([]*Entry(nil), summaries...), postings...)
		summaries = append(summaries, helper.SectorizeToSectorZero(combined)...)
	}

	report := helper.CombineSummaryAndPostingEntries(summaries, postings)
	report = helper.RestrictLevels(report)

	groupTotals := helper.GenerateTotalGroups(postings)
	report = helper.CombineGroupTotalsAndEntries(report, groupTotals)

	dcTotals := helper.GenerateTotalDebtorCreditor(groupTotals)
	report = helper.CombineDebtorCreditorTotalsAndEntries(report, dcTotals)

	currencyTotals := helper.GenerateTotalByCurrency(dcTotals)
	report = helper.CombineCurrencyTotalsAndEntries(report, currencyTotals)

	if query.ShowCascadeBalances {
		ledgerTotals := helper.GenerateTotalConsolidatedByLedger(currencyTotals)
		report = helper.CombineLedgerTotalsAndEntries(report, ledgerTotals)
	}
	if query.ConsolidateBalancesToTargetCurrency || singleCurrency(currencyTotals) {
		report = helper.AppendConsolidatedTotal(report, helper.GenerateTotalConsolidated(currencyTotals))
	}
	return asRows(report), nil
}

// singleCurrency reports whether every currency total shares one currency,
// in which case the grand total is well defined without valuation.
func singleCurrency(currencyTotals []*Entry) bool {
	if len(currencyTotals) == 0 {
		return false
	}
	code := currencyTotals[0].Currency.Code
	for _, total := range currencyTotals[1:] {
		if total.Currency.Code != code {
			return false
		}
	}
	return true
}
