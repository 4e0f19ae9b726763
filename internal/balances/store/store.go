package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/sicofin/sicofin/internal/balances"
	"github.com/sicofin/sicofin/internal/catalog"
)

// TrialBalanceStore is the pgx-backed balances data service: it returns one
// row per ledger, account, sector, currency and subledger with the
// non-aggregated balances of the requested period. All aggregation happens
// in the engine.
type TrialBalanceStore struct {
	db *pgxpool.Pool
}

// New constructs the store over a connection pool.
func New(db *pgxpool.Pool) *TrialBalanceStore {
	return &TrialBalanceStore{db: db}
}

// TrialBalanceEntries implements balances.DataService.
func (s *TrialBalanceStore) TrialBalanceEntries(ctx context.Context, query balances.Query, period balances.BalancePeriod) ([]*balances.Entry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT l.id, l.number, l.name,
		        c.id, c.code,
		        a.id, a.number, a.name, a.role, a.debtor_creditor,
		        s.id, COALESCE(s.code, '00'),
		        COALESCE(b.subledger_account_id, 0), COALESCE(sub.number, ''),
		        b.initial_balance::text, b.debit::text, b.credit::text,
		        b.current_balance::text, b.average_balance::text,
		        b.last_change_date
		   FROM account_balances b
		   JOIN ledgers l            ON l.id = b.ledger_id
		   JOIN currencies c         ON c.id = b.currency_id
		   JOIN standard_accounts a  ON a.id = b.account_id
		   LEFT JOIN sectors s       ON s.id = b.sector_id
		   LEFT JOIN subledger_accounts sub ON sub.id = b.subledger_account_id
		  WHERE a.chart_uid = $1
		    AND b.from_date = $2
		    AND b.to_date   = $3
		  ORDER BY l.number, c.code, a.number, COALESCE(s.code, '00'), sub.number`,
		query.AccountsChartUID, period.FromDate, period.ToDate)
	if err != nil {
		return nil, fmt.Errorf("store: query trial balance entries: %w", err)
	}
	defer rows.Close()

	var entries []*balances.Entry
	for rows.Next() {
		e := &balances.Entry{ItemType: balances.ItemTypeEntry}
		var sectorID *int64
		var initial, debit, credit, current, average string
		err := rows.Scan(
			&e.Ledger.ID, &e.Ledger.Number, &e.Ledger.Name,
			&e.Currency.ID, &e.Currency.Code,
			&e.Account.ID, &e.Account.Number, &e.Account.Name, &e.Account.Role, &e.Account.DebtorCreditor,
			&sectorID, &e.Sector.Code,
			&e.SubledgerAccountID, &e.SubledgerAccount,
			&initial, &debit, &credit, &current, &average,
			&e.LastChangeDate)
		if err != nil {
			return nil, fmt.Errorf("store: scan trial balance entry: %w", err)
		}
		if sectorID != nil {
			e.Sector.ID = *sectorID
		}
		if e.InitialBalance, err = decimal.NewFromString(initial); err != nil {
			return nil, fmt.Errorf("store: parse initial balance: %w", err)
		}
		if e.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("store: parse debit: %w", err)
		}
		if e.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("store: parse credit: %w", err)
		}
		if e.CurrentBalance, err = decimal.NewFromString(current); err != nil {
			return nil, fmt.Errorf("store: parse current balance: %w", err)
		}
		if e.AverageBalance, err = decimal.NewFromString(average); err != nil {
			return nil, fmt.Errorf("store: parse average balance: %w", err)
		}
		if !query.WithSubledgerAccount && query.TrialBalanceType != balances.TrialBalanceTypeSaldosPorAuxiliar {
			e.SubledgerAccountID = 0
			e.SubledgerAccount = ""
		}
		if e.Sector.Code == "" {
			e.Sector = catalog.SectorZero()
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
