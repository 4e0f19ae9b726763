package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrChartNotFound indicates the requested accounts chart does not exist.
var ErrChartNotFound = errors.New("catalog: accounts chart not found")

// Repository loads chart-of-accounts catalogs from the database.
type Repository interface {
	Chart(ctx context.Context, uid string) (*AccountsChart, error)
	Ledgers(ctx context.Context, chartUID string) ([]Ledger, error)
	Currencies(ctx context.Context) ([]Currency, error)
	Sectors(ctx context.Context) ([]Sector, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the pgx-backed catalog repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Chart(ctx context.Context, uid string) (*AccountsChart, error) {
	var name string
	err := r.db.QueryRow(ctx,
		`SELECT name FROM accounts_charts WHERE uid = $1`, uid).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrChartNotFound, uid)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: load chart %s: %w", uid, err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, number, name, role, debtor_creditor
		   FROM standard_accounts
		  WHERE chart_uid = $1
		  ORDER BY number`, uid)
	if err != nil {
		return nil, fmt.Errorf("catalog: load accounts for %s: %w", uid, err)
	}
	defer rows.Close()

	var accounts []StandardAccount
	for rows.Next() {
		var a StandardAccount
		if err := rows.Scan(&a.ID, &a.Number, &a.Name, &a.Role, &a.DebtorCreditor); err != nil {
			return nil, fmt.Errorf("catalog: scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return NewAccountsChart(uid, name, accounts), nil
}

func (r *repository) Ledgers(ctx context.Context, chartUID string) ([]Ledger, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, number, name FROM ledgers WHERE chart_uid = $1 ORDER BY number`, chartUID)
	if err != nil {
		return nil, fmt.Errorf("catalog: load ledgers: %w", err)
	}
	defer rows.Close()

	var ledgers []Ledger
	for rows.Next() {
		var l Ledger
		if err := rows.Scan(&l.ID, &l.Number, &l.Name); err != nil {
			return nil, fmt.Errorf("catalog: scan ledger: %w", err)
		}
		ledgers = append(ledgers, l)
	}
	return ledgers, rows.Err()
}

func (r *repository) Currencies(ctx context.Context) ([]Currency, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name FROM currencies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load currencies: %w", err)
	}
	defer rows.Close()

	var currencies []Currency
	for rows.Next() {
		var c Currency
		if err := rows.Scan(&c.ID, &c.Code, &c.Name); err != nil {
			return nil, fmt.Errorf("catalog: scan currency: %w", err)
		}
		currencies = append(currencies, c)
	}
	return currencies, rows.Err()
}

func (r *repository) Sectors(ctx context.Context) ([]Sector, error) {
	rows, err := r.db.Query(ctx, `SELECT id, code, name FROM sectors ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("catalog: load sectors: %w", err)
	}
	defer rows.Close()

	var sectors []Sector
	for rows.Next() {
		var s Sector
		if err := rows.Scan(&s.ID, &s.Code, &s.Name); err != nil {
			return nil, fmt.Errorf("catalog: scan sector: %w", err)
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}
