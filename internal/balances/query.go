package balances

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sicofin/sicofin/internal/catalog"
)

// TrialBalanceType selects which report orchestrator builds the result.
type TrialBalanceType string

const (
	TrialBalanceTypeBalanza                    TrialBalanceType = "Balanza"
	TrialBalanceTypeBalanzaComparativa         TrialBalanceType = "BalanzaComparativa"
	TrialBalanceTypeBalanzaValorizada          TrialBalanceType = "BalanzaValorizada"
	TrialBalanceTypeBalanzaDolarizada          TrialBalanceType = "BalanzaDolarizada"
	TrialBalanceTypeAnaliticoDeCuentas         TrialBalanceType = "AnaliticoDeCuentas"
	TrialBalanceTypeSaldosPorAuxiliar          TrialBalanceType = "SaldosPorAuxiliar"
	TrialBalanceTypeSaldosPorCuentaYMayores    TrialBalanceType = "SaldosPorCuentaYMayores"
	TrialBalanceTypeBalanzaEnColumnasPorMoneda TrialBalanceType = "BalanzaEnColumnasPorMoneda"
)

// BalancesType filters which accounts participate in the report.
type BalancesType string

const (
	BalancesTypeAllAccounts                   BalancesType = "AllAccounts"
	BalancesTypeWithMovements                 BalancesType = "WithMovements"
	BalancesTypeWithCurrentBalanceOrMovements BalancesType = "WithCurrentBalanceOrMovements"
	BalancesTypeAllAccountsInCatalog          BalancesType = "AllAccountsInCatalog"
)

// BalancePeriod is a closed date range a report covers.
type BalancePeriod struct {
	FromDate time.Time `json:"fromDate"`
	ToDate   time.Time `json:"toDate"`
}

// IsEmpty reports whether the period was left unset.
func (p BalancePeriod) IsEmpty() bool {
	return p.FromDate.IsZero() && p.ToDate.IsZero()
}

// Query describes one immutable trial balance request. It
// drives every conditional branch in the helpers.
type Query struct {
	AccountsChartUID string           `json:"accountsChartUID" validate:"required"`
	TrialBalanceType TrialBalanceType `json:"trialBalanceType" validate:"required"`
	BalancesType     BalancesType     `json:"balancesType"`
	InitialPeriod    BalancePeriod    `json:"initialPeriod"`
	SecondPeriod     BalancePeriod    `json:"secondPeriod"`

	Ledgers     []string `json:"ledgers"`
	FromAccount string   `json:"fromAccount"`
	ToAccount   string   `json:"toAccount"`
	Level       int      `json:"level" validate:"gte=0,lte=9"`

	WithSubledgerAccount                bool   `json:"withSubledgerAccount"`
	WithSectorization                   bool   `json:"withSectorization"`
	UseNewSectorizationModel            bool   `json:"useNewSectorizationModel"`
	ConsolidateBalancesToTargetCurrency bool   `json:"consolidateBalancesToTargetCurrency"`
	ShowCascadeBalances                 bool   `json:"showCascadeBalances"`
	ValuateBalances                     bool   `json:"valuateBalances"`
	TargetCurrencyCode                  string `json:"targetCurrencyCode"`
}

// ErrInvalidQuery wraps every query precondition violation.
var ErrInvalidQuery = errors.New("balances: invalid trial balance query")

var validate = validator.New()

// Validate fails fast on missing or inconsistent query fields.
func (q Query) Validate() error {
	if err := validate.Struct(q); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if q.InitialPeriod.IsEmpty() {
		return fmt.Errorf("%w: initial period is required", ErrInvalidQuery)
	}
	if q.InitialPeriod.ToDate.Before(q.InitialPeriod.FromDate) {
		return fmt.Errorf("%w: initial period end before start", ErrInvalidQuery)
	}
	switch q.TrialBalanceType {
	case TrialBalanceTypeBalanza, TrialBalanceTypeBalanzaValorizada,
		TrialBalanceTypeBalanzaDolarizada, TrialBalanceTypeAnaliticoDeCuentas,
		TrialBalanceTypeSaldosPorAuxiliar, TrialBalanceTypeSaldosPorCuentaYMayores,
		TrialBalanceTypeBalanzaEnColumnasPorMoneda:
	case TrialBalanceTypeBalanzaComparativa:
		if q.SecondPeriod.IsEmpty() {
			return fmt.Errorf("%w: comparative balance requires a second period", ErrInvalidQuery)
		}
		if q.SecondPeriod.ToDate.Before(q.SecondPeriod.FromDate) {
			return fmt.Errorf("%w: second period end before start", ErrInvalidQuery)
		}
	default:
		return fmt.Errorf("%w: unknown trial balance type %q", ErrInvalidQuery, q.TrialBalanceType)
	}
	return nil
}

// TargetCurrency returns the valuation currency, defaulting to the domestic
// currency; the dolarizada variant always values against USD.
func (q Query) TargetCurrency() string {
	if q.TrialBalanceType == TrialBalanceTypeBalanzaDolarizada {
		return catalog.CurrencyUSD
	}
	if q.TargetCurrencyCode != "" {
		return q.TargetCurrencyCode
	}
	return catalog.CurrencyMXN
}

// Hash returns a deterministic digest identifying the query, used as the
// report identity and the cache key.
func (q Query) Hash() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|%s|%s|", q.AccountsChartUID, q.TrialBalanceType, q.BalancesType)
	fmt.Fprintf(&b, "%s..%s|", q.InitialPeriod.FromDate.Format("2006-01-02"), q.InitialPeriod.ToDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "%s..%s|", q.SecondPeriod.FromDate.Format("2006-01-02"), q.SecondPeriod.ToDate.Format("2006-01-02"))
	fmt.Fprintf(&b, "%s|%s|%s|%d|", strings.Join(q.Ledgers, ","), q.FromAccount, q.ToAccount, q.Level)
	fmt.Fprintf(&b, "%v|%v|%v|%v|%v|%v|%s",
		q.WithSubledgerAccount, q.WithSectorization, q.UseNewSectorizationModel,
		q.ConsolidateBalancesToTargetCurrency, q.ShowCascadeBalances, q.ValuateBalances,
		q.TargetCurrency())
	digest := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(digest[:])
}
