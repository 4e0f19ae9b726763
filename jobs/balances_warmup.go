package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sicofin/sicofin/internal/balances"
	"github.com/sicofin/sicofin/internal/balances/cache"
	jobmetrics "github.com/sicofin/sicofin/internal/jobs"
)

// Builder produces trial balance reports.
type Builder interface {
	Build(ctx context.Context, query balances.Query) (*balances.TrialBalance, error)
}

// BalancesWarmupJob pre-builds the frequent report variants and stores the
// serialized payloads in the report cache.
type BalancesWarmupJob struct {
	Engine  Builder
	Cache   *cache.Cache
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewBalancesWarmupJob wires dependencies for the warmup handler.
func NewBalancesWarmupJob(engine Builder, reportCache *cache.Cache, logger *slog.Logger, metrics *jobmetrics.Metrics) *BalancesWarmupJob {
	return &BalancesWarmupJob{
		Engine:  engine,
		Cache:   reportCache,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// defaultWarmupTypes are the variants users open first every close.
var defaultWarmupTypes = []balances.TrialBalanceType{
	balances.TrialBalanceTypeBalanza,
	balances.TrialBalanceTypeAnaliticoDeCuentas,
	balances.TrialBalanceTypeSaldosPorCuentaYMayores,
}

// Handle processes balances warmup tasks.
func (j *BalancesWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Engine == nil {
		return errors.New("balances warmup: handler not configured")
	}
	var payload BalancesWarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.AccountsChartUID == "" {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskBalancesWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	period := j.period(payload)
	types := j.reportTypes(payload)
	logger := j.logger().With(
		slog.String("run_id", payload.RunID),
		slog.String("chart", payload.AccountsChartUID))
	logger.Info("starting balances warmup", slog.Int("reports", len(types)))

	for _, reportType := range types {
		query := balances.Query{
			AccountsChartUID: payload.AccountsChartUID,
			TrialBalanceType: reportType,
			BalancesType:     balances.BalancesTypeAllAccounts,
			InitialPeriod:    period,
		}
		report, err := j.Engine.Build(ctx, query)
		if err != nil {
			resultErr = err
			logger.Error("warm report", slog.String("type", string(reportType)), slog.Any("error", err))
			return resultErr
		}
		if err := j.store(ctx, query, report); err != nil {
			resultErr = err
			logger.Error("store warm report", slog.String("type", string(reportType)), slog.Any("error", err))
			return resultErr
		}
	}
	logger.Info("balances warmup finished")
	return resultErr
}

func (j *BalancesWarmupJob) store(ctx context.Context, query balances.Query, report *balances.TrialBalance) error {
	if j.Cache == nil {
		return nil
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	key, err := j.Cache.Key(ctx, query.Hash())
	if err != nil {
		return err
	}
	return j.Cache.Store(ctx, key, payload)
}

// period defaults to the current calendar month when the payload leaves the
// range unset.
func (j *BalancesWarmupJob) period(payload BalancesWarmupPayload) balances.BalancePeriod {
	if !payload.FromDate.IsZero() && !payload.ToDate.IsZero() {
		return balances.BalancePeriod{FromDate: payload.FromDate, ToDate: payload.ToDate}
	}
	now := j.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return balances.BalancePeriod{FromDate: first, ToDate: last}
}

func (j *BalancesWarmupJob) reportTypes(payload BalancesWarmupPayload) []balances.TrialBalanceType {
	if len(payload.ReportTypes) == 0 {
		return defaultWarmupTypes
	}
	types := make([]balances.TrialBalanceType, 0, len(payload.ReportTypes))
	for _, raw := range payload.ReportTypes {
		types = append(types, balances.TrialBalanceType(raw))
	}
	return types
}

func (j *BalancesWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return jobmetrics.NewMetrics(nil)
}

func (j *BalancesWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}

func (j *BalancesWarmupJob) now() time.Time {
	if j.clock != nil {
		return j.clock().UTC()
	}
	return time.Now().UTC()
}
