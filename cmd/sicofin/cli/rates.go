package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sicofin/sicofin/internal/balances/rates"
)

// RatesResolver resolves the rate list that values a reporting period.
type RatesResolver interface {
	ForPeriod(ctx context.Context, fromDate, toDate time.Time) (rates.List, error)
	ValuationDate(fromDate, toDate time.Time) time.Time
}

// RatesOpsCLI offers operational helpers for the exchange-rate publications
// that back valued and dollarized reports.
type RatesOpsCLI struct {
	resolver RatesResolver
}

// NewRatesOpsCLI constructs the helper over a resolver.
func NewRatesOpsCLI(resolver RatesResolver) *RatesOpsCLI {
	return &RatesOpsCLI{resolver: resolver}
}

// RatesValidateOptions defines available flags for the rates validate command.
type RatesValidateOptions struct {
	Period     string
	Pairs      []string
	JSONOutput bool
	Stdout     io.Writer
	Stderr     io.Writer
}

// RatesValidateSummary describes the JSON response for rates validate.
type RatesValidateSummary struct {
	OK            bool     `json:"ok"`
	ValuationDate string   `json:"valuation_date"`
	Gaps          []string `json:"gaps"`
	Available     []string `json:"available"`
}

// ValidateCommand checks that the publications covering a reporting month
// quote every requested currency pair, and prints the outcome.
func (c *RatesOpsCLI) ValidateCommand(ctx context.Context, opts RatesValidateOptions) int {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	period, err := time.Parse("2006-01", strings.TrimSpace(opts.Period))
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "rates validate: invalid period %q (expected YYYY-MM)\n", opts.Period)
		return 1
	}
	if len(opts.Pairs) == 0 {
		_, _ = fmt.Fprintln(opts.Stderr, "rates validate: at least one --pair is required (e.g. USDMXN)")
		return 1
	}

	from := time.Date(period.Year(), period.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, -1)

	list, err := c.resolver.ForPeriod(ctx, from, to)
	if err != nil {
		_, _ = fmt.Fprintf(opts.Stderr, "rates validate: %v\n", err)
		return 1
	}

	summary := buildRatesSummary(list, opts.Pairs)
	if opts.JSONOutput {
		if err := json.NewEncoder(opts.Stdout).Encode(summary); err != nil {
			_, _ = fmt.Fprintf(opts.Stderr, "rates validate: encode json: %v\n", err)
			return 1
		}
	} else {
		renderRatesHuman(opts.Stdout, summary)
	}
	if len(summary.Gaps) > 0 {
		return 10
	}
	return 0
}

func buildRatesSummary(list rates.List, pairs []string) RatesValidateSummary {
	summary := RatesValidateSummary{
		OK:            true,
		ValuationDate: list.ValuationDate.Format("2006-01-02"),
	}
	for _, pair := range pairs {
		pair = strings.ToUpper(strings.TrimSpace(pair))
		if len(pair) != 6 {
			summary.Gaps = append(summary.Gaps, pair)
			continue
		}
		if list.Has(pair[:3], pair[3:]) {
			summary.Available = append(summary.Available, pair)
		} else {
			summary.Gaps = append(summary.Gaps, pair)
		}
	}
	sort.Strings(summary.Gaps)
	sort.Strings(summary.Available)
	summary.OK = len(summary.Gaps) == 0
	return summary
}

func renderRatesHuman(out io.Writer, summary RatesValidateSummary) {
	_, _ = fmt.Fprintf(out, "Rate publications valued at %s\n", summary.ValuationDate)
	if summary.OK {
		_, _ = fmt.Fprintln(out, "All requested pairs are quoted.")
	} else {
		_, _ = fmt.Fprintf(out, "%d pair(s) missing:\n", len(summary.Gaps))
		for _, pair := range summary.Gaps {
			_, _ = fmt.Fprintf(out, " - %s\n", pair)
		}
	}
	for _, pair := range summary.Available {
		_, _ = fmt.Fprintf(out, " + %s\n", pair)
	}
}
