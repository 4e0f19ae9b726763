package http

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"

	"github.com/sicofin/sicofin/internal/balances"
	"github.com/sicofin/sicofin/internal/platform/httpx"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	var query balances.Query
	if err := httpx.DecodeJSON(r, &query); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Request", err.Error())
		return
	}
	if err := query.Validate(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	report, err := h.engine.Build(r.Context(), query)
	if err != nil {
		h.respondBuildError(w, query, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="balanza-%s.csv"`, report.ID[:12]))
	if err := writeReportCSV(w, report); err != nil {
		h.logger.Warn("csv export aborted", "error", err)
	}
}

// writeReportCSV streams the report in the row-polymorphic column layout:
// one line per row with its kind, identity and balance. Writes are flushed
// in batches so large reports do not buffer whole in memory.
func writeReportCSV(w io.Writer, report *balances.TrialBalance) error {
	buffered := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buffered)

	if err := writer.Write([]string{"tipo", "cuenta", "sector", "moneda", "saldo"}); err != nil {
		return err
	}
	for i, row := range report.Entries {
		record := []string{
			string(row.Kind()),
			row.AccountNumber(),
			row.SectorCode(),
			row.CurrencyCode(),
			row.Balance().StringFixed(2),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
		if (i+1)%csvFlushEvery == 0 {
			writer.Flush()
			if err := writer.Error(); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return buffered.Flush()
}
