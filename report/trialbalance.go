package report

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sicofin/sicofin/internal/balances"
	"github.com/sicofin/sicofin/internal/platform/httpx"
)

// Builder produces trial balance reports.
type Builder interface {
	Build(ctx context.Context, query balances.Query) (*balances.TrialBalance, error)
}

// Handler renders trial balances as PDF documents through Gotenberg.
type Handler struct {
	client *Client
	engine Builder
	logger *slog.Logger
}

// NewHandler creates a report handler.
func NewHandler(client *Client, engine Builder, logger *slog.Logger) *Handler {
	return &Handler{client: client, engine: engine, logger: logger}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Post("/trial-balance", h.trialBalancePDF)
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) trialBalancePDF(w http.ResponseWriter, r *http.Request) {
	var query balances.Query
	if err := httpx.DecodeJSON(r, &query); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Request", err.Error())
		return
	}
	if err := query.Validate(); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	built, err := h.engine.Build(r.Context(), query)
	if err != nil {
		if errors.Is(err, balances.ErrInvalidQuery) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("build report for pdf", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	html, err := RenderTrialBalanceHTML(built)
	if err != nil {
		h.logger.Error("render report html", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	pdf, err := h.client.RenderHTML(r.Context(), html)
	if err != nil {
		h.logger.Error("render report pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="balanza.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}

var trialBalanceTemplate = template.Must(template.New("trial-balance").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; font-size: 10px; }
table { border-collapse: collapse; width: 100%; }
th, td { border-bottom: 1px solid #ccc; padding: 2px 6px; text-align: left; }
td.amount { text-align: right; font-variant-numeric: tabular-nums; }
tr.total td { font-weight: bold; border-top: 1px solid #333; }
</style>
</head>
<body>
<h2>{{.Title}}</h2>
<p>{{.Period}}</p>
<table>
<tr><th>Tipo</th><th>Cuenta</th><th>Sector</th><th>Moneda</th><th>Saldo</th></tr>
{{range .Rows}}<tr{{if .Total}} class="total"{{end}}><td>{{.Kind}}</td><td>{{.Account}}</td><td>{{.Sector}}</td><td>{{.Currency}}</td><td class="amount">{{.Balance}}</td></tr>
{{end}}</table>
</body>
</html>`))

type pdfRow struct {
	Kind     string
	Account  string
	Sector   string
	Currency string
	Balance  string
	Total    bool
}

// RenderTrialBalanceHTML lays out a report as the printable HTML document
// handed to Gotenberg.
func RenderTrialBalanceHTML(report *balances.TrialBalance) (string, error) {
	rows := make([]pdfRow, 0, len(report.Entries))
	for _, row := range report.Entries {
		rows = append(rows, pdfRow{
			Kind:     string(row.Kind()),
			Account:  row.AccountNumber(),
			Sector:   row.SectorCode(),
			Currency: row.CurrencyCode(),
			Balance:  row.Balance().StringFixed(2),
			Total:    row.Kind().IsTotal(),
		})
	}
	data := struct {
		Title  string
		Period string
		Rows   []pdfRow
	}{
		Title: string(report.Query.TrialBalanceType),
		Period: report.Query.InitialPeriod.FromDate.Format("2006-01-02") + " al " +
			report.Query.InitialPeriod.ToDate.Format("2006-01-02"),
		Rows: rows,
	}
	var b strings.Builder
	if err := trialBalanceTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
