package catalog

// Ledger is one of the parallel books (contabilidades) sharing a chart.
type Ledger struct {
	ID     int64
	Number string
	Name   string
}

// SubledgerAccount is an auxiliary account beneath a control account, used
// for per-counterparty balance tracking.
type SubledgerAccount struct {
	ID     int64
	Number string
	Name   string
}
