package balances

import "github.com/sicofin/sicofin/internal/catalog"

// entryKey partitions accumulation buckets. A typed key instead of a
// concatenated string keeps the composite unambiguous.
type entryKey struct {
	account   string
	sector    string
	currency  string
	ledger    string
	dc        catalog.DebtorCreditor
	subledger int64
}

func keyFor(e *Entry) entryKey {
	return entryKey{
		account:   e.Account.Number,
		sector:    e.Sector.Code,
		currency:  e.Currency.Code,
		ledger:    e.Ledger.Number,
		dc:        e.Account.DebtorCreditor,
		subledger: e.SubledgerAccountID,
	}
}

// withSector rebinds the key to another sector partition.
func (k entryKey) withSector(code string) entryKey {
	k.sector = code
	return k
}

// withoutSubledger collapses subledger detail out of the partition.
func (k entryKey) withoutSubledger() entryKey {
	k.subledger = 0
	return k
}
