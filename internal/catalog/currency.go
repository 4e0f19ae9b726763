package catalog

// Currency codes used by the regulatory reports. MXN is the domestic
// currency; UDI is an inflation-indexed unit treated as a pseudo-currency.
const (
	CurrencyMXN = "MXN"
	CurrencyUSD = "USD"
	CurrencyYEN = "JPY"
	CurrencyEUR = "EUR"
	CurrencyUDI = "UDI"
)

// Currency identifies one of the fixed set of report currencies.
type Currency struct {
	ID   int64
	Code string
	Name string
}

// Equals reports whether both values name the same currency.
func (c Currency) Equals(other Currency) bool {
	return c.Code == other.Code
}

// Distinct reports whether the values name different currencies.
func (c Currency) Distinct(other Currency) bool {
	return c.Code != other.Code
}

// IsDomestic reports whether the currency is the home currency.
func (c Currency) IsDomestic() bool {
	return c.Code == CurrencyMXN
}

// IsUDI reports whether the currency is the inflation-indexed unit.
func (c Currency) IsUDI() bool {
	return c.Code == CurrencyUDI
}
