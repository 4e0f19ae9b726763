package catalog

// SectorZeroCode identifies the "no sector" consolidation root. Postings in
// any other sector roll up into it for sectorized accounts.
const SectorZeroCode = "00"

// Sector is a regulatory sub-classification orthogonal to the account
// hierarchy (counterparty type, market segment).
type Sector struct {
	ID   int64
	Code string
	Name string
}

// IsSectorZero reports whether the sector is the unsectorized root.
func (s Sector) IsSectorZero() bool {
	return s.Code == SectorZeroCode || s.Code == ""
}

// SectorZero returns the canonical unsectorized sector.
func SectorZero() Sector {
	return Sector{ID: 0, Code: SectorZeroCode, Name: "Sin sector"}
}
