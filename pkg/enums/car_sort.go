package enums

// CarSort orders search results. Unknown values fall back to newest.
type CarSort string

const (
	CarSortNewest    CarSort = "newest"
	CarSortPriceAsc  CarSort = "priceAsc"
	CarSortPriceDesc CarSort = "priceDesc"
)

// String implements fmt.Stringer.
func (s CarSort) String() string {
	return string(s)
}

// IsValid reports whether the value is a known CarSort.
func (s CarSort) IsValid() bool {
	switch s {
	case CarSortNewest, CarSortPriceAsc, CarSortPriceDesc:
		return true
	}
	return false
}

// ParseCarSort never fails; anything unrecognized sorts by newest.
func ParseCarSort(value string) CarSort {
	s := CarSort(value)
	if s.IsValid() {
		return s
	}
	return CarSortNewest
}
