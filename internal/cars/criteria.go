package cars

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/autoyard/autoyard-backend/pkg/enums"
	"github.com/autoyard/autoyard-backend/pkg/pagination"
)

// SearchCriteria are the browse filters. Empty strings disable a filter and a
// nil MaxPrice means no upper bound.
type SearchCriteria struct {
	Search       string
	Make         string
	BodyType     string
	Transmission string
	FuelType     string
	MinPrice     decimal.Decimal
	MaxPrice     *decimal.Decimal
	SortBy       enums.CarSort
	Pagination   pagination.Params
}

// ParseSearchCriteria reads criteria from query values. Prices that do not
// parse are treated as 0 (min) and unbounded (max) instead of being rejected.
func ParseSearchCriteria(q url.Values) SearchCriteria {
	c := SearchCriteria{
		Search:       strings.TrimSpace(q.Get("search")),
		Make:         strings.TrimSpace(q.Get("make")),
		BodyType:     strings.TrimSpace(q.Get("bodyType")),
		Transmission: strings.TrimSpace(q.Get("transmission")),
		FuelType:     strings.TrimSpace(q.Get("fuelType")),
		MinPrice:     decimal.Zero,
		SortBy:       enums.ParseCarSort(q.Get("sortBy")),
		Pagination: pagination.Params{
			Page:     atoiOrZero(q.Get("page")),
			PageSize: atoiOrZero(q.Get("limit")),
		},
	}
	if lo, ok := parsePrice(q.Get("minPrice")); ok && lo.IsPositive() {
		c.MinPrice = lo
	}
	if hi, ok := parsePrice(q.Get("maxPrice")); ok {
		c.MaxPrice = &hi
	}
	return c
}

func (c SearchCriteria) normalized() SearchCriteria {
	c.Pagination = c.Pagination.Normalize()
	if !c.SortBy.IsValid() {
		c.SortBy = enums.CarSortNewest
	}
	if c.MinPrice.IsNegative() {
		c.MinPrice = decimal.Zero
	}
	return c
}

// emptyRange reports bounds that can never match.
func (c SearchCriteria) emptyRange() bool {
	return c.MaxPrice != nil && c.MinPrice.GreaterThan(*c.MaxPrice)
}

func parsePrice(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func atoiOrZero(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}
