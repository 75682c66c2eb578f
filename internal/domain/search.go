package domain

import (
	"math"

	"github.com/shopspring/decimal"
)

// DefaultSearchCity is used when a search does not name a city.
const DefaultSearchCity = "Montreal"

// DefaultSearchLimit applies when callers pass a non-positive limit.
const DefaultSearchLimit = 10

// PriceRange bounds the nightly price in major currency units. Both ends are
// exclusive. The range only exists as a pair: a search either carries both
// bounds or none.
type PriceRange struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

var (
	maxCents = decimal.NewFromInt(math.MaxInt64)
	minCents = decimal.NewFromInt(math.MinInt64)
)

// MinorUnits returns the bounds converted to cents. A bound outside the int64
// range saturates at the nearest limit and ok reports false; the saturated
// value is still a correct exclusive bound for any stored price.
func (p PriceRange) MinorUnits() (lo, hi int64, ok bool) {
	lo, okLo := ToCents(p.Min)
	hi, okHi := ToCents(p.Max)
	return lo, hi, okLo && okHi
}

// ToCents converts major units to cents, rounding half away from zero. ok is
// false when the result does not fit in an int64, in which case the nearest
// limit is returned.
func ToCents(d decimal.Decimal) (int64, bool) {
	c := d.Shift(2).Round(0)
	switch {
	case c.GreaterThan(maxCents):
		return math.MaxInt64, false
	case c.LessThan(minCents):
		return math.MinInt64, false
	}
	return c.IntPart(), true
}

// PropertySearch enumerates the recognized search filters.
type PropertySearch struct {
	City          string      // substring match; empty means DefaultSearchCity
	Price         *PriceRange // nil means no price filter
	MinimumRating *float64    // nil means no rating filter
}

// EffectiveCity returns the city the search will filter on.
func (s PropertySearch) EffectiveCity() string {
	if s.City == "" {
		return DefaultSearchCity
	}
	return s.City
}

// NewPriceRange pairs optional bounds. It returns nil unless both are set.
func NewPriceRange(lo, hi *decimal.Decimal) *PriceRange {
	if lo == nil || hi == nil {
		return nil
	}
	return &PriceRange{Min: *lo, Max: *hi}
}
