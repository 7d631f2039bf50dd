// Package fuel turns the flat price list of a request into a price table
// indexed by category.
//
// Request keys look like "gas(euro/MWh)" or "wind(%)": the text before the
// first parenthesis is the fuel and the text inside is the category.
package fuel

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/productionplan/core/model"
)

const (
	// CategoryPrice holds fuel prices per MWh.
	CategoryPrice = "euro/MWh"
	// CategoryDerating holds availability percentages for free fuels.
	CategoryDerating = "%"
)

// PriceTable maps category -> fuel -> value.
type PriceTable struct {
	cats map[string]map[string]decimal.Decimal
}

// Categorize splits every compound key and groups values by category.
func Categorize(raw map[string]decimal.Decimal) (PriceTable, error) {
	cats := make(map[string]map[string]decimal.Decimal)
	for key, val := range raw {
		name, cat, ok := strings.Cut(key, "(")
		if !ok {
			return PriceTable{}, fmt.Errorf("%w: %q", model.ErrMalformedKey, key)
		}
		cat = strings.TrimSuffix(cat, ")")
		if _, ok := cats[cat]; !ok {
			cats[cat] = make(map[string]decimal.Decimal)
		}
		cats[cat][name] = val
	}
	return PriceTable{cats: cats}, nil
}

// Price returns the value of fuel within category.
func (t PriceTable) Price(category, fuel string) (decimal.Decimal, bool) {
	c, ok := t.cats[category]
	if !ok {
		return decimal.Zero, false
	}
	v, ok := c[fuel]
	return v, ok
}

// Category returns a copy of the values stored under category.
func (t PriceTable) Category(category string) map[string]decimal.Decimal {
	c := t.cats[category]
	out := make(map[string]decimal.Decimal, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Categories returns the number of distinct categories.
func (t PriceTable) Categories() int { return len(t.cats) }
