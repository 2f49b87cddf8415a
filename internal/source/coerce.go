package source

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var jsonNull = []byte("null")

// parseCount converts a loosely typed JSON number to an integer. Fractions
// are truncated toward zero. Missing and null values report present=false.
func parseCount(raw json.RawMessage) (value int64, present bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, jsonNull) {
		return 0, false, nil
	}

	text := string(trimmed)
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, true, fmt.Errorf("decode string: %w", err)
		}
		text = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return 0, true, fmt.Errorf("%q is not a number", text)
	}
	return d.Truncate(0).IntPart(), true, nil
}

// normalize coerces a payload into a Product. Sales figures fall back to
// zero; a stock figure that is present but not numeric is an error.
func normalize(itemID string, payload productPayload) (*Product, error) {
	product := &Product{
		ItemID:     itemID,
		MonthSales: countOrZero(payload.MonthSales),
		SoldNum:    countOrZero(payload.SoldNum),
		SKUs:       make([]SKU, 0, len(payload.SKUList)),
	}

	for _, sku := range payload.SKUList {
		stocks, _, err := parseCount(sku.Stocks)
		if err != nil {
			return nil, fmt.Errorf("%w for %q: %w", ErrInvalidStock, sku.SKUName, err)
		}
		product.SKUs = append(product.SKUs, SKU{Name: sku.SKUName, Stocks: stocks})
	}

	return product, nil
}

func countOrZero(raw json.RawMessage) int64 {
	v, _, err := parseCount(raw)
	if err != nil {
		return 0
	}
	return v
}
