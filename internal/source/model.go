package source

import "encoding/json"

// SKU is one product variant as reported by the feed.
type SKU struct {
	Name   string `json:"skuName"`
	Stocks int64  `json:"stocks"`
}

// Product is a normalized product page with integer figures.
type Product struct {
	ItemID     string `json:"prod_id"`
	MonthSales int64  `json:"monthSales"`
	SoldNum    int64  `json:"soldNum"`
	SKUs       []SKU  `json:"skuList"`
}

// productPayload mirrors the wire format. Numbers are kept raw so that
// strings, floats and nulls can be coerced explicitly.
type productPayload struct {
	MonthSales json.RawMessage `json:"monthSales"`
	SoldNum    json.RawMessage `json:"soldNum"`
	SKUList    []skuPayload    `json:"skuList"`
}

type skuPayload struct {
	SKUName string          `json:"skuName"`
	Stocks  json.RawMessage `json:"stocks"`
}
