package model

import "github.com/shopspring/decimal"

// Product is a sellable catalog entry. Identity is ID; every other field is
// replaced as a unit on upsert.
type Product struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Stock int             `json:"stock"`
	Price decimal.Decimal `json:"price"`
}
