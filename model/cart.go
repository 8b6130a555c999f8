package model

import "github.com/shopspring/decimal"

// Cart is one of the fixed pool of carts. It owns its lines exclusively.
type Cart struct {
	ID    string     `json:"id"`
	Lines []CartLine `json:"lines"`
}

// CartLine pairs a product snapshot with a quantity. Product is the value of
// the catalog entry at the moment the line was created; later catalog updates
// do not reach it.
type CartLine struct {
	ID      string  `json:"id"`
	Product Product `json:"product"`
	Qty     int     `json:"qty"`
}

// QueryCart is a Cart with its derived totals. It is never stored.
type QueryCart struct {
	Cart
	LineCount int             `json:"lineCount"`
	Total     decimal.Decimal `json:"total"`
}

// Clone returns a copy of c that shares no memory with it.
func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	copy(lines, c.Lines)
	return Cart{ID: c.ID, Lines: lines}
}

// LineFor returns the index of the line holding productID, or -1.
func (c Cart) LineFor(productID string) int {
	for i, l := range c.Lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}
