package service

import (
	"github.com/shopspring/decimal"

	"cart-catalog/model"
)

// Aggregate derives lineCount and total from the cart's current lines. It is
// recomputed on every read.
func Aggregate(c model.Cart) model.QueryCart {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(l.Product.Price.Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	if c.Lines == nil {
		c.Lines = []model.CartLine{}
	}
	return model.QueryCart{Cart: c, LineCount: len(c.Lines), Total: total}
}
