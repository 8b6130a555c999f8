package store

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"cart-catalog/model"
)

// Seed is the initial state the store is built from.
type Seed struct {
	Products []model.Product
	Carts    []model.Cart
}

// DefaultSeed returns the built-in fixtures: four products and two empty carts.
func DefaultSeed() Seed {
	return Seed{
		Products: []model.Product{
			{ID: "8bceb990-9335-403b-9056-496f275cb8f4", Title: "Item A", Stock: 1000, Price: decimal.RequireFromString("1.01")},
			{ID: "f43356d8-d6e0-48d3-bba5-68d84167e31c", Title: "Item B", Stock: 2000, Price: decimal.RequireFromString("2.02")},
			{ID: "3c76eb56-28c4-4762-bba0-428fbb394be1", Title: "Item C", Stock: 3000, Price: decimal.RequireFromString("3.03")},
			{ID: "d573635e-041b-44a6-92ad-315997350737", Title: "Item D", Stock: 4000, Price: decimal.RequireFromString("4.04")},
		},
		Carts: []model.Cart{
			{ID: "5a797e70-cdba-4738-b7a5-ca6a63a2ddc0", Lines: []model.CartLine{}},
			{ID: "4a797e70-cdba-4738-b7a5-ca6a63a2ddc1", Lines: []model.CartLine{}},
		},
	}
}

// Validate checks that the seed satisfies the invariants the store relies on.
func (s Seed) Validate() error {
	products := make(map[string]struct{}, len(s.Products))
	for _, p := range s.Products {
		if p.ID == "" {
			return errors.New("seed: product with empty id")
		}
		if _, dup := products[p.ID]; dup {
			return errors.Errorf("seed: duplicate product id %q", p.ID)
		}
		if p.Stock < 0 || p.Price.IsNegative() {
			return errors.Errorf("seed: product %q has negative stock or price", p.ID)
		}
		products[p.ID] = struct{}{}
	}

	carts := make(map[string]struct{}, len(s.Carts))
	lineIDs := map[string]struct{}{}
	for _, c := range s.Carts {
		if c.ID == "" {
			return errors.New("seed: cart with empty id")
		}
		if _, dup := carts[c.ID]; dup {
			return errors.Errorf("seed: duplicate cart id %q", c.ID)
		}
		carts[c.ID] = struct{}{}

		seen := map[string]struct{}{}
		for _, l := range c.Lines {
			if _, ok := products[l.Product.ID]; !ok {
				return errors.Errorf("seed: cart %q line %q references unknown product %q", c.ID, l.ID, l.Product.ID)
			}
			if _, dup := seen[l.Product.ID]; dup {
				return errors.Errorf("seed: cart %q has two lines for product %q", c.ID, l.Product.ID)
			}
			if _, dup := lineIDs[l.ID]; dup || l.ID == "" {
				return errors.Errorf("seed: cart %q has missing or duplicate line id %q", c.ID, l.ID)
			}
			if l.Qty < 1 {
				return errors.Errorf("seed: cart %q line %q has qty %d", c.ID, l.ID, l.Qty)
			}
			seen[l.Product.ID] = struct{}{}
			lineIDs[l.ID] = struct{}{}
		}
	}
	return nil
}
