package store

import "cart-catalog/model"

// Reader is the read side of the catalog and the cart pool. Everything it
// returns is a copy.
type Reader interface {
	Product(id string) (model.Product, error)
	Products() []model.Product
	Cart(id string) (model.Cart, error)
	Carts() []model.Cart
}

// Tx is a write transaction. Changes made through it become visible only
// when the function passed to Store.Update returns nil.
type Tx interface {
	Reader

	// UpsertProduct replaces the product with the same id, or appends it.
	UpsertProduct(p model.Product) model.Product

	// EditCart returns the transaction's working copy of a cart. Mutations
	// to it are committed together with the rest of the transaction.
	EditCart(id string) (*model.Cart, error)
}

// Store owns the catalog and the carts. Carts are only mutable through Update.
type Store interface {
	View(fn func(r Reader))
	Update(fn func(tx Tx) error) error
}
