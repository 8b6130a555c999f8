package graph

import (
	"context"

	"github.com/go-faster/errors"

	"cart-catalog/model"
	"cart-catalog/service"
	"cart-catalog/store"
)

// UpdateProduct is the resolver for the updateProduct field.
func (r *mutationResolver) UpdateProduct(ctx context.Context, input service.ProductInput) (*model.Product, error) {
	p, err := r.Svc.UpdateProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// AddProductToCart is the resolver for the addProductToCart field.
func (r *mutationResolver) AddProductToCart(ctx context.Context, input service.AddToCartInput) (*model.QueryCart, error) {
	c, err := r.Svc.AddProductToCart(ctx, input)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ClearCart is the resolver for the clearCart field.
func (r *mutationResolver) ClearCart(ctx context.Context, input ClearCartInput) (*model.QueryCart, error) {
	c, err := r.Svc.ClearCart(ctx, input.CartID)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Products is the resolver for the products field.
func (r *queryResolver) Products(ctx context.Context) ([]model.Product, error) {
	return r.Svc.Products(ctx), nil
}

// Carts is the resolver for the carts field.
func (r *queryResolver) Carts(ctx context.Context) ([]model.QueryCart, error) {
	return r.Svc.Carts(ctx), nil
}

// Cart is the resolver for the cart field. An unknown id resolves to null.
func (r *queryResolver) Cart(ctx context.Context, id string) (*model.QueryCart, error) {
	c, err := r.Svc.Cart(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Mutation returns MutationResolver implementation.
func (r *Resolver) Mutation() MutationResolver { return &mutationResolver{r} }

// Query returns QueryResolver implementation.
func (r *Resolver) Query() QueryResolver { return &queryResolver{r} }

type mutationResolver struct{ *Resolver }
type queryResolver struct{ *Resolver }
