package graph

import (
	"context"

	"cart-catalog/model"
	"cart-catalog/service"
)

// Resolver is the root resolver. Every field delegates to the service.
type Resolver struct {
	Svc service.ServiceInterface
}

type ResolverRoot interface {
	Query() QueryResolver
	Mutation() MutationResolver
}

type QueryResolver interface {
	Products(ctx context.Context) ([]model.Product, error)
	Carts(ctx context.Context) ([]model.QueryCart, error)
	Cart(ctx context.Context, id string) (*model.QueryCart, error)
}

type MutationResolver interface {
	UpdateProduct(ctx context.Context, input service.ProductInput) (*model.Product, error)
	AddProductToCart(ctx context.Context, input service.AddToCartInput) (*model.QueryCart, error)
	ClearCart(ctx context.Context, input ClearCartInput) (*model.QueryCart, error)
}

type ClearCartInput struct {
	CartID string
}
