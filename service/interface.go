package service

import (
	"context"

	"cart-catalog/model"
)

type ServiceInterface interface {
	Products(ctx context.Context) []model.Product
	Carts(ctx context.Context) []model.QueryCart
	Cart(ctx context.Context, id string) (model.QueryCart, error)

	UpdateProduct(ctx context.Context, in ProductInput) (model.Product, error)
	AddProductToCart(ctx context.Context, in AddToCartInput) (model.QueryCart, error)
	ClearCart(ctx context.Context, cartID string) (model.QueryCart, error)
}
