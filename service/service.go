package service

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"cart-catalog/events"
	"cart-catalog/model"
	"cart-catalog/store"
)

// Service is the mutation engine. Every mutation runs inside one store
// transaction, so lookup, merge and append are a single critical section.
type Service struct {
	store  store.Store
	events events.Publisher
	log    *slog.Logger
	newID  func() string
	now    func() time.Time

	// seq numbers committed mutations; it is only advanced inside Update.
	seq atomic.Uint64
}

var _ ServiceInterface = (*Service)(nil)

type Option func(*Service)

// WithPublisher sets where change events go after a commit.
func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// WithIDGenerator replaces the cart line id generator. It must be safe for
// concurrent use.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

func NewService(st store.Store, opts ...Option) *Service {
	s := &Service{
		store:  st,
		events: events.NopPublisher{},
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProductInput is the full replacement value for a product.
type ProductInput struct {
	ID    string
	Title string
	Stock int
	Price decimal.Decimal
}

type AddToCartInput struct {
	CartID    string
	ProductID string
	Qty       int
}

func (s *Service) Products(ctx context.Context) []model.Product {
	var out []model.Product
	s.store.View(func(r store.Reader) { out = r.Products() })
	return out
}

func (s *Service) Carts(ctx context.Context) []model.QueryCart {
	var carts []model.Cart
	s.store.View(func(r store.Reader) { carts = r.Carts() })

	out := make([]model.QueryCart, 0, len(carts))
	for _, c := range carts {
		out = append(out, Aggregate(c))
	}
	return out
}

func (s *Service) Cart(ctx context.Context, id string) (model.QueryCart, error) {
	var (
		c   model.Cart
		err error
	)
	s.store.View(func(r store.Reader) { c, err = r.Cart(id) })
	if err != nil {
		return model.QueryCart{}, err
	}
	return Aggregate(c), nil
}

// UpdateProduct validates the input and upserts it into the catalog. Lines
// already in carts keep the product as it was when they were created.
func (s *Service) UpdateProduct(ctx context.Context, in ProductInput) (model.Product, error) {
	if strings.TrimSpace(in.ID) == "" {
		return model.Product{}, invalid("id", "is required")
	}
	if strings.TrimSpace(in.Title) == "" {
		return model.Product{}, invalid("title", "is required")
	}
	if in.Stock < 0 {
		return model.Product{}, invalid("stock", "must be >= 0")
	}
	if in.Price.IsNegative() {
		return model.Product{}, invalid("price", "must be >= 0")
	}

	var (
		stored model.Product
		seq    uint64
	)
	err := s.store.Update(func(tx store.Tx) error {
		stored = tx.UpsertProduct(model.Product{
			ID:    in.ID,
			Title: in.Title,
			Stock: in.Stock,
			Price: in.Price,
		})
		seq = s.seq.Add(1)
		return nil
	})
	if err != nil {
		return model.Product{}, err
	}

	s.log.Debug("product upserted", slog.String("product_id", stored.ID))
	s.publish(ctx, events.Event{Seq: seq, Type: events.ProductUpdated, ProductID: stored.ID})
	return stored, nil
}

// AddProductToCart merges qty into the cart's line for the product, or
// appends a new line holding a snapshot of the product.
func (s *Service) AddProductToCart(ctx context.Context, in AddToCartInput) (model.QueryCart, error) {
	var (
		out model.Cart
		seq uint64
	)
	err := s.store.Update(func(tx store.Tx) error {
		cart, err := tx.EditCart(in.CartID)
		if err != nil {
			return err
		}
		product, err := tx.Product(in.ProductID)
		if err != nil {
			return err
		}
		if in.Qty <= 0 {
			return invalid("qty", "must be > 0")
		}

		if i := cart.LineFor(product.ID); i >= 0 {
			if cart.Lines[i].Qty > math.MaxInt-in.Qty {
				return invalid("qty", "would overflow the line quantity")
			}
			cart.Lines[i].Qty += in.Qty
		} else {
			cart.Lines = append(cart.Lines, model.CartLine{
				ID:      s.newID(),
				Product: product,
				Qty:     in.Qty,
			})
		}
		out = cart.Clone()
		seq = s.seq.Add(1)
		return nil
	})
	if err != nil {
		return model.QueryCart{}, err
	}

	s.log.Debug("product added to cart",
		slog.String("cart_id", in.CartID),
		slog.String("product_id", in.ProductID),
		slog.Int("qty", in.Qty),
	)
	s.publish(ctx, events.Event{Seq: seq, Type: events.CartLineAdded, CartID: in.CartID, ProductID: in.ProductID})
	return Aggregate(out), nil
}

// ClearCart removes every line from the cart.
func (s *Service) ClearCart(ctx context.Context, cartID string) (model.QueryCart, error) {
	var (
		out model.Cart
		seq uint64
	)
	err := s.store.Update(func(tx store.Tx) error {
		cart, err := tx.EditCart(cartID)
		if err != nil {
			return err
		}
		cart.Lines = []model.CartLine{}
		out = cart.Clone()
		seq = s.seq.Add(1)
		return nil
	})
	if err != nil {
		return model.QueryCart{}, err
	}

	s.log.Debug("cart cleared", slog.String("cart_id", cartID))
	s.publish(ctx, events.Event{Seq: seq, Type: events.CartCleared, CartID: cartID})
	return Aggregate(out), nil
}

// publish runs after commit; a failure is logged and never undoes the mutation.
func (s *Service) publish(ctx context.Context, e events.Event) {
	e.At = s.now()
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("publish event failed", slog.String("type", string(e.Type)), slog.Any("err", err))
	}
}
