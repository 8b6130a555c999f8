package store

import (
	"sync"

	"cart-catalog/model"
)

// MemoryStore keeps the catalog and the cart pool in process memory behind a
// single RWMutex. Readers never observe a half-applied Update.
type MemoryStore struct {
	mu sync.RWMutex

	products  []model.Product
	productIx map[string]int

	carts  []model.Cart
	cartIx map[string]int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store from a validated seed.
func NewMemoryStore(seed Seed) (*MemoryStore, error) {
	if err := seed.Validate(); err != nil {
		return nil, err
	}
	s := &MemoryStore{
		products:  make([]model.Product, 0, len(seed.Products)),
		productIx: make(map[string]int, len(seed.Products)),
		carts:     make([]model.Cart, 0, len(seed.Carts)),
		cartIx:    make(map[string]int, len(seed.Carts)),
	}
	for _, p := range seed.Products {
		s.productIx[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}
	for _, c := range seed.Carts {
		s.cartIx[c.ID] = len(s.carts)
		s.carts = append(s.carts, c.Clone())
	}
	return s, nil
}

// View runs fn under the read lock.
func (s *MemoryStore) View(fn func(r Reader)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(reader{s})
}

// Update runs fn under the write lock and commits its changes only if fn
// returns nil.
func (s *MemoryStore) Update(fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{
		s:      s,
		staged: map[string]int{},
		carts:  map[string]*model.Cart{},
	}
	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

// Callers of the helpers below must hold s.mu.

func (s *MemoryStore) product(id string) (model.Product, error) {
	i, ok := s.productIx[id]
	if !ok {
		return model.Product{}, notFound(EntityProduct, id)
	}
	return s.products[i], nil
}

func (s *MemoryStore) cart(id string) (model.Cart, error) {
	i, ok := s.cartIx[id]
	if !ok {
		return model.Cart{}, notFound(EntityCart, id)
	}
	return s.carts[i].Clone(), nil
}

type reader struct{ s *MemoryStore }

func (r reader) Product(id string) (model.Product, error) { return r.s.product(id) }

func (r reader) Products() []model.Product {
	out := make([]model.Product, len(r.s.products))
	copy(out, r.s.products)
	return out
}

func (r reader) Cart(id string) (model.Cart, error) { return r.s.cart(id) }

func (r reader) Carts() []model.Cart {
	out := make([]model.Cart, 0, len(r.s.carts))
	for _, c := range r.s.carts {
		out = append(out, c.Clone())
	}
	return out
}

// tx stages product upserts and copy-on-write carts until commit.
type tx struct {
	s *MemoryStore

	products []model.Product
	staged   map[string]int

	carts map[string]*model.Cart
}

func (t *tx) Product(id string) (model.Product, error) {
	if i, ok := t.staged[id]; ok {
		return t.products[i], nil
	}
	return t.s.product(id)
}

func (t *tx) Products() []model.Product {
	out := make([]model.Product, 0, len(t.s.products)+len(t.products))
	for _, p := range t.s.products {
		if i, ok := t.staged[p.ID]; ok {
			p = t.products[i]
		}
		out = append(out, p)
	}
	for _, p := range t.products {
		if _, ok := t.s.productIx[p.ID]; !ok {
			out = append(out, p)
		}
	}
	return out
}

func (t *tx) Cart(id string) (model.Cart, error) {
	if c, ok := t.carts[id]; ok {
		return c.Clone(), nil
	}
	return t.s.cart(id)
}

func (t *tx) Carts() []model.Cart {
	out := make([]model.Cart, 0, len(t.s.carts))
	for _, c := range t.s.carts {
		if w, ok := t.carts[c.ID]; ok {
			c = *w
		}
		out = append(out, c.Clone())
	}
	return out
}

func (t *tx) UpsertProduct(p model.Product) model.Product {
	if i, ok := t.staged[p.ID]; ok {
		t.products[i] = p
		return p
	}
	t.staged[p.ID] = len(t.products)
	t.products = append(t.products, p)
	return p
}

func (t *tx) EditCart(id string) (*model.Cart, error) {
	if c, ok := t.carts[id]; ok {
		return c, nil
	}
	c, err := t.s.cart(id)
	if err != nil {
		return nil, err
	}
	t.carts[id] = &c
	return &c, nil
}

func (t *tx) commit() {
	for _, p := range t.products {
		if i, ok := t.s.productIx[p.ID]; ok {
			t.s.products[i] = p
			continue
		}
		t.s.productIx[p.ID] = len(t.s.products)
		t.s.products = append(t.s.products, p)
	}
	for id, c := range t.carts {
		t.s.carts[t.s.cartIx[id]] = c.Clone()
	}
}
