package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"cart-catalog/events"
	"cart-catalog/model"
	"cart-catalog/store"
)

const (
	cartA    = "5a797e70-cdba-4738-b7a5-ca6a63a2ddc0"
	cartB    = "4a797e70-cdba-4738-b7a5-ca6a63a2ddc1"
	productA = "8bceb990-9335-403b-9056-496f275cb8f4" // 1.01
	productB = "f43356d8-d6e0-48d3-bba5-68d84167e31c" // 2.02
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	st, err := store.NewMemoryStore(store.DefaultSeed())
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	return NewService(st, opts...)
}

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("line-%d", n.Add(1)) }
}

// ---- fakeStore for error propagation ----
type fakeStore struct {
	ViewFn   func(fn func(r store.Reader))
	UpdateFn func(fn func(tx store.Tx) error) error
}

func (f *fakeStore) View(fn func(r store.Reader))           { f.ViewFn(fn) }
func (f *fakeStore) Update(fn func(tx store.Tx) error) error { return f.UpdateFn(fn) }

// ---- Tests ----

func TestUpdateProductValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := map[string]ProductInput{
		"id":    {ID: " ", Title: "t", Price: decimal.NewFromInt(1)},
		"title": {ID: "p", Title: "", Price: decimal.NewFromInt(1)},
		"stock": {ID: "p", Title: "t", Stock: -1},
		"price": {ID: "p", Title: "t", Price: decimal.RequireFromString("-0.01")},
	}
	for field, in := range cases {
		_, err := svc.UpdateProduct(ctx, in)
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != field {
			t.Fatalf("%s: expected ValidationError on %q, got %v", field, field, err)
		}
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected errors.Is(err, ErrInvalidInput)", field)
		}
	}
	if got := len(svc.Products(ctx)); got != 4 {
		t.Fatalf("invalid input must not touch the catalog, have %d products", got)
	}
}

func TestUpdateProductIsIdempotentUpsert(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	in := ProductInput{ID: "new", Title: "New", Stock: 3, Price: decimal.RequireFromString("9.99")}

	first, err := svc.UpdateProduct(ctx, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.UpdateProduct(ctx, in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != second.ID || first.Title != second.Title || !first.Price.Equal(second.Price) {
		t.Fatalf("upsert not idempotent: %+v vs %+v", first, second)
	}

	ps := svc.Products(ctx)
	if len(ps) != 5 {
		t.Fatalf("expected catalog of 5, got %d", len(ps))
	}
	if ps[4].ID != "new" {
		t.Fatalf("new product should be appended last, got %+v", ps)
	}
}

func TestUpdateProductReplacesWholesale(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpdateProduct(ctx, ProductInput{ID: productA, Title: "A2", Stock: 0, Price: decimal.NewFromInt(5)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ps := svc.Products(ctx)
	if len(ps) != 4 || ps[0].ID != productA || ps[0].Title != "A2" || ps[0].Stock != 0 {
		t.Fatalf("expected in-place replacement, got %+v", ps[0])
	}
}

func TestAddProductToCartMergesInsteadOfDuplicating(t *testing.T) {
	svc := newTestService(t, WithIDGenerator(sequentialIDs()))
	ctx := context.Background()

	if _, err := svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	qc, err := svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if qc.LineCount != 1 || len(qc.Lines) != 1 {
		t.Fatalf("expected one line, got %+v", qc.Lines)
	}
	if qc.Lines[0].Qty != 5 || qc.Lines[0].ID != "line-1" {
		t.Fatalf("expected merged line line-1 qty 5, got %+v", qc.Lines[0])
	}
}

func TestAggregationTotals(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: 2})
	qc, err := svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productB, Qty: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qc.LineCount != 2 {
		t.Fatalf("expected lineCount 2, got %d", qc.LineCount)
	}
	if !qc.Total.Equal(decimal.RequireFromString("4.04")) {
		t.Fatalf("expected total 4.04, got %s", qc.Total)
	}

	// reads recompute the same figures
	for _, c := range svc.Carts(ctx) {
		if c.ID == cartA && (!c.Total.Equal(qc.Total) || c.LineCount != 2) {
			t.Fatalf("read aggregation differs: %+v", c)
		}
		if c.ID == cartB && (c.LineCount != 0 || !c.Total.IsZero()) {
			t.Fatalf("untouched cart should be empty: %+v", c)
		}
	}
}

func TestAddProductToCartValidationAndNotFound(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: 0})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error for qty 0, got %v", err)
	}
	_, err = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: -3})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected validation error for negative qty, got %v", err)
	}

	var nf *store.NotFoundError
	_, err = svc.AddProductToCart(ctx, AddToCartInput{CartID: "nope", ProductID: productA, Qty: 1})
	if !errors.As(err, &nf) || nf.Entity != store.EntityCart {
		t.Fatalf("expected cart not found, got %v", err)
	}
	_, err = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: "nope", Qty: 1})
	if !errors.As(err, &nf) || nf.Entity != store.EntityProduct {
		t.Fatalf("expected product not found, got %v", err)
	}

	qc, err := svc.Cart(ctx, cartA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qc.LineCount != 0 {
		t.Fatalf("failed adds must not create lines, got %+v", qc.Lines)
	}
}

func TestAddProductToCartLooksUpBeforeCheckingQty(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var nf *store.NotFoundError
	_, err := svc.AddProductToCart(ctx, AddToCartInput{CartID: "nope", ProductID: "nope", Qty: 0})
	if !errors.As(err, &nf) || nf.Entity != store.EntityCart {
		t.Fatalf("expected cart not found before product or qty, got %v", err)
	}
	_, err = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: "nope", Qty: 0})
	if !errors.As(err, &nf) || nf.Entity != store.EntityProduct {
		t.Fatalf("expected product not found before qty, got %v", err)
	}
}

func TestAddProductToCartRejectsQtyOverflow(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	maxInt := int(^uint(0) >> 1)

	if _, err := svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: maxInt}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: 1})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected overflow to be rejected, got %v", err)
	}
	qc, _ := svc.Cart(ctx, cartA)
	if qc.Lines[0].Qty != maxInt {
		t.Fatalf("rejected merge must leave qty unchanged, got %d", qc.Lines[0].Qty)
	}
}

func TestClearCartEmptiesFully(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: 2})
	_, _ = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productB, Qty: 7})

	qc, err := svc.ClearCart(ctx, cartA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if qc.LineCount != 0 || !qc.Total.IsZero() || qc.Lines == nil {
		t.Fatalf("expected empty cart, got %+v", qc)
	}

	if _, err := svc.ClearCart(ctx, "nope"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, _ = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: 1})
	_, err := svc.UpdateProduct(ctx, ProductInput{ID: productA, Title: "Item A", Stock: 1000, Price: decimal.NewFromInt(100)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// merging into the existing line keeps its snapshot
	qc, _ := svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: 1})
	if !qc.Total.Equal(decimal.RequireFromString("2.02")) {
		t.Fatalf("existing line should keep price 1.01, total got %s", qc.Total)
	}

	// a new line in another cart sees the new price
	qc, _ = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartB, ProductID: productA, Qty: 1})
	if !qc.Total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("new line should take price 100, total got %s", qc.Total)
	}
}

func TestConcurrentAddsMergeIntoOneLine(t *testing.T) {
	svc := newTestService(t)
	const N = 200

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: 1})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddProductToCart failed: %v", err)
	}

	qc, err := svc.Cart(context.Background(), cartA)
	if err != nil {
		t.Fatalf("Cart failed: %v", err)
	}
	if qc.LineCount != 1 || qc.Lines[0].Qty != N {
		t.Fatalf("expected one line with qty=%d, got %+v", N, qc.Lines)
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	rec := &events.Recorder{}
	svc := newTestService(t, WithPublisher(rec))
	ctx := context.Background()

	_, _ = svc.UpdateProduct(ctx, ProductInput{ID: "p", Title: "P"})
	_, _ = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: "p", Qty: 1})
	_, _ = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: "missing", Qty: 1})
	_, _ = svc.ClearCart(ctx, cartA)

	got := rec.Events()
	want := []events.Type{events.ProductUpdated, events.CartLineAdded, events.CartCleared}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), got)
	}
	for i, e := range got {
		if e.Type != want[i] || e.At.IsZero() {
			t.Fatalf("event %d: want %s, got %+v", i, want[i], e)
		}
	}
}

func TestEventSeqFollowsCommitOrder(t *testing.T) {
	rec := &events.Recorder{}
	svc := newTestService(t, WithPublisher(rec))
	ctx := context.Background()

	_, _ = svc.UpdateProduct(ctx, ProductInput{ID: "p", Title: "P"})
	_, _ = svc.ClearCart(ctx, "missing")
	_, _ = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: "p", Qty: 0})
	_, _ = svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: "p", Qty: 1})
	_, _ = svc.ClearCart(ctx, cartA)

	got := rec.Events()
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %+v", got)
	}
	for i, e := range got {
		if e.Seq != uint64(i+1) {
			t.Fatalf("event %d: expected seq %d, got %d", i, i+1, e.Seq)
		}
	}
}

func TestConcurrentMutationsGetDistinctSeq(t *testing.T) {
	rec := &events.Recorder{}
	svc := newTestService(t, WithPublisher(rec))
	const N = 100

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < N; i++ {
		g.Go(func() error {
			_, err := svc.AddProductToCart(ctx, AddToCartInput{CartID: cartA, ProductID: productA, Qty: 1})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent AddProductToCart failed: %v", err)
	}

	seen := make(map[uint64]bool, N)
	for _, e := range rec.Events() {
		if e.Seq < 1 || e.Seq > N || seen[e.Seq] {
			t.Fatalf("unexpected or duplicate seq %d", e.Seq)
		}
		seen[e.Seq] = true
	}
	if len(seen) != N {
		t.Fatalf("expected %d distinct seqs, got %d", N, len(seen))
	}
}

func TestStoreErrorPropagates(t *testing.T) {
	boom := errors.New("store down")
	rec := &events.Recorder{}
	svc := NewService(&fakeStore{
		UpdateFn: func(fn func(tx store.Tx) error) error { return boom },
	}, WithPublisher(rec))
	ctx := context.Background()

	if _, err := svc.UpdateProduct(ctx, ProductInput{ID: "p", Title: "t"}); !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
	if _, err := svc.ClearCart(ctx, cartA); !errors.Is(err, boom) {
		t.Fatalf("expected store error to propagate, got %v", err)
	}
	if len(rec.Events()) != 0 {
		t.Fatalf("failed mutations must not publish events")
	}
}

func TestAggregateEmptyCart(t *testing.T) {
	qc := Aggregate(model.Cart{ID: "c"})
	if qc.LineCount != 0 || !qc.Total.IsZero() || qc.Lines == nil {
		t.Fatalf("unexpected aggregate of empty cart: %+v", qc)
	}
}
