package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strconv"

	"github.com/99designs/gqlgen/graphql"
	"github.com/shopspring/decimal"
	"github.com/vektah/gqlparser/v2/ast"

	"cart-catalog/model"
	"cart-catalog/service"
)

type Config struct {
	Resolvers ResolverRoot
}

// NewExecutableSchema binds the resolvers to Schema for the gqlgen runtime.
func NewExecutableSchema(cfg Config) graphql.ExecutableSchema {
	return &executableSchema{resolvers: cfg.Resolvers}
}

type executableSchema struct {
	resolvers ResolverRoot
}

func (e *executableSchema) Schema() *ast.Schema {
	return Schema
}

func (e *executableSchema) Complexity(typeName, field string, childComplexity int, rawArgs map[string]interface{}) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	rc := graphql.GetOperationContext(ctx)
	ec := executionContext{rc, e}

	var root func(ctx context.Context, sel ast.SelectionSet) graphql.Marshaler
	switch rc.Operation.Operation {
	case ast.Query:
		root = ec._Query
	case ast.Mutation:
		root = ec._Mutation
	default:
		return graphql.OneShot(graphql.ErrorResponse(ctx, "unsupported GraphQL operation"))
	}

	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false
		data := root(ctx, rc.Operation.SelectionSet)
		var buf bytes.Buffer
		data.MarshalGQL(&buf)
		return &graphql.Response{Data: buf.Bytes()}
	}
}

type executionContext struct {
	*graphql.OperationContext
	*executableSchema
}

// resolveField calls resolve with the field on the context path, so errors
// and panics are reported against the field.
func (ec *executionContext) resolveField(ctx context.Context, object string, field graphql.CollectedField, resolve func(ctx context.Context) (interface{}, error)) (res interface{}, ok bool) {
	ctx = graphql.WithFieldContext(ctx, &graphql.FieldContext{
		Object:     object,
		Field:      field,
		IsMethod:   true,
		IsResolver: true,
	})
	defer func() {
		if r := recover(); r != nil {
			graphql.AddError(ctx, ec.Recover(ctx, r))
			res, ok = nil, false
		}
	}()

	res, err := resolve(ctx)
	if err != nil {
		graphql.AddError(ctx, err)
		return nil, false
	}
	return res, true
}

// invalid reports whether a resolved root value breaks a non-null field.
func invalid(field graphql.CollectedField, v graphql.Marshaler) bool {
	return v == graphql.Null && field.Definition != nil && field.Definition.Type.NonNull
}

// ---- roots ----

var queryImplementors = []string{"Query"}

func (ec *executionContext) _Query(ctx context.Context, sel ast.SelectionSet) graphql.Marshaler {
	fields := graphql.CollectFields(ec.OperationContext, sel, queryImplementors)
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("Query")
		case "__schema", "__type":
			out.Values[i] = ec._Query_introspection(ctx, field)
		case "products":
			out.Values[i] = ec._Query_products(ctx, field)
		case "carts":
			out.Values[i] = ec._Query_carts(ctx, field)
		case "cart":
			out.Values[i] = ec._Query_cart(ctx, field)
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}
		if invalid(field, out.Values[i]) {
			out.Invalids++
		}
	}
	if out.Invalids > 0 {
		return graphql.Null
	}
	return out
}

var mutationImplementors = []string{"Mutation"}

// _Mutation runs the top-level fields serially in document order.
func (ec *executionContext) _Mutation(ctx context.Context, sel ast.SelectionSet) graphql.Marshaler {
	fields := graphql.CollectFields(ec.OperationContext, sel, mutationImplementors)
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("Mutation")
		case "updateProduct":
			out.Values[i] = ec._Mutation_updateProduct(ctx, field)
		case "addProductToCart":
			out.Values[i] = ec._Mutation_addProductToCart(ctx, field)
		case "clearCart":
			out.Values[i] = ec._Mutation_clearCart(ctx, field)
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}
		if invalid(field, out.Values[i]) {
			out.Invalids++
		}
	}
	if out.Invalids > 0 {
		return graphql.Null
	}
	return out
}

// ---- query fields ----

func (ec *executionContext) _Query_introspection(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	ec.resolveField(ctx, "Query", field, func(ctx context.Context) (interface{}, error) {
		return nil, errIntrospection
	})
	return graphql.Null
}

func (ec *executionContext) _Query_products(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	resTmp, ok := ec.resolveField(ctx, "Query", field, func(ctx context.Context) (interface{}, error) {
		return ec.resolvers.Query().Products(ctx)
	})
	if !ok {
		return graphql.Null
	}
	res := resTmp.([]model.Product)
	ret := make(graphql.Array, len(res))
	for i := range res {
		ret[i] = ec._Product(ctx, field.Selections, &res[i])
	}
	return ret
}

func (ec *executionContext) _Query_carts(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	resTmp, ok := ec.resolveField(ctx, "Query", field, func(ctx context.Context) (interface{}, error) {
		return ec.resolvers.Query().Carts(ctx)
	})
	if !ok {
		return graphql.Null
	}
	res := resTmp.([]model.QueryCart)
	ret := make(graphql.Array, len(res))
	for i := range res {
		ret[i] = ec._Cart(ctx, field.Selections, &res[i])
	}
	return ret
}

func (ec *executionContext) _Query_cart(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	resTmp, ok := ec.resolveField(ctx, "Query", field, func(ctx context.Context) (interface{}, error) {
		id, err := unmarshalID("id", field.ArgumentMap(ec.Variables)["id"])
		if err != nil {
			return nil, err
		}
		return ec.resolvers.Query().Cart(ctx, id)
	})
	if !ok {
		return graphql.Null
	}
	res := resTmp.(*model.QueryCart)
	if res == nil {
		return graphql.Null
	}
	return ec._Cart(ctx, field.Selections, res)
}

// ---- mutation fields ----

func (ec *executionContext) _Mutation_updateProduct(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	resTmp, ok := ec.resolveField(ctx, "Mutation", field, func(ctx context.Context) (interface{}, error) {
		in, err := unmarshalInputUpdateProductInput(field.ArgumentMap(ec.Variables)["input"])
		if err != nil {
			return nil, err
		}
		return ec.resolvers.Mutation().UpdateProduct(ctx, in)
	})
	if !ok {
		return graphql.Null
	}
	res := resTmp.(*model.Product)
	if res == nil {
		return graphql.Null
	}
	return ec._Product(ctx, field.Selections, res)
}

func (ec *executionContext) _Mutation_addProductToCart(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	resTmp, ok := ec.resolveField(ctx, "Mutation", field, func(ctx context.Context) (interface{}, error) {
		in, err := unmarshalInputAddProductToCartInput(field.ArgumentMap(ec.Variables)["input"])
		if err != nil {
			return nil, err
		}
		return ec.resolvers.Mutation().AddProductToCart(ctx, in)
	})
	if !ok {
		return graphql.Null
	}
	res := resTmp.(*model.QueryCart)
	if res == nil {
		return graphql.Null
	}
	return ec._Cart(ctx, field.Selections, res)
}

func (ec *executionContext) _Mutation_clearCart(ctx context.Context, field graphql.CollectedField) graphql.Marshaler {
	resTmp, ok := ec.resolveField(ctx, "Mutation", field, func(ctx context.Context) (interface{}, error) {
		in, err := unmarshalInputClearCartInput(field.ArgumentMap(ec.Variables)["input"])
		if err != nil {
			return nil, err
		}
		return ec.resolvers.Mutation().ClearCart(ctx, in)
	})
	if !ok {
		return graphql.Null
	}
	res := resTmp.(*model.QueryCart)
	if res == nil {
		return graphql.Null
	}
	return ec._Cart(ctx, field.Selections, res)
}

// ---- objects ----

var productImplementors = []string{"Product"}

func (ec *executionContext) _Product(ctx context.Context, sel ast.SelectionSet, obj *model.Product) graphql.Marshaler {
	fields := graphql.CollectFields(ec.OperationContext, sel, productImplementors)
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("Product")
		case "id":
			out.Values[i] = graphql.MarshalID(obj.ID)
		case "title":
			out.Values[i] = graphql.MarshalString(obj.Title)
		case "stock":
			out.Values[i] = graphql.MarshalInt(obj.Stock)
		case "price":
			out.Values[i] = marshalMoney(obj.Price)
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}
	}
	return out
}

var cartImplementors = []string{"Cart"}

func (ec *executionContext) _Cart(ctx context.Context, sel ast.SelectionSet, obj *model.QueryCart) graphql.Marshaler {
	fields := graphql.CollectFields(ec.OperationContext, sel, cartImplementors)
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("Cart")
		case "id":
			out.Values[i] = graphql.MarshalID(obj.ID)
		case "lines":
			lines := make(graphql.Array, len(obj.Lines))
			for j := range obj.Lines {
				lines[j] = ec._CartLine(ctx, field.Selections, &obj.Lines[j])
			}
			out.Values[i] = lines
		case "lineCount":
			out.Values[i] = graphql.MarshalInt(obj.LineCount)
		case "total":
			out.Values[i] = marshalMoney(obj.Total)
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}
	}
	return out
}

var cartLineImplementors = []string{"CartLine"}

func (ec *executionContext) _CartLine(ctx context.Context, sel ast.SelectionSet, obj *model.CartLine) graphql.Marshaler {
	fields := graphql.CollectFields(ec.OperationContext, sel, cartLineImplementors)
	out := graphql.NewFieldSet(fields)
	for i, field := range fields {
		switch field.Name {
		case "__typename":
			out.Values[i] = graphql.MarshalString("CartLine")
		case "id":
			out.Values[i] = graphql.MarshalID(obj.ID)
		case "product":
			out.Values[i] = ec._Product(ctx, field.Selections, &obj.Product)
		case "qty":
			out.Values[i] = graphql.MarshalInt(obj.Qty)
		default:
			panic("unknown field " + strconv.Quote(field.Name))
		}
	}
	return out
}

// ---- inputs ----
// Variables reach these already validated against the schema, so only range
// and representation checks remain.

func inputObject(obj interface{}) (map[string]interface{}, error) {
	asMap, ok := obj.(map[string]interface{})
	if !ok {
		return nil, badInput("input", "must be an object")
	}
	return asMap, nil
}

func unmarshalInputUpdateProductInput(obj interface{}) (service.ProductInput, error) {
	var it service.ProductInput
	asMap, err := inputObject(obj)
	if err != nil {
		return it, err
	}
	if it.ID, err = unmarshalID("id", asMap["id"]); err != nil {
		return it, err
	}
	if it.Title, err = graphql.UnmarshalString(asMap["title"]); err != nil {
		return it, badInput("title", "must be a string")
	}
	if it.Stock, err = unmarshalInt32("stock", asMap["stock"]); err != nil {
		return it, err
	}
	if it.Price, err = unmarshalMoney("price", asMap["price"]); err != nil {
		return it, err
	}
	return it, nil
}

func unmarshalInputAddProductToCartInput(obj interface{}) (service.AddToCartInput, error) {
	var it service.AddToCartInput
	asMap, err := inputObject(obj)
	if err != nil {
		return it, err
	}
	if it.CartID, err = unmarshalID("cartId", asMap["cartId"]); err != nil {
		return it, err
	}
	if it.ProductID, err = unmarshalID("productId", asMap["productId"]); err != nil {
		return it, err
	}
	if it.Qty, err = unmarshalInt32("qty", asMap["qty"]); err != nil {
		return it, err
	}
	return it, nil
}

func unmarshalInputClearCartInput(obj interface{}) (ClearCartInput, error) {
	var it ClearCartInput
	asMap, err := inputObject(obj)
	if err != nil {
		return it, err
	}
	if it.CartID, err = unmarshalID("cartId", asMap["cartId"]); err != nil {
		return it, err
	}
	return it, nil
}

func badInput(field, reason string) error {
	return &service.ValidationError{Field: field, Reason: reason}
}

func unmarshalID(field string, v interface{}) (string, error) {
	if v == nil {
		return "", badInput(field, "is required")
	}
	id, err := graphql.UnmarshalID(v)
	if err != nil {
		return "", badInput(field, "must be an ID")
	}
	return id, nil
}

// unmarshalInt32 reads a GraphQL Int, which is limited to 32 bits.
func unmarshalInt32(field string, v interface{}) (int, error) {
	n, err := graphql.UnmarshalInt64(v)
	if err != nil {
		return 0, badInput(field, "must be an integer")
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, badInput(field, "must be a 32-bit integer")
	}
	return int(n), nil
}

// unmarshalMoney reads a Float, keeping the literal digits when the request
// carried them as a JSON number.
func unmarshalMoney(field string, v interface{}) (decimal.Decimal, error) {
	if n, ok := v.(json.Number); ok {
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, badInput(field, "must be a number")
		}
		return d, nil
	}
	f, err := graphql.UnmarshalFloat(v)
	if err != nil {
		return decimal.Zero, badInput(field, "must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, badInput(field, "must be a finite number")
	}
	return decimal.NewFromFloat(f), nil
}

func marshalMoney(d decimal.Decimal) graphql.Marshaler {
	return graphql.MarshalFloat(d.InexactFloat64())
}
