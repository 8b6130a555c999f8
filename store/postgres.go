package store

import (
	"context"
	"database/sql"
	_ "embed"

	"github.com/go-faster/errors"
	_ "github.com/lib/pq"

	"cart-catalog/model"
)

//go:embed schema.sql
var schemaSQL string

// OpenPostgres opens and pings a Postgres connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping postgres")
	}
	return db, nil
}

// PostgresSeeder reads the startup state from Postgres. It is read once at
// boot; the running service never writes back.
type PostgresSeeder struct {
	DB *sql.DB
}

// Migrate creates the seed tables if they do not exist.
func (p *PostgresSeeder) Migrate(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "apply seed schema")
	}
	return nil
}

// Load reads products, carts and cart lines in their stored order.
func (p *PostgresSeeder) Load(ctx context.Context) (Seed, error) {
	var seed Seed

	products, err := p.loadProducts(ctx)
	if err != nil {
		return seed, err
	}
	carts, err := p.loadCarts(ctx)
	if err != nil {
		return seed, err
	}
	if err := p.loadLines(ctx, carts); err != nil {
		return seed, err
	}

	seed.Products = products
	seed.Carts = carts
	return seed, nil
}

func (p *PostgresSeeder) loadProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT id, title, stock, price FROM products ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "query products")
	}
	defer rows.Close()

	out := []model.Product{}
	for rows.Next() {
		var pr model.Product
		if err := rows.Scan(&pr.ID, &pr.Title, &pr.Stock, &pr.Price); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate products")
	}
	return out, nil
}

func (p *PostgresSeeder) loadCarts(ctx context.Context) ([]model.Cart, error) {
	rows, err := p.DB.QueryContext(ctx, `SELECT id FROM carts ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "query carts")
	}
	defer rows.Close()

	out := []model.Cart{}
	for rows.Next() {
		c := model.Cart{Lines: []model.CartLine{}}
		if err := rows.Scan(&c.ID); err != nil {
			return nil, errors.Wrap(err, "scan cart")
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate carts")
	}
	return out, nil
}

func (p *PostgresSeeder) loadLines(ctx context.Context, carts []model.Cart) error {
	index := make(map[string]int, len(carts))
	for i, c := range carts {
		index[c.ID] = i
	}

	rows, err := p.DB.QueryContext(ctx, `
		SELECT id, cart_id, product_id, title, stock, price, qty
		FROM cart_lines
		ORDER BY position
	`)
	if err != nil {
		return errors.Wrap(err, "query cart lines")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			l      model.CartLine
			cartID string
		)
		if err := rows.Scan(&l.ID, &cartID, &l.Product.ID, &l.Product.Title, &l.Product.Stock, &l.Product.Price, &l.Qty); err != nil {
			return errors.Wrap(err, "scan cart line")
		}
		i, ok := index[cartID]
		if !ok {
			return errors.Errorf("cart line %q references unknown cart %q", l.ID, cartID)
		}
		carts[i].Lines = append(carts[i].Lines, l)
	}
	if err := rows.Err(); err != nil {
		return errors.Wrap(err, "iterate cart lines")
	}
	return nil
}
