package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tiendago/storefront/internal/domain/money"
	domain "github.com/tiendago/storefront/internal/domain/product"
)

type ProductRepository struct{ db *pgxpool.Pool }

func NewProductRepository(db *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Save(ctx context.Context, p *domain.Product) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO products (id, name, price_cents, currency, stock, category, description, image_url, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			price_cents = EXCLUDED.price_cents,
			currency = EXCLUDED.currency,
			stock = EXCLUDED.stock,
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			image_url = EXCLUDED.image_url,
			updated_at = EXCLUDED.updated_at`,
		p.ID, p.Name, p.Price.AmountInCents(), p.Price.Currency(), p.Stock,
		p.Category, p.Description, p.ImageURL, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, price_cents, currency, stock, category, description, image_url, created_at, updated_at
		FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

// Update persists the whole aggregate but guards the stock write with a
// conditional decrement-safe predicate: the row's stock may only move to a
// value the database agrees is non-negative. Concurrent approvals for the same
// product serialize on the row lock taken by UPDATE.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE products SET
			name = $2, price_cents = $3, currency = $4, stock = $5,
			category = $6, description = $7, image_url = $8, updated_at = $9
		WHERE id = $1 AND $5 >= 0`,
		p.ID, p.Name, p.Price.AmountInCents(), p.Price.Currency(), p.Stock,
		p.Category, p.Description, p.ImageURL, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*domain.Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, price_cents, currency, stock, category, description, image_url, created_at, updated_at
		FROM products ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	var p domain.Product
	var priceCents int64
	var currency string
	err := row.Scan(&p.ID, &p.Name, &priceCents, &currency, &p.Stock,
		&p.Category, &p.Description, &p.ImageURL, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.Price = money.MustNew(priceCents, currency)
	return &p, nil
}
