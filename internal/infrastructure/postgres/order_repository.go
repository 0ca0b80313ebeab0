package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tiendago/storefront/internal/domain/money"
	domain "github.com/tiendago/storefront/internal/domain/order"
)

type OrderRepository struct{ db *pgxpool.Pool }

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, product_id, quantity, total_cents, currency,
	first_name, last_name, address, city, postal_code,
	customer_email, idempotency_key, status,
	gateway_transaction_id, gateway_reference, error_message,
	created_at, updated_at`

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		o.ID, o.ProductID, o.Quantity, o.Total.AmountInCents(), o.Total.Currency(),
		o.Shipping.FirstName, o.Shipping.LastName, o.Shipping.Address, o.Shipping.City, o.Shipping.PostalCode,
		o.CustomerEmail, o.IdempotencyKey, string(o.Status),
		o.GatewayTransactionID, o.GatewayReference, o.ErrorMessage,
		o.CreatedAt, o.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
		return domain.ErrConflict
	}
	return err
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

func (r *OrderRepository) Update(ctx context.Context, o *domain.Order) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE orders SET
			status = $2, gateway_transaction_id = $3, gateway_reference = $4,
			error_message = $5, updated_at = $6
		WHERE id = $1`,
		o.ID, string(o.Status), o.GatewayTransactionID, o.GatewayReference,
		o.ErrorMessage, o.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) FindByIdempotency(ctx context.Context, key string) (*domain.Order, error) {
	if key == "" {
		return nil, domain.ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE idempotency_key = $1`, key)
	return scanOrder(row)
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var o domain.Order
	var totalCents int64
	var currency, status string
	err := row.Scan(&o.ID, &o.ProductID, &o.Quantity, &totalCents, &currency,
		&o.Shipping.FirstName, &o.Shipping.LastName, &o.Shipping.Address, &o.Shipping.City, &o.Shipping.PostalCode,
		&o.CustomerEmail, &o.IdempotencyKey, &status,
		&o.GatewayTransactionID, &o.GatewayReference, &o.ErrorMessage,
		&o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	o.Total = money.MustNew(totalCents, currency)
	o.Status = domain.Status(status)
	return &o, nil
}
