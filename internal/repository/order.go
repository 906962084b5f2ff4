package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storekit/storefront-api/internal/model"
)

// InsufficientStockError is returned when a conditional stock decrement
// matches no row, i.e. the product no longer has the requested quantity.
type InsufficientStockError struct {
	ProductID uuid.UUID
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %s", e.ProductID)
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status    model.OrderStatus
	StartDate *time.Time
	EndDate   *time.Time
}

type OrderRepository interface {
	// CreateWithItems persists the order, its item snapshots, and the
	// matching stock decrements in a single transaction. If any item
	// cannot be satisfied nothing is committed.
	CreateWithItems(ctx context.Context, order *model.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, int, error)
	List(ctx context.Context, filter OrderFilter, limit, offset int) ([]model.Order, int, error)
	UpdatePaymentInfo(ctx context.Context, id uuid.UUID, info model.PaymentInfo) error
	UpdateStatus(ctx context.Context, order *model.Order) error
}

type pgOrderRepo struct{ pool *pgxpool.Pool }

func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &pgOrderRepo{pool: pool}
}

func (r *pgOrderRepo) CreateWithItems(ctx context.Context, order *model.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	order.ID = uuid.New()
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (id, user_id, status, payment_method, shipping_address, billing_address,
			items_price, tax_price, shipping_price, total_price, payment_info, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		order.ID, order.UserID, order.Status, order.PaymentMethod,
		order.ShippingAddress, order.BillingAddress,
		order.ItemsPrice, order.TaxPrice, order.ShippingPrice, order.TotalPrice,
		order.PaymentInfo,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
		it := &order.Items[i]

		_, err = tx.Exec(ctx,
			`INSERT INTO order_items (id, order_id, product_id, name, image, quantity, unit_price, size, color)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, it.OrderID, it.ProductID, it.Name, it.Image, it.Quantity, it.UnitPrice, it.Size, it.Color,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}

		// Conditional decrement serializes concurrent checkouts per
		// product: the row only matches while enough stock remains.
		ct, err := tx.Exec(ctx,
			`UPDATE products SET stock = stock - $2, updated_at = NOW() WHERE id = $1 AND stock >= $2`,
			it.ProductID, it.Quantity,
		)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return &InsufficientStockError{ProductID: it.ProductID}
		}
	}

	return tx.Commit(ctx)
}

const orderColumns = `id, user_id, status, payment_method, shipping_address, billing_address,
	items_price, tax_price, shipping_price, total_price, payment_info,
	tracking_number, shipped_at, delivered_at, created_at, updated_at`

func scanOrder(row pgx.Row, o *model.Order) error {
	return row.Scan(
		&o.ID, &o.UserID, &o.Status, &o.PaymentMethod, &o.ShippingAddress, &o.BillingAddress,
		&o.ItemsPrice, &o.TaxPrice, &o.ShippingPrice, &o.TotalPrice, &o.PaymentInfo,
		&o.TrackingNumber, &o.ShippedAt, &o.DeliveredAt, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *pgOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order := &model.Order{}
	err := scanOrder(r.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.loadItems(ctx, []uuid.UUID{order.ID})
	if err != nil {
		return nil, err
	}
	order.Items = items[order.ID]
	return order, nil
}

func (r *pgOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	orders, err := r.collectWithItems(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *pgOrderRepo) List(ctx context.Context, filter OrderFilter, limit, offset int) ([]model.Order, int, error) {
	where := ""
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	var conds []string
	if filter.Status != "" {
		conds = append(conds, "status = "+arg(filter.Status))
	}
	if filter.StartDate != nil && filter.EndDate != nil {
		conds = append(conds, "created_at BETWEEN "+arg(*filter.StartDate)+" AND "+arg(*filter.EndDate))
	}
	for i, c := range conds {
		if i == 0 {
			where = " WHERE " + c
		} else {
			where += " AND " + c
		}
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}

	query := fmt.Sprintf(`SELECT `+orderColumns+` FROM orders%s ORDER BY created_at DESC LIMIT %s OFFSET %s`,
		where, arg(limit), arg(offset))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list all orders: %w", err)
	}
	orders, err := r.collectWithItems(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *pgOrderRepo) collectWithItems(ctx context.Context, rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var orders []model.Order
	var ids []uuid.UUID
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	items, err := r.loadItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

func (r *pgOrderRepo) loadItems(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]model.OrderItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, order_id, product_id, name, image, quantity, unit_price, size, color
		 FROM order_items WHERE order_id = ANY($1)`, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	items := make(map[uuid.UUID][]model.OrderItem)
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Name, &it.Image, &it.Quantity, &it.UnitPrice, &it.Size, &it.Color); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[it.OrderID] = append(items[it.OrderID], it)
	}
	return items, rows.Err()
}

func (r *pgOrderRepo) UpdatePaymentInfo(ctx context.Context, id uuid.UUID, info model.PaymentInfo) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_info = $2, updated_at = NOW() WHERE id = $1`, id, info)
	if err != nil {
		return fmt.Errorf("update payment info: %w", err)
	}
	return nil
}

func (r *pgOrderRepo) UpdateStatus(ctx context.Context, order *model.Order) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $2, tracking_number = $3, shipped_at = $4, delivered_at = $5,
			updated_at = NOW() WHERE id = $1`,
		order.ID, order.Status, order.TrackingNumber, order.ShippedAt, order.DeliveredAt)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return nil
}
