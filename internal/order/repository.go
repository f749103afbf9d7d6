package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("order not found")

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID string, status Status) (*Order, error)
	Delete(ctx context.Context, orderID string) error
}

type repo struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) Repository {
	return &repo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const insertOrderSQL = `INSERT INTO orders (id, session_id, customer_name, customer_email, customer_phone, customer_address, total_amount, status, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const insertItemSQL = `INSERT INTO order_items (id, order_id, position, line_id, product_id, product_name, image, unit_price, quantity, selected_size, selected_color)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

const selectOrderSQL = `SELECT id, session_id, customer_name, customer_email, customer_phone, customer_address, total_amount, status, created_at, updated_at
         FROM orders WHERE id = $1`

const selectItemsSQL = `SELECT line_id, product_id, product_name, image, unit_price, quantity, selected_size, selected_color
         FROM order_items WHERE order_id = $1 ORDER BY position`

const listOrdersSQL = `
		SELECT
			o.id, o.session_id, o.customer_name, o.customer_email, o.customer_phone, o.customer_address,
			o.total_amount, o.status, o.created_at, o.updated_at,
			oi.line_id, oi.product_id, oi.product_name, oi.image, oi.unit_price, oi.quantity,
			oi.selected_size, oi.selected_color
		FROM orders o
		LEFT JOIN order_items oi ON oi.order_id = o.id
		ORDER BY o.created_at DESC, o.id, oi.position
	`

// Create stores the order and its items in one transaction. A missing ID,
// status or timestamp is filled in first.
func (r *repo) Create(ctx context.Context, o *Order) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	if !o.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, o.Status)
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = r.now()
	}
	if o.UpdatedAt.IsZero() {
		o.UpdatedAt = o.CreatedAt
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, insertOrderSQL,
		o.ID, o.SessionID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.CustomerAddress,
		o.TotalAmount, string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	for i, it := range o.Items {
		_, err = tx.ExecContext(ctx, insertItemSQL,
			uuid.NewString(), o.ID, i, it.LineID, it.ProductID, it.ProductName, it.Image,
			it.UnitPrice, it.Quantity, it.SelectedSize, it.SelectedColor,
		)
		if err != nil {
			return fmt.Errorf("insert order_item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *repo) GetByID(ctx context.Context, orderID string) (*Order, error) {
	var o Order
	err := r.db.QueryRowContext(ctx, selectOrderSQL, orderID).Scan(
		&o.ID, &o.SessionID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.CustomerAddress,
		&o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select order: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, selectItemsSQL, o.ID)
	if err != nil {
		return nil, fmt.Errorf("select order_items: %w", err)
	}
	defer rows.Close()

	o.Items = []Item{}
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.LineID, &it.ProductID, &it.ProductName, &it.Image, &it.UnitPrice,
			&it.Quantity, &it.SelectedSize, &it.SelectedColor); err != nil {
			return nil, fmt.Errorf("scan order_item: %w", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return &o, nil
}

// List returns every order, newest first, with its items.
func (r *repo) List(ctx context.Context) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("select orders: %w", err)
	}
	defer rows.Close()

	orders := []Order{}
	index := map[string]int{}
	for rows.Next() {
		var (
			o                  Order
			lineID, productID  sql.NullString
			productName, image sql.NullString
			size, color        sql.NullString
			unitPrice          decimal.NullDecimal
			quantity           sql.NullInt64
		)
		if err := rows.Scan(
			&o.ID, &o.SessionID, &o.CustomerName, &o.CustomerEmail, &o.CustomerPhone, &o.CustomerAddress,
			&o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt,
			&lineID, &productID, &productName, &image, &unitPrice, &quantity, &size, &color,
		); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}

		i, ok := index[o.ID]
		if !ok {
			o.Items = []Item{}
			orders = append(orders, o)
			i = len(orders) - 1
			index[o.ID] = i
		}
		if !productID.Valid {
			continue
		}
		orders[i].Items = append(orders[i].Items, Item{
			LineID:        lineID.String,
			ProductID:     productID.String,
			ProductName:   productName.String,
			Image:         image.String,
			UnitPrice:     unitPrice.Decimal,
			Quantity:      int(quantity.Int64),
			SelectedSize:  size.String,
			SelectedColor: color.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return orders, nil
}

func (r *repo) UpdateStatus(ctx context.Context, orderID string, status Status) (*Order, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $2, updated_at = $3 WHERE id = $1`,
		orderID, string(status), r.now(),
	)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return r.GetByID(ctx, orderID)
}

// Delete removes the order; its items go with it through the foreign key.
func (r *repo) Delete(ctx context.Context, orderID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
