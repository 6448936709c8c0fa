package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/purchase/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertOrderQuery = `
    INSERT INTO purchase_orders (
        id, order_number, supplier_id, supplier_name, status,
        order_date, expected_date, received_date,
        subtotal, tax_rate, tax_amount, discount_rate, discount_amount,
        shipping_cost, total_amount, payment_terms, notes,
        created_by, created_at, updated_at
    )
    VALUES (
        :id, :order_number, :supplier_id, :supplier_name, :status,
        :order_date, :expected_date, :received_date,
        :subtotal, :tax_rate, :tax_amount, :discount_rate, :discount_amount,
        :shipping_cost, :total_amount, :payment_terms, :notes,
        :created_by, :created_at, :updated_at
    )
`

const updateOrderQuery = `
    UPDATE purchase_orders SET
        status = :status,
        expected_date = :expected_date,
        received_date = :received_date,
        subtotal = :subtotal,
        tax_rate = :tax_rate,
        tax_amount = :tax_amount,
        discount_rate = :discount_rate,
        discount_amount = :discount_amount,
        shipping_cost = :shipping_cost,
        total_amount = :total_amount,
        payment_terms = :payment_terms,
        notes = :notes,
        updated_at = :updated_at
    WHERE id = :id
`

const insertOrderItemQuery = `
    INSERT INTO purchase_order_items (
        id, purchase_order_id, item_id, sku, name,
        quantity, received_quantity, unit_price, total_price,
        created_at, updated_at
    )
    VALUES (
        :id, :purchase_order_id, :item_id, :sku, :name,
        :quantity, :received_quantity, :unit_price, :total_price,
        :created_at, :updated_at
    )
`

const insertStatusChangeQuery = `
    INSERT INTO purchase_order_status_changes (
        id, purchase_order_id, previous_status, new_status,
        changed_by, reason, created_at
    )
    VALUES (
        :id, :purchase_order_id, :previous_status, :new_status,
        :changed_by, :reason, :created_at
    )
`

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.DB.GetContext(ctx, &po, `SELECT * FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	items := []model.PurchaseOrderItem{}
	err = r.DB.SelectContext(ctx, &items, `
        SELECT * FROM purchase_order_items
        WHERE purchase_order_id = $1
        ORDER BY created_at, id
    `, id)
	if err != nil {
		return nil, err
	}
	po.Items = items
	return &po, nil
}

func (r *PGRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := r.DB.GetContext(ctx, &po, `SELECT * FROM purchase_orders WHERE order_number = $1`, orderNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.PurchaseOrder, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.SupplierID != "" {
		conditions = append(conditions, "supplier_id = :supplier_id")
		args["supplier_id"] = f.SupplierID
	}
	if f.StartDate != nil {
		conditions = append(conditions, "order_date >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "order_date <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	count, err := r.namedCount(ctx, "SELECT count(*) FROM purchase_orders"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM purchase_orders" + whereClause + " ORDER BY order_date DESC, created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		if offset < 0 {
			offset = 0
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	orders := []model.PurchaseOrder{}
	err = nstmt.SelectContext(ctx, &orders, args)
	return orders, count, err
}

func (r *PGRepository) FindRecent(ctx context.Context, limit int) ([]model.PurchaseOrder, error) {
	orders := []model.PurchaseOrder{}
	err := r.DB.SelectContext(ctx, &orders, `
        SELECT * FROM purchase_orders
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	return orders, err
}

func (r *PGRepository) CountByStatus(ctx context.Context) (map[model.POStatus]int, error) {
	rows, err := r.DB.QueryxContext(ctx, `
        SELECT status, count(*) FROM purchase_orders GROUP BY status
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.POStatus]int{}
	for rows.Next() {
		var status model.POStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *PGRepository) TotalOrderValue(ctx context.Context) (float64, error) {
	var total float64
	err := r.DB.GetContext(ctx, &total, `
        SELECT COALESCE(SUM(total_amount), 0) FROM purchase_orders
        WHERE status <> 'CANCELLED'
    `)
	return total, err
}

func (r *PGRepository) CreateWithItems(ctx context.Context, po *model.PurchaseOrder, change *model.PurchaseOrderStatusChange) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertOrderQuery, po); err != nil {
		return fmt.Errorf("failed to insert purchase order: %w", err)
	}
	if change != nil {
		if _, err := tx.NamedExecContext(ctx, insertStatusChangeQuery, change); err != nil {
			return fmt.Errorf("failed to insert status change: %w", err)
		}
	}
	for i := range po.Items {
		if _, err := tx.NamedExecContext(ctx, insertOrderItemQuery, &po.Items[i]); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) Update(ctx context.Context, po *model.PurchaseOrder, change *model.PurchaseOrderStatusChange) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if change != nil {
		if _, err := tx.NamedExecContext(ctx, insertStatusChangeQuery, change); err != nil {
			return fmt.Errorf("failed to insert status change: %w", err)
		}
	}
	if _, err := tx.NamedExecContext(ctx, updateOrderQuery, po); err != nil {
		return fmt.Errorf("failed to update purchase order: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) UpdateWithItems(ctx context.Context, po *model.PurchaseOrder, replaceItems bool, change *model.PurchaseOrderStatusChange) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if change != nil {
		if _, err := tx.NamedExecContext(ctx, insertStatusChangeQuery, change); err != nil {
			return fmt.Errorf("failed to insert status change: %w", err)
		}
	}
	if _, err := tx.NamedExecContext(ctx, updateOrderQuery, po); err != nil {
		return fmt.Errorf("failed to update purchase order: %w", err)
	}
	if replaceItems {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM purchase_order_items WHERE purchase_order_id = $1`, po.ID); err != nil {
			return fmt.Errorf("failed to clear order items: %w", err)
		}
		for i := range po.Items {
			if _, err := tx.NamedExecContext(ctx, insertOrderItemQuery, &po.Items[i]); err != nil {
				return fmt.Errorf("failed to insert order item: %w", err)
			}
		}
	}

	return tx.Commit()
}

func (r *PGRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM purchase_order_status_changes WHERE purchase_order_id = $1`,
		`DELETE FROM purchase_order_items WHERE purchase_order_id = $1`,
		`DELETE FROM purchase_orders WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to cascade delete purchase order %s: %w", id, err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) ListStatusChanges(ctx context.Context, orderID string) ([]model.PurchaseOrderStatusChange, error) {
	changes := []model.PurchaseOrderStatusChange{}
	err := r.DB.SelectContext(ctx, &changes, `
        SELECT * FROM purchase_order_status_changes
        WHERE purchase_order_id = $1
        ORDER BY created_at DESC, id
    `, orderID)
	return changes, err
}

// NextSequence bumps the per-month counter in a single upsert so concurrent
// callers never observe the same value.
func (r *PGRepository) NextSequence(ctx context.Context, prefix string, year, month int) (int, error) {
	var seq int
	err := r.DB.GetContext(ctx, &seq, `
        INSERT INTO order_sequences (prefix, year, month, last_value)
        VALUES ($1, $2, $3, 1)
        ON CONFLICT (prefix, year, month)
        DO UPDATE SET last_value = order_sequences.last_value + 1
        RETURNING last_value
    `, prefix, year, month)
	return seq, err
}

func (r *PGRepository) namedCount(ctx context.Context, query string, args map[string]interface{}) (int, error) {
	rows, err := r.DB.NamedQueryContext(ctx, query, args)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	count := 0
	if rows.Next() {
		if err := rows.Scan(&count); err != nil {
			return 0, err
		}
	}
	return count, rows.Err()
}
