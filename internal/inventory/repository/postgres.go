package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danwidi/erp-ledger-service/internal/inventory/dto"
	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertItemQuery = `
    INSERT INTO inventory_items (
        id, sku, name, description, category, item_type, unit, status,
        supplier_id, supplier_name,
        current_quantity, reserved_quantity, available_quantity,
        minimum_quantity, maximum_quantity, reorder_quantity,
        unit_price, total_value, is_active, is_flagged,
        created_at, updated_at
    )
    VALUES (
        :id, :sku, :name, :description, :category, :item_type, :unit, :status,
        :supplier_id, :supplier_name,
        :current_quantity, :reserved_quantity, :available_quantity,
        :minimum_quantity, :maximum_quantity, :reorder_quantity,
        :unit_price, :total_value, :is_active, :is_flagged,
        :created_at, :updated_at
    )
`

const updateItemQuery = `
    UPDATE inventory_items SET
        name = :name,
        description = :description,
        category = :category,
        item_type = :item_type,
        unit = :unit,
        status = :status,
        supplier_id = :supplier_id,
        supplier_name = :supplier_name,
        current_quantity = :current_quantity,
        reserved_quantity = :reserved_quantity,
        available_quantity = :available_quantity,
        minimum_quantity = :minimum_quantity,
        maximum_quantity = :maximum_quantity,
        reorder_quantity = :reorder_quantity,
        unit_price = :unit_price,
        total_value = :total_value,
        is_active = :is_active,
        is_flagged = :is_flagged,
        updated_at = :updated_at
    WHERE id = :id
`

const insertTransactionQuery = `
    INSERT INTO inventory_transactions (
        id, item_id, transaction_type, quantity_change, quantity_before,
        quantity_after, unit_price, reason, notes, reference_type,
        reference_id, performed_by, created_at
    )
    VALUES (
        :id, :item_id, :transaction_type, :quantity_change, :quantity_before,
        :quantity_after, :unit_price, :reason, :notes, :reference_type,
        :reference_id, :performed_by, :created_at
    )
`

const insertAlertQuery = `
    INSERT INTO inventory_alerts (id, item_id, level, message, is_resolved, created_at)
    VALUES (:id, :item_id, :level, :message, :is_resolved, :created_at)
`

func (r *PGRepository) FindItemByID(ctx context.Context, id string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.DB.GetContext(ctx, &item, `SELECT * FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) FindItemBySKU(ctx context.Context, sku string) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := r.DB.GetContext(ctx, &item, `SELECT * FROM inventory_items WHERE sku = $1`, sku)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *PGRepository) FindItems(ctx context.Context, f *dto.ItemFilters) ([]model.InventoryItem, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.ItemType != "" {
		conditions = append(conditions, "item_type = :item_type")
		args["item_type"] = f.ItemType
	}
	if f.Category != "" {
		conditions = append(conditions, "category = :category")
		args["category"] = f.Category
	}
	if f.SupplierID != "" {
		conditions = append(conditions, "supplier_id = :supplier_id")
		args["supplier_id"] = f.SupplierID
	}
	if f.Flagged != nil {
		conditions = append(conditions, "is_flagged = :is_flagged")
		args["is_flagged"] = *f.Flagged
	}
	if f.LowStock {
		conditions = append(conditions, "current_quantity > 0 AND current_quantity <= minimum_quantity")
	}
	if f.OutOfStock {
		conditions = append(conditions, "current_quantity <= 0")
	}
	if f.ExcessStock {
		conditions = append(conditions, "maximum_quantity > 0 AND current_quantity > maximum_quantity")
	}
	if f.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}
	if f.SearchQuery != "" {
		conditions = append(conditions,
			"(name ILIKE :search OR sku ILIKE :search OR description ILIKE :search OR supplier_name ILIKE :search)")
		args["search"] = "%" + f.SearchQuery + "%"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	count, err := r.namedCount(ctx, "SELECT count(*) FROM inventory_items"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_items" + whereClause + " ORDER BY updated_at DESC"
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

	items := []model.InventoryItem{}
	err = nstmt.SelectContext(ctx, &items, args)
	return items, count, err
}

func (r *PGRepository) CreateItemWithTransaction(ctx context.Context, item *model.InventoryItem, txn *model.InventoryTransaction) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertItemQuery, item); err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}
	if _, err := tx.NamedExecContext(ctx, insertTransactionQuery, txn); err != nil {
		return fmt.Errorf("failed to insert seeding transaction: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) UpdateItemWithTransaction(ctx context.Context, item *model.InventoryItem, txn *model.InventoryTransaction, alert *model.InventoryAlert) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, updateItemQuery, item); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if txn != nil {
		if _, err := tx.NamedExecContext(ctx, insertTransactionQuery, txn); err != nil {
			return fmt.Errorf("failed to log transaction: %w", err)
		}
	}
	if alert != nil {
		if _, err := tx.NamedExecContext(ctx, insertAlertQuery, alert); err != nil {
			return fmt.Errorf("failed to insert alert: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) ReserveStock(ctx context.Context, item *model.InventoryItem, res *model.InventoryReservation) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, updateItemQuery, item); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	insertReservation := `
        INSERT INTO inventory_reservations (
            id, item_id, quantity, reference_type, reference_id,
            is_active, expires_at, created_by, created_at, updated_at
        )
        VALUES (
            :id, :item_id, :quantity, :reference_type, :reference_id,
            :is_active, :expires_at, :created_by, :created_at, :updated_at
        )
    `
	if _, err := tx.NamedExecContext(ctx, insertReservation, res); err != nil {
		return fmt.Errorf("failed to insert reservation: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) ReleaseReservation(ctx context.Context, item *model.InventoryItem, res *model.InventoryReservation) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, updateItemQuery, item); err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	updateReservation := `
        UPDATE inventory_reservations
        SET is_active = :is_active, updated_at = :updated_at
        WHERE id = :id AND is_active = TRUE
    `
	if _, err := tx.NamedExecContext(ctx, updateReservation, res); err != nil {
		return fmt.Errorf("failed to deactivate reservation: %w", err)
	}

	return tx.Commit()
}

// DeleteItemCascade removes the item and every row referencing it. Readers
// never observe a partial cascade.
func (r *PGRepository) DeleteItemCascade(ctx context.Context, itemID string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM inventory_transactions WHERE item_id = $1`,
		`DELETE FROM inventory_reservations WHERE item_id = $1`,
		`DELETE FROM inventory_alerts WHERE item_id = $1`,
		`DELETE FROM inventory_items WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, itemID); err != nil {
			return fmt.Errorf("failed to cascade delete item %s: %w", itemID, err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) ListTransactions(ctx context.Context, f *dto.TransactionFilters) ([]model.InventoryTransaction, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ItemID != "" {
		conditions = append(conditions, "item_id = :item_id")
		args["item_id"] = f.ItemID
	}
	if f.TransactionType != "" {
		conditions = append(conditions, "transaction_type = :transaction_type")
		args["transaction_type"] = f.TransactionType
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= :start_date")
		args["start_date"] = *f.StartDate
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at <= :end_date")
		args["end_date"] = *f.EndDate
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	count, err := r.namedCount(ctx, "SELECT count(*) FROM inventory_transactions"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_transactions" + whereClause + " ORDER BY created_at DESC"
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

	txns := []model.InventoryTransaction{}
	err = nstmt.SelectContext(ctx, &txns, args)
	return txns, count, err
}

func (r *PGRepository) FindReservationByID(ctx context.Context, id string) (*model.InventoryReservation, error) {
	var res model.InventoryReservation
	err := r.DB.GetContext(ctx, &res, `SELECT * FROM inventory_reservations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func (r *PGRepository) ListReservations(ctx context.Context, f *dto.ReservationFilters) ([]model.InventoryReservation, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ItemID != "" {
		conditions = append(conditions, "item_id = :item_id")
		args["item_id"] = f.ItemID
	}
	if f.ReferenceType != "" {
		conditions = append(conditions, "reference_type = :reference_type")
		args["reference_type"] = f.ReferenceType
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = :reference_id")
		args["reference_id"] = f.ReferenceID
	}
	if f.ActiveOnly {
		conditions = append(conditions, "is_active = TRUE")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	count, err := r.namedCount(ctx, "SELECT count(*) FROM inventory_reservations"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_reservations" + whereClause + " ORDER BY created_at DESC"
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

	reservations := []model.InventoryReservation{}
	err = nstmt.SelectContext(ctx, &reservations, args)
	return reservations, count, err
}

func (r *PGRepository) FindExpiredActiveReservations(ctx context.Context, now time.Time) ([]model.InventoryReservation, error) {
	reservations := []model.InventoryReservation{}
	err := r.DB.SelectContext(ctx, &reservations, `
        SELECT * FROM inventory_reservations
        WHERE is_active = TRUE AND expires_at IS NOT NULL AND expires_at <= $1
        ORDER BY expires_at
    `, now)
	return reservations, err
}

func (r *PGRepository) ActiveReservationTotal(ctx context.Context, itemID string) (float64, error) {
	var total float64
	err := r.DB.GetContext(ctx, &total, `
        SELECT COALESCE(SUM(quantity), 0) FROM inventory_reservations
        WHERE item_id = $1 AND is_active = TRUE
    `, itemID)
	return total, err
}

// FindOpenAlert returns the newest unresolved alert for an item, if any.
func (r *PGRepository) FindOpenAlert(ctx context.Context, itemID string) (*model.InventoryAlert, error) {
	var alert model.InventoryAlert
	err := r.DB.GetContext(ctx, &alert, `
        SELECT * FROM inventory_alerts
        WHERE item_id = $1 AND is_resolved = FALSE
        ORDER BY created_at DESC
        LIMIT 1
    `, itemID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

func (r *PGRepository) ListAlerts(ctx context.Context, f *dto.AlertFilters) ([]model.InventoryAlert, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.ItemID != "" {
		conditions = append(conditions, "item_id = :item_id")
		args["item_id"] = f.ItemID
	}
	if f.Level != "" {
		conditions = append(conditions, "level = :level")
		args["level"] = f.Level
	}
	if f.UnresolvedOnly {
		conditions = append(conditions, "is_resolved = FALSE")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	count, err := r.namedCount(ctx, "SELECT count(*) FROM inventory_alerts"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM inventory_alerts" + whereClause + " ORDER BY created_at DESC"
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

	alerts := []model.InventoryAlert{}
	err = nstmt.SelectContext(ctx, &alerts, args)
	return alerts, count, err
}

func (r *PGRepository) ResolveAlert(ctx context.Context, id, resolvedBy string, at time.Time) (bool, error) {
	result, err := r.DB.ExecContext(ctx, `
        UPDATE inventory_alerts
        SET is_resolved = TRUE, resolved_by = $2, resolved_at = $3
        WHERE id = $1 AND is_resolved = FALSE
    `, id, resolvedBy, at)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *PGRepository) GetMetrics(ctx context.Context) (*dto.InventoryMetrics, error) {
	m := &dto.InventoryMetrics{}

	err := r.DB.QueryRowxContext(ctx, `
        SELECT
            count(*),
            count(*) FILTER (WHERE status = 'IN_STOCK'),
            count(*) FILTER (WHERE status = 'LOW_STOCK'),
            count(*) FILTER (WHERE status = 'OUT_OF_STOCK'),
            count(*) FILTER (WHERE status = 'DISCONTINUED'),
            count(*) FILTER (WHERE status = 'PENDING_RECEIPT'),
            COALESCE(SUM(total_value), 0)
        FROM inventory_items
        WHERE is_active = TRUE
    `).Scan(&m.TotalItems, &m.InStock, &m.LowStock, &m.OutOfStock,
		&m.Discontinued, &m.PendingReceipt, &m.TotalValue)
	if err != nil {
		return nil, err
	}

	categories := []dto.CategoryCount{}
	err = r.DB.SelectContext(ctx, &categories, `
        SELECT category, count(*) AS count
        FROM inventory_items
        WHERE is_active = TRUE AND category <> ''
        GROUP BY category
        ORDER BY count DESC, category
        LIMIT 5
    `)
	if err != nil {
		return nil, err
	}
	m.TopCategories = categories

	err = r.DB.GetContext(ctx, &m.UnresolvedAlerts,
		`SELECT count(*) FROM inventory_alerts WHERE is_resolved = FALSE`)
	if err != nil {
		return nil, err
	}

	return m, nil
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
