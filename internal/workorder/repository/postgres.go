package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/workorder/dto"
	"github.com/jmoiron/sqlx"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const insertWorkOrderQuery = `
    INSERT INTO work_orders (
        id, order_number, customer_id, customer_name, product_name,
        status, priority, start_date, due_date, completed_date,
        total_quantity, completed_quantity, estimated_cost, notes,
        created_by, created_at, updated_at
    )
    VALUES (
        :id, :order_number, :customer_id, :customer_name, :product_name,
        :status, :priority, :start_date, :due_date, :completed_date,
        :total_quantity, :completed_quantity, :estimated_cost, :notes,
        :created_by, :created_at, :updated_at
    )
`

const updateWorkOrderQuery = `
    UPDATE work_orders SET
        product_name = :product_name,
        status = :status,
        priority = :priority,
        start_date = :start_date,
        due_date = :due_date,
        completed_date = :completed_date,
        total_quantity = :total_quantity,
        completed_quantity = :completed_quantity,
        estimated_cost = :estimated_cost,
        notes = :notes,
        updated_at = :updated_at
    WHERE id = :id
`

const insertAssemblyQuery = `
    INSERT INTO work_order_assemblies (
        id, work_order_id, name, quantity, completed_quantity, unit_cost,
        created_at, updated_at
    )
    VALUES (
        :id, :work_order_id, :name, :quantity, :completed_quantity, :unit_cost,
        :created_at, :updated_at
    )
`

const insertSpecificationQuery = `
    INSERT INTO work_order_specifications (id, work_order_id, name, value, created_at)
    VALUES (:id, :work_order_id, :name, :value, :created_at)
`

const insertStatusChangeQuery = `
    INSERT INTO work_order_status_changes (
        id, work_order_id, previous_status, new_status,
        changed_by, reason, created_at
    )
    VALUES (
        :id, :work_order_id, :previous_status, :new_status,
        :changed_by, :reason, :created_at
    )
`

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := r.DB.GetContext(ctx, &wo, `SELECT * FROM work_orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	assemblies := []model.WorkOrderAssembly{}
	err = r.DB.SelectContext(ctx, &assemblies, `
        SELECT * FROM work_order_assemblies
        WHERE work_order_id = $1
        ORDER BY created_at, id
    `, id)
	if err != nil {
		return nil, err
	}
	wo.Assemblies = assemblies

	specs := []model.WorkOrderSpecification{}
	err = r.DB.SelectContext(ctx, &specs, `
        SELECT * FROM work_order_specifications
        WHERE work_order_id = $1
        ORDER BY created_at, id
    `, id)
	if err != nil {
		return nil, err
	}
	wo.Specifications = specs

	return &wo, nil
}

func (r *PGRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*model.WorkOrder, error) {
	var wo model.WorkOrder
	err := r.DB.GetContext(ctx, &wo, `SELECT * FROM work_orders WHERE order_number = $1`, orderNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &wo, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.WorkOrderFilters) ([]model.WorkOrder, int, error) {
	conditions := []string{}
	args := map[string]interface{}{}

	if f.Status != "" {
		conditions = append(conditions, "status = :status")
		args["status"] = f.Status
	}
	if f.CustomerID != "" {
		conditions = append(conditions, "customer_id = :customer_id")
		args["customer_id"] = f.CustomerID
	}
	if f.Priority != nil {
		conditions = append(conditions, "priority = :priority")
		args["priority"] = *f.Priority
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

	count, err := r.namedCount(ctx, "SELECT count(*) FROM work_orders"+whereClause, args)
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM work_orders" + whereClause + " ORDER BY priority DESC, created_at DESC"
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

	orders := []model.WorkOrder{}
	err = nstmt.SelectContext(ctx, &orders, args)
	return orders, count, err
}

func (r *PGRepository) FindRecent(ctx context.Context, limit int) ([]model.WorkOrder, error) {
	orders := []model.WorkOrder{}
	err := r.DB.SelectContext(ctx, &orders, `
        SELECT * FROM work_orders
        ORDER BY created_at DESC
        LIMIT $1
    `, limit)
	return orders, err
}

func (r *PGRepository) CountByStatus(ctx context.Context) (map[model.WOStatus]int, error) {
	rows, err := r.DB.QueryxContext(ctx, `
        SELECT status, count(*) FROM work_orders GROUP BY status
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[model.WOStatus]int{}
	for rows.Next() {
		var status model.WOStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *PGRepository) TotalEstimatedCost(ctx context.Context) (float64, error) {
	var total float64
	err := r.DB.GetContext(ctx, &total, `
        SELECT COALESCE(SUM(estimated_cost), 0) FROM work_orders
        WHERE status <> 'CANCELLED'
    `)
	return total, err
}

func (r *PGRepository) CreateWithChildren(ctx context.Context, wo *model.WorkOrder, change *model.WorkOrderStatusChange) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.NamedExecContext(ctx, insertWorkOrderQuery, wo); err != nil {
		return fmt.Errorf("failed to insert work order: %w", err)
	}
	if change != nil {
		if _, err := tx.NamedExecContext(ctx, insertStatusChangeQuery, change); err != nil {
			return fmt.Errorf("failed to insert status change: %w", err)
		}
	}
	for i := range wo.Assemblies {
		if _, err := tx.NamedExecContext(ctx, insertAssemblyQuery, &wo.Assemblies[i]); err != nil {
			return fmt.Errorf("failed to insert assembly: %w", err)
		}
	}
	for i := range wo.Specifications {
		if _, err := tx.NamedExecContext(ctx, insertSpecificationQuery, &wo.Specifications[i]); err != nil {
			return fmt.Errorf("failed to insert specification: %w", err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) Update(ctx context.Context, wo *model.WorkOrder, change *model.WorkOrderStatusChange) error {
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
	if _, err := tx.NamedExecContext(ctx, updateWorkOrderQuery, wo); err != nil {
		return fmt.Errorf("failed to update work order: %w", err)
	}

	return tx.Commit()
}

func (r *PGRepository) UpdateWithChildren(ctx context.Context, wo *model.WorkOrder, replaceChildren bool, change *model.WorkOrderStatusChange) error {
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
	if _, err := tx.NamedExecContext(ctx, updateWorkOrderQuery, wo); err != nil {
		return fmt.Errorf("failed to update work order: %w", err)
	}
	if replaceChildren {
		for _, q := range []string{
			`DELETE FROM work_order_assemblies WHERE work_order_id = $1`,
			`DELETE FROM work_order_specifications WHERE work_order_id = $1`,
		} {
			if _, err := tx.ExecContext(ctx, q, wo.ID); err != nil {
				return fmt.Errorf("failed to clear work order children: %w", err)
			}
		}
		for i := range wo.Assemblies {
			if _, err := tx.NamedExecContext(ctx, insertAssemblyQuery, &wo.Assemblies[i]); err != nil {
				return fmt.Errorf("failed to insert assembly: %w", err)
			}
		}
		for i := range wo.Specifications {
			if _, err := tx.NamedExecContext(ctx, insertSpecificationQuery, &wo.Specifications[i]); err != nil {
				return fmt.Errorf("failed to insert specification: %w", err)
			}
		}
	}

	return tx.Commit()
}

// UpdateAssemblies persists progress: the order row plus the touched assembly
// rows, without replacing the whole child set.
func (r *PGRepository) UpdateAssemblies(ctx context.Context, wo *model.WorkOrder, assemblies []model.WorkOrderAssembly, change *model.WorkOrderStatusChange) error {
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
	if _, err := tx.NamedExecContext(ctx, updateWorkOrderQuery, wo); err != nil {
		return fmt.Errorf("failed to update work order: %w", err)
	}

	updateAssembly := `
        UPDATE work_order_assemblies
        SET completed_quantity = :completed_quantity, updated_at = :updated_at
        WHERE id = :id
    `
	for i := range assemblies {
		if _, err := tx.NamedExecContext(ctx, updateAssembly, &assemblies[i]); err != nil {
			return fmt.Errorf("failed to update assembly: %w", err)
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
		`DELETE FROM work_order_status_changes WHERE work_order_id = $1`,
		`DELETE FROM work_order_assemblies WHERE work_order_id = $1`,
		`DELETE FROM work_order_specifications WHERE work_order_id = $1`,
		`DELETE FROM work_orders WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("failed to cascade delete work order %s: %w", id, err)
		}
	}

	return tx.Commit()
}

func (r *PGRepository) ListStatusChanges(ctx context.Context, workOrderID string) ([]model.WorkOrderStatusChange, error) {
	changes := []model.WorkOrderStatusChange{}
	err := r.DB.SelectContext(ctx, &changes, `
        SELECT * FROM work_order_status_changes
        WHERE work_order_id = $1
        ORDER BY created_at DESC, id
    `, workOrderID)
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
