package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaDDL is idempotent; InitSchema is safe to run on every startup.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS inventory_items (
    id               TEXT PRIMARY KEY,
    sku              TEXT NOT NULL UNIQUE,
    name             TEXT NOT NULL,
    description      TEXT NOT NULL DEFAULT '',
    category         TEXT NOT NULL DEFAULT '',
    item_type        TEXT NOT NULL DEFAULT '',
    unit             TEXT NOT NULL DEFAULT 'pcs',
    status           TEXT NOT NULL,
    supplier_id      TEXT,
    supplier_name    TEXT NOT NULL DEFAULT '',
    current_quantity     DOUBLE PRECISION NOT NULL DEFAULT 0,
    reserved_quantity    DOUBLE PRECISION NOT NULL DEFAULT 0,
    available_quantity   DOUBLE PRECISION NOT NULL DEFAULT 0,
    minimum_quantity     DOUBLE PRECISION NOT NULL DEFAULT 0,
    maximum_quantity     DOUBLE PRECISION NOT NULL DEFAULT 0,
    reorder_quantity     DOUBLE PRECISION NOT NULL DEFAULT 0,
    unit_price       DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_value      DOUBLE PRECISION NOT NULL DEFAULT 0,
    is_active        BOOLEAN NOT NULL DEFAULT TRUE,
    is_flagged       BOOLEAN NOT NULL DEFAULT FALSE,
    created_at       TIMESTAMPTZ NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventory_items_status ON inventory_items (status);
CREATE INDEX IF NOT EXISTS idx_inventory_items_supplier ON inventory_items (supplier_id);

CREATE TABLE IF NOT EXISTS inventory_transactions (
    id                TEXT PRIMARY KEY,
    item_id           TEXT NOT NULL REFERENCES inventory_items (id),
    transaction_type  TEXT NOT NULL,
    quantity_change   DOUBLE PRECISION NOT NULL,
    quantity_before   DOUBLE PRECISION NOT NULL,
    quantity_after    DOUBLE PRECISION NOT NULL,
    unit_price        DOUBLE PRECISION NOT NULL DEFAULT 0,
    reason            TEXT NOT NULL DEFAULT '',
    notes             TEXT NOT NULL DEFAULT '',
    reference_type    TEXT,
    reference_id      TEXT,
    performed_by      TEXT NOT NULL DEFAULT '',
    created_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventory_transactions_item ON inventory_transactions (item_id, created_at);

CREATE TABLE IF NOT EXISTS inventory_reservations (
    id              TEXT PRIMARY KEY,
    item_id         TEXT NOT NULL REFERENCES inventory_items (id),
    quantity        DOUBLE PRECISION NOT NULL,
    reference_type  TEXT NOT NULL,
    reference_id    TEXT NOT NULL,
    is_active       BOOLEAN NOT NULL DEFAULT TRUE,
    expires_at      TIMESTAMPTZ,
    created_by      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventory_reservations_item ON inventory_reservations (item_id, is_active);

CREATE TABLE IF NOT EXISTS inventory_alerts (
    id           TEXT PRIMARY KEY,
    item_id      TEXT NOT NULL REFERENCES inventory_items (id),
    level        TEXT NOT NULL,
    message      TEXT NOT NULL,
    is_resolved  BOOLEAN NOT NULL DEFAULT FALSE,
    resolved_by  TEXT,
    resolved_at  TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_inventory_alerts_item ON inventory_alerts (item_id, is_resolved);

CREATE TABLE IF NOT EXISTS purchase_orders (
    id              TEXT PRIMARY KEY,
    order_number    TEXT NOT NULL UNIQUE,
    supplier_id     TEXT NOT NULL,
    supplier_name   TEXT NOT NULL DEFAULT '',
    status          TEXT NOT NULL,
    order_date      TIMESTAMPTZ NOT NULL,
    expected_date   TIMESTAMPTZ,
    received_date   TIMESTAMPTZ,
    subtotal        DOUBLE PRECISION NOT NULL DEFAULT 0,
    tax_rate        DOUBLE PRECISION NOT NULL DEFAULT 0,
    tax_amount      DOUBLE PRECISION NOT NULL DEFAULT 0,
    discount_rate   DOUBLE PRECISION NOT NULL DEFAULT 0,
    discount_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
    shipping_cost   DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_amount    DOUBLE PRECISION NOT NULL DEFAULT 0,
    payment_terms   TEXT NOT NULL DEFAULT '',
    notes           TEXT NOT NULL DEFAULT '',
    created_by      TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL,
    updated_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_purchase_orders_status ON purchase_orders (status);
CREATE INDEX IF NOT EXISTS idx_purchase_orders_supplier ON purchase_orders (supplier_id);

CREATE TABLE IF NOT EXISTS purchase_order_items (
    id                 TEXT PRIMARY KEY,
    purchase_order_id  TEXT NOT NULL REFERENCES purchase_orders (id),
    item_id            TEXT,
    sku                TEXT NOT NULL DEFAULT '',
    name               TEXT NOT NULL,
    quantity           DOUBLE PRECISION NOT NULL,
    received_quantity  DOUBLE PRECISION NOT NULL DEFAULT 0,
    unit_price         DOUBLE PRECISION NOT NULL DEFAULT 0,
    total_price        DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at         TIMESTAMPTZ NOT NULL,
    updated_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_purchase_order_items_order ON purchase_order_items (purchase_order_id);

CREATE TABLE IF NOT EXISTS purchase_order_status_changes (
    id                 TEXT PRIMARY KEY,
    purchase_order_id  TEXT NOT NULL REFERENCES purchase_orders (id),
    previous_status    TEXT NOT NULL,
    new_status         TEXT NOT NULL,
    changed_by         TEXT NOT NULL DEFAULT '',
    reason             TEXT NOT NULL DEFAULT '',
    created_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_po_status_changes_order ON purchase_order_status_changes (purchase_order_id, created_at);

CREATE TABLE IF NOT EXISTS work_orders (
    id                  TEXT PRIMARY KEY,
    order_number        TEXT NOT NULL UNIQUE,
    customer_id         TEXT NOT NULL,
    customer_name       TEXT NOT NULL DEFAULT '',
    product_name        TEXT NOT NULL DEFAULT '',
    status              TEXT NOT NULL,
    priority            INTEGER NOT NULL DEFAULT 0,
    start_date          TIMESTAMPTZ,
    due_date            TIMESTAMPTZ,
    completed_date      TIMESTAMPTZ,
    total_quantity      DOUBLE PRECISION NOT NULL DEFAULT 0,
    completed_quantity  DOUBLE PRECISION NOT NULL DEFAULT 0,
    estimated_cost      DOUBLE PRECISION NOT NULL DEFAULT 0,
    notes               TEXT NOT NULL DEFAULT '',
    created_by          TEXT NOT NULL DEFAULT '',
    created_at          TIMESTAMPTZ NOT NULL,
    updated_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_work_orders_status ON work_orders (status);
CREATE INDEX IF NOT EXISTS idx_work_orders_customer ON work_orders (customer_id);

CREATE TABLE IF NOT EXISTS work_order_assemblies (
    id                  TEXT PRIMARY KEY,
    work_order_id       TEXT NOT NULL REFERENCES work_orders (id),
    name                TEXT NOT NULL,
    quantity            DOUBLE PRECISION NOT NULL,
    completed_quantity  DOUBLE PRECISION NOT NULL DEFAULT 0,
    unit_cost           DOUBLE PRECISION NOT NULL DEFAULT 0,
    created_at          TIMESTAMPTZ NOT NULL,
    updated_at          TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_work_order_assemblies_order ON work_order_assemblies (work_order_id);

CREATE TABLE IF NOT EXISTS work_order_specifications (
    id             TEXT PRIMARY KEY,
    work_order_id  TEXT NOT NULL REFERENCES work_orders (id),
    name           TEXT NOT NULL,
    value          TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_work_order_specifications_order ON work_order_specifications (work_order_id);

CREATE TABLE IF NOT EXISTS work_order_status_changes (
    id               TEXT PRIMARY KEY,
    work_order_id    TEXT NOT NULL REFERENCES work_orders (id),
    previous_status  TEXT NOT NULL,
    new_status       TEXT NOT NULL,
    changed_by       TEXT NOT NULL DEFAULT '',
    reason           TEXT NOT NULL DEFAULT '',
    created_at       TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_wo_status_changes_order ON work_order_status_changes (work_order_id, created_at);

CREATE TABLE IF NOT EXISTS order_sequences (
    prefix      TEXT NOT NULL,
    year        INTEGER NOT NULL,
    month       INTEGER NOT NULL,
    last_value  INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (prefix, year, month)
);
`

func InitSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}
