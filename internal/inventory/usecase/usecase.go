package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danwidi/erp-ledger-service/internal/apperrors"
	"github.com/danwidi/erp-ledger-service/internal/cache"
	"github.com/danwidi/erp-ledger-service/internal/inventory"
	"github.com/danwidi/erp-ledger-service/internal/inventory/dto"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/search"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const itemsIndex = "inventory_items"

type inventoryUseCase struct {
	repo   inventory.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewInventoryUseCase(repo inventory.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) inventory.UseCase {
	return &inventoryUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

// lockItem serializes read-modify-write on a single item. With no cache
// client configured (single-process deployments, tests) it is a no-op.
func (uc *inventoryUseCase) lockItem(ctx context.Context, itemID string) (func(), error) {
	if uc.cache == nil {
		return func() {}, nil
	}

	lockKey := fmt.Sprintf("lock:inventory:%s", itemID)
	lockValue := uuid.New().String()

	acquired := false
	for i := 0; i < 3; i++ {
		ok, err := uc.cache.AcquireLock(ctx, lockKey, lockValue, 5*time.Second)
		if err != nil {
			uc.logger.Error("failed to acquire lock redis error", zap.Error(err))
		}
		if ok {
			acquired = true
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	if !acquired {
		return nil, apperrors.Conflict("item %s is locked by another operation, try again", itemID)
	}

	return func() {
		if err := uc.cache.ReleaseLock(context.Background(), lockKey, lockValue); err != nil {
			uc.logger.Error("failed to release lock", zap.String("key", lockKey), zap.Error(err))
		}
	}, nil
}

func (uc *inventoryUseCase) CreateItem(ctx context.Context, input *dto.CreateItemInput) (*model.InventoryItem, error) {
	if input.SKU == "" || input.Name == "" {
		return nil, apperrors.Validation("sku and name are required")
	}
	if input.CurrentQuantity < 0 || input.MinimumQuantity < 0 || input.MaximumQuantity < 0 ||
		input.ReorderQuantity < 0 || input.UnitPrice < 0 {
		return nil, apperrors.Validation("quantities and unit price must not be negative")
	}

	existing, err := uc.repo.FindItemBySKU(ctx, input.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("sku already exists: %s", input.SKU)
	}

	now := time.Now()
	item := &model.InventoryItem{
		ID:              uuid.New().String(),
		SKU:             input.SKU,
		Name:            input.Name,
		Description:     input.Description,
		Category:        input.Category,
		ItemType:        input.ItemType,
		Unit:            input.Unit,
		SupplierID:      input.SupplierID,
		SupplierName:    input.SupplierName,
		CurrentQuantity: input.CurrentQuantity,
		MinimumQuantity: input.MinimumQuantity,
		MaximumQuantity: input.MaximumQuantity,
		ReorderQuantity: input.ReorderQuantity,
		UnitPrice:       input.UnitPrice,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if item.Unit == "" {
		item.Unit = "pcs"
	}
	item.Recalculate()

	// Seeding transaction: the audit trail starts at zero.
	txn := &model.InventoryTransaction{
		ID:              uuid.New().String(),
		ItemID:          item.ID,
		TransactionType: model.TransactionAdjustment,
		QuantityChange:  input.CurrentQuantity,
		QuantityBefore:  0,
		QuantityAfter:   input.CurrentQuantity,
		UnitPrice:       input.UnitPrice,
		Reason:          "initial stock",
		PerformedBy:     input.PerformedBy,
		CreatedAt:       now,
	}

	if err := uc.repo.CreateItemWithTransaction(ctx, item, txn); err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), item)

	return item, nil
}

func (uc *inventoryUseCase) UpdateItem(ctx context.Context, id string, input *dto.UpdateItemInput) (*model.InventoryItem, error) {
	release, err := uc.lockItem(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	item, err := uc.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NotFound("inventory item", id)
	}

	previousQuantity := item.CurrentQuantity

	if input.Name != nil {
		item.Name = *input.Name
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.Category != nil {
		item.Category = *input.Category
	}
	if input.ItemType != nil {
		item.ItemType = *input.ItemType
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if input.SupplierID != nil {
		item.SupplierID = input.SupplierID
	}
	if input.SupplierName != nil {
		item.SupplierName = *input.SupplierName
	}
	if input.CurrentQuantity != nil {
		if *input.CurrentQuantity < 0 {
			return nil, apperrors.Validation("current quantity must not be negative")
		}
		item.CurrentQuantity = *input.CurrentQuantity
	}
	if input.MinimumQuantity != nil {
		item.MinimumQuantity = *input.MinimumQuantity
	}
	if input.MaximumQuantity != nil {
		item.MaximumQuantity = *input.MaximumQuantity
	}
	if input.ReorderQuantity != nil {
		item.ReorderQuantity = *input.ReorderQuantity
	}
	if input.UnitPrice != nil {
		if *input.UnitPrice < 0 {
			return nil, apperrors.Validation("unit price must not be negative")
		}
		item.UnitPrice = *input.UnitPrice
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}

	item.Recalculate()

	// DISCONTINUED / PENDING_RECEIPT are explicit overrides; stock statuses
	// always come from derivation.
	if input.Status != nil {
		switch model.ItemStatus(*input.Status) {
		case model.ItemStatusDiscontinued, model.ItemStatusPendingReceipt:
			item.Status = model.ItemStatus(*input.Status)
		case model.ItemStatusInStock, model.ItemStatusLowStock, model.ItemStatusOutOfStock:
			// derived above, ignore
		default:
			return nil, apperrors.Validation("unknown item status: %s", *input.Status)
		}
	}

	now := time.Now()
	item.UpdatedAt = now

	var txn *model.InventoryTransaction
	var alert *model.InventoryAlert
	if item.CurrentQuantity != previousQuantity {
		txn = &model.InventoryTransaction{
			ID:              uuid.New().String(),
			ItemID:          item.ID,
			TransactionType: model.TransactionAdjustment,
			QuantityChange:  item.CurrentQuantity - previousQuantity,
			QuantityBefore:  previousQuantity,
			QuantityAfter:   item.CurrentQuantity,
			UnitPrice:       item.UnitPrice,
			Reason:          "item update",
			PerformedBy:     input.PerformedBy,
			CreatedAt:       now,
		}
		alert, err = uc.maybeAlert(ctx, item, now)
		if err != nil {
			return nil, err
		}
	}

	if err := uc.repo.UpdateItemWithTransaction(ctx, item, txn, alert); err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), item)

	return item, nil
}

func (uc *inventoryUseCase) AdjustQuantity(ctx context.Context, input *dto.AdjustQuantityInput) (*model.InventoryItem, error) {
	release, err := uc.lockItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	defer release()

	item, err := uc.repo.FindItemByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NotFound("inventory item", input.ItemID)
	}

	previousQuantity := item.CurrentQuantity
	newQuantity := previousQuantity + input.Delta
	if newQuantity < 0 {
		return nil, apperrors.InvalidOperation(
			"adjustment would drive item %s negative: %.2f%+.2f", item.ID, previousQuantity, input.Delta)
	}

	now := time.Now()
	item.CurrentQuantity = newQuantity
	item.Recalculate()
	item.UpdatedAt = now

	txnType := model.TransactionAdjustment
	if input.ReferenceType == "purchase_order" || input.ReferenceType == "receiving" {
		txnType = model.TransactionReceipt
	}

	var refType, refID *string
	if input.ReferenceType != "" {
		refType = &input.ReferenceType
	}
	if input.ReferenceID != "" {
		refID = &input.ReferenceID
	}

	txn := &model.InventoryTransaction{
		ID:              uuid.New().String(),
		ItemID:          item.ID,
		TransactionType: txnType,
		QuantityChange:  input.Delta,
		QuantityBefore:  previousQuantity,
		QuantityAfter:   newQuantity,
		UnitPrice:       item.UnitPrice,
		Reason:          input.Reason,
		Notes:           input.Notes,
		ReferenceType:   refType,
		ReferenceID:     refID,
		PerformedBy:     input.PerformedBy,
		CreatedAt:       now,
	}

	alert, err := uc.maybeAlert(ctx, item, now)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.UpdateItemWithTransaction(ctx, item, txn, alert); err != nil {
		return nil, err
	}

	go uc.syncToElastic(context.Background(), item)

	return item, nil
}

// maybeAlert builds the alert a quantity change warrants. A new alert is only
// created when no unresolved alert exists for the item, or when the new level
// escalates past the open one.
func (uc *inventoryUseCase) maybeAlert(ctx context.Context, item *model.InventoryItem, now time.Time) (*model.InventoryAlert, error) {
	level := model.AlertLevelFor(item.Status)
	if level == "" {
		return nil, nil
	}

	open, err := uc.repo.FindOpenAlert(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if open != nil && !model.AlertEscalates(open.Level, level) {
		return nil, nil
	}

	message := fmt.Sprintf("%s (%s) is low on stock: %.2f %s remaining (minimum %.2f)",
		item.Name, item.SKU, item.CurrentQuantity, item.Unit, item.MinimumQuantity)
	if item.Status == model.ItemStatusOutOfStock {
		message = fmt.Sprintf("%s (%s) is out of stock", item.Name, item.SKU)
	}

	return &model.InventoryAlert{
		ID:        uuid.New().String(),
		ItemID:    item.ID,
		Level:     level,
		Message:   message,
		CreatedAt: now,
	}, nil
}

func (uc *inventoryUseCase) CreateReservation(ctx context.Context, input *dto.CreateReservationInput) (*model.InventoryReservation, error) {
	if input.Quantity <= 0 {
		return nil, apperrors.Validation("reservation quantity must be positive")
	}

	release, err := uc.lockItem(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	defer release()

	item, err := uc.repo.FindItemByID(ctx, input.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NotFound("inventory item", input.ItemID)
	}

	if input.Quantity > item.AvailableQuantity {
		return nil, apperrors.InsufficientStock(item.ID, input.Quantity, item.AvailableQuantity)
	}

	now := time.Now()
	item.ReservedQuantity += input.Quantity
	item.Recalculate()
	item.UpdatedAt = now

	res := &model.InventoryReservation{
		ID:            uuid.New().String(),
		ItemID:        item.ID,
		Quantity:      input.Quantity,
		ReferenceType: input.ReferenceType,
		ReferenceID:   input.ReferenceID,
		IsActive:      true,
		ExpiresAt:     input.ExpiresAt,
		CreatedBy:     input.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := uc.repo.ReserveStock(ctx, item, res); err != nil {
		return nil, err
	}

	return res, nil
}

func (uc *inventoryUseCase) ReleaseReservation(ctx context.Context, id string) (*model.InventoryReservation, error) {
	res, err := uc.repo.FindReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperrors.NotFound("reservation", id)
	}
	// Releasing twice must not double-credit available quantity.
	if !res.IsActive {
		return res, nil
	}

	release, err := uc.lockItem(ctx, res.ItemID)
	if err != nil {
		return nil, err
	}
	defer release()

	// Re-read under the lock: a concurrent release may have deactivated the
	// reservation between the first read and lock acquisition.
	res, err = uc.repo.FindReservationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperrors.NotFound("reservation", id)
	}
	if !res.IsActive {
		return res, nil
	}

	item, err := uc.repo.FindItemByID(ctx, res.ItemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NotFound("inventory item", res.ItemID)
	}

	// Rebuild reserved from the reservation ledger instead of decrementing
	// the counter, so other active pledges are never released with it.
	activeTotal, err := uc.repo.ActiveReservationTotal(ctx, item.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	item.ReservedQuantity = activeTotal - res.Quantity
	if item.ReservedQuantity < 0 {
		item.ReservedQuantity = 0
	}
	item.Recalculate()
	item.UpdatedAt = now

	res.IsActive = false
	res.UpdatedAt = now

	if err := uc.repo.ReleaseReservation(ctx, item, res); err != nil {
		return nil, err
	}

	return res, nil
}

func (uc *inventoryUseCase) ReleaseExpiredReservations(ctx context.Context) (int, error) {
	expired, err := uc.repo.FindExpiredActiveReservations(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	released := 0
	for _, res := range expired {
		if _, err := uc.ReleaseReservation(ctx, res.ID); err != nil {
			uc.logger.Error("failed to release expired reservation",
				zap.String("reservation_id", res.ID), zap.Error(err))
			continue
		}
		released++
	}
	return released, nil
}

func (uc *inventoryUseCase) DeleteItem(ctx context.Context, id string) error {
	item, err := uc.repo.FindItemByID(ctx, id)
	if err != nil {
		return err
	}
	if item == nil {
		return apperrors.NotFound("inventory item", id)
	}

	if err := uc.repo.DeleteItemCascade(ctx, id); err != nil {
		return err
	}

	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), itemsIndex, id); err != nil {
				uc.logger.Error("failed to remove item from index", zap.String("item_id", id), zap.Error(err))
			}
		}()
	}

	return nil
}

func (uc *inventoryUseCase) GetItem(ctx context.Context, id string) (*model.InventoryItem, error) {
	item, err := uc.repo.FindItemByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NotFound("inventory item", id)
	}
	return item, nil
}

func (uc *inventoryUseCase) GetItemBySKU(ctx context.Context, sku string) (*model.InventoryItem, error) {
	item, err := uc.repo.FindItemBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.NotFound("inventory item", sku)
	}
	return item, nil
}

func (uc *inventoryUseCase) ListItems(ctx context.Context, filters *dto.ItemFilters) ([]model.InventoryItem, int, error) {
	return uc.repo.FindItems(ctx, filters)
}

func (uc *inventoryUseCase) SearchItems(ctx context.Context, query string, page, pageSize int) ([]model.InventoryItem, int, error) {
	if query != "" && uc.es != nil {
		q := map[string]interface{}{
			"query": map[string]interface{}{
				"query_string": map[string]interface{}{
					"query":  fmt.Sprintf("*%s*", query),
					"fields": []string{"name^3", "sku", "description", "supplier_name"},
				},
			},
		}
		if pageSize > 0 {
			q["from"] = (page - 1) * pageSize
			q["size"] = pageSize
		}

		res, err := uc.es.Search(ctx, itemsIndex, q)
		if err == nil {
			var items []model.InventoryItem
			for _, hit := range res.Hits.Hits {
				var item model.InventoryItem
				if err := json.Unmarshal(hit.Source, &item); err == nil {
					items = append(items, item)
				}
			}
			return items, res.Hits.Total.Value, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	return uc.repo.FindItems(ctx, &dto.ItemFilters{
		SearchQuery: query,
		Page:        page,
		PageSize:    pageSize,
	})
}

func (uc *inventoryUseCase) syncToElastic(ctx context.Context, item *model.InventoryItem) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"name": { "type": "text" },
				"description": { "type": "text" },
				"sku": { "type": "keyword" },
				"supplier_name": { "type": "text" },
				"category": { "type": "keyword" },
				"status": { "type": "keyword" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, itemsIndex, mapping)

	if err := uc.es.Index(ctx, itemsIndex, item.ID, item); err != nil {
		uc.logger.Error("failed to index inventory item", zap.Error(err))
	}
}

func (uc *inventoryUseCase) ListTransactions(ctx context.Context, filters *dto.TransactionFilters) ([]model.InventoryTransaction, int, error) {
	return uc.repo.ListTransactions(ctx, filters)
}

func (uc *inventoryUseCase) ListReservations(ctx context.Context, filters *dto.ReservationFilters) ([]model.InventoryReservation, int, error) {
	return uc.repo.ListReservations(ctx, filters)
}

func (uc *inventoryUseCase) ListAlerts(ctx context.Context, filters *dto.AlertFilters) ([]model.InventoryAlert, int, error) {
	return uc.repo.ListAlerts(ctx, filters)
}

func (uc *inventoryUseCase) ResolveAlert(ctx context.Context, id, resolvedBy string) error {
	resolved, err := uc.repo.ResolveAlert(ctx, id, resolvedBy, time.Now())
	if err != nil {
		return err
	}
	if !resolved {
		return apperrors.NotFound("alert", id)
	}
	return nil
}

func (uc *inventoryUseCase) GetMetrics(ctx context.Context) (*dto.InventoryMetrics, error) {
	return uc.repo.GetMetrics(ctx)
}
