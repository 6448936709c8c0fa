package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/danwidi/erp-ledger-service/internal/apperrors"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/purchase"
	"github.com/danwidi/erp-ledger-service/internal/purchase/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const orderNumberPrefix = "PO"

type purchaseUseCase struct {
	repo   purchase.Repository
	logger logger.ZapLogger
}

func NewPurchaseUseCase(repo purchase.Repository, logger logger.ZapLogger) purchase.UseCase {
	return &purchaseUseCase{
		repo:   repo,
		logger: logger,
	}
}

func (uc *purchaseUseCase) Create(ctx context.Context, input *dto.CreateOrderInput) (*model.PurchaseOrder, error) {
	if input.SupplierID == "" {
		return nil, apperrors.Validation("supplier_id is required")
	}
	if len(input.Items) == 0 {
		return nil, apperrors.Validation("at least one line item is required")
	}
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, apperrors.Validation("item %d: quantity must be positive", i)
		}
		if item.UnitPrice < 0 {
			return nil, apperrors.Validation("item %d: unit price cannot be negative", i)
		}
	}

	status := model.POStatus(input.Status)
	if input.Status == "" {
		status = model.POStatusDraft
	}
	if !status.Valid() {
		return nil, apperrors.Validation("invalid status: %s", input.Status)
	}

	orderNumber := input.OrderNumber
	if orderNumber == "" {
		generated, err := uc.GenerateOrderNumber(ctx)
		if err != nil {
			return nil, err
		}
		orderNumber = generated
	} else {
		existing, err := uc.repo.FindByOrderNumber(ctx, orderNumber)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperrors.Conflict("purchase order with number %s already exists", orderNumber)
		}
	}

	now := time.Now()
	orderDate := now
	if input.OrderDate != nil {
		orderDate = *input.OrderDate
	}

	po := &model.PurchaseOrder{
		ID:           uuid.New().String(),
		OrderNumber:  orderNumber,
		SupplierID:   input.SupplierID,
		SupplierName: input.SupplierName,
		Status:       status,
		OrderDate:    orderDate,
		ExpectedDate: input.ExpectedDate,
		TaxRate:      input.TaxRate,
		DiscountRate: input.DiscountRate,
		ShippingCost: input.ShippingCost,
		PaymentTerms: input.PaymentTerms,
		Notes:        input.Notes,
		CreatedBy:    input.CreatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, item := range input.Items {
		po.Items = append(po.Items, model.PurchaseOrderItem{
			ID:              uuid.New().String(),
			PurchaseOrderID: po.ID,
			ItemID:          item.ItemID,
			SKU:             item.SKU,
			Name:            item.Name,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			TotalPrice:      item.Quantity * item.UnitPrice,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	po.RecalculateTotals()

	// Every order starts its audit trail with a creation row, even when the
	// initial status is DRAFT itself.
	change := &model.PurchaseOrderStatusChange{
		ID:              uuid.New().String(),
		PurchaseOrderID: po.ID,
		PreviousStatus:  model.POStatusDraft,
		NewStatus:       status,
		ChangedBy:       input.CreatedBy,
		Reason:          "order created",
		CreatedAt:       now,
	}

	if err := uc.repo.CreateWithItems(ctx, po, change); err != nil {
		uc.logger.Error("Failed to create purchase order", zap.Error(err))
		return nil, err
	}

	uc.logger.Info("Purchase order created",
		zap.String("id", po.ID),
		zap.String("order_number", po.OrderNumber))
	return po, nil
}

func (uc *purchaseUseCase) Update(ctx context.Context, id string, input *dto.UpdateOrderInput) (*model.PurchaseOrder, error) {
	po, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, apperrors.NotFound("purchase order", id)
	}

	if input.ExpectedDate != nil {
		po.ExpectedDate = input.ExpectedDate
	}
	if input.TaxRate != nil {
		po.TaxRate = *input.TaxRate
	}
	if input.DiscountRate != nil {
		po.DiscountRate = *input.DiscountRate
	}
	if input.ShippingCost != nil {
		po.ShippingCost = *input.ShippingCost
	}
	if input.PaymentTerms != nil {
		po.PaymentTerms = *input.PaymentTerms
	}
	if input.Notes != nil {
		po.Notes = *input.Notes
	}

	now := time.Now()
	replaceItems := input.Items != nil
	if replaceItems {
		po.Items = nil
		for _, item := range input.Items {
			po.Items = append(po.Items, model.PurchaseOrderItem{
				ID:              uuid.New().String(),
				PurchaseOrderID: po.ID,
				ItemID:          item.ItemID,
				SKU:             item.SKU,
				Name:            item.Name,
				Quantity:        item.Quantity,
				UnitPrice:       item.UnitPrice,
				TotalPrice:      item.Quantity * item.UnitPrice,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
		}
	}
	po.RecalculateTotals()

	var change *model.PurchaseOrderStatusChange
	if input.Status != nil && model.POStatus(*input.Status) != po.Status {
		newStatus := model.POStatus(*input.Status)
		if !newStatus.Valid() {
			return nil, apperrors.Validation("invalid status: %s", *input.Status)
		}
		if !input.Force && !po.Status.CanTransitionTo(newStatus) {
			return nil, apperrors.InvalidOperation("cannot transition purchase order from %s to %s", po.Status, newStatus)
		}
		change = &model.PurchaseOrderStatusChange{
			ID:              uuid.New().String(),
			PurchaseOrderID: po.ID,
			PreviousStatus:  po.Status,
			NewStatus:       newStatus,
			ChangedBy:       input.ChangedBy,
			Reason:          input.StatusReason,
			CreatedAt:       now,
		}
		po.Status = newStatus
		if newStatus == model.POStatusReceived && po.ReceivedDate == nil {
			po.ReceivedDate = &now
		}
	}
	po.UpdatedAt = now

	if err := uc.repo.UpdateWithItems(ctx, po, replaceItems, change); err != nil {
		uc.logger.Error("Failed to update purchase order", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return po, nil
}

func (uc *purchaseUseCase) UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.PurchaseOrder, error) {
	po, err := uc.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, apperrors.NotFound("purchase order", input.OrderID)
	}

	newStatus := model.POStatus(input.NewStatus)
	if !newStatus.Valid() {
		return nil, apperrors.Validation("invalid status: %s", input.NewStatus)
	}
	if newStatus == po.Status {
		return po, nil
	}
	if !input.Force && !po.Status.CanTransitionTo(newStatus) {
		return nil, apperrors.InvalidOperation("cannot transition purchase order from %s to %s", po.Status, newStatus)
	}

	now := time.Now()
	change := &model.PurchaseOrderStatusChange{
		ID:              uuid.New().String(),
		PurchaseOrderID: po.ID,
		PreviousStatus:  po.Status,
		NewStatus:       newStatus,
		ChangedBy:       input.ChangedBy,
		Reason:          input.Reason,
		CreatedAt:       now,
	}

	po.Status = newStatus
	po.UpdatedAt = now
	if newStatus == model.POStatusReceived && po.ReceivedDate == nil {
		po.ReceivedDate = &now
	}

	if err := uc.repo.Update(ctx, po, change); err != nil {
		uc.logger.Error("Failed to update purchase order status",
			zap.String("id", po.ID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("Purchase order status changed",
		zap.String("id", po.ID),
		zap.String("from", string(change.PreviousStatus)),
		zap.String("to", string(change.NewStatus)))
	return po, nil
}

func (uc *purchaseUseCase) MarkItemsReceived(ctx context.Context, input *dto.ReceiveItemsInput) (*model.PurchaseOrder, error) {
	po, err := uc.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, apperrors.NotFound("purchase order", input.OrderID)
	}
	if po.Status == model.POStatusCancelled {
		return nil, apperrors.InvalidOperation("cannot receive items on a cancelled order")
	}
	if len(input.Receipts) == 0 {
		return nil, apperrors.Validation("at least one receipt is required")
	}

	byLine := make(map[string]*model.PurchaseOrderItem, len(po.Items))
	for i := range po.Items {
		byLine[po.Items[i].ID] = &po.Items[i]
	}

	now := time.Now()
	for _, receipt := range input.Receipts {
		line, ok := byLine[receipt.LineItemID]
		if !ok {
			return nil, apperrors.NotFound("purchase order item", receipt.LineItemID)
		}
		qty := receipt.ReceivedQuantity
		if qty < 0 {
			qty = 0
		}
		if qty > line.Quantity {
			qty = line.Quantity
		}
		line.ReceivedQuantity = qty
		line.UpdatedAt = now
	}

	var change *model.PurchaseOrderStatusChange
	newStatus := po.DeriveReceivingStatus()
	if newStatus != po.Status {
		reason := input.Reason
		if reason == "" {
			reason = "items received"
		}
		change = &model.PurchaseOrderStatusChange{
			ID:              uuid.New().String(),
			PurchaseOrderID: po.ID,
			PreviousStatus:  po.Status,
			NewStatus:       newStatus,
			ChangedBy:       input.ChangedBy,
			Reason:          reason,
			CreatedAt:       now,
		}
		po.Status = newStatus
		if newStatus == model.POStatusReceived && po.ReceivedDate == nil {
			po.ReceivedDate = &now
		}
	}
	po.UpdatedAt = now

	if err := uc.repo.UpdateWithItems(ctx, po, true, change); err != nil {
		uc.logger.Error("Failed to record item receipts", zap.String("id", po.ID), zap.Error(err))
		return nil, err
	}
	return po, nil
}

func (uc *purchaseUseCase) Delete(ctx context.Context, id string) error {
	po, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if po == nil {
		return apperrors.NotFound("purchase order", id)
	}

	if err := uc.repo.DeleteCascade(ctx, id); err != nil {
		uc.logger.Error("Failed to delete purchase order", zap.String("id", id), zap.Error(err))
		return err
	}
	uc.logger.Info("Purchase order deleted", zap.String("id", id))
	return nil
}

func (uc *purchaseUseCase) GetByID(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	po, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, apperrors.NotFound("purchase order", id)
	}
	return po, nil
}

func (uc *purchaseUseCase) GetAll(ctx context.Context, filters *dto.OrderFilters) ([]model.PurchaseOrder, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *purchaseUseCase) CountByStatus(ctx context.Context) (map[model.POStatus]int, error) {
	return uc.repo.CountByStatus(ctx)
}

func (uc *purchaseUseCase) GetRecent(ctx context.Context, limit int) ([]model.PurchaseOrder, error) {
	if limit <= 0 {
		limit = 5
	}
	return uc.repo.FindRecent(ctx, limit)
}

func (uc *purchaseUseCase) GetStatusHistory(ctx context.Context, orderID string) ([]model.PurchaseOrderStatusChange, error) {
	po, err := uc.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, apperrors.NotFound("purchase order", orderID)
	}
	return uc.repo.ListStatusChanges(ctx, orderID)
}

// GenerateOrderNumber issues PO-{YY}-{MM}-{seq}, the sequence scoped to the
// calendar month via the order_sequences table.
func (uc *purchaseUseCase) GenerateOrderNumber(ctx context.Context) (string, error) {
	now := time.Now()
	seq, err := uc.repo.NextSequence(ctx, orderNumberPrefix, now.Year(), int(now.Month()))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%02d-%02d-%03d", orderNumberPrefix, now.Year()%100, int(now.Month()), seq), nil
}
