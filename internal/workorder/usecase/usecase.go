package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/danwidi/erp-ledger-service/internal/apperrors"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/danwidi/erp-ledger-service/internal/model"
	"github.com/danwidi/erp-ledger-service/internal/workorder"
	"github.com/danwidi/erp-ledger-service/internal/workorder/dto"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const orderNumberPrefix = "WO"

type workOrderUseCase struct {
	repo   workorder.Repository
	logger logger.ZapLogger
}

func NewWorkOrderUseCase(repo workorder.Repository, logger logger.ZapLogger) workorder.UseCase {
	return &workOrderUseCase{
		repo:   repo,
		logger: logger,
	}
}

func (uc *workOrderUseCase) Create(ctx context.Context, input *dto.CreateWorkOrderInput) (*model.WorkOrder, error) {
	if input.CustomerID == "" {
		return nil, apperrors.Validation("customer_id is required")
	}
	if input.ProductName == "" {
		return nil, apperrors.Validation("product_name is required")
	}
	if input.TotalQuantity <= 0 {
		return nil, apperrors.Validation("total_quantity must be positive")
	}
	for i, asm := range input.Assemblies {
		if asm.Quantity <= 0 {
			return nil, apperrors.Validation("assembly %d: quantity must be positive", i)
		}
	}

	status := model.WOStatus(input.Status)
	if input.Status == "" {
		status = model.WOStatusDraft
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
			return nil, apperrors.Conflict("work order with number %s already exists", orderNumber)
		}
	}

	now := time.Now()
	wo := &model.WorkOrder{
		ID:            uuid.New().String(),
		OrderNumber:   orderNumber,
		CustomerID:    input.CustomerID,
		CustomerName:  input.CustomerName,
		ProductName:   input.ProductName,
		Status:        status,
		Priority:      input.Priority,
		StartDate:     input.StartDate,
		DueDate:       input.DueDate,
		TotalQuantity: input.TotalQuantity,
		EstimatedCost: input.EstimatedCost,
		Notes:         input.Notes,
		CreatedBy:     input.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, asm := range input.Assemblies {
		wo.Assemblies = append(wo.Assemblies, model.WorkOrderAssembly{
			ID:          uuid.New().String(),
			WorkOrderID: wo.ID,
			Name:        asm.Name,
			Quantity:    asm.Quantity,
			UnitCost:    asm.UnitCost,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	for _, spec := range input.Specifications {
		wo.Specifications = append(wo.Specifications, model.WorkOrderSpecification{
			ID:          uuid.New().String(),
			WorkOrderID: wo.ID,
			Name:        spec.Name,
			Value:       spec.Value,
			CreatedAt:   now,
		})
	}

	// Every order starts its audit trail with a creation row, even when the
	// initial status is DRAFT itself.
	change := &model.WorkOrderStatusChange{
		ID:             uuid.New().String(),
		WorkOrderID:    wo.ID,
		PreviousStatus: model.WOStatusDraft,
		NewStatus:      status,
		ChangedBy:      input.CreatedBy,
		Reason:         "work order created",
		CreatedAt:      now,
	}

	if err := uc.repo.CreateWithChildren(ctx, wo, change); err != nil {
		uc.logger.Error("Failed to create work order", zap.Error(err))
		return nil, err
	}

	uc.logger.Info("Work order created",
		zap.String("id", wo.ID),
		zap.String("order_number", wo.OrderNumber))
	return wo, nil
}

func (uc *workOrderUseCase) Update(ctx context.Context, id string, input *dto.UpdateWorkOrderInput) (*model.WorkOrder, error) {
	wo, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, apperrors.NotFound("work order", id)
	}

	if input.ProductName != nil {
		wo.ProductName = *input.ProductName
	}
	if input.Priority != nil {
		wo.Priority = *input.Priority
	}
	if input.StartDate != nil {
		wo.StartDate = input.StartDate
	}
	if input.DueDate != nil {
		wo.DueDate = input.DueDate
	}
	if input.TotalQuantity != nil {
		if *input.TotalQuantity <= 0 {
			return nil, apperrors.Validation("total_quantity must be positive")
		}
		wo.TotalQuantity = *input.TotalQuantity
	}
	if input.EstimatedCost != nil {
		wo.EstimatedCost = *input.EstimatedCost
	}
	if input.Notes != nil {
		wo.Notes = *input.Notes
	}

	now := time.Now()
	replaceChildren := input.Assemblies != nil || input.Specifications != nil
	if input.Assemblies != nil {
		wo.Assemblies = nil
		for _, asm := range input.Assemblies {
			wo.Assemblies = append(wo.Assemblies, model.WorkOrderAssembly{
				ID:          uuid.New().String(),
				WorkOrderID: wo.ID,
				Name:        asm.Name,
				Quantity:    asm.Quantity,
				UnitCost:    asm.UnitCost,
				CreatedAt:   now,
				UpdatedAt:   now,
			})
		}
	}
	if input.Specifications != nil {
		wo.Specifications = nil
		for _, spec := range input.Specifications {
			wo.Specifications = append(wo.Specifications, model.WorkOrderSpecification{
				ID:          uuid.New().String(),
				WorkOrderID: wo.ID,
				Name:        spec.Name,
				Value:       spec.Value,
				CreatedAt:   now,
			})
		}
	}

	var change *model.WorkOrderStatusChange
	if input.Status != nil && model.WOStatus(*input.Status) != wo.Status {
		newStatus := model.WOStatus(*input.Status)
		if !newStatus.Valid() {
			return nil, apperrors.Validation("invalid status: %s", *input.Status)
		}
		if !input.Force && !wo.Status.CanTransitionTo(newStatus) {
			return nil, apperrors.InvalidOperation("cannot transition work order from %s to %s", wo.Status, newStatus)
		}
		change = &model.WorkOrderStatusChange{
			ID:             uuid.New().String(),
			WorkOrderID:    wo.ID,
			PreviousStatus: wo.Status,
			NewStatus:      newStatus,
			ChangedBy:      input.ChangedBy,
			Reason:         input.StatusReason,
			CreatedAt:      now,
		}
		wo.Status = newStatus
		uc.stampCompletion(wo, now)
	}
	wo.UpdatedAt = now

	if err := uc.repo.UpdateWithChildren(ctx, wo, replaceChildren, change); err != nil {
		uc.logger.Error("Failed to update work order", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return wo, nil
}

func (uc *workOrderUseCase) UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.WorkOrder, error) {
	wo, err := uc.repo.FindByID(ctx, input.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, apperrors.NotFound("work order", input.WorkOrderID)
	}

	newStatus := model.WOStatus(input.NewStatus)
	if !newStatus.Valid() {
		return nil, apperrors.Validation("invalid status: %s", input.NewStatus)
	}
	if newStatus == wo.Status {
		return wo, nil
	}
	if !input.Force && !wo.Status.CanTransitionTo(newStatus) {
		return nil, apperrors.InvalidOperation("cannot transition work order from %s to %s", wo.Status, newStatus)
	}

	now := time.Now()
	change := &model.WorkOrderStatusChange{
		ID:             uuid.New().String(),
		WorkOrderID:    wo.ID,
		PreviousStatus: wo.Status,
		NewStatus:      newStatus,
		ChangedBy:      input.ChangedBy,
		Reason:         input.Reason,
		CreatedAt:      now,
	}

	wo.Status = newStatus
	wo.UpdatedAt = now
	uc.stampCompletion(wo, now)

	if err := uc.repo.Update(ctx, wo, change); err != nil {
		uc.logger.Error("Failed to update work order status",
			zap.String("id", wo.ID), zap.Error(err))
		return nil, err
	}

	uc.logger.Info("Work order status changed",
		zap.String("id", wo.ID),
		zap.String("from", string(change.PreviousStatus)),
		zap.String("to", string(change.NewStatus)))
	return wo, nil
}

// UpdateProgress records produced quantities and lets the derived status
// follow: full completion moves the order to COMPLETED, partial progress to
// IN_PROGRESS, zero back to PENDING. ON_HOLD and terminal states stay put.
func (uc *workOrderUseCase) UpdateProgress(ctx context.Context, input *dto.UpdateProgressInput) (*model.WorkOrder, error) {
	wo, err := uc.repo.FindByID(ctx, input.WorkOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, apperrors.NotFound("work order", input.WorkOrderID)
	}
	if wo.Status == model.WOStatusCancelled {
		return nil, apperrors.InvalidOperation("cannot record progress on a cancelled work order")
	}

	now := time.Now()
	var updatedAssemblies []model.WorkOrderAssembly
	if len(input.Assemblies) > 0 {
		byID := make(map[string]*model.WorkOrderAssembly, len(wo.Assemblies))
		for i := range wo.Assemblies {
			byID[wo.Assemblies[i].ID] = &wo.Assemblies[i]
		}
		for _, progress := range input.Assemblies {
			asm, ok := byID[progress.AssemblyID]
			if !ok {
				return nil, apperrors.NotFound("work order assembly", progress.AssemblyID)
			}
			qty := progress.CompletedQuantity
			if qty < 0 {
				qty = 0
			}
			if qty > asm.Quantity {
				qty = asm.Quantity
			}
			asm.CompletedQuantity = qty
			asm.UpdatedAt = now
			updatedAssemblies = append(updatedAssemblies, *asm)
		}
	}

	if input.CompletedQuantity != nil {
		qty := *input.CompletedQuantity
		if qty < 0 {
			qty = 0
		}
		if qty > wo.TotalQuantity {
			qty = wo.TotalQuantity
		}
		wo.CompletedQuantity = qty
	}

	var change *model.WorkOrderStatusChange
	newStatus := model.SuggestWOStatus(wo.Status, wo.CompletedQuantity, wo.TotalQuantity)
	if newStatus != wo.Status {
		reason := input.Reason
		if reason == "" {
			reason = "progress updated"
		}
		change = &model.WorkOrderStatusChange{
			ID:             uuid.New().String(),
			WorkOrderID:    wo.ID,
			PreviousStatus: wo.Status,
			NewStatus:      newStatus,
			ChangedBy:      input.ChangedBy,
			Reason:         reason,
			CreatedAt:      now,
		}
		wo.Status = newStatus
		uc.stampCompletion(wo, now)
	}
	wo.UpdatedAt = now

	if err := uc.repo.UpdateAssemblies(ctx, wo, updatedAssemblies, change); err != nil {
		uc.logger.Error("Failed to record work order progress",
			zap.String("id", wo.ID), zap.Error(err))
		return nil, err
	}
	return wo, nil
}

func (uc *workOrderUseCase) Delete(ctx context.Context, id string) error {
	wo, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if wo == nil {
		return apperrors.NotFound("work order", id)
	}

	if err := uc.repo.DeleteCascade(ctx, id); err != nil {
		uc.logger.Error("Failed to delete work order", zap.String("id", id), zap.Error(err))
		return err
	}
	uc.logger.Info("Work order deleted", zap.String("id", id))
	return nil
}

func (uc *workOrderUseCase) GetByID(ctx context.Context, id string) (*model.WorkOrder, error) {
	wo, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, apperrors.NotFound("work order", id)
	}
	return wo, nil
}

func (uc *workOrderUseCase) GetAll(ctx context.Context, filters *dto.WorkOrderFilters) ([]model.WorkOrder, int, error) {
	return uc.repo.FindAll(ctx, filters)
}

func (uc *workOrderUseCase) CountByStatus(ctx context.Context) (map[model.WOStatus]int, error) {
	return uc.repo.CountByStatus(ctx)
}

func (uc *workOrderUseCase) GetRecent(ctx context.Context, limit int) ([]model.WorkOrder, error) {
	if limit <= 0 {
		limit = 5
	}
	return uc.repo.FindRecent(ctx, limit)
}

func (uc *workOrderUseCase) GetStatusHistory(ctx context.Context, workOrderID string) ([]model.WorkOrderStatusChange, error) {
	wo, err := uc.repo.FindByID(ctx, workOrderID)
	if err != nil {
		return nil, err
	}
	if wo == nil {
		return nil, apperrors.NotFound("work order", workOrderID)
	}
	return uc.repo.ListStatusChanges(ctx, workOrderID)
}

// GenerateOrderNumber issues WO-{YY}-{MM}-{seq}, the sequence scoped to the
// calendar month via the order_sequences table.
func (uc *workOrderUseCase) GenerateOrderNumber(ctx context.Context) (string, error) {
	now := time.Now()
	seq, err := uc.repo.NextSequence(ctx, orderNumberPrefix, now.Year(), int(now.Month()))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%02d-%02d-%03d", orderNumberPrefix, now.Year()%100, int(now.Month()), seq), nil
}

// stampCompletion sets CompletedDate the first time an order reaches
// COMPLETED and clears it when completion is rolled back.
func (uc *workOrderUseCase) stampCompletion(wo *model.WorkOrder, now time.Time) {
	switch wo.Status {
	case model.WOStatusCompleted, model.WOStatusDelivered:
		if wo.CompletedDate == nil {
			wo.CompletedDate = &now
		}
	case model.WOStatusInProgress, model.WOStatusPending:
		wo.CompletedDate = nil
	}
}
