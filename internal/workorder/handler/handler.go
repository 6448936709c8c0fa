package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danwidi/erp-ledger-service/internal/apperrors"
	"github.com/danwidi/erp-ledger-service/internal/auth"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/danwidi/erp-ledger-service/internal/workorder"
	"github.com/danwidi/erp-ledger-service/internal/workorder/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WorkOrderHandler struct {
	uc     workorder.UseCase
	logger logger.ZapLogger
}

func NewWorkOrderHandler(uc workorder.UseCase, log logger.ZapLogger) *WorkOrderHandler {
	return &WorkOrderHandler{uc: uc, logger: log}
}

func (h *WorkOrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/work-orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/recent", h.GetRecent)
	orders.GET("/counts", h.CountByStatus)
	orders.GET("/next-number", h.NextOrderNumber)
	orders.GET("/:id", h.GetByID)
	orders.PUT("/:id", h.Update)
	orders.DELETE("/:id", h.Delete)
	orders.POST("/:id/status", h.UpdateStatus)
	orders.POST("/:id/progress", h.UpdateProgress)
	orders.GET("/:id/history", h.GetStatusHistory)
}

type assemblyRequest struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	UnitCost float64 `json:"unit_cost"`
}

type specificationRequest struct {
	Name  string `json:"name" binding:"required"`
	Value string `json:"value"`
}

type createWorkOrderRequest struct {
	OrderNumber    string                 `json:"order_number"`
	CustomerID     string                 `json:"customer_id" binding:"required"`
	CustomerName   string                 `json:"customer_name"`
	ProductName    string                 `json:"product_name" binding:"required"`
	Status         string                 `json:"status"`
	Priority       int                    `json:"priority"`
	StartDate      *time.Time             `json:"start_date"`
	DueDate        *time.Time             `json:"due_date"`
	TotalQuantity  float64                `json:"total_quantity" binding:"required,gt=0"`
	EstimatedCost  float64                `json:"estimated_cost"`
	Notes          string                 `json:"notes"`
	Assemblies     []assemblyRequest      `json:"assemblies"`
	Specifications []specificationRequest `json:"specifications"`
}

func (h *WorkOrderHandler) Create(c *gin.Context) {
	var req createWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &dto.CreateWorkOrderInput{
		OrderNumber:   req.OrderNumber,
		CustomerID:    req.CustomerID,
		CustomerName:  req.CustomerName,
		ProductName:   req.ProductName,
		Status:        req.Status,
		Priority:      req.Priority,
		StartDate:     req.StartDate,
		DueDate:       req.DueDate,
		TotalQuantity: req.TotalQuantity,
		EstimatedCost: req.EstimatedCost,
		Notes:         req.Notes,
		CreatedBy:     auth.GetUserID(c),
	}
	for _, asm := range req.Assemblies {
		input.Assemblies = append(input.Assemblies, dto.AssemblyInput{
			Name:     asm.Name,
			Quantity: asm.Quantity,
			UnitCost: asm.UnitCost,
		})
	}
	for _, spec := range req.Specifications {
		input.Specifications = append(input.Specifications, dto.SpecificationInput{
			Name:  spec.Name,
			Value: spec.Value,
		})
	}

	wo, err := h.uc.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, wo)
}

type updateWorkOrderRequest struct {
	ProductName    *string                `json:"product_name"`
	Priority       *int                   `json:"priority"`
	StartDate      *time.Time             `json:"start_date"`
	DueDate        *time.Time             `json:"due_date"`
	TotalQuantity  *float64               `json:"total_quantity"`
	EstimatedCost  *float64               `json:"estimated_cost"`
	Notes          *string                `json:"notes"`
	Status         *string                `json:"status"`
	StatusReason   string                 `json:"status_reason"`
	Force          bool                   `json:"force"`
	Assemblies     []assemblyRequest      `json:"assemblies"`
	Specifications []specificationRequest `json:"specifications"`
}

func (h *WorkOrderHandler) Update(c *gin.Context) {
	var req updateWorkOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &dto.UpdateWorkOrderInput{
		ProductName:   req.ProductName,
		Priority:      req.Priority,
		StartDate:     req.StartDate,
		DueDate:       req.DueDate,
		TotalQuantity: req.TotalQuantity,
		EstimatedCost: req.EstimatedCost,
		Notes:         req.Notes,
		Status:        req.Status,
		StatusReason:  req.StatusReason,
		Force:         req.Force,
		ChangedBy:     auth.GetUserID(c),
	}
	if req.Assemblies != nil {
		input.Assemblies = []dto.AssemblyInput{}
		for _, asm := range req.Assemblies {
			input.Assemblies = append(input.Assemblies, dto.AssemblyInput{
				Name:     asm.Name,
				Quantity: asm.Quantity,
				UnitCost: asm.UnitCost,
			})
		}
	}
	if req.Specifications != nil {
		input.Specifications = []dto.SpecificationInput{}
		for _, spec := range req.Specifications {
			input.Specifications = append(input.Specifications, dto.SpecificationInput{
				Name:  spec.Name,
				Value: spec.Value,
			})
		}
	}

	wo, err := h.uc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
	Force  bool   `json:"force"`
}

func (h *WorkOrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wo, err := h.uc.UpdateStatus(c.Request.Context(), &dto.UpdateStatusInput{
		WorkOrderID: c.Param("id"),
		NewStatus:   req.Status,
		ChangedBy:   auth.GetUserID(c),
		Reason:      req.Reason,
		Force:       req.Force,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

type updateProgressRequest struct {
	CompletedQuantity *float64 `json:"completed_quantity"`
	Assemblies        []struct {
		AssemblyID        string  `json:"assembly_id" binding:"required"`
		CompletedQuantity float64 `json:"completed_quantity"`
	} `json:"assemblies"`
	Reason string `json:"reason"`
}

func (h *WorkOrderHandler) UpdateProgress(c *gin.Context) {
	var req updateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &dto.UpdateProgressInput{
		WorkOrderID:       c.Param("id"),
		CompletedQuantity: req.CompletedQuantity,
		ChangedBy:         auth.GetUserID(c),
		Reason:            req.Reason,
	}
	for _, asm := range req.Assemblies {
		input.Assemblies = append(input.Assemblies, dto.AssemblyProgress{
			AssemblyID:        asm.AssemblyID,
			CompletedQuantity: asm.CompletedQuantity,
		})
	}

	wo, err := h.uc.UpdateProgress(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

func (h *WorkOrderHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *WorkOrderHandler) GetByID(c *gin.Context) {
	wo, err := h.uc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, wo)
}

func (h *WorkOrderHandler) List(c *gin.Context) {
	var priority *int
	if v := c.Query("priority"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			priority = &i
		}
	}

	filters := &dto.WorkOrderFilters{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		Priority:   priority,
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "page_size", 50),
	}
	if v := c.Query("start_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.StartDate = &t
		}
	}
	if v := c.Query("end_date"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filters.EndDate = &t
		}
	}

	orders, total, err := h.uc.GetAll(c.Request.Context(), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders, "total": total})
}

func (h *WorkOrderHandler) GetRecent(c *gin.Context) {
	orders, err := h.uc.GetRecent(c.Request.Context(), queryInt(c, "limit", 5))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *WorkOrderHandler) CountByStatus(c *gin.Context) {
	counts, err := h.uc.CountByStatus(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *WorkOrderHandler) NextOrderNumber(c *gin.Context) {
	number, err := h.uc.GenerateOrderNumber(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_number": number})
}

func (h *WorkOrderHandler) GetStatusHistory(c *gin.Context) {
	history, err := h.uc.GetStatusHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *WorkOrderHandler) respondError(c *gin.Context, err error) {
	var (
		validationErr *apperrors.ValidationError
		notFoundErr   *apperrors.NotFoundError
		invalidOpErr  *apperrors.InvalidOperationError
		conflictErr   *apperrors.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &invalidOpErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("work order request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
