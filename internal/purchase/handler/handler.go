package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danwidi/erp-ledger-service/internal/apperrors"
	"github.com/danwidi/erp-ledger-service/internal/auth"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/danwidi/erp-ledger-service/internal/purchase"
	"github.com/danwidi/erp-ledger-service/internal/purchase/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PurchaseHandler struct {
	uc     purchase.UseCase
	logger logger.ZapLogger
}

func NewPurchaseHandler(uc purchase.UseCase, log logger.ZapLogger) *PurchaseHandler {
	return &PurchaseHandler{uc: uc, logger: log}
}

func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/purchase-orders")
	orders.POST("", h.Create)
	orders.GET("", h.List)
	orders.GET("/recent", h.GetRecent)
	orders.GET("/counts", h.CountByStatus)
	orders.GET("/next-number", h.NextOrderNumber)
	orders.GET("/:id", h.GetByID)
	orders.PUT("/:id", h.Update)
	orders.DELETE("/:id", h.Delete)
	orders.POST("/:id/status", h.UpdateStatus)
	orders.POST("/:id/receive", h.MarkItemsReceived)
	orders.GET("/:id/history", h.GetStatusHistory)
}

type lineItemRequest struct {
	ItemID    *string `json:"item_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name" binding:"required"`
	Quantity  float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice float64 `json:"unit_price"`
}

type createOrderRequest struct {
	OrderNumber  string            `json:"order_number"`
	SupplierID   string            `json:"supplier_id" binding:"required"`
	SupplierName string            `json:"supplier_name"`
	Status       string            `json:"status"`
	OrderDate    *time.Time        `json:"order_date"`
	ExpectedDate *time.Time        `json:"expected_date"`
	TaxRate      float64           `json:"tax_rate"`
	DiscountRate float64           `json:"discount_rate"`
	ShippingCost float64           `json:"shipping_cost"`
	PaymentTerms string            `json:"payment_terms"`
	Notes        string            `json:"notes"`
	Items        []lineItemRequest `json:"items" binding:"required,min=1"`
}

func (h *PurchaseHandler) Create(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &dto.CreateOrderInput{
		OrderNumber:  req.OrderNumber,
		SupplierID:   req.SupplierID,
		SupplierName: req.SupplierName,
		Status:       req.Status,
		OrderDate:    req.OrderDate,
		ExpectedDate: req.ExpectedDate,
		TaxRate:      req.TaxRate,
		DiscountRate: req.DiscountRate,
		ShippingCost: req.ShippingCost,
		PaymentTerms: req.PaymentTerms,
		Notes:        req.Notes,
		CreatedBy:    auth.GetUserID(c),
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, dto.LineItemInput{
			ItemID:    item.ItemID,
			SKU:       item.SKU,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	po, err := h.uc.Create(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, po)
}

type updateOrderRequest struct {
	ExpectedDate *time.Time        `json:"expected_date"`
	TaxRate      *float64          `json:"tax_rate"`
	DiscountRate *float64          `json:"discount_rate"`
	ShippingCost *float64          `json:"shipping_cost"`
	PaymentTerms *string           `json:"payment_terms"`
	Notes        *string           `json:"notes"`
	Status       *string           `json:"status"`
	StatusReason string            `json:"status_reason"`
	Force        bool              `json:"force"`
	Items        []lineItemRequest `json:"items"`
}

func (h *PurchaseHandler) Update(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &dto.UpdateOrderInput{
		ExpectedDate: req.ExpectedDate,
		TaxRate:      req.TaxRate,
		DiscountRate: req.DiscountRate,
		ShippingCost: req.ShippingCost,
		PaymentTerms: req.PaymentTerms,
		Notes:        req.Notes,
		Status:       req.Status,
		StatusReason: req.StatusReason,
		Force:        req.Force,
		ChangedBy:    auth.GetUserID(c),
	}
	if req.Items != nil {
		input.Items = []dto.LineItemInput{}
		for _, item := range req.Items {
			input.Items = append(input.Items, dto.LineItemInput{
				ItemID:    item.ItemID,
				SKU:       item.SKU,
				Name:      item.Name,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			})
		}
	}

	po, err := h.uc.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
	Force  bool   `json:"force"`
}

func (h *PurchaseHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	po, err := h.uc.UpdateStatus(c.Request.Context(), &dto.UpdateStatusInput{
		OrderID:   c.Param("id"),
		NewStatus: req.Status,
		ChangedBy: auth.GetUserID(c),
		Reason:    req.Reason,
		Force:     req.Force,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

type receiveItemsRequest struct {
	Receipts []struct {
		LineItemID       string  `json:"line_item_id" binding:"required"`
		ReceivedQuantity float64 `json:"received_quantity"`
	} `json:"receipts" binding:"required,min=1"`
	Reason string `json:"reason"`
}

func (h *PurchaseHandler) MarkItemsReceived(c *gin.Context) {
	var req receiveItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := &dto.ReceiveItemsInput{
		OrderID:   c.Param("id"),
		ChangedBy: auth.GetUserID(c),
		Reason:    req.Reason,
	}
	for _, receipt := range req.Receipts {
		input.Receipts = append(input.Receipts, dto.LineReceipt{
			LineItemID:       receipt.LineItemID,
			ReceivedQuantity: receipt.ReceivedQuantity,
		})
	}

	po, err := h.uc.MarkItemsReceived(c.Request.Context(), input)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

func (h *PurchaseHandler) Delete(c *gin.Context) {
	if err := h.uc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *PurchaseHandler) GetByID(c *gin.Context) {
	po, err := h.uc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, po)
}

func (h *PurchaseHandler) List(c *gin.Context) {
	filters := &dto.OrderFilters{
		Status:     c.Query("status"),
		SupplierID: c.Query("supplier_id"),
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

func (h *PurchaseHandler) GetRecent(c *gin.Context) {
	orders, err := h.uc.GetRecent(c.Request.Context(), queryInt(c, "limit", 5))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *PurchaseHandler) CountByStatus(c *gin.Context) {
	counts, err := h.uc.CountByStatus(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *PurchaseHandler) NextOrderNumber(c *gin.Context) {
	number, err := h.uc.GenerateOrderNumber(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order_number": number})
}

func (h *PurchaseHandler) GetStatusHistory(c *gin.Context) {
	history, err := h.uc.GetStatusHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": history})
}

func (h *PurchaseHandler) respondError(c *gin.Context, err error) {
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
		h.logger.Error("purchase order request failed", zap.Error(err))
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
