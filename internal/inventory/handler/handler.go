package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danwidi/erp-ledger-service/internal/apperrors"
	"github.com/danwidi/erp-ledger-service/internal/auth"
	"github.com/danwidi/erp-ledger-service/internal/inventory"
	"github.com/danwidi/erp-ledger-service/internal/inventory/dto"
	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{uc: uc, logger: log}
}

func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	items := rg.Group("/inventory")
	items.POST("/items", h.CreateItem)
	items.GET("/items", h.ListItems)
	items.GET("/items/search", h.SearchItems)
	items.GET("/items/sku/:sku", h.GetItemBySKU)
	items.GET("/items/:id", h.GetItem)
	items.PUT("/items/:id", h.UpdateItem)
	items.DELETE("/items/:id", h.DeleteItem)
	items.POST("/items/:id/adjust", h.AdjustQuantity)
	items.GET("/transactions", h.ListTransactions)
	items.POST("/reservations", h.CreateReservation)
	items.GET("/reservations", h.ListReservations)
	items.POST("/reservations/:id/release", h.ReleaseReservation)
	items.POST("/reservations/release-expired", h.ReleaseExpiredReservations)
	items.GET("/alerts", h.ListAlerts)
	items.POST("/alerts/:id/resolve", h.ResolveAlert)
	items.GET("/metrics", h.GetMetrics)
}

type createItemRequest struct {
	SKU             string  `json:"sku" binding:"required"`
	Name            string  `json:"name" binding:"required"`
	Description     string  `json:"description"`
	Category        string  `json:"category"`
	ItemType        string  `json:"item_type"`
	Unit            string  `json:"unit"`
	SupplierID      *string `json:"supplier_id"`
	SupplierName    string  `json:"supplier_name"`
	CurrentQuantity float64 `json:"current_quantity"`
	MinimumQuantity float64 `json:"minimum_quantity"`
	MaximumQuantity float64 `json:"maximum_quantity"`
	ReorderQuantity float64 `json:"reorder_quantity"`
	UnitPrice       float64 `json:"unit_price"`
}

func (h *InventoryHandler) CreateItem(c *gin.Context) {
	var req createItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.uc.CreateItem(c.Request.Context(), &dto.CreateItemInput{
		SKU:             req.SKU,
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		ItemType:        req.ItemType,
		Unit:            req.Unit,
		SupplierID:      req.SupplierID,
		SupplierName:    req.SupplierName,
		CurrentQuantity: req.CurrentQuantity,
		MinimumQuantity: req.MinimumQuantity,
		MaximumQuantity: req.MaximumQuantity,
		ReorderQuantity: req.ReorderQuantity,
		UnitPrice:       req.UnitPrice,
		PerformedBy:     auth.GetUserID(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, item)
}

type updateItemRequest struct {
	Name            *string  `json:"name"`
	Description     *string  `json:"description"`
	Category        *string  `json:"category"`
	ItemType        *string  `json:"item_type"`
	Unit            *string  `json:"unit"`
	Status          *string  `json:"status"`
	SupplierID      *string  `json:"supplier_id"`
	SupplierName    *string  `json:"supplier_name"`
	CurrentQuantity *float64 `json:"current_quantity"`
	MinimumQuantity *float64 `json:"minimum_quantity"`
	MaximumQuantity *float64 `json:"maximum_quantity"`
	ReorderQuantity *float64 `json:"reorder_quantity"`
	UnitPrice       *float64 `json:"unit_price"`
	IsActive        *bool    `json:"is_active"`
}

func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.uc.UpdateItem(c.Request.Context(), c.Param("id"), &dto.UpdateItemInput{
		Name:            req.Name,
		Description:     req.Description,
		Category:        req.Category,
		ItemType:        req.ItemType,
		Unit:            req.Unit,
		Status:          req.Status,
		SupplierID:      req.SupplierID,
		SupplierName:    req.SupplierName,
		CurrentQuantity: req.CurrentQuantity,
		MinimumQuantity: req.MinimumQuantity,
		MaximumQuantity: req.MaximumQuantity,
		ReorderQuantity: req.ReorderQuantity,
		UnitPrice:       req.UnitPrice,
		IsActive:        req.IsActive,
		PerformedBy:     auth.GetUserID(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) DeleteItem(c *gin.Context) {
	if err := h.uc.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.uc.GetItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) GetItemBySKU(c *gin.Context) {
	item, err := h.uc.GetItemBySKU(c.Request.Context(), c.Param("sku"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) ListItems(c *gin.Context) {
	var flagged *bool
	if v := c.Query("flagged"); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			flagged = &b
		}
	}

	filters := &dto.ItemFilters{
		Status:      c.Query("status"),
		ItemType:    c.Query("item_type"),
		Category:    c.Query("category"),
		SupplierID:  c.Query("supplier_id"),
		Flagged:     flagged,
		LowStock:    c.Query("low_stock") == "true",
		OutOfStock:  c.Query("out_of_stock") == "true",
		ExcessStock: c.Query("excess_stock") == "true",
		SearchQuery: c.Query("q"),
		ActiveOnly:  c.Query("active_only") == "true",
		Page:        queryInt(c, "page", 1),
		PageSize:    queryInt(c, "page_size", 50),
	}

	items, total, err := h.uc.ListItems(c.Request.Context(), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *InventoryHandler) SearchItems(c *gin.Context) {
	items, total, err := h.uc.SearchItems(c.Request.Context(), c.Query("q"),
		queryInt(c, "page", 1), queryInt(c, "page_size", 50))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

type adjustQuantityRequest struct {
	Delta         float64 `json:"delta" binding:"required"`
	Reason        string  `json:"reason" binding:"required"`
	Notes         string  `json:"notes"`
	ReferenceType string  `json:"reference_type"`
	ReferenceID   string  `json:"reference_id"`
}

func (h *InventoryHandler) AdjustQuantity(c *gin.Context) {
	var req adjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.uc.AdjustQuantity(c.Request.Context(), &dto.AdjustQuantityInput{
		ItemID:        c.Param("id"),
		Delta:         req.Delta,
		Reason:        req.Reason,
		Notes:         req.Notes,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		PerformedBy:   auth.GetUserID(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) ListTransactions(c *gin.Context) {
	filters := &dto.TransactionFilters{
		ItemID:          c.Query("item_id"),
		TransactionType: c.Query("type"),
		Page:            queryInt(c, "page", 1),
		PageSize:        queryInt(c, "page_size", 50),
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

	txns, total, err := h.uc.ListTransactions(c.Request.Context(), filters)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": txns, "total": total})
}

type createReservationRequest struct {
	ItemID        string     `json:"item_id" binding:"required"`
	Quantity      float64    `json:"quantity" binding:"required,gt=0"`
	ReferenceType string     `json:"reference_type" binding:"required"`
	ReferenceID   string     `json:"reference_id" binding:"required"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

func (h *InventoryHandler) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.uc.CreateReservation(c.Request.Context(), &dto.CreateReservationInput{
		ItemID:        req.ItemID,
		Quantity:      req.Quantity,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		ExpiresAt:     req.ExpiresAt,
		CreatedBy:     auth.GetUserID(c),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (h *InventoryHandler) ListReservations(c *gin.Context) {
	reservations, total, err := h.uc.ListReservations(c.Request.Context(), &dto.ReservationFilters{
		ItemID:        c.Query("item_id"),
		ReferenceType: c.Query("reference_type"),
		ReferenceID:   c.Query("reference_id"),
		ActiveOnly:    c.Query("active_only") == "true",
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "page_size", 50),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations, "total": total})
}

func (h *InventoryHandler) ReleaseReservation(c *gin.Context) {
	res, err := h.uc.ReleaseReservation(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *InventoryHandler) ReleaseExpiredReservations(c *gin.Context) {
	released, err := h.uc.ReleaseExpiredReservations(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": released})
}

func (h *InventoryHandler) ListAlerts(c *gin.Context) {
	alerts, total, err := h.uc.ListAlerts(c.Request.Context(), &dto.AlertFilters{
		ItemID:         c.Query("item_id"),
		Level:          c.Query("level"),
		UnresolvedOnly: c.Query("unresolved_only") == "true",
		Page:           queryInt(c, "page", 1),
		PageSize:       queryInt(c, "page_size", 50),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "total": total})
}

func (h *InventoryHandler) ResolveAlert(c *gin.Context) {
	err := h.uc.ResolveAlert(c.Request.Context(), c.Param("id"), auth.GetUserID(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "resolved"})
}

func (h *InventoryHandler) GetMetrics(c *gin.Context) {
	metrics, err := h.uc.GetMetrics(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

func (h *InventoryHandler) respondError(c *gin.Context, err error) {
	var (
		validationErr *apperrors.ValidationError
		notFoundErr   *apperrors.NotFoundError
		invalidOpErr  *apperrors.InvalidOperationError
		stockErr      *apperrors.InsufficientStockError
		conflictErr   *apperrors.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &invalidOpErr), errors.As(err, &stockErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("inventory request failed", zap.Error(err))
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
