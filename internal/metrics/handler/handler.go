package handler

import (
	"net/http"

	"github.com/danwidi/erp-ledger-service/internal/logger"
	"github.com/danwidi/erp-ledger-service/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MetricsHandler struct {
	uc     metrics.UseCase
	logger logger.ZapLogger
}

func NewMetricsHandler(uc metrics.UseCase, log logger.ZapLogger) *MetricsHandler {
	return &MetricsHandler{uc: uc, logger: log}
}

func (h *MetricsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.GetDashboard)
}

func (h *MetricsHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.uc.GetDashboard(c.Request.Context())
	if err != nil {
		h.logger.Error("dashboard request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(http.StatusOK, dashboard)
}
