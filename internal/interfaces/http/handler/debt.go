package handler

import (
	"github.com/gin-gonic/gin"
	debtapp "github.com/printworks/backend/internal/application/debt"
)

// DebtHandler handles debt aging API endpoints
type DebtHandler struct {
	BaseHandler
	debtService *debtapp.DebtService
}

// NewDebtHandler creates a new DebtHandler
func NewDebtHandler(debtService *debtapp.DebtService) *DebtHandler {
	return &DebtHandler{debtService: debtService}
}

// RegisterRoutes registers all debt routes
func (h *DebtHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/debt/positions", h.ListDebtPositions)
}

// ListDebtPositions returns the per-counterparty aging rollup for one page of
// outstanding records. Totals reflect the requested page window.
func (h *DebtHandler) ListDebtPositions(c *gin.Context) {
	var filter debtapp.PositionListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindingError(c, err)
		return
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	positions, total, err := h.debtService.ListDebtPositions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, positions, total, filter.Page, filter.PageSize)
}
