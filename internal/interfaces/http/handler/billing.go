package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/printworks/backend/internal/application/billing"
)

// BillingHandler handles billable item and invoice API endpoints
type BillingHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(invoiceService *billingapp.InvoiceService) *BillingHandler {
	return &BillingHandler{invoiceService: invoiceService}
}

// RegisterRoutes registers all billing routes
func (h *BillingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	billing := rg.Group("/billing")
	{
		billing.GET("/billable-items", h.ListBillableItems)

		invoices := billing.Group("/invoices")
		{
			invoices.GET("", h.ListInvoices)
			invoices.POST("", h.CreateInvoice)
			invoices.POST("/preview", h.PreviewTotals)
			invoices.GET("/:id", h.GetInvoice)
			invoices.POST("/:id/payments", h.RecordPayment)
			invoices.POST("/:id/cancel", h.CancelInvoice)
		}
	}
}

// ListBillableItems returns delivery lines still open for invoicing,
// optionally filtered by customer
func (h *BillingHandler) ListBillableItems(c *gin.Context) {
	var customerID *uuid.UUID
	if raw := c.Query("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "customer_id must be a valid UUID")
			return
		}
		customerID = &id
	}

	items, err := h.invoiceService.ListBillableItems(c.Request.Context(), customerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, items)
}

// PreviewTotals computes invoice totals for the supplied draft state without
// persisting anything
func (h *BillingHandler) PreviewTotals(c *gin.Context) {
	var req billingapp.PreviewTotalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	totals, err := h.invoiceService.PreviewTotals(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, totals)
}

// CreateInvoice issues an invoice from the selected delivery lines
func (h *BillingHandler) CreateInvoice(c *gin.Context) {
	var req billingapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetInvoice returns one invoice by ID
func (h *BillingHandler) GetInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	invoice, err := h.invoiceService.GetInvoiceByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// ListInvoices returns a filtered, paginated invoice list
func (h *BillingHandler) ListInvoices(c *gin.Context) {
	var filter billingapp.InvoiceListFilter
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

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, invoices, total, filter.Page, filter.PageSize)
}

// RecordPayment applies a full or partial payment to an invoice
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req billingapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// CancelInvoice cancels an invoice that has no payments yet
func (h *BillingHandler) CancelInvoice(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req billingapp.CancelInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	invoice, err := h.invoiceService.CancelInvoice(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}
