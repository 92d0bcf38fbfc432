package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	settlementapp "github.com/printworks/backend/internal/application/settlement"
	"github.com/printworks/backend/internal/interfaces/http/middleware"
)

// SettlementHandler handles settlement document API endpoints
type SettlementHandler struct {
	BaseHandler
	documentService *settlementapp.DocumentService
}

// NewSettlementHandler creates a new SettlementHandler
func NewSettlementHandler(documentService *settlementapp.DocumentService) *SettlementHandler {
	return &SettlementHandler{documentService: documentService}
}

// RegisterRoutes registers all settlement document routes
func (h *SettlementHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documents := rg.Group("/settlement/documents")
	{
		documents.GET("", h.ListDocuments)
		documents.POST("", h.CreateDocument)
		documents.GET("/:id", h.GetDocument)
		documents.PUT("/:id", h.UpdateDocument)
		documents.DELETE("/:id", h.DeleteDocument)
		documents.POST("/:id/approve", h.ApproveDocument)
		documents.POST("/:id/post", h.PostDocument)
		documents.POST("/:id/cancel", h.CancelDocument)
	}
}

// CreateDocument creates a cash receipt or cash payment in draft status
func (h *SettlementHandler) CreateDocument(c *gin.Context) {
	var req settlementapp.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	doc, err := h.documentService.CreateDocument(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, doc)
}

// GetDocument returns one settlement document by ID
func (h *SettlementHandler) GetDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	doc, err := h.documentService.GetDocumentByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// ListDocuments returns a filtered, paginated document list
func (h *SettlementHandler) ListDocuments(c *gin.Context) {
	var filter settlementapp.DocumentListFilter
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

	docs, total, err := h.documentService.ListDocuments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, docs, total, filter.Page, filter.PageSize)
}

// UpdateDocument edits the draft-only fields of a document
func (h *SettlementHandler) UpdateDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req settlementapp.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	doc, err := h.documentService.UpdateDocument(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// ApproveDocument transitions a draft document to approved
func (h *SettlementHandler) ApproveDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	doc, err := h.documentService.ApproveDocument(c.Request.Context(), id, middleware.GetActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// PostDocument transitions an approved document to posted
func (h *SettlementHandler) PostDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	doc, err := h.documentService.PostDocument(c.Request.Context(), id, middleware.GetActorID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// CancelDocument cancels a draft or approved document
func (h *SettlementHandler) CancelDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	var req settlementapp.CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	doc, err := h.documentService.CancelDocument(c.Request.Context(), id, middleware.GetActorID(c), req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, doc)
}

// DeleteDocument removes a draft document
func (h *SettlementHandler) DeleteDocument(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "id must be a valid UUID")
		return
	}

	if err := h.documentService.DeleteDocument(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
