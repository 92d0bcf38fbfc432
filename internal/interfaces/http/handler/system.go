package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/printworks/backend/internal/infrastructure/persistence"
	"github.com/printworks/backend/internal/interfaces/http/dto"
)

// SystemHandler handles health and system status endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	appName   string
	env       string
	startedAt time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database, appName, env string) *SystemHandler {
	return &SystemHandler{
		db:        db,
		appName:   appName,
		env:       env,
		startedAt: time.Now(),
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/system/health", h.Health)
	rg.GET("/system/stats", h.Stats)
}

// HealthResponse represents the health check payload
type HealthResponse struct {
	Status   string `json:"status"`
	App      string `json:"app"`
	Env      string `json:"env"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}

// Health reports service and database health
func (h *SystemHandler) Health(c *gin.Context) {
	dbStatus := "up"
	status := "ok"
	httpStatus := http.StatusOK

	if err := h.db.Ping(); err != nil {
		dbStatus = "down"
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, dto.NewSuccessResponse(HealthResponse{
		Status:   status,
		App:      h.appName,
		Env:      h.env,
		Uptime:   time.Since(h.startedAt).Round(time.Second).String(),
		Database: dbStatus,
	}))
}

// Stats reports database connection pool statistics
func (h *SystemHandler) Stats(c *gin.Context) {
	stats, err := h.db.Stats()
	if err != nil {
		h.InternalError(c, "Failed to collect database statistics")
		return
	}
	h.Success(c, stats)
}
