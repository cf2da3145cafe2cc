package handler

import (
	"github.com/gin-gonic/gin"
	purchasingapp "github.com/retailpos/backend/internal/application/purchasing"
)

// ReorderHandler serves the reorder suggestion report
type ReorderHandler struct {
	BaseHandler
	reorderService *purchasingapp.ReorderService
}

// NewReorderHandler creates a new ReorderHandler
func NewReorderHandler(reorderService *purchasingapp.ReorderService) *ReorderHandler {
	return &ReorderHandler{reorderService: reorderService}
}

// RegisterRoutes registers reorder report routes
func (h *ReorderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reorder := rg.Group("/reorder")
	{
		reorder.GET("/report", h.GetReport)
		reorder.POST("/report/invalidate", h.InvalidateReport)
	}
}

// GetReport returns the vendor-grouped reorder suggestions.
// Pass ?fresh=true to bypass the cache.
func (h *ReorderHandler) GetReport(c *gin.Context) {
	fresh := c.Query("fresh") == "true"

	report, err := h.reorderService.GenerateReport(c.Request.Context(), fresh)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

// InvalidateReport drops the cached report
func (h *ReorderHandler) InvalidateReport(c *gin.Context) {
	h.reorderService.InvalidateCache(c.Request.Context())
	h.NoContent(c)
}
