package handlers

import (
	"github.com/gin-gonic/gin"

	"botica/internal/core/apperror"
	"botica/internal/domain/reconcile"
	"botica/internal/infrastructure/http/v1/dto"
)

// SyncHandler handles reconciliation of offline sale batches.
type SyncHandler struct {
	*BaseHandler
	service *reconcile.Service
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(base *BaseHandler, service *reconcile.Service) *SyncHandler {
	return &SyncHandler{
		BaseHandler: base,
		service:     service,
	}
}

// SyncSales handles POST /sync/sales
//
// The whole batch is always processed; per-record outcomes come back in the
// response body. A 200 therefore does not mean every record synced.
func (h *SyncHandler) SyncSales(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.SyncSalesRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if len(req.Records) == 0 {
		h.Error(c, apperror.NewValidation("batch must contain at least one record"))
		return
	}

	outcome := h.service.Reconcile(ctx, req.Records)

	h.OK(c, outcome)
}

// RegisterRoutes registers sync routes.
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sales", h.SyncSales)
}
