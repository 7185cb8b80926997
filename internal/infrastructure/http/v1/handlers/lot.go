package handlers

import (
	"github.com/gin-gonic/gin"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/domain/lot"
	"botica/internal/infrastructure/http/v1/dto"
)

// LotHandler handles HTTP requests for the lot catalog.
type LotHandler struct {
	*BaseHandler
	service *lot.Service
}

// NewLotHandler creates a new lot handler.
func NewLotHandler(base *BaseHandler, service *lot.Service) *LotHandler {
	return &LotHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Receive handles POST /lots
func (h *LotHandler) Receive(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ReceiveLotRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	received, err := h.service.Receive(ctx, lot.ReceiveInput{
		ProductID:       productID,
		LotNumber:       req.LotNumber,
		ManufactureDate: req.ManufactureDate,
		ExpiryDate:      req.ExpiryDate,
		Quantity:        dto.Quantity(req.Quantity),
		UnitCost:        req.UnitCost,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromLot(received))
}

// GetEligible handles GET /lots
func (h *LotHandler) GetEligible(c *gin.Context) {
	ctx := c.Request.Context()

	productIDStr := c.Query("productId")
	if productIDStr == "" {
		h.Error(c, apperror.NewValidation("productId is required"))
		return
	}

	productID, err := id.Parse(productIDStr)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	lots, err := h.service.EligibleLots(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.LotResponse, len(lots))
	for i, l := range lots {
		items[i] = dto.FromLot(l)
	}

	h.OK(c, dto.LotListResponse{Items: items})
}

// PlanAllocation handles POST /lots/allocate
func (h *LotHandler) PlanAllocation(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.AllocateRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	plan, err := h.service.PlanAllocation(ctx, productID, dto.Quantity(req.Quantity))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromPlan(plan))
}

// RegisterRoutes registers lot routes.
func (h *LotHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Receive)
	rg.GET("", h.GetEligible)
	rg.POST("/allocate", h.PlanAllocation)
}
