package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/domain/ledger"
	"botica/internal/infrastructure/http/v1/dto"
)

// StockHandler handles HTTP requests for the stock ledger.
type StockHandler struct {
	*BaseHandler
	service *ledger.Service
}

// NewStockHandler creates a new stock ledger handler.
func NewStockHandler(base *BaseHandler, service *ledger.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
	}
}

// ApplyMovement handles POST /stock/movements
func (h *StockHandler) ApplyMovement(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ApplyMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	productID, err := id.Parse(req.ProductID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	input := ledger.MovementInput{
		ProductID: productID,
		Kind:      ledger.MovementKind(req.Kind),
		Quantity:  dto.Quantity(req.Quantity),
		Reason:    req.Reason,
		ActorID:   h.GetActorID(c),
	}

	if req.RelatedSaleID != "" {
		saleID, err := id.Parse(req.RelatedSaleID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid relatedSaleId format"))
			return
		}
		input.RelatedSaleID = &saleID
	}

	movement, err := h.service.ApplyMovement(ctx, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromMovement(movement))
}

// GetMovements handles GET /stock/movements
func (h *StockHandler) GetMovements(c *gin.Context) {
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

	filter := ledger.MovementFilter{
		Limit:  h.ParseIntQuery(c, "limit", 100),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}

	if kindStr := c.Query("kind"); kindStr != "" {
		kind := ledger.MovementKind(kindStr)
		if !kind.Valid() {
			h.Error(c, apperror.NewValidation("unknown movement kind"))
			return
		}
		filter.Kind = &kind
	}

	if fromStr := c.Query("fromDate"); fromStr != "" {
		if parsed, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filter.FromDate = &parsed
		}
	}

	if toStr := c.Query("toDate"); toStr != "" {
		if parsed, err := time.Parse(time.RFC3339, toStr); err == nil {
			filter.ToDate = &parsed
		}
	}

	movements, err := h.service.MovementHistory(ctx, productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromMovement(m)
	}

	h.OK(c, dto.MovementListResponse{Items: items})
}

// GetBalance handles GET /stock/products/:productId/balance
func (h *StockHandler) GetBalance(c *gin.Context) {
	ctx := c.Request.Context()

	productID, err := id.Parse(c.Param("productId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid productId format"))
		return
	}

	check, err := h.service.CheckBalance(ctx, productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromBalanceCheck(check))
}

// GetAlerts handles GET /stock/alerts
func (h *StockHandler) GetAlerts(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.service.LowStockProducts(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.ProductResponse, len(products))
	for i, p := range products {
		items[i] = dto.FromProduct(p)
	}

	h.OK(c, dto.LowStockResponse{Items: items})
}

// RegisterRoutes registers stock ledger routes.
func (h *StockHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/movements", h.ApplyMovement)
	rg.GET("/movements", h.GetMovements)
	rg.GET("/products/:productId/balance", h.GetBalance)
	rg.GET("/alerts", h.GetAlerts)
}
