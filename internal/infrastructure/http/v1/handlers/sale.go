package handlers

import (
	"github.com/gin-gonic/gin"

	"botica/internal/core/apperror"
	"botica/internal/core/id"
	"botica/internal/domain/sale"
	"botica/internal/infrastructure/http/v1/dto"
)

// SaleHandler handles connected point-of-sale requests.
type SaleHandler struct {
	*BaseHandler
	service *sale.Service
}

// NewSaleHandler creates a new sale handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return &SaleHandler{
		BaseHandler: base,
		service:     service,
	}
}

// Register handles POST /sales
func (h *SaleHandler) Register(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.RegisterSaleRequest
	if !h.BindJSON(c, &req) {
		return
	}

	input := sale.RegisterInput{
		Items:   make([]sale.ItemInput, 0, len(req.Items)),
		ActorID: h.GetActorID(c),
	}

	if req.ClientID != "" {
		clientID, err := id.Parse(req.ClientID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid clientId format"))
			return
		}
		input.ClientID = &clientID
	}

	for _, it := range req.Items {
		productID, err := id.Parse(it.ProductID)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid productId format"))
			return
		}

		item := sale.ItemInput{
			ProductID:            productID,
			ProductName:          it.ProductName,
			Quantity:             dto.Quantity(it.Quantity),
			UnitPrice:            it.UnitPrice,
			RequiresPrescription: it.RequiresPrescription,
		}
		if it.LotID != "" {
			lotID, err := id.Parse(it.LotID)
			if err != nil {
				h.Error(c, apperror.NewValidation("invalid lotId format"))
				return
			}
			item.LotID = &lotID
		}
		input.Items = append(input.Items, item)
	}

	registered, items, err := h.service.Register(ctx, input)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromSale(registered, items))
}

// GetByID handles GET /sales/:saleId
func (h *SaleHandler) GetByID(c *gin.Context) {
	ctx := c.Request.Context()

	saleID, err := id.Parse(c.Param("saleId"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid saleId format"))
		return
	}

	s, items, err := h.service.GetByID(ctx, saleID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSale(s, items))
}

// RegisterRoutes registers sale routes.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Register)
	rg.GET("/:saleId", h.GetByID)
}
