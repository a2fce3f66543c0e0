package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/ppfood/api/internal/application"
	"github.com/ppfood/api/internal/domain/entity"
	"github.com/ppfood/api/internal/interface/middleware"
	"github.com/ppfood/api/pkg/apperr"
	"github.com/ppfood/api/pkg/response"
	"github.com/ppfood/api/pkg/validation"
)

type CartHandler struct {
	Svc    *application.CartService
	Logger *logrus.Logger
}

func NewCartHandler(svc *application.CartService, logger *logrus.Logger) *CartHandler {
	return &CartHandler{Svc: svc, Logger: logger}
}

type addItemRequest struct {
	ProductID int64               `json:"product_id" binding:"required"`
	Quantity  int                 `json:"quantity" binding:"required"`
	Options   []entity.ItemOption `json:"options"`
}

type updateItemRequest struct {
	// Zero removes the line.
	Quantity int                  `json:"quantity"`
	Options  *[]entity.ItemOption `json:"options"`
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.Svc.GetCart(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cart, "cart", nil)
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, apperr.Validation(validation.ToDetails(err)))
		return
	}
	cart, err := h.Svc.AddItem(c.Request.Context(), middleware.UserID(c), req.ProductID, req.Quantity, req.Options)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, cart, "item added", nil)
}

func (h *CartHandler) UpdateItem(c *gin.Context) {
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, h.Logger, apperr.Validation(validation.ToDetails(err)))
		return
	}
	cart, err := h.Svc.UpdateItem(c.Request.Context(), middleware.UserID(c), itemID, req.Quantity, req.Options)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cart, "item updated", nil)
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	itemID, ok := idParam(c, "itemId")
	if !ok {
		return
	}
	cart, err := h.Svc.RemoveItem(c.Request.Context(), middleware.UserID(c), itemID)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, cart, "item removed", nil)
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.Svc.ClearCart(c.Request.Context(), middleware.UserID(c)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"cleared": true}, "cart cleared", nil)
}
