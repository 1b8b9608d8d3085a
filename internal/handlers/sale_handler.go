package handlers

import (
	"net/http"

	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	sales services.SaleService
	log   *logger.Logger
}

func NewSaleHandler(sales services.SaleService, log *logger.Logger) *SaleHandler {
	return &SaleHandler{sales: sales, log: log}
}

func (h *SaleHandler) Checkout(c *gin.Context) {
	var input services.CheckoutInput
	if !bindJSON(c, &input) {
		return
	}

	sale, err := h.sales.Checkout(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.Get(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}

func (h *SaleHandler) List(c *gin.Context) {
	sales, err := h.sales.List(c.Request.Context(), callerFrom(c), queryInt(c, "limit", 50), queryInt(c, "offset", 0))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func (h *SaleHandler) ListByOrder(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sales, err := h.sales.ListByOrder(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func (h *SaleHandler) ListByCustomer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	sales, err := h.sales.ListByCustomer(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}
