package handlers

import (
	"net/http"
	"strconv"

	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	stock services.StockService
	log   *logger.Logger
}

func NewProductHandler(stock services.StockService, log *logger.Logger) *ProductHandler {
	return &ProductHandler{stock: stock, log: log}
}

func (h *ProductHandler) List(c *gin.Context) {
	var categoryID *uint
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
			return
		}
		cid := uint(id)
		categoryID = &cid
	}
	products, err := h.stock.ListProducts(c.Request.Context(), callerFrom(c), categoryID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) Create(c *gin.Context) {
	var input services.CreateProductInput
	if !bindJSON(c, &input) {
		return
	}
	product, err := h.stock.CreateProduct(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) LowStock(c *gin.Context) {
	products, err := h.stock.LowStock(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) Movements(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	movements, err := h.stock.Movements(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"movements": movements})
}

func (h *ProductHandler) AddStock(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Quantity int    `json:"quantity"`
		Note     string `json:"note"`
	}
	if !bindJSON(c, &req) {
		return
	}
	product, err := h.stock.AddStockEntry(c.Request.Context(), callerFrom(c), id, req.Quantity, req.Note)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.stock.ListCategories(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *ProductHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.stock.CreateCategory(c.Request.Context(), callerFrom(c), req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (h *ProductHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.stock.DeleteCategory(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
