package handlers

import (
	"net/http"

	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
)

type CustomerHandler struct {
	crm services.CRMService
	log *logger.Logger
}

func NewCustomerHandler(crm services.CRMService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{crm: crm, log: log}
}

func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.crm.List(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"customers": customers})
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var input services.CustomerInput
	if !bindJSON(c, &input) {
		return
	}
	customer, err := h.crm.Create(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	customer, err := h.crm.Get(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, customer)
}
