package handlers

import (
	"net/http"

	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CashRegisterHandler struct {
	cash services.CashRegisterService
	log  *logger.Logger
}

func NewCashRegisterHandler(cash services.CashRegisterService, log *logger.Logger) *CashRegisterHandler {
	return &CashRegisterHandler{cash: cash, log: log}
}

func (h *CashRegisterHandler) Open(c *gin.Context) {
	var req struct {
		OpeningBalance decimal.Decimal `json:"opening_balance"`
	}
	if !bindJSON(c, &req) {
		return
	}
	register, err := h.cash.Open(c.Request.Context(), callerFrom(c), req.OpeningBalance)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, register)
}

func (h *CashRegisterHandler) Close(c *gin.Context) {
	var req struct {
		CountedBalance decimal.Decimal `json:"counted_balance"`
	}
	if !bindJSON(c, &req) {
		return
	}
	register, err := h.cash.Close(c.Request.Context(), callerFrom(c), req.CountedBalance)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, register)
}

func (h *CashRegisterHandler) Current(c *gin.Context) {
	register, err := h.cash.Current(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, register)
}

func (h *CashRegisterHandler) AddTransaction(c *gin.Context) {
	var input services.ManualTransactionInput
	if !bindJSON(c, &input) {
		return
	}
	txn, err := h.cash.AddManualTransaction(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}
