package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
)

const IdempotencyKeyHeader = "Idempotency-Key"

// IdempotencyStore remembers the response of a payment request so a retried
// request with the same key is answered without paying twice.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string) (bool, error)
	Result(ctx context.Context, key string) (body []byte, exists bool, err error)
	Complete(ctx context.Context, key string, body []byte) error
	Release(ctx context.Context, key string) error
}

type OrderHandler struct {
	orders      services.OrderService
	idempotency IdempotencyStore
	log         *logger.Logger
}

func NewOrderHandler(orders services.OrderService, idempotency IdempotencyStore, log *logger.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, idempotency: idempotency, log: log}
}

func (h *OrderHandler) Create(c *gin.Context) {
	var input services.CreateOrderInput
	if !bindJSON(c, &input) {
		return
	}

	order, err := h.orders.Create(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.Get(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetOpenByTable(c *gin.Context) {
	tableID, ok := paramID(c, "tableId")
	if !ok {
		return
	}
	order, err := h.orders.GetOpenByTable(c.Request.Context(), callerFrom(c), tableID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetActivePOS(c *gin.Context) {
	order, err := h.orders.GetActivePOS(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListHeld(c *gin.Context) {
	orders, err := h.orders.ListHeld(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) ListKitchen(c *gin.Context) {
	orders, err := h.orders.ListKitchen(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) AddItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.AddItemInput
	if !bindJSON(c, &input) {
		return
	}

	order, err := h.orders.UpsertLineItem(c.Request.Context(), callerFrom(c), id, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) SetItemQuantity(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.Quantity == nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "quantity is required"})
		return
	}

	order, err := h.orders.SetLineItemQuantity(c.Request.Context(), callerFrom(c), id, itemID, *req.Quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) RemoveItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}

	order, err := h.orders.RemoveItem(c.Request.Context(), callerFrom(c), id, itemID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateItemStatus(c *gin.Context) {
	itemID, ok := paramID(c, "itemId")
	if !ok {
		return
	}
	var req struct {
		Status models.OrderItemStatus `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.orders.UpdateItemStatus(c.Request.Context(), callerFrom(c), itemID, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Pay settles part or all of an order. With an Idempotency-Key header the
// first successful response is stored and replayed for repeats of the key.
func (h *OrderHandler) Pay(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.PartialPaymentInput
	if !bindJSON(c, &input) {
		return
	}
	caller := callerFrom(c)
	ctx := c.Request.Context()

	key := c.GetHeader(IdempotencyKeyHeader)
	if key == "" || h.idempotency == nil {
		result, err := h.orders.ProcessPartialPayment(ctx, caller, id, input)
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		c.JSON(http.StatusOK, result)
		return
	}

	scoped := fmt.Sprintf("%d:%d:%s", caller.StoreID, id, key)
	won, err := h.idempotency.Reserve(ctx, scoped)
	if err != nil {
		h.log.Error("idempotency_reserve", "Failed to reserve idempotency key", err, "order_id", id)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Idempotency store unavailable"})
		return
	}
	if !won {
		h.replay(c, scoped)
		return
	}

	result, err := h.orders.ProcessPartialPayment(ctx, caller, id, input)
	if err != nil {
		if relErr := h.idempotency.Release(ctx, scoped); relErr != nil {
			h.log.Warn("idempotency_release", "Failed to release idempotency key", "order_id", id, "error", relErr.Error())
		}
		respondError(c, h.log, err)
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if err := h.idempotency.Complete(ctx, scoped, body); err != nil {
		h.log.Warn("idempotency_complete", "Failed to store payment response", "order_id", id, "sale_id", result.Sale.ID, "error", err.Error())
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

func (h *OrderHandler) replay(c *gin.Context, key string) {
	body, exists, err := h.idempotency.Result(c.Request.Context(), key)
	switch {
	case err != nil:
		h.log.Error("idempotency_result", "Failed to read idempotency key", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Idempotency store unavailable"})
	case !exists || body == nil:
		c.JSON(http.StatusConflict, gin.H{"error": "A request with this Idempotency-Key is still in progress"})
	default:
		c.Header("Idempotent-Replayed", "true")
		c.Data(http.StatusOK, "application/json; charset=utf-8", body)
	}
}

func (h *OrderHandler) Hold(c *gin.Context) {
	h.lifecycle(c, h.orders.Hold)
}

func (h *OrderHandler) Resume(c *gin.Context) {
	h.lifecycle(c, h.orders.Resume)
}

func (h *OrderHandler) Cancel(c *gin.Context) {
	h.lifecycle(c, h.orders.Cancel)
}

func (h *OrderHandler) Close(c *gin.Context) {
	h.lifecycle(c, h.orders.Close)
}

func (h *OrderHandler) lifecycle(c *gin.Context, op func(context.Context, services.Caller, uint) (*models.Order, error)) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	order, err := op(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Transfer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		TableID uint `json:"table_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.TableID == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "table_id is required"})
		return
	}

	order, err := h.orders.Transfer(c.Request.Context(), callerFrom(c), id, req.TableID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Merge(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		SourceOrderID uint `json:"source_order_id"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if req.SourceOrderID == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "source_order_id is required"})
		return
	}

	order, err := h.orders.Merge(c.Request.Context(), callerFrom(c), id, req.SourceOrderID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, order)
}
