package handlers

import (
	"net/http"

	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	reservations services.ReservationService
	log          *logger.Logger
}

func NewReservationHandler(reservations services.ReservationService, log *logger.Logger) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, log: log}
}

// List takes the same from/to query as the reports and defaults to today.
func (h *ReservationHandler) List(c *gin.Context) {
	from, to, ok := parseRange(c)
	if !ok {
		return
	}
	reservations, err := h.reservations.List(c.Request.Context(), callerFrom(c), from, to)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reservations": reservations})
}

func (h *ReservationHandler) Create(c *gin.Context) {
	var input services.CreateReservationInput
	if !bindJSON(c, &input) {
		return
	}
	reservation, err := h.reservations.Create(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, reservation)
}

func (h *ReservationHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	reservation, err := h.reservations.Delete(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, reservation)
}
