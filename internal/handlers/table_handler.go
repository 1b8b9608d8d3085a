package handlers

import (
	"net/http"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
)

type TableHandler struct {
	tables services.TableService
	log    *logger.Logger
}

func NewTableHandler(tables services.TableService, log *logger.Logger) *TableHandler {
	return &TableHandler{tables: tables, log: log}
}

func (h *TableHandler) List(c *gin.Context) {
	tables, err := h.tables.List(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (h *TableHandler) Create(c *gin.Context) {
	var input services.CreateTableInput
	if !bindJSON(c, &input) {
		return
	}
	table, err := h.tables.Create(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, table)
}

func (h *TableHandler) UpdateLayout(c *gin.Context) {
	var req struct {
		Tables []services.TableLayoutInput `json:"tables"`
	}
	if !bindJSON(c, &req) {
		return
	}
	tables, err := h.tables.UpdateLayout(c.Request.Context(), callerFrom(c), req.Tables)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tables": tables})
}

func (h *TableHandler) SetStatus(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status models.TableStatus `json:"status"`
	}
	if !bindJSON(c, &req) {
		return
	}
	table, err := h.tables.SetStatus(c.Request.Context(), callerFrom(c), id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (h *TableHandler) ListWalls(c *gin.Context) {
	walls, err := h.tables.ListWalls(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"walls": walls})
}

func (h *TableHandler) CreateWall(c *gin.Context) {
	var input services.CreateWallInput
	if !bindJSON(c, &input) {
		return
	}
	wall, err := h.tables.CreateWall(c.Request.Context(), callerFrom(c), input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, wall)
}

func (h *TableHandler) UpdateWall(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input services.UpdateWallInput
	if !bindJSON(c, &input) {
		return
	}
	wall, err := h.tables.UpdateWall(c.Request.Context(), callerFrom(c), id, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, wall)
}

func (h *TableHandler) UpdateWallLayout(c *gin.Context) {
	var req struct {
		Walls []services.WallLayoutInput `json:"walls"`
	}
	if !bindJSON(c, &req) {
		return
	}
	walls, err := h.tables.UpdateWallLayout(c.Request.Context(), callerFrom(c), req.Walls)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"walls": walls})
}

func (h *TableHandler) DeleteWall(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.tables.DeleteWall(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
