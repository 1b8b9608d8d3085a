package handlers

import (
	"net/http"

	"restaurant_pos/internal/models"
	"restaurant_pos/internal/services"
	"restaurant_pos/pkg/logger"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users services.UserService
	log   *logger.Logger
}

func NewUserHandler(users services.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, log: log}
}

func (h *UserHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, c.MustGet(userKey).(*models.User))
}

func (h *UserHandler) List(c *gin.Context) {
	users, err := h.users.GetUsersByStore(c.Request.Context(), callerFrom(c).StoreID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) Create(c *gin.Context) {
	var input services.CreateUserInput
	if !bindJSON(c, &input) {
		return
	}
	caller := callerFrom(c)
	if input.Role == models.SuperAdmin && caller.Role != models.SuperAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only a super admin can create super admins"})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), caller.StoreID, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
