package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/flowtrack/flowtrack-api/internal/dto"
	apierrors "github.com/flowtrack/flowtrack-api/internal/errors"
	"github.com/flowtrack/flowtrack-api/internal/middleware"
	"github.com/flowtrack/flowtrack-api/internal/services"
)

// UserHandler serves registration and the user directory.
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

// Register creates a user. Anonymous callers always become EMPLOYEE.
func (h *UserHandler) Register(c *gin.Context) {
	type RegisterRequest struct {
		Email    string `json:"email" binding:"required,email,max=255"`
		FullName string `json:"full_name" binding:"required,max=255"`
		Password string `json:"password" binding:"required"`
		Role     string `json:"role"`
	}

	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, err := h.userService.Register(c.Request.Context(), services.RegisterInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
	}, middleware.GetCaller(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToUserDTO(*user))
}

// ListEmployees returns the reduced projection of every EMPLOYEE.
func (h *UserHandler) ListEmployees(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.userService.ListEmployees(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserSummaryDTOs(users))
}

// ListAll returns every user.
func (h *UserHandler) ListAll(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	users, err := h.userService.ListAll(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTOs(users))
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// Elevated confirms the caller holds an elevated role.
func (h *UserHandler) Elevated(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "You have elevated access",
	})
}
