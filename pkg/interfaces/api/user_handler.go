package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/vsinha/kitchen/pkg/application/services/auth"
	"github.com/vsinha/kitchen/pkg/domain/entities"
)

type loginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type updateUserRequest struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Password *string `json:"password"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

// Login accepts the OAuth2 password form or a JSON body
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	token, _, err := h.services.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.services.Auth.Me(c.Request.Context(), principal(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(user))
}

func (h *Handler) ListUsers(c *gin.Context) {
	page, ok := parsePage(c)
	if !ok {
		return
	}
	users, err := h.services.Auth.ListUsers(c.Request.Context(), principal(c), page)
	if err != nil {
		h.fail(c, err)
		return
	}
	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, newUserView(u))
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) CreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	role := entities.RoleChef
	if req.Role != "" {
		parsed, err := entities.ParseRole(req.Role)
		if err != nil {
			h.fail(c, err)
			return
		}
		role = parsed
	}

	user, err := h.services.Auth.CreateUser(c.Request.Context(), principal(c), auth.UserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     role,
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, newUserView(user))
}

func (h *Handler) GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	user, err := h.services.Auth.GetUser(c.Request.Context(), principal(c), entities.UserID(id))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(user))
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	update := auth.UserUpdate{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Active:   req.IsActive,
	}
	if req.Role != nil {
		role, err := entities.ParseRole(*req.Role)
		if err != nil {
			h.fail(c, err)
			return
		}
		update.Role = &role
	}

	user, err := h.services.Auth.UpdateUser(c.Request.Context(), principal(c), entities.UserID(id), update)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(user))
}
