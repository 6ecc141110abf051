package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/service"
)

type UserHandler struct {
	svc service.UserService
}

func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

func (h *UserHandler) List(c echo.Context) error {
	users, err := h.svc.List(c.Request().Context(), principal(c), model.Role(c.QueryParam("role")))
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]UserResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"users": resp})
}

func (h *UserHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return badRequest(c, "invalid user id")
	}
	var req struct {
		IsActive *bool   `json:"isActive"`
		Role     *string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	patch := service.UserPatch{IsActive: req.IsActive}
	if req.Role != nil {
		r := model.Role(*req.Role)
		patch.Role = &r
	}
	u, err := h.svc.Update(c.Request().Context(), principal(c), id, patch)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(u))
}
