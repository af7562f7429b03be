package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pharmatrack/pharmacy-api/internal/api/middleware"
	"github.com/pharmatrack/pharmacy-api/internal/core/domain"
	"github.com/pharmatrack/pharmacy-api/internal/core/ports"
)

type UserHandler struct {
	authService ports.AuthService
}

func NewUserHandler(authService ports.AuthService) *UserHandler {
	return &UserHandler{authService: authService}
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin pharmacist operator viewer user"`
}

type updateAccessLevelRequest struct {
	AccessLevel int `json:"access_level" validate:"gte=0,lte=4"`
}

// Me returns the profile of the authenticated user.
//
// @Summary      Current user profile
// @Tags         users
// @Produce      json
// @Success      200  {object}  domain.PublicUser
// @Failure      401  {object}  map[string]string
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	id, _ := c.Get(middleware.CtxUserID).(string)
	if id == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	user, err := h.authService.Profile(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Get returns the profile of an arbitrary user.
//
// @Summary      User profile by id
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.PublicUser
// @Failure      404  {object}  map[string]string
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.authService.Profile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateRole assigns a new role to a user.
//
// @Summary      Update a user's role
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateRoleRequest  true  "New role"
// @Success      200   {object}  domain.PublicUser
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/{id}/role [patch]
func (h *UserHandler) UpdateRole(c echo.Context) error {
	var req updateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.UpdateRole(c.Request().Context(), c.Param("id"), domain.Role(req.Role))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateAccessLevel assigns a new access level to a user.
//
// @Summary      Update a user's access level
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string                    true  "User id"
// @Param        body  body      updateAccessLevelRequest  true  "New access level (0-4)"
// @Success      200   {object}  domain.PublicUser
// @Failure      400   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/{id}/access-level [patch]
func (h *UserHandler) UpdateAccessLevel(c echo.Context) error {
	var req updateAccessLevelRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.UpdateAccessLevel(c.Request().Context(), c.Param("id"), domain.AccessLevel(req.AccessLevel))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
