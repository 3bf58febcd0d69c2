package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dvelkov/toystore/internal/mailer"
	"github.com/dvelkov/toystore/internal/models"
)

type UserHandler struct {
	DB            *gorm.DB
	Mailer        mailer.Sender
	PublicBaseURL string
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	var users []models.User
	if err := h.DB.Order("id ASC").Find(&users).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) UpdateRole(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Role != "admin" && req.Role != "employee" {
		return echo.NewHTTPError(http.StatusBadRequest, "role must be admin or employee")
	}

	var user models.User
	if err := h.DB.First(&user, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	user.Role = req.Role
	if err := h.DB.Save(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.DB.Delete(&models.User{}, id).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

// Invite emails a staff signup link. Staff-facing, so a failed send is
// returned to the caller instead of being swallowed.
func (h *UserHandler) Invite(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	email := strings.TrimSpace(req.Email)
	if !strings.Contains(email, "@") {
		return echo.NewHTTPError(http.StatusBadRequest, "valid email required")
	}
	if h.Mailer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "mail is not configured")
	}

	subject, html := mailer.InvitationEmail(h.PublicBaseURL + "/register")
	if err := h.Mailer.Send(c.Request().Context(), email, subject, html); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "could not send invitation: "+err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "invitation sent", "email": email})
}
