package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dvelkov/toystore/internal/models"
	"github.com/dvelkov/toystore/internal/util"
)

// CustomerHandler is the back-office read side; customers are created or
// updated only by the checkout opt-in.
type CustomerHandler struct {
	DB *gorm.DB
}

func (h *CustomerHandler) ListCustomers(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.Customer{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var customers []models.Customer
	if err := h.DB.Order("created_at DESC").Offset(offset).Limit(limit).Find(&customers).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": customers,
		"meta": map[string]any{"page": page, "size": limit, "total": total},
	})
}

func (h *CustomerHandler) GetCustomer(c echo.Context) error {
	var customer models.Customer
	if err := h.DB.Where("id = ?", c.Param("id")).First(&customer).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "customer not found")
	}
	return c.JSON(http.StatusOK, customer)
}
