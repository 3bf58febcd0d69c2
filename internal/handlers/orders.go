package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dvelkov/toystore/internal/logging"
	"github.com/dvelkov/toystore/internal/mailer"
	"github.com/dvelkov/toystore/internal/models"
	"github.com/dvelkov/toystore/internal/mykafka"
	"github.com/dvelkov/toystore/internal/orders"
	"github.com/dvelkov/toystore/internal/util"
)

type OrderHandler struct {
	DB         *gorm.DB
	Producer   *mykafka.Producer
	Dispatcher *mailer.Dispatcher
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["orderID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Order{})
	if status := c.QueryParam("status"); status != "" {
		if _, err := orders.ParseStatus(status); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var items []models.Order
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":  page,
			"size":  limit,
			"total": total,
		},
	})
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	var order models.Order
	if err := h.DB.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus moves an order along the workflow. Only transitions allowed
// by orders.AllowedTransitions are accepted; moving into shipped dispatches
// the shipped notification when the buyer left an email.
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "orders.update_status")

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	next, err := orders.ParseStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var order models.Order
	if err := h.DB.WithContext(ctx).Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "order not found")
	}

	current := orders.Status(order.Status)
	if !orders.CanTransition(current, next) {
		return echo.NewHTTPError(http.StatusConflict, fmt.Sprintf(
			"cannot move order from %s to %s (allowed: %v)",
			current, next, orders.AllowedTransitions(current),
		))
	}

	order.Status = string(next)
	if err := h.DB.WithContext(ctx).Save(&order).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":    "order_status_changed",
		"orderID": order.ID,
		"from":    string(current),
		"to":      string(next),
	})

	// Notification failure never reverts the status change.
	if next == orders.StatusShipped && order.CustomerEmail != "" {
		h.Dispatcher.OrderShipped(&order)
	}

	l.Info("order status changed", "order_id", order.ID, "from", current, "to", next)
	return c.JSON(http.StatusOK, order)
}
