package cart

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	cartstore "github.com/dvelkov/toystore/internal/cart"
	"github.com/dvelkov/toystore/internal/models"
	"github.com/dvelkov/toystore/internal/mykafka"
)

type CartHandler struct {
	DB       *gorm.DB
	Sessions Source
	Producer *mykafka.Producer
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["session"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *CartHandler) respond(c echo.Context, items []cartstore.Item) error {
	return c.JSON(http.StatusOK, echo.Map{
		"items": items,
		"total": cartstore.Total(items),
		"count": cartstore.Count(items),
	})
}

func (h *CartHandler) GetCart(c echo.Context) error {
	cart := h.Sessions.CartFor(c)
	items, err := cart.Get(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return h.respond(c, items)
}

// AddToCart snapshots the product's name and selling price into the cart.
// Stock is deliberately not checked here; see the sale-recording flow.
func (h *CartHandler) AddToCart(c echo.Context) error {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  uint   `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id required")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	var product models.Product
	if err := h.DB.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	cart := h.Sessions.CartFor(c)
	items, err := cart.Add(c.Request().Context(), cartstore.Item{
		ProductID: product.ID,
		Name:      product.Name,
		Price:     product.SellingPrice,
		ImageURL:  product.ImageURL,
	}, req.Quantity)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"session":   SessionID(c),
		"productID": product.ID,
		"quantity":  req.Quantity,
	})
	return h.respond(c, items)
}

func (h *CartHandler) SetQuantity(c echo.Context) error {
	productID := c.Param("productId")
	var req struct {
		Quantity uint `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	cart := h.Sessions.CartFor(c)
	items, err := cart.SetQuantity(c.Request().Context(), productID, req.Quantity)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_quantity_set",
		"session":   SessionID(c),
		"productID": productID,
		"quantity":  req.Quantity,
	})
	return h.respond(c, items)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	productID := c.Param("productId")

	cart := h.Sessions.CartFor(c)
	items, err := cart.Remove(c.Request().Context(), productID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_removed",
		"session":   SessionID(c),
		"productID": productID,
	})
	return h.respond(c, items)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	cart := h.Sessions.CartFor(c)
	if err := cart.Clear(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":    "cart_cleared",
		"session": SessionID(c),
	})
	return h.respond(c, []cartstore.Item{})
}
