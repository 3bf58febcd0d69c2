package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	cartstore "github.com/dvelkov/toystore/internal/cart"
	"github.com/dvelkov/toystore/internal/checkout"
	carthttp "github.com/dvelkov/toystore/internal/handlers/cart"
	"github.com/dvelkov/toystore/internal/logging"
	"github.com/dvelkov/toystore/internal/mailer"
	"github.com/dvelkov/toystore/internal/models"
	"github.com/dvelkov/toystore/internal/mykafka"
	"github.com/dvelkov/toystore/internal/orders"
)

// Buyer-facing persistence failures collapse to this one retry message; raw
// backend errors never reach the storefront.
const submitFailedMessage = "Настана грешка при испраќање на нарачката. Обидете се повторно."

type CheckoutHandler struct {
	DB         *gorm.DB
	Carts      carthttp.Source
	Producer   *mykafka.Producer
	Dispatcher *mailer.Dispatcher
}

type checkoutResponse struct {
	OrderID  string  `json:"order_id"`
	ShortID  string  `json:"short_id"`
	Subtotal float64 `json:"subtotal"`
	Total    float64 `json:"total"`
	Status   string  `json:"status"`
}

func (h *CheckoutHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["orderID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// upsertCustomer looks a customer up by normalized email and updates it, or
// inserts a new row. Only called when the buyer opted in to an account.
func (h *CheckoutHandler) upsertCustomer(ctx context.Context, req checkout.Request) (string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.Customer
	err := h.DB.WithContext(ctx).Where("email = ?", email).First(&existing).Error
	if err == nil {
		existing.FirstName = strings.TrimSpace(req.FirstName)
		existing.LastName = strings.TrimSpace(req.LastName)
		existing.Phone = strings.TrimSpace(req.Phone)
		existing.City = strings.TrimSpace(req.City)
		existing.Street = strings.TrimSpace(req.Street)
		if err := h.DB.WithContext(ctx).Save(&existing).Error; err != nil {
			return "", err
		}
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	cust := models.Customer{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		City:      strings.TrimSpace(req.City),
		Street:    strings.TrimSpace(req.Street),
	}
	if err := h.DB.WithContext(ctx).Create(&cust).Error; err != nil {
		return "", err
	}
	return cust.ID, nil
}

func (h *CheckoutHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.submit")

	var req checkout.Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cart := h.Carts.CartFor(c)
	items, err := cart.Get(ctx)
	if err != nil {
		l.Error("cart read failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, submitFailedMessage)
	}

	if errs := checkout.Validate(req, items); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"errors": errs})
	}

	// A repeated submission with the same key returns the order created the
	// first time instead of inserting a duplicate.
	idemKey := strings.TrimSpace(c.Request().Header.Get("Idempotency-Key"))
	if idemKey != "" {
		var existing models.Order
		err := h.DB.WithContext(ctx).Where("idempotency_key = ?", idemKey).First(&existing).Error
		if err == nil {
			return c.JSON(http.StatusOK, checkoutResponse{
				OrderID:  existing.ID,
				ShortID:  mailer.ShortID(existing.ID),
				Subtotal: existing.Subtotal,
				Total:    existing.Total,
				Status:   existing.Status,
			})
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			l.Error("idempotency lookup failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, submitFailedMessage)
		}
	}

	var customerID *string
	if req.CreateAccount {
		id, err := h.upsertCustomer(ctx, req)
		if err != nil {
			l.Error("customer upsert failed", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, submitFailedMessage)
		}
		customerID = &id
	}

	// Auto-fill profile is best effort and never blocks the order.
	if err := h.Carts.SaveProfile(ctx, c, checkout.Profile{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.TrimSpace(req.Email),
		Phone:     strings.TrimSpace(req.Phone),
		City:      strings.TrimSpace(req.City),
		Street:    strings.TrimSpace(req.Street),
	}); err != nil {
		l.Warn("profile save failed", "error", err)
	}

	snapshot := make(models.OrderItems, 0, len(items))
	for _, it := range items {
		snapshot = append(snapshot, models.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			ImageURL:  it.ImageURL,
		})
	}
	subtotal := cartstore.Total(items)

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)

	order := models.Order{
		ID:                uuid.NewString(),
		CustomerName:      firstName + " " + lastName,
		CustomerFirstName: firstName,
		CustomerLastName:  lastName,
		CustomerEmail:     strings.ToLower(strings.TrimSpace(req.Email)),
		CustomerPhone:     strings.TrimSpace(req.Phone),
		DeliveryCity:      strings.TrimSpace(req.City),
		DeliveryAddress:   strings.TrimSpace(req.Street),
		Note:              strings.TrimSpace(req.Note),
		CustomerID:        customerID,
		Items:             snapshot,
		Subtotal:          subtotal,
		Total:             subtotal,
		Status:            string(orders.StatusPending),
		PaymentMethod:     "cod",
	}
	if idemKey != "" {
		order.IdempotencyKey = &idemKey
	}

	if err := h.DB.WithContext(ctx).Create(&order).Error; err != nil {
		l.Error("order insert failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, submitFailedMessage)
	}

	// The order exists from here on; a failed cart clear is only logged.
	if err := cart.Clear(ctx); err != nil {
		l.Warn("cart clear failed", "order_id", order.ID, "error", err)
	}

	h.publish(c, map[string]any{
		"type":     "order_created",
		"orderID":  order.ID,
		"subtotal": order.Subtotal,
		"items":    len(order.Items),
	})
	h.Dispatcher.OrderConfirmation(&order)

	l.Info("order created", "order_id", order.ID, "subtotal", order.Subtotal)
	return c.JSON(http.StatusCreated, checkoutResponse{
		OrderID:  order.ID,
		ShortID:  mailer.ShortID(order.ID),
		Subtotal: order.Subtotal,
		Total:    order.Total,
		Status:   order.Status,
	})
}

// GetProfile returns the saved auto-fill contact data for this session.
func (h *CheckoutHandler) GetProfile(c echo.Context) error {
	p, err := h.Carts.LoadProfile(c.Request().Context(), c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if p == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, p)
}
