package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	cartstore "github.com/dvelkov/toystore/internal/cart"
	"github.com/dvelkov/toystore/internal/mailer"
	"github.com/dvelkov/toystore/internal/models"
	"github.com/dvelkov/toystore/internal/orders"
)

func newCheckoutEnv(t *testing.T) (*CheckoutHandler, *memSessions, *fakeSender) {
	sessions := &memSessions{storage: &cartstore.MemoryStorage{}}
	sender := &fakeSender{}
	h := &CheckoutHandler{
		DB:         newTestDB(t),
		Carts:      sessions,
		Dispatcher: &mailer.Dispatcher{Sender: sender},
	}
	return h, sessions, sender
}

func seedCart(t *testing.T, sessions *memSessions) {
	ctx := context.Background()
	cart := cartstore.New(sessions.storage)
	_, err := cart.Add(ctx, cartstore.Item{ProductID: "A", Name: "Камионче", Price: 100}, 2)
	require.NoError(t, err)
	_, err = cart.Add(ctx, cartstore.Item{ProductID: "B", Name: "Топка", Price: 50}, 1)
	require.NoError(t, err)
}

func checkoutBody() map[string]any {
	return map[string]any{
		"first_name":     "Марко",
		"last_name":      "Петров",
		"email":          "Marko@Example.com",
		"phone":          "070 123 456",
		"city":           "Велес",
		"street":         "ул. Борис Кидрич бр. 1",
		"accept_terms":   true,
		"create_account": false,
	}
}

func TestSubmitCreatesOrderAndClearsCart(t *testing.T) {
	h, sessions, sender := newCheckoutEnv(t)
	seedCart(t, sessions)

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/checkout", checkoutBody())
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		OrderID  string  `json:"order_id"`
		Subtotal float64 `json:"subtotal"`
		Status   string  `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.OrderID)
	require.Equal(t, float64(250), resp.Subtotal)
	require.Equal(t, string(orders.StatusPending), resp.Status)

	var count int64
	require.NoError(t, h.DB.Model(&models.Order{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	var order models.Order
	require.NoError(t, h.DB.First(&order).Error)
	require.Equal(t, float64(250), order.Subtotal)
	require.Equal(t, "cod", order.PaymentMethod)
	require.Equal(t, "marko@example.com", order.CustomerEmail)
	require.Len(t, order.Items, 2)
	require.Equal(t, "A", order.Items[0].ProductID)
	require.Equal(t, uint(2), order.Items[0].Quantity)
	require.Equal(t, "B", order.Items[1].ProductID)

	// The cart is gone once the order exists.
	items, err := cartstore.New(sessions.storage).Get(context.Background())
	require.NoError(t, err)
	require.Empty(t, items)

	h.Dispatcher.Wait()
	require.Equal(t, 1, sender.count())

	// Contact data was kept for the next auto-fill.
	require.NotNil(t, sessions.profile)
	require.Equal(t, "Марко", sessions.profile.FirstName)
}

func TestSubmitEmptyCartFailsValidation(t *testing.T) {
	h, _, sender := newCheckoutEnv(t)

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/checkout", checkoutBody())
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Errors)

	var count int64
	require.NoError(t, h.DB.Model(&models.Order{}).Count(&count).Error)
	require.Zero(t, count)

	h.Dispatcher.Wait()
	require.Zero(t, sender.count())
}

func TestSubmitCollectsAllViolations(t *testing.T) {
	h, _, _ := newCheckoutEnv(t)

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/checkout", map[string]any{})
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors []string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 8)
}

func TestSubmitUpsertsCustomerOnOptIn(t *testing.T) {
	h, sessions, _ := newCheckoutEnv(t)
	seedCart(t, sessions)

	body := checkoutBody()
	body["create_account"] = true

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/checkout", body)
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var cust models.Customer
	require.NoError(t, h.DB.Where("email = ?", "marko@example.com").First(&cust).Error)
	require.Equal(t, "Марко", cust.FirstName)

	var order models.Order
	require.NoError(t, h.DB.First(&order).Error)
	require.NotNil(t, order.CustomerID)
	require.Equal(t, cust.ID, *order.CustomerID)

	// A second opted-in checkout with the same email updates the row
	// instead of duplicating it.
	seedCart(t, sessions)
	body["first_name"] = "Петар"
	_, c = doJSON(e, http.MethodPost, "/api/v1/checkout", body)
	require.NoError(t, h.Submit(c))

	var custCount int64
	require.NoError(t, h.DB.Model(&models.Customer{}).Count(&custCount).Error)
	require.Equal(t, int64(1), custCount)
	require.NoError(t, h.DB.Where("email = ?", "marko@example.com").First(&cust).Error)
	require.Equal(t, "Петар", cust.FirstName)
}

func TestSubmitIdempotencyKeyPreventsDuplicates(t *testing.T) {
	h, sessions, _ := newCheckoutEnv(t)
	seedCart(t, sessions)

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/checkout", checkoutBody())
	c.Request().Header.Set("Idempotency-Key", "attempt-42")
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var first struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	// Retry after a dropped response: the cart was not cleared client-side.
	seedCart(t, sessions)
	rec, c = doJSON(e, http.MethodPost, "/api/v1/checkout", checkoutBody())
	c.Request().Header.Set("Idempotency-Key", "attempt-42")
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var second struct {
		OrderID string `json:"order_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &second))
	require.Equal(t, first.OrderID, second.OrderID)

	var count int64
	require.NoError(t, h.DB.Model(&models.Order{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestGetProfile(t *testing.T) {
	h, sessions, _ := newCheckoutEnv(t)

	e := echoNew()
	rec, c := doJSON(e, http.MethodGet, "/api/v1/checkout/profile", nil)
	require.NoError(t, h.GetProfile(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	seedCart(t, sessions)
	_, c = doJSON(e, http.MethodPost, "/api/v1/checkout", checkoutBody())
	require.NoError(t, h.Submit(c))

	rec, c = doJSON(e, http.MethodGet, "/api/v1/checkout/profile", nil)
	require.NoError(t, h.GetProfile(c))
	require.Equal(t, http.StatusOK, rec.Code)
}
