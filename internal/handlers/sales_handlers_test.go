package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dvelkov/toystore/internal/models"
)

func seedProduct(t *testing.T, h *SalesHandler, stock int) models.Product {
	prod := models.Product{
		ID:            uuid.NewString(),
		Name:          "Камионче",
		Category:      "Vehicles & Ride-ons",
		PurchasePrice: 60,
		SellingPrice:  100,
		StockQuantity: stock,
	}
	require.NoError(t, h.DB.Create(&prod).Error)
	return prod
}

func TestRecordSaleDecrementsStock(t *testing.T) {
	h := &SalesHandler{DB: newTestDB(t)}
	prod := seedProduct(t, h, 5)

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/staff/sales", map[string]any{
		"product_id": prod.ID,
		"quantity":   2,
	})
	require.NoError(t, h.RecordSale(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var sale models.SaleRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sale))
	require.Equal(t, float64(200), sale.SoldPrice)
	require.Equal(t, float64(80), sale.Profit)

	var got models.Product
	require.NoError(t, h.DB.Where("id = ?", prod.ID).First(&got).Error)
	require.Equal(t, 3, got.StockQuantity)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	h := &SalesHandler{DB: newTestDB(t)}
	prod := seedProduct(t, h, 1)

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/staff/sales", map[string]any{
		"product_id": prod.ID,
		"quantity":   2,
	})
	if err := h.RecordSale(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	require.Equal(t, http.StatusConflict, rec.Code)

	// Nothing moved: no sale row, stock untouched.
	var count int64
	require.NoError(t, h.DB.Model(&models.SaleRecord{}).Count(&count).Error)
	require.Zero(t, count)

	var got models.Product
	require.NoError(t, h.DB.Where("id = ?", prod.ID).First(&got).Error)
	require.Equal(t, 1, got.StockQuantity)
}

func TestRecordSaleUnknownProduct(t *testing.T) {
	h := &SalesHandler{DB: newTestDB(t)}

	e := echoNew()
	rec, c := doJSON(e, http.MethodPost, "/api/v1/staff/sales", map[string]any{
		"product_id": uuid.NewString(),
		"quantity":   1,
	})
	if err := h.RecordSale(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStats(t *testing.T) {
	h := &SalesHandler{DB: newTestDB(t)}
	prod := seedProduct(t, h, 4)

	e := echoNew()
	_, c := doJSON(e, http.MethodPost, "/api/v1/staff/sales", map[string]any{
		"product_id": prod.ID,
		"quantity":   1,
	})
	require.NoError(t, h.RecordSale(c))

	rec, c := doJSON(e, http.MethodGet, "/api/v1/staff/stats", nil)
	require.NoError(t, h.GetStats(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats DashboardStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	require.Equal(t, int64(3), stats.TotalProducts)
	require.Equal(t, float64(300), stats.TotalStockValue)
	require.Equal(t, float64(100), stats.TodaySalesTotal)
	require.Equal(t, int64(1), stats.TodaySalesCount)
}
