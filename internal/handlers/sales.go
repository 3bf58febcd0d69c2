package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dvelkov/toystore/internal/models"
	"github.com/dvelkov/toystore/internal/mykafka"
	"github.com/dvelkov/toystore/internal/util"
)

type SalesHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
}

type DashboardStats struct {
	TotalProducts   int64   `json:"total_products"`
	TotalStockValue float64 `json:"total_stock_value"`
	TodaySalesTotal float64 `json:"today_sales_total"`
	TodaySalesCount int64   `json:"today_sales_count"`
}

func (h *SalesHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "sale_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// RecordSale writes a counter sale and decrements stock in one transaction.
// The decrement is conditional on remaining stock, so two concurrent sales of
// the last unit cannot both succeed.
func (h *SalesHandler) RecordSale(c echo.Context) error {
	var req struct {
		ProductID string `json:"product_id"`
		Quantity  int    `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id required")
	}
	if req.Quantity < 1 {
		return echo.NewHTTPError(http.StatusBadRequest, "quantity must be >= 1")
	}

	var sale models.SaleRecord
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}

		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock_quantity >= ?", req.ProductID, req.Quantity).
			Update("stock_quantity", gorm.Expr("stock_quantity - ?", req.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return echo.NewHTTPError(http.StatusConflict, "insufficient stock")
		}

		sale = models.SaleRecord{
			ID:           uuid.NewString(),
			ProductID:    product.ID,
			ProductName:  product.Name,
			QuantitySold: req.Quantity,
			SoldPrice:    product.SellingPrice * float64(req.Quantity),
			Profit:       (product.SellingPrice - product.PurchasePrice) * float64(req.Quantity),
			SoldAt:       time.Now().UTC(),
		}
		return tx.Create(&sale).Error
	})
	if txErr != nil {
		if he, ok := txErr.(*echo.HTTPError); ok {
			return he
		}
		return echo.NewHTTPError(http.StatusInternalServerError, txErr.Error())
	}

	h.publish(c, map[string]any{
		"type":      "sale_recorded",
		"productID": sale.ProductID,
		"quantity":  sale.QuantitySold,
		"profit":    sale.Profit,
	})
	return c.JSON(http.StatusCreated, sale)
}

func (h *SalesHandler) ListSales(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	var total int64
	if err := h.DB.Model(&models.SaleRecord{}).Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var sales []models.SaleRecord
	if err := h.DB.Order("sold_at DESC").Offset(offset).Limit(limit).Find(&sales).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": sales,
		"meta": map[string]any{"page": page, "size": limit, "total": total},
	})
}

func (h *SalesHandler) GetStats(c echo.Context) error {
	var stats DashboardStats

	row := h.DB.Model(&models.Product{}).
		Select("COALESCE(SUM(stock_quantity), 0), COALESCE(SUM(selling_price * stock_quantity), 0)").
		Row()
	if err := row.Scan(&stats.TotalProducts, &stats.TotalStockValue); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	row = h.DB.Model(&models.SaleRecord{}).
		Where("sold_at >= ?", startOfDay).
		Select("COALESCE(SUM(sold_price), 0), COALESCE(SUM(quantity_sold), 0)").
		Row()
	if err := row.Scan(&stats.TodaySalesTotal, &stats.TodaySalesCount); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, stats)
}
