package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/dvelkov/toystore/internal/models"
	"github.com/dvelkov/toystore/internal/mykafka"
	"github.com/dvelkov/toystore/internal/util"
)

type ProductHandler struct {
	DB       *gorm.DB
	Producer *mykafka.Producer
	ES       *elasticsearch.Client
	ESIndex  string
}

type productRequest struct {
	Name          string  `json:"name"`
	Category      string  `json:"category"`
	ImageURL      string  `json:"image_url"`
	PurchasePrice float64 `json:"purchase_price"`
	SellingPrice  float64 `json:"selling_price"`
	StockQuantity int     `json:"stock_quantity"`
	Barcode       string  `json:"barcode"`
	Notes         string  `json:"notes"`
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func (h *ProductHandler) publish(c echo.Context, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "product_events", fmt.Sprint(event["productID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

// indexProduct mirrors the catalog row into Elasticsearch. Best effort: a
// failed index call is logged and never fails the write that triggered it.
func (h *ProductHandler) indexProduct(c echo.Context, prod *models.Product) {
	if h.ES == nil {
		return
	}
	data, err := json.Marshal(prod)
	if err != nil {
		c.Logger().Errorf("ES marshal error: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	res, err := h.ES.Index(h.ESIndex, bytes.NewReader(data),
		h.ES.Index.WithDocumentID(prod.ID),
		h.ES.Index.WithContext(ctx),
	)
	if err != nil {
		c.Logger().Errorf("ES index error: %v", err)
		return
	}
	defer res.Body.Close()
	if res.IsError() {
		c.Logger().Errorf("ES index error: %s", res.Status())
	}
}

func (h *ProductHandler) deindexProduct(c echo.Context, id string) {
	if h.ES == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	res, err := h.ES.Delete(h.ESIndex, id, h.ES.Delete.WithContext(ctx))
	if err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
		return
	}
	res.Body.Close()
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id := c.Param("id")

	var product models.Product
	if err := h.DB.Where("id = ?", id).First(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	q := h.DB.Model(&models.Product{})
	if category := c.QueryParam("category"); category != "" {
		q = q.Where("category = ?", category)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var items []models.Product
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var req productRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Name == "" || req.Category == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name and category required")
	}
	if req.SellingPrice < 0 || req.PurchasePrice < 0 || req.StockQuantity < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "prices and stock must be non-negative")
	}

	prod := models.Product{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Category:      req.Category,
		ImageURL:      req.ImageURL,
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
		StockQuantity: req.StockQuantity,
		Barcode:       req.Barcode,
		Notes:         req.Notes,
	}
	if err := h.DB.Create(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "product_created",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	h.indexProduct(c, &prod)

	return c.JSON(http.StatusCreated, prod)
}

func (h *ProductHandler) PatchProduct(c echo.Context) error {
	id := c.Param("id")

	var req struct {
		Name          *string  `json:"name"`
		Category      *string  `json:"category"`
		ImageURL      *string  `json:"image_url"`
		PurchasePrice *float64 `json:"purchase_price"`
		SellingPrice  *float64 `json:"selling_price"`
		StockQuantity *int     `json:"stock_quantity"`
		Barcode       *string  `json:"barcode"`
		Notes         *string  `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var prod models.Product
	if err := h.DB.Where("id = ?", id).First(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	if req.Name != nil {
		prod.Name = *req.Name
	}
	if req.Category != nil {
		prod.Category = *req.Category
	}
	if req.ImageURL != nil {
		prod.ImageURL = *req.ImageURL
	}
	if req.PurchasePrice != nil {
		prod.PurchasePrice = *req.PurchasePrice
	}
	if req.SellingPrice != nil {
		if *req.SellingPrice < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "price cannot be negative")
		}
		prod.SellingPrice = *req.SellingPrice
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "stock cannot be negative")
		}
		prod.StockQuantity = *req.StockQuantity
	}
	if req.Barcode != nil {
		prod.Barcode = *req.Barcode
	}
	if req.Notes != nil {
		prod.Notes = *req.Notes
	}

	if err := h.DB.Save(&prod).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	h.publish(c, map[string]any{
		"type":      "product_updated",
		"productID": prod.ID,
		"name":      prod.Name,
	})
	h.indexProduct(c, &prod)

	return c.JSON(http.StatusOK, prod)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	id := c.Param("id")

	res := h.DB.Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, res.Error.Error())
	}
	if res.RowsAffected == 0 {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	h.publish(c, map[string]any{
		"type":      "product_deleted",
		"productID": id,
	})
	h.deindexProduct(c, id)

	return c.NoContent(http.StatusNoContent)
}
