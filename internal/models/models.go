package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Product struct {
	ID            string    `gorm:"primaryKey"     json:"id"`
	Name          string    `gorm:"not null"       json:"name"`
	Category      string    `gorm:"not null;index" json:"category"`
	ImageURL      string    `json:"image_url,omitempty"`
	PurchasePrice float64   `gorm:"not null"       json:"purchase_price"`
	SellingPrice  float64   `gorm:"not null"       json:"selling_price"`
	StockQuantity int       `gorm:"not null"       json:"stock_quantity"`
	Barcode       string    `json:"barcode,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Customer struct {
	ID        string    `gorm:"primaryKey"            json:"id"`
	FirstName string    `gorm:"not null"              json:"first_name"`
	LastName  string    `gorm:"not null"              json:"last_name"`
	Email     string    `gorm:"uniqueIndex;not null"  json:"email"`
	Phone     string    `json:"phone"`
	City      string    `json:"city"`
	Street    string    `json:"street"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrderItem is a snapshot of a product at submission time. Later edits to
// the product do not change historical orders.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  uint    `json:"quantity"`
	ImageURL  string  `json:"imageUrl,omitempty"`
}

// OrderItems is stored as one JSON column, mirroring the orders table of the
// hosted original.
type OrderItems []OrderItem

func (items OrderItems) Value() (driver.Value, error) {
	return json.Marshal(items)
}

func (items *OrderItems) Scan(src any) error {
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, items)
	case string:
		return json.Unmarshal([]byte(v), items)
	case nil:
		*items = nil
		return nil
	default:
		return fmt.Errorf("order items: unsupported column type %T", src)
	}
}

type Order struct {
	ID                string     `gorm:"primaryKey"  json:"id"`
	CustomerName      string     `gorm:"not null"    json:"customer_name"`
	CustomerFirstName string     `gorm:"not null"    json:"customer_first_name"`
	CustomerLastName  string     `gorm:"not null"    json:"customer_last_name"`
	CustomerEmail     string     `gorm:"index"       json:"customer_email"`
	CustomerPhone     string     `json:"customer_phone"`
	DeliveryCity      string     `gorm:"not null"    json:"delivery_city"`
	DeliveryAddress   string     `gorm:"not null"    json:"delivery_address"`
	Note              string     `json:"note,omitempty"`
	CustomerID        *string    `gorm:"index"       json:"customer_id,omitempty"`
	Items             OrderItems `gorm:"type:json"   json:"items"`
	Subtotal          float64    `gorm:"not null"    json:"subtotal"`
	Total             float64    `gorm:"not null"    json:"total"`
	Status            string     `gorm:"not null;index" json:"status"`
	PaymentMethod     string     `gorm:"not null"    json:"payment_method"`
	IdempotencyKey    *string    `gorm:"uniqueIndex" json:"-"`
	CreatedAt         time.Time  `gorm:"index"       json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type SaleRecord struct {
	ID           string    `gorm:"primaryKey"     json:"id"`
	ProductID    string    `gorm:"index;not null" json:"product_id"`
	ProductName  string    `gorm:"not null"       json:"product_name"`
	QuantitySold int       `gorm:"not null"       json:"quantity_sold"`
	SoldPrice    float64   `gorm:"not null"       json:"sold_price"`
	Profit       float64   `gorm:"not null"       json:"profit"`
	SoldAt       time.Time `gorm:"index"          json:"sold_at"`
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	Role      string `gorm:"not null"        json:"role"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}
