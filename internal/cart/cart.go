// Package cart keeps a visitor's pending selection. Each session owns one
// cart; the storage medium is pluggable so the same logic runs against Redis
// in production and an in-memory buffer in tests.
package cart

import (
	"context"
	"encoding/json"
)

type Item struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"imageUrl,omitempty"`
	Quantity  uint    `json:"quantity"`
}

// Storage persists the raw JSON-encoded item list under one key.
// Load returns (nil, nil) when nothing is stored.
type Storage interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Delete(ctx context.Context) error
}

type Cart struct {
	storage   Storage
	observers []func([]Item)
}

func New(storage Storage) *Cart {
	return &Cart{storage: storage}
}

// Subscribe registers fn to be called synchronously after every successful
// mutation, with the resulting item list.
func (c *Cart) Subscribe(fn func([]Item)) {
	c.observers = append(c.observers, fn)
}

func (c *Cart) notify(items []Item) {
	for _, fn := range c.observers {
		fn(items)
	}
}

// Get returns the current items in insertion order. Unparseable stored data
// degrades to an empty cart instead of an error.
func (c *Cart) Get(ctx context.Context) ([]Item, error) {
	raw, err := c.storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return []Item{}, nil
	}
	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return []Item{}, nil
	}
	return items, nil
}

func (c *Cart) save(ctx context.Context, items []Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return err
	}
	if err := c.storage.Save(ctx, data); err != nil {
		return err
	}
	c.notify(items)
	return nil
}

// Add appends a new entry or, if the product is already in the cart,
// increments its quantity. Quantities below 1 count as 1.
func (c *Cart) Add(ctx context.Context, item Item, quantity uint) ([]Item, error) {
	if quantity < 1 {
		quantity = 1
	}
	items, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range items {
		if items[i].ProductID == item.ProductID {
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		item.Quantity = quantity
		items = append(items, item)
	}
	if err := c.save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// SetQuantity clamps to a minimum of 1; removal goes through Remove.
func (c *Cart) SetQuantity(ctx context.Context, productID string, quantity uint) ([]Item, error) {
	if quantity < 1 {
		quantity = 1
	}
	items, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	changed := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			changed = true
			break
		}
	}
	if !changed {
		return items, nil
	}
	if err := c.save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Cart) Remove(ctx context.Context, productID string) ([]Item, error) {
	items, err := c.Get(ctx)
	if err != nil {
		return nil, err
	}
	kept := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}
	if err := c.save(ctx, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (c *Cart) Clear(ctx context.Context) error {
	if err := c.storage.Delete(ctx); err != nil {
		return err
	}
	c.notify([]Item{})
	return nil
}

func (c *Cart) Total(ctx context.Context) (float64, error) {
	items, err := c.Get(ctx)
	if err != nil {
		return 0, err
	}
	return Total(items), nil
}

func (c *Cart) Count(ctx context.Context) (uint, error) {
	items, err := c.Get(ctx)
	if err != nil {
		return 0, err
	}
	return Count(items), nil
}

func Total(items []Item) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

func Count(items []Item) uint {
	var n uint
	for _, it := range items {
		n += it.Quantity
	}
	return n
}
