// Package cart models the shopping cart as an owned aggregate. Lines
// are keyed by product and variant; every mutation recomputes the
// derived count and total before the whole snapshot is persisted.
package cart

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storekit/storefront-api/internal/pricing"
)

// Key identifies a cart line. Two lines with the same key are merged.
type Key struct {
	ProductID uuid.UUID
	Size      string
	Color     string
}

type Item struct {
	ProductID      uuid.UUID       `json:"product_id"`
	Name           string          `json:"name"`
	Image          string          `json:"image,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Quantity       int             `json:"quantity"`
	Size           string          `json:"size,omitempty"`
	Color          string          `json:"color,omitempty"`
	Stock          int             `json:"stock"`
	OnSale         bool            `json:"on_sale,omitempty"`
	SalePercentage int             `json:"sale_percentage,omitempty"`
}

func (i Item) key() Key {
	return Key{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

type Cart struct {
	Items     []Item          `json:"items"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

func New() *Cart {
	return &Cart{Total: decimal.Zero}
}

// Add merges the quantity into an existing line with the same key or
// appends a new line.
func (c *Cart) Add(item Item) {
	for i := range c.Items {
		if c.Items[i].key() == item.key() {
			c.Items[i].Quantity += item.Quantity
			c.recompute()
			return
		}
	}
	c.Items = append(c.Items, item)
	c.recompute()
}

func (c *Cart) Remove(key Key) {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.key() != key {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.recompute()
}

// SetQuantity clamps the requested quantity to the line's stock ceiling
// and removes the line when the request drops to zero or below.
func (c *Cart) SetQuantity(key Key, quantity int) {
	if quantity <= 0 {
		c.Remove(key)
		return
	}
	for i := range c.Items {
		if c.Items[i].key() == key {
			if quantity > c.Items[i].Stock {
				quantity = c.Items[i].Stock
			}
			c.Items[i].Quantity = quantity
			break
		}
	}
	c.recompute()
}

// ReconcileStock applies a fresh stock ceiling pushed from the catalog,
// clamping any line that now exceeds it.
func (c *Cart) ReconcileStock(productID uuid.UUID, stock int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Stock = stock
			if c.Items[i].Quantity > stock {
				c.Items[i].Quantity = stock
			}
		}
	}
	c.recompute()
}

func (c *Cart) RemoveOutOfStock() {
	kept := c.Items[:0]
	for _, it := range c.Items {
		if it.Stock > 0 {
			kept = append(kept, it)
		}
	}
	c.Items = kept
	c.recompute()
}

func (c *Cart) Clear() {
	c.Items = nil
	c.recompute()
}

func (c *Cart) recompute() {
	count := 0
	total := decimal.Zero
	for _, it := range c.Items {
		count += it.Quantity
		unit := pricing.UnitPrice(it.Price, it.OnSale, it.SalePercentage)
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	c.ItemCount = count
	c.Total = total
}
