package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/storekit/storefront-api/internal/cart"
	"github.com/storekit/storefront-api/internal/repository"
)

// CartService orchestrates the cart aggregate against the snapshot
// store and the catalog.
type CartService struct {
	store       cart.Store
	productRepo repository.ProductRepository
}

func NewCartService(store cart.Store, productRepo repository.ProductRepository) *CartService {
	return &CartService{store: store, productRepo: productRepo}
}

func (s *CartService) Get(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	return s.store.Load(ctx, userID)
}

func (s *CartService) AddItem(ctx context.Context, userID, productID uuid.UUID, quantity int, size, color string) (*cart.Cart, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}
	c.Add(cart.Item{
		ProductID:      product.ID,
		Name:           product.Name,
		Image:          image,
		Price:          product.Price,
		Quantity:       quantity,
		Size:           size,
		Color:          color,
		Stock:          product.Stock,
		OnSale:         product.OnSale,
		SalePercentage: product.SalePercentage,
	})
	if err := s.store.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateItem sets the line's quantity, refreshing the stock ceiling
// from the catalog first so the clamp uses current stock.
func (s *CartService) UpdateItem(ctx context.Context, userID, productID uuid.UUID, quantity int, size, color string) (*cart.Cart, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Best-effort refresh: on lookup failure the clamp falls back to
	// the stock ceiling already stored on the line.
	if product, err := s.productRepo.GetByID(ctx, productID); err == nil && product != nil {
		c.ReconcileStock(product.ID, product.Stock)
	}

	c.SetQuantity(cart.Key{ProductID: productID, Size: size, Color: color}, quantity)
	if err := s.store.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID uuid.UUID, size, color string) (*cart.Cart, error) {
	c, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.Remove(cart.Key{ProductID: productID, Size: size, Color: color})
	if err := s.store.Save(ctx, userID, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.store.Delete(ctx, userID)
}
