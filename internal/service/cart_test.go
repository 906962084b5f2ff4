package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/storefront-api/internal/cart"
	"github.com/storekit/storefront-api/internal/model"
)

type fakeCartStore struct {
	carts map[uuid.UUID]*cart.Cart
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: make(map[uuid.UUID]*cart.Cart)}
}

func (f *fakeCartStore) Load(_ context.Context, userID uuid.UUID) (*cart.Cart, error) {
	if c, ok := f.carts[userID]; ok {
		return c, nil
	}
	return cart.New(), nil
}

func (f *fakeCartStore) Save(_ context.Context, userID uuid.UUID, c *cart.Cart) error {
	f.carts[userID] = c
	return nil
}

func (f *fakeCartStore) Delete(_ context.Context, userID uuid.UUID) error {
	delete(f.carts, userID)
	return nil
}

func TestCartService_AddItem_ProductNotFound(t *testing.T) {
	svc := NewCartService(newFakeCartStore(), newMockProductRepo())
	_, err := svc.AddItem(context.Background(), uuid.New(), uuid.New(), 1, "", "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_AddItem_PersistsSnapshot(t *testing.T) {
	productRepo := newMockProductRepo()
	pid := uuid.New()
	productRepo.products[pid] = &model.Product{
		ID: pid, Name: "Mug", Category: model.CategoryOther,
		Price: decimal.NewFromInt(12), Stock: 5,
	}
	store := newFakeCartStore()
	userID := uuid.New()

	svc := NewCartService(store, productRepo)
	c, err := svc.AddItem(context.Background(), userID, pid, 2, "", "blue")
	require.NoError(t, err)
	assert.Equal(t, 2, c.ItemCount)
	assert.True(t, c.Total.Equal(decimal.NewFromInt(24)))

	saved, ok := store.carts[userID]
	require.True(t, ok)
	assert.Equal(t, 2, saved.ItemCount)
}

func TestCartService_UpdateItem_ClampsToRefreshedStock(t *testing.T) {
	productRepo := newMockProductRepo()
	pid := uuid.New()
	productRepo.products[pid] = &model.Product{
		ID: pid, Name: "Mug", Category: model.CategoryOther,
		Price: decimal.NewFromInt(12), Stock: 10,
	}
	store := newFakeCartStore()
	userID := uuid.New()

	svc := NewCartService(store, productRepo)
	_, err := svc.AddItem(context.Background(), userID, pid, 2, "", "")
	require.NoError(t, err)

	// Stock drops after the line was added; the clamp must see the
	// current value.
	productRepo.products[pid].Stock = 3

	c, err := svc.UpdateItem(context.Background(), userID, pid, 8, "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, c.ItemCount)
}

func TestCartService_UpdateItem_ZeroRemovesLine(t *testing.T) {
	productRepo := newMockProductRepo()
	pid := uuid.New()
	productRepo.products[pid] = &model.Product{
		ID: pid, Name: "Mug", Category: model.CategoryOther,
		Price: decimal.NewFromInt(12), Stock: 10,
	}
	store := newFakeCartStore()
	userID := uuid.New()

	svc := NewCartService(store, productRepo)
	_, err := svc.AddItem(context.Background(), userID, pid, 2, "", "")
	require.NoError(t, err)

	c, err := svc.UpdateItem(context.Background(), userID, pid, 0, "", "")
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0, c.ItemCount)
}

func TestCartService_RemoveItem_MatchesVariant(t *testing.T) {
	productRepo := newMockProductRepo()
	pid := uuid.New()
	productRepo.products[pid] = &model.Product{
		ID: pid, Name: "Shirt", Category: model.CategoryClothing,
		Price: decimal.NewFromInt(20), Stock: 10,
	}
	store := newFakeCartStore()
	userID := uuid.New()

	svc := NewCartService(store, productRepo)
	_, err := svc.AddItem(context.Background(), userID, pid, 1, "M", "red")
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), userID, pid, 1, "L", "red")
	require.NoError(t, err)

	c, err := svc.RemoveItem(context.Background(), userID, pid, "M", "red")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "L", c.Items[0].Size)
}

func TestCartService_Clear(t *testing.T) {
	store := newFakeCartStore()
	userID := uuid.New()
	store.carts[userID] = cart.New()

	svc := NewCartService(store, newMockProductRepo())
	require.NoError(t, svc.Clear(context.Background(), userID))

	_, ok := store.carts[userID]
	assert.False(t, ok)
}
