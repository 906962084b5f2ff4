package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storekit/storefront-api/internal/dto"
	"github.com/storekit/storefront-api/internal/model"
	"github.com/storekit/storefront-api/internal/repository"
)

type mockOrderRepo struct {
	orders map[uuid.UUID]*model.Order
	// failStockFor simulates a concurrent depletion detected inside
	// the transaction.
	failStockFor uuid.UUID
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (m *mockOrderRepo) CreateWithItems(_ context.Context, order *model.Order) error {
	for _, it := range order.Items {
		if it.ProductID == m.failStockFor {
			return &repository.InsufficientStockError{ProductID: it.ProductID}
		}
	}
	order.ID = uuid.New()
	order.CreatedAt = time.Now()
	for i := range order.Items {
		order.Items[i].ID = uuid.New()
		order.Items[i].OrderID = order.ID
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	return m.orders[id], nil
}

func (m *mockOrderRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]model.Order, int, error) {
	var all []model.Order
	for _, o := range m.orders {
		if o.UserID == userID {
			all = append(all, *o)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if offset > len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}

func (m *mockOrderRepo) List(_ context.Context, filter repository.OrderFilter, limit, offset int) ([]model.Order, int, error) {
	var all []model.Order
	for _, o := range m.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		all = append(all, *o)
	}
	return all, len(all), nil
}

func (m *mockOrderRepo) UpdatePaymentInfo(_ context.Context, id uuid.UUID, info model.PaymentInfo) error {
	if o, ok := m.orders[id]; ok {
		o.PaymentInfo = info
	}
	return nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, order *model.Order) error {
	m.orders[order.ID] = order
	return nil
}

func validOrderRequest(productID uuid.UUID, quantity int) dto.CreateOrderRequest {
	return dto.CreateOrderRequest{
		Items: []dto.OrderItemRequest{{ProductID: productID, Quantity: quantity}},
		ShippingAddress: dto.AddressRequest{
			Name: "Jane Doe", Phone: "555-0101", Street: "1 Main St",
			City: "Springfield", State: "IL", ZipCode: "62704", Country: "US",
		},
		PaymentMethod: model.PaymentCreditCard,
	}
}

func saleProduct(repo *mockProductRepo, stock int) uuid.UUID {
	pid := uuid.New()
	repo.products[pid] = &model.Product{
		ID: pid, Name: "Headphones", Category: model.CategoryElectronics,
		Price:  decimal.NewFromInt(100),
		Images: []string{"https://cdn.example.com/headphones.jpg"},
		OnSale: true, SalePercentage: 20, Stock: stock,
	}
	return pid
}

func TestOrderService_Create_EmptyOrder(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), newMockProductRepo(), nil)
	req := validOrderRequest(uuid.New(), 1)
	req.Items = nil
	_, err := svc.Create(context.Background(), uuid.New(), req)
	assert.ErrorIs(t, err, ErrEmptyOrder)
}

func TestOrderService_Create_ProductNotFound(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), newMockProductRepo(), nil)
	_, err := svc.Create(context.Background(), uuid.New(), validOrderRequest(uuid.New(), 1))
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestOrderService_Create_InsufficientStock(t *testing.T) {
	productRepo := newMockProductRepo()
	pid := saleProduct(productRepo, 1)
	orderRepo := newMockOrderRepo()

	svc := NewOrderService(orderRepo, productRepo, nil)
	_, err := svc.Create(context.Background(), uuid.New(), validOrderRequest(pid, 2))

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Headphones", stockErr.ProductName)
	assert.Empty(t, orderRepo.orders)
	assert.Equal(t, 1, productRepo.products[pid].Stock)
}

func TestOrderService_Create_StockRace(t *testing.T) {
	productRepo := newMockProductRepo()
	pid := saleProduct(productRepo, 5)
	orderRepo := newMockOrderRepo()
	orderRepo.failStockFor = pid

	svc := NewOrderService(orderRepo, productRepo, nil)
	_, err := svc.Create(context.Background(), uuid.New(), validOrderRequest(pid, 1))

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "Headphones", stockErr.ProductName)
	assert.Empty(t, orderRepo.orders)
}

func TestOrderService_Create_PricesAndSnapshot(t *testing.T) {
	productRepo := newMockProductRepo()
	pid := saleProduct(productRepo, 10)
	orderRepo := newMockOrderRepo()

	svc := NewOrderService(orderRepo, productRepo, nil)
	order, err := svc.Create(context.Background(), uuid.New(), validOrderRequest(pid, 2))
	require.NoError(t, err)

	assert.True(t, order.ItemsPrice.Equal(decimal.NewFromInt(160)), "items=%s", order.ItemsPrice)
	assert.True(t, order.ShippingPrice.Equal(decimal.Zero))
	assert.True(t, order.TaxPrice.Equal(decimal.NewFromFloat(12.80)), "tax=%s", order.TaxPrice)
	assert.True(t, order.TotalPrice.Equal(decimal.NewFromFloat(172.80)), "total=%s", order.TotalPrice)

	require.Len(t, order.Items, 1)
	assert.Equal(t, "Headphones", order.Items[0].Name)
	assert.Equal(t, "https://cdn.example.com/headphones.jpg", order.Items[0].Image)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(80)))

	assert.Equal(t, model.OrderStatusProcessing, order.Status)
	assert.Equal(t, "pending", order.PaymentInfo.Status)
}

func TestOrderService_Create_BillingDefaultsToShipping(t *testing.T) {
	productRepo := newMockProductRepo()
	pid := saleProduct(productRepo, 10)

	svc := NewOrderService(newMockOrderRepo(), productRepo, nil)
	order, err := svc.Create(context.Background(), uuid.New(), validOrderRequest(pid, 1))
	require.NoError(t, err)
	assert.Equal(t, order.ShippingAddress, order.BillingAddress)
}

func TestOrderService_Create_ExplicitBillingAddress(t *testing.T) {
	productRepo := newMockProductRepo()
	pid := saleProduct(productRepo, 10)

	req := validOrderRequest(pid, 1)
	req.BillingAddress = &dto.AddressRequest{
		Name: "Jane Doe", Phone: "555-0101", Street: "9 Billing Rd",
		City: "Springfield", State: "IL", ZipCode: "62704", Country: "US",
	}

	svc := NewOrderService(newMockOrderRepo(), productRepo, nil)
	order, err := svc.Create(context.Background(), uuid.New(), req)
	require.NoError(t, err)
	assert.Equal(t, "9 Billing Rd", order.BillingAddress.Street)
	assert.NotEqual(t, order.ShippingAddress, order.BillingAddress)
}

func TestOrderService_RecordPayment_OwnerOnly(t *testing.T) {
	repo := newMockOrderRepo()
	ownerID := uuid.New()
	orderID := uuid.New()
	repo.orders[orderID] = &model.Order{ID: orderID, UserID: ownerID, Status: model.OrderStatusProcessing}

	svc := NewOrderService(repo, nil, nil)
	info := model.PaymentInfo{ID: "pi_123", Status: "succeeded", Method: "stripe"}

	_, err := svc.RecordPayment(context.Background(), orderID, uuid.New(), info)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)

	order, err := svc.RecordPayment(context.Background(), orderID, ownerID, info)
	require.NoError(t, err)
	assert.Equal(t, "pi_123", order.PaymentInfo.ID)
}

func TestOrderService_RecordPayment_NotFound(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), nil, nil)
	_, err := svc.RecordPayment(context.Background(), uuid.New(), uuid.New(), model.PaymentInfo{})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_TransitionStatus_AdminOnly(t *testing.T) {
	repo := newMockOrderRepo()
	orderID := uuid.New()
	repo.orders[orderID] = &model.Order{ID: orderID, UserID: uuid.New(), Status: model.OrderStatusProcessing}

	svc := NewOrderService(repo, nil, nil)
	_, err := svc.TransitionStatus(context.Background(), orderID, model.RoleCustomer, "Shipped", "")
	assert.ErrorIs(t, err, ErrOrderAccessDenied)
}

func TestOrderService_TransitionStatus_InvalidStatus(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), nil, nil)
	_, err := svc.TransitionStatus(context.Background(), uuid.New(), model.RoleAdmin, "Teleported", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderService_TransitionStatus_ShippedAtSetOnce(t *testing.T) {
	repo := newMockOrderRepo()
	orderID := uuid.New()
	repo.orders[orderID] = &model.Order{ID: orderID, UserID: uuid.New(), Status: model.OrderStatusProcessing}

	svc := NewOrderService(repo, nil, nil)
	order, err := svc.TransitionStatus(context.Background(), orderID, model.RoleAdmin, "Shipped", "TRACK-1")
	require.NoError(t, err)
	require.NotNil(t, order.ShippedAt)
	first := *order.ShippedAt
	assert.Equal(t, "TRACK-1", order.TrackingNumber)

	time.Sleep(5 * time.Millisecond)
	order, err = svc.TransitionStatus(context.Background(), orderID, model.RoleAdmin, "Shipped", "")
	require.NoError(t, err)
	assert.Equal(t, first, *order.ShippedAt)
	assert.Equal(t, "TRACK-1", order.TrackingNumber)
}

func TestOrderService_TransitionStatus_Delivered(t *testing.T) {
	repo := newMockOrderRepo()
	orderID := uuid.New()
	repo.orders[orderID] = &model.Order{ID: orderID, UserID: uuid.New(), Status: model.OrderStatusShipped}

	svc := NewOrderService(repo, nil, nil)
	order, err := svc.TransitionStatus(context.Background(), orderID, model.RoleAdmin, "Delivered", "")
	require.NoError(t, err)
	assert.NotNil(t, order.DeliveredAt)
}

func TestOrderService_TransitionStatus_RefundAfterDelivery(t *testing.T) {
	repo := newMockOrderRepo()
	orderID := uuid.New()
	now := time.Now()
	repo.orders[orderID] = &model.Order{
		ID: orderID, UserID: uuid.New(),
		Status: model.OrderStatusDelivered, DeliveredAt: &now,
	}

	svc := NewOrderService(repo, nil, nil)

	// Delivered only moves to Refunded; going backwards is rejected.
	_, err := svc.TransitionStatus(context.Background(), orderID, model.RoleAdmin, "Shipped", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	order, err := svc.TransitionStatus(context.Background(), orderID, model.RoleAdmin, "Refunded", "")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusRefunded, order.Status)

	_, err = svc.TransitionStatus(context.Background(), orderID, model.RoleAdmin, "Delivered", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_TransitionStatus_TerminalState(t *testing.T) {
	repo := newMockOrderRepo()
	orderID := uuid.New()
	repo.orders[orderID] = &model.Order{ID: orderID, UserID: uuid.New(), Status: model.OrderStatusCancelled}

	svc := NewOrderService(repo, nil, nil)
	_, err := svc.TransitionStatus(context.Background(), orderID, model.RoleAdmin, "Shipped", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_Cancel_OwnerPreShipment(t *testing.T) {
	repo := newMockOrderRepo()
	ownerID := uuid.New()
	orderID := uuid.New()
	repo.orders[orderID] = &model.Order{ID: orderID, UserID: ownerID, Status: model.OrderStatusProcessing}

	svc := NewOrderService(repo, nil, nil)
	order, err := svc.Cancel(context.Background(), orderID, ownerID, model.RoleCustomer)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, order.Status)
}

func TestOrderService_Cancel_AfterShipment(t *testing.T) {
	repo := newMockOrderRepo()
	ownerID := uuid.New()
	orderID := uuid.New()
	repo.orders[orderID] = &model.Order{ID: orderID, UserID: ownerID, Status: model.OrderStatusShipped}

	svc := NewOrderService(repo, nil, nil)
	_, err := svc.Cancel(context.Background(), orderID, ownerID, model.RoleCustomer)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestOrderService_Cancel_StrangerDenied(t *testing.T) {
	repo := newMockOrderRepo()
	orderID := uuid.New()
	repo.orders[orderID] = &model.Order{ID: orderID, UserID: uuid.New(), Status: model.OrderStatusProcessing}

	svc := NewOrderService(repo, nil, nil)
	_, err := svc.Cancel(context.Background(), orderID, uuid.New(), model.RoleCustomer)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)
}

func TestOrderService_Get_OwnershipChecks(t *testing.T) {
	repo := newMockOrderRepo()
	ownerID := uuid.New()
	orderID := uuid.New()
	repo.orders[orderID] = &model.Order{ID: orderID, UserID: ownerID, Status: model.OrderStatusProcessing}

	svc := NewOrderService(repo, nil, nil)

	_, err := svc.Get(context.Background(), orderID, ownerID, model.RoleCustomer)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), orderID, uuid.New(), model.RoleAdmin)
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), orderID, uuid.New(), model.RoleCustomer)
	assert.ErrorIs(t, err, ErrOrderAccessDenied)
}

func TestOrderService_Get_NotFound(t *testing.T) {
	svc := NewOrderService(newMockOrderRepo(), nil, nil)
	_, err := svc.Get(context.Background(), uuid.New(), uuid.New(), model.RoleCustomer)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_ListForUser_Pagination(t *testing.T) {
	repo := newMockOrderRepo()
	userID := uuid.New()
	for i := 0; i < 5; i++ {
		id := uuid.New()
		repo.orders[id] = &model.Order{
			ID: id, UserID: userID, Status: model.OrderStatusProcessing,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		}
	}

	svc := NewOrderService(repo, nil, nil)

	orders, p, err := svc.ListForUser(context.Background(), userID, 1, 2)
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 5, p.TotalCount)
	assert.True(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)
	// Newest first.
	assert.True(t, orders[0].CreatedAt.After(orders[1].CreatedAt))

	orders, p, err = svc.ListForUser(context.Background(), userID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.False(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)
}

func TestPaginate(t *testing.T) {
	p := paginate(1, 10, 0)
	assert.Equal(t, 0, p.TotalPages)
	assert.False(t, p.HasNextPage)
	assert.False(t, p.HasPrevPage)

	p = paginate(2, 10, 21)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage)
}
