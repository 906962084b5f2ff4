package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/storekit/storefront-api/internal/dto"
	"github.com/storekit/storefront-api/internal/model"
	"github.com/storekit/storefront-api/internal/pricing"
	"github.com/storekit/storefront-api/internal/repository"
)

var (
	ErrEmptyOrder         = errors.New("order has no items")
	ErrOrderNotFound      = errors.New("order not found")
	ErrOrderAccessDenied  = errors.New("access denied")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrInvalidPaymentType = errors.New("invalid payment method")
)

// InsufficientStockError names the product so the caller's message can.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s", e.ProductName)
}

// OrderService owns the order lifecycle: creation with stock
// reservation and price snapshotting, payment recording, and status
// transitions with their ownership and role checks.
type OrderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	amqpCh      *amqp.Channel
}

func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, amqpCh *amqp.Channel) *OrderService {
	return &OrderService{orderRepo: orderRepo, productRepo: productRepo, amqpCh: amqpCh}
}

func (s *OrderService) Create(ctx context.Context, userID uuid.UUID, req dto.CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if !req.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentType
	}

	items := make([]model.OrderItem, 0, len(req.Items))
	lines := make([]pricing.LineItem, 0, len(req.Items))
	names := make(map[uuid.UUID]string, len(req.Items))

	for _, it := range req.Items {
		product, err := s.productRepo.GetByID(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("get product: %w", err)
		}
		if product == nil {
			return nil, ErrProductNotFound
		}
		if product.Stock < it.Quantity {
			return nil, &InsufficientStockError{ProductName: product.Name}
		}
		names[product.ID] = product.Name

		image := ""
		if len(product.Images) > 0 {
			image = product.Images[0]
		}

		unit := pricing.UnitPrice(product.Price, product.OnSale, product.SalePercentage)
		items = append(items, model.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     image,
			Quantity:  it.Quantity,
			UnitPrice: unit,
			Size:      it.Size,
			Color:     it.Color,
		})
		lines = append(lines, pricing.LineItem{UnitPrice: unit, Quantity: it.Quantity})
	}

	quote := pricing.QuoteItems(lines)

	shipping := toAddress(req.ShippingAddress)
	billing := shipping
	if req.BillingAddress != nil {
		billing = toAddress(*req.BillingAddress)
	}

	order := &model.Order{
		UserID:          userID,
		Items:           items,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      quote.ItemsPrice,
		TaxPrice:        quote.TaxPrice,
		ShippingPrice:   quote.ShippingPrice,
		TotalPrice:      quote.TotalPrice,
		PaymentInfo: model.PaymentInfo{
			ID:     "pending",
			Status: "pending",
			Method: string(req.PaymentMethod),
		},
		Status: model.OrderStatusProcessing,
	}

	if err := s.orderRepo.CreateWithItems(ctx, order); err != nil {
		var stockErr *repository.InsufficientStockError
		if errors.As(err, &stockErr) {
			return nil, &InsufficientStockError{ProductName: names[stockErr.ProductID]}
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.publishCreated(ctx, order)
	return order, nil
}

func (s *OrderService) publishCreated(ctx context.Context, order *model.Order) {
	if s.amqpCh == nil {
		return
	}
	msg, _ := json.Marshal(model.OrderEvent{OrderID: order.ID, UserID: order.UserID})
	_ = s.amqpCh.PublishWithContext(ctx, "", "orders", false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         msg,
		DeliveryMode: amqp.Persistent,
	})
}

// RecordPayment overwrites the order's payment info. Only the owner may
// record a payment.
func (s *OrderService) RecordPayment(ctx context.Context, orderID, requesterID uuid.UUID, info model.PaymentInfo) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != requesterID {
		return nil, ErrOrderAccessDenied
	}

	if err := s.orderRepo.UpdatePaymentInfo(ctx, orderID, info); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}
	order.PaymentInfo = info
	return order, nil
}

// TransitionStatus moves the order to a new status. Admin only. The
// shipped/delivered timestamps are set the first time their status is
// reached and never overwritten.
func (s *OrderService) TransitionStatus(ctx context.Context, orderID uuid.UUID, requesterRole, newStatus, trackingNumber string) (*model.Order, error) {
	if requesterRole != model.RoleAdmin {
		return nil, ErrOrderAccessDenied
	}
	status := model.OrderStatus(newStatus)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status.Terminal() && order.Status != status {
		return nil, ErrInvalidTransition
	}
	if order.Status == model.OrderStatusDelivered && status != model.OrderStatusRefunded && status != order.Status {
		return nil, ErrInvalidTransition
	}

	order.Status = status
	if trackingNumber != "" {
		order.TrackingNumber = trackingNumber
	}
	now := time.Now()
	if status == model.OrderStatusShipped && order.ShippedAt == nil {
		order.ShippedAt = &now
	}
	if status == model.OrderStatusDelivered && order.DeliveredAt == nil {
		order.DeliveredAt = &now
	}

	if err := s.orderRepo.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	return order, nil
}

// Cancel flags the order Cancelled. The owner may cancel while the
// order is still Processing; admins follow the same pre-shipment rule.
func (s *OrderService) Cancel(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != requesterID && requesterRole != model.RoleAdmin {
		return nil, ErrOrderAccessDenied
	}
	if order.Status != model.OrderStatusProcessing {
		return nil, ErrInvalidTransition
	}

	order.Status = model.OrderStatusCancelled
	if err := s.orderRepo.UpdateStatus(ctx, order); err != nil {
		return nil, fmt.Errorf("cancel order: %w", err)
	}
	return order, nil
}

// Get returns the order to its owner or to an admin.
func (s *OrderService) Get(ctx context.Context, orderID, requesterID uuid.UUID, requesterRole string) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.UserID != requesterID && requesterRole != model.RoleAdmin {
		return nil, ErrOrderAccessDenied
	}
	return order, nil
}

func (s *OrderService) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Order, dto.Pagination, error) {
	offset := (page - 1) * limit
	orders, total, err := s.orderRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, dto.Pagination{}, fmt.Errorf("list orders: %w", err)
	}
	return orders, paginate(page, limit, total), nil
}

func (s *OrderService) ListAll(ctx context.Context, filter repository.OrderFilter, page, limit int) ([]model.Order, dto.Pagination, error) {
	offset := (page - 1) * limit
	orders, total, err := s.orderRepo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, dto.Pagination{}, fmt.Errorf("list all orders: %w", err)
	}
	return orders, paginate(page, limit, total), nil
}

func paginate(page, limit, total int) dto.Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return dto.Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalCount:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

func toAddress(a dto.AddressRequest) model.Address {
	return model.Address{
		Name: a.Name, Phone: a.Phone, Street: a.Street,
		City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country,
	}
}
