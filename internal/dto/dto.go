package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storekit/storefront-api/internal/model"
)

// --- Auth ---

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
}

// --- Pagination ---

type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	TotalCount  int  `json:"total_count"`
	HasNextPage bool `json:"has_next_page"`
	HasPrevPage bool `json:"has_prev_page"`
}

// --- Product ---

type CreateProductRequest struct {
	Name           string          `json:"name" binding:"required,max=100"`
	Description    string          `json:"description" binding:"required,max=2000"`
	Brand          string          `json:"brand"`
	Category       model.Category  `json:"category" binding:"required"`
	Price          decimal.Decimal `json:"price" binding:"required"`
	Images         []string        `json:"images" binding:"max=10,dive,url"`
	Sizes          []string        `json:"sizes"`
	Colors         []string        `json:"colors"`
	OnSale         bool            `json:"on_sale"`
	SalePercentage int             `json:"sale_percentage" binding:"min=0,max=100"`
	Stock          int             `json:"stock" binding:"min=0"`
	Featured       bool            `json:"featured"`
}

type UpdateProductRequest struct {
	Name           *string          `json:"name"`
	Description    *string          `json:"description"`
	Brand          *string          `json:"brand"`
	Category       *model.Category  `json:"category"`
	Price          *decimal.Decimal `json:"price"`
	Images         *[]string        `json:"images"`
	Sizes          *[]string        `json:"sizes"`
	Colors         *[]string        `json:"colors"`
	OnSale         *bool            `json:"on_sale"`
	SalePercentage *int             `json:"sale_percentage"`
	Stock          *int             `json:"stock"`
	Featured       *bool            `json:"featured"`
}

type ListProductsRequest struct {
	Page      int     `form:"page,default=1" binding:"min=1"`
	Limit     int     `form:"limit,default=12" binding:"min=1,max=100"`
	Search    string  `form:"search"`
	Category  string  `form:"category"`
	Brand     string  `form:"brand"`
	MinPrice  *float64 `form:"min_price"`
	MaxPrice  *float64 `form:"max_price"`
	MinRating *float64 `form:"min_rating"`
	Featured  bool    `form:"featured"`
	OnSale    bool    `form:"on_sale"`
	Sort      string  `form:"sort,default=created_at" binding:"oneof=name price ratings created_at"`
	Order     string  `form:"order,default=desc" binding:"oneof=asc desc"`
}

type ProductResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Brand          string          `json:"brand,omitempty"`
	Category       model.Category  `json:"category"`
	Price          decimal.Decimal `json:"price"`
	Images         []string        `json:"images"`
	Sizes          []string        `json:"sizes,omitempty"`
	Colors         []string        `json:"colors,omitempty"`
	OnSale         bool            `json:"on_sale"`
	SalePercentage int             `json:"sale_percentage,omitempty"`
	Stock          int             `json:"stock"`
	Featured       bool            `json:"featured"`
	Rating         float64         `json:"rating"`
	NumReviews     int             `json:"num_reviews"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type ProductListResponse struct {
	Products   []ProductResponse `json:"products"`
	Pagination Pagination        `json:"pagination"`
}

type CreateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"required,max=500"`
}

type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// --- Cart ---

type AddCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
}

type UpdateCartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
}

type CartItemResponse struct {
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Stock     int             `json:"stock"`
}

type CartResponse struct {
	Items     []CartItemResponse `json:"items"`
	ItemCount int                `json:"item_count"`
	Total     decimal.Decimal    `json:"total"`
}

// --- Order ---

type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
	Size      string    `json:"size"`
	Color     string    `json:"color"`
}

type AddressRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zip_code" binding:"required"`
	Country string `json:"country" binding:"required"`
}

type CreateOrderRequest struct {
	Items           []OrderItemRequest  `json:"items" binding:"required,min=1,dive"`
	ShippingAddress AddressRequest      `json:"shipping_address" binding:"required"`
	BillingAddress  *AddressRequest     `json:"billing_address"`
	PaymentMethod   model.PaymentMethod `json:"payment_method" binding:"required"`
}

type ListOrdersRequest struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

type ListAllOrdersRequest struct {
	Page      int    `form:"page,default=1" binding:"min=1"`
	Limit     int    `form:"limit,default=20" binding:"min=1,max=100"`
	Status    string `form:"status"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type PayOrderRequest struct {
	PaymentInfo PaymentInfoRequest `json:"payment_info" binding:"required"`
}

type PaymentInfoRequest struct {
	ID     string `json:"id" binding:"required"`
	Status string `json:"status" binding:"required"`
	Method string `json:"method"`
}

type UpdateOrderStatusRequest struct {
	OrderStatus    string `json:"order_status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
}

type OrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Name      string          `json:"name"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	UserID          uuid.UUID           `json:"user_id"`
	Items           []OrderItemResponse `json:"items"`
	ShippingAddress model.Address       `json:"shipping_address"`
	BillingAddress  model.Address       `json:"billing_address"`
	PaymentMethod   model.PaymentMethod `json:"payment_method"`
	ItemsPrice      decimal.Decimal     `json:"items_price"`
	TaxPrice        decimal.Decimal     `json:"tax_price"`
	ShippingPrice   decimal.Decimal     `json:"shipping_price"`
	TotalPrice      decimal.Decimal     `json:"total_price"`
	PaymentInfo     model.PaymentInfo   `json:"payment_info"`
	OrderStatus     model.OrderStatus   `json:"order_status"`
	TrackingNumber  string              `json:"tracking_number,omitempty"`
	ShippedAt       *time.Time          `json:"shipped_at,omitempty"`
	DeliveredAt     *time.Time          `json:"delivered_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

type OrderListResponse struct {
	Data       []OrderResponse `json:"data"`
	Pagination Pagination      `json:"pagination"`
}

// --- Payments ---

type CreateIntentRequest struct {
	Amount   float64 `json:"amount" binding:"required,min=0.5"`
	Currency string  `json:"currency" binding:"omitempty,oneof=usd eur gbp"`
}

type CreateIntentResponse struct {
	ClientSecret    string `json:"client_secret"`
	PaymentIntentID string `json:"payment_intent_id"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string    `json:"payment_intent_id" binding:"required"`
	OrderID         uuid.UUID `json:"order_id" binding:"required"`
}

type PaymentMethodResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
