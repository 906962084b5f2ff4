package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/storekit/storefront-api/internal/dto"
	"github.com/storekit/storefront-api/internal/model"
	"github.com/storekit/storefront-api/internal/pricing"
	"github.com/storekit/storefront-api/internal/repository"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidCategory = errors.New("invalid category")
	ErrAlreadyReviewed = errors.New("product already reviewed")
)

const productCacheTTL = 60 * time.Second

type ProductService struct {
	productRepo repository.ProductRepository
	redisClient *redis.Client
}

func NewProductService(productRepo repository.ProductRepository, redisClient *redis.Client) *ProductService {
	return &ProductService{productRepo: productRepo, redisClient: redisClient}
}

func (s *ProductService) Create(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if !req.Category.Valid() {
		return nil, ErrInvalidCategory
	}
	product := &model.Product{
		Name:           req.Name,
		Description:    req.Description,
		Brand:          req.Brand,
		Category:       req.Category,
		Price:          req.Price,
		Images:         req.Images,
		Sizes:          req.Sizes,
		Colors:         req.Colors,
		OnSale:         req.OnSale,
		SalePercentage: req.SalePercentage,
		Stock:          req.Stock,
		Featured:       req.Featured,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	cacheKey := "product:" + id.String()

	// Try cache
	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var resp dto.ProductResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return &resp, nil
			}
		}
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	resp := toProductResponse(product)

	// Write to cache
	if s.redisClient != nil {
		if data, err := json.Marshal(resp); err == nil {
			s.redisClient.Set(ctx, cacheKey, data, productCacheTTL)
		}
	}

	return &resp, nil
}

func (s *ProductService) List(ctx context.Context, req dto.ListProductsRequest) (*dto.ProductListResponse, error) {
	offset := (req.Page - 1) * req.Limit
	filter := repository.ProductFilter{
		Search:    req.Search,
		Category:  req.Category,
		Brand:     req.Brand,
		MinPrice:  req.MinPrice,
		MaxPrice:  req.MaxPrice,
		MinRating: req.MinRating,
		Featured:  req.Featured,
		OnSale:    req.OnSale,
		Sort:      req.Sort,
		Order:     req.Order,
	}
	products, total, err := s.productRepo.List(ctx, filter, req.Limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	items := make([]dto.ProductResponse, 0, len(products))
	for i := range products {
		items = append(items, toProductResponse(&products[i]))
	}

	return &dto.ProductListResponse{
		Products:   items,
		Pagination: paginate(req.Page, req.Limit, total),
	}, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, ErrInvalidCategory
		}
		product.Category = *req.Category
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Images != nil {
		product.Images = *req.Images
	}
	if req.Sizes != nil {
		product.Sizes = *req.Sizes
	}
	if req.Colors != nil {
		product.Colors = *req.Colors
	}
	if req.OnSale != nil {
		product.OnSale = *req.OnSale
	}
	if req.SalePercentage != nil {
		product.SalePercentage = *req.SalePercentage
	}
	if req.Stock != nil {
		product.Stock = *req.Stock
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.invalidateCache(ctx, id)
	resp := toProductResponse(product)
	return &resp, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	s.invalidateCache(ctx, id)
	return nil
}

// AddReview appends a review (one per user per product) and recomputes
// the product's average rating from the full review set.
func (s *ProductService) AddReview(ctx context.Context, productID, userID uuid.UUID, userName string, req dto.CreateReviewRequest) error {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("get product: %w", err)
	}
	if product == nil {
		return ErrProductNotFound
	}

	reviews, err := s.productRepo.ListReviews(ctx, productID)
	if err != nil {
		return fmt.Errorf("list reviews: %w", err)
	}
	for _, rv := range reviews {
		if rv.UserID == userID {
			return ErrAlreadyReviewed
		}
	}

	review := &model.Review{
		ProductID: productID,
		UserID:    userID,
		UserName:  userName,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.productRepo.AddReview(ctx, review); err != nil {
		return fmt.Errorf("add review: %w", err)
	}

	ratings := make([]int, 0, len(reviews)+1)
	for _, rv := range reviews {
		ratings = append(ratings, rv.Rating)
	}
	ratings = append(ratings, review.Rating)

	avg := pricing.AverageRating(ratings)
	if err := s.productRepo.UpdateRating(ctx, productID, avg, len(ratings)); err != nil {
		return fmt.Errorf("update rating: %w", err)
	}

	s.invalidateCache(ctx, productID)
	return nil
}

func (s *ProductService) ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	return s.productRepo.ListReviews(ctx, productID)
}

func (s *ProductService) Categories(ctx context.Context) ([]string, error) {
	return s.productRepo.Categories(ctx)
}

func (s *ProductService) Brands(ctx context.Context) ([]string, error) {
	return s.productRepo.Brands(ctx)
}

func (s *ProductService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if s.redisClient != nil {
		s.redisClient.Del(ctx, "product:"+id.String())
	}
}

func toProductResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Brand:          p.Brand,
		Category:       p.Category,
		Price:          p.Price,
		Images:         p.Images,
		Sizes:          p.Sizes,
		Colors:         p.Colors,
		OnSale:         p.OnSale,
		SalePercentage: p.SalePercentage,
		Stock:          p.Stock,
		Featured:       p.Featured,
		Rating:         p.Rating,
		NumReviews:     p.NumReviews,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
