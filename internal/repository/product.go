package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storekit/storefront-api/internal/model"
)

// ProductFilter narrows catalog listings. Zero values mean "no filter".
type ProductFilter struct {
	Search    string
	Category  string
	Brand     string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	Featured  bool
	OnSale    bool
	Sort      string
	Order     string
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	AddReview(ctx context.Context, review *model.Review) error
	ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error)
	UpdateRating(ctx context.Context, productID uuid.UUID, rating float64, numReviews int) error
	Categories(ctx context.Context) ([]string, error)
	Brands(ctx context.Context) ([]string, error)
}

type pgProductRepo struct{ pool *pgxpool.Pool }

func NewProductRepository(pool *pgxpool.Pool) ProductRepository {
	return &pgProductRepo{pool: pool}
}

const productColumns = `id, name, description, brand, category, price, images, sizes, colors,
	on_sale, sale_percentage, stock, featured, rating, num_reviews, created_at, updated_at`

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Brand, &p.Category, &p.Price,
		&p.Images, &p.Sizes, &p.Colors,
		&p.OnSale, &p.SalePercentage, &p.Stock, &p.Featured, &p.Rating,
		&p.NumReviews, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *pgProductRepo) Create(ctx context.Context, product *model.Product) error {
	product.ID = uuid.New()
	query := `INSERT INTO products (id, name, description, brand, category, price, images, sizes,
				colors, on_sale, sale_percentage, stock, featured, created_at, updated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
			  RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Brand, product.Category,
		product.Price, product.Images, product.Sizes, product.Colors,
		product.OnSale, product.SalePercentage, product.Stock, product.Featured,
	).Scan(&product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p := &model.Product{}
	err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id), p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *pgProductRepo) List(ctx context.Context, filter ProductFilter, limit, offset int) ([]model.Product, int, error) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg(filter.Search)
		conds = append(conds, fmt.Sprintf("(name ILIKE '%%' || %s || '%%' OR description ILIKE '%%' || %s || '%%')", p, p))
	}
	if filter.Category != "" {
		conds = append(conds, "category = "+arg(filter.Category))
	}
	if filter.Brand != "" {
		conds = append(conds, "brand = "+arg(filter.Brand))
	}
	if filter.MinPrice != nil {
		conds = append(conds, "price >= "+arg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conds = append(conds, "price <= "+arg(*filter.MaxPrice))
	}
	if filter.MinRating != nil {
		conds = append(conds, "rating >= "+arg(*filter.MinRating))
	}
	if filter.Featured {
		conds = append(conds, "featured = TRUE")
	}
	if filter.OnSale {
		conds = append(conds, "on_sale = TRUE")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	allowedSorts := map[string]string{"name": "name", "price": "price", "ratings": "rating", "created_at": "created_at"}
	sort, ok := allowedSorts[filter.Sort]
	if !ok {
		sort = "created_at"
	}
	order := "desc"
	if filter.Order == "asc" {
		order = "asc"
	}

	query := fmt.Sprintf(`SELECT `+productColumns+` FROM products%s ORDER BY %s %s LIMIT %s OFFSET %s`,
		where, sort, order, arg(limit), arg(offset))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, 0, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, total, nil
}

func (r *pgProductRepo) Update(ctx context.Context, product *model.Product) error {
	query := `UPDATE products SET name=$2, description=$3, brand=$4, category=$5, price=$6,
				images=$7, sizes=$8, colors=$9, on_sale=$10, sale_percentage=$11, stock=$12,
				featured=$13, updated_at=NOW()
			  WHERE id=$1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		product.ID, product.Name, product.Description, product.Brand, product.Category,
		product.Price, product.Images, product.Sizes, product.Colors,
		product.OnSale, product.SalePercentage, product.Stock, product.Featured,
	).Scan(&product.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *pgProductRepo) AddReview(ctx context.Context, review *model.Review) error {
	review.ID = uuid.New()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO product_reviews (id, product_id, user_id, user_name, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NOW()) RETURNING created_at`,
		review.ID, review.ProductID, review.UserID, review.UserName, review.Rating, review.Comment,
	).Scan(&review.CreatedAt)
	if err != nil {
		return fmt.Errorf("add review: %w", err)
	}
	return nil
}

func (r *pgProductRepo) ListReviews(ctx context.Context, productID uuid.UUID) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, product_id, user_id, user_name, rating, comment, created_at
		 FROM product_reviews WHERE product_id = $1 ORDER BY created_at DESC`, productID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.UserName, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	return reviews, nil
}

func (r *pgProductRepo) UpdateRating(ctx context.Context, productID uuid.UUID, rating float64, numReviews int) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE products SET rating = $2, num_reviews = $3, updated_at = NOW() WHERE id = $1`,
		productID, rating, numReviews)
	if err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	return nil
}

func (r *pgProductRepo) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *pgProductRepo) Brands(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "brand")
}

func (r *pgProductRepo) distinct(ctx context.Context, column string) ([]string, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT DISTINCT %s FROM products WHERE %s <> '' ORDER BY %s`, column, column, column))
	if err != nil {
		return nil, fmt.Errorf("list %s values: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan %s: %w", column, err)
		}
		values = append(values, v)
	}
	return values, nil
}
