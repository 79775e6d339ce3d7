package service

import (
	"context"

	"github.com/alimikegami/snowboard-review-service/internal/domain"
	"github.com/alimikegami/snowboard-review-service/internal/dto"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ProductService interface {
	AddProduct(ctx context.Context, data dto.ProductRequest) (id string, err error)
	GetProducts(ctx context.Context, param dto.ProductFilter) (data []domain.Product, err error)
	GetProductByID(ctx context.Context, id string) (product domain.Product, err error)
}

type ReviewService interface {
	AddReview(ctx context.Context, data dto.ReviewRequest) (id string, err error)
	GetProductReviews(ctx context.Context, productID string) (data []domain.Review, err error)
	// RecalculateRating rebuilds a product's rating aggregate from its reviews.
	RecalculateRating(ctx context.Context, productID string) (product domain.Product, err error)
	// ReconcileRatings recalculates the aggregate of every reviewed product.
	// Products with very recent reviews or a concurrent update are left for
	// the next run.
	ReconcileRatings(ctx context.Context) (err error)
}

type HealthService interface {
	CheckHealth(ctx context.Context) dto.HealthResponse
}

// EventPublisher is satisfied by the kafka producer.
type EventPublisher interface {
	WriteMessage(ctx context.Context, key string, value []byte) error
}

// DatabaseInspector is the part of *mongo.Database the diagnostics need.
type DatabaseInspector interface {
	Name() string
	ListCollectionNames(ctx context.Context, filter interface{}, opts ...*options.ListCollectionsOptions) ([]string, error)
}
