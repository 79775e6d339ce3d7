package repository

import (
	"context"

	"github.com/alimikegami/snowboard-review-service/internal/domain"
	"github.com/alimikegami/snowboard-review-service/internal/dto"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProductRepository interface {
	HandleTrx(ctx context.Context, fn func(ctx context.Context) error) error
	AddProduct(ctx context.Context, data domain.Product) (id primitive.ObjectID, err error)
	GetProducts(ctx context.Context, param dto.ProductFilter) (data []domain.Product, err error)
	GetProductByID(ctx context.Context, id string) (product domain.Product, err error)
	// ApplyReviewRating folds one rating into the running sum and count and
	// returns the product with its new average.
	ApplyReviewRating(ctx context.Context, id primitive.ObjectID, rating int) (product domain.Product, err error)
	// SetRatingAggregate replaces sum and count when the stored rating version
	// still equals expectedVersion, and returns errs.ErrConflict when it does not.
	SetRatingAggregate(ctx context.Context, id primitive.ObjectID, sum, count, expectedVersion int64) (product domain.Product, err error)
}

type ReviewRepository interface {
	AddReview(ctx context.Context, data domain.Review) (id primitive.ObjectID, err error)
	GetReviewsByProductID(ctx context.Context, productID string) (data []domain.Review, err error)
	// GetRatingSummaries groups reviews by product. Without ids every product is summarized.
	GetRatingSummaries(ctx context.Context, productIDs ...string) (data []domain.RatingSummary, err error)
}

type ProductCache interface {
	GetProduct(ctx context.Context, id string) (product domain.Product, found bool, err error)
	// FillProduct stores a snapshot read from the database, unless an entry
	// for the product already exists.
	FillProduct(ctx context.Context, product domain.Product) (err error)
	// SetProduct stores a freshly updated product unless the cached entry has
	// a newer rating version.
	SetProduct(ctx context.Context, product domain.Product) (err error)
}
