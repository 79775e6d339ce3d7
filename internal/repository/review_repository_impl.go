package repository

import (
	"context"

	"github.com/alimikegami/snowboard-review-service/internal/domain"
	"github.com/alimikegami/snowboard-review-service/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const reviewCollection = "review"

type MongoDBReviewRepositoryImpl struct {
	db *mongo.Database
}

func CreateNewMongoDBReviewRepository(db *mongo.Database) ReviewRepository {
	return &MongoDBReviewRepositoryImpl{db: db}
}

func (r *MongoDBReviewRepositoryImpl) collection() (*mongo.Collection, error) {
	if r.db == nil {
		return nil, errs.ErrDatabaseUnavailable
	}

	return r.db.Collection(reviewCollection), nil
}

func (r *MongoDBReviewRepositoryImpl) AddReview(ctx context.Context, data domain.Review) (id primitive.ObjectID, err error) {
	coll, err := r.collection()
	if err != nil {
		return
	}

	result, err := coll.InsertOne(ctx, data)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddReview").Msg("")
		return id, storageError(err)
	}

	return result.InsertedID.(primitive.ObjectID), nil
}

// GetReviewsByProductID matches the stored reference string exactly, so an
// id that is not a valid ObjectID simply yields no reviews.
func (r *MongoDBReviewRepositoryImpl) GetReviewsByProductID(ctx context.Context, productID string) (data []domain.Review, err error) {
	coll, err := r.collection()
	if err != nil {
		return
	}

	cursor, err := coll.Find(ctx, bson.D{{Key: "product_id", Value: productID}})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetReviewsByProductID").Msg("")
		return nil, storageError(err)
	}

	if err = cursor.All(ctx, &data); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetReviewsByProductID").Msg("")
		return nil, storageError(err)
	}

	return data, nil
}

func (r *MongoDBReviewRepositoryImpl) GetRatingSummaries(ctx context.Context, productIDs ...string) (data []domain.RatingSummary, err error) {
	coll, err := r.collection()
	if err != nil {
		return
	}

	pipeline := mongo.Pipeline{}
	if len(productIDs) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.D{
			{Key: "product_id", Value: bson.D{{Key: "$in", Value: productIDs}}},
		}}})
	}

	pipeline = append(pipeline, bson.D{{Key: "$group", Value: bson.D{
		{Key: "_id", Value: "$product_id"},
		{Key: "sum", Value: bson.D{{Key: "$sum", Value: "$rating"}}},
		{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		{Key: "latest", Value: bson.D{{Key: "$max", Value: "$_id"}}},
	}}})

	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetRatingSummaries").Msg("")
		return nil, storageError(err)
	}

	if err = cursor.All(ctx, &data); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetRatingSummaries").Msg("")
		return nil, storageError(err)
	}

	return data, nil
}
