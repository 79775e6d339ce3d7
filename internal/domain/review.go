package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProductID string             `bson:"product_id" json:"product_id"`
	Author    string             `bson:"auteur" json:"auteur"`
	Level     string             `bson:"niveau" json:"niveau"`
	Rating    int                `bson:"rating" json:"rating"`
	Pros      *string            `bson:"pluspunten" json:"pluspunten"`
	Cons      *string            `bson:"minpunten" json:"minpunten"`
	Body      *string            `bson:"review_tekst" json:"review_tekst"`
}

// RatingSummary is the per-product rating total computed from the review collection.
type RatingSummary struct {
	ProductID string `bson:"_id"`
	Sum       int64  `bson:"sum"`
	Count     int64  `bson:"count"`
	// LatestReviewID is the newest review of the group; its timestamp tells
	// how recently the group changed.
	LatestReviewID primitive.ObjectID `bson:"latest"`
}
