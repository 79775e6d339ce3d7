package domain

import (
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Product struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"naam" json:"naam"`
	Brand         string             `bson:"merk" json:"merk"`
	Style         string             `bson:"stijl" json:"stijl"`
	PriceEUR      float64            `bson:"prijseur" json:"prijseur"`
	Description   *string            `bson:"beschrijving" json:"beschrijving"`
	ImageURL      *string            `bson:"afbeelding_url" json:"afbeelding_url"`
	AffiliateURL  *string            `bson:"affiliate_url" json:"affiliate_url"`
	AverageRating *float64           `bson:"gemiddelde_rating" json:"gemiddelde_rating"`
	Tags          []string           `bson:"tags" json:"tags"`
	RatingSum     int64              `bson:"rating_sum" json:"-"`
	RatingCount   int64              `bson:"rating_count" json:"-"`
	// RatingVersion grows by one on every aggregate write and orders
	// snapshots of the same product.
	RatingVersion int64 `bson:"rating_version" json:"-"`
}

// HasUntrackedRating reports whether the product carries an average that was
// written without the sum/count accumulator, so incrementing it would be wrong.
func (p Product) HasUntrackedRating() bool {
	return p.AverageRating != nil && p.RatingCount == 0
}

// AverageRating returns sum/count rounded to two decimals. Rounding works on
// the exact value of the quotient, so 43/40 (stored as 1.07499...) gives 1.07.
func AverageRating(sum, count int64) float64 {
	if count == 0 {
		return 0
	}

	avg := float64(sum) / float64(count)
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(avg, 'f', 2, 64), 64)
	if err != nil {
		return avg
	}

	return rounded
}
