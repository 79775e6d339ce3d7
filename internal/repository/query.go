package repository

import (
	"regexp"
	"strings"

	"github.com/alimikegami/snowboard-review-service/internal/dto"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BuildProductFilter turns the listing filters into a product predicate.
// Blank filters are ignored; without any filter the predicate matches everything.
func BuildProductFilter(param dto.ProductFilter) bson.D {
	filter := bson.D{}

	if term := strings.TrimSpace(param.Zoekterm); term != "" {
		rx := containsIgnoreCase(term)
		filter = append(filter, bson.E{Key: "$or", Value: bson.A{
			bson.D{{Key: "naam", Value: rx}},
			bson.D{{Key: "beschrijving", Value: rx}},
			bson.D{{Key: "tags", Value: rx}},
		}})
	}

	if style := strings.TrimSpace(param.Stijl); style != "" {
		filter = append(filter, bson.E{Key: "stijl", Value: containsIgnoreCase(style)})
	}

	if brand := strings.TrimSpace(param.Merk); brand != "" {
		filter = append(filter, bson.E{Key: "merk", Value: containsIgnoreCase(brand)})
	}

	return filter
}

func containsIgnoreCase(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}
