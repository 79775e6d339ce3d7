package dto

import "github.com/alimikegami/snowboard-review-service/internal/domain"

const (
	EventProductCreated = "product_created"
	EventReviewCreated  = "review_created"
)

type KafkaMessage struct {
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

type ReviewCreatedEvent struct {
	Review        domain.Review `json:"review"`
	AverageRating *float64      `json:"gemiddelde_rating"`
}
