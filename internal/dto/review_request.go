package dto

type ReviewRequest struct {
	ProductID *string `json:"product_id" validate:"required"`
	Author    *string `json:"auteur" validate:"required"`
	Level     *string `json:"niveau" validate:"required"`
	Rating    *int    `json:"rating" validate:"required,gte=1,lte=5"`
	Pros      *string `json:"pluspunten"`
	Cons      *string `json:"minpunten"`
	Body      *string `json:"review_tekst"`
}
