package dto

// Required strings are pointers so that presence is checked, not content:
// an explicit "" is a valid name.
type ProductRequest struct {
	Name         *string  `json:"naam" validate:"required"`
	Brand        *string  `json:"merk" validate:"required"`
	Style        *string  `json:"stijl" validate:"required"`
	PriceEUR     *float64 `json:"prijseur" validate:"required,gte=0"`
	Description  *string  `json:"beschrijving"`
	ImageURL     *string  `json:"afbeelding_url" validate:"omitempty,http_url"`
	AffiliateURL *string  `json:"affiliate_url" validate:"omitempty,http_url"`
	Tags         []string `json:"tags"`
}

// ProductFilter holds the optional listing filters. Empty values are ignored.
type ProductFilter struct {
	Zoekterm string `query:"zoekterm"`
	Stijl    string `query:"stijl"`
	Merk     string `query:"merk"`
}
