package catalog

import "errors"

type Product struct {
	ID          string  `json:"id" bson:"id"`
	Name        string  `json:"name" bson:"name"`
	Description string  `json:"description" bson:"description"`
	Category    string  `json:"category" bson:"category"`
	Price       float64 `json:"price" bson:"price"`
	Image       string  `json:"image" bson:"image"`
	IsPopular   bool    `json:"isPopular" bson:"isPopular"`
}

var (
	ErrNotFound      = errors.New("product not found")
	ErrExists        = errors.New("product id already exists")
	ErrMissingFields = errors.New("missing required product fields")
)
