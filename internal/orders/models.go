package orders

import "time"

type Item struct {
	ProductID string  `json:"id" bson:"id"`
	Name      string  `json:"name" bson:"name"`
	Price     float64 `json:"price" bson:"price"`
	Quantity  int     `json:"quantity" bson:"quantity"`
}

type TimelineEntry struct {
	Date    time.Time `json:"date" bson:"date"`
	Status  Status    `json:"status" bson:"status"`
	Message string    `json:"message" bson:"message"`
}

type Order struct {
	TrackerID        string          `json:"trackerId" bson:"trackerId"`
	UserEmail        string          `json:"userEmail" bson:"userEmail"`
	Items            []Item          `json:"items" bson:"items"`
	Subtotal         float64         `json:"subtotal" bson:"subtotal"`
	DeliveryFee      float64         `json:"deliveryFee" bson:"deliveryFee"`
	Total            float64         `json:"total" bson:"total"`
	PaymentMethod    string          `json:"paymentMethod" bson:"paymentMethod"`
	Fulfilment       string          `json:"fulfilment" bson:"fulfilment"`
	DeliveryLocation string          `json:"deliveryLocation" bson:"deliveryLocation"`
	DeliveryAddress  string          `json:"deliveryAddress" bson:"deliveryAddress"`
	Status           Status          `json:"status" bson:"status"`
	Timeline         []TimelineEntry `json:"timeline" bson:"timeline"`
	PlacedAt         time.Time       `json:"placedAt" bson:"placedAt"`
	UpdatedAt        time.Time       `json:"updatedAt" bson:"updatedAt"`
	// Version guards read-modify-write cycles on status updates.
	Version int64 `json:"-" bson:"version"`
}

const (
	PaymentCash = "cash"
	PaymentCard = "card"
	PaymentEFT  = "eft"

	FulfilmentPickup   = "pickup"
	FulfilmentDelivery = "delivery"
)

// Stats aggregates the full order set. Recomputed on every call, never cached.
type Stats struct {
	TotalOrders   int            `json:"totalOrders"`
	PendingOrders int            `json:"pendingOrders"`
	TotalRevenue  float64        `json:"totalRevenue"`
	ByStatus      map[Status]int `json:"byStatus"`
}
