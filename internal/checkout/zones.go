package checkout

// Zone is one flat-fee delivery tier.
type Zone struct {
	Name string
	Fee  float64
}

// DeliveryZones is the static zone -> fee table.
var DeliveryZones = map[string]Zone{
	"giyani-central": {Name: "Giyani Central", Fee: 30},
	"giyani-suburbs": {Name: "Giyani Suburbs", Fee: 50},
	"nearby-towns":   {Name: "Nearby Towns (10-20km)", Fee: 80},
	"far-areas":      {Name: "Far Areas (20km+)", Fee: 120},
}
