package db_models

const (
	PlaceStatusOpen   = "open"
	PlaceStatusClosed = "closed"
)

// Place backs opening-hours lookups for the companion.
type Place struct {
	BaseModel
	Name      string
	Latitude  float64
	Longitude float64
	Category  string
	Status    string
	// OpeningHours is "HH:mm-HH:mm" in the place's local time.
	OpeningHours string
}
