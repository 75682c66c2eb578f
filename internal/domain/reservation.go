package domain

import "time"

type Reservation struct {
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property_id"`
	GuestID    int64     `json:"guest_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// GuestReservation is a completed stay enriched with the reserved property
// and that property's average review rating.
type GuestReservation struct {
	Reservation
	Property      Property `json:"property"`
	AverageRating *float64 `json:"average_rating"`
}

// DefaultReservationLimit applies when callers pass a non-positive limit.
const DefaultReservationLimit = 10
