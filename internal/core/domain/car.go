package domain

import "time"

// CarSize classifies a car for listing filters.
type CarSize string

const (
	CarSizeSmall  CarSize = "small"
	CarSizeMedium CarSize = "medium"
	CarSizeLarge  CarSize = "large"
)

// Valid reports whether s is one of the known sizes.
func (s CarSize) Valid() bool {
	switch s {
	case CarSizeSmall, CarSizeMedium, CarSizeLarge:
		return true
	}
	return false
}

// DefaultRentalPeriod is applied when a rental request carries no end date.
const DefaultRentalPeriod = 24 * time.Hour

// Car is a rentable vehicle.
type Car struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Price             int64     `json:"price"`
	Size              CarSize   `json:"size"`
	Image             string    `json:"image"`
	IsCurrentlyRented bool      `json:"isCurrentlyRented"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// UserCar records a rental of a car by a user over [RentStartedAt, RentEndedAt].
type UserCar struct {
	ID            uint      `json:"id"`
	UserID        uint      `json:"userId"`
	CarID         uint      `json:"carId"`
	RentStartedAt time.Time `json:"rentStartedAt"`
	RentEndedAt   time.Time `json:"rentEndedAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Overlaps reports whether the rental period intersects [from, to].
func (uc UserCar) Overlaps(from, to time.Time) bool {
	return !uc.RentStartedAt.After(to) && !uc.RentEndedAt.Before(from)
}
