package ports

import (
	"context"
	"time"

	"github.com/rentcar/rental-api/internal/core/domain"
)

// ListCarsFilter carries all query parameters for listing cars.
type ListCarsFilter struct {
	Size       domain.CarSize // optional
	ExcludeIDs []uint         // optional: cars rented at the requested instant
	Offset     int
	Limit      int
}

// CarRepository defines persistence operations for cars.
type CarRepository interface {
	Create(ctx context.Context, car *domain.Car) (*domain.Car, error)
	// FindByPK returns domain.ErrNotFound when no car has the given id.
	FindByPK(ctx context.Context, id uint) (*domain.Car, error)
	// List returns a page of cars matching filter and the total count.
	List(ctx context.Context, filter ListCarsFilter) ([]*domain.Car, int64, error)
	// Delete returns domain.ErrNotFound when no car has the given id.
	Delete(ctx context.Context, id uint) error
	SetRented(ctx context.Context, id uint, rented bool) error
}

// RentalRepository stores user_cars rows.
type RentalRepository interface {
	Create(ctx context.Context, rental *domain.UserCar) (*domain.UserCar, error)
	// FindOverlapping returns the first rental of carID intersecting [from, to], or nil.
	FindOverlapping(ctx context.Context, carID uint, from, to time.Time) (*domain.UserCar, error)
	// RentedCarIDs returns the ids of cars with a rental covering at.
	RentedCarIDs(ctx context.Context, at time.Time) ([]uint, error)
}

// CarCache is a read-through cache in front of CarRepository.FindByPK.
type CarCache interface {
	Get(ctx context.Context, id uint) (*domain.Car, bool, error)
	Set(ctx context.Context, car *domain.Car) error
	Evict(ctx context.Context, id uint) error
}

// RentLock serialises rentals of a single car across API replicas.
type RentLock interface {
	// Acquire returns the holder token, or ok=false when another request
	// already holds the lock.
	Acquire(ctx context.Context, carID uint) (token string, ok bool, err error)
	// Release drops the lock only while it is still held under token.
	Release(ctx context.Context, carID uint, token string) error
}
