package ports

import (
	"context"
	"time"

	"github.com/rentcar/rental-api/internal/core/domain"
)

// ListCarsInput carries all parameters for the list endpoint.
type ListCarsInput struct {
	Size        string
	AvailableAt time.Time
	Page        int
	PageSize    int
}

// Pagination describes the page returned by ListCars.
type Pagination struct {
	Page      int   `json:"page"`
	PageCount int   `json:"pageCount"`
	PageSize  int   `json:"pageSize"`
	Count     int64 `json:"count"`
}

// ListCarsResult is returned by ListCars.
type ListCarsResult struct {
	Cars       []*domain.Car
	Pagination Pagination
}

// CreateCarInput carries the data needed to create a car.
type CreateCarInput struct {
	Name  string
	Price int64
	Size  string
	Image string
}

// RentCarInput carries a rental request. A zero RentStartedAt means now; a
// zero RentEndedAt means RentStartedAt plus domain.DefaultRentalPeriod.
type RentCarInput struct {
	UserID        uint
	CarID         uint
	RentStartedAt time.Time
	RentEndedAt   time.Time
}

// CarService defines use-case operations for cars.
type CarService interface {
	ListCars(ctx context.Context, input ListCarsInput) (*ListCarsResult, error)
	GetCar(ctx context.Context, id uint) (*domain.Car, error)
	CreateCar(ctx context.Context, input CreateCarInput) (*domain.Car, error)
	RentCar(ctx context.Context, input RentCarInput) (*domain.UserCar, error)
	DeleteCar(ctx context.Context, id uint) error
}
