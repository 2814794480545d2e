package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"github.com/rentcar/rental-api/internal/core/domain"
	"github.com/rentcar/rental-api/internal/core/ports"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxOffset       = math.MaxInt32
)

// A busy rent lock is retried briefly before the car is reported as rented.
const (
	rentLockRetries   = 3
	rentLockBaseDelay = 50 * time.Millisecond
)

var errRentLockBusy = errors.New("rent lock busy")

func defaultRentLockBackoff() retry.Backoff {
	return retry.WithMaxRetries(rentLockRetries, retry.NewExponential(rentLockBaseDelay))
}

type CarService struct {
	cars    ports.CarRepository
	rentals ports.RentalRepository
	cache   ports.CarCache
	lock    ports.RentLock
	logger  zerolog.Logger
	now     func() time.Time

	lockBackoff func() retry.Backoff
}

func NewCarService(
	cars ports.CarRepository,
	rentals ports.RentalRepository,
	cache ports.CarCache,
	lock ports.RentLock,
	logger zerolog.Logger,
) *CarService {
	return &CarService{
		cars:    cars,
		rentals: rentals,
		cache:   cache,
		lock:    lock,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },

		lockBackoff: defaultRentLockBackoff,
	}
}

// ListCars returns one page of cars, optionally filtered by size and by
// availability at a given instant.
func (s *CarService) ListCars(ctx context.Context, input ports.ListCarsInput) (*ports.ListCarsResult, error) {
	size := domain.CarSize(strings.ToLower(input.Size))
	if size != "" && !size.Valid() {
		return nil, domain.ValidationError(fmt.Sprintf("size must be one of: %s, %s, %s",
			domain.CarSizeSmall, domain.CarSizeMedium, domain.CarSizeLarge))
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	pageSize := input.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	if page-1 > maxOffset/pageSize {
		return nil, domain.ValidationError("page is out of range")
	}

	filter := ports.ListCarsFilter{
		Size:   size,
		Offset: (page - 1) * pageSize,
		Limit:  pageSize,
	}

	if !input.AvailableAt.IsZero() {
		rented, err := s.rentals.RentedCarIDs(ctx, input.AvailableAt)
		if err != nil {
			return nil, fmt.Errorf("list cars: %w", err)
		}
		filter.ExcludeIDs = rented
	}

	cars, total, err := s.cars.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list cars: %w", err)
	}
	if cars == nil {
		cars = []*domain.Car{}
	}

	return &ports.ListCarsResult{
		Cars: cars,
		Pagination: ports.Pagination{
			Page:      page,
			PageCount: int((total + int64(pageSize) - 1) / int64(pageSize)),
			PageSize:  pageSize,
			Count:     total,
		},
	}, nil
}

// GetCar looks a car up through the cache. Cache faults are logged and the
// repository is used directly.
func (s *CarService) GetCar(ctx context.Context, id uint) (*domain.Car, error) {
	cached, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		s.logger.Warn().Err(err).Uint("car_id", id).Msg("car cache read failed")
	} else if ok {
		return cached, nil
	}

	car, err := s.cars.FindByPK(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.RecordNotFound("Car")
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, car); err != nil {
		s.logger.Warn().Err(err).Uint("car_id", id).Msg("car cache write failed")
	}
	return car, nil
}

// CreateCar stores a new, not yet rented car.
func (s *CarService) CreateCar(ctx context.Context, input ports.CreateCarInput) (*domain.Car, error) {
	size := domain.CarSize(strings.ToLower(input.Size))
	if !size.Valid() {
		return nil, domain.ValidationError(fmt.Sprintf("size must be one of: %s, %s, %s",
			domain.CarSizeSmall, domain.CarSizeMedium, domain.CarSizeLarge))
	}

	now := s.now()
	car, err := s.cars.Create(ctx, &domain.Car{
		Name:              input.Name,
		Price:             input.Price,
		Size:              size,
		Image:             input.Image,
		IsCurrentlyRented: false,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to create car")
		return nil, err
	}

	s.logger.Info().Uint("car_id", car.ID).Str("size", string(car.Size)).Msg("car created")
	return car, nil
}

// RentCar books a car for a user. Overlapping rentals are rejected with
// CarAlreadyRented; the per-car lock keeps two replicas from booking the
// same slot between the overlap check and the insert.
func (s *CarService) RentCar(ctx context.Context, input ports.RentCarInput) (*domain.UserCar, error) {
	start := input.RentStartedAt.UTC()
	if input.RentStartedAt.IsZero() {
		start = s.now()
	}
	end := input.RentEndedAt.UTC()
	if input.RentEndedAt.IsZero() {
		end = start.Add(domain.DefaultRentalPeriod)
	}
	if end.Before(start) {
		return nil, domain.ValidationError("rentEndedAt must not be before rentStartedAt")
	}

	token, acquired, err := s.acquireRentLock(ctx, input.CarID)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil, err
		}
		s.logger.Warn().Err(err).Uint("car_id", input.CarID).Msg("rent lock unavailable, continuing without it")
	case !acquired:
		return nil, domain.CarAlreadyRented(input.CarID)
	default:
		defer s.releaseRentLock(context.WithoutCancel(ctx), input.CarID, token)
	}

	car, err := s.cars.FindByPK(ctx, input.CarID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.RecordNotFound("Car")
		}
		return nil, err
	}

	overlapping, err := s.rentals.FindOverlapping(ctx, car.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("rent car: %w", err)
	}
	if overlapping != nil {
		return nil, domain.CarAlreadyRented(car.ID)
	}

	rental, err := s.rentals.Create(ctx, &domain.UserCar{
		UserID:        input.UserID,
		CarID:         car.ID,
		RentStartedAt: start,
		RentEndedAt:   end,
		CreatedAt:     s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("rent car: %w", err)
	}

	now := s.now()
	if rental.Overlaps(now, now) && !car.IsCurrentlyRented {
		if err := s.cars.SetRented(ctx, car.ID, true); err != nil {
			s.logger.Warn().Err(err).Uint("car_id", car.ID).Msg("failed to flag car as rented")
		}
		s.evict(ctx, car.ID)
	}

	s.logger.Info().
		Uint("car_id", car.ID).
		Uint("user_id", input.UserID).
		Time("from", start).
		Time("to", end).
		Msg("car rented")
	return rental, nil
}

// DeleteCar removes a car and drops it from the cache.
func (s *CarService) DeleteCar(ctx context.Context, id uint) error {
	if err := s.cars.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.RecordNotFound("Car")
		}
		return err
	}
	s.evict(ctx, id)
	s.logger.Info().Uint("car_id", id).Msg("car deleted")
	return nil
}

// acquireRentLock retries a busy lock with s.lockBackoff. Lock store faults
// are returned at once.
func (s *CarService) acquireRentLock(ctx context.Context, carID uint) (string, bool, error) {
	var token string
	err := retry.Do(ctx, s.lockBackoff(), func(ctx context.Context) error {
		t, ok, err := s.lock.Acquire(ctx, carID)
		if err != nil {
			return err
		}
		if !ok {
			return retry.RetryableError(errRentLockBusy)
		}
		token = t
		return nil
	})
	switch {
	case err == nil:
		return token, true, nil
	case errors.Is(err, errRentLockBusy):
		return "", false, nil
	default:
		return "", false, err
	}
}

func (s *CarService) releaseRentLock(ctx context.Context, carID uint, token string) {
	err := s.lock.Release(ctx, carID, token)
	switch {
	case errors.Is(err, domain.ErrLockLost):
		s.logger.Warn().Uint("car_id", carID).Msg("rent lock expired before release")
	case err != nil:
		s.logger.Warn().Err(err).Uint("car_id", carID).Msg("failed to release rent lock")
	}
}

func (s *CarService) evict(ctx context.Context, id uint) {
	if err := s.cache.Evict(ctx, id); err != nil {
		s.logger.Warn().Err(err).Uint("car_id", id).Msg("car cache evict failed")
	}
}
