package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rentcar/rental-api/internal/core/domain"
)

// RentalRepository stores rentals in the user_cars collection.
type RentalRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) *RentalRepository {
	return &RentalRepository{db: db, col: db.Collection(collectionUserCars)}
}

type mongoUserCar struct {
	ID            int64     `bson:"_id"`
	UserID        int64     `bson:"user_id"`
	CarID         int64     `bson:"car_id"`
	RentStartedAt time.Time `bson:"rent_started_at"`
	RentEndedAt   time.Time `bson:"rent_ended_at"`
	CreatedAt     time.Time `bson:"created_at"`
}

func (m *mongoUserCar) toDomain() *domain.UserCar {
	return &domain.UserCar{
		ID:            uint(m.ID),
		UserID:        uint(m.UserID),
		CarID:         uint(m.CarID),
		RentStartedAt: m.RentStartedAt,
		RentEndedAt:   m.RentEndedAt,
		CreatedAt:     m.CreatedAt,
	}
}

func (r *RentalRepository) Create(ctx context.Context, rental *domain.UserCar) (*domain.UserCar, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, collectionUserCars)
	if err != nil {
		return nil, err
	}

	doc := mongoUserCar{
		ID:            id,
		UserID:        int64(rental.UserID),
		CarID:         int64(rental.CarID),
		RentStartedAt: rental.RentStartedAt.UTC(),
		RentEndedAt:   rental.RentEndedAt.UTC(),
		CreatedAt:     rental.CreatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert rental: %w", err)
	}
	return doc.toDomain(), nil
}

// FindOverlapping returns the first rental of carID intersecting [from, to], or nil.
func (r *RentalRepository) FindOverlapping(ctx context.Context, carID uint, from, to time.Time) (*domain.UserCar, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"car_id":          int64(carID),
		"rent_started_at": bson.M{"$lte": to.UTC()},
		"rent_ended_at":   bson.M{"$gte": from.UTC()},
	}

	var m mongoUserCar
	if err := r.col.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find overlapping rental: %w", err)
	}
	return m.toDomain(), nil
}

// RentedCarIDs returns the distinct car ids with a rental covering at.
func (r *RentalRepository) RentedCarIDs(ctx context.Context, at time.Time) ([]uint, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"rent_started_at": bson.M{"$lte": at.UTC()},
		"rent_ended_at":   bson.M{"$gte": at.UTC()},
	}

	values, err := r.col.Distinct(ctx, "car_id", filter)
	if err != nil {
		return nil, fmt.Errorf("distinct rented cars: %w", err)
	}

	ids := make([]uint, 0, len(values))
	for _, v := range values {
		switch id := v.(type) {
		case int64:
			ids = append(ids, uint(id))
		case int32:
			ids = append(ids, uint(id))
		}
	}
	return ids, nil
}
