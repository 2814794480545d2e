package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentcar/rental-api/internal/core/domain"
	"github.com/rentcar/rental-api/internal/core/ports"
)

type CarRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewCarRepository(db *mongo.Database) *CarRepository {
	return &CarRepository{db: db, col: db.Collection(collectionCars)}
}

type mongoCar struct {
	ID                int64     `bson:"_id"`
	Name              string    `bson:"name"`
	Price             int64     `bson:"price"`
	Size              string    `bson:"size"`
	Image             string    `bson:"image"`
	IsCurrentlyRented bool      `bson:"is_currently_rented"`
	CreatedAt         time.Time `bson:"created_at"`
	UpdatedAt         time.Time `bson:"updated_at"`
}

func (mc *mongoCar) toDomain() *domain.Car {
	return &domain.Car{
		ID:                uint(mc.ID),
		Name:              mc.Name,
		Price:             mc.Price,
		Size:              domain.CarSize(mc.Size),
		Image:             mc.Image,
		IsCurrentlyRented: mc.IsCurrentlyRented,
		CreatedAt:         mc.CreatedAt,
		UpdatedAt:         mc.UpdatedAt,
	}
}

// Create inserts a new car document under a fresh sequential id.
func (r *CarRepository) Create(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, collectionCars)
	if err != nil {
		return nil, err
	}

	doc := mongoCar{
		ID:                id,
		Name:              car.Name,
		Price:             car.Price,
		Size:              string(car.Size),
		Image:             car.Image,
		IsCurrentlyRented: car.IsCurrentlyRented,
		CreatedAt:         car.CreatedAt.UTC(),
		UpdatedAt:         car.UpdatedAt.UTC(),
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert car: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *CarRepository) FindByPK(ctx context.Context, id uint) (*domain.Car, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mc mongoCar
	if err := r.col.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&mc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return mc.toDomain(), nil
}

// List returns cars ordered by id together with the total number matching filter.
func (r *CarRepository) List(ctx context.Context, f ports.ListCarsFilter) ([]*domain.Car, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if f.Size != "" {
		query["size"] = string(f.Size)
	}
	if len(f.ExcludeIDs) > 0 {
		ids := make(bson.A, 0, len(f.ExcludeIDs))
		for _, id := range f.ExcludeIDs {
			ids = append(ids, int64(id))
		}
		query["_id"] = bson.M{"$nin": ids}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count cars: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(f.Offset)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find cars: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoCar
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode cars: %w", err)
	}

	cars := make([]*domain.Car, 0, len(docs))
	for i := range docs {
		cars = append(cars, docs[i].toDomain())
	}
	return cars, total, nil
}

func (r *CarRepository) Delete(ctx context.Context, id uint) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": int64(id)})
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CarRepository) SetRented(ctx context.Context, id uint, rented bool) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": int64(id)},
		bson.M{"$set": bson.M{"is_currently_rented": rented, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update car: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
