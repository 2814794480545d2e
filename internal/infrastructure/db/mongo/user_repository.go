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

type UserRepository struct {
	db   *mongo.Database
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{db: db, coll: db.Collection(collectionUsers)}
}

type mongoUser struct {
	ID                int64      `bson:"_id"`
	Name              string     `bson:"name"`
	Email             string     `bson:"email"`
	EncryptedPassword string     `bson:"encrypted_password"`
	Image             *string    `bson:"image"`
	RoleID            int64      `bson:"role_id"`
	Role              *mongoRole `bson:"role,omitempty"`
	CreatedAt         time.Time  `bson:"created_at"`
	UpdatedAt         time.Time  `bson:"updated_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	u := &domain.User{
		ID:                uint(mu.ID),
		Name:              mu.Name,
		Email:             mu.Email,
		EncryptedPassword: mu.EncryptedPassword,
		Image:             mu.Image,
		RoleID:            uint(mu.RoleID),
		CreatedAt:         mu.CreatedAt,
		UpdatedAt:         mu.UpdatedAt,
	}
	if mu.Role != nil {
		u.Role = mu.Role.toDomain()
	}
	return u
}

// FindByEmail returns (nil, nil) when no user has the email. With includeRole
// the role document is joined through $lookup, projected to _id and name.
func (r *UserRepository) FindByEmail(ctx context.Context, email string, includeRole bool) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if !includeRole {
		var mu mongoUser
		if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&mu); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, nil
			}
			return nil, fmt.Errorf("find user by email: %w", err)
		}
		return mu.toDomain(), nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"email": email}}},
		{{Key: "$limit", Value: 1}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionRoles,
			"localField":   "role_id",
			"foreignField": "_id",
			"pipeline":     bson.A{bson.M{"$project": bson.M{"_id": 1, "name": 1}}},
			"as":           "role",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$role", "preserveNullAndEmptyArrays": true}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("find user with role: %w", err)
	}
	defer cur.Close(ctx)

	if !cur.Next(ctx) {
		if err := cur.Err(); err != nil {
			return nil, fmt.Errorf("find user with role: %w", err)
		}
		return nil, nil
	}

	var mu mongoUser
	if err := cur.Decode(&mu); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) FindByPK(ctx context.Context, id uint) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"_id": int64(id)}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toDomain(), nil
}

// Create inserts the user under a fresh sequential id. A unique index
// violation on email surfaces as domain.ErrDuplicateKey.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, collectionUsers)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := mongoUser{
		ID:                id,
		Name:              user.Name,
		Email:             user.Email,
		EncryptedPassword: user.EncryptedPassword,
		Image:             user.Image,
		RoleID:            int64(user.RoleID),
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateKey
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return doc.toDomain(), nil
}
