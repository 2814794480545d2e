package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rentcar/rental-api/internal/core/domain"
)

// DefaultRoles is the reference data written by Seed, keyed by primary key.
var DefaultRoles = []domain.Role{
	{ID: 1, Name: domain.RoleCustomer},
	{ID: 2, Name: domain.RoleAdmin},
	{ID: 3, Name: domain.RoleSuperAdmin},
}

type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(collectionRoles)}
}

type mongoRole struct {
	ID   int64  `bson:"_id"`
	Name string `bson:"name"`
}

func (mr *mongoRole) toDomain() *domain.Role {
	return &domain.Role{ID: uint(mr.ID), Name: mr.Name}
}

func (r *RoleRepository) FindByName(ctx context.Context, name string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *RoleRepository) FindByPK(ctx context.Context, id uint) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"_id": int64(id)})
}

func (r *RoleRepository) findOne(ctx context.Context, filter bson.M) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoRole
	if err := r.coll.FindOne(ctx, filter).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return mr.toDomain(), nil
}

// Seed upserts roles by primary key. Existing documents are left untouched,
// so running it repeatedly is safe. It returns the number of roles inserted.
func (r *RoleRepository) Seed(ctx context.Context, roles []domain.Role) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	inserted := 0
	for _, role := range roles {
		res, err := r.coll.UpdateOne(ctx,
			bson.M{"_id": int64(role.ID)},
			bson.M{"$setOnInsert": bson.M{"name": role.Name}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return inserted, fmt.Errorf("seed role %s: %w", role.Name, err)
		}
		if res.UpsertedCount > 0 {
			inserted++
		}
	}
	return inserted, nil
}
