package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/commerce-api/internal/core/domain"
)

const addressesCollection = "addresses"

// AddressRepository implements ports.AddressRepository on MongoDB.
type AddressRepository struct {
	col *mongo.Collection
}

func NewAddressRepository(db *mongo.Database) *AddressRepository {
	return &AddressRepository{col: db.Collection(addressesCollection)}
}

type mongoAddress struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    string             `bson:"user_id"`
	Street    string             `bson:"street"`
	City      string             `bson:"city"`
	State     string             `bson:"state"`
	ZipCode   string             `bson:"zip_code"`
	Country   string             `bson:"country"`
	CreatedAt int64              `bson:"created_at"`
	UpdatedAt int64              `bson:"updated_at"`
}

func (m mongoAddress) toDomain() *domain.Address {
	return &domain.Address{
		ID:        m.ID.Hex(),
		UserID:    m.UserID,
		Street:    m.Street,
		City:      m.City,
		State:     m.State,
		ZipCode:   m.ZipCode,
		Country:   m.Country,
		CreatedAt: unixToTime(m.CreatedAt),
		UpdatedAt: unixToTime(m.UpdatedAt),
	}
}

func (r *AddressRepository) Create(ctx context.Context, a *domain.Address) (*domain.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, mongoAddress{
		UserID:    a.UserID,
		Street:    a.Street,
		City:      a.City,
		State:     a.State,
		ZipCode:   a.ZipCode,
		Country:   a.Country,
		CreatedAt: a.CreatedAt.Unix(),
		UpdatedAt: a.UpdatedAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("insert address: %w: %w", domain.ErrPersistence, err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert address: unexpected id type %T: %w", res.InsertedID, domain.ErrPersistence)
	}

	created := *a
	created.ID = oid.Hex()
	return &created, nil
}

func (r *AddressRepository) FindByID(ctx context.Context, id string) (*domain.Address, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAddressNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var m mongoAddress
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAddressNotFound
		}
		return nil, fmt.Errorf("find address: %w: %w", domain.ErrPersistence, err)
	}
	return m.toDomain(), nil
}

func (r *AddressRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Address, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user_id": ownerID}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list addresses: %w: %w", domain.ErrPersistence, err)
	}
	defer cur.Close(ctx)

	var docs []mongoAddress
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list addresses: %w: %w", domain.ErrPersistence, err)
	}

	out := make([]*domain.Address, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Update never touches user_id; the owner is part of the filter only.
func (r *AddressRepository) Update(ctx context.Context, a *domain.Address) error {
	oid, err := primitive.ObjectIDFromHex(a.ID)
	if err != nil {
		return domain.ErrAddressNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "user_id": a.UserID},
		bson.M{"$set": bson.M{
			"street":     a.Street,
			"city":       a.City,
			"state":      a.State,
			"zip_code":   a.ZipCode,
			"country":    a.Country,
			"updated_at": a.UpdatedAt.Unix(),
		}},
	)
	if err != nil {
		return fmt.Errorf("update address: %w: %w", domain.ErrPersistence, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}

func (r *AddressRepository) Delete(ctx context.Context, id, ownerID string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAddressNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid, "user_id": ownerID})
	if err != nil {
		return fmt.Errorf("delete address: %w: %w", domain.ErrPersistence, err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAddressNotFound
	}
	return nil
}

// EnsureIndexes creates the owner index used by ListByOwner.
func (r *AddressRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}},
	})
	return err
}
