package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCustomerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(database *MongoDB) *MongoCustomerRepository {
	return &MongoCustomerRepository{coll: database.DB.Collection(customersCollection)}
}

func (r *MongoCustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = newObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, customer); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert customer: %w", err)
	}
	return nil
}

func (r *MongoCustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	return r.findOne(ctx, byID(id))
}

func (r *MongoCustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoCustomerRepository) findOne(ctx context.Context, filter bson.M) (*models.Customer, error) {
	var c models.Customer
	err := r.coll.FindOne(ctx, filter).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (r *MongoCustomerRepository) GetAll(ctx context.Context) ([]models.Customer, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer cursor.Close(ctx)

	customers := make([]models.Customer, 0)
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, fmt.Errorf("failed to decode customers: %w", err)
	}
	return customers, nil
}

func (r *MongoCustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	result, err := r.coll.ReplaceOne(ctx, byID(customer.ID), customer)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to update customer: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoCustomerRepository) Delete(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	err := r.coll.FindOneAndDelete(ctx, byID(id)).Decode(&c)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete customer: %w", err)
	}
	return &c, nil
}
