package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOrderRepository struct {
	coll *mongo.Collection
}

func NewOrderRepository(database *MongoDB) *MongoOrderRepository {
	return &MongoOrderRepository{coll: database.DB.Collection(ordersCollection)}
}

// Create inserts a new order with its embedded items
func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = newObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

// GetByID returns a single order with items
func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := r.coll.FindOne(ctx, byID(id)).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &o, nil
}

// GetAll returns all orders, newest first
func (r *MongoOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoOrderRepository) GetByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	return r.find(ctx, bson.M{"customerId": customerID})
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus overwrites the order status and returns the updated order
func (r *MongoOrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, now time.Time) (*models.Order, error) {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var o models.Order
	err := r.coll.FindOneAndUpdate(ctx, byID(id), update, opts).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return &o, nil
}

// Delete removes the order and returns its last stored representation
func (r *MongoOrderRepository) Delete(ctx context.Context, id string) (*models.Order, error) {
	var o models.Order
	err := r.coll.FindOneAndDelete(ctx, byID(id)).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}
	return &o, nil
}
