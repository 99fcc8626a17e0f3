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

type MongoProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(database *MongoDB) *MongoProductRepository {
	return &MongoProductRepository{coll: database.DB.Collection(productsCollection)}
}

// Create inserts a new product
func (r *MongoProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = newObjectID()
	}

	if _, err := r.coll.InsertOne(ctx, product); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// GetByID returns a single product
func (r *MongoProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	return r.findOne(ctx, byID(id))
}

func (r *MongoProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	return r.findOne(ctx, bson.M{"sku": sku})
}

func (r *MongoProductRepository) findOne(ctx context.Context, filter bson.M) (*models.Product, error) {
	var p models.Product
	err := r.coll.FindOne(ctx, filter).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

// GetAll returns all products
func (r *MongoProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (r *MongoProductRepository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	update := bson.M{"$set": bson.M{
		"name":         product.Name,
		"description":  product.Description,
		"price":        product.Price,
		"category":     product.Category,
		"sku":          product.SKU,
		"manufacturer": product.Manufacturer,
		"updatedAt":    product.UpdatedAt,
	}}

	p, err := r.findOneAndUpdate(ctx, byID(product.ID), update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

func (r *MongoProductRepository) SetInventory(ctx context.Context, id string, quantity int, now time.Time) (*models.Product, error) {
	update := bson.M{"$set": bson.M{"inventory.quantity": quantity, "updatedAt": now}}

	p, err := r.findOneAndUpdate(ctx, byID(id), update)
	if err != nil {
		return nil, fmt.Errorf("failed to set inventory: %w", err)
	}
	return p, nil
}

func (r *MongoProductRepository) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.Product, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Product
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Delete removes a product and returns what was stored
func (r *MongoProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	var p models.Product
	err := r.coll.FindOneAndDelete(ctx, byID(id)).Decode(&p)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	return &p, nil
}

// AdjustInventory applies delta with a single conditional update so that
// concurrent reservations can never oversell.
func (r *MongoProductRepository) AdjustInventory(ctx context.Context, id string, delta int, now time.Time) (*models.Product, error) {
	filter := byID(id)
	if delta < 0 {
		filter["inventory.quantity"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"inventory.quantity": delta},
		"$set": bson.M{"updatedAt": now},
	}
	p, err := r.findOneAndUpdate(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}
	if p != nil {
		return p, nil
	}

	// The filter missed: either the product is gone or the stock guard failed.
	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	return nil, ErrInsufficientStock
}
