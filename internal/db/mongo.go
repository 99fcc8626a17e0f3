package db

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	customersCollection = "customers"
	productsCollection  = "products"
	ordersCollection    = "orders"
)

type MongoDB struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewMongoDB(ctx context.Context, uri, database string, logger *logrus.Logger) (*MongoDB, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.WithField("database", database).Info("Connected to MongoDB")
	return &MongoDB{Client: client, DB: client.Database(database)}, nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func (m *MongoDB) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		customersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		productsCollection: {
			{Keys: bson.D{{Key: "sku", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		ordersCollection: {
			{Keys: bson.D{{Key: "orderNumber", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "customerId", Value: 1}}},
		},
	}

	for name, specs := range indexes {
		if _, err := m.DB.Collection(name).Indexes().CreateMany(ctx, specs); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	return nil
}

func (m *MongoDB) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// NewStore wires the MongoDB-backed repositories.
func (m *MongoDB) NewStore() Store {
	return Store{
		Customers: NewCustomerRepository(m),
		Products:  NewProductRepository(m),
		Orders:    NewOrderRepository(m),
	}
}

func newObjectID() string {
	return primitive.NewObjectID().Hex()
}

func byID(id string) bson.M {
	return bson.M{"_id": id}
}
