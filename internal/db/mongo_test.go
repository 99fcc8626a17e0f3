package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func productDoc(id string, quantity int) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "name", Value: "Hammer"},
		{Key: "price", Value: 10.0},
		{Key: "sku", Value: "HAM-1"},
		{Key: "inventory", Value: bson.D{{Key: "quantity", Value: quantity}}},
	}
}

func orderDoc(id, number string) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "orderNumber", Value: number},
		{Key: "customerId", Value: "c1"},
		{Key: "status", Value: "Pending"},
		{Key: "items", Value: bson.A{
			bson.D{{Key: "productId", Value: "p1"}, {Key: "productName", Value: "Hammer"}, {Key: "quantity", Value: 2}, {Key: "unitPrice", Value: 10.0}, {Key: "subtotal", Value: 20.0}},
		}},
		{Key: "subtotal", Value: 20.0},
		{Key: "total", Value: 20.0},
	}
}

func findAndModifyResponse(value interface{}) bson.D {
	return bson.D{{Key: "ok", Value: 1}, {Key: "value", Value: value}}
}

func TestMongoProductRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "commerce." + productsCollection

	mt.Run("adjust inventory applies delta", func(mt *mtest.T) {
		repo := NewProductRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(findAndModifyResponse(productDoc("p1", 3)))

		p, err := repo.AdjustInventory(context.Background(), "p1", -2, time.Now())
		require.NoError(mt, err)
		require.NotNil(mt, p)
		assert.Equal(mt, 3, p.Inventory.Quantity)
	})

	mt.Run("adjust inventory guard rejects oversell", func(mt *mtest.T) {
		repo := NewProductRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(
			findAndModifyResponse(nil),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, productDoc("p1", 1)),
		)

		p, err := repo.AdjustInventory(context.Background(), "p1", -2, time.Now())
		assert.Nil(mt, p)
		assert.True(mt, errors.Is(err, ErrInsufficientStock))
	})

	mt.Run("adjust inventory on missing product", func(mt *mtest.T) {
		repo := NewProductRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(
			findAndModifyResponse(nil),
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch),
		)

		p, err := repo.AdjustInventory(context.Background(), "gone", 2, time.Now())
		assert.NoError(mt, err)
		assert.Nil(mt, p)
	})

	mt.Run("duplicate sku", func(mt *mtest.T) {
		repo := NewProductRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error collection: commerce.products index: sku_1",
		}))

		err := repo.Create(context.Background(), &models.Product{Name: "Hammer", SKU: "HAM-1"})
		assert.True(mt, errors.Is(err, ErrDuplicate))
	})

	mt.Run("create assigns object id", func(mt *mtest.T) {
		repo := NewProductRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		p := &models.Product{Name: "Hammer", SKU: "HAM-1"}
		require.NoError(mt, repo.Create(context.Background(), p))
		assert.Len(mt, p.ID, 24)
	})

	mt.Run("update unknown product", func(mt *mtest.T) {
		repo := NewProductRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(findAndModifyResponse(nil))

		_, err := repo.Update(context.Background(), &models.Product{ID: "gone"})
		assert.True(mt, errors.Is(err, ErrNotFound))
	})

	mt.Run("update sets descriptive fields only", func(mt *mtest.T) {
		repo := NewProductRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(findAndModifyResponse(productDoc("p1", 8)))

		p, err := repo.Update(context.Background(), &models.Product{ID: "p1", Name: "Hammer", Inventory: models.Inventory{Quantity: 10}})
		require.NoError(mt, err)
		assert.Equal(mt, 8, p.Inventory.Quantity)

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		update := started.Command.Lookup("update").Document()
		set := update.Lookup("$set").Document()
		_, err = set.LookupErr("inventory")
		assert.Error(mt, err, "update must not write inventory")
		_, err = set.LookupErr("inventory.quantity")
		assert.Error(mt, err, "update must not write inventory.quantity")
		assert.Equal(mt, "Hammer", set.Lookup("name").StringValue())
	})

	mt.Run("set inventory", func(mt *mtest.T) {
		repo := NewProductRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(findAndModifyResponse(productDoc("p1", 40)))

		p, err := repo.SetInventory(context.Background(), "p1", 40, time.Now())
		require.NoError(mt, err)
		assert.Equal(mt, 40, p.Inventory.Quantity)
	})

	mt.Run("get by sku", func(mt *mtest.T) {
		repo := NewProductRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, productDoc("p1", 4)))

		p, err := repo.GetBySKU(context.Background(), "HAM-1")
		require.NoError(mt, err)
		require.NotNil(mt, p)
		assert.Equal(mt, "p1", p.ID)
	})
}

func TestMongoOrderRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "commerce." + ordersCollection

	mt.Run("list by customer", func(mt *mtest.T) {
		repo := NewOrderRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			orderDoc("o2", "ORD-2"),
			orderDoc("o1", "ORD-1"),
		))

		orders, err := repo.GetByCustomer(context.Background(), "c1")
		require.NoError(mt, err)
		require.Len(mt, orders, 2)
		assert.Equal(mt, "ORD-2", orders[0].OrderNumber)
		require.Len(mt, orders[1].Items, 1)
		assert.Equal(mt, 2, orders[1].Items[0].Quantity)
	})

	mt.Run("get missing order", func(mt *mtest.T) {
		repo := NewOrderRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		o, err := repo.GetByID(context.Background(), "missing")
		assert.NoError(mt, err)
		assert.Nil(mt, o)
	})

	mt.Run("update status", func(mt *mtest.T) {
		repo := NewOrderRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		doc := orderDoc("o1", "ORD-1")
		doc[3] = bson.E{Key: "status", Value: "Shipped"}
		mt.AddMockResponses(findAndModifyResponse(doc))

		o, err := repo.UpdateStatus(context.Background(), "o1", models.OrderStatusShipped, time.Now())
		require.NoError(mt, err)
		assert.Equal(mt, models.OrderStatusShipped, o.Status)
	})

	mt.Run("delete returns stored order", func(mt *mtest.T) {
		repo := NewOrderRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(findAndModifyResponse(orderDoc("o1", "ORD-1")))

		o, err := repo.Delete(context.Background(), "o1")
		require.NoError(mt, err)
		require.NotNil(mt, o)
		assert.Equal(mt, "p1", o.Items[0].ProductID)
	})

	mt.Run("delete missing order", func(mt *mtest.T) {
		repo := NewOrderRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(findAndModifyResponse(nil))

		o, err := repo.Delete(context.Background(), "missing")
		assert.NoError(mt, err)
		assert.Nil(mt, o)
	})

	mt.Run("duplicate order number", func(mt *mtest.T) {
		repo := NewOrderRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := repo.Create(context.Background(), &models.Order{OrderNumber: "ORD-1"})
		assert.True(mt, errors.Is(err, ErrDuplicate))
	})
}

func TestMongoCustomerRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ns := "commerce." + customersCollection

	mt.Run("get by email", func(mt *mtest.T) {
		repo := NewCustomerRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "c1"},
			{Key: "firstName", Value: "Ada"},
			{Key: "lastName", Value: "Lovelace"},
			{Key: "email", Value: "ada@example.com"},
			{Key: "address", Value: bson.D{{Key: "city", Value: "London"}}},
		}))

		c, err := repo.GetByEmail(context.Background(), "ada@example.com")
		require.NoError(mt, err)
		require.NotNil(mt, c)
		assert.Equal(mt, "Ada Lovelace", c.FullName())
		assert.Equal(mt, "London", c.Address.City)
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		repo := NewCustomerRepository(&MongoDB{Client: mt.Client, DB: mt.DB})
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := repo.Create(context.Background(), &models.Customer{Email: "ada@example.com"})
		assert.True(mt, errors.Is(err, ErrDuplicate))
	})
}
