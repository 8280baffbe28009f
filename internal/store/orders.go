package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleet-dispatch-api-server/internal/models"
)

// InsertOrder writes a new order. Status, driverID and createdAt are set
// here: every order starts "pendiente" and unassigned, and createdAt is this
// server's clock so ordering stays consistent across operator browsers.
func (s *Store) InsertOrder(ctx context.Context, order *models.Order) (string, error) {
	order.Status = models.OrderStatusPending
	order.DriverID = nil
	order.CreatedAt = time.Now().UTC()

	result, err := s.db.Collection(CollOrders).InsertOne(ctx, order)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", ErrNotFound
	}
	order.ID = oid
	return oid.Hex(), nil
}

// GetOrder fetches one order by its hex id.
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var order models.Order
	err = s.db.Collection(CollOrders).FindOne(ctx, bson.M{"_id": oid}).Decode(&order)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// ListOrders returns all orders, newest first.
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.db.Collection(CollOrders).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// MarkOrderAssigned flips the order to "asignado" only if it is still
// pending. A false return means the order was taken by a concurrent
// assignment (or finalized externally) in the meantime.
func (s *Store) MarkOrderAssigned(ctx context.Context, orderID, driverID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return false, ErrNotFound
	}
	did, err := primitive.ObjectIDFromHex(driverID)
	if err != nil {
		return false, ErrNotFound
	}

	result, err := s.db.Collection(CollOrders).UpdateOne(ctx,
		bson.M{"_id": oid, "status": models.OrderStatusPending},
		bson.M{"$set": bson.M{
			"status":     models.OrderStatusAssigned,
			"driverID":   did,
			"assignedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}
