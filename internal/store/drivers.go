package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"fleet-dispatch-api-server/internal/models"
)

// ListDrivers returns the full drivers collection.
func (s *Store) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	cursor, err := s.db.Collection(CollDrivers).Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var drivers []models.Driver
	if err = cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}
	if drivers == nil {
		drivers = []models.Driver{}
	}
	return drivers, nil
}

// FreeDrivers returns every driver whose status is "libre", in natural
// collection order.
func (s *Store) FreeDrivers(ctx context.Context) ([]models.Driver, error) {
	cursor, err := s.db.Collection(CollDrivers).Find(ctx, bson.M{"status": models.DriverStatusFree})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var drivers []models.Driver
	if err = cursor.All(ctx, &drivers); err != nil {
		return nil, err
	}
	return drivers, nil
}

// GetDriver fetches one driver by its hex id.
func (s *Store) GetDriver(ctx context.Context, id string) (*models.Driver, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var driver models.Driver
	err = s.db.Collection(CollDrivers).FindOne(ctx, bson.M{"_id": oid}).Decode(&driver)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &driver, nil
}

// ClaimDriver moves a driver from "libre" to "ocupado" in one conditional
// update. The status filter is what makes concurrent assignments safe: only
// one claim can match, the loser sees a false return and must pick another
// driver.
func (s *Store) ClaimDriver(ctx context.Context, driverID, plate, project, orderID string) (bool, error) {
	did, err := primitive.ObjectIDFromHex(driverID)
	if err != nil {
		return false, ErrNotFound
	}
	oid, err := primitive.ObjectIDFromHex(orderID)
	if err != nil {
		return false, ErrNotFound
	}

	result, err := s.db.Collection(CollDrivers).UpdateOne(ctx,
		bson.M{"_id": did, "status": models.DriverStatusFree},
		bson.M{"$set": bson.M{
			"status":         models.DriverStatusBusy,
			"currentPlate":   plate,
			"currentProject": project,
			"activeOrderID":  oid,
			"updatedAt":      time.Now().UTC(),
		}},
	)
	if err != nil {
		return false, err
	}
	return result.ModifiedCount == 1, nil
}

// ReleaseDriver undoes a claim when the matching order update lost its own
// race. The driver goes back to "libre" with no active order.
func (s *Store) ReleaseDriver(ctx context.Context, driverID string) error {
	did, err := primitive.ObjectIDFromHex(driverID)
	if err != nil {
		return ErrNotFound
	}

	_, err = s.db.Collection(CollDrivers).UpdateOne(ctx,
		bson.M{"_id": did},
		bson.M{
			"$set": bson.M{
				"status":    models.DriverStatusFree,
				"updatedAt": time.Now().UTC(),
			},
			"$unset": bson.M{
				"activeOrderID":  "",
				"currentPlate":   "",
				"currentProject": "",
			},
		},
	)
	return err
}

// UpdateDriverLocation is the ingest path for the external tracker feed.
// Only the position and the freshness timestamp change.
func (s *Store) UpdateDriverLocation(ctx context.Context, driverID string, lat, lon float64) error {
	did, err := primitive.ObjectIDFromHex(driverID)
	if err != nil {
		return ErrNotFound
	}

	result, err := s.db.Collection(CollDrivers).UpdateOne(ctx,
		bson.M{"_id": did},
		bson.M{"$set": bson.M{
			"location":  bson.M{"lat": lat, "lon": lon},
			"updatedAt": time.Now().UTC(),
		}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
