// Package store is the Mongo-backed data layer for the dispatch collections.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ErrNotFound is returned when a document does not exist or an id does not
// parse as an ObjectID.
var ErrNotFound = errors.New("document not found")

const (
	CollDrivers = "drivers"
	CollOrders  = "orders"
	CollUsers   = "users"
)

type Store struct {
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{db: db}
}

// Database exposes the underlying handle for the collection watchers.
func (s *Store) Database() *mongo.Database {
	return s.db
}

// Connect dials Mongo and verifies the connection with a ping.
func Connect(uri, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, err
	}

	return client.Database(dbName), nil
}
