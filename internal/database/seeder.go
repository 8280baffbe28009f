package database

import (
	"context"

	logrus "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fleet-dispatch-api-server/internal/auth"
	"fleet-dispatch-api-server/internal/models"
	"fleet-dispatch-api-server/internal/store"
)

// SeedDefaultAdmin creates the bootstrap admin account when the users
// collection has none. Only relevant in direct-auth mode.
func SeedDefaultAdmin(db *mongo.Database, username, password string) error {
	if username == "" || password == "" {
		logrus.Warn("admin credentials not configured, seeding skipped")
		return nil
	}

	userCollection := db.Collection(store.CollUsers)

	count, err := userCollection.CountDocuments(context.Background(), bson.M{"username": username})
	if err != nil {
		return err
	}
	if count > 0 {
		logrus.Info("default admin already exists, seeding skipped")
		return nil
	}

	logrus.WithField("username", username).Info("default admin not found, seeding")
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         models.RoleAdmin,
		Modules:      []string{}, // admins see everything by role
	}

	st := store.New(db)
	return st.InsertUser(context.Background(), &admin)
}
