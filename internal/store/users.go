package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fleet-dispatch-api-server/internal/models"
)

// GetUserByUsername looks up a dashboard user for direct-auth login.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.Collection(CollUsers).FindOne(ctx, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CountUsersByUsername is used to reject duplicate usernames on create.
func (s *Store) CountUsersByUsername(ctx context.Context, username string) (int64, error) {
	return s.db.Collection(CollUsers).CountDocuments(ctx, bson.M{"username": username})
}

// InsertUser creates a dashboard user.
func (s *Store) InsertUser(ctx context.Context, user *models.User) error {
	user.CreatedAt = time.Now().UTC()
	if user.Modules == nil {
		user.Modules = []string{}
	}
	_, err := s.db.Collection(CollUsers).InsertOne(ctx, user)
	return err
}

// ListUsers returns all users sorted by username.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "username", Value: 1}})
	cursor, err := s.db.Collection(CollUsers).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []models.User
	if err = cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// SetUserPassword replaces the stored bcrypt hash.
func (s *Store) SetUserPassword(ctx context.Context, username, passwordHash string) error {
	result, err := s.db.Collection(CollUsers).UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"passwordHash": passwordHash}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetUserModules replaces the per-module permission list.
func (s *Store) SetUserModules(ctx context.Context, username string, modules []string) error {
	if modules == nil {
		modules = []string{}
	}
	result, err := s.db.Collection(CollUsers).UpdateOne(ctx,
		bson.M{"username": username},
		bson.M{"$set": bson.M{"modules": modules}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteUser removes a dashboard user.
func (s *Store) DeleteUser(ctx context.Context, username string) error {
	result, err := s.db.Collection(CollUsers).DeleteOne(ctx, bson.M{"username": username})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
