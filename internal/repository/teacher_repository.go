package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/noah-isme/sma-announcements/internal/models"
	"github.com/noah-isme/sma-announcements/pkg/database"
)

// MongoTeacherRepository answers existence questions against the teachers
// collection, keyed by username.
type MongoTeacherRepository struct {
	c *mongo.Collection
}

// NewMongoTeacherRepository constructs a MongoTeacherRepository.
func NewMongoTeacherRepository(db *mongo.Database) *MongoTeacherRepository {
	return &MongoTeacherRepository{c: db.Collection(database.TeachersCollection)}
}

// Exists reports whether a teacher with the given username is registered.
func (r *MongoTeacherRepository) Exists(ctx context.Context, username string) (bool, error) {
	opts := options.FindOne().SetProjection(bson.M{"_id": 1})
	var teacher models.Teacher
	err := r.c.FindOne(ctx, bson.M{"_id": username}, opts).Decode(&teacher)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find teacher %q: %w", username, err)
	}
	return teacher.Username == username, nil
}
