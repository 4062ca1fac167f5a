package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/noah-isme/sma-announcements/internal/models"
	"github.com/noah-isme/sma-announcements/pkg/database"
)

// announcementDocument is the shape written to the collection.
type announcementDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Title      string             `bson:"title"`
	Message    string             `bson:"message"`
	StartDate  *string            `bson:"start_date"`
	ExpireDate *string            `bson:"expire_date"`
	CreatedBy  string             `bson:"created_by"`
	CreatedAt  string             `bson:"created_at"`
}

func newAnnouncementDocument(a *models.Announcement) announcementDocument {
	expire := a.ExpireDate
	return announcementDocument{
		ID:         a.ID.ObjectID(),
		Title:      a.Title,
		Message:    a.Message,
		StartDate:  a.StartDate,
		ExpireDate: &expire,
		CreatedBy:  a.CreatedBy,
		CreatedAt:  a.CreatedAt,
	}
}

// storedAnnouncement is the shape read back. Dates stay raw so records whose
// dates were written with another type still decode.
type storedAnnouncement struct {
	ID         primitive.ObjectID `bson:"_id"`
	Title      string             `bson:"title"`
	Message    string             `bson:"message"`
	StartDate  bson.RawValue      `bson:"start_date"`
	ExpireDate bson.RawValue      `bson:"expire_date"`
	CreatedBy  string             `bson:"created_by"`
	CreatedAt  string             `bson:"created_at"`
}

func (d storedAnnouncement) model() models.Announcement {
	a := models.Announcement{
		ID:        models.AnnouncementID(d.ID),
		Title:     d.Title,
		Message:   d.Message,
		CreatedBy: d.CreatedBy,
		CreatedAt: d.CreatedAt,
	}
	if start, ok := rawString(d.StartDate); ok {
		a.StartDate = &start
	}
	if expire, ok := rawString(d.ExpireDate); ok {
		a.ExpireDate = expire
	}
	return a
}

// rawString treats anything but a BSON string as absent.
func rawString(v bson.RawValue) (string, bool) {
	if v.Type != bson.TypeString {
		return "", false
	}
	return v.StringValueOK()
}

// MongoAnnouncementRepository persists announcements in a MongoDB collection.
type MongoAnnouncementRepository struct {
	c *mongo.Collection
}

// NewMongoAnnouncementRepository creates the repository on db's announcements collection.
func NewMongoAnnouncementRepository(db *mongo.Database) *MongoAnnouncementRepository {
	return &MongoAnnouncementRepository{c: db.Collection(database.AnnouncementsCollection)}
}

// List returns all announcements sorted by expire_date ascending. Documents
// without an expire_date sort first, following Mongo's null ordering.
func (r *MongoAnnouncementRepository) List(ctx context.Context) ([]models.Announcement, error) {
	opts := options.Find().SetSort(bson.D{{Key: "expire_date", Value: 1}})
	cur, err := r.c.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find announcements: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]models.Announcement, 0)
	for cur.Next(ctx) {
		var doc storedAnnouncement
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode announcement: %w", err)
		}
		out = append(out, doc.model())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate announcements: %w", err)
	}
	return out, nil
}

// GetByID loads one announcement.
func (r *MongoAnnouncementRepository) GetByID(ctx context.Context, id models.AnnouncementID) (*models.Announcement, error) {
	var doc storedAnnouncement
	err := r.c.FindOne(ctx, bson.M{"_id": id.ObjectID()}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find announcement %s: %w", id, err)
	}
	a := doc.model()
	return &a, nil
}

// Create inserts the announcement and stores the generated id on it.
func (r *MongoAnnouncementRepository) Create(ctx context.Context, announcement *models.Announcement) error {
	if announcement.ID.IsZero() {
		announcement.ID = models.NewAnnouncementID()
	}
	res, err := r.c.InsertOne(ctx, newAnnouncementDocument(announcement))
	if err != nil {
		return fmt.Errorf("insert announcement: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		announcement.ID = models.AnnouncementID(oid)
	}
	return nil
}

// Update applies the supplied fields with $set and returns the stored result.
func (r *MongoAnnouncementRepository) Update(ctx context.Context, id models.AnnouncementID, changes models.AnnouncementChanges) (*models.Announcement, error) {
	set := bson.M{}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Message != nil {
		set["message"] = *changes.Message
	}
	if changes.ExpireDate != nil {
		set["expire_date"] = *changes.ExpireDate
	}
	if changes.ClearStartDate {
		set["start_date"] = nil
	} else if changes.StartDate != nil {
		set["start_date"] = *changes.StartDate
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc storedAnnouncement
	err := r.c.FindOneAndUpdate(ctx, bson.M{"_id": id.ObjectID()}, bson.M{"$set": set}, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update announcement %s: %w", id, err)
	}
	a := doc.model()
	return &a, nil
}

// Delete removes one announcement and reports how many documents went away.
func (r *MongoAnnouncementRepository) Delete(ctx context.Context, id models.AnnouncementID) (int64, error) {
	res, err := r.c.DeleteOne(ctx, bson.M{"_id": id.ObjectID()})
	if err != nil {
		return 0, fmt.Errorf("delete announcement %s: %w", id, err)
	}
	return res.DeletedCount, nil
}

// Ping checks connectivity to the primary.
func (r *MongoAnnouncementRepository) Ping(ctx context.Context) error {
	return r.c.Database().Client().Ping(ctx, readpref.Primary())
}
