// Package mongodb implements repository.UserStore on a MongoDB collection.
//
// Each user is one document with its activities embedded as an array, the
// same shape the exercise tracker has always stored. Identifiers are
// ObjectID hex strings; anything that does not parse as one is reported as
// not found rather than as a driver error.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sakif/exercise-tracker/internal/apperror"
	"github.com/sakif/exercise-tracker/internal/model"
	"github.com/sakif/exercise-tracker/internal/repository"
)

// CollectionName is the collection holding user documents.
const CollectionName = "users"

var _ repository.UserStore = (*Store)(nil)

type activityDocument struct {
	Description string    `bson:"description"`
	Duration    float64   `bson:"duration"`
	Date        time.Time `bson:"date"`
}

type userDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Username   string             `bson:"username"`
	Activities []activityDocument `bson:"activities"`
}

// Store is a MongoDB-backed user store.
type Store struct {
	client *mongo.Client
	users  *mongo.Collection
}

// Connect dials uri, verifies the connection, and ensures the unique
// username index exists.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo: connecting: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: pinging: %w", err)
	}

	s := &Store{
		client: client,
		users:  client.Database(database).Collection(CollectionName),
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("username_unique"),
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo: creating username index: %w", err)
	}

	return s, nil
}

// Close disconnects the client, waiting at most a few seconds for in-flight
// operations.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *Store) InsertUser(ctx context.Context, user *model.User) error {
	doc := toDocument(user)
	doc.ID = primitive.NewObjectID()

	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.DuplicateUsername()
		}
		return fmt.Errorf("mongo: inserting user %q: %w", user.Username, err)
	}

	user.ID = doc.ID.Hex()
	return nil
}

func (s *Store) FindUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperror.UserNotFound()
	}
	return s.findOne(ctx, bson.M{"_id": oid}, apperror.UserNotFound())
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return s.findOne(ctx, bson.M{"username": username}, apperror.NotFound("user", username))
}

func (s *Store) findOne(ctx context.Context, filter bson.M, notFound error) (*model.User, error) {
	var doc userDocument
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound
		}
		return nil, fmt.Errorf("mongo: finding user: %w", err)
	}
	return doc.toModel(), nil
}

// SaveUser replaces the whole document in a single write, so the embedded
// log is never partially updated.
func (s *Store) SaveUser(ctx context.Context, user *model.User) error {
	oid, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return apperror.UserNotFound()
	}

	doc := toDocument(user)
	doc.ID = oid

	res, err := s.users.ReplaceOne(ctx, bson.M{"_id": oid}, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperror.DuplicateUsername()
		}
		return fmt.Errorf("mongo: saving user %s: %w", user.ID, err)
	}
	if res.MatchedCount == 0 {
		return apperror.UserNotFound()
	}
	return nil
}

// ListUsers returns id and username of every user, ordered by _id (which
// follows creation time for ObjectIDs).
func (s *Store) ListUsers(ctx context.Context) ([]model.UserSummary, error) {
	opts := options.Find().
		SetProjection(bson.M{"username": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := s.users.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo: listing users: %w", err)
	}

	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo: reading users: %w", err)
	}

	users := make([]model.UserSummary, 0, len(docs))
	for _, d := range docs {
		users = append(users, model.UserSummary{ID: d.ID.Hex(), Username: d.Username})
	}
	return users, nil
}

func toDocument(user *model.User) userDocument {
	activities := make([]activityDocument, 0, len(user.Activities))
	for _, a := range user.Activities {
		activities = append(activities, activityDocument{
			Description: a.Description,
			Duration:    a.Duration,
			Date:        a.Date,
		})
	}
	return userDocument{Username: user.Username, Activities: activities}
}

func (d userDocument) toModel() *model.User {
	activities := make([]model.Activity, 0, len(d.Activities))
	for _, a := range d.Activities {
		activities = append(activities, model.Activity{
			Description: a.Description,
			Duration:    a.Duration,
			Date:        a.Date.UTC(),
		})
	}
	return &model.User{ID: d.ID.Hex(), Username: d.Username, Activities: activities}
}
