// Package mongodb implements the workflow checkpoint store on MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/havenhq/haven/internal/domain"
)

const checkpointsCollection = "workflow_checkpoints"

type checkpointDocument struct {
	ThreadID  string               `bson:"thread_id"`
	State     domain.WorkflowState `bson:"state"`
	UpdatedAt time.Time            `bson:"updated_at"`
}

// Store implements workflow.CheckpointStore using a MongoDB collection
// keyed by thread id.
type Store struct {
	database *mongo.Database
}

func New(database *mongo.Database) *Store {
	store := &Store{database: database}
	store.ensureIndexes()
	return store
}

// Connect dials MongoDB and returns a store on the named database.
func Connect(ctx context.Context, url, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	return New(client.Database(database)), nil
}

func (s *Store) ensureIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	collection := s.database.Collection(checkpointsCollection)

	_, _ = collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "thread_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
}

func (s *Store) Load(ctx context.Context, threadID string) (*domain.WorkflowState, error) {
	collection := s.database.Collection(checkpointsCollection)

	var doc checkpointDocument
	err := collection.FindOne(ctx, bson.M{"thread_id": threadID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint for thread %s: %w", threadID, err)
	}

	return &doc.State, nil
}

func (s *Store) Save(ctx context.Context, threadID string, state domain.WorkflowState) error {
	collection := s.database.Collection(checkpointsCollection)

	doc := checkpointDocument{
		ThreadID:  threadID,
		State:     state,
		UpdatedAt: time.Now().UTC(),
	}

	_, err := collection.ReplaceOne(ctx,
		bson.M{"thread_id": threadID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save checkpoint for thread %s: %w", threadID, err)
	}

	return nil
}
