package mongo

import (
	"alcyxob/learnhub/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewRepositories wires every Mongo-backed repository against db. When
// transactions is false (standalone server without a replica set) the
// multi-document operations run without a transaction.
func NewRepositories(client *mongo.Client, db *mongo.Database, transactions bool) repository.Repositories {
	var tx repository.Transactor = noopTransactor{}
	if transactions {
		tx = NewTransactor(client)
	}
	return repository.Repositories{
		Users:       NewMongoUserRepository(db),
		Courses:     NewMongoCourseRepository(db),
		Lessons:     NewMongoLessonRepository(db),
		Assignments: NewMongoAssignmentRepository(db),
		Submissions: NewMongoSubmissionRepository(db),
		Themes:      NewMongoThemeRepository(db),
		Threads:     NewMongoDiscussionRepository(db, threadCollectionName),
		Posts:       NewMongoDiscussionRepository(db, postCollectionName),
		Tx:          tx,
	}
}

// EnsureIndexes creates the indexes of every collection. Failures are logged
// and do not stop startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) {
	ensure := map[string]func(context.Context, *mongo.Collection) error{
		userCollectionName:       EnsureUserIndexes,
		courseCollectionName:     EnsureCourseIndexes,
		lessonCollectionName:     EnsureLessonIndexes,
		assignmentCollectionName: EnsureAssignmentIndexes,
		submissionCollectionName: EnsureSubmissionIndexes,
		themeCollectionName:      EnsureThemeIndexes,
		threadCollectionName:     EnsureDiscussionIndexes,
		postCollectionName:       EnsureDiscussionIndexes,
	}
	for name, fn := range ensure {
		if err := fn(ctx, db.Collection(name)); err != nil {
			logger.Warn("failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
	logger.Info("index creation process completed")
}
