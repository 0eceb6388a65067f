package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aluiziolira/school-scraper/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const schoolsCollection = "schools"

// MongoWriter upserts records into a collection keyed by school name.
type MongoWriter struct {
	client  *mongo.Client
	coll    *mongo.Collection
	timeout time.Duration

	mu      sync.Mutex
	written int
}

// NewMongoWriter connects, pings and ensures the name index.
func NewMongoWriter(ctx context.Context, uri, database string) (*MongoWriter, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	coll := cli.Database(database).Collection(schoolsCollection)
	_, err = coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("create mongo indexes: %w", err)
	}

	return &MongoWriter{client: cli, coll: coll, timeout: 10 * time.Second}, nil
}

func (mw *MongoWriter) Write(records []*models.SchoolRecord) error {
	mw.mu.Lock()
	defer mw.mu.Unlock()

	for _, r := range records {
		doc := r.ToDict()
		doc["updated_at"] = time.Now().UTC()

		ctx, cancel := context.WithTimeout(context.Background(), mw.timeout)
		_, err := mw.coll.ReplaceOne(ctx, bson.M{"name": r.Name}, doc, options.Replace().SetUpsert(true))
		cancel()
		if err != nil {
			return fmt.Errorf("upsert %s: %w", r.Name, err)
		}
		mw.written++
	}
	return nil
}

func (mw *MongoWriter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), mw.timeout)
	defer cancel()
	return mw.client.Disconnect(ctx)
}

func (mw *MongoWriter) Validate() error {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	if mw.written == 0 {
		return fmt.Errorf("no records upserted")
	}
	return nil
}
