package mg

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"tsdata-bench/bench"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	database   = "test"
	collection = "tsdata"
)

// Item is a tsdata document; _id carries the row id.
type Item struct {
	ID      int64     `bson:"_id"`
	Created time.Time `bson:"created"`
	Value   float64   `bson:"value"`
}

func port(c bench.ConnConfig) int {
	if c.Port == 0 {
		return 27017
	}
	return c.Port
}

// URI builds a mongodb:// connection string with escaped credentials.
func URI(c bench.ConnConfig) string {
	u := &url.URL{
		Scheme: "mongodb",
		Host:   fmt.Sprintf("%s:%d", c.Host, port(c)),
	}
	if c.User != "" {
		u.User = url.UserPassword(c.User, c.Password)
	}
	return u.String()
}

func Connect(c bench.ConnConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(URI(c)))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}
	log.WithFields(log.Fields{"host": c.Host, "port": port(c)}).Debugln("Connected to MongoDB")
	return client, nil
}

// Workload inserts, bulk-updates and reads back the tsdata collection.
type Workload struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// New uses the named database, or "test" when name is empty.
func New(client *mongo.Client, name string) *Workload {
	if name == "" {
		name = database
	}
	return &Workload{client: client, coll: client.Database(name).Collection(collection)}
}

func (w *Workload) Name() string { return bench.MongoDB }

func (w *Workload) Close() error {
	return w.client.Disconnect(context.Background())
}

// Prepare is a no-op; the collection is created by the first insert.
func (w *Workload) Prepare(ctx context.Context) error { return nil }

func (w *Workload) Reset(ctx context.Context) error {
	return w.coll.Drop(ctx)
}

func (w *Workload) Phases() []bench.Phase {
	return []bench.Phase{
		{Op: bench.OpInsert, Run: w.insert},
		{Op: bench.OpBatchUpdate, Run: w.batchUpdate},
		{Op: bench.OpSelect, Run: w.selectAll},
	}
}

func (w *Workload) insert(ctx context.Context, n int) (int, error) {
	rows := bench.GenerateRows(n, bench.InsertValue)
	docs := make([]interface{}, len(rows))
	for i, r := range rows {
		docs[i] = Item{ID: r.ID, Created: r.Created, Value: r.Value}
	}
	res, err := w.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func (w *Workload) batchUpdate(ctx context.Context, n int) (int, error) {
	models := make([]mongo.WriteModel, n)
	for i := range models {
		models[i] = mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": int64(i)}).
			SetUpdate(bson.M{"$set": bson.M{"value": bench.BatchUpdateValue(i)}})
	}
	res, err := w.coll.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return int(res.MatchedCount), nil
}

func (w *Workload) selectAll(ctx context.Context, n int) (int, error) {
	cursor, err := w.coll.Find(ctx, bson.D{})
	if err != nil {
		return 0, err
	}
	items := make([]Item, 0, n)
	if err := cursor.All(ctx, &items); err != nil {
		return 0, err
	}
	return len(items), nil
}
