package session

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	errs "github.com/matzehuels/tuigraph/pkg/errors"
)

// MongoConfig configures [NewMongoStore].
type MongoConfig struct {
	URI string
	// Database defaults to "tuigraph", Collection to "sessions".
	Database   string
	Collection string
}

// MongoStore keeps one document per session. The TOML payload is stored
// alongside the summary fields so listing does not decode graphs.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Nodes     int       `bson:"nodes"`
	Edges     int       `bson:"edges"`
	UpdatedAt time.Time `bson:"updated_at"`
	Payload   string    `bson:"payload"`
}

// NewMongoStore connects, pings and ensures the updated_at index.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "tuigraph"
	}
	if cfg.Collection == "" {
		cfg.Collection = "sessions"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errs.Wrap(errs.ErrCodeIO, err, "ping mongo")
	}
	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "updated_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, errs.Wrap(errs.ErrCodeIO, err, "create mongo index")
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*Session, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "mongo find %s", id)
	}
	return Decode([]byte(doc.Payload))
}

func (s *MongoStore) Set(ctx context.Context, sess *Session) error {
	data, err := Encode(sess)
	if err != nil {
		return err
	}
	sum := sess.Summary()
	doc := mongoDoc{
		ID:        sess.ID,
		Name:      sum.Name,
		Nodes:     sum.Nodes,
		Edges:     sum.Edges,
		UpdatedAt: sum.UpdatedAt,
		Payload:   string(data),
	}
	_, err = s.coll.ReplaceOne(ctx, bson.M{"_id": sess.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "mongo upsert %s", sess.ID)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if err := ValidateID(id); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return errs.Wrap(errs.ErrCodeIO, err, "mongo delete %s", id)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.M{"payload": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "mongo list")
	}
	defer cur.Close(ctx)

	var docs []mongoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "mongo list decode")
	}
	out := make([]Summary, len(docs))
	for i, d := range docs {
		out[i] = Summary{ID: d.ID, Name: d.Name, Nodes: d.Nodes, Edges: d.Edges, UpdatedAt: d.UpdatedAt}
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
