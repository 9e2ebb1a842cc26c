package dataset

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	perrors "github.com/matzehuels/provmap/pkg/errors"
	"github.com/matzehuels/provmap/pkg/retry"
)

// Default MongoDB names used when none are configured.
const (
	DefaultMongoDatabase   = "provmap"
	DefaultMongoCollection = "provinces"
)

// mongoSelectionTimeout bounds each connection attempt made by [ConnectMongo].
const mongoSelectionTimeout = 3 * time.Second

// provinceDocument is the stored shape of one province.
type provinceDocument struct {
	Province string         `bson:"province"`
	Cities   []cityDocument `bson:"cities"`
}

type cityDocument struct {
	Name        string    `bson:"name"`
	Coordinates []float64 `bson:"coordinates"`
	Connections []string  `bson:"connections"`
}

// MongoSource reads a dataset from a MongoDB collection holding one document
// per province:
//
//	{province: "West Java", cities: [{name: "Bandung", coordinates: [-6.9175, 107.6191], connections: ["Cimahi"]}]}
//
// Documents are read in insertion (_id) order. The source never writes.
type MongoSource struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// ConnectMongo connects to uri and returns a source reading database.collection.
// Empty names fall back to [DefaultMongoDatabase] and [DefaultMongoCollection].
// The server is pinged under [retry.Default] before the source is returned.
func ConnectMongo(ctx context.Context, uri, database, collection string) (*MongoSource, error) {
	if database == "" {
		database = DefaultMongoDatabase
	}
	if collection == "" {
		collection = DefaultMongoCollection
	}
	opts := options.Client().ApplyURI(uri).SetServerSelectionTimeout(mongoSelectionTimeout)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "mongodb uri")
	}
	err = retry.Default.Do(ctx, func() error {
		return retry.Transient(client.Ping(ctx, nil))
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "connect to mongodb")
	}
	return &MongoSource{
		client:     client,
		collection: client.Database(database).Collection(collection),
	}, nil
}

// Load implements Source.
func (s *MongoSource) Load(ctx context.Context) (*Dataset, error) {
	cur, err := s.collection.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNetwork, err, "query %s", s.collection.Name())
	}
	defer cur.Close(ctx)

	var docs []provinceDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInvalidFormat, err, "decode %s documents", s.collection.Name())
	}
	return fromDocuments(docs), nil
}

func (s *MongoSource) String() string {
	return "mongodb:" + s.collection.Database().Name() + "." + s.collection.Name()
}

// Close disconnects the underlying client.
func (s *MongoSource) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// fromDocuments applies the same validation as [ReadJSON] to stored documents.
func fromDocuments(docs []provinceDocument) *Dataset {
	b := NewBuilder()
	for _, doc := range docs {
		b.AddProvince(doc.Province)
		for _, cd := range doc.Cities {
			c, reason := cityFromDocument(cd)
			if reason != "" {
				b.Quarantine(doc.Province, cd.Name, reason)
				continue
			}
			b.AddCity(doc.Province, c)
		}
	}
	return b.Build()
}

func cityFromDocument(cd cityDocument) (City, string) {
	if cd.Name == "" {
		return City{}, "missing city name"
	}
	pos, reason := coordinatesFrom(cd.Coordinates)
	if reason != "" {
		return City{}, reason
	}
	return City{
		Name:        cd.Name,
		Coordinates: pos,
		Connections: cd.Connections,
	}, ""
}
