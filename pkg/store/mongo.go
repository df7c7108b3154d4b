package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/impactgraph/pkg/entity"
)

// MongoOptions configures a MongoBackend.
type MongoOptions struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// MongoBackend stores one document per record with the provider id as _id.
type MongoBackend struct {
	client *mongo.Client
	coll   *mongo.Collection
}

type mongoDoc struct {
	ID             int64             `bson:"_id"`
	Name           string            `bson:"name"`
	Handle         string            `bson:"handle"`
	UpdatedAt      time.Time         `bson:"updated_at"`
	Profile        map[string]any    `bson:"profile"`
	FriendIDs      []int64           `bson:"friend_ids"`
	FollowerIDs    []int64           `bson:"follower_ids"`
	FriendsState   entity.FetchState `bson:"friends_state,omitempty"`
	FollowersState entity.FetchState `bson:"followers_state,omitempty"`
	Description    string            `bson:"description,omitempty"`
	Website        string            `bson:"website,omitempty"`
	MetricsURL     string            `bson:"metrics_url,omitempty"`
}

// NewMongoBackend connects to MongoDB and pings the server.
func NewMongoBackend(ctx context.Context, opts MongoOptions) (*MongoBackend, error) {
	if opts.Database == "" {
		opts.Database = "impactgraph"
	}
	if opts.Collection == "" {
		opts.Collection = "projects"
	}
	if opts.Timeout == 0 {
		opts.Timeout = 10 * time.Second
	}

	clientOpts := options.Client().
		ApplyURI(opts.URI).
		SetTimeout(opts.Timeout).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoBackend{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// Load returns every record ordered by insertion time, then id.
func (b *MongoBackend) Load(ctx context.Context) ([]entity.Record, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := b.coll.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("find records: %w", err)
	}
	defer cur.Close(ctx)

	var recs []entity.Record
	for cur.Next(ctx) {
		var doc mongoDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		recs = append(recs, doc.record())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return recs, nil
}

// InsertIfAbsent inserts rec; a duplicate key means the id already exists.
func (b *MongoBackend) InsertIfAbsent(ctx context.Context, rec entity.Record) (bool, error) {
	_, err := b.coll.InsertOne(ctx, newMongoDoc(rec))
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("insert record %d: %w", rec.ID, err)
	}
	return true, nil
}

// Drop removes the collection.
func (b *MongoBackend) Drop(ctx context.Context) error {
	return b.coll.Drop(ctx)
}

// Close disconnects the client.
func (b *MongoBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}

func newMongoDoc(r entity.Record) mongoDoc {
	return mongoDoc{
		ID:             r.ID,
		Name:           r.Name,
		Handle:         r.Handle,
		UpdatedAt:      r.UpdatedAt.Time,
		Profile:        r.Profile,
		FriendIDs:      nonNil(r.FriendIDs),
		FollowerIDs:    nonNil(r.FollowerIDs),
		FriendsState:   r.FriendsState,
		FollowersState: r.FollowersState,
		Description:    r.Description,
		Website:        r.Website,
		MetricsURL:     r.MetricsURL,
	}
}

func (d mongoDoc) record() entity.Record {
	return entity.Record{
		ID:             d.ID,
		Name:           d.Name,
		Handle:         d.Handle,
		UpdatedAt:      entity.NewTimestamp(d.UpdatedAt),
		Profile:        entity.Profile(d.Profile),
		FriendIDs:      nonNil(d.FriendIDs),
		FollowerIDs:    nonNil(d.FollowerIDs),
		FriendsState:   d.FriendsState,
		FollowersState: d.FollowersState,
		Description:    d.Description,
		Website:        d.Website,
		MetricsURL:     d.MetricsURL,
	}
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
