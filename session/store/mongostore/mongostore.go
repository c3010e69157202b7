// Package mongostore implements session.Store backed by MongoDB, for hosts
// that run many concurrent sessions across processes and want shared,
// queryable state rather than one JSON file per process (§3.1).
package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

const (
	defaultCollection = "pruning_sessions"
	defaultOpTimeout  = 5 * time.Second
)

// Options configures the Mongo-backed Store.
type Options struct {
	// Client is a connected Mongo client. Required.
	Client *mongodriver.Client
	// Database is the database name. Required.
	Database string
	// Collection overrides the default "pruning_sessions" collection name.
	Collection string
	// Timeout bounds individual operations. Zero uses a 5s default.
	Timeout time.Duration
}

// Store persists pruning session.State documents in MongoDB, one document
// per session keyed by session_id.
type Store struct {
	coll    *mongodriver.Collection
	timeout time.Duration
}

// sessionDocument is the on-disk shape: the full §6 persisted payload
// stored verbatim as JSON bytes under "data", alongside an indexed
// session_id for lookup. Storing the payload opaquely (rather than
// flattening it into BSON fields) keeps this backend schema-compatible
// with the jsonfile backend's Marshal/Unmarshal without duplicating the
// tagged Map/Set encoding logic in BSON.
type sessionDocument struct {
	SessionID string    `bson:"session_id"`
	UpdatedAt time.Time `bson:"updated_at"`
	Data      []byte    `bson:"data"`
}

// New constructs a Mongo-backed Store, creating the session_id index if it
// does not already exist.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.Client == nil {
		return nil, errors.New("mongostore: client is required")
	}
	if opts.Database == "" {
		return nil, errors.New("mongostore: database name is required")
	}
	collName := opts.Collection
	if collName == "" {
		collName = defaultCollection
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	coll := opts.Client.Database(opts.Database).Collection(collName)

	ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_, err := coll.Indexes().CreateOne(ctxTimeout, mongodriver.IndexModel{
		Keys:    bson.D{{Key: "session_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}
	return &Store{coll: coll, timeout: timeout}, nil
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, s.timeout)
}

// Save upserts the full serialized state for st.SessionID.
func (s *Store) Save(ctx context.Context, st *session.State) error {
	data, err := st.Marshal()
	if err != nil {
		return err
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	filter := bson.M{"session_id": st.SessionID}
	update := bson.M{
		"$set": bson.M{
			"session_id": st.SessionID,
			"updated_at": time.Now().UTC(),
			"data":       data,
		},
	}
	_, err = s.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// Load restores state for sessionID, returning (nil, nil) when no document
// exists yet.
func (s *Store) Load(ctx context.Context, sessionID string) (*session.State, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	var doc sessionDocument
	err := s.coll.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return session.Unmarshal(doc.Data)
}

var _ session.Store = (*Store)(nil)
