package firestore

import (
	"context"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/interfaces"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/utils/logging"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultCollection is the collection shared by all owners
const DefaultCollection = "memories"

const distanceField = "Distance"

// memoryDoc is the Firestore document representation of model.Memory.
// Embedding is stored as firestore.Vector32 for FindNearest vector search.
type memoryDoc struct {
	ID        model.MemoryID     `firestore:"ID"`
	Owner     model.Owner        `firestore:"Owner"`
	Text      string             `firestore:"Text"`
	Embedding firestore.Vector32 `firestore:"Embedding"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
}

// ClientFactory opens a Firestore client. It is called on first use.
type ClientFactory func(ctx context.Context, projectID, databaseID string) (*firestore.Client, error)

// Store keeps every owner's memories in one collection and filters each
// query by owner. The client is opened lazily on the first operation.
type Store struct {
	projectID  string
	databaseID string
	collection string
	dimension  int
	factory    ClientFactory

	mu     sync.Mutex
	client *firestore.Client
}

var _ interfaces.MemoryStore = &Store{}

type Option func(*Store)

func WithCollection(name string) Option {
	return func(s *Store) {
		s.collection = name
	}
}

// WithDimension overrides the expected embedding dimension
func WithDimension(dim int) Option {
	return func(s *Store) {
		s.dimension = dim
	}
}

// WithClientFactory replaces how the client is opened
func WithClientFactory(f ClientFactory) Option {
	return func(s *Store) {
		s.factory = f
	}
}

func defaultFactory(ctx context.Context, projectID, databaseID string) (*firestore.Client, error) {
	if databaseID == "" {
		return firestore.NewClient(ctx, projectID)
	}
	return firestore.NewClientWithDatabase(ctx, projectID, databaseID)
}

// New configures a store without any network I/O
func New(projectID, databaseID string, opts ...Option) *Store {
	s := &Store{
		projectID:  projectID,
		databaseID: databaseID,
		collection: DefaultCollection,
		dimension:  model.EmbeddingDimension,
		factory:    defaultFactory,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// connected reports whether a client has been opened
func (s *Store) connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.client != nil
}

// conn returns the client, opening it on first use. A failed attempt is not
// remembered; the next call tries again.
func (s *Store) conn(ctx context.Context) (*firestore.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return s.client, nil
	}
	if s.projectID == "" {
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "firestore project ID is not configured")
	}

	client, err := s.factory(ctx, s.projectID, s.databaseID)
	if err != nil {
		return nil, goerr.Wrap(model.ErrStoreUnavailable, "failed to create firestore client",
			goerr.V("project_id", s.projectID),
			goerr.V("database_id", s.databaseID),
			goerr.V("cause", err.Error()),
		)
	}

	s.client = client
	logging.From(ctx).Info("Firestore client connected",
		"project_id", s.projectID,
		"database_id", s.databaseID,
		"collection", s.collection,
	)
	return client, nil
}

func (s *Store) Upsert(ctx context.Context, mem *model.Memory) error {
	if err := mem.Validate(s.dimension); err != nil {
		return err
	}
	normalized, err := model.Normalize(mem.Embedding)
	if err != nil {
		return goerr.Wrap(err, "failed to normalize embedding", goerr.V(model.MemoryIDKey, mem.ID))
	}

	client, err := s.conn(ctx)
	if err != nil {
		return err
	}

	doc := &memoryDoc{
		ID:        mem.ID,
		Owner:     mem.Owner,
		Text:      mem.Text,
		Embedding: firestore.Vector32(normalized),
		CreatedAt: mem.CreatedAt,
	}

	// Create fails on an existing ID, keeping the collection append-only
	if _, err := client.Collection(s.collection).Doc(string(mem.ID)).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(model.ErrInvalidInput, "memory ID already exists", goerr.V(model.MemoryIDKey, mem.ID))
		}
		return goerr.Wrap(model.ErrStoreUnavailable, "failed to create memory",
			goerr.V(model.MemoryIDKey, mem.ID),
			goerr.V("cause", err.Error()),
		)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, owner model.Owner, query []float32, limit int) ([]*model.Memory, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}
	if err := model.CheckDimension(query, s.dimension); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []*model.Memory{}, nil
	}
	q, err := model.Normalize(query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to normalize query")
	}

	client, err := s.conn(ctx)
	if err != nil {
		return nil, err
	}

	vq := client.Collection(s.collection).
		Where("Owner", "==", string(owner)).
		FindNearest("Embedding", firestore.Vector32(q), limit, firestore.DistanceMeasureCosine,
			&firestore.FindNearestOptions{DistanceResultField: distanceField})

	iter := vq.Documents(ctx)
	defer iter.Stop()

	memories := make([]*model.Memory, 0, limit)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(model.ErrStoreUnavailable, "failed to iterate memory vector search results",
				goerr.V("cause", err.Error()))
		}

		var d memoryDoc
		if err := snap.DataTo(&d); err != nil {
			return nil, goerr.Wrap(model.ErrCorrupted, "failed to unmarshal memory from vector search",
				goerr.V("doc_id", snap.Ref.ID), goerr.V("cause", err.Error()))
		}

		mem := &model.Memory{
			ID:        d.ID,
			Owner:     d.Owner,
			Text:      d.Text,
			Embedding: []float32(d.Embedding),
			CreatedAt: d.CreatedAt,
		}
		if dist, ok := snap.Data()[distanceField].(float64); ok {
			mem.Score = 1 - dist
		}
		memories = append(memories, mem)
	}

	return memories, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	if err != nil {
		return goerr.Wrap(err, "failed to close firestore client")
	}
	return nil
}
