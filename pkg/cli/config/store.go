package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/interfaces"
	"github.com/secmon-lab/zenmemory/pkg/repository/firestore"
	"github.com/secmon-lab/zenmemory/pkg/repository/local"
	"github.com/secmon-lab/zenmemory/pkg/repository/memory"
	"github.com/secmon-lab/zenmemory/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Store backends
const (
	BackendLocal     = "local"
	BackendMemory    = "memory"
	BackendFirestore = "firestore"
)

const DefaultLocalDir = "./memory_data"

// Store holds CLI flags for the vector store backend
type Store struct {
	backend    string
	localDir   string
	projectID  string
	databaseID string
	collection string
}

func (s *Store) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "store-backend",
			Usage:       "Vector store backend (local, memory or firestore)",
			Value:       BackendLocal,
			Category:    "Store",
			Sources:     cli.EnvVars("ZENMEMORY_STORE_BACKEND"),
			Destination: &s.backend,
		},
		&cli.StringFlag{
			Name:        "local-dir",
			Usage:       "Base directory of the local store",
			Value:       DefaultLocalDir,
			Category:    "Store",
			Sources:     cli.EnvVars("ZENMEMORY_LOCAL_DIR"),
			Destination: &s.localDir,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using firestore backend)",
			Category:    "Store",
			Sources:     cli.EnvVars("ZENMEMORY_FIRESTORE_PROJECT_ID"),
			Destination: &s.projectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Store",
			Sources:     cli.EnvVars("ZENMEMORY_FIRESTORE_DATABASE_ID"),
			Destination: &s.databaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection",
			Usage:       "Firestore collection shared by all owners",
			Value:       firestore.DefaultCollection,
			Category:    "Store",
			Sources:     cli.EnvVars("ZENMEMORY_FIRESTORE_COLLECTION"),
			Destination: &s.collection,
		},
	}
}

func (s *Store) Backend() string {
	return s.backend
}

func (s *Store) LocalDir() string {
	return s.localDir
}

func (s *Store) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("backend", s.backend)}
	switch s.backend {
	case BackendLocal:
		attrs = append(attrs, slog.String("local_dir", s.localDir))
	case BackendFirestore:
		attrs = append(attrs,
			slog.String("project_id", s.projectID),
			slog.String("database_id", s.databaseID),
			slog.String("collection", s.collection),
		)
	}
	return slog.GroupValue(attrs...)
}

// Configure builds the configured store. The caller is responsible for
// calling Close() on it. The firestore backend does not connect until its
// first operation.
func (s *Store) Configure(ctx context.Context) (interfaces.MemoryStore, error) {
	switch s.backend {
	case BackendLocal:
		store, err := local.New(s.localDir)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize local store")
		}
		logging.From(ctx).Info("Using local vector store", "dir", s.localDir)
		return store, nil

	case BackendMemory:
		logging.From(ctx).Info("Using in-memory vector store (development mode)")
		return memory.New(), nil

	case BackendFirestore:
		if s.projectID == "" {
			return nil, goerr.Wrap(ErrInvalidConfig, "firestore-project-id is required when using firestore backend",
				goerr.V(FieldKey, "firestore-project-id"))
		}
		logging.From(ctx).Info("Using Firestore vector store",
			"project_id", s.projectID,
			"database_id", s.databaseID,
			"collection", s.collection,
		)
		return firestore.New(s.projectID, s.databaseID, firestore.WithCollection(s.collection)), nil

	default:
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid store backend", goerr.V(BackendKey, s.backend))
	}
}

// ConfigureLocal opens the local store regardless of the selected backend
func (s *Store) ConfigureLocal() (*local.Store, error) {
	store, err := local.New(s.localDir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize local store")
	}
	return store, nil
}
