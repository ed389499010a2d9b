// Package firestore implements core.Store on top of Google Cloud Firestore.
//
// It is a thin translation layer: queries, preconditions, transforms and
// batches all map one-to-one onto the native client. No retry or timeout
// policy is added here; the client's own configuration applies, and errors
// pass through unmodified except for the NotFound mapping to DoesNotExist.
package firestore

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"github.com/emberhq/ember/pkg/core"
)

// Store is a Firestore-backed core.Store.
type Store struct {
	client *firestore.Client
	logger *slog.Logger
}

type config struct {
	database      string
	logger        *slog.Logger
	clientOptions []option.ClientOption
}

// Option configures the store.
type Option func(*config)

// WithDatabase selects a named Firestore database instead of "(default)".
func WithDatabase(database string) Option {
	return func(c *config) { c.database = database }
}

// WithLogger sets the logger used for debug traces.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithClientOptions forwards options (credentials, endpoint, ...) to the
// underlying client. Credential resolution itself stays with the client.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(c *config) { c.clientOptions = append(c.clientOptions, opts...) }
}

// New connects to Firestore for the given project.
func New(ctx context.Context, projectID string, opts ...Option) (*Store, error) {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	var client *firestore.Client
	var err error
	if cfg.database != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, cfg.database, cfg.clientOptions...)
	} else {
		client, err = firestore.NewClient(ctx, projectID, cfg.clientOptions...)
	}
	if err != nil {
		return nil, fmt.Errorf("firestore: connect: %w", err)
	}
	return &Store{client: client, logger: cfg.logger}, nil
}

// NewStore wraps an existing client, e.g. one pointed at the emulator.
func NewStore(client *firestore.Client, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, logger: logger}
}

// NewID implements core.Store using the client's local ID allocation.
func (s *Store) NewID(collection string) string {
	return s.client.Collection(collection).NewDoc().ID
}

// Get implements core.Store.
func (s *Store) Get(ctx context.Context, collection, id string) (core.Document, error) {
	snap, err := s.client.Collection(collection).Doc(id).Get(ctx)
	if err != nil {
		return core.Document{}, mapError(err, collection, id)
	}
	if !snap.Exists() {
		return core.Document{}, &core.DoesNotExist{Collection: collection, ID: id}
	}
	return core.Document{Collection: collection, ID: snap.Ref.ID, Data: snap.Data()}, nil
}

// Set implements core.Store (upsert).
func (s *Store) Set(ctx context.Context, collection, id string, data core.Data) error {
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, map[string]any(data))
	if err != nil {
		return mapError(err, collection, id)
	}
	s.logger.Debug("firestore: set", "collection", collection, "id", id)
	return nil
}

// Update implements core.Store. The native update already carries an
// exists precondition, so an absent target surfaces as DoesNotExist.
func (s *Store) Update(ctx context.Context, collection, id string, updates []core.Update) error {
	native, err := nativeUpdates(updates)
	if err != nil {
		return err
	}
	_, err = s.client.Collection(collection).Doc(id).Update(ctx, native)
	if err != nil {
		return mapError(err, collection, id)
	}
	s.logger.Debug("firestore: update", "collection", collection, "id", id, "fields", len(updates))
	return nil
}

// Delete implements core.Store. Firestore deletes are no-ops on absent
// documents; the exists precondition restores fail-on-absent semantics.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.Collection(collection).Doc(id).Delete(ctx, firestore.Exists)
	if err != nil {
		return mapError(err, collection, id)
	}
	s.logger.Debug("firestore: delete", "collection", collection, "id", id)
	return nil
}

// Close implements core.Store.
func (s *Store) Close() error {
	return s.client.Close()
}

// nativeUpdates converts update instructions, lowering transform markers to
// the client's server-side transform sentinels. The variant switch is
// exhaustive over core.Transform.
func nativeUpdates(updates []core.Update) ([]firestore.Update, error) {
	out := make([]firestore.Update, 0, len(updates))
	for _, u := range updates {
		native := firestore.Update{Path: u.FieldPath}
		switch op := u.Value.(type) {
		case core.IncrementOp:
			native.Value = firestore.Increment(op.By)
		case core.ArrayUnionOp:
			native.Value = firestore.ArrayUnion(op.Values...)
		case core.ArrayRemoveOp:
			native.Value = firestore.ArrayRemove(op.Values...)
		case core.Transform:
			return nil, fmt.Errorf("firestore: unsupported transform %T", op)
		default:
			native.Value = u.Value
		}
		out = append(out, native)
	}
	return out, nil
}
