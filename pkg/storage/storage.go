// Package storage persists diagram snapshots as opaque blobs under string keys.
//
// A [Store] is a minimal key/value port: the editor writes one JSON document
// under a fixed key after every change and reads it back on startup. Several
// backends implement it:
//
//   - file: one file per key under a data directory (the CLI default)
//   - memory: process-local map, for tests and ephemeral servers
//   - sqlite: a single table in a local database file
//   - postgres: the same table in a PostgreSQL database
//   - redis: plain string values
//   - mongo: one document per key
//   - s3: one object per key in an S3-compatible bucket
//
// Use [Open] to construct a store from [Config]. Stores returned by Open
// validate keys, wrap backend failures as STORAGE_ERROR and report reads and
// writes to the observability hooks.
package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/biotree/pkg/errors"
	"github.com/matzehuels/biotree/pkg/observability"
)

// Store is a blob store keyed by string.
type Store interface {
	// Get returns the blob stored under key. found is false, with a nil
	// error, when nothing is stored there.
	Get(ctx context.Context, key string) (data []byte, found bool, err error)

	// Set stores data under key, replacing any previous value.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Driver identifies the backend.
	Driver() Driver

	// Close releases connections held by the store.
	Close() error
}

// Driver names a storage backend.
type Driver string

// Supported drivers.
const (
	DriverFile     Driver = "file"
	DriverMemory   Driver = "memory"
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverRedis    Driver = "redis"
	DriverMongo    Driver = "mongo"
	DriverS3       Driver = "s3"
)

// Drivers lists every supported driver.
var Drivers = []Driver{
	DriverFile, DriverMemory, DriverSQLite, DriverPostgres,
	DriverRedis, DriverMongo, DriverS3,
}

// ParseDriver validates a driver name. The empty string selects the file driver.
func ParseDriver(s string) (Driver, error) {
	if s == "" {
		return DriverFile, nil
	}
	d := Driver(strings.ToLower(s))
	for _, known := range Drivers {
		if d == known {
			return d, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown storage driver %q", s)
}

// Open constructs the store selected by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver, err := ParseDriver(string(cfg.Driver))
	if err != nil {
		return nil, err
	}

	var s Store
	switch driver {
	case DriverFile:
		s, err = NewFileStore(cfg.File.Dir)
	case DriverMemory:
		s = NewMemoryStore()
	case DriverSQLite:
		s, err = NewSQLiteStore(ctx, cfg.SQLite.Path)
	case DriverPostgres:
		s, err = NewPostgresStore(ctx, cfg.Postgres.DSN)
	case DriverRedis:
		s, err = NewRedisStore(ctx, cfg.Redis)
	case DriverMongo:
		s, err = NewMongoStore(ctx, cfg.Mongo)
	case DriverS3:
		s, err = NewS3Store(ctx, cfg.S3)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "open %s store", driver)
	}
	return Instrument(s), nil
}

// Instrument wraps s with key validation, error codes and observability hooks.
func Instrument(s Store) Store {
	if _, ok := s.(*instrumented); ok {
		return s
	}
	return &instrumented{inner: s}
}

type instrumented struct {
	inner Store
}

func (s *instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := errors.ValidateStorageKey(key); err != nil {
		return nil, false, err
	}
	data, found, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "get %s", key)
	}
	if found {
		observability.Store().OnStoreHit(ctx, string(s.inner.Driver()))
	} else {
		observability.Store().OnStoreMiss(ctx, string(s.inner.Driver()))
	}
	return data, found, nil
}

func (s *instrumented) Set(ctx context.Context, key string, data []byte) error {
	if err := errors.ValidateStorageKey(key); err != nil {
		return err
	}
	if err := s.inner.Set(ctx, key, data); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "set %s", key)
	}
	observability.Store().OnStoreSet(ctx, string(s.inner.Driver()), len(data))
	return nil
}

func (s *instrumented) Delete(ctx context.Context, key string) error {
	if err := errors.ValidateStorageKey(key); err != nil {
		return err
	}
	if err := s.inner.Delete(ctx, key); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "delete %s", key)
	}
	return nil
}

func (s *instrumented) Driver() Driver { return s.inner.Driver() }

func (s *instrumented) Close() error {
	if err := s.inner.Close(); err != nil {
		return fmt.Errorf("close %s store: %w", s.inner.Driver(), err)
	}
	return nil
}
