package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/matzehuels/biotree/pkg/errors"
	"github.com/matzehuels/biotree/pkg/observability"
)

const testKey = "bio-tree:flow:v1"

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, found, err := s.Get(ctx, testKey)
	require.NoError(t, err, "get on empty store")
	require.False(t, found, "empty store reported a hit")

	require.NoError(t, s.Set(ctx, testKey, []byte(`{"nodes":[]}`)))
	data, found, err := s.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, found, "value not found after set")
	require.Equal(t, `{"nodes":[]}`, string(data))

	require.NoError(t, s.Set(ctx, testKey, []byte(`{"nodes":[],"edges":[]}`)), "overwrite")
	data, _, err = s.Get(ctx, testKey)
	require.NoError(t, err)
	require.Equal(t, `{"nodes":[],"edges":[]}`, string(data), "overwrite did not replace value")

	require.NoError(t, s.Set(ctx, "other", []byte("x")))
	require.NoError(t, s.Delete(ctx, testKey))
	_, found, err = s.Get(ctx, testKey)
	require.NoError(t, err)
	require.False(t, found, "value still present after delete")

	_, found, err = s.Get(ctx, "other")
	require.NoError(t, err)
	require.True(t, found, "delete removed an unrelated key")

	require.NoError(t, s.Delete(ctx, "missing"), "deleting a missing key")
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
	require.Equal(t, DriverMemory, s.Driver())
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'X'

	got, _, err := s.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, "abc", string(got))
	got[1] = 'Y'

	again, _, _ := s.Get(ctx, "k")
	require.Equal(t, "abc", string(again))
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)
	require.Equal(t, DriverFile, s.Driver())
}

func TestFileStorePathIsHashed(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	p := s.Path(testKey)
	require.True(t, strings.HasPrefix(p, dir), "path %s outside store dir", p)
	require.Equal(t, ".json", filepath.Ext(p))
	require.NotContains(t, filepath.Base(p), ":")

	require.NoError(t, s.Set(context.Background(), testKey, []byte("{}")))
	_, err = os.Stat(p)
	require.NoError(t, err, "snapshot file not written at Path()")
}

func TestFileStoreDefaultDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", t.TempDir())
	s, err := NewFileStore("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(os.Getenv("XDG_DATA_HOME"), "biotree"), s.Dir())
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "biotree.db")
	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	exerciseStore(t, s)
	require.Equal(t, DriverSQLite, s.Driver())
}

func TestSQLiteStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "biotree.db")

	s, err := NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, testKey, []byte(`{"edges":[]}`)))
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(ctx, path)
	require.NoError(t, err)
	defer s.Close()
	data, found, err := s.Get(ctx, testKey)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, `{"edges":[]}`, string(data))
}

func TestParseDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    Driver
		wantErr bool
	}{
		{"", DriverFile, false},
		{"file", DriverFile, false},
		{"SQLite", DriverSQLite, false},
		{"s3", DriverS3, false},
		{"etcd", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDriver(tt.in)
			if tt.wantErr {
				require.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "err = %v", err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestOpenMemoryIsInstrumented(t *testing.T) {
	observability.Reset()
	defer observability.Reset()
	hooks := &countingHooks{}
	observability.SetStoreHooks(hooks)

	ctx := context.Background()
	s, err := Open(ctx, Config{Driver: DriverMemory})
	require.NoError(t, err)
	defer s.Close()

	_, _, err = s.Get(ctx, testKey)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, testKey, []byte("1234")))
	_, _, err = s.Get(ctx, testKey)
	require.NoError(t, err)

	require.Equal(t, 1, hooks.misses)
	require.Equal(t, 1, hooks.hits)
	require.Equal(t, 4, hooks.written)
}

func TestInstrumentedRejectsBadKeys(t *testing.T) {
	s := Instrument(NewMemoryStore())
	ctx := context.Background()

	for _, key := range []string{"", "../etc/passwd", "a b", "dir/key"} {
		err := s.Set(ctx, key, []byte("x"))
		require.True(t, errors.Is(err, errors.ErrCodeInvalidInput), "Set(%q) err = %v", key, err)
	}
	require.Same(t, s, Instrument(s), "Instrument should not double-wrap")
}

func TestOpenFailuresAreStorageErrors(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	cases := []Config{
		{Driver: DriverPostgres},
		{Driver: DriverRedis},
		{Driver: DriverS3},
	}
	t.Setenv("BIOTREE_POSTGRES_DSN", "")
	for _, cfg := range cases {
		t.Run(string(cfg.Driver), func(t *testing.T) {
			_, err := Open(ctx, cfg)
			require.Error(t, err)
			require.True(t, errors.Is(err, errors.ErrCodeStorage), "err = %v", err)
		})
	}
}

func TestS3ObjectKey(t *testing.T) {
	s, err := NewS3Store(context.Background(), S3Config{
		Bucket:          "trees",
		Prefix:          "snapshots/",
		Endpoint:        "http://localhost:9000",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	})
	require.NoError(t, err)
	require.Equal(t, "snapshots/bio-tree:flow:v1.json", s.ObjectKey(testKey))
	require.Equal(t, DriverS3, s.Driver())
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.Equal(t, DriverFile, cfg.Driver)
	require.Equal(t, "biotree", cfg.Mongo.Database)
	require.NotEmpty(t, cfg.Redis.Addr)
}

type countingHooks struct {
	hits, misses, written int
}

func (h *countingHooks) OnStoreHit(context.Context, string)           { h.hits++ }
func (h *countingHooks) OnStoreMiss(context.Context, string)          { h.misses++ }
func (h *countingHooks) OnStoreSet(_ context.Context, _ string, n int) { h.written += n }
