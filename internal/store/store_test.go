package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ip-licensing-portal/internal/models"
)

func sampleRequests() []models.LicenseRequest {
	return []models.LicenseRequest{
		{ID: "a", Name: "Ada", Email: "ada@x.com", Use: "research", Duration: "1 year", Accepted: true, Status: models.RequestStatusPending},
		{Name: "Grace", Email: "grace@x.com", Use: "teaching", Duration: "6 months", Accepted: true, Status: models.RequestStatusApproved},
		{Name: "Legacy", Email: "old@x.com", Use: "archive", Duration: "perpetual", Accepted: true},
	}
}

func backends(t *testing.T) map[string]Backend {
	t.Helper()

	fileBackend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	dsn := "file:" + filepath.Join(t.TempDir(), "store.db")
	sqliteBackend, err := NewSQLiteBackend(context.Background(), dsn, "storage_entries")
	require.NoError(t, err)
	t.Cleanup(func() { sqliteBackend.Close() })

	mr := miniredis.RunT(t)
	redisBackend := NewRedisBackendWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { redisBackend.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"file":   fileBackend,
		"sqlite": sqliteBackend,
		"redis":  redisBackend,
	}
}

func TestLoadMissingEntryReturnsEmptyList(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s := NewJSONStore(backend, DefaultKey)

			requests, err := s.Load(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, requests)
			assert.Empty(t, requests)
		})
	}
}

func TestSaveThenLoadKeepsOrder(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewJSONStore(backend, DefaultKey)

			require.NoError(t, s.Save(ctx, sampleRequests()))

			loaded, err := s.Load(ctx)
			require.NoError(t, err)
			assert.Equal(t, sampleRequests(), loaded)
		})
	}
}

func TestSaveOfLoadIsIdempotent(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := NewJSONStore(backend, DefaultKey)
			require.NoError(t, s.Save(ctx, sampleRequests()))

			before, _, err := backend.Get(ctx, DefaultKey)
			require.NoError(t, err)

			loaded, err := s.Load(ctx)
			require.NoError(t, err)
			require.NoError(t, s.Save(ctx, loaded))

			after, _, err := backend.Get(ctx, DefaultKey)
			require.NoError(t, err)
			assert.JSONEq(t, string(before), string(after))
		})
	}
}

func TestSaveOverwritesWholeList(t *testing.T) {
	ctx := context.Background()
	s := NewJSONStore(NewMemoryBackend(), DefaultKey)

	require.NoError(t, s.Save(ctx, sampleRequests()))
	require.NoError(t, s.Save(ctx, sampleRequests()[:1]))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestLoadSwallowsCorruptValues(t *testing.T) {
	cases := map[string]string{
		"not json":   "{{{",
		"null":       "null",
		"object":     `{"name":"Ada"}`,
		"wrong type": `[1, 2, 3]`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			backend := NewMemoryBackend()
			require.NoError(t, backend.Put(ctx, DefaultKey, []byte(raw)))

			requests, err := NewJSONStore(backend, DefaultKey).Load(ctx)
			require.NoError(t, err)
			assert.Empty(t, requests)
		})
	}
}

func TestLoadDropsOnlyUnreadableRecords(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	raw := `[
		{"name":"Ada","email":"ada@x.com","use":"research","duration":"1 year","accepted":true,"status":"approved"},
		{"name":"Bad status","status":5},
		{"name":"Bad accepted","accepted":"on"},
		null,
		{"name":"Grace","email":"grace@x.com","use":"teaching","duration":"6 months","accepted":true}
	]`
	require.NoError(t, backend.Put(ctx, DefaultKey, []byte(raw)))

	s := NewJSONStore(backend, DefaultKey)
	requests, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, requests, 2)
	assert.Equal(t, "Ada", requests[0].Name)
	assert.Equal(t, models.RequestStatusApproved, requests[0].Status)
	assert.Equal(t, "Grace", requests[1].Name)

	// Saving what was read keeps the readable records.
	require.NoError(t, s.Save(ctx, append(requests, models.LicenseRequest{Name: "New", Accepted: true})))
	reloaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, reloaded, 3)
}

func TestEmptyKeyFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	require.NoError(t, NewJSONStore(backend, "").Save(ctx, sampleRequests()))

	_, ok, err := backend.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFileBackendRejectsPathKeys(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "a/b", `a\b`} {
		assert.Error(t, backend.Put(context.Background(), key, []byte("[]")), key)
	}
}

func TestLoadReportsUnreachableBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	backend := NewRedisBackendWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer backend.Close()

	ctx := context.Background()
	s := NewJSONStore(backend, DefaultKey)
	require.NoError(t, s.Save(ctx, sampleRequests()))

	mr.SetError("ERR backend unavailable")

	_, err := s.Load(ctx)
	assert.Error(t, err)
	assert.Error(t, s.Save(ctx, nil))

	mr.SetError("")
	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded, 3)
}

func TestRedisBackendStoresWithoutExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	backend := NewRedisBackendWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer backend.Close()

	require.NoError(t, backend.Put(context.Background(), DefaultKey, []byte("[]")))

	value, err := mr.Get(DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", value)
	assert.Zero(t, mr.TTL(DefaultKey))
}
