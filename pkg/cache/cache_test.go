package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/clipper-video/clipper/pkg/orm"
)

type testJob struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Progress float64 `json:"progress"`
}

// runDriverSuite 各驱动共用的行为测试
func runDriverSuite(t *testing.T, c Cache) {
	ctx := context.Background()

	t.Run("Set/Get", func(t *testing.T) {
		job := testJob{ID: "a1", Status: "running", Progress: 40}
		require.NoError(t, c.Set(ctx, "job:a1", job, NoExpiration))

		var got testJob
		require.NoError(t, c.Get(ctx, "job:a1", &got))
		assert.Equal(t, job, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "slot", testJob{ID: "1", Status: "queued"}, NoExpiration))
		require.NoError(t, c.Set(ctx, "slot", testJob{ID: "2"}, NoExpiration))

		got, ok, err := Lookup[testJob](ctx, c, "slot")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, testJob{ID: "2"}, got)
	})

	t.Run("NotFound", func(t *testing.T) {
		var v string
		err := c.Get(ctx, "missing", &v)
		assert.ErrorIs(t, err, ErrCacheNotFound)

		_, ok, err := Lookup[string](ctx, c, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "key1", "value1", time.Minute))
		require.NoError(t, c.Delete(ctx, "key1"))
		require.NoError(t, c.Delete(ctx, "key1"), "delete must be idempotent")

		_, ok, err := Lookup[string](ctx, c, "key1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("DeleteMany", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k1", "v", time.Minute))
		require.NoError(t, c.Set(ctx, "k2", "v", time.Minute))
		require.NoError(t, c.Delete(ctx, "k1", "k2", "absent"))
		require.NoError(t, c.Delete(ctx))

		for _, k := range []string{"k1", "k2"} {
			_, ok, err := Lookup[string](ctx, c, k)
			require.NoError(t, err)
			assert.False(t, ok, k)
		}
	})

	t.Run("SerializationError", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "str", "plain", NoExpiration))

		var got testJob
		err := c.Get(ctx, "str", &got)
		assert.ErrorIs(t, err, ErrCacheSerialization)

		_, ok, err := Lookup[testJob](ctx, c, "str")
		assert.ErrorIs(t, err, ErrCacheSerialization)
		assert.False(t, ok)
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, c.Ping(ctx))
	})
}

func TestMemoryCache(t *testing.T) {
	c, err := NewWithOptions(
		WithMemory(DefaultMemoryConfig()),
		WithKeyPrefix("test:"),
	)
	require.NoError(t, err)
	defer c.Close()

	runDriverSuite(t, c)
}

func TestMemoryCache_TTL(t *testing.T) {
	ctx := context.Background()
	c, err := NewWithOptions(WithMemory(&MemoryConfig{CleanupInterval: time.Minute}))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "short", "v", 20*time.Millisecond))
	time.Sleep(50 * time.Millisecond)

	var v string
	assert.ErrorIs(t, c.Get(ctx, "short", &v), ErrCacheNotFound)
}

func TestTracingCache(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})

	base, err := NewWithOptions(WithMemory(DefaultMemoryConfig()))
	require.NoError(t, err)
	c := NewTracing(base)
	defer c.Close()

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "current_job", testJob{ID: "7"}, NoExpiration))

	var got testJob
	require.NoError(t, c.Get(ctx, "current_job", &got))
	assert.Equal(t, "7", got.ID)

	require.NoError(t, c.Delete(ctx, "current_job"))
	assert.ErrorIs(t, c.Get(ctx, "current_job", &got), ErrCacheNotFound)

	spans := recorder.Ended()
	require.Len(t, spans, 4)
	names := make([]string, 0, len(spans))
	for _, s := range spans {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"cache.Set", "cache.Get", "cache.Delete", "cache.Get"}, names)

	miss := spans[3]
	assert.Equal(t, codes.Ok, miss.Status().Code)
	assert.Contains(t, miss.Attributes(), attribute.Bool("cache.hit", false))
}

func TestBadgerCache(t *testing.T) {
	c, err := NewWithOptions(WithBadger(&BadgerConfig{InMemory: true}), WithKeyPrefix("clipper:"))
	require.NoError(t, err)
	defer c.Close()

	runDriverSuite(t, c)
}

func TestBadgerCache_Persistent(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "store")

	c, err := NewWithOptions(WithBadger(&BadgerConfig{Dir: dir}))
	require.NoError(t, err)
	require.NoError(t, c.Set(ctx, "current_job", testJob{ID: "x"}, NoExpiration))
	require.NoError(t, c.Close())

	// 重新打开后数据仍在
	c, err = NewWithOptions(WithBadger(&BadgerConfig{Dir: dir}))
	require.NoError(t, err)
	defer c.Close()

	got, ok, err := Lookup[testJob](ctx, c, "current_job")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "x", got.ID)
}

func TestDatabaseCache(t *testing.T) {
	dbCfg := orm.DefaultConfig()
	dbCfg.DSN = filepath.Join(t.TempDir(), "cache.db")

	c, err := NewWithOptions(WithDatabase(&DatabaseConfig{ORM: dbCfg}))
	require.NoError(t, err)
	defer c.Close()

	runDriverSuite(t, c)
}

func TestDatabaseCache_Expired(t *testing.T) {
	ctx := context.Background()
	dbCfg := orm.DefaultConfig()
	dbCfg.DSN = filepath.Join(t.TempDir(), "cache.db")

	c, err := NewWithOptions(WithDatabase(&DatabaseConfig{ORM: dbCfg, Table: "kv"}))
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "short", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	var v string
	assert.ErrorIs(t, c.Get(ctx, "short", &v), ErrCacheNotFound)
}

func TestJSONSerializer(t *testing.T) {
	var s JSONSerializer
	data, err := s.Marshal(testJob{ID: "a", Status: "done", Progress: 100})
	require.NoError(t, err)

	var got testJob
	require.NoError(t, s.Unmarshal(data, &got))
	assert.Equal(t, testJob{ID: "a", Status: "done", Progress: 100}, got)

	assert.ErrorIs(t, s.Unmarshal([]byte("  "), &got), errEmptyValue)
	assert.Error(t, s.Unmarshal([]byte("{"), &got))
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("CLIPPER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("CLIPPER_TEST_REDIS_ADDR not set")
	}

	rc := DefaultRedisConfig()
	rc.Addr = addr
	c, err := NewWithOptions(WithRedis(rc), WithKeyPrefix("clipper-test:"))
	require.NoError(t, err)
	defer c.Close()

	runDriverSuite(t, c)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Config
	}{
		{"unknown driver", &Config{Driver: "etcd", Serializer: JSONSerializer{}}},
		{"nil serializer", &Config{Driver: DriverMemory, Memory: DefaultMemoryConfig()}},
		{"badger without dir", &Config{Driver: DriverBadger, Serializer: JSONSerializer{}, Badger: &BadgerConfig{}}},
		{"database without dsn", &Config{Driver: DriverDatabase, Serializer: JSONSerializer{}, Database: &DatabaseConfig{ORM: &orm.Config{}}}},
		{"redis cluster too small", &Config{Driver: DriverRedis, Serializer: JSONSerializer{}, Redis: &RedisConfig{Mode: RedisCluster, Addrs: []string{"a"}}}},
		{"sentinel without master", &Config{Driver: DriverRedis, Serializer: JSONSerializer{}, Redis: &RedisConfig{Mode: RedisSentinel, Addrs: []string{"a"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), ErrCacheInvalidConfig)
		})
	}

	assert.NoError(t, DefaultConfig().Validate())
}

func TestCodec(t *testing.T) {
	c := newCodec(&Config{Serializer: JSONSerializer{}, KeyPrefix: "clipper:", DefaultTTL: time.Minute})

	assert.Equal(t, "clipper:current_job", c.key("current_job"))
	assert.Equal(t, []string{"clipper:a", "clipper:b"}, c.keys([]string{"a", "b"}))

	assert.Equal(t, time.Minute, c.expiry(0))
	assert.Equal(t, time.Second, c.expiry(time.Second))
	assert.Zero(t, c.expiry(NoExpiration))

	_, err := c.encode(make(chan int))
	assert.ErrorIs(t, err, ErrCacheSerialization)
}

func TestMemoryCache_DefaultTTL(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.DefaultTTL = 20 * time.Millisecond
	c, err := New(cfg)
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(ctx, "default", "v", 0))
	require.NoError(t, c.Set(ctx, "forever", "v", NoExpiration))
	time.Sleep(50 * time.Millisecond)

	_, ok, err := Lookup[string](ctx, c, "default")
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := Lookup[string](ctx, c, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}
