package redis_test

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-core/internal/infrastructure/redis"
	"github.com/jhoicas/backoffice-core/pkg/config"
)

// Requiere un Redis desechable: TEST_REDIS_ADDR=localhost:6379
func setupRedis(t *testing.T) config.SequenceConfig {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR no definido; se omiten pruebas de Redis")
	}
	return config.SequenceConfig{Backend: config.SequenceRedis, RedisAddr: addr}
}

func TestSequence_ValoresUnicosConcurrentes(t *testing.T) {
	cfg := setupRedis(t)
	rdb, err := redis.NewClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	seq := redis.NewSequence(rdb)
	key := "test-" + uuid.NewString()
	const n = 50

	var (
		mu   sync.Mutex
		seen = map[int64]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := seq.NextValue(context.Background(), key)
			assert.NoError(t, err)
			mu.Lock()
			seen[v] = true
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Len(t, seen, n)
	assert.True(t, seen[1] && seen[n])
}

func TestLocker_SegundoIntentoFalla(t *testing.T) {
	cfg := setupRedis(t)
	rdb, err := redis.NewClient(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	locker := redis.NewLocker(rdb)
	name := "test-" + uuid.NewString()

	err = locker.WithLock(context.Background(), name, 5*time.Second, func(ctx context.Context) error {
		inner := locker.WithLock(ctx, name, 5*time.Second, func(context.Context) error { return nil })
		assert.True(t, errors.Is(inner, redis.ErrLocked))
		return nil
	})
	require.NoError(t, err)

	// liberado: se puede volver a tomar
	require.NoError(t, locker.WithLock(context.Background(), name, time.Second, func(context.Context) error { return nil }))
}
