package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"
)

// ErrLocked otro proceso tiene el lock.
var ErrLocked = errors.New("recurso bloqueado por otro proceso")

// Locker lock distribuido para tareas de mantenimiento que no deben correr en paralelo
// (importación de saldos iniciales).
type Locker struct {
	client *redislock.Client
}

// NewLocker construye el locker sobre un cliente Redis.
func NewLocker(rdb goredis.UniversalClient) *Locker {
	return &Locker{client: redislock.New(rdb)}
}

// WithLock ejecuta fn mientras mantiene el lock "lock:<name>". El lock expira tras ttl si el
// proceso muere; fn debe terminar antes.
func (l *Locker) WithLock(ctx context.Context, name string, ttl time.Duration, fn func(ctx context.Context) error) error {
	lock, err := l.client.Obtain(ctx, "lock:"+name, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return fmt.Errorf("%s: %w", name, ErrLocked)
	}
	if err != nil {
		return fmt.Errorf("obtain lock %s: %w", name, err)
	}
	defer func() { _ = lock.Release(context.WithoutCancel(ctx)) }()
	return fn(ctx)
}
