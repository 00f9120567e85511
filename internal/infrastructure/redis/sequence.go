package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/backoffice-core/internal/domain/repository"
)

var _ repository.SequenceRepository = (*Sequence)(nil)

const sequenceKeyPrefix = "seq:"

// Sequence secuencia central con INCR: atómica entre instancias y sin retroceso.
type Sequence struct {
	rdb goredis.Cmdable
}

// NewSequence construye la secuencia sobre un cliente Redis.
func NewSequence(rdb goredis.Cmdable) *Sequence {
	return &Sequence{rdb: rdb}
}

// NextValue incrementa el contador de key; el primer valor es 1.
func (s *Sequence) NextValue(ctx context.Context, key string) (int64, error) {
	v, err := s.rdb.Incr(ctx, sequenceKeyPrefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	return v, nil
}
