package repository

import "context"

// SequenceRepository secuencia central por clave. Cada llamada consume un valor.
type SequenceRepository interface {
	NextValue(ctx context.Context, key string) (int64, error)
}
