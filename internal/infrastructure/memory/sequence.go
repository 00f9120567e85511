package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/jhoicas/backoffice-core/internal/domain/repository"
)

var _ repository.SequenceRepository = (*Sequence)(nil)

// ErrSequenceUnavailable falla simulada de la secuencia central.
var ErrSequenceUnavailable = errors.New("secuencia no disponible")

// Sequence contador por clave. Los valores consumidos no se devuelven en un rollback,
// igual que una secuencia de base de datos.
type Sequence struct {
	mu          sync.Mutex
	values      map[string]int64
	unavailable bool
}

// NewSequence construye la secuencia vacía.
func NewSequence() *Sequence {
	return &Sequence{values: map[string]int64{}}
}

// SetUnavailable simula la caída del servicio de secuencia.
func (s *Sequence) SetUnavailable(down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unavailable = down
}

// Seed fija el último valor entregado para key.
func (s *Sequence) Seed(key string, last int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = last
}

func (s *Sequence) NextValue(ctx context.Context, key string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unavailable {
		return 0, ErrSequenceUnavailable
	}
	s.values[key]++
	return s.values[key], nil
}
