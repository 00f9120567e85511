package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/backoffice-core/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo secuencia central sobre la tabla sys_sequences. Se ejecuta fuera de la
// transacción del llamador: un valor consumido no se devuelve en un rollback.
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye la secuencia. Pasar el pool.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// NextValue incrementa atómicamente el contador de key y devuelve el nuevo valor (1 en el primer uso).
func (r *SequenceRepo) NextValue(ctx context.Context, key string) (int64, error) {
	var v int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, value) VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE SET value = sys_sequences.value + 1
		RETURNING value`, key,
	).Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("next sequence value %s: %w", key, err)
	}
	return v, nil
}
