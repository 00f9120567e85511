// Package numbering genera identificadores legibles (pedidos, clientes, órdenes de compra)
// a partir de una secuencia central, con respaldo local marcado como degradado.
package numbering

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// Prefijos de numeración.
const (
	PrefixOrder         = "ORD"
	PrefixCustomer      = "CUS"
	PrefixPurchaseOrder = "PO"
)

// Identifier valor generado. Degraded indica que no vino de la secuencia central y
// debe pasar por detección de duplicados aguas abajo.
type Identifier struct {
	Value    string
	Degraded bool
}

// Generator produce identificadores únicos por tipo.
type Generator struct {
	seq      repository.SequenceRepository
	log      *logger.Logger
	now      func() time.Time
	degraded atomic.Int64
}

// NewGenerator construye el generador sobre la secuencia central.
func NewGenerator(seq repository.SequenceRepository, log *logger.Logger) *Generator {
	return &Generator{seq: seq, log: log.Named("numbering"), now: time.Now}
}

// NextOrderNumber devuelve ORD-YYYY-NNNNNN.
func (g *Generator) NextOrderNumber(ctx context.Context) Identifier {
	return g.next(ctx, PrefixOrder, true)
}

// NextCustomerCode devuelve CUS-NNNNNN.
func (g *Generator) NextCustomerCode(ctx context.Context) Identifier {
	return g.next(ctx, PrefixCustomer, false)
}

// NextPurchaseOrderNumber devuelve PO-YYYY-NNNNNN.
func (g *Generator) NextPurchaseOrderNumber(ctx context.Context) Identifier {
	return g.next(ctx, PrefixPurchaseOrder, true)
}

// DegradedCount cantidad de identificadores emitidos por el respaldo local desde el arranque.
func (g *Generator) DegradedCount() int64 {
	return g.degraded.Load()
}

func (g *Generator) next(ctx context.Context, prefix string, yearly bool) Identifier {
	head := prefix
	if yearly {
		head = fmt.Sprintf("%s-%d", prefix, g.now().Year())
	}
	n, err := g.seq.NextValue(ctx, head)
	if err == nil {
		return Identifier{Value: fmt.Sprintf("%s-%06d", head, n)}
	}

	// Respaldo: marca de tiempo en ms + 8 hex aleatorios de un UUIDv4.
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	value := fmt.Sprintf("%s-T%d-%s", head, g.now().UnixMilli(), suffix)
	total := g.degraded.Add(1)
	g.log.Warn().
		Err(err).
		Str("prefix", prefix).
		Str("identifier", value).
		Int64("degraded_total", total).
		Msg("secuencia central no disponible; identificador degradado")
	return Identifier{Value: value, Degraded: true}
}
