// Package bootstrap arma el almacenamiento y la secuencia central según la configuración,
// compartido por la API y las herramientas de línea de comandos.
package bootstrap

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/backoffice-core/internal/domain/repository"
	"github.com/jhoicas/backoffice-core/internal/infrastructure/memory"
	"github.com/jhoicas/backoffice-core/internal/infrastructure/postgres"
	"github.com/jhoicas/backoffice-core/internal/infrastructure/redis"
	"github.com/jhoicas/backoffice-core/pkg/config"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

// Storage unidad de trabajo, repositorios fuera de transacción y secuencia central.
type Storage struct {
	UnitOfWork repository.UnitOfWork
	Repos      repository.TxRepos
	Sequence   repository.SequenceRepository
	// Redis cliente abierto cuando SEQUENCE_BACKEND=redis; nil en otro caso.
	Redis *goredis.Client
	// Ping comprueba el almacenamiento; nil para el driver en memoria.
	Ping func(ctx context.Context) error

	closers []func()
}

// Close libera conexiones en orden inverso de apertura.
func (s *Storage) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// Open abre el driver de almacenamiento (postgres | memory) y la secuencia (postgres | redis).
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Storage, error) {
	s := &Storage{}

	switch cfg.DB.Driver {
	case config.StorageMemory:
		store := memory.NewStore()
		s.UnitOfWork = store
		s.Repos = store.Repos()
		s.Sequence = memory.NewSequence()
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
		}
		s.closers = append(s.closers, pool.Close)
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool, log.Named("migrate")); err != nil {
				s.Close()
				return nil, fmt.Errorf("migraciones: %w", err)
			}
		}
		s.UnitOfWork = postgres.NewUnitOfWork(pool)
		s.Repos = postgres.Repos(pool)
		s.Sequence = postgres.NewSequenceRepository(pool)
		s.Ping = pool.Ping
	}

	if cfg.Sequence.Backend == config.SequenceRedis {
		rdb, err := redis.NewClient(ctx, cfg.Sequence)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		s.closers = append(s.closers, func() { _ = rdb.Close() })
		s.Redis = rdb
		s.Sequence = redis.NewSequence(rdb)
	}

	log.Info().Str("driver", cfg.DB.Driver).Str("sequence", cfg.Sequence.Backend).Msg("almacenamiento listo")
	return s, nil
}
