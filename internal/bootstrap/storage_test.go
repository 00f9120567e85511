package bootstrap_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/backoffice-core/internal/bootstrap"
	"github.com/jhoicas/backoffice-core/pkg/config"
	"github.com/jhoicas/backoffice-core/pkg/logger"
)

func TestOpen_DriverEnMemoria(t *testing.T) {
	cfg := &config.Config{
		DB:       config.DBConfig{Driver: config.StorageMemory},
		Sequence: config.SequenceConfig{Backend: config.SequencePostgres},
	}
	st, err := bootstrap.Open(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	defer st.Close()

	assert.Nil(t, st.Ping)
	assert.Nil(t, st.Redis)
	require.NotNil(t, st.UnitOfWork)

	v, err := st.Sequence.NextValue(context.Background(), "ORD-2026")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
