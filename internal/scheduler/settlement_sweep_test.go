package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papersbook/storefront/internal/config"
)

func TestSettlementSweeper_DisabledByDefault(t *testing.T) {
	sweeper := NewSettlementSweeper(nil, config.NewConfig().Settlement)

	require.NoError(t, sweeper.Start(context.Background()))
	assert.False(t, sweeper.isRunning)
}

func TestSettlementSweeper_StartAndStopWhenEnabled(t *testing.T) {
	cfg := config.Settlement{
		SweepEnabled:  true,
		SweepSchedule: "*/10 * * * *",
	}
	sweeper := NewSettlementSweeper(nil, cfg)

	require.NoError(t, sweeper.Start(context.Background()))
	assert.True(t, sweeper.isRunning)

	sweeper.Stop()
	assert.False(t, sweeper.isRunning)
}

func TestSettlementSweeper_RejectsBadSchedule(t *testing.T) {
	cfg := config.Settlement{
		SweepEnabled:  true,
		SweepSchedule: "not a schedule",
	}
	sweeper := NewSettlementSweeper(nil, cfg)

	assert.Error(t, sweeper.Start(context.Background()))
}
