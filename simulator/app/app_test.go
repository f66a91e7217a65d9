package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4t145/rahjong/common/config"
)

func testConfig(rounds int) *config.Config {
	return &config.Config{
		AppName:   "sim-test",
		Log:       config.LogConf{Level: "warn"},
		Engine:    config.EngineConf{AutoPass: true, QueueSize: 64},
		Searcher:  config.SearcherConf{NumCounters: 1e4, MaxCost: 1 << 12},
		Simulator: config.SimulatorConf{Rounds: rounds, Parallel: 2, Seed: 5},
	}
}

func TestSimulatorPlay(t *testing.T) {
	sim, err := NewSimulator(testConfig(3), "sim")
	require.NoError(t, err)
	defer sim.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	summary, err := sim.Play(ctx, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Rounds)

	total := 0
	for _, n := range summary.Kinds {
		total += n
	}
	assert.Equal(t, 3, total)
	assert.Contains(t, summary.String(), "3 局")
	assert.Zero(t, sim.manager.GetStats().TableCount)
}

func TestSimulatorPlayCanceled(t *testing.T) {
	sim, err := NewSimulator(testConfig(1), "cancel")
	require.NoError(t, err)
	defer sim.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = sim.Play(ctx, 2, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	assert.NoError(t, Run(ctx, testConfig(2), "run", nil))
}
