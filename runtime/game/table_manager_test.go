package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4t145/rahjong/core/round"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/runtime/game/engines"
	"github.com/4t145/rahjong/runtime/game/engines/mahjong"
	"github.com/4t145/rahjong/runtime/game/share"
)

func newManager(t *testing.T) *TableManager {
	t.Helper()
	opts := mahjong.DefaultOptions()
	opts.Seed = 1
	opts.DropTimeout = 0
	opts.ReactionTimeout = 0

	tm := NewTableManager()
	require.NoError(t, tm.SetEnginePrototype(engines.RiichiMahjong4pEngine, mahjong.NewRiichiMahjong4p(opts, nil)))
	assert.Error(t, tm.SetEnginePrototype(engines.RiichiMahjong4pEngine, nil))
	return tm
}

func players(prefix string) [seat.Count]*share.UserInfo {
	var out [seat.Count]*share.UserInfo
	for i := range out {
		id := fmt.Sprintf("%s-%d", prefix, i)
		out[i] = share.NewUserInfo(id, id)
	}
	return out
}

func TestCreateTable(t *testing.T) {
	tm := newManager(t)
	table, err := tm.CreateTable(players("a"), engines.RiichiMahjong4pEngine)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tm.DeleteTable(table.ID) })

	for i, u := range table.Users {
		assert.Equal(t, seat.Seat(i), u.Seat)
	}
	got, ok := tm.GetPlayerTable("a-2")
	require.True(t, ok)
	assert.Same(t, table, got)

	require.Eventually(t, func() bool {
		return table.Engine.Sight(seat.East).Phase == round.PhaseWaitDiscard
	}, 2*time.Second, 5*time.Millisecond)

	stats := tm.GetStats()
	assert.Equal(t, 1, stats.TableCount)
	assert.Equal(t, 4, stats.PlayerCount)
	assert.Equal(t, 1, stats.InProgress)
	assert.Len(t, tm.GetAllTables(), 1)
}

func TestCreateTableRejects(t *testing.T) {
	tm := newManager(t)

	dup := players("d")
	dup[3] = share.NewUserInfo("d-0", "d-0")
	_, err := tm.CreateTable(dup, engines.RiichiMahjong4pEngine)
	assert.Error(t, err)

	missing := players("m")
	missing[1] = nil
	_, err = tm.CreateTable(missing, engines.RiichiMahjong4pEngine)
	assert.Error(t, err)

	_, err = tm.CreateTable(players("x"), engines.EngineType(99))
	assert.Error(t, err)

	table, err := tm.CreateTable(players("b"), engines.RiichiMahjong4pEngine)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tm.DeleteTable(table.ID) })
	_, err = tm.CreateTable(players("b"), engines.RiichiMahjong4pEngine)
	assert.Error(t, err, "玩家已在其他牌桌")
}

func TestDeleteTable(t *testing.T) {
	tm := newManager(t)
	table, err := tm.CreateTable(players("c"), engines.RiichiMahjong4pEngine)
	require.NoError(t, err)

	require.NoError(t, tm.DeleteTable(table.ID))
	assert.ErrorIs(t, tm.DeleteTable(table.ID), ErrTableNotFound)
	_, ok := tm.GetPlayerTable("c-0")
	assert.False(t, ok)
	assert.Equal(t, engines.GameFinished, table.Engine.GetState())
	assert.ErrorIs(t, tm.Reconnect("c-0"), ErrPlayerNotFound)
}

func TestReleaseFinished(t *testing.T) {
	tm := newManager(t)
	table, err := tm.CreateTable(players("e"), engines.RiichiMahjong4pEngine)
	require.NoError(t, err)
	require.NoError(t, tm.Reconnect("e-1"))

	table.Engine.Terminate("测试")
	select {
	case <-table.Engine.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("牌局没有结束")
	}
	assert.Equal(t, 1, tm.GetStats().Finished)
	assert.Equal(t, 1, tm.ReleaseFinished())
	assert.Zero(t, tm.GetStats().TableCount)
}
