package mahjong

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4t145/rahjong/core/reason"
	"github.com/4t145/rahjong/core/round"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/runtime/game/engines"
	"github.com/4t145/rahjong/runtime/game/share"
)

func quietOptions(seed int64) Options {
	opts := DefaultOptions()
	opts.Seed = seed
	opts.DropTimeout = 0
	opts.ReactionTimeout = 0
	return opts
}

func users() [seat.Count]*share.UserInfo {
	var out [seat.Count]*share.UserInfo
	for i := range out {
		out[i] = share.NewUserInfo("", "")
	}
	return out
}

func startEngine(t *testing.T, opts Options, n Notifier) *RiichiMahjong4p {
	t.Helper()
	eg := NewRiichiMahjong4p(opts, n)
	require.NoError(t, eg.InitializeEngine("table-1", users()))
	t.Cleanup(eg.Close)
	require.Eventually(t, func() bool {
		return eg.GetState() == engines.GameInProgress || eg.GetState() == engines.GameFinished
	}, 2*time.Second, 5*time.Millisecond)
	return eg
}

// drawnDiscard 打出摸到的牌
func drawnDiscard(t *testing.T, sight round.PlayerSight) round.Discard {
	t.Helper()
	drawn, ok := sight.Deck.Drawn()
	require.True(t, ok, "%s 没有摸牌", sight.Seat)
	return round.Discard{Tile: drawn, Source: sight.Seat}
}

// bot 摸切，能鸣也不鸣
func bot(ctx context.Context, eg *RiichiMahjong4p, n *ChanNotifier, s seat.Seat) {
	for {
		select {
		case <-ctx.Done():
			return
		case sight := <-n.Sights(s):
			if sight.Outcome != nil {
				return
			}
			switch {
			case sight.ToDiscard == s:
				if drawn, ok := sight.Deck.Drawn(); ok {
					_ = eg.Submit(ctx, s, sight.Version, round.Discard{Tile: drawn, Source: s})
				}
			case sight.AwaitingReaction:
				_ = eg.Submit(ctx, s, sight.Version, round.Pass{})
			}
		}
	}
}

func TestEngineRunsToExhaustiveDraw(t *testing.T) {
	n := NewChanNotifier(1)
	eg := NewRiichiMahjong4p(quietOptions(42), n)
	t.Cleanup(eg.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	var wg sync.WaitGroup
	for _, s := range seat.All(seat.East) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bot(ctx, eg, n, s)
		}()
	}
	require.NoError(t, eg.InitializeEngine("", users()))
	assert.NotEmpty(t, eg.TableID)

	select {
	case <-eg.Done():
	case <-ctx.Done():
		t.Fatal("牌局没有结束")
	}
	o, ok := eg.Outcome()
	require.True(t, ok)
	assert.Equal(t, round.EndExhaustive, o.Kind)
	assert.Equal(t, engines.GameFinished, eg.GetState())

	select {
	case got := <-n.Outcomes():
		assert.Equal(t, o.Kind, got.Kind)
	case <-time.After(time.Second):
		t.Fatal("没有推送结果")
	}
	cancel()
	wg.Wait()
}

func TestEngineRejectsStaleVersion(t *testing.T) {
	opts := quietOptions(7)
	opts.AutoPass = false
	eg := startEngine(t, opts, nil)
	ctx := context.Background()

	east := eg.Sight(seat.East)
	require.Equal(t, seat.East, east.ToDiscard)
	d := drawnDiscard(t, east)

	err := eg.Submit(ctx, seat.East, east.Version-1, d)
	assert.Equal(t, reason.CodeAlreadyResolved, reason.CodeOf(err))
	require.NoError(t, eg.Submit(ctx, seat.East, east.Version, d))

	south := eg.Sight(seat.South)
	require.True(t, south.AwaitingReaction)
	v := south.Version
	require.NoError(t, eg.Submit(ctx, seat.South, v, round.Pass{}))
	// 同一轮反应中，其他家的表态不会让版本过期
	require.NoError(t, eg.Submit(ctx, seat.West, v, round.Pass{}))
	require.NoError(t, eg.Submit(ctx, seat.North, v, round.Pass{}))

	next := eg.Sight(seat.South)
	assert.Equal(t, seat.South, next.ToDiscard)
	assert.Greater(t, next.Version, v)

	err = eg.Submit(ctx, seat.South, v, drawnDiscard(t, next))
	assert.Equal(t, reason.CodeAlreadyResolved, reason.CodeOf(err))
}

func TestEngineRejectsIllegalAction(t *testing.T) {
	eg := startEngine(t, quietOptions(3), nil)
	east := eg.Sight(seat.East)
	assert.Contains(t, eg.Options(seat.East), round.Action(drawnDiscard(t, east)))
	assert.Empty(t, eg.Options(seat.South))

	err := eg.Submit(context.Background(), seat.South, east.Version, drawnDiscard(t, east))
	assert.Equal(t, reason.CodeNotInTurnToDiscard, reason.CodeOf(err))
	assert.Equal(t, east.Version, eg.Sight(seat.East).Version)
}

func TestEngineTimeoutDiscardsDrawnTile(t *testing.T) {
	opts := quietOptions(11)
	opts.DropTimeout = 50 * time.Millisecond
	opts.ReactionTimeout = 20 * time.Millisecond
	opts.Compensation = 0
	opts.MaxRoundTime = 0
	eg := NewRiichiMahjong4p(opts, nil)
	require.NoError(t, eg.InitializeEngine("table-timeout", users()))
	t.Cleanup(eg.Close)

	var drawn round.Discard
	require.Eventually(t, func() bool {
		sight := eg.Sight(seat.East)
		if sight.Deck == nil || sight.ToDiscard != seat.East || len(sight.Discards) > 0 {
			return false
		}
		d, ok := sight.Deck.Drawn()
		drawn = round.Discard{Tile: d, Source: seat.East}
		return ok
	}, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		return len(eg.Sight(seat.East).Discards) > 0
	}, 2*time.Second, 5*time.Millisecond)
	first := eg.Sight(seat.East).Discards[0]
	assert.Equal(t, drawn.Tile, first.Tile)
	assert.Equal(t, seat.East, first.Source)
}

func TestEngineTerminate(t *testing.T) {
	eg := startEngine(t, quietOptions(5), nil)
	eg.Terminate("玩家掉线")

	select {
	case <-eg.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("中止后牌局没有结束")
	}
	o, ok := eg.Outcome()
	require.True(t, ok)
	assert.Equal(t, round.EndAborted, o.Kind)
	assert.Equal(t, "玩家掉线", o.Reason)

	err := eg.Submit(context.Background(), seat.East, eg.Sight(seat.East).Version, round.Pass{})
	assert.Equal(t, reason.CodeRoundOver, reason.CodeOf(err))
}

func TestEngineTerminateWaitsForQueue(t *testing.T) {
	opts := quietOptions(5)
	opts.QueueSize = 1
	eg := NewRiichiMahjong4p(opts, nil)
	t.Cleanup(eg.Close)

	// 事件循环还没启动，队列被一个过期的超时占满
	eg.NotifyEvent(&TimeoutEvent{GameMessageEvent: share.GameMessageEvent{Seat: seat.East}, Version: 999})
	terminated := make(chan struct{})
	go func() {
		eg.Terminate("队列已满")
		close(terminated)
	}()
	assert.Never(t, func() bool {
		select {
		case <-terminated:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	require.NoError(t, eg.InitializeEngine("", users()))
	select {
	case <-eg.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("中止事件被丢弃")
	}
	<-terminated
	o, ok := eg.Outcome()
	require.True(t, ok)
	assert.Equal(t, round.EndAborted, o.Kind)
	assert.Equal(t, "队列已满", o.Reason)
}

func TestEngineTerminateReturnsOnClose(t *testing.T) {
	opts := quietOptions(5)
	opts.QueueSize = 1
	eg := NewRiichiMahjong4p(opts, nil)
	eg.NotifyEvent(&TimeoutEvent{GameMessageEvent: share.GameMessageEvent{Seat: seat.East}, Version: 999})

	terminated := make(chan struct{})
	go func() {
		eg.Terminate("关闭")
		close(terminated)
	}()
	eg.Close()
	select {
	case <-terminated:
	case <-time.After(2 * time.Second):
		t.Fatal("关闭后 Terminate 没有返回")
	}
}

func TestEngineClose(t *testing.T) {
	eg := NewRiichiMahjong4p(quietOptions(1), nil)
	eg.Close()
	eg.Close()

	select {
	case <-eg.Done():
	default:
		t.Fatal("关闭后 Done 应当关闭")
	}
	err := eg.Submit(context.Background(), seat.East, 0, round.Pass{})
	assert.ErrorIs(t, err, engines.ErrEngineClosed)
	assert.ErrorIs(t, eg.InitializeEngine("", users()), engines.ErrEngineClosed)
}

func TestEngineInitializeTwice(t *testing.T) {
	eg := startEngine(t, quietOptions(2), nil)
	assert.Error(t, eg.InitializeEngine("again", users()))
}

func TestEngineCloneDerivesSeed(t *testing.T) {
	proto := NewRiichiMahjong4p(quietOptions(100), nil)
	a := proto.Clone().(*RiichiMahjong4p)
	b := proto.Clone().(*RiichiMahjong4p)
	assert.Equal(t, int64(100), a.opts.Seed)
	assert.Equal(t, int64(101), b.opts.Seed)

	random := NewRiichiMahjong4p(quietOptions(0), nil).Clone().(*RiichiMahjong4p)
	assert.Zero(t, random.opts.Seed)
}

func TestEngineSameSeedSameDeal(t *testing.T) {
	a := startEngine(t, quietOptions(9), nil)
	b := startEngine(t, quietOptions(9), nil)
	for _, s := range seat.All(seat.East) {
		assert.Equal(t, a.Sight(s).Deck.Tiles(), b.Sight(s).Deck.Tiles())
	}
}
