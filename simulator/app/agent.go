package app

import (
	"context"
	"errors"

	"github.com/4t145/rahjong/common/log"
	"github.com/4t145/rahjong/core/hand"
	"github.com/4t145/rahjong/core/round"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
	"github.com/4t145/rahjong/runtime/game/engines"
)

// Agent 贪心的自动玩家：能和就和，能立直就立直，暗杠加杠，碰三元牌，其余时间打出最孤立的牌
type Agent struct {
	Seat   seat.Seat
	Engine engines.Engine
	Sights <-chan round.PlayerSight
}

// Play 直到牌局结束或 ctx 取消
func (a *Agent) Play(ctx context.Context) error {
	// 注册推送之前的状态变化收不到，先主动拉取一次
	if err := a.act(ctx, a.Engine.Sight(a.Seat)); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-a.Engine.Done():
			return nil
		case sight := <-a.Sights:
			if sight.Outcome != nil {
				return nil
			}
			if err := a.act(ctx, sight); err != nil {
				return err
			}
		}
	}
}

func (a *Agent) act(ctx context.Context, sight round.PlayerSight) error {
	if sight.Deck == nil {
		return nil
	}
	if sight.ToDiscard != a.Seat && !sight.AwaitingReaction {
		return nil
	}
	choice := Choose(sight, a.Engine.Options(a.Seat))
	if choice == nil {
		return nil
	}

	err := a.Engine.Submit(ctx, a.Seat, sight.Version, choice)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, engines.ErrEngineClosed), ctx.Err() != nil:
		return nil
	}
	// 视野已过期或重复表态，等下一次推送
	log.Debug("%s 的操作 %s 未被接受: %v", a.Seat, round.Describe(choice), err)
	return nil
}

// Choose 从可选操作中挑一个，没有可选操作时返回 nil
func Choose(sight round.PlayerSight, opts []round.Action) round.Action {
	var (
		pass     round.Action
		kan      round.Action
		pon      round.Action
		riichis  []tile.Id
		discards []tile.Id
	)
	for _, o := range opts {
		switch v := o.(type) {
		case round.Tsumo, round.Ron, round.Chankan:
			return o
		case round.Riichi:
			riichis = append(riichis, v.Tile)
		case round.Kan:
			if v.Type != round.KanExposed && kan == nil {
				kan = o
			}
		case round.Pon:
			if sight.LastDiscard != nil && sight.LastDiscard.Tile.Face().Suit() == tile.SuitDragon {
				pon = o
			}
		case round.Discard:
			discards = append(discards, v.Tile)
		case round.Pass:
			pass = o
		}
	}

	var counts hand.Counts
	if sight.Deck != nil {
		counts = sight.Deck.Counts()
	}
	switch {
	case len(riichis) > 0:
		return round.Riichi{Tile: mostIsolated(riichis, counts)}
	case kan != nil:
		return kan
	case pon != nil:
		return pon
	case len(discards) > 0:
		return round.Discard{Tile: mostIsolated(discards, counts), Source: sight.Seat}
	}
	return pass
}

// mostIsolated 和其余手牌关联最少的一张，同分时优先幺九牌
func mostIsolated(candidates []tile.Id, counts hand.Counts) tile.Id {
	best, bestScore := candidates[0], connectivity(candidates[0].Face(), counts)
	for _, t := range candidates[1:] {
		score := connectivity(t.Face(), counts)
		if score < bestScore || (score == bestScore && t.Face().IsTerminalOrHonor() && !best.Face().IsTerminalOrHonor()) {
			best, bestScore = t, score
		}
	}
	return best
}

func connectivity(f tile.Face, counts hand.Counts) int {
	score := 4 * (int(counts[f]) - 1)
	for _, d := range []int{-2, -1, 1, 2} {
		if n, ok := f.Offset(d); ok {
			w := 2
			if d == -2 || d == 2 {
				w = 1
			}
			score += w * int(counts[n])
		}
	}
	return score
}
