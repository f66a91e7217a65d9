package round

import (
	"github.com/4t145/rahjong/core/hand"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
)

// TurnOptions s 在出牌阶段所有会被接受的操作，不是 s 的回合时为空。
// 出牌和立直按牌列出，同一牌面的不同副本各占一项
func (r *Round) TurnOptions(s seat.Seat) []Action {
	if r.state.Phase != PhaseWaitDiscard || r.state.Player != s {
		return nil
	}
	d := r.decks[s]
	var out []Action

	if r.validateTsumo(s) == nil {
		out = append(out, Tsumo{})
	}
	if r.validateNineTerminals(s) == nil {
		out = append(out, Ryukyoku{})
	}
	held := d.Tiles()
	for _, f := range d.ConcealedKongs() {
		ids := held.Copies(f).Ids(f)
		if _, err := r.validateConcealedKan(s, ids); err == nil {
			out = append(out, Kan{Type: KanConcealed, Tiles: ids})
		}
	}
	for _, t := range d.AddedKongs() {
		if _, err := r.validateAddedKan(s, []tile.Id{t}); err == nil {
			out = append(out, Kan{Type: KanAdded, Tiles: []tile.Id{t}})
		}
	}
	for t := range held.All() {
		if r.validateRiichi(s, t) == nil {
			out = append(out, Riichi{Tile: t})
		}
	}
	for t := range held.All() {
		a := Discard{Tile: t, Source: s}
		if r.validateDiscard(s, a) == nil {
			out = append(out, a)
		}
	}
	return out
}

// ReactionOptions s 在反应阶段所有会被接受的操作，不需要 s 反应时为空。
// 只剩 Pass 说明 s 没有任何可以鸣的牌
func (r *Round) ReactionOptions(s seat.Seat) []Action {
	if r.barrier == nil || !r.barrier.Expects(s) || r.barrier.Responded(s) {
		return nil
	}
	out := []Action{Pass{}}

	switch r.state.Phase {
	case PhaseWaitKanReaction:
		t := r.state.Kan.Tile
		if r.validateWin(s, t) == nil {
			out = append(out, Chankan{Tile: t})
		}
	case PhaseWaitDiscardReaction:
		entry := r.state.Discard
		claim := hand.Claim{Tile: entry.Tile, From: entry.Source}
		d := r.decks[s]
		candidates := []Action{Ron{Tile: entry.Tile}}
		if sup, ok := d.KongSupport(claim); ok {
			candidates = append(candidates, Kan{Type: KanExposed, Tiles: sup[:]})
		}
		if sup, ok := d.PonSupport(claim); ok {
			candidates = append(candidates, Pon{Support: sup})
		}
		for _, o := range d.ChiOptions(claim) {
			candidates = append(candidates, Chi{Support: o.Support()})
		}
		for _, a := range candidates {
			if r.validateReaction(s, a) == nil {
				out = append(out, a)
			}
		}
	}
	return out
}

// CanOnlyPass 反应阶段 s 除了过以外别无选择
func (r *Round) CanOnlyPass(s seat.Seat) bool {
	opts := r.ReactionOptions(s)
	return len(opts) == 1
}
