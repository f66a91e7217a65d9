package round

import (
	"slices"

	"github.com/4t145/rahjong/common/log"
	"github.com/4t145/rahjong/core/hand"
	"github.com/4t145/rahjong/core/reason"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
)

// 校验与提交分开：validate* 只读，通过后对应的提交不会再失败

func (r *Round) onWaitDiscard(a Action, s seat.Seat) error {
	p := r.state.Player
	if s != p {
		if _, ok := a.(Discard); ok {
			return reason.StatusConflict(reason.CodeNotInTurnToDiscard, "现在轮到 %s 出牌", p)
		}
		return invalid(reason.CodeNotInTurn, "现在轮到 %s", p)
	}

	switch a := a.(type) {
	case Discard:
		if err := r.validateDiscard(p, a); err != nil {
			return err
		}
		r.commitDiscard(p, a.Tile, false)
		r.record(p, a, nil)
	case Riichi:
		if err := r.validateRiichi(p, a.Tile); err != nil {
			return err
		}
		r.riichi[p] = true
		r.commitDiscard(p, a.Tile, true)
		r.record(p, a, nil)
	case Tsumo:
		if err := r.validateTsumo(p); err != nil {
			return err
		}
		t, _ := r.decks[p].Drawn()
		r.record(p, a, nil)
		o := noOutcome(EndTsumo)
		o.Winner, o.Tile = p, t
		r.end(o)
	case Kan:
		return r.onSelfKan(p, a)
	case Ryukyoku:
		if err := r.validateNineTerminals(p); err != nil {
			return err
		}
		r.record(p, a, nil)
		o := noOutcome(EndNineTerminals)
		o.Declarer = p
		o.Reason = "九种九牌"
		r.end(o)
	default:
		return invalid(reason.CodeUnexpectedAction, "出牌阶段不接受 %s", a.Kind())
	}
	return nil
}

func (r *Round) onSelfKan(p seat.Seat, a Kan) error {
	switch a.Type {
	case KanConcealed:
		tiles, err := r.validateConcealedKan(p, a.Tiles)
		if err != nil {
			return err
		}
		if err := r.decks[p].ConcealedKong(tiles); err != nil {
			return err
		}
		r.record(p, a, nil)
		r.replace(p)
		r.state = waitDiscard(p)
	case KanAdded:
		t, err := r.validateAddedKan(p, a.Tiles)
		if err != nil {
			return err
		}
		// 手牌在抢杠结算后才变化
		r.record(p, a, nil)
		r.barrier = NewBarrier(p)
		r.state = State{Phase: PhaseWaitKanReaction, Player: seat.NoSeat, DiscardIndex: -1, Kan: KanDeclaration{Seat: p, Tile: t}}
	default:
		return invalid(reason.CodeUnexpectedAction, "出牌阶段不接受 %s 杠", a.Type)
	}
	return nil
}

func (r *Round) commitDiscard(p seat.Seat, t tile.Id, riichi bool) {
	if err := r.decks[p].Discard(t); err != nil {
		log.Error("出牌提交失败: %v", err)
		return
	}
	entry := DiscardEntry{Tile: t, Source: p, Riichi: riichi, ClaimedBy: seat.NoSeat}
	idx := r.discards.Add(entry)
	r.discarded[p] = true
	r.barrier = NewBarrier(p)
	r.state = State{Phase: PhaseWaitDiscardReaction, Player: seat.NoSeat, Discard: entry, DiscardIndex: idx}
}

func (r *Round) validateDiscard(p seat.Seat, a Discard) error {
	if a.Source != p {
		return reason.StatusConflict(reason.CodeNotInTurnToDiscard, "出牌来源 %s 与提交者 %s 不一致", a.Source, p)
	}
	d := r.decks[p]
	if !d.Contains(a.Tile) {
		return reason.StatusConflict(reason.CodeTileNotInHand, "手里没有 %s", a.Tile)
	}
	if drawn, ok := d.Drawn(); r.riichi[p] && ok && drawn != a.Tile {
		return reason.StatusConflict(reason.CodeRiichiLocked, "立直后只能打出摸到的 %s", drawn)
	}
	if slices.Contains(r.swapForbidden(p), a.Tile.Face()) {
		return reason.StatusConflict(reason.CodeSwapCall, "鸣牌后不能立刻打出 %s", a.Tile.Face())
	}
	return nil
}

// swapForbidden 食替禁止打出的牌面，只在刚吃/碰后的那次出牌生效
func (r *Round) swapForbidden(p seat.Seat) []tile.Face {
	if len(r.history) == 0 {
		return nil
	}
	last := r.history[len(r.history)-1]
	if last.Seat != p || last.Claim == nil {
		return nil
	}
	switch a := last.Action.(type) {
	case Pon:
		return []tile.Face{last.Claim.Tile.Face()}
	case Chi:
		return chiForbidden(last.Claim.Tile, a.Support)
	}
	return nil
}

// chiForbidden 被吃的牌面，以及吃在两端时另一侧的筋牌
func chiForbidden(claimed tile.Id, support [2]tile.Id) []tile.Face {
	f := claimed.Face()
	out := []tile.Face{f}
	lo := min(support[0].Face(), support[1].Face())
	hi := max(support[0].Face(), support[1].Face())
	switch {
	case f < lo:
		if g, ok := f.Offset(3); ok {
			out = append(out, g)
		}
	case f > hi:
		if g, ok := f.Offset(-3); ok {
			out = append(out, g)
		}
	}
	return out
}

func (r *Round) validateRiichi(p seat.Seat, t tile.Id) error {
	d := r.decks[p]
	switch {
	case r.riichi[p]:
		return reason.StatusConflict(reason.CodeRiichiNotAllowed, "已经立直")
	case d.HasOpenMeld():
		return reason.StatusConflict(reason.CodeRiichiNotAllowed, "副露后不能立直")
	case !d.HasDrawn():
		return reason.StatusConflict(reason.CodeNoDrawnTile, "没有摸牌不能立直")
	case r.wall.Remaining() < RiichiMinWall:
		return reason.StatusConflict(reason.CodeRiichiNotAllowed, "牌山剩余 %d 张，不能立直", r.wall.Remaining())
	case !d.Contains(t):
		return reason.StatusConflict(reason.CodeTileNotInHand, "手里没有 %s", t)
	case len(d.WaitsAfterDiscard(t)) == 0:
		return reason.StatusConflict(reason.CodeRiichiNotAllowed, "打出 %s 后不听牌", t)
	}
	return nil
}

func (r *Round) validateTsumo(p seat.Seat) error {
	d := r.decks[p]
	if !d.HasDrawn() {
		return reason.StatusConflict(reason.CodeNoDrawnTile, "鸣牌后不能自摸")
	}
	if !d.CanTsumo() {
		return reason.StatusConflict(reason.CodeNotWinningHand, "手牌 %s 不是和牌形", d.Tiles())
	}
	return nil
}

func (r *Round) validateNineTerminals(p seat.Seat) error {
	d := r.decks[p]
	switch {
	case r.called || r.discarded[p]:
		return reason.StatusConflict(reason.CodeNotNineTerminals, "只能在第一巡无人鸣牌时宣告")
	case !d.HasDrawn():
		return reason.StatusConflict(reason.CodeNoDrawnTile, "没有摸牌")
	case d.TerminalKinds() < 9:
		return reason.StatusConflict(reason.CodeNotNineTerminals, "幺九牌只有 %d 种", d.TerminalKinds())
	}
	return nil
}

// kanAvailable 还能开杠：岭上牌未摸完，且牌山不是空的
func (r *Round) kanAvailable() error {
	if r.doras.ReplacementsLeft() == 0 || r.wall.Remaining() == 0 {
		return reason.StatusConflict(reason.CodeDeadWallExhausted, "岭上牌 %d 张、牌山 %d 张，不能再杠", r.doras.ReplacementsLeft(), r.wall.Remaining())
	}
	return nil
}

func (r *Round) validateConcealedKan(p seat.Seat, ids []tile.Id) ([4]tile.Id, error) {
	var tiles [4]tile.Id
	if len(ids) != len(tiles) {
		return tiles, reason.StatusConflict(reason.CodeKongWithDifferentFaces, "暗杠需要 4 张牌，实际 %d 张", len(ids))
	}
	copy(tiles[:], ids)
	d := r.decks[p]
	if !d.HasDrawn() {
		return tiles, reason.StatusConflict(reason.CodeNoDrawnTile, "鸣牌后不能暗杠")
	}
	if err := r.kanAvailable(); err != nil {
		return tiles, err
	}
	if err := d.ValidateConcealedKong(tiles); err != nil {
		return tiles, err
	}
	if r.riichi[p] {
		drawn, _ := d.Drawn()
		if !slices.Contains(tiles[:], drawn) {
			return tiles, reason.StatusConflict(reason.CodeRiichiLocked, "立直后暗杠必须使用摸到的 %s", drawn)
		}
		// 立直后暗杠不能改变听牌
		concealed := d.Concealed()
		before := hand.CountsOf(concealed.Slice()...)
		after := before
		after[drawn.Face()] -= 3
		fixed := len(d.Melds())
		if !slices.Equal(hand.Default().Waits(before, fixed), hand.Default().Waits(after, fixed+1)) {
			return tiles, reason.StatusConflict(reason.CodeRiichiLocked, "暗杠 %s 会改变听牌", drawn.Face())
		}
	}
	return tiles, nil
}

func (r *Round) validateAddedKan(p seat.Seat, ids []tile.Id) (tile.Id, error) {
	if len(ids) != 1 {
		return 0, reason.StatusConflict(reason.CodeKongWithDifferentFaces, "加杠需要 1 张牌，实际 %d 张", len(ids))
	}
	d := r.decks[p]
	if !d.HasDrawn() {
		return 0, reason.StatusConflict(reason.CodeNoDrawnTile, "鸣牌后不能加杠")
	}
	if err := r.kanAvailable(); err != nil {
		return 0, err
	}
	if _, err := d.ValidateAddedKong(ids[0]); err != nil {
		return 0, err
	}
	return ids[0], nil
}

// ---- 打牌后的反应 ----

func (r *Round) onDiscardReaction(a Action, s seat.Seat) error {
	if err := r.checkBarrier(s); err != nil {
		return err
	}
	if err := r.validateReaction(s, a); err != nil {
		return err
	}
	if err := r.barrier.Submit(s, a); err != nil {
		return err
	}
	// 荣和不等其他家，直接结算
	if r.barrier.Complete() || wins(a) {
		r.resolveDiscard()
	}
	return nil
}

func wins(a Action) bool {
	return priority(a) == priorityWin
}

func (r *Round) checkBarrier(s seat.Seat) error {
	switch {
	case !r.barrier.Expects(s):
		return invalid(reason.CodeNotInTurn, "%s 不需要对自己的牌做出反应", s)
	case r.barrier.Responded(s):
		return invalid(reason.CodeAlreadyReacted, "%s 已经做出过反应", s)
	}
	return nil
}

func (r *Round) validateReaction(s seat.Seat, a Action) error {
	entry := r.state.Discard
	claim := hand.Claim{Tile: entry.Tile, From: entry.Source}
	d := r.decks[s]

	switch a := a.(type) {
	case Pass:
		return nil
	case Ron:
		if a.Tile != entry.Tile {
			return reason.StatusConflict(reason.CodeClaimTileMismatch, "荣和 %s 但打出的是 %s", a.Tile, entry.Tile)
		}
		return r.validateWin(s, entry.Tile)
	case Pon:
		if r.riichi[s] {
			return reason.StatusConflict(reason.CodeRiichiLocked, "立直后不能碰")
		}
		if err := d.ValidatePon(a.Support, claim); err != nil {
			return err
		}
		return r.validateSwapAfter(s, a.Support[:], []tile.Face{entry.Tile.Face()})
	case Chi:
		if s != entry.Source.Next() {
			return invalid(reason.CodeChiNotFromLeft, "%s 只能吃上家 %s 的牌", s, s.Prev())
		}
		if r.riichi[s] {
			return reason.StatusConflict(reason.CodeRiichiLocked, "立直后不能吃")
		}
		if err := d.ValidateChi(a.Support, claim); err != nil {
			return err
		}
		return r.validateSwapAfter(s, a.Support[:], chiForbidden(entry.Tile, a.Support))
	case Kan:
		if a.Type != KanExposed {
			return invalid(reason.CodeUnexpectedAction, "打牌后只能大明杠")
		}
		if r.riichi[s] {
			return reason.StatusConflict(reason.CodeRiichiLocked, "立直后不能明杠")
		}
		if len(a.Tiles) != 3 {
			return reason.StatusConflict(reason.CodeKongWithDifferentFaces, "大明杠需要 3 张牌，实际 %d 张", len(a.Tiles))
		}
		if err := r.kanAvailable(); err != nil {
			return err
		}
		return d.ValidateExposedKong([3]tile.Id(a.Tiles), claim)
	}
	return invalid(reason.CodeUnexpectedAction, "反应阶段不接受 %s", a.Kind())
}

// validateWin 荣和与抢杠共用：和牌形且不振听
func (r *Round) validateWin(s seat.Seat, t tile.Id) error {
	if !r.decks[s].CanWinWith(t) {
		return reason.StatusConflict(reason.CodeNotWinningHand, "%s 加上 %s 不是和牌形", r.decks[s].Tiles(), t)
	}
	if r.furiten(s) {
		return reason.StatusConflict(reason.CodeFuriten, "%s 振听", s)
	}
	return nil
}

// validateSwapAfter 鸣牌后剩下的牌全部是食替禁止的牌面时不允许鸣
func (r *Round) validateSwapAfter(s seat.Seat, support []tile.Id, forbidden []tile.Face) error {
	rest := r.decks[s].Tiles()
	for _, t := range support {
		rest.Remove(t)
	}
	for t := range rest.All() {
		if !slices.Contains(forbidden, t.Face()) {
			return nil
		}
	}
	return reason.StatusConflict(reason.CodeSwapCall, "鸣牌后没有可以打出的牌")
}

func (r *Round) resolveDiscard() {
	entry, idx := r.state.Discard, r.state.DiscardIndex
	claim := &hand.Claim{Tile: entry.Tile, From: entry.Source}
	winner, a := r.barrier.Resolve()

	var err error
	switch a := a.(type) {
	case Ron:
		r.discards.markClaimed(idx, winner)
		r.decks[winner].Add(entry.Tile)
		r.record(winner, a, claim)
		o := noOutcome(EndRon)
		o.Winner, o.Loser, o.Tile = winner, entry.Source, entry.Tile
		r.end(o)
		return
	case Pon:
		err = r.decks[winner].Pon(a.Support, *claim)
	case Chi:
		err = r.decks[winner].Chi(a.Support, *claim)
	case Kan:
		err = r.decks[winner].ExposedKong([3]tile.Id(a.Tiles), *claim)
	default:
		r.advance(entry.Source)
		return
	}
	if err != nil {
		log.Error("鸣牌提交失败，视为无人鸣牌: %v", err)
		r.advance(entry.Source)
		return
	}

	r.discards.markClaimed(idx, winner)
	r.record(winner, a, claim)
	r.called = true
	r.barrier = nil
	if _, ok := a.(Kan); ok {
		r.replace(winner)
	}
	r.state = waitDiscard(winner)
}

// ---- 加杠后的抢杠 ----

func (r *Round) onKanReaction(a Action, s seat.Seat) error {
	if err := r.checkBarrier(s); err != nil {
		return err
	}
	switch a := a.(type) {
	case Pass:
	case Chankan:
		if a.Tile != r.state.Kan.Tile {
			return reason.StatusConflict(reason.CodeClaimTileMismatch, "抢杠 %s 但加杠的是 %s", a.Tile, r.state.Kan.Tile)
		}
		if err := r.validateWin(s, a.Tile); err != nil {
			return err
		}
	default:
		return invalid(reason.CodeUnexpectedAction, "抢杠阶段只接受抢杠或过，收到 %s", a.Kind())
	}
	if err := r.barrier.Submit(s, a); err != nil {
		return err
	}
	if r.barrier.Complete() || wins(a) {
		r.resolveKan()
	}
	return nil
}

func (r *Round) resolveKan() {
	kan := r.state.Kan
	winner, a := r.barrier.Resolve()
	if c, ok := a.(Chankan); ok {
		if err := r.decks[kan.Seat].Remove(kan.Tile); err != nil {
			log.Error("抢杠时移除加杠牌失败: %v", err)
		}
		r.decks[winner].Add(kan.Tile)
		r.record(winner, c, &hand.Claim{Tile: kan.Tile, From: kan.Seat})
		o := noOutcome(EndChankan)
		o.Winner, o.Loser, o.Tile = winner, kan.Seat, kan.Tile
		r.end(o)
		return
	}

	r.barrier = nil
	if err := r.decks[kan.Seat].AddedKong(kan.Tile); err != nil {
		log.Error("加杠提交失败: %v", err)
		r.state = waitDiscard(kan.Seat)
		return
	}
	r.replace(kan.Seat)
	r.state = waitDiscard(kan.Seat)
}
