package round

import (
	"github.com/4t145/rahjong/core/reason"
	"github.com/4t145/rahjong/core/seat"
)

// Barrier 收集除 origin 以外三家对一张牌的反应。
// 每家至多提交一次，三家到齐或有人和牌时按优先级结算；结算后的提交一律拒绝。
type Barrier struct {
	origin    seat.Seat
	responses [seat.Count]Action
	resolved  bool
}

func NewBarrier(origin seat.Seat) *Barrier {
	return &Barrier{origin: origin}
}

func (b *Barrier) Origin() seat.Seat { return b.origin }

// Expects 是否需要 s 的反应
func (b *Barrier) Expects(s seat.Seat) bool {
	return s.Valid() && s != b.origin
}

func (b *Barrier) Responded(s seat.Seat) bool {
	return s.Valid() && b.responses[s] != nil
}

func (b *Barrier) Resolved() bool { return b.resolved }

// Submit 记录 s 的反应
func (b *Barrier) Submit(s seat.Seat, a Action) error {
	switch {
	case b.resolved:
		return &reason.Reason{Kind: reason.KindInvalidOperation, Code: reason.CodeAlreadyResolved, Message: "本轮反应已结算"}
	case !b.Expects(s):
		return &reason.Reason{Kind: reason.KindInvalidOperation, Code: reason.CodeNotInTurn, Message: s.String() + " 不需要对自己的牌做出反应"}
	case b.responses[s] != nil:
		return &reason.Reason{Kind: reason.KindInvalidOperation, Code: reason.CodeAlreadyReacted, Message: s.String() + " 已经做出过反应"}
	}
	b.responses[s] = a
	return nil
}

// Missing 按出牌顺序列出尚未反应的座位
func (b *Barrier) Missing() []seat.Seat {
	var out []seat.Seat
	for _, s := range b.origin.Others() {
		if b.responses[s] == nil {
			out = append(out, s)
		}
	}
	return out
}

func (b *Barrier) Complete() bool {
	return len(b.Missing()) == 0
}

// Resolve 按优先级选出生效的反应：和 > 杠/碰 > 吃 > 过，
// 同级取出牌顺序上离 origin 最近的一家。全部为过时返回 NoSeat
func (b *Barrier) Resolve() (seat.Seat, Action) {
	b.resolved = true
	winner, best := seat.NoSeat, Action(Pass{})
	top := 0
	for _, s := range b.origin.Others() {
		a := b.responses[s]
		if a == nil {
			continue
		}
		if p := priority(a); p > top {
			winner, best, top = s, a, p
		}
	}
	return winner, best
}

const priorityWin = 3

func priority(a Action) int {
	switch a.(type) {
	case Ron, Chankan:
		return priorityWin
	case Pon, Kan:
		return 2
	case Chi:
		return 1
	default:
		return 0
	}
}
