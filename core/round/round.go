package round

import (
	"errors"
	"math/rand"

	"github.com/4t145/rahjong/common/log"
	"github.com/4t145/rahjong/core/hand"
	"github.com/4t145/rahjong/core/reason"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
	"github.com/4t145/rahjong/core/wall"
)

const (
	HandSize = 13
	// RiichiMinWall 立直要求牌山至少还能再摸一巡
	RiichiMinWall = 4
)

type Config struct {
	Dealer    seat.Seat
	Rand      *rand.Rand  // 为空时使用时间种子
	Catalogue []tile.Face // 为空时使用全部 34 种牌面
}

// Record 操作记录。Claim 非空表示一次生效的鸣牌
type Record struct {
	Seat   seat.Seat
	Action Action
	Claim  *hand.Claim
}

// Round 一局的状态机。非并发安全，由调用方保证同一时刻只有一个写者
type Round struct {
	dealer   seat.Seat
	wall     *wall.Wall
	doras    *wall.DoraSet
	decks    [seat.Count]*hand.Deck
	discards DiscardSet
	riichi   [seat.Count]bool
	kongs    [seat.Count]int
	state    State
	barrier  *Barrier
	history  []Record
	outcome  *Outcome
	version  uint64

	discarded [seat.Count]bool // 是否已经出过牌，九种九牌判定用
	called    bool             // 本局是否有人鸣牌或开杠
}

func New(cfg Config) *Round {
	catalogue := cfg.Catalogue
	if len(catalogue) == 0 {
		catalogue = tile.Catalogue()
	}
	dealer := cfg.Dealer
	if !dealer.Valid() {
		dealer = seat.East
	}
	r := &Round{
		dealer: dealer,
		wall:   wall.New(catalogue, cfg.Rand),
		state:  State{Phase: PhaseInit, Player: seat.NoSeat, DiscardIndex: -1},
	}
	for i := range r.decks {
		r.decks[i] = hand.NewDeck()
	}
	return r
}

// Start 洗牌、配牌、切王牌并翻开宝牌指示牌，庄家摸第一张
func (r *Round) Start() error {
	if r.state.Phase != PhaseInit {
		return reason.InvalidOperation(reason.CodeAlreadyStarted, r.state.Phase.String(), "Start", "牌局已经开始")
	}
	r.wall.Shuffle()
	hands := r.wall.DrawInit(seat.Count, HandSize)
	for i, s := range seat.All(r.dealer) {
		for _, t := range hands[i] {
			r.decks[s].Add(t)
		}
	}
	r.doras = r.wall.TakeDoras()

	t, ok := r.wall.DrawNext()
	if !ok {
		// 136 张的牌山不可能走到这里
		panic("round: 配牌后牌山为空")
	}
	if err := r.decks[r.dealer].Draw(t); err != nil {
		panic(err)
	}
	r.state = waitDiscard(r.dealer)
	r.version++
	log.Debug("开局: 庄家 %s, 宝牌指示牌 %v", r.dealer, r.doras.Indicators())
	return nil
}

// Apply 唯一的写入口。被拒绝时局面保持原样
func (r *Round) Apply(a Action, source seat.Seat) error {
	if a == nil {
		return reason.InvalidOperation(reason.CodeUnexpectedAction, r.state.Phase.String(), "<nil>", "操作为空")
	}
	if !source.Valid() {
		return reason.InvalidOperation(reason.CodeNotInTurn, r.state.Phase.String(), a.Kind().String(), "非法座位 %d", int(source))
	}
	for _, t := range tilesOf(a) {
		if !t.Valid() {
			return r.annotate(reason.StatusConflict(reason.CodeTileNotInHand, "非法牌 %s", t), a)
		}
	}

	var err error
	switch r.state.Phase {
	case PhaseInit:
		err = invalid(reason.CodeUnexpectedAction, "牌局尚未开始")
	case PhaseWaitDiscard:
		err = r.onWaitDiscard(a, source)
	case PhaseWaitDiscardReaction:
		err = r.onDiscardReaction(a, source)
	case PhaseWaitKanReaction:
		err = r.onKanReaction(a, source)
	case PhaseEnd:
		err = invalid(reason.CodeRoundOver, "牌局已结束")
	}
	if err != nil {
		return r.annotate(err, a)
	}
	r.version++
	log.Debug("%s %s -> %s", source, Describe(a), r.state)
	return nil
}

// Abort 外部中止，只能在两次 Apply 之间调用
func (r *Round) Abort(why string) error {
	if r.state.Phase == PhaseEnd {
		return reason.InvalidOperation(reason.CodeRoundOver, r.state.Phase.String(), "Abort", "牌局已结束")
	}
	o := noOutcome(EndAborted)
	o.Reason = why
	r.end(o)
	r.version++
	return nil
}

func invalid(code reason.Code, format string, args ...any) error {
	return reason.InvalidOperation(code, "", "", format, args...)
}

// annotate 补上被拒绝时的状态与操作
func (r *Round) annotate(err error, a Action) error {
	var rs *reason.Reason
	if errors.As(err, &rs) && rs.Phase == "" {
		return rs.WithState(r.state.String(), Describe(a))
	}
	return err
}

func (r *Round) record(s seat.Seat, a Action, claim *hand.Claim) {
	r.history = append(r.history, Record{Seat: s, Action: a, Claim: claim})
}

func (r *Round) end(o Outcome) {
	if o.Kind.IsWin() && r.riichi[o.Winner] && r.doras != nil {
		o.InnerIndicators = r.doras.InnerIndicators()
	}
	if o.Kind == EndExhaustive {
		for _, s := range seat.All(seat.East) {
			o.Tenpai[s] = len(r.decks[s].Waits()) > 0
		}
	}
	r.outcome = &o
	r.barrier = nil
	r.state = State{Phase: PhaseEnd, Player: seat.NoSeat, DiscardIndex: -1}
	log.Info("牌局结束: %s", o)
}

// advance 无人鸣牌，下家摸牌；牌山摸空则荒牌流局
func (r *Round) advance(from seat.Seat) {
	r.barrier = nil
	if r.fourKansSplit() {
		o := noOutcome(EndFourKans)
		o.Reason = "四杠散了"
		r.end(o)
		return
	}
	if r.riichi == [seat.Count]bool{true, true, true, true} {
		o := noOutcome(EndFourRiichi)
		o.Reason = "四家立直"
		r.end(o)
		return
	}

	next := from.Next()
	t, ok := r.wall.DrawNext()
	if !ok {
		r.end(noOutcome(EndExhaustive))
		return
	}
	if err := r.decks[next].Draw(t); err != nil {
		log.Error("摸牌失败，手牌状态异常: %v", err)
	}
	r.state = waitDiscard(next)
}

// fourKansSplit 四杠且不是同一家开的
func (r *Round) fourKansSplit() bool {
	total, seats := 0, 0
	for _, k := range r.kongs {
		total += k
		if k > 0 {
			seats++
		}
	}
	return total >= 4 && seats > 1
}

// replace 开杠后翻杠宝牌并摸岭上牌
func (r *Round) replace(s seat.Seat) {
	r.kongs[s]++
	r.called = true
	r.doras.Reveal()
	t, ok := r.doras.DrawReplacement()
	if !ok {
		log.Error("岭上牌已空，开杠前的校验失效")
		return
	}
	if err := r.decks[s].Draw(t); err != nil {
		log.Error("摸岭上牌失败: %v", err)
	}
}

func (r *Round) furiten(s seat.Seat) bool {
	for _, f := range r.decks[s].Waits() {
		if r.discards.HasFaceFrom(s, f) {
			return true
		}
	}
	return false
}

func (r *Round) State() State { return r.state }

func (r *Round) Phase() Phase { return r.state.Phase }

func (r *Round) Dealer() seat.Seat { return r.dealer }

// Version 每次成功的状态变化加一
func (r *Round) Version() uint64 { return r.version }

func (r *Round) Outcome() (Outcome, bool) {
	if r.outcome == nil {
		return Outcome{}, false
	}
	return *r.outcome, true
}

func (r *Round) History() []Record {
	return append([]Record(nil), r.history...)
}

// PendingSeats 当前反应阶段尚未表态的座位
func (r *Round) PendingSeats() []seat.Seat {
	if r.barrier == nil {
		return nil
	}
	return r.barrier.Missing()
}

func (r *Round) WallRemaining() int { return r.wall.Remaining() }
