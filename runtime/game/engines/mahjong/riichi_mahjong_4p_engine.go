package mahjong

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/4t145/rahjong/common/log"
	"github.com/4t145/rahjong/core/reason"
	"github.com/4t145/rahjong/core/round"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/runtime/game/engines"
	"github.com/4t145/rahjong/runtime/game/share"
)

const (
	DefaultDropTimeout     = 30 * time.Second // 出牌时间银行初始值
	DefaultReactionTimeout = 10 * time.Second // 每次反应的时长
	DefaultCompensation    = 5 * time.Second  // 默认回合补偿
	DefaultMaxRoundTime    = 30 * time.Second // 每回合的最多分配时间
	DefaultQueueSize       = 256
)

/*
	引擎只负责调度，规则全部在 round.Round 中：
		事件循环是唯一的写者，玩家操作、超时、中止都以事件的形式入队，串行执行；
		每次状态变化后重建四家视野并推送，读者通过读锁拿到快照。

	版本：
		视野带有局面版本，玩家提交时带上自己看到的版本。
		版本早于当前待决局面的提交一律拒绝（ALREADY_RESOLVED），
		同一轮反应中其他家的表态不会让尚未表态的一家过期。

	计时：
		出牌阶段使用玩家的时间银行（剩余 + 补偿，不超过上限），超时自动打出摸到的牌；
		反应阶段每家固定时长，超时视为过。
*/

type Options struct {
	Seed            int64 // 0 表示使用时间种子
	Dealer          seat.Seat
	DropTimeout     time.Duration // <=0 时出牌阶段不计时
	ReactionTimeout time.Duration // <=0 时反应阶段不计时
	Compensation    time.Duration
	MaxRoundTime    time.Duration
	AutoPass        bool // 没有任何可鸣的牌时自动过
	QueueSize       int
}

func DefaultOptions() Options {
	return Options{
		Dealer:          seat.East,
		DropTimeout:     DefaultDropTimeout,
		ReactionTimeout: DefaultReactionTimeout,
		Compensation:    DefaultCompensation,
		MaxRoundTime:    DefaultMaxRoundTime,
		AutoPass:        true,
		QueueSize:       DefaultQueueSize,
	}
}

// RiichiMahjong4p 日麻四人游戏引擎，一个实例对应一局
type RiichiMahjong4p struct {
	TableID     string
	Players     [seat.Count]*share.UserInfo // 座位 -> 玩家
	TurnManager *TurnManager                // 回合计时，未开启计时为 nil

	opts            Options
	notifier        Notifier
	round           *round.Round
	decisionVersion uint64 // 当前待决局面开始时的版本

	state   atomic.Int32
	sights  [seat.Count]round.PlayerSight
	options [seat.Count][]round.Action
	outcome *round.Outcome
	sightMu sync.RWMutex

	gameEvents chan share.GameEvent
	gameDone   chan struct{}
	actorExit  chan struct{}
	finished   chan struct{}
	started    atomic.Bool
	closed     atomic.Bool // 接收游戏事件的关闭开关
	closeOnce  sync.Once
	finishOnce sync.Once

	clones atomic.Int64 // 作为原型时的克隆次数，用于派生种子
}

// NewRiichiMahjong4p 创建立直麻将 4 人引擎实例，notifier 为空时只打日志
func NewRiichiMahjong4p(opts Options, notifier Notifier) *RiichiMahjong4p {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if !opts.Dealer.Valid() {
		opts.Dealer = seat.East
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}
	eg := &RiichiMahjong4p{
		opts:       opts,
		notifier:   notifier,
		gameEvents: make(chan share.GameEvent, opts.QueueSize),
		gameDone:   make(chan struct{}),
		actorExit:  make(chan struct{}),
		finished:   make(chan struct{}),
	}
	eg.state.Store(int32(engines.GameWaiting))
	return eg
}

// InitializeEngine 初始化游戏引擎，开局作为第一个事件入队
func (eg *RiichiMahjong4p) InitializeEngine(tableID string, users [seat.Count]*share.UserInfo) error {
	if eg.closed.Load() {
		return engines.ErrEngineClosed
	}
	if !eg.started.CompareAndSwap(false, true) {
		return fmt.Errorf("引擎已经初始化: %s", eg.TableID)
	}
	if tableID == "" {
		tableID = uuid.NewString()
	}
	eg.TableID = tableID
	for i, u := range users {
		if u == nil {
			u = share.NewUserInfo(uuid.NewString(), fmt.Sprintf("bot-%d", i))
		}
		u.Seat = seat.Seat(i)
		eg.Players[i] = u
	}

	var rng *rand.Rand
	if eg.opts.Seed != 0 {
		rng = rand.New(rand.NewSource(eg.opts.Seed))
	}
	eg.round = round.New(round.Config{Dealer: eg.opts.Dealer, Rand: rng})

	if eg.opts.DropTimeout > 0 || eg.opts.ReactionTimeout > 0 {
		var tickers [seat.Count]*PlayerTicker
		for _, s := range seat.All(seat.East) {
			ticker := NewPlayerTicker(eg.opts.DropTimeout)
			ticker.SetOnTimeout(eg.makeTimeoutHandler(s))
			tickers[s] = ticker
		}
		eg.TurnManager = NewTurnManager(tickers, eg.opts.Compensation, eg.opts.MaxRoundTime, eg.opts.ReactionTimeout)
	}

	go eg.actorLoop()
	eg.enqueue(&StartRoundEvent{share.GameMessageEvent{Seat: seat.NoSeat}})
	return nil
}

// enqueue 阻塞入队，用于不能丢弃的事件；引擎关闭时返回 false
func (eg *RiichiMahjong4p) enqueue(event share.GameEvent) bool {
	select {
	case eg.gameEvents <- event:
		return true
	case <-eg.gameDone:
		return false
	}
}

// actorLoop 游戏事件循环
func (eg *RiichiMahjong4p) actorLoop() {
	defer close(eg.actorExit)
	for {
		select {
		case <-eg.gameDone:
			return
		case event := <-eg.gameEvents:
			eg.processEvent(event)
		}
	}
}

func (eg *RiichiMahjong4p) NotifyEvent(event share.GameEvent) {
	if event == nil {
		return
	}
	if eg.closed.Load() {
		return
	}

	select {
	case <-eg.gameDone:
		return
	case eg.gameEvents <- event:
		return
	default:
		log.Warn("[%s] gameEvents 队列已满, eventType=%s", eg.TableID, event.GetEventType())
		return
	}
}

// Submit 提交操作并等待事件循环处理完毕
func (eg *RiichiMahjong4p) Submit(ctx context.Context, s seat.Seat, version uint64, a round.Action) error {
	if eg.closed.Load() {
		return engines.ErrEngineClosed
	}
	ev := &share.ActionEvent{
		GameMessageEvent: share.GameMessageEvent{Seat: s},
		Version:          version,
		Action:           a,
		Reply:            make(chan error, 1),
	}
	select {
	case eg.gameEvents <- ev:
	case <-eg.gameDone:
		return engines.ErrEngineClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-ev.Reply:
		return err
	case <-eg.gameDone:
		return engines.ErrEngineClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (eg *RiichiMahjong4p) processEvent(event share.GameEvent) {
	if event == nil {
		log.Warn("事件为空")
		return
	}

	switch e := event.(type) {
	case *StartRoundEvent:
		eg.handleStartRoundEvent()
	case *share.ActionEvent:
		eg.handleActionEvent(e)
	case *TimeoutEvent:
		eg.handleTimeoutEvent(e)
	case *share.AbortEvent:
		eg.handleAbortEvent(e)
	case *share.ReconnectEvent:
		eg.handleReconnectEvent(e)
	default:
		log.Warn("[%s] 不支持的事件类型: %s", eg.TableID, event.GetEventType())
	}
}

func (eg *RiichiMahjong4p) handleStartRoundEvent() {
	prev := eg.round.State()
	if err := eg.round.Start(); err != nil {
		log.Warn("[%s] 开局失败: %v", eg.TableID, err)
		return
	}
	log.Info("[%s] 开局，庄家 %s", eg.TableID, eg.round.Dealer())
	eg.afterTransition(prev, seat.NoSeat)
	eg.state.Store(int32(engines.GameInProgress))
}

func (eg *RiichiMahjong4p) handleActionEvent(e *share.ActionEvent) {
	s := e.GetSeat()
	if e.Version < eg.decisionVersion {
		err := reason.InvalidOperation(reason.CodeAlreadyResolved, eg.round.State().String(), round.Describe(e.Action),
			"局面已更新到 v%d，提交的是 v%d", eg.decisionVersion, e.Version)
		log.Warn("[%s] %s 的操作已过期: %v", eg.TableID, s, err)
		e.Respond(err)
		return
	}
	if err := eg.apply(e.Action, s); err != nil {
		log.Warn("[%s] 拒绝 %s 的操作 %s: %v", eg.TableID, s, round.Describe(e.Action), err)
		e.Respond(err)
		return
	}
	e.Respond(nil)
}

// apply 执行操作并完成推送与计时
func (eg *RiichiMahjong4p) apply(a round.Action, s seat.Seat) error {
	prev := eg.round.State()
	if err := eg.round.Apply(a, s); err != nil {
		return err
	}
	eg.afterTransition(prev, s)
	return nil
}

func (eg *RiichiMahjong4p) handleTimeoutEvent(e *TimeoutEvent) {
	s := e.GetSeat()
	if e.Version != eg.decisionVersion {
		log.Debug("[%s] 忽略过期的超时: %s v%d", eg.TableID, s, e.Version)
		return
	}

	st := eg.round.State()
	var a round.Action
	switch st.Phase {
	case round.PhaseWaitDiscard:
		if st.Player != s {
			return
		}
		a = eg.fallbackDiscard(s)
	case round.PhaseWaitDiscardReaction, round.PhaseWaitKanReaction:
		if len(eg.round.ReactionOptions(s)) == 0 {
			return
		}
		a = round.Pass{}
	default:
		return
	}
	if a == nil {
		log.Error("[%s] %s 超时但没有可以打出的牌", eg.TableID, s)
		return
	}
	log.Info("[%s] %s 超时，自动 %s", eg.TableID, s, round.Describe(a))
	if err := eg.apply(a, s); err != nil {
		log.Error("[%s] 超时操作被拒绝: %v", eg.TableID, err)
	}
}

// fallbackDiscard 优先打出摸到的牌
func (eg *RiichiMahjong4p) fallbackDiscard(s seat.Seat) round.Action {
	sight := eg.round.Sight(s)
	if drawn, ok := sight.Deck.Drawn(); ok {
		return round.Discard{Tile: drawn, Source: s}
	}
	for _, a := range eg.round.TurnOptions(s) {
		if d, ok := a.(round.Discard); ok {
			return d
		}
	}
	return nil
}

func (eg *RiichiMahjong4p) handleAbortEvent(e *share.AbortEvent) {
	prev := eg.round.State()
	if err := eg.round.Abort(e.Reason); err != nil {
		log.Warn("[%s] 中止失败: %v", eg.TableID, err)
		return
	}
	eg.afterTransition(prev, seat.NoSeat)
}

func (eg *RiichiMahjong4p) handleReconnectEvent(e *share.ReconnectEvent) {
	s := e.GetSeat()
	if !s.Valid() {
		return
	}
	eg.Players[s].SetOnline()
	eg.notifier.Push(eg.TableID, s, eg.Sight(s))
}

// afterTransition 自动过、更新待决版本、重建视野、调整计时、推送
func (eg *RiichiMahjong4p) afterTransition(prev round.State, actor seat.Seat) {
	if eg.opts.AutoPass {
		eg.autoPass()
	}

	cur := eg.round.State()
	collecting := cur == prev &&
		(cur.Phase == round.PhaseWaitDiscardReaction || cur.Phase == round.PhaseWaitKanReaction)
	if !collecting {
		eg.decisionVersion = eg.round.Version()
	}

	eg.sightMu.Lock()
	eg.sights = eg.round.Sights()
	for _, s := range seat.All(seat.East) {
		if opts := eg.round.TurnOptions(s); len(opts) > 0 {
			eg.options[s] = opts
		} else {
			eg.options[s] = eg.round.ReactionOptions(s)
		}
	}
	if o, ok := eg.round.Outcome(); ok {
		eg.outcome = &o
	}
	eg.sightMu.Unlock()

	eg.schedule(cur, collecting, actor)

	for _, s := range seat.All(seat.East) {
		eg.notifier.Push(eg.TableID, s, eg.sights[s])
	}
	if cur.Phase == round.PhaseEnd {
		eg.finish()
	}
}

// autoPass 替没有任何可鸣牌的座位表态
func (eg *RiichiMahjong4p) autoPass() {
	for {
		progressed := false
		for _, s := range eg.round.PendingSeats() {
			if !eg.round.CanOnlyPass(s) {
				continue
			}
			if err := eg.round.Apply(round.Pass{}, s); err != nil {
				log.Error("[%s] 自动过失败: %v", eg.TableID, err)
				return
			}
			progressed = true
			break
		}
		if !progressed {
			return
		}
	}
}

func (eg *RiichiMahjong4p) schedule(cur round.State, collecting bool, actor seat.Seat) {
	tm := eg.TurnManager
	if tm == nil {
		return
	}
	var err error
	switch cur.Phase {
	case round.PhaseWaitDiscard:
		if eg.opts.DropTimeout > 0 {
			err = tm.EnterDropPhase(cur.Player, eg.decisionVersion)
		} else {
			tm.stopAllTickers()
		}
	case round.PhaseWaitDiscardReaction, round.PhaseWaitKanReaction:
		if collecting {
			tm.StopTicker(actor)
		} else {
			err = tm.EnterReactingPhase(eg.round.PendingSeats(), eg.decisionVersion)
		}
	case round.PhaseEnd:
		tm.EnterOver()
	}
	if err != nil {
		log.Error("[%s] 计时失败: %v", eg.TableID, err)
	}
}

func (eg *RiichiMahjong4p) finish() {
	eg.state.Store(int32(engines.GameFinished))
	if eg.outcome != nil {
		eg.notifier.RoundEnd(eg.TableID, *eg.outcome)
	}
	eg.finishOnce.Do(func() { close(eg.finished) })
}

// makeTimeoutHandler 创建超时处理回调
func (eg *RiichiMahjong4p) makeTimeoutHandler(s seat.Seat) func(version uint64) {
	return func(version uint64) {
		eg.NotifyEvent(&TimeoutEvent{GameMessageEvent: share.GameMessageEvent{Seat: s}, Version: version})
	}
}

// Sight 最近一次状态变化后的视野
func (eg *RiichiMahjong4p) Sight(s seat.Seat) round.PlayerSight {
	eg.sightMu.RLock()
	defer eg.sightMu.RUnlock()
	if !s.Valid() {
		return round.PlayerSight{Seat: s, ToDiscard: seat.NoSeat}
	}
	return eg.sights[s]
}

// Options s 当前所有会被接受的操作
func (eg *RiichiMahjong4p) Options(s seat.Seat) []round.Action {
	eg.sightMu.RLock()
	defer eg.sightMu.RUnlock()
	if !s.Valid() {
		return nil
	}
	return slices.Clone(eg.options[s])
}

func (eg *RiichiMahjong4p) Outcome() (round.Outcome, bool) {
	eg.sightMu.RLock()
	defer eg.sightMu.RUnlock()
	if eg.outcome == nil {
		return round.Outcome{}, false
	}
	return *eg.outcome, true
}

func (eg *RiichiMahjong4p) Done() <-chan struct{} { return eg.finished }

func (eg *RiichiMahjong4p) GetState() engines.GameState {
	return engines.GameState(eg.state.Load())
}

type TimeoutEvent struct {
	share.GameMessageEvent
	Version uint64
}

func (e *TimeoutEvent) GetEventType() string {
	return "Timeout"
}

type StartRoundEvent struct {
	share.GameMessageEvent
}

func (e *StartRoundEvent) GetEventType() string {
	return "StartRound"
}

// Clone 克隆引擎实例（用于原型模式），固定种子时每次克隆依次加一
func (eg *RiichiMahjong4p) Clone() engines.Engine {
	opts := eg.opts
	if opts.Seed != 0 {
		opts.Seed += eg.clones.Add(1) - 1
	}
	return NewRiichiMahjong4p(opts, eg.notifier)
}

// Terminate 中止牌局，队列满时等待直到入队或引擎关闭
func (eg *RiichiMahjong4p) Terminate(why string) {
	if eg.closed.Load() {
		return
	}
	if !eg.enqueue(&share.AbortEvent{GameMessageEvent: share.GameMessageEvent{Seat: seat.NoSeat}, Reason: why}) {
		log.Debug("[%s] 引擎已关闭，忽略中止: %s", eg.TableID, why)
	}
}

func (eg *RiichiMahjong4p) Close() {
	eg.closeOnce.Do(func() {
		eg.closed.Store(true)
		close(eg.gameDone)
		if eg.started.Load() {
			<-eg.actorExit
		}

		if eg.TurnManager != nil {
			eg.TurnManager.stopAllTickers()
		}
		eg.state.Store(int32(engines.GameFinished))
		eg.finishOnce.Do(func() { close(eg.finished) })
	})
}
