package mahjong

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/4t145/rahjong/core/seat"
)

type TickerState int

const (
	StateIdle    TickerState = iota // 空闲
	StateRunning                    // 计时中
	StateStopped                    // 已停止
	StateTimeout                    // 已超时
)

type TurnState int

const (
	TurnStateIdle          TurnState = iota // 等待开始
	TurnStateWaitMain                       // 等待出牌、立直、自摸、暗杠/加杠
	TurnStateWaitReactions                  // 等待反应（吃碰杠和、抢杠）
	TurnStateOver                           // 牌局结束
)

// TurnManager 回合计时。出牌阶段使用玩家的时间银行，反应阶段每家固定时长
type TurnManager struct {
	TurnPointer seat.Seat // 当前出牌玩家座位
	State       TurnState // 当前回合状态
	Tickers     [seat.Count]*PlayerTicker

	compensation time.Duration // 每回合补偿
	maxRound     time.Duration // 每回合的最多分配时间
	reaction     time.Duration // 反应时长
}

// NewTurnManager 创建新的回合管理器
func NewTurnManager(tickers [seat.Count]*PlayerTicker, compensation, maxRound, reaction time.Duration) *TurnManager {
	return &TurnManager{
		TurnPointer:  seat.NoSeat,
		State:        TurnStateIdle,
		Tickers:      tickers,
		compensation: compensation,
		maxRound:     maxRound,
		reaction:     reaction,
	}
}

func (tm *TurnManager) GetCurrentPlayer() seat.Seat {
	return tm.TurnPointer
}

func (tm *TurnManager) GetState() TurnState {
	return tm.State
}

func (tm *TurnManager) stopAllTickers() {
	for _, t := range tm.Tickers {
		if t != nil && t.GetState() == StateRunning {
			t.Stop()
		}
	}
}

// EnterDropPhase 进入出牌阶段
// 分配时间 = 玩家剩余时间 + 本回合补偿，不超过 maxRound
func (tm *TurnManager) EnterDropPhase(s seat.Seat, version uint64) error {
	if !s.Valid() {
		return fmt.Errorf("无效的座位: %d", int(s))
	}

	tm.stopAllTickers()
	tm.TurnPointer = s
	tm.State = TurnStateWaitMain

	ticker := tm.Tickers[s]
	allocated := ticker.GetAvailable() + tm.compensation
	if tm.maxRound > 0 && allocated > tm.maxRound {
		allocated = tm.maxRound
	}
	ticker.SetAvailable(allocated)
	if err := ticker.Start(allocated, version, true); err != nil {
		return fmt.Errorf("启动出牌计时失败: %w", err)
	}
	return nil
}

// EnterReactingPhase 进入等待反应阶段，为尚未表态的座位计时
func (tm *TurnManager) EnterReactingPhase(pending []seat.Seat, version uint64) error {
	tm.stopAllTickers()
	tm.TurnPointer = seat.NoSeat
	tm.State = TurnStateWaitReactions
	if tm.reaction <= 0 {
		return nil
	}
	for _, s := range pending {
		if err := tm.Tickers[s].Start(tm.reaction, version, false); err != nil {
			return fmt.Errorf("启动 %s 反应计时失败: %w", s, err)
		}
	}
	return nil
}

// StopTicker 某家已表态
func (tm *TurnManager) StopTicker(s seat.Seat) {
	if s.Valid() && tm.Tickers[s].GetState() == StateRunning {
		tm.Tickers[s].Stop()
	}
}

func (tm *TurnManager) EnterOver() {
	tm.stopAllTickers()
	tm.TurnPointer = seat.NoSeat
	tm.State = TurnStateOver
}

func (tm *TurnManager) GetPlayerTicker(s seat.Seat) *PlayerTicker {
	return tm.Tickers[s]
}

// GetAllPlayerTimerStates 获取所有玩家的计时器状态
func (tm *TurnManager) GetAllPlayerTimerStates() [seat.Count]TickerState {
	var states [seat.Count]TickerState
	for i, t := range tm.Tickers {
		states[i] = t.GetState()
	}
	return states
}

type PlayerTicker struct {
	Available      time.Duration // 出牌阶段的时间银行，跨回合累计
	RoundStartTime time.Time     // 本次计时开始时间

	State     TickerState
	isRunning bool
	banked    bool   // 本次计时是否从时间银行扣除
	version   uint64 // 启动计时时的局面版本，超时事件据此判断是否过期
	gen       uint64
	cancel    context.CancelFunc

	onTimeout     func(version uint64)
	onStateChange func(oldState, newState TickerState)

	sync.RWMutex
}

// NewPlayerTicker 创建新的玩家计时器
func NewPlayerTicker(total time.Duration) *PlayerTicker {
	return &PlayerTicker{
		Available: total,
		State:     StateIdle,
	}
}

// Start 启动计时
// banked 为 true 时要求剩余时间足够，结束时扣除已用时间
func (pt *PlayerTicker) Start(d time.Duration, version uint64, banked bool) error {
	pt.Lock()
	defer pt.Unlock()

	if pt.isRunning {
		return fmt.Errorf("计时已在运行，无法重复启动")
	}
	if banked && pt.Available < d {
		return fmt.Errorf("剩余时间 %s 不足 %s", pt.Available, d)
	}

	ctx, cancel := context.WithTimeout(context.Background(), d)
	pt.gen++
	pt.isRunning = true
	pt.banked = banked
	pt.version = version
	pt.cancel = cancel
	pt.RoundStartTime = time.Now()
	pt.setState(StateRunning)

	go pt.timerLoop(ctx, pt.gen)
	return nil
}

// timerLoop 计时循环（在 goroutine 中运行），只处理超时；主动停止由 Stop 同步结算
func (pt *PlayerTicker) timerLoop(ctx context.Context, gen uint64) {
	<-ctx.Done()
	if !errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return
	}

	pt.Lock()
	if gen != pt.gen || !pt.isRunning {
		pt.Unlock()
		return
	}
	if pt.banked {
		pt.Available = 0
	}
	pt.isRunning = false
	pt.cancel = nil
	pt.setState(StateTimeout)
	fire, version := pt.onTimeout, pt.version
	pt.Unlock()

	if fire != nil {
		fire(version)
	}
}

func (pt *PlayerTicker) setState(s TickerState) {
	old := pt.State
	pt.State = s
	if pt.onStateChange != nil && old != s {
		pt.onStateChange(old, s)
	}
}

// Stop 停止计时并扣除已用时间，未在计时时返回 false
func (pt *PlayerTicker) Stop() bool {
	pt.Lock()
	defer pt.Unlock()
	if !pt.isRunning {
		return false
	}
	pt.cancel()
	if pt.banked {
		pt.Available = max(0, pt.Available-time.Since(pt.RoundStartTime))
	}
	pt.isRunning = false
	pt.cancel = nil
	pt.setState(StateStopped)
	return true
}

func (pt *PlayerTicker) SetAvailable(d time.Duration) {
	pt.Lock()
	defer pt.Unlock()
	pt.Available = d
}

func (pt *PlayerTicker) GetAvailable() time.Duration {
	pt.RLock()
	defer pt.RUnlock()
	return pt.Available
}

func (pt *PlayerTicker) GetState() TickerState {
	pt.RLock()
	defer pt.RUnlock()
	return pt.State
}

// SetOnTimeout 设置超时回调，回调在计时 goroutine 中执行
func (pt *PlayerTicker) SetOnTimeout(callback func(version uint64)) {
	pt.Lock()
	defer pt.Unlock()
	pt.onTimeout = callback
}

// SetOnStateChange 设置状态变化回调
func (pt *PlayerTicker) SetOnStateChange(callback func(oldState, newState TickerState)) {
	pt.Lock()
	defer pt.Unlock()
	pt.onStateChange = callback
}
