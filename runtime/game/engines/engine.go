package engines

import (
	"context"
	"errors"

	"github.com/4t145/rahjong/core/round"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/runtime/game/share"
)

type EngineType int32

const (
	RiichiMahjong4pEngine EngineType = iota // 立直麻将4人 游戏引擎
)

type GameState int32

const (
	GameWaiting    GameState = iota // 等待开始
	GameInProgress                  // 进行中
	GameFinished                    // 结束
)

func (s GameState) String() string {
	switch s {
	case GameWaiting:
		return "Waiting"
	case GameInProgress:
		return "InProgress"
	case GameFinished:
		return "Finished"
	}
	return "Unknown"
}

// ErrEngineClosed 引擎已关闭，提交的操作不会被处理
var ErrEngineClosed = errors.New("引擎已关闭")

// Engine 使用原型模式，每张桌子都有一个游戏引擎
type Engine interface {
	// InitializeEngine 初始化游戏引擎并开局
	// users: 下标即座位
	InitializeEngine(tableID string, users [seat.Count]*share.UserInfo) error

	// NotifyEvent 通知游戏事件（入队，由引擎内部串行处理），队列满时丢弃
	NotifyEvent(event share.GameEvent)

	// Submit 提交一次操作并等待结果
	Submit(ctx context.Context, s seat.Seat, version uint64, a round.Action) error

	// Sight 最近一次状态变化后 s 的视野，返回值只读
	Sight(s seat.Seat) round.PlayerSight

	// Options 最近一次状态变化后 s 所有会被接受的操作
	Options(s seat.Seat) []round.Action

	// Outcome 牌局结束后的结果
	Outcome() (round.Outcome, bool)

	// Done 牌局结束或引擎关闭时关闭
	Done() <-chan struct{}

	GetState() GameState

	// Clone 克隆引擎实例（用于原型模式）
	Clone() Engine

	// Terminate 中止牌局（异步请求）
	Terminate(reason string)

	// Close 释放引擎内部资源
	Close()
}
