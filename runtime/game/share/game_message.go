package share

import (
	"github.com/4t145/rahjong/core/round"
	"github.com/4t145/rahjong/core/seat"
)

// GameEvent 游戏事件接口，由引擎的事件循环串行处理
type GameEvent interface {
	GetSeat() seat.Seat
	GetEventType() string
}

type GameMessageEvent struct {
	Seat seat.Seat `json:"seat"` // 事件来源座位，系统事件为 NoSeat
}

func (e *GameMessageEvent) GetSeat() seat.Seat {
	return e.Seat
}

// ActionEvent 玩家提交的操作。Version 为玩家看到的局面版本，
// Reply 收到 Apply 的结果，容量至少为 1
type ActionEvent struct {
	GameMessageEvent
	Version uint64       `json:"version"`
	Action  round.Action `json:"-"`
	Reply   chan error   `json:"-"`
}

func (e *ActionEvent) GetEventType() string {
	return "Action"
}

// Respond 非阻塞回写，调用方已放弃等待时直接丢弃
func (e *ActionEvent) Respond(err error) {
	if e.Reply == nil {
		return
	}
	select {
	case e.Reply <- err:
	default:
	}
}

// AbortEvent 外部中止，例如玩家断线或房间销毁
type AbortEvent struct {
	GameMessageEvent
	Reason string `json:"reason"`
}

func (e *AbortEvent) GetEventType() string {
	return "Abort"
}

// ReconnectEvent 断线重连，重新推送该座位的视野
type ReconnectEvent struct {
	GameMessageEvent
}

func (e *ReconnectEvent) GetEventType() string {
	return "Reconnect"
}
