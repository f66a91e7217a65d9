package game

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/runtime/game/engines"
	"github.com/4t145/rahjong/runtime/game/share"
)

// Table 一张牌桌，持有克隆出来的引擎和按座位排列的玩家
type Table struct {
	ID        string
	Engine    engines.Engine
	Users     [seat.Count]*share.UserInfo // 下标即座位
	CreatedAt time.Time

	mu sync.RWMutex
}

// NewTable 创建牌桌并分配座位，引擎尚未初始化
func NewTable(engine engines.Engine, users [seat.Count]*share.UserInfo) *Table {
	t := &Table{
		ID:        uuid.NewString(),
		Engine:    engine,
		Users:     users,
		CreatedAt: time.Now(),
	}
	for i, u := range t.Users {
		u.Seat = seat.Seat(i)
	}
	return t
}

// GetPlayer 按玩家 ID 查找
func (t *Table) GetPlayer(userID string) (*share.UserInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, u := range t.Users {
		if u.UserID == userID {
			return u, true
		}
	}
	return nil, false
}

func (t *Table) Close() {
	t.Engine.Close()
}
