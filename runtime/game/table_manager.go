package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/4t145/rahjong/common/log"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/runtime/game/engines"
	"github.com/4t145/rahjong/runtime/game/share"
)

var (
	ErrTableNotFound  = errors.New("牌桌不存在")
	ErrPlayerNotFound = errors.New("玩家不在任何牌桌中")
)

// TableManager 牌桌管理器
// 管理所有牌桌实例，使用原型模式管理 Engine
type TableManager struct {
	tables           map[string]*Table                     // tableID -> Table
	playerTable      map[string]string                     // userID -> tableID
	enginePrototypes map[engines.EngineType]engines.Engine // engineType -> Engine 原型
	mu               sync.RWMutex
}

func NewTableManager() *TableManager {
	return &TableManager{
		tables:           make(map[string]*Table),
		playerTable:      make(map[string]string),
		enginePrototypes: make(map[engines.EngineType]engines.Engine),
	}
}

// SetEnginePrototype 注入 Engine 原型
func (tm *TableManager) SetEnginePrototype(engineType engines.EngineType, engine engines.Engine) error {
	if engine == nil {
		return fmt.Errorf("Engine 原型不能为空")
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	tm.enginePrototypes[engineType] = engine
	log.Info("TableManager 注入 Engine 原型: engineType=%d", engineType)
	return nil
}

// CreateTable 创建牌桌并开局，users 的下标即座位
func (tm *TableManager) CreateTable(users [seat.Count]*share.UserInfo, engineType engines.EngineType) (*Table, error) {
	seen := make(map[string]struct{}, seat.Count)
	for i, u := range users {
		if u == nil || u.UserID == "" {
			return nil, fmt.Errorf("座位 %s 没有玩家", seat.Seat(i))
		}
		if _, dup := seen[u.UserID]; dup {
			return nil, fmt.Errorf("玩家 %s 重复入座", u.UserID)
		}
		seen[u.UserID] = struct{}{}
	}

	tm.mu.Lock()
	defer tm.mu.Unlock()

	for _, u := range users {
		if tableID, exists := tm.playerTable[u.UserID]; exists {
			return nil, fmt.Errorf("玩家 %s 已在牌桌 %s 中", u.UserID, tableID)
		}
	}

	// 步骤 1：从原型克隆 Engine
	prototype, exists := tm.enginePrototypes[engineType]
	if !exists {
		return nil, fmt.Errorf("不支持的引擎类型: %d", engineType)
	}
	engine := prototype.Clone()
	if engine == nil {
		return nil, fmt.Errorf("克隆游戏引擎失败: engineType=%d", engineType)
	}

	// 步骤 2：创建牌桌，初始化引擎
	table := NewTable(engine, users)
	if err := table.Engine.InitializeEngine(table.ID, table.Users); err != nil {
		table.Close()
		return nil, fmt.Errorf("初始化游戏引擎失败: %w", err)
	}

	// 步骤 3：更新路由映射
	tm.tables[table.ID] = table
	for _, u := range users {
		tm.playerTable[u.UserID] = table.ID
	}

	log.Info("TableManager 创建牌桌 %s，引擎类型: %d", table.ID, engineType)
	return table, nil
}

func (tm *TableManager) GetTable(tableID string) (*Table, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	table, exists := tm.tables[tableID]
	return table, exists
}

// GetPlayerTable 获取玩家所在牌桌
func (tm *TableManager) GetPlayerTable(userID string) (*Table, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	tableID, exists := tm.playerTable[userID]
	if !exists {
		return nil, false
	}
	table, exists := tm.tables[tableID]
	return table, exists
}

// DeleteTable 删除牌桌，清理玩家路由并关闭引擎
func (tm *TableManager) DeleteTable(tableID string) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if _, exists := tm.tables[tableID]; !exists {
		return fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	tm.cleanupTable(tableID)

	log.Info("TableManager 删除牌桌 %s", tableID)
	return nil
}

// Reconnect 玩家重连，引擎重新推送其视野
func (tm *TableManager) Reconnect(userID string) error {
	table, exists := tm.GetPlayerTable(userID)
	if !exists {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, userID)
	}
	player, exists := table.GetPlayer(userID)
	if !exists {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, userID)
	}

	table.Engine.NotifyEvent(&share.ReconnectEvent{GameMessageEvent: share.GameMessageEvent{Seat: player.Seat}})
	log.Info("TableManager 玩家 %s 重连牌桌 %s", userID, table.ID)
	return nil
}

// GetStats 获取统计信息
func (tm *TableManager) GetStats() LoadInfo {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	info := LoadInfo{TableCount: len(tm.tables), PlayerCount: len(tm.playerTable)}
	for _, table := range tm.tables {
		switch table.Engine.GetState() {
		case engines.GameInProgress:
			info.InProgress++
		case engines.GameFinished:
			info.Finished++
		}
	}
	return info
}

// GetAllTables 获取所有牌桌列表（返回副本）
func (tm *TableManager) GetAllTables() []*Table {
	tm.mu.RLock()
	defer tm.mu.RUnlock()

	tables := make([]*Table, 0, len(tm.tables))
	for _, table := range tm.tables {
		tables = append(tables, table)
	}
	return tables
}

// ReleaseFinished 回收已经结束的牌桌，返回回收的数量
func (tm *TableManager) ReleaseFinished() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	n := 0
	for id, table := range tm.tables {
		if table.Engine.GetState() == engines.GameFinished {
			tm.cleanupTable(id)
			n++
		}
	}
	return n
}

// cleanupTable 清理牌桌（需要在持有锁的情况下调用）
func (tm *TableManager) cleanupTable(tableID string) {
	table, exists := tm.tables[tableID]
	if !exists {
		return
	}

	table.mu.RLock()
	for _, u := range table.Users {
		delete(tm.playerTable, u.UserID)
	}
	table.mu.RUnlock()

	table.Close()
	delete(tm.tables, tableID)
}
