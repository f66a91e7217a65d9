package game

import "fmt"

// LoadInfo 牌桌管理器的统计信息
type LoadInfo struct {
	TableCount  int // 当前牌桌数
	PlayerCount int // 当前玩家数
	InProgress  int // 对局中的牌桌
	Finished    int // 已结束但尚未回收的牌桌
}

func (li LoadInfo) String() string {
	return fmt.Sprintf("tables=%d players=%d inProgress=%d finished=%d",
		li.TableCount, li.PlayerCount, li.InProgress, li.Finished)
}
