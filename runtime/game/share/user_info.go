package share

import "github.com/4t145/rahjong/core/seat"

// UserInfo 和游戏逻辑隔离的玩家信息
type UserInfo struct {
	UserID   string    // 玩家 ID
	Name     string    // 日志里显示的名字
	Seat     seat.Seat // 入座后分配
	IsOnline bool      // 是否在线
}

// NewUserInfo 创建玩家信息
func NewUserInfo(userID, name string) *UserInfo {
	return &UserInfo{
		UserID:   userID,
		Name:     name,
		Seat:     seat.NoSeat,
		IsOnline: true,
	}
}

// SetOffline 设置玩家离线
func (pi *UserInfo) SetOffline() {
	pi.IsOnline = false
}

// SetOnline 设置玩家在线
func (pi *UserInfo) SetOnline() {
	pi.IsOnline = true
}
