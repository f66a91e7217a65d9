package service

import (
	"context"
	"encoding/json"

	"github.com/4t145/rahjong/core/round"
)

// TableService 面向客户端的牌桌服务，操作以 JSON 信封收发
type TableService interface {
	CreateTable(ctx context.Context, req *CreateTableReq) (*CreateTableResp, error)
	Submit(ctx context.Context, req *SubmitReq) (*SubmitResp, error)
	Sight(ctx context.Context, req *SightReq) (*SightResp, error)
}

type CreateTableReq struct {
	Players    []string `json:"players"`    // 按座位排列的 userID，东南西北
	EngineType int32    `json:"engineType"` // 游戏引擎类型
}

type CreateTableResp struct {
	Success bool   `json:"success"`
	TableID string `json:"tableID"`
	Message string `json:"message"`
}

type SubmitReq struct {
	UserID  string          `json:"userID"`
	Version uint64          `json:"version"` // 玩家看到的局面版本
	Action  json.RawMessage `json:"action"`
}

type SubmitResp struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"` // 拒绝时的消息码，见 reason.Code
	Message string `json:"message"`
}

type SightReq struct {
	UserID string `json:"userID"`
}

type SightResp struct {
	Success bool               `json:"success"`
	Sight   *round.PlayerSight `json:"sight,omitempty"`
	Options []json.RawMessage  `json:"options,omitempty"`
	Message string             `json:"message"`
}
