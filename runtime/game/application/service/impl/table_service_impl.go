package impl

import (
	"context"
	"encoding/json"

	"github.com/4t145/rahjong/common/log"
	"github.com/4t145/rahjong/core/reason"
	"github.com/4t145/rahjong/core/round"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/runtime/game"
	"github.com/4t145/rahjong/runtime/game/application/service"
	"github.com/4t145/rahjong/runtime/game/engines"
	"github.com/4t145/rahjong/runtime/game/share"
)

type TableServiceImpl struct {
	tables *game.TableManager
}

// NewTableService 创建 TableService 实例
func NewTableService(tables *game.TableManager) service.TableService {
	return &TableServiceImpl{tables: tables}
}

// CreateTable 创建牌桌并开局
func (s *TableServiceImpl) CreateTable(ctx context.Context, req *service.CreateTableReq) (*service.CreateTableResp, error) {
	if req == nil {
		return &service.CreateTableResp{Success: false, Message: "请求不能为空"}, nil
	}
	if len(req.Players) != seat.Count {
		return &service.CreateTableResp{Success: false, Message: "需要 4 名玩家"}, nil
	}

	var users [seat.Count]*share.UserInfo
	for i, id := range req.Players {
		users[i] = share.NewUserInfo(id, id)
	}
	table, err := s.tables.CreateTable(users, engines.EngineType(req.EngineType))
	if err != nil {
		log.Error("TableService 创建牌桌失败: %v", err)
		return &service.CreateTableResp{Success: false, Message: err.Error()}, nil
	}

	log.Info("TableService 创建牌桌成功: %s", table.ID)
	return &service.CreateTableResp{Success: true, TableID: table.ID, Message: "牌桌创建成功"}, nil
}

func (s *TableServiceImpl) locate(userID string) (*game.Table, seat.Seat, bool) {
	table, ok := s.tables.GetPlayerTable(userID)
	if !ok {
		return nil, seat.NoSeat, false
	}
	player, ok := table.GetPlayer(userID)
	if !ok {
		return nil, seat.NoSeat, false
	}
	return table, player.Seat, true
}

// Submit 提交操作，规则拒绝通过 Code 返回
func (s *TableServiceImpl) Submit(ctx context.Context, req *service.SubmitReq) (*service.SubmitResp, error) {
	if req == nil {
		return &service.SubmitResp{Success: false, Message: "请求不能为空"}, nil
	}
	table, st, ok := s.locate(req.UserID)
	if !ok {
		return &service.SubmitResp{Success: false, Message: "玩家不在任何牌桌中"}, nil
	}
	a, err := round.UnmarshalAction(req.Action)
	if err != nil {
		return &service.SubmitResp{Success: false, Message: err.Error()}, nil
	}

	if err := table.Engine.Submit(ctx, st, req.Version, a); err != nil {
		return &service.SubmitResp{Success: false, Code: string(reason.CodeOf(err)), Message: err.Error()}, nil
	}
	return &service.SubmitResp{Success: true, Message: round.Describe(a)}, nil
}

// Sight 拉取视野和当前可选操作，用于重连或首次进入
func (s *TableServiceImpl) Sight(ctx context.Context, req *service.SightReq) (*service.SightResp, error) {
	if req == nil {
		return &service.SightResp{Success: false, Message: "请求不能为空"}, nil
	}
	table, st, ok := s.locate(req.UserID)
	if !ok {
		return &service.SightResp{Success: false, Message: "玩家不在任何牌桌中"}, nil
	}

	sight := table.Engine.Sight(st)
	resp := &service.SightResp{Success: true, Sight: &sight}
	for _, a := range table.Engine.Options(st) {
		raw, err := round.MarshalAction(a)
		if err != nil {
			log.Error("TableService 编码操作失败: %v", err)
			continue
		}
		resp.Options = append(resp.Options, json.RawMessage(raw))
	}
	return resp, nil
}
