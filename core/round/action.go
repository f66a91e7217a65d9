package round

import (
	"encoding/json"
	"fmt"

	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
)

// ActionKind 操作种类
type ActionKind int

const (
	KindPass ActionKind = iota
	KindDiscard
	KindTsumo
	KindChankan
	KindRon
	KindKan
	KindChi
	KindPon
	KindRiichi
	KindRyukyoku
)

var actionKindNames = [...]string{"Pass", "Discard", "Tsumo", "Chankan", "Ron", "Kan", "Chi", "Pon", "Riichi", "Ryukyoku"}

func (k ActionKind) String() string {
	if k < 0 || int(k) >= len(actionKindNames) {
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
	return actionKindNames[k]
}

func parseActionKind(s string) (ActionKind, bool) {
	for i, name := range actionKindNames {
		if name == s {
			return ActionKind(i), true
		}
	}
	return 0, false
}

// Action 玩家操作。封闭集合，只有本包内的类型实现
type Action interface {
	Kind() ActionKind
	action()
}

// tilesOf 操作携带的牌
func tilesOf(a Action) []tile.Id {
	switch a := a.(type) {
	case Discard:
		return []tile.Id{a.Tile}
	case Riichi:
		return []tile.Id{a.Tile}
	case Ron:
		return []tile.Id{a.Tile}
	case Chankan:
		return []tile.Id{a.Tile}
	case Chi:
		return a.Support[:]
	case Pon:
		return a.Support[:]
	case Kan:
		return a.Tiles
	}
	return nil
}

// Pass 不鸣牌
type Pass struct{}

// Discard 打牌，Source 必须与提交者一致
type Discard struct {
	Tile   tile.Id
	Source seat.Seat
}

// Tsumo 自摸和了
type Tsumo struct{}

// Chankan 抢杠
type Chankan struct {
	Tile tile.Id
}

// Ron 荣和，Tile 为被荣和的牌
type Ron struct {
	Tile tile.Id
}

type KanType int

const (
	KanConcealed KanType = iota // 暗杠，Tiles 为 4 张
	KanAdded                    // 加杠，Tiles 为 1 张
	KanExposed                  // 大明杠，Tiles 为门内 3 张
)

var kanTypeNames = [...]string{"Concealed", "Added", "Exposed"}

func (k KanType) String() string {
	if k < 0 || int(k) >= len(kanTypeNames) {
		return fmt.Sprintf("KanType(%d)", int(k))
	}
	return kanTypeNames[k]
}

type Kan struct {
	Type  KanType
	Tiles []tile.Id
}

// Chi 吃上家，Support 为门内两张
type Chi struct {
	Support [2]tile.Id
}

// Pon 碰，Support 为门内两张
type Pon struct {
	Support [2]tile.Id
}

// Riichi 立直并打出 Tile
type Riichi struct {
	Tile tile.Id
}

// Ryukyoku 九种九牌流局
type Ryukyoku struct{}

func (Pass) Kind() ActionKind     { return KindPass }
func (Discard) Kind() ActionKind  { return KindDiscard }
func (Tsumo) Kind() ActionKind    { return KindTsumo }
func (Chankan) Kind() ActionKind  { return KindChankan }
func (Ron) Kind() ActionKind      { return KindRon }
func (Kan) Kind() ActionKind      { return KindKan }
func (Chi) Kind() ActionKind      { return KindChi }
func (Pon) Kind() ActionKind      { return KindPon }
func (Riichi) Kind() ActionKind   { return KindRiichi }
func (Ryukyoku) Kind() ActionKind { return KindRyukyoku }

func (Pass) action()     {}
func (Discard) action()  {}
func (Tsumo) action()    {}
func (Chankan) action()  {}
func (Ron) action()      {}
func (Kan) action()      {}
func (Chi) action()      {}
func (Pon) action()      {}
func (Riichi) action()   {}
func (Ryukyoku) action() {}

// Describe 日志用的简短描述
func Describe(a Action) string {
	switch a := a.(type) {
	case nil:
		return "<nil>"
	case Discard:
		return fmt.Sprintf("Discard(%s)", a.Tile)
	case Chankan:
		return fmt.Sprintf("Chankan(%s)", a.Tile)
	case Ron:
		return fmt.Sprintf("Ron(%s)", a.Tile)
	case Kan:
		return fmt.Sprintf("Kan[%s]%v", a.Type, a.Tiles)
	case Chi:
		return fmt.Sprintf("Chi%v", a.Support)
	case Pon:
		return fmt.Sprintf("Pon%v", a.Support)
	case Riichi:
		return fmt.Sprintf("Riichi(%s)", a.Tile)
	default:
		return a.Kind().String()
	}
}

// envelope 传输层上的操作格式
type envelope struct {
	Kind   string     `json:"kind"`
	Tile   *tile.Id   `json:"tile,omitempty"`
	Source *seat.Seat `json:"source,omitempty"`
	Kan    string     `json:"kan,omitempty"`
	Tiles  []tile.Id  `json:"tiles,omitempty"`
}

// MarshalAction 编码为传输层格式
func MarshalAction(a Action) ([]byte, error) {
	if a == nil {
		return nil, fmt.Errorf("操作为空")
	}
	env := envelope{Kind: a.Kind().String()}
	switch a := a.(type) {
	case Discard:
		env.Tile, env.Source = &a.Tile, &a.Source
	case Chankan:
		env.Tile = &a.Tile
	case Ron:
		env.Tile = &a.Tile
	case Riichi:
		env.Tile = &a.Tile
	case Kan:
		env.Kan = a.Type.String()
		env.Tiles = a.Tiles
	case Chi:
		env.Tiles = a.Support[:]
	case Pon:
		env.Tiles = a.Support[:]
	}
	return json.Marshal(env)
}

// UnmarshalAction 从传输层格式解码，只校验结构，合法性由 Round.Apply 判定
func UnmarshalAction(data []byte) (Action, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("解析操作失败: %w", err)
	}
	kind, ok := parseActionKind(env.Kind)
	if !ok {
		return nil, fmt.Errorf("未知操作类型: %q", env.Kind)
	}

	needTile := func() (tile.Id, error) {
		if env.Tile == nil {
			return 0, fmt.Errorf("%s 缺少 tile", env.Kind)
		}
		return *env.Tile, nil
	}
	needPair := func() ([2]tile.Id, error) {
		if len(env.Tiles) != 2 {
			return [2]tile.Id{}, fmt.Errorf("%s 需要 2 张牌，实际 %d 张", env.Kind, len(env.Tiles))
		}
		return [2]tile.Id{env.Tiles[0], env.Tiles[1]}, nil
	}

	switch kind {
	case KindPass:
		return Pass{}, nil
	case KindTsumo:
		return Tsumo{}, nil
	case KindRyukyoku:
		return Ryukyoku{}, nil
	case KindDiscard:
		t, err := needTile()
		if err != nil {
			return nil, err
		}
		if env.Source == nil {
			return nil, fmt.Errorf("Discard 缺少 source")
		}
		return Discard{Tile: t, Source: *env.Source}, nil
	case KindChankan:
		t, err := needTile()
		if err != nil {
			return nil, err
		}
		return Chankan{Tile: t}, nil
	case KindRon:
		t, err := needTile()
		if err != nil {
			return nil, err
		}
		return Ron{Tile: t}, nil
	case KindRiichi:
		t, err := needTile()
		if err != nil {
			return nil, err
		}
		return Riichi{Tile: t}, nil
	case KindChi:
		p, err := needPair()
		if err != nil {
			return nil, err
		}
		return Chi{Support: p}, nil
	case KindPon:
		p, err := needPair()
		if err != nil {
			return nil, err
		}
		return Pon{Support: p}, nil
	case KindKan:
		for i, name := range kanTypeNames {
			if name == env.Kan {
				return Kan{Type: KanType(i), Tiles: env.Tiles}, nil
			}
		}
		return nil, fmt.Errorf("未知杠类型: %q", env.Kan)
	}
	return nil, fmt.Errorf("未知操作类型: %q", env.Kind)
}
