package hand

import (
	"fmt"
	"slices"

	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
)

// MeldKind 副露类型
type MeldKind int

const (
	Run           MeldKind = iota // 顺子（吃）
	Triplet                       // 刻子（碰）
	ExposedQuad                   // 明杠（大明杠）
	ConcealedQuad                 // 暗杠
	AddedQuad                     // 加杠
)

var meldKindNames = [...]string{"Run", "Triplet", "ExposedQuad", "ConcealedQuad", "AddedQuad"}

func (k MeldKind) String() string {
	if k < 0 || int(k) >= len(meldKindNames) {
		return fmt.Sprintf("MeldKind(%d)", int(k))
	}
	return meldKindNames[k]
}

func (k MeldKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *MeldKind) UnmarshalText(text []byte) error {
	for i, name := range meldKindNames {
		if name == string(text) {
			*k = MeldKind(i)
			return nil
		}
	}
	return fmt.Errorf("未知副露类型: %s", text)
}

// Claim 被鸣的牌及其出处
type Claim struct {
	Tile tile.Id   `json:"tile"`
	From seat.Seat `json:"from"`
}

// Meld 副露，一旦形成不可撤销
type Meld struct {
	Kind    MeldKind  `json:"kind"`
	Tiles   []tile.Id `json:"tiles"`   // 升序
	Claimed tile.Id   `json:"claimed"` // 鸣入的那张，暗杠无意义
	From    seat.Seat `json:"from"`    // 暗杠为 NoSeat，加杠保留原碰的出处
}

func newMeld(kind MeldKind, claimed tile.Id, from seat.Seat, tiles ...tile.Id) Meld {
	ts := append([]tile.Id(nil), tiles...)
	slices.Sort(ts)
	return Meld{Kind: kind, Tiles: ts, Claimed: claimed, From: from}
}

// Face 最小的牌面，刻子和杠即其牌面
func (m Meld) Face() tile.Face { return m.Tiles[0].Face() }

func (m Meld) IsQuad() bool {
	return m.Kind == ExposedQuad || m.Kind == ConcealedQuad || m.Kind == AddedQuad
}

// IsOpen 是否破坏门清，暗杠不算
func (m Meld) IsOpen() bool { return m.Kind != ConcealedQuad }

func (m Meld) clone() Meld {
	m.Tiles = append([]tile.Id(nil), m.Tiles...)
	return m
}

func (m Meld) String() string {
	return fmt.Sprintf("%s%v", m.Kind, m.Tiles)
}
