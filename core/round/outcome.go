package round

import (
	"fmt"

	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
)

// EndKind 结束方式
type EndKind int

const (
	EndTsumo         EndKind = iota + 1 // 自摸
	EndRon                              // 荣和
	EndChankan                          // 抢杠
	EndExhaustive                       // 荒牌流局
	EndNineTerminals                    // 九种九牌
	EndFourKans                         // 四杠散了
	EndFourRiichi                       // 四家立直
	EndAborted                          // 外部中止，例如断线
)

var endKindNames = [...]string{"", "Tsumo", "Ron", "Chankan", "Exhaustive", "NineTerminals", "FourKans", "FourRiichi", "Aborted"}

func (k EndKind) String() string {
	if k <= 0 || int(k) >= len(endKindNames) {
		return fmt.Sprintf("EndKind(%d)", int(k))
	}
	return endKindNames[k]
}

func (k EndKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *EndKind) UnmarshalText(text []byte) error {
	for i, name := range endKindNames {
		if i > 0 && name == string(text) {
			*k = EndKind(i)
			return nil
		}
	}
	return fmt.Errorf("未知结束方式: %s", text)
}

// IsWin 是否有人和了
func (k EndKind) IsWin() bool {
	return k == EndTsumo || k == EndRon || k == EndChankan
}

// Outcome 一局的结果
type Outcome struct {
	Kind            EndKind          `json:"kind"`
	Winner          seat.Seat        `json:"winner"`
	Loser           seat.Seat        `json:"loser"`    // 放铳或被抢杠的一家
	Declarer        seat.Seat        `json:"declarer"` // 九种九牌的宣言者
	Tile            tile.Id          `json:"tile"`     // 和了牌
	InnerIndicators []tile.Id        `json:"innerIndicators,omitempty"`
	Tenpai          [seat.Count]bool `json:"tenpai"` // 荒牌流局时各家是否听牌
	Reason          string           `json:"reason,omitempty"`
}

func noOutcome(kind EndKind) Outcome {
	return Outcome{Kind: kind, Winner: seat.NoSeat, Loser: seat.NoSeat, Declarer: seat.NoSeat}
}

func (o Outcome) String() string {
	switch {
	case o.Kind.IsWin() && o.Loser != seat.NoSeat:
		return fmt.Sprintf("%s: %s <- %s (%s)", o.Kind, o.Winner, o.Loser, o.Tile)
	case o.Kind.IsWin():
		return fmt.Sprintf("%s: %s (%s)", o.Kind, o.Winner, o.Tile)
	case o.Reason != "":
		return fmt.Sprintf("%s: %s", o.Kind, o.Reason)
	}
	return o.Kind.String()
}
