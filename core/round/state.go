package round

import (
	"fmt"

	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
)

// Phase 局面状态，唯一决定"现在什么操作合法"
type Phase int

const (
	PhaseInit                Phase = iota // 发牌前
	PhaseWaitDiscard                      // 等待某家出牌、自摸、暗杠/加杠、立直
	PhaseWaitDiscardReaction              // 等待其余三家对打出的牌做出反应
	PhaseWaitKanReaction                  // 加杠时等待其余三家是否抢杠
	PhaseEnd                              // 结束
)

var phaseNames = [...]string{"Init", "WaitDiscard", "WaitDiscardReaction", "WaitKanReaction", "End"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("未知局面状态: %s", text)
}

// DiscardEntry 牌河中的一条记录
type DiscardEntry struct {
	Tile      tile.Id   `json:"tile"`
	Source    seat.Seat `json:"source"`
	Riichi    bool      `json:"riichi"`    // 立直宣言牌
	ClaimedBy seat.Seat `json:"claimedBy"` // 被鸣走或荣和，未被鸣为 NoSeat
}

// KanDeclaration 等待抢杠的加杠宣言
type KanDeclaration struct {
	Seat seat.Seat `json:"seat"`
	Tile tile.Id   `json:"tile"`
}

// State 当前状态及其负载
type State struct {
	Phase        Phase
	Player       seat.Seat      // WaitDiscard：该出牌的一家
	Discard      DiscardEntry   // WaitDiscardReaction：等待反应的那张牌
	DiscardIndex int            // 该牌在牌河中的下标
	Kan          KanDeclaration // WaitKanReaction
}

func waitDiscard(p seat.Seat) State {
	return State{Phase: PhaseWaitDiscard, Player: p, DiscardIndex: -1}
}

func (s State) String() string {
	switch s.Phase {
	case PhaseWaitDiscard:
		return fmt.Sprintf("WaitDiscard(%s)", s.Player)
	case PhaseWaitDiscardReaction:
		return fmt.Sprintf("WaitDiscardReaction(%s by %s)", s.Discard.Tile, s.Discard.Source)
	case PhaseWaitKanReaction:
		return fmt.Sprintf("WaitKanReaction(%s by %s)", s.Kan.Tile, s.Kan.Seat)
	}
	return s.Phase.String()
}
