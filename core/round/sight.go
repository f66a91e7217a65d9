package round

import (
	"github.com/4t145/rahjong/core/hand"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
)

// PlayerSight 某一家能看到的局面：自己的手牌，其余三家只有张数和副露
type PlayerSight struct {
	Seat             seat.Seat               `json:"seat"`
	Dealer           seat.Seat               `json:"dealer"`
	Version          uint64                  `json:"version"`
	Phase            Phase                   `json:"phase"`
	WallRest         int                     `json:"wallRest"`
	Deck             *hand.Deck              `json:"deck"`
	HandSizes        [seat.Count]int         `json:"handSizes"`
	Melds            [seat.Count][]hand.Meld `json:"melds"`
	Discards         []DiscardEntry          `json:"discards"`
	DoraIndicators   []tile.Id               `json:"doraIndicators"`
	Riichi           [seat.Count]bool        `json:"riichi"`
	ToDiscard        seat.Seat               `json:"toDiscard"`
	LastDiscard      *DiscardEntry           `json:"lastDiscard,omitempty"`
	PendingKan       *KanDeclaration         `json:"pendingKan,omitempty"`
	AwaitingReaction bool                    `json:"awaitingReaction"`
	Outcome          *Outcome                `json:"outcome,omitempty"`
}

// Sight 构造 s 的视野，返回值与局面不共享内存
func (r *Round) Sight(s seat.Seat) PlayerSight {
	ps := PlayerSight{
		Seat:      s,
		Dealer:    r.dealer,
		Version:   r.version,
		Phase:     r.state.Phase,
		WallRest:  r.wall.Remaining(),
		Deck:      r.decks[s].Clone(),
		Discards:  r.discards.Entries(),
		Riichi:    r.riichi,
		ToDiscard: seat.NoSeat,
	}
	if ps.Discards == nil {
		ps.Discards = []DiscardEntry{}
	}
	for _, o := range seat.All(seat.East) {
		ps.HandSizes[o] = r.decks[o].Size()
		ps.Melds[o] = r.decks[o].Melds()
	}
	if r.doras != nil {
		ps.DoraIndicators = r.doras.Indicators()
	} else {
		ps.DoraIndicators = []tile.Id{}
	}

	switch r.state.Phase {
	case PhaseWaitDiscard:
		ps.ToDiscard = r.state.Player
	case PhaseWaitDiscardReaction:
		d := r.state.Discard
		ps.LastDiscard = &d
		ps.AwaitingReaction = r.barrier.Expects(s) && !r.barrier.Responded(s)
	case PhaseWaitKanReaction:
		k := r.state.Kan
		ps.PendingKan = &k
		ps.AwaitingReaction = r.barrier.Expects(s) && !r.barrier.Responded(s)
	case PhaseEnd:
		if r.outcome != nil {
			o := *r.outcome
			o.InnerIndicators = append([]tile.Id(nil), o.InnerIndicators...)
			ps.Outcome = &o
		}
	}
	return ps
}

// Sights 四家的视野
func (r *Round) Sights() [seat.Count]PlayerSight {
	var out [seat.Count]PlayerSight
	for _, s := range seat.All(seat.East) {
		out[s] = r.Sight(s)
	}
	return out
}
