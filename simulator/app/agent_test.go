package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/4t145/rahjong/core/hand"
	"github.com/4t145/rahjong/core/round"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
)

func sightOf(ids ...tile.Id) round.PlayerSight {
	return round.PlayerSight{Seat: seat.South, Deck: hand.NewDeck(ids...), ToDiscard: seat.South}
}

func TestChoose(t *testing.T) {
	m1, m2, m3 := tile.New(tile.Man1, 0), tile.New(tile.Man2, 0), tile.New(tile.Man3, 0)
	p5, p6 := tile.New(tile.Pin5, 0), tile.New(tile.Pin6, 0)
	s9, e := tile.New(tile.So9, 0), tile.New(tile.East, 0)
	held := []tile.Id{m1, m2, m3, p5, p6, s9, e}
	discards := func() []round.Action {
		out := make([]round.Action, 0, len(held))
		for _, t := range held {
			out = append(out, round.Discard{Tile: t, Source: seat.South})
		}
		return out
	}
	red := tile.New(tile.Red, 0)
	dragon := sightOf(held...)
	dragon.LastDiscard = &round.DiscardEntry{Tile: red, Source: seat.East, ClaimedBy: seat.NoSeat}

	tests := []struct {
		name  string
		sight round.PlayerSight
		opts  []round.Action
		want  round.Action
	}{
		{"win first", sightOf(held...), append(discards(), round.Tsumo{}), round.Tsumo{}},
		{"ron over pass", sightOf(held...), []round.Action{round.Pass{}, round.Ron{Tile: m1}}, round.Ron{Tile: m1}},
		{"chi is passed", sightOf(held...), []round.Action{round.Pass{}, round.Chi{Support: [2]tile.Id{m2, m3}}}, round.Pass{}},
		{"pon dragons", dragon, []round.Action{round.Pass{}, round.Pon{Support: [2]tile.Id{tile.New(tile.Red, 1), tile.New(tile.Red, 2)}}},
			round.Pon{Support: [2]tile.Id{tile.New(tile.Red, 1), tile.New(tile.Red, 2)}}},
		{"isolated tile", sightOf(held...), discards(), round.Discard{Tile: s9, Source: seat.South}},
		{"riichi over discard", sightOf(held...), append(discards(), round.Riichi{Tile: m2}, round.Riichi{Tile: e}), round.Riichi{Tile: e}},
		{"concealed kan", sightOf(held...), append(discards(), round.Kan{Type: round.KanConcealed, Tiles: []tile.Id{0, 1, 2, 3}}),
			round.Kan{Type: round.KanConcealed, Tiles: []tile.Id{0, 1, 2, 3}}},
		{"exposed kan is passed", sightOf(held...), []round.Action{round.Pass{}, round.Kan{Type: round.KanExposed, Tiles: []tile.Id{0, 1, 2}}}, round.Pass{}},
		{"nothing to do", sightOf(held...), nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Choose(tt.sight, tt.opts))
		})
	}
}
