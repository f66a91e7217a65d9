package round

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
)

func TestActionEnvelope(t *testing.T) {
	data, err := MarshalAction(Discard{Tile: 17, Source: seat.West})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"Discard","tile":17,"source":2}`, string(data))

	data, err = MarshalAction(Kan{Type: KanConcealed, Tiles: []tile.Id{0, 1, 2, 3}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"Kan","kan":"Concealed","tiles":[0,1,2,3]}`, string(data))

	for _, a := range []Action{
		Pass{}, Tsumo{}, Ryukyoku{},
		Discard{Tile: 135, Source: seat.North},
		Ron{Tile: 20}, Chankan{Tile: 21}, Riichi{Tile: 22},
		Chi{Support: [2]tile.Id{4, 8}}, Pon{Support: [2]tile.Id{40, 41}},
		Kan{Type: KanAdded, Tiles: []tile.Id{43}},
	} {
		data, err := MarshalAction(a)
		require.NoError(t, err)
		back, err := UnmarshalAction(data)
		require.NoError(t, err, string(data))
		assert.Equal(t, a, back)
	}
}

func TestUnmarshalActionRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		`{"kind":"Shout"}`,
		`{"kind":"Discard","tile":3}`,
		`{"kind":"Ron"}`,
		`{"kind":"Pon","tiles":[1]}`,
		`{"kind":"Kan","kan":"Closed","tiles":[0,1,2,3]}`,
		`not json`,
	} {
		a, err := UnmarshalAction([]byte(raw))
		assert.Error(t, err, raw)
		assert.Nil(t, a, raw)
	}
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Pass", Describe(Pass{}))
	assert.Equal(t, "<nil>", Describe(nil))
	assert.Equal(t, "Discard(5m#0)", Describe(Discard{Tile: tile.New(tile.Man5, 0)}))
}
