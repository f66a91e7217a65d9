package tile

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdLayout(t *testing.T) {
	id := New(Pin5, 2)
	assert.Equal(t, Pin5, id.Face())
	assert.Equal(t, Index(2), id.Index())
	assert.Equal(t, Id(Pin5)*4+2, id)
	assert.Len(t, Universe(), TotalTiles)
	assert.False(t, Id(136).Valid())
}

func TestFaceProperties(t *testing.T) {
	assert.Equal(t, 1, Man1.Rank())
	assert.Equal(t, 9, So9.Rank())
	assert.Equal(t, 0, East.Rank())
	assert.True(t, Pin9.IsTerminal())
	assert.True(t, Red.IsTerminalOrHonor())
	assert.False(t, So5.IsTerminalOrHonor())
	assert.Equal(t, SuitSo, So3.Suit())
	assert.Equal(t, SuitDragon, Green.Suit())
	assert.Equal(t, "7p", Pin7.String())
	assert.Equal(t, "N", North.String())

	_, ok := Man9.Offset(1)
	assert.False(t, ok)
	f, ok := Man8.Offset(-2)
	require.True(t, ok)
	assert.Equal(t, Man6, f)
	_, ok = East.Offset(1)
	assert.False(t, ok)
}

func TestDoraOf(t *testing.T) {
	cases := []struct {
		indicator, dora Face
	}{
		{Man1, Man2},
		{Man9, Man1},
		{Pin9, Pin1},
		{So4, So5},
		{East, South},
		{North, East},
		{White, Green},
		{Red, White},
	}
	for _, c := range cases {
		assert.Equal(t, c.dora, c.indicator.DoraOf(), "indicator %s", c.indicator)
	}
}

func TestSetInsertRemoveContains(t *testing.T) {
	var s Set
	require.True(t, s.IsEmpty())

	a, b := New(Man3, 0), New(Man3, 3)
	s.Insert(a)
	s.Insert(a)
	s.Insert(b)
	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Contains(a))
	assert.False(t, s.Contains(New(Man3, 1)))
	assert.Equal(t, 2, s.CountFace(Man3))

	// 删除不存在的牌是空操作
	s.Remove(New(Red, 0))
	assert.Equal(t, 2, s.Len())

	s.Remove(a)
	assert.False(t, s.Contains(a))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 1, s.CountFace(Man3))
}

func TestSetIgnoresInvalidIds(t *testing.T) {
	s := SetOf(New(Red, 3))
	for _, id := range []Id{TotalTiles, 191, 192, 255} {
		assert.False(t, s.Contains(id), "id %d", id)
		s.Insert(id)
		s.Remove(id)
	}
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, []Id{New(Red, 3)}, s.Slice())
}

func TestSetCopiesAcrossWordBoundary(t *testing.T) {
	// 第 16、32 个牌面落在新的 uint64 上
	var s Set
	for _, f := range []Face{Face(15), Face(16), Face(31), Face(32), Red} {
		s.Insert(New(f, 1))
		s.Insert(New(f, 3))
	}
	for _, f := range []Face{Face(15), Face(16), Face(31), Face(32), Red} {
		copies := s.Copies(f)
		assert.Equal(t, []Index{1, 3}, copies.Indices(), "face %s", f)
		assert.Equal(t, 2, s.CountFace(f))
	}
	assert.Equal(t, 0, s.CountFace(Face(17)))
	assert.Equal(t, 10, s.Len())
}

func TestSetIterationIsAscendingAndRestartable(t *testing.T) {
	s := SetOf(New(Red, 2), New(Man1, 0), New(Pin5, 1), New(Man1, 3), New(East, 0))
	want := []Id{New(Man1, 0), New(Man1, 3), New(Pin5, 1), New(East, 0), New(Red, 2)}

	assert.Equal(t, want, s.Slice())
	// 第二次遍历结果一致
	assert.Equal(t, want, s.Slice())

	var first []Id
	for id := range s.All() {
		first = append(first, id)
		if len(first) == 2 {
			break
		}
	}
	assert.Equal(t, want[:2], first)
}

func TestSetFullUniverse(t *testing.T) {
	s := SetOf(Universe()...)
	assert.Equal(t, TotalTiles, s.Len())
	for f := Face(0); f < FaceCount; f++ {
		assert.Equal(t, 4, s.CountFace(f))
	}
	faces := s.Faces()
	assert.Equal(t, uint8(4), faces[Green])

	id, ok := s.RemoveOneOfFace(Green)
	require.True(t, ok)
	assert.Equal(t, New(Green, 0), id)
	assert.Equal(t, 3, s.CountFace(Green))
}

func TestSetValueSemantics(t *testing.T) {
	s := SetOf(New(So1, 0))
	clone := s
	clone.Insert(New(So2, 0))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestSetJSON(t *testing.T) {
	s := SetOf(New(Man1, 0), New(Red, 3))
	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `[0,135]`, string(data))

	var back Set
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, s, back)

	assert.Error(t, json.Unmarshal([]byte(`[200]`), &back))
}
