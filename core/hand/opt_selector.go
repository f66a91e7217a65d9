package hand

import (
	"github.com/4t145/rahjong/core/tile"
)

// ChiWindow 被吃的牌在顺子中的位置
type ChiWindow int

const (
	ChiLow    ChiWindow = iota // 吃 3 用 45
	ChiMiddle                  // 吃 3 用 24
	ChiHigh                    // 吃 3 用 12
)

func (w ChiWindow) String() string {
	switch w {
	case ChiLow:
		return "Low"
	case ChiMiddle:
		return "Middle"
	case ChiHigh:
		return "High"
	}
	return "Unknown"
}

// ChiOption 一种可行的吃法，带上门内对应牌面的副本，无需再查手牌即可执行
type ChiOption struct {
	Window ChiWindow
	Faces  [2]tile.Face
	Copies [2]tile.IndexSet
}

// Support 每个牌面取序号最小的副本
func (o ChiOption) Support() [2]tile.Id {
	var out [2]tile.Id
	for i := range out {
		idx, _ := o.Copies[i].First()
		out[i] = tile.New(o.Faces[i], idx)
	}
	return out
}

var chiOffsets = [3]struct {
	window ChiWindow
	deltas [2]int
}{
	{ChiLow, [2]int{1, 2}},
	{ChiMiddle, [2]int{-1, 1}},
	{ChiHigh, [2]int{-2, -1}},
}

// ChiOptions 枚举全部吃法，字牌永远不能吃
func (d *Deck) ChiOptions(c Claim) []ChiOption {
	f := c.Tile.Face()
	if !f.IsNumber() {
		return nil
	}
	var out []ChiOption
	for _, o := range chiOffsets {
		a, okA := f.Offset(o.deltas[0])
		b, okB := f.Offset(o.deltas[1])
		if !okA || !okB {
			continue
		}
		ca, cb := d.concealed.Copies(a), d.concealed.Copies(b)
		if ca.IsEmpty() || cb.IsEmpty() {
			continue
		}
		out = append(out, ChiOption{
			Window: o.window,
			Faces:  [2]tile.Face{a, b},
			Copies: [2]tile.IndexSet{ca, cb},
		})
	}
	return out
}

// PonSupport 碰所需的两张门内牌
func (d *Deck) PonSupport(c Claim) ([2]tile.Id, bool) {
	ids := d.concealed.Copies(c.Tile.Face()).Ids(c.Tile.Face())
	if len(ids) < 2 {
		return [2]tile.Id{}, false
	}
	return [2]tile.Id{ids[0], ids[1]}, true
}

// KongSupport 大明杠所需的三张门内牌
func (d *Deck) KongSupport(c Claim) ([3]tile.Id, bool) {
	ids := d.concealed.Copies(c.Tile.Face()).Ids(c.Tile.Face())
	if len(ids) < 3 {
		return [3]tile.Id{}, false
	}
	return [3]tile.Id{ids[0], ids[1], ids[2]}, true
}

// ConcealedKongs 可暗杠的牌面（含摸到的牌）
func (d *Deck) ConcealedKongs() []tile.Face {
	c := d.Counts()
	var out []tile.Face
	for f := tile.Face(0); f < tile.FaceCount; f++ {
		if c[f] == tile.CopyCount {
			out = append(out, f)
		}
	}
	return out
}

// AddedKongs 可加杠的牌：门内持有、且已有同牌面的碰
func (d *Deck) AddedKongs() []tile.Id {
	held := d.Tiles()
	var out []tile.Id
	for _, m := range d.melds {
		if m.Kind != Triplet {
			continue
		}
		if i, ok := held.Copies(m.Face()).First(); ok {
			out = append(out, tile.New(m.Face(), i))
		}
	}
	return out
}
