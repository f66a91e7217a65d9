package wall

import "github.com/4t145/rahjong/core/tile"

const (
	innerSlots   = 5
	kanDoraSlots = 4
	rinshanSlots = 4
)

// DoraSet 王牌：5 张里宝牌指示牌、4 张杠宝牌指示牌、4 张岭上牌、1 张表宝牌指示牌
type DoraSet struct {
	inner    [innerSlots]tile.Id
	kanDora  [kanDoraSlots]tile.Id
	rinshan  [rinshanSlots]tile.Id
	initial  tile.Id
	revealed int // 已翻开的杠宝牌
	replaced int // 已摸走的岭上牌
}

func newDoraSet(tiles []tile.Id) *DoraSet {
	d := &DoraSet{}
	copy(d.inner[:], tiles[0:5])
	copy(d.kanDora[:], tiles[5:9])
	copy(d.rinshan[:], tiles[9:13])
	d.initial = tiles[13]
	return d
}

// Indicators 已公开的宝牌指示牌，首张为开局翻开的指示牌
func (d *DoraSet) Indicators() []tile.Id {
	out := make([]tile.Id, 0, 1+d.revealed)
	out = append(out, d.initial)
	return append(out, d.kanDora[:d.revealed]...)
}

// Reveal 翻开下一张杠宝牌指示牌，最多 4 张
func (d *DoraSet) Reveal() bool {
	if d.revealed >= kanDoraSlots {
		return false
	}
	d.revealed++
	return true
}

func (d *DoraSet) Revealed() int { return d.revealed }

// DrawReplacement 摸岭上牌
func (d *DoraSet) DrawReplacement() (tile.Id, bool) {
	if d.replaced >= rinshanSlots {
		return 0, false
	}
	t := d.rinshan[d.replaced]
	d.replaced++
	return t, true
}

func (d *DoraSet) ReplacementsLeft() int { return rinshanSlots - d.replaced }

// InnerIndicators 里宝牌指示牌，张数与已公开指示牌一致，仅用于立直和了结算
func (d *DoraSet) InnerIndicators() []tile.Id {
	return append([]tile.Id(nil), d.inner[:1+d.revealed]...)
}

// Bonus 当前公开的宝牌牌面
func (d *DoraSet) Bonus() []tile.Face {
	ind := d.Indicators()
	out := make([]tile.Face, len(ind))
	for i, t := range ind {
		out[i] = t.Face().DoraOf()
	}
	return out
}

// Remaining 王牌中尚未被摸走的张数
func (d *DoraSet) Remaining() int { return innerSlots + kanDoraSlots + rinshanSlots + 1 - d.replaced }

// Tiles 王牌中仍在的牌
func (d *DoraSet) Tiles() []tile.Id {
	out := make([]tile.Id, 0, d.Remaining())
	out = append(out, d.inner[:]...)
	out = append(out, d.kanDora[:]...)
	out = append(out, d.rinshan[d.replaced:]...)
	return append(out, d.initial)
}
