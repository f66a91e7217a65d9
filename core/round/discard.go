package round

import (
	"iter"

	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
)

// DiscardSet 按时间顺序追加的牌河，只有最后一张可以被鸣
type DiscardSet struct {
	entries []DiscardEntry
}

// Add 追加一条记录，返回下标
func (ds *DiscardSet) Add(d DiscardEntry) int {
	ds.entries = append(ds.entries, d)
	return len(ds.entries) - 1
}

func (ds *DiscardSet) Len() int { return len(ds.entries) }

func (ds *DiscardSet) Iter() iter.Seq2[int, DiscardEntry] {
	return func(yield func(int, DiscardEntry) bool) {
		for i, d := range ds.entries {
			if !yield(i, d) {
				return
			}
		}
	}
}

func (ds *DiscardSet) Last() (DiscardEntry, bool) {
	if len(ds.entries) == 0 {
		return DiscardEntry{}, false
	}
	return ds.entries[len(ds.entries)-1], true
}

func (ds *DiscardSet) Entries() []DiscardEntry {
	return append([]DiscardEntry(nil), ds.entries...)
}

// HasFaceFrom 某家是否打出过该牌面（含被鸣走的），振听判定用
func (ds *DiscardSet) HasFaceFrom(s seat.Seat, f tile.Face) bool {
	for _, d := range ds.entries {
		if d.Source == s && d.Tile.Face() == f {
			return true
		}
	}
	return false
}

// Live 仍留在牌河中的牌
func (ds *DiscardSet) Live() []tile.Id {
	out := make([]tile.Id, 0, len(ds.entries))
	for _, d := range ds.entries {
		if d.ClaimedBy == seat.NoSeat {
			out = append(out, d.Tile)
		}
	}
	return out
}

func (ds *DiscardSet) markClaimed(i int, by seat.Seat) {
	ds.entries[i].ClaimedBy = by
}
