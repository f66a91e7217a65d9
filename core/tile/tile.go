package tile

import (
	"fmt"
	"math/bits"
	"strconv"
)

// Index 同一牌面 4 张实体牌中的第几张
type Index uint8

// Id 实体牌标识，face<<2 | index，共 136 个
type Id uint8

func New(f Face, i Index) Id {
	return Id(uint8(f)<<2 | uint8(i&3))
}

func (t Id) Face() Face   { return Face(t >> 2) }
func (t Id) Index() Index { return Index(t & 3) }
func (t Id) Valid() bool  { return t < TotalTiles }

func (t Id) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Id(%d)", uint8(t))
	}
	return fmt.Sprintf("%s#%d", t.Face(), t.Index())
}

// MarshalJSON 按数字编码，避免 []Id 被当作 []byte 编码为 base64
func (t Id) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(t), 10), nil
}

func (t *Id) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseUint(string(data), 10, 8)
	if err != nil {
		return fmt.Errorf("解析牌 id 失败: %w", err)
	}
	if v >= TotalTiles {
		return fmt.Errorf("非法牌 id: %d", v)
	}
	*t = Id(v)
	return nil
}

// Universe 全部 136 张牌，升序
func Universe() []Id {
	ids := make([]Id, TotalTiles)
	for i := range ids {
		ids[i] = Id(i)
	}
	return ids
}

// IndexSet 某一牌面在集合中出现的副本，低 4 位有效
type IndexSet uint8

func (s IndexSet) Has(i Index) bool { return s&(1<<i) != 0 }
func (s IndexSet) Count() int       { return bits.OnesCount8(uint8(s & 0xf)) }
func (s IndexSet) IsEmpty() bool    { return s&0xf == 0 }

// First 最小的副本序号
func (s IndexSet) First() (Index, bool) {
	if s.IsEmpty() {
		return 0, false
	}
	return Index(bits.TrailingZeros8(uint8(s))), true
}

func (s IndexSet) Indices() []Index {
	out := make([]Index, 0, 4)
	for i := Index(0); i < CopyCount; i++ {
		if s.Has(i) {
			out = append(out, i)
		}
	}
	return out
}

// Ids 把副本集合还原为实体牌
func (s IndexSet) Ids(f Face) []Id {
	out := make([]Id, 0, 4)
	for _, i := range s.Indices() {
		out = append(out, New(f, i))
	}
	return out
}
