package tile

import (
	"fmt"
	"strconv"
)

// Face 牌面，34 种，按 万 筒 索 风 三元 排序
type Face uint8

const (
	Man1 Face = iota
	Man2
	Man3
	Man4
	Man5
	Man6
	Man7
	Man8
	Man9
	Pin1
	Pin2
	Pin3
	Pin4
	Pin5
	Pin6
	Pin7
	Pin8
	Pin9
	So1
	So2
	So3
	So4
	So5
	So6
	So7
	So8
	So9
	East
	South
	West
	North
	White
	Green
	Red
)

const (
	FaceCount  = 34
	CopyCount  = 4
	TotalTiles = FaceCount * CopyCount // 136
)

// Suit 花色
type Suit uint8

const (
	SuitMan Suit = iota
	SuitPin
	SuitSo
	SuitWind
	SuitDragon
)

func (s Suit) String() string {
	switch s {
	case SuitMan:
		return "m"
	case SuitPin:
		return "p"
	case SuitSo:
		return "s"
	case SuitWind:
		return "wind"
	case SuitDragon:
		return "dragon"
	}
	return "?"
}

var honorNames = [...]string{"E", "S", "W", "N", "Wh", "G", "R"}

// Catalogue 全部牌面，升序
func Catalogue() []Face {
	faces := make([]Face, FaceCount)
	for i := range faces {
		faces[i] = Face(i)
	}
	return faces
}

func (f Face) Valid() bool { return f < FaceCount }

func (f Face) Suit() Suit {
	switch {
	case f <= Man9:
		return SuitMan
	case f <= Pin9:
		return SuitPin
	case f <= So9:
		return SuitSo
	case f <= North:
		return SuitWind
	default:
		return SuitDragon
	}
}

// IsNumber 数牌
func (f Face) IsNumber() bool { return f <= So9 }

// IsHonor 字牌
func (f Face) IsHonor() bool { return f >= East && f < FaceCount }

// Rank 数牌点数 1..9，字牌返回 0
func (f Face) Rank() int {
	if !f.IsNumber() {
		return 0
	}
	return int(f)%9 + 1
}

func (f Face) IsTerminal() bool {
	r := f.Rank()
	return r == 1 || r == 9
}

// IsTerminalOrHonor 幺九牌
func (f Face) IsTerminalOrHonor() bool { return f.IsTerminal() || f.IsHonor() }

// Offset 同花色内偏移 delta 个点数，越界返回 false
func (f Face) Offset(delta int) (Face, bool) {
	if !f.IsNumber() {
		return 0, false
	}
	r := f.Rank() + delta
	if r < 1 || r > 9 {
		return 0, false
	}
	return Face(int(f) + delta), true
}

// DoraOf 宝牌指示牌指向的宝牌
func (f Face) DoraOf() Face {
	switch {
	case f.IsNumber():
		if f.Rank() == 9 {
			return f - 8
		}
		return f + 1
	case f == North:
		return East
	case f >= East && f < North:
		return f + 1
	case f == Red:
		return White
	default:
		return f + 1
	}
}

func (f Face) String() string {
	switch {
	case f.IsNumber():
		return fmt.Sprintf("%d%s", f.Rank(), f.Suit())
	case f.Valid():
		return honorNames[f-East]
	}
	return fmt.Sprintf("Face(%d)", uint8(f))
}

func (f Face) MarshalJSON() ([]byte, error) {
	return strconv.AppendUint(nil, uint64(f), 10), nil
}

func (f *Face) UnmarshalJSON(data []byte) error {
	v, err := strconv.ParseUint(string(data), 10, 8)
	if err != nil {
		return fmt.Errorf("解析牌面失败: %w", err)
	}
	if v >= FaceCount {
		return fmt.Errorf("非法牌面: %d", v)
	}
	*f = Face(v)
	return nil
}

// TerminalsAndHonors 国士无双的 13 种牌面
var TerminalsAndHonors = [13]Face{
	Man1, Man9,
	Pin1, Pin9,
	So1, So9,
	East, South, West, North,
	White, Green, Red,
}
