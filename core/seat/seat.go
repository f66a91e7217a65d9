package seat

import "fmt"

// Seat 座位，以自风表示，东家起逆时针（出牌顺序）排列
type Seat int

const (
	East Seat = iota
	South
	West
	North
)

// NoSeat 无座位，用于"无人"的场合
const NoSeat Seat = -1

const Count = 4

func (s Seat) Valid() bool { return s >= East && s <= North }

func (s Seat) Next() Seat { return (s + 1) % Count }

func (s Seat) Prev() Seat { return (s + Count - 1) % Count }

// Distance 从 from 出发按出牌顺序走到 s 需要的步数，0..3
func (s Seat) Distance(from Seat) int {
	return int((s - from + Count) % Count)
}

// Others 按出牌顺序返回除 s 以外的三家
func (s Seat) Others() [3]Seat {
	return [3]Seat{s.Next(), s.Next().Next(), s.Prev()}
}

// All 从 start 开始的出牌顺序
func All(start Seat) [Count]Seat {
	var out [Count]Seat
	for i := range out {
		out[i] = (start + Seat(i)) % Count
	}
	return out
}

func (s Seat) String() string {
	switch s {
	case East:
		return "East"
	case South:
		return "South"
	case West:
		return "West"
	case North:
		return "North"
	case NoSeat:
		return "None"
	}
	return fmt.Sprintf("Seat(%d)", int(s))
}
