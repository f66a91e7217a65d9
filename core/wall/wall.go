package wall

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/4t145/rahjong/core/tile"
)

// DeadWallSize 王牌张数
const DeadWallSize = 14

// Wall 牌山，从头部摸牌，尾部 14 张作为王牌切出
type Wall struct {
	tiles []tile.Id
	head  int
	rng   *rand.Rand
}

// New 按牌面目录生成每种 4 张的牌山，rng 为空时使用时间种子
func New(catalogue []tile.Face, rng *rand.Rand) *Wall {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	tiles := make([]tile.Id, 0, len(catalogue)*tile.CopyCount)
	for _, f := range catalogue {
		for i := tile.Index(0); i < tile.CopyCount; i++ {
			tiles = append(tiles, tile.New(f, i))
		}
	}
	return &Wall{tiles: tiles, rng: rng}
}

// Shuffle 洗牌，固定种子下结果确定
func (w *Wall) Shuffle() {
	rest := w.tiles[w.head:]
	w.rng.Shuffle(len(rest), func(i, j int) {
		rest[i], rest[j] = rest[j], rest[i]
	})
}

// Remaining 可摸的牌数
func (w *Wall) Remaining() int { return len(w.tiles) - w.head }

// DrawNext 摸一张，牌山摸空返回 false（荒牌流局信号）
func (w *Wall) DrawNext() (tile.Id, bool) {
	if w.head >= len(w.tiles) {
		return 0, false
	}
	t := w.tiles[w.head]
	w.head++
	return t, true
}

// DrawInit 按座位轮流发牌，每人 each 张
func (w *Wall) DrawInit(players, each int) [][]tile.Id {
	if w.Remaining() < players*each {
		panic(fmt.Sprintf("wall: 发牌需要 %d 张，仅剩 %d 张", players*each, w.Remaining()))
	}
	hands := make([][]tile.Id, players)
	for i := range hands {
		hands[i] = make([]tile.Id, 0, each)
	}
	for r := 0; r < each; r++ {
		for p := 0; p < players; p++ {
			t, _ := w.DrawNext()
			hands[p] = append(hands[p], t)
		}
	}
	return hands
}

// TakeN 从尾部取出 n 张，保持牌山顺序
func (w *Wall) TakeN(n int) ([]tile.Id, bool) {
	if n < 0 || w.Remaining() < n {
		return nil, false
	}
	cut := len(w.tiles) - n
	out := append([]tile.Id(nil), w.tiles[cut:]...)
	w.tiles = w.tiles[:cut]
	return out, true
}

// TakeNth 取出从尾部数第 n 张（0 为最后一张）
func (w *Wall) TakeNth(n int) (tile.Id, bool) {
	if n < 0 || n >= w.Remaining() {
		return 0, false
	}
	idx := len(w.tiles) - 1 - n
	t := w.tiles[idx]
	w.tiles = append(w.tiles[:idx], w.tiles[idx+1:]...)
	return t, true
}

// TakeDoras 切出王牌。每局只能在发牌后调用一次，不足 14 张说明牌山已损坏
func (w *Wall) TakeDoras() *DoraSet {
	tiles, ok := w.TakeN(DeadWallSize)
	if !ok {
		panic(fmt.Sprintf("wall: 切王牌需要 %d 张，仅剩 %d 张", DeadWallSize, w.Remaining()))
	}
	return newDoraSet(tiles)
}

// Tiles 剩余可摸的牌，按摸牌顺序
func (w *Wall) Tiles() []tile.Id {
	return append([]tile.Id(nil), w.tiles[w.head:]...)
}
