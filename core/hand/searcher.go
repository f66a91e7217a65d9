package hand

import (
	"sync/atomic"

	"github.com/4t145/rahjong/common/cache"
	"github.com/4t145/rahjong/common/log"
	"github.com/4t145/rahjong/core/tile"
)

// Counts 34 种牌面的张数
type Counts [tile.FaceCount]uint8

func CountsOf(ids ...tile.Id) Counts {
	var c Counts
	for _, id := range ids {
		c[id.Face()]++
	}
	return c
}

func countsOfSet(s *tile.Set) Counts {
	return Counts(s.Faces())
}

func (c Counts) Total() int {
	n := 0
	for _, v := range c {
		n += int(v)
	}
	return n
}

func (c Counts) key(kind byte, fixedMelds int) string {
	var b [tile.FaceCount + 2]byte
	b[0] = kind
	for i := 0; i < tile.FaceCount; i++ {
		b[i+1] = c[i]
	}
	b[tile.FaceCount+1] = byte(fixedMelds)
	return string(b[:])
}

const (
	keyAgari byte = 'a'
	keyWaits byte = 'w'
)

// Searcher 和牌、听牌搜索，结果缓存在 ristretto 中；cache 为空时直接计算
type Searcher struct {
	cache *cache.GeneralCache
}

// NewSearcher numCounters/maxCost 见 cache.NewGeneralCache
func NewSearcher(numCounters, maxCost int64) (*Searcher, error) {
	c, err := cache.NewGeneralCache(numCounters, maxCost, 0)
	if err != nil {
		return nil, err
	}
	return &Searcher{cache: c}, nil
}

var defaultSearcher atomic.Pointer[Searcher]

func init() {
	s, err := NewSearcher(1e5, 1<<14)
	if err != nil {
		log.Warn("创建默认牌型搜索缓存失败，退化为无缓存: %v", err)
		s = &Searcher{}
	}
	defaultSearcher.Store(s)
}

// Default 牌型查询使用的搜索器
func Default() *Searcher { return defaultSearcher.Load() }

// SetDefault 替换默认搜索器，返回旧的以便调用方关闭
func SetDefault(s *Searcher) *Searcher {
	return defaultSearcher.Swap(s)
}

// Close 释放缓存
func (s *Searcher) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// IsAgari 是否和牌；有副露时只看一般型
func (s *Searcher) IsAgari(c Counts, fixedMelds int) bool {
	if s.cache == nil {
		return isAgari(c, fixedMelds)
	}
	key := c.key(keyAgari, fixedMelds)
	if v, ok := s.cache.GetBool(key); ok {
		return v
	}
	ok := isAgari(c, fixedMelds)
	s.cache.Set(key, ok)
	return ok
}

// Waits 13 张形状（含副露折算）听哪些牌面，未听牌返回空
func (s *Searcher) Waits(c Counts, fixedMelds int) []tile.Face {
	var key string
	if s.cache != nil {
		key = c.key(keyWaits, fixedMelds)
		if v, ok := s.cache.Get(key); ok {
			if waits, ok := v.([]tile.Face); ok {
				return append([]tile.Face(nil), waits...)
			}
		}
	}

	var waits []tile.Face
	for f := 0; f < tile.FaceCount; f++ {
		if c[f] >= tile.CopyCount {
			continue
		}
		work := c
		work[f]++
		if s.IsAgari(work, fixedMelds) {
			waits = append(waits, tile.Face(f))
		}
	}

	if s.cache != nil {
		s.cache.Set(key, append([]tile.Face(nil), waits...))
	}
	return waits
}

func isAgari(c Counts, fixedMelds int) bool {
	if c.Total() != 14-3*fixedMelds {
		return false
	}
	if fixedMelds > 0 {
		return IsAgariNormal(c, fixedMelds)
	}
	return IsAgariNormal(c, 0) || IsAgariChiitoi(c) || IsAgariKokushi(c)
}

// IsAgariNormal 一般型：枚举雀头，剩下的递归拆面子
func IsAgariNormal(c Counts, fixedMelds int) bool {
	need := 4 - fixedMelds
	if need < 0 {
		return false
	}
	for j := 0; j < tile.FaceCount; j++ {
		if c[j] < 2 {
			continue
		}
		work := c
		work[j] -= 2
		if canFormMelds(&work, need) {
			return true
		}
	}
	return false
}

// IsAgariChiitoi 七对子：7 种不同牌面各 2 张，四张同牌不算两对
func IsAgariChiitoi(c Counts) bool {
	pairs := 0
	for _, v := range c {
		switch v {
		case 0:
		case 2:
			pairs++
		default:
			return false
		}
	}
	return pairs == 7
}

// IsAgariKokushi 国士无双：13 种幺九各至少一张且其中一种成对
func IsAgariKokushi(c Counts) bool {
	if c.Total() != 14 {
		return false
	}
	pair := false
	for _, f := range tile.TerminalsAndHonors {
		switch c[f] {
		case 0:
			return false
		case 1:
		case 2:
			if pair {
				return false
			}
			pair = true
		default:
			return false
		}
	}
	return pair
}

func canFormMelds(c *Counts, need int) bool {
	// 找第一个非 0
	i := -1
	for k := 0; k < tile.FaceCount; k++ {
		if c[k] > 0 {
			i = k
			break
		}
	}
	if need == 0 {
		return i == -1
	}
	if i == -1 {
		return false
	}

	// 刻子
	if c[i] >= 3 {
		c[i] -= 3
		ok := canFormMelds(c, need-1)
		c[i] += 3
		if ok {
			return true
		}
	}
	// 顺子（仅数牌，同花色）
	f := tile.Face(i)
	if f.IsNumber() && f.Rank() <= 7 && c[i+1] > 0 && c[i+2] > 0 {
		c[i]--
		c[i+1]--
		c[i+2]--
		ok := canFormMelds(c, need-1)
		c[i]++
		c[i+1]++
		c[i+2]++
		if ok {
			return true
		}
	}
	return false
}
