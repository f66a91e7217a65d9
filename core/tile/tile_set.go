package tile

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"
)

// 每个 uint64 容纳 16 个牌面，每个牌面占 4 位（一位对应一个副本）
const (
	facesPerWord = 16
	setWords     = (FaceCount + facesPerWord - 1) / facesPerWord
)

// nibbleCount 4 位掩码的 popcount 表
var nibbleCount = [16]uint8{0, 1, 1, 2, 1, 2, 2, 3, 1, 2, 2, 3, 2, 3, 3, 4}

// Set 136 张牌的定长位集合，值语义，复制即克隆
type Set struct {
	words [setWords]uint64
	size  uint8
}

func SetOf(ids ...Id) Set {
	var s Set
	for _, id := range ids {
		s.Insert(id)
	}
	return s
}

func locate(id Id) (word int, mask uint64) {
	return int(id >> 6), 1 << (id & 63)
}

// Insert 插入，已存在或 id 非法时不变
func (s *Set) Insert(id Id) {
	if !id.Valid() {
		return
	}
	w, m := locate(id)
	if s.words[w]&m == 0 {
		s.words[w] |= m
		s.size++
	}
}

// Remove 删除，不存在时为空操作
func (s *Set) Remove(id Id) {
	if !id.Valid() {
		return
	}
	w, m := locate(id)
	if s.words[w]&m != 0 {
		s.words[w] &^= m
		s.size--
	}
}

func (s *Set) Contains(id Id) bool {
	if !id.Valid() {
		return false
	}
	w, m := locate(id)
	return s.words[w]&m != 0
}

// Copies 该牌面当前在集合中的副本
func (s *Set) Copies(f Face) IndexSet {
	w := int(f) / facesPerWord
	shift := uint(int(f)%facesPerWord) * 4
	return IndexSet((s.words[w] >> shift) & 0xf)
}

func (s *Set) CountFace(f Face) int {
	return int(nibbleCount[s.Copies(f)])
}

func (s *Set) HasFace(f Face) bool { return !s.Copies(f).IsEmpty() }

// RemoveOneOfFace 移除该牌面序号最小的一张
func (s *Set) RemoveOneOfFace(f Face) (Id, bool) {
	i, ok := s.Copies(f).First()
	if !ok {
		return 0, false
	}
	id := New(f, i)
	s.Remove(id)
	return id, true
}

func (s *Set) Len() int      { return int(s.size) }
func (s *Set) IsEmpty() bool { return s.size == 0 }
func (s *Set) Clear()        { *s = Set{} }

// All 按 Id 升序惰性遍历，可重复调用
func (s *Set) All() iter.Seq[Id] {
	words := s.words
	return func(yield func(Id) bool) {
		for f := Face(0); f < FaceCount; f++ {
			w := int(f) / facesPerWord
			nib := (words[w] >> (uint(int(f)%facesPerWord) * 4)) & 0xf
			if nib == 0 {
				continue
			}
			for i := Index(0); i < CopyCount; i++ {
				if nib&(1<<i) != 0 && !yield(New(f, i)) {
					return
				}
			}
		}
	}
}

func (s *Set) Slice() []Id {
	out := make([]Id, 0, s.size)
	for id := range s.All() {
		out = append(out, id)
	}
	return out
}

// Faces 每个牌面的张数
func (s *Set) Faces() [FaceCount]uint8 {
	var c [FaceCount]uint8
	for f := Face(0); f < FaceCount; f++ {
		c[f] = nibbleCount[s.Copies(f)]
	}
	return c
}

func (s Set) String() string {
	parts := make([]string, 0, s.size)
	for id := range s.All() {
		parts = append(parts, id.String())
	}
	return fmt.Sprintf("[%s]", strings.Join(parts, " "))
}

func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *Set) UnmarshalJSON(data []byte) error {
	var ids []Id
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	s.Clear()
	for _, id := range ids {
		if !id.Valid() {
			return fmt.Errorf("非法牌 id: %d", id)
		}
		s.Insert(id)
	}
	return nil
}
