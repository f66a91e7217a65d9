package hand

import (
	"encoding/json"
	"slices"

	"github.com/4t145/rahjong/core/reason"
	"github.com/4t145/rahjong/core/tile"
)

// Deck 一名玩家的牌：门内手牌、副露、至多一张摸到的牌
type Deck struct {
	concealed tile.Set
	melds     []Meld
	drawn     tile.Id
	hasDrawn  bool
}

// NewDeck 以配牌构建手牌
func NewDeck(tiles ...tile.Id) *Deck {
	return &Deck{concealed: tile.SetOf(tiles...)}
}

// Clone 深拷贝，用于对外快照
func (d *Deck) Clone() *Deck {
	c := *d
	c.melds = nil
	if d.melds != nil {
		c.melds = make([]Meld, len(d.melds))
		for i, m := range d.melds {
			c.melds[i] = m.clone()
		}
	}
	return &c
}

func (d *Deck) Concealed() tile.Set { return d.concealed }

func (d *Deck) Drawn() (tile.Id, bool) { return d.drawn, d.hasDrawn }

func (d *Deck) HasDrawn() bool { return d.hasDrawn }

func (d *Deck) Melds() []Meld {
	out := make([]Meld, len(d.melds))
	for i, m := range d.melds {
		out[i] = m.clone()
	}
	return out
}

// Tiles 门内全部牌（含摸到的牌）
func (d *Deck) Tiles() tile.Set {
	s := d.concealed
	if d.hasDrawn {
		s.Insert(d.drawn)
	}
	return s
}

func (d *Deck) Counts() Counts {
	s := d.Tiles()
	return countsOfSet(&s)
}

// Size 门内张数（含摸到的牌）
func (d *Deck) Size() int {
	n := d.concealed.Len()
	if d.hasDrawn {
		n++
	}
	return n
}

func (d *Deck) MeldTileCount() int {
	n := 0
	for _, m := range d.melds {
		n += len(m.Tiles)
	}
	return n
}

func (d *Deck) KongCount() int {
	n := 0
	for _, m := range d.melds {
		if m.IsQuad() {
			n++
		}
	}
	return n
}

// HasOpenMeld 是否有破坏门清的副露
func (d *Deck) HasOpenMeld() bool {
	for _, m := range d.melds {
		if m.IsOpen() {
			return true
		}
	}
	return false
}

func (d *Deck) Contains(t tile.Id) bool {
	return (d.hasDrawn && d.drawn == t) || d.concealed.Contains(t)
}

// Add 配牌时加入门内
func (d *Deck) Add(t tile.Id) {
	d.concealed.Insert(t)
}

// Draw 摸牌，已持有摸到的牌时拒绝
func (d *Deck) Draw(t tile.Id) error {
	if d.hasDrawn {
		return reason.StatusConflict(reason.CodeAlreadyDrawn, "已持有摸到的牌 %s，不能再摸 %s", d.drawn, t)
	}
	d.drawn = t
	d.hasDrawn = true
	return nil
}

// Remove 从门内移除，手里没有时报 TILE_NOT_IN_HAND
func (d *Deck) Remove(t tile.Id) error {
	switch {
	case d.hasDrawn && d.drawn == t:
		d.hasDrawn = false
	case d.concealed.Contains(t):
		d.concealed.Remove(t)
	default:
		return errTileNotInHand(t)
	}
	return nil
}

// Discard 打牌；打出的不是摸到的牌时，摸到的牌归入手牌
func (d *Deck) Discard(t tile.Id) error {
	if d.hasDrawn && d.drawn == t {
		d.hasDrawn = false
		return nil
	}
	if !d.concealed.Contains(t) {
		return errTileNotInHand(t)
	}
	d.concealed.Remove(t)
	d.settleDrawn()
	return nil
}

// settleDrawn 摸到的牌并入门内手牌
func (d *Deck) settleDrawn() {
	if d.hasDrawn {
		d.concealed.Insert(d.drawn)
		d.hasDrawn = false
	}
}

func errTileNotInHand(t tile.Id) error {
	return reason.StatusConflict(reason.CodeTileNotInHand, "手里没有 %s", t)
}

// requireConcealed 校验每张牌都在门内手牌（不含摸到的牌）且互不相同
func (d *Deck) requireConcealed(ids ...tile.Id) error {
	for i, id := range ids {
		if !d.concealed.Contains(id) || slices.Contains(ids[:i], id) {
			return errTileNotInHand(id)
		}
	}
	return nil
}

// requireHeld 同 requireConcealed，但允许摸到的牌
func (d *Deck) requireHeld(ids ...tile.Id) error {
	for i, id := range ids {
		if !d.Contains(id) || slices.Contains(ids[:i], id) {
			return errTileNotInHand(id)
		}
	}
	return nil
}

type deckJSON struct {
	Concealed tile.Set `json:"concealed"`
	Drawn     *tile.Id `json:"drawn"`
	Melds     []Meld   `json:"melds"`
}

func (d *Deck) MarshalJSON() ([]byte, error) {
	v := deckJSON{Concealed: d.concealed, Melds: d.melds}
	if v.Melds == nil {
		v.Melds = []Meld{}
	}
	if d.hasDrawn {
		drawn := d.drawn
		v.Drawn = &drawn
	}
	return json.Marshal(v)
}

func (d *Deck) UnmarshalJSON(data []byte) error {
	var v deckJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	d.concealed = v.Concealed
	d.melds = v.Melds
	d.hasDrawn = v.Drawn != nil
	if d.hasDrawn {
		d.drawn = *v.Drawn
	}
	return nil
}
