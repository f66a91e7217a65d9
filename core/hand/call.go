package hand

import (
	"slices"

	"github.com/4t145/rahjong/core/reason"
	"github.com/4t145/rahjong/core/seat"
	"github.com/4t145/rahjong/core/tile"
)

// 以下鸣牌操作要么全部生效，要么不改变手牌

// Pon 用门内两张牌碰
func (d *Deck) Pon(support [2]tile.Id, c Claim) error {
	if err := d.ValidatePon(support, c); err != nil {
		return err
	}
	d.takeConcealed(support[:]...)
	d.melds = append(d.melds, newMeld(Triplet, c.Tile, c.From, support[0], support[1], c.Tile))
	return nil
}

func (d *Deck) ValidatePon(support [2]tile.Id, c Claim) error {
	f := c.Tile.Face()
	for _, s := range support {
		if s.Face() != f {
			return reason.StatusConflict(reason.CodePonWithDifferentFaces, "碰 %s 不能使用 %s", c.Tile, s)
		}
	}
	return d.requireConcealed(support[:]...)
}

// Chi 用门内两张牌吃上家的牌
func (d *Deck) Chi(support [2]tile.Id, c Claim) error {
	if err := d.ValidateChi(support, c); err != nil {
		return err
	}
	d.takeConcealed(support[:]...)
	d.melds = append(d.melds, newMeld(Run, c.Tile, c.From, support[0], support[1], c.Tile))
	return nil
}

func (d *Deck) ValidateChi(support [2]tile.Id, c Claim) error {
	faces := []tile.Face{c.Tile.Face(), support[0].Face(), support[1].Face()}
	slices.Sort(faces)
	run := faces[0].IsNumber() && faces[0].Rank() <= 7 &&
		faces[1] == faces[0]+1 && faces[2] == faces[0]+2
	if !run {
		return reason.StatusConflict(reason.CodeChiNotARun, "%s %s %s 不构成顺子", c.Tile, support[0], support[1])
	}
	return d.requireConcealed(support[:]...)
}

// ExposedKong 大明杠
func (d *Deck) ExposedKong(support [3]tile.Id, c Claim) error {
	if err := d.ValidateExposedKong(support, c); err != nil {
		return err
	}
	d.takeConcealed(support[:]...)
	d.melds = append(d.melds, newMeld(ExposedQuad, c.Tile, c.From, support[0], support[1], support[2], c.Tile))
	return nil
}

func (d *Deck) ValidateExposedKong(support [3]tile.Id, c Claim) error {
	if err := sameFace(c.Tile.Face(), support[:]...); err != nil {
		return err
	}
	return d.requireConcealed(support[:]...)
}

// ConcealedKong 暗杠，可以包含摸到的牌；摸到的牌若不参与则并入手牌
func (d *Deck) ConcealedKong(tiles [4]tile.Id) error {
	if err := d.ValidateConcealedKong(tiles); err != nil {
		return err
	}
	d.settleDrawn()
	d.takeConcealed(tiles[:]...)
	d.melds = append(d.melds, newMeld(ConcealedQuad, tiles[0], seat.NoSeat, tiles[:]...))
	return nil
}

func (d *Deck) ValidateConcealedKong(tiles [4]tile.Id) error {
	if err := sameFace(tiles[0].Face(), tiles[1:]...); err != nil {
		return err
	}
	return d.requireHeld(tiles[:]...)
}

// AddedKong 加杠：把第四张加到已有的碰上
func (d *Deck) AddedKong(t tile.Id) error {
	i, err := d.ValidateAddedKong(t)
	if err != nil {
		return err
	}
	d.settleDrawn()
	d.concealed.Remove(t)
	m := &d.melds[i]
	m.Kind = AddedQuad
	m.Tiles = append(m.Tiles, t)
	slices.Sort(m.Tiles)
	return nil
}

// ValidateAddedKong 返回要升级的碰在副露中的下标
func (d *Deck) ValidateAddedKong(t tile.Id) (int, error) {
	if !d.Contains(t) {
		return -1, errTileNotInHand(t)
	}
	for i, m := range d.melds {
		if m.Kind == Triplet && m.Face() == t.Face() {
			return i, nil
		}
	}
	return -1, reason.StatusConflict(reason.CodeNoMatchingPon, "没有可以加杠 %s 的碰", t)
}

func (d *Deck) takeConcealed(ids ...tile.Id) {
	for _, id := range ids {
		d.concealed.Remove(id)
	}
}

func sameFace(f tile.Face, ids ...tile.Id) error {
	for _, id := range ids {
		if id.Face() != f {
			return reason.StatusConflict(reason.CodeKongWithDifferentFaces, "杠 %s 不能使用 %s", f, id)
		}
	}
	return nil
}
