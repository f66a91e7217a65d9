package hand

import (
	"github.com/4t145/rahjong/core/tile"
)

// CanPon 门内有两张同牌面
func (d *Deck) CanPon(c Claim) bool {
	return d.concealed.CountFace(c.Tile.Face()) >= 2
}

// CanKong 门内有三张同牌面，可大明杠
func (d *Deck) CanKong(c Claim) bool {
	return d.concealed.CountFace(c.Tile.Face()) >= 3
}

// CanChi 数牌且三种搭子之一齐全
func (d *Deck) CanChi(c Claim) bool {
	return len(d.ChiOptions(c)) > 0
}

// CanThirteenOrphans 国士形：门内 13 或 14 张，全是幺九，每种至多两张，至多缺一种，至多一对
func (d *Deck) CanThirteenOrphans() bool {
	if len(d.melds) > 0 {
		return false
	}
	c := d.Counts()
	if n := c.Total(); n != 13 && n != 14 {
		return false
	}
	for f := tile.Face(0); f < tile.FaceCount; f++ {
		if c[f] > 0 && !f.IsTerminalOrHonor() {
			return false
		}
	}
	missing, doubled := 0, 0
	for _, f := range tile.TerminalsAndHonors {
		switch c[f] {
		case 0:
			missing++
		case 1:
		case 2:
			doubled++
		default:
			return false
		}
	}
	return missing <= 1 && doubled <= 1
}

// CanSevenPairs 门内 14 张恰为 7 种不同的对子
func (d *Deck) CanSevenPairs() bool {
	if len(d.melds) > 0 {
		return false
	}
	return IsAgariChiitoi(d.Counts())
}

// CanTsumo 门内已是和牌形
func (d *Deck) CanTsumo() bool {
	return Default().IsAgari(d.Counts(), len(d.melds))
}

// CanWinWith 加上这张牌后是否和牌，用于荣和与抢杠
func (d *Deck) CanWinWith(t tile.Id) bool {
	c := d.Counts()
	c[t.Face()]++
	return Default().IsAgari(c, len(d.melds))
}

// Waits 当前 13 张形状听的牌面
func (d *Deck) Waits() []tile.Face {
	return Default().Waits(d.Counts(), len(d.melds))
}

// WaitsAfterDiscard 打出 t 之后听的牌面，立直判定用
func (d *Deck) WaitsAfterDiscard(t tile.Id) []tile.Face {
	if !d.Contains(t) {
		return nil
	}
	c := d.Counts()
	c[t.Face()]--
	return Default().Waits(c, len(d.melds))
}

// TerminalKinds 门内幺九牌的种类数，九种九牌判定用
func (d *Deck) TerminalKinds() int {
	c := d.Counts()
	n := 0
	for _, f := range tile.TerminalsAndHonors {
		if c[f] > 0 {
			n++
		}
	}
	return n
}
