package roll

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/fate/internal/game/dice"
)

type termResult struct {
	value    int
	text     string
	critical bool
}

// roll draws Count dice. A face equal to the sides of a d10 is critical; a
// face equal to the sides of a d5 is critical on a coin flip.
func (d *DiceTerm) roll(src dice.Source, _ Profile) termResult {
	total := 0
	faces := make([]string, 0, d.Count)
	critical := false
	for range d.Count {
		var face int
		if d.Tearing {
			face = dice.Tearing(src, d.Sides)
		} else {
			face = dice.Die(src, d.Sides)
		}
		total += face

		if isCritical(src, face, d.Sides) {
			critical = true
			faces = append(faces, strconv.Itoa(face)+"!")
		} else {
			faces = append(faces, strconv.Itoa(face))
		}
	}
	return termResult{
		value:    total * d.Sign(),
		text:     "[" + strings.Join(faces, ", ") + "] (" + d.Notation() + ")",
		critical: critical,
	}
}

func isCritical(src dice.Source, face, sides int) bool {
	if face != sides {
		return false
	}
	switch sides {
	case 10:
		return true
	case 5:
		return dice.Coin(src)
	default:
		return false
	}
}

// roll adds a tenth of the characteristic, rounded down. The text is
// unsigned; the joining operator carries the sign.
func (b *BonusTerm) roll(_ dice.Source, p Profile) termResult {
	bonus := floorDiv(valueOr(p, b.Stat, DefaultStat), 10)
	return termResult{
		value: bonus * b.Sign(),
		text:  fmt.Sprintf("%d (%sB)", bonus, b.Stat.Code()),
	}
}

// Roll implements Invocable.
func (e *DiceEquation) Roll(src dice.Source, p Profile) (Result, bool) {
	if e.complex && p == nil {
		return Result{}, false
	}

	total := e.Flat
	critical := false
	var b strings.Builder
	for _, term := range e.Terms {
		tr := term.roll(src, p)
		total += tr.value
		critical = critical || tr.critical

		switch {
		case b.Len() > 0 && term.Sign() > 0:
			b.WriteString(" + ")
		case b.Len() > 0:
			b.WriteString(" - ")
		case term.Sign() < 0:
			b.WriteString("-")
		}
		b.WriteString(tr.text)
	}
	if e.Flat > 0 {
		fmt.Fprintf(&b, " + %d", e.Flat)
	} else if e.Flat < 0 {
		fmt.Fprintf(&b, " - %d", -e.Flat)
	}

	res := Result{
		Description: fmt.Sprintf("Rolls: `%s` | Total: `%d`", b.String(), total),
		Color:       ColorNeutral,
		Total:       total,
		Critical:    critical,
	}
	if critical {
		res.Color = ColorCritical
		res.Footer = "Critical Damage"
	}
	if p != nil {
		res.Profile = p.DisplayName()
	}
	return res, true
}
