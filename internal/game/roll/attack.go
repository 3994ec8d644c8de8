package roll

import "github.com/cory-johannsen/fate/internal/game/key"

// Attack is the firing or swing mode of an attack test. The zero value
// NoAttack marks a plain test.
type Attack int

const (
	NoAttack Attack = iota
	Single
	Semi
	Full
)

var attackText = [...]struct{ ranged, melee, generic string }{
	Single: {"Single Shot", "Single Attack", "Single Attack"},
	Semi:   {"Semi-Auto Burst", "Swift Attack", "Semi-Auto/Swift Attack"},
	Full:   {"Full-Auto Burst", "Lightning Attack", "Full-Auto/Lightning Attack"},
}

// DecodeAttack maps "!", "!!" and "!!!" to Single, Semi and Full.
func DecodeAttack(token string) (Attack, bool) {
	switch token {
	case "!":
		return Single, true
	case "!!":
		return Semi, true
	case "!!!":
		return Full, true
	default:
		return NoAttack, false
	}
}

// Description names the attack for the characteristic in play: ranged
// wording for Ballistic Skill, melee wording for Weapon Skill.
func (a Attack) Description(stat key.Key) string {
	if a <= NoAttack || int(a) >= len(attackText) {
		return ""
	}
	switch stat {
	case key.BallisticSkill:
		return attackText[a].ranged
	case key.WeaponSkill:
		return attackText[a].melee
	default:
		return attackText[a].generic
	}
}

// String returns the generic description.
func (a Attack) String() string {
	if a == NoAttack {
		return "None"
	}
	return a.Description(key.None)
}

// Hits returns how many locations a successful attack with the given
// degrees strikes. It returns 0 when degrees <= 0.
func (a Attack) Hits(degrees int) int {
	if degrees <= 0 {
		return 0
	}
	switch a {
	case Semi:
		return (degrees + 1) / 2
	case Full:
		return degrees
	case Single:
		return 1
	default:
		return 0
	}
}
