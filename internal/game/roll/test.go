package roll

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/fate/internal/game/dice"
	"github.com/cory-johannsen/fate/internal/game/key"
	"github.com/cory-johannsen/fate/internal/game/location"
)

// Defaults used when a profile has no entry for a key.
const (
	DefaultStat  = 30
	DefaultSkill = -20
)

const (
	minModifier = -60
	maxModifier = 60
)

// Degrees returns the signed degrees of success (> 0) or failure (<= 0) of a
// percentile roll against target.
//
// A roll of 1 always succeeds and a roll of 100 always fails.
func Degrees(target, roll int) int {
	difference := target - roll
	if difference >= 0 {
		degrees := ceilDiv(difference+1, 10)
		switch roll {
		case 1:
			degrees++
		case 100:
			degrees = -1
		}
		return degrees
	}
	degrees := floorDiv(difference-1, 10)
	switch roll {
	case 100:
		degrees--
	case 1:
		degrees = 1
	}
	return degrees
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	return -floorDiv(-a, b)
}

// Target returns the number the percentile roll is made against. p may be
// nil for a test with no characteristic or skill.
func (t *SkillTest) Target(p Profile) int {
	base := 0
	modifier := t.Modifier

	if t.Skill != key.None {
		modifier += valueOr(p, t.Skill, DefaultSkill)
	}
	if t.Stat != key.None {
		base += valueOr(p, t.Stat, DefaultStat)
		modifier = min(max(modifier, minModifier), maxModifier)
	}
	return base + modifier
}

func valueOr(p Profile, k key.Key, fallback int) int {
	if p == nil {
		return fallback
	}
	if v, ok := p.Get(k); ok {
		return v
	}
	return fallback
}

// Hint returns the short description of the test shown as a footer.
func (t *SkillTest) Hint() string {
	var hint string
	switch {
	case t.Stat == key.None:
	case t.Skill == key.None:
		hint = t.Stat.String()
	default:
		hint = t.Skill.String() + " on " + t.Stat.String()
	}

	if t.Attack == NoAttack {
		return hint
	}
	attack := t.Attack.Description(t.Stat)
	plainWeapon := t.Skill == key.None && (t.Stat == key.WeaponSkill || t.Stat == key.BallisticSkill)
	if hint == "" || plainWeapon {
		return attack
	}
	return attack + " (" + hint + ")"
}

// Roll implements Invocable.
func (t *SkillTest) Roll(src dice.Source, p Profile) (Result, bool) {
	if t.IsComplex() && p == nil {
		return Result{}, false
	}

	target := t.Target(p)
	tests := make([]TestOutcome, t.Repeats)
	for i := range tests {
		r := dice.Percentile(src)
		tests[i] = TestOutcome{Roll: r, Degrees: Degrees(target, r)}
		switch hits := t.Attack.Hits(tests[i].Degrees); {
		case hits == 0:
		case t.Attack == Single:
			tests[i].Hits = []string{location.Initial(r).String()}
		default:
			tests[i].Hits = location.Sequence(r, hits, location.RandomSides(src))
		}
	}

	res := Result{
		Description: t.describe(target, tests),
		Footer:      t.Hint(),
		Color:       testColor(tests),
		Target:      target,
		Tests:       tests,
	}
	if p != nil {
		res.Profile = p.DisplayName()
	}
	return res, true
}

func testColor(tests []TestOutcome) Color {
	switch {
	case len(tests) > 1:
		return ColorInfo
	case tests[0].Degrees > 0:
		return ColorSuccess
	default:
		return ColorDanger
	}
}

func (t *SkillTest) describe(target int, tests []TestOutcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target: `%d`", target)
	if len(tests) > 1 {
		b.WriteString("\n――――――\n")
	} else {
		b.WriteString(" | ")
	}

	highest := 0
	for _, o := range tests {
		highest = max(highest, o.Roll)
	}
	pad := 1
	switch {
	case highest == 100:
		pad = 3
	case highest >= 10:
		pad = 2
	}

	for i, o := range tests {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t.describeOne(o, pad))
	}
	return b.String()
}

func (t *SkillTest) describeOne(o TestOutcome, pad int) string {
	signChar := "-"
	if o.Degrees > 0 {
		signChar = "+"
	}
	text := fmt.Sprintf("Roll: `%*d` | Degrees: `%s%d`", pad, o.Roll, signChar, abs(o.Degrees))
	if t.Attack == NoAttack {
		return text
	}
	return text + " | " + t.describeHits(o)
}

func (t *SkillTest) describeHits(o TestOutcome) string {
	if o.Degrees <= 0 {
		return "Missed"
	}
	if t.Attack == Single {
		return fmt.Sprintf("Hit: `%s`", o.Hits[0])
	}
	places := make([]string, len(o.Hits))
	for i, h := range o.Hits {
		places[i] = "`" + h + "`"
	}
	return fmt.Sprintf("Hits: `%d` = %s", len(o.Hits), strings.Join(places, ", "))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
