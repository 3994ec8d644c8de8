package parser_test

import (
	"fmt"
	"testing"
	"unicode"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fate/internal/game/key"
	"github.com/cory-johannsen/fate/internal/game/parser"
	"github.com/cory-johannsen/fate/internal/game/roll"
)

var ignoreDerived = cmpopts.IgnoreUnexported(roll.DiceEquation{})

func newParser(t *testing.T) *parser.Parser {
	return parser.New(zaptest.NewLogger(t))
}

func TestParse_Macro(t *testing.T) {
	p := newParser(t)
	for raw, want := range map[string]string{"=gun": "gun", "=MED009": "MED009"} {
		got := p.Parse(raw)
		if diff := cmp.Diff(&roll.MacroReference{Name: want}, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", raw, diff)
		}
	}
	assert.Nil(t, p.Parse("=gun +5"), "a macro must be the whole command")
}

func TestParse_SkillTests(t *testing.T) {
	tests := []struct {
		raw  string
		want *roll.SkillTest
	}{
		{"athletics on agility +20", &roll.SkillTest{
			Modifier: 20, Stat: key.Agility, Skill: key.Athletics, Repeats: 1,
		}},
		{"AFeltics on Ag", &roll.SkillTest{
			Stat: key.Agility, Skill: key.Athletics, Repeats: 1,
		}},
		{" 10  +20-5+3 +17", &roll.SkillTest{
			Modifier: 45, Repeats: 1,
		}},
		{"  #Other \t\n +30 -50", &roll.SkillTest{
			Modifier: -20, Repeats: 1, ProfileName: "Other",
		}},
		{" agility !! * 11 ", &roll.SkillTest{
			Stat: key.Agility, Attack: roll.Semi, Repeats: 11,
		}},
		{" #bob parry on weapon skill + 20 !!! ", &roll.SkillTest{
			Modifier: 20, Stat: key.WeaponSkill, Skill: key.Parry, Attack: roll.Full, Repeats: 1, ProfileName: "bob",
		}},
		{"STEALTH -10 !", &roll.SkillTest{
			Modifier: -10, Stat: key.Agility, Skill: key.Stealth, Attack: roll.Single, Repeats: 1,
		}},
		{"bs*3", &roll.SkillTest{
			Stat: key.BallisticSkill, Repeats: 3,
		}},
		{"010", &roll.SkillTest{
			Modifier: 10, Repeats: 1,
		}},
	}
	p := newParser(t)
	for _, tt := range tests {
		got := p.Parse(tt.raw)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.raw, diff)
		}
	}
}

func TestParse_DiceEquations(t *testing.T) {
	tests := []struct {
		raw  string
		want *roll.DiceEquation
	}{
		{"2d10 + 3", &roll.DiceEquation{
			Flat:  3,
			Terms: []roll.Term{&roll.DiceTerm{Count: 2, Sides: 10}},
		}},
		{"d5T - 2D10 + SB - 4", &roll.DiceEquation{
			Flat: -4,
			Terms: []roll.Term{
				&roll.DiceTerm{Count: 1, Sides: 5, Tearing: true},
				&roll.DiceTerm{Count: 2, Sides: 10, Negative: true},
				&roll.BonusTerm{Stat: key.Strength},
			},
		}},
		{"#bob 3d10 + wpB", &roll.DiceEquation{
			Terms: []roll.Term{
				&roll.DiceTerm{Count: 3, Sides: 10},
				&roll.BonusTerm{Stat: key.Willpower},
			},
			ProfileName: "bob",
		}},
		{"2d10 + sb", &roll.DiceEquation{
			Terms: []roll.Term{
				&roll.DiceTerm{Count: 2, Sides: 10},
				&roll.BonusTerm{Stat: key.Strength},
			},
		}},
		{"1d10 - agb", &roll.DiceEquation{
			Terms: []roll.Term{
				&roll.DiceTerm{Count: 1, Sides: 10},
				&roll.BonusTerm{Stat: key.Agility, Negative: true},
			},
		}},
		{"#bob 2d10 + Wpb", &roll.DiceEquation{
			Terms: []roll.Term{
				&roll.DiceTerm{Count: 2, Sides: 10},
				&roll.BonusTerm{Stat: key.Willpower},
			},
			ProfileName: "bob",
		}},
		{"-1d6", &roll.DiceEquation{
			Terms: []roll.Term{&roll.DiceTerm{Count: 1, Sides: 6, Negative: true}},
		}},
		{"0d6", &roll.DiceEquation{
			Terms: []roll.Term{&roll.DiceTerm{Count: 0, Sides: 6}},
		}},
	}
	p := newParser(t)
	for _, tt := range tests {
		got := p.Parse(tt.raw)
		if diff := cmp.Diff(tt.want, got, ignoreDerived); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.raw, diff)
		}
	}

	eq, ok := p.Parse("#bob 3d10 + wpB").(*roll.DiceEquation)
	require.True(t, ok)
	assert.True(t, eq.IsComplex())
	assert.Equal(t, 3, eq.DiceCount())
}

func TestParse_NoRequest(t *testing.T) {
	p := newParser(t)
	for _, raw := range []string{
		"",
		"   ",
		"AAAA123ZZZ",
		"strength on strength",
		"wp on stealth",
		"agility !!!!",
		"2d10 * 3",
		"1d10 5",
		"2d10 + ParryB",
		"2d10 + XYB",
		"ws ★",
	} {
		assert.Nil(t, p.Parse(raw), "Parse(%q)", raw)
	}
}

func TestExplain_Reasons(t *testing.T) {
	p := newParser(t)

	_, err := p.Explain("agility * 31")
	require.Error(t, err)
	assert.ErrorIs(t, err, parser.ErrSemanticReject)
	assert.ErrorIs(t, err, roll.ErrTooManyRepeats)

	_, err = p.Explain("agility * 0")
	assert.ErrorIs(t, err, parser.ErrSemanticReject)

	_, err = p.Explain("100d6 + 101d6")
	assert.ErrorIs(t, err, parser.ErrSemanticReject)
	assert.ErrorIs(t, err, roll.ErrTooManyDice)

	_, err = p.Explain("2d0")
	assert.ErrorIs(t, err, roll.ErrInvalidDice)

	_, err = p.Explain("2d10 + ParryB")
	assert.ErrorIs(t, err, roll.ErrInvalidBonus)

	_, err = p.Explain("!!")
	assert.ErrorIs(t, err, parser.ErrGrammarMismatch)
	assert.NotErrorIs(t, err, parser.ErrSemanticReject)

	req, err := p.Explain("agility * 30")
	require.NoError(t, err)
	assert.Equal(t, 30, req.(*roll.SkillTest).Repeats)
}

// Property: repeat counts are accepted exactly within [1, MaxRepeats].
func TestPropertyRepeatCap(t *testing.T) {
	p := parser.New(zaptest.NewLogger(t))
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(0, 500).Draw(rt, "repeats")
		req := p.Parse(fmt.Sprintf("ws * %d", n))
		valid := n >= 1 && n <= roll.MaxRepeats
		if valid != (req != nil) {
			rt.Fatalf("repeats %d: got %v", n, req)
		}
	})
}

// Property: dice counts are accepted exactly up to MaxDice.
func TestPropertyDiceCap(t *testing.T) {
	p := parser.New(zaptest.NewLogger(t))
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(0, 300).Draw(rt, "a")
		b := rapid.IntRange(0, 300).Draw(rt, "b")
		req := p.Parse(fmt.Sprintf("%dd6 - %dd10", a, b))
		valid := a+b <= roll.MaxDice
		if valid != (req != nil) {
			rt.Fatalf("%d + %d dice: got %v", a, b, req)
		}
	})
}

// Property: letter case never changes how a dice equation parses.
func TestPropertyDiceEquationIgnoresCase(t *testing.T) {
	p := newParser(t)
	codes := []string{"WS", "BS", "S", "T", "AG", "INT", "PER", "WP", "FEL", "IFL"}
	rapid.Check(t, func(rt *rapid.T) {
		raw := fmt.Sprintf("%dd%d", rapid.IntRange(1, 9).Draw(rt, "count"), rapid.IntRange(2, 20).Draw(rt, "sides"))
		if rapid.Bool().Draw(rt, "tearing") {
			raw += "T"
		}
		n := rapid.IntRange(0, 3).Draw(rt, "bonuses")
		for i := 0; i < n; i++ {
			raw += " " + rapid.SampledFrom([]string{"+", "-"}).Draw(rt, "sign") + " " +
				rapid.SampledFrom(codes).Draw(rt, "code") + "B"
		}
		raw += fmt.Sprintf(" + %d", rapid.IntRange(0, 50).Draw(rt, "flat"))

		flips := rapid.SliceOfN(rapid.Bool(), len(raw), len(raw)).Draw(rt, "flips")
		mixed := []rune(raw)
		for i, r := range mixed {
			if flips[i] {
				mixed[i] = unicode.ToLower(r)
			}
		}

		want := p.Parse(raw)
		if want == nil {
			rt.Fatalf("Parse(%q) = nil", raw)
		}
		got := p.Parse(string(mixed))
		if diff := cmp.Diff(want, got, ignoreDerived); diff != "" {
			rt.Fatalf("Parse(%q) differs from Parse(%q):\n%s", string(mixed), raw, diff)
		}
	})
}

// Property: parsing never panics.
func TestPropertyParseTotal(t *testing.T) {
	p := parser.New(zaptest.NewLogger(t))
	rapid.Check(t, func(rt *rapid.T) {
		raw := rapid.String().Draw(rt, "raw")
		_ = p.Parse(raw)
	})
}
