package roll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/fate/internal/game/dice"
	"github.com/cory-johannsen/fate/internal/game/key"
	"github.com/cory-johannsen/fate/internal/game/roll"
)

type sheet struct {
	name   string
	values map[key.Key]int
}

func (s *sheet) Get(k key.Key) (int, bool) {
	v, ok := s.values[k]
	return v, ok
}

func (s *sheet) DisplayName() string { return s.name }

func newSheet(values map[key.Key]int) *sheet {
	return &sheet{name: "Brother Tobias", values: values}
}

func mustTest(t *testing.T, modifier int, stat, skill key.Key, attack roll.Attack, repeats int) *roll.SkillTest {
	t.Helper()
	st, err := roll.NewSkillTest(modifier, stat, skill, attack, repeats, "")
	require.NoError(t, err)
	return st
}

func TestDegrees(t *testing.T) {
	tests := []struct {
		target, roll, want int
	}{
		{50, 50, 1},
		{50, 41, 1},
		{50, 40, 2},
		{30, 30, 1},
		{50, 51, -1},
		{50, 60, -2},
		{50, 61, -2},
		{50, 1, 6},
		{50, 100, -7},
		{120, 100, -1},
		{0, 1, 1},
		{-20, 1, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roll.Degrees(tt.target, tt.roll), "Degrees(%d, %d)", tt.target, tt.roll)
	}
}

// Property: for rolls other than 1 and 100, a test succeeds exactly when
// the roll does not exceed the target, and degrees are never zero.
func TestPropertyDegreesSign(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		target := rapid.IntRange(-100, 200).Draw(rt, "target")
		r := rapid.IntRange(2, 99).Draw(rt, "roll")
		d := roll.Degrees(target, r)
		if d == 0 {
			rt.Fatalf("Degrees(%d, %d) = 0", target, r)
		}
		if (d > 0) != (r <= target) {
			rt.Fatalf("Degrees(%d, %d) = %d has the wrong sign", target, r, d)
		}
	})
}

func TestNewSkillTest_Repeats(t *testing.T) {
	st := mustTest(t, 0, key.None, key.None, roll.NoAttack, 0)
	assert.Equal(t, 1, st.Repeats)

	_, err := roll.NewSkillTest(0, key.None, key.None, roll.NoAttack, roll.MaxRepeats+1, "")
	assert.ErrorIs(t, err, roll.ErrTooManyRepeats)

	_, err = roll.NewSkillTest(0, key.None, key.None, roll.NoAttack, roll.MaxRepeats, "")
	assert.NoError(t, err)
}

func TestSkillTest_Target(t *testing.T) {
	flat := mustTest(t, 45, key.None, key.None, roll.NoAttack, 1)
	assert.Equal(t, 45, flat.Target(nil))
	assert.False(t, flat.IsComplex())

	clamped := mustTest(t, 70, key.WeaponSkill, key.None, roll.NoAttack, 1)
	assert.Equal(t, 100, clamped.Target(newSheet(map[key.Key]int{key.WeaponSkill: 40})))
	clamped.Modifier = -90
	assert.Equal(t, -20, clamped.Target(newSheet(map[key.Key]int{key.WeaponSkill: 40})))

	defaults := mustTest(t, 10, key.WeaponSkill, key.Parry, roll.NoAttack, 1)
	assert.Equal(t, 20, defaults.Target(newSheet(nil)))
	assert.True(t, defaults.IsComplex())

	trained := mustTest(t, 0, key.Agility, key.Stealth, roll.NoAttack, 1)
	assert.Equal(t, 45, trained.Target(newSheet(map[key.Key]int{key.Agility: 35, key.Stealth: 10})))
}

func TestSkillTest_Hint(t *testing.T) {
	tests := []struct {
		stat, skill key.Key
		attack      roll.Attack
		want        string
	}{
		{key.None, key.None, roll.NoAttack, ""},
		{key.WeaponSkill, key.None, roll.NoAttack, "Weapon Skill"},
		{key.WeaponSkill, key.Parry, roll.NoAttack, "Parry on Weapon Skill"},
		{key.WeaponSkill, key.None, roll.Single, "Single Attack"},
		{key.BallisticSkill, key.None, roll.Semi, "Semi-Auto Burst"},
		{key.Agility, key.None, roll.Full, "Full-Auto/Lightning Attack (Agility)"},
		{key.None, key.None, roll.Full, "Full-Auto/Lightning Attack"},
		{key.WeaponSkill, key.Parry, roll.Single, "Single Attack (Parry on Weapon Skill)"},
	}
	for _, tt := range tests {
		st := mustTest(t, 0, tt.stat, tt.skill, tt.attack, 1)
		assert.Equal(t, tt.want, st.Hint())
	}
}

func TestSkillTest_Roll_Flat(t *testing.T) {
	st := mustTest(t, 50, key.None, key.None, roll.NoAttack, 1)
	res, ok := st.Roll(dice.NewScriptedSource(42), nil)
	require.True(t, ok)
	assert.Equal(t, "Target: `50` | Roll: `42` | Degrees: `+1`", res.Description)
	assert.Equal(t, roll.ColorSuccess, res.Color)
	assert.Empty(t, res.Footer)
	assert.Empty(t, res.Profile)
	require.Len(t, res.Tests, 1)
	assert.Equal(t, roll.TestOutcome{Roll: 42, Degrees: 1}, res.Tests[0])
}

func TestSkillTest_Roll_Repeats(t *testing.T) {
	st := mustTest(t, 50, key.None, key.None, roll.NoAttack, 3)
	res, ok := st.Roll(dice.NewScriptedSource(5, 55, 100), nil)
	require.True(t, ok)
	want := "Target: `50`\n――――――\n" +
		"Roll: `  5` | Degrees: `+5`\n" +
		"Roll: ` 55` | Degrees: `-1`\n" +
		"Roll: `100` | Degrees: `-7`"
	assert.Equal(t, want, res.Description)
	assert.Equal(t, roll.ColorInfo, res.Color)
}

func TestSkillTest_Roll_Failure(t *testing.T) {
	st := mustTest(t, 0, key.WeaponSkill, key.None, roll.NoAttack, 1)
	res, ok := st.Roll(dice.NewScriptedSource(7), newSheet(map[key.Key]int{key.WeaponSkill: 5}))
	require.True(t, ok)
	assert.Equal(t, "Target: `5` | Roll: `7` | Degrees: `-1`", res.Description)
	assert.Equal(t, roll.ColorDanger, res.Color)
	assert.Equal(t, "Weapon Skill", res.Footer)
	assert.Equal(t, "Brother Tobias", res.Profile)
}

func TestSkillTest_Roll_SemiAuto(t *testing.T) {
	st := mustTest(t, 0, key.BallisticSkill, key.None, roll.Semi, 1)
	src := dice.NewScriptedSource(11, 2)
	res, ok := st.Roll(src, newSheet(map[key.Key]int{key.BallisticSkill: 60}))
	require.True(t, ok)
	assert.Equal(t, "Target: `60` | Roll: `11` | Degrees: `+5` | Hits: `3` = `R-Arm`, `R-Arm`, `Body`", res.Description)
	assert.Equal(t, "Semi-Auto Burst", res.Footer)
	assert.Equal(t, 0, src.Remaining())
}

func TestSkillTest_Roll_FullAutoSides(t *testing.T) {
	st := mustTest(t, 0, key.BallisticSkill, key.None, roll.Full, 1)
	// 13 reads as 31: Body. A coin of 1 puts the left arm first.
	res, ok := st.Roll(dice.NewScriptedSource(13, 1), newSheet(map[key.Key]int{key.BallisticSkill: 60}))
	require.True(t, ok)
	require.Len(t, res.Tests, 1)
	assert.Equal(t, []string{"Body", "Body", "L-Arm", "Head", "R-Arm"}, res.Tests[0].Hits)
}

func TestSkillTest_Roll_SingleShot(t *testing.T) {
	st := mustTest(t, 0, key.WeaponSkill, key.None, roll.Single, 1)
	src := dice.NewScriptedSource(12)
	res, ok := st.Roll(src, newSheet(map[key.Key]int{key.WeaponSkill: 40}))
	require.True(t, ok)
	assert.Equal(t, "Target: `40` | Roll: `12` | Degrees: `+3` | Hit: `Left Arm`", res.Description)
	assert.Equal(t, 0, src.Remaining(), "a single hit draws no sides")
}

func TestSkillTest_Roll_Missed(t *testing.T) {
	st := mustTest(t, 0, key.WeaponSkill, key.None, roll.Full, 1)
	res, ok := st.Roll(dice.NewScriptedSource(90), newSheet(map[key.Key]int{key.WeaponSkill: 40}))
	require.True(t, ok)
	assert.Equal(t, "Target: `40` | Roll: `90` | Degrees: `-6` | Missed", res.Description)
	assert.Nil(t, res.Tests[0].Hits)
}

func TestSkillTest_Roll_NeedsProfile(t *testing.T) {
	st := mustTest(t, 0, key.Agility, key.Stealth, roll.NoAttack, 1)
	_, ok := st.Roll(dice.NewScriptedSource(), nil)
	assert.False(t, ok)
}

func mustEquation(t *testing.T, flat int, terms ...roll.Term) *roll.DiceEquation {
	t.Helper()
	eq, err := roll.NewDiceEquation(flat, terms, "")
	require.NoError(t, err)
	return eq
}

func TestDiceEquation_Roll_Critical(t *testing.T) {
	eq := mustEquation(t, 3, &roll.DiceTerm{Count: 2, Sides: 10})
	res, ok := eq.Roll(dice.NewScriptedSource(10, 4), nil)
	require.True(t, ok)
	assert.Equal(t, "Rolls: `[10!, 4] (2d10) + 3` | Total: `17`", res.Description)
	assert.Equal(t, roll.ColorCritical, res.Color)
	assert.Equal(t, "Critical Damage", res.Footer)
	assert.True(t, res.Critical)
	assert.Equal(t, 17, res.Total)
}

func TestDiceEquation_Roll_FiveSided(t *testing.T) {
	eq := mustEquation(t, 0, &roll.DiceTerm{Count: 1, Sides: 5})

	res, ok := eq.Roll(dice.NewScriptedSource(5, 1), nil)
	require.True(t, ok)
	assert.Equal(t, "Rolls: `[5] (1d5)` | Total: `5`", res.Description)
	assert.Equal(t, roll.ColorNeutral, res.Color)
	assert.Empty(t, res.Footer)

	res, ok = eq.Roll(dice.NewScriptedSource(5, 2), nil)
	require.True(t, ok)
	assert.Equal(t, "Rolls: `[5!] (1d5)` | Total: `5`", res.Description)
	assert.True(t, res.Critical)

	// no coin is drawn for lower faces
	src := dice.NewScriptedSource(4)
	_, ok = eq.Roll(src, nil)
	require.True(t, ok)
	assert.Equal(t, 0, src.Remaining())
}

func TestDiceEquation_Roll_Tearing(t *testing.T) {
	eq := mustEquation(t, 0, &roll.DiceTerm{Count: 1, Sides: 10, Tearing: true})
	res, ok := eq.Roll(dice.NewScriptedSource(3, 7), nil)
	require.True(t, ok)
	assert.Equal(t, "Rolls: `[7] (1d10T)` | Total: `7`", res.Description)
}

func TestDiceEquation_Roll_Signs(t *testing.T) {
	eq := mustEquation(t, -2, &roll.DiceTerm{Count: 1, Sides: 6, Negative: true})
	res, ok := eq.Roll(dice.NewScriptedSource(4), nil)
	require.True(t, ok)
	assert.Equal(t, "Rolls: `-[4] (1d6) - 2` | Total: `-6`", res.Description)
	assert.Equal(t, -6, res.Total)
}

func TestDiceEquation_Roll_Bonus(t *testing.T) {
	eq := mustEquation(t, 0,
		&roll.DiceTerm{Count: 1, Sides: 6},
		&roll.BonusTerm{Stat: key.Strength, Negative: true},
	)
	assert.True(t, eq.IsComplex())

	_, ok := eq.Roll(dice.NewScriptedSource(3), nil)
	assert.False(t, ok)

	res, ok := eq.Roll(dice.NewScriptedSource(3), newSheet(map[key.Key]int{key.Strength: 45}))
	require.True(t, ok)
	assert.Equal(t, "Rolls: `[3] (1d6) - 4 (SB)` | Total: `-1`", res.Description)
	assert.Equal(t, "Brother Tobias", res.Profile)

	res, ok = eq.Roll(dice.NewScriptedSource(3), newSheet(nil))
	require.True(t, ok)
	assert.Equal(t, 0, res.Total, "missing characteristic defaults to 30")

	lead := mustEquation(t, 2, &roll.BonusTerm{Stat: key.Agility, Negative: true})
	res, ok = lead.Roll(dice.NewScriptedSource(), newSheet(map[key.Key]int{key.Agility: 38}))
	require.True(t, ok)
	assert.Equal(t, "Rolls: `-3 (AGB) + 2` | Total: `-1`", res.Description)
}

func TestDiceEquation_ZeroDice(t *testing.T) {
	eq := mustEquation(t, 0, &roll.DiceTerm{Count: 0, Sides: 6})
	res, ok := eq.Roll(dice.NewScriptedSource(), nil)
	require.True(t, ok)
	assert.Equal(t, "Rolls: `[] (0d6)` | Total: `0`", res.Description)
}

func TestNewDiceEquation_Validation(t *testing.T) {
	_, err := roll.NewDiceEquation(0, []roll.Term{&roll.DiceTerm{Count: 1, Sides: 0}}, "")
	assert.ErrorIs(t, err, roll.ErrInvalidDice)

	_, err = roll.NewDiceEquation(0, []roll.Term{&roll.DiceTerm{Count: -1, Sides: 6}}, "")
	assert.ErrorIs(t, err, roll.ErrInvalidDice)

	_, err = roll.NewDiceEquation(0, []roll.Term{
		&roll.DiceTerm{Count: 150, Sides: 6},
		&roll.DiceTerm{Count: 51, Sides: 10},
	}, "")
	assert.ErrorIs(t, err, roll.ErrTooManyDice)

	eq, err := roll.NewDiceEquation(0, []roll.Term{&roll.DiceTerm{Count: roll.MaxDice, Sides: 6}}, "")
	require.NoError(t, err)
	assert.Equal(t, roll.MaxDice, eq.DiceCount())

	_, err = roll.NewDiceEquation(0, []roll.Term{&roll.BonusTerm{Stat: key.Parry}}, "")
	assert.ErrorIs(t, err, roll.ErrInvalidBonus)
}

// Property: the total of a plain dice equation lies within its bounds.
func TestPropertyDiceTotalInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(0, 20).Draw(rt, "count")
		sides := rapid.IntRange(1, 20).Draw(rt, "sides")
		flat := rapid.IntRange(-50, 50).Draw(rt, "flat")
		eq, err := roll.NewDiceEquation(flat, []roll.Term{&roll.DiceTerm{Count: count, Sides: sides}}, "")
		if err != nil {
			rt.Fatalf("NewDiceEquation: %v", err)
		}
		res, ok := eq.Roll(dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")), nil)
		if !ok {
			rt.Fatal("plain equation must roll without a profile")
		}
		if res.Total < count+flat || res.Total > count*sides+flat {
			rt.Fatalf("total %d outside [%d, %d]", res.Total, count+flat, count*sides+flat)
		}
	})
}

func TestAttack(t *testing.T) {
	for token, want := range map[string]roll.Attack{"!": roll.Single, "!!": roll.Semi, "!!!": roll.Full} {
		got, ok := roll.DecodeAttack(token)
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := roll.DecodeAttack("!!!!")
	assert.False(t, ok)

	assert.Equal(t, "Full-Auto Burst", roll.Full.Description(key.BallisticSkill))
	assert.Equal(t, "Lightning Attack", roll.Full.Description(key.WeaponSkill))
	assert.Equal(t, "Swift Attack", roll.Semi.Description(key.WeaponSkill))
	assert.Equal(t, "Single Shot", roll.Single.Description(key.BallisticSkill))
	assert.Equal(t, "None", roll.NoAttack.String())

	assert.Equal(t, 3, roll.Semi.Hits(5))
	assert.Equal(t, 3, roll.Semi.Hits(6))
	assert.Equal(t, 5, roll.Full.Hits(5))
	assert.Equal(t, 1, roll.Single.Hits(4))
	assert.Equal(t, 0, roll.Full.Hits(-2))
}

func TestRoller_LogsEvaluation(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := roll.NewLoggedRoller(dice.NewScriptedSource(42), zap.New(core))

	res, ok := r.Invoke(mustTest(t, 50, key.None, key.None, roll.NoAttack, 1), nil)
	require.True(t, ok)
	assert.Equal(t, 50, res.Target)

	entries := logs.FilterMessage("roll").All()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(50), entries[0].ContextMap()["target"])
}

func TestRoller_SkipsWithoutProfile(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := roll.NewLoggedRoller(dice.NewScriptedSource(), zap.New(core))

	_, ok := r.Invoke(mustTest(t, 0, key.Strength, key.None, roll.NoAttack, 1), nil)
	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("roll skipped: profile required").Len())
}
