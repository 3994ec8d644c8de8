// Package roll turns parsed player requests into rolled, described outcomes.
//
// Requests are immutable values built by the parser. Evaluation is pure apart
// from the dice.Source it draws from, so a request may be invoked any number
// of times from any goroutine.
package roll

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/fate/internal/game/dice"
	"github.com/cory-johannsen/fate/internal/game/key"
)

// Limits applied when a request is built.
const (
	MaxRepeats = 30
	MaxDice    = 200
)

var (
	// ErrTooManyRepeats is returned when a skill test asks for more than MaxRepeats rolls.
	ErrTooManyRepeats = errors.New("too many repeats")
	// ErrTooManyDice is returned when a dice equation rolls more than MaxDice dice.
	ErrTooManyDice = errors.New("too many dice")
	// ErrInvalidDice is returned for a dice term with no faces or a negative count.
	ErrInvalidDice = errors.New("invalid dice term")
	// ErrInvalidBonus is returned for a bonus term naming something other than a characteristic.
	ErrInvalidBonus = errors.New("bonus term must name a characteristic")
)

// Profile is the read-only view of a character sheet used during evaluation.
type Profile interface {
	// Get returns the value stored for k, if any.
	Get(k key.Key) (int, bool)
	// DisplayName returns the profile's long name.
	DisplayName() string
}

// Request is one of *MacroReference, *SkillTest or *DiceEquation.
type Request interface {
	isRequest()
}

// Invocable is a Request that can be rolled.
type Invocable interface {
	Request
	// IsComplex reports whether evaluation needs a profile.
	IsComplex() bool
	// SelectedProfile returns the profile named in the command, or "" for
	// the caller's active profile.
	SelectedProfile() string
	// Roll evaluates the request. It returns false when the request needs a
	// profile and p is nil.
	Roll(src dice.Source, p Profile) (Result, bool)
}

// MacroReference names a stored command for the caller to resolve.
type MacroReference struct {
	Name string
}

func (*MacroReference) isRequest() {}

// SkillTest is a percentile test against a characteristic, a skill, or a
// flat target.
type SkillTest struct {
	Modifier    int
	Stat        key.Key
	Skill       key.Key
	Attack      Attack
	Repeats     int
	ProfileName string
}

// NewSkillTest builds a SkillTest. A repeats value of 0 means one roll.
//
// Postcondition: Returns ErrTooManyRepeats when repeats > MaxRepeats.
func NewSkillTest(modifier int, stat, skill key.Key, attack Attack, repeats int, profile string) (*SkillTest, error) {
	if repeats == 0 {
		repeats = 1
	}
	if repeats < 1 {
		return nil, fmt.Errorf("repeats must be positive, got %d: %w", repeats, ErrTooManyRepeats)
	}
	if repeats > MaxRepeats {
		return nil, fmt.Errorf("%d > %d: %w", repeats, MaxRepeats, ErrTooManyRepeats)
	}
	return &SkillTest{
		Modifier:    modifier,
		Stat:        stat,
		Skill:       skill,
		Attack:      attack,
		Repeats:     repeats,
		ProfileName: profile,
	}, nil
}

func (*SkillTest) isRequest() {}

// IsComplex reports whether a characteristic or skill is in play.
func (t *SkillTest) IsComplex() bool {
	return t.Stat != key.None || t.Skill != key.None
}

// SelectedProfile implements Invocable.
func (t *SkillTest) SelectedProfile() string { return t.ProfileName }

// Term is a *DiceTerm or a *BonusTerm.
type Term interface {
	// Sign returns +1 or -1.
	Sign() int
	roll(src dice.Source, p Profile) termResult
}

// DiceTerm rolls Count dice of Sides faces.
type DiceTerm struct {
	Count    int
	Sides    int
	Tearing  bool
	Negative bool
}

// Sign implements Term.
func (d *DiceTerm) Sign() int { return sign(d.Negative) }

// Notation returns the term in NdS[T] form.
func (d *DiceTerm) Notation() string {
	s := fmt.Sprintf("%dd%d", d.Count, d.Sides)
	if d.Tearing {
		s += "T"
	}
	return s
}

// BonusTerm adds a tenth of a characteristic.
type BonusTerm struct {
	Stat     key.Key
	Negative bool
}

// Sign implements Term.
func (b *BonusTerm) Sign() int { return sign(b.Negative) }

func sign(negative bool) int {
	if negative {
		return -1
	}
	return 1
}

// DiceEquation sums dice terms, bonus terms and a flat value.
type DiceEquation struct {
	Flat        int
	Terms       []Term
	ProfileName string

	diceCount int
	complex   bool
}

// NewDiceEquation builds a DiceEquation from its terms.
//
// Postcondition: Returns ErrTooManyDice when the dice count exceeds MaxDice,
// ErrInvalidDice or ErrInvalidBonus for malformed terms.
func NewDiceEquation(flat int, terms []Term, profile string) (*DiceEquation, error) {
	eq := &DiceEquation{Flat: flat, ProfileName: profile}
	for _, term := range terms {
		switch tt := term.(type) {
		case *DiceTerm:
			if tt.Sides < 1 || tt.Count < 0 {
				return nil, fmt.Errorf("%s: %w", tt.Notation(), ErrInvalidDice)
			}
			eq.diceCount += tt.Count
			if eq.diceCount > MaxDice {
				return nil, fmt.Errorf("more than %d dice: %w", MaxDice, ErrTooManyDice)
			}
		case *BonusTerm:
			if !tt.Stat.IsStat() {
				return nil, fmt.Errorf("%q: %w", tt.Stat.Code(), ErrInvalidBonus)
			}
			eq.complex = true
		default:
			return nil, fmt.Errorf("unsupported term %T", term)
		}
		eq.Terms = append(eq.Terms, term)
	}
	return eq, nil
}

func (*DiceEquation) isRequest() {}

// DiceCount returns the total number of dice rolled.
func (e *DiceEquation) DiceCount() int { return e.diceCount }

// IsComplex reports whether the equation contains a bonus term.
func (e *DiceEquation) IsComplex() bool { return e.complex }

// SelectedProfile implements Invocable.
func (e *DiceEquation) SelectedProfile() string { return e.ProfileName }
