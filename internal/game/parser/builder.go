package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cory-johannsen/fate/internal/game/key"
	"github.com/cory-johannsen/fate/internal/game/roll"
)

var diceToken = regexp.MustCompile(`^(\d*)[dD](\d+)([tT]?)$`)

func buildSkillTest(g *skillTestGrammar) (roll.Request, error) {
	if g.Macro != "" {
		return &roll.MacroReference{Name: strings.TrimPrefix(g.Macro, "=")}, nil
	}
	t := g.Test

	modifier := 0
	for _, term := range t.Terms {
		v, err := signedInt(term.Sign, term.Value)
		if err != nil {
			return nil, err
		}
		modifier += v
	}

	stat, skill := key.None, key.None
	if c := t.Head.Command; c != nil {
		var ok bool
		left := strings.Join(c.Left, " ")
		if len(c.Right) == 0 {
			stat, skill, ok = key.ReadCommand(left)
		} else {
			right := strings.Join(c.Right, " ")
			stat, skill, ok = key.ReadPairedCommand(left, right)
			left += " on " + right
		}
		if !ok {
			return nil, fmt.Errorf("%w: unknown command %q", ErrSemanticReject, left)
		}
	} else {
		v, err := signedInt(t.Head.Flat.Sign, t.Head.Flat.Value)
		if err != nil {
			return nil, err
		}
		modifier += v
	}

	attack := roll.NoAttack
	if t.Attack != "" {
		attack, _ = roll.DecodeAttack(t.Attack)
	}

	repeats := 1
	if t.Repeats != "" {
		n, err := strconv.Atoi(t.Repeats)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("%w: invalid repeat count %q", ErrSemanticReject, t.Repeats)
		}
		repeats = n
	}

	st, err := roll.NewSkillTest(modifier, stat, skill, attack, repeats, strings.TrimPrefix(t.Profile, "#"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSemanticReject, err)
	}
	return st, nil
}

func buildDiceEquation(g *diceGrammar) (roll.Request, error) {
	flat := 0
	var terms []roll.Term

	add := func(sign string, op *operandNode) error {
		negative := sign == "-"
		switch {
		case op.Dice != "":
			term, err := diceTerm(op.Dice, negative)
			if err != nil {
				return err
			}
			terms = append(terms, term)
		case op.Bonus != "":
			term, err := bonusTerm(op.Bonus, negative)
			if err != nil {
				return err
			}
			terms = append(terms, term)
		default:
			v, err := signedInt(sign, op.Int)
			if err != nil {
				return err
			}
			flat += v
		}
		return nil
	}

	if err := add(g.First.Sign, g.First.Operand); err != nil {
		return nil, err
	}
	for _, next := range g.Rest {
		if err := add(next.Sign, next.Operand); err != nil {
			return nil, err
		}
	}

	eq, err := roll.NewDiceEquation(flat, terms, strings.TrimPrefix(g.Profile, "#"))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSemanticReject, err)
	}
	return eq, nil
}

func diceTerm(token string, negative bool) (*roll.DiceTerm, error) {
	m := diceToken.FindStringSubmatch(token)
	if m == nil {
		return nil, fmt.Errorf("%w: malformed dice %q", ErrSemanticReject, token)
	}
	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("%w: dice count %q: %w", ErrSemanticReject, m[1], err)
		}
		count = n
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, fmt.Errorf("%w: dice sides %q: %w", ErrSemanticReject, m[2], err)
	}
	return &roll.DiceTerm{Count: count, Sides: sides, Tearing: m[3] != "", Negative: negative}, nil
}

// bonusTerm reads a characteristic code followed by "B" in any case, e.g.
// "SB" or "agb".
func bonusTerm(token string, negative bool) (*roll.BonusTerm, error) {
	if len(token) < 2 || !strings.EqualFold(token[len(token)-1:], "b") {
		return nil, fmt.Errorf("%w: %q is not a bonus", ErrSemanticReject, token)
	}
	code := token[:len(token)-1]
	stat, ok := key.ByCode(code)
	if !ok {
		return nil, fmt.Errorf("%w: %q: %w", ErrSemanticReject, token, roll.ErrInvalidBonus)
	}
	return &roll.BonusTerm{Stat: stat, Negative: negative}, nil
}

func signedInt(sign, digits string) (int, error) {
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("%w: integer %q: %w", ErrSemanticReject, digits, err)
	}
	if sign == "-" {
		n = -n
	}
	return n, nil
}
