// Package parser turns a command line into a roll.Request.
//
// Two grammars share one token vocabulary. The skill-test grammar is tried
// first; the dice-equation grammar is tried on the same input only when the
// first fails. Neither failure is surfaced by Parse.
package parser

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/game/roll"
)

var (
	// ErrGrammarMismatch reports input that does not fit a grammar.
	ErrGrammarMismatch = errors.New("grammar mismatch")
	// ErrSemanticReject reports input that fits a grammar but breaks a
	// bound or names an unknown characteristic or skill.
	ErrSemanticReject = errors.New("semantic reject")
)

// Parser parses command lines. It holds no mutable state and is safe for
// concurrent use.
type Parser struct {
	logger *zap.Logger
}

// New creates a Parser that logs the reason each grammar attempt failed at
// debug level.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Parser {
	return &Parser{logger: logger}
}

// Parse returns the request described by raw, or nil if raw describes none.
//
// Postcondition: the result is nil, a *roll.MacroReference, a
// *roll.SkillTest or a *roll.DiceEquation.
func (p *Parser) Parse(raw string) roll.Request {
	req, err := p.Explain(raw)
	if err != nil {
		p.logger.Debug("no request", zap.String("input", raw), zap.Error(err))
		return nil
	}
	return req
}

// Explain is Parse with the failure reason of both grammars.
//
// Postcondition: exactly one of the return values is nil. A non-nil error
// wraps ErrGrammarMismatch and/or ErrSemanticReject.
func (p *Parser) Explain(raw string) (roll.Request, error) {
	req, testErr := parseSkillTest(raw)
	if testErr == nil {
		return req, nil
	}
	req, diceErr := parseDiceEquation(raw)
	if diceErr == nil {
		return req, nil
	}
	return nil, fmt.Errorf("skill test: %w; dice equation: %w", testErr, diceErr)
}

func parseSkillTest(raw string) (roll.Request, error) {
	g, err := skillTestParser.ParseString("", raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGrammarMismatch, err)
	}
	return buildSkillTest(g)
}

func parseDiceEquation(raw string) (roll.Request, error) {
	g, err := diceParser.ParseString("", raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGrammarMismatch, err)
	}
	return buildDiceEquation(g)
}
