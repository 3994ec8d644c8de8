package roll

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/game/dice"
)

// Roller wraps a Source and logger to provide logged request evaluation.
// Every evaluation is logged at debug level with its description and total.
type Roller struct {
	src    dice.Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each
// evaluation to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src dice.Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Invoke evaluates req against p.
//
// Postcondition: Returns false without drawing any dice when req needs a
// profile and p is nil.
func (r *Roller) Invoke(req Invocable, p Profile) (Result, bool) {
	res, ok := req.Roll(r.src, p)
	if !ok {
		r.logger.Debug("roll skipped: profile required")
		return Result{}, false
	}
	fields := []zap.Field{
		zap.String("profile", res.Profile),
		zap.String("color", res.Color.String()),
		zap.String("description", res.Description),
	}
	switch req.(type) {
	case *SkillTest:
		rolls := make([]int, len(res.Tests))
		for i, o := range res.Tests {
			rolls[i] = o.Roll
		}
		fields = append(fields, zap.Int("target", res.Target), zap.Ints("rolls", rolls))
	case *DiceEquation:
		fields = append(fields, zap.Int("total", res.Total), zap.Bool("critical", res.Critical))
	}
	r.logger.Debug("roll", fields...)
	return res, true
}
