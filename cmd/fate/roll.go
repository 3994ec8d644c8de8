package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/fate/internal/game/parser"
	"github.com/cory-johannsen/fate/internal/game/roll"
	"github.com/cory-johannsen/fate/internal/observability"
)

func newRollCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "roll COMMAND...",
		Short: "Evaluate a roll locally without a profile",
		Example: `  fate roll 2d10+3
  fate roll "50 ! * 3"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			line := strings.Join(args, " ")
			p := parser.New(observability.ParserLogger(a.logger, a.cfg.Bot.ParserDebug))
			req, err := p.Explain(line)
			if err != nil {
				return fmt.Errorf("%q is not a roll: %w", line, err)
			}
			inv, ok := req.(roll.Invocable)
			if !ok {
				return errors.New("macros need a stored profile; use the bot")
			}

			res, ok := roll.NewLoggedRoller(diceSource(a.cfg.Bot), a.logger).Invoke(inv, nil)
			if !ok {
				return errors.New("this roll reads a profile; use the bot")
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, strings.ReplaceAll(res.Description, "`", ""))
			if res.Footer != "" {
				fmt.Fprintln(out, res.Footer)
			}
			return nil
		},
	}
}
