// Package bot implements the platform-independent command service: rolling,
// profile management, macros, and fast channels. Transports turn their
// messages into a Message and render the returned Reply.
package bot

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/game/parser"
	"github.com/cory-johannsen/fate/internal/game/roll"
	"github.com/cory-johannsen/fate/internal/storage"
)

// Store is the persistence the service needs.
type Store interface {
	storage.ProfileStore
	storage.MacroStore
	storage.ChannelStore
}

// Message is one line of input from a player.
type Message struct {
	// UserID identifies the player, e.g. "telnet:alice".
	UserID string
	// ChannelID identifies where the message was sent.
	ChannelID string
	Text      string
}

// Reply is a transport-neutral response. Backtick spans in Description mark
// values to highlight.
type Reply struct {
	Description string
	Footer      string
	Color       roll.Color
	// Profile is the long name of the profile the reply speaks for, if any.
	Profile string
	// Warning marks a command that produced no result. Description may still
	// carry a hint.
	Warning bool
}

func warning(hint string) Reply {
	return Reply{Warning: true, Description: hint}
}

func text(format string) Reply {
	return Reply{Description: format, Color: roll.ColorNeutral}
}

var internalError = Reply{Description: "Something went wrong. Please try again.", Color: roll.ColorDanger}

// Service dispatches commands. It is safe for concurrent use.
type Service struct {
	store    Store
	parser   *parser.Parser
	roller   *roll.Roller
	prefix   string
	logger   *zap.Logger
	commands map[string]command
}

type command struct {
	usage string
	help  string
	run   func(s *Service, ctx context.Context, m Message, args string) Reply
}

// New creates a Service.
//
// Precondition: all arguments must be non-nil and prefix non-empty.
func New(store Store, p *parser.Parser, roller *roll.Roller, prefix string, logger *zap.Logger) *Service {
	s := &Service{
		store:  store,
		parser: p,
		roller: roller,
		prefix: prefix,
		logger: logger,
	}
	s.commands = map[string]command{
		"roll":        {"roll <command>", "Perform a roll.", (*Service).roll},
		"set":         {"set <key> <value>", "Set a characteristic or skill on the current profile.", (*Service).set},
		"rename":      {"rename <profile> <long name>", "Change a profile's long name.", (*Service).rename},
		"load":        {"load <profile>", "Load a profile.", (*Service).load},
		"create":      {"create <profile> [long name]", "Create a new profile.", (*Service).create},
		"show":        {"show [profile]", "Display a profile.", (*Service).show},
		"list":        {"list", "List your profiles.", (*Service).list},
		"toggle-fast": {"toggle-fast", "Toggle fast rolling in this channel.", (*Service).toggleFast},
		"macro":       {"macro <name> <command>", "Save a command for later use as =name.", (*Service).saveMacro},
		"macros":      {"macros", "List your macros.", (*Service).listMacros},
		"help":        {"help", "Show this message.", (*Service).help},
	}
	return s
}

// Prefix returns the command prefix.
func (s *Service) Prefix() string { return s.prefix }

// Handle processes one message.
//
// Postcondition: Returns false when the message is neither a command nor
// sent in a fast channel, in which case it must be ignored.
func (s *Service) Handle(ctx context.Context, m Message) (Reply, bool) {
	line := strings.TrimSpace(m.Text)
	if rest, ok := strings.CutPrefix(line, s.prefix); ok {
		name, args, _ := strings.Cut(strings.TrimSpace(rest), " ")
		return s.dispatch(ctx, m, strings.ToLower(name), strings.TrimSpace(args)), true
	}

	fast, err := s.store.IsFast(ctx, m.ChannelID)
	if err != nil {
		s.logger.Error("checking fast channel", zap.String("channel", m.ChannelID), zap.Error(err))
		return Reply{}, false
	}
	if !fast || line == "" {
		return Reply{}, false
	}
	return s.roll(ctx, m, line), true
}

func (s *Service) dispatch(ctx context.Context, m Message, name, args string) Reply {
	cmd, ok := s.commands[name]
	if !ok {
		hint := "Unknown command `" + name + "`."
		if best, found := closest(name, s.commandNames()); found {
			hint += " Did you mean `" + s.prefix + best + "`?"
		}
		return warning(hint)
	}
	s.logger.Debug("command",
		zap.String("user", m.UserID),
		zap.String("channel", m.ChannelID),
		zap.String("command", name),
	)
	return cmd.run(s, ctx, m, args)
}

func (s *Service) commandNames() []string {
	names := make([]string, 0, len(s.commands))
	for n := range s.commands {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// closest returns the candidate nearest to word by fuzzy subsequence match.
func closest(word string, candidates []string) (string, bool) {
	if word == "" {
		return "", false
	}
	ranks := fuzzy.RankFindFold(word, candidates)
	if len(ranks) == 0 {
		return "", false
	}
	sort.Sort(ranks)
	return ranks[0].Target, true
}

func isAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// fail maps storage sentinels to player-facing text and logs anything else.
func (s *Service) fail(op string, err error) Reply {
	switch {
	case errors.Is(err, storage.ErrNoActiveProfile):
		return text("No profile selected.")
	case errors.Is(err, storage.ErrProfileExists):
		return text("Profile already exists.")
	}
	s.logger.Error(op, zap.Error(err))
	return internalError
}
