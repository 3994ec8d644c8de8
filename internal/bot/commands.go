package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/game/key"
	"github.com/cory-johannsen/fate/internal/game/roll"
	"github.com/cory-johannsen/fate/internal/storage"
)

// roll parses line, expands a macro reference once and invokes the request.
// The profile is only loaded for requests that read one.
func (s *Service) roll(ctx context.Context, m Message, line string) Reply {
	if line == "" {
		return warning("")
	}
	req := s.parser.Parse(line)
	if ref, ok := req.(*roll.MacroReference); ok {
		stored, err := s.store.Macro(ctx, m.UserID, ref.Name)
		if errors.Is(err, storage.ErrMacroNotFound) {
			return s.missingMacro(ctx, m, ref.Name)
		}
		if err != nil {
			return s.fail("loading macro", err)
		}
		req = s.parser.Parse(stored)
	}

	inv, ok := req.(roll.Invocable)
	if !ok {
		return warning("")
	}

	var p roll.Profile
	if inv.IsComplex() {
		prof, err := s.store.Profile(ctx, m.UserID, inv.SelectedProfile())
		switch {
		case err == nil:
			p = prof
		case errors.Is(err, storage.ErrNoActiveProfile), errors.Is(err, storage.ErrProfileNotFound):
		default:
			return s.fail("loading profile", err)
		}
	}

	res, ok := s.roller.Invoke(inv, p)
	if !ok {
		return warning("")
	}
	return Reply{
		Description: res.Description,
		Footer:      res.Footer,
		Color:       res.Color,
		Profile:     res.Profile,
	}
}

func (s *Service) missingMacro(ctx context.Context, m Message, name string) Reply {
	hint := "No macro named `" + name + "`."
	names, err := s.store.ListMacros(ctx, m.UserID)
	if err != nil {
		s.logger.Warn("listing macros for suggestion", zap.Error(err))
		return warning(hint)
	}
	if best, ok := closest(storage.NormalizeName(name), names); ok {
		hint += " Did you mean `=" + best + "`?"
	}
	return warning(hint)
}

func (s *Service) set(ctx context.Context, m Message, args string) Reply {
	fields, err := splitArgs(args)
	if err != nil {
		return warning("Unbalanced quotes.")
	}
	if len(fields) < 2 {
		return warning("Usage: `" + s.prefix + s.commands["set"].usage + "`")
	}
	raw := strings.Join(fields[:len(fields)-1], " ")
	value, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return text("Value must be a whole number.")
	}
	k, ok := key.Lookup(raw, false)
	if !ok {
		return text(fmt.Sprintf("No characteristic or skill named %q. Characteristics: %s.", raw, statCodes()))
	}

	prof, err := s.store.SetEntry(ctx, m.UserID, "", k, value)
	if err != nil {
		return s.fail("setting entry", err)
	}
	return text(fmt.Sprintf("%s on profile `%s` set to `%d`.", k, prof.Name, value))
}

func (s *Service) rename(ctx context.Context, m Message, args string) Reply {
	fields, err := splitArgs(args)
	if err != nil {
		return warning("Unbalanced quotes.")
	}
	if len(fields) < 2 {
		return warning("Usage: `" + s.prefix + s.commands["rename"].usage + "`")
	}
	name, longName := fields[0], strings.Join(fields[1:], " ")

	err = s.store.RenameProfile(ctx, m.UserID, name, longName)
	if errors.Is(err, storage.ErrProfileNotFound) {
		return s.missingProfile(ctx, m, name)
	}
	if err != nil {
		return s.fail("renaming profile", err)
	}
	return text(fmt.Sprintf("Profile `%s` renamed %q.", storage.NormalizeName(name), longName))
}

func (s *Service) load(ctx context.Context, m Message, args string) Reply {
	fields, err := splitArgs(args)
	if err != nil {
		return warning("Unbalanced quotes.")
	}
	if len(fields) != 1 {
		return warning("Usage: `" + s.prefix + s.commands["load"].usage + "`")
	}

	prof, err := s.store.SwitchProfile(ctx, m.UserID, fields[0])
	if errors.Is(err, storage.ErrProfileNotFound) {
		return s.missingProfile(ctx, m, fields[0])
	}
	if err != nil {
		return s.fail("switching profile", err)
	}
	return text("Now playing as " + prof.LongName + ".")
}

func (s *Service) create(ctx context.Context, m Message, args string) Reply {
	fields, err := splitArgs(args)
	if err != nil {
		return warning("Unbalanced quotes.")
	}
	if len(fields) == 0 {
		return warning("Usage: `" + s.prefix + s.commands["create"].usage + "`")
	}
	name := fields[0]
	if !isAlnum(name) {
		return text("Profile names can only contain letters and numbers.")
	}

	prof, err := s.store.CreateProfile(ctx, m.UserID, name, strings.Join(fields[1:], " "))
	if err != nil {
		return s.fail("creating profile", err)
	}
	return text(fmt.Sprintf("Profile `%s` created successfully!", prof.Name))
}

func (s *Service) show(ctx context.Context, m Message, args string) Reply {
	fields, err := splitArgs(args)
	if err != nil {
		return warning("Unbalanced quotes.")
	}
	var name string
	if len(fields) > 0 {
		name = fields[0]
	}

	prof, err := s.store.Profile(ctx, m.UserID, name)
	if errors.Is(err, storage.ErrProfileNotFound) {
		return s.missingProfile(ctx, m, name)
	}
	if err != nil {
		return s.fail("loading profile", err)
	}

	keys := prof.Keys()
	if len(keys) == 0 {
		return Reply{
			Description: fmt.Sprintf("Profile `%s` has no entries.", prof.Name),
			Color:       roll.ColorInfo,
			Profile:     prof.LongName,
		}
	}
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s = `%d`", k, prof.Entries[k]))
	}
	return Reply{
		Description: strings.Join(lines, "\n"),
		Color:       roll.ColorInfo,
		Profile:     prof.LongName,
	}
}

func (s *Service) missingProfile(ctx context.Context, m Message, name string) Reply {
	normalized := storage.NormalizeName(name)
	msg := "Profile `" + normalized + "` not found."
	names, err := s.store.ListProfiles(ctx, m.UserID)
	if err != nil {
		s.logger.Warn("listing profiles for suggestion", zap.Error(err))
		return text(msg)
	}
	if best, ok := closest(normalized, names); ok {
		msg += " Did you mean `" + best + "`?"
	}
	return text(msg)
}

func (s *Service) list(ctx context.Context, m Message, _ string) Reply {
	names, err := s.store.ListProfiles(ctx, m.UserID)
	if err != nil {
		return s.fail("listing profiles", err)
	}
	if len(names) == 0 {
		return text("You have no profiles. Create one with `" + s.prefix + "create <name>`.")
	}
	return text("Profiles: " + quoteAll(names))
}

func (s *Service) toggleFast(ctx context.Context, m Message, _ string) Reply {
	fast, err := s.store.ToggleFast(ctx, m.ChannelID)
	if err != nil {
		return s.fail("toggling fast mode", err)
	}
	if fast {
		return text("Fast mode `enabled`.")
	}
	return text("Fast mode `disabled`.")
}

func (s *Service) saveMacro(ctx context.Context, m Message, args string) Reply {
	name, cmd, _ := strings.Cut(args, " ")
	cmd = strings.TrimSpace(cmd)
	if name == "" || cmd == "" {
		return warning("Usage: `" + s.prefix + s.commands["macro"].usage + "`")
	}
	if !isAlnum(name) {
		return text("Macro names can only contain letters and numbers.")
	}

	switch s.parser.Parse(cmd).(type) {
	case nil:
		return text("Invalid command.")
	case *roll.MacroReference:
		return text("Macros cannot call other macros.")
	}

	previous, replaced, err := s.store.SaveMacro(ctx, m.UserID, name, cmd)
	if err != nil {
		return s.fail("saving macro", err)
	}
	msg := fmt.Sprintf("Macro `%s` saved successfully.", storage.NormalizeName(name))
	if replaced {
		msg += fmt.Sprintf(" It replaced `%s`.", previous)
	}
	return text(msg)
}

func (s *Service) listMacros(ctx context.Context, m Message, _ string) Reply {
	names, err := s.store.ListMacros(ctx, m.UserID)
	if err != nil {
		return s.fail("listing macros", err)
	}
	if len(names) == 0 {
		return text("You have no macros.")
	}
	return text("Macros: " + quoteAll(names))
}

func (s *Service) help(_ context.Context, _ Message, _ string) Reply {
	var b strings.Builder
	for i, name := range s.commandNames() {
		if i > 0 {
			b.WriteByte('\n')
		}
		cmd := s.commands[name]
		fmt.Fprintf(&b, "`%s%s` %s", s.prefix, cmd.usage, cmd.help)
	}
	return Reply{Description: b.String(), Color: roll.ColorInfo}
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = "`" + n + "`"
	}
	return strings.Join(quoted, ", ")
}

// statCodes lists the characteristic codes, e.g. "`WS`, `BS`".
func statCodes() string {
	stats := key.Stats()
	codes := make([]string, len(stats))
	for i, k := range stats {
		codes[i] = "`" + k.Code() + "`"
	}
	return strings.Join(codes, ", ")
}
