package handlers

import (
	"strings"

	"github.com/cory-johannsen/fate/internal/bot"
	"github.com/cory-johannsen/fate/internal/frontend/telnet"
	"github.com/cory-johannsen/fate/internal/game/roll"
)

const warningMark = "⚠️"

var palette = map[roll.Color]string{
	roll.ColorNeutral:  telnet.White,
	roll.ColorInfo:     telnet.Cyan,
	roll.ColorSuccess:  telnet.Green,
	roll.ColorDanger:   telnet.Red,
	roll.ColorCritical: telnet.Magenta,
}

func colorFor(c roll.Color) string {
	if ansi, ok := palette[c]; ok {
		return ansi
	}
	return telnet.White
}

// RenderReply formats a reply for a terminal. The header names the author
// and, when the reply speaks for a profile, the profile's long name.
func RenderReply(author string, r bot.Reply) string {
	if r.Warning {
		if r.Description == "" {
			return warningMark
		}
		return warningMark + " " + highlight(r.Description, telnet.Yellow)
	}

	base := colorFor(r.Color)
	header := author
	if r.Profile != "" {
		header += " as " + r.Profile
	}

	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.Bold+base, header))
	b.WriteByte('\n')
	b.WriteString(highlight(r.Description, base))
	if r.Footer != "" {
		b.WriteByte('\n')
		b.WriteString(telnet.Colorize(telnet.Dim+base, r.Footer))
	}
	return b.String()
}

// highlight renders backtick spans of s in bold white and the rest in base.
// An unmatched backtick is kept literally.
func highlight(s, base string) string {
	parts := strings.Split(s, "`")
	if len(parts)%2 == 0 {
		last := len(parts) - 1
		parts[last-1] += "`" + parts[last]
		parts = parts[:last]
	}

	var b strings.Builder
	for i, p := range parts {
		if p == "" {
			continue
		}
		if i%2 == 1 {
			b.WriteString(telnet.Colorize(telnet.Bold+telnet.BrightWhite, p))
		} else {
			b.WriteString(telnet.Colorize(base, p))
		}
	}
	return b.String()
}
