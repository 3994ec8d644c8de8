package telegram

import (
	"html"
	"strings"

	"github.com/cory-johannsen/fate/internal/bot"
	"github.com/cory-johannsen/fate/internal/game/roll"
)

var marks = map[roll.Color]string{
	roll.ColorNeutral:  "🎲",
	roll.ColorInfo:     "ℹ️",
	roll.ColorSuccess:  "✅",
	roll.ColorDanger:   "❌",
	roll.ColorCritical: "💥",
}

// RenderReply formats a reply as Telegram HTML. Backtick spans become
// <code> elements; everything else is escaped.
func RenderReply(author string, r bot.Reply) string {
	if r.Warning {
		if r.Description == "" {
			return "⚠️"
		}
		return "⚠️ " + codeSpans(r.Description)
	}

	header := author
	if r.Profile != "" {
		header += " as " + r.Profile
	}
	var b strings.Builder
	if mark, ok := marks[r.Color]; ok {
		b.WriteString(mark)
		b.WriteByte(' ')
	}
	b.WriteString("<b>" + html.EscapeString(header) + "</b>\n")
	b.WriteString(codeSpans(r.Description))
	if r.Footer != "" {
		b.WriteString("\n<i>" + html.EscapeString(r.Footer) + "</i>")
	}
	return b.String()
}

// codeSpans escapes s and wraps paired backtick spans in <code>. An unmatched
// backtick is kept literally.
func codeSpans(s string) string {
	parts := strings.Split(s, "`")
	if len(parts)%2 == 0 {
		last := len(parts) - 1
		parts[last-1] += "`" + parts[last]
		parts = parts[:last]
	}
	var b strings.Builder
	for i, p := range parts {
		if i%2 == 1 {
			b.WriteString("<code>" + html.EscapeString(p) + "</code>")
			continue
		}
		b.WriteString(html.EscapeString(p))
	}
	return b.String()
}
