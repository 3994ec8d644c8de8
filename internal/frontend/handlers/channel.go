package handlers

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/bot"
	"github.com/cory-johannsen/fate/internal/frontend/telnet"
)

// UserID returns the bot user id of a Telnet account.
func UserID(username string) string { return "telnet:" + strings.ToLower(username) }

// ChannelID returns the bot channel id of a Telnet channel.
func ChannelID(channel string) string { return "telnet:" + channel }

func validChannel(name string) bool {
	return name != "" && len(name) <= 32 && isWord(name)
}

func isWord(s string) bool {
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return false
		}
	}
	return true
}

const channelHelp = "Channel commands:\n" +
	"  /join <channel>  Move to another channel\n" +
	"  /who             List players in this channel\n" +
	"  /quit            Disconnect\n" +
	"Anything else is said to the channel. Bot commands start with "

// play runs the logged-in loop. Lines starting with "/" are channel
// commands; every other line goes to the dispatcher and, if ignored there,
// is said to the channel.
func (h *AuthHandler) play(ctx context.Context, conn *telnet.Conn, username string) error {
	channel := h.defaultChannel
	h.hub.Join(channel, username, conn)
	defer func() { h.hub.Leave(channel, conn) }()
	h.hub.Broadcast(channel, telnet.Colorize(telnet.Dim, username+" joined #"+channel))

	log := h.logger.With(zap.String("session", conn.ID()), zap.String("username", username))
	for {
		if err := ctx.Err(); err != nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return err
		}
		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if cmd, ok := strings.CutPrefix(line, "/"); ok {
			name, arg, _ := strings.Cut(cmd, " ")
			switch strings.ToLower(name) {
			case "quit", "exit":
				_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
				return nil
			case "join":
				next := strings.ToLower(strings.TrimSpace(arg))
				if !validChannel(next) {
					_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: /join <channel> (letters, digits, - and _)"))
					continue
				}
				h.hub.Leave(channel, conn)
				h.hub.Broadcast(channel, telnet.Colorize(telnet.Dim, username+" left #"+channel))
				channel = next
				h.hub.Join(channel, username, conn)
				h.hub.Broadcast(channel, telnet.Colorize(telnet.Dim, username+" joined #"+channel))
			case "who":
				_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "#"+channel+": "+strings.Join(h.hub.Members(channel), ", ")))
			case "help":
				_ = conn.WriteLine(channelHelp + h.dispatcher.Prefix() + ", e.g. " + h.dispatcher.Prefix() + "help")
			default:
				_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Unknown channel command /"+name+". Try /help."))
			}
			continue
		}

		msg := bot.Message{UserID: UserID(username), ChannelID: ChannelID(channel), Text: line}
		reply, handled := h.dispatcher.Handle(ctx, msg)
		if !handled {
			h.hub.Broadcast(channel, telnet.Colorize(telnet.BrightWhite, "<"+username+"> ")+line)
			continue
		}
		log.Debug("reply", zap.String("channel", channel), zap.Bool("warning", reply.Warning))
		if reply.Warning {
			// warnings go only to the sender
			_ = conn.WriteLine(RenderReply(username, reply))
			continue
		}
		h.hub.Broadcast(channel, RenderReply(username, reply))
	}
}
