// Package handlers runs Telnet sessions: account login, channel membership
// and dispatch of player lines to the bot service.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/bot"
	"github.com/cory-johannsen/fate/internal/frontend/telnet"
	"github.com/cory-johannsen/fate/internal/storage"
)

// Dispatcher handles one player line. *bot.Service satisfies it.
type Dispatcher interface {
	Handle(ctx context.Context, m bot.Message) (bot.Reply, bool)
	Prefix() string
}

const welcomeBanner = "\r\n" +
	telnet.Bold + telnet.BrightCyan + "  FATE" + telnet.Reset + telnet.Cyan + "  dice and profiles for the table" + telnet.Reset + "\r\n\r\n" +
	"  Type " + telnet.Green + "login <username>" + telnet.Reset + " to connect.\r\n" +
	"  Type " + telnet.Green + "register <username> <password>" + telnet.Reset + " to create an account.\r\n" +
	"  Type " + telnet.Green + "quit" + telnet.Reset + " to disconnect.\r\n"

// AuthHandler implements telnet.SessionHandler. It authenticates the player
// and then hands the session to the channel loop.
type AuthHandler struct {
	accounts       storage.AccountStore
	dispatcher     Dispatcher
	hub            *Hub
	defaultChannel string
	logger         *zap.Logger
}

// NewAuthHandler creates an AuthHandler. Players join defaultChannel on login.
//
// Precondition: all arguments must be non-nil and defaultChannel non-empty.
func NewAuthHandler(accounts storage.AccountStore, dispatcher Dispatcher, hub *Hub, defaultChannel string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		accounts:       accounts,
		dispatcher:     dispatcher,
		hub:            hub,
		defaultChannel: defaultChannel,
		logger:         logger,
	}
}

// HandleSession implements telnet.SessionHandler.
//
// Postcondition: Returns nil on clean quit, or an error if the session ended abnormally.
func (h *AuthHandler) HandleSession(ctx context.Context, conn *telnet.Conn) error {
	log := h.logger.With(zap.String("session", conn.ID()))
	if err := conn.Write([]byte(welcomeBanner)); err != nil {
		return fmt.Errorf("sending welcome: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			_ = conn.WriteLine(telnet.Colorize(telnet.Yellow, "Server shutting down. Goodbye!"))
			return err
		}
		if err := conn.WritePrompt(telnet.Colorize(telnet.BrightWhite, "> ")); err != nil {
			return fmt.Errorf("writing prompt: %w", err)
		}
		line, err := conn.ReadLine()
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch cmd, args := strings.ToLower(fields[0]), fields[1:]; cmd {
		case "quit", "exit":
			_ = conn.WriteLine(telnet.Colorize(telnet.Cyan, "Goodbye!"))
			return nil
		case "login":
			acct, ok, err := h.login(ctx, conn, args)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			log.Info("player logged in", zap.String("username", acct.Username))
			return h.play(ctx, conn, acct.Username)
		case "register":
			if err := h.register(ctx, conn, args); err != nil {
				return err
			}
		case "help":
			_ = conn.Write([]byte(welcomeBanner))
		default:
			_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Unknown command: "+cmd+". Type 'help' for available commands."))
		}
	}
}

// login authenticates a player. The password may follow the username or is
// prompted for with echo off.
//
// Postcondition: ok is false when the failure was shown to the player.
func (h *AuthHandler) login(ctx context.Context, conn *telnet.Conn, args []string) (acct storage.Account, ok bool, err error) {
	if len(args) == 0 || len(args) > 2 {
		return acct, false, conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: login <username> [password]"))
	}
	username := args[0]
	var password string
	if len(args) == 2 {
		password = args[1]
	} else {
		if err := conn.WritePrompt("Password: "); err != nil {
			return acct, false, fmt.Errorf("writing prompt: %w", err)
		}
		if password, err = conn.ReadPassword(); err != nil {
			return acct, false, fmt.Errorf("reading password: %w", err)
		}
	}

	start := time.Now()
	acct, err = h.accounts.Authenticate(ctx, username, password)
	switch {
	case err == nil:
		_ = conn.WriteLine(telnet.Colorize(telnet.BrightGreen, "Welcome back, "+acct.Username+"!"))
		return acct, true, nil
	case errors.Is(err, storage.ErrAccountNotFound):
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Account not found. Use 'register' to create one."))
	case errors.Is(err, storage.ErrInvalidCredentials):
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "Invalid password."))
	default:
		h.logger.Error("authentication error", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		_ = conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
	}
	return storage.Account{}, false, nil
}

func validUsername(name string) bool {
	if len(name) < 3 || len(name) > 32 {
		return false
	}
	for _, r := range name {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return false
		}
	}
	return true
}

func (h *AuthHandler) register(ctx context.Context, conn *telnet.Conn, args []string) error {
	if len(args) != 2 {
		return conn.WriteLine(telnet.Colorize(telnet.Red, "Usage: register <username> <password>"))
	}
	username, password := args[0], args[1]
	if !validUsername(username) {
		return conn.WriteLine(telnet.Colorize(telnet.Red, "Username must be 3-32 letters, digits or underscores."))
	}
	if len(password) < 6 {
		return conn.WriteLine(telnet.Colorize(telnet.Red, "Password must be at least 6 characters."))
	}

	acct, err := h.accounts.CreateAccount(ctx, username, password)
	if errors.Is(err, storage.ErrAccountExists) {
		return conn.WriteLine(telnet.Colorize(telnet.Red, "That username is already taken."))
	}
	if err != nil {
		h.logger.Error("registration error", zap.Error(err))
		return conn.WriteLine(telnet.Colorize(telnet.Red, "An internal error occurred. Please try again."))
	}
	return conn.WriteLine(telnet.Colorize(telnet.BrightGreen, "Account created: "+acct.Username+". You may now 'login'."))
}
