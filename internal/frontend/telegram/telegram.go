// Package telegram serves the bot over the Telegram Bot API using long polling.
package telegram

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/fate/internal/bot"
	"github.com/cory-johannsen/fate/internal/config"
)

// Dispatcher handles one chat message. *bot.Service satisfies it.
type Dispatcher interface {
	Handle(ctx context.Context, m bot.Message) (bot.Reply, bool)
	Prefix() string
}

// botAPI is the subset of *tgbotapi.BotAPI the frontend calls.
type botAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Frontend relays Telegram messages to a Dispatcher.
type Frontend struct {
	api        botAPI
	dispatcher Dispatcher
	timeout    int
	logger     *zap.Logger
}

// New authenticates with the Bot API.
//
// Precondition: cfg.Token must be set.
// Postcondition: Returns a Frontend ready to Run or a non-nil error.
func New(cfg config.TelegramConfig, dispatcher Dispatcher, logger *zap.Logger) (*Frontend, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	api.Debug = cfg.Debug
	logger.Info("telegram authorised", zap.String("bot", api.Self.UserName))
	return newFrontend(api, dispatcher, int(cfg.PollTimeout.Seconds()), logger), nil
}

func newFrontend(api botAPI, dispatcher Dispatcher, timeout int, logger *zap.Logger) *Frontend {
	return &Frontend{api: api, dispatcher: dispatcher, timeout: timeout, logger: logger}
}

// Run polls for updates until ctx is cancelled. Messages are handled one at
// a time in arrival order.
func (f *Frontend) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = f.timeout
	updates := f.api.GetUpdatesChan(u)
	defer f.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			f.logger.Info("telegram stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			if upd.Message != nil {
				f.handle(ctx, upd.Message)
			}
		}
	}
}

func (f *Frontend) handle(ctx context.Context, m *tgbotapi.Message) {
	if m.From == nil || m.Chat == nil {
		return
	}
	msg := bot.Message{
		UserID:    "telegram:" + strconv.FormatInt(m.From.ID, 10),
		ChannelID: "telegram:" + strconv.FormatInt(m.Chat.ID, 10),
		Text:      commandText(m, f.dispatcher.Prefix()),
	}
	logger := f.logger.With(zap.String("update", uuid.NewString()), zap.Int64("chat", m.Chat.ID))
	logger.Debug("message received", zap.Int64("user", m.From.ID))

	reply, ok := f.dispatcher.Handle(ctx, msg)
	if !ok {
		return
	}

	out := tgbotapi.NewMessage(m.Chat.ID, RenderReply(displayName(m.From), reply))
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyToMessageID = m.MessageID
	if _, err := f.api.Send(out); err != nil {
		logger.Warn("sending reply", zap.Error(err))
		return
	}
	logger.Debug("reply sent")
}

// commandText rewrites a native "/roll@bot 1d6" command into the prefixed
// form the dispatcher understands. Other text is returned unchanged.
func commandText(m *tgbotapi.Message, prefix string) string {
	if !m.IsCommand() {
		return m.Text
	}
	text := prefix + m.Command()
	if args := m.CommandArguments(); args != "" {
		text += " " + args
	}
	return text
}

func displayName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	if u.LastName != "" {
		return u.FirstName + " " + u.LastName
	}
	return u.FirstName
}
