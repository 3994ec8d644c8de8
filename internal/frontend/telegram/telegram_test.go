package telegram

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/fate/internal/bot"
	"github.com/cory-johannsen/fate/internal/game/roll"
)

type fakeAPI struct {
	updates chan tgbotapi.Update
	sendErr error

	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	stopped bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update)}
}

func (f *fakeAPI) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) messages() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

type recordingDispatcher struct {
	mu       sync.Mutex
	received []bot.Message
}

func (d *recordingDispatcher) Prefix() string { return "--" }

func (d *recordingDispatcher) Handle(_ context.Context, m bot.Message) (bot.Reply, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.received = append(d.received, m)
	if m.Text == "chatter" {
		return bot.Reply{}, false
	}
	return bot.Reply{Description: "Total: `4`", Color: roll.ColorNeutral}, true
}

func command(text string, length int) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 7,
		Text:      text,
		From:      &tgbotapi.User{ID: 42, UserName: "tobias"},
		Chat:      &tgbotapi.Chat{ID: -100},
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: length}},
	}
}

func TestCommandText(t *testing.T) {
	assert.Equal(t, "--roll 1d6", commandText(command("/roll 1d6", 5), "--"))
	assert.Equal(t, "--roll 1d6", commandText(command("/roll@fate_bot 1d6", 14), "--"))
	assert.Equal(t, "--list", commandText(command("/list", 5), "--"))

	plain := &tgbotapi.Message{Text: "1d6 + 2"}
	assert.Equal(t, "1d6 + 2", commandText(plain, "--"))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "@tobias", displayName(&tgbotapi.User{UserName: "tobias", FirstName: "T"}))
	assert.Equal(t, "Tobias Grey", displayName(&tgbotapi.User{FirstName: "Tobias", LastName: "Grey"}))
	assert.Equal(t, "Tobias", displayName(&tgbotapi.User{FirstName: "Tobias"}))
}

func TestRun_RelaysMessages(t *testing.T) {
	api := newFakeAPI()
	d := &recordingDispatcher{}
	f := newFrontend(api, d, 60, zaptest.NewLogger(t))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	api.updates <- tgbotapi.Update{Message: command("/roll 1d6", 5)}
	api.updates <- tgbotapi.Update{Message: &tgbotapi.Message{
		Text: "chatter",
		From: &tgbotapi.User{ID: 42},
		Chat: &tgbotapi.Chat{ID: -100},
	}}
	api.updates <- tgbotapi.Update{}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}

	require.Len(t, d.received, 2)
	assert.Equal(t, bot.Message{UserID: "telegram:42", ChannelID: "telegram:-100", Text: "--roll 1d6"}, d.received[0])

	sent := api.messages()
	require.Len(t, sent, 1, "ignored messages get no reply")
	assert.Equal(t, int64(-100), sent[0].ChatID)
	assert.Equal(t, 7, sent[0].ReplyToMessageID)
	assert.Equal(t, tgbotapi.ModeHTML, sent[0].ParseMode)
	assert.Equal(t, "🎲 <b>@tobias</b>\nTotal: <code>4</code>", sent[0].Text)
	assert.True(t, api.stopped)
}

func TestHandle_LogsCarryUpdateID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	api := newFakeAPI()
	api.sendErr = errors.New("bad gateway")
	f := newFrontend(api, &recordingDispatcher{}, 60, zap.New(core))

	f.handle(context.Background(), command("/roll 1d6", 5))
	f.handle(context.Background(), command("/roll 1d6", 5))

	received := logs.FilterMessage("message received").All()
	failed := logs.FilterMessage("sending reply").All()
	require.Len(t, received, 2)
	require.Len(t, failed, 2)

	first, ok := received[0].ContextMap()["update"].(string)
	require.True(t, ok)
	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.Equal(t, first, failed[0].ContextMap()["update"], "one id per update")
	assert.NotEqual(t, first, received[1].ContextMap()["update"])
	assert.Equal(t, int64(-100), failed[0].ContextMap()["chat"])
	assert.Empty(t, logs.FilterMessage("reply sent").All())
}

func TestRenderReply(t *testing.T) {
	r := bot.Reply{
		Description: "Target: `40` | Roll: `25` | Degrees: `+2`",
		Footer:      "Parry on Weapon Skill",
		Color:       roll.ColorSuccess,
		Profile:     "Brother <Tobias>",
	}
	assert.Equal(t,
		"✅ <b>@t as Brother &lt;Tobias&gt;</b>\nTarget: <code>40</code> | Roll: <code>25</code> | Degrees: <code>+2</code>\n<i>Parry on Weapon Skill</i>",
		RenderReply("@t", r),
	)
}

func TestRenderReply_Warning(t *testing.T) {
	assert.Equal(t, "⚠️", RenderReply("@t", bot.Reply{Warning: true}))
	assert.Equal(t, "⚠️ No macro named <code>a&amp;b</code>.", RenderReply("@t", bot.Reply{Warning: true, Description: "No macro named `a&b`."}))
}

func TestCodeSpans_Unmatched(t *testing.T) {
	assert.Equal(t, "<code>a</code> b`c", codeSpans("`a` b`c"))
	assert.Equal(t, "1 &lt; 2", codeSpans("1 < 2"))
}
