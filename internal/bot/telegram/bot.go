package telegram

import (
	"context"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"creditbot/internal/service/flow"
)

const pollTimeoutSeconds = 30

// Bot adapts the Telegram Bot API to the conversation engine: it maps
// incoming updates onto engine events and implements flow.Responder for the
// outbound direction.
type Bot struct {
	api        *tgbotapi.BotAPI
	dispatcher *Dispatcher
}

// New authenticates against the Bot API with the supplied token.
func New(token string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, dispatcher: NewDispatcher()}, nil
}

// Run long-polls for updates and feeds them to the engine until ctx is
// cancelled. Handlers for one user run strictly sequentially; see
// Dispatcher. Returns after every in-flight handler has finished.
func (b *Bot) Run(ctx context.Context, engine *flow.Engine) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(u)

	log.Printf("[telegram] authorized on account %s", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.dispatcher.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.dispatcher.Wait()
				return nil
			}
			b.dispatch(ctx, engine, update)
		}
	}
}

// dispatch routes one update onto the owning user's mailbox. Failures stay
// local to the handler; the update loop never dies on a bad event.
func (b *Bot) dispatch(ctx context.Context, engine *flow.Engine, update tgbotapi.Update) {
	switch {
	case update.Message != nil:
		m := update.Message
		if m.From == nil {
			return
		}
		ev := flow.Message{UserID: m.From.ID, ChatID: m.Chat.ID, Text: m.Text}
		command := ""
		if m.IsCommand() {
			command = m.Command()
		}
		b.dispatcher.Submit(ev.UserID, func() {
			var err error
			switch command {
			case "start":
				err = engine.Start(ctx, ev)
			case "check_credit":
				err = engine.BeginCheck(ctx, ev)
			default:
				err = engine.HandleText(ctx, ev)
			}
			if err != nil {
				log.Printf("[telegram] handler for user %d failed: %v", ev.UserID, err)
			}
		})

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		press := flow.ButtonPress{
			UserID:     cb.From.ID,
			CallbackID: cb.ID,
			Data:       cb.Data,
		}
		if cb.Message != nil {
			press.ChatID = cb.Message.Chat.ID
			press.MessageID = cb.Message.MessageID
		}
		b.dispatcher.Submit(press.UserID, func() {
			if err := engine.HandleButton(ctx, press); err != nil {
				log.Printf("[telegram] callback handler for user %d failed: %v", press.UserID, err)
			}
		})
	}
}

// SendText delivers a Markdown-formatted reply.
func (b *Bot) SendText(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	return err
}

// SendChoices delivers a prompt with two inline buttons, one per row.
func (b *Bot) SendChoices(_ context.Context, chatID int64, text string, choices [2]flow.Choice) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(choices[0].Label, choices[0].Data),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(choices[1].Label, choices[1].Data),
		),
	)
	_, err := b.api.Send(msg)
	return err
}

// EditText rewrites a previously sent message in place.
func (b *Bot) EditText(_ context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(edit)
	return err
}

// AnswerCallback acknowledges a button press, dismissing the client-side
// spinner. With alert set, text pops up as a modal notice.
func (b *Bot) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	_, err := b.api.Request(cb)
	return err
}
