package bot

import (
	"context"
	"errors"
	"sync"

	"github.com/m3rciful/habitbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// errOffline is returned while the Telegram runtime is not running.
var errOffline = errors.New("bot: telegram runtime is not running")

// messenger is the part of *tele.Bot the outbox needs.
type messenger interface {
	Send(to tele.Recipient, what any, opts ...any) (*tele.Message, error)
}

// outbox delivers reminder messages through the runtime's dispatcher. It is
// bound when the runtime starts and unbound when it stops.
type outbox struct {
	mu   sync.RWMutex
	bot  messenger
	disp *sender.Dispatcher
	menu *tele.ReplyMarkup
}

func (o *outbox) bind(bot messenger, disp *sender.Dispatcher) {
	o.mu.Lock()
	o.bot, o.disp = bot, disp
	o.mu.Unlock()
}

// Send blocks until Telegram accepted the message or retries ran out, so
// the reminder can release the chat's daily claim on failure.
func (o *outbox) Send(ctx context.Context, chatID int64, text string) error {
	o.mu.RLock()
	bot, disp, menu := o.bot, o.disp, o.menu
	o.mu.RUnlock()
	if bot == nil {
		return errOffline
	}
	send := func() error {
		_, err := bot.Send(tele.ChatID(chatID), text, &tele.SendOptions{ReplyMarkup: menu})
		return err
	}
	if disp == nil {
		return send()
	}
	return disp.Do(ctx, "reminder.send", "sendMessage", send)
}
