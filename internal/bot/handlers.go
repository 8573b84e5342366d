package bot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/habitbot/core/logger"
	tghelpers "github.com/m3rciful/habitbot/core/telegram/helpers"
	"github.com/m3rciful/habitbot/core/telegram/keyboard"
	"github.com/m3rciful/habitbot/internal/conversation"

	tele "gopkg.in/telebot.v4"
)

const (
	textRemindSent     = "📣 Напоминание отправлено в чатов: %d"
	textRemindDisabled = "Напоминания выключены в настройках."
	textSlowDown       = "⏳ Не так быстро, попробуй через секунду."
)

func replyMarkup(k conversation.Keyboard) *tele.ReplyMarkup {
	return keyboard.ReplyButtons(k.Rows()...)
}

// InProgress reports whether the chat is inside a conversation flow.
func (a *App) InProgress(chatID int64) bool {
	return a.machine.InProgress(chatID)
}

// Handle routes a text message through the conversation machine.
func (a *App) Handle(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	resp, err := a.machine.Handle(ctx, tghelpers.ChatID(c), c.Text())
	return a.respond(ctx, c, resp, err)
}

func (a *App) handleStart(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	resp, err := a.machine.Start(ctx, tghelpers.ChatID(c))
	return a.respond(ctx, c, resp, err)
}

func (a *App) handleCancel(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	return a.respond(ctx, c, a.machine.Cancel(ctx, tghelpers.ChatID(c)), nil)
}

// handleRemind pushes today's workout to every subscriber right away.
func (a *App) handleRemind(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	if a.reminder == nil {
		return a.respond(ctx, c, conversation.Response{Text: textRemindDisabled, Keyboard: conversation.KeyboardMenu}, nil)
	}
	n, err := a.reminder.Broadcast(ctx)
	return a.respond(ctx, c, conversation.Response{
		Text:     fmt.Sprintf(textRemindSent, n),
		Keyboard: conversation.KeyboardMenu,
	}, err)
}

// handleUnknown answers updates no route understands with the menu.
func (a *App) handleUnknown(c tele.Context) error {
	return tghelpers.SendText(c, conversation.FallbackText(), a.markups[conversation.KeyboardMenu])
}

func (a *App) handleLimited(c tele.Context) error {
	return tghelpers.SendText(c, textSlowDown, nil)
}

// respond renders resp. An infrastructure error is logged and answered with
// the generic failure text; it is still returned for the handler summary.
func (a *App) respond(ctx context.Context, c tele.Context, resp conversation.Response, err error) error {
	if err != nil {
		logger.Error(ctx, "conversation", "handle",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
		if sendErr := tghelpers.SendText(c, conversation.FailureText(), a.markups[conversation.KeyboardMenu]); sendErr != nil {
			return fmt.Errorf("%w (reply failed: %v)", err, sendErr)
		}
		return err
	}

	markup := a.markups[resp.Keyboard]
	if doc := resp.Document; doc != nil {
		if err := tghelpers.SendDocument(c, doc.FileName, doc.Data, "", markup); err != nil {
			return err
		}
	}
	if resp.Text == "" {
		return nil
	}
	if resp.Markdown {
		return tghelpers.SendMD(c, resp.Text, markup)
	}
	return tghelpers.SendText(c, resp.Text, markup)
}
