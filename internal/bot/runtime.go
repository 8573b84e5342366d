package bot

import (
	"context"

	coretelegram "github.com/m3rciful/habitbot/core/telegram"
	"github.com/m3rciful/habitbot/core/telegram/router"
)

// Registry declares the bot commands.
func (a *App) Registry() *coretelegram.Registry {
	reg := coretelegram.NewRegistry()
	reg.RegisterCommand("/start", coretelegram.Command{
		Handler:     a.handleStart,
		Description: "Запустить бота и подписаться на напоминания",
	})
	reg.RegisterCommand("/cancel", coretelegram.Command{
		Handler:     a.handleCancel,
		Description: "Отменить текущее действие",
		Aliases:     []string{"отмена"},
	})
	reg.RegisterCommand("/remind", coretelegram.Command{
		Handler:     a.handleRemind,
		Description: "Разослать тренировку всем подписчикам",
		AdminOnly:   true,
	})
	reg.SetTextFallback(a.Handle)
	return reg
}

// TelegramRunOptions assembles middlewares, routes and lifecycle hooks.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	reg := a.Registry()

	routes := router.CommandRoutes(reg, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: a.handleUnknown,
	})
	routes = append(routes, router.TextRoutes(a, reg, router.TextOptions{
		UnknownDocument: a.handleUnknown,
	})...)

	return coretelegram.RunOptions{
		Config:      &a.cfg.Config,
		Registry:    reg,
		Middlewares: coretelegram.DefaultMiddlewares(&a.cfg.Config, a.handleLimited),
		Routes:      routes,
		OnStart:     a.onStart,
		OnStop:      a.onStop,
	}, nil
}

func (a *App) onStart(ctx context.Context, rt coretelegram.Runtime) error {
	a.outbox.bind(rt.Bot, rt.Dispatcher)
	if a.reminder == nil {
		return nil
	}
	return a.reminder.Start(ctx)
}

func (a *App) onStop(_ context.Context, _ coretelegram.Runtime) error {
	if a.reminder != nil {
		a.reminder.Stop()
	}
	a.outbox.bind(nil, nil)
	return nil
}
