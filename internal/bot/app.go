// Package bot wires the ledger, the workout service, the conversation
// machine and the reminder into the shared Telegram runtime.
package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/m3rciful/habitbot/core/bootstrap"
	"github.com/m3rciful/habitbot/internal/config"
	"github.com/m3rciful/habitbot/internal/conversation"
	"github.com/m3rciful/habitbot/internal/ledger"
	"github.com/m3rciful/habitbot/internal/reminder"
	"github.com/m3rciful/habitbot/internal/store"
	"github.com/m3rciful/habitbot/internal/workout"

	tele "gopkg.in/telebot.v4"
)

// Options override the clock and the random source, mostly for tests.
type Options struct {
	Now    func() time.Time
	Source rand.Source
}

// App is the habit bot: domain services plus the Telegram glue.
type App struct {
	cfg     *config.Config
	backend store.Backend

	ledger   *ledger.Manager
	workouts *workout.Service
	subs     *reminder.Subscribers
	machine  *conversation.Machine
	reminder *reminder.Reminder
	outbox   *outbox

	markups map[conversation.Keyboard]*tele.ReplyMarkup
}

// Bootstrap initializes logging and storage for cfg and builds the App.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, error) {
	opts := bootstrap.Options{Config: &cfg.Config}
	if cfg.UsesDatabase() {
		db := cfg.Database
		opts.Database = &db
	}
	infra, err := bootstrap.Run(ctx, opts)
	if err != nil {
		return nil, err
	}

	var backend store.Backend
	if infra.DB != nil {
		backend = store.NewSQLBackend(infra.DB)
	} else {
		fb, err := store.NewFileBackend(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		backend = fb
	}

	app, err := New(cfg, backend, Options{})
	if err != nil {
		return nil, errors.Join(err, backend.Close())
	}
	return app, nil
}

// New builds the App on top of an open storage backend.
func New(cfg *config.Config, backend store.Backend, opts Options) (*App, error) {
	if cfg == nil || backend == nil {
		return nil, fmt.Errorf("bot: config and backend are required")
	}
	loc := cfg.Location()

	ledgerDoc, err := ledger.NewDocument(backend, cfg.Storage.LedgerDoc)
	if err != nil {
		return nil, fmt.Errorf("bot: ledger document: %w", err)
	}
	catalogDoc, err := workout.NewDocument(backend, cfg.Storage.CatalogDoc)
	if err != nil {
		return nil, fmt.Errorf("bot: catalog document: %w", err)
	}
	subs, err := reminder.NewSubscribers(backend, cfg.Storage.SubscribersDoc)
	if err != nil {
		return nil, fmt.Errorf("bot: subscribers document: %w", err)
	}

	policy, err := workout.PolicyByName(cfg.Workout.Rotation)
	if err != nil {
		return nil, err
	}
	src := opts.Source
	if src == nil && cfg.Workout.Seed != 0 {
		src = rand.NewPCG(cfg.Workout.Seed, cfg.Workout.Seed)
	}

	a := &App{
		cfg:     cfg,
		backend: backend,
		ledger:  ledger.NewManager(ledgerDoc, ledger.Options{Location: loc, Now: opts.Now}),
		workouts: workout.NewService(catalogDoc, workout.NewSelector(policy, src),
			workout.Options{Location: loc, Now: opts.Now}),
		subs:    subs,
		outbox:  &outbox{},
		markups: make(map[conversation.Keyboard]*tele.ReplyMarkup),
	}

	a.machine, err = conversation.New(conversation.Options{
		Ledger:      a.ledger,
		Workouts:    a.workouts,
		Subscribers: subs,
		Currency:    cfg.Bot.Currency,
	})
	if err != nil {
		return nil, err
	}

	if cfg.ReminderEnabled() {
		a.reminder, err = reminder.New(subs, a.workouts, a.outbox, reminder.Options{
			Hour:     *cfg.Reminder.Hour,
			Minute:   cfg.Reminder.Minute,
			Location: loc,
			Now:      opts.Now,
		})
		if err != nil {
			return nil, err
		}
	}

	for _, k := range []conversation.Keyboard{
		conversation.KeyboardMenu,
		conversation.KeyboardCancel,
		conversation.KeyboardConfirm,
		conversation.KeyboardDays,
	} {
		a.markups[k] = replyMarkup(k)
	}
	a.outbox.menu = a.markups[conversation.KeyboardMenu]
	return a, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.backend.Close()
}
