// Package reminder pushes the day's workout to subscribed chats once per
// local day.
package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/habitbot/core/logger"
	"github.com/m3rciful/habitbot/internal/apperr"
	"github.com/m3rciful/habitbot/internal/workout"
)

// Sender delivers a text message to a chat.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) error
}

// Planner selects today's workout.
type Planner interface {
	Today(ctx context.Context) (workout.Plan, error)
}

// DefaultRetryEvery is how often failed deliveries are retried.
const DefaultRetryEvery = 15 * time.Minute

// Options configure a Reminder.
type Options struct {
	Hour     int
	Minute   int
	Location *time.Location
	Now      func() time.Time
	// RetryEvery spaces same-day retries of failed deliveries.
	RetryEvery time.Duration
}

// Reminder runs the daily push on a cron schedule.
type Reminder struct {
	subs    *Subscribers
	planner Planner
	sender  Sender
	loc     *time.Location
	now     func() time.Time
	spec    string
	retry   time.Duration

	mu   sync.Mutex
	cron *cron.Cron
}

// Spec builds the daily cron expression for hour:minute.
func Spec(hour, minute int) string {
	return fmt.Sprintf("%d %d * * *", minute, hour)
}

// New validates the schedule and binds the collaborators.
func New(subs *Subscribers, planner Planner, sender Sender, opts Options) (*Reminder, error) {
	if subs == nil || planner == nil || sender == nil {
		return nil, fmt.Errorf("reminder: subscribers, planner and sender are required")
	}
	if opts.Hour < 0 || opts.Hour > 23 || opts.Minute < 0 || opts.Minute > 59 {
		return nil, fmt.Errorf("reminder: invalid time %02d:%02d", opts.Hour, opts.Minute)
	}
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	retry := opts.RetryEvery
	if retry <= 0 {
		retry = DefaultRetryEvery
	}
	return &Reminder{
		subs:    subs,
		planner: planner,
		sender:  sender,
		loc:     loc,
		now:     now,
		spec:    Spec(opts.Hour, opts.Minute),
		retry:   retry,
	}, nil
}

// Start schedules the daily run in the configured zone plus the retry job
// for failed deliveries.
func (r *Reminder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLocation(r.loc),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.Recover(cronLogger{})),
	)
	job := func(op string, fn func(context.Context) (int, error)) func() {
		return func() {
			if _, err := fn(ctx); err != nil {
				logger.Error(ctx, "reminder", "run",
					slog.String("status", "fail"),
					slog.String("op", op),
					slog.String("err", err.Error()),
				)
			}
		}
	}
	if _, err := c.AddFunc(r.spec, job("daily", r.RunDue)); err != nil {
		return fmt.Errorf("reminder: schedule %q: %w", r.spec, err)
	}
	c.Schedule(cron.Every(r.retry), cron.FuncJob(job("retry", r.RetryFailed)))
	c.Start()
	r.cron = c
	logger.Info(ctx, "reminder", "scheduler.start",
		slog.String("status", "ok"),
		slog.String("spec", r.spec),
		slog.Duration("retry_every", r.retry),
		slog.String("tz", r.loc.String()),
	)
	return nil
}

// Stop halts the scheduler and waits for a running job.
func (r *Reminder) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}

type runMode string

const (
	modeDue       runMode = "due"
	modeBroadcast runMode = "broadcast"
	modeRetry     runMode = "retry"
)

// RunDue reminds every chat not yet reminded today and returns the number
// of messages sent.
func (r *Reminder) RunDue(ctx context.Context) (int, error) {
	return r.run(ctx, modeDue)
}

// Broadcast reminds every subscribed chat, ignoring the daily guard.
func (r *Reminder) Broadcast(ctx context.Context) (int, error) {
	return r.run(ctx, modeBroadcast)
}

// RetryFailed resends today's reminder to chats whose delivery failed
// earlier today. Chats that were never attempted are left to RunDue.
func (r *Reminder) RetryFailed(ctx context.Context) (int, error) {
	return r.run(ctx, modeRetry)
}

func (r *Reminder) run(ctx context.Context, mode runMode) (int, error) {
	date := r.now().In(r.loc).Format("2006-01-02")
	var due []int64
	var err error
	if mode == modeRetry {
		due, err = r.subs.claimPending(ctx, date)
	} else {
		due, err = r.subs.claim(ctx, date, mode == modeBroadcast)
	}
	if err != nil {
		return 0, fmt.Errorf("claim subscribers: %w", err)
	}
	if len(due) == 0 {
		logger.Debug(ctx, "reminder", "run",
			slog.String("status", "skip"),
			slog.String("op", string(mode)),
			slog.String("date", date),
		)
		return 0, nil
	}

	text, err := r.message(ctx)
	if err != nil {
		for _, id := range due {
			_ = r.subs.release(ctx, id, date)
		}
		return 0, err
	}

	sent := 0
	for _, id := range due {
		if err := r.sender.Send(ctx, id, text); err != nil {
			logger.Warn(ctx, "reminder", "send",
				slog.String("status", "fail"),
				slog.Int64("chat_id", id),
				slog.String("err", err.Error()),
			)
			if rerr := r.subs.release(ctx, id, date); rerr != nil {
				logger.Error(ctx, "reminder", "release",
					slog.String("status", "fail"),
					slog.Int64("chat_id", id),
					slog.String("err", rerr.Error()),
				)
			}
			continue
		}
		sent++
	}
	logger.Info(ctx, "reminder", "run",
		slog.String("status", "ok"),
		slog.String("date", date),
		slog.String("op", string(mode)),
		slog.Int("reminders", len(due)),
		slog.Int("count", sent),
	)
	return sent, nil
}

// message renders today's plan; catalog gaps are sent as their user message.
func (r *Reminder) message(ctx context.Context) (string, error) {
	plan, err := r.planner.Today(ctx)
	if msg, ok := apperr.UserMessage(err); ok {
		return msg, nil
	}
	if err != nil {
		return "", fmt.Errorf("select workout: %w", err)
	}
	return plan.Render(), nil
}

// cronLogger forwards cron's own events to the reminder component logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.Component("reminder").Debug("cron."+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	args := append([]any{"err", err}, keysAndValues...)
	logger.Component("reminder").Error("cron."+msg, args...)
}
