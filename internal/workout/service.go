package workout

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/m3rciful/habitbot/core/logger"
	"github.com/m3rciful/habitbot/internal/store"
)

// EditResult reports one applied directive.
type EditResult struct {
	Day   Day
	Op    Op
	Count int
}

// Message is the confirmation sent back to the chat.
func (r EditResult) Message() string {
	switch r.Op {
	case OpAdd:
		return "✅ Добавлено в «" + r.Day.Label() + "»."
	default:
		return "✅ Удалено записей из «" + r.Day.Label() + "»: " + strconv.Itoa(r.Count) + "."
	}
}

// Options tune a Service.
type Options struct {
	Location *time.Location
	Now      func() time.Time
}

// Service binds the catalog document to the selector and the editor.
type Service struct {
	doc      *store.Document[Catalog]
	selector *Selector
	loc      *time.Location
	now      func() time.Time
}

// NewService builds a workout service.
func NewService(doc *store.Document[Catalog], selector *Selector, opts Options) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	if selector == nil {
		selector = NewSelector(nil, nil)
	}
	return &Service{doc: doc, selector: selector, loc: loc, now: now}
}

// Today selects the plan for the current local weekday.
func (s *Service) Today(ctx context.Context) (Plan, error) {
	cat, err := s.doc.Read(ctx)
	if err != nil {
		return Plan{}, err
	}
	weekday := s.now().In(s.loc).Weekday()
	plan, err := s.selector.Select(weekday, cat)
	if err != nil {
		logger.Warn(ctx, "workout", "plan.select",
			slog.String("status", "fail"),
			slog.String("weekday", weekday.String()),
			slog.String("err", err.Error()),
		)
		return Plan{}, err
	}
	logger.Debug(ctx, "workout", "plan.select",
		slog.String("status", "ok"),
		slog.String("weekday", weekday.String()),
		slog.String("day", string(plan.Day)),
		slog.Bool("rest", plan.Rest),
	)
	return plan, nil
}

// Describe renders the catalog contents of one day.
func (s *Service) Describe(ctx context.Context, day Day) (string, error) {
	cat, err := s.doc.Read(ctx)
	if err != nil {
		return "", err
	}
	return Describe(cat, day), nil
}

// Edit parses raw as a directive and applies it to day. Invalid directives
// leave the catalog untouched.
func (s *Service) Edit(ctx context.Context, day Day, raw string) (EditResult, error) {
	d, err := ParseDirective(raw)
	if err != nil {
		return EditResult{}, err
	}
	var count int
	err = s.doc.Update(ctx, func(cat *Catalog) error {
		n, err := d.Apply(cat, day)
		count = n
		return err
	})
	if err != nil {
		return EditResult{}, err
	}
	logger.Info(ctx, "workout", "catalog.edit",
		slog.String("status", "ok"),
		slog.String("day", string(day)),
		slog.String("op", string(d.Op)),
		slog.Int("count", count),
	)
	return EditResult{Day: day, Op: d.Op, Count: count}, nil
}
