package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/habitbot/core/logger"
	"github.com/m3rciful/habitbot/internal/store"
)

// WeekDays is the size of the trailing statistics window, today included.
const WeekDays = 7

// Manager mutates the ledger document.
type Manager struct {
	doc *store.Document[Ledger]
	loc *time.Location
	now func() time.Time
}

// Options configure a Manager.
type Options struct {
	Location *time.Location
	// Now overrides the clock; tests pin it.
	Now func() time.Time
}

// NewManager binds the ledger document.
func NewManager(doc *store.Document[Ledger], opts Options) *Manager {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Manager{doc: doc, loc: loc, now: now}
}

// NewDocument opens the ledger document with its default shape.
func NewDocument(backend store.Backend, name string) (*store.Document[Ledger], error) {
	return store.NewDocument(backend, store.DocumentOptions[Ledger]{
		Name:      name,
		Default:   Default,
		Normalize: Normalize,
	})
}

func (m *Manager) today() time.Time {
	return m.now().In(m.loc)
}

// DateKey formats t as an expenses map key in the manager's zone.
func (m *Manager) DateKey(t time.Time) string {
	return t.In(m.loc).Format(DateLayout)
}

// EnsureHabitStart initializes the habit start to the next local midnight
// when it has never been set, and returns the stored value.
func (m *Manager) EnsureHabitStart(ctx context.Context) (time.Time, error) {
	current, err := m.doc.Read(ctx)
	if err != nil {
		return time.Time{}, fmt.Errorf("read ledger: %w", err)
	}
	if current.HabitStart != nil {
		return *current.HabitStart, nil
	}

	var start time.Time
	err = m.doc.Update(ctx, func(l *Ledger) error {
		if l.HabitStart != nil {
			start = *l.HabitStart
			return nil
		}
		y, mo, d := m.today().Date()
		next := time.Date(y, mo, d+1, 0, 0, 0, 0, m.loc)
		l.HabitStart = &next
		start = next
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("init habit start: %w", err)
	}
	logger.Info(ctx, "ledger", "habit.start",
		slog.String("status", "ok"),
		slog.Time("start", start),
	)
	return start, nil
}

// HabitProgress reports the time elapsed since the habit start.
func (m *Manager) HabitProgress(ctx context.Context) (Progress, error) {
	start, err := m.EnsureHabitStart(ctx)
	if err != nil {
		return Progress{}, err
	}
	delta := m.now().Sub(start)
	p := Progress{Start: start}
	if delta < 0 {
		return p, nil
	}
	p.Started = true
	p.Days = int(delta / (24 * time.Hour))
	rest := delta % (24 * time.Hour)
	p.Hours = int(rest / time.Hour)
	p.Minutes = int((rest % time.Hour) / time.Minute)
	return p, nil
}

// RecordExpense parses raw and appends it to today's entries. A parse
// failure is returned as is and leaves the document untouched.
func (m *Manager) RecordExpense(ctx context.Context, raw string) (Receipt, error) {
	entry, err := ParseExpense(raw)
	if err != nil {
		return Receipt{}, err
	}

	key := m.DateKey(m.today())
	receipt := Receipt{Entry: entry, Date: key}
	err = m.doc.Update(ctx, func(l *Ledger) error {
		l.Expenses[key] = append(l.Expenses[key], entry)
		receipt.NewCategory = l.addCategory(entry.Category)
		receipt.DayTotal = l.DayTotal(key)
		return nil
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("record expense: %w", err)
	}
	logger.Info(ctx, "ledger", "expense.recorded",
		slog.String("status", "ok"),
		slog.String("date", key),
		slog.String("category", logger.SanitizeLimit(entry.Category, 64)),
		slog.String("amount", entry.Amount.String()),
		slog.Bool("new_category", receipt.NewCategory),
	)
	return receipt, nil
}

// Statistics aggregates today's total and the trailing week by category.
func (m *Manager) Statistics(ctx context.Context) (Stats, error) {
	l, err := m.doc.Read(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("read ledger: %w", err)
	}

	today := m.today()
	stats := Stats{Today: l.DayTotal(m.DateKey(today)), Week: decimal.Zero}
	index := map[string]int{}
	y, mo, d := today.Date()
	for i := 0; i < WeekDays; i++ {
		key := time.Date(y, mo, d-i, 12, 0, 0, 0, m.loc).Format(DateLayout)
		dayTotal := decimal.Zero
		for _, e := range l.Expenses[key] {
			dayTotal = dayTotal.Add(e.Amount)
			pos, ok := index[e.Category]
			if !ok {
				pos = len(stats.ByCategory)
				index[e.Category] = pos
				stats.ByCategory = append(stats.ByCategory, CategoryTotal{Category: e.Category, Total: decimal.Zero})
			}
			stats.ByCategory[pos].Total = stats.ByCategory[pos].Total.Add(e.Amount)
		}
		stats.Days = append(stats.Days, DayStat{Date: key, Total: dayTotal})
		stats.Week = stats.Week.Add(dayTotal)
	}
	return stats, nil
}

// ResetAll clears every recorded expense. Categories and the habit start
// survive. Callers must have obtained an explicit confirmation.
func (m *Manager) ResetAll(ctx context.Context) error {
	var dropped int
	err := m.doc.Update(ctx, func(l *Ledger) error {
		for _, entries := range l.Expenses {
			dropped += len(entries)
		}
		l.Expenses = map[string][]Entry{}
		return nil
	})
	if err != nil {
		return fmt.Errorf("reset expenses: %w", err)
	}
	logger.Warn(ctx, "ledger", "expenses.reset",
		slog.String("status", "ok"),
		slog.Int("count", dropped),
	)
	return nil
}

// Export returns the encoded ledger document for download.
func (m *Manager) Export(ctx context.Context) (Export, error) {
	data, err := m.doc.Raw(ctx)
	if err != nil {
		return Export{}, fmt.Errorf("export ledger: %w", err)
	}
	return Export{FileName: m.doc.Name(), Data: data}, nil
}
