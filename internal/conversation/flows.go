package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/habitbot/core/logger"
	"github.com/m3rciful/habitbot/core/telegram/state"
	"github.com/m3rciful/habitbot/internal/apperr"
	"github.com/m3rciful/habitbot/internal/workout"
)

func (m *Machine) showProgress(ctx context.Context, _ int64) (Response, error) {
	p, err := m.ledger.HabitProgress(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("habit progress: %w", err)
	}
	if !p.Started {
		return Response{Text: textCountdownPending, Keyboard: KeyboardMenu}, nil
	}
	return Response{
		Text:     fmt.Sprintf(textCountdown, p.Days, p.Hours, p.Minutes),
		Keyboard: KeyboardMenu,
	}, nil
}

func (m *Machine) showWorkout(ctx context.Context, _ int64) (Response, error) {
	plan, err := m.workouts.Today(ctx)
	if msg, ok := apperr.UserMessage(err); ok {
		return Response{Text: msg, Keyboard: KeyboardMenu}, nil
	}
	if err != nil {
		return Response{}, fmt.Errorf("select workout: %w", err)
	}
	return Response{Text: plan.Render(), Keyboard: KeyboardMenu}, nil
}

func (m *Machine) showStats(ctx context.Context, _ int64) (Response, error) {
	stats, err := m.ledger.Statistics(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("statistics: %w", err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, textStatsHeader,
		stats.Today.StringFixed(2), m.currency,
		stats.Week.StringFixed(2), m.currency,
	)
	if len(stats.ByCategory) == 0 {
		b.WriteString(textStatsEmpty)
	}
	for _, c := range stats.ByCategory {
		fmt.Fprintf(&b, textStatsCategory, c.Category, c.Total.StringFixed(2), m.currency)
	}
	return Response{Text: strings.TrimRight(b.String(), "\n"), Keyboard: KeyboardMenu}, nil
}

func (m *Machine) download(ctx context.Context, _ int64) (Response, error) {
	exp, err := m.ledger.Export(ctx)
	if err != nil {
		return Response{}, fmt.Errorf("export: %w", err)
	}
	return Response{
		Keyboard: KeyboardMenu,
		Document: &Document{FileName: exp.FileName, Data: exp.Data},
	}, nil
}

func (m *Machine) beginExpense(ctx context.Context, chatID int64) (Response, error) {
	m.enter(ctx, chatID, state.Session{State: StateAwaitingExpense})
	return Response{Text: textExpensePrompt, Keyboard: KeyboardCancel, Markdown: true}, nil
}

func (m *Machine) beginReset(ctx context.Context, chatID int64) (Response, error) {
	m.enter(ctx, chatID, state.Session{State: StateAwaitingResetConfirm})
	return Response{Text: textResetPrompt, Keyboard: KeyboardConfirm, Markdown: true}, nil
}

func (m *Machine) beginEdit(ctx context.Context, chatID int64) (Response, error) {
	m.enter(ctx, chatID, state.Session{State: StateAwaitingEditDay})
	return Response{Text: textEditDayPrompt, Keyboard: KeyboardDays}, nil
}

// handleExpense keeps the flow open on malformed input so the user can retry.
func (m *Machine) handleExpense(ctx context.Context, chatID int64, sess state.Session, text string) (Response, error) {
	receipt, err := m.ledger.RecordExpense(ctx, text)
	if apperr.IsParse(err) {
		logger.Debug(ctx, "conversation", "expense.reprompt",
			slog.String("status", "skip"),
			slog.Int64("chat_id", chatID),
			slog.String("err", err.Error()),
		)
		return Response{Text: textExpenseFormat, Keyboard: KeyboardCancel, Markdown: true}, nil
	}
	if err != nil {
		return Response{}, err
	}
	m.finish(ctx, chatID, sess.State)
	return Response{
		Text: fmt.Sprintf(textExpenseAdded,
			receipt.Entry.Category, receipt.Entry.Amount.String(), m.currency,
			receipt.DayTotal.String(), m.currency,
		),
		Keyboard: KeyboardMenu,
	}, nil
}

func (m *Machine) handleResetConfirm(ctx context.Context, chatID int64, sess state.Session, text string) (Response, error) {
	m.finish(ctx, chatID, sess.State)
	if !strings.EqualFold(text, ConfirmWord) {
		return Response{Text: textResetCancelled, Keyboard: KeyboardMenu}, nil
	}
	if err := m.ledger.ResetAll(ctx); err != nil {
		return Response{}, err
	}
	return Response{Text: textResetDone, Keyboard: KeyboardMenu}, nil
}

func (m *Machine) handleEditDay(ctx context.Context, chatID int64, sess state.Session, text string) (Response, error) {
	day, ok := workout.ParseDay(text)
	if !ok {
		m.finish(ctx, chatID, sess.State)
		return Response{Text: textEditDayError, Keyboard: KeyboardMenu}, nil
	}
	current, err := m.workouts.Describe(ctx, day)
	if err != nil {
		return Response{}, fmt.Errorf("describe %s: %w", day, err)
	}
	m.enter(ctx, chatID, state.Session{
		State: StateAwaitingEditCommand,
		Data:  map[string]string{KeyEditDay: string(day)},
	})
	return Response{Text: current + "\n\n" + workout.DirectiveHelp, Keyboard: KeyboardCancel}, nil
}

// handleEditCommand applies exactly one directive and always leaves the flow.
func (m *Machine) handleEditCommand(ctx context.Context, chatID int64, sess state.Session, text string) (Response, error) {
	m.finish(ctx, chatID, sess.State)
	raw, _ := sess.Value(KeyEditDay)
	day, ok := workout.ParseDay(raw)
	if !ok {
		return Response{Text: textEditDayError, Keyboard: KeyboardMenu}, nil
	}
	res, err := m.workouts.Edit(ctx, day, text)
	if msg, ok := apperr.UserMessage(err); ok {
		return Response{Text: "❌ " + msg, Keyboard: KeyboardMenu}, nil
	}
	if err != nil {
		return Response{}, fmt.Errorf("edit %s: %w", day, err)
	}
	return Response{Text: res.Message(), Keyboard: KeyboardMenu}, nil
}
