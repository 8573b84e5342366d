package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/habitbot/core/telegram/state"
	"github.com/m3rciful/habitbot/internal/ledger"
	"github.com/m3rciful/habitbot/internal/store"
	"github.com/m3rciful/habitbot/internal/workout"
)

var zone = time.FixedZone("EEST", 3*60*60)

type fakeSubscribers struct {
	chats []int64
	err   error
}

func (f *fakeSubscribers) Subscribe(_ context.Context, chatID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, c := range f.chats {
		if c == chatID {
			return false, nil
		}
	}
	f.chats = append(f.chats, chatID)
	return true, nil
}

type fixture struct {
	machine  *Machine
	ledger   *ledger.Manager
	backend  *store.MemoryBackend
	subs     *fakeSubscribers
	now      time.Time
	catalog  *store.Document[workout.Catalog]
	ledgerDB *store.Document[ledger.Ledger]
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		backend: store.NewMemoryBackend(),
		subs:    &fakeSubscribers{},
		now:     time.Date(2026, 10, 19, 10, 30, 0, 0, zone), // Monday
	}
	clock := func() time.Time { return f.now }

	var err error
	f.ledgerDB, err = ledger.NewDocument(f.backend, "data.json")
	if err != nil {
		t.Fatalf("ledger doc: %v", err)
	}
	f.catalog, err = workout.NewDocument(f.backend, "trainings.yaml")
	if err != nil {
		t.Fatalf("catalog doc: %v", err)
	}
	f.ledger = ledger.NewManager(f.ledgerDB, ledger.Options{Location: zone, Now: clock})
	workouts := workout.NewService(f.catalog,
		workout.NewSelector(workout.DefaultRotation, rand.NewPCG(1, 2)),
		workout.Options{Location: zone, Now: clock},
	)
	f.machine, err = New(Options{
		Ledger:      f.ledger,
		Workouts:    workouts,
		Subscribers: f.subs,
	})
	if err != nil {
		t.Fatalf("new machine: %v", err)
	}
	return f
}

func (f *fixture) send(t *testing.T, chatID int64, text string) Response {
	t.Helper()
	resp, err := f.machine.Handle(context.Background(), chatID, text)
	if err != nil {
		t.Fatalf("handle %q: %v", text, err)
	}
	return resp
}

func (f *fixture) expectState(t *testing.T, chatID int64, want state.State) {
	t.Helper()
	if got := f.machine.States().GetState(chatID); got != want {
		t.Fatalf("state = %q, want %q", got, want)
	}
}

func TestFallbackShowsMenu(t *testing.T) {
	f := newFixture(t)
	resp := f.send(t, 1, "привет")
	if resp.Text != textFallback || resp.Keyboard != KeyboardMenu {
		t.Fatalf("unexpected fallback %+v", resp)
	}
	f.expectState(t, 1, StateIdle)
}

func TestExpenseFlow(t *testing.T) {
	f := newFixture(t)
	resp := f.send(t, 1, LabelExpense)
	if resp.Text != textExpensePrompt {
		t.Fatalf("prompt = %q", resp.Text)
	}
	f.expectState(t, 1, StateAwaitingExpense)

	resp = f.send(t, 1, "150,5 еда")
	if !strings.Contains(resp.Text, "еда — 150.5 грн") || !strings.Contains(resp.Text, "Итого за сегодня: 150.5 грн") {
		t.Fatalf("receipt = %q", resp.Text)
	}
	f.expectState(t, 1, StateIdle)
}

func TestExpenseParseFailureReprompts(t *testing.T) {
	f := newFixture(t)
	f.send(t, 1, LabelExpense)

	resp := f.send(t, 1, "много еда")
	if resp.Text != textExpenseFormat {
		t.Fatalf("expected format hint, got %q", resp.Text)
	}
	f.expectState(t, 1, StateAwaitingExpense)
	if f.backend.Saves() != 0 {
		t.Fatalf("parse failure must not save")
	}

	f.send(t, 1, "20 кофе")
	f.expectState(t, 1, StateIdle)
}

func TestMenuLabelInsideFlowIsFlowInput(t *testing.T) {
	f := newFixture(t)
	f.send(t, 1, LabelExpense)

	resp := f.send(t, 1, LabelStats)
	if resp.Text != textExpenseFormat {
		t.Fatalf("menu label must be handled by the expense flow, got %q", resp.Text)
	}
	f.expectState(t, 1, StateAwaitingExpense)
}

func TestCancelWordLeavesAnyFlow(t *testing.T) {
	for _, label := range []string{LabelExpense, LabelReset, LabelEdit} {
		t.Run(label, func(t *testing.T) {
			f := newFixture(t)
			f.send(t, 1, label)
			resp := f.send(t, 1, "  Отмена ")
			if resp.Text != textCancelled {
				t.Fatalf("cancel reply = %q", resp.Text)
			}
			f.expectState(t, 1, StateIdle)
		})
	}
}

func TestResetRequiresExactYes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.send(t, 1, LabelExpense)
	f.send(t, 1, "100 еда")

	for _, answer := range []string{"нет", "да!", "давай"} {
		f.send(t, 1, LabelReset)
		f.expectState(t, 1, StateAwaitingResetConfirm)
		resp := f.send(t, 1, answer)
		if resp.Text != textResetCancelled {
			t.Fatalf("%q: reply = %q", answer, resp.Text)
		}
		f.expectState(t, 1, StateIdle)
		stats, err := f.ledger.Statistics(ctx)
		if err != nil {
			t.Fatalf("stats: %v", err)
		}
		if stats.Today.IsZero() {
			t.Fatalf("%q must not clear the ledger", answer)
		}
	}

	f.send(t, 1, LabelReset)
	if resp := f.send(t, 1, " ДА "); resp.Text != textResetDone {
		t.Fatalf("reply = %q", resp.Text)
	}
	stats, err := f.ledger.Statistics(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.Today.IsZero() || !stats.Week.IsZero() || len(stats.ByCategory) != 0 {
		t.Fatalf("expected empty stats, got %+v", stats)
	}
}

func TestEditFlow(t *testing.T) {
	f := newFixture(t)
	f.send(t, 1, LabelEdit)
	f.expectState(t, 1, StateAwaitingEditDay)

	resp := f.send(t, 1, "спина")
	if !strings.Contains(resp.Text, workout.DirectiveHelp) {
		t.Fatalf("expected directive help, got %q", resp.Text)
	}
	f.expectState(t, 1, StateAwaitingEditCommand)
	if day, _ := f.machine.States().Get(1).Value(KeyEditDay); day != string(workout.DayBack) {
		t.Fatalf("edit day = %q", day)
	}

	resp = f.send(t, 1, "добавить: Тяга Т-грифа")
	if !strings.HasPrefix(resp.Text, "✅") {
		t.Fatalf("edit reply = %q", resp.Text)
	}
	f.expectState(t, 1, StateIdle)

	workoutResp := f.send(t, 1, LabelWorkout)
	if !strings.Contains(workoutResp.Text, "Тяга Т-грифа") || !strings.Contains(workoutResp.Text, "Понедельник") {
		t.Fatalf("workout = %q", workoutResp.Text)
	}
}

func TestEditFlowErrorsReturnToIdle(t *testing.T) {
	f := newFixture(t)
	f.send(t, 1, LabelEdit)
	if resp := f.send(t, 1, "пресс"); resp.Text != textEditDayError {
		t.Fatalf("unknown day reply = %q", resp.Text)
	}
	f.expectState(t, 1, StateIdle)

	f.send(t, 1, LabelEdit)
	f.send(t, 1, "legs")
	resp := f.send(t, 1, "delete: Бег")
	if !strings.HasPrefix(resp.Text, "❌") {
		t.Fatalf("no-match delete reply = %q", resp.Text)
	}
	f.expectState(t, 1, StateIdle)
	if f.backend.Saves() != 0 {
		t.Fatalf("rejected directive must not save")
	}
}

func TestWorkoutValidationIsReplied(t *testing.T) {
	f := newFixture(t)
	resp := f.send(t, 1, LabelWorkout)
	if !strings.Contains(resp.Text, "Спина") {
		t.Fatalf("expected missing plans message, got %q", resp.Text)
	}
}

func TestChatsAreIndependent(t *testing.T) {
	f := newFixture(t)
	f.send(t, 1, LabelExpense)
	if resp := f.send(t, 2, LabelStats); !strings.HasPrefix(resp.Text, "📊") {
		t.Fatalf("chat 2 must see the menu action, got %q", resp.Text)
	}
	f.expectState(t, 1, StateAwaitingExpense)
	f.expectState(t, 2, StateIdle)
}

func TestStartSubscribesAndStartsCountdown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.send(t, 5, LabelExpense)

	resp, err := f.machine.Start(ctx, 5)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if resp.Text != textWelcome {
		t.Fatalf("start reply = %q", resp.Text)
	}
	f.expectState(t, 5, StateIdle)
	if len(f.subs.chats) != 1 || f.subs.chats[0] != 5 {
		t.Fatalf("subscribers = %v", f.subs.chats)
	}

	if resp := f.send(t, 5, LabelProgress); resp.Text != textCountdownPending {
		t.Fatalf("progress before midnight = %q", resp.Text)
	}
	f.now = time.Date(2026, 10, 21, 2, 5, 0, 0, zone)
	if resp := f.send(t, 5, LabelProgress); !strings.Contains(resp.Text, "1 дней 2 часов 5 минут") {
		t.Fatalf("progress = %q", resp.Text)
	}
}

func TestStartPropagatesSubscriberFailure(t *testing.T) {
	f := newFixture(t)
	f.subs.err = errors.New("disk full")
	if _, err := f.machine.Start(context.Background(), 1); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCancelCommand(t *testing.T) {
	f := newFixture(t)
	if resp := f.machine.Cancel(context.Background(), 1); resp.Text != textNothingToCancel {
		t.Fatalf("idle cancel = %q", resp.Text)
	}
	f.send(t, 1, LabelReset)
	if resp := f.machine.Cancel(context.Background(), 1); resp.Text != textCancelled {
		t.Fatalf("cancel = %q", resp.Text)
	}
	f.expectState(t, 1, StateIdle)
}

func TestStatsAndDownload(t *testing.T) {
	f := newFixture(t)
	f.send(t, 1, LabelExpense)
	f.send(t, 1, "12 кофе")

	stats := f.send(t, 1, LabelStats)
	for _, want := range []string{"Сегодня: 12.00 грн", "За 7 дней: 12.00 грн", "• кофе: 12.00 грн"} {
		if !strings.Contains(stats.Text, want) {
			t.Fatalf("stats missing %q:\n%s", want, stats.Text)
		}
	}

	dl := f.send(t, 1, LabelDownload)
	if dl.Document == nil || dl.Document.FileName != "data.json" {
		t.Fatalf("download = %+v", dl)
	}
	var decoded ledger.Ledger
	if err := json.Unmarshal(dl.Document.Data, &decoded); err != nil {
		t.Fatalf("download is not JSON: %v", err)
	}
}
