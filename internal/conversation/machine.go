// Package conversation routes chat messages between the menu and the
// multi-message flows. Each chat has its own state record; a chat inside a
// flow sends every message to that flow, menu labels included.
package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/m3rciful/habitbot/core/logger"
	"github.com/m3rciful/habitbot/core/telegram/state"
	"github.com/m3rciful/habitbot/internal/ledger"
	"github.com/m3rciful/habitbot/internal/workout"
)

// Flow states.
const (
	StateIdle                 = state.StateIdle
	StateAwaitingExpense      state.State = "awaiting_expense"
	StateAwaitingResetConfirm state.State = "awaiting_reset_confirmation"
	StateAwaitingEditDay      state.State = "awaiting_edit_day"
	StateAwaitingEditCommand  state.State = "awaiting_edit_command"
)

// KeyEditDay holds the chosen day while awaiting an edit directive.
const KeyEditDay = "edit_day"

// Keyboard names the reply keyboard attached to a response.
type Keyboard int

const (
	KeyboardNone Keyboard = iota
	KeyboardMenu
	KeyboardCancel
	KeyboardConfirm
	KeyboardDays
)

// Document is a file attached to a response.
type Document struct {
	FileName string
	Data     []byte
}

// Response is the single reply produced for one inbound message.
type Response struct {
	Text     string
	Keyboard Keyboard
	Document *Document
	// Markdown marks fixed texts that use Telegram Markdown. User input is
	// never echoed in such texts.
	Markdown bool
}

// Ledger is the habit and expense side used by the machine.
type Ledger interface {
	EnsureHabitStart(ctx context.Context) (time.Time, error)
	HabitProgress(ctx context.Context) (ledger.Progress, error)
	RecordExpense(ctx context.Context, raw string) (ledger.Receipt, error)
	Statistics(ctx context.Context) (ledger.Stats, error)
	ResetAll(ctx context.Context) error
	Export(ctx context.Context) (ledger.Export, error)
}

// Workouts is the catalog side used by the machine.
type Workouts interface {
	Today(ctx context.Context) (workout.Plan, error)
	Describe(ctx context.Context, day workout.Day) (string, error)
	Edit(ctx context.Context, day workout.Day, raw string) (workout.EditResult, error)
}

// Subscribers records chats that get the daily reminder.
type Subscribers interface {
	Subscribe(ctx context.Context, chatID int64) (bool, error)
}

// Options configure a Machine.
type Options struct {
	States      state.Manager
	Ledger      Ledger
	Workouts    Workouts
	Subscribers Subscribers
	// Currency suffixes every amount; defaults to "грн".
	Currency string
}

type menuHandler func(ctx context.Context, chatID int64) (Response, error)

type flowHandler func(ctx context.Context, chatID int64, sess state.Session, text string) (Response, error)

// Machine is the per-chat conversation state machine.
type Machine struct {
	states   state.Manager
	ledger   Ledger
	workouts Workouts
	subs     Subscribers
	currency string

	menu  map[string]menuHandler
	flows map[state.State]flowHandler
}

// New wires a Machine. States defaults to an in-memory manager.
func New(opts Options) (*Machine, error) {
	if opts.Ledger == nil || opts.Workouts == nil {
		return nil, fmt.Errorf("conversation: ledger and workouts are required")
	}
	m := &Machine{
		states:   opts.States,
		ledger:   opts.Ledger,
		workouts: opts.Workouts,
		subs:     opts.Subscribers,
		currency: opts.Currency,
	}
	if m.states == nil {
		m.states = state.NewMemoryManager()
	}
	if m.currency == "" {
		m.currency = "грн"
	}
	m.menu = map[string]menuHandler{
		LabelProgress: m.showProgress,
		LabelWorkout:  m.showWorkout,
		LabelExpense:  m.beginExpense,
		LabelStats:    m.showStats,
		LabelDownload: m.download,
		LabelReset:    m.beginReset,
		LabelEdit:     m.beginEdit,
	}
	m.flows = map[state.State]flowHandler{
		StateAwaitingExpense:      m.handleExpense,
		StateAwaitingResetConfirm: m.handleResetConfirm,
		StateAwaitingEditDay:      m.handleEditDay,
		StateAwaitingEditCommand:  m.handleEditCommand,
	}
	return m, nil
}

// States exposes the session store.
func (m *Machine) States() state.Manager { return m.states }

// InProgress reports whether the chat is inside a flow.
func (m *Machine) InProgress(chatID int64) bool { return m.states.InProgress(chatID) }

// Handle routes one text message. A returned error is an infrastructure
// failure; the chat is back to idle and the caller answers with FailureText.
func (m *Machine) Handle(ctx context.Context, chatID int64, text string) (Response, error) {
	text = strings.TrimSpace(text)
	sess := m.states.Get(chatID)

	if sess.State != StateIdle {
		if strings.EqualFold(text, CancelWord) {
			m.transition(ctx, chatID, sess.State, StateIdle)
			m.states.Clear(chatID)
			return Response{Text: textCancelled, Keyboard: KeyboardMenu}, nil
		}
		if flow, ok := m.flows[sess.State]; ok {
			resp, err := flow(ctx, chatID, sess, text)
			if err != nil {
				m.states.Clear(chatID)
				return Response{}, err
			}
			return resp, nil
		}
		logger.Warn(ctx, "conversation", "state.unknown",
			slog.String("status", "fail"),
			slog.Int64("chat_id", chatID),
			slog.String("state", string(sess.State)),
		)
		m.states.Clear(chatID)
	}

	if h, ok := m.menu[text]; ok {
		return h(ctx, chatID)
	}
	return Response{Text: textFallback, Keyboard: KeyboardMenu}, nil
}

// Start greets the chat, starts the countdown and subscribes the chat to
// the daily reminder.
func (m *Machine) Start(ctx context.Context, chatID int64) (Response, error) {
	m.states.Clear(chatID)
	if _, err := m.ledger.EnsureHabitStart(ctx); err != nil {
		return Response{}, fmt.Errorf("start habit: %w", err)
	}
	if m.subs != nil {
		added, err := m.subs.Subscribe(ctx, chatID)
		if err != nil {
			return Response{}, fmt.Errorf("subscribe chat: %w", err)
		}
		if added {
			logger.Info(ctx, "conversation", "chat.subscribed",
				slog.String("status", "ok"),
				slog.Int64("chat_id", chatID),
			)
		}
	}
	return Response{Text: textWelcome, Keyboard: KeyboardMenu}, nil
}

// Cancel drops any active flow.
func (m *Machine) Cancel(ctx context.Context, chatID int64) Response {
	current := m.states.GetState(chatID)
	m.states.Clear(chatID)
	if current == StateIdle {
		return Response{Text: textNothingToCancel, Keyboard: KeyboardMenu}
	}
	m.transition(ctx, chatID, current, StateIdle)
	return Response{Text: textCancelled, Keyboard: KeyboardMenu}
}

func (m *Machine) enter(ctx context.Context, chatID int64, sess state.Session) {
	m.transition(ctx, chatID, m.states.GetState(chatID), sess.State)
	m.states.Set(chatID, sess)
}

func (m *Machine) finish(ctx context.Context, chatID int64, from state.State) {
	m.transition(ctx, chatID, from, StateIdle)
	m.states.Clear(chatID)
}

func (m *Machine) transition(ctx context.Context, chatID int64, from, to state.State) {
	logger.Debug(ctx, "conversation", "flow.transition",
		slog.String("status", "ok"),
		slog.Int64("chat_id", chatID),
		slog.String("from", string(from)),
		slog.String("to", string(to)),
	)
}
