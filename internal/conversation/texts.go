package conversation

import "github.com/m3rciful/habitbot/internal/workout"

// Menu labels. They are matched exactly, and only outside of a flow.
const (
	LabelProgress = "📅 Дни без стиков"
	LabelWorkout  = "💪 Тренировка"
	LabelExpense  = "💸 Ввести трату"
	LabelStats    = "📊 Статистика"
	LabelDownload = "📁 Скачать данные"
	LabelReset    = "🗑️ Обнулить траты"
	LabelEdit     = "✏️ Изменить тренировки"
)

// MenuRows is the main reply keyboard layout.
var MenuRows = [][]string{
	{LabelProgress, LabelWorkout},
	{LabelExpense, LabelStats},
	{LabelDownload, LabelReset},
	{LabelEdit},
}

// Flow words.
const (
	CancelWord  = "отмена"
	ConfirmWord = "да"
)

const (
	textWelcome         = "Добро пожаловать! Я готов работать 💪"
	textFallback        = "Выбери команду из меню 👇"
	textCancelled       = "Отменено."
	textNothingToCancel = "Нечего отменять."
	textFailure         = "⚠️ Что-то пошло не так. Попробуй ещё раз позже."

	textCountdownPending = "📅 Отсчет начнётся завтра с 00:00!"
	textCountdown        = "🔥 Ты уже %d дней %d часов %d минут без стиков!"

	textExpensePrompt = "Введи сумму и категорию (пример: `150 еда`)"
	textExpenseFormat = "❌ Формат: `150 еда`. Попробуй ещё раз или напиши «отмена»."
	textExpenseAdded  = "✅ Добавлено: %s — %s %s\nИтого за сегодня: %s %s"

	textResetPrompt    = "❗ Ты точно хочешь обнулить ВСЕ траты? Напиши `Да` или `Нет`"
	textResetDone      = "🗑️ Все траты обнулены!"
	textResetCancelled = "Отмена сброса."

	textEditDayPrompt = "Какой день изменить? Выбери из списка 👇"
	textEditDayError  = "❌ Такого дня нет в планах тренировок."

	textStatsHeader   = "📊 Сегодня: %s %s\n🗓️ За 7 дней: %s %s\n\n🔍 По категориям:\n"
	textStatsCategory = "• %s: %s %s\n"
	textStatsEmpty    = "• пока нет трат\n"
)

// FailureText is the generic answer for infrastructure errors.
func FailureText() string { return textFailure }

// Rows returns the reply keyboard layout; nil leaves the keyboard unchanged.
func (k Keyboard) Rows() [][]string {
	switch k {
	case KeyboardMenu:
		return MenuRows
	case KeyboardCancel:
		return [][]string{{CancelWord}}
	case KeyboardConfirm:
		return [][]string{{"Да", "Нет"}}
	case KeyboardDays:
		var rows [][]string
		var row []string
		for _, d := range workout.Days {
			row = append(row, d.Label())
			if len(row) == 3 {
				rows = append(rows, row)
				row = nil
			}
		}
		if len(row) > 0 {
			rows = append(rows, row)
		}
		return append(rows, []string{CancelWord})
	}
	return nil
}

// FallbackText points the user back to the menu.
func FallbackText() string { return textFallback }
