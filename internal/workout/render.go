package workout

import (
	"strconv"
	"strings"
	"time"
)

var weekdayNames = map[time.Weekday]string{
	time.Monday:    "Понедельник",
	time.Tuesday:   "Вторник",
	time.Wednesday: "Среда",
	time.Thursday:  "Четверг",
	time.Friday:    "Пятница",
	time.Saturday:  "Суббота",
	time.Sunday:    "Воскресенье",
}

var dayTitles = map[Day]string{
	DayBack:       "Тренировка СПИНА (вариант)",
	DayChest:      "Тренировка ГРУДЬ (вариант)",
	DayArms:       "Тренировка РУК",
	DayLegs:       "Тренировка НОГ",
	DayFunctional: "ФУНКЦИОНАЛ",
}

// RestMessage is sent on days without a workout.
const RestMessage = "Сегодня день отдыха! 💤"

// Render formats the plan as a chat message.
func (p Plan) Render() string {
	if p.Rest {
		return RestMessage
	}
	var b strings.Builder
	b.WriteString("📅 Сегодня ")
	b.WriteString(weekdayNames[p.Weekday])
	b.WriteString(" — ")
	b.WriteString(dayTitles[p.Day])
	b.WriteString("\n\n")

	if p.Day == DayFunctional {
		b.WriteString(p.Comment)
		return b.String()
	}
	for i, g := range p.Groups {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if g.Name != "" {
			b.WriteString(g.Name)
			b.WriteString(":\n")
		}
		b.WriteString(strings.Join(g.Exercises, "\n"))
	}
	return b.String()
}

// Describe lists the current catalog contents of one day, for the edit flow.
func Describe(cat Catalog, d Day) string {
	var b strings.Builder
	b.WriteString("📋 ")
	b.WriteString(d.Label())
	b.WriteString(":\n")

	list := func(items []string) {
		if len(items) == 0 {
			b.WriteString("  (пусто)\n")
			return
		}
		for _, it := range items {
			b.WriteString("  • ")
			b.WriteString(it)
			b.WriteString("\n")
		}
	}

	switch d {
	case DayBack, DayChest:
		v := cat.variants(d).Variants
		if len(v) == 0 {
			list(nil)
		}
		for i, variant := range v {
			b.WriteString("Вариант ")
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString(":\n")
			list(variant)
		}
	case DayArms:
		for _, part := range []string{PartShoulders, PartBiceps, PartTriceps} {
			b.WriteString(partLabels[part])
			b.WriteString(":\n")
			list(*cat.Arms.part(part))
		}
	case DayLegs:
		list(cat.Legs.Exercises)
	case DayFunctional:
		if cat.Functional.Comment == "" {
			list(nil)
		} else {
			b.WriteString(cat.Functional.Comment)
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
