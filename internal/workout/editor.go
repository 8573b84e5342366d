package workout

import (
	"strings"

	"github.com/m3rciful/habitbot/internal/apperr"
)

// Op is a directive verb.
type Op string

const (
	OpAdd    Op = "add"
	OpDelete Op = "delete"
)

var verbs = map[string]Op{
	"add":      OpAdd,
	"добавить": OpAdd,
	"delete":   OpDelete,
	"удалить":  OpDelete,
}

// DirectiveHelp is shown when the edit flow asks for a command.
const DirectiveHelp = "Отправьте команду:\n" +
	"add: <упражнение> / добавить: <упражнение>\n" +
	"delete: <текст> / удалить: <текст>\n" +
	"Для рук: add плечи: <упражнение> (плечи, бицепс, трицепс)"

// Directive is one parsed edit instruction.
type Directive struct {
	Op   Op
	Part string
	Text string
}

// ParseDirective reads "verb[ part]: text".
func ParseDirective(raw string) (Directive, error) {
	head, text, ok := strings.Cut(raw, ":")
	if !ok {
		return Directive{}, apperr.Invalid("directive", "Команда должна иметь вид «add: текст» или «delete: текст».")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Directive{}, apperr.Invalid("directive", "После двоеточия нужен текст.")
	}

	fields := strings.Fields(strings.ToLower(head))
	if len(fields) == 0 || len(fields) > 2 {
		return Directive{}, apperr.Invalid("directive", "Неизвестная команда. Используйте add или delete.")
	}
	op, ok := verbs[fields[0]]
	if !ok {
		return Directive{}, apperr.Invalid("directive", "Неизвестная команда. Используйте add или delete.")
	}
	d := Directive{Op: op, Text: text}
	if len(fields) == 2 {
		part, ok := partAliases[fields[1]]
		if !ok {
			return Directive{}, apperr.Invalid("directive", "Неизвестная часть. Доступны: плечи, бицепс, трицепс.")
		}
		if op != OpAdd {
			return Directive{}, apperr.Invalid("directive", "Часть указывается только при добавлении.")
		}
		d.Part = part
	}
	return d, nil
}

// Apply mutates cat in place and returns the number of entries added or
// removed. On error cat is unchanged.
func (d Directive) Apply(cat *Catalog, day Day) (int, error) {
	if d.Part != "" && day != DayArms {
		return 0, apperr.Invalid("directive", "Часть указывается только для рук.")
	}
	switch d.Op {
	case OpAdd:
		return d.add(cat, day)
	case OpDelete:
		return d.remove(cat, day)
	}
	return 0, apperr.Invalid("directive", "Неизвестная команда.")
}

func (d Directive) add(cat *Catalog, day Day) (int, error) {
	switch day {
	case DayBack, DayChest:
		v := cat.variants(day)
		if len(v.Variants) == 0 {
			v.Variants = [][]string{{}}
		}
		v.Variants[0] = append(v.Variants[0], d.Text)
	case DayArms:
		if d.Part == "" {
			return 0, apperr.Invalid("directive", "Для рук укажите часть: add плечи|бицепс|трицепс: <упражнение>.")
		}
		list := cat.Arms.part(d.Part)
		*list = append(*list, d.Text)
	case DayLegs:
		cat.Legs.Exercises = append(cat.Legs.Exercises, d.Text)
	case DayFunctional:
		if cat.Functional.Comment == "" {
			cat.Functional.Comment = d.Text
		} else {
			cat.Functional.Comment += "\n" + d.Text
		}
	default:
		return 0, apperr.Invalid("day", "Неизвестный день.")
	}
	return 1, nil
}

func (d Directive) remove(cat *Catalog, day Day) (int, error) {
	removed := 0
	switch day {
	case DayBack, DayChest:
		v := cat.variants(day)
		if len(v.Variants) > 0 {
			var n int
			v.Variants[0], n = without(v.Variants[0], d.Text)
			removed = n
			if n > 0 && len(v.Variants[0]) == 0 {
				v.Variants = v.Variants[1:]
			}
		}
	case DayArms:
		for _, p := range []string{PartShoulders, PartBiceps, PartTriceps} {
			list := cat.Arms.part(p)
			var n int
			*list, n = without(*list, d.Text)
			removed += n
		}
	case DayLegs:
		cat.Legs.Exercises, removed = without(cat.Legs.Exercises, d.Text)
	case DayFunctional:
		removed = strings.Count(cat.Functional.Comment, d.Text)
		if removed > 0 {
			cat.Functional.Comment = strings.TrimSpace(strings.ReplaceAll(cat.Functional.Comment, d.Text, ""))
		}
	default:
		return 0, apperr.Invalid("day", "Неизвестный день.")
	}
	if removed == 0 {
		return 0, apperr.Invalid("directive", "Совпадений для «"+d.Text+"» не найдено.")
	}
	return removed, nil
}

// without filters items containing sub. The input is left untouched when
// nothing matches.
func without(items []string, sub string) ([]string, int) {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if !strings.Contains(it, sub) {
			out = append(out, it)
		}
	}
	n := len(items) - len(out)
	if n == 0 {
		return items, 0
	}
	return out, n
}
