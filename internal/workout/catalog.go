// Package workout holds the workout catalog, the weekday selector and the
// textual catalog editor.
package workout

import (
	"strings"

	"github.com/m3rciful/habitbot/internal/apperr"
	"github.com/m3rciful/habitbot/internal/store"
)

// Day names a catalog section.
type Day string

const (
	DayBack       Day = "back"
	DayChest      Day = "chest"
	DayArms       Day = "arms"
	DayLegs       Day = "legs"
	DayFunctional Day = "functional"
)

// Days lists every catalog section in menu order.
var Days = []Day{DayBack, DayChest, DayArms, DayLegs, DayFunctional}

var dayLabels = map[Day]string{
	DayBack:       "Спина",
	DayChest:      "Грудь",
	DayArms:       "Руки",
	DayLegs:       "Ноги",
	DayFunctional: "Функционал",
}

// Label returns the user-facing name of the day.
func (d Day) Label() string {
	if l, ok := dayLabels[d]; ok {
		return l
	}
	return string(d)
}

// ParseDay matches a catalog key or its label, ignoring case.
func ParseDay(s string) (Day, bool) {
	s = strings.TrimSpace(s)
	for _, d := range Days {
		if strings.EqualFold(s, string(d)) || strings.EqualFold(s, d.Label()) {
			return d, true
		}
	}
	return "", false
}

// DefaultComment is shown for the functional day when the catalog has none.
const DefaultComment = "Тренировку подбирает тренер лично"

// Arms part names.
const (
	PartShoulders = "shoulders"
	PartBiceps    = "biceps"
	PartTriceps   = "triceps"
)

var partAliases = map[string]string{
	"shoulders": PartShoulders,
	"плечи":     PartShoulders,
	"biceps":    PartBiceps,
	"бицепс":    PartBiceps,
	"triceps":   PartTriceps,
	"трицепс":   PartTriceps,
}

var partLabels = map[string]string{
	PartShoulders: "Плечи",
	PartBiceps:    "Бицепс",
	PartTriceps:   "Трицепс",
}

// Variants is a day with interchangeable complete exercise lists.
type Variants struct {
	Variants [][]string `yaml:"variants" json:"variants"`
}

// Arms is split into three independently sampled lists.
type Arms struct {
	Shoulders []string `yaml:"shoulders" json:"shoulders"`
	Biceps    []string `yaml:"biceps" json:"biceps"`
	Triceps   []string `yaml:"triceps" json:"triceps"`
}

func (a *Arms) part(name string) *[]string {
	switch name {
	case PartShoulders:
		return &a.Shoulders
	case PartBiceps:
		return &a.Biceps
	case PartTriceps:
		return &a.Triceps
	}
	return nil
}

// Fixed is a day with one exercise list and no randomness.
type Fixed struct {
	Exercises []string `yaml:"exercises" json:"exercises"`
}

// Comment is a day described by free text only.
type Comment struct {
	Comment string `yaml:"comment" json:"comment"`
}

// Catalog is the persisted workout plan document.
type Catalog struct {
	Back       Variants `yaml:"back" json:"back"`
	Chest      Variants `yaml:"chest" json:"chest"`
	Functional Comment  `yaml:"functional" json:"functional"`
	Arms       Arms     `yaml:"arms" json:"arms"`
	Legs       Fixed    `yaml:"legs" json:"legs"`
}

// DefaultCatalog returns the empty catalog shape.
func DefaultCatalog() Catalog {
	return Catalog{Functional: Comment{Comment: DefaultComment}}
}

func (c *Catalog) variants(d Day) *Variants {
	switch d {
	case DayBack:
		return &c.Back
	case DayChest:
		return &c.Chest
	}
	return nil
}

// NewDocument opens the catalog document with its default shape.
func NewDocument(backend store.Backend, name string) (*store.Document[Catalog], error) {
	return store.NewDocument(backend, store.DocumentOptions[Catalog]{
		Name:    name,
		Default: DefaultCatalog,
	})
}

func errMissing(d Day) error {
	return apperr.Invalid(string(d), "Планы на «"+d.Label()+"» не найдены.")
}
