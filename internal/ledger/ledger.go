// Package ledger keeps the habit countdown and the daily expense log.
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the key format of the expenses map.
const DateLayout = "2006-01-02"

// Entry is one recorded expense.
type Entry struct {
	Category string          `json:"category" yaml:"category"`
	Amount   decimal.Decimal `json:"amount" yaml:"amount"`
}

// Ledger is the persisted habit and expense document.
type Ledger struct {
	// HabitStart is set once and never changed afterwards.
	HabitStart *time.Time         `json:"habit_start" yaml:"habit_start"`
	Expenses   map[string][]Entry `json:"expenses" yaml:"expenses"`
	// Categories lists every category ever recorded, in first-use order.
	Categories []string `json:"categories" yaml:"categories"`
}

// Default returns the empty ledger shape.
func Default() Ledger {
	return Ledger{
		Expenses:   map[string][]Entry{},
		Categories: []string{},
	}
}

// Normalize fills nil collections left by partial documents.
func Normalize(l *Ledger) {
	if l.Expenses == nil {
		l.Expenses = map[string][]Entry{}
	}
	if l.Categories == nil {
		l.Categories = []string{}
	}
}

// DayTotal sums the entries recorded under a date key.
func (l Ledger) DayTotal(key string) decimal.Decimal {
	total := decimal.Zero
	for _, e := range l.Expenses[key] {
		total = total.Add(e.Amount)
	}
	return total
}

func (l *Ledger) addCategory(category string) bool {
	for _, c := range l.Categories {
		if c == category {
			return false
		}
	}
	l.Categories = append(l.Categories, category)
	return true
}

// CategoryTotal is the aggregated amount of one category.
type CategoryTotal struct {
	Category string
	Total    decimal.Decimal
}

// Stats is the result of Manager.Statistics.
type Stats struct {
	Today      decimal.Decimal
	Week       decimal.Decimal
	Days       []DayStat
	ByCategory []CategoryTotal
}

// DayStat is the total of one date in the weekly window.
type DayStat struct {
	Date  string
	Total decimal.Decimal
}

// Receipt describes a recorded expense.
type Receipt struct {
	Entry    Entry
	Date     string
	DayTotal decimal.Decimal
	// NewCategory is true when the category was seen for the first time.
	NewCategory bool
}

// Progress is the elapsed time since the habit start.
type Progress struct {
	Start   time.Time
	Started bool
	Days    int
	Hours   int
	Minutes int
}

// Export is a serialized copy of the ledger document.
type Export struct {
	FileName string
	Data     []byte
}
