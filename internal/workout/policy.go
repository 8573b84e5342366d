package workout

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"
)

// Rotation names accepted in configuration.
const (
	RotationFixed  = "fixed"
	RotationRandom = "random"
)

// Policy maps a weekday to the day trained. ok=false means a rest day.
type Policy interface {
	DayFor(weekday time.Weekday, rng *rand.Rand) (day Day, ok bool)
}

// FixedRotation trains the same section on the same weekday every week.
type FixedRotation map[time.Weekday]Day

// DefaultRotation is Mon back, Tue chest, Wed functional, Thu arms, Fri legs.
var DefaultRotation = FixedRotation{
	time.Monday:    DayBack,
	time.Tuesday:   DayChest,
	time.Wednesday: DayFunctional,
	time.Thursday:  DayArms,
	time.Friday:    DayLegs,
}

// DayFor looks the weekday up.
func (r FixedRotation) DayFor(weekday time.Weekday, _ *rand.Rand) (Day, bool) {
	d, ok := r[weekday]
	return d, ok
}

// RandomRotation keeps functional on Wednesday and weekends free, and picks
// uniformly among the strength days on the other weekdays.
type RandomRotation struct {
	Pool []Day
}

// DayFor draws a strength day.
func (r RandomRotation) DayFor(weekday time.Weekday, rng *rand.Rand) (Day, bool) {
	switch weekday {
	case time.Saturday, time.Sunday:
		return "", false
	case time.Wednesday:
		return DayFunctional, true
	}
	pool := r.Pool
	if len(pool) == 0 {
		pool = []Day{DayBack, DayChest, DayArms, DayLegs}
	}
	return pool[rng.IntN(len(pool))], true
}

// PolicyByName resolves a configured rotation name.
func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", RotationFixed:
		return DefaultRotation, nil
	case RotationRandom:
		return RandomRotation{}, nil
	}
	return nil, fmt.Errorf("unknown workout rotation %q; allowed: fixed, random", name)
}
