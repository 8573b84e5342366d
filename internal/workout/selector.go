package workout

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/m3rciful/habitbot/internal/apperr"
)

// Minimum arms list sizes; selection samples exactly these counts.
const (
	ArmsShoulders = 3
	ArmsBiceps    = 2
	ArmsTriceps   = 2
)

// Group is a labelled list inside a plan.
type Group struct {
	Name      string
	Exercises []string
}

// Plan is the workout selected for one weekday.
type Plan struct {
	Weekday time.Weekday
	Day     Day
	Rest    bool
	Groups  []Group
	Comment string
}

// Selector draws plans from a catalog. Safe for concurrent use.
type Selector struct {
	policy Policy
	mu     sync.Mutex
	rng    *rand.Rand
}

// NewSelector builds a selector over src. A nil policy means DefaultRotation;
// a nil src is seeded from the runtime.
func NewSelector(policy Policy, src rand.Source) *Selector {
	if policy == nil {
		policy = DefaultRotation
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Selector{policy: policy, rng: rand.New(src)}
}

// Select picks the plan for weekday.
func (s *Selector) Select(weekday time.Weekday, cat Catalog) (Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	day, ok := s.policy.DayFor(weekday, s.rng)
	if !ok {
		return Plan{Weekday: weekday, Rest: true}, nil
	}
	plan := Plan{Weekday: weekday, Day: day}

	switch day {
	case DayBack, DayChest:
		options := cat.variants(day).Variants
		if len(options) == 0 {
			return Plan{}, errMissing(day)
		}
		chosen := options[s.rng.IntN(len(options))]
		plan.Groups = []Group{{Exercises: append([]string(nil), chosen...)}}

	case DayArms:
		arms := cat.Arms
		if len(arms.Shoulders) < ArmsShoulders || len(arms.Biceps) < ArmsBiceps || len(arms.Triceps) < ArmsTriceps {
			return Plan{}, apperr.Invalid(string(day), "Недостаточно упражнений в планах рук.")
		}
		plan.Groups = []Group{
			{Name: partLabels[PartShoulders], Exercises: sample(s.rng, arms.Shoulders, ArmsShoulders)},
			{Name: partLabels[PartBiceps], Exercises: sample(s.rng, arms.Biceps, ArmsBiceps)},
			{Name: partLabels[PartTriceps], Exercises: sample(s.rng, arms.Triceps, ArmsTriceps)},
		}

	case DayLegs:
		if len(cat.Legs.Exercises) == 0 {
			return Plan{}, errMissing(day)
		}
		plan.Groups = []Group{{Exercises: append([]string(nil), cat.Legs.Exercises...)}}

	case DayFunctional:
		plan.Comment = cat.Functional.Comment
		if plan.Comment == "" {
			plan.Comment = DefaultComment
		}

	default:
		return Plan{}, apperr.Invalid(string(day), "Неизвестный тип тренировки.")
	}
	return plan, nil
}

// sample draws k distinct positions without replacement.
func sample(rng *rand.Rand, items []string, k int) []string {
	perm := rng.Perm(len(items))
	out := make([]string, 0, k)
	for _, i := range perm[:k] {
		out = append(out, items[i])
	}
	return out
}
