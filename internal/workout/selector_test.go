package workout

import (
	"math/rand/v2"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/habitbot/internal/apperr"
)

func sampleCatalog() Catalog {
	return Catalog{
		Back: Variants{Variants: [][]string{
			{"Тяга верхнего блока", "Гиперэкстензия"},
			{"Подтягивания", "Тяга штанги в наклоне"},
			{"Становая тяга", "Пуловер"},
		}},
		Chest: Variants{Variants: [][]string{
			{"Жим лёжа", "Разводка"},
		}},
		Arms: Arms{
			Shoulders: []string{"Жим сидя", "Махи в стороны", "Тяга к подбородку", "Махи в наклоне"},
			Biceps:    []string{"Подъём штанги", "Молотки", "Концентрированный подъём"},
			Triceps:   []string{"Французский жим", "Разгибания на блоке"},
		},
		Legs:       Fixed{Exercises: []string{"Присед", "Выпады", "Жим ногами"}},
		Functional: Comment{Comment: "Круговая тренировка"},
	}
}

func seeded(seed uint64) rand.Source { return rand.NewPCG(seed, seed) }

func TestFixedRotation(t *testing.T) {
	cases := []struct {
		weekday time.Weekday
		day     Day
		rest    bool
	}{
		{time.Monday, DayBack, false},
		{time.Tuesday, DayChest, false},
		{time.Wednesday, DayFunctional, false},
		{time.Thursday, DayArms, false},
		{time.Friday, DayLegs, false},
		{time.Saturday, "", true},
		{time.Sunday, "", true},
	}
	s := NewSelector(DefaultRotation, seeded(1))
	for _, tc := range cases {
		t.Run(tc.weekday.String(), func(t *testing.T) {
			plan, err := s.Select(tc.weekday, sampleCatalog())
			if err != nil {
				t.Fatalf("select: %v", err)
			}
			if plan.Rest != tc.rest || plan.Day != tc.day {
				t.Fatalf("got day=%q rest=%v, want day=%q rest=%v", plan.Day, plan.Rest, tc.day, tc.rest)
			}
		})
	}
}

func TestRandomRotationKeepsAnchors(t *testing.T) {
	s := NewSelector(RandomRotation{}, seeded(7))
	cat := sampleCatalog()
	strength := []Day{DayBack, DayChest, DayArms, DayLegs}
	for i := 0; i < 20; i++ {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			plan, err := s.Select(wd, cat)
			if err != nil {
				t.Fatalf("select %s: %v", wd, err)
			}
			switch wd {
			case time.Saturday, time.Sunday:
				if !plan.Rest {
					t.Fatalf("%s must be rest, got %q", wd, plan.Day)
				}
			case time.Wednesday:
				if plan.Day != DayFunctional {
					t.Fatalf("wednesday = %q", plan.Day)
				}
			default:
				if !slices.Contains(strength, plan.Day) {
					t.Fatalf("%s picked %q", wd, plan.Day)
				}
			}
		}
	}
}

func TestPolicyByName(t *testing.T) {
	if p, err := PolicyByName(""); err != nil || p == nil {
		t.Fatalf("empty name: %v", err)
	}
	if _, ok := mustPolicy(t, "RANDOM").(RandomRotation); !ok {
		t.Fatalf("expected random rotation")
	}
	if _, err := PolicyByName("weekly"); err == nil {
		t.Fatalf("expected error for unknown rotation")
	}
}

func mustPolicy(t *testing.T, name string) Policy {
	t.Helper()
	p, err := PolicyByName(name)
	if err != nil {
		t.Fatalf("policy %q: %v", name, err)
	}
	return p
}

func TestBackVariantIsCompleteAndVaries(t *testing.T) {
	cat := sampleCatalog()
	seen := map[string]bool{}
	for seed := uint64(1); seed <= 50; seed++ {
		plan, err := NewSelector(DefaultRotation, seeded(seed)).Select(time.Monday, cat)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if len(plan.Groups) != 1 {
			t.Fatalf("seed %d: groups = %d", seed, len(plan.Groups))
		}
		got := plan.Groups[0].Exercises
		found := false
		for _, v := range cat.Back.Variants {
			if slices.Equal(v, got) {
				found = true
			}
		}
		if !found {
			t.Fatalf("seed %d: %v is not a complete variant", seed, got)
		}
		seen[strings.Join(got, "|")] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected more than one distinct variant across seeds, got %d", len(seen))
	}
}

func TestArmsSamplesDistinctExercises(t *testing.T) {
	cat := sampleCatalog()
	for seed := uint64(1); seed <= 20; seed++ {
		plan, err := NewSelector(DefaultRotation, seeded(seed)).Select(time.Thursday, cat)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if len(plan.Groups) != 3 {
			t.Fatalf("groups = %d", len(plan.Groups))
		}
		want := []struct {
			name string
			n    int
			pool []string
		}{
			{"Плечи", ArmsShoulders, cat.Arms.Shoulders},
			{"Бицепс", ArmsBiceps, cat.Arms.Biceps},
			{"Трицепс", ArmsTriceps, cat.Arms.Triceps},
		}
		for i, w := range want {
			g := plan.Groups[i]
			if g.Name != w.name || len(g.Exercises) != w.n {
				t.Fatalf("group %d = %+v", i, g)
			}
			uniq := map[string]bool{}
			for _, ex := range g.Exercises {
				if !slices.Contains(w.pool, ex) {
					t.Fatalf("%q not from %s pool", ex, w.name)
				}
				uniq[ex] = true
			}
			if len(uniq) != w.n {
				t.Fatalf("duplicates in %s: %v", w.name, g.Exercises)
			}
		}
	}
}

func TestArmsUnderPopulated(t *testing.T) {
	cat := sampleCatalog()
	cat.Arms.Shoulders = cat.Arms.Shoulders[:2]
	_, err := NewSelector(DefaultRotation, seeded(1)).Select(time.Thursday, cat)
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMissingDayData(t *testing.T) {
	s := NewSelector(DefaultRotation, seeded(1))
	for _, wd := range []time.Weekday{time.Monday, time.Tuesday, time.Friday} {
		if _, err := s.Select(wd, Catalog{}); !apperr.IsValidation(err) {
			t.Fatalf("%s: expected validation error, got %v", wd, err)
		}
	}
	plan, err := s.Select(time.Wednesday, Catalog{})
	if err != nil {
		t.Fatalf("functional: %v", err)
	}
	if plan.Comment != DefaultComment {
		t.Fatalf("comment = %q", plan.Comment)
	}
}

func TestRender(t *testing.T) {
	if got := (Plan{Rest: true}).Render(); got != RestMessage {
		t.Fatalf("rest render = %q", got)
	}
	plan, err := NewSelector(DefaultRotation, seeded(3)).Select(time.Thursday, sampleCatalog())
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	out := plan.Render()
	for _, want := range []string{"Четверг", "Тренировка РУК", "Плечи:", "Бицепс:", "Трицепс:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
	legs, _ := NewSelector(DefaultRotation, seeded(3)).Select(time.Friday, sampleCatalog())
	if !strings.HasSuffix(legs.Render(), "Присед\nВыпады\nЖим ногами") {
		t.Fatalf("legs must render verbatim:\n%s", legs.Render())
	}
}
