package workout

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/m3rciful/habitbot/internal/apperr"
	"github.com/m3rciful/habitbot/internal/store"
)

func TestParseDirective(t *testing.T) {
	cases := []struct {
		raw     string
		want    Directive
		wantErr bool
	}{
		{raw: "add: Планка", want: Directive{Op: OpAdd, Text: "Планка"}},
		{raw: "ДОБАВИТЬ:  Планка 60с ", want: Directive{Op: OpAdd, Text: "Планка 60с"}},
		{raw: "delete: тяга", want: Directive{Op: OpDelete, Text: "тяга"}},
		{raw: "удалить: тяга", want: Directive{Op: OpDelete, Text: "тяга"}},
		{raw: "add плечи: Армейский жим", want: Directive{Op: OpAdd, Part: PartShoulders, Text: "Армейский жим"}},
		{raw: "Add Triceps: Отжимания", want: Directive{Op: OpAdd, Part: PartTriceps, Text: "Отжимания"}},
		{raw: "Планка", wantErr: true},
		{raw: "add:", wantErr: true},
		{raw: "remove: тяга", wantErr: true},
		{raw: "add ноги: присед", wantErr: true},
		{raw: "delete бицепс: молотки", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			got, err := ParseDirective(tc.raw)
			if tc.wantErr {
				if !apperr.IsValidation(err) {
					t.Fatalf("expected validation error, got %v (%+v)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func apply(t *testing.T, cat *Catalog, day Day, raw string) (int, error) {
	t.Helper()
	d, err := ParseDirective(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return d.Apply(cat, day)
}

func TestAddCreatesFirstVariant(t *testing.T) {
	var cat Catalog
	if _, err := apply(t, &cat, DayChest, "add: Отжимания на брусьях"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(cat.Chest.Variants) != 1 || !slices.Equal(cat.Chest.Variants[0], []string{"Отжимания на брусьях"}) {
		t.Fatalf("chest = %+v", cat.Chest)
	}
	if _, err := apply(t, &cat, DayChest, "add: Отжимания на брусьях"); err != nil {
		t.Fatalf("add again: %v", err)
	}
	if len(cat.Chest.Variants[0]) != 2 {
		t.Fatalf("add must not dedup, got %v", cat.Chest.Variants[0])
	}
}

func TestDeleteScansFirstVariantOnly(t *testing.T) {
	cat := sampleCatalog()
	n, err := apply(t, &cat, DayBack, "delete: Тяга")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Fatalf("removed = %d, want 1", n)
	}
	if !slices.Equal(cat.Back.Variants[0], []string{"Гиперэкстензия"}) {
		t.Fatalf("first variant = %v", cat.Back.Variants[0])
	}
	if !slices.Contains(cat.Back.Variants[1], "Тяга штанги в наклоне") {
		t.Fatalf("second variant must be untouched: %v", cat.Back.Variants[1])
	}
}

func TestDeleteRemovesEmptiedVariant(t *testing.T) {
	cat := sampleCatalog()
	if _, err := apply(t, &cat, DayBack, "delete: Гиперэкстензия"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := apply(t, &cat, DayBack, "delete: Тяга верхнего"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(cat.Back.Variants) != 2 {
		t.Fatalf("variants = %d, want 2", len(cat.Back.Variants))
	}
	for _, v := range cat.Back.Variants {
		if len(v) == 0 {
			t.Fatalf("empty variant left behind: %+v", cat.Back.Variants)
		}
	}
}

func TestDeleteArmsScansAllParts(t *testing.T) {
	cat := sampleCatalog()
	n, err := apply(t, &cat, DayArms, "удалить: под")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 2 {
		t.Fatalf("removed = %d, want 2", n)
	}
	if len(cat.Arms.Shoulders) != 3 || len(cat.Arms.Biceps) != 2 || len(cat.Arms.Triceps) != 2 {
		t.Fatalf("arms = %+v", cat.Arms)
	}
	if !slices.Contains(cat.Arms.Biceps, "Подъём штанги") {
		t.Fatalf("matching is case-sensitive, biceps = %v", cat.Arms.Biceps)
	}
}

func TestDeleteNoMatchLeavesCatalog(t *testing.T) {
	cat := sampleCatalog()
	before := sampleCatalog()
	_, err := apply(t, &cat, DayLegs, "delete: Бег")
	if !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !slices.Equal(cat.Legs.Exercises, before.Legs.Exercises) {
		t.Fatalf("legs changed: %v", cat.Legs.Exercises)
	}
}

func TestArmsAddNeedsPart(t *testing.T) {
	cat := sampleCatalog()
	if _, err := apply(t, &cat, DayArms, "add: Молотки"); !apperr.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := apply(t, &cat, DayArms, "add бицепс: Подъём на скамье Скотта"); err != nil {
		t.Fatalf("add biceps: %v", err)
	}
	if cat.Arms.Biceps[len(cat.Arms.Biceps)-1] != "Подъём на скамье Скотта" {
		t.Fatalf("biceps = %v", cat.Arms.Biceps)
	}
	if _, err := apply(t, &cat, DayLegs, "add плечи: Махи"); !apperr.IsValidation(err) {
		t.Fatalf("part outside arms must fail, got %v", err)
	}
}

func TestFunctionalCommentEdits(t *testing.T) {
	cat := sampleCatalog()
	if _, err := apply(t, &cat, DayFunctional, "add: Скакалка 5 минут"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if cat.Functional.Comment != "Круговая тренировка\nСкакалка 5 минут" {
		t.Fatalf("comment = %q", cat.Functional.Comment)
	}
	if _, err := apply(t, &cat, DayFunctional, "delete: Круговая тренировка"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if cat.Functional.Comment != "Скакалка 5 минут" {
		t.Fatalf("comment = %q", cat.Functional.Comment)
	}
}

func TestServiceEditPersistsCatalog(t *testing.T) {
	ctx := context.Background()
	backend := store.NewMemoryBackend()
	doc, err := NewDocument(backend, "trainings.yaml")
	if err != nil {
		t.Fatalf("document: %v", err)
	}
	monday := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	svc := NewService(doc, NewSelector(DefaultRotation, seeded(1)), Options{
		Location: time.UTC,
		Now:      func() time.Time { return monday },
	})

	if _, err := svc.Today(ctx); !apperr.IsValidation(err) {
		t.Fatalf("empty back must be a validation error, got %v", err)
	}
	res, err := svc.Edit(ctx, DayBack, "add: Шраги")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if res.Count != 1 || !strings.Contains(res.Message(), "Спина") {
		t.Fatalf("result = %+v (%s)", res, res.Message())
	}
	if _, err := svc.Edit(ctx, DayBack, "delete: Жим"); !apperr.IsValidation(err) {
		t.Fatalf("expected no-match error, got %v", err)
	}
	if backend.Saves() != 1 {
		t.Fatalf("saves = %d, want 1", backend.Saves())
	}

	plan, err := svc.Today(ctx)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if plan.Day != DayBack || !slices.Equal(plan.Groups[0].Exercises, []string{"Шраги"}) {
		t.Fatalf("plan = %+v", plan)
	}

	raw, err := backend.Load(ctx, "trainings.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !strings.Contains(string(raw), "Шраги") || !strings.Contains(string(raw), "variants:") {
		t.Fatalf("catalog not stored as YAML:\n%s", raw)
	}

	desc, err := svc.Describe(ctx, DayBack)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if !strings.Contains(desc, "Вариант 1") || !strings.Contains(desc, "Шраги") {
		t.Fatalf("describe = %q", desc)
	}
}
