package apperr

import (
	"fmt"
	"testing"
)

func TestKindsSurviveWrapping(t *testing.T) {
	perr := fmt.Errorf("record: %w", Parse("abc", "amount is not a number"))
	if !IsParse(perr) {
		t.Fatalf("expected parse error, got %v", perr)
	}
	if IsValidation(perr) {
		t.Fatal("parse error must not look like a validation error")
	}

	verr := fmt.Errorf("edit: %w", Invalid("day", "нет такого дня"))
	if !IsValidation(verr) {
		t.Fatalf("expected validation error, got %v", verr)
	}
	msg, ok := UserMessage(verr)
	if !ok || msg != "нет такого дня" {
		t.Fatalf("user message = %q, %v", msg, ok)
	}
}

func TestCodes(t *testing.T) {
	if c := (&ParseError{}).Code(); c != "parse_error" {
		t.Fatalf("parse code = %s", c)
	}
	if c := (&ValidationError{}).Code(); c != "validation_error" {
		t.Fatalf("validation code = %s", c)
	}
}
