package core

import (
	"testing"
	"time"
)

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err == nil {
		t.Fatalf("expected error for zero")
	}
	if err := (Money{Cents: -100}).Validate(); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
		ok   bool
	}{
		{"food", CategoryFood, true},
		{" Food ", CategoryFood, true},
		{"TRANSPORTATION", CategoryTransportation, true},
		{"snacks", CategoryOther, false},
		{"", CategoryOther, false},
	}
	for i, tc := range cases {
		got, ok := ParseCategory(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("case %d: ParseCategory(%q) = %v,%v want %v,%v", i, tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestExpenseRecordValidate(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	good := ExpenseRecord{
		UserID:      "u1",
		Amount:      Money{Cents: 350},
		Currency:    "SGD",
		Category:    CategoryFood,
		Description: "banana lunch",
		Timestamp:   now,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []ExpenseRecord{
		{UserID: "", Amount: Money{Cents: 1}, Category: CategoryFood, Description: "a", Timestamp: now},
		{UserID: "u1", Amount: Money{Cents: 0}, Category: CategoryFood, Description: "a", Timestamp: now},
		{UserID: "u1", Amount: Money{Cents: 1}, Category: "snacks", Description: "a", Timestamp: now},
		{UserID: "u1", Amount: Money{Cents: 1}, Category: CategoryFood, Description: "", Timestamp: now},
		{UserID: "u1", Amount: Money{Cents: 1}, Category: CategoryFood, Description: "a", Timestamp: time.Time{}},
	}
	for i, e := range bads {
		if err := e.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestFieldPatchApply(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)
	rec := ExpenseRecord{
		RowID:       "r1",
		UserID:      "u1",
		Amount:      Money{Cents: 350},
		Currency:    "SGD",
		Category:    CategoryFood,
		Description: "banana lunch",
		Timestamp:   now,
	}

	if !(FieldPatch{}).Empty() {
		t.Fatalf("zero patch should be empty")
	}

	amt := Money{Cents: 500}
	cat := CategoryGroceries
	patched := rec.Apply(FieldPatch{Amount: &amt, Category: &cat})
	if patched.Amount.Cents != 500 || patched.Category != CategoryGroceries {
		t.Fatalf("patch not applied: %+v", patched)
	}
	if patched.RowID != "r1" || patched.UserID != "u1" || patched.Description != "banana lunch" {
		t.Fatalf("untouched fields changed: %+v", patched)
	}
	// Original is unchanged
	if rec.Amount.Cents != 350 {
		t.Fatalf("apply mutated receiver")
	}
}
